package blackjack

import (
	"math/rand"
	"time"
)

// Shuffler permutes n elements through swap. *rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// NewSeededShuffler returns a deterministic shuffler for the given seed
func NewSeededShuffler(seed int64) Shuffler {
	return rand.New(rand.NewSource(seed))
}

// NewShuffler returns a shuffler seeded from the wall clock
func NewShuffler() Shuffler {
	return NewSeededShuffler(time.Now().UnixNano())
}

// FreshCards returns an unshuffled 52-card set
func FreshCards() []Card {
	cards := make([]Card, 0, len(Suits)*len(Ranks))
	for _, suit := range Suits {
		for _, rank := range Ranks {
			cards = append(cards, NewCard(suit, rank))
		}
	}
	return cards
}

// Deck is a consumable card sequence drawn from the top (index 0).
// An exhausted deck is replaced by a full fresh 52-card set, reshuffled.
type Deck struct {
	cards    []Card
	shuffler Shuffler
}

// NewDeck creates a shuffled 52-card deck
func NewDeck(shuffler Shuffler) *Deck {
	d := &Deck{shuffler: shuffler}
	d.refill()
	return d
}

// NewDeckFromCards restores a deck in the given draw order
func NewDeckFromCards(cards []Card, shuffler Shuffler) *Deck {
	restored := make([]Card, len(cards))
	copy(restored, cards)
	return &Deck{cards: restored, shuffler: shuffler}
}

func (d *Deck) refill() {
	d.cards = FreshCards()
	if d.shuffler == nil {
		d.shuffler = NewShuffler()
	}
	d.shuffler.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Draw removes and returns the top card. It never fails.
func (d *Deck) Draw() Card {
	if len(d.cards) == 0 {
		d.refill()
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	return card
}

// Remaining returns the number of cards left before regeneration
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// Cards returns a copy of the remaining cards in draw order
func (d *Deck) Cards() []Card {
	cards := make([]Card, len(d.cards))
	copy(cards, d.cards)
	return cards
}
