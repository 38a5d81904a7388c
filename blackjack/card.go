package blackjack

import "fmt"

// Suit is one of the four French suits
type Suit string

const (
	Spade   Suit = "spade"
	Heart   Suit = "heart"
	Diamond Suit = "diamond"
	Club    Suit = "club"
)

// Suits lists the suits in deck generation order
var Suits = []Suit{Spade, Heart, Diamond, Club}

// Symbol returns the unicode pip for the suit
func (s Suit) Symbol() string {
	switch s {
	case Spade:
		return "♠"
	case Heart:
		return "♥"
	case Diamond:
		return "♦"
	case Club:
		return "♣"
	default:
		return "?"
	}
}

// Rank is the face of a card
type Rank string

const (
	Ace   Rank = "A"
	Two   Rank = "2"
	Three Rank = "3"
	Four  Rank = "4"
	Five  Rank = "5"
	Six   Rank = "6"
	Seven Rank = "7"
	Eight Rank = "8"
	Nine  Rank = "9"
	Ten   Rank = "10"
	Jack  Rank = "J"
	Queen Rank = "Q"
	King  Rank = "K"
)

// Ranks lists the ranks in deck generation order
var Ranks = []Rank{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}

// Card is an immutable playing card
type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

// NewCard creates a card from a suit and rank
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank}
}

// Points returns the card's blackjack points with aces counted as 11
func (c Card) Points() int {
	switch c.Rank {
	case Ace:
		return 11
	case Ten, Jack, Queen, King:
		return 10
	case Two:
		return 2
	case Three:
		return 3
	case Four:
		return 4
	case Five:
		return 5
	case Six:
		return 6
	case Seven:
		return 7
	case Eight:
		return 8
	case Nine:
		return 9
	default:
		return 0
	}
}

// IsTenValue reports whether the card counts as ten
func (c Card) IsTenValue() bool {
	switch c.Rank {
	case Ten, Jack, Queen, King:
		return true
	}
	return false
}

func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit.Symbol())
}
