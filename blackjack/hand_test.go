package blackjack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func c(rank Rank, suit Suit) Card {
	return NewCard(suit, rank)
}

func TestHand_Value(t *testing.T) {
	tests := []struct {
		name string
		hand Hand
		want int
	}{
		{"ace and eight", Hand{c(Ace, Spade), c(Eight, Heart)}, 19},
		{"two aces and nine", Hand{c(Ace, Spade), c(Ace, Heart), c(Nine, Club)}, 21},
		{"three aces and eight", Hand{c(Ace, Spade), c(Ace, Heart), c(Ace, Club), c(Eight, Diamond)}, 21},
		{"pair of aces", Hand{c(Ace, Spade), c(Ace, Heart)}, 12},
		{"faces", Hand{c(King, Spade), c(Queen, Heart)}, 20},
		{"bust", Hand{c(King, Spade), c(Queen, Heart), c(Two, Club)}, 22},
		{"empty", Hand{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.hand.Value())
		})
	}
}

func TestHand_IsBlackjack(t *testing.T) {
	assert.True(t, Hand{c(Ace, Spade), c(King, Heart)}.IsBlackjack())
	assert.True(t, Hand{c(Ten, Club), c(Ace, Diamond)}.IsBlackjack())
	assert.False(t, Hand{c(Seven, Spade), c(Seven, Heart), c(Seven, Club)}.IsBlackjack())
	assert.False(t, Hand{c(Ace, Spade), c(Five, Heart), c(Five, Club)}.IsBlackjack())
	assert.False(t, Hand{c(Ace, Spade), c(Nine, Heart)}.IsBlackjack())
}

func TestHand_IsSoft(t *testing.T) {
	assert.True(t, Hand{c(Ace, Spade), c(Six, Heart)}.IsSoft())
	assert.True(t, Hand{c(Ace, Spade), c(Ace, Heart)}.IsSoft())
	assert.False(t, Hand{c(Ace, Spade), c(Six, Heart), c(Ten, Club)}.IsSoft())
	assert.False(t, Hand{c(Ten, Spade), c(Six, Heart)}.IsSoft())
}

func TestHand_CanSplit(t *testing.T) {
	assert.True(t, Hand{c(Eight, Spade), c(Eight, Heart)}.CanSplit())
	assert.True(t, Hand{c(King, Spade), c(Queen, Heart)}.CanSplit())
	assert.True(t, Hand{c(Ten, Spade), c(Jack, Heart)}.CanSplit())
	assert.False(t, Hand{c(Ace, Spade), c(King, Heart)}.CanSplit())
	assert.False(t, Hand{c(Eight, Spade), c(Eight, Heart), c(Eight, Club)}.CanSplit())
}

func TestHand_String(t *testing.T) {
	assert.Equal(t, "A♠ 10♥", Hand{c(Ace, Spade), c(Ten, Heart)}.String())
}
