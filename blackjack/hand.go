package blackjack

import "strings"

// Hand is an ordered sequence of cards
type Hand []Card

// Value returns the highest total that does not bust, degrading aces from 11 to 1 as needed
func (h Hand) Value() int {
	total, _ := h.total()
	return total
}

func (h Hand) total() (int, int) {
	total := 0
	aces := 0
	for _, c := range h {
		total += c.Points()
		if c.Rank == Ace {
			aces++
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total, aces
}

// IsSoft reports whether an ace is still counted as 11
func (h Hand) IsSoft() bool {
	total, aces := h.total()
	return aces > 0 && total <= 21
}

// IsBlackjack reports a two-card 21
func (h Hand) IsBlackjack() bool {
	return len(h) == 2 && h.Value() == 21
}

// IsBust reports a total over 21
func (h Hand) IsBust() bool {
	return h.Value() > 21
}

// CanSplit reports two cards of equal rank or two ten-valued cards
func (h Hand) CanSplit() bool {
	if len(h) != 2 {
		return false
	}
	if h[0].Rank == h[1].Rank {
		return true
	}
	return h[0].IsTenValue() && h[1].IsTenValue()
}

func (h Hand) String() string {
	parts := make([]string, len(h))
	for i, c := range h {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
