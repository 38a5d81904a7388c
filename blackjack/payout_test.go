package blackjack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandPayout(t *testing.T) {
	seventeen := Hand{c(Ten, Club), c(Seven, Diamond)}
	dealerBust := Hand{c(Ten, Club), c(Six, Diamond), c(King, Heart)}
	dealerBlackjack := Hand{c(Ace, Club), c(Queen, Diamond)}
	natural := Hand{c(Ace, Spade), c(Jack, Heart)}

	tests := []struct {
		name   string
		cards  Hand
		stake  int64
		dealer Hand
		want   int64
	}{
		{"bust loses even when dealer busts", Hand{c(Ten, Spade), c(Nine, Heart), c(Five, Club)}, 100, dealerBust, 0},
		{"natural pays three to two", natural, 100, seventeen, 250},
		{"natural rounds down on odd stake", natural, 15, seventeen, 37},
		{"natural pushes dealer natural", natural, 100, dealerBlackjack, 100},
		{"dealer bust pays even money", Hand{c(Two, Spade), c(Three, Heart)}, 100, dealerBust, 200},
		{"higher total wins", Hand{c(Ten, Spade), c(Eight, Heart)}, 100, seventeen, 200},
		{"equal total pushes", Hand{c(Nine, Spade), c(Eight, Heart)}, 100, seventeen, 100},
		{"lower total loses", Hand{c(Nine, Spade), c(Seven, Heart)}, 100, seventeen, 0},
		{"three card 21 loses to dealer natural", Hand{c(Seven, Spade), c(Seven, Heart), c(Seven, Club)}, 100, dealerBlackjack, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HandPayout(tt.cards, tt.stake, tt.dealer))
		})
	}
}

func TestSettlePlayer_Results(t *testing.T) {
	seventeen := Hand{c(Ten, Club), c(Seven, Diamond)}

	t.Run("push on equal totals", func(t *testing.T) {
		p := &Player{Bet: 100, Hands: []*SubHand{{Cards: Hand{c(Nine, Spade), c(Eight, Heart)}, Stake: 100}}}
		SettlePlayer(p, seventeen)
		assert.Equal(t, ResultPush, p.Result)
		assert.Equal(t, int64(100), p.Payout)
	})

	t.Run("natural", func(t *testing.T) {
		p := &Player{Bet: 100, Hands: []*SubHand{{Cards: Hand{c(Ace, Spade), c(King, Heart)}, Stake: 100}}}
		SettlePlayer(p, seventeen)
		assert.Equal(t, ResultBlackjack, p.Result)
	})

	t.Run("split both lose", func(t *testing.T) {
		p := &Player{Bet: 200, Hands: []*SubHand{
			{Cards: Hand{c(Eight, Spade), c(Eight, Heart), c(Nine, Club)}, Stake: 100},
			{Cards: Hand{c(Eight, Club), c(Two, Heart)}, Stake: 100},
		}}
		SettlePlayer(p, seventeen)
		assert.Equal(t, ResultLose, p.Result)
		assert.Equal(t, int64(0), p.Payout)
	})

	t.Run("insurance forfeited without dealer natural", func(t *testing.T) {
		p := &Player{Bet: 100, HasInsurance: true, InsuranceAmount: 50,
			Hands: []*SubHand{{Cards: Hand{c(Ten, Spade), c(Nine, Heart)}, Stake: 100}}}
		SettlePlayer(p, seventeen)
		assert.Equal(t, int64(0), p.InsurancePayout)
		assert.Equal(t, ResultWin, p.Result)
	})
}
