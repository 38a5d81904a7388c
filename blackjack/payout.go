package blackjack

import (
	"fmt"
	"time"
)

// DealerStandsOn is the total at which the dealer stops drawing. Soft and hard
// totals are treated the same, so the dealer stands on soft 17.
const DealerStandsOn = 17

// Settlement is the outcome of the dealer's turn
type Settlement struct {
	Dealer          Hand
	Drawn           []Card
	DealerValue     int
	DealerBust      bool
	DealerBlackjack bool
	Players         []*Player
}

// PlayDealer draws for the dealer, settles every player and finishes the game.
// Credits owed to each player are Payout plus InsurancePayout.
func (s *Session) PlayDealer(now time.Time) (*Settlement, error) {
	if s.Status != StatusDealerTurn {
		if s.Status.IsActive() {
			return nil, fmt.Errorf("%w: players are still acting", ErrInvalidAction)
		}
		return nil, ErrNoActiveGame
	}

	var drawn []Card
	for s.Dealer.Value() < DealerStandsOn {
		card := s.Deck.Draw()
		s.Dealer = append(s.Dealer, card)
		drawn = append(drawn, card)
	}

	for _, p := range s.Players {
		SettlePlayer(p, s.Dealer)
	}

	s.Status = StatusFinished
	s.CurrentTurn = 0
	s.FinishedAt = &now

	return &Settlement{
		Dealer:          s.Dealer,
		Drawn:           drawn,
		DealerValue:     s.Dealer.Value(),
		DealerBust:      s.Dealer.IsBust(),
		DealerBlackjack: s.Dealer.IsBlackjack(),
		Players:         s.Players,
	}, nil
}

// HandPayout returns the amount credited for one sub-hand against the final
// dealer hand. Stakes are included in the payout.
func HandPayout(cards Hand, stake int64, dealer Hand) int64 {
	switch {
	case cards.IsBust():
		return 0
	case cards.IsBlackjack() && !dealer.IsBlackjack():
		return stake * 5 / 2
	case cards.IsBlackjack():
		return stake
	case dealer.IsBust():
		return stake * 2
	}

	player, house := cards.Value(), dealer.Value()
	switch {
	case player > house:
		return stake * 2
	case player == house:
		return stake
	default:
		return 0
	}
}

// SettlePlayer fills in payouts and the aggregate result for one player
func SettlePlayer(p *Player, dealer Hand) {
	var total int64
	for _, h := range p.Hands {
		h.Payout = HandPayout(h.Cards, h.Stake, dealer)
		total += h.Payout
	}
	p.Payout = total

	if p.HasInsurance && dealer.IsBlackjack() {
		p.InsurancePayout = p.InsuranceAmount * 2
	}

	p.Result = playerResult(p, dealer)
}

func playerResult(p *Player, dealer Hand) Result {
	if p.IsSplit() {
		profited := false
		allLost := true
		for _, h := range p.Hands {
			if h.Payout > h.Stake {
				profited = true
			}
			if h.Payout > 0 {
				allLost = false
			}
		}
		switch {
		case profited:
			return ResultWin
		case allLost:
			return ResultLose
		default:
			return ResultPush
		}
	}

	h := p.Hands[0]
	switch {
	case h.Cards.IsBust():
		return ResultLose
	case h.Cards.IsBlackjack() && !dealer.IsBlackjack():
		return ResultBlackjack
	case p.Payout > p.Bet:
		return ResultWin
	case p.Payout == p.Bet:
		return ResultPush
	default:
		return ResultLose
	}
}
