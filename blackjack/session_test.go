package blackjack

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	hostID  int64 = 100
	playerA int64 = 1
	playerB int64 = 2
)

var now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func stacked(cards ...Card) *Deck {
	return NewDeckFromCards(cards, NewSeededShuffler(1))
}

func newTestSession(t *testing.T, deck *Deck, bets ...int64) *Session {
	t.Helper()
	s := NewSession(1, 10, hostID, "host", deck, now)
	for i, bet := range bets {
		_, err := s.Join(DefaultRules(), int64(i+1), string(rune('A'+i)), bet, 10000, now)
		require.NoError(t, err)
	}
	return s
}

func TestSession_EndToEnd_BustAndDealerSeventeen(t *testing.T) {
	deck := stacked(
		c(Seven, Spade), c(Nine, Heart), // A
		c(King, Diamond), c(Two, Club), // B
		c(Five, Spade), c(Nine, Diamond), // dealer
		c(Eight, Club), // A hits
		c(Three, Heart), // dealer draws
	)
	s := newTestSession(t, deck, 100, 200)

	require.NoError(t, s.Start(hostID, now))
	assert.Equal(t, StatusPlaying, s.Status)
	assert.Equal(t, 1, s.CurrentTurn)
	assert.Equal(t, 16, s.Players[0].Active().Cards.Value())
	assert.Equal(t, 12, s.Players[1].Active().Cards.Value())
	assert.Equal(t, 14, s.Dealer.Value())

	_, err := s.Insure(playerA, 10000)
	assert.ErrorIs(t, err, ErrInvalidAction)

	hit, err := s.Hit(playerA)
	require.NoError(t, err)
	assert.Equal(t, HandBust, hit.Status)
	assert.Equal(t, 24, hit.Hand.Cards.Value())
	require.NotNil(t, hit.NextPlayer)
	assert.Equal(t, playerB, hit.NextPlayer.DiscordID)
	assert.Equal(t, 2, s.CurrentTurn)

	stand, err := s.Stand(playerB)
	require.NoError(t, err)
	assert.True(t, stand.DealerTurn)
	assert.Equal(t, StatusDealerTurn, s.Status)

	settlement, err := s.PlayDealer(now)
	require.NoError(t, err)
	assert.Equal(t, []Card{c(Three, Heart)}, settlement.Drawn)
	assert.Equal(t, 17, settlement.DealerValue)
	assert.False(t, settlement.DealerBust)
	assert.False(t, settlement.DealerBlackjack)
	assert.Equal(t, StatusFinished, s.Status)

	a, b := s.Players[0], s.Players[1]
	assert.Equal(t, ResultLose, a.Result)
	assert.Equal(t, int64(0), a.Payout)
	assert.Equal(t, ResultLose, b.Result)
	assert.Equal(t, int64(0), b.Payout)
}

func TestSession_Join_Validation(t *testing.T) {
	rules := Rules{MinBet: 10, MaxPlayers: 2}

	t.Run("bet too low", func(t *testing.T) {
		s := NewSession(1, 10, hostID, "host", stacked(), now)
		_, err := s.Join(rules, playerA, "A", 5, 1000, now)
		assert.ErrorIs(t, err, ErrBetTooLow)
		assert.Empty(t, s.Players)
	})

	t.Run("already joined", func(t *testing.T) {
		s := NewSession(1, 10, hostID, "host", stacked(), now)
		_, err := s.Join(rules, playerA, "A", 10, 1000, now)
		require.NoError(t, err)
		_, err = s.Join(rules, playerA, "A", 10, 1000, now)
		assert.ErrorIs(t, err, ErrAlreadyJoined)
		assert.Len(t, s.Players, 1)
	})

	t.Run("game full", func(t *testing.T) {
		s := NewSession(1, 10, hostID, "host", stacked(), now)
		for id := int64(1); id <= 2; id++ {
			_, err := s.Join(rules, id, "p", 10, 1000, now)
			require.NoError(t, err)
		}
		_, err := s.Join(rules, 3, "p", 10, 1000, now)
		assert.ErrorIs(t, err, ErrGameFull)
	})

	t.Run("insufficient funds", func(t *testing.T) {
		s := NewSession(1, 10, hostID, "host", stacked(), now)
		_, err := s.Join(rules, playerA, "A", 100, 50, now)
		assert.ErrorIs(t, err, ErrInsufficientFunds)
	})

	t.Run("join order and stake", func(t *testing.T) {
		s := NewSession(1, 10, hostID, "host", stacked(), now)
		first, err := s.Join(rules, playerA, "A", 10, 1000, now)
		require.NoError(t, err)
		second, err := s.Join(rules, playerB, "B", 25, 1000, now)
		require.NoError(t, err)
		assert.Equal(t, 1, first.JoinOrder)
		assert.Equal(t, 2, second.JoinOrder)
		assert.Equal(t, int64(25), second.Hands[0].Stake)
	})

	t.Run("not waiting", func(t *testing.T) {
		s := newTestSession(t, NewDeck(NewSeededShuffler(3)), 10)
		require.NoError(t, s.Start(hostID, now))
		_, err := s.Join(rules, playerB, "B", 10, 1000, now)
		assert.ErrorIs(t, err, ErrNoActiveGame)
	})
}

func TestSession_Start_Validation(t *testing.T) {
	s := NewSession(1, 10, hostID, "host", stacked(), now)
	assert.ErrorIs(t, s.Start(hostID, now), ErrInvalidAction)

	s = newTestSession(t, NewDeck(NewSeededShuffler(3)), 10)
	assert.ErrorIs(t, s.Start(playerA, now), ErrNotHost)
	assert.Equal(t, StatusWaiting, s.Status)
	assert.Equal(t, 52, s.Deck.Remaining())
}

func TestSession_Start_NaturalSkipsPlayer(t *testing.T) {
	deck := stacked(
		c(Ace, Spade), c(King, Heart),
		c(Nine, Club), c(Seven, Diamond),
		c(Ten, Spade), c(Six, Heart),
	)
	s := newTestSession(t, deck, 100, 100)

	require.NoError(t, s.Start(hostID, now))
	assert.Equal(t, HandBlackjack, s.Players[0].Hands[0].Status)
	assert.Equal(t, 2, s.CurrentTurn)
}

func TestSession_Start_AllNaturalsGoStraightToDealer(t *testing.T) {
	deck := stacked(
		c(Ace, Spade), c(King, Heart),
		c(Ten, Spade), c(Six, Heart),
	)
	s := newTestSession(t, deck, 100)

	require.NoError(t, s.Start(hostID, now))
	assert.Equal(t, StatusDealerTurn, s.Status)
	assert.Equal(t, 0, s.CurrentTurn)

	_, err := s.Hit(playerA)
	assert.ErrorIs(t, err, ErrNoActiveGame)

	_, err = s.PlayDealer(now)
	require.NoError(t, err)
	assert.Equal(t, ResultBlackjack, s.Players[0].Result)
	assert.Equal(t, int64(250), s.Players[0].Payout)
}

func TestSession_WrongPlayerDoesNotMutate(t *testing.T) {
	deck := stacked(
		c(Seven, Spade), c(Nine, Heart),
		c(King, Diamond), c(Two, Club),
		c(Five, Spade), c(Nine, Diamond),
	)
	s := newTestSession(t, deck, 100, 200)
	require.NoError(t, s.Start(hostID, now))
	remaining := s.Deck.Remaining()

	for i := 0; i < 3; i++ {
		_, err := s.Hit(playerB)
		assert.ErrorIs(t, err, ErrNotYourTurn)
		_, err = s.Stand(playerB)
		assert.ErrorIs(t, err, ErrNotYourTurn)
		_, err = s.DoubleDown(playerB, 10000)
		assert.ErrorIs(t, err, ErrNotYourTurn)
		_, err = s.Split(999, 10000)
		assert.ErrorIs(t, err, ErrNotYourTurn)
	}

	assert.Equal(t, remaining, s.Deck.Remaining())
	assert.Equal(t, 1, s.CurrentTurn)
	assert.Len(t, s.Players[1].Hands[0].Cards, 2)
	assert.Equal(t, int64(200), s.Players[1].Bet)
}

func TestSession_ResolvedHandIsRejected(t *testing.T) {
	s := newTestSession(t, NewDeck(NewSeededShuffler(3)), 100)
	require.NoError(t, s.Start(hostID, now))
	s.Status = StatusPlaying
	s.CurrentTurn = 1
	s.Players[0].Hands[0].Status = HandStand

	_, err := s.Hit(playerA)
	assert.ErrorIs(t, err, ErrHandAlreadyResolved)
}

func TestSession_AdvanceTurnWrapsAround(t *testing.T) {
	s := newTestSession(t, NewDeck(NewSeededShuffler(3)), 10, 10, 10)
	s.Status = StatusPlaying
	for _, p := range s.Players {
		p.Hands[0].Cards = Hand{c(Two, Spade), c(Three, Spade)}
	}
	s.Players[1].Hands[0].Status = HandStand
	s.Players[2].Hands[0].Status = HandBust
	s.CurrentTurn = 3

	next := s.advanceTurn()
	require.NotNil(t, next)
	assert.Equal(t, 1, next.JoinOrder)
	assert.Equal(t, 1, s.CurrentTurn)

	s.Players[0].Hands[0].Status = HandStand
	assert.Nil(t, s.advanceTurn())
	assert.Equal(t, StatusDealerTurn, s.Status)
}

func TestSession_Split(t *testing.T) {
	t.Run("bust on first hand moves to second", func(t *testing.T) {
		deck := stacked(
			c(Eight, Spade), c(Eight, Heart),
			c(Ten, Club), c(Seven, Diamond),
			c(Six, Club), c(King, Spade), // split draws
			c(Queen, Diamond), // hit on first hand
		)
		s := newTestSession(t, deck, 100)
		require.NoError(t, s.Start(hostID, now))

		split, err := s.Split(playerA, 100)
		require.NoError(t, err)
		assert.Equal(t, int64(100), split.Cost)

		p := s.Players[0]
		require.Len(t, p.Hands, 2)
		assert.Equal(t, int64(200), p.Bet)
		assert.Equal(t, Hand{c(Eight, Spade), c(Six, Club)}, p.Hands[0].Cards)
		assert.Equal(t, Hand{c(Eight, Heart), c(King, Spade)}, p.Hands[1].Cards)
		assert.Equal(t, 0, p.ActiveHand)

		_, err = s.Split(playerA, 1000)
		assert.ErrorIs(t, err, ErrInvalidAction)

		hit, err := s.Hit(playerA)
		require.NoError(t, err)
		assert.Equal(t, HandBust, hit.Status)
		assert.True(t, hit.SwitchedHand)
		assert.Nil(t, hit.NextPlayer)
		assert.Equal(t, 1, s.CurrentTurn)
		assert.Equal(t, 1, p.ActiveHand)

		stand, err := s.Stand(playerA)
		require.NoError(t, err)
		assert.True(t, stand.DealerTurn)

		_, err = s.PlayDealer(now)
		require.NoError(t, err)
		assert.Equal(t, int64(0), p.Hands[0].Payout)
		assert.Equal(t, int64(200), p.Hands[1].Payout)
		assert.Equal(t, int64(200), p.Payout)
		assert.Equal(t, ResultWin, p.Result)
	})

	t.Run("stand on first hand keeps the turn", func(t *testing.T) {
		deck := stacked(
			c(King, Spade), c(Queen, Heart),
			c(Ten, Club), c(Nine, Diamond),
			c(Seven, Club), c(Nine, Spade),
		)
		s := newTestSession(t, deck, 50)
		require.NoError(t, s.Start(hostID, now))
		_, err := s.Split(playerA, 50)
		require.NoError(t, err)

		stand, err := s.Stand(playerA)
		require.NoError(t, err)
		assert.True(t, stand.SwitchedHand)
		assert.False(t, stand.DealerTurn)

		_, err = s.Stand(playerA)
		require.NoError(t, err)
		_, err = s.PlayDealer(now)
		require.NoError(t, err)

		// 17 loses to 19, 19 pushes 19
		p := s.Players[0]
		assert.Equal(t, int64(0), p.Hands[0].Payout)
		assert.Equal(t, int64(50), p.Hands[1].Payout)
		assert.Equal(t, ResultPush, p.Result)
	})

	t.Run("rejections leave hand intact", func(t *testing.T) {
		deck := stacked(
			c(Eight, Spade), c(Nine, Heart),
			c(Ten, Club), c(Seven, Diamond),
		)
		s := newTestSession(t, deck, 100)
		require.NoError(t, s.Start(hostID, now))

		_, err := s.Split(playerA, 1000)
		assert.ErrorIs(t, err, ErrInvalidAction)
		assert.Len(t, s.Players[0].Hands, 1)
	})

	t.Run("insufficient funds", func(t *testing.T) {
		deck := stacked(
			c(Eight, Spade), c(Eight, Heart),
			c(Ten, Club), c(Seven, Diamond),
		)
		s := newTestSession(t, deck, 100)
		require.NoError(t, s.Start(hostID, now))

		_, err := s.Split(playerA, 99)
		assert.ErrorIs(t, err, ErrInsufficientFunds)
		assert.Len(t, s.Players[0].Hands, 1)
		assert.Equal(t, int64(100), s.Players[0].Bet)
	})
}

func TestSession_DoubleDown(t *testing.T) {
	deck := stacked(
		c(Five, Spade), c(Six, Heart),
		c(Ten, Club), c(Seven, Diamond),
		c(Ten, Heart),
	)
	s := newTestSession(t, deck, 100)
	require.NoError(t, s.Start(hostID, now))

	_, err := s.DoubleDown(playerA, 99)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	result, err := s.DoubleDown(playerA, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), result.Cost)
	assert.Equal(t, HandStand, result.Status)
	assert.True(t, result.DealerTurn)

	p := s.Players[0]
	assert.Equal(t, int64(200), p.Bet)
	assert.True(t, p.IsDoubled())

	_, err = s.PlayDealer(now)
	require.NoError(t, err)
	assert.Equal(t, int64(400), p.Payout)
	assert.Equal(t, ResultWin, p.Result)
}

func TestSession_DoubleDown_OnlyOnTwoCards(t *testing.T) {
	deck := stacked(
		c(Two, Spade), c(Three, Heart),
		c(Ten, Club), c(Seven, Diamond),
		c(Four, Heart),
	)
	s := newTestSession(t, deck, 100)
	require.NoError(t, s.Start(hostID, now))
	_, err := s.Hit(playerA)
	require.NoError(t, err)

	_, err = s.DoubleDown(playerA, 1000)
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestSession_Insurance(t *testing.T) {
	deck := stacked(
		c(Ten, Spade), c(Nine, Heart),
		c(Ace, Club), c(King, Diamond),
	)
	s := newTestSession(t, deck, 100)
	require.NoError(t, s.Start(hostID, now))

	_, err := s.Insure(999, 1000)
	assert.ErrorIs(t, err, ErrInvalidAction)

	_, err = s.Insure(playerA, 49)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	cost, err := s.Insure(playerA, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(50), cost)

	_, err = s.Insure(playerA, 1000)
	assert.ErrorIs(t, err, ErrInvalidAction)

	_, err = s.Stand(playerA)
	require.NoError(t, err)
	settlement, err := s.PlayDealer(now)
	require.NoError(t, err)

	p := s.Players[0]
	assert.True(t, settlement.DealerBlackjack)
	assert.Empty(t, settlement.Drawn)
	assert.Equal(t, int64(0), p.Payout)
	assert.Equal(t, int64(100), p.InsurancePayout)
	assert.Equal(t, ResultLose, p.Result)
}

func TestSession_DealerStandsOnSoftSeventeen(t *testing.T) {
	deck := stacked(
		c(Ten, Spade), c(Eight, Heart),
		c(Ace, Club), c(Six, Diamond),
	)
	s := newTestSession(t, deck, 100)
	require.NoError(t, s.Start(hostID, now))
	_, err := s.Stand(playerA)
	require.NoError(t, err)

	settlement, err := s.PlayDealer(now)
	require.NoError(t, err)
	assert.Empty(t, settlement.Drawn)
	assert.Equal(t, 17, settlement.DealerValue)
	assert.Equal(t, int64(200), s.Players[0].Payout)
}

func TestSession_PlayDealer_WrongStatus(t *testing.T) {
	s := newTestSession(t, NewDeck(NewSeededShuffler(3)), 100)
	_, err := s.PlayDealer(now)
	assert.ErrorIs(t, err, ErrInvalidAction)

	s.Status = StatusFinished
	_, err = s.PlayDealer(now)
	assert.ErrorIs(t, err, ErrNoActiveGame)
}

func TestSession_Cancel(t *testing.T) {
	s := newTestSession(t, NewDeck(NewSeededShuffler(3)), 100, 200)

	_, err := s.Cancel(playerA, now)
	assert.ErrorIs(t, err, ErrNotHost)
	assert.Equal(t, StatusWaiting, s.Status)

	refunds, err := s.Cancel(hostID, now)
	require.NoError(t, err)
	assert.Len(t, refunds, 2)
	assert.Equal(t, StatusCancelled, s.Status)

	started := newTestSession(t, NewDeck(NewSeededShuffler(3)), 100)
	require.NoError(t, started.Start(hostID, now))
	_, err = started.Cancel(hostID, now)
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestIsValidationError(t *testing.T) {
	assert.True(t, IsValidationError(ErrGameFull))
	assert.True(t, IsValidationError(errors.Join(errors.New("context"), ErrNotYourTurn)))
	assert.False(t, IsValidationError(errors.New("connection refused")))
	assert.False(t, IsValidationError(ErrConcurrentUpdate))
}
