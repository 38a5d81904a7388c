package blackjack

import "fmt"

// ActionResult describes the effect of a player decision
type ActionResult struct {
	Player       *Player
	HandIndex    int        // sub-hand acted on
	Hand         *SubHand   // that sub-hand after the action
	Drawn        []Card     // cards dealt by the action
	Cost         int64      // extra stake to debit
	SwitchedHand bool       // control moved to the player's next sub-hand
	NextPlayer   *Player    // nil when the turn did not pass or the dealer is up
	DealerTurn   bool       // no player is left to act
	Status       HandStatus // status of the acted sub-hand
}

// eligible returns, in join order, the players who still have a decision to make
func (s *Session) eligible() []*Player {
	var players []*Player
	for _, p := range s.Players {
		if p.Playing() {
			players = append(players, p)
		}
	}
	return players
}

// advanceTurn passes the turn to the next eligible player after the current
// one, wrapping around. With nobody left the dealer takes over.
func (s *Session) advanceTurn() *Player {
	eligible := s.eligible()
	if len(eligible) == 0 {
		s.Status = StatusDealerTurn
		s.CurrentTurn = 0
		return nil
	}
	for _, p := range eligible {
		if p.JoinOrder > s.CurrentTurn {
			s.CurrentTurn = p.JoinOrder
			return p
		}
	}
	s.CurrentTurn = eligible[0].JoinOrder
	return eligible[0]
}

// actor resolves the player allowed to act
func (s *Session) actor(discordID int64) (*Player, error) {
	if s.Status != StatusPlaying {
		return nil, ErrNoActiveGame
	}
	current := s.CurrentPlayer()
	if current == nil || current.DiscordID != discordID {
		if current != nil {
			return nil, fmt.Errorf("%w: waiting on %s", ErrNotYourTurn, current.Username)
		}
		return nil, ErrNotYourTurn
	}
	if !current.Playing() {
		return nil, ErrHandAlreadyResolved
	}
	return current, nil
}

// finishHand closes the active sub-hand and either hands control to the
// player's next sub-hand or passes the turn.
func (s *Session) finishHand(p *Player, status HandStatus, result *ActionResult) {
	result.Status = status
	if p.resolveActive(status) {
		result.SwitchedHand = true
		return
	}
	result.NextPlayer = s.advanceTurn()
	result.DealerTurn = s.Status == StatusDealerTurn
}

// Hit deals one card to the active sub-hand. A bust ends that sub-hand.
func (s *Session) Hit(discordID int64) (*ActionResult, error) {
	p, err := s.actor(discordID)
	if err != nil {
		return nil, err
	}

	result := &ActionResult{Player: p, HandIndex: p.ActiveHand, Status: HandPlaying}
	h := p.Active()
	card := s.Deck.Draw()
	h.Cards = append(h.Cards, card)
	result.Drawn = []Card{card}
	result.Hand = h

	if h.Cards.IsBust() {
		s.finishHand(p, HandBust, result)
	}
	return result, nil
}

// Stand ends the active sub-hand
func (s *Session) Stand(discordID int64) (*ActionResult, error) {
	p, err := s.actor(discordID)
	if err != nil {
		return nil, err
	}

	result := &ActionResult{Player: p, HandIndex: p.ActiveHand, Hand: p.Active()}
	s.finishHand(p, HandStand, result)
	return result, nil
}

// DoubleDown doubles the active sub-hand's stake, deals exactly one card and
// ends that sub-hand.
func (s *Session) DoubleDown(discordID int64, balance int64) (*ActionResult, error) {
	p, err := s.actor(discordID)
	if err != nil {
		return nil, err
	}
	h := p.Active()
	if len(h.Cards) != 2 {
		return nil, fmt.Errorf("%w: double down is only allowed on the first two cards", ErrInvalidAction)
	}
	if balance < h.Stake {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, balance, h.Stake)
	}

	result := &ActionResult{Player: p, HandIndex: p.ActiveHand, Hand: h, Cost: h.Stake}
	p.Bet += h.Stake
	h.Stake *= 2
	h.Doubled = true

	card := s.Deck.Draw()
	h.Cards = append(h.Cards, card)
	result.Drawn = []Card{card}

	status := HandStand
	if h.Cards.IsBust() {
		status = HandBust
	}
	s.finishHand(p, status, result)
	return result, nil
}

// Split separates a pair into two sub-hands, each dealt one more card.
// Control stays with the first sub-hand.
func (s *Session) Split(discordID int64, balance int64) (*ActionResult, error) {
	p, err := s.actor(discordID)
	if err != nil {
		return nil, err
	}
	if p.IsSplit() {
		return nil, fmt.Errorf("%w: already split", ErrInvalidAction)
	}
	h := p.Active()
	if !h.Cards.CanSplit() {
		return nil, fmt.Errorf("%w: only a pair can be split", ErrInvalidAction)
	}
	if balance < h.Stake {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, balance, h.Stake)
	}

	first := &SubHand{Cards: Hand{h.Cards[0], s.Deck.Draw()}, Status: HandPlaying, Stake: h.Stake}
	second := &SubHand{Cards: Hand{h.Cards[1], s.Deck.Draw()}, Status: HandPlaying, Stake: h.Stake}

	p.Hands = []*SubHand{first, second}
	p.ActiveHand = 0
	p.Bet += h.Stake

	return &ActionResult{
		Player:    p,
		HandIndex: 0,
		Hand:      first,
		Drawn:     []Card{first.Cards[1], second.Cards[1]},
		Cost:      h.Stake,
		Status:    HandPlaying,
	}, nil
}

// Insure buys insurance against a dealer blackjack and returns its cost.
// Any seated player may insure while their opening hand is untouched.
func (s *Session) Insure(discordID int64, balance int64) (int64, error) {
	if s.Status != StatusPlaying {
		return 0, ErrNoActiveGame
	}
	up, ok := s.DealerUpCard()
	if !ok || up.Rank != Ace {
		return 0, fmt.Errorf("%w: insurance requires the dealer to show an ace", ErrInvalidAction)
	}
	p := s.Player(discordID)
	if p == nil {
		return 0, fmt.Errorf("%w: not seated in this game", ErrInvalidAction)
	}
	if p.HasInsurance {
		return 0, fmt.Errorf("%w: already insured", ErrInvalidAction)
	}
	if p.IsSplit() || len(p.Hands[0].Cards) != 2 {
		return 0, fmt.Errorf("%w: insurance is only available on the opening hand", ErrInvalidAction)
	}
	cost := p.Bet / 2
	if balance < cost {
		return 0, fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, balance, cost)
	}

	p.HasInsurance = true
	p.InsuranceAmount = cost
	return cost, nil
}
