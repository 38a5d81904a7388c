package blackjack

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a game
type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusPlaying    Status = "playing"
	StatusDealerTurn Status = "dealer_turn"
	StatusFinished   Status = "finished"
	StatusCancelled  Status = "cancelled"
)

// IsActive reports whether the status still occupies the channel
func (s Status) IsActive() bool {
	return s == StatusWaiting || s == StatusPlaying || s == StatusDealerTurn
}

// Rules are the table limits
type Rules struct {
	MinBet     int64
	MaxPlayers int
}

// DefaultRules returns a 10 coin minimum with six seats
func DefaultRules() Rules {
	return Rules{MinBet: 10, MaxPlayers: 6}
}

// Session is one game in one channel
type Session struct {
	ID          int64
	GuildID     int64
	ChannelID   int64
	HostID      int64
	HostName    string
	Status      Status
	CurrentTurn int // join order of the acting player, 0 when nobody is acting
	Dealer      Hand
	Deck        *Deck
	Players     []*Player // ordered by join order
	Version     int64
	CreatedAt   time.Time
	StartedAt   *time.Time
	FinishedAt  *time.Time
}

// NewSession creates a waiting game owned by the host
func NewSession(guildID, channelID, hostID int64, hostName string, deck *Deck, now time.Time) *Session {
	return &Session{
		GuildID:   guildID,
		ChannelID: channelID,
		HostID:    hostID,
		HostName:  hostName,
		Status:    StatusWaiting,
		Deck:      deck,
		CreatedAt: now,
	}
}

// Player returns the seat for a Discord user, or nil
func (s *Session) Player(discordID int64) *Player {
	for _, p := range s.Players {
		if p.DiscordID == discordID {
			return p
		}
	}
	return nil
}

// CurrentPlayer returns the player whose turn it is, or nil
func (s *Session) CurrentPlayer() *Player {
	if s.CurrentTurn == 0 {
		return nil
	}
	for _, p := range s.Players {
		if p.JoinOrder == s.CurrentTurn {
			return p
		}
	}
	return nil
}

// DealerUpCard returns the dealer's face-up card
func (s *Session) DealerUpCard() (Card, bool) {
	if len(s.Dealer) == 0 {
		return Card{}, false
	}
	return s.Dealer[0], true
}

// Join seats a player and returns the stake to debit. balance is the
// player's current ledger balance.
func (s *Session) Join(rules Rules, discordID int64, username string, bet, balance int64, now time.Time) (*Player, error) {
	if s.Status != StatusWaiting {
		return nil, ErrNoActiveGame
	}
	if bet < rules.MinBet {
		return nil, fmt.Errorf("%w: minimum bet is %d", ErrBetTooLow, rules.MinBet)
	}
	if s.Player(discordID) != nil {
		return nil, ErrAlreadyJoined
	}
	if len(s.Players) >= rules.MaxPlayers {
		return nil, fmt.Errorf("%w: %d players maximum", ErrGameFull, rules.MaxPlayers)
	}
	if balance < bet {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, balance, bet)
	}

	player := &Player{
		DiscordID: discordID,
		Username:  username,
		JoinOrder: len(s.Players) + 1,
		Bet:       bet,
		Hands:     []*SubHand{{Status: HandPlaying, Stake: bet}},
		JoinedAt:  now,
	}
	s.Players = append(s.Players, player)
	return player, nil
}

// Start deals two cards to every player and then two to the dealer.
// Naturals are marked immediately and the first undecided player acts first.
func (s *Session) Start(callerID int64, now time.Time) error {
	if s.Status != StatusWaiting {
		return ErrNoActiveGame
	}
	if callerID != s.HostID {
		return ErrNotHost
	}
	if len(s.Players) == 0 {
		return fmt.Errorf("%w: at least one player must join first", ErrInvalidAction)
	}

	for _, p := range s.Players {
		h := p.Hands[0]
		h.Cards = Hand{s.Deck.Draw(), s.Deck.Draw()}
		if h.Cards.IsBlackjack() {
			h.Status = HandBlackjack
		}
	}
	s.Dealer = Hand{s.Deck.Draw(), s.Deck.Draw()}

	s.Status = StatusPlaying
	s.StartedAt = &now
	s.CurrentTurn = 0
	s.advanceTurn()
	return nil
}

// Cancel abandons a game that has not started. The returned players are owed
// their stakes back.
func (s *Session) Cancel(callerID int64, now time.Time) ([]*Player, error) {
	if s.Status != StatusWaiting {
		if s.Status.IsActive() {
			return nil, fmt.Errorf("%w: game has already started", ErrInvalidAction)
		}
		return nil, ErrNoActiveGame
	}
	if callerID != s.HostID {
		return nil, ErrNotHost
	}
	s.Status = StatusCancelled
	s.FinishedAt = &now
	return s.Players, nil
}
