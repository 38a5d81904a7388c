package blackjack

import "time"

// HandStatus tracks a single sub-hand through a player's turn
type HandStatus string

const (
	HandPlaying   HandStatus = "playing"
	HandStand     HandStatus = "stand"
	HandBust      HandStatus = "bust"
	HandBlackjack HandStatus = "blackjack"
)

// Result is a player's settled outcome for a game
type Result string

const (
	ResultWin       Result = "win"
	ResultLose      Result = "lose"
	ResultPush      Result = "push"
	ResultBlackjack Result = "blackjack"
)

// SubHand is one of a player's hands. Players start with one and a split makes two.
type SubHand struct {
	Cards   Hand       `json:"cards"`
	Status  HandStatus `json:"status"`
	Stake   int64      `json:"stake"`
	Doubled bool       `json:"doubled,omitempty"`
	Payout  int64      `json:"payout,omitempty"`
}

// Player is a seat at a blackjack game
type Player struct {
	ID              int64
	DiscordID       int64
	Username        string
	JoinOrder       int
	Bet             int64 // total stake across all sub-hands
	Hands           []*SubHand
	ActiveHand      int
	HasInsurance    bool
	InsuranceAmount int64
	InsurancePayout int64
	Result          Result // empty until settled
	Payout          int64
	JoinedAt        time.Time
}

// Active returns the sub-hand currently being played
func (p *Player) Active() *SubHand {
	if p.ActiveHand < 0 || p.ActiveHand >= len(p.Hands) {
		return nil
	}
	return p.Hands[p.ActiveHand]
}

// IsSplit reports whether the player split their opening hand
func (p *Player) IsSplit() bool {
	return len(p.Hands) > 1
}

// IsDoubled reports whether any sub-hand was doubled
func (p *Player) IsDoubled() bool {
	for _, h := range p.Hands {
		if h.Doubled {
			return true
		}
	}
	return false
}

// Playing reports whether the player still has a decision to make
func (p *Player) Playing() bool {
	h := p.Active()
	return h != nil && h.Status == HandPlaying
}

// resolveActive closes the active sub-hand and moves to the next playable one.
// It reports whether control moved to another sub-hand of the same player.
func (p *Player) resolveActive(status HandStatus) bool {
	p.Active().Status = status
	for i := p.ActiveHand + 1; i < len(p.Hands); i++ {
		if p.Hands[i].Status == HandPlaying {
			p.ActiveHand = i
			return true
		}
	}
	return false
}
