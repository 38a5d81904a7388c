package models

// Outcome is how a finished game counts toward a user's record
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomePush Outcome = "push"
)

// WinRate returns the share of played games that were won, as a percentage
func (u *User) WinRate() float64 {
	if u.GamesPlayed == 0 {
		return 0
	}
	return float64(u.GamesWon) / float64(u.GamesPlayed) * 100
}
