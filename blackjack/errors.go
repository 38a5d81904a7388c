package blackjack

import "errors"

// Validation failures. Operations returning one of these leave the session unchanged.
var (
	ErrNoActiveGame        = errors.New("no active blackjack game in this channel")
	ErrGameAlreadyExists   = errors.New("a blackjack game is already running in this channel")
	ErrAlreadyJoined       = errors.New("already joined this game")
	ErrGameFull            = errors.New("game is full")
	ErrBetTooLow           = errors.New("bet is below the table minimum")
	ErrInsufficientFunds   = errors.New("insufficient balance")
	ErrNotHost             = errors.New("only the host can do that")
	ErrNotYourTurn         = errors.New("it is not your turn")
	ErrInvalidAction       = errors.New("action not allowed right now")
	ErrHandAlreadyResolved = errors.New("hand is already resolved")
)

// ErrConcurrentUpdate is returned by stores when a session changed underneath a write
var ErrConcurrentUpdate = errors.New("game was modified concurrently")

var validationErrors = []error{
	ErrNoActiveGame,
	ErrGameAlreadyExists,
	ErrAlreadyJoined,
	ErrGameFull,
	ErrBetTooLow,
	ErrInsufficientFunds,
	ErrNotHost,
	ErrNotYourTurn,
	ErrInvalidAction,
	ErrHandAlreadyResolved,
}

// IsValidationError reports whether err is a caller-facing rule violation
// as opposed to an infrastructure failure.
func IsValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
