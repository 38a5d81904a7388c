package common

import (
	"errors"
	"fmt"

	"casino/blackjack"
	"casino/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const genericFailure = "Something went wrong. Please try again later."

// BotError represents a structured error with user-facing and internal messages
type BotError struct {
	UserMessage string // Message shown to Discord user
	LogMessage  string // Internal message for logging
	Ephemeral   bool
	Err         error
}

// Error implements the error interface
func (e *BotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.LogMessage, e.Err)
	}
	return e.LogMessage
}

// Unwrap returns the underlying error
func (e *BotError) Unwrap() error {
	return e.Err
}

// IsSystem reports whether the player could not have avoided the error
func (e *BotError) IsSystem() bool {
	return e.UserMessage == genericFailure
}

// NewUserError creates an error for user-caused issues (validation, insufficient funds, etc)
func NewUserError(userMessage string, logMessage string) *BotError {
	return &BotError{
		UserMessage: userMessage,
		LogMessage:  logMessage,
		Ephemeral:   true,
	}
}

// NewSystemError creates an error for system issues (database, unexpected state, etc)
func NewSystemError(err error, logMessage string) *BotError {
	return &BotError{
		UserMessage: genericFailure,
		LogMessage:  logMessage,
		Ephemeral:   true,
		Err:         err,
	}
}

var userMessages = []struct {
	err     error
	message string
}{
	{blackjack.ErrNoActiveGame, "There is no blackjack game running in this channel."},
	{blackjack.ErrGameAlreadyExists, "A blackjack game is already running in this channel."},
	{blackjack.ErrAlreadyJoined, "You have already joined this game."},
	{blackjack.ErrGameFull, "This table is full."},
	{blackjack.ErrInsufficientFunds, "You don't have enough " + Currency + " for that."},
	{blackjack.ErrNotHost, "Only the host can do that."},
	{blackjack.ErrNotYourTurn, "It's not your turn."},
	{blackjack.ErrHandAlreadyResolved, "That hand is already finished."},
	{blackjack.ErrConcurrentUpdate, "The table was busy. Please try again."},
	{service.ErrNotAdmin, "You are not allowed to use admin commands."},
	{service.ErrInvalidAmount, "Amount must be positive."},
}

// ClassifyError turns a service error into a BotError. Rule violations become
// user errors, anything else is a system error.
func ClassifyError(err error, action string) *BotError {
	// These carry their own detail, e.g. the minimum bet
	if errors.Is(err, blackjack.ErrInvalidAction) || errors.Is(err, blackjack.ErrBetTooLow) {
		e := NewUserError(capitalize(err.Error())+".", action+" rejected")
		e.Err = err
		return e
	}
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			e := NewUserError(m.message, action+" rejected")
			e.Err = err
			return e
		}
	}
	return NewSystemError(err, action+" failed")
}

// RespondWithBotError answers an interaction with the user message of err.
// System errors are logged at error level.
func RespondWithBotError(s *discordgo.Session, i *discordgo.InteractionCreate, err *BotError) {
	entry := log.WithError(err.Err).WithField("interaction", i.ID)
	if err.IsSystem() {
		entry.Error(err.LogMessage)
	} else {
		entry.Debug(err.LogMessage)
	}
	RespondWithError(s, i, err.UserMessage)
}

// RespondWithServiceError classifies err and answers the interaction with it
func RespondWithServiceError(s *discordgo.Session, i *discordgo.InteractionCreate, err error, action string) {
	RespondWithBotError(s, i, ClassifyError(err, action))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] -= 'a' - 'A'
	}
	return string(r)
}
