package service

import (
	"context"
	"errors"
	"fmt"

	"casino/blackjack"
	"casino/config"
	"casino/models"
)

// ledger moves coins inside a unit of work so balance changes commit or roll
// back together with the game state that caused them.
type ledger struct {
	uow UnitOfWork
}

func newLedger(uow UnitOfWork) *ledger {
	return &ledger{uow: uow}
}

// adjustment describes why a balance changed
type adjustment struct {
	guildID  int64
	gameID   int64
	txType   models.TransactionType
	metadata map[string]any
}

// GetOrCreateAccount returns the user's account, opening one with the
// starting balance on first sight.
func (l *ledger) GetOrCreateAccount(ctx context.Context, discordID int64, username string) (*models.User, error) {
	user, err := l.uow.UserRepository().GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if user != nil {
		return user, nil
	}

	startingBalance := config.Get().StartingBalance
	user, err = l.uow.UserRepository().Create(ctx, discordID, username, startingBalance)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	history := &models.BalanceHistory{
		DiscordID:       discordID,
		BalanceBefore:   0,
		BalanceAfter:    startingBalance,
		ChangeAmount:    startingBalance,
		TransactionType: models.TransactionTypeInitial,
		TransactionMetadata: map[string]any{
			"username": username,
		},
	}
	if err := RecordBalanceChange(ctx, l.uow, history); err != nil {
		return nil, fmt.Errorf("failed to record initial balance: %w", err)
	}

	return user, nil
}

// Balance returns the user's balance, zero for unknown users
func (l *ledger) Balance(ctx context.Context, discordID int64) (int64, error) {
	user, err := l.uow.UserRepository().GetByDiscordID(ctx, discordID)
	if err != nil {
		return 0, fmt.Errorf("failed to get user %d: %w", discordID, err)
	}
	if user == nil {
		return 0, nil
	}
	return user.Balance, nil
}

// AdjustBalance credits a positive delta or debits a negative one and
// records the movement. It returns the new balance.
func (l *ledger) AdjustBalance(ctx context.Context, discordID int64, delta int64, adj adjustment) (int64, error) {
	if delta == 0 {
		return l.Balance(ctx, discordID)
	}

	var (
		after int64
		err   error
	)
	if delta > 0 {
		after, err = l.uow.UserRepository().AddBalance(ctx, discordID, delta)
	} else {
		after, err = l.uow.UserRepository().DeductBalance(ctx, discordID, -delta)
	}
	if err != nil {
		if errors.Is(err, blackjack.ErrInsufficientFunds) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to adjust balance for user %d: %w", discordID, err)
	}

	history := &models.BalanceHistory{
		DiscordID:           discordID,
		GuildID:             adj.guildID,
		BalanceBefore:       after - delta,
		BalanceAfter:        after,
		ChangeAmount:        delta,
		TransactionType:     adj.txType,
		TransactionMetadata: adj.metadata,
	}
	if adj.gameID != 0 {
		gameID := adj.gameID
		relatedType := models.RelatedTypeBlackjackGame
		history.RelatedID = &gameID
		history.RelatedType = &relatedType
	}

	if err := RecordBalanceChange(ctx, l.uow, history); err != nil {
		return 0, err
	}
	return after, nil
}

// RecordOutcome counts a finished game toward the user's record
func (l *ledger) RecordOutcome(ctx context.Context, discordID int64, outcome models.Outcome) error {
	if err := l.uow.UserRepository().RecordOutcome(ctx, discordID, outcome); err != nil {
		return fmt.Errorf("failed to record outcome for user %d: %w", discordID, err)
	}
	return nil
}
