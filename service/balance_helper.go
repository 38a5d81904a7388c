package service

import (
	"context"
	"fmt"

	"casino/events"
	"casino/models"

	log "github.com/sirupsen/logrus"
)

// RecordBalanceChange records a balance history entry and emits appropriate events.
// This is the single entry point for all balance changes in the system.
func RecordBalanceChange(ctx context.Context, uow UnitOfWork, history *models.BalanceHistory) error {
	if err := uow.BalanceHistoryRepository().Record(ctx, history); err != nil {
		return fmt.Errorf("failed to record balance history: %w", err)
	}

	log.WithFields(log.Fields{
		"discordID":       history.DiscordID,
		"guildID":         history.GuildID,
		"transactionType": history.TransactionType,
		"changeAmount":    history.ChangeAmount,
		"balanceAfter":    history.BalanceAfter,
	}).Debug("Recorded balance change")

	// Emitted once the transaction commits
	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:          history.DiscordID,
		GuildID:         history.GuildID,
		OldBalance:      history.BalanceBefore,
		NewBalance:      history.BalanceAfter,
		TransactionType: history.TransactionType,
		ChangeAmount:    history.ChangeAmount,
	})

	if history.TransactionType == models.TransactionTypeInitial {
		if username, ok := history.TransactionMetadata["username"].(string); ok {
			uow.EventBus().Publish(events.UserCreatedEvent{
				UserID:         history.DiscordID,
				DiscordID:      history.DiscordID,
				Username:       username,
				InitialBalance: history.BalanceAfter,
			})
		}
	}

	return nil
}
