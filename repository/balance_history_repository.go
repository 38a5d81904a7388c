package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"casino/database"
	"casino/models"
)

// BalanceHistoryRepository implements the BalanceHistoryRepository interface
type BalanceHistoryRepository struct {
	q queryable
}

// NewBalanceHistoryRepository creates a new balance history repository
func NewBalanceHistoryRepository(db *database.DB) *BalanceHistoryRepository {
	return &BalanceHistoryRepository{q: db.Pool}
}

// newBalanceHistoryRepositoryWithTx creates a new balance history repository with a transaction
func newBalanceHistoryRepositoryWithTx(tx queryable) *BalanceHistoryRepository {
	return &BalanceHistoryRepository{q: tx}
}

// Record creates a new balance history entry
func (r *BalanceHistoryRepository) Record(ctx context.Context, history *models.BalanceHistory) error {
	metadataJSON, err := json.Marshal(history.TransactionMetadata)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction metadata: %w", err)
	}

	var relatedType *string
	if history.RelatedType != nil {
		s := string(*history.RelatedType)
		relatedType = &s
	}

	query := `
		INSERT INTO balance_history
		(discord_id, guild_id, balance_before, balance_after, change_amount, transaction_type, transaction_metadata, related_id, related_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err = r.q.QueryRow(ctx, query,
		history.DiscordID,
		history.GuildID,
		history.BalanceBefore,
		history.BalanceAfter,
		history.ChangeAmount,
		string(history.TransactionType),
		metadataJSON,
		history.RelatedID,
		relatedType,
	).Scan(&history.ID, &history.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record balance history for user %d: %w", history.DiscordID, err)
	}

	return nil
}

// GetByUser returns the latest balance history for a user across all guilds
func (r *BalanceHistoryRepository) GetByUser(ctx context.Context, discordID int64, limit int) ([]*models.BalanceHistory, error) {
	query := `
		SELECT id, discord_id, guild_id, balance_before, balance_after, change_amount,
		       transaction_type, transaction_metadata, related_id, related_type, created_at
		FROM balance_history
		WHERE discord_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, discordID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance history for user %d: %w", discordID, err)
	}
	defer rows.Close()

	var histories []*models.BalanceHistory
	for rows.Next() {
		var (
			history         models.BalanceHistory
			transactionType string
			metadataJSON    []byte
			relatedType     *string
		)

		err := rows.Scan(
			&history.ID,
			&history.DiscordID,
			&history.GuildID,
			&history.BalanceBefore,
			&history.BalanceAfter,
			&history.ChangeAmount,
			&transactionType,
			&metadataJSON,
			&history.RelatedID,
			&relatedType,
			&history.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan balance history: %w", err)
		}

		history.TransactionType = models.TransactionType(transactionType)
		if relatedType != nil {
			rt := models.RelatedType(*relatedType)
			history.RelatedType = &rt
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &history.TransactionMetadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal transaction metadata: %w", err)
			}
		}

		histories = append(histories, &history)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate balance history: %w", err)
	}

	return histories, nil
}
