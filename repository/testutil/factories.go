package testutil

import (
	"context"
	"testing"
	"time"

	"casino/blackjack"
	"casino/database"
	"casino/models"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

// CreateTestUser creates a test user with default values
func CreateTestUser(discordID int64, username string) *models.User {
	now := time.Now()
	return &models.User{
		DiscordID: discordID,
		Username:  username,
		Balance:   1000,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateTestBalanceHistory creates a test balance history entry
func CreateTestBalanceHistory(discordID int64, transactionType models.TransactionType) *models.BalanceHistory {
	return &models.BalanceHistory{
		DiscordID:       discordID,
		BalanceBefore:   1000,
		BalanceAfter:    900,
		ChangeAmount:    -100,
		TransactionType: transactionType,
		TransactionMetadata: map[string]any{
			"test": true,
		},
	}
}

// SeedUsers inserts users directly, bypassing the ledger
func SeedUsers(t *testing.T, db *database.DB, users ...*models.User) {
	t.Helper()
	err := db.WithTransaction(context.Background(), func(tx pgx.Tx) error {
		for _, u := range users {
			_, err := tx.Exec(context.Background(),
				`INSERT INTO users (discord_id, username, balance) VALUES ($1, $2, $3)`,
				u.DiscordID, u.Username, u.Balance)
			if err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

// CreateTestGame builds a waiting game with a stacked deck
func CreateTestGame(guildID, channelID, hostID int64, cards ...blackjack.Card) *blackjack.Session {
	deck := blackjack.NewDeckFromCards(cards, blackjack.NewSeededShuffler(1))
	return blackjack.NewSession(guildID, channelID, hostID, "host", deck, time.Now().UTC().Truncate(time.Microsecond))
}
