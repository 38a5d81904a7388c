package repository

import (
	"context"
	"testing"

	"casino/models"
	"casino/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceHistoryRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	testutil.SeedUsers(t, testDB.DB, testutil.CreateTestUser(123456, "testuser"))
	repo := NewBalanceHistoryRepository(testDB.DB)

	t.Run("record keeps guild and related game", func(t *testing.T) {
		gameID := int64(77)
		relatedType := models.RelatedTypeBlackjackGame
		history := testutil.CreateTestBalanceHistory(123456, models.TransactionTypeBlackjackBet)
		history.GuildID = 42
		history.RelatedID = &gameID
		history.RelatedType = &relatedType

		require.NoError(t, repo.Record(ctx, history))
		assert.NotZero(t, history.ID)
		assert.False(t, history.CreatedAt.IsZero())

		rows, err := repo.GetByUser(ctx, 123456, 10)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, int64(42), rows[0].GuildID)
		assert.Equal(t, models.TransactionTypeBlackjackBet, rows[0].TransactionType)
		require.NotNil(t, rows[0].RelatedID)
		assert.Equal(t, gameID, *rows[0].RelatedID)
		require.NotNil(t, rows[0].RelatedType)
		assert.Equal(t, models.RelatedTypeBlackjackGame, *rows[0].RelatedType)
		assert.Equal(t, true, rows[0].TransactionMetadata["test"])
	})

	t.Run("newest first with limit", func(t *testing.T) {
		require.NoError(t, repo.Record(ctx, testutil.CreateTestBalanceHistory(123456, models.TransactionTypeBlackjackPayout)))
		require.NoError(t, repo.Record(ctx, testutil.CreateTestBalanceHistory(123456, models.TransactionTypeBlackjackRefund)))

		rows, err := repo.GetByUser(ctx, 123456, 2)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, models.TransactionTypeBlackjackRefund, rows[0].TransactionType)
		assert.Equal(t, models.TransactionTypeBlackjackPayout, rows[1].TransactionType)
	})

	t.Run("unknown user has no history", func(t *testing.T) {
		rows, err := repo.GetByUser(ctx, 999, 10)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}
