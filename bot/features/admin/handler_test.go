package admin

import (
	"testing"
	"time"

	"casino/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUserInfoEmbed(t *testing.T) {
	user := &models.User{DiscordID: 42, Username: "alice", Balance: 1250, GamesPlayed: 3, GamesWon: 2, GamesLost: 1}

	embed := BuildUserInfoEmbed(user, nil)
	require.Len(t, embed.Fields, 3)
	assert.Equal(t, "42", embed.Fields[0].Value)
	assert.Equal(t, "1,250 coins", embed.Fields[1].Value)
	assert.Equal(t, "3 played · 2 won · 1 lost", embed.Fields[2].Value)

	history := []*models.BalanceHistory{
		{
			TransactionType: models.TransactionTypeBlackjackPayout,
			ChangeAmount:    200,
			BalanceAfter:    1250,
			CreatedAt:       time.Unix(1700000100, 0),
		},
		{
			TransactionType: models.TransactionTypeBlackjackBet,
			ChangeAmount:    -100,
			BalanceAfter:    1050,
			CreatedAt:       time.Unix(1700000000, 0),
		},
	}

	embed = BuildUserInfoEmbed(user, history)
	require.Len(t, embed.Fields, 4)
	assert.Equal(t, "<t:1700000100:R> `blackjack_payout` +200 coins → 1,250\n"+
		"<t:1700000000:R> `blackjack_bet` -100 coins → 1,050", embed.Fields[3].Value)
}
