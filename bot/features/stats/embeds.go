package stats

import (
	"fmt"
	"strings"
	"time"

	"casino/bot/common"
	"casino/models"

	"github.com/bwmarrin/discordgo"
)

// BuildScoreboardEmbed creates the scoreboard embed. names maps Discord IDs
// to display names and falls back to the stored username.
func BuildScoreboardEmbed(users []*models.User, names map[int64]string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:     "🏆 Casino Scoreboard",
		Color:     common.ColorPrimary,
		Timestamp: time.Now().Format(time.RFC3339),
	}

	if len(users) == 0 {
		embed.Description = "No players found"
		return embed
	}

	var table strings.Builder
	table.WriteString("```\n")
	table.WriteString(fmt.Sprintf("%-4s %-20s %-14s %s\n", "", "Player", "Balance", "Win %"))
	table.WriteString(strings.Repeat("-", 48) + "\n")

	for idx, user := range users {
		rank := fmt.Sprintf("#%d", idx+1)
		switch idx {
		case 0:
			rank = "🥇"
		case 1:
			rank = "🥈"
		case 2:
			rank = "🥉"
		}

		name, ok := names[user.DiscordID]
		if !ok || name == "" || name == "Unknown" {
			name = user.Username
		}

		winRate := "-"
		if user.GamesPlayed > 0 {
			winRate = fmt.Sprintf("%.1f%%", user.WinRate())
		}

		table.WriteString(fmt.Sprintf("%-4s %-20s %-14s %s\n",
			rank, common.Truncate(name, 18), common.FormatBalance(user.Balance), winRate))
	}

	table.WriteString("```")
	embed.Description = table.String()
	return embed
}

// BuildPlayerEmbed creates the per-player statistics embed
func BuildPlayerEmbed(user *models.User, displayName string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("📊 Stats for %s", displayName),
		Color:     common.ColorInfo,
		Timestamp: time.Now().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "💰 Balance",
				Value:  fmt.Sprintf("**%s**", common.FormatCoins(user.Balance)),
				Inline: true,
			},
		},
	}

	record := "No games played yet"
	if user.GamesPlayed > 0 {
		pushes := user.GamesPlayed - user.GamesWon - user.GamesLost
		record = fmt.Sprintf("Played: **%d**\nWon: **%d** (%.1f%%)\nLost: **%d**\nPushed: **%d**",
			user.GamesPlayed, user.GamesWon, user.WinRate(), user.GamesLost, pushes)
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "🃏 Blackjack",
		Value:  record,
		Inline: true,
	})

	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "Member since",
		Value: common.FormatDiscordTimestamp(user.CreatedAt, "D"),
	})
	return embed
}
