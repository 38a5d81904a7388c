package stats

import (
	"context"
	"fmt"

	"casino/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// handleScoreboard displays the richest players
func (f *Feature) handleScoreboard(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	users, err := f.userService.GetScoreboard(ctx, common.ScoreboardSize)
	if err != nil {
		common.RespondWithBotError(s, i, common.NewSystemError(err, "failed to get scoreboard"))
		return
	}

	names := make(map[int64]string, len(users))
	for _, user := range users {
		names[user.DiscordID] = common.GetDisplayNameInt64(s, i.GuildID, user.DiscordID)
	}

	if err := common.RespondWithEmbed(s, i, BuildScoreboardEmbed(users, names), nil, false); err != nil {
		log.Errorf("Error responding to scoreboard command: %v", err)
	}
}

// handlePlayer displays one player's balance and record
func (f *Feature) handlePlayer(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	// Default to the command issuer
	target := common.Invoker(i)
	if len(options) > 0 && options[0].Name == "user" {
		target = options[0].UserValue(s)
	}

	discordID, err := common.ParseID(target.ID)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", target.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	user, err := f.userService.GetOrCreateUser(ctx, discordID, target.Username)
	if err != nil {
		common.RespondWithBotError(s, i, common.NewSystemError(err, fmt.Sprintf("failed to get stats for user %d", discordID)))
		return
	}

	displayName := common.GetDisplayName(s, i.GuildID, target.ID)
	if err := common.RespondWithEmbed(s, i, BuildPlayerEmbed(user, displayName), nil, false); err != nil {
		log.Errorf("Error responding to player stats command: %v", err)
	}
}
