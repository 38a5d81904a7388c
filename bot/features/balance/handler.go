package balance

import (
	"context"
	"fmt"

	"casino/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	invoker := common.Invoker(i)
	discordID, err := common.ParseID(invoker.ID)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", invoker.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	// New players are given the starting balance here
	user, err := f.userService.GetOrCreateUser(ctx, discordID, invoker.Username)
	if err != nil {
		common.RespondWithBotError(s, i, common.NewSystemError(err, fmt.Sprintf("failed to get user %d", discordID)))
		return
	}

	displayName := common.GetDisplayName(s, i.GuildID, invoker.ID)

	message := fmt.Sprintf("%s, your current balance: **%s**", displayName, common.FormatCoins(user.Balance))
	if user.GamesPlayed > 0 {
		message += fmt.Sprintf("\nBlackjack record: %d played · %d won · %d lost",
			user.GamesPlayed, user.GamesWon, user.GamesLost)
	}
	common.RespondWithMessage(s, i, message)
}
