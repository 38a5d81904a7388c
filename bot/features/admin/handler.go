package admin

import (
	"context"
	"fmt"
	"strings"

	"casino/bot/common"
	"casino/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

type adjustFunc func(ctx context.Context, adminID, discordID int64, username string, amount int64) (*models.User, error)

func (f *Feature) handleAdjust(s *discordgo.Session, i *discordgo.InteractionCreate, action string, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	var (
		target *discordgo.User
		amount int64
	)
	for _, opt := range options {
		switch opt.Name {
		case "user":
			target = opt.UserValue(s)
		case "amount":
			amount = opt.IntValue()
		}
	}
	if target == nil {
		common.RespondWithError(s, i, "Please choose a user.")
		return
	}

	adminID, targetID, ok := parseIDs(s, i, target)
	if !ok {
		return
	}

	var adjust adjustFunc
	switch action {
	case "give":
		adjust = f.adminService.GiveCoins
	case "take":
		adjust = f.adminService.TakeCoins
	default:
		adjust = f.adminService.SetCoins
	}

	user, err := adjust(ctx, adminID, targetID, target.Username, amount)
	if err != nil {
		common.RespondWithServiceError(s, i, err, "admin "+action)
		return
	}

	var message string
	switch action {
	case "give":
		message = fmt.Sprintf("Gave %s to %s.", common.FormatCoins(amount), common.Mention(targetID))
	case "take":
		message = fmt.Sprintf("Took up to %s from %s.", common.FormatCoins(amount), common.Mention(targetID))
	default:
		message = fmt.Sprintf("Set %s's balance.", common.Mention(targetID))
	}
	message += fmt.Sprintf(" New balance: **%s**", common.FormatCoins(user.Balance))

	if err := common.RespondWithSuccess(s, i, message, true); err != nil {
		log.Errorf("Error responding to admin %s command: %v", action, err)
	}
}

func (f *Feature) handleInfo(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	var target *discordgo.User
	for _, opt := range options {
		if opt.Name == "user" {
			target = opt.UserValue(s)
		}
	}
	if target == nil {
		common.RespondWithError(s, i, "Please choose a user.")
		return
	}

	adminID, targetID, ok := parseIDs(s, i, target)
	if !ok {
		return
	}
	user, history, err := f.adminService.GetUserInfo(ctx, adminID, targetID, historyShown)
	if err != nil {
		common.RespondWithServiceError(s, i, err, "admin info")
		return
	}
	if user == nil {
		common.RespondWithError(s, i, fmt.Sprintf("%s has never played.", common.Mention(targetID)))
		return
	}

	if err := common.RespondWithEmbed(s, i, BuildUserInfoEmbed(user, history), nil, true); err != nil {
		log.Errorf("Error responding to admin info command: %v", err)
	}
}

// BuildUserInfoEmbed shows an account with its latest ledger entries
func BuildUserInfoEmbed(user *models.User, history []*models.BalanceHistory) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🔎 %s", user.Username),
		Color: common.ColorWarning,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Discord ID", Value: fmt.Sprintf("%d", user.DiscordID), Inline: true},
			{Name: "Balance", Value: common.FormatCoins(user.Balance), Inline: true},
			{Name: "Record", Value: fmt.Sprintf("%d played · %d won · %d lost", user.GamesPlayed, user.GamesWon, user.GamesLost), Inline: true},
		},
	}

	if len(history) == 0 {
		return embed
	}

	lines := make([]string, 0, len(history))
	for _, h := range history {
		lines = append(lines, fmt.Sprintf("%s `%s` %s → %s",
			common.FormatDiscordTimestamp(h.CreatedAt, "R"),
			h.TransactionType,
			common.FormatSignedCoins(h.ChangeAmount),
			common.FormatBalance(h.BalanceAfter)))
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "Recent transactions",
		Value: strings.Join(lines, "\n"),
	})
	return embed
}

func parseIDs(s *discordgo.Session, i *discordgo.InteractionCreate, target *discordgo.User) (int64, int64, bool) {
	invoker := common.Invoker(i)
	adminID, err := common.ParseID(invoker.ID)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", invoker.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return 0, 0, false
	}
	targetID, err := common.ParseID(target.ID)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", target.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return 0, 0, false
	}
	return adminID, targetID, true
}
