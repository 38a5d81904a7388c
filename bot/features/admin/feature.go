package admin

import (
	"casino/bot/common"
	"casino/service"

	"github.com/bwmarrin/discordgo"
)

// historyShown is how many ledger entries /admin info lists
const historyShown = 10

// Feature exposes coin management to configured administrators
type Feature struct {
	adminService service.AdminService
}

// New creates the admin feature
func New(adminService service.AdminService) *Feature {
	return &Feature{adminService: adminService}
}

// HandleCommand handles the /admin command and its subcommands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		common.RespondWithError(s, i, "Please specify a subcommand: give, take, set or info")
		return
	}

	sub := options[0]
	switch sub.Name {
	case "give", "take", "set":
		f.handleAdjust(s, i, sub.Name, sub.Options)
	case "info":
		f.handleInfo(s, i, sub.Options)
	default:
		common.RespondWithError(s, i, "Unknown subcommand")
	}
}
