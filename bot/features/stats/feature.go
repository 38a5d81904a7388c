package stats

import (
	"casino/bot/common"
	"casino/service"

	"github.com/bwmarrin/discordgo"
)

// Feature represents the stats feature
type Feature struct {
	userService service.UserService
}

// NewFeature creates a new stats feature instance
func NewFeature(userService service.UserService) *Feature {
	return &Feature{
		userService: userService,
	}
}

// HandleCommand handles the /stats command and its subcommands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		common.RespondWithError(s, i, "Please specify a subcommand: scoreboard or player")
		return
	}

	switch options[0].Name {
	case "scoreboard":
		f.handleScoreboard(s, i)
	case "player":
		f.handlePlayer(s, i, options[0].Options)
	default:
		common.RespondWithError(s, i, "Unknown subcommand")
	}
}
