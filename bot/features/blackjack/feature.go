package blackjack

import (
	"strings"

	"casino/bot/common"
	"casino/service"

	"github.com/bwmarrin/discordgo"
)

// recentGamesShown is how many closed games /blackjack status lists when the
// channel is idle
const recentGamesShown = 3

// Feature runs blackjack tables through slash commands and table buttons
type Feature struct {
	blackjackService service.BlackjackService
	minBet           int64
}

// New creates the blackjack feature
func New(blackjackService service.BlackjackService, minBet int64) *Feature {
	return &Feature{
		blackjackService: blackjackService,
		minBet:           minBet,
	}
}

// HandleCommand handles the /blackjack command and its subcommands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		common.RespondWithError(s, i, "Please specify a subcommand.")
		return
	}

	req, ok := parseRequest(s, i)
	if !ok {
		return
	}

	sub := options[0]
	switch sub.Name {
	case "create":
		f.handleCreate(s, i, req)
	case "join":
		f.handleJoin(s, i, req, sub.Options)
	case "start":
		f.handleStart(s, i, req)
	case "cancel":
		f.handleCancel(s, i, req)
	case "hit":
		f.handleHit(s, i, req)
	case "stand":
		f.handleStand(s, i, req)
	case "double":
		f.handleDouble(s, i, req)
	case "split":
		f.handleSplit(s, i, req)
	case "insurance":
		f.handleInsurance(s, i, req)
	case "status":
		f.handleStatus(s, i, req)
	default:
		common.RespondWithError(s, i, "Unknown subcommand")
	}
}

// HandleInteraction handles presses of the table buttons
func (f *Feature) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	customID := i.MessageComponentData().CustomID
	if !strings.HasPrefix(customID, buttonPrefix) {
		return
	}

	req, ok := parseRequest(s, i)
	if !ok {
		return
	}
	req.fromButton = true

	switch customID {
	case buttonStart:
		f.handleStart(s, i, req)
	case buttonCancel:
		f.handleCancel(s, i, req)
	case buttonHit:
		f.handleHit(s, i, req)
	case buttonStand:
		f.handleStand(s, i, req)
	case buttonDouble:
		f.handleDouble(s, i, req)
	case buttonSplit:
		f.handleSplit(s, i, req)
	case buttonInsurance:
		f.handleInsurance(s, i, req)
	}
}
