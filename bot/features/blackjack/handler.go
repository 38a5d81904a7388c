package blackjack

import (
	"context"
	"errors"
	"fmt"

	bj "casino/blackjack"
	"casino/bot/common"
	"casino/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// request identifies who is acting at which table
type request struct {
	guildID    int64
	channelID  int64
	userID     int64
	username   string
	fromButton bool
}

func parseRequest(s *discordgo.Session, i *discordgo.InteractionCreate) (*request, bool) {
	if i.GuildID == "" {
		common.RespondWithError(s, i, "Blackjack can only be played in a server channel.")
		return nil, false
	}
	user := common.Invoker(i)
	if user == nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return nil, false
	}

	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		log.Errorf("Error parsing guild ID %s: %v", i.GuildID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return nil, false
	}
	channelID, err := common.ParseID(i.ChannelID)
	if err != nil {
		log.Errorf("Error parsing channel ID %s: %v", i.ChannelID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return nil, false
	}
	userID, err := common.ParseID(user.ID)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", user.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return nil, false
	}

	return &request{
		guildID:   guildID,
		channelID: channelID,
		userID:    userID,
		username:  user.Username,
	}, true
}

func (f *Feature) handleCreate(s *discordgo.Session, i *discordgo.InteractionCreate, req *request) {
	game, err := f.blackjackService.Create(context.Background(), req.guildID, req.channelID, req.userID, req.username)
	if err != nil {
		f.fail(s, i, req, err, "blackjack create")
		return
	}
	f.render(s, i, req, game, fmt.Sprintf("%s opened a blackjack table!", common.Mention(req.userID)))
}

func (f *Feature) handleJoin(s *discordgo.Session, i *discordgo.InteractionCreate, req *request, options []*discordgo.ApplicationCommandInteractionDataOption) {
	var bet int64
	for _, opt := range options {
		if opt.Name == "bet" {
			bet = opt.IntValue()
		}
	}
	if bet <= 0 {
		common.RespondWithError(s, i, "Bet must be positive.")
		return
	}

	game, player, err := f.blackjackService.Join(context.Background(), req.channelID, req.userID, req.username, bet)
	if err != nil {
		f.fail(s, i, req, err, "blackjack join")
		return
	}
	f.render(s, i, req, game, fmt.Sprintf("**%s** joins with %s.", player.Username, common.FormatCoins(player.Bet)))
}

func (f *Feature) handleStart(s *discordgo.Session, i *discordgo.InteractionCreate, req *request) {
	game, err := f.blackjackService.Start(context.Background(), req.channelID, req.userID)
	if err != nil {
		f.fail(s, i, req, err, "blackjack start")
		return
	}
	f.render(s, i, req, game, "Cards are dealt!")
}

func (f *Feature) handleCancel(s *discordgo.Session, i *discordgo.InteractionCreate, req *request) {
	game, err := f.blackjackService.Cancel(context.Background(), req.channelID, req.userID)
	if err != nil {
		f.fail(s, i, req, err, "blackjack cancel")
		return
	}
	f.render(s, i, req, game, "")
}

func (f *Feature) handleHit(s *discordgo.Session, i *discordgo.InteractionCreate, req *request) {
	f.handleAction(s, i, req, "hits", f.blackjackService.Hit)
}

func (f *Feature) handleStand(s *discordgo.Session, i *discordgo.InteractionCreate, req *request) {
	f.handleAction(s, i, req, "stands", f.blackjackService.Stand)
}

func (f *Feature) handleDouble(s *discordgo.Session, i *discordgo.InteractionCreate, req *request) {
	f.handleAction(s, i, req, "doubles down", f.blackjackService.DoubleDown)
}

func (f *Feature) handleSplit(s *discordgo.Session, i *discordgo.InteractionCreate, req *request) {
	f.handleAction(s, i, req, "splits", f.blackjackService.Split)
}

type actionFunc func(ctx context.Context, channelID, discordID int64) (*service.ActionOutcome, error)

func (f *Feature) handleAction(s *discordgo.Session, i *discordgo.InteractionCreate, req *request, verb string, action actionFunc) {
	outcome, err := action(context.Background(), req.channelID, req.userID)
	if err != nil {
		f.fail(s, i, req, err, "blackjack "+verb)
		return
	}

	headline := DescribeAction(verb, outcome.Result)
	if outcome.Result.Cost > 0 {
		headline += fmt.Sprintf(" Extra stake: %s.", common.FormatCoins(outcome.Result.Cost))
	}
	f.render(s, i, req, outcome.Session, headline)
}

func (f *Feature) handleInsurance(s *discordgo.Session, i *discordgo.InteractionCreate, req *request) {
	outcome, err := f.blackjackService.Insurance(context.Background(), req.channelID, req.userID)
	if err != nil {
		f.fail(s, i, req, err, "blackjack insurance")
		return
	}
	f.render(s, i, req, outcome.Session, fmt.Sprintf("**%s** buys insurance for %s.", outcome.Player.Username, common.FormatCoins(outcome.Cost)))
}

func (f *Feature) handleStatus(s *discordgo.Session, i *discordgo.InteractionCreate, req *request) {
	ctx := context.Background()

	game, err := f.blackjackService.Current(ctx, req.channelID)
	if errors.Is(err, bj.ErrNoActiveGame) {
		recent, err := f.blackjackService.Recent(ctx, req.channelID, recentGamesShown)
		if err != nil {
			f.fail(s, i, req, err, "blackjack status")
			return
		}
		if err := common.RespondWithEmbed(s, i, BuildRecentEmbed(recent), nil, false); err != nil {
			log.Errorf("Error responding to blackjack status: %v", err)
		}
		return
	}
	if err != nil {
		f.fail(s, i, req, err, "blackjack status")
		return
	}

	// A game stuck in the dealer's turn is settled here
	f.render(s, i, req, game, "")
}

// render shows the table and plays the dealer once nobody is left to act
func (f *Feature) render(s *discordgo.Session, i *discordgo.InteractionCreate, req *request, game *bj.Session, headline string) {
	if game.Status == bj.StatusDealerTurn {
		outcome, err := f.blackjackService.PlayDealer(context.Background(), req.channelID)
		switch {
		case err == nil:
			f.send(s, i, req, BuildSettlementEmbed(outcome.Session, outcome.Settlement, headline), BuildTableComponents(outcome.Session))
			return
		case errors.Is(err, bj.ErrNoActiveGame):
			// Another interaction settled it first
		default:
			log.WithFields(log.Fields{
				"gameID":    game.ID,
				"channelID": req.channelID,
			}).WithError(err).Error("Failed to play dealer")
		}
	}
	f.send(s, i, req, BuildTableEmbed(game, f.minBet, headline), BuildTableComponents(game))
}

func (f *Feature) send(s *discordgo.Session, i *discordgo.InteractionCreate, req *request, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) {
	var err error
	if req.fromButton {
		err = common.UpdateComponentMessage(s, i, embed, components)
	} else {
		err = common.RespondWithEmbed(s, i, embed, components, false)
	}
	if err != nil {
		log.Errorf("Error sending blackjack table: %v", err)
	}
}

// fail reports err to the player. A button on a table that no longer exists
// is disabled instead.
func (f *Feature) fail(s *discordgo.Session, i *discordgo.InteractionCreate, req *request, err error, action string) {
	if req.fromButton && errors.Is(err, bj.ErrNoActiveGame) && i.Message != nil && len(i.Message.Embeds) > 0 {
		if err := common.UpdateComponentMessage(s, i, i.Message.Embeds[0], common.DisableComponents(i.Message.Components)); err != nil {
			log.Errorf("Error disabling stale blackjack buttons: %v", err)
		}
		return
	}
	common.RespondWithServiceError(s, i, err, action)
}
