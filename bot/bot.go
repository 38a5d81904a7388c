package bot

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"casino/bot/features/admin"
	"casino/bot/features/balance"
	"casino/bot/features/blackjack"
	"casino/bot/features/stats"
	"casino/events"
	"casino/observability"
	"casino/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	Token             string
	GuildID           string
	HighRollerRoleID  string
	HighRollerEnabled bool
	MinBet            int64
	Metrics           *observability.MetricsProvider
}

type Bot struct {
	config      Config
	session     *discordgo.Session
	userService service.UserService
	eventBus    *events.Bus

	blackjackFeature *blackjack.Feature
	balanceFeature   *balance.Feature
	adminFeature     *admin.Feature
	statsFeature     *stats.Feature
}

func New(config Config, userService service.UserService, blackjackService service.BlackjackService, adminService service.AdminService, eventBus *events.Bus) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers

	bot := &Bot{
		config:           config,
		session:          dg,
		userService:      userService,
		eventBus:         eventBus,
		blackjackFeature: blackjack.New(blackjackService, config.MinBet),
		balanceFeature:   balance.New(userService),
		adminFeature:     admin.New(adminService),
		statsFeature:     stats.NewFeature(userService),
	}

	// Register slash command handlers
	dg.AddHandler(bot.handleCommands)

	// Register component interaction handlers
	dg.AddHandler(bot.handleComponents)

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	eventBus.Subscribe(events.EventTypeBlackjackFinished, logFinishedGame)

	// Subscribe to balance change events for high roller role updates
	if bot.config.HighRollerEnabled {
		eventBus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, event events.Event) {
			if _, ok := event.(events.BalanceChangeEvent); ok {
				if err := bot.updateHighRollerRole(ctx); err != nil {
					log.Errorf("Failed to update high roller role: %v", err)
				}
			}
		})
		log.Info("High roller role management enabled")

		go func() {
			// Wait a moment for Discord connection to be fully established
			time.Sleep(2 * time.Second)
			if err := bot.updateHighRollerRole(context.Background()); err != nil {
				log.Errorf("Failed to sync high roller role on startup: %v", err)
			} else {
				log.Info("High roller role synced on startup")
			}
		}()
	}

	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	name := i.ApplicationCommandData().Name
	b.config.Metrics.RecordInteraction(observability.InteractionTypeCommand, name)

	switch name {
	case "blackjack":
		b.blackjackFeature.HandleCommand(s, i)
	case "balance":
		b.balanceFeature.HandleCommand(s, i)
	case "admin":
		b.adminFeature.HandleCommand(s, i)
	case "stats":
		b.statsFeature.HandleCommand(s, i)
	}
}

func (b *Bot) handleComponents(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	b.config.Metrics.RecordInteraction(observability.InteractionTypeComponent, i.MessageComponentData().CustomID)
	b.blackjackFeature.HandleInteraction(s, i)
}

// logFinishedGame writes one structured line per settled game
func logFinishedGame(ctx context.Context, event events.Event) {
	finished, ok := event.(events.BlackjackFinishedEvent)
	if !ok {
		return
	}

	var wagered, paid int64
	for _, p := range finished.Players {
		wagered += p.Bet
		paid += p.Payout
	}
	log.WithFields(log.Fields{
		"gameID":      finished.GameID,
		"guildID":     finished.GuildID,
		"channelID":   finished.ChannelID,
		"dealerValue": finished.DealerValue,
		"dealerBust":  finished.DealerBust,
		"players":     len(finished.Players),
		"wagered":     wagered,
		"paid":        paid,
	}).Info("Blackjack game finished")
}

// updateHighRollerRole checks and updates the high roller role assignment
func (b *Bot) updateHighRollerRole(ctx context.Context) error {
	if !b.config.HighRollerEnabled || b.config.HighRollerRoleID == "" || b.config.GuildID == "" {
		return nil
	}

	highRoller, err := b.userService.GetCurrentHighRoller(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current high roller: %w", err)
	}
	if highRoller == nil {
		// No users with coins yet
		return nil
	}

	members, err := b.session.GuildMembers(b.config.GuildID, "", 1000)
	if err != nil {
		return fmt.Errorf("failed to get guild members: %w", err)
	}

	highRollerDiscordID := strconv.FormatInt(highRoller.DiscordID, 10)
	hasRole := false

	for _, member := range members {
		if !memberHasRole(member, b.config.HighRollerRoleID) {
			continue
		}
		if member.User.ID == highRollerDiscordID {
			hasRole = true
			continue
		}
		if err := b.session.GuildMemberRoleRemove(b.config.GuildID, member.User.ID, b.config.HighRollerRoleID); err != nil {
			log.Errorf("Failed to remove high roller role from user %s: %v", member.User.ID, err)
		} else {
			log.Infof("Removed high roller role from user %s", member.User.ID)
		}
	}

	if !hasRole {
		if err := b.session.GuildMemberRoleAdd(b.config.GuildID, highRollerDiscordID, b.config.HighRollerRoleID); err != nil {
			log.Errorf("Failed to add high roller role to user %s: %v", highRollerDiscordID, err)
		} else {
			log.WithFields(log.Fields{
				"discordID": highRollerDiscordID,
				"balance":   highRoller.Balance,
			}).Info("Added high roller role")
		}
	}

	return nil
}

func memberHasRole(member *discordgo.Member, roleID string) bool {
	for _, id := range member.Roles {
		if id == roleID {
			return true
		}
	}
	return false
}
