package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

func userOption(description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "user",
		Description: description,
		Required:    required,
	}
}

func amountOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "amount",
		Description: description,
		Required:    true,
	}
}

func subCommand(name, description string, options ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        name,
		Description: description,
		Options:     options,
	}
}

// commands returns every slash command the bot serves
func (b *Bot) commands() []*discordgo.ApplicationCommand {
	minBet := float64(b.config.MinBet)

	return []*discordgo.ApplicationCommand{
		{
			Name:        "blackjack",
			Description: "Play multiplayer blackjack in this channel",
			Options: []*discordgo.ApplicationCommandOption{
				subCommand("create", "Open a blackjack table in this channel"),
				subCommand("join", "Take a seat at the table",
					&discordgo.ApplicationCommandOption{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "bet",
						Description: "Amount to bet in coins",
						Required:    true,
						MinValue:    &minBet,
					},
				),
				subCommand("start", "Deal the cards (host only)"),
				subCommand("cancel", "Close the table and refund all bets (host only)"),
				subCommand("hit", "Draw another card"),
				subCommand("stand", "Keep your hand"),
				subCommand("double", "Double your bet and draw exactly one card"),
				subCommand("split", "Split a pair into two hands"),
				subCommand("insurance", "Insure against a dealer blackjack"),
				subCommand("status", "Show the table in this channel"),
			},
		},
		{
			Name:        "balance",
			Description: "Check your current balance",
		},
		{
			Name:        "stats",
			Description: "View player statistics",
			Options: []*discordgo.ApplicationCommandOption{
				subCommand("scoreboard", "Display the top players scoreboard"),
				subCommand("player", "Display statistics for a player",
					userOption("User to check stats for (defaults to you)", false),
				),
			},
		},
		{
			Name:        "admin",
			Description: "Manage player balances (admins only)",
			Options: []*discordgo.ApplicationCommandOption{
				subCommand("give", "Give coins to a player",
					userOption("Player to credit", true),
					amountOption("Coins to give"),
				),
				subCommand("take", "Take coins from a player",
					userOption("Player to debit", true),
					amountOption("Coins to take"),
				),
				subCommand("set", "Set a player's balance",
					userOption("Player to update", true),
					amountOption("New balance"),
				),
				subCommand("info", "Show a player's account and recent transactions",
					userOption("Player to inspect", true),
				),
			},
		},
	}
}

// registerCommands registers all slash commands with Discord. Commands are
// scoped to the configured guild when there is one.
func (b *Bot) registerCommands() error {
	for _, cmd := range b.commands() {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}
	return nil
}
