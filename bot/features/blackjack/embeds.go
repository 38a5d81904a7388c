package blackjack

import (
	"fmt"
	"strings"
	"time"

	bj "casino/blackjack"
	"casino/bot/common"

	"github.com/bwmarrin/discordgo"
)

// Button custom IDs
const (
	buttonPrefix    = "blackjack_"
	buttonStart     = buttonPrefix + "start"
	buttonCancel    = buttonPrefix + "cancel"
	buttonHit       = buttonPrefix + "hit"
	buttonStand     = buttonPrefix + "stand"
	buttonDouble    = buttonPrefix + "double"
	buttonSplit     = buttonPrefix + "split"
	buttonInsurance = buttonPrefix + "insurance"
)

const hiddenCard = "🂠"

// BuildTableEmbed renders a game. The dealer's hole card stays hidden until
// the players are done acting.
func BuildTableEmbed(game *bj.Session, minBet int64, headline string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:     "🃏 Blackjack",
		Color:     statusColor(game.Status),
		Timestamp: time.Now().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Game #%d · Host: %s", game.ID, game.HostName),
		},
	}

	var description []string
	if headline != "" {
		description = append(description, headline)
	}
	description = append(description, statusLine(game, minBet))
	embed.Description = strings.Join(description, "\n")

	if dealer := dealerField(game); dealer != nil {
		embed.Fields = append(embed.Fields, dealer)
	}
	for _, p := range game.Players {
		embed.Fields = append(embed.Fields, playerField(game, p))
	}
	return embed
}

// BuildSettlementEmbed renders a settled game with the dealer's play
func BuildSettlementEmbed(game *bj.Session, settlement *bj.Settlement, headline string) *discordgo.MessageEmbed {
	var lines []string
	if headline != "" {
		lines = append(lines, headline)
	}
	if len(settlement.Drawn) > 0 {
		lines = append(lines, fmt.Sprintf("Dealer draws `%s`.", bj.Hand(settlement.Drawn)))
	}
	switch {
	case settlement.DealerBlackjack:
		lines = append(lines, "Dealer has **blackjack**!")
	case settlement.DealerBust:
		lines = append(lines, fmt.Sprintf("Dealer **busts** with %d!", settlement.DealerValue))
	default:
		lines = append(lines, fmt.Sprintf("Dealer stands on **%d**.", settlement.DealerValue))
	}
	return BuildTableEmbed(game, 0, strings.Join(lines, "\n"))
}

// BuildRecentEmbed summarizes the channel's latest closed games
func BuildRecentEmbed(games []*bj.Session) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "🃏 Blackjack",
		Color:       common.ColorInfo,
		Description: "No game is running here. Start one with `/blackjack create`.",
	}
	if len(games) == 0 {
		return embed
	}

	for _, game := range games {
		var lines []string
		for _, p := range game.Players {
			if game.Status == bj.StatusCancelled {
				lines = append(lines, fmt.Sprintf("%s · refunded", p.Username))
				continue
			}
			lines = append(lines, fmt.Sprintf("%s %s · %s", resultEmoji(p.Result), p.Username, common.FormatSignedCoins(NetResult(p))))
		}
		if len(lines) == 0 {
			lines = append(lines, "No players")
		}

		name := fmt.Sprintf("Game #%d · %s", game.ID, game.Status)
		if game.Status == bj.StatusFinished {
			name = fmt.Sprintf("Game #%d · dealer %d", game.ID, game.Dealer.Value())
		}
		if game.FinishedAt != nil {
			name += " · " + common.FormatDiscordTimestamp(*game.FinishedAt, "R")
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  name,
			Value: strings.Join(lines, "\n"),
		})
	}
	return embed
}

// BuildTableComponents returns the buttons that make sense for the game's state
func BuildTableComponents(game *bj.Session) []discordgo.MessageComponent {
	switch game.Status {
	case bj.StatusWaiting:
		return []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{Label: "Deal", Style: discordgo.SuccessButton, CustomID: buttonStart},
					discordgo.Button{Label: "Cancel", Style: discordgo.DangerButton, CustomID: buttonCancel},
				},
			},
		}
	case bj.StatusPlaying:
		up, _ := game.DealerUpCard()
		return []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{Label: "Hit", Style: discordgo.PrimaryButton, CustomID: buttonHit},
					discordgo.Button{Label: "Stand", Style: discordgo.SecondaryButton, CustomID: buttonStand},
					discordgo.Button{Label: "Double", Style: discordgo.SecondaryButton, CustomID: buttonDouble},
					discordgo.Button{Label: "Split", Style: discordgo.SecondaryButton, CustomID: buttonSplit},
					discordgo.Button{Label: "Insurance", Style: discordgo.SecondaryButton, CustomID: buttonInsurance, Disabled: up.Rank != bj.Ace},
				},
			},
		}
	default:
		return []discordgo.MessageComponent{}
	}
}

// DescribeAction renders one line about what a player just did
func DescribeAction(verb string, result *bj.ActionResult) string {
	line := fmt.Sprintf("**%s** %s", result.Player.Username, verb)
	if len(result.Drawn) > 0 {
		line += fmt.Sprintf(" and draws `%s`", bj.Hand(result.Drawn))
	}
	if result.Hand != nil {
		line += fmt.Sprintf(" (%s)", handTotal(result.Hand.Cards))
	}
	switch result.Status {
	case bj.HandBust:
		line += " 💥 **Bust!**"
	case bj.HandBlackjack:
		line += " ✨ **Blackjack!**"
	}
	return line + "."
}

// NetResult is what the game did to a player's balance
func NetResult(p *bj.Player) int64 {
	return p.Payout + p.InsurancePayout - p.Bet - p.InsuranceAmount
}

func statusLine(game *bj.Session, minBet int64) string {
	switch game.Status {
	case bj.StatusWaiting:
		line := "Waiting for players. Join with `/blackjack join <bet>`"
		if minBet > 0 {
			line += fmt.Sprintf(" (minimum %s)", common.FormatCoins(minBet))
		}
		return line + fmt.Sprintf(". %s deals when ready.", common.Mention(game.HostID))
	case bj.StatusPlaying:
		if p := game.CurrentPlayer(); p != nil {
			return fmt.Sprintf("It's %s's turn.", common.Mention(p.DiscordID))
		}
		return "Waiting for the next player."
	case bj.StatusDealerTurn:
		return "Dealer is playing..."
	case bj.StatusFinished:
		return "Game over."
	case bj.StatusCancelled:
		return "Game cancelled. All stakes were refunded."
	}
	return ""
}

func dealerField(game *bj.Session) *discordgo.MessageEmbedField {
	if len(game.Dealer) == 0 {
		return nil
	}
	value := fmt.Sprintf("`%s` (%s)", game.Dealer, handTotal(game.Dealer))
	if game.Status == bj.StatusPlaying {
		up := game.Dealer[0]
		value = fmt.Sprintf("`%s %s` (showing %d)", up, hiddenCard, up.Points())
	}
	return &discordgo.MessageEmbedField{Name: "Dealer", Value: value}
}

func playerField(game *bj.Session, p *bj.Player) *discordgo.MessageEmbedField {
	name := fmt.Sprintf("%s · %s", p.Username, common.FormatCoins(p.Bet))
	acting := game.Status == bj.StatusPlaying && game.CurrentTurn == p.JoinOrder
	if acting {
		name = "▶ " + name
	}

	var lines []string
	for idx, h := range p.Hands {
		if len(h.Cards) == 0 {
			continue
		}
		marker := ""
		if acting && p.IsSplit() && idx == p.ActiveHand {
			marker = "👉 "
		}
		line := fmt.Sprintf("%s`%s` (%s)", marker, h.Cards, handTotal(h.Cards))
		if h.Doubled {
			line += " · doubled"
		}
		if h.Status != bj.HandPlaying {
			line += " · " + string(h.Status)
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		lines = append(lines, "Waiting for the deal")
	}
	if p.HasInsurance {
		lines = append(lines, fmt.Sprintf("🛡️ Insured for %s", common.FormatCoins(p.InsuranceAmount)))
	}
	if p.Result != "" {
		lines = append(lines, fmt.Sprintf("%s **%s** · %s", resultEmoji(p.Result), p.Result, common.FormatSignedCoins(NetResult(p))))
	}

	return &discordgo.MessageEmbedField{
		Name:   name,
		Value:  strings.Join(lines, "\n"),
		Inline: true,
	}
}

func handTotal(h bj.Hand) string {
	if h.IsSoft() && !h.IsBlackjack() {
		return fmt.Sprintf("soft %d", h.Value())
	}
	return fmt.Sprintf("%d", h.Value())
}

func resultEmoji(result bj.Result) string {
	switch result {
	case bj.ResultBlackjack:
		return "✨"
	case bj.ResultWin:
		return "🎉"
	case bj.ResultPush:
		return "🤝"
	case bj.ResultLose:
		return "😔"
	}
	return "•"
}

func statusColor(status bj.Status) int {
	switch status {
	case bj.StatusWaiting:
		return common.ColorInfo
	case bj.StatusPlaying, bj.StatusDealerTurn:
		return common.ColorPrimary
	case bj.StatusFinished:
		return common.ColorSuccess
	default:
		return common.ColorWarning
	}
}
