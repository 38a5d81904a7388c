package common

import (
	"strconv"

	"github.com/bwmarrin/discordgo"
)

// GetDisplayName returns the server-specific display name for a user
// Falls back to username if nickname is not set or if there's an error
func GetDisplayName(s *discordgo.Session, guildID, userID string) string {
	member, err := s.GuildMember(guildID, userID)
	if err == nil && member != nil {
		if member.Nick != "" {
			return member.Nick
		}
		if member.User != nil {
			return member.User.Username
		}
	}

	user, err := s.User(userID)
	if err == nil && user != nil {
		return user.Username
	}

	return "Unknown"
}

// GetDisplayNameInt64 is a convenience wrapper that accepts int64 user IDs
func GetDisplayNameInt64(s *discordgo.Session, guildID string, userID int64) string {
	return GetDisplayName(s, guildID, strconv.FormatInt(userID, 10))
}

// ParseID converts a Discord snowflake string to int64
func ParseID(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}

// Mention returns a Discord mention string for a user
func Mention(discordID int64) string {
	return "<@" + strconv.FormatInt(discordID, 10) + ">"
}

// Invoker returns the user behind an interaction in guilds and DMs alike
func Invoker(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}
