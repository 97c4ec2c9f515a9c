package bot

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

var (
	// ErrGuildNotFound is returned when the bot is not a member of the configured guild.
	ErrGuildNotFound = errors.New("guild not accessible to bot")
	// ErrChannelNotFound is returned when the guild has no matching text channel.
	ErrChannelNotFound = errors.New("bot does not have access to the channel")
)

// GuildDirectory lists guilds and channels. *discordgo.Session satisfies it.
type GuildDirectory interface {
	UserGuilds(limit int, beforeID, afterID string, withCounts bool, options ...discordgo.RequestOption) ([]*discordgo.UserGuild, error)
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
}

// ResolveChannel finds the text channel named channelName in the guild named
// guildName and returns the ids of both.
func ResolveChannel(dir GuildDirectory, guildName, channelName string) (guildID, channelID string, err error) {
	after := ""
	for guildID == "" {
		guilds, err := dir.UserGuilds(200, "", after, false)
		if err != nil {
			return "", "", fmt.Errorf("failed to list guilds: %w", err)
		}
		for _, g := range guilds {
			if g.Name == guildName {
				guildID = g.ID
				break
			}
		}
		if guildID != "" {
			break
		}
		if len(guilds) < 200 {
			return "", "", fmt.Errorf("%w: %s", ErrGuildNotFound, guildName)
		}
		after = guilds[len(guilds)-1].ID
	}

	channels, err := dir.GuildChannels(guildID)
	if err != nil {
		return "", "", fmt.Errorf("failed to list channels of %s: %w", guildName, err)
	}
	for _, c := range channels {
		if c.Type == discordgo.ChannelTypeGuildText && c.Name == channelName {
			return guildID, c.ID, nil
		}
	}
	return "", "", fmt.Errorf("%w: #%s", ErrChannelNotFound, channelName)
}
