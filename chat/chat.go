// Package chat defines the subset of channel operations the bot needs.
package chat

import (
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Channel is the bot's view of the configured text channel.
type Channel interface {
	// Send posts a new message to the channel.
	Send(content string) (*discordgo.Message, error)
	// Reply answers a message. A positive deleteAfter removes the reply after that delay.
	Reply(to *discordgo.Message, content string, deleteAfter time.Duration) (*discordgo.Message, error)
	// Edit replaces the content of one of the bot's messages.
	Edit(messageID, content string) (*discordgo.Message, error)
	// Delete removes a message, after the given delay when positive.
	Delete(messageID string, after time.Duration) error
	// Message fetches a message by id.
	Message(messageID string) (*discordgo.Message, error)
	// ClearReactions removes every reaction from a message.
	ClearReactions(messageID string) error
	// React adds a unicode emoji reaction to a message.
	React(messageID, emoji string) error
}

// Text returns the message text with mentions replaced and surrounding
// whitespace removed.
func Text(m *discordgo.Message) string {
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m.ContentWithMentionsReplaced())
}

// IsReply reports whether m references another message.
func IsReply(m *discordgo.Message) bool {
	return m != nil && m.MessageReference != nil && m.MessageReference.MessageID != ""
}

// AuthorID returns the id of the message author, or "" when unknown.
func AuthorID(m *discordgo.Message) string {
	if m == nil || m.Author == nil {
		return ""
	}
	return m.Author.ID
}

// DisplayName returns the name shown for the author of m: the guild nickname,
// then the global display name, then the username.
func DisplayName(m *discordgo.Message) string {
	if m == nil || m.Author == nil {
		return ""
	}
	if m.Member != nil && m.Member.Nick != "" {
		return m.Member.Nick
	}
	if m.Author.GlobalName != "" {
		return m.Author.GlobalName
	}
	return m.Author.Username
}

// LastActivity returns when m was last edited, or when it was created.
func LastActivity(m *discordgo.Message) time.Time {
	if m.EditedTimestamp != nil && !m.EditedTimestamp.IsZero() {
		return *m.EditedTimestamp
	}
	return m.Timestamp
}
