package bot

import (
	log "log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Channel implements chat.Channel for one Discord text channel.
type Channel struct {
	s  *discordgo.Session
	id string
}

// NewChannel binds a session to the channel with the given id.
func NewChannel(s *discordgo.Session, channelID string) *Channel {
	return &Channel{s: s, id: channelID}
}

// ID returns the channel id.
func (c *Channel) ID() string {
	return c.id
}

// Send implements chat.Channel.
func (c *Channel) Send(content string) (*discordgo.Message, error) {
	return c.s.ChannelMessageSend(c.id, content)
}

// Reply implements chat.Channel. If to is already gone the content is sent
// as a plain message.
func (c *Channel) Reply(to *discordgo.Message, content string, deleteAfter time.Duration) (*discordgo.Message, error) {
	m, err := c.s.ChannelMessageSendReply(c.id, content, to.SoftReference())
	if err != nil {
		return nil, err
	}
	if deleteAfter > 0 {
		c.Delete(m.ID, deleteAfter)
	}
	return m, nil
}

// Edit implements chat.Channel.
func (c *Channel) Edit(messageID, content string) (*discordgo.Message, error) {
	return c.s.ChannelMessageEdit(c.id, messageID, content)
}

// Delete implements chat.Channel. Delayed deletions run in the background
// and only log failures.
func (c *Channel) Delete(messageID string, after time.Duration) error {
	if after <= 0 {
		return c.s.ChannelMessageDelete(c.id, messageID)
	}
	time.AfterFunc(after, func() {
		if err := c.s.ChannelMessageDelete(c.id, messageID); err != nil {
			log.Debug("delayed delete failed", "message_id", messageID, "err", err)
		}
	})
	return nil
}

// Message implements chat.Channel.
func (c *Channel) Message(messageID string) (*discordgo.Message, error) {
	return c.s.ChannelMessage(c.id, messageID)
}

// ClearReactions implements chat.Channel.
func (c *Channel) ClearReactions(messageID string) error {
	return c.s.MessageReactionsRemoveAll(c.id, messageID)
}

// React implements chat.Channel.
func (c *Channel) React(messageID, emoji string) error {
	return c.s.MessageReactionAdd(c.id, messageID, emoji)
}
