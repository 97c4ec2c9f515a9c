// Package chattest provides an in-memory chat.Channel for tests.
package chattest

import (
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

// BotID is the user id of the fake bot.
const BotID = "999"

// Reply records a reply sent through the fake channel.
type Reply struct {
	To          string
	Content     string
	DeleteAfter time.Duration
}

// Deletion records a delete request.
type Deletion struct {
	MessageID string
	After     time.Duration
}

// Channel is an in-memory chat.Channel. It is safe for concurrent use.
type Channel struct {
	mu        sync.Mutex
	nextID    int
	Now       func() time.Time
	Messages  map[string]*discordgo.Message
	Reactions map[string][]string
	Replies   []Reply
	Sent      []string
	Deleted   []Deletion
	// Cleared lists the message ids passed to ClearReactions.
	Cleared []string
	// FailFetch makes Message return an error for these ids.
	FailFetch map[string]bool
}

// New returns an empty fake channel.
func New() *Channel {
	return &Channel{
		nextID:    1000,
		Now:       time.Now,
		Messages:  make(map[string]*discordgo.Message),
		Reactions: make(map[string][]string),
		FailFetch: make(map[string]bool),
	}
}

func (c *Channel) newMessage(content string) *discordgo.Message {
	c.nextID++
	m := &discordgo.Message{
		ID:        strconv.Itoa(c.nextID),
		ChannelID: "chan",
		Content:   content,
		Timestamp: c.Now(),
		Author:    &discordgo.User{ID: BotID, Username: "blogbot", Bot: true},
	}
	c.Messages[m.ID] = m
	return m
}

// Send implements chat.Channel.
func (c *Channel) Send(content string) (*discordgo.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Sent = append(c.Sent, content)
	return c.newMessage(content), nil
}

// Reply implements chat.Channel. Replying to a message that was deleted
// without delay fails.
func (c *Channel) Reply(to *discordgo.Message, content string, deleteAfter time.Duration) (*discordgo.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if slices.Contains(c.Deleted, Deletion{MessageID: to.ID}) {
		return nil, fmt.Errorf("unknown message %s", to.ID)
	}
	c.Replies = append(c.Replies, Reply{To: to.ID, Content: content, DeleteAfter: deleteAfter})
	m := c.newMessage(content)
	m.MessageReference = &discordgo.MessageReference{MessageID: to.ID, ChannelID: to.ChannelID}
	return m, nil
}

// Edit implements chat.Channel.
func (c *Channel) Edit(messageID, content string) (*discordgo.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.Messages[messageID]
	if !ok {
		return nil, fmt.Errorf("unknown message %s", messageID)
	}
	edited := *m
	edited.Content = content
	now := c.Now()
	edited.EditedTimestamp = &now
	c.Messages[messageID] = &edited
	return &edited, nil
}

// Delete implements chat.Channel. Deletions take effect immediately
// regardless of the delay, which is only recorded.
func (c *Channel) Delete(messageID string, after time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Deleted = append(c.Deleted, Deletion{MessageID: messageID, After: after})
	delete(c.Messages, messageID)
	return nil
}

// Message implements chat.Channel.
func (c *Channel) Message(messageID string) (*discordgo.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.FailFetch[messageID] {
		return nil, fmt.Errorf("fetch of %s failed", messageID)
	}
	m, ok := c.Messages[messageID]
	if !ok {
		return nil, fmt.Errorf("unknown message %s", messageID)
	}
	return m, nil
}

// ClearReactions implements chat.Channel.
func (c *Channel) ClearReactions(messageID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Cleared = append(c.Cleared, messageID)
	delete(c.Reactions, messageID)
	return nil
}

// React implements chat.Channel.
func (c *Channel) React(messageID, emoji string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Reactions[messageID] = append(c.Reactions[messageID], emoji)
	return nil
}

// Put stores a message as if it had been posted by someone else.
func (c *Channel) Put(m *discordgo.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Messages[m.ID] = m
}

// ReplyContents returns the content of every reply so far.
func (c *Channel) ReplyContents() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.Replies))
	for _, r := range c.Replies {
		out = append(out, r.Content)
	}
	return out
}

// WasDeleted reports whether a delete was requested for messageID.
func (c *Channel) WasDeleted(messageID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.ContainsFunc(c.Deleted, func(d Deletion) bool { return d.MessageID == messageID })
}
