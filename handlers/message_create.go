package handlers

import (
	"github.com/bwmarrin/discordgo"
)

// messageCreate queues every message posted to the blog channel by someone
// other than the bot.
func (h *handler) messageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	rt := h.runtime.Load()
	if rt == nil || m.Author == nil {
		return
	}
	// Ignore all messages created by the bot itself
	if m.Author.ID == rt.botID {
		return
	}
	if m.ChannelID != rt.channelID {
		return
	}
	rt.queue.Push(m.Message)
}
