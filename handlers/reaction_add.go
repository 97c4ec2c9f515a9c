package handlers

import (
	log "log/slog"
	"strings"

	"discord-blog/chat"
	"discord-blog/command"
	"discord-blog/eventloop"

	"github.com/bwmarrin/discordgo"
)

// HandleReaction runs the action bound to emoji on one of the bot's
// messages. The announcement acts as both the invoking and the parent
// message; its reactions are reset afterwards.
func (b *Blogger) HandleReaction(messageID, userID, emoji string) error {
	if userID == b.botID {
		return nil
	}
	m, err := b.channel.Message(messageID)
	if err != nil {
		return err
	}
	if chat.AuthorID(m) != b.botID {
		return nil
	}

	if strings.HasSuffix(chat.Text(m), command.HelpEnd) {
		if emoji == command.EmojiDelete {
			return b.channel.Delete(m.ID, 0)
		}
		return nil
	}

	name, ok := command.ForEmoji(emoji)
	if !ok {
		return nil
	}
	if _, _, ok := b.announcedPost(m); !ok {
		return b.channel.ClearReactions(m.ID)
	}

	log.Info("running reaction command", "command", name, "message_id", m.ID, "user", userID)
	var result *discordgo.Message
	err = eventloop.Protect(func() error {
		var err error
		result, err = b.replyAction(name)(m, m)
		return err
	})
	if err != nil {
		b.reply(m, command.FailureText(err))
	}
	if result != m {
		// Deleted, or replaced by an edit that already reset its reactions.
		return err
	}

	if _, isDraft, ok := b.announcedPost(result); ok {
		b.applyReactions(result.ID, isDraft)
	} else if cerr := b.channel.ClearReactions(result.ID); cerr != nil {
		log.Warn("failed to clear reactions", "message_id", result.ID, "err", cerr)
	}
	return err
}

// reactionAdd returns the gateway handler queuing reactions onto the loop.
func (h *handler) reactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	rt := h.runtime.Load()
	if rt == nil || r.ChannelID != rt.channelID {
		return
	}
	emoji := r.Emoji.Name
	h.bot.Loop.Go(func() {
		if err := rt.blogger.HandleReaction(r.MessageID, r.UserID, emoji); err != nil {
			log.Error("failed to handle reaction", "message_id", r.MessageID, "emoji", emoji, "err", err)
		}
	})
}
