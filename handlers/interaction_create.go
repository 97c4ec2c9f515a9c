package handlers

import (
	"fmt"
	log "log/slog"

	"discord-blog/command"
	"discord-blog/eventloop"

	"github.com/bwmarrin/discordgo"
)

// RunSlash runs a standalone command invoked as a slash command and returns
// the response text.
func (b *Blogger) RunSlash(name command.Name, member *discordgo.Member, userID string) string {
	def, ok := command.Lookup(command.Key{Name: name})
	if !ok {
		return fmt.Sprintf("ERROR: unknown command '%s'", name)
	}
	if !b.auth.CheckPermission(member, userID, def.Level) {
		return fmt.Sprintf("ERROR: You are not allowed to run '%s'", name)
	}

	switch name {
	case command.Help:
		return command.HelpText(b.cfg.BaseURL)
	case command.Regenerate:
		if err := eventloop.Protect(func() error { return b.regen.RunNow(b.ctx, true) }); err != nil {
			log.Error("slash regenerate failed", "user", userID, "err", err)
			return command.FailureText(err)
		}
		return "Regenerated content"
	}
	return fmt.Sprintf("ERROR: unknown command '%s'", name)
}

// interactionCreate handles slash command interactions. The response is
// deferred while the command runs on the event loop.
func (h *handler) interactionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	rt := h.runtime.Load()
	if rt == nil {
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		log.Error("failed to acknowledge interaction", "err", err)
		return
	}

	name := command.Name(i.ApplicationCommandData().Name)
	userID := ""
	if u := interactionUser(i); u != nil {
		userID = u.ID
	}
	h.bot.Loop.Go(func() {
		content := rt.blogger.RunSlash(name, i.Member, userID)
		if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &content}); err != nil {
			log.Error("failed to send interaction response", "command", name, "err", err)
		}
	})
}

func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}
