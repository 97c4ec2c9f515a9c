package handlers

import (
	"fmt"
	log "log/slog"
	"strings"

	"discord-blog/chat"
	"discord-blog/command"
	"discord-blog/models"
	"discord-blog/post"

	"github.com/bwmarrin/discordgo"
)

// cmdHelp answers with the usage text. The help message stays until it is
// closed with the delete reaction.
func (b *Blogger) cmdHelp(inv *command.Invocation) error {
	msg, err := b.channel.Reply(inv.Message, command.HelpText(b.cfg.BaseURL), 0)
	if err != nil {
		return err
	}
	return b.channel.React(msg.ID, command.EmojiDelete)
}

// cmdRegenerate rebuilds the whole site right away.
func (b *Blogger) cmdRegenerate(inv *command.Invocation) error {
	if !b.auth.CheckPermission(inv.Message.Member, chat.AuthorID(inv.Message), command.LevelAdmin) {
		b.reply(inv.Message, fmt.Sprintf("ERROR: You are not allowed to run '%s'", command.Regenerate))
		return nil
	}
	if err := b.regen.RunNow(b.ctx, true); err != nil {
		return err
	}
	b.reply(inv.Message, "Regenerated content")
	return nil
}

// cmdReplyAdd saves the media of message into the post announced by parent.
func (b *Blogger) cmdReplyAdd(message, parent *discordgo.Message) (*discordgo.Message, error) {
	path, _, ok := b.announcedPost(parent)
	if !ok {
		return parent, errNotAPost
	}
	if !b.store.Exists(path) {
		return parent, fmt.Errorf("%w: %s", post.ErrNotFound, path)
	}

	saved, err := b.ingest.SaveAttachments(b.ctx, message.Attachments, b.store.SourceDir(path))
	if err != nil {
		return parent, err
	}
	if len(saved) == 0 {
		b.reply(message, "ERROR: No attached media to add")
		return parent, nil
	}
	if err := b.store.AppendSource(path, "\n"+post.EmbedAll(saved)); err != nil {
		return parent, err
	}

	b.regen.Request()
	b.reply(message, fmt.Sprintf("Added media to post <%s>", b.postURL(path)))
	log.Info("added media to post", "path", path, "media", len(saved))
	b.record(models.ActionAdded, path, message, parent.ID)
	return parent, nil
}

// cmdReplyDelete removes the post announced by parent along with the
// announcement.
func (b *Blogger) cmdReplyDelete(message, parent *discordgo.Message) (*discordgo.Message, error) {
	path, _, ok := b.announcedPost(parent)
	if !ok {
		return parent, errNotAPost
	}
	if err := b.store.Delete(path); err != nil {
		log.Error("failed to delete post", "path", path, "err", err)
		b.reply(message, "ERROR: Failed to delete post")
		return parent, nil
	}

	b.regen.Request()
	if err := b.channel.Delete(parent.ID, b.cfg.Timing.MessageDeleteDelay); err != nil {
		log.Warn("failed to delete announcement", "message_id", parent.ID, "err", err)
	}
	b.reply(message, fmt.Sprintf("Deleted post <%s>", b.postURL(path)))
	log.Info("deleted post", "path", path)
	b.record(models.ActionDeleted, path, message, parent.ID)
	return nil, nil
}

// cmdReplyPublish moves a draft into the published namespace.
func (b *Blogger) cmdReplyPublish(message, parent *discordgo.Message) (*discordgo.Message, error) {
	return b.move(message, parent, false)
}

// cmdReplyUnpublish moves a published post back to the drafts.
func (b *Blogger) cmdReplyUnpublish(message, parent *discordgo.Message) (*discordgo.Message, error) {
	return b.move(message, parent, true)
}

func (b *Blogger) move(message, parent *discordgo.Message, toDraft bool) (*discordgo.Message, error) {
	path, isDraft, ok := b.announcedPost(parent)
	if !ok {
		return parent, errNotAPost
	}

	var (
		stateErr, failure, done string
		fromVerb, toVerb        string
		action                  string
	)
	if toDraft {
		stateErr, failure, done = "ERROR: Post is already a draft", "ERROR: Failed to unpublish post", "Unpublished post"
		fromVerb, toVerb = publishedVerb, draftedVerb
		action = models.ActionUnpublished
	} else {
		stateErr, failure, done = "ERROR: Post is not a draft", "ERROR: Failed to publish post", "Published post"
		fromVerb, toVerb = draftedVerb, publishedVerb
		action = models.ActionPublished
	}

	if isDraft == toDraft {
		b.reply(message, stateErr)
		return parent, nil
	}
	newPath, err := b.store.Move(path, toDraft, b.cfg.Location())
	if err != nil {
		log.Error("failed to move post", "path", path, "to_draft", toDraft, "err", err)
		b.reply(message, failure)
		return parent, nil
	}

	b.regen.Request()
	b.reply(message, done)
	log.Info("moved post", "from", path, "to", newPath)
	b.record(action, newPath, message, parent.ID)

	content := strings.ReplaceAll(parent.Content, fromVerb, toVerb)
	content = strings.ReplaceAll(content, path, newPath)
	edited, err := b.channel.Edit(parent.ID, content)
	if err != nil {
		return parent, fmt.Errorf("post moved to %s but announcement not updated: %w", newPath, err)
	}
	b.touchPrev(edited)
	b.applyReactions(edited.ID, toDraft)
	return edited, nil
}
