package handlers

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"regexp"
	"strings"
	"time"

	"discord-blog/chat"
	"discord-blog/command"
	"discord-blog/database"
	"discord-blog/media"
	"discord-blog/models"
	"discord-blog/post"
	"discord-blog/site"
	"discord-blog/utils"

	"github.com/bwmarrin/discordgo"
)

const (
	draftedVerb   = "drafted a post"
	publishedVerb = "published a post"
)

// lastURL captures the last angle-bracketed token of an announcement.
var lastURL = regexp.MustCompile(`.*<([^>]+)>`)

// errNotAPost is returned when a reply or reaction targets a message that
// does not link to a post.
var errNotAPost = errors.New("message does not link to a post")

// prevPost remembers an author's latest announcement for implicit adds.
type prevPost struct {
	messageID string
	at        time.Time
}

// Blogger turns channel messages into posts and runs post commands.
// All methods must be called from the event loop.
type Blogger struct {
	ctx        context.Context
	cfg        *models.Config
	botID      string
	channel    chat.Channel
	store      *post.Store
	ingest     *media.Ingestor
	regen      *site.Regenerator
	journal    *database.Journal
	auth       *utils.Auth
	dispatcher *command.Dispatcher

	prev map[string]prevPost
	// consumed holds messages turned into post content; they are deleted
	// once processing and failure reporting are done.
	consumed map[string]bool
}

// Deps are the collaborators of a Blogger. Journal is optional.
type Deps struct {
	Config      *models.Config
	BotID       string
	Channel     chat.Channel
	Store       *post.Store
	Ingestor    *media.Ingestor
	Regenerator *site.Regenerator
	Journal     *database.Journal
	Auth        *utils.Auth
}

// NewBlogger wires a Blogger. ctx bounds downloads and synchronous rebuilds.
func NewBlogger(ctx context.Context, d Deps) *Blogger {
	b := &Blogger{
		ctx:      ctx,
		cfg:      d.Config,
		botID:    d.BotID,
		channel:  d.Channel,
		store:    d.Store,
		ingest:   d.Ingestor,
		regen:    d.Regenerator,
		journal:  d.Journal,
		auth:     d.Auth,
		prev:     make(map[string]prevPost),
		consumed: make(map[string]bool),
	}
	if b.auth == nil {
		b.auth = utils.NewAuth(models.AuthConfig{})
	}
	b.dispatcher = command.NewDispatcher(d.Channel, d.Config.Timing.MessageDeleteDelay, map[command.Key]command.Handler{
		{Name: command.Help}:                   b.cmdHelp,
		{Name: command.Regenerate}:             b.cmdRegenerate,
		{Reply: true, Name: command.Add}:       discardParent(b.cmdReplyAdd),
		{Reply: true, Name: command.Delete}:    discardParent(b.cmdReplyDelete),
		{Reply: true, Name: command.Publish}:   discardParent(b.cmdReplyPublish),
		{Reply: true, Name: command.Unpublish}: discardParent(b.cmdReplyUnpublish),
	})
	return b
}

// replyHandler runs a reply command and returns the parent message as it is
// afterwards, or nil when the parent was deleted.
type replyHandler func(message, parent *discordgo.Message) (*discordgo.Message, error)

func discardParent(h replyHandler) command.Handler {
	return func(inv *command.Invocation) error {
		_, err := h(inv.Message, inv.Parent)
		return err
	}
}

func (b *Blogger) replyAction(name command.Name) replyHandler {
	switch name {
	case command.Add:
		return b.cmdReplyAdd
	case command.Delete:
		return b.cmdReplyDelete
	case command.Publish:
		return b.cmdReplyPublish
	case command.Unpublish:
		return b.cmdReplyUnpublish
	}
	return nil
}

// ProcessMessage handles one message of a drained batch: a command, an
// implicit add to the author's previous post, or a new post.
func (b *Blogger) ProcessMessage(m *discordgo.Message) error {
	if b.dispatcher.Dispatch(m) {
		return nil
	}

	b.consumed[m.ID] = true
	if parent := b.implicitParent(m); parent != nil {
		log.Info("treating blank message as add", "message_id", m.ID, "announcement", parent.ID)
		_, err := b.cmdReplyAdd(m, parent)
		return err
	}
	return b.makePost(m)
}

// ReportFailure tells the author that their message could not be processed.
func (b *Blogger) ReportFailure(m *discordgo.Message, err error) {
	b.reply(m, command.FailureText(err))
}

// Finish deletes m if it was turned into post content. It runs after any
// reply to m has been sent.
func (b *Blogger) Finish(m *discordgo.Message) {
	if !b.consumed[m.ID] {
		return
	}
	delete(b.consumed, m.ID)
	b.deleteNow(m)
}

// implicitParent returns the announcement a blank message should be added
// to, or nil when the message starts something new.
func (b *Blogger) implicitParent(m *discordgo.Message) *discordgo.Message {
	if chat.Text(m) != "" {
		return nil
	}
	prev, ok := b.prev[chat.AuthorID(m)]
	if !ok {
		return nil
	}
	if m.Timestamp.Sub(prev.at) > b.cfg.Timing.ImplicitAddWindow {
		return nil
	}
	parent, err := b.channel.Message(prev.messageID)
	if err != nil {
		log.Warn("previous announcement unavailable", "message_id", prev.messageID, "err", err)
		return nil
	}
	return parent
}

// makePost creates a post from m and announces it.
func (b *Blogger) makePost(m *discordgo.Message) error {
	title, body, isDraft := post.ParseText(chat.Text(m))
	path, date, err := b.store.Reserve(m.Timestamp.In(b.cfg.Location()), isDraft)
	if err != nil {
		return err
	}

	saved, err := b.ingest.SaveAttachments(b.ctx, m.Attachments, b.store.SourceDir(path))
	if err != nil {
		b.release(path)
		return err
	}
	if len(saved) == 0 && body == "" {
		b.release(path)
		b.reply(m, "ERROR: Failed to post - no content or attached media")
		return nil
	}

	source, err := post.Render(&models.Post{
		Path:    path,
		Title:   title,
		Author:  chat.DisplayName(m),
		Date:    date,
		Body:    body,
		IsDraft: isDraft,
		Media:   saved,
	})
	if err == nil {
		err = b.store.WriteSource(path, source)
	}
	if err != nil {
		b.release(path)
		return err
	}
	b.regen.Request()

	verb := publishedVerb
	if isDraft {
		verb = draftedVerb
	}
	announcement, err := b.channel.Send(fmt.Sprintf("%s %s titled \"%s\": <%s>", mention(m), verb, title, b.postURL(path)))
	if err != nil {
		return fmt.Errorf("post %s created but not announced: %w", path, err)
	}
	b.applyReactions(announcement.ID, isDraft)
	b.prev[chat.AuthorID(m)] = prevPost{messageID: announcement.ID, at: chat.LastActivity(announcement)}

	log.Info("created post", "path", path, "title", title, "media", len(saved), "draft", isDraft)
	b.record(models.ActionCreated, path, m, announcement.ID)
	return nil
}

func mention(m *discordgo.Message) string {
	if m.Author == nil {
		return "Someone"
	}
	return m.Author.Mention()
}

func (b *Blogger) release(path string) {
	if err := b.store.Release(path); err != nil {
		log.Warn("failed to remove unused post directory", "path", path, "err", err)
	}
}

// postURL returns the public URL of the post at path.
func (b *Blogger) postURL(path string) string {
	return b.cfg.BaseURL + "/" + path
}

// announcedPost extracts the post path from an announcement and reports
// whether that path is a draft.
func (b *Blogger) announcedPost(m *discordgo.Message) (string, bool, bool) {
	match := lastURL.FindStringSubmatch(m.Content)
	if match == nil || match[1] == "" {
		return "", false, false
	}
	path := strings.TrimPrefix(match[1], b.cfg.BaseURL)
	if path == match[1] {
		if i := strings.Index(path, "://"); i >= 0 {
			rest := path[i+3:]
			if j := strings.Index(rest, "/"); j >= 0 {
				path = rest[j:]
			}
		}
	}
	path = strings.Trim(path, "/")
	if _, isDraft, err := post.ParsePath(path, b.cfg.Location()); err == nil {
		return path, isDraft, true
	}
	return "", false, false
}

// applyReactions resets the reactions of an announcement to the actions
// available for the post.
func (b *Blogger) applyReactions(messageID string, isDraft bool) {
	if err := b.channel.ClearReactions(messageID); err != nil {
		log.Warn("failed to clear reactions", "message_id", messageID, "err", err)
	}
	emojis := []string{command.EmojiDelete, command.EmojiUnpublish}
	if isDraft {
		emojis[1] = command.EmojiPublish
	}
	for _, e := range emojis {
		if err := b.channel.React(messageID, e); err != nil {
			log.Warn("failed to add reaction", "message_id", messageID, "emoji", e, "err", err)
		}
	}
}

// touchPrev refreshes the implicit-add window after an announcement edit.
func (b *Blogger) touchPrev(edited *discordgo.Message) {
	for author, p := range b.prev {
		if p.messageID == edited.ID {
			b.prev[author] = prevPost{messageID: edited.ID, at: chat.LastActivity(edited)}
		}
	}
}

func (b *Blogger) reply(m *discordgo.Message, content string) {
	if _, err := b.channel.Reply(m, content, b.cfg.Timing.MessageDeleteDelay); err != nil {
		log.Warn("failed to reply", "message_id", m.ID, "err", err)
	}
}

func (b *Blogger) deleteNow(m *discordgo.Message) {
	if err := b.channel.Delete(m.ID, 0); err != nil {
		log.Warn("failed to delete message", "message_id", m.ID, "err", err)
	}
}

func (b *Blogger) record(action, path string, m *discordgo.Message, messageID string) {
	if b.journal == nil {
		return
	}
	if _, err := b.journal.Record(models.PostEvent{
		Action:    action,
		Path:      path,
		AuthorID:  chat.AuthorID(m),
		MessageID: messageID,
	}); err != nil {
		log.Warn("failed to journal post event", "action", action, "path", path, "err", err)
	}
}
