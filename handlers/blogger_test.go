package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"discord-blog/chat/chattest"
	"discord-blog/command"
	"discord-blog/database"
	"discord-blog/eventloop"
	"discord-blog/media"
	"discord-blog/models"
	"discord-blog/post"
	"discord-blog/queue"
	"discord-blog/site"
	"discord-blog/utils"

	"github.com/bwmarrin/discordgo"
)

const baseURL = "https://blog.example.com"

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fakeFetcher map[string][]byte

func (f fakeFetcher) Fetch(_ context.Context, url string) (io.ReadCloser, error) {
	data, ok := f[url]
	if !ok {
		return nil, fmt.Errorf("%w: 404 for %s", media.ErrStatus, url)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type fakeGenerator struct {
	runs int
	err  error
}

func (g *fakeGenerator) Generate(context.Context) error {
	g.runs++
	return g.err
}

type fixture struct {
	blogger *Blogger
	channel *chattest.Channel
	store   *post.Store
	gen     *fakeGenerator
	regen   *site.Regenerator
	journal *database.Journal
}

func newFixture(t *testing.T, auth models.AuthConfig) *fixture {
	t.Helper()
	root := t.TempDir()
	cfg := &models.Config{
		BaseURL:   baseURL,
		DataDir:   filepath.Join(root, "content"),
		OutputDir: filepath.Join(root, "output"),
		Timing: models.TimingConfig{
			ImplicitAddWindow:  5 * time.Second,
			MessageDeleteDelay: 5 * time.Second,
		},
	}
	store, err := post.NewStore(cfg.DataDir, cfg.OutputDir)
	if err != nil {
		t.Fatal(err)
	}
	journal, err := database.OpenJournal(filepath.Join(root, "journal.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { journal.Close() })

	ch := chattest.New()
	ch.Now = func() time.Time { return t0 }
	gen := &fakeGenerator{}
	// The loop is never run: debounced rebuilds stay pending.
	regen := site.NewRegenerator(eventloop.New(0), gen, site.RegeneratorOptions{Delay: time.Hour, OutputDir: cfg.OutputDir})

	fetcher := fakeFetcher{
		"https://cdn.example/att/cat.png":  []byte("cat"),
		"https://cdn.example/att/dog.png":  []byte("dog"),
		"https://cdn.example/att/clip.mp4": []byte("clip"),
	}
	b := NewBlogger(context.Background(), Deps{
		Config:      cfg,
		BotID:       chattest.BotID,
		Channel:     ch,
		Store:       store,
		Ingestor:    media.NewIngestor(fetcher, 800, false),
		Regenerator: regen,
		Journal:     journal,
		Auth:        utils.NewAuth(auth),
	})
	return &fixture{blogger: b, channel: ch, store: store, gen: gen, regen: regen, journal: journal}
}

func attachment(name string) *discordgo.MessageAttachment {
	return &discordgo.MessageAttachment{URL: "https://cdn.example/att/" + name, Filename: name}
}

func userMessage(id, author, content string, at time.Time, atts ...*discordgo.MessageAttachment) *discordgo.Message {
	return &discordgo.Message{
		ID:          id,
		ChannelID:   "chan",
		Content:     content,
		Timestamp:   at,
		Author:      &discordgo.User{ID: author, Username: "user" + author},
		Attachments: atts,
	}
}

func replyTo(m *discordgo.Message, parentID string) *discordgo.Message {
	m.MessageReference = &discordgo.MessageReference{MessageID: parentID, ChannelID: "chan"}
	return m
}

func (f *fixture) process(t *testing.T, m *discordgo.Message) {
	t.Helper()
	if err := f.blogger.ProcessMessage(m); err != nil {
		t.Fatalf("ProcessMessage(%s): %v", m.ID, err)
	}
	f.blogger.Finish(m)
}

func (f *fixture) lastReply(t *testing.T) chattest.Reply {
	t.Helper()
	if len(f.channel.Replies) == 0 {
		t.Fatal("no reply sent")
	}
	return f.channel.Replies[len(f.channel.Replies)-1]
}

func (f *fixture) source(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.store.SourceDir(path), post.IndexFile))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func (f *fixture) actions(t *testing.T) []string {
	t.Helper()
	events, err := f.journal.Recent(100)
	if err != nil {
		t.Fatal(err)
	}
	var out []string
	for _, e := range events {
		out = append(out, e.Action)
	}
	slices.Sort(out)
	return out
}

func TestCreatePostThenImplicitAdd(t *testing.T) {
	f := newFixture(t, models.AuthConfig{})
	const path = "2024/05/01/12-00-00"

	f.process(t, userMessage("1", "7", "Hello\n\nFirst day", t0, attachment("cat.png")))

	wantAnnouncement := `<@7> published a post titled "Hello": <` + baseURL + "/" + path + ">"
	if len(f.channel.Sent) != 1 || f.channel.Sent[0] != wantAnnouncement {
		t.Fatalf("announcements = %q, want %q", f.channel.Sent, wantAnnouncement)
	}
	if !f.channel.WasDeleted("1") {
		t.Error("post message was not deleted")
	}
	src := f.source(t, path)
	for _, want := range []string{"Title: Hello\n", "Author: user7\n", "Date: 2024-05-01 12:00:00\n", "First day", "[cat.png]({static}cat.png)"} {
		if !strings.Contains(src, want) {
			t.Errorf("index.md missing %q:\n%s", want, src)
		}
	}
	if got := f.channel.Reactions["1001"]; !slices.Equal(got, []string{command.EmojiDelete, command.EmojiUnpublish}) {
		t.Errorf("reactions = %v", got)
	}
	if !f.regen.Pending() {
		t.Error("rebuild not requested")
	}

	// A blank message inside the window goes to the same post.
	f.process(t, userMessage("2", "7", "", t0.Add(3*time.Second), attachment("dog.png")))
	if r := f.lastReply(t); r.To != "2" || r.Content != "Added media to post <"+baseURL+"/"+path+">" {
		t.Errorf("reply = %+v", r)
	}
	if !f.channel.WasDeleted("2") {
		t.Error("add message was not deleted")
	}
	if src := f.source(t, path); !strings.HasSuffix(src, "\n[dog.png]({static}dog.png)") {
		t.Errorf("index.md does not end with the added media:\n%s", src)
	}
	if len(f.channel.Sent) != 1 {
		t.Errorf("implicit add announced a new post: %q", f.channel.Sent)
	}

	// Ten seconds past the window it is a new post attempt without content.
	f.process(t, userMessage("3", "7", "", t0.Add(15*time.Second)))
	if r := f.lastReply(t); r.To != "3" || r.Content != "ERROR: Failed to post - no content or attached media" || r.DeleteAfter != 5*time.Second {
		t.Errorf("reply = %+v", r)
	}
	if f.store.Exists("2024/05/01/12-00-15") {
		t.Error("empty post directory left behind")
	}
	if !f.channel.WasDeleted("3") {
		t.Error("failed post message was not deleted")
	}

	if got, want := f.actions(t), []string{models.ActionAdded, models.ActionCreated}; !slices.Equal(got, want) {
		t.Errorf("journal actions = %v, want %v", got, want)
	}
}

func TestImplicitAddIsPerAuthor(t *testing.T) {
	f := newFixture(t, models.AuthConfig{})
	f.process(t, userMessage("1", "7", "Hello\n\nbody", t0))
	f.process(t, userMessage("2", "8", "", t0.Add(time.Second), attachment("dog.png")))

	if len(f.channel.Sent) != 2 {
		t.Fatalf("announcements = %q, want a second post for the other author", f.channel.Sent)
	}
	if !strings.Contains(f.channel.Sent[1], `<@8> published a post titled "Untitled post"`) {
		t.Errorf("second announcement = %q", f.channel.Sent[1])
	}
}

func TestTitleOnlyPostIsRejected(t *testing.T) {
	f := newFixture(t, models.AuthConfig{})
	f.process(t, userMessage("1", "7", "Just a title", t0))

	if len(f.channel.Sent) != 0 {
		t.Errorf("announcements = %q", f.channel.Sent)
	}
	if r := f.lastReply(t); r.Content != "ERROR: Failed to post - no content or attached media" {
		t.Errorf("reply = %+v", r)
	}
}

func TestSamePathIsNotReused(t *testing.T) {
	f := newFixture(t, models.AuthConfig{})
	f.process(t, userMessage("1", "7", "One\n\nbody", t0))
	f.process(t, userMessage("2", "8", "Two\n\nbody", t0))

	if !f.store.Exists("2024/05/01/12-00-00") || !f.store.Exists("2024/05/01/12-00-01") {
		t.Fatal("expected the second post to move one second forward")
	}
	if !strings.Contains(f.source(t, "2024/05/01/12-00-01"), "Date: 2024-05-01 12:00:01\n") {
		t.Error("date header does not match the shifted path")
	}
}

func TestDownloadFailureRemovesPostDirectory(t *testing.T) {
	f := newFixture(t, models.AuthConfig{})
	m := userMessage("1", "7", "Broken\n\nbody", t0, attachment("missing.png"))

	err := f.blogger.ProcessMessage(m)
	if !errors.Is(err, media.ErrStatus) {
		t.Fatalf("ProcessMessage error = %v, want ErrStatus", err)
	}
	if f.store.Exists("2024/05/01/12-00-00") {
		t.Error("post directory left behind")
	}
	if f.channel.WasDeleted("1") {
		t.Error("message deleted before the failure was reported")
	}
}

func TestBatchFailureIsReportedBeforeDelete(t *testing.T) {
	f := newFixture(t, models.AuthConfig{})
	q := queue.New(eventloop.New(0), queue.Options{
		Delay:      time.Hour,
		BlankFirst: true,
		Process:    f.blogger.ProcessMessage,
		Report:     f.blogger.ReportFailure,
		Finish:     f.blogger.Finish,
	})

	q.Push(userMessage("1", "7", "Broken\n\nbody", t0, attachment("missing.png")))
	f.process(t, userMessage("2", "8", "Fine", t0, attachment("cat.png")))
	q.Push(userMessage("3", "8", "", t0.Add(time.Second), attachment("missing.png")))
	q.Drain()

	var reportedTo []string
	for _, r := range f.channel.Replies {
		if strings.HasPrefix(r.Content, "ERROR: failed to run command (") {
			reportedTo = append(reportedTo, r.To)
		}
	}
	if !slices.Equal(reportedTo, []string{"1", "3"}) {
		t.Fatalf("failure reports went to %v, replies %v", reportedTo, f.channel.ReplyContents())
	}
	for _, id := range []string{"1", "3"} {
		if !f.channel.WasDeleted(id) {
			t.Errorf("message %s not deleted after its report", id)
		}
	}
}

func TestPublishUnpublishRoundTrip(t *testing.T) {
	f := newFixture(t, models.AuthConfig{})
	const draft, published = "drafts/2024-05-01-12-00-00", "2024/05/01/12-00-00"

	f.process(t, userMessage("1", "7", "draft: Trip\n\nDay one", t0, attachment("clip.mp4")))
	if !strings.HasPrefix(f.channel.Sent[0], `<@7> drafted a post titled "Trip": <`+baseURL+"/"+draft+">") {
		t.Fatalf("announcement = %q", f.channel.Sent[0])
	}
	if got := f.channel.Reactions["1001"]; !slices.Equal(got, []string{command.EmojiDelete, command.EmojiPublish}) {
		t.Errorf("draft reactions = %v", got)
	}
	before := f.source(t, draft)

	f.process(t, replyTo(userMessage("2", "7", "unpublish", t0.Add(10*time.Second)), "1001"))
	if r := f.lastReply(t); r.Content != "ERROR: Post is already a draft" {
		t.Errorf("reply = %+v", r)
	}

	f.process(t, replyTo(userMessage("3", "7", "Publish", t0.Add(11*time.Second)), "1001"))
	if r := f.lastReply(t); r.To != "3" || r.Content != "Published post" {
		t.Errorf("reply = %+v", r)
	}
	if f.store.Exists(draft) || !f.store.Exists(published) {
		t.Fatal("post was not moved to the published path")
	}
	ann := f.channel.Messages["1001"]
	if want := `<@7> published a post titled "Trip": <` + baseURL + "/" + published + ">"; ann.Content != want {
		t.Errorf("edited announcement = %q, want %q", ann.Content, want)
	}
	if got := f.channel.Reactions["1001"]; !slices.Equal(got, []string{command.EmojiDelete, command.EmojiUnpublish}) {
		t.Errorf("published reactions = %v", got)
	}
	if !f.channel.WasDeleted("3") {
		t.Error("command message not scheduled for deletion")
	}

	f.process(t, replyTo(userMessage("4", "7", "publish", t0.Add(12*time.Second)), "1001"))
	if r := f.lastReply(t); r.Content != "ERROR: Post is not a draft" {
		t.Errorf("reply = %+v", r)
	}

	f.process(t, replyTo(userMessage("5", "7", "unpublish", t0.Add(13*time.Second)), "1001"))
	if r := f.lastReply(t); r.Content != "Unpublished post" {
		t.Errorf("reply = %+v", r)
	}
	if !f.store.Exists(draft) || f.store.Exists(published) {
		t.Fatal("post was not moved back to the draft path")
	}
	if after := f.source(t, draft); after != before {
		t.Errorf("index.md changed by the round trip:\n%s\nvs\n%s", before, after)
	}
	if data, err := os.ReadFile(filepath.Join(f.store.SourceDir(draft), "clip.mp4")); err != nil || string(data) != "clip" {
		t.Errorf("media changed by the round trip: %q, %v", data, err)
	}
	if ann := f.channel.Messages["1001"]; !strings.Contains(ann.Content, "drafted a post") || !strings.Contains(ann.Content, draft) {
		t.Errorf("announcement = %q", ann.Content)
	}
}

func TestEditedAnnouncementExtendsImplicitWindow(t *testing.T) {
	f := newFixture(t, models.AuthConfig{})
	f.process(t, userMessage("1", "7", "draft: Trip\n\nDay one", t0))

	f.channel.Now = func() time.Time { return t0.Add(20 * time.Second) }
	f.process(t, replyTo(userMessage("2", "7", "publish", t0.Add(20*time.Second)), "1001"))

	f.process(t, userMessage("3", "7", "", t0.Add(23*time.Second), attachment("cat.png")))
	if r := f.lastReply(t); r.To != "3" || !strings.HasPrefix(r.Content, "Added media to post <"+baseURL+"/2024/05/01/12-00-00>") {
		t.Errorf("reply = %+v", r)
	}
}

func TestReplyDelete(t *testing.T) {
	f := newFixture(t, models.AuthConfig{})
	const path = "2024/05/01/12-00-00"
	f.process(t, userMessage("1", "7", "Gone\n\nsoon", t0))

	f.process(t, replyTo(userMessage("2", "7", " DELETE ", t0.Add(10*time.Second)), "1001"))

	if r := f.lastReply(t); r.To != "2" || r.Content != "Deleted post <"+baseURL+"/"+path+">" {
		t.Errorf("reply = %+v", r)
	}
	if f.store.Exists(path) {
		t.Error("source directory still exists")
	}
	if _, err := os.Stat(filepath.Join(f.store.DataDir(), "2024")); !os.IsNotExist(err) {
		t.Errorf("empty parents not pruned: %v", err)
	}
	if !slices.Contains(f.channel.Deleted, chattest.Deletion{MessageID: "1001", After: 5 * time.Second}) {
		t.Errorf("announcement not deleted after the delay: %+v", f.channel.Deleted)
	}
}

func TestReplyDeleteRemovesRenderedOutput(t *testing.T) {
	f := newFixture(t, models.AuthConfig{})
	const path = "2024/05/01/12-00-00"
	f.process(t, userMessage("1", "7", "Gone\n\nsoon", t0))
	rendered := f.store.RenderedDir(path)
	if err := os.MkdirAll(rendered, 0o755); err != nil {
		t.Fatal(err)
	}

	f.process(t, replyTo(userMessage("2", "7", "delete", t0.Add(time.Second)), "1001"))
	if _, err := os.Stat(rendered); !os.IsNotExist(err) {
		t.Errorf("rendered output still exists: %v", err)
	}
}

func TestReplyAdd(t *testing.T) {
	f := newFixture(t, models.AuthConfig{})
	const path = "2024/05/01/12-00-00"
	f.process(t, userMessage("1", "7", "Pets\n\nmine", t0, attachment("cat.png")))

	f.process(t, replyTo(userMessage("2", "8", "add", t0.Add(time.Minute)), "1001"))
	if r := f.lastReply(t); r.Content != "ERROR: No attached media to add" {
		t.Errorf("reply = %+v", r)
	}

	f.process(t, replyTo(userMessage("3", "8", "add", t0.Add(time.Minute), attachment("cat.png")), "1001"))
	if r := f.lastReply(t); r.Content != "Added media to post <"+baseURL+"/"+path+">" {
		t.Errorf("reply = %+v", r)
	}
	if src := f.source(t, path); !strings.HasSuffix(src, "\n[cat_.png]({static}cat_.png)") {
		t.Errorf("repeated filename not deconflicted:\n%s", src)
	}
}

func TestUnknownReply(t *testing.T) {
	f := newFixture(t, models.AuthConfig{})
	f.process(t, userMessage("1", "7", "Post\n\nbody", t0))

	f.process(t, replyTo(userMessage("2", "7", "Frobnicate", t0.Add(time.Second)), "1001"))
	if r := f.lastReply(t); r.Content != "ERROR: unknown reply action 'frobnicate'" {
		t.Errorf("reply = %+v", r)
	}
	if len(f.channel.Sent) != 1 {
		t.Errorf("unknown reply created a post: %q", f.channel.Sent)
	}
	if !f.channel.WasDeleted("2") {
		t.Error("unknown reply not cleaned up")
	}
}

func TestReplyToNonAnnouncement(t *testing.T) {
	f := newFixture(t, models.AuthConfig{})
	other := userMessage("50", "8", "just chatting", t0)
	f.channel.Put(other)

	f.process(t, replyTo(userMessage("2", "7", "delete", t0), "50"))
	if r := f.lastReply(t); !strings.HasPrefix(r.Content, "ERROR: failed to run command (") {
		t.Errorf("reply = %+v", r)
	}
}

func TestHelpAndClose(t *testing.T) {
	f := newFixture(t, models.AuthConfig{})
	f.process(t, userMessage("1", "7", "help", t0))

	r := f.lastReply(t)
	if r.Content != command.HelpText(baseURL) || r.DeleteAfter != 0 {
		t.Fatalf("help reply = %+v", r)
	}
	helpID := "1001"
	if got := f.channel.Reactions[helpID]; !slices.Equal(got, []string{command.EmojiDelete}) {
		t.Errorf("help reactions = %v", got)
	}
	if len(f.channel.Sent) != 0 {
		t.Error("help created a post")
	}

	if err := f.blogger.HandleReaction(helpID, "7", command.EmojiPublish); err != nil {
		t.Fatal(err)
	}
	if f.channel.WasDeleted(helpID) {
		t.Fatal("help closed by the wrong reaction")
	}
	if err := f.blogger.HandleReaction(helpID, "7", command.EmojiDelete); err != nil {
		t.Fatal(err)
	}
	if !f.channel.WasDeleted(helpID) {
		t.Error("help not closed")
	}
}

func TestReactionPublishAndDelete(t *testing.T) {
	f := newFixture(t, models.AuthConfig{})
	f.process(t, userMessage("1", "7", "draft: Trip\n\nDay one", t0))
	cleared := len(f.channel.Cleared)

	if err := f.blogger.HandleReaction("1001", "7", command.EmojiPublish); err != nil {
		t.Fatal(err)
	}
	if !f.store.Exists("2024/05/01/12-00-00") {
		t.Fatal("reaction did not publish")
	}
	if r := f.lastReply(t); r.To != "1001" || r.Content != "Published post" {
		t.Errorf("reply = %+v", r)
	}
	if got := f.channel.Reactions["1001"]; !slices.Equal(got, []string{command.EmojiDelete, command.EmojiUnpublish}) {
		t.Errorf("reactions = %v", got)
	}
	if n := len(f.channel.Cleared) - cleared; n != 1 {
		t.Errorf("reactions reset %d times on publish, want 1", n)
	}

	// Publishing again is refused and the reactions are reset.
	if err := f.blogger.HandleReaction("1001", "7", command.EmojiPublish); err != nil {
		t.Fatal(err)
	}
	if r := f.lastReply(t); r.Content != "ERROR: Post is not a draft" {
		t.Errorf("reply = %+v", r)
	}
	if got := f.channel.Reactions["1001"]; !slices.Equal(got, []string{command.EmojiDelete, command.EmojiUnpublish}) {
		t.Errorf("reactions = %v", got)
	}

	if err := f.blogger.HandleReaction("1001", "7", command.EmojiDelete); err != nil {
		t.Fatal(err)
	}
	if f.store.Exists("2024/05/01/12-00-00") {
		t.Error("reaction did not delete")
	}
	if !f.channel.WasDeleted("1001") {
		t.Error("announcement not deleted")
	}
}

func TestReactionIgnoredMessages(t *testing.T) {
	f := newFixture(t, models.AuthConfig{})
	f.process(t, userMessage("1", "7", "Post\n\nbody", t0))
	f.channel.Put(userMessage("50", "8", "not the bot", t0))

	for _, tc := range []struct{ message, user, emoji string }{
		{"1001", chattest.BotID, command.EmojiDelete}, // the bot itself
		{"50", "7", command.EmojiDelete},              // not a bot message
		{"1001", "7", "👍"},                            // unbound emoji
	} {
		if err := f.blogger.HandleReaction(tc.message, tc.user, tc.emoji); err != nil {
			t.Errorf("HandleReaction(%+v): %v", tc, err)
		}
	}
	if !f.store.Exists("2024/05/01/12-00-00") || f.channel.WasDeleted("1001") {
		t.Error("ignored reaction changed the post")
	}
}

func TestReactionOnNonPostClearsReactions(t *testing.T) {
	f := newFixture(t, models.AuthConfig{})
	msg, _ := f.channel.Send("Regenerated content")
	f.channel.React(msg.ID, command.EmojiDelete)

	if err := f.blogger.HandleReaction(msg.ID, "7", command.EmojiDelete); err != nil {
		t.Fatal(err)
	}
	if got := f.channel.Reactions[msg.ID]; len(got) != 0 {
		t.Errorf("reactions = %v, want cleared", got)
	}
	if f.channel.WasDeleted(msg.ID) {
		t.Error("non-post message deleted")
	}
}

func TestRegenerate(t *testing.T) {
	f := newFixture(t, models.AuthConfig{})
	f.process(t, userMessage("1", "7", "regenerate", t0))

	if f.gen.runs != 1 {
		t.Errorf("generator runs = %d, want 1", f.gen.runs)
	}
	if r := f.lastReply(t); r.Content != "Regenerated content" {
		t.Errorf("reply = %+v", r)
	}

	f.gen.err = errors.New("theme missing")
	f.process(t, userMessage("2", "7", "regenerate", t0))
	if r := f.lastReply(t); !strings.Contains(r.Content, "theme missing") || !strings.HasPrefix(r.Content, "ERROR: failed to run command (") {
		t.Errorf("reply = %+v", r)
	}
}

func TestRegenerateRequiresAdmin(t *testing.T) {
	f := newFixture(t, models.AuthConfig{Developers: []string{"42"}, AdminRoles: []string{"r1"}})

	f.process(t, userMessage("1", "7", "regenerate", t0))
	if f.gen.runs != 0 {
		t.Fatal("unauthorized user regenerated the site")
	}
	if r := f.lastReply(t); r.Content != "ERROR: You are not allowed to run 'regenerate'" {
		t.Errorf("reply = %+v", r)
	}

	f.process(t, userMessage("2", "42", "regenerate", t0))
	admin := userMessage("3", "9", "regenerate", t0)
	admin.Member = &discordgo.Member{Roles: []string{"r1"}}
	f.process(t, admin)
	if f.gen.runs != 2 {
		t.Errorf("generator runs = %d, want 2", f.gen.runs)
	}
}

func TestRunSlash(t *testing.T) {
	f := newFixture(t, models.AuthConfig{Developers: []string{"42"}})

	if got := f.blogger.RunSlash(command.Help, nil, "7"); got != command.HelpText(baseURL) {
		t.Errorf("help = %q", got)
	}
	if got := f.blogger.RunSlash(command.Regenerate, nil, "7"); got != "ERROR: You are not allowed to run 'regenerate'" {
		t.Errorf("unauthorized regenerate = %q", got)
	}
	if got := f.blogger.RunSlash(command.Regenerate, nil, "42"); got != "Regenerated content" {
		t.Errorf("regenerate = %q", got)
	}
	if got := f.blogger.RunSlash(command.Delete, nil, "42"); got != "ERROR: unknown command 'delete'" {
		t.Errorf("reply-only command = %q", got)
	}
	if f.gen.runs != 1 {
		t.Errorf("generator runs = %d, want 1", f.gen.runs)
	}
}
