// Package handlers connects the Discord gateway to the blog: it queues
// channel messages, runs commands and reactions, and schedules rebuilds.
package handlers

import (
	"context"
	"fmt"
	log "log/slog"
	"sync"
	"sync/atomic"

	"discord-blog/bot"
	"discord-blog/database"
	"discord-blog/media"
	"discord-blog/post"
	"discord-blog/queue"
	"discord-blog/site"
	"discord-blog/utils"

	"github.com/bwmarrin/discordgo"
)

// runtime is everything that depends on the resolved channel.
type runtime struct {
	botID     string
	channelID string
	blogger   *Blogger
	queue     *queue.Debouncer
}

type handler struct {
	bot     *bot.Bot
	ctx     context.Context
	store   *post.Store
	regen   *site.Regenerator
	journal *database.Journal
	status  *database.StatusManager

	once    sync.Once
	runtime atomic.Pointer[runtime]
}

// Register all handlers and scheduled jobs to the bot.
func Register(b *bot.Bot) error {
	cfg := b.Config

	store, err := post.NewStore(cfg.DataDir, cfg.OutputDir)
	if err != nil {
		return err
	}
	gen, err := site.New(cfg)
	if err != nil {
		return err
	}

	var journal *database.Journal
	if cfg.Journal.Path != "" {
		if journal, err = database.OpenJournal(cfg.Journal.Path); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-b.Loop.Done()
		cancel()
		if journal != nil {
			journal.Close()
		}
	}()

	h := &handler{bot: b, ctx: ctx, store: store, journal: journal}
	if cfg.Generator.StatusFile != "" {
		h.status = database.NewStatusManager(cfg.Generator.StatusFile, journal)
	}
	h.regen = site.NewRegenerator(b.Loop, gen, site.RegeneratorOptions{
		Delay:     cfg.Timing.RegenerateDebounce,
		OutputDir: cfg.OutputDir,
		Retain:    cfg.Generator.OutputRetention,
		Observe:   h.observe,
	})

	if err := b.Scheduler.AddJob("rebuild", cfg.Generator.RebuildCron, func() {
		if err := h.regen.RunNow(h.ctx, false); err != nil {
			log.Error("scheduled rebuild failed", "err", err)
		}
	}); err != nil {
		return err
	}
	if journal != nil {
		if err := b.Scheduler.AddJob("prune_journal", cfg.Journal.PruneCron, func() {
			n, err := journal.PruneOlderThan(cfg.Journal.Retention)
			if err != nil {
				log.Error("journal prune failed", "err", err)
				return
			}
			log.Info("pruned journal", "events", n)
		}); err != nil {
			return err
		}
	}

	utils.InitLogger(b.Session, cfg.AdminChannelID)

	b.Session.AddHandler(h.ready)
	b.Session.AddHandler(h.messageCreate)
	b.Session.AddHandler(h.reactionAdd)
	b.Session.AddHandler(h.interactionCreate)
	return nil
}

// ready resolves the blog channel on the first connection. A guild or
// channel the bot cannot see shuts the bot down.
func (h *handler) ready(s *discordgo.Session, r *discordgo.Ready) {
	log.Info("logged in", "user", r.User.Username)
	h.once.Do(func() {
		cfg := h.bot.Config
		_, channelID, err := bot.ResolveChannel(s, cfg.GuildName, cfg.Channel)
		if err != nil {
			utils.Error("bot", "resolve channel", err.Error())
			h.bot.Fail(err)
			return
		}

		blogger := NewBlogger(h.ctx, Deps{
			Config:      cfg,
			BotID:       r.User.ID,
			Channel:     bot.NewChannel(s, channelID),
			Store:       h.store,
			Ingestor:    media.NewIngestor(media.NewHTTPFetcher(cfg.Media.DownloadTimeout), cfg.Media.MaxDimension, cfg.Media.LocalThumbnails),
			Regenerator: h.regen,
			Journal:     h.journal,
			Auth:        utils.NewAuth(cfg.Commands.Auth),
		})
		h.runtime.Store(&runtime{
			botID:     r.User.ID,
			channelID: channelID,
			blogger:   blogger,
			queue: queue.New(h.bot.Loop, queue.Options{
				Delay:      cfg.Timing.MessageDebounce,
				BlankFirst: cfg.Timing.BlankFirst,
				Process:    blogger.ProcessMessage,
				Report:     blogger.ReportFailure,
				Finish:     blogger.Finish,
			}),
		})
		utils.Info("bot", "ready", fmt.Sprintf("Publishing #%s of %s to %s", cfg.Channel, cfg.GuildName, cfg.BaseURL))
	})
}

// observe records a generator run in the status file and reports failures
// to the admin channel.
func (h *handler) observe(run site.Run) {
	if run.Err != nil {
		utils.Error("site", "generate", run.Err.Error())
	}
	if h.status == nil {
		return
	}
	h.status.RecordRun(run.Started, run.Duration, run.Clean, run.Err)
	if err := h.status.Save(); err != nil {
		log.Warn("failed to save site status", "err", err)
	}
}
