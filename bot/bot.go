package bot

import (
	"context"
	"fmt"
	log "log/slog"
	"os"
	"os/signal"
	"syscall"

	"discord-blog/command"
	"discord-blog/eventloop"
	"discord-blog/models"

	"github.com/bwmarrin/discordgo"
)

// Bot encapsulates the bot's state.
type Bot struct {
	Session   *discordgo.Session
	Config    *models.Config
	Loop      *eventloop.Loop
	Scheduler *Scheduler

	fatal chan error
}

// NewBot creates and initializes a new Bot instance.
func NewBot(cfg *models.Config) (*Bot, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("no bot token provided")
	}

	dg, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsMessageContent

	loop := eventloop.New(0)
	return &Bot{
		Session:   dg,
		Config:    cfg,
		Loop:      loop,
		Scheduler: NewScheduler(loop),
		fatal:     make(chan error, 1),
	}, nil
}

// Fail asks Run to shut the bot down because of err.
func (b *Bot) Fail(err error) {
	select {
	case b.fatal <- err:
	default:
	}
}

// Start registers handlers, starts the event loop and opens the session.
func (b *Bot) Start(ctx context.Context, registerHandlers func(*Bot) error) error {
	if err := registerHandlers(b); err != nil {
		return fmt.Errorf("error registering handlers: %w", err)
	}

	go b.Loop.Run(ctx)

	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands
	for _, cmd := range command.ApplicationCommands() {
		if _, err := b.Session.ApplicationCommandCreate(b.Session.State.User.ID, "", cmd); err != nil {
			log.Warn("cannot create slash command", "command", cmd.Name, "err", err)
		}
	}

	b.Scheduler.Start()
	log.Info("bot is now running, press CTRL-C to exit")
	return nil
}

// Stop gracefully closes the bot's session.
func (b *Bot) Stop() {
	b.Scheduler.Stop()
	if b.Session != nil {
		b.Session.Close()
	}
	log.Info("bot stopped gracefully")
}

// Run is the main entry point for the bot application. It returns when the
// process is interrupted or a handler reports a fatal error.
func Run(cfg *models.Config, registerHandlers func(*Bot) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	bot, err := NewBot(cfg)
	if err != nil {
		return fmt.Errorf("error initializing bot: %w", err)
	}

	if err := bot.Start(ctx, registerHandlers); err != nil {
		bot.Stop()
		return fmt.Errorf("error starting bot: %w", err)
	}

	select {
	case <-ctx.Done():
		err = nil
	case err = <-bot.fatal:
		log.Error("shutting down", "err", err)
	}
	bot.Stop()
	return err
}
