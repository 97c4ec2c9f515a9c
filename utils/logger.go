package utils

import (
	"context"
	"fmt"
	log "log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

const (
	ColorInfo  = 0x00ff00 // Green
	ColorWarn  = 0xffff00 // Yellow
	ColorError = 0xff0000 // Red
)

// EmbedSender posts embeds to a channel. *discordgo.Session satisfies it.
type EmbedSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

var (
	mu        sync.RWMutex
	sender    EmbedSender
	channelID string
)

// Setup installs a text slog handler on stderr at the given level
// (debug, info, warn or error).
func Setup(level string) {
	var lvl log.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = log.LevelInfo
	}
	log.SetDefault(log.New(log.NewTextHandler(os.Stderr, &log.HandlerOptions{Level: lvl})))
}

// InitLogger enables mirroring of Info, Warn and Error entries to an admin
// channel. An empty channel id disables mirroring.
func InitLogger(s EmbedSender, adminChannelID string) {
	mu.Lock()
	defer mu.Unlock()
	sender = s
	channelID = adminChannelID
	if channelID == "" {
		log.Warn("admin_channel_id is not set, logging to channel is disabled")
	}
}

// Log writes an entry to slog and mirrors it to the admin channel.
func Log(level log.Level, module, operation, details string) {
	log.Log(context.Background(), level, details, "module", module, "operation", operation)

	mu.RLock()
	s, id := sender, channelID
	mu.RUnlock()
	if s == nil || id == "" {
		return
	}

	color := ColorInfo
	switch {
	case level >= log.LevelError:
		color = ColorError
	case level >= log.LevelWarn:
		color = ColorWarn
	}

	embed := &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("Log Level: %s", level),
		Color:     color,
		Timestamp: time.Now().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Module",
				Value:  module,
				Inline: true,
			},
			{
				Name:   "Operation",
				Value:  operation,
				Inline: true,
			},
			{
				Name:  "Details",
				Value: truncate(details, 1024),
			},
		},
	}

	if _, err := s.ChannelMessageSendEmbed(id, embed); err != nil {
		log.Warn("failed to send log message to Discord", "err", err)
	}
}

func truncate(s string, n int) string {
	if s == "" {
		return "-"
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// Info logs an informational message.
func Info(module, operation, details string) {
	Log(log.LevelInfo, module, operation, details)
}

// Warn logs a warning message.
func Warn(module, operation, details string) {
	Log(log.LevelWarn, module, operation, details)
}

// Error logs an error message.
func Error(module, operation, details string) {
	Log(log.LevelError, module, operation, details)
}
