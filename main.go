package main

import (
	"fmt"
	log "log/slog"
	"os"

	"discord-blog/bot"
	"discord-blog/config"
	"discord-blog/handlers"
	"discord-blog/utils"

	"github.com/spf13/pflag"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to the YAML config file (default: config.yaml in . or ./config)")
	pflag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error loading config:", err)
		os.Exit(1)
	}
	utils.Setup(cfg.LogLevel)

	if err := bot.Run(cfg, handlers.Register); err != nil {
		log.Error("bot exited", "err", err)
		os.Exit(1)
	}
}
