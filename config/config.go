package config

import (
	"errors"
	"fmt"
	log "log/slog"
	"slices"
	"strings"
	"time"

	"discord-blog/models"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Defaults mirrors the values the bot runs with when a key is not configured.
var Defaults = map[string]any{
	"timezone":                    "UTC",
	"site_name":                   "Blog",
	"log_level":                   "info",
	"timing.message_debounce":     "2s",
	"timing.regenerate_debounce":  "2s",
	"timing.implicit_add_window":  "5s",
	"timing.message_delete_delay": "5s",
	"timing.blank_first":          true,
	"media.max_dimension":         800,
	"media.download_timeout":      "60s",
	"media.local_thumbnails":      true,
	"generator.kind":              "builtin",
	"generator.pagination":        5,
	"journal.retention":           "2160h",
}

// LoadConfig loads configuration from several sources:
// 1. the .env file (environment variables only)
// 2. the YAML file at path, or config.yaml in . or ./config when path is empty
// 3. environment variables, which override file values
func LoadConfig(path string) (*models.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, skipping")
	}

	v := viper.New()
	for key, value := range Defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := v.BindEnv("token", "BOT_TOKEN"); err != nil {
		return nil, fmt.Errorf("failed to bind BOT_TOKEN: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Info("config file not found, using environment variables and defaults")
	}

	return decode(v)
}

func decode(v *viper.Viper) (*models.Config, error) {
	var cfg models.Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required keys and resolves the timezone.
func Validate(cfg *models.Config) error {
	var missing []string
	for key, value := range map[string]string{
		"token":      cfg.Token,
		"guild_name": cfg.GuildName,
		"channel":    cfg.Channel,
		"data_dir":   cfg.DataDir,
		"output_dir": cfg.OutputDir,
		"base_url":   cfg.BaseURL,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("missing required config keys: %s", strings.Join(missing, ", "))
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	cfg.SetLocation(loc)
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	switch cfg.Generator.Kind {
	case "builtin":
	case "exec":
		if len(cfg.Generator.Command) == 0 {
			return errors.New("generator.command is required for the exec generator")
		}
	default:
		return fmt.Errorf("unknown generator kind %q", cfg.Generator.Kind)
	}
	if cfg.Media.MaxDimension <= 0 {
		return fmt.Errorf("media.max_dimension must be positive, got %d", cfg.Media.MaxDimension)
	}
	return nil
}
