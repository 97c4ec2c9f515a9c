package models

import "time"

// Config is the complete bot configuration. It is loaded once at startup and
// handed to every component constructor.
type Config struct {
	Token          string `mapstructure:"token"`
	GuildName      string `mapstructure:"guild_name"`
	Channel        string `mapstructure:"channel"`
	AdminChannelID string `mapstructure:"admin_channel_id"`
	LogLevel       string `mapstructure:"log_level"`

	DataDir   string `mapstructure:"data_dir"`
	OutputDir string `mapstructure:"output_dir"`
	BaseURL   string `mapstructure:"base_url"`
	SiteName  string `mapstructure:"site_name"`
	Timezone  string `mapstructure:"timezone"`

	Timing    TimingConfig    `mapstructure:"timing"`
	Media     MediaConfig     `mapstructure:"media"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Journal   JournalConfig   `mapstructure:"journal"`
	Commands  CommandsConfig  `mapstructure:"commands"`

	location *time.Location
}

// TimingConfig holds the debounce delays and windows.
type TimingConfig struct {
	MessageDebounce    time.Duration `mapstructure:"message_debounce"`
	RegenerateDebounce time.Duration `mapstructure:"regenerate_debounce"`
	ImplicitAddWindow  time.Duration `mapstructure:"implicit_add_window"`
	MessageDeleteDelay time.Duration `mapstructure:"message_delete_delay"`
	// BlankFirst orders blank messages ahead of captioned ones from the same
	// author within a batch.
	BlankFirst bool `mapstructure:"blank_first"`
}

// MediaConfig controls attachment ingestion.
type MediaConfig struct {
	MaxDimension    int           `mapstructure:"max_dimension"`
	DownloadTimeout time.Duration `mapstructure:"download_timeout"`
	LocalThumbnails bool          `mapstructure:"local_thumbnails"`
}

// GeneratorConfig selects and configures the site generator.
type GeneratorConfig struct {
	Kind            string   `mapstructure:"kind"` // builtin or exec
	Command         []string `mapstructure:"command"`
	OutputRetention []string `mapstructure:"output_retention"`
	Pagination      int      `mapstructure:"pagination"`
	RebuildCron     string   `mapstructure:"rebuild_cron"`
	StatusFile      string   `mapstructure:"status_file"`
}

// JournalConfig configures the sqlite post journal. An empty path disables it.
type JournalConfig struct {
	Path      string        `mapstructure:"path"`
	Retention time.Duration `mapstructure:"retention"`
	PruneCron string        `mapstructure:"prune_cron"`
}

// CommandsConfig holds command permissions.
type CommandsConfig struct {
	Auth AuthConfig `mapstructure:"auth"`
}

// AuthConfig lists the users and roles allowed to run admin commands.
type AuthConfig struct {
	Developers []string `mapstructure:"developers"`
	AdminRoles []string `mapstructure:"admin_roles"`
}

// Location returns the display timezone. It falls back to UTC before
// SetLocation has been called.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// SetLocation sets the resolved display timezone.
func (c *Config) SetLocation(loc *time.Location) {
	c.location = loc
}
