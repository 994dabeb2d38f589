package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config stores all configuration for a retrieval run.
type Config struct {
	DownloadDir string `mapstructure:"DOWNLOAD_DIR"`
	IconTable   string `mapstructure:"ICON_TABLE"`

	LogLevel       string `mapstructure:"LOG_LEVEL"`
	LogDevelopment bool   `mapstructure:"LOG_DEVELOPMENT"`

	BrowserHeadless  bool   `mapstructure:"BROWSER_HEADLESS"`
	BrowserExecPath  string `mapstructure:"BROWSER_EXEC_PATH"`
	BrowserRemoteURL string `mapstructure:"BROWSER_REMOTE_URL"`
	BrowserUserAgent string `mapstructure:"BROWSER_USER_AGENT"`

	ElementTimeout     time.Duration `mapstructure:"ELEMENT_TIMEOUT"`
	PollInterval       time.Duration `mapstructure:"POLL_INTERVAL"`
	StablePolls        int           `mapstructure:"STABLE_POLLS"`
	MaxPolls           int           `mapstructure:"MAX_POLLS"`
	ConvergenceTimeout time.Duration `mapstructure:"CONVERGENCE_TIMEOUT"`
	SelectionAttempts  int           `mapstructure:"SELECTION_ATTEMPTS"`

	MetricsAddr string `mapstructure:"METRICS_ADDR"`
}

type option struct {
	key   string
	flag  string
	value any
	usage string
}

var options = []option{
	{"DOWNLOAD_DIR", "download-dir", "downloads", "directory the browser saves downloads into"},
	{"ICON_TABLE", "icon-table", "", "YAML icon classification table (embedded table when empty)"},
	{"LOG_LEVEL", "log-level", "info", "log level (debug, info, warn, error)"},
	{"LOG_DEVELOPMENT", "log-development", false, "human readable console logs"},
	{"BROWSER_HEADLESS", "headless", false, "run the browser without a window"},
	{"BROWSER_EXEC_PATH", "browser-path", "", "browser executable (searched on PATH when empty)"},
	{"BROWSER_REMOTE_URL", "remote-url", "", "attach to a running browser's devtools endpoint instead of launching one"},
	{"BROWSER_USER_AGENT", "user-agent", "", "override the browser user agent"},
	{"ELEMENT_TIMEOUT", "element-timeout", 10 * time.Second, "how long to wait for an expected element"},
	{"POLL_INTERVAL", "poll-interval", 500 * time.Millisecond, "download directory polling interval"},
	{"STABLE_POLLS", "stable-polls", 1, "consecutive identical snapshot pairs required to finish"},
	{"MAX_POLLS", "max-polls", 0, "give up after this many snapshots (0 for no limit)"},
	{"CONVERGENCE_TIMEOUT", "convergence-timeout", time.Duration(0), "give up waiting for downloads after this long (0 for no limit)"},
	{"SELECTION_ATTEMPTS", "selection-attempts", 0, "course selection attempts (0 for no limit)"},
	{"METRICS_ADDR", "metrics-addr", "", "serve /metrics and /api/status on this address"},
}

// RegisterFlags adds a flag for every configuration key to flags.
func RegisterFlags(flags *pflag.FlagSet) {
	for _, o := range options {
		switch v := o.value.(type) {
		case string:
			flags.String(o.flag, v, o.usage)
		case bool:
			flags.Bool(o.flag, v, o.usage)
		case int:
			flags.Int(o.flag, v, o.usage)
		case time.Duration:
			flags.Duration(o.flag, v, o.usage)
		}
	}
}

// Load reads configuration from flags, environment variables and an optional env file,
// in that order of precedence.
func Load(envFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
	}
	v.AutomaticEnv()

	for _, o := range options {
		v.SetDefault(o.key, o.value)
		if flags == nil {
			continue
		}
		if f := flags.Lookup(o.flag); f != nil {
			if err := v.BindPFlag(o.key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", o.flag, err)
			}
		}
	}

	if envFile != "" {
		// The env file is optional so configuration can come purely from the environment.
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read %s: %w", envFile, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values no run can work with.
func (c *Config) Validate() error {
	switch {
	case c.DownloadDir == "":
		return errors.New("DOWNLOAD_DIR must not be empty")
	case c.PollInterval <= 0:
		return errors.New("POLL_INTERVAL must be positive")
	case c.ElementTimeout <= 0:
		return errors.New("ELEMENT_TIMEOUT must be positive")
	case c.StablePolls < 1:
		return errors.New("STABLE_POLLS must be at least 1")
	case c.MaxPolls < 0:
		return errors.New("MAX_POLLS must not be negative")
	case c.ConvergenceTimeout < 0:
		return errors.New("CONVERGENCE_TIMEOUT must not be negative")
	case c.SelectionAttempts < 0:
		return errors.New("SELECTION_ATTEMPTS must not be negative")
	}
	return nil
}
