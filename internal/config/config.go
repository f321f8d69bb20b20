package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Strategy selects where the status payload comes from
type Strategy string

const (
	StrategyFetch Strategy = "fetch" // GET from the status server
	StrategyLocal Strategy = "local" // read a saved payload from disk
)

// RowBadges selects how rows without a record are badged
type RowBadges string

const (
	RowBadgesLegacy RowBadges = "legacy" // pending rows show "Okay", as the web view did
	RowBadgesStrict RowBadges = "strict" // pending rows show "Pending"
)

// DefaultStatusPath is the endpoint served by the add-on index
const DefaultStatusPath = "/api/v1/indexingstatus"

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Source  SourceConfig  `mapstructure:"source"`
	UI      UIConfig      `mapstructure:"ui"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds status server configuration
type ServerConfig struct {
	URL      string        `mapstructure:"url"`      // Base URL, e.g. https://addons.example.org
	Path     string        `mapstructure:"path"`     // Status endpoint path
	Token    string        `mapstructure:"token"`    // Bearer token (optional)
	Username string        `mapstructure:"username"` // Basic auth (optional)
	Password string        `mapstructure:"password"` // Basic auth (optional)
	Timeout  time.Duration `mapstructure:"timeout"`
}

// SourceConfig selects the payload source
type SourceConfig struct {
	Strategy Strategy `mapstructure:"strategy"`
	File     string   `mapstructure:"file"` // Used with the local strategy
}

// UIConfig holds display configuration
type UIConfig struct {
	RowBadges  RowBadges `mapstructure:"row_badges"`
	ShowDetail bool      `mapstructure:"show_detail"` // Detail pane visible on start
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Path:    DefaultStatusPath,
			Timeout: 30 * time.Second,
		},
		Source: SourceConfig{
			Strategy: StrategyFetch,
		},
		UI: UIConfig{
			RowBadges:  RowBadgesLegacy,
			ShowDetail: true,
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "idxstat", "idxstat.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "idxstat", "idxstat.log")
	}
}

// DefaultConfigDir returns the default config directory for the current OS
func DefaultConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "idxstat")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "idxstat")
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("IDXSTAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults must be registered for AutomaticEnv to see nested keys
	def := DefaultConfig()
	v.SetDefault("server.url", def.Server.URL)
	v.SetDefault("server.path", def.Server.Path)
	v.SetDefault("server.token", def.Server.Token)
	v.SetDefault("server.username", def.Server.Username)
	v.SetDefault("server.password", def.Server.Password)
	v.SetDefault("server.timeout", def.Server.Timeout)
	v.SetDefault("source.strategy", string(def.Source.Strategy))
	v.SetDefault("source.file", def.Source.File)
	v.SetDefault("ui.row_badges", string(def.UI.RowBadges))
	v.SetDefault("ui.show_detail", def.UI.ShowDetail)
	v.SetDefault("logging.file", def.Logging.File)
	v.SetDefault("logging.level", def.Logging.Level)
	return v
}

// LoadConfig loads configuration from file and environment. An empty path
// searches the default config directory and the working directory. An
// explicit path that does not exist yet yields the defaults, so first-run
// setup can create it.
func LoadConfig(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(DefaultConfigDir())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the rest of the program cannot act on
func (c *Config) Validate() error {
	switch c.Source.Strategy {
	case StrategyFetch, StrategyLocal:
	default:
		return fmt.Errorf("unknown source strategy: %q", c.Source.Strategy)
	}
	switch c.UI.RowBadges {
	case RowBadgesLegacy, RowBadgesStrict:
	default:
		return fmt.Errorf("unknown ui.row_badges value: %q", c.UI.RowBadges)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	return nil
}

// IsConfigured returns true if a payload source is set
func (c *Config) IsConfigured() bool {
	if c.Source.Strategy == StrategyLocal {
		return c.Source.File != ""
	}
	return c.Server.URL != ""
}

// StatusURL joins the server URL and the endpoint path
func (c *Config) StatusURL() string {
	path := c.Server.Path
	if path == "" {
		path = DefaultStatusPath
	}
	return strings.TrimRight(c.Server.URL, "/") + "/" + strings.TrimLeft(path, "/")
}

// DefaultConfigPath returns the file LoadConfig finds first when no path is given
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// SaveConfig writes cfg to path (DefaultConfigPath when empty) and returns
// the path written
func SaveConfig(cfg *Config, path string) (string, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")

	// Set fields individually to ensure correct key names (snake_case)
	v.Set("server.url", cfg.Server.URL)
	v.Set("server.path", cfg.Server.Path)
	v.Set("server.token", cfg.Server.Token)
	v.Set("server.username", cfg.Server.Username)
	v.Set("server.password", cfg.Server.Password)
	v.Set("server.timeout", cfg.Server.Timeout.String())

	v.Set("source.strategy", string(cfg.Source.Strategy))
	v.Set("source.file", cfg.Source.File)

	v.Set("ui.row_badges", string(cfg.UI.RowBadges))
	v.Set("ui.show_detail", cfg.UI.ShowDetail)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	if err := v.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return path, nil
}
