package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable the harvester reads
const EnvPrefix = "BOARDHARVEST_"

// Output modes select the persistence path
const (
	OutputModeAuto      = "auto"
	OutputModeDirectory = "directory"
	OutputModeDownloads = "downloads"
)

// Config holds all configuration options for the board harvester
type Config struct {
	// Pinterest request settings and session
	Pinterest PinterestConfig `yaml:"pinterest" json:"pinterest"`

	// Browser that hosts the board page
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Scroll loop tuning
	Harvest HarvestConfig `yaml:"harvest" json:"harvest"`

	// Payload fetching
	Download DownloadConfig `yaml:"download" json:"download"`

	// Persistence settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Notification preferences
	Notifications NotificationConfig `yaml:"notifications" json:"notifications"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// PinterestConfig holds site-specific request settings
type PinterestConfig struct {
	BaseURL       string `yaml:"base_url" json:"base_url"`
	UserAgent     string `yaml:"user_agent" json:"user_agent"`
	SessionCookie string `yaml:"session_cookie" json:"session_cookie"`
	Account       string `yaml:"account" json:"account"`
}

// BrowserConfig controls the Chrome instance driven through rod
type BrowserConfig struct {
	RemoteURL         string        `yaml:"remote_url" json:"remote_url"`
	Headless          bool          `yaml:"headless" json:"headless"`
	Stealth           bool          `yaml:"stealth" json:"stealth"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout" json:"navigation_timeout"`
}

// HarvestConfig holds the scroll heuristic. The defaults are an empirical
// liveness bound for lazy loading, not a correctness guarantee.
type HarvestConfig struct {
	TickInterval   time.Duration `yaml:"tick_interval" json:"tick_interval"`
	StallThreshold int           `yaml:"stall_threshold" json:"stall_threshold"`
	MinImageWidth  int           `yaml:"min_image_width" json:"min_image_width"`
}

// DownloadConfig holds fetch pool configuration
type DownloadConfig struct {
	Concurrency       int           `yaml:"concurrency" json:"concurrency"`
	RequestTimeout    time.Duration `yaml:"request_timeout" json:"request_timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// OutputConfig holds persistence configuration
type OutputConfig struct {
	Mode               string        `yaml:"mode" json:"mode"`
	Directory          string        `yaml:"directory" json:"directory"`
	DownloadsDirectory string        `yaml:"downloads_directory" json:"downloads_directory"`
	SettleDelay        time.Duration `yaml:"settle_delay" json:"settle_delay"`
	AssumeYes          bool          `yaml:"assume_yes" json:"assume_yes"`
}

// NotificationConfig holds notification preferences
type NotificationConfig struct {
	Enabled    bool `yaml:"enabled" json:"enabled"`
	OnComplete bool `yaml:"on_complete" json:"on_complete"`
	OnError    bool `yaml:"on_error" json:"on_error"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Pinterest: PinterestConfig{
			BaseURL:   "https://www.pinterest.com",
			UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		},
		Browser: BrowserConfig{
			Headless:          true,
			Stealth:           true,
			NavigationTimeout: 30 * time.Second,
		},
		Harvest: HarvestConfig{
			TickInterval:   900 * time.Millisecond,
			StallThreshold: 12,
			MinImageWidth:  80,
		},
		Download: DownloadConfig{
			Concurrency:       5,
			RequestTimeout:    0, // no per-fetch timeout
			RequestsPerMinute: 0, // unlimited
		},
		Output: OutputConfig{
			Mode:               OutputModeAuto,
			Directory:          "",
			DownloadsDirectory: defaultDownloadsDir(),
			SettleDelay:        300 * time.Millisecond,
		},
		Notifications: NotificationConfig{
			Enabled:    true,
			OnComplete: true,
			OnError:    true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func defaultDownloadsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./downloads"
	}
	return filepath.Join(home, "Downloads")
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv(EnvPrefix + "SESSION"); v != "" {
		c.Pinterest.SessionCookie = v
	}
	if v := os.Getenv(EnvPrefix + "USER_AGENT"); v != "" {
		c.Pinterest.UserAgent = v
	}
	if v := os.Getenv(EnvPrefix + "BROWSER_URL"); v != "" {
		c.Browser.RemoteURL = v
	}
	if v := os.Getenv(EnvPrefix + "OUTPUT_DIR"); v != "" {
		c.Output.Directory = v
	}
	if v := os.Getenv(EnvPrefix + "OUTPUT_MODE"); v != "" {
		c.Output.Mode = strings.ToLower(v)
	}

	if v := os.Getenv(EnvPrefix + "CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sCONCURRENCY: %w", EnvPrefix, err)
		}
		c.Download.Concurrency = n
	}
	if v := os.Getenv(EnvPrefix + "TICK_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sTICK_INTERVAL: %w", EnvPrefix, err)
		}
		c.Harvest.TickInterval = d
	}
	if v := os.Getenv(EnvPrefix + "STALL_THRESHOLD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sSTALL_THRESHOLD: %w", EnvPrefix, err)
		}
		c.Harvest.StallThreshold = n
	}

	if v := os.Getenv(EnvPrefix + "NOTIFICATIONS_ENABLED"); v != "" {
		c.Notifications.Enabled = strings.ToLower(v) == "true"
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = findConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for a config file in standard locations
func findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".boardharvest.yaml",
		".boardharvest.yml",
		filepath.Join(home, ".config", "boardharvest", "config.yaml"),
		filepath.Join(home, ".config", "boardharvest", "config.yml"),
		filepath.Join(home, ".boardharvest.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Harvest.TickInterval <= 0 {
		errs = append(errs, errors.New("harvest tick interval must be positive"))
	}
	if c.Harvest.StallThreshold <= 0 {
		errs = append(errs, errors.New("harvest stall threshold must be positive"))
	}
	if c.Harvest.MinImageWidth < 0 {
		errs = append(errs, errors.New("minimum image width cannot be negative"))
	}

	if c.Download.Concurrency <= 0 {
		errs = append(errs, errors.New("download concurrency must be positive"))
	}
	if c.Download.Concurrency > 16 {
		errs = append(errs, errors.New("download concurrency should not exceed 16"))
	}
	if c.Download.RequestTimeout < 0 {
		errs = append(errs, errors.New("request timeout cannot be negative"))
	}
	if c.Download.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("requests per minute cannot be negative"))
	}

	switch strings.ToLower(c.Output.Mode) {
	case OutputModeAuto, OutputModeDirectory, OutputModeDownloads:
	default:
		errs = append(errs, fmt.Errorf("invalid output mode %q", c.Output.Mode))
	}
	if c.Output.DownloadsDirectory == "" {
		errs = append(errs, errors.New("downloads directory is required"))
	}
	if c.Output.SettleDelay < 0 {
		errs = append(errs, errors.New("settle delay cannot be negative"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges explicitly set command line flags into the
// configuration. Keys match the cobra flag names.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["output"].(string); ok && v != "" {
		c.Output.Directory = v
	}
	if v, ok := flags["mode"].(string); ok && v != "" {
		c.Output.Mode = strings.ToLower(v)
	}
	if v, ok := flags["yes"].(bool); ok {
		c.Output.AssumeYes = v
	}
	if v, ok := flags["concurrency"].(int); ok && v > 0 {
		c.Download.Concurrency = v
	}
	if v, ok := flags["browser-url"].(string); ok && v != "" {
		c.Browser.RemoteURL = v
	}
	if v, ok := flags["headful"].(bool); ok && v {
		c.Browser.Headless = false
	}
	if v, ok := flags["tick"].(time.Duration); ok && v > 0 {
		c.Harvest.TickInterval = v
	}
	if v, ok := flags["stall"].(int); ok && v > 0 {
		c.Harvest.StallThreshold = v
	}
	if v, ok := flags["account"].(string); ok && v != "" {
		c.Pinterest.Account = v
	}
	if v, ok := flags["notifications"].(bool); ok {
		c.Notifications.Enabled = v
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".boardharvest.env"))

	cfg := DefaultConfig()

	if err := cfg.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg.MergeCommandLineFlags(flags)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}
