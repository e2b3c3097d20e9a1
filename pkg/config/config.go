package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the archiver
type Config struct {
	// Bilibili session cookies
	Bilibili BilibiliConfig `yaml:"bilibili" json:"bilibili"`

	// Rate limiting for feed API calls
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// BilibiliConfig holds the cookie-based session context
type BilibiliConfig struct {
	SESSDATA   string `yaml:"sessdata" json:"sessdata"`
	BiliJct    string `yaml:"bili_jct" json:"bili_jct"`
	Buvid3     string `yaml:"buvid3" json:"buvid3"`
	DedeUserID string `yaml:"dedeuserid" json:"dedeuserid"`
	UserAgent  string `yaml:"user_agent" json:"user_agent"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
	BurstSize         int `yaml:"burst_size" json:"burst_size"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	BaseDirectory     string `yaml:"base_directory" json:"base_directory"`
	CreateUserFolders bool   `yaml:"create_user_folders" json:"create_user_folders"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	ConcurrentDownloads  int           `yaml:"concurrent_downloads" json:"concurrent_downloads"`
	DownloadTimeout      time.Duration `yaml:"download_timeout" json:"download_timeout"`
	MediaEnabled         bool          `yaml:"media_enabled" json:"media_enabled"`
	FromSnapshot         bool          `yaml:"from_snapshot" json:"from_snapshot"`
	SkipRepostsAndCovers bool          `yaml:"skip_reposts_and_covers" json:"skip_reposts_and_covers"`
	SkipTextOnly         bool          `yaml:"skip_text_only" json:"skip_text_only"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Bilibili: BilibiliConfig{
			UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/101.0.4951.64 Safari/537.36",
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 60,
			BurstSize:         10,
		},
		Output: OutputConfig{
			BaseDirectory:     "./dynamic_download",
			CreateUserFolders: true,
		},
		Download: DownloadConfig{
			ConcurrentDownloads:  50,
			DownloadTimeout:      30 * time.Second,
			MediaEnabled:         true,
			FromSnapshot:         false,
			SkipRepostsAndCovers: true,
			SkipTextOnly:         true,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if sessdata := os.Getenv("BILIFETCH_SESSDATA"); sessdata != "" {
		c.Bilibili.SESSDATA = sessdata
	}
	if jct := os.Getenv("BILIFETCH_BILI_JCT"); jct != "" {
		c.Bilibili.BiliJct = jct
	}
	if buvid := os.Getenv("BILIFETCH_BUVID3"); buvid != "" {
		c.Bilibili.Buvid3 = buvid
	}
	if dede := os.Getenv("BILIFETCH_DEDEUSERID"); dede != "" {
		c.Bilibili.DedeUserID = dede
	}
	if ua := os.Getenv("BILIFETCH_USER_AGENT"); ua != "" {
		c.Bilibili.UserAgent = ua
	}

	if rpm := os.Getenv("BILIFETCH_REQUESTS_PER_MINUTE"); rpm != "" {
		var val int
		fmt.Sscanf(rpm, "%d", &val)
		if val > 0 {
			c.RateLimit.RequestsPerMinute = val
		}
	}

	if outputDir := os.Getenv("BILIFETCH_OUTPUT_DIR"); outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}

	if concurrent := os.Getenv("BILIFETCH_CONCURRENT_DOWNLOADS"); concurrent != "" {
		var val int
		fmt.Sscanf(concurrent, "%d", &val)
		if val > 0 {
			c.Download.ConcurrentDownloads = val
		}
	}

	if logLevel := os.Getenv("BILIFETCH_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
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

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".bilifetch.yaml",
		".bilifetch.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "bilifetch", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "bilifetch", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".bilifetch.yaml"),
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

	if c.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("requests per minute must be positive"))
	}
	if c.RateLimit.BurstSize <= 0 {
		errs = append(errs, errors.New("burst size must be positive"))
	}

	if c.Download.ConcurrentDownloads <= 0 {
		errs = append(errs, errors.New("concurrent downloads must be positive"))
	}
	if c.Download.DownloadTimeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}

	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
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

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if concurrent, ok := flags["concurrent"].(int); ok && concurrent > 0 {
		c.Download.ConcurrentDownloads = concurrent
	}
	if rpm, ok := flags["rate-limit"].(int); ok && rpm > 0 {
		c.RateLimit.RequestsPerMinute = rpm
	}
	if timeout, ok := flags["download-timeout"].(int); ok && timeout > 0 {
		c.Download.DownloadTimeout = time.Duration(timeout) * time.Second
	}
	if noMedia, ok := flags["no-media"].(bool); ok && noMedia {
		c.Download.MediaEnabled = false
	}
	if fromSnapshot, ok := flags["from-snapshot"].(bool); ok {
		c.Download.FromSnapshot = fromSnapshot
	}
	if skip, ok := flags["skip-reposts"].(bool); ok {
		c.Download.SkipRepostsAndCovers = skip
	}
	if skip, ok := flags["skip-text-only"].(bool); ok {
		c.Download.SkipTextOnly = skip
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".bilifetch.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
