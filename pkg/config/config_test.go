package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.RateLimit.RequestsPerMinute != 60 {
		t.Errorf("Expected default requests per minute to be 60, got %d", config.RateLimit.RequestsPerMinute)
	}

	if config.Download.ConcurrentDownloads != 50 {
		t.Errorf("Expected default concurrent downloads to be 50, got %d", config.Download.ConcurrentDownloads)
	}

	if config.Output.BaseDirectory != "./dynamic_download" {
		t.Errorf("Expected default output directory to be ./dynamic_download, got %s", config.Output.BaseDirectory)
	}

	if !config.Download.MediaEnabled {
		t.Error("Expected media downloads to be enabled by default")
	}

	if !config.Download.SkipRepostsAndCovers {
		t.Error("Expected reposts and covers to be skipped by default")
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Default config must validate: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	os.Setenv("BILIFETCH_SESSDATA", "test-sessdata")
	os.Setenv("BILIFETCH_BILI_JCT", "test-jct")
	os.Setenv("BILIFETCH_REQUESTS_PER_MINUTE", "30")
	os.Setenv("BILIFETCH_OUTPUT_DIR", "/tmp/test-archive")
	os.Setenv("BILIFETCH_CONCURRENT_DOWNLOADS", "5")
	os.Setenv("BILIFETCH_LOG_LEVEL", "debug")

	defer func() {
		os.Unsetenv("BILIFETCH_SESSDATA")
		os.Unsetenv("BILIFETCH_BILI_JCT")
		os.Unsetenv("BILIFETCH_REQUESTS_PER_MINUTE")
		os.Unsetenv("BILIFETCH_OUTPUT_DIR")
		os.Unsetenv("BILIFETCH_CONCURRENT_DOWNLOADS")
		os.Unsetenv("BILIFETCH_LOG_LEVEL")
	}()

	config := DefaultConfig()
	if err := config.LoadFromEnv(); err != nil {
		t.Fatalf("Failed to load from environment: %v", err)
	}

	if config.Bilibili.SESSDATA != "test-sessdata" {
		t.Errorf("Expected SESSDATA to be test-sessdata, got %s", config.Bilibili.SESSDATA)
	}

	if config.Bilibili.BiliJct != "test-jct" {
		t.Errorf("Expected bili_jct to be test-jct, got %s", config.Bilibili.BiliJct)
	}

	if config.RateLimit.RequestsPerMinute != 30 {
		t.Errorf("Expected requests per minute to be 30, got %d", config.RateLimit.RequestsPerMinute)
	}

	if config.Output.BaseDirectory != "/tmp/test-archive" {
		t.Errorf("Expected output directory to be /tmp/test-archive, got %s", config.Output.BaseDirectory)
	}

	if config.Download.ConcurrentDownloads != 5 {
		t.Errorf("Expected concurrent downloads to be 5, got %d", config.Download.ConcurrentDownloads)
	}

	if config.Logging.Level != "debug" {
		t.Errorf("Expected log level to be debug, got %s", config.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `bilibili:
  sessdata: "file-sessdata"
rate_limit:
  requests_per_minute: 45
download:
  concurrent_downloads: 12
  skip_text_only: false
logging:
  level: "warn"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	config := DefaultConfig()
	if err := config.LoadFromFile(path); err != nil {
		t.Fatalf("Failed to load config file: %v", err)
	}

	if config.Bilibili.SESSDATA != "file-sessdata" {
		t.Errorf("Expected SESSDATA from file, got %s", config.Bilibili.SESSDATA)
	}
	if config.RateLimit.RequestsPerMinute != 45 {
		t.Errorf("Expected 45 requests per minute, got %d", config.RateLimit.RequestsPerMinute)
	}
	if config.Download.ConcurrentDownloads != 12 {
		t.Errorf("Expected 12 concurrent downloads, got %d", config.Download.ConcurrentDownloads)
	}
	if config.Download.SkipTextOnly {
		t.Error("Expected skip_text_only to be overridden to false")
	}
	if config.Logging.Level != "warn" {
		t.Errorf("Expected log level warn, got %s", config.Logging.Level)
	}
}

func TestLoadFromFileMissingIsNotAnError(t *testing.T) {
	config := DefaultConfig()

	// Explicit missing path fails, empty path just skips the file
	if err := config.LoadFromFile("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for explicit missing file")
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	config := DefaultConfig()

	config.MergeCommandLineFlags(map[string]interface{}{
		"output":           "/tmp/flag-archive",
		"concurrent":       7,
		"rate-limit":       90,
		"download-timeout": 60,
		"no-media":         true,
		"from-snapshot":    true,
		"skip-reposts":     false,
		"log-level":        "error",
	})

	if config.Output.BaseDirectory != "/tmp/flag-archive" {
		t.Errorf("Expected flag output directory, got %s", config.Output.BaseDirectory)
	}
	if config.Download.ConcurrentDownloads != 7 {
		t.Errorf("Expected 7 concurrent downloads, got %d", config.Download.ConcurrentDownloads)
	}
	if config.RateLimit.RequestsPerMinute != 90 {
		t.Errorf("Expected 90 requests per minute, got %d", config.RateLimit.RequestsPerMinute)
	}
	if config.Download.DownloadTimeout != 60*time.Second {
		t.Errorf("Expected 60s timeout, got %v", config.Download.DownloadTimeout)
	}
	if config.Download.MediaEnabled {
		t.Error("Expected media downloads disabled")
	}
	if !config.Download.FromSnapshot {
		t.Error("Expected from-snapshot to be set")
	}
	if config.Download.SkipRepostsAndCovers {
		t.Error("Expected skip-reposts to be overridden to false")
	}
	if config.Logging.Level != "error" {
		t.Errorf("Expected log level error, got %s", config.Logging.Level)
	}
}

func TestFlagsOverrideEnv(t *testing.T) {
	os.Setenv("BILIFETCH_OUTPUT_DIR", "/tmp/env-archive")
	defer os.Unsetenv("BILIFETCH_OUTPUT_DIR")

	config, err := Load("", map[string]interface{}{"output": "/tmp/flag-archive"})
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.Output.BaseDirectory != "/tmp/flag-archive" {
		t.Errorf("Flags must override env, got %s", config.Output.BaseDirectory)
	}
}

func TestValidate(t *testing.T) {
	config := DefaultConfig()
	config.Download.ConcurrentDownloads = 0
	if err := config.Validate(); err == nil {
		t.Error("Expected error for zero concurrent downloads")
	}

	config = DefaultConfig()
	config.RateLimit.RequestsPerMinute = -1
	if err := config.Validate(); err == nil {
		t.Error("Expected error for negative rate limit")
	}

	config = DefaultConfig()
	config.Output.BaseDirectory = ""
	if err := config.Validate(); err == nil {
		t.Error("Expected error for empty output directory")
	}

	config = DefaultConfig()
	config.Logging.Level = "chatty"
	if err := config.Validate(); err == nil {
		t.Error("Expected error for invalid log level")
	}
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.yaml")

	config := DefaultConfig()
	config.Bilibili.SESSDATA = "saved-sessdata"
	config.Download.ConcurrentDownloads = 9

	if err := config.Save(path); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	reloaded := DefaultConfig()
	if err := reloaded.LoadFromFile(path); err != nil {
		t.Fatalf("Failed to reload config: %v", err)
	}

	if reloaded.Bilibili.SESSDATA != "saved-sessdata" {
		t.Errorf("SESSDATA lost in round trip: %s", reloaded.Bilibili.SESSDATA)
	}
	if reloaded.Download.ConcurrentDownloads != 9 {
		t.Errorf("Concurrent downloads lost in round trip: %d", reloaded.Download.ConcurrentDownloads)
	}
}
