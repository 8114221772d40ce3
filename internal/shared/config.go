package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Output    OutputConfig    `toml:"output"`
	Tools     ToolsConfig     `toml:"tools"`
	Download  DownloadConfig  `toml:"download"`
	Database  DatabaseConfig  `toml:"database"`
	QuodLibet QuodLibetConfig `toml:"quodlibet"`
}

// OutputConfig contains filesystem destination settings.
type OutputConfig struct {
	Dir string `toml:"dir"`
}

// ToolsConfig names the external binaries the pipeline drives.
type ToolsConfig struct {
	YtDlp     string `toml:"ytdlp"`
	FFmpeg    string `toml:"ffmpeg"`
	QuodLibet string `toml:"quodlibet"`
}

// DownloadConfig contains fetch behavior settings.
type DownloadConfig struct {
	PacePerMinute   int  `toml:"pace_per_minute"`
	AudioQuality    int  `toml:"audio_quality"`
	EmbedThumbnails bool `toml:"embed_thumbnails"`
}

// DatabaseConfig contains history database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// QuodLibetConfig contains library registration settings.
type QuodLibetConfig struct {
	RefreshDelaySeconds int `toml:"refresh_delay_seconds"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ExpandHome replaces a leading "~" in path with the current user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
