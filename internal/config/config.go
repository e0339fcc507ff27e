package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/runnerr0/waymark/internal/storage"
)

// Default config file path.
const DefaultConfigPath = "~/.config/waymark/config.yaml"

// Config holds all Waymark configuration.
type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
	Frecency FrecencyConfig `yaml:"frecency"`
}

type StorageConfig struct {
	Path              string `yaml:"path"`
	SQLiteFile        string `yaml:"sqlite_file"`
	SQLiteJournalMode string `yaml:"sqlite_journal_mode"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// FrecencyConfig tunes the reference frecency calculator without
// recompiling. Zero slices fall back to the calculator's defaults.
type FrecencyConfig struct {
	NumVisits            int   `yaml:"num_visits"`
	BucketCutoffDays     []int `yaml:"bucket_cutoff_days"`
	BucketWeights        []int `yaml:"bucket_weights"`
	TypedBonus           int   `yaml:"typed_bonus"`
	LinkBonus            int   `yaml:"link_bonus"`
	BookmarkBonus        int   `yaml:"bookmark_bonus"`
	DownloadBonus        int   `yaml:"download_bonus"`
	RedirectBoostPercent int   `yaml:"redirect_boost_percent"`
}

// Settings converts the YAML tuning into the storage layer's settings
// struct.
func (fc FrecencyConfig) Settings() *storage.FrecencySettings {
	s := storage.DefaultFrecencySettings()
	if fc.NumVisits > 0 {
		s.NumVisits = fc.NumVisits
	}
	if len(fc.BucketCutoffDays) > 0 && len(fc.BucketWeights) == len(fc.BucketCutoffDays)+1 {
		s.BucketCutoffDays = fc.BucketCutoffDays
		s.BucketWeights = fc.BucketWeights
	}
	if fc.TypedBonus > 0 {
		s.TypedBonus = fc.TypedBonus
	}
	if fc.LinkBonus > 0 {
		s.LinkBonus = fc.LinkBonus
	}
	if fc.BookmarkBonus > 0 {
		s.BookmarkBonus = fc.BookmarkBonus
	}
	if fc.DownloadBonus > 0 {
		s.DownloadBonus = fc.DownloadBonus
	}
	if fc.RedirectBoostPercent > 0 {
		s.RedirectBoostPercent = fc.RedirectBoostPercent
	}
	return s
}

// DatabasePath returns the resolved path of the SQLite file.
func (c *Config) DatabasePath() (string, error) {
	dir, err := expandPath(c.Storage.Path)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.Storage.SQLiteFile), nil
}

// Load reads a YAML config file at path and merges it with defaults.
// Returns an error if the file cannot be read or contains invalid YAML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// LoadOrCreate loads the config from the default path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreate() (*Config, error) {
	path, err := expandPath(DefaultConfigPath)
	if err != nil {
		return nil, err
	}
	return LoadOrCreateAt(path)
}

// LoadOrCreateAt loads the config from the given path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreateAt(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()

		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating config directory: %w", err)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshaling default config: %w", err)
		}

		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}

		return cfg, nil
	}

	return Load(path)
}
