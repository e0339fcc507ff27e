package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Path:              "~/.config/waymark",
			SQLiteFile:        "waymark.db",
			SQLiteJournalMode: "wal",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Frecency: FrecencyConfig{
			NumVisits:            10,
			BucketCutoffDays:     []int{4, 14, 31, 90},
			BucketWeights:        []int{100, 70, 50, 30, 10},
			TypedBonus:           2000,
			LinkBonus:            100,
			BookmarkBonus:        75,
			DownloadBonus:        0,
			RedirectBoostPercent: 25,
		},
	}
}
