package config

import "time"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/seshat/data/db/articles.db"
	}
	if cfg.Storage.BleveIndexPath == "" {
		cfg.Storage.BleveIndexPath = "/usr/local/var/seshat/data/indices/bleve"
	}
	if cfg.Fetch.BaseURL == "" {
		cfg.Fetch.BaseURL = "https://en.wikipedia.org/w/api.php"
	}
	if cfg.Fetch.Timeout == 0 {
		cfg.Fetch.Timeout = 15 * time.Second
	}
	if cfg.Fetch.UserAgent == "" {
		cfg.Fetch.UserAgent = "seshat/1.0 (https://github.com/hyperjump/seshat)"
	}
	if cfg.Summary.DefaultLines == 0 {
		cfg.Summary.DefaultLines = 100
	}
	if cfg.Summary.DefaultThreshold == nil {
		th := 0.5
		cfg.Summary.DefaultThreshold = &th
	}
	if cfg.Import.Extensions == nil {
		cfg.Import.Extensions = []string{".yaml", ".yml", ".json"}
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Import.Directories) > 0 && cfg.Import.Recursive == nil {
		t := true
		cfg.Import.Recursive = &t
	}
}
