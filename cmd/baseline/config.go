package main

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jward/baseline"
)

// Config mirrors the optional TOML config file. Zero values fall back
// to the engine defaults.
type Config struct {
	Engine  EngineConfig  `toml:"engine"`
	Dataset DatasetConfig `toml:"dataset"`
	Rules   RulesConfig   `toml:"rules"`
}

type EngineConfig struct {
	DebounceMS       int    `toml:"debounce_ms"`
	MaxSourceBytes   int    `toml:"max_source_bytes"`
	LargeSourceBytes int    `toml:"large_source_bytes"`
	CacheEntries     int    `toml:"cache_entries"`
	TimeoutMS        int    `toml:"timeout_ms"`
	TieBreak         string `toml:"tie_break"` // "string" or "array"
}

type DatasetConfig struct {
	JSON string `toml:"json"`
	DB   string `toml:"db"`
}

type RulesConfig struct {
	Dir string `toml:"dir"`
}

// loadConfig reads a TOML config file. A missing path returns an
// empty config; a missing file named explicitly is an error.
func loadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return cfg, fmt.Errorf("config file %s not found", path)
		}
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// options converts the config into engine options.
func (c Config) options() ([]baseline.Option, error) {
	var opts []baseline.Option

	if c.Engine.DebounceMS > 0 {
		opts = append(opts, baseline.WithDebounceDelay(time.Duration(c.Engine.DebounceMS)*time.Millisecond))
	}
	if c.Engine.MaxSourceBytes > 0 {
		opts = append(opts, baseline.WithMaxSourceSize(c.Engine.MaxSourceBytes))
	}
	if c.Engine.LargeSourceBytes > 0 {
		opts = append(opts, baseline.WithLargeSourceSize(c.Engine.LargeSourceBytes))
	}
	if c.Engine.CacheEntries > 0 {
		opts = append(opts, baseline.WithMaxCacheEntries(c.Engine.CacheEntries))
	}
	if c.Engine.TimeoutMS > 0 {
		opts = append(opts, baseline.WithTimeout(time.Duration(c.Engine.TimeoutMS)*time.Millisecond))
	}
	switch c.Engine.TieBreak {
	case "":
	case "string":
		opts = append(opts, baseline.WithTieBreak(baseline.TieBreakString))
	case "array":
		opts = append(opts, baseline.WithTieBreak(baseline.TieBreakArray))
	default:
		return nil, fmt.Errorf("config: unknown tie_break %q (want \"string\" or \"array\")", c.Engine.TieBreak)
	}

	if c.Dataset.JSON != "" && c.Dataset.DB != "" {
		return nil, fmt.Errorf("config: dataset.json and dataset.db are mutually exclusive")
	}
	if c.Dataset.JSON != "" {
		opts = append(opts, baseline.WithDatasetJSON(c.Dataset.JSON))
	}
	if c.Dataset.DB != "" {
		opts = append(opts, baseline.WithDatasetDB(c.Dataset.DB))
	}
	if c.Rules.Dir != "" {
		opts = append(opts, baseline.WithRulesFS(os.DirFS(c.Rules.Dir)))
	}
	return opts, nil
}
