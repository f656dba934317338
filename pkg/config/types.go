package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config represents the persistent folio configuration stored as config.toml
// in the .folio/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version      int                `toml:"version"`
	Storage      StorageConfig      `toml:"storage"`
	API          APIConfig          `toml:"api"`
	Client       ClientConfig       `toml:"client"`
	Jaccard      JaccardConfig      `toml:"jaccard"`
	Centrality   CentralityConfig   `toml:"centrality"`
	Similarity   SimilarityConfig   `toml:"similarity"`
	Cache        CacheConfig        `toml:"cache"`
	Orchestrator OrchestratorConfig `toml:"orchestrator"`
	EventStream  EventStreamConfig  `toml:"eventstream"`
}

// StorageConfig selects and locates the document store.
type StorageConfig struct {
	// Provider is one of "inmemory", "sqlite" or "postgres".
	Provider    string `toml:"provider,omitempty"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// ClientConfig holds settings for CLI commands that talk to a running API
// server. Values are full URLs (scheme + host + port).
type ClientConfig struct {
	APITarget string `toml:"api_target,omitempty"`
}

// JaccardConfig holds neighbor graph build settings.
type JaccardConfig struct {
	Threshold float64 `toml:"threshold,omitempty"`
	Workers   uint    `toml:"workers,omitempty"`
}

// CentralityConfig tunes the centrality scorers. Budget is a Go duration
// string such as "2s".
type CentralityConfig struct {
	BetweennessCutoff int    `toml:"betweenness_cutoff,omitempty"`
	SampleSize        int    `toml:"sample_size,omitempty"`
	ClosenessCutoff   int    `toml:"closeness_cutoff,omitempty"`
	Budget            string `toml:"budget,omitempty"`
}

// SimilarityConfig holds the similarity search defaults.
type SimilarityConfig struct {
	MinScore float64 `toml:"min_score,omitempty"`
	TopN     int     `toml:"top_n,omitempty"`
}

// CacheConfig sizes the in-process cache.
type CacheConfig struct {
	Capacity int `toml:"capacity,omitempty"`
}

// OrchestratorConfig holds ranking limits, suggestion settings, TTLs and
// the background worker pool size. Durations are Go duration strings.
type OrchestratorConfig struct {
	SyncRankLimit    int    `toml:"sync_rank_limit,omitempty"`
	AsyncRankLimit   int    `toml:"async_rank_limit,omitempty"`
	MaxSuggestions   int    `toml:"max_suggestions,omitempty"`
	SuggestionBudget string `toml:"suggestion_budget,omitempty"`
	ResponseTTL      string `toml:"response_ttl,omitempty"`
	CentralityTTL    string `toml:"centrality_ttl,omitempty"`
	Workers          uint   `toml:"workers,omitempty"`
	QueueSize        uint   `toml:"queue_size,omitempty"`
}

// EventStreamConfig selects where graph build events go.
type EventStreamConfig struct {
	// Provider is "nop" or "kafka".
	Provider string   `toml:"provider,omitempty"`
	Brokers  []string `toml:"brokers,omitempty"`
	Topic    string   `toml:"topic,omitempty"`
}

// ParseDuration parses s, returning def for an empty string.
func ParseDuration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return d, nil
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func intKey(name string, field func(c *Config) *int) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.Itoa(*field(c))
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = n
			return nil
		},
	}
}

func uintKey(name string, field func(c *Config) *uint) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(*field(c)), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = uint(n)
			return nil
		},
	}
}

func floatKey(name string, field func(c *Config) *float64) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.FormatFloat(*field(c), 'g', -1, 64)
		},
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = f
			return nil
		},
	}
}

func durationKey(name string, field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error {
			if _, err := time.ParseDuration(v); err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = v
			return nil
		},
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"storage.provider":     stringKey(func(c *Config) *string { return &c.Storage.Provider }),
	"storage.sqlite_path":  stringKey(func(c *Config) *string { return &c.Storage.SQLitePath }),
	"storage.postgres_dsn": stringKey(func(c *Config) *string { return &c.Storage.PostgresDSN }),

	"api.listen":        stringKey(func(c *Config) *string { return &c.API.Listen }),
	"client.api_target": stringKey(func(c *Config) *string { return &c.Client.APITarget }),

	"jaccard.threshold": floatKey("jaccard.threshold", func(c *Config) *float64 { return &c.Jaccard.Threshold }),
	"jaccard.workers":   uintKey("jaccard.workers", func(c *Config) *uint { return &c.Jaccard.Workers }),

	"centrality.betweenness_cutoff": intKey("centrality.betweenness_cutoff", func(c *Config) *int { return &c.Centrality.BetweennessCutoff }),
	"centrality.sample_size":        intKey("centrality.sample_size", func(c *Config) *int { return &c.Centrality.SampleSize }),
	"centrality.closeness_cutoff":   intKey("centrality.closeness_cutoff", func(c *Config) *int { return &c.Centrality.ClosenessCutoff }),
	"centrality.budget":             durationKey("centrality.budget", func(c *Config) *string { return &c.Centrality.Budget }),

	"similarity.min_score": floatKey("similarity.min_score", func(c *Config) *float64 { return &c.Similarity.MinScore }),
	"similarity.top_n":     intKey("similarity.top_n", func(c *Config) *int { return &c.Similarity.TopN }),

	"cache.capacity": intKey("cache.capacity", func(c *Config) *int { return &c.Cache.Capacity }),

	"orchestrator.sync_rank_limit":   intKey("orchestrator.sync_rank_limit", func(c *Config) *int { return &c.Orchestrator.SyncRankLimit }),
	"orchestrator.async_rank_limit":  intKey("orchestrator.async_rank_limit", func(c *Config) *int { return &c.Orchestrator.AsyncRankLimit }),
	"orchestrator.max_suggestions":   intKey("orchestrator.max_suggestions", func(c *Config) *int { return &c.Orchestrator.MaxSuggestions }),
	"orchestrator.suggestion_budget": durationKey("orchestrator.suggestion_budget", func(c *Config) *string { return &c.Orchestrator.SuggestionBudget }),
	"orchestrator.response_ttl":      durationKey("orchestrator.response_ttl", func(c *Config) *string { return &c.Orchestrator.ResponseTTL }),
	"orchestrator.centrality_ttl":    durationKey("orchestrator.centrality_ttl", func(c *Config) *string { return &c.Orchestrator.CentralityTTL }),
	"orchestrator.workers":           uintKey("orchestrator.workers", func(c *Config) *uint { return &c.Orchestrator.Workers }),
	"orchestrator.queue_size":        uintKey("orchestrator.queue_size", func(c *Config) *uint { return &c.Orchestrator.QueueSize }),

	"eventstream.provider": stringKey(func(c *Config) *string { return &c.EventStream.Provider }),
	"eventstream.brokers": {
		get: func(c *Config) string { return strings.Join(c.EventStream.Brokers, ",") },
		set: func(c *Config, v string) error {
			c.EventStream.Brokers = nil
			for _, b := range strings.Split(v, ",") {
				if b = strings.TrimSpace(b); b != "" {
					c.EventStream.Brokers = append(c.EventStream.Brokers, b)
				}
			}
			return nil
		},
	},
	"eventstream.topic": stringKey(func(c *Config) *string { return &c.EventStream.Topic }),
}
