package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/folio/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the FOLIO_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (FOLIO_API_LISTEN, FOLIO_STORAGE_PROVIDER, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: FOLIO_API_LISTEN, FOLIO_STORAGE_SQLITE_PATH, etc.
	v.SetEnvPrefix("FOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Storage
	v.SetDefault("storage.provider", d.Storage.Provider)
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)
	v.SetDefault("storage.postgres_dsn", d.Storage.PostgresDSN)

	// API and client
	v.SetDefault("api.listen", d.API.Listen)
	v.SetDefault("client.api_target", d.Client.APITarget)

	// Jaccard
	v.SetDefault("jaccard.threshold", d.Jaccard.Threshold)
	v.SetDefault("jaccard.workers", d.Jaccard.Workers)

	// Centrality
	v.SetDefault("centrality.betweenness_cutoff", d.Centrality.BetweennessCutoff)
	v.SetDefault("centrality.sample_size", d.Centrality.SampleSize)
	v.SetDefault("centrality.closeness_cutoff", d.Centrality.ClosenessCutoff)
	v.SetDefault("centrality.budget", d.Centrality.Budget)

	// Similarity
	v.SetDefault("similarity.min_score", d.Similarity.MinScore)
	v.SetDefault("similarity.top_n", d.Similarity.TopN)

	// Cache
	v.SetDefault("cache.capacity", d.Cache.Capacity)

	// Orchestrator
	v.SetDefault("orchestrator.sync_rank_limit", d.Orchestrator.SyncRankLimit)
	v.SetDefault("orchestrator.async_rank_limit", d.Orchestrator.AsyncRankLimit)
	v.SetDefault("orchestrator.max_suggestions", d.Orchestrator.MaxSuggestions)
	v.SetDefault("orchestrator.suggestion_budget", d.Orchestrator.SuggestionBudget)
	v.SetDefault("orchestrator.response_ttl", d.Orchestrator.ResponseTTL)
	v.SetDefault("orchestrator.centrality_ttl", d.Orchestrator.CentralityTTL)
	v.SetDefault("orchestrator.workers", d.Orchestrator.Workers)
	v.SetDefault("orchestrator.queue_size", d.Orchestrator.QueueSize)

	// Event stream
	v.SetDefault("eventstream.provider", d.EventStream.Provider)
	v.SetDefault("eventstream.brokers", d.EventStream.Brokers)
	v.SetDefault("eventstream.topic", d.EventStream.Topic)
}

// FromViper resolves a Config from v, honoring its full precedence chain.
func FromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Version: v.GetInt("version"),
		Storage: StorageConfig{
			Provider:    v.GetString("storage.provider"),
			SQLitePath:  v.GetString("storage.sqlite_path"),
			PostgresDSN: v.GetString("storage.postgres_dsn"),
		},
		API: APIConfig{
			Listen: v.GetString("api.listen"),
		},
		Client: ClientConfig{
			APITarget: v.GetString("client.api_target"),
		},
		Jaccard: JaccardConfig{
			Threshold: v.GetFloat64("jaccard.threshold"),
			Workers:   v.GetUint("jaccard.workers"),
		},
		Centrality: CentralityConfig{
			BetweennessCutoff: v.GetInt("centrality.betweenness_cutoff"),
			SampleSize:        v.GetInt("centrality.sample_size"),
			ClosenessCutoff:   v.GetInt("centrality.closeness_cutoff"),
			Budget:            v.GetString("centrality.budget"),
		},
		Similarity: SimilarityConfig{
			MinScore: v.GetFloat64("similarity.min_score"),
			TopN:     v.GetInt("similarity.top_n"),
		},
		Cache: CacheConfig{
			Capacity: v.GetInt("cache.capacity"),
		},
		Orchestrator: OrchestratorConfig{
			SyncRankLimit:    v.GetInt("orchestrator.sync_rank_limit"),
			AsyncRankLimit:   v.GetInt("orchestrator.async_rank_limit"),
			MaxSuggestions:   v.GetInt("orchestrator.max_suggestions"),
			SuggestionBudget: v.GetString("orchestrator.suggestion_budget"),
			ResponseTTL:      v.GetString("orchestrator.response_ttl"),
			CentralityTTL:    v.GetString("orchestrator.centrality_ttl"),
			Workers:          v.GetUint("orchestrator.workers"),
			QueueSize:        v.GetUint("orchestrator.queue_size"),
		},
		EventStream: EventStreamConfig{
			Provider: v.GetString("eventstream.provider"),
			Brokers:  brokers(v.GetStringSlice("eventstream.brokers")),
			Topic:    v.GetString("eventstream.topic"),
		},
	}

	applyDefaults(cfg)
	return cfg
}

// brokers splits comma-joined entries, as FOLIO_EVENTSTREAM_BROKERS arrives
// as a single string.
func brokers(in []string) []string {
	var out []string
	for _, s := range in {
		for _, b := range strings.Split(s, ",") {
			if b = strings.TrimSpace(b); b != "" {
				out = append(out, b)
			}
		}
	}
	return out
}
