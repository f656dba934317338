// Package stack builds the collaborators folio commands share from the
// resolved configuration: the storage driver, the event publisher and the
// ranking engines.
package stack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	cacheinmemory "github.com/papercomputeco/folio/pkg/cache/inmemory"
	"github.com/papercomputeco/folio/pkg/centrality"
	"github.com/papercomputeco/folio/pkg/config"
	"github.com/papercomputeco/folio/pkg/document"
	"github.com/papercomputeco/folio/pkg/dotdir"
	"github.com/papercomputeco/folio/pkg/eventstream"
	"github.com/papercomputeco/folio/pkg/eventstream/kafka"
	"github.com/papercomputeco/folio/pkg/eventstream/nop"
	"github.com/papercomputeco/folio/pkg/logger"
	"github.com/papercomputeco/folio/pkg/orchestrator"
	"github.com/papercomputeco/folio/pkg/similarity"
	"github.com/papercomputeco/folio/pkg/storage"
	"github.com/papercomputeco/folio/pkg/storage/inmemory"
	"github.com/papercomputeco/folio/pkg/storage/postgres"
	"github.com/papercomputeco/folio/pkg/storage/sqlite"
	"github.com/papercomputeco/folio/pkg/worker"
)

const (
	ProviderInMemory = "inmemory"
	ProviderSQLite   = "sqlite"
	ProviderPostgres = "postgres"

	PublisherNop   = "nop"
	PublisherKafka = "kafka"
)

var (
	// ErrUnknownProvider is returned for a storage or event stream provider
	// folio does not know.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrMissingDSN is returned when the postgres provider has no DSN.
	ErrMissingDSN = errors.New("postgres storage requires storage.postgres_dsn (or --postgres)")
)

// Resolve returns the configuration of cmd, layering defaults, config.toml,
// FOLIO_* environment variables and the registered flags named by keys.
// The --config-dir override is returned alongside.
func Resolve(cmd *cobra.Command, keys []string) (*config.Config, string, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, "", fmt.Errorf("loading config: %w", err)
	}
	config.BindRegisteredFlags(v, cmd, config.FolioFlags, keys)

	return config.FromViper(v), configDir, nil
}

// Logger returns the CLI logger honoring the --debug flag.
func Logger(cmd *cobra.Command) *slog.Logger {
	debug, _ := cmd.Flags().GetBool("debug")
	return logger.ForCLI(debug)
}

// OpenDriver opens the configured storage driver. An unset SQLite path
// resolves to folio.sqlite inside the .folio/ directory.
func OpenDriver(ctx context.Context, cfg *config.Config, configDir string, log *slog.Logger) (storage.Driver, error) {
	switch cfg.Storage.Provider {
	case ProviderInMemory:
		log.Info("using in-memory storage")
		return inmemory.NewDriver(), nil

	case ProviderSQLite, "":
		path := cfg.Storage.SQLitePath
		if path == "" {
			var err error
			path, err = dotdir.NewManager().File(configDir, config.DefaultSQLiteFile)
			if err != nil {
				return nil, fmt.Errorf("resolving sqlite path: %w", err)
			}
		}
		driver, err := sqlite.NewDriver(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite storage: %w", err)
		}
		log.Info("using SQLite storage", "path", path)
		return driver, nil

	case ProviderPostgres:
		if cfg.Storage.PostgresDSN == "" {
			return nil, ErrMissingDSN
		}
		driver, err := postgres.NewDriver(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("opening postgres storage: %w", err)
		}
		log.Info("using PostgreSQL storage")
		return driver, nil

	default:
		return nil, fmt.Errorf("%w: storage %q", ErrUnknownProvider, cfg.Storage.Provider)
	}
}

// NewPublisher creates the configured event publisher.
func NewPublisher(cfg *config.Config, log *slog.Logger) (eventstream.Publisher, error) {
	switch cfg.EventStream.Provider {
	case PublisherNop, "":
		return nop.NewPublisher(), nil

	case PublisherKafka:
		p, err := kafka.NewPublisher(kafka.Config{
			Brokers: cfg.EventStream.Brokers,
			Topic:   cfg.EventStream.Topic,
			Logger:  log,
		})
		if err != nil {
			return nil, fmt.Errorf("creating kafka publisher: %w", err)
		}
		log.Info("publishing graph events to kafka",
			"brokers", cfg.EventStream.Brokers,
			"topic", cfg.EventStream.Topic,
		)
		return p, nil

	default:
		return nil, fmt.Errorf("%w: eventstream %q", ErrUnknownProvider, cfg.EventStream.Provider)
	}
}

// CentralityConfig returns the scorer configuration of cfg.
func CentralityConfig(cfg *config.Config) (centrality.Config, error) {
	c := centrality.DefaultConfig()
	c.BetweennessCutoff = cfg.Centrality.BetweennessCutoff
	c.SampleSize = cfg.Centrality.SampleSize
	c.ClosenessCutoff = cfg.Centrality.ClosenessCutoff

	budget, err := config.ParseDuration(cfg.Centrality.Budget, c.Budget)
	if err != nil {
		return c, fmt.Errorf("centrality.budget: %w", err)
	}
	c.Budget = budget
	return c, nil
}

// SimilarityConfig returns the search defaults of cfg.
func SimilarityConfig(cfg *config.Config) similarity.Config {
	return similarity.Config{
		MinScore: cfg.Similarity.MinScore,
		TopN:     cfg.Similarity.TopN,
	}
}

// OrchestratorConfig returns the orchestrator limits and TTLs of cfg.
func OrchestratorConfig(cfg *config.Config) (orchestrator.Config, error) {
	d := orchestrator.DefaultConfig()
	o := cfg.Orchestrator

	c := d
	c.SyncRankLimit = o.SyncRankLimit
	c.AsyncRankLimit = o.AsyncRankLimit
	c.MaxSuggestions = o.MaxSuggestions

	var err error
	if c.SuggestionBudget, err = config.ParseDuration(o.SuggestionBudget, d.SuggestionBudget); err != nil {
		return c, fmt.Errorf("orchestrator.suggestion_budget: %w", err)
	}
	if c.ResponseTTL, err = config.ParseDuration(o.ResponseTTL, d.ResponseTTL); err != nil {
		return c, fmt.Errorf("orchestrator.response_ttl: %w", err)
	}
	if c.CentralityTTL, err = config.ParseDuration(o.CentralityTTL, d.CentralityTTL); err != nil {
		return c, fmt.Errorf("orchestrator.centrality_ttl: %w", err)
	}
	return c, nil
}

// Engines bundles the ranking collaborators built over one store.
type Engines struct {
	Ranker       *centrality.Ranker
	Search       *similarity.Engine
	Orchestrator *orchestrator.Orchestrator

	pool *worker.Pool
}

// NewEngines wires the ranker, the similarity engine and the orchestrator
// over store, sharing an in-memory cache with a background ranking pool.
// Close stops the pool.
func NewEngines(store storage.Driver, cfg *config.Config, log *slog.Logger) (*Engines, error) {
	cc, err := CentralityConfig(cfg)
	if err != nil {
		return nil, err
	}
	oc, err := OrchestratorConfig(cfg)
	if err != nil {
		return nil, err
	}

	ranker := centrality.NewRanker(cc, log)
	cache := cacheinmemory.New(cfg.Cache.Capacity)

	pool, err := worker.NewPool(&worker.Config{
		Ranker:     ranker,
		Cache:      cache,
		NumWorkers: cfg.Orchestrator.Workers,
		QueueSize:  cfg.Orchestrator.QueueSize,
		Logger:     log,
	})
	if err != nil {
		return nil, fmt.Errorf("starting ranking pool: %w", err)
	}

	orch, err := orchestrator.New(oc, orchestrator.Dependencies{
		Documents: store,
		Neighbors: store,
		Cache:     cache,
		Ranker:    ranker,
		Pool:      pool,
		Logger:    log,
	})
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &Engines{
		Ranker:       ranker,
		Search:       similarity.NewEngine(store, store, SimilarityConfig(cfg), log),
		Orchestrator: orch,
		pool:         pool,
	}, nil
}

// Close drains the ranking pool.
func (e *Engines) Close() {
	e.pool.Close()
}

// Thresholds holds the --min-occurrence-* flags filtering imported keyword
// files.
type Thresholds struct {
	English int
	French  int
}

// AddFlags registers the threshold flags on cmd.
func (t *Thresholds) AddFlags(cmd *cobra.Command) {
	d := document.DefaultOccurrenceThresholds()
	cmd.Flags().IntVar(&t.English, "min-occurrence-en", d[document.LanguageEnglish], "Minimum occurrences of an English token")
	cmd.Flags().IntVar(&t.French, "min-occurrence-fr", d[document.LanguageFrench], "Minimum occurrences of a French token")
}

// Occurrences returns the thresholds per language.
func (t Thresholds) Occurrences() document.OccurrenceThresholds {
	return document.OccurrenceThresholds{
		document.LanguageEnglish: t.English,
		document.LanguageFrench:  t.French,
	}
}
