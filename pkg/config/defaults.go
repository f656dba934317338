package config

const (
	defaultStorageProvider = "sqlite"
	defaultSQLiteFile      = "folio.sqlite"
	defaultAPIListen       = ":8081"

	defaultClientAPITarget = "http://localhost:8081"

	defaultJaccardThreshold = 0.6

	defaultBetweennessCutoff = 30
	defaultSampleSize        = 20
	defaultClosenessCutoff   = 50
	defaultCentralityBudget  = "2s"

	defaultMinScore = 0.3
	defaultTopN     = 10

	defaultCacheCapacity = 10000

	defaultSyncRankLimit    = 20
	defaultAsyncRankLimit   = 50
	defaultMaxSuggestions   = 10
	defaultSuggestionBudget = "2s"
	defaultResponseTTL      = "1h"
	defaultCentralityTTL    = "24h"
	defaultRankWorkers      = 3
	defaultRankQueueSize    = 256

	defaultEventStreamProvider = "nop"
	defaultEventStreamTopic    = "folio.graphs"
)

// DefaultSQLiteFile is the database file name used inside the .folio/
// directory when storage.sqlite_path is unset.
const DefaultSQLiteFile = defaultSQLiteFile

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			Provider: defaultStorageProvider,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Client: ClientConfig{
			APITarget: defaultClientAPITarget,
		},
		Jaccard: JaccardConfig{
			Threshold: defaultJaccardThreshold,
		},
		Centrality: CentralityConfig{
			BetweennessCutoff: defaultBetweennessCutoff,
			SampleSize:        defaultSampleSize,
			ClosenessCutoff:   defaultClosenessCutoff,
			Budget:            defaultCentralityBudget,
		},
		Similarity: SimilarityConfig{
			MinScore: defaultMinScore,
			TopN:     defaultTopN,
		},
		Cache: CacheConfig{
			Capacity: defaultCacheCapacity,
		},
		Orchestrator: OrchestratorConfig{
			SyncRankLimit:    defaultSyncRankLimit,
			AsyncRankLimit:   defaultAsyncRankLimit,
			MaxSuggestions:   defaultMaxSuggestions,
			SuggestionBudget: defaultSuggestionBudget,
			ResponseTTL:      defaultResponseTTL,
			CentralityTTL:    defaultCentralityTTL,
			Workers:          defaultRankWorkers,
			QueueSize:        defaultRankQueueSize,
		},
		EventStream: EventStreamConfig{
			Provider: defaultEventStreamProvider,
			Topic:    defaultEventStreamTopic,
		},
	}
}
