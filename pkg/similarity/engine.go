package similarity

import (
	"context"
	"log/slog"
	"sort"

	"github.com/papercomputeco/folio/pkg/document"
	"github.com/papercomputeco/folio/pkg/storage"
)

const (
	// DefaultMinScore is the cosine floor a document must reach.
	DefaultMinScore = 0.3

	// DefaultTopN is the default number of results.
	DefaultTopN = 10
)

// Config holds the engine defaults, used when a Query leaves them unset.
type Config struct {
	MinScore float64
	TopN     int
}

// DefaultConfig returns the default search configuration.
func DefaultConfig() Config {
	return Config{
		MinScore: DefaultMinScore,
		TopN:     DefaultTopN,
	}
}

// Query describes one similarity search.
type Query struct {
	// CandidateIDs is the base candidate set. Seeds and results are
	// restricted to it.
	CandidateIDs []int64

	Keyword string
	Mode    storage.MatchMode

	// Languages searched for the keyword. Empty searches every keyword
	// language.
	Languages []string

	// MinScore and TopN fall back to the engine config when zero.
	MinScore float64
	TopN     int

	// SortByDownloads re-sorts the cut result by download count,
	// descending unless Ascending is set.
	SortByDownloads bool
	Ascending       bool
}

// Result is one ranked document.
type Result struct {
	document.Document
	Score float64 `json:"similarity_score"`
}

// Engine expands keyword matches into documents ranked by cosine
// similarity over a query-scoped TF-IDF vocabulary.
type Engine struct {
	keywords storage.KeywordStore
	docs     storage.DocumentStore
	config   Config
	logger   *slog.Logger
}

// NewEngine creates an Engine.
func NewEngine(keywords storage.KeywordStore, docs storage.DocumentStore, config Config, logger *slog.Logger) *Engine {
	d := DefaultConfig()
	if config.MinScore <= 0 {
		config.MinScore = d.MinScore
	}
	if config.TopN <= 0 {
		config.TopN = d.TopN
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		keywords: keywords,
		docs:     docs,
		config:   config,
		logger:   logger,
	}
}

// Search runs q. An empty keyword, candidate set or token match yields an
// empty result and a nil error.
func (e *Engine) Search(ctx context.Context, q Query) ([]Result, error) {
	if q.Keyword == "" || len(q.CandidateIDs) == 0 {
		return []Result{}, nil
	}

	minScore := q.MinScore
	if minScore <= 0 {
		minScore = e.config.MinScore
	}
	topN := q.TopN
	if topN <= 0 {
		topN = e.config.TopN
	}

	vectors, seeds, err := e.vectors(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(seeds) == 0 {
		return []Result{}, nil
	}

	scores := score(vectors, seeds, minScore)

	ranked := make([]int64, 0, len(scores))
	for id := range scores {
		ranked = append(ranked, id)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if scores[ranked[i]] != scores[ranked[j]] {
			return scores[ranked[i]] > scores[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}

	docs, err := e.docs.GetDocuments(ctx, ranked)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(docs))
	for _, doc := range docs {
		results = append(results, Result{Document: doc, Score: scores[doc.ID]})
	}

	if q.SortByDownloads {
		sort.SliceStable(results, func(i, j int) bool {
			if q.Ascending {
				return results[i].DownloadCount < results[j].DownloadCount
			}
			return results[i].DownloadCount > results[j].DownloadCount
		})
	}

	e.logger.Debug("similarity search",
		"keyword", q.Keyword,
		"seeds", len(seeds),
		"vectors", len(vectors),
		"matched", len(scores),
		"results", len(results),
	)

	return results, nil
}

// vectors resolves the keyword to tokens in every requested language.
// Candidates holding a matched token are the seeds. The vocabulary is every
// token of every seed, and the returned vectors cover each candidate holding
// a vocabulary token, restricted to the vocabulary. Vector keys are
// qualified by language.
func (e *Engine) vectors(ctx context.Context, q Query) (map[int64]document.TFIDFProfile, []int64, error) {
	candidates := make(map[int64]struct{}, len(q.CandidateIDs))
	for _, id := range q.CandidateIDs {
		candidates[id] = struct{}{}
	}

	vectors := make(map[int64]document.TFIDFProfile)
	seeds := make(map[int64]struct{})

	for _, lang := range languages(q.Languages) {
		tokens, err := e.keywords.MatchTokens(ctx, lang, q.Keyword, q.Mode)
		if err != nil {
			return nil, nil, err
		}
		if len(tokens) == 0 {
			continue
		}

		matched, err := e.keywords.TokenScores(ctx, lang, tokens)
		if err != nil {
			return nil, nil, err
		}
		langSeeds := make([]int64, 0, len(matched))
		for id := range matched {
			if _, ok := candidates[id]; ok {
				langSeeds = append(langSeeds, id)
				seeds[id] = struct{}{}
			}
		}
		if len(langSeeds) == 0 {
			continue
		}

		profiles, err := e.keywords.TFIDFProfiles(ctx, lang, langSeeds)
		if err != nil {
			return nil, nil, err
		}
		vocab := make(map[string]struct{})
		for _, p := range profiles {
			for token := range p {
				vocab[token] = struct{}{}
			}
		}
		words := make([]string, 0, len(vocab))
		for token := range vocab {
			words = append(words, token)
		}
		sort.Strings(words)

		scores, err := e.keywords.TokenScores(ctx, lang, words)
		if err != nil {
			return nil, nil, err
		}
		for id, profile := range scores {
			if _, ok := candidates[id]; !ok {
				continue
			}
			v, ok := vectors[id]
			if !ok {
				v = make(document.TFIDFProfile)
				vectors[id] = v
			}
			for token, w := range profile {
				v[lang+":"+token] = w
			}
		}
	}

	ids := make([]int64, 0, len(seeds))
	for id := range seeds {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return vectors, ids, nil
}

// score compares every seed with each other vector it shares a positively
// weighted token with. Seeds with a zero vector are dropped; the others
// score 1. Any other document keeps its best similarity at or above
// minScore.
func score(vectors map[int64]document.TFIDFProfile, seeds []int64, minScore float64) map[int64]float64 {
	// holders is token -> documents holding it.
	holders := make(map[string][]int64)
	for id, v := range vectors {
		for token := range v {
			holders[token] = append(holders[token], id)
		}
	}

	best := make(map[int64]float64)
	for _, source := range seeds {
		sv := vectors[source]
		if !hasWeight(sv) {
			continue
		}
		best[source] = 1

		targets := make(map[int64]struct{})
		for token, w := range sv {
			if w <= 0 {
				continue
			}
			for _, id := range holders[token] {
				if id != source {
					targets[id] = struct{}{}
				}
			}
		}

		for target := range targets {
			sim, ok := Cosine(sv, vectors[target])
			if !ok || sim < minScore {
				continue
			}
			if sim > best[target] {
				best[target] = sim
			}
		}
	}
	return best
}

func hasWeight(v document.TFIDFProfile) bool {
	for _, w := range v {
		if w != 0 {
			return true
		}
	}
	return false
}

func languages(requested []string) []string {
	if len(requested) == 0 {
		return storage.KeywordLanguages("")
	}
	return requested
}
