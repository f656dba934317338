// Package storage defines the collaborator store the ranking engines read
// documents, neighbors and keywords from.
package storage

import (
	"context"

	"github.com/papercomputeco/folio/pkg/document"
)

// DocumentStore persists and filters catalog documents.
type DocumentStore interface {
	// PutDocuments inserts or replaces documents by id.
	PutDocuments(ctx context.Context, docs []document.Document) error

	// GetDocument returns one document or a NotFoundError.
	GetDocument(ctx context.Context, id int64) (*document.Document, error)

	// GetDocuments returns the documents for ids in input order. Unknown
	// ids are skipped and repeated ids are returned once.
	GetDocuments(ctx context.Context, ids []int64) ([]document.Document, error)

	// ListDocuments returns the documents matching f. Without a download
	// sort the result is ordered by id.
	ListDocuments(ctx context.Context, f Filter) ([]document.Document, error)
}

// NeighborStore persists the Jaccard adjacency relation.
type NeighborStore interface {
	// AddNeighbors records id and every id in neighbors as neighbors of
	// each other. Existing pairs are left untouched.
	AddNeighbors(ctx context.Context, id int64, neighbors []int64) error

	// Neighbors returns the neighbors of id sorted ascending. A document
	// without a neighbor record yields an empty slice.
	Neighbors(ctx context.Context, id int64) ([]int64, error)

	// ClearNeighbors removes every recorded pair.
	ClearNeighbors(ctx context.Context) error
}

// KeywordStore persists per-language keyword profiles.
type KeywordStore interface {
	// PutKeywords replaces the occurrence profile of one document.
	PutKeywords(ctx context.Context, lang string, id int64, profile document.OccurrenceProfile) error

	// OccurrenceProfiles returns every document's occurrence profile.
	OccurrenceProfiles(ctx context.Context, lang string) (map[int64]document.OccurrenceProfile, error)

	// SetTFIDF stores TF-IDF scores. Tokens of a listed document that are
	// missing from its scores are reset to 0.
	SetTFIDF(ctx context.Context, lang string, scores map[int64]document.TFIDFProfile) error

	// MatchTokens returns the distinct tokens matching query, sorted.
	MatchTokens(ctx context.Context, lang, query string, mode MatchMode) ([]string, error)

	// TFIDFProfiles returns the complete TF-IDF profiles of ids. Documents
	// without keywords in lang are absent from the result.
	TFIDFProfiles(ctx context.Context, lang string, ids []int64) (map[int64]document.TFIDFProfile, error)

	// TokenScores returns, for every document holding at least one of
	// tokens, its TF-IDF scores restricted to tokens.
	TokenScores(ctx context.Context, lang string, tokens []string) (map[int64]document.TFIDFProfile, error)
}

// Driver is a complete storage backend.
type Driver interface {
	DocumentStore
	NeighborStore
	KeywordStore

	// Close releases the backend's resources.
	Close() error
}

// Resetter is implemented by drivers that can drop every stored row.
type Resetter interface {
	Reset(ctx context.Context) error
}
