// Package inmemory provides a map-backed storage.Driver for tests and
// single-process runs.
package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/papercomputeco/folio/pkg/document"
	"github.com/papercomputeco/folio/pkg/storage"
)

type posting struct {
	occurrence int
	tfidf      float64
}

// Driver implements storage.Driver using in-memory maps.
type Driver struct {
	// mu guards every map below.
	mu sync.RWMutex

	docs      map[int64]document.Document
	neighbors map[int64]map[int64]struct{}

	// keywords is language -> document id -> token -> posting.
	keywords map[string]map[int64]map[string]posting
}

// NewDriver creates a new in-memory driver.
func NewDriver() *Driver {
	return &Driver{
		docs:      make(map[int64]document.Document),
		neighbors: make(map[int64]map[int64]struct{}),
		keywords:  make(map[string]map[int64]map[string]posting),
	}
}

// PutDocuments inserts or replaces documents by id.
func (d *Driver) PutDocuments(_ context.Context, docs []document.Document) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, doc := range docs {
		d.docs[doc.ID] = cloneDocument(doc)
	}
	return nil
}

// GetDocument returns one document.
func (d *Driver) GetDocument(_ context.Context, id int64) (*document.Document, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	doc, ok := d.docs[id]
	if !ok {
		return nil, storage.NotFoundError{ID: id}
	}
	out := cloneDocument(doc)
	return &out, nil
}

// GetDocuments returns known documents in input order.
func (d *Driver) GetDocuments(_ context.Context, ids []int64) ([]document.Document, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]document.Document, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		if doc, ok := d.docs[id]; ok {
			out = append(out, cloneDocument(doc))
		}
	}
	return out, nil
}

// ListDocuments returns the documents matching f.
func (d *Driver) ListDocuments(_ context.Context, f storage.Filter) ([]document.Document, error) {
	author, err := optionalMatcher(f.Author, f.AuthorMode)
	if err != nil {
		return nil, err
	}
	title, err := optionalMatcher(f.Title, f.TitleMode)
	if err != nil {
		return nil, err
	}
	keyword, err := optionalMatcher(f.Keyword, f.KeywordMode)
	if err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]document.Document, 0)
	for _, id := range d.sortedIDs() {
		doc := d.docs[id]
		if doc.Title == "" {
			continue
		}
		if f.Language != "" && !doc.HasLanguage(f.Language) {
			continue
		}
		if author != nil && !anyMatch(doc.Authors, author) {
			continue
		}
		if title != nil && !title(doc.Title) {
			continue
		}
		if keyword != nil && !d.hasMatchingKeyword(id, f.KeywordLanguages(), keyword) {
			continue
		}
		out = append(out, cloneDocument(doc))
	}

	if f.SortByDownloads {
		sort.SliceStable(out, func(i, j int) bool {
			if f.Ascending {
				return out[i].DownloadCount < out[j].DownloadCount
			}
			return out[i].DownloadCount > out[j].DownloadCount
		})
	}

	return out, nil
}

func (d *Driver) hasMatchingKeyword(id int64, langs []string, match func(string) bool) bool {
	for _, lang := range langs {
		for token := range d.keywords[lang][id] {
			if match(token) {
				return true
			}
		}
	}
	return false
}

// AddNeighbors records symmetric neighbor pairs.
func (d *Driver) AddNeighbors(_ context.Context, id int64, neighbors []int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, n := range neighbors {
		if n == id {
			continue
		}
		d.link(id, n)
		d.link(n, id)
	}
	return nil
}

func (d *Driver) link(from, to int64) {
	set, ok := d.neighbors[from]
	if !ok {
		set = make(map[int64]struct{})
		d.neighbors[from] = set
	}
	set[to] = struct{}{}
}

// Neighbors returns the neighbors of id sorted ascending.
func (d *Driver) Neighbors(_ context.Context, id int64) ([]int64, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	set := d.neighbors[id]
	out := make([]int64, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// ClearNeighbors removes every recorded pair.
func (d *Driver) ClearNeighbors(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.neighbors = make(map[int64]map[int64]struct{})
	return nil
}

// PutKeywords replaces the occurrence profile of one document.
func (d *Driver) PutKeywords(_ context.Context, lang string, id int64, profile document.OccurrenceProfile) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	byDoc, ok := d.keywords[lang]
	if !ok {
		byDoc = make(map[int64]map[string]posting)
		d.keywords[lang] = byDoc
	}

	postings := make(map[string]posting, len(profile))
	for token, n := range profile {
		postings[token] = posting{occurrence: n}
	}
	byDoc[id] = postings
	return nil
}

// OccurrenceProfiles returns every document's occurrence profile for lang.
func (d *Driver) OccurrenceProfiles(_ context.Context, lang string) (map[int64]document.OccurrenceProfile, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[int64]document.OccurrenceProfile, len(d.keywords[lang]))
	for id, postings := range d.keywords[lang] {
		p := make(document.OccurrenceProfile, len(postings))
		for token, post := range postings {
			p[token] = post.occurrence
		}
		out[id] = p
	}
	return out, nil
}

// SetTFIDF stores TF-IDF scores for the listed documents.
func (d *Driver) SetTFIDF(_ context.Context, lang string, scores map[int64]document.TFIDFProfile) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for id, profile := range scores {
		postings, ok := d.keywords[lang][id]
		if !ok {
			continue
		}
		for token, post := range postings {
			post.tfidf = profile[token]
			postings[token] = post
		}
	}
	return nil
}

// MatchTokens returns the distinct matching tokens of lang, sorted.
func (d *Driver) MatchTokens(_ context.Context, lang, query string, mode storage.MatchMode) ([]string, error) {
	match, err := storage.Matcher(query, mode)
	if err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, postings := range d.keywords[lang] {
		for token := range postings {
			if match(token) {
				seen[token] = struct{}{}
			}
		}
	}

	out := make([]string, 0, len(seen))
	for token := range seen {
		out = append(out, token)
	}
	sort.Strings(out)
	return out, nil
}

// TFIDFProfiles returns the complete TF-IDF profiles of ids.
func (d *Driver) TFIDFProfiles(_ context.Context, lang string, ids []int64) (map[int64]document.TFIDFProfile, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[int64]document.TFIDFProfile, len(ids))
	for _, id := range ids {
		postings, ok := d.keywords[lang][id]
		if !ok {
			continue
		}
		p := make(document.TFIDFProfile, len(postings))
		for token, post := range postings {
			p[token] = post.tfidf
		}
		out[id] = p
	}
	return out, nil
}

// TokenScores returns the TF-IDF scores of tokens per holding document.
func (d *Driver) TokenScores(_ context.Context, lang string, tokens []string) (map[int64]document.TFIDFProfile, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[int64]document.TFIDFProfile)
	for id, postings := range d.keywords[lang] {
		for _, token := range tokens {
			post, ok := postings[token]
			if !ok {
				continue
			}
			p, ok := out[id]
			if !ok {
				p = make(document.TFIDFProfile)
				out[id] = p
			}
			p[token] = post.tfidf
		}
	}
	return out, nil
}

// Reset drops every document, neighbor pair and keyword.
func (d *Driver) Reset(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.docs = make(map[int64]document.Document)
	d.neighbors = make(map[int64]map[int64]struct{})
	d.keywords = make(map[string]map[int64]map[string]posting)
	return nil
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}

func (d *Driver) sortedIDs() []int64 {
	ids := make([]int64, 0, len(d.docs))
	for id := range d.docs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func optionalMatcher(query string, mode storage.MatchMode) (func(string) bool, error) {
	if query == "" {
		return nil, nil
	}
	return storage.Matcher(query, mode)
}

func anyMatch(values []string, match func(string) bool) bool {
	for _, v := range values {
		if match(v) {
			return true
		}
	}
	return false
}

func cloneDocument(doc document.Document) document.Document {
	doc.Languages = append([]string(nil), doc.Languages...)
	doc.Subjects = append([]int64(nil), doc.Subjects...)
	doc.Authors = append([]string(nil), doc.Authors...)
	return doc
}
