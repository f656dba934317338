// Package catalog reads Gutendex-style catalog dumps and per-document
// keyword occurrence files into folio documents and profiles.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/papercomputeco/folio/pkg/document"
)

// ErrUnknownFormat is returned for catalog input that is neither a book
// array nor a page object with a results array.
var ErrUnknownFormat = errors.New("unknown catalog format")

type person struct {
	Name string `json:"name"`
}

type book struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	Authors       []person `json:"authors"`
	Subjects      []string `json:"subjects"`
	Languages     []string `json:"languages"`
	DownloadCount int      `json:"download_count"`
}

type page struct {
	Results []book `json:"results"`
}

// Read decodes a catalog. Both a bare array of books and a Gutendex page
// ({"results": [...]}) are accepted. Books without an id are dropped.
func Read(r io.Reader) ([]document.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	data = bytes.TrimSpace(data)

	var books []book
	switch {
	case len(data) == 0:
		return []document.Document{}, nil
	case data[0] == '[':
		if err := json.Unmarshal(data, &books); err != nil {
			return nil, fmt.Errorf("decoding catalog: %w", err)
		}
	case data[0] == '{':
		var p page
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decoding catalog: %w", err)
		}
		books = p.Results
	default:
		return nil, ErrUnknownFormat
	}

	docs := make([]document.Document, 0, len(books))
	for _, b := range books {
		if b.ID <= 0 {
			continue
		}
		docs = append(docs, b.document())
	}
	return docs, nil
}

// ReadFile decodes the catalog stored at path.
func ReadFile(path string) ([]document.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()

	return Read(f)
}

func (b book) document() document.Document {
	doc := document.Document{
		ID:            b.ID,
		Title:         strings.TrimSpace(b.Title),
		DownloadCount: b.DownloadCount,
		Languages:     b.Languages,
	}
	for _, a := range b.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			doc.Authors = append(doc.Authors, name)
		}
	}

	seen := make(map[int64]struct{}, len(b.Subjects))
	for _, s := range b.Subjects {
		id := SubjectID(s)
		if _, ok := seen[id]; ok || id == 0 {
			continue
		}
		seen[id] = struct{}{}
		doc.Subjects = append(doc.Subjects, id)
	}
	return doc
}

// SubjectID maps a subject heading to a stable positive id, so the same
// heading gets the same id across imports. Blank headings map to 0.
func SubjectID(name string) int64 {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	id := int64(h.Sum64() & (1<<63 - 1))
	if id == 0 {
		id = 1
	}
	return id
}

// PrimaryLanguage is the language a document's keywords are filed under:
// its first language code.
func PrimaryLanguage(doc document.Document) string {
	if len(doc.Languages) == 0 {
		return ""
	}
	return doc.Languages[0]
}

// ReadKeywords loads every <id>.json file of dir. Each file maps a token to
// its occurrence count in the document. Files not named after an integer
// id are skipped.
func ReadKeywords(dir string) (map[int64]document.OccurrenceProfile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading keywords dir: %w", err)
	}

	out := make(map[int64]document.OccurrenceProfile, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSuffix(entry.Name(), ".json"), 10, 64)
		if err != nil {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading keywords of %d: %w", id, err)
		}
		profile := make(document.OccurrenceProfile)
		if err := json.Unmarshal(data, &profile); err != nil {
			return nil, fmt.Errorf("decoding keywords of %d: %w", id, err)
		}
		out[id] = profile
	}
	return out, nil
}
