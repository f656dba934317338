// Package document holds the plain records exchanged between the storage
// drivers and the ranking engines.
package document

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidIDs is returned by ParseIDs for a non-integer entry.
var ErrInvalidIDs = errors.New("ids must be comma separated integers")

// Document is one catalog entry. It is treated as immutable for the duration
// of a single graph or ranking operation.
type Document struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	DownloadCount int      `json:"download_count"`
	Languages     []string `json:"languages,omitempty"`
	Subjects      []int64  `json:"subjects,omitempty"`
	Authors       []string `json:"authors,omitempty"`
}

// HasLanguage reports whether lang is one of the document's language codes.
func (d Document) HasLanguage(lang string) bool {
	for _, l := range d.Languages {
		if l == lang {
			return true
		}
	}
	return false
}

// IDs returns the ids of docs in order.
func IDs(docs []Document) []int64 {
	ids := make([]int64, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids
}

// Index maps each document id to its document.
func Index(docs []Document) map[int64]Document {
	m := make(map[int64]Document, len(docs))
	for _, d := range docs {
		m[d.ID] = d
	}
	return m
}

// ParseIDs parses a comma separated id list. Blank entries are skipped.
func ParseIDs(raw string) ([]int64, error) {
	ids := make([]int64, 0)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, ErrInvalidIDs
		}
		ids = append(ids, id)
	}
	return ids, nil
}
