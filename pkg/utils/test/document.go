package testutils

import (
	"github.com/papercomputeco/folio/pkg/document"
)

// NewTestDocument creates a document with the given attributes.
func NewTestDocument(id int64, title string, downloads int, langs []string, subjects ...int64) document.Document {
	return document.Document{
		ID:            id,
		Title:         title,
		DownloadCount: downloads,
		Languages:     langs,
		Subjects:      subjects,
	}
}

// Catalog returns a small bilingual catalog. Document 4 is untitled.
func Catalog() []document.Document {
	return []document.Document{
		{ID: 1, Title: "Candide", DownloadCount: 300, Languages: []string{"fr", "en"}, Subjects: []int64{10, 20}, Authors: []string{"Voltaire"}},
		{ID: 2, Title: "Les Misérables", DownloadCount: 500, Languages: []string{"fr"}, Subjects: []int64{20, 30}, Authors: []string{"Victor Hugo"}},
		{ID: 3, Title: "Moby Dick", DownloadCount: 500, Languages: []string{"en"}, Subjects: []int64{40}, Authors: []string{"Herman Melville"}},
		{ID: 4, Title: "", DownloadCount: 50, Languages: []string{"en"}},
		{ID: 5, Title: "Notre-Dame de Paris", DownloadCount: 100, Languages: []string{"fr"}, Subjects: []int64{20}, Authors: []string{"Victor Hugo"}},
	}
}

// CatalogKeywords returns occurrence profiles for Catalog, by language.
func CatalogKeywords() map[string]map[int64]document.OccurrenceProfile {
	return map[string]map[int64]document.OccurrenceProfile{
		document.LanguageFrench: {
			1: {"jardin": 3, "optimisme": 5},
			2: {"misere": 7, "paris": 2},
			5: {"paris": 9, "cathedrale": 4},
		},
		document.LanguageEnglish: {
			1: {"garden": 3},
			3: {"whale": 12},
		},
	}
}
