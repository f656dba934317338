package storage

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/papercomputeco/folio/pkg/document"
)

// MatchMode selects how a text criterion is matched.
type MatchMode string

const (
	// MatchContains is a case-insensitive substring match.
	MatchContains MatchMode = "contains"

	// MatchPattern is a case-sensitive regular expression match.
	MatchPattern MatchMode = "pattern"
)

// ParseMatchMode parses a match mode. "classique" and "substring" are
// accepted for contains, "regex" for pattern. Empty yields MatchContains.
func ParseMatchMode(s string) (MatchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "contains", "substring", "classique":
		return MatchContains, nil
	case "pattern", "regex":
		return MatchPattern, nil
	default:
		return MatchContains, fmt.Errorf("unknown match mode: %q", s)
	}
}

// Matcher compiles a text criterion into a predicate.
func Matcher(query string, mode MatchMode) (func(string) bool, error) {
	if mode == MatchPattern {
		re, err := regexp.Compile(query)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
		}
		return re.MatchString, nil
	}

	needle := strings.ToLower(query)
	return func(s string) bool {
		return strings.Contains(strings.ToLower(s), needle)
	}, nil
}

// Filter narrows a document listing. Empty criteria are ignored.
type Filter struct {
	Language string

	Author     string
	AuthorMode MatchMode

	Title     string
	TitleMode MatchMode

	// Keyword matches the document's keyword tokens in Language, or in
	// every keyword language when Language has no keywords.
	Keyword     string
	KeywordMode MatchMode

	// SortByDownloads orders by download count, descending unless
	// Ascending is set.
	SortByDownloads bool
	Ascending       bool
}

// Validate checks that pattern criteria compile.
func (f Filter) Validate() error {
	checks := []struct {
		value string
		mode  MatchMode
	}{
		{f.Author, f.AuthorMode},
		{f.Title, f.TitleMode},
		{f.Keyword, f.KeywordMode},
	}
	for _, c := range checks {
		if c.value == "" || c.mode != MatchPattern {
			continue
		}
		if _, err := Matcher(c.value, c.mode); err != nil {
			return err
		}
	}
	return nil
}

// KeywordLanguages returns the keyword languages searched for f.
func (f Filter) KeywordLanguages() []string {
	return KeywordLanguages(f.Language)
}

// KeywordLanguages returns lang when it has keyword profiles, otherwise
// every keyword language.
func KeywordLanguages(lang string) []string {
	for _, l := range document.Languages {
		if l == lang {
			return []string{lang}
		}
	}
	return append([]string(nil), document.Languages...)
}
