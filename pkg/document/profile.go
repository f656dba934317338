package document

import "sort"

const (
	// LanguageEnglish and LanguageFrench are the languages keyword profiles
	// are extracted for.
	LanguageEnglish = "en"
	LanguageFrench  = "fr"
)

// Languages lists the keyword languages in a stable order.
var Languages = []string{LanguageEnglish, LanguageFrench}

// OccurrenceProfile maps a token to the number of times it occurs in one
// document. It feeds the Jaccard builder and the TF-IDF batch.
type OccurrenceProfile map[string]int

// TFIDFProfile maps a token to its TF-IDF weight in one document. It feeds
// the similarity search. The two profile types are never mixed.
type TFIDFProfile map[string]float64

// Tokens returns the profile's keys sorted ascending.
func (p OccurrenceProfile) Tokens() []string {
	tokens := make([]string, 0, len(p))
	for t := range p {
		tokens = append(tokens, t)
	}
	sort.Strings(tokens)
	return tokens
}

// Tokens returns the profile's keys sorted ascending.
func (p TFIDFProfile) Tokens() []string {
	tokens := make([]string, 0, len(p))
	for t := range p {
		tokens = append(tokens, t)
	}
	sort.Strings(tokens)
	return tokens
}

// OccurrenceThresholds is the minimum occurrence count, per language, a
// token needs to be kept in a document's profile.
type OccurrenceThresholds map[string]int

// DefaultOccurrenceThresholds are the per-language minimums used when
// importing keyword files.
func DefaultOccurrenceThresholds() OccurrenceThresholds {
	return OccurrenceThresholds{
		LanguageEnglish: 25,
		LanguageFrench:  10,
	}
}

// Min returns the threshold for lang, 1 when none is configured.
func (t OccurrenceThresholds) Min(lang string) int {
	if n, ok := t[lang]; ok && n > 0 {
		return n
	}
	return 1
}

// FilterOccurrences returns a copy of profile without the tokens occurring
// fewer times than the language threshold.
func FilterOccurrences(profile OccurrenceProfile, lang string, thresholds OccurrenceThresholds) OccurrenceProfile {
	minimum := thresholds.Min(lang)
	out := make(OccurrenceProfile, len(profile))
	for token, n := range profile {
		if token == "" || n < minimum {
			continue
		}
		out[token] = n
	}
	return out
}
