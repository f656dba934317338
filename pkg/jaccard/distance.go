// Package jaccard builds the persisted neighbor graph of the catalog by
// comparing the keyword sets of every pair of documents.
package jaccard

import "github.com/papercomputeco/folio/pkg/document"

// Distance returns the Jaccard distance between the key sets of a and b:
// 1 - |a ∩ b| / |a ∪ b|. Occurrence counts are ignored. Two empty profiles
// are identical sets and have distance 0.
func Distance(a, b document.OccurrenceProfile) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}

	shared := 0
	for token := range small {
		if _, ok := large[token]; ok {
			shared++
		}
	}

	union := len(a) + len(b) - shared
	return 1 - float64(shared)/float64(union)
}
