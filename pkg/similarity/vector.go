// Package similarity scores documents by the cosine of their TF-IDF
// vectors and expands keyword matches into ranked result lists.
package similarity

import (
	"math"
	"sort"

	"github.com/papercomputeco/folio/pkg/document"
)

// Cosine returns the cosine similarity of a and b, clamped to [0, 1].
// ok is false when either vector has a zero norm.
func Cosine(a, b document.TFIDFProfile) (sim float64, ok bool) {
	var dot, na, nb float64

	// Sorted iteration keeps float sums reproducible.
	for _, token := range a.Tokens() {
		x := a[token]
		na += x * x
		if y, shared := b[token]; shared {
			dot += x * y
		}
	}
	for _, token := range b.Tokens() {
		y := b[token]
		nb += y * y
	}

	if na == 0 || nb == 0 {
		return 0, false
	}

	sim = dot / (math.Sqrt(na) * math.Sqrt(nb))
	switch {
	case sim > 1:
		sim = 1
	case sim < 0:
		sim = 0
	}
	return sim, true
}

// ComputeTFIDF weighs every profile of corpus against the whole corpus.
// Term frequency is the raw count, idf is ln((1+n)/(1+df))+1 and each
// document vector is L2-normalised. Zero weights are dropped. When
// maxFeatures is positive only the maxFeatures most frequent tokens of the
// corpus are weighed, ties broken by token.
func ComputeTFIDF(corpus map[int64]document.OccurrenceProfile, maxFeatures int) map[int64]document.TFIDFProfile {
	df := make(map[string]int)
	total := make(map[string]int)
	for _, profile := range corpus {
		for token, n := range profile {
			if n <= 0 {
				continue
			}
			df[token]++
			total[token] += n
		}
	}

	features := vocabulary(total, maxFeatures)

	n := float64(len(corpus))
	idf := make(map[string]float64, len(features))
	for token := range features {
		idf[token] = math.Log((1+n)/(1+float64(df[token]))) + 1
	}

	out := make(map[int64]document.TFIDFProfile, len(corpus))
	for id, profile := range corpus {
		weights := make(document.TFIDFProfile)
		var norm float64
		for _, token := range profile.Tokens() {
			count := profile[token]
			if _, ok := features[token]; !ok || count <= 0 {
				continue
			}
			w := float64(count) * idf[token]
			weights[token] = w
			norm += w * w
		}

		if norm > 0 {
			norm = math.Sqrt(norm)
			for token, w := range weights {
				weights[token] = w / norm
			}
		}
		for token, w := range weights {
			if w == 0 {
				delete(weights, token)
			}
		}
		out[id] = weights
	}
	return out
}

func vocabulary(total map[string]int, maxFeatures int) map[string]struct{} {
	tokens := make([]string, 0, len(total))
	for token := range total {
		tokens = append(tokens, token)
	}

	if maxFeatures > 0 && len(tokens) > maxFeatures {
		sort.Slice(tokens, func(i, j int) bool {
			if total[tokens[i]] != total[tokens[j]] {
				return total[tokens[i]] > total[tokens[j]]
			}
			return tokens[i] < tokens[j]
		})
		tokens = tokens[:maxFeatures]
	}

	out := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		out[token] = struct{}{}
	}
	return out
}
