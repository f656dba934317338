package orchestrator

import (
	"encoding/binary"
	"hash/fnv"
	"strconv"
	"strings"

	"github.com/papercomputeco/folio/pkg/centrality"
	"github.com/papercomputeco/folio/pkg/graph"
)

// centralityKeyIDs is the number of leading ids a centrality cache key holds.
const centralityKeyIDs = 5

// ResponseKey is the full-response cache key of a request. The ordered id
// list is folded into its length and an fnv-64a digest, so the key stays
// short for whole-catalog requests.
func ResponseKey(mode centrality.Mode, order graph.Order, ids []int64) string {
	h := fnv.New64a()
	var buf [8]byte
	for _, id := range ids {
		binary.LittleEndian.PutUint64(buf[:], uint64(id))
		_, _ = h.Write(buf[:])
	}
	return "response_" + string(normalize(mode)) + "_" + order.String() + "_" +
		strconv.Itoa(len(ids)) + "_" + strconv.FormatUint(h.Sum64(), 16)
}

// CentralityKey is the cache key of a ranked order. Only the first five ids
// of the result set take part.
func CentralityKey(mode centrality.Mode, order graph.Order, ids []int64) string {
	if len(ids) > centralityKeyIDs {
		ids = ids[:centralityKeyIDs]
	}
	return "centrality_" + string(normalize(mode)) + "_" + order.String() + "_" + join(ids)
}

// SuggestionsKey is the cache key of the aggregated suggestions of seeds.
func SuggestionsKey(seeds []int64) string {
	return "suggestions_" + join(seeds)
}

// SingleSuggestionKey is the cache key of the neighbor documents of id.
func SingleSuggestionKey(id int64) string {
	return "suggestion_single_" + strconv.FormatInt(id, 10)
}

func normalize(mode centrality.Mode) centrality.Mode {
	if mode == "" {
		return centrality.ModeNone
	}
	return mode
}

func join(ids []int64) string {
	var sb strings.Builder
	for i, id := range ids {
		if i > 0 {
			sb.WriteByte('_')
		}
		sb.WriteString(strconv.FormatInt(id, 10))
	}
	return sb.String()
}
