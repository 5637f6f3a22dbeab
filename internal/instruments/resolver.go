package instruments

import (
	"context"
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/goffycoder/VOCI-TRADE/internal/logger"
	"github.com/goffycoder/VOCI-TRADE/internal/types"
)

// maxMatches caps every resolver result to avoid overwhelming the user.
const maxMatches = 5

// fuzzyThreshold is the minimum normalized similarity for a fuzzy hit.
const fuzzyThreshold = 0.7

// Resolver maps a free-form spoken name to candidate instruments using a
// priority-ordered chain of matchers; the first stage with results wins.
type Resolver struct {
	catalog *Catalog
	metric  *metrics.Levenshtein
}

func NewResolver(catalog *Catalog) *Resolver {
	return &Resolver{
		catalog: catalog,
		metric:  metrics.NewLevenshtein(),
	}
}

type matcher func(query string, words []string) []types.InstrumentRef

// Resolve returns up to 5 candidates ordered by match confidence.
// An empty result means the instrument was not found.
func (r *Resolver) Resolve(ctx context.Context, spoken string) []types.InstrumentRef {
	query := Normalize(spoken)
	if query == "" {
		return nil
	}
	words := strings.Fields(query)

	chain := []struct {
		name string
		fn   matcher
	}{
		{"exact", r.matchExact},
		{"abbreviation", r.matchAbbrev},
		{"all-words", r.matchAllWords},
		{"fuzzy", r.matchFuzzy},
		{"single-word", r.matchSingleWord},
	}

	for _, stage := range chain {
		if refs := stage.fn(query, words); len(refs) > 0 {
			logger.Debug(ctx, "Instrument resolved", "spoken", spoken, "stage", stage.name, "matches", len(refs))
			return refs
		}
	}

	logger.Info(ctx, "No instrument match", "spoken", spoken)
	return nil
}

// matchExact compares the normalized query against precomputed search names.
// A hit is assumed unambiguous and returns a single candidate.
func (r *Resolver) matchExact(query string, _ []string) []types.InstrumentRef {
	for _, rec := range r.catalog.records {
		if rec.SearchName == query {
			return []types.InstrumentRef{rec.ref()}
		}
	}
	return nil
}

// matchAbbrev compares against the abbreviation form ("industries" -> "ind").
func (r *Resolver) matchAbbrev(query string, _ []string) []types.InstrumentRef {
	for _, rec := range r.catalog.records {
		if rec.AbbrevName != "" && rec.AbbrevName == query {
			return []types.InstrumentRef{rec.ref()}
		}
	}
	return nil
}

// matchAllWords keeps records whose search name contains every query word,
// order-independent. Only applies to multi-word queries.
func (r *Resolver) matchAllWords(_ string, words []string) []types.InstrumentRef {
	if len(words) < 2 {
		return nil
	}
	var refs []types.InstrumentRef
	for _, rec := range r.catalog.records {
		if containsAllWords(rec.SearchName, words) {
			refs = append(refs, rec.ref())
			if len(refs) == maxMatches {
				break
			}
		}
	}
	return refs
}

// matchFuzzy ranks records by normalized Levenshtein similarity and keeps
// those above the threshold, best first. Ties preserve load order.
func (r *Resolver) matchFuzzy(query string, _ []string) []types.InstrumentRef {
	type scored struct {
		ref   types.InstrumentRef
		score float64
	}
	var hits []scored
	for _, rec := range r.catalog.records {
		score := strutil.Similarity(query, rec.SearchName, r.metric)
		if score > fuzzyThreshold {
			hits = append(hits, scored{ref: rec.ref(), score: score})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	if len(hits) > maxMatches {
		hits = hits[:maxMatches]
	}
	refs := make([]types.InstrumentRef, 0, len(hits))
	for _, h := range hits {
		refs = append(refs, h.ref)
	}
	return refs
}

// matchSingleWord is the last resort for one-word queries: plain substring.
func (r *Resolver) matchSingleWord(query string, words []string) []types.InstrumentRef {
	if len(words) != 1 {
		return nil
	}
	var refs []types.InstrumentRef
	for _, rec := range r.catalog.records {
		if strings.Contains(rec.SearchName, query) {
			refs = append(refs, rec.ref())
			if len(refs) == maxMatches {
				break
			}
		}
	}
	return refs
}

func containsAllWords(name string, words []string) bool {
	for _, w := range words {
		if !strings.Contains(name, w) {
			return false
		}
	}
	return true
}
