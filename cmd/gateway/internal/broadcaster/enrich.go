package broadcaster

import (
	"sort"
	"strings"

	"github.com/satya1844/cryptrack/cmd/gateway/internal/metadata"
	"github.com/satya1844/cryptrack/pkg/models"
)

// Options control the join step. QuotePreference is both the set of quote
// suffixes stripped from trading-pair symbols and, by list position, the
// preference ranking when one asset trades against several quotes (index 0
// is the most preferred). Top caps the broadcast size.
type Options struct {
	QuotePreference []string
	Top             int
}

// sortedSuffixes returns the quote list longest-first so the most specific
// suffix wins (e.g. USDT before a hypothetical shorter USD entry).
func (o Options) sortedSuffixes() []string {
	suffixes := make([]string, len(o.QuotePreference))
	copy(suffixes, o.QuotePreference)
	sort.SliceStable(suffixes, func(i, j int) bool {
		return len(suffixes[i]) > len(suffixes[j])
	})
	return suffixes
}

// prefIndex ranks a trading pair by its quote currency; unknown quotes rank
// last.
func (o Options) prefIndex(symbol, base string) int {
	quote := strings.TrimPrefix(symbol, base)
	for i, q := range o.QuotePreference {
		if quote == q {
			return i
		}
	}
	return len(o.QuotePreference)
}

// baseSymbol strips the first matching quote suffix. A symbol with no known
// suffix is returned unchanged; it then only survives the join if it happens
// to match a tracked base symbol directly.
func baseSymbol(symbol string, suffixes []string) string {
	for _, suffix := range suffixes {
		if len(symbol) > len(suffix) && strings.HasSuffix(symbol, suffix) {
			return symbol[:len(symbol)-len(suffix)]
		}
	}
	return symbol
}

type candidate struct {
	asset models.EnrichedAsset
	pref  int
}

// Enrich joins one raw batch against the metadata table: ticks for untracked
// base symbols are dropped, exactly one entry per base symbol survives (the
// best-ranked quote pair wins regardless of arrival order), and the output
// ascends by metadata rank, capped at opts.Top. Pure function of its inputs:
// the same batch and table always produce the same result.
func Enrich(batch []models.RawTick, table metadata.Table, opts Options) []models.EnrichedAsset {
	suffixes := opts.sortedSuffixes()

	best := make(map[string]candidate)
	for _, tick := range batch {
		if tick.Symbol == "" {
			continue
		}
		base := baseSymbol(tick.Symbol, suffixes)
		meta, ok := table[base]
		if !ok {
			continue
		}

		pref := opts.prefIndex(tick.Symbol, base)
		if existing, seen := best[base]; seen && pref >= existing.pref {
			continue
		}
		best[base] = candidate{asset: enrichTick(tick, base, meta), pref: pref}
	}

	out := make([]models.EnrichedAsset, 0, len(best))
	for _, c := range best {
		out = append(out, c.asset)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })

	if opts.Top > 0 && len(out) > opts.Top {
		out = out[:opts.Top]
	}
	return out
}

func enrichTick(tick models.RawTick, base string, meta models.AssetMetadata) models.EnrichedAsset {
	return models.EnrichedAsset{
		Symbol:           tick.Symbol,
		BaseSymbol:       base,
		Name:             meta.Name,
		Logo:             meta.Logo,
		Rank:             meta.Rank,
		MarketCap:        meta.MarketCap,
		Price:            tick.LastPrice,
		PriceChange:      tick.PriceChangePct, // 24h percent change, feed convention
		PercentChange1h:  meta.PercentChange1h,
		PercentChange24h: meta.PercentChange24h,
		PercentChange7d:  meta.PercentChange7d,
		PercentChange30d: meta.PercentChange30d,
		Volume:           tick.Volume,
		High:             tick.High,
		Low:              tick.Low,
	}
}
