package resolver

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/saadtariq57/richtv-chatbot/internal/provider"
	"github.com/saadtariq57/richtv-chatbot/pkg/logger"
)

// usExchanges are the listing venues preferred when a name matches the same
// equity on several exchanges.
var usExchanges = map[string]bool{
	"NYSE":     true,
	"NASDAQ":   true,
	"NYSEARCA": true,
	"AMEX":     true,
}

// ResolvedEntity is a free-text name pinned to one tradable symbol.
type ResolvedEntity struct {
	RawName     string  `json:"raw_name"`
	Symbol      string  `json:"symbol"`
	DisplayName string  `json:"display_name"`
	AssetType   string  `json:"asset_type"`
	Exchange    string  `json:"exchange"`
	MatchScore  float64 `json:"match_score"`
}

// Resolver turns entity names into symbols using a provider's symbol search.
type Resolver struct {
	searcher provider.SymbolSearcher
}

func New(searcher provider.SymbolSearcher) *Resolver {
	return &Resolver{searcher: searcher}
}

// Resolve maps one name to its best candidate. Asset-type precedence is
// equity, crypto, index, ETF, then anything else; within equities a US
// listing without a dotted suffix beats a foreign one regardless of score.
// Returns provider.ErrNoMatch when the search comes back empty.
func (r *Resolver) Resolve(ctx context.Context, name string) (*ResolvedEntity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, provider.ErrNoMatch
	}

	results, err := r.searcher.Search(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, provider.ErrNoMatch
	}

	best := pickBest(results)
	resolved := &ResolvedEntity{
		RawName:     name,
		Symbol:      best.Symbol,
		DisplayName: displayName(best),
		AssetType:   strings.ToUpper(best.QuoteType),
		Exchange:    best.ExchDisp,
		MatchScore:  best.Score,
	}
	logger.Debug("entity resolved",
		zap.String("name", name),
		zap.String("symbol", resolved.Symbol),
		zap.String("asset_type", resolved.AssetType))
	return resolved, nil
}

// ResolveAll resolves names concurrently. Failures are independent: the
// returned slice holds an entry per name that resolved, order preserved.
func (r *Resolver) ResolveAll(ctx context.Context, names []string) []*ResolvedEntity {
	resolved := make([]*ResolvedEntity, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			entity, err := r.Resolve(ctx, name)
			if err != nil {
				logger.Warn("entity resolution failed",
					zap.String("name", name), zap.Error(err))
				return
			}
			resolved[i] = entity
		}(i, name)
	}
	wg.Wait()

	out := make([]*ResolvedEntity, 0, len(names))
	for _, e := range resolved {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

func pickBest(results []provider.SearchResult) provider.SearchResult {
	if e, ok := bestEquity(results); ok {
		return e
	}
	if c, ok := bestOfType(results, "CRYPTOCURRENCY"); ok {
		return c
	}
	if idx, ok := bestOfType(results, "INDEX"); ok {
		return idx
	}
	if etf, ok := bestETF(results); ok {
		return etf
	}
	return bestByScore(results)
}

// bestEquity prefers US-listed plain symbols, then US listings generally,
// then any equity by score.
func bestEquity(results []provider.SearchResult) (provider.SearchResult, bool) {
	equities := ofType(results, "EQUITY")
	if len(equities) == 0 {
		return provider.SearchResult{}, false
	}
	var us, usPlain []provider.SearchResult
	for _, e := range equities {
		if !usExchanges[strings.ToUpper(e.ExchDisp)] {
			continue
		}
		us = append(us, e)
		if !strings.Contains(e.Symbol, ".") {
			usPlain = append(usPlain, e)
		}
	}
	if len(usPlain) > 0 {
		return bestByScore(usPlain), true
	}
	if len(us) > 0 {
		return bestByScore(us), true
	}
	return bestByScore(equities), true
}

func bestETF(results []provider.SearchResult) (provider.SearchResult, bool) {
	etfs := ofType(results, "ETF")
	if len(etfs) == 0 {
		return provider.SearchResult{}, false
	}
	var us []provider.SearchResult
	for _, e := range etfs {
		if usExchanges[strings.ToUpper(e.ExchDisp)] {
			us = append(us, e)
		}
	}
	if len(us) > 0 {
		return bestByScore(us), true
	}
	return bestByScore(etfs), true
}

func bestOfType(results []provider.SearchResult, quoteType string) (provider.SearchResult, bool) {
	typed := ofType(results, quoteType)
	if len(typed) == 0 {
		return provider.SearchResult{}, false
	}
	return bestByScore(typed), true
}

func ofType(results []provider.SearchResult, quoteType string) []provider.SearchResult {
	var typed []provider.SearchResult
	for _, r := range results {
		if strings.EqualFold(r.QuoteType, quoteType) {
			typed = append(typed, r)
		}
	}
	return typed
}

func bestByScore(results []provider.SearchResult) provider.SearchResult {
	best := results[0]
	for _, r := range results[1:] {
		if r.Score > best.Score {
			best = r
		}
	}
	return best
}

func displayName(r provider.SearchResult) string {
	if r.Longname != "" {
		return r.Longname
	}
	if r.Shortname != "" {
		return r.Shortname
	}
	return r.Symbol
}
