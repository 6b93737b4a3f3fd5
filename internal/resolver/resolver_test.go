package resolver

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saadtariq57/richtv-chatbot/internal/provider"
)

type fakeSearcher struct {
	results map[string][]provider.SearchResult
	err     error
	mu      sync.Mutex
	calls   int
}

func (f *fakeSearcher) Search(ctx context.Context, text string) ([]provider.SearchResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.results[text], nil
}

func TestResolveDomesticExchangePreference(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]provider.SearchResult{
		"Apple": {
			{Symbol: "APLE.DE", ExchDisp: "XETRA", Score: 0.5, QuoteType: "EQUITY"},
			{Symbol: "AAPL", ExchDisp: "NASDAQ", Score: 0.99, QuoteType: "EQUITY", Longname: "Apple Inc."},
		},
	}}
	r := New(searcher)

	entity, err := r.Resolve(context.Background(), "Apple")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", entity.Symbol)
	assert.Equal(t, "Apple Inc.", entity.DisplayName)
	assert.Equal(t, "EQUITY", entity.AssetType)
	assert.Equal(t, "NASDAQ", entity.Exchange)
}

func TestResolvePrefersPlainSymbolOverScore(t *testing.T) {
	// A higher-scoring dotted listing loses to a plain domestic symbol.
	searcher := &fakeSearcher{results: map[string][]provider.SearchResult{
		"Globex": {
			{Symbol: "GLX.A", ExchDisp: "NYSE", Score: 0.95, QuoteType: "EQUITY"},
			{Symbol: "GLX", ExchDisp: "NYSE", Score: 0.80, QuoteType: "EQUITY"},
		},
	}}
	r := New(searcher)

	entity, err := r.Resolve(context.Background(), "Globex")
	require.NoError(t, err)
	assert.Equal(t, "GLX", entity.Symbol)
}

func TestResolveAssetTypePrecedence(t *testing.T) {
	tests := []struct {
		name    string
		results []provider.SearchResult
		want    string
	}{
		{
			name: "equity beats crypto regardless of score",
			results: []provider.SearchResult{
				{Symbol: "COIN-USD", QuoteType: "CRYPTOCURRENCY", Score: 0.99},
				{Symbol: "COIN", ExchDisp: "NASDAQ", QuoteType: "EQUITY", Score: 0.5},
			},
			want: "COIN",
		},
		{
			name: "crypto beats index",
			results: []provider.SearchResult{
				{Symbol: "^BTC", QuoteType: "INDEX", Score: 0.9},
				{Symbol: "BTC-USD", QuoteType: "CRYPTOCURRENCY", Score: 0.6},
			},
			want: "BTC-USD",
		},
		{
			name: "index beats etf",
			results: []provider.SearchResult{
				{Symbol: "SPY", ExchDisp: "NYSEARCA", QuoteType: "ETF", Score: 0.9},
				{Symbol: "^GSPC", QuoteType: "INDEX", Score: 0.8},
			},
			want: "^GSPC",
		},
		{
			name: "etf falls back to foreign listing when no domestic exists",
			results: []provider.SearchResult{
				{Symbol: "EXSA.DE", ExchDisp: "XETRA", QuoteType: "ETF", Score: 0.7},
			},
			want: "EXSA.DE",
		},
		{
			name: "other types resolve by score",
			results: []provider.SearchResult{
				{Symbol: "GC=F", QuoteType: "FUTURE", Score: 0.4},
				{Symbol: "SI=F", QuoteType: "FUTURE", Score: 0.9},
			},
			want: "SI=F",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher := &fakeSearcher{results: map[string][]provider.SearchResult{"x": tt.results}}
			r := New(searcher)
			entity, err := r.Resolve(context.Background(), "x")
			require.NoError(t, err)
			assert.Equal(t, tt.want, entity.Symbol)
		})
	}
}

func TestResolveIdempotent(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]provider.SearchResult{
		"Apple": {
			{Symbol: "AAPL", ExchDisp: "NASDAQ", Score: 0.99, QuoteType: "EQUITY"},
			{Symbol: "APLE.DE", ExchDisp: "XETRA", Score: 0.5, QuoteType: "EQUITY"},
		},
	}}
	r := New(searcher)

	first, err := r.Resolve(context.Background(), "Apple")
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), "Apple")
	require.NoError(t, err)

	assert.Equal(t, first.Symbol, second.Symbol)
}

func TestResolveNoCandidates(t *testing.T) {
	r := New(&fakeSearcher{results: map[string][]provider.SearchResult{}})

	entity, err := r.Resolve(context.Background(), "Totally Unknown Corp")
	assert.Nil(t, entity)
	assert.ErrorIs(t, err, provider.ErrNoMatch)
}

func TestResolveEmptyName(t *testing.T) {
	searcher := &fakeSearcher{}
	r := New(searcher)

	_, err := r.Resolve(context.Background(), "   ")
	assert.ErrorIs(t, err, provider.ErrNoMatch)
	assert.Zero(t, searcher.calls)
}

func TestResolveAllIndependentFailures(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]provider.SearchResult{
		"Apple": {{Symbol: "AAPL", ExchDisp: "NASDAQ", Score: 0.99, QuoteType: "EQUITY"}},
		"Tesla": {{Symbol: "TSLA", ExchDisp: "NASDAQ", Score: 0.98, QuoteType: "EQUITY"}},
	}}
	r := New(searcher)

	resolved := r.ResolveAll(context.Background(), []string{"Apple", "Nonsense Name", "Tesla"})

	require.Len(t, resolved, 2)
	assert.Equal(t, "AAPL", resolved[0].Symbol)
	assert.Equal(t, "TSLA", resolved[1].Symbol)
}
