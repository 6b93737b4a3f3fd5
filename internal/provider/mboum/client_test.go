package mboum

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saadtariq57/richtv-chatbot/internal/provider"
)

func newTestServer(t *testing.T, path, payload string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, path, r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
}

func TestSearch(t *testing.T) {
	srv := newTestServer(t, "/v1/markets/search", `{"body":[
		{"symbol":"AAPL","quoteType":"equity","exchDisp":"NASDAQ","score":0.99,"longname":"Apple Inc."},
		{"symbol":"APLE.DE","quoteType":"EQUITY","exchDisp":"XETRA","score":0.5}
	]}`)
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", 2*time.Second)
	results, err := c.Search(context.Background(), "Apple")
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "AAPL", results[0].Symbol)
	assert.Equal(t, "EQUITY", results[0].QuoteType, "quote types are normalized to upper case")
	assert.Equal(t, "Apple Inc.", results[0].Longname)
}

func TestSearchMissingCredential(t *testing.T) {
	c := NewClient("http://localhost:0", "", time.Second)
	_, err := c.Search(context.Background(), "Apple")
	assert.ErrorIs(t, err, provider.ErrMissingCredential)
}

func TestQuoteBatch(t *testing.T) {
	var gotTicker string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTicker = r.URL.Query().Get("ticker")
		w.Write([]byte(`{"body":[
			{"symbol":"NVDA","regularMarketPrice":134.50,"regularMarketChange":-1.7,"regularMarketChangePercent":-1.2},
			{"symbol":"AAPL","ask":210.10}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", 2*time.Second)
	quotes, err := c.QuoteBatch(context.Background(), []string{"nvda", "aapl"})
	require.NoError(t, err)

	assert.Equal(t, "NVDA,AAPL", gotTicker)
	require.Contains(t, quotes, "NVDA")
	assert.Equal(t, 134.50, quotes["NVDA"].Price)
	require.NotNil(t, quotes["NVDA"].ChangePercent)
	assert.Equal(t, -1.2, *quotes["NVDA"].ChangePercent)

	// Falls through the price keys until one is populated.
	require.Contains(t, quotes, "AAPL")
	assert.Equal(t, 210.10, quotes["AAPL"].Price)
	assert.Nil(t, quotes["AAPL"].Change)
}

func TestQuoteAbsentSymbol(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"body":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", 2*time.Second)
	_, err := c.Quote(context.Background(), "GHST")
	assert.ErrorIs(t, err, provider.ErrNoMatch)
}

func TestQuoteUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", 2*time.Second)
	_, err := c.Quote(context.Background(), "NVDA")
	assert.ErrorIs(t, err, provider.ErrUpstream)
}
