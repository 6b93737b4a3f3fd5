package fmp

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

func TestHistoryTrailingDays(t *testing.T) {
	var gotTimeseries, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTimeseries = r.URL.Query().Get("timeseries")
		gotKey = r.URL.Query().Get("apikey")
		w.Write([]byte(`{"symbol":"NVDA","historical":[
			{"date":"2024-06-14","open":130.0,"high":135.1,"low":129.5,"close":134.5,"volume":412000000}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", 2*time.Second)
	history, err := c.History(context.Background(), "nvda", provider.HistoryRequest{Days: 30})
	require.NoError(t, err)

	assert.Equal(t, "30", gotTimeseries)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "NVDA", history.Symbol)
	require.Len(t, history.Bars, 1)
	assert.Equal(t, 134.5, history.Bars[0].Close)
}

func TestHistoryDateRange(t *testing.T) {
	var gotFrom, gotTo string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFrom = r.URL.Query().Get("from")
		gotTo = r.URL.Query().Get("to")
		w.Write([]byte(`{"symbol":"NVDA","historical":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", 2*time.Second)
	_, err := c.History(context.Background(), "NVDA", provider.HistoryRequest{
		From: "2024-06-08", To: "2024-06-15",
	})
	require.NoError(t, err)

	assert.Equal(t, "2024-06-08", gotFrom)
	assert.Equal(t, "2024-06-15", gotTo)
}

func TestPriceChange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"symbol":"NVDA","1D":-1.2,"1M":12.4,"ytd":148.9}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", 2*time.Second)
	change, err := c.PriceChange(context.Background(), "NVDA")
	require.NoError(t, err)

	assert.Equal(t, -1.2, change.D1)
	assert.Equal(t, 12.4, change.M1)
	assert.Equal(t, 148.9, change.YTD)
}

func TestPriceChangeEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", 2*time.Second)
	_, err := c.PriceChange(context.Background(), "GHST")
	assert.ErrorIs(t, err, provider.ErrNoMatch)
}

func TestIncomeStatement(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		w.Write([]byte(`[{"date":"2024-01-28","revenue":60922000000,"netIncome":29760000000,"eps":12.05}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", 2*time.Second)
	statement, err := c.IncomeStatement(context.Background(), "NVDA", 1)
	require.NoError(t, err)

	require.NotNil(t, statement.Summary)
	assert.Equal(t, "2024-01-28", statement.Summary.Date)
	assert.Equal(t, 60922000000.0, statement.Summary.Revenue)
	assert.Equal(t, 12.05, statement.Summary.EPS)
	assert.Len(t, statement.Statements, 1)
}

func TestQuoteIndexSymbol(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`[{"symbol":"^GSPC","price":5431.6,"change":-10.2,"changesPercentage":-0.19}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", 2*time.Second)
	quote, err := c.Quote(context.Background(), "^GSPC")
	require.NoError(t, err)

	assert.Equal(t, "/quote/^GSPC", gotPath)
	assert.Equal(t, "^GSPC", quote.Symbol)
	assert.Equal(t, 5431.6, quote.Price)
	require.NotNil(t, quote.ChangePercent)
	assert.Equal(t, -0.19, *quote.ChangePercent)
}

func TestQuoteNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", 2*time.Second)
	_, err := c.Quote(context.Background(), "GHST")
	assert.ErrorIs(t, err, provider.ErrNoMatch)
}

func TestQuoteBatchJoinsSymbols(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`[
			{"symbol":"^GSPC","price":5431.6},
			{"symbol":"^DJI","price":38712.2}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", 2*time.Second)
	quotes, err := c.QuoteBatch(context.Background(), []string{"^gspc", "^DJI", "^IXIC"})
	require.NoError(t, err)

	assert.Equal(t, "/quote/^GSPC,^DJI,^IXIC", gotPath)
	require.Contains(t, quotes, "^GSPC")
	require.Contains(t, quotes, "^DJI")
	assert.NotContains(t, quotes, "^IXIC", "symbols absent from the response stay absent")
	assert.Equal(t, 38712.2, quotes["^DJI"].Price)
}

func TestMissingCredential(t *testing.T) {
	c := NewClient("http://localhost:0", "", time.Second)
	_, err := c.PriceChange(context.Background(), "NVDA")
	assert.ErrorIs(t, err, provider.ErrMissingCredential)
}
