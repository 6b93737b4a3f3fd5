package provider

import (
	"context"
	"time"
)

// Quote is a normalized real-time quote. Change and ChangePercent are
// pointers because some instruments (new listings, thin indexes) report a
// price without movement fields.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        *float64  `json:"change,omitempty"`
	ChangePercent *float64  `json:"change_percent,omitempty"`
	Source        string    `json:"source"`
	Timestamp     time.Time `json:"timestamp"`
}

// SearchResult is one candidate from a symbol search.
type SearchResult struct {
	Symbol    string  `json:"symbol"`
	QuoteType string  `json:"quoteType"`
	ExchDisp  string  `json:"exchDisp"`
	Score     float64 `json:"score"`
	Longname  string  `json:"longname,omitempty"`
	Shortname string  `json:"shortname,omitempty"`
}

// Bar is one historical OHLCV data point.
type Bar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// History is a historical price series for a symbol.
type History struct {
	Symbol string `json:"symbol"`
	Bars   []Bar  `json:"historical"`
	Source string `json:"source"`
}

// HistoryRequest selects either the trailing N trading days or an explicit
// date range. From/To take precedence over Days when both are set.
type HistoryRequest struct {
	Days int
	From string
	To   string
}

// PriceChange is a multi-timeframe performance summary.
type PriceChange struct {
	Symbol string  `json:"symbol"`
	D1     float64 `json:"1D"`
	D5     float64 `json:"5D"`
	M1     float64 `json:"1M"`
	M3     float64 `json:"3M"`
	M6     float64 `json:"6M"`
	YTD    float64 `json:"ytd"`
	Y1     float64 `json:"1Y"`
	Y3     float64 `json:"3Y"`
	Y5     float64 `json:"5Y"`
	Y10    float64 `json:"10Y"`
	Source string  `json:"source"`
}

// StatementSummary is the headline line items of the latest statement.
type StatementSummary struct {
	Date      string  `json:"date"`
	Revenue   float64 `json:"revenue"`
	NetIncome float64 `json:"netIncome"`
	EPS       float64 `json:"eps"`
}

// IncomeStatement holds the summary plus the raw statement periods.
type IncomeStatement struct {
	Symbol     string                   `json:"symbol"`
	Summary    *StatementSummary        `json:"summary,omitempty"`
	Statements []map[string]interface{} `json:"statements,omitempty"`
	Source     string                   `json:"source"`
}

// SymbolSearcher finds candidate tradable symbols for free text.
type SymbolSearcher interface {
	Search(ctx context.Context, text string) ([]SearchResult, error)
}

// Quoter supplies real-time quotes, singly or batched. QuoteBatch returns a
// map keyed by symbol; symbols absent from the provider response are simply
// missing from the map, callers record per-symbol errors.
type Quoter interface {
	Quote(ctx context.Context, symbol string) (*Quote, error)
	QuoteBatch(ctx context.Context, symbols []string) (map[string]*Quote, error)
}

// Historian supplies historical series and price-change summaries.
type Historian interface {
	History(ctx context.Context, symbol string, req HistoryRequest) (*History, error)
	PriceChange(ctx context.Context, symbol string) (*PriceChange, error)
}

// FundamentalsReader supplies financial-statement data.
type FundamentalsReader interface {
	IncomeStatement(ctx context.Context, symbol string, limit int) (*IncomeStatement, error)
}
