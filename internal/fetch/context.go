package fetch

import (
	"time"

	"github.com/saadtariq57/richtv-chatbot/internal/provider"
)

// FetchError records one failed provider call without failing the fetch.
type FetchError struct {
	Source  string `json:"source"`
	Kind    string `json:"error"`
	Message string `json:"message"`
}

// Context is the merged result of one fan-out, shaped for serialization
// into the answer-generation prompt. Top-level price fields are flattened
// from the quote so the model does not have to dig for them.
type Context struct {
	Ticker         string                     `json:"ticker,omitempty"`
	Query          string                     `json:"query"`
	Price          *float64                   `json:"price,omitempty"`
	Change         *float64                   `json:"change,omitempty"`
	ChangePercent  *float64                   `json:"change_percent,omitempty"`
	PriceData      *provider.Quote            `json:"price_data,omitempty"`
	HistoricalData *provider.History          `json:"historical_data,omitempty"`
	PriceChange    *provider.PriceChange      `json:"price_change,omitempty"`
	Fundamentals   *provider.IncomeStatement  `json:"fundamentals_data,omitempty"`
	MarketData     map[string]*provider.Quote `json:"market_data,omitempty"`
	SourcesQueried []string                   `json:"sources_queried"`
	FetchErrors    []FetchError               `json:"fetch_errors,omitempty"`
	Timestamp      time.Time                  `json:"timestamp"`
}

func (c *Context) recordSuccess(source string) {
	c.SourcesQueried = append(c.SourcesQueried, source)
}

func (c *Context) recordError(source string, err error) {
	c.FetchErrors = append(c.FetchErrors, FetchError{
		Source:  source,
		Kind:    provider.Kind(err),
		Message: err.Error(),
	})
}

// HasData reports whether at least one provider call produced usable data.
func (c *Context) HasData() bool {
	return len(c.SourcesQueried) > 0
}
