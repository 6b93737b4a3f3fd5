package fmp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/saadtariq57/richtv-chatbot/internal/provider"
	"github.com/saadtariq57/richtv-chatbot/pkg/logger"
	"github.com/saadtariq57/richtv-chatbot/pkg/retry"
)

const (
	historicalSource   = "FMP Historical API"
	fundamentalsSource = "FMP Fundamentals API"
	priceChangeSource  = "FMP Price Change API"
	quoteSource        = "FMP Quote API"
)

// Client talks to Financial Modeling Prep. Authentication uses the `apikey`
// query parameter on every endpoint.
type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	retryConfig retry.Config
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	retryConfig := retry.DefaultConfig()
	retryConfig.Logger = logger.GetLogger()

	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		httpClient:  &http.Client{Timeout: timeout},
		retryConfig: retryConfig,
	}
}

type historicalResponse struct {
	Symbol     string `json:"symbol"`
	Historical []struct {
		Date   string  `json:"date"`
		Open   float64 `json:"open"`
		High   float64 `json:"high"`
		Low    float64 `json:"low"`
		Close  float64 `json:"close"`
		Volume int64   `json:"volume"`
	} `json:"historical"`
}

func (c *Client) History(ctx context.Context, symbol string, req provider.HistoryRequest) (*provider.History, error) {
	symbol = strings.ToUpper(symbol)

	params := url.Values{}
	if req.From != "" && req.To != "" {
		params.Set("from", req.From)
		params.Set("to", req.To)
	} else {
		days := req.Days
		if days <= 0 {
			days = 30
		}
		params.Set("timeseries", strconv.Itoa(days))
	}

	body, err := c.get(ctx, "/historical-price-full/"+symbol, params, historicalSource)
	if err != nil {
		return nil, err
	}

	var resp historicalResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: historical: %v", provider.ErrUnparseable, err)
	}

	history := &provider.History{
		Symbol: resp.Symbol,
		Source: historicalSource,
	}
	if history.Symbol == "" {
		history.Symbol = symbol
	}
	for _, bar := range resp.Historical {
		history.Bars = append(history.Bars, provider.Bar{
			Date:   bar.Date,
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: bar.Volume,
		})
	}

	return history, nil
}

func (c *Client) PriceChange(ctx context.Context, symbol string) (*provider.PriceChange, error) {
	symbol = strings.ToUpper(symbol)

	body, err := c.get(ctx, "/stock-price-change/"+symbol, url.Values{}, priceChangeSource)
	if err != nil {
		return nil, err
	}

	// The endpoint returns a single-element array.
	var resp []struct {
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
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: price change: %v", provider.ErrUnparseable, err)
	}
	if len(resp) == 0 {
		return nil, fmt.Errorf("%w: no price change data for %s", provider.ErrNoMatch, symbol)
	}

	item := resp[0]
	change := &provider.PriceChange{
		Symbol: item.Symbol,
		D1:     item.D1,
		D5:     item.D5,
		M1:     item.M1,
		M3:     item.M3,
		M6:     item.M6,
		YTD:    item.YTD,
		Y1:     item.Y1,
		Y3:     item.Y3,
		Y5:     item.Y5,
		Y10:    item.Y10,
		Source: priceChangeSource,
	}
	if change.Symbol == "" {
		change.Symbol = symbol
	}

	return change, nil
}

func (c *Client) IncomeStatement(ctx context.Context, symbol string, limit int) (*provider.IncomeStatement, error) {
	symbol = strings.ToUpper(symbol)
	if limit <= 0 {
		limit = 1
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.get(ctx, "/income-statement/"+symbol, params, fundamentalsSource)
	if err != nil {
		return nil, err
	}

	var statements []map[string]interface{}
	if err := json.Unmarshal(body, &statements); err != nil {
		return nil, fmt.Errorf("%w: income statement: %v", provider.ErrUnparseable, err)
	}

	result := &provider.IncomeStatement{
		Symbol:     symbol,
		Statements: statements,
		Source:     fundamentalsSource,
	}
	if len(statements) > 0 {
		latest := statements[0]
		result.Summary = &provider.StatementSummary{
			Date:      asString(latest["date"]),
			Revenue:   asFloat(latest["revenue"]),
			NetIncome: asFloat(latest["netIncome"]),
			EPS:       asFloat(latest["eps"]),
		}
	}

	return result, nil
}

// Quote fetches a single quote through /quote/{sym}. Index symbols such as
// ^GSPC route here because the stock quote provider does not carry them.
func (c *Client) Quote(ctx context.Context, symbol string) (*provider.Quote, error) {
	symbol = strings.ToUpper(symbol)

	quotes, err := c.QuoteBatch(ctx, []string{symbol})
	if err != nil {
		return nil, err
	}
	quote, ok := quotes[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: no quote for %s", provider.ErrNoMatch, symbol)
	}
	return quote, nil
}

// QuoteBatch quotes several symbols in one call. The /quote endpoint accepts
// a comma-joined list and returns an array; symbols it does not know are
// simply absent from the response.
func (c *Client) QuoteBatch(ctx context.Context, symbols []string) (map[string]*provider.Quote, error) {
	upper := make([]string, len(symbols))
	for i, sym := range symbols {
		upper[i] = strings.ToUpper(sym)
	}

	body, err := c.get(ctx, "/quote/"+url.PathEscape(strings.Join(upper, ",")), url.Values{}, quoteSource)
	if err != nil {
		return nil, err
	}

	var resp []struct {
		Symbol            string   `json:"symbol"`
		Price             float64  `json:"price"`
		Change            *float64 `json:"change"`
		ChangesPercentage *float64 `json:"changesPercentage"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: quote: %v", provider.ErrUnparseable, err)
	}

	now := time.Now().UTC()
	quotes := make(map[string]*provider.Quote, len(resp))
	for _, item := range resp {
		quotes[item.Symbol] = &provider.Quote{
			Symbol:        item.Symbol,
			Price:         item.Price,
			Change:        item.Change,
			ChangePercent: item.ChangesPercentage,
			Source:        quoteSource,
			Timestamp:     now,
		}
	}

	return quotes, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, source string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: fmp", provider.ErrMissingCredential)
	}
	params.Set("apikey", c.apiKey)
	endpoint := c.baseURL + path + "?" + params.Encode()

	return retry.DoWithResult(ctx, c.retryConfig, func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", provider.ErrRequestFailure, err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %v", provider.ErrTimeout, err)
			}
			return nil, fmt.Errorf("%w: %v", provider.ErrRequestFailure, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, provider.Upstreamf(source, resp.StatusCode)
		}

		return io.ReadAll(resp.Body)
	})
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asFloat(v interface{}) float64 {
	f, _ := v.(float64)
	return f
}
