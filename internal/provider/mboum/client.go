package mboum

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/saadtariq57/richtv-chatbot/internal/provider"
	"github.com/saadtariq57/richtv-chatbot/pkg/logger"
	"github.com/saadtariq57/richtv-chatbot/pkg/retry"
)

const sourceLabel = "Mboum API"

// Client talks to the first-party Mboum API. It implements symbol search and
// real-time quotes (single and batch, the quotes endpoint accepts
// comma-separated tickers).
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

type searchResponse struct {
	Body []struct {
		Symbol    string  `json:"symbol"`
		QuoteType string  `json:"quoteType"`
		ExchDisp  string  `json:"exchDisp"`
		Score     float64 `json:"score"`
		Longname  string  `json:"longname"`
		Shortname string  `json:"shortname"`
	} `json:"body"`
}

func (c *Client) Search(ctx context.Context, text string) ([]provider.SearchResult, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: mboum", provider.ErrMissingCredential)
	}

	params := url.Values{}
	params.Set("search", text)

	body, err := c.get(ctx, "/v1/markets/search", params)
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: search: %v", provider.ErrUnparseable, err)
	}

	results := make([]provider.SearchResult, 0, len(resp.Body))
	for _, item := range resp.Body {
		results = append(results, provider.SearchResult{
			Symbol:    item.Symbol,
			QuoteType: strings.ToUpper(item.QuoteType),
			ExchDisp:  item.ExchDisp,
			Score:     item.Score,
			Longname:  item.Longname,
			Shortname: item.Shortname,
		})
	}

	logger.Debug("Symbol search completed",
		zap.String("text", text),
		zap.Int("candidates", len(results)),
	)

	return results, nil
}

// quoteBody matches the `body` array of /v1/markets/stock/quotes. Mboum
// mirrors Yahoo field names, so several price keys may carry the value.
type quoteBody struct {
	Symbol                     string   `json:"symbol"`
	RegularMarketPrice         *float64 `json:"regularMarketPrice"`
	Price                      *float64 `json:"price"`
	Ask                        *float64 `json:"ask"`
	RegularMarketChange        *float64 `json:"regularMarketChange"`
	RegularMarketChangePercent *float64 `json:"regularMarketChangePercent"`
}

type quotesResponse struct {
	Body []quoteBody `json:"body"`
}

func (c *Client) Quote(ctx context.Context, symbol string) (*provider.Quote, error) {
	quotes, err := c.QuoteBatch(ctx, []string{symbol})
	if err != nil {
		return nil, err
	}

	quote, ok := quotes[strings.ToUpper(symbol)]
	if !ok {
		return nil, fmt.Errorf("%w: no quote for %s", provider.ErrNoMatch, symbol)
	}
	return quote, nil
}

func (c *Client) QuoteBatch(ctx context.Context, symbols []string) (map[string]*provider.Quote, error) {
	if len(symbols) == 0 {
		return map[string]*provider.Quote{}, nil
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: mboum", provider.ErrMissingCredential)
	}

	upper := make([]string, len(symbols))
	for i, s := range symbols {
		upper[i] = strings.ToUpper(s)
	}

	params := url.Values{}
	params.Set("ticker", strings.Join(upper, ","))

	body, err := c.get(ctx, "/v1/markets/stock/quotes", params)
	if err != nil {
		return nil, err
	}

	var resp quotesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: quotes: %v", provider.ErrUnparseable, err)
	}

	quotes := make(map[string]*provider.Quote, len(resp.Body))
	for _, item := range resp.Body {
		price := firstNonNil(item.RegularMarketPrice, item.Price, item.Ask)
		if item.Symbol == "" || price == nil {
			continue
		}
		quotes[strings.ToUpper(item.Symbol)] = &provider.Quote{
			Symbol:        strings.ToUpper(item.Symbol),
			Price:         *price,
			Change:        item.RegularMarketChange,
			ChangePercent: item.RegularMarketChangePercent,
			Source:        sourceLabel,
			Timestamp:     time.Now().UTC(),
		}
	}

	return quotes, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	endpoint := c.baseURL + path + "?" + params.Encode()

	return retry.DoWithResult(ctx, c.retryConfig, func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", provider.ErrRequestFailure, err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %v", provider.ErrTimeout, err)
			}
			return nil, fmt.Errorf("%w: %v", provider.ErrRequestFailure, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, provider.Upstreamf(sourceLabel, resp.StatusCode)
		}

		buf, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", provider.ErrRequestFailure, err)
		}
		return buf, nil
	})
}

func firstNonNil(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
