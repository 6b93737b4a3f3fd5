package fetch

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/saadtariq57/richtv-chatbot/internal/classifier"
	"github.com/saadtariq57/richtv-chatbot/internal/provider"
	"github.com/saadtariq57/richtv-chatbot/pkg/config"
	"github.com/saadtariq57/richtv-chatbot/pkg/logger"
)

const defaultIndexSymbol = "^GSPC"

// Dispatcher fans a classification out to the providers and merges whatever
// comes back. Every provider call gets its own timeout and its failures land
// in Context.FetchErrors instead of aborting the fetch.
type Dispatcher struct {
	quoter       provider.Quoter
	indexQuoter  provider.Quoter
	historian    provider.Historian
	fundamentals provider.FundamentalsReader
	cfg          config.FetchConfig
}

func NewDispatcher(quoter, indexQuoter provider.Quoter, historian provider.Historian, fundamentals provider.FundamentalsReader, cfg config.FetchConfig) *Dispatcher {
	return &Dispatcher{
		quoter:       quoter,
		indexQuoter:  indexQuoter,
		historian:    historian,
		fundamentals: fundamentals,
		cfg:          cfg,
	}
}

// quoterFor picks the provider a quote for symbol should come from. The
// stock quote endpoints do not carry caret-prefixed index symbols, so those
// go through the index quoter.
func (d *Dispatcher) quoterFor(symbol string) provider.Quoter {
	if strings.HasPrefix(symbol, "^") {
		return d.indexQuoter
	}
	return d.quoter
}

type task struct {
	source string
	run    func(ctx context.Context, fc *Context, mu *sync.Mutex) error
}

// Dispatch runs every fetch the classification calls for against one symbol.
func (d *Dispatcher) Dispatch(ctx context.Context, symbol, query string, cls classifier.Classification) *Context {
	fc := &Context{
		Ticker:         symbol,
		Query:          query,
		SourcesQueried: []string{},
		Timestamp:      time.Now().UTC(),
	}

	tasks := d.plan(symbol, cls)
	if len(tasks) == 0 {
		return fc
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	timeout := time.Duration(d.cfg.CallTimeoutSec) * time.Second
	for _, t := range tasks {
		wg.Add(1)
		go func(t task) {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			if err := t.run(callCtx, fc, &mu); err != nil {
				mu.Lock()
				fc.recordError(t.source, err)
				mu.Unlock()
				logger.Warn("provider fetch failed",
					zap.String("source", t.source),
					zap.String("symbol", symbol),
					zap.Error(err))
				return
			}
			mu.Lock()
			fc.recordSuccess(t.source)
			mu.Unlock()
		}(t)
	}
	wg.Wait()
	return fc
}

// plan expands the matched categories into provider tasks. Analysis needs
// the full picture, so it adds price, history, and fundamentals; duplicates
// collapse by source name.
func (d *Dispatcher) plan(symbol string, cls classifier.Classification) []task {
	want := make(map[classifier.Category]bool)
	for _, cat := range cls.Categories {
		if cat == classifier.CategoryAnalysis {
			want[classifier.CategoryPrice] = true
			want[classifier.CategoryHistorical] = true
			want[classifier.CategoryFundamentals] = true
			continue
		}
		want[cat] = true
	}

	var tasks []task
	if want[classifier.CategoryPrice] && symbol != "" {
		tasks = append(tasks, d.quoteTask(symbol))
	}
	if want[classifier.CategoryHistorical] && symbol != "" {
		tasks = append(tasks, d.historyTask(symbol, cls.DateRange), d.priceChangeTask(symbol))
	}
	if want[classifier.CategoryFundamentals] && symbol != "" {
		tasks = append(tasks, d.fundamentalsTask(symbol))
	}
	if want[classifier.CategoryMarket] {
		idx := symbol
		if idx == "" {
			idx = defaultIndexSymbol
		}
		tasks = append(tasks, d.marketTask(idx))
	}
	return tasks
}

func (d *Dispatcher) quoteTask(symbol string) task {
	return task{source: "quote", run: func(ctx context.Context, fc *Context, mu *sync.Mutex) error {
		quote, err := d.quoterFor(symbol).Quote(ctx, symbol)
		if err != nil {
			return err
		}
		mu.Lock()
		fc.PriceData = quote
		fc.Price = &quote.Price
		fc.Change = quote.Change
		fc.ChangePercent = quote.ChangePercent
		mu.Unlock()
		return nil
	}}
}

func (d *Dispatcher) historyTask(symbol string, dr *classifier.DateRange) task {
	return task{source: "historical", run: func(ctx context.Context, fc *Context, mu *sync.Mutex) error {
		req := provider.HistoryRequest{Days: d.cfg.HistoricalDays}
		if dr != nil {
			req.From, req.To = dr.From, dr.To
		}
		history, err := d.historian.History(ctx, symbol, req)
		if err != nil {
			return err
		}
		mu.Lock()
		fc.HistoricalData = history
		mu.Unlock()
		return nil
	}}
}

func (d *Dispatcher) priceChangeTask(symbol string) task {
	return task{source: "price_change", run: func(ctx context.Context, fc *Context, mu *sync.Mutex) error {
		change, err := d.historian.PriceChange(ctx, symbol)
		if err != nil {
			return err
		}
		mu.Lock()
		fc.PriceChange = change
		mu.Unlock()
		return nil
	}}
}

func (d *Dispatcher) fundamentalsTask(symbol string) task {
	return task{source: "fundamentals", run: func(ctx context.Context, fc *Context, mu *sync.Mutex) error {
		statement, err := d.fundamentals.IncomeStatement(ctx, symbol, d.cfg.FundamentalsLimit)
		if err != nil {
			return err
		}
		mu.Lock()
		fc.Fundamentals = statement
		mu.Unlock()
		return nil
	}}
}

func (d *Dispatcher) marketTask(symbol string) task {
	return task{source: "market", run: func(ctx context.Context, fc *Context, mu *sync.Mutex) error {
		quote, err := d.quoterFor(symbol).Quote(ctx, symbol)
		if err != nil {
			return err
		}
		mu.Lock()
		if fc.MarketData == nil {
			fc.MarketData = make(map[string]*provider.Quote)
		}
		fc.MarketData[symbol] = quote
		mu.Unlock()
		return nil
	}}
}

// DispatchBatch snapshots the configured market basket in one batched quote
// call, filling a per-symbol error entry for anything the provider skipped.
// The basket holds index symbols, so the batch goes to the index quoter.
func (d *Dispatcher) DispatchBatch(ctx context.Context, query string) *Context {
	fc := &Context{
		Query:          query,
		SourcesQueried: []string{},
		MarketData:     make(map[string]*provider.Quote),
		Timestamp:      time.Now().UTC(),
	}

	basket := d.cfg.MarketBasket
	if len(basket) == 0 {
		basket = []string{defaultIndexSymbol}
	}

	callCtx, cancel := context.WithTimeout(ctx, time.Duration(d.cfg.CallTimeoutSec)*time.Second)
	defer cancel()

	quotes, err := d.indexQuoter.QuoteBatch(callCtx, basket)
	if err != nil {
		for _, sym := range basket {
			fc.recordError("market:"+sym, err)
		}
		return fc
	}
	for _, sym := range basket {
		quote, ok := quotes[sym]
		if !ok || quote == nil {
			fc.recordError("market:"+sym, provider.ErrNoMatch)
			continue
		}
		fc.MarketData[sym] = quote
		fc.recordSuccess("market:" + sym)
	}
	return fc
}
