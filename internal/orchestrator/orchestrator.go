package orchestrator

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/saadtariq57/richtv-chatbot/internal/classifier"
	"github.com/saadtariq57/richtv-chatbot/internal/fetch"
	"github.com/saadtariq57/richtv-chatbot/internal/metrics"
	"github.com/saadtariq57/richtv-chatbot/internal/resolver"
	"github.com/saadtariq57/richtv-chatbot/internal/storage/sqlite"
	"github.com/saadtariq57/richtv-chatbot/internal/validate"
	"github.com/saadtariq57/richtv-chatbot/pkg/config"
	"github.com/saadtariq57/richtv-chatbot/pkg/logger"
)

// Response is the finished answer for one query.
type Response struct {
	ID            string    `json:"id"`
	Query         string    `json:"query"`
	Answer        string    `json:"answer"`
	Citations     []string  `json:"citations,omitempty"`
	Confidence    float64   `json:"confidence"`
	RescueApplied bool      `json:"rescue_applied,omitempty"`
	DataTimestamp time.Time `json:"data_timestamp"`
	LatencyMS     int64     `json:"latency_ms"`
}

// QueryClassifier routes a query to data categories.
type QueryClassifier interface {
	Classify(ctx context.Context, query string) classifier.Classification
}

// EntityResolver pins a free-text name to one symbol.
type EntityResolver interface {
	Resolve(ctx context.Context, name string) (*resolver.ResolvedEntity, error)
	ResolveAll(ctx context.Context, names []string) []*resolver.ResolvedEntity
}

// Dispatcher fans out provider fetches.
type Dispatcher interface {
	Dispatch(ctx context.Context, symbol, query string, cls classifier.Classification) *fetch.Context
	DispatchBatch(ctx context.Context, query string) *fetch.Context
}

// Generator is the language-model surface the orchestrator needs.
type Generator interface {
	GenerateAnswer(ctx context.Context, contextJSON, question string) string
	ExtractEntityName(ctx context.Context, query string) (string, error)
}

// AnswerValidator scores generated text against fetched data.
type AnswerValidator interface {
	Validate(text string, fc *fetch.Context) validate.Result
}

// Store persists answered queries. Optional.
type Store interface {
	InsertQueryRecord(ctx context.Context, rec sqlite.QueryRecord) error
}

// Cache holds finished responses keyed by query. Optional.
type Cache interface {
	GetResponse(ctx context.Context, query string, dst interface{}) bool
	SetResponse(ctx context.Context, query string, response interface{})
}

// Orchestrator sequences the pipeline: classify, resolve, fetch, generate,
// validate, with a single rescue retry when the first pass comes back empty.
type Orchestrator struct {
	classifier QueryClassifier
	resolver   EntityResolver
	dispatcher Dispatcher
	generator  Generator
	validator  AnswerValidator
	store      Store
	cache      Cache
	cfg        config.ValidationConfig
}

func New(qc QueryClassifier, er EntityResolver, d Dispatcher, g Generator, av AnswerValidator, cfg config.ValidationConfig) *Orchestrator {
	return &Orchestrator{
		classifier: qc,
		resolver:   er,
		dispatcher: d,
		generator:  g,
		validator:  av,
		cfg:        cfg,
	}
}

// WithStore attaches query-history persistence.
func (o *Orchestrator) WithStore(s Store) *Orchestrator {
	o.store = s
	return o
}

// WithCache attaches a response cache.
func (o *Orchestrator) WithCache(c Cache) *Orchestrator {
	o.cache = c
	return o
}

// Answer runs one query through the full pipeline. It never returns an
// error to the caller: every failure mode degrades to a low-confidence
// response with explanatory text.
func (o *Orchestrator) Answer(ctx context.Context, query string) *Response {
	start := time.Now()

	if o.cache != nil {
		var cached Response
		if o.cache.GetResponse(ctx, query, &cached) {
			metrics.CacheHits.Inc()
			cached.LatencyMS = time.Since(start).Milliseconds()
			return &cached
		}
		metrics.CacheMisses.Inc()
	}

	cls := o.classifier.Classify(ctx, query)

	var resp *Response
	if cls.DirectAnswer != "" {
		resp = o.buildResponse(query, cls.DirectAnswer, o.cfg.GeneralConfidence, nil, start, false)
	} else {
		resp = o.answerWithData(ctx, query, cls, start)
	}

	o.recordMetrics(cls, resp, start)
	o.persist(ctx, query, cls, resp)
	if o.cache != nil && resp.Confidence >= o.cfg.NothingToCheck {
		o.cache.SetResponse(ctx, query, resp)
	}
	return resp
}

func (o *Orchestrator) answerWithData(ctx context.Context, query string, cls classifier.Classification, start time.Time) *Response {
	symbol := o.resolveSymbol(ctx, cls)
	fc := o.dispatch(ctx, symbol, query, cls)

	answer := o.generator.GenerateAnswer(ctx, marshalContext(fc), query)
	vr := o.validator.Validate(answer, fc)

	rescued := false
	if vr.Confidence <= o.cfg.Insufficient && validate.ContainsInsufficiency(answer) {
		if fc2, answer2, vr2, ok := o.rescue(ctx, query, cls); ok {
			fc, answer, vr = fc2, answer2, vr2
			rescued = true
			metrics.RescueAttempts.WithLabelValues("success").Inc()
		} else {
			metrics.RescueAttempts.WithLabelValues("failed").Inc()
		}
	}

	for _, fe := range fc.FetchErrors {
		metrics.ProviderErrors.WithLabelValues(fe.Source, fe.Kind).Inc()
	}

	resp := o.buildResponse(query, answer, vr.Confidence, fc, start, rescued)
	return resp
}

// resolveSymbol returns the symbol to fetch for, empty when the query did
// not pin one down. A literal ticker from the classifier skips resolution.
func (o *Orchestrator) resolveSymbol(ctx context.Context, cls classifier.Classification) string {
	if cls.Ticker != "" {
		return cls.Ticker
	}
	if len(cls.Entities) == 0 {
		return ""
	}
	resolved := o.resolver.ResolveAll(ctx, cls.Entities)
	if len(resolved) == 0 {
		return ""
	}
	return resolved[0].Symbol
}

func (o *Orchestrator) dispatch(ctx context.Context, symbol, query string, cls classifier.Classification) *fetch.Context {
	if symbol == "" && cls.Has(classifier.CategoryMarket) && len(cls.Categories) == 1 {
		return o.dispatcher.DispatchBatch(ctx, query)
	}
	return o.dispatcher.Dispatch(ctx, symbol, query, cls)
}

// rescue asks the model for a bare asset name, resolves it, and re-runs the
// fetch and generation once. The replacement is used only when it actually
// produced data.
func (o *Orchestrator) rescue(ctx context.Context, query string, cls classifier.Classification) (*fetch.Context, string, validate.Result, bool) {
	name, err := o.generator.ExtractEntityName(ctx, query)
	if err != nil || name == "" {
		return nil, "", validate.Result{}, false
	}

	entity, err := o.resolver.Resolve(ctx, name)
	if err != nil {
		logger.Debug("rescue resolution failed",
			zap.String("name", name), zap.Error(err))
		return nil, "", validate.Result{}, false
	}

	logger.Info("rescue attempt",
		zap.String("name", name),
		zap.String("symbol", entity.Symbol))

	fc := o.dispatcher.Dispatch(ctx, entity.Symbol, query, cls)
	if !fc.HasData() {
		return nil, "", validate.Result{}, false
	}

	answer := o.generator.GenerateAnswer(ctx, marshalContext(fc), query)
	vr := o.validator.Validate(answer, fc)
	return fc, answer, vr, true
}

func (o *Orchestrator) buildResponse(query, answer string, confidence float64, fc *fetch.Context, start time.Time, rescued bool) *Response {
	resp := &Response{
		ID:            uuid.NewString(),
		Query:         query,
		Answer:        answer,
		Confidence:    confidence,
		RescueApplied: rescued,
		DataTimestamp: time.Now().UTC(),
		LatencyMS:     time.Since(start).Milliseconds(),
	}
	if fc != nil {
		resp.Citations = fc.SourcesQueried
		resp.DataTimestamp = fc.Timestamp
	}
	return resp
}

func (o *Orchestrator) recordMetrics(cls classifier.Classification, resp *Response, start time.Time) {
	status := "ok"
	if resp.Confidence <= o.cfg.Insufficient {
		status = "low_confidence"
	}
	metrics.QueriesTotal.WithLabelValues(string(cls.Primary()), status).Inc()
	metrics.QueryDuration.Observe(time.Since(start).Seconds())
	metrics.AnswerConfidence.Observe(resp.Confidence)
}

func (o *Orchestrator) persist(ctx context.Context, query string, cls classifier.Classification, resp *Response) {
	if o.store == nil {
		return
	}
	categories := make([]string, 0, len(cls.Categories))
	for _, cat := range cls.Categories {
		categories = append(categories, string(cat))
	}
	rec := sqlite.QueryRecord{
		ID:            resp.ID,
		QueryText:     query,
		Answer:        resp.Answer,
		Confidence:    resp.Confidence,
		Categories:    categories,
		RescueApplied: resp.RescueApplied,
		LatencyMS:     resp.LatencyMS,
		CreatedAt:     time.Now().UTC(),
	}
	if err := o.store.InsertQueryRecord(ctx, rec); err != nil {
		logger.Warn("failed to persist query record", zap.Error(err))
	}
}

func marshalContext(fc *fetch.Context) string {
	raw, err := json.Marshal(fc)
	if err != nil {
		return "{}"
	}
	return string(raw)
}
