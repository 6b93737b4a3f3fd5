package classifier

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/saadtariq57/richtv-chatbot/internal/llm"
	"github.com/saadtariq57/richtv-chatbot/pkg/logger"
)

// Assistant is the LLM surface the classifier needs for its fallback tiers.
type Assistant interface {
	ClassifyAndAnswer(ctx context.Context, query string) llm.IntentResult
	ExtractEntityName(ctx context.Context, query string) (string, error)
}

// Classifier routes a query through three tiers: keyword patterns, an LLM
// intent call when no pattern hits, and an LLM entity extraction when the
// query mentions an asset without a usable symbol.
type Classifier struct {
	assistant Assistant
	now       func() time.Time
}

func New(assistant Assistant) *Classifier {
	return &Classifier{assistant: assistant, now: time.Now}
}

// Classify never returns an error. Unknown and empty queries degrade to a
// low-confidence price classification so the pipeline always has a route.
func (c *Classifier) Classify(ctx context.Context, query string) Classification {
	query = strings.TrimSpace(query)
	if query == "" {
		return Classification{
			Categories: []Category{CategoryPrice},
			Confidence: ConfidenceLow,
		}
	}

	result := c.matchPatterns(query)
	if len(result.Categories) == 0 {
		result = c.classifyWithModel(ctx, query)
	}
	if result.DirectAnswer != "" {
		return result
	}

	c.attachEntity(ctx, query, &result)
	result.DateRange = parseDateRange(query, c.now())

	logger.Debug("query classified",
		zap.String("primary", string(result.Primary())),
		zap.String("confidence", string(result.Confidence)),
		zap.String("ticker", result.Ticker),
		zap.Strings("entities", result.Entities))
	return result
}

// matchPatterns is the deterministic tier. A single category hit is high
// confidence, several hits are medium, a high-confidence phrase forces high.
func (c *Classifier) matchPatterns(query string) Classification {
	lowered := strings.ToLower(query)
	matched := make(map[Category]bool)
	var hits []string

	for cat, keywords := range patterns {
		for _, kw := range keywords {
			if strings.Contains(lowered, kw) {
				matched[cat] = true
				hits = append(hits, kw)
				break
			}
		}
	}
	if len(matched) == 0 {
		return Classification{}
	}

	confidence := ConfidenceMedium
	if len(matched) == 1 {
		confidence = ConfidenceHigh
	} else {
		for cat := range matched {
			for _, phrase := range highConfidencePatterns[cat] {
				if strings.Contains(lowered, phrase) {
					confidence = ConfidenceHigh
				}
			}
		}
	}

	return Classification{
		Categories:      sortByPriority(matched),
		Confidence:      confidence,
		MatchedPatterns: hits,
	}
}

// classifyWithModel is the fallback tier for queries no pattern recognizes.
func (c *Classifier) classifyWithModel(ctx context.Context, query string) Classification {
	intent := c.assistant.ClassifyAndAnswer(ctx, query)
	switch intent.Kind {
	case llm.IntentGeneral:
		return Classification{
			Categories:   []Category{CategoryGeneral},
			Confidence:   ConfidenceMedium,
			DirectAnswer: intent.Answer,
		}
	case llm.IntentSpecific:
		return Classification{
			Categories: []Category{CategoryPrice},
			Confidence: ConfidenceMedium,
			Ticker:     intent.Ticker,
		}
	default:
		return Classification{
			Categories: []Category{CategoryPrice},
			Confidence: ConfidenceLow,
		}
	}
}

// attachEntity fills Ticker or Entities. Curated company names win, then a
// literal symbol token, and only an implausible token costs an LLM call.
func (c *Classifier) attachEntity(ctx context.Context, query string, result *Classification) {
	if result.Ticker != "" {
		return
	}
	if sym, ok := lookupCompanyTicker(query); ok {
		result.Ticker = sym
		return
	}

	token, plausible := extractTickerToken(query)
	if plausible {
		result.Ticker = token
		return
	}
	if token == "" {
		return
	}

	// A symbol-shaped token that failed the plausibility check is usually a
	// shouted company name. Ask the model what the query is actually about.
	name, err := c.assistant.ExtractEntityName(ctx, query)
	if err != nil {
		logger.Warn("entity extraction failed", zap.Error(err))
		result.Entities = []string{token}
		return
	}
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "none") {
		result.Entities = []string{token}
		return
	}
	if sym, ok := lookupCompanyTicker(name); ok {
		result.Ticker = sym
		return
	}
	result.Entities = []string{name}
}

// parseDateRange maps relative phrases to concrete bounds.
func parseDateRange(query string, now time.Time) *DateRange {
	lowered := strings.ToLower(query)
	var from time.Time
	switch {
	case strings.Contains(lowered, "last week") || strings.Contains(lowered, "past week"):
		from = now.AddDate(0, 0, -7)
	case strings.Contains(lowered, "last month") || strings.Contains(lowered, "past month"):
		from = now.AddDate(0, -1, 0)
	case strings.Contains(lowered, "last year") || strings.Contains(lowered, "past year"):
		from = now.AddDate(-1, 0, 0)
	case strings.Contains(lowered, "ytd") || strings.Contains(lowered, "year to date"):
		from = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	default:
		return nil
	}
	const layout = "2006-01-02"
	return &DateRange{From: from.Format(layout), To: now.Format(layout)}
}
