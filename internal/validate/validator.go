package validate

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/saadtariq57/richtv-chatbot/internal/fetch"
	"github.com/saadtariq57/richtv-chatbot/pkg/config"
	"github.com/saadtariq57/richtv-chatbot/pkg/logger"
)

var (
	percentRe = regexp.MustCompile(`(-?\d+\.?\d*)\s*%`)
	priceRe   = regexp.MustCompile(`\$?(\d+\.?\d*)`)
	tickerRe  = regexp.MustCompile(`\b[A-Z]{1,5}\b`)
)

// Words the ticker pattern picks up that are never symbol mentions in
// generated prose.
var tickerNoise = map[string]bool{
	"A": true, "I": true, "THE": true, "IS": true, "AT": true, "OF": true,
	"ON": true, "TO": true, "IT": true, "AS": true, "IN": true, "USD": true,
	"EPS": true, "YTD": true, "CEO": true, "ETF": true, "AND": true,
	"OR": true, "UP": true, "FOR": true, "PER": true,
}

var insufficiencyPhrases = []string{
	"insufficient data",
	"do not have enough data",
	"don't have enough data",
	"no data available",
}

// ContainsInsufficiency reports whether the text admits it has no data to
// work with. Shared with the rescue decision.
func ContainsInsufficiency(text string) bool {
	lowered := strings.ToLower(text)
	for _, phrase := range insufficiencyPhrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}

// Result scores a generated answer against the data it was generated from.
// The answer text itself is never rewritten.
type Result struct {
	MatchedClaims    []string `json:"matched_claims,omitempty"`
	MismatchedClaims []string `json:"mismatched_claims,omitempty"`
	Confidence       float64  `json:"confidence"`
}

// Validator cross-checks numeric claims in generated text against the
// normalized fields of a fetch context.
type Validator struct {
	cfg config.ValidationConfig
}

func New(cfg config.ValidationConfig) *Validator {
	return &Validator{cfg: cfg}
}

// Validate extracts price, percentage, and ticker claims from the text and
// compares each against the context value of the same type. Claim types the
// context has no value for are not checked. Confidence is derived from the
// match ratio, with phrase checks taking precedence over any arithmetic.
func (v *Validator) Validate(text string, fc *fetch.Context) Result {
	result := Result{}
	if ContainsInsufficiency(text) {
		result.Confidence = v.cfg.Insufficient
		return result
	}
	if strings.Contains(strings.ToLower(text), "error") {
		result.Confidence = v.cfg.ErrorPhrase
		return result
	}

	v.checkPrices(text, fc, &result)
	v.checkPercents(text, fc, &result)
	v.checkTickers(text, fc, &result)

	matches := len(result.MatchedClaims)
	mismatches := len(result.MismatchedClaims)
	switch {
	case matches+mismatches == 0:
		result.Confidence = v.cfg.NothingToCheck
	case mismatches == 0:
		result.Confidence = v.cfg.AllMatch
	default:
		result.Confidence = v.ratioConfidence(float64(matches) / float64(matches+mismatches))
	}

	logger.Debug("answer validated",
		zap.Int("matched", matches),
		zap.Int("mismatched", mismatches),
		zap.Float64("confidence", result.Confidence))
	return result
}

// ratioConfidence maps a match ratio onto the configured confidence steps.
// A ratio below every step falls through to the insufficiency floor.
func (v *Validator) ratioConfidence(ratio float64) float64 {
	switch {
	case ratio >= 0.9:
		return v.cfg.MostMatch
	case ratio >= 0.7:
		return v.cfg.PartialMatch
	case ratio >= 0.5:
		return v.cfg.WeakMatch
	default:
		return v.cfg.Insufficient
	}
}

// checkPrices compares monetary claims against the normalized price.
// Percentage figures are cut out first so "-1.2%" does not double as a
// price claim.
func (v *Validator) checkPrices(text string, fc *fetch.Context, result *Result) {
	if fc.Price == nil {
		return
	}
	stripped := percentRe.ReplaceAllString(text, "")
	for _, m := range priceRe.FindAllStringSubmatch(stripped, -1) {
		claim, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if math.Abs(claim-*fc.Price) <= v.cfg.PriceTolerance {
			result.MatchedClaims = append(result.MatchedClaims, "price:"+m[1])
		} else {
			result.MismatchedClaims = append(result.MismatchedClaims, "price:"+m[1])
		}
	}
}

func (v *Validator) checkPercents(text string, fc *fetch.Context, result *Result) {
	if fc.ChangePercent == nil {
		return
	}
	for _, m := range percentRe.FindAllStringSubmatch(text, -1) {
		claim, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if math.Abs(claim-*fc.ChangePercent) <= v.cfg.PercentTolerance {
			result.MatchedClaims = append(result.MatchedClaims, "percent:"+m[1])
		} else {
			result.MismatchedClaims = append(result.MismatchedClaims, "percent:"+m[1])
		}
	}
}

// checkTickers compares uppercase symbol mentions against the context ticker.
// Index symbols carry a caret prefix the token pattern can never produce, so
// an index context skips the check rather than flagging every mention.
func (v *Validator) checkTickers(text string, fc *fetch.Context, result *Result) {
	if fc.Ticker == "" || strings.HasPrefix(fc.Ticker, "^") {
		return
	}
	for _, token := range tickerRe.FindAllString(text, -1) {
		if tickerNoise[token] {
			continue
		}
		if token == fc.Ticker {
			result.MatchedClaims = append(result.MatchedClaims, "ticker:"+token)
		} else {
			result.MismatchedClaims = append(result.MismatchedClaims, "ticker:"+token)
		}
	}
}
