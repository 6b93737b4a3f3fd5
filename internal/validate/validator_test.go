package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/saadtariq57/richtv-chatbot/internal/fetch"
	"github.com/saadtariq57/richtv-chatbot/pkg/config"
)

func testValidationConfig() config.ValidationConfig {
	return config.ValidationConfig{
		PriceTolerance:    0.01,
		PercentTolerance:  0.1,
		AllMatch:          0.95,
		MostMatch:         0.85,
		PartialMatch:      0.7,
		WeakMatch:         0.55,
		NothingToCheck:    0.6,
		Insufficient:      0.3,
		ErrorPhrase:       0.1,
		GeneralConfidence: 0.80,
	}
}

func quoteContext(ticker string, price, changePct float64) *fetch.Context {
	return &fetch.Context{
		Ticker:        ticker,
		Price:         &price,
		ChangePercent: &changePct,
	}
}

func TestValidateRoundTrip(t *testing.T) {
	v := New(testValidationConfig())
	fc := quoteContext("", 134.50, -1.2)

	result := v.Validate("The price is $134.50, a change of -1.2%.", fc)

	assert.GreaterOrEqual(t, result.Confidence, 0.9)
	assert.Empty(t, result.MismatchedClaims)
}

func TestValidateQuoteScenario(t *testing.T) {
	v := New(testValidationConfig())
	fc := quoteContext("NVDA", 134.50, -1.2)

	result := v.Validate("NVDA is trading at $134.50, down -1.2% today.", fc)

	assert.GreaterOrEqual(t, result.Confidence, 0.85)
}

func TestValidateInsufficiencyPhrase(t *testing.T) {
	v := New(testValidationConfig())
	fc := &fetch.Context{}

	result := v.Validate("I have insufficient data to answer this question.", fc)

	assert.Equal(t, 0.3, result.Confidence)
	assert.Empty(t, result.MatchedClaims)
}

func TestValidateErrorPhrase(t *testing.T) {
	v := New(testValidationConfig())
	result := v.Validate("An error occurred while fetching data.", &fetch.Context{})
	assert.Equal(t, 0.1, result.Confidence)
}

func TestValidateNothingToCheck(t *testing.T) {
	v := New(testValidationConfig())

	result := v.Validate("Diversification spreads risk across unrelated assets.", &fetch.Context{})

	assert.Equal(t, 0.6, result.Confidence)
	assert.Empty(t, result.MatchedClaims)
	assert.Empty(t, result.MismatchedClaims)
}

func TestValidateHallucinatedPrice(t *testing.T) {
	v := New(testValidationConfig())
	fc := quoteContext("NVDA", 134.50, -1.2)

	result := v.Validate("NVDA is trading at $999.99, down -1.2%.", fc)

	assert.Contains(t, result.MismatchedClaims, "price:999.99")
	assert.Less(t, result.Confidence, 0.85)
}

func TestValidateTolerances(t *testing.T) {
	v := New(testValidationConfig())

	tests := []struct {
		name    string
		text    string
		matched bool
	}{
		{"price within tolerance", "It trades at $134.51.", true},
		{"price outside tolerance", "It trades at $134.60.", false},
		{"percent within tolerance", "Up by 2.35% today.", true},
		{"percent outside tolerance", "Up by 2.6% today.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := quoteContext("", 134.50, 2.4)
			result := v.Validate(tt.text, fc)
			if tt.matched {
				assert.Empty(t, result.MismatchedClaims)
				assert.NotEmpty(t, result.MatchedClaims)
			} else {
				assert.NotEmpty(t, result.MismatchedClaims)
			}
		})
	}
}

func TestValidateRatioLadder(t *testing.T) {
	v := New(testValidationConfig())

	tests := []struct {
		ratio float64
		want  float64
	}{
		{1.0, 0.85},
		{0.9, 0.85},
		{0.75, 0.7},
		{0.6, 0.55},
		{0.4, 0.3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, v.ratioConfidence(tt.ratio))
	}
}

func TestValidateRatioLadderConfigurable(t *testing.T) {
	cfg := testValidationConfig()
	cfg.MostMatch = 0.9
	cfg.PartialMatch = 0.75
	cfg.WeakMatch = 0.5
	cfg.Insufficient = 0.2
	v := New(cfg)

	assert.Equal(t, 0.9, v.ratioConfidence(0.95))
	assert.Equal(t, 0.75, v.ratioConfidence(0.8))
	assert.Equal(t, 0.5, v.ratioConfidence(0.5))
	assert.Equal(t, 0.2, v.ratioConfidence(0.1))
}

func TestValidateTickerMention(t *testing.T) {
	v := New(testValidationConfig())
	fc := &fetch.Context{Ticker: "AAPL"}

	right := v.Validate("AAPL closed flat.", fc)
	assert.Contains(t, right.MatchedClaims, "ticker:AAPL")
	assert.Equal(t, 0.95, right.Confidence)

	wrong := v.Validate("MSFT closed flat.", fc)
	assert.Contains(t, wrong.MismatchedClaims, "ticker:MSFT")
}

func TestValidateIndexTickerSkipsCheck(t *testing.T) {
	v := New(testValidationConfig())
	price := 5431.6
	changePct := -0.19
	fc := &fetch.Context{Ticker: "^GSPC", Price: &price, ChangePercent: &changePct}

	result := v.Validate("GSPC closed at $5431.60, down -0.19% on the day.", fc)

	assert.Empty(t, result.MismatchedClaims, "index answers must not fail on symbol mentions")
	assert.Equal(t, 0.95, result.Confidence)
}

func TestContainsInsufficiency(t *testing.T) {
	assert.True(t, ContainsInsufficiency("I have INSUFFICIENT DATA here."))
	assert.False(t, ContainsInsufficiency("NVDA is up 3% today."))
}
