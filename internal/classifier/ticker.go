package classifier

import (
	"regexp"
	"strings"

	"github.com/jdkato/prose/v2"
	"go.uber.org/zap"

	"github.com/saadtariq57/richtv-chatbot/pkg/logger"
)

// companyTickers maps well-known company and index names to their symbols so
// common queries skip the resolver entirely.
var companyTickers = map[string]string{
	"apple":            "AAPL",
	"microsoft":        "MSFT",
	"google":           "GOOGL",
	"alphabet":         "GOOGL",
	"amazon":           "AMZN",
	"tesla":            "TSLA",
	"meta":             "META",
	"facebook":         "META",
	"nvidia":           "NVDA",
	"netflix":          "NFLX",
	"intel":            "INTC",
	"amd":              "AMD",
	"berkshire":        "BRK-B",
	"jpmorgan":         "JPM",
	"visa":             "V",
	"walmart":          "WMT",
	"disney":           "DIS",
	"coca cola":        "KO",
	"coca-cola":        "KO",
	"mcdonalds":        "MCD",
	"boeing":           "BA",
	"bitcoin":          "BTC-USD",
	"ethereum":         "ETH-USD",
	"dogecoin":         "DOGE-USD",
	"s&p 500":          "^GSPC",
	"s&p500":           "^GSPC",
	"sp500":            "^GSPC",
	"dow jones":        "^DJI",
	"nasdaq composite": "^IXIC",
	"russell 2000":     "^RUT",
}

// tickerStopWords are short uppercase tokens that look like symbols but are
// ordinary words or finance jargon in practice.
var tickerStopWords = map[string]bool{
	"A": true, "I": true, "IS": true, "IT": true, "AT": true, "BE": true,
	"DO": true, "GO": true, "IF": true, "IN": true, "ME": true, "MY": true,
	"NO": true, "OF": true, "ON": true, "OR": true, "SO": true, "TO": true,
	"UP": true, "US": true, "WE": true, "AND": true, "ARE": true,
	"BUY": true, "CAN": true, "DID": true, "FOR": true, "GET": true,
	"HAS": true, "HOW": true, "NOW": true, "NEW": true, "NOT": true,
	"OLD": true, "ONE": true, "OUT": true, "OWN": true, "SEE": true,
	"THE": true, "WAS": true, "WHO": true, "WHY": true, "YOU": true,
	"BEST": true, "BOTH": true, "DOES": true, "DOWN": true, "FROM": true,
	"GOOD": true, "HAVE": true, "HIGH": true, "JUST": true, "LAST": true,
	"LIKE": true, "MAKE": true, "MUCH": true, "NEXT": true, "OVER": true,
	"PAST": true, "SELL": true, "SOME": true, "TELL": true, "THAN": true,
	"THAT": true, "THIS": true, "WEEK": true, "WELL": true, "WHAT": true,
	"WHEN": true, "WILL": true, "WITH": true, "YEAR": true,
	"ABOUT": true, "AFTER": true, "COULD": true, "MONTH": true,
	"PRICE": true, "SHARE": true, "STOCK": true, "TODAY": true,
	"WORTH": true, "WOULD": true,
	"CEO": true, "CFO": true, "ETF": true, "IPO": true, "USA": true,
	"USD": true, "EPS": true, "YTD": true, "API": true, "GDP": true,
	"SEC": true, "NYSE": true, "AI": true, "PE": true, "QA": true,
}

var (
	cryptoPairRe = regexp.MustCompile(`\b[A-Z]{2,5}-[A-Z]{2,5}\b`)
	upperTokenRe = regexp.MustCompile(`^[A-Z]{2,5}$`)
	vowelRunRe   = regexp.MustCompile(`[AEIOU]{2}`)
	nonNameRe    = regexp.MustCompile(`[^a-z0-9&\- ]+`)
)

// lookupCompanyTicker checks the curated map for a known company or index
// name inside the query. Names must match on word boundaries so "metals"
// never hits "meta"; the longest matching name wins.
func lookupCompanyTicker(query string) (string, bool) {
	lowered := " " + nonNameRe.ReplaceAllString(strings.ToLower(query), " ") + " "
	best := ""
	bestLen := 0
	for name, sym := range companyTickers {
		if len(name) > bestLen && strings.Contains(lowered, " "+name+" ") {
			best = sym
			bestLen = len(name)
		}
	}
	return best, best != ""
}

// extractTickerToken scans the query for an uppercase token shaped like a
// ticker symbol. Crypto pairs like BTC-USD win outright. Returns the token
// and whether it is plausible enough to use without resolution.
func extractTickerToken(query string) (token string, plausible bool) {
	if pair := cryptoPairRe.FindString(query); pair != "" {
		return pair, true
	}

	doc, err := prose.NewDocument(query,
		prose.WithTagging(false),
		prose.WithExtraction(false),
		prose.WithSegmentation(false))
	if err != nil {
		logger.Debug("tokenization failed, falling back to field split",
			zap.Error(err))
		return scanFields(strings.Fields(query))
	}

	toks := doc.Tokens()
	fields := make([]string, 0, len(toks))
	for _, t := range toks {
		fields = append(fields, t.Text)
	}
	return scanFields(fields)
}

func scanFields(fields []string) (string, bool) {
	for _, f := range fields {
		f = strings.Trim(f, ".,!?;:()\"'")
		if !upperTokenRe.MatchString(f) || tickerStopWords[f] {
			continue
		}
		return f, isPlausibleTicker(f)
	}
	return "", false
}

// isPlausibleTicker rejects uppercase tokens that are more likely shouted
// words than symbols. Real 4+ letter tickers almost never carry a double
// vowel, and anything matching a known company name is a name, not a symbol.
func isPlausibleTicker(token string) bool {
	if len(token) < 1 || len(token) > 5 {
		return false
	}
	if _, known := companyTickers[strings.ToLower(token)]; known {
		return false
	}
	if len(token) >= 4 && vowelRunRe.MatchString(token) {
		return false
	}
	return true
}
