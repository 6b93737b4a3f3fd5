package classifier

// Keyword patterns for the deterministic tier. Substring match against the
// lowercased query; one hit per category is enough. Grown from real user
// queries, so expect some redundancy.
var patterns = map[Category][]string{
	CategoryPrice: {
		"price", "trading at", "worth", "cost", "value",
		"current price", "stock price", "how much",
		"quote", "share price", "priced at", "valued at", "trading",
		"$", "dollar", "valuation",
	},
	CategoryHistorical: {
		"last week", "last month", "last year", "yesterday",
		"past week", "past month", "past year",
		"historical", "history", "previous",
		"ago", "before", "earlier",
		"ytd", "year to date", "52 week", "annual",
		"chart", "graph", "performance over",
	},
	CategoryFundamentals: {
		"revenue", "earnings", "profit", "loss",
		"eps", "earnings per share",
		"p/e ratio", "pe ratio", "price to earnings",
		"market cap", "market capitalization",
		"income statement", "balance sheet", "cash flow",
		"quarterly report", "annual report",
		"financial", "financials",
		"growth rate", "revenue growth", "margin",
		"debt", "assets", "liabilities",
	},
	CategoryMarket: {
		"market", "sector", "industry",
		"index", "sp500", "s&p 500", "dow jones", "nasdaq",
		"bull market", "bear market",
		"trending", "gainers", "losers",
		"volume", "trading volume",
		"volatility", "sentiment",
	},
	CategoryAnalysis: {
		"should i buy", "should i sell", "should i invest",
		"recommend", "recommendation", "advice",
		"opinion", "outlook",
		"analysis", "analyze", "evaluate", "assess",
		"forecast", "predict", "expect",
		"good investment", "bad investment",
		"undervalued", "overvalued",
		"buy or sell", "hold or sell",
	},
}

// Phrases that make a category match near-certain on their own.
var highConfidencePatterns = map[Category][]string{
	CategoryPrice: {
		"what is the price", "current price", "trading at",
	},
	CategoryFundamentals: {
		"revenue", "earnings report", "quarterly earnings",
	},
	CategoryHistorical: {
		"historical price", "price history", "past performance",
	},
}

// categoryPriority orders matched categories for execution: real-time data
// first, analysis last since it expands to the others at fetch time.
var categoryPriority = []Category{
	CategoryPrice,
	CategoryFundamentals,
	CategoryHistorical,
	CategoryMarket,
	CategoryAnalysis,
}

func sortByPriority(matched map[Category]bool) []Category {
	sorted := make([]Category, 0, len(matched))
	for _, cat := range categoryPriority {
		if matched[cat] {
			sorted = append(sorted, cat)
		}
	}
	return sorted
}
