package classifier

// Category is a data-need class a query routes to.
type Category string

const (
	CategoryPrice        Category = "price"
	CategoryHistorical   Category = "historical"
	CategoryFundamentals Category = "fundamentals"
	CategoryMarket       Category = "market"
	CategoryAnalysis     Category = "analysis"
	CategoryGeneral      Category = "general"
)

// Confidence is the classifier's self-assessed certainty, distinct from the
// validator's numeric answer confidence.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// DateRange bounds a historical fetch, dates in YYYY-MM-DD.
type DateRange struct {
	From string
	To   string
}

// Classification is the routing decision for one query.
//
// Ticker is set when the query carried a literal symbol (or a curated
// company-name shortcut) and needs no provider resolution. Entities carries
// raw names that still need the resolver. DirectAnswer short-circuits the
// pipeline for conceptual questions.
type Classification struct {
	Categories      []Category
	Confidence      Confidence
	DirectAnswer    string
	Ticker          string
	Entities        []string
	DateRange       *DateRange
	MatchedPatterns []string
}

// Primary returns the first (highest-priority) category.
func (c Classification) Primary() Category {
	if len(c.Categories) == 0 {
		return CategoryPrice
	}
	return c.Categories[0]
}

// Has reports whether the classification includes the given category.
func (c Classification) Has(cat Category) bool {
	for _, qc := range c.Categories {
		if qc == cat {
			return true
		}
	}
	return false
}
