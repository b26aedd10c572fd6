// Package pricing reconciles uploaded price lists against the current ERP prices.
//
// Everything in this package is pure: callers fetch the current prices first and
// hand them in, so the engine can be exercised without any network or database.
package pricing

const (
	// PriceChangeThresholdPercent is the purchase price movement (in percent)
	// above which an item is flagged for a price update.
	PriceChangeThresholdPercent = 5.0
	// MarginChangeThresholdPercent is the margin movement (in percentage points)
	// above which the margin shift is reported.
	MarginChangeThresholdPercent = 5.0

	UnknownStockName     = "Unknown product"
	StableRecommendation = "prices appear stable"
)

// Rules carries the business thresholds shared by the recommendation composer
// and the aggregator so both read the same values.
type Rules struct {
	PriceChangeThresholdPercent  float64
	MarginChangeThresholdPercent float64
}

func DefaultRules() Rules {
	return Rules{
		PriceChangeThresholdPercent:  PriceChangeThresholdPercent,
		MarginChangeThresholdPercent: MarginChangeThresholdPercent,
	}
}

// Engine is safe for concurrent use; it holds no mutable state.
type Engine struct {
	rules Rules
}

func NewEngine(rules Rules) *Engine {
	return &Engine{rules: rules}
}
