package pricing

import (
	"fmt"
	"math"
	"strings"

	"price-reconciler/internal/dto"
)

// Recommend turns the numeric deltas into guidance for the shop owner.
func (e *Engine) Recommend(m dto.ComparisonMetrics) string {
	var parts []string

	if p := m.PurchasePriceDiffPercent; p != nil && math.Abs(*p) > e.rules.PriceChangeThresholdPercent {
		if *p > 0 {
			parts = append(parts, fmt.Sprintf("cost increased by %.1f%%, consider updating sale price", math.Abs(*p)))
		} else {
			parts = append(parts, fmt.Sprintf("cost decreased by %.1f%%, competitive pricing opportunity", math.Abs(*p)))
		}
	}

	if d := m.MarginDiff; d != nil && math.Abs(*d) > e.rules.MarginChangeThresholdPercent {
		if *d > 0 {
			parts = append(parts, fmt.Sprintf("your margin may increase by %.1f%%", math.Abs(*d)))
		} else {
			parts = append(parts, fmt.Sprintf("your margin may decrease by %.1f%%", math.Abs(*d)))
		}
	}

	if len(parts) == 0 {
		return StableRecommendation
	}
	return strings.Join(parts, "; ")
}
