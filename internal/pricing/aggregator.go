package pricing

import (
	"math"

	"price-reconciler/internal/dto"
)

// Summarize folds per-item results into batch statistics.
func (e *Engine) Summarize(results []dto.ComparisonResult) dto.SummaryStats {
	var (
		stats                         dto.SummaryStats
		purchaseDiffSum, salesDiffSum float64
		purchaseDiffN, salesDiffN     int
	)

	for _, r := range results {
		stats.TotalProducts++
		if !r.Found {
			stats.NotFoundProducts++
			continue
		}
		stats.FoundProducts++

		c := r.Comparison
		if c == nil {
			continue
		}

		if d := c.PurchasePriceDiff; d != nil {
			purchaseDiffSum += *d
			purchaseDiffN++
			switch {
			case *d > 0:
				stats.ProductsWithPriceIncrease++
			case *d < 0:
				stats.ProductsWithPriceDecrease++
			}
		}

		if d := c.SalesPriceDiff; d != nil {
			salesDiffSum += *d
			salesDiffN++
		}

		if p := c.PurchasePriceDiffPercent; p != nil && math.Abs(*p) > e.rules.PriceChangeThresholdPercent {
			stats.ProductsNeedingUpdate++
		}
	}

	stats.AvgPurchasePriceDiff = average(purchaseDiffSum, purchaseDiffN)
	stats.AvgSalesPriceDiff = average(salesDiffSum, salesDiffN)
	return stats
}

func average(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
