package pricing

import (
	"math"

	"price-reconciler/internal/dto"

	"github.com/shopspring/decimal"
)

// Margin returns (sale - purchase) / purchase * 100, or nil unless both prices
// are present and positive. Uploaded and current margins both go through here.
func Margin(purchase, sale *float64) *float64 {
	if purchase == nil || sale == nil || *purchase <= 0 || *sale <= 0 {
		return nil
	}
	return finite((*sale - *purchase) / *purchase * 100)
}

// ComputeMetrics compares one uploaded row with its current ERP record.
func (e *Engine) ComputeMetrics(uploaded dto.UploadedItem, current dto.CurrentPriceRecord) dto.ComparisonMetrics {
	var m dto.ComparisonMetrics

	uploadedPurchase, currentPurchase := uploaded.UploadedPurchasePrice, current.CurrentPurchasePrice
	if uploadedPurchase != nil && currentPurchase != nil {
		diff := *uploadedPurchase - *currentPurchase
		m.PurchasePriceDiff = finite(diff)
		m.PurchasePriceDiffPercent = percentOf(diff, *currentPurchase)
	}

	uploadedSales, currentSales := uploaded.UploadedSalesPrice, current.CurrentSalesPrice
	if uploadedSales != nil && currentSales != nil {
		diff := *currentSales - *uploadedSales
		m.SalesPriceDiff = finite(diff)
		m.SalesPriceDiffPercent = percentOf(diff, *uploadedSales)
	}

	uploadedMargin := Margin(uploadedPurchase, uploadedSales)
	currentMargin := currentMarginOf(current)
	if uploadedMargin != nil && currentMargin != nil {
		m.MarginDiff = finite(*currentMargin - *uploadedMargin)
	}

	m.SuggestedSalesPrice = suggestSalesPrice(uploadedPurchase, currentPurchase, currentMargin)
	m.Recommendation = e.Recommend(m)
	return m
}

// currentMarginOf prefers the margin already carried by the record and falls
// back to deriving it from the record's prices.
func currentMarginOf(current dto.CurrentPriceRecord) *float64 {
	if current.CurrentMargin != nil {
		return current.CurrentMargin
	}
	return Margin(current.CurrentPurchasePrice, current.CurrentSalesPrice)
}

// suggestSalesPrice applies today's margin to the uploaded cost basis.
func suggestSalesPrice(uploadedPurchase, currentPurchase, currentMargin *float64) *float64 {
	if uploadedPurchase == nil || currentPurchase == nil || currentMargin == nil {
		return nil
	}
	if *uploadedPurchase == *currentPurchase || *currentMargin <= 0 {
		return nil
	}
	price := *uploadedPurchase * (1 + *currentMargin/100)
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return nil
	}
	rounded, _ := decimal.NewFromFloat(price).Round(2).Float64()
	return &rounded
}

func percentOf(diff, base float64) *float64 {
	if base == 0 {
		return nil
	}
	return finite(diff / base * 100)
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
