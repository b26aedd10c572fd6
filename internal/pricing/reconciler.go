package pricing

import (
	"errors"
	"strings"

	"price-reconciler/internal/dto"
)

var ErrNoItems = errors.New("no items to compare")

// Reconcile matches every uploaded item against the current records and
// returns one result per item plus the batch summary. The current records
// must already be fetched; Reconcile performs no I/O.
func (e *Engine) Reconcile(items []dto.UploadedItem, current []dto.CurrentPriceRecord) (*dto.ReconcileResult, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	index := IndexByStockCode(current)
	products := make([]dto.ComparisonResult, 0, len(items))
	for _, item := range items {
		products = append(products, e.compareItem(item, index))
	}

	return &dto.ReconcileResult{
		Products: products,
		Summary:  e.Summarize(products),
	}, nil
}

func (e *Engine) compareItem(item dto.UploadedItem, index map[string]dto.CurrentPriceRecord) dto.ComparisonResult {
	item.StockCode = strings.TrimSpace(item.StockCode)
	record, ok := index[item.StockCode]
	if !ok {
		return dto.ComparisonResult{
			StockCode: item.StockCode,
			Found:     false,
			Uploaded:  dto.UploadedComparison{UploadedItem: item},
		}
	}

	metrics := e.ComputeMetrics(item, record)
	return dto.ComparisonResult{
		StockCode: item.StockCode,
		Found:     true,
		Uploaded: dto.UploadedComparison{
			UploadedItem:     item,
			CalculatedMargin: Margin(item.UploadedPurchasePrice, item.UploadedSalesPrice),
		},
		Current:    &record,
		Comparison: &metrics,
	}
}

// IndexByStockCode keys records by their exact stock code; the first record
// of a code wins.
func IndexByStockCode(records []dto.CurrentPriceRecord) map[string]dto.CurrentPriceRecord {
	index := make(map[string]dto.CurrentPriceRecord, len(records))
	for _, r := range records {
		if r.StockCode == "" {
			continue
		}
		if _, exists := index[r.StockCode]; exists {
			continue
		}
		index[r.StockCode] = r
	}
	return index
}

// StockCodes returns the distinct, non-empty stock codes of items in upload order.
func StockCodes(items []dto.UploadedItem) []string {
	seen := make(map[string]struct{}, len(items))
	codes := make([]string, 0, len(items))
	for _, item := range items {
		code := strings.TrimSpace(item.StockCode)
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes
}
