package repository

import (
	"context"
	"fmt"
	"os"

	"price-reconciler/internal/dto"
	"price-reconciler/internal/pricing"
)

// filePriceRepository serves current prices from an ERP export on disk.
type filePriceRepository struct {
	path string
}

func NewFilePriceRepository(path string) PriceSourceRepository {
	return &filePriceRepository{path: path}
}

func (r *filePriceRepository) GetCurrentPrices(ctx context.Context, stockCodes []string) ([]dto.CurrentPriceRecord, error) {
	payload, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	records, err := pricing.ParseCurrentPrices(payload)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]struct{}, len(stockCodes))
	for _, code := range stockCodes {
		wanted[code] = struct{}{}
	}
	filtered := make([]dto.CurrentPriceRecord, 0, len(stockCodes))
	for _, rec := range records {
		if _, ok := wanted[rec.StockCode]; ok {
			filtered = append(filtered, rec)
		}
	}
	return filtered, nil
}
