package repository

import (
	"price-reconciler/config"
	"price-reconciler/pkg/cache"
	"price-reconciler/pkg/logger"
	"price-reconciler/pkg/metrics"

	"gorm.io/gorm"
)

type Repository struct {
	PriceSourceRepo     PriceSourceRepository
	PriceComparisonRepo PriceComparisonRepository
}

func NewRepository(cfg *config.Config, inmemoryCache cache.Cache, db *gorm.DB, log *logger.Logger, m *metrics.Registry) *Repository {
	return &Repository{
		PriceSourceRepo:     NewERPPriceRepository(cfg.ERP, log, inmemoryCache, m),
		PriceComparisonRepo: NewPriceComparisonRepository(db),
	}
}
