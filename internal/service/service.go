package service

import (
	"price-reconciler/config"
	"price-reconciler/internal/pricing"
	"price-reconciler/internal/repository"
	"price-reconciler/pkg/logger"
	"price-reconciler/pkg/metrics"
)

type Service struct {
	ComparisonService ComparisonService
	SchedulerService  SchedulerService
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	m *metrics.Registry,
) *Service {
	engine := pricing.NewEngine(pricing.DefaultRules())
	comparisonService := NewComparisonService(log, engine, repo.PriceSourceRepo, repo.PriceComparisonRepo, m)
	schedulerService := NewSchedulerService(cfg, log, repo.PriceComparisonRepo, m)
	return &Service{
		ComparisonService: comparisonService,
		SchedulerService:  schedulerService,
	}
}
