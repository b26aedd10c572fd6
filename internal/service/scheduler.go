package service

import (
	"context"
	"fmt"
	"time"

	"price-reconciler/config"
	"price-reconciler/internal/repository"
	"price-reconciler/pkg/logger"
	"price-reconciler/pkg/metrics"
	"price-reconciler/pkg/utils"

	"github.com/robfig/cron/v3"
)

type SchedulerService interface {
	Start() error
	Stop(ctx context.Context)
	RunCleanup(ctx context.Context) (int64, error)
}

type schedulerService struct {
	cfg            *config.Config
	log            *logger.Logger
	cron           *cron.Cron
	comparisonRepo repository.PriceComparisonRepository
	metrics        *metrics.Registry
	now            func() time.Time
}

func NewSchedulerService(
	cfg *config.Config,
	log *logger.Logger,
	comparisonRepo repository.PriceComparisonRepository,
	m *metrics.Registry,
) *schedulerService {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &schedulerService{
		cfg:            cfg,
		log:            log,
		cron:           cron.New(cron.WithParser(parser), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		comparisonRepo: comparisonRepo,
		metrics:        m,
		now:            utils.TimeNowUTC,
	}
}

// Start registers the retention job and starts the cron loop. An empty
// cleanup_cron disables the job.
func (s *schedulerService) Start() error {
	if s.cfg.Scheduler.CleanupCron == "" {
		s.log.Info("Retention cleanup disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.cfg.Scheduler.CleanupCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Scheduler.TimeoutDuration)
		defer cancel()

		if _, err := s.RunCleanup(ctx); err != nil {
			s.log.ErrorContextWithAlert(ctx, "Scheduled retention cleanup failed", logger.ErrorField(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid cleanup cron %q: %w", s.cfg.Scheduler.CleanupCron, err)
	}

	s.cron.Start()
	s.log.Info("Scheduler started", logger.StringField("cleanup_cron", s.cfg.Scheduler.CleanupCron))
	return nil
}

func (s *schedulerService) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info("Scheduler stopped")
	case <-ctx.Done():
		s.log.Warn("Timeout while waiting for running jobs to finish")
	}
}

// RunCleanup deletes stored comparisons older than the retention window.
// A non-positive retention keeps everything.
func (s *schedulerService) RunCleanup(ctx context.Context) (int64, error) {
	days := s.cfg.Scheduler.RetentionDays
	if days <= 0 {
		s.log.InfoContext(ctx, "Retention cleanup skipped", logger.IntField("retention_days", days))
		return 0, nil
	}

	before := s.now().AddDate(0, 0, -days)
	deleted, err := s.comparisonRepo.DeleteOlderThan(ctx, before)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to delete old comparisons", logger.ErrorField(err))
		return 0, fmt.Errorf("failed to delete old comparisons: %w", err)
	}

	s.metrics.ComparisonsPurged.Add(float64(deleted))
	s.log.InfoContext(ctx, "Retention cleanup completed",
		logger.IntField("deleted", int(deleted)),
		logger.IntField("retention_days", days),
	)
	return deleted, nil
}
