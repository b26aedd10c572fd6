package service

import (
	"context"
	"sync"
	"time"

	"price-reconciler/internal/dto"
	"price-reconciler/internal/model"
	"price-reconciler/internal/repository"

	"github.com/google/uuid"
)

type fakePriceSource struct {
	records []dto.CurrentPriceRecord
	err     error
	calls   [][]string
}

func (f *fakePriceSource) GetCurrentPrices(ctx context.Context, stockCodes []string) ([]dto.CurrentPriceRecord, error) {
	f.calls = append(f.calls, stockCodes)
	return f.records, f.err
}

type fakeComparisonRepo struct {
	mu          sync.Mutex
	lastList    model.GetPriceComparisonParam
	stored      map[uuid.UUID]model.PriceComparison
	createErr   error
	deletedUpTo time.Time
	purged      int64
}

func newFakeComparisonRepo() *fakeComparisonRepo {
	return &fakeComparisonRepo{stored: map[uuid.UUID]model.PriceComparison{}}
}

func (f *fakeComparisonRepo) Create(ctx context.Context, c *model.PriceComparison) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	f.stored[c.ID] = *c
	return nil
}

func (f *fakeComparisonRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PriceComparison, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.stored[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (f *fakeComparisonRepo) List(ctx context.Context, param model.GetPriceComparisonParam) ([]model.PriceComparison, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastList = param
	out := make([]model.PriceComparison, 0, len(f.stored))
	for _, c := range f.stored {
		c.Products = nil
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeComparisonRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.stored[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.stored, id)
	return nil
}

func (f *fakeComparisonRepo) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	f.deletedUpTo = before
	return f.purged, nil
}
