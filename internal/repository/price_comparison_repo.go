package repository

import (
	"context"
	"errors"
	"time"

	"price-reconciler/internal/model"
	"price-reconciler/pkg/common"
	"price-reconciler/pkg/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PriceComparisonRepository interface {
	Create(ctx context.Context, comparison *model.PriceComparison) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PriceComparison, error)
	List(ctx context.Context, param model.GetPriceComparisonParam) ([]model.PriceComparison, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

type priceComparisonRepository struct {
	db *gorm.DB
}

func NewPriceComparisonRepository(db *gorm.DB) PriceComparisonRepository {
	return &priceComparisonRepository{db: db}
}

func (r *priceComparisonRepository) Create(ctx context.Context, comparison *model.PriceComparison) error {
	if comparison.ID == uuid.Nil {
		comparison.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(comparison).Error
}

func (r *priceComparisonRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.PriceComparison, error) {
	var comparison model.PriceComparison
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&comparison).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &comparison, nil
}

// List returns stored comparisons newest first, without their product rows.
func (r *priceComparisonRepository) List(ctx context.Context, param model.GetPriceComparisonParam) ([]model.PriceComparison, error) {
	opts := []utils.DBOption{utils.WithPagination(param.Limit, param.Offset, common.DefaultListLimit)}
	if param.Name != "" {
		opts = append(opts, utils.WithWhere("name ILIKE ?", "%"+param.Name+"%"))
	}
	if !param.CreatedAfter.IsZero() {
		opts = append(opts, utils.WithWhere("created_at >= ?", param.CreatedAfter))
	}

	var comparisons []model.PriceComparison
	err := utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Omit("products").
		Order("created_at DESC").
		Find(&comparisons).Error
	if err != nil {
		return nil, err
	}
	return comparisons, nil
}

func (r *priceComparisonRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.PriceComparison{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *priceComparisonRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("created_at < ?", before).Delete(&model.PriceComparison{})
	return res.RowsAffected, res.Error
}
