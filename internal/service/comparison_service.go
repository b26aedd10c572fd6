package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"price-reconciler/internal/dto"
	"price-reconciler/internal/model"
	"price-reconciler/internal/pricing"
	"price-reconciler/internal/repository"
	"price-reconciler/internal/upload"
	"price-reconciler/pkg/common"
	"price-reconciler/pkg/logger"
	"price-reconciler/pkg/metrics"

	"github.com/google/uuid"
)

type ComparisonService interface {
	Compare(ctx context.Context, req dto.CompareRequest) (*dto.CompareResponse, error)
	CompareUpload(ctx context.Context, param dto.CompareUploadParam, r io.Reader) (*dto.CompareResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ComparisonDetail, error)
	List(ctx context.Context, param dto.ListComparisonParam) ([]dto.ComparisonOverview, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type comparisonService struct {
	log            *logger.Logger
	engine         *pricing.Engine
	priceSource    repository.PriceSourceRepository
	comparisonRepo repository.PriceComparisonRepository
	metrics        *metrics.Registry
}

func NewComparisonService(
	log *logger.Logger,
	engine *pricing.Engine,
	priceSource repository.PriceSourceRepository,
	comparisonRepo repository.PriceComparisonRepository,
	m *metrics.Registry,
) ComparisonService {
	return &comparisonService{
		log:            log,
		engine:         engine,
		priceSource:    priceSource,
		comparisonRepo: comparisonRepo,
		metrics:        m,
	}
}

func (s *comparisonService) Compare(ctx context.Context, req dto.CompareRequest) (*dto.CompareResponse, error) {
	return s.compare(ctx, req, "")
}

func (s *comparisonService) CompareUpload(ctx context.Context, param dto.CompareUploadParam, r io.Reader) (*dto.CompareResponse, error) {
	rows, err := upload.Parse(param.FileName, r)
	if err != nil {
		s.metrics.Reconciliations.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, err
	}

	req := dto.CompareRequest{
		Name:  param.Name,
		Save:  param.Save,
		Items: pricing.NormalizeUploadedRows(rows),
	}
	return s.compare(ctx, req, param.FileName)
}

func (s *comparisonService) compare(ctx context.Context, req dto.CompareRequest, fileName string) (*dto.CompareResponse, error) {
	items := pricing.CleanUploadedItems(req.Items)
	if len(items) == 0 {
		s.metrics.Reconciliations.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, pricing.ErrNoItems
	}

	outcome := metrics.OutcomeSuccess
	current, err := s.priceSource.GetCurrentPrices(ctx, pricing.StockCodes(items))
	if err != nil {
		if !errors.Is(err, pricing.ErrUpstreamParse) {
			s.metrics.Reconciliations.WithLabelValues(metrics.OutcomeFailed).Inc()
			s.log.ErrorContext(ctx, "Failed to fetch current prices", logger.ErrorField(err))
			return nil, err
		}
		// Items without a decodable price are reported as not found.
		outcome = metrics.OutcomeDegraded
		s.log.WarnContext(ctx, "Reconciling with partial price data",
			logger.ErrorField(err),
			logger.IntField("records", len(current)),
		)
	}

	result, err := s.engine.Reconcile(items, current)
	if err != nil {
		s.metrics.Reconciliations.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, err
	}

	resp := &dto.CompareResponse{
		Success:  true,
		Summary:  result.Summary,
		Products: result.Products,
	}

	if req.Save {
		comparison, err := toModel(req.Name, fileName, result)
		if err != nil {
			return nil, err
		}
		if err := s.comparisonRepo.Create(ctx, comparison); err != nil {
			s.metrics.Reconciliations.WithLabelValues(metrics.OutcomeFailed).Inc()
			s.log.ErrorContext(ctx, "Failed to save comparison", logger.ErrorField(err))
			return nil, fmt.Errorf("failed to save comparison: %w", err)
		}
		resp.ID = comparison.ID.String()
	}

	s.metrics.Reconciliations.WithLabelValues(outcome).Inc()
	s.metrics.Products.WithLabelValues(metrics.StatusFound).Add(float64(result.Summary.FoundProducts))
	s.metrics.Products.WithLabelValues(metrics.StatusNotFound).Add(float64(result.Summary.NotFoundProducts))
	s.metrics.Products.WithLabelValues(metrics.StatusNeedsUpdate).Add(float64(result.Summary.ProductsNeedingUpdate))

	s.log.InfoContext(ctx, "Comparison completed",
		logger.StringField("outcome", outcome),
		logger.IntField("total_products", result.Summary.TotalProducts),
		logger.IntField("found_products", result.Summary.FoundProducts),
		logger.IntField("products_needing_update", result.Summary.ProductsNeedingUpdate),
	)
	return resp, nil
}

func (s *comparisonService) Get(ctx context.Context, id uuid.UUID) (*dto.ComparisonDetail, error) {
	comparison, err := s.comparisonRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	overview, err := toOverview(*comparison)
	if err != nil {
		return nil, err
	}
	detail := &dto.ComparisonDetail{ComparisonOverview: overview, Products: []dto.ComparisonResult{}}
	if len(comparison.Products) > 0 {
		if err := json.Unmarshal(comparison.Products, &detail.Products); err != nil {
			return nil, fmt.Errorf("failed to decode stored products: %w", err)
		}
	}
	return detail, nil
}

func (s *comparisonService) List(ctx context.Context, param dto.ListComparisonParam) ([]dto.ComparisonOverview, error) {
	repoParam := model.GetPriceComparisonParam{
		Limit:  param.Limit,
		Offset: param.Offset,
		Name:   strings.TrimSpace(param.Name),
	}
	if param.Since != "" {
		since, err := time.Parse(time.DateOnly, param.Since)
		if err != nil {
			return nil, fmt.Errorf("invalid since date: %w", err)
		}
		repoParam.CreatedAfter = since
	}

	comparisons, err := s.comparisonRepo.List(ctx, repoParam)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to list comparisons", logger.ErrorField(err))
		return nil, err
	}

	overviews := make([]dto.ComparisonOverview, 0, len(comparisons))
	for _, c := range comparisons {
		overview, err := toOverview(c)
		if err != nil {
			return nil, err
		}
		overviews = append(overviews, overview)
	}
	return overviews, nil
}

func (s *comparisonService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.comparisonRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "Comparison deleted", logger.StringField("comparison_id", id.String()))
	return nil
}

func toModel(name, fileName string, result *dto.ReconcileResult) (*model.PriceComparison, error) {
	if name == "" {
		name = common.DefaultComparisonName
	}
	summary, err := json.Marshal(result.Summary)
	if err != nil {
		return nil, fmt.Errorf("failed to encode summary: %w", err)
	}
	products, err := json.Marshal(result.Products)
	if err != nil {
		return nil, fmt.Errorf("failed to encode products: %w", err)
	}
	return &model.PriceComparison{
		Name:                  name,
		FileName:              fileName,
		TotalProducts:         result.Summary.TotalProducts,
		FoundProducts:         result.Summary.FoundProducts,
		NotFoundProducts:      result.Summary.NotFoundProducts,
		ProductsNeedingUpdate: result.Summary.ProductsNeedingUpdate,
		Summary:               summary,
		Products:              products,
	}, nil
}

func toOverview(c model.PriceComparison) (dto.ComparisonOverview, error) {
	overview := dto.ComparisonOverview{
		ID:                    c.ID.String(),
		Name:                  c.Name,
		FileName:              c.FileName,
		TotalProducts:         c.TotalProducts,
		FoundProducts:         c.FoundProducts,
		NotFoundProducts:      c.NotFoundProducts,
		ProductsNeedingUpdate: c.ProductsNeedingUpdate,
		CreatedAt:             c.CreatedAt.UTC().Format(time.RFC3339),
	}
	if len(c.Summary) > 0 {
		if err := json.Unmarshal(c.Summary, &overview.Summary); err != nil {
			return dto.ComparisonOverview{}, fmt.Errorf("failed to decode stored summary: %w", err)
		}
	}
	return overview, nil
}
