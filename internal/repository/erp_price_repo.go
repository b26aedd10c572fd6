package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"price-reconciler/config"
	"price-reconciler/internal/dto"
	"price-reconciler/internal/pricing"
	"price-reconciler/pkg/cache"
	"price-reconciler/pkg/common"
	"price-reconciler/pkg/httpclient"
	"price-reconciler/pkg/logger"
	"price-reconciler/pkg/metrics"
	"price-reconciler/pkg/utils"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// PriceSourceRepository resolves the current prices of a batch of stock codes.
// Codes unknown to the source are simply absent from the result.
//
// A returned error matching pricing.ErrUpstreamParse means part of the answer
// could not be decoded; the records that were decoded are still returned.
type PriceSourceRepository interface {
	GetCurrentPrices(ctx context.Context, stockCodes []string) ([]dto.CurrentPriceRecord, error)
}

type erpPriceRepository struct {
	cfg            config.ERP
	log            *logger.Logger
	httpClient     httpclient.HTTPClient
	cache          cache.Cache
	metrics        *metrics.Registry
	requestLimiter *rate.Limiter
}

func NewERPPriceRepository(cfg config.ERP, log *logger.Logger, inmemoryCache cache.Cache, m *metrics.Registry) PriceSourceRepository {
	return newERPPriceRepository(cfg, log, inmemoryCache, m, httpclient.New(httpclient.Options{
		BaseURL:     cfg.BaseURL,
		Timeout:     cfg.Timeout,
		BearerToken: cfg.Token,
		RetryCount:  cfg.RetryCount,
	}))
}

func newERPPriceRepository(cfg config.ERP, log *logger.Logger, inmemoryCache cache.Cache, m *metrics.Registry, client httpclient.HTTPClient) *erpPriceRepository {
	limit := rate.Inf
	if cfg.MaxRequestPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.MaxRequestPerMinute))
	}

	return &erpPriceRepository{
		cfg:            cfg,
		log:            log,
		httpClient:     client,
		cache:          inmemoryCache,
		metrics:        m,
		requestLimiter: rate.NewLimiter(limit, 1),
	}
}

func (r *erpPriceRepository) GetCurrentPrices(ctx context.Context, stockCodes []string) ([]dto.CurrentPriceRecord, error) {
	records := make([]dto.CurrentPriceRecord, 0, len(stockCodes))
	missing := make([]string, 0, len(stockCodes))
	for _, code := range stockCodes {
		if rec, ok := cache.GetFromCache[dto.CurrentPriceRecord](r.cache, cacheKey(code)); ok {
			records = append(records, rec)
			continue
		}
		missing = append(missing, code)
	}
	if hits := len(stockCodes) - len(missing); hits > 0 {
		r.metrics.ERPCacheHits.Add(float64(hits))
	}
	if len(missing) == 0 {
		return records, nil
	}

	chunks := utils.Chunk(missing, r.cfg.BatchSize)
	fetched := make([][]dto.CurrentPriceRecord, len(chunks))
	parseErrs := make([]error, len(chunks))

	concurrency := r.cfg.MaxConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			recs, err := r.fetchChunk(gctx, chunk)
			var parseErr *pricing.ParseError
			if errors.As(err, &parseErr) {
				r.metrics.ERPParseFailures.Inc()
				r.log.WarnContext(ctx, "ERP price payload could not be parsed",
					logger.ErrorField(err),
					logger.IntField("chunk", i),
					logger.IntField("chunk_size", len(chunk)),
				)
				parseErrs[i] = err
				return nil
			}
			if err != nil {
				return err
			}
			fetched[i] = recs
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, recs := range fetched {
		for _, rec := range recs {
			r.cache.Set(cacheKey(rec.StockCode), rec, r.cfg.CacheTTL)
			records = append(records, rec)
		}
	}

	return records, errors.Join(parseErrs...)
}

func (r *erpPriceRepository) fetchChunk(ctx context.Context, codes []string) ([]dto.CurrentPriceRecord, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := r.httpClient.Post(ctx, r.cfg.PricePath, dto.ERPPriceRequest{StockCodes: codes}, nil, nil)
	r.metrics.ERPFetchLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		r.log.ErrorContextWithAlert(ctx, "ERP price request failed",
			logger.ErrorField(err),
			logger.IntField("stock_codes", len(codes)),
		)
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		r.log.ErrorContext(ctx, "ERP price endpoint returned Non-OK status",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", truncate(string(resp.Body), 512)),
		)
		_, bodyErr := pricing.ParseCurrentPrices(resp.Body)
		return nil, &pricing.ParseError{Reason: fmt.Sprintf("erp returned status %d", resp.StatusCode), Err: bodyErr}
	}

	return pricing.ParseCurrentPrices(resp.Body)
}

func cacheKey(code string) string {
	return fmt.Sprintf(common.KEY_CURRENT_PRICE, code)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
