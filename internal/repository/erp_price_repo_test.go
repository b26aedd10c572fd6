package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"price-reconciler/config"
	"price-reconciler/internal/dto"
	"price-reconciler/internal/pricing"
	"price-reconciler/pkg/cache"
	"price-reconciler/pkg/httpclient"
	"price-reconciler/pkg/logger"
	"price-reconciler/pkg/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestERPRepo(t *testing.T, baseURL string, batchSize int) (*erpPriceRepository, *metrics.Registry) {
	t.Helper()
	cfg := config.ERP{
		BaseURL:        baseURL,
		PricePath:      "/prices/current",
		Timeout:        2 * time.Second,
		BatchSize:      batchSize,
		MaxConcurrency: 2,
		CacheTTL:       time.Minute,
	}
	m := metrics.NewRegistry()
	client := httpclient.New(httpclient.Options{BaseURL: cfg.BaseURL, Timeout: cfg.Timeout})
	return newERPPriceRepository(cfg, logger.NewNop(), cache.NewCache(time.Minute, time.Minute), m, client), m
}

// echoPrices answers every requested code with purchase 10 and sale 15,
// except codes starting with "BAD" which get the ERP error shape.
func echoPrices(t *testing.T, calls *int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		assert.Equal(t, "/prices/current", r.URL.Path)

		var req dto.ERPPriceRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		w.Header().Set("Content-Type", "application/json")
		if len(req.StockCodes) > 0 && strings.HasPrefix(req.StockCodes[0], "BAD") {
			fmt.Fprint(w, `{"Message":"An error has occurred."}`)
			return
		}
		rows := make([]map[string]any, 0, len(req.StockCodes))
		for _, code := range req.StockCodes {
			rows = append(rows, map[string]any{
				"StockCode":            code,
				"StockName":            "Item " + code,
				"CurrentPurchasePrice": 10,
				"CurrentSalesPrice":    15,
			})
		}
		assert.NoError(t, json.NewEncoder(w).Encode(map[string]any{"data": rows}))
	}
}

func TestERPPriceRepository_ChunksAndCaches(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(echoPrices(t, &calls))
	defer srv.Close()

	repo, m := newTestERPRepo(t, srv.URL, 2)
	ctx := context.Background()

	records, err := repo.GetCurrentPrices(ctx, []string{"A", "B", "C"})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))

	byCode := pricing.IndexByStockCode(records)
	require.Contains(t, byCode, "C")
	assert.Equal(t, "Item C", byCode["C"].StockName)
	require.NotNil(t, byCode["C"].CurrentMargin)
	assert.InDelta(t, 50.0, *byCode["C"].CurrentMargin, 1e-9)

	records, err = repo.GetCurrentPrices(ctx, []string{"A", "C"})
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
	assert.Equal(t, 2.0, metrics.CounterValue(m.ERPCacheHits))
}

func TestERPPriceRepository_PartialParseFailure(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(echoPrices(t, &calls))
	defer srv.Close()

	repo, m := newTestERPRepo(t, srv.URL, 1)

	records, err := repo.GetCurrentPrices(context.Background(), []string{"A", "BAD1", "B"})
	require.Error(t, err)
	assert.ErrorIs(t, err, pricing.ErrUpstreamParse)
	assert.Len(t, records, 2)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
	assert.Equal(t, 1.0, metrics.CounterValue(m.ERPParseFailures))
}

func TestERPPriceRepository_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"Message":"Authorization has been denied for this request."}`)
	}))
	defer srv.Close()

	repo, _ := newTestERPRepo(t, srv.URL, 10)

	records, err := repo.GetCurrentPrices(context.Background(), []string{"A"})
	assert.Empty(t, records)
	assert.ErrorIs(t, err, pricing.ErrUpstreamParse)
	assert.ErrorContains(t, err, "erp returned status 401")
}

func TestERPPriceRepository_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	repo, _ := newTestERPRepo(t, url, 10)

	_, err := repo.GetCurrentPrices(context.Background(), []string{"A"})
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.NotErrorIs(t, err, pricing.ErrUpstreamParse)
}

func TestFilePriceRepository(t *testing.T) {
	path := filepath.Join(t.TempDir(), "erp.json")
	payload := `"[{\"STOCK_CODE\":\"A\",\"CURRENT_PURCHASE_PRICE\":\"12,50\"},{\"STOCK_CODE\":\"B\"}]"`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))

	repo := NewFilePriceRepository(path)
	records, err := repo.GetCurrentPrices(context.Background(), []string{"A", "Z"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "A", records[0].StockCode)
	require.NotNil(t, records[0].CurrentPurchasePrice)
	assert.Equal(t, 12.5, *records[0].CurrentPurchasePrice)

	_, err = NewFilePriceRepository(filepath.Join(t.TempDir(), "missing.json")).GetCurrentPrices(context.Background(), []string{"A"})
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}
