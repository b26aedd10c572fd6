package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"price-reconciler/config"
	"price-reconciler/internal/dto"
	"price-reconciler/internal/pricing"
	"price-reconciler/internal/repository"
	"price-reconciler/internal/service"
	"price-reconciler/pkg/logger"
	"price-reconciler/pkg/metrics"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubComparisonService struct {
	compareErr  error
	lastRequest dto.CompareRequest
	lastUpload  dto.CompareUploadParam
	uploadBody  string
	detail      *dto.ComparisonDetail
}

func (s *stubComparisonService) Compare(ctx context.Context, req dto.CompareRequest) (*dto.CompareResponse, error) {
	s.lastRequest = req
	if s.compareErr != nil {
		return nil, s.compareErr
	}
	return &dto.CompareResponse{
		Success:  true,
		Summary:  dto.SummaryStats{TotalProducts: len(req.Items)},
		Products: []dto.ComparisonResult{},
	}, nil
}

func (s *stubComparisonService) CompareUpload(ctx context.Context, param dto.CompareUploadParam, r io.Reader) (*dto.CompareResponse, error) {
	s.lastUpload = param
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s.uploadBody = string(body)
	return &dto.CompareResponse{Success: true, ID: "abc", Products: []dto.ComparisonResult{}}, nil
}

func (s *stubComparisonService) Get(ctx context.Context, id uuid.UUID) (*dto.ComparisonDetail, error) {
	if s.detail == nil {
		return nil, repository.ErrNotFound
	}
	return s.detail, nil
}

func (s *stubComparisonService) List(ctx context.Context, param dto.ListComparisonParam) ([]dto.ComparisonOverview, error) {
	return []dto.ComparisonOverview{{ID: "one", Name: "first"}}, nil
}

func (s *stubComparisonService) Delete(ctx context.Context, id uuid.UUID) error {
	return repository.ErrNotFound
}

type stubScheduler struct{ deleted int64 }

func (s *stubScheduler) Start() error                                  { return nil }
func (s *stubScheduler) Stop(ctx context.Context)                      {}
func (s *stubScheduler) RunCleanup(ctx context.Context) (int64, error) { return s.deleted, nil }

func newTestServer(t *testing.T, comparisons *stubComparisonService) *echo.Echo {
	t.Helper()
	cfg := &config.Config{Upload: config.Upload{MaxSizeBytes: 64}}
	e := echo.New()
	svc := &service.Service{ComparisonService: comparisons, SchedulerService: &stubScheduler{deleted: 3}}
	h := NewHttpAPIHandler(context.Background(), cfg, logger.NewNop(), e, goValidator.New(), svc, metrics.NewRegistry())
	h.SetupRoutes()
	return e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestCompare_OK(t *testing.T) {
	stub := &stubComparisonService{}
	e := newTestServer(t, stub)

	rec := doJSON(e, http.MethodPost, "/api/v1/comparisons",
		`{"name":"May","save":true,"items":[{"stockCode":"A1","uploadedPurchasePrice":10}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.CompareResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Summary.TotalProducts)

	assert.True(t, stub.lastRequest.Save)
	require.Len(t, stub.lastRequest.Items, 1)
	require.NotNil(t, stub.lastRequest.Items[0].UploadedPurchasePrice)
	assert.Equal(t, 10.0, *stub.lastRequest.Items[0].UploadedPurchasePrice)
}

func TestCompare_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"no items", pricing.ErrNoItems, http.StatusBadRequest, "no items to compare"},
		{"upstream down", fmt.Errorf("%w: dial tcp", repository.ErrUpstreamUnavailable), http.StatusBadGateway, "price source unavailable"},
		{"unexpected", fmt.Errorf("boom"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestServer(t, &stubComparisonService{compareErr: tt.err})

			rec := doJSON(e, http.MethodPost, "/api/v1/comparisons", `{"items":[]}`)
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.message, decodeError(t, rec).Error)
		})
	}
}

func TestCompare_ValidationAndBindErrors(t *testing.T) {
	e := newTestServer(t, &stubComparisonService{})

	rec := doJSON(e, http.MethodPost, "/api/v1/comparisons", `{"items":[{"stockCode":"A1","uploadedSalesPrice":-1}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request", decodeError(t, rec).Error)

	rec = doJSON(e, http.MethodPost, "/api/v1/comparisons", `{"items":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request body", decodeError(t, rec).Error)
}

func multipartRequest(t *testing.T, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/comparisons/upload", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func TestCompareUpload(t *testing.T) {
	stub := &stubComparisonService{}
	e := newTestServer(t, stub)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, multipartRequest(t, "list.csv", "code,cost\nA1,10\n", map[string]string{"name": "May", "save": "true"}))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, dto.CompareUploadParam{Name: "May", FileName: "list.csv", Save: true}, stub.lastUpload)
	assert.Equal(t, "code,cost\nA1,10\n", stub.uploadBody)
}

func TestCompareUpload_Rejections(t *testing.T) {
	e := newTestServer(t, &stubComparisonService{})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, multipartRequest(t, "list.csv", strings.Repeat("x", 65), nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Error, "too large")

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, multipartRequest(t, "list.csv", "a", map[string]string{"save": "maybe"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/v1/comparisons/upload", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "file is required", decodeError(t, rec).Error)
}

func TestComparisonLookups(t *testing.T) {
	id := uuid.New()
	stub := &stubComparisonService{detail: &dto.ComparisonDetail{ComparisonOverview: dto.ComparisonOverview{ID: id.String()}}}
	e := newTestServer(t, stub)

	rec := doJSON(e, http.MethodGet, "/api/v1/comparisons/"+id.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), id.String())

	rec = doJSON(e, http.MethodGet, "/api/v1/comparisons/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodDelete, "/api/v1/comparisons/"+id.String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "comparison not found", decodeError(t, rec).Error)

	rec = doJSON(e, http.MethodGet, "/api/v1/comparisons?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"first"`)

	rec = doJSON(e, http.MethodGet, "/api/v1/comparisons?limit=500", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetComparison_NotFound(t *testing.T) {
	e := newTestServer(t, &stubComparisonService{})

	rec := doJSON(e, http.MethodGet, "/api/v1/comparisons/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJobsHealthAndMetrics(t *testing.T) {
	e := newTestServer(t, &stubComparisonService{})

	rec := doJSON(e, http.MethodPost, "/api/v1/jobs/cleanup", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"deleted":3`)

	rec = doJSON(e, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "price_erp_parse_failures_total")
}
