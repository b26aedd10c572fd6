package http

import (
	"context"
	"net/http"

	"price-reconciler/config"
	"price-reconciler/internal/service"
	"price-reconciler/pkg/logger"
	"price-reconciler/pkg/metrics"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type HttpAPIHandler struct {
	cfg       *config.Config
	log       *logger.Logger
	echo      *echo.Echo
	validator *goValidator.Validate
	service   *service.Service
	metrics   *metrics.Registry
}

func NewHttpAPIHandler(ctx context.Context, cfg *config.Config, log *logger.Logger, echo *echo.Echo, validator *goValidator.Validate, service *service.Service, m *metrics.Registry) *HttpAPIHandler {
	return &HttpAPIHandler{
		cfg:       cfg,
		log:       log,
		echo:      echo,
		validator: validator,
		service:   service,
		metrics:   m,
	}
}

func (h *HttpAPIHandler) SetupRoutes() {
	h.echo.GET("/health", h.Health)
	h.echo.GET("/metrics", echo.WrapHandler(h.metrics.Handler()))

	base := h.echo.Group("/api")
	h.SetupComparisons(base)
	h.SetupJobs(base)
}

func (h *HttpAPIHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
