package http

import (
	"net/http"

	"price-reconciler/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupJobs(base *echo.Group) {
	v1 := base.Group("/v1/jobs")
	{
		v1.POST("/cleanup", h.RunCleanup)
	}
}

func (h *HttpAPIHandler) RunCleanup(c echo.Context) error {
	deleted, err := h.service.SchedulerService.RunCleanup(c.Request().Context())
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewBaseResponse(http.StatusOK, "Retention cleanup completed", map[string]int64{"deleted": deleted}))
}
