package http

import (
	"errors"
	"net/http"

	"price-reconciler/internal/dto"
	"price-reconciler/internal/pricing"
	"price-reconciler/internal/repository"
	"price-reconciler/internal/upload"
	"price-reconciler/pkg/logger"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var errFileTooLarge = errors.New("uploaded file is too large")

func badRequest(c echo.Context, message string, err error) error {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return c.JSON(http.StatusBadRequest, dto.NewErrorResponse(message, details))
}

// writeError maps domain errors onto HTTP status codes.
func (h *HttpAPIHandler) writeError(c echo.Context, err error) error {
	var validationErrs goValidator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		return badRequest(c, "invalid request", err)
	case errors.Is(err, pricing.ErrNoItems),
		errors.Is(err, upload.ErrUnsupportedFormat),
		errors.Is(err, upload.ErrEmptyFile),
		errors.Is(err, errFileTooLarge):
		return c.JSON(http.StatusBadRequest, dto.NewErrorResponse(err.Error(), ""))
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, dto.NewErrorResponse("comparison not found", ""))
	case errors.Is(err, repository.ErrUpstreamUnavailable):
		return c.JSON(http.StatusBadGateway, dto.NewErrorResponse("price source unavailable", err.Error()))
	}

	ctx := c.Request().Context()
	h.log.ErrorContext(ctx, "Unhandled request error", logger.ErrorField(err))
	return c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("internal server error", err.Error()))
}
