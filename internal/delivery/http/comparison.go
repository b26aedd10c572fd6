package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"price-reconciler/internal/dto"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupComparisons(base *echo.Group) {
	v1 := base.Group("/v1/comparisons")
	{
		v1.POST("", h.Compare)
		v1.POST("/upload", h.CompareUpload)
		v1.GET("", h.ListComparisons)
		v1.GET("/:id", h.GetComparison)
		v1.DELETE("/:id", h.DeleteComparison)
	}
}

func (h *HttpAPIHandler) Compare(c echo.Context) error {
	var req dto.CompareRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body", err)
	}
	if err := h.validator.Struct(req); err != nil {
		return h.writeError(c, err)
	}

	resp, err := h.service.ComparisonService.Compare(c.Request().Context(), req)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *HttpAPIHandler) CompareUpload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file is required", err)
	}

	maxSize := h.cfg.Upload.MaxSizeBytes
	if maxSize > 0 && fileHeader.Size > maxSize {
		return h.writeError(c, fmt.Errorf("%w: %d bytes exceeds %d", errFileTooLarge, fileHeader.Size, maxSize))
	}

	save := false
	if raw := c.FormValue("save"); raw != "" {
		save, err = strconv.ParseBool(raw)
		if err != nil {
			return badRequest(c, "save must be a boolean", err)
		}
	}

	file, err := fileHeader.Open()
	if err != nil {
		return badRequest(c, "could not open uploaded file", err)
	}
	defer file.Close()

	var body io.Reader = file
	if maxSize > 0 {
		body = io.LimitReader(file, maxSize)
	}

	resp, err := h.service.ComparisonService.CompareUpload(c.Request().Context(), dto.CompareUploadParam{
		Name:     c.FormValue("name"),
		FileName: fileHeader.Filename,
		Save:     save,
	}, body)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *HttpAPIHandler) ListComparisons(c echo.Context) error {
	var param dto.ListComparisonParam
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &param); err != nil {
		return badRequest(c, "invalid query parameters", err)
	}
	if err := h.validator.Struct(param); err != nil {
		return h.writeError(c, err)
	}

	comparisons, err := h.service.ComparisonService.List(c.Request().Context(), param)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewBaseResponse(http.StatusOK, "OK", comparisons))
}

func (h *HttpAPIHandler) GetComparison(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "invalid comparison id", err)
	}

	detail, err := h.service.ComparisonService.Get(c.Request().Context(), id)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewBaseResponse(http.StatusOK, "OK", detail))
}

func (h *HttpAPIHandler) DeleteComparison(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "invalid comparison id", err)
	}

	if err := h.service.ComparisonService.Delete(c.Request().Context(), id); err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewBaseResponse(http.StatusOK, "Comparison deleted", nil))
}

func parseID(c echo.Context) (uuid.UUID, error) {
	raw := c.Param("id")
	if raw == "" {
		return uuid.Nil, errors.New("id is required")
	}
	return uuid.Parse(raw)
}
