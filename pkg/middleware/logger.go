package middleware

import (
	"time"

	"price-reconciler/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// NewRequestLogger logs one line per request and stores a request-scoped
// logger in the request context.
func NewRequestLogger(log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			reqLog := log.With(
				logger.StringField("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
				logger.StringField("method", req.Method),
				logger.StringField("path", c.Path()),
			)
			c.SetRequest(req.WithContext(logger.NewContext(req.Context(), reqLog)))

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			fields := []zap.Field{
				logger.IntField("status", c.Response().Status),
				logger.DurationField("latency", time.Since(start)),
				logger.StringField("remote_ip", c.RealIP()),
			}
			if err != nil {
				fields = append(fields, logger.ErrorField(err))
			}
			if c.Response().Status >= 500 {
				reqLog.Error("request failed", fields...)
			} else {
				reqLog.Info("request handled", fields...)
			}
			return nil
		}
	}
}
