package logging

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// RequestLogger returns echo middleware that attaches a request-scoped logger
// to the request context and writes one structured line per request.
// It must run after middleware.RequestID.
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	httpLogger := WithComponent(logger, ComponentHTTP)

	attach := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqID := c.Response().Header().Get(echo.HeaderXRequestID)
			scoped := httpLogger.With("request_id", reqID)
			req := c.Request()
			c.SetRequest(req.WithContext(IntoContext(req.Context(), scoped)))
			return next(c)
		}
	}

	logValues := middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			switch {
			case v.Status >= 500:
				level = slog.LevelError
			case v.Status >= 400:
				level = slog.LevelWarn
			}
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status_code", v.Status),
				slog.Int64("duration_ms", v.Latency.Milliseconds()),
				slog.String("client_ip", v.RemoteIP),
				slog.String("request_id", v.RequestID),
			}
			if v.Error != nil && v.Status >= 500 {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			httpLogger.LogAttrs(context.Background(), level, "HTTP request completed", attrs...)
			return nil
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return logValues(attach(next))
	}
}
