package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "findash/internal/errors"
	"findash/internal/logging"
)

// ErrorHandler renders every error as {success:false, error}. Internal
// failures are logged with the request-scoped logger and never leak their detail.
// logger receives failures that happen while writing the response itself.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		httpErr := toHTTPError(err)
		if httpErr.StatusCode >= http.StatusInternalServerError {
			ctx := c.Request().Context()
			logging.FromContext(ctx).ErrorContext(ctx, "request failed", "error", err, "path", c.Path())
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(httpErr.StatusCode)
		} else {
			err = c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
		}
		if err != nil {
			logger.Error("failed to write error response", "error", err)
		}
	}
}

func toHTTPError(err error) *apperrors.HTTPError {
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		msg := http.StatusText(echoErr.Code)
		switch m := echoErr.Message.(type) {
		case string:
			msg = m
		case error:
			msg = m.Error()
		case nil:
		default:
			msg = fmt.Sprint(m)
		}
		if echoErr.Code >= http.StatusInternalServerError {
			msg = "internal server error"
		}
		return apperrors.NewHTTPError(echoErr.Code, msg, kindForStatus(echoErr.Code))
	}
	return apperrors.MapErrorToHTTP(err)
}

func kindForStatus(status int) apperrors.Kind {
	switch status {
	case http.StatusBadRequest:
		return apperrors.KindValidation
	case http.StatusUnauthorized:
		return apperrors.KindAuth
	case http.StatusNotFound:
		return apperrors.KindNotFound
	case http.StatusConflict:
		return apperrors.KindConflict
	default:
		return apperrors.KindInternal
	}
}
