package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/conference-booking/internal/service"
)

var kindStatus = map[service.Kind]int{
	service.KindValidation:   http.StatusBadRequest,
	service.KindConflict:     http.StatusConflict,
	service.KindNotFound:     http.StatusNotFound,
	service.KindAuth:         http.StatusUnauthorized,
	service.KindAccessDenied: http.StatusForbidden,
}

// StatusOf maps a booking error to its HTTP status.
func StatusOf(err error) int {
	if s, ok := kindStatus[service.KindOf(err)]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// writeError renders a booking error as {"error": code, "message": msg}.
// Internal failures are returned to echo so HTTPErrorHandler logs them
// and answers with a generic body.
func writeError(c echo.Context, err error) error {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		return err
	}
	return c.JSON(status, echo.Map{"error": service.CodeOf(err), "message": err.Error()})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad_request", "message": msg})
}

// HTTPErrorHandler renders errors that escape handlers in the same shape
// as writeError. Plain errors become a 500 "internal_error" and every
// server-side failure is logged with the request method and path.
func HTTPErrorHandler(log logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status := http.StatusInternalServerError
		code := "internal_error"
		msg := "internal server error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			code = http.StatusText(status)
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = code
			}
		}
		if status >= http.StatusInternalServerError {
			log.WithError(err).WithFields(logrus.Fields{
				"method": c.Request().Method,
				"path":   c.Request().URL.Path,
			}).Error("unhandled error")
		}
		body := echo.Map{"error": code, "message": msg}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}
