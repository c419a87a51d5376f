package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/iliyamo/movie-listing/internal/service"
)

// dbTimeout bounds the store work of a single request.
const dbTimeout = 5 * time.Second

// reqCtx derives a context with timeout from the request context to avoid
// hanging DB calls.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// badRequest is returned for bodies and parameters that cannot be decoded.
func badRequest(msg string) error {
	return echo.NewHTTPError(http.StatusBadRequest, msg)
}

// pathParam returns the named path parameter decoded exactly once. Echo
// routes on URL.RawPath when the request has one and then hands back
// escaped values; otherwise the params come from the already decoded
// URL.Path and must not be unescaped again.
func pathParam(c echo.Context, name string) string {
	raw := c.Param(name)
	if c.Request().URL.RawPath == "" {
		return raw
	}
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// statusFor maps a service error kind to its HTTP status.
func statusFor(err error) (int, bool) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, true
	case errors.Is(err, service.ErrUnauthenticated), errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, true
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, true
	}
	return 0, false
}

// ErrorHandler renders every error as {"detail": "..."}. Service errors
// carry their own detail; echo errors keep their message; anything else
// is logged and reported as a 500 without leaking the cause.
func ErrorHandler(l *log.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		detail := "Internal server error"
		var he *echo.HTTPError
		if code, ok := statusFor(err); ok {
			status, detail = code, service.Detail(err)
			if errors.Is(err, service.ErrUnauthenticated) {
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
			}
		} else if errors.As(err, &he) {
			status = he.Code
			if m, ok := he.Message.(string); ok {
				detail = m
			} else {
				detail = fmt.Sprint(he.Message)
			}
		} else {
			l.Errorj(log.JSON{
				"event":  "request.failed",
				"method": c.Request().Method,
				"uri":    c.Request().RequestURI,
				"error":  err.Error(),
			})
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, echo.Map{"detail": detail})
		}
		if werr != nil {
			l.Error(werr)
		}
	}
}
