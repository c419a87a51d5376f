package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"strconv" // strconv formats the user id for downstream middleware
	"strings" // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/iliyamo/movie-listing/internal/service" // the guard resolves tokens to users
)

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header.  The scheme is matched case-insensitively; anything else yields "".
func bearerToken(c echo.Context) string {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	scheme, raw, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(raw)
}

// JWTAuth returns an Echo middleware that resolves the Bearer access token
// to a user through the guard and stores that user in the request context.
// Handlers read it back with CurrentUser.  Failures are returned as
// service errors so the HTTP error handler renders them as 401.
func JWTAuth(guard *service.Guard) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, err := guard.Authenticate(c.Request().Context(), bearerToken(c))
			if err != nil {
				return err
			}
			c.Set(userKey, u)
			// The rate limiter keys on this string form.
			c.Set("user_id", strconv.FormatUint(u.ID, 10))
			return next(c)
		}
	}
}
