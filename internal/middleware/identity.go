package middleware

// identity.go holds the context helpers shared by the auth middleware,
// the rate limiter and the handlers.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-listing/internal/model"
)

const userKey = "user"

// CurrentUser returns the user JWTAuth stored in c, if any.
func CurrentUser(c echo.Context) (*model.User, bool) {
	u, ok := c.Get(userKey).(*model.User)
	return u, ok && u != nil
}

// TokenSubject checks a bearer token's signature and expiry and returns
// its subject. It does not touch the store.
type TokenSubject func(raw string) (string, error)

// userID returns the authenticated user's id as a string, or "anon" when
// the request carries no identity.
func userID(c echo.Context) string {
	if u, ok := CurrentUser(c); ok {
		return strconv.FormatUint(u.ID, 10)
	}
	if v, ok := c.Get("user_id").(string); ok && v != "" {
		return v
	}
	return "anon"
}

// rateIdentity identifies the caller for rate limiting. The limiter runs
// before JWTAuth, so a bearer token is verified here and its subject used;
// tokens that fail verification count as "anon" and cannot mint buckets.
func rateIdentity(c echo.Context, verify TokenSubject) string {
	if id := userID(c); id != "anon" || verify == nil {
		return id
	}
	if tok := bearerToken(c); tok != "" {
		if sub, err := verify(tok); err == nil && sub != "" {
			return "sub:" + sub
		}
	}
	return "anon"
}
