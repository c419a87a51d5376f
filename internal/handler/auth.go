package handler

import (
	"net/http" // HTTP status codes and primitives
	"time"     // created_at in the signup response

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/iliyamo/movie-listing/internal/middleware" // current user lookup
	"github.com/iliyamo/movie-listing/internal/service"    // account use cases
)

// AuthHandler bundles dependencies for account endpoints.
type AuthHandler struct {
	Users *service.UserService
}

func NewAuthHandler(u *service.UserService) *AuthHandler {
	return &AuthHandler{Users: u}
}

// ----- DTOs -----

type signupReq struct {
	FullName string `json:"full_name" form:"full_name"`
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// loginReq accepts the OAuth2 password form as well as JSON.
type loginReq struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type passwordReq struct {
	Password string `json:"password" form:"password"`
}

type userResp struct {
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type tokenResp struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Signup: create a user and return its public summary.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.Signup(ctx, service.SignupInput{
		FullName: req.FullName,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, userResp{Username: u.Username, Email: u.Email, CreatedAt: u.CreatedAt})
}

// Login: verify credentials and return a bearer token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	if req.Username == "" || req.Password == "" {
		return badRequest("username/password required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	tok, err := h.Users.Login(ctx, req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tokenResp{AccessToken: tok.Token, TokenType: "bearer"})
}

// ResetPassword: replace the caller's own password (protected).
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	actor, _ := middleware.CurrentUser(c)
	var req passwordReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.ResetPassword(ctx, actor, pathParam(c, "email"), req.Password); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Password reset successfully"})
}
