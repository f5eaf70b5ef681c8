package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/itqanlabs/itqan-backend/errors"
	"github.com/itqanlabs/itqan-backend/internal/adapter/dto"
	"github.com/itqanlabs/itqan-backend/internal/usecase/auth"
)

// Auth handles authentication HTTP requests
type Auth struct {
	svc    *auth.Service
	logger *zap.Logger
}

// NewAuth creates a new auth handler
func NewAuth(svc *auth.Service, logger *zap.Logger) *Auth {
	return &Auth{svc: svc, logger: logger}
}

// GoogleLogin redirects the browser to the Google consent screen
// @Summary      Start Google OAuth login
// @Tags         auth
// @Success      307
// @Router       /auth/google/login [get]
func (h *Auth) GoogleLogin(c echo.Context) error {
	ctx := c.Request().Context()

	authURL, err := h.svc.LoginURL(ctx)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return c.Redirect(http.StatusTemporaryRedirect, authURL)
}

// GoogleCallback handles the OAuth callback from Google
// @Summary      Google OAuth callback
// @Tags         auth
// @Param        code   query  string  true  "authorization code"
// @Param        state  query  string  true  "state token"
// @Success      200  {object}  handler.success
// @Router       /auth/google/callback [get]
func (h *Auth) GoogleCallback(c echo.Context) error {
	ctx := c.Request().Context()

	code := c.QueryParam("code")
	state := c.QueryParam("state")
	if code == "" || state == "" {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("missing code or state parameter"))
	}

	user, pair, err := h.svc.HandleCallback(ctx, state, code)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	setTokenCookies(c, pair)

	return HandleSuccess(h.logger, c, map[string]interface{}{
		"user":   user.ToPublic(),
		"tokens": pair,
	})
}

// RefreshToken exchanges a refresh token for a fresh pair
// @Summary      Refresh access token
// @Tags         auth
// @Accept       json
// @Param        request  body  dto.RefreshRequest  true  "refresh token"
// @Success      200  {object}  handler.success
// @Router       /auth/refresh [post]
func (h *Auth) RefreshToken(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if req.RefreshToken == "" {
		// Browser clients keep the refresh token in a cookie instead.
		if cookie, err := c.Cookie("refresh_token"); err == nil {
			req.RefreshToken = cookie.Value
		}
	}
	if req.RefreshToken == "" {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("missing refresh token"))
	}

	pair, err := h.svc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	setTokenCookies(c, pair)
	return HandleSuccess(h.logger, c, pair)
}

// Logout clears the auth cookies
// @Summary      Logout
// @Tags         auth
// @Success      200  {object}  handler.success
// @Router       /auth/logout [post]
func (h *Auth) Logout(c echo.Context) error {
	clearTokenCookies(c)
	return HandleSuccess(h.logger, c, map[string]string{"status": "logged out"})
}

// Me returns the authenticated user's profile
// @Summary      Current user
// @Tags         auth
// @Security     BearerAuth
// @Success      200  {object}  handler.success
// @Router       /auth/me [get]
func (h *Auth) Me(c echo.Context) error {
	user, err := RequireUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, user.ToPublic())
}

func setTokenCookies(c echo.Context, pair *auth.TokenPair) {
	c.SetCookie(&http.Cookie{
		Name:     "access_token",
		Value:    pair.AccessToken,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(time.Duration(pair.ExpiresIn) * time.Second),
	})
	c.SetCookie(&http.Cookie{
		Name:     "refresh_token",
		Value:    pair.RefreshToken,
		Path:     "/v1/auth",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(7 * 24 * time.Hour),
	})
}

func clearTokenCookies(c echo.Context) {
	c.SetCookie(&http.Cookie{Name: "access_token", Value: "", Path: "/", MaxAge: -1})
	c.SetCookie(&http.Cookie{Name: "refresh_token", Value: "", Path: "/v1/auth", MaxAge: -1})
}
