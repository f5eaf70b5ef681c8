package handler

import (
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "github.com/itqanlabs/itqan-backend/errors"
	"github.com/itqanlabs/itqan-backend/internal/adapter/repository"
	"github.com/itqanlabs/itqan-backend/internal/domain/entities"
	"github.com/itqanlabs/itqan-backend/pkg/jwt"
)

const contextKeyUser = "current_user"

// AuthMiddleware validates bearer tokens and loads the current user.
type AuthMiddleware struct {
	jwtManager *jwt.Manager
	users      *repository.UserRepository
}

// NewAuthMiddleware creates the auth middleware
func NewAuthMiddleware(jwtManager *jwt.Manager, users *repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager, users: users}
}

// Authenticate rejects requests without a valid access token and stores
// the loaded user on the context.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := extractToken(c)
		if token == "" {
			return echo.NewHTTPError(401, "missing access token")
		}

		claims, err := m.jwtManager.ValidateAccessToken(token)
		if err != nil {
			return echo.NewHTTPError(401, "invalid access token")
		}

		user, err := m.users.GetByID(c.Request().Context(), claims.UserID)
		if err != nil || user == nil || !user.IsActive {
			return echo.NewHTTPError(401, "unknown user")
		}

		c.Set(contextKeyUser, user)
		return next(c)
	}
}

// RequireTeacher allows only teachers and admins through.
func (m *AuthMiddleware) RequireTeacher(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := CurrentUser(c)
		if user == nil || !user.CanTeach() {
			return echo.NewHTTPError(403, "teacher role required")
		}
		return next(c)
	}
}

// RequireAdmin allows only admins through.
func (m *AuthMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin() {
			return echo.NewHTTPError(403, "admin role required")
		}
		return next(c)
	}
}

// CurrentUser returns the authenticated user stored by Authenticate.
func CurrentUser(c echo.Context) *entities.User {
	user, _ := c.Get(contextKeyUser).(*entities.User)
	return user
}

// RequireUser is a helper for handlers that must have an authenticated
// user; it converts a missing user into an AppError.
func RequireUser(c echo.Context) (*entities.User, error) {
	user := CurrentUser(c)
	if user == nil {
		return nil, apperrors.ErrUnauthenticated()
	}
	return user, nil
}

// extractToken reads the bearer token from the Authorization header,
// falling back to the access_token cookie.
func extractToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return strings.TrimSpace(parts[1])
		}
	}

	cookie, err := c.Cookie("access_token")
	if err == nil {
		return cookie.Value
	}

	return ""
}
