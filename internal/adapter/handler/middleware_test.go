package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/itqanlabs/itqan-backend/internal/domain/entities"
)

func roleContext(t *testing.T, role entities.UserRole) echo.Context {
	t.Helper()
	c, _ := newTestContext(t)
	user := entities.NewUser(uuid.New(), "user@itqan.app", "User")
	user.Role = role
	c.Set(contextKeyUser, user)
	return c
}

func TestRequireAdmin(t *testing.T) {
	mw := &AuthMiddleware{}
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	for _, role := range []entities.UserRole{entities.RoleStudent, entities.RoleTeacher} {
		err := mw.RequireAdmin(next)(roleContext(t, role))
		httpErr, ok := err.(*echo.HTTPError)
		if !ok || httpErr.Code != http.StatusForbidden {
			t.Fatalf("role %s: expected 403 got %v", role, err)
		}
	}

	if err := mw.RequireAdmin(next)(roleContext(t, entities.RoleAdmin)); err != nil {
		t.Fatalf("admin blocked: %v", err)
	}
}

func TestRequireTeacherAllowsAdmin(t *testing.T) {
	mw := &AuthMiddleware{}
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	if err := mw.RequireTeacher(next)(roleContext(t, entities.RoleAdmin)); err != nil {
		t.Fatalf("admin blocked: %v", err)
	}
	err := mw.RequireTeacher(next)(roleContext(t, entities.RoleStudent))
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %v", err)
	}
}
