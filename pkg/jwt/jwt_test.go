package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func testManager() *Manager {
	return NewManager("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := testManager()
	userID := uuid.New()

	token, err := m.GenerateAccessToken(userID, "student@itqan.app", "student")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := m.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != userID || claims.Email != "student@itqan.app" || claims.Role != "student" {
		t.Fatalf("claims mangled: %+v", claims)
	}
}

func TestRefreshTokenCarriesSubject(t *testing.T) {
	m := testManager()
	userID := uuid.New()

	token, err := m.GenerateRefreshToken(userID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	got, err := m.ValidateRefreshToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got != userID {
		t.Fatalf("subject %s, want %s", got, userID)
	}
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	m := testManager()

	refresh, err := m.GenerateRefreshToken(uuid.New())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := m.ValidateAccessToken(refresh); err == nil {
		t.Fatal("refresh token accepted as access token")
	}

	access, err := m.GenerateAccessToken(uuid.New(), "a@b.c", "student")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := m.ValidateRefreshToken(access); err == nil {
		t.Fatal("access token accepted as refresh token")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	m := NewManager("access-secret", "refresh-secret", -time.Minute, -time.Minute)

	token, err := m.GenerateAccessToken(uuid.New(), "a@b.c", "student")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := m.ValidateAccessToken(token); err == nil {
		t.Fatal("expired token accepted")
	}
}
