// Package jwt issues and verifies the HS256 token pair used by the
// API. Access tokens carry the user's identity and role; refresh
// tokens carry only the subject and are signed with a separate secret
// so a leaked access secret cannot mint long-lived credentials.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "itqan-api"

// ErrInvalidToken covers expired, malformed, and wrongly signed tokens.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the access token payload.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}

// Manager signs and verifies both token kinds.
type Manager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

// NewManager creates a token manager with separate secrets for the
// access and refresh tokens.
func NewManager(accessSecret, refreshSecret string, accessExpiry, refreshExpiry time.Duration) *Manager {
	return &Manager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

// GenerateAccessToken issues a short-lived token carrying the user's
// identity and role.
func (m *Manager) GenerateAccessToken(userID uuid.UUID, email, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: registeredClaims(userID, now, m.accessExpiry),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.accessSecret)
}

// GenerateRefreshToken issues a long-lived token carrying only the
// user ID. Role changes take effect on the next refresh because the
// role is never baked into this token.
func (m *Manager) GenerateRefreshToken(userID uuid.UUID) (string, error) {
	claims := registeredClaims(userID, time.Now(), m.refreshExpiry)
	return jwt.NewWithClaims(jwt.SigningMethodHS256, &claims).SignedString(m.refreshSecret)
}

// ValidateAccessToken verifies the signature and standard claims and
// returns the payload.
func (m *Manager) ValidateAccessToken(tokenString string) (*Claims, error) {
	var claims Claims
	if err := m.parse(tokenString, &claims, m.accessSecret); err != nil {
		return nil, err
	}
	return &claims, nil
}

// ValidateRefreshToken verifies a refresh token and returns the user ID
// from its subject.
func (m *Manager) ValidateRefreshToken(tokenString string) (uuid.UUID, error) {
	var claims jwt.RegisteredClaims
	if err := m.parse(tokenString, &claims, m.refreshSecret); err != nil {
		return uuid.Nil, err
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return userID, nil
}

// GetAccessExpiry returns the access token lifetime, reported to
// clients as expires_in.
func (m *Manager) GetAccessExpiry() time.Duration {
	return m.accessExpiry
}

func (m *Manager) parse(tokenString string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

func registeredClaims(userID uuid.UUID, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    issuer,
		Subject:   userID.String(),
	}
}
