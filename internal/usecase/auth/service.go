// Package auth handles Google OAuth sign-in and JWT issuance.
package auth

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/itqanlabs/itqan-backend/errors"
	"github.com/itqanlabs/itqan-backend/internal/adapter/repository"
	"github.com/itqanlabs/itqan-backend/internal/domain/entities"
	"github.com/itqanlabs/itqan-backend/internal/infrastructure/external/oauth"
	"github.com/itqanlabs/itqan-backend/pkg/config"
	"github.com/itqanlabs/itqan-backend/pkg/jwt"
)

// TokenPair carries the issued tokens.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Service runs the OAuth login flow and token refresh.
type Service struct {
	users      *repository.UserRepository
	google     *oauth.GoogleProvider
	states     *oauth.StateManager
	jwtManager *jwt.Manager
	defaultOrg uuid.UUID
	logger     *zap.Logger
}

// NewService creates the auth service
func NewService(
	users *repository.UserRepository,
	google *oauth.GoogleProvider,
	states *oauth.StateManager,
	jwtManager *jwt.Manager,
	cfg *config.Config,
	logger *zap.Logger,
) *Service {
	defaultOrg, err := uuid.Parse(cfg.OAuth.DefaultOrgID)
	if err != nil {
		defaultOrg = uuid.Nil
	}
	return &Service{
		users:      users,
		google:     google,
		states:     states,
		jwtManager: jwtManager,
		defaultOrg: defaultOrg,
		logger:     logger,
	}
}

// LoginURL generates a state token and the Google consent URL.
func (s *Service) LoginURL(ctx context.Context) (string, error) {
	state, err := s.states.GenerateState()
	if err != nil {
		return "", apperrors.ErrInternal(err)
	}
	return s.google.GetAuthURL(state), nil
}

// HandleCallback validates the state, exchanges the code, upserts the
// user, and issues a token pair.
func (s *Service) HandleCallback(ctx context.Context, state, code string) (*entities.User, *TokenPair, error) {
	if !s.states.ValidateState(state) {
		return nil, nil, apperrors.ErrOAuthFailed("google", nil).WithDetail("reason", "invalid state")
	}

	token, err := s.google.ExchangeCode(ctx, code)
	if err != nil {
		return nil, nil, apperrors.ErrOAuthFailed("google", err)
	}

	info, err := s.google.GetUserInfo(ctx, token)
	if err != nil {
		return nil, nil, apperrors.ErrOAuthFailed("google", err)
	}
	if !info.VerifiedEmail {
		return nil, nil, apperrors.ErrOAuthFailed("google", nil).WithDetail("reason", "email not verified")
	}

	user, err := s.upsertUser(ctx, info)
	if err != nil {
		return nil, nil, err
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("user signed in",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
	)

	return user, pair, nil
}

// Refresh validates a refresh token and issues a fresh pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.ErrInvalidRefreshToken()
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("get user", err)
	}
	if user == nil || !user.IsActive {
		return nil, apperrors.ErrUserNotFound()
	}

	return s.issueTokens(user)
}

func (s *Service) upsertUser(ctx context.Context, info *oauth.GoogleUserInfo) (*entities.User, error) {
	user, err := s.users.GetByOAuth(ctx, "google", info.ID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("get user by oauth", err)
	}
	if user == nil {
		// Returning users who first signed up another way link by email.
		user, err = s.users.GetByEmail(ctx, info.Email)
		if err != nil {
			return nil, apperrors.ErrDBQueryFailed("get user by email", err)
		}
	}

	if user == nil {
		user = entities.NewOAuthUser(s.defaultOrg, info.Email, info.Name, "google", info.ID)
		if info.Picture != "" {
			user.AvatarURL = &info.Picture
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, apperrors.ErrDBQueryFailed("create user", err)
		}
		return user, nil
	}

	provider := "google"
	user.OAuthProvider = &provider
	user.OAuthID = &info.ID
	if info.Picture != "" {
		user.AvatarURL = &info.Picture
	}
	user.UpdateLastLogin()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.ErrDBQueryFailed("update user", err)
	}
	return user, nil
}

func (s *Service) issueTokens(user *entities.User) (*TokenPair, error) {
	access, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}
	refresh, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.jwtManager.GetAccessExpiry().Seconds()),
	}, nil
}
