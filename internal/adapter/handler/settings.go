package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/itqanlabs/itqan-backend/errors"
	"github.com/itqanlabs/itqan-backend/internal/adapter/dto"
	"github.com/itqanlabs/itqan-backend/internal/adapter/repository"
)

// Settings handles organization setting HTTP requests. All routes are
// admin-gated by the router except the read of the caller's own org.
type Settings struct {
	settings *repository.SettingRepository
	users    *repository.UserRepository
	logger   *zap.Logger
}

// NewSettings creates a new settings handler
func NewSettings(settings *repository.SettingRepository, users *repository.UserRepository, logger *zap.Logger) *Settings {
	return &Settings{settings: settings, users: users, logger: logger}
}

// Get returns the caller's organization settings, defaults included
// @Summary      Get organization settings
// @Tags         settings
// @Security     BearerAuth
// @Success      200  {object}  handler.success
// @Router       /settings [get]
func (h *Settings) Get(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := RequireUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	setting, err := h.settings.GetOrDefault(ctx, user.OrgID)
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed("get settings", err))
	}

	return HandleSuccess(h.logger, c, setting)
}

// Update applies partial changes to the caller's organization settings
// @Summary      Update organization settings
// @Tags         settings
// @Security     BearerAuth
// @Accept       json
// @Param        request  body  dto.UpdateSettingsRequest  true  "changes"
// @Success      200  {object}  handler.success
// @Router       /settings [put]
func (h *Settings) Update(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := RequireUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req dto.UpdateSettingsRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	setting, err := h.settings.GetOrDefault(ctx, user.OrgID)
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed("get settings", err))
	}

	if req.TajweedEnabled != nil {
		setting.TajweedEnabled = *req.TajweedEnabled
	}
	if req.DailyAnalysisLimit != nil {
		setting.DailyAnalysisLimit = *req.DailyAnalysisLimit
	}
	if req.MaxDurationSeconds != nil {
		setting.MaxDurationSeconds = *req.MaxDurationSeconds
	}
	if req.RetentionWindowDays != nil {
		setting.RetentionWindowDays = *req.RetentionWindowDays
	}
	if req.KeepUnanalyzedAudio != nil {
		setting.KeepUnanalyzedAudio = *req.KeepUnanalyzedAudio
	}

	if err := h.settings.Upsert(ctx, setting); err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed("update settings", err))
	}

	h.logger.Info("org settings updated",
		zap.String("org_id", user.OrgID.String()),
		zap.String("updated_by", user.ID.String()),
	)

	return HandleSuccess(h.logger, c, setting)
}

// SetTajweedOverride sets or clears a user's Tajweed analysis override.
// A null enabled value clears the override so the org default applies.
// @Summary      Set per-user Tajweed override
// @Tags         settings
// @Security     BearerAuth
// @Accept       json
// @Param        id       path  string                     true  "user ID"
// @Param        request  body  dto.TajweedOverrideRequest true  "override"
// @Success      200  {object}  handler.success
// @Router       /settings/users/{id}/tajweed [put]
func (h *Settings) SetTajweedOverride(c echo.Context) error {
	ctx := c.Request().Context()

	admin, err := RequireUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("invalid user id"))
	}

	var req dto.TajweedOverrideRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}

	target, err := h.users.GetByID(ctx, userID)
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed("get user", err))
	}
	if target == nil || target.OrgID != admin.OrgID {
		return HandleError(h.logger, c, apperrors.ErrUserNotFound())
	}

	if err := h.users.SetTajweedOverride(ctx, userID, req.Enabled); err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed("set tajweed override", err))
	}

	return HandleSuccess(h.logger, c, map[string]interface{}{
		"user_id": userID,
		"enabled": req.Enabled,
	})
}
