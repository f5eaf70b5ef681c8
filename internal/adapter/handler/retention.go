package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/itqanlabs/itqan-backend/errors"
	"github.com/itqanlabs/itqan-backend/internal/adapter/dto"
	"github.com/itqanlabs/itqan-backend/internal/usecase/retention"
)

// Retention handles manual audio retention sweeps. Admin-gated by the
// router; the scheduled sweep runs through the cron wrapper instead.
type Retention struct {
	cleaner *retention.Cleaner
	logger  *zap.Logger
}

// NewRetention creates a new retention handler
func NewRetention(cleaner *retention.Cleaner, logger *zap.Logger) *Retention {
	return &Retention{cleaner: cleaner, logger: logger}
}

// Sweep runs a retention sweep across all organizations. With dry_run
// set, candidates are counted but nothing is removed.
// @Summary      Run retention sweep
// @Tags         retention
// @Security     BearerAuth
// @Accept       json
// @Param        request  body  dto.RetentionSweepRequest  false  "options"
// @Success      200  {object}  handler.success
// @Router       /admin/retention/sweep [post]
func (h *Retention) Sweep(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.RetentionSweepRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}

	summary, err := h.cleaner.SweepAll(ctx, req.DryRun)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, summary)
}
