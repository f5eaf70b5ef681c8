package handler

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/itqanlabs/itqan-backend/internal/usecase/analytics"
)

// Analytics handles progress statistics HTTP requests
type Analytics struct {
	svc    *analytics.Service
	logger *zap.Logger
}

// NewAnalytics creates a new analytics handler
func NewAnalytics(svc *analytics.Service, logger *zap.Logger) *Analytics {
	return &Analytics{svc: svc, logger: logger}
}

// Stats returns live aggregates for the requesting user
// @Summary      User statistics
// @Tags         analytics
// @Security     BearerAuth
// @Param        days  query  int  false  "lookback window in days"
// @Success      200  {object}  handler.success
// @Router       /analytics/stats [get]
func (h *Analytics) Stats(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := RequireUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	days := queryInt(c, "days", 30)
	since := time.Now().AddDate(0, 0, -days)

	stats, err := h.svc.UserStats(ctx, user.ID, since)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, stats)
}

// History returns the user's daily snapshots for charting
// @Summary      Daily activity history
// @Tags         analytics
// @Security     BearerAuth
// @Param        days  query  int  false  "lookback window in days"
// @Success      200  {object}  handler.success
// @Router       /analytics/history [get]
func (h *Analytics) History(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := RequireUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	snapshots, err := h.svc.History(ctx, user.ID, queryInt(c, "days", 30))
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, snapshots)
}
