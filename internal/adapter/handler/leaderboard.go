package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/itqanlabs/itqan-backend/internal/usecase/leaderboard"
)

// Leaderboard handles ranking HTTP requests
type Leaderboard struct {
	svc    *leaderboard.Service
	logger *zap.Logger
}

// NewLeaderboard creates a new leaderboard handler
func NewLeaderboard(svc *leaderboard.Service, logger *zap.Logger) *Leaderboard {
	return &Leaderboard{svc: svc, logger: logger}
}

// Weekly returns the current week's top scorers in the user's org
// @Summary      Weekly leaderboard
// @Tags         leaderboard
// @Security     BearerAuth
// @Param        limit  query  int  false  "max entries"
// @Success      200  {object}  handler.success
// @Router       /leaderboard/weekly [get]
func (h *Leaderboard) Weekly(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := RequireUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	entries, err := h.svc.Weekly(ctx, user.OrgID, queryInt(c, "limit", 10))
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, entries)
}

// AllTime returns the all-time top scorers in the user's org
// @Summary      All-time leaderboard
// @Tags         leaderboard
// @Security     BearerAuth
// @Param        limit  query  int  false  "max entries"
// @Success      200  {object}  handler.success
// @Router       /leaderboard/alltime [get]
func (h *Leaderboard) AllTime(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := RequireUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	entries, err := h.svc.AllTime(ctx, user.OrgID, queryInt(c, "limit", 10))
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, entries)
}

// Me returns the requesting user's all-time rank and score
// @Summary      My rank
// @Tags         leaderboard
// @Security     BearerAuth
// @Success      200  {object}  handler.success
// @Router       /leaderboard/me [get]
func (h *Leaderboard) Me(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := RequireUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	rank, score, err := h.svc.UserRank(ctx, user.OrgID, user.ID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, map[string]interface{}{
		"rank":  rank,
		"score": score,
	})
}
