package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/itqanlabs/itqan-backend/errors"
	"github.com/itqanlabs/itqan-backend/internal/adapter/dto"
	"github.com/itqanlabs/itqan-backend/internal/usecase/srs"
)

// Srs handles memorization plan and review HTTP requests
type Srs struct {
	svc    *srs.Service
	logger *zap.Logger
}

// NewSrs creates a new SRS handler
func NewSrs(svc *srs.Service, logger *zap.Logger) *Srs {
	return &Srs{svc: svc, logger: logger}
}

// CreatePlan starts a memorization plan over an ayah range
// @Summary      Create memorization plan
// @Tags         srs
// @Security     BearerAuth
// @Accept       json
// @Param        request  body  dto.CreatePlanRequest  true  "plan"
// @Success      200  {object}  handler.success
// @Router       /srs/plans [post]
func (h *Srs) CreatePlan(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := RequireUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req dto.CreatePlanRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	plan, err := h.svc.CreatePlan(ctx, srs.CreatePlanInput{
		UserID:      user.ID,
		OrgID:       user.OrgID,
		Title:       req.Title,
		SurahNumber: req.SurahNumber,
		AyahStart:   req.AyahStart,
		AyahEnd:     req.AyahEnd,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, plan)
}

// ListPlans lists the requesting user's plans
// @Summary      List memorization plans
// @Tags         srs
// @Security     BearerAuth
// @Success      200  {object}  handler.success
// @Router       /srs/plans [get]
func (h *Srs) ListPlans(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := RequireUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	plans, err := h.svc.ListPlans(ctx, user.ID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, plans)
}

// GetPlan returns a plan and its review items
// @Summary      Get memorization plan
// @Tags         srs
// @Security     BearerAuth
// @Param        id  path  string  true  "plan ID"
// @Success      200  {object}  handler.success
// @Router       /srs/plans/{id} [get]
func (h *Srs) GetPlan(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := RequireUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("invalid plan id"))
	}

	plan, items, err := h.svc.GetPlan(ctx, planID, user)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, map[string]interface{}{
		"plan":  plan,
		"items": items,
	})
}

// DeactivatePlan deactivates a plan so its items stop coming due
// @Summary      Deactivate memorization plan
// @Tags         srs
// @Security     BearerAuth
// @Param        id  path  string  true  "plan ID"
// @Success      200  {object}  handler.success
// @Router       /srs/plans/{id} [delete]
func (h *Srs) DeactivatePlan(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := RequireUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("invalid plan id"))
	}

	if err := h.svc.DeactivatePlan(ctx, planID, user); err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, map[string]string{"status": "deactivated"})
}

// DueItems lists items due for review right now
// @Summary      List due review items
// @Tags         srs
// @Security     BearerAuth
// @Param        limit  query  int  false  "max items"
// @Success      200  {object}  handler.success
// @Router       /srs/due [get]
func (h *Srs) DueItems(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := RequireUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	limit := queryInt(c, "limit", 50)

	items, err := h.svc.DueItems(ctx, user.ID, limit)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, items)
}

// SubmitReview applies a review score to an item and reschedules it
// @Summary      Submit review
// @Tags         srs
// @Security     BearerAuth
// @Accept       json
// @Param        id       path  string                  true  "item ID"
// @Param        request  body  dto.SubmitReviewRequest  true  "score"
// @Success      200  {object}  handler.success
// @Router       /srs/items/{id}/review [post]
func (h *Srs) SubmitReview(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := RequireUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("invalid item id"))
	}

	var req dto.SubmitReviewRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	item, err := h.svc.SubmitReview(ctx, itemID, req.Score, user)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, item)
}
