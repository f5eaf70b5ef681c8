package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/itqanlabs/itqan-backend/errors"
	"github.com/itqanlabs/itqan-backend/internal/usecase/notification"
)

// Notification handles in-app notification HTTP requests
type Notification struct {
	svc    *notification.Service
	logger *zap.Logger
}

// NewNotification creates a new notification handler
func NewNotification(svc *notification.Service, logger *zap.Logger) *Notification {
	return &Notification{svc: svc, logger: logger}
}

// List returns a page of the user's notifications plus the unread count
// @Summary      List notifications
// @Tags         notifications
// @Security     BearerAuth
// @Param        limit   query  int  false  "page size"
// @Param        offset  query  int  false  "page offset"
// @Success      200  {object}  handler.success
// @Router       /notifications [get]
func (h *Notification) List(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := RequireUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	limit := queryInt(c, "limit", 20)
	offset := queryInt(c, "offset", 0)

	items, unread, err := h.svc.List(ctx, user.ID, limit, offset)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, map[string]interface{}{
		"notifications": items,
		"unread_count":  unread,
	})
}

// MarkRead marks one notification as read
// @Summary      Mark notification read
// @Tags         notifications
// @Security     BearerAuth
// @Param        id  path  string  true  "notification ID"
// @Success      200  {object}  handler.success
// @Router       /notifications/{id}/read [post]
func (h *Notification) MarkRead(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := RequireUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("invalid notification id"))
	}

	if err := h.svc.MarkRead(ctx, user.ID, id); err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, map[string]string{"status": "read"})
}

// MarkAllRead marks every unread notification as read
// @Summary      Mark all notifications read
// @Tags         notifications
// @Security     BearerAuth
// @Success      200  {object}  handler.success
// @Router       /notifications/read-all [post]
func (h *Notification) MarkAllRead(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := RequireUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if err := h.svc.MarkAllRead(ctx, user.ID); err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, map[string]string{"status": "read"})
}
