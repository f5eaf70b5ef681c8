package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/itqanlabs/itqan-backend/errors"
	"github.com/itqanlabs/itqan-backend/internal/adapter/dto"
	"github.com/itqanlabs/itqan-backend/internal/adapter/repository"
	"github.com/itqanlabs/itqan-backend/internal/domain/entities"
)

// Assignment handles teacher assignment HTTP requests
type Assignment struct {
	assignments *repository.AssignmentRepository
	users       *repository.UserRepository
	logger      *zap.Logger
}

// NewAssignment creates a new assignment handler
func NewAssignment(assignments *repository.AssignmentRepository, users *repository.UserRepository, logger *zap.Logger) *Assignment {
	return &Assignment{assignments: assignments, users: users, logger: logger}
}

// Create assigns a passage to a student. Teacher-gated by the router.
// @Summary      Create assignment
// @Tags         assignments
// @Security     BearerAuth
// @Accept       json
// @Param        request  body  dto.CreateAssignmentRequest  true  "assignment"
// @Success      200  {object}  handler.success
// @Router       /assignments [post]
func (h *Assignment) Create(c echo.Context) error {
	ctx := c.Request().Context()

	teacher, err := RequireUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req dto.CreateAssignmentRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	student, err := h.users.GetByID(ctx, req.StudentID)
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed("get student", err))
	}
	if student == nil || student.OrgID != teacher.OrgID {
		return HandleError(h.logger, c, apperrors.ErrUserNotFound())
	}

	assignment := entities.NewAssignment(
		teacher.OrgID, teacher.ID, student.ID,
		req.Title, req.SurahNumber, req.AyahStart, req.AyahEnd,
	)
	if req.AutoAI != nil {
		assignment.AutoAI = *req.AutoAI
	}

	if err := h.assignments.Create(ctx, assignment); err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed("create assignment", err))
	}

	h.logger.Info("assignment created",
		zap.String("assignment_id", assignment.ID.String()),
		zap.String("teacher_id", teacher.ID.String()),
		zap.String("student_id", student.ID.String()),
	)

	return HandleSuccess(h.logger, c, assignment)
}

// List returns the caller's assignments, as student or as teacher
// @Summary      List assignments
// @Tags         assignments
// @Security     BearerAuth
// @Success      200  {object}  handler.success
// @Router       /assignments [get]
func (h *Assignment) List(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := RequireUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var assignments []entities.Assignment
	if user.CanTeach() {
		assignments, err = h.assignments.ListByTeacher(ctx, user.ID)
	} else {
		assignments, err = h.assignments.ListByStudent(ctx, user.ID)
	}
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed("list assignments", err))
	}

	return HandleSuccess(h.logger, c, assignments)
}

// Complete marks an assignment as done. Only the assigning teacher or
// the assigned student may complete it.
// @Summary      Complete assignment
// @Tags         assignments
// @Security     BearerAuth
// @Param        id  path  string  true  "assignment ID"
// @Success      200  {object}  handler.success
// @Router       /assignments/{id}/complete [post]
func (h *Assignment) Complete(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := RequireUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("invalid assignment id"))
	}

	assignment, err := h.assignments.GetByID(ctx, id)
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed("get assignment", err))
	}
	if assignment == nil {
		return HandleError(h.logger, c, apperrors.ErrAssignmentNotFound(id.String()))
	}
	if assignment.TeacherID != user.ID && assignment.StudentID != user.ID {
		return HandleError(h.logger, c, apperrors.ErrPermissionDenied("complete assignment"))
	}

	if err := h.assignments.MarkCompleted(ctx, id); err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed("complete assignment", err))
	}

	return HandleSuccess(h.logger, c, map[string]string{"status": "completed"})
}
