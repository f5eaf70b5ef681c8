package srs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/itqanlabs/itqan-backend/errors"
	"github.com/itqanlabs/itqan-backend/internal/adapter/repository"
	"github.com/itqanlabs/itqan-backend/internal/domain/entities"
)

// ScoreRecorder feeds review activity into the leaderboard.
type ScoreRecorder interface {
	RecordScore(ctx context.Context, orgID, userID uuid.UUID, score float64) error
}

// Service owns memorization plans and their review items.
type Service struct {
	repo   *repository.SrsRepository
	scores ScoreRecorder
	logger *zap.Logger
}

// NewService creates the SRS service
func NewService(repo *repository.SrsRepository, scores ScoreRecorder, logger *zap.Logger) *Service {
	return &Service{repo: repo, scores: scores, logger: logger}
}

// CreatePlanInput is the payload for starting a memorization plan.
type CreatePlanInput struct {
	UserID      uuid.UUID
	OrgID       uuid.UUID
	Title       string
	SurahNumber int
	AyahStart   int
	AyahEnd     int
}

// CreatePlan creates a plan and seeds one review item per ayah, all due
// immediately at interval 1 and ease 2.5.
func (s *Service) CreatePlan(ctx context.Context, in CreatePlanInput) (*entities.MemorizationPlan, error) {
	if in.AyahStart < 1 || in.AyahEnd < in.AyahStart {
		return nil, apperrors.ErrInvalidArgument("invalid ayah range")
	}

	plan := entities.NewMemorizationPlan(in.UserID, in.OrgID, in.Title, in.SurahNumber, in.AyahStart, in.AyahEnd)

	items := make([]entities.SrsItem, 0, plan.AyahCount())
	for ayah := in.AyahStart; ayah <= in.AyahEnd; ayah++ {
		items = append(items, *entities.NewSrsItem(plan.ID, in.UserID, in.SurahNumber, ayah))
	}

	if err := s.repo.CreatePlan(ctx, plan, items); err != nil {
		return nil, apperrors.ErrDBQueryFailed("create plan", err)
	}

	s.logger.Info("memorization plan created",
		zap.String("plan_id", plan.ID.String()),
		zap.String("user_id", in.UserID.String()),
		zap.Int("items", len(items)),
	)

	return plan, nil
}

// GetPlan returns a plan the requester owns, with its items.
func (s *Service) GetPlan(ctx context.Context, planID uuid.UUID, requester *entities.User) (*entities.MemorizationPlan, []entities.SrsItem, error) {
	plan, err := s.repo.GetPlanByID(ctx, planID)
	if err != nil {
		return nil, nil, apperrors.ErrDBQueryFailed("get plan", err)
	}
	if plan == nil {
		return nil, nil, apperrors.ErrPlanNotFound(planID.String())
	}
	if plan.UserID != requester.ID && !(requester.CanTeach() && plan.OrgID == requester.OrgID) {
		return nil, nil, apperrors.ErrPermissionDenied("view plan")
	}

	items, err := s.repo.ListItemsByPlan(ctx, planID)
	if err != nil {
		return nil, nil, apperrors.ErrDBQueryFailed("list plan items", err)
	}
	return plan, items, nil
}

// ListPlans returns the user's plans.
func (s *Service) ListPlans(ctx context.Context, userID uuid.UUID) ([]entities.MemorizationPlan, error) {
	plans, err := s.repo.ListPlansByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("list plans", err)
	}
	return plans, nil
}

// DueItems returns the user's review queue, most overdue first.
func (s *Service) DueItems(ctx context.Context, userID uuid.UUID, limit int) ([]entities.SrsItem, error) {
	items, err := s.repo.ListDueItems(ctx, userID, time.Now(), limit)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("list due items", err)
	}
	return items, nil
}

// SubmitReview applies one review score to an item the requester owns
// and returns the rescheduled item.
func (s *Service) SubmitReview(ctx context.Context, itemID uuid.UUID, score float64, requester *entities.User) (*entities.SrsItem, error) {
	if score < 0 || score > 1 {
		return nil, apperrors.ErrInvalidArgument("score must be between 0 and 1")
	}

	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("get item", err)
	}
	if item == nil {
		return nil, apperrors.ErrSrsItemNotFound(itemID.String())
	}
	if item.UserID != requester.ID {
		return nil, apperrors.ErrPermissionDenied("review item")
	}

	ApplyReview(item, score, time.Now())

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, apperrors.ErrDBQueryFailed("update item", err)
	}

	// Reviews earn leaderboard points too, a tenth of what a full
	// recitation is worth. Ranking is best effort; the review stands
	// even when the award fails.
	if s.scores != nil {
		if err := s.scores.RecordScore(ctx, requester.OrgID, requester.ID, score*10); err != nil {
			s.logger.Warn("failed to record review score",
				zap.String("item_id", item.ID.String()),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("review applied",
		zap.String("item_id", item.ID.String()),
		zap.Float64("score", score),
		zap.Int("interval_days", item.IntervalDays),
	)

	return item, nil
}

// DeactivatePlan archives a plan the requester owns.
func (s *Service) DeactivatePlan(ctx context.Context, planID uuid.UUID, requester *entities.User) error {
	plan, err := s.repo.GetPlanByID(ctx, planID)
	if err != nil {
		return apperrors.ErrDBQueryFailed("get plan", err)
	}
	if plan == nil {
		return apperrors.ErrPlanNotFound(planID.String())
	}
	if plan.UserID != requester.ID {
		return apperrors.ErrPermissionDenied("deactivate plan")
	}
	if err := s.repo.DeactivatePlan(ctx, planID); err != nil {
		return apperrors.ErrDBQueryFailed("deactivate plan", err)
	}
	return nil
}
