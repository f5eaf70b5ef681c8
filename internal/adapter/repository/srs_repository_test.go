package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/itqanlabs/itqan-backend/internal/domain/entities"
)

func seedPlan(t *testing.T, repo *SrsRepository, userID uuid.UUID, ayahStart, ayahEnd int) (*entities.MemorizationPlan, []entities.SrsItem) {
	t.Helper()
	plan := entities.NewMemorizationPlan(userID, uuid.New(), "Al-Fatiha", 1, ayahStart, ayahEnd)
	items := make([]entities.SrsItem, 0, ayahEnd-ayahStart+1)
	for ayah := ayahStart; ayah <= ayahEnd; ayah++ {
		items = append(items, *entities.NewSrsItem(plan.ID, userID, 1, ayah))
	}
	if err := repo.CreatePlan(context.Background(), plan, items); err != nil {
		t.Fatalf("create plan: %v", err)
	}
	return plan, items
}

func TestSrsCreatePlanSeedsItems(t *testing.T) {
	repo := NewSrsRepository(newTestDB(t))
	ctx := context.Background()
	userID := uuid.New()

	plan, _ := seedPlan(t, repo, userID, 1, 7)

	got, err := repo.GetPlanByID(ctx, plan.ID)
	if err != nil {
		t.Fatalf("get plan: %v", err)
	}
	if got == nil || got.Title != "Al-Fatiha" {
		t.Fatalf("plan not persisted: %+v", got)
	}

	items, err := repo.ListItemsByPlan(ctx, plan.ID)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 7 {
		t.Fatalf("got %d items, want 7", len(items))
	}
	for _, item := range items {
		if item.IntervalDays != 1 || item.EaseFactor != 2.5 {
			t.Fatalf("item not at initial state: %+v", item)
		}
	}
}

func TestSrsDueItemsOrderAndCutoff(t *testing.T) {
	db := newTestDB(t)
	repo := NewSrsRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	_, items := seedPlan(t, repo, userID, 1, 3)

	now := time.Now()
	// First item far overdue, second just due, third due tomorrow.
	dues := []time.Time{now.Add(-48 * time.Hour), now.Add(-time.Minute), now.Add(24 * time.Hour)}
	for i, due := range dues {
		if err := db.Model(&entities.SrsItem{}).Where("id = ?", items[i].ID).
			Update("due_at", due).Error; err != nil {
			t.Fatalf("set due: %v", err)
		}
	}

	due, err := repo.ListDueItems(ctx, userID, now, 0)
	if err != nil {
		t.Fatalf("list due: %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("got %d due items, want 2", len(due))
	}
	if due[0].ID != items[0].ID {
		t.Fatal("most overdue item must come first")
	}

	count, err := repo.CountDueItems(ctx, userID, now)
	if err != nil {
		t.Fatalf("count due: %v", err)
	}
	if count != 2 {
		t.Fatalf("count %d, want 2", count)
	}
}

func TestSrsUpdateItemPersistsReview(t *testing.T) {
	repo := NewSrsRepository(newTestDB(t))
	ctx := context.Background()
	userID := uuid.New()

	_, items := seedPlan(t, repo, userID, 1, 1)
	item := &items[0]

	now := time.Now()
	score := 0.9
	item.IntervalDays = 2
	item.Repetitions = 1
	item.LastReviewed = &now
	item.LastScore = &score
	item.DueAt = now.AddDate(0, 0, 2)

	if err := repo.UpdateItem(ctx, item); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.GetItemByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.IntervalDays != 2 || got.Repetitions != 1 {
		t.Fatalf("review not persisted: %+v", got)
	}
	if got.LastScore == nil || *got.LastScore != 0.9 {
		t.Fatalf("last score %v", got.LastScore)
	}

	reviews, err := repo.CountReviewsSince(ctx, userID, now.Add(-time.Minute))
	if err != nil {
		t.Fatalf("count reviews: %v", err)
	}
	if reviews != 1 {
		t.Fatalf("reviews %d, want 1", reviews)
	}
}

func TestSrsDeactivatePlan(t *testing.T) {
	repo := NewSrsRepository(newTestDB(t))
	ctx := context.Background()

	plan, _ := seedPlan(t, repo, uuid.New(), 1, 2)

	if err := repo.DeactivatePlan(ctx, plan.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	got, _ := repo.GetPlanByID(ctx, plan.ID)
	if got.IsActive {
		t.Fatal("plan still active")
	}
}
