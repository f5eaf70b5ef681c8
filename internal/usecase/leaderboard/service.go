// Package leaderboard keeps per-organization score rankings in Redis
// sorted sets. Scores accumulate on two boards: a rolling weekly board
// keyed by ISO week that expires after two weeks, and an all-time board.
package leaderboard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	apperrors "github.com/itqanlabs/itqan-backend/errors"
)

// Entry is one ranked row.
type Entry struct {
	UserID uuid.UUID `json:"user_id"`
	Score  float64   `json:"score"`
	Rank   int       `json:"rank"`
}

// Service accumulates and queries leaderboard scores.
type Service struct {
	client *redis.Client
	logger *zap.Logger
}

// NewService creates the leaderboard service
func NewService(client *redis.Client, logger *zap.Logger) *Service {
	return &Service{client: client, logger: logger}
}

func weeklyKey(orgID uuid.UUID, t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("leaderboard:%s:week:%d-%02d", orgID, year, week)
}

func allTimeKey(orgID uuid.UUID) string {
	return fmt.Sprintf("leaderboard:%s:alltime", orgID)
}

// RecordScore adds a completed analysis score to both boards.
func (s *Service) RecordScore(ctx context.Context, orgID, userID uuid.UUID, score float64) error {
	member := userID.String()
	wk := weeklyKey(orgID, time.Now())

	pipe := s.client.TxPipeline()
	pipe.ZIncrBy(ctx, wk, score, member)
	pipe.Expire(ctx, wk, 14*24*time.Hour)
	pipe.ZIncrBy(ctx, allTimeKey(orgID), score, member)
	if _, err := pipe.Exec(ctx); err != nil {
		return apperrors.ErrCacheFailed("record score", err)
	}
	return nil
}

// Weekly returns the top entries for the current ISO week.
func (s *Service) Weekly(ctx context.Context, orgID uuid.UUID, limit int) ([]Entry, error) {
	return s.top(ctx, weeklyKey(orgID, time.Now()), limit)
}

// AllTime returns the top entries across all time.
func (s *Service) AllTime(ctx context.Context, orgID uuid.UUID, limit int) ([]Entry, error) {
	return s.top(ctx, allTimeKey(orgID), limit)
}

func (s *Service) top(ctx context.Context, key string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.client.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, apperrors.ErrCacheFailed("read leaderboard", err)
	}

	entries := make([]Entry, 0, len(rows))
	for i, row := range rows {
		member, ok := row.Member.(string)
		if !ok {
			continue
		}
		userID, err := uuid.Parse(member)
		if err != nil {
			s.logger.Warn("skipping malformed leaderboard member", zap.String("member", member))
			continue
		}
		entries = append(entries, Entry{
			UserID: userID,
			Score:  row.Score,
			Rank:   i + 1,
		})
	}
	return entries, nil
}

// UserRank returns a user's rank (1-based) and score on the all-time
// board. Rank 0 means unranked.
func (s *Service) UserRank(ctx context.Context, orgID, userID uuid.UUID) (int, float64, error) {
	key := allTimeKey(orgID)
	member := userID.String()

	rank, err := s.client.ZRevRank(ctx, key, member).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, 0, nil
		}
		return 0, 0, apperrors.ErrCacheFailed("read rank", err)
	}
	score, err := s.client.ZScore(ctx, key, member).Result()
	if err != nil && err != redis.Nil {
		return 0, 0, apperrors.ErrCacheFailed("read score", err)
	}
	return int(rank) + 1, score, nil
}
