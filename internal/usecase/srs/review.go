// Package srs implements spaced repetition scheduling for memorization
// plans. The updater is a simplified SM-2 variant driven by the 0-1
// review score instead of a discrete grade.
package srs

import (
	"math"
	"time"

	"github.com/itqanlabs/itqan-backend/internal/domain/entities"
)

const (
	minEase = 1.3
	maxEase = 2.5

	goodThreshold = 0.8
	okThreshold   = 0.6
)

// ApplyReview updates an item's scheduling state from one review score
// in [0, 1] and reschedules it:
//
//	score >= 0.8: ease rises by 0.1 (capped), interval grows by ease
//	0.6 <= score < 0.8: interval and ease unchanged
//	score < 0.6: ease drops by 0.2 (floored), interval resets to 1 day
//
// The next due date is now plus the new interval.
func ApplyReview(item *entities.SrsItem, score float64, now time.Time) {
	score = clampScore(score)

	switch {
	case score >= goodThreshold:
		item.EaseFactor = math.Min(maxEase, item.EaseFactor+0.1)
		item.IntervalDays = int(math.Floor(float64(item.IntervalDays) * item.EaseFactor))
	case score >= okThreshold:
		// Hold steady.
	default:
		item.EaseFactor = math.Max(minEase, item.EaseFactor-0.2)
		item.IntervalDays = 1
	}

	if item.IntervalDays < 1 {
		item.IntervalDays = 1
	}

	item.Repetitions++
	item.DueAt = now.AddDate(0, 0, item.IntervalDays)
	item.LastReviewed = &now
	item.LastScore = &score
	item.UpdatedAt = now
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
