package analysis

import (
	"math"

	"github.com/itqanlabs/itqan-backend/internal/domain/entities"
)

const (
	// Gaps longer than this between consecutive words count as a long
	// pause in the fluency score.
	longPauseThreshold = 0.5 // seconds

	targetWPM           = 100.0
	pausePenaltyPerStop = 5.0
	maxPausePenalty     = 50.0

	pronunciationWeight = 0.6
	fluencyWeight       = 0.4
)

// Score computes the sub-scores and the weighted overall score from a
// finished alignment. durationSeconds is the audio length; when zero the
// pace component is skipped and only pauses count against fluency.
func Score(alignment []entities.AlignmentEntry, durationSeconds float64) (pronunciation, fluency, timing, overall float64, detail entities.FluencyDetail) {
	pronunciation = pronunciationScore(alignment)
	fluency, detail = fluencyScore(alignment, durationSeconds)
	timing = timingConsistency(alignment)
	overall = round2(pronunciationWeight*pronunciation + fluencyWeight*fluency)
	return pronunciation, fluency, timing, overall, detail
}

// pronunciationScore is the matched fraction of expected words, 0-100.
func pronunciationScore(alignment []entities.AlignmentEntry) float64 {
	if len(alignment) == 0 {
		return 0
	}
	matched := 0
	for _, e := range alignment {
		if e.Matched {
			matched++
		}
	}
	return round2(100.0 * float64(matched) / float64(len(alignment)))
}

// fluencyScore combines reading pace with a pause penalty. Pace scores
// 100 at the target words-per-minute and falls off linearly; each long
// pause costs a fixed penalty up to a cap.
func fluencyScore(alignment []entities.AlignmentEntry, durationSeconds float64) (float64, entities.FluencyDetail) {
	detail := entities.FluencyDetail{}

	observed := observedEntries(alignment)
	if len(observed) == 0 {
		return 0, detail
	}

	pace := 100.0
	if durationSeconds > 0 {
		wpm := float64(len(observed)) / durationSeconds * 60.0
		pace = clamp(100.0-math.Abs(wpm-targetWPM), 0, 100)
		detail.WordsPerMinute = round2(wpm)
	}
	detail.PaceScore = round2(pace)

	longPauses := 0
	for i := 1; i < len(observed); i++ {
		gap := observed[i].StartTime - observed[i-1].EndTime
		if gap > longPauseThreshold {
			longPauses++
		}
	}
	penalty := math.Min(pausePenaltyPerStop*float64(longPauses), maxPausePenalty)
	detail.LongPauses = longPauses
	detail.PausePenalty = round2(penalty)

	return round2(clamp(pace-penalty, 0, 100)), detail
}

// timingConsistency scores how even the per-word durations are: 100 for
// perfectly uniform, dropping with the standard deviation of durations
// relative to a one second spread.
func timingConsistency(alignment []entities.AlignmentEntry) float64 {
	observed := observedEntries(alignment)
	if len(observed) < 2 {
		return 100
	}

	durations := make([]float64, 0, len(observed))
	var sum float64
	for _, e := range observed {
		d := e.EndTime - e.StartTime
		durations = append(durations, d)
		sum += d
	}
	mean := sum / float64(len(durations))

	var variance float64
	for _, d := range durations {
		variance += (d - mean) * (d - mean)
	}
	variance /= float64(len(durations))
	stddev := math.Sqrt(variance)

	return round2(math.Max(0, 100.0-100.0*stddev))
}

// observedEntries filters out padding entries for missed words.
func observedEntries(alignment []entities.AlignmentEntry) []entities.AlignmentEntry {
	out := make([]entities.AlignmentEntry, 0, len(alignment))
	for _, e := range alignment {
		if e.ObservedWord != "" {
			out = append(out, e)
		}
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
