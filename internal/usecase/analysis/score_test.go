package analysis

import (
	"math"
	"testing"

	"github.com/itqanlabs/itqan-backend/internal/domain/entities"
)

// entriesFor builds a matched alignment of n words, each lasting
// wordDur seconds with gap seconds between consecutive words.
func entriesFor(n int, wordDur, gap float64) []entities.AlignmentEntry {
	entries := make([]entities.AlignmentEntry, 0, n)
	var cursor float64
	for i := 0; i < n; i++ {
		entries = append(entries, entities.AlignmentEntry{
			ExpectedWord: "كلمة",
			ObservedWord: "كلمة",
			StartTime:    cursor,
			EndTime:      cursor + wordDur,
			Similarity:   1.0,
			Matched:      true,
		})
		cursor += wordDur + gap
	}
	return entries
}

func TestScorePerfectRecitation(t *testing.T) {
	// 10 words in 6 seconds is exactly 100 wpm, uniform durations,
	// no long pauses.
	entries := entriesFor(10, 0.5, 0.1)

	pron, fluency, timing, overall, detail := Score(entries, 6.0)

	if pron != 100 {
		t.Fatalf("pronunciation %.2f, want 100", pron)
	}
	if fluency != 100 {
		t.Fatalf("fluency %.2f, want 100", fluency)
	}
	if timing != 100 {
		t.Fatalf("timing %.2f, want 100", timing)
	}
	if overall != 100 {
		t.Fatalf("overall %.2f, want 100", overall)
	}
	if detail.WordsPerMinute != 100 {
		t.Fatalf("wpm %.2f, want 100", detail.WordsPerMinute)
	}
	if detail.LongPauses != 0 {
		t.Fatalf("long pauses %d, want 0", detail.LongPauses)
	}
}

func TestScorePronunciationFraction(t *testing.T) {
	entries := entriesFor(4, 0.5, 0.1)
	entries[3].ObservedWord = ""
	entries[3].Matched = false
	entries[3].Similarity = 0

	pron, _, _, _, _ := Score(entries, 2.4)
	if pron != 75 {
		t.Fatalf("pronunciation %.2f, want 75", pron)
	}
}

func TestScoreLongPausePenalty(t *testing.T) {
	// 10 words at 100 wpm but every gap exceeds the pause threshold.
	entries := entriesFor(10, 0.2, 0.6)

	_, fluency, _, _, detail := Score(entries, 6.0)

	if detail.LongPauses != 9 {
		t.Fatalf("long pauses %d, want 9", detail.LongPauses)
	}
	if detail.PausePenalty != 45 {
		t.Fatalf("pause penalty %.2f, want 45", detail.PausePenalty)
	}
	if fluency != 55 {
		t.Fatalf("fluency %.2f, want 55", fluency)
	}
}

func TestScorePausePenaltyCapped(t *testing.T) {
	entries := entriesFor(20, 0.1, 1.0)
	_, _, _, _, detail := Score(entries, 12.0)
	if detail.PausePenalty != 50 {
		t.Fatalf("pause penalty %.2f, want cap of 50", detail.PausePenalty)
	}
}

func TestScoreOverallWeights(t *testing.T) {
	// Half the words missed, generous pace.
	entries := entriesFor(4, 0.5, 0.1)
	entries[2].ObservedWord = ""
	entries[2].Matched = false
	entries[3].ObservedWord = ""
	entries[3].Matched = false

	pron, fluency, _, overall, _ := Score(entries, 1.2)

	want := math.Round((0.6*pron+0.4*fluency)*100) / 100
	if overall != want {
		t.Fatalf("overall %.2f, want %.2f", overall, want)
	}
}

func TestScoreEmptyAlignment(t *testing.T) {
	pron, fluency, timing, overall, _ := Score(nil, 5.0)
	if pron != 0 || fluency != 0 || overall != 0 {
		t.Fatalf("empty alignment scored %v %v %v", pron, fluency, overall)
	}
	if timing != 100 {
		t.Fatalf("timing for empty alignment %.2f, want 100", timing)
	}
}

func TestScoreZeroDurationSkipsPace(t *testing.T) {
	entries := entriesFor(5, 0.5, 0.1)
	_, fluency, _, _, detail := Score(entries, 0)
	if detail.WordsPerMinute != 0 {
		t.Fatalf("wpm %.2f, want 0 when duration unknown", detail.WordsPerMinute)
	}
	if fluency != 100 {
		t.Fatalf("fluency %.2f, want 100 with no pauses and unknown duration", fluency)
	}
}

func TestTimingConsistencyDropsWithVariance(t *testing.T) {
	uneven := []entities.AlignmentEntry{
		{ObservedWord: "a", StartTime: 0, EndTime: 0.2, Matched: true},
		{ObservedWord: "b", StartTime: 0.3, EndTime: 1.5, Matched: true},
		{ObservedWord: "c", StartTime: 1.6, EndTime: 1.8, Matched: true},
	}
	_, _, timing, _, _ := Score(uneven, 2.0)
	if timing >= 100 {
		t.Fatalf("uneven durations scored %.2f, want < 100", timing)
	}
}
