package analysis

import (
	"github.com/agnivade/levenshtein"

	"github.com/itqanlabs/itqan-backend/internal/domain/entities"
	"github.com/itqanlabs/itqan-backend/pkg/arabic"
	"github.com/itqanlabs/itqan-backend/pkg/stt"
)

// matchThreshold is the minimum similarity for a word pair to count as
// matched.
const matchThreshold = 0.70

// Align pairs the expected tokens of the target text with the
// transcribed words by position. Token i is compared against word i;
// expected tokens beyond the transcript length are padded with empty
// observations. Extra transcribed words beyond the expected count are
// ignored.
func Align(targetText string, words []stt.Word) []entities.AlignmentEntry {
	expected := arabic.Tokenize(targetText)
	entries := make([]entities.AlignmentEntry, 0, len(expected))

	for i, exp := range expected {
		entry := entities.AlignmentEntry{ExpectedWord: exp}
		if i < len(words) {
			w := words[i]
			entry.ObservedWord = w.Word
			entry.StartTime = w.Start
			entry.EndTime = w.End
			entry.Similarity = Similarity(exp, w.Word)
			entry.Matched = entry.Similarity >= matchThreshold
		}
		entries = append(entries, entry)
	}

	return entries
}

// Similarity computes normalized Levenshtein similarity between two
// words after harakat stripping. 1 is identical, 0 is fully different.
// Two words that normalize to empty compare equal.
func Similarity(a, b string) float64 {
	na := []rune(arabic.Normalize(a))
	nb := []rune(arabic.Normalize(b))

	maxLen := len(na)
	if len(nb) > maxLen {
		maxLen = len(nb)
	}
	if maxLen == 0 {
		return 1.0
	}

	dist := levenshtein.ComputeDistance(string(na), string(nb))
	return 1.0 - float64(dist)/float64(maxLen)
}
