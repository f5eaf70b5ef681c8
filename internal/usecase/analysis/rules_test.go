package analysis

import (
	"testing"

	"github.com/itqanlabs/itqan-backend/internal/domain/entities"
)

func matchedEntry(word string, start, end float64) entities.AlignmentEntry {
	return entities.AlignmentEntry{
		ExpectedWord: word,
		ObservedWord: word,
		StartTime:    start,
		EndTime:      end,
		Similarity:   1.0,
		Matched:      true,
	}
}

func TestMaddCheckerFlagsRushedElongation(t *testing.T) {
	alignment := []entities.AlignmentEntry{
		matchedEntry("قَالَ", 0, 0.1), // contains alif, too fast
		matchedEntry("قَالَ", 0.2, 0.8),
	}

	violations := MaddChecker{}.Check(alignment)
	if len(violations) != 1 {
		t.Fatalf("expected 1 violation got %d", len(violations))
	}
	v := violations[0]
	if v.Rule != "madd" || v.WordIndex != 0 {
		t.Fatalf("unexpected violation %+v", v)
	}
}

func TestMaddCheckerSkipsWordsWithoutMaddLetters(t *testing.T) {
	alignment := []entities.AlignmentEntry{matchedEntry("نعم", 0, 0.05)}
	violations := MaddChecker{}.Check(alignment)
	if len(violations) != 0 {
		t.Fatalf("expected none got %v", violations)
	}
}

func TestQalqalahCheckerFlagsClippedEnding(t *testing.T) {
	alignment := []entities.AlignmentEntry{
		matchedEntry("أَحَدٌ", 0, 0.05), // ends in dal after stripping tanwin
	}

	violations := QalqalahChecker{}.Check(alignment)
	if len(violations) != 1 {
		t.Fatalf("expected 1 violation got %d", len(violations))
	}
	if violations[0].Rule != "qalqalah" {
		t.Fatalf("unexpected rule %q", violations[0].Rule)
	}
}

func TestQalqalahCheckerIgnoresOtherEndings(t *testing.T) {
	alignment := []entities.AlignmentEntry{matchedEntry("الله", 0, 0.05)}
	violations := QalqalahChecker{}.Check(alignment)
	if len(violations) != 0 {
		t.Fatalf("expected none got %v", violations)
	}
}

func TestGhunnahCheckerNeedsShadda(t *testing.T) {
	quick := []entities.AlignmentEntry{
		matchedEntry("إِنَّ", 0, 0.1),  // doubled noon, too fast
		matchedEntry("مِن", 0.2, 0.3), // plain noon, no shadda
	}

	violations := GhunnahChecker{}.Check(quick)
	if len(violations) != 1 {
		t.Fatalf("expected 1 violation got %d", len(violations))
	}
	if violations[0].WordIndex != 0 {
		t.Fatalf("flagged wrong word: %+v", violations[0])
	}
}

func TestGhunnahCheckerSeesShaddaThroughHarakat(t *testing.T) {
	// The shadda can come directly after the noon or after an
	// intervening vowel mark; both spellings must be detected.
	noonShaddaFatha := "إِن" + "ّ" + "َ"
	noonFathaShadda := "إِن" + "َ" + "ّ"

	for _, word := range []string{noonShaddaFatha, noonFathaShadda} {
		alignment := []entities.AlignmentEntry{matchedEntry(word, 0, 0.1)}
		violations := GhunnahChecker{}.Check(alignment)
		if len(violations) != 1 {
			t.Fatalf("word %q: expected 1 violation got %d", word, len(violations))
		}
	}
}

func TestIdghamCheckerFlagsDroppedMerge(t *testing.T) {
	// Noon sakinah followed by ra should merge; the half-second gap
	// means it was recited as two separate words.
	alignment := []entities.AlignmentEntry{
		matchedEntry("مِنْ", 0, 0.3),
		matchedEntry("رَبِّهِمْ", 0.8, 1.4),
	}

	violations := IdghamChecker{}.Check(alignment)
	if len(violations) != 1 {
		t.Fatalf("expected 1 violation got %d", len(violations))
	}
	if violations[0].Rule != "idgham" || violations[0].WordIndex != 0 {
		t.Fatalf("unexpected violation %+v", violations[0])
	}
}

func TestIdghamCheckerAcceptsContiguousMerge(t *testing.T) {
	alignment := []entities.AlignmentEntry{
		matchedEntry("مِنْ", 0, 0.3),
		matchedEntry("رَبِّهِمْ", 0.35, 0.9),
	}
	violations := IdghamChecker{}.Check(alignment)
	if len(violations) != 0 {
		t.Fatalf("expected none got %v", violations)
	}
}

func TestIdghamCheckerIgnoresNonIdghamLetters(t *testing.T) {
	// Qaf does not absorb the noon, so a pause is fine.
	alignment := []entities.AlignmentEntry{
		matchedEntry("مِنْ", 0, 0.3),
		matchedEntry("قَبْلُ", 0.8, 1.4),
	}
	violations := IdghamChecker{}.Check(alignment)
	if len(violations) != 0 {
		t.Fatalf("expected none got %v", violations)
	}
}

func TestCheckersSkipUnmatchedWords(t *testing.T) {
	alignment := []entities.AlignmentEntry{
		{ExpectedWord: "قَالَ", ObservedWord: "", Matched: false},
	}
	for _, c := range DefaultRuleCheckers() {
		if violations := c.Check(alignment); len(violations) != 0 {
			t.Fatalf("%s flagged an unmatched word", c.Name())
		}
	}
}

func TestRunRuleCheckersConcatenates(t *testing.T) {
	alignment := []entities.AlignmentEntry{
		matchedEntry("قَالَ", 0, 0.1),   // madd
		matchedEntry("أَحَدٌ", 0.2, 0.25), // qalqalah (also madd via alif)
	}

	violations := RunRuleCheckers(DefaultRuleCheckers(), alignment)
	rules := map[string]int{}
	for _, v := range violations {
		rules[v.Rule]++
	}
	if rules["madd"] == 0 || rules["qalqalah"] == 0 {
		t.Fatalf("expected both madd and qalqalah findings, got %v", rules)
	}
}
