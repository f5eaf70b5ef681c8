package analysis

import (
	"strings"
	"unicode"

	"github.com/itqanlabs/itqan-backend/internal/domain/entities"
	"github.com/itqanlabs/itqan-backend/pkg/arabic"
)

// RuleChecker inspects a finished alignment for violations of one
// Tajweed rule. Checkers are heuristic: they work off word text and
// timing only, so they flag likely issues rather than prove them.
type RuleChecker interface {
	Name() string
	Check(alignment []entities.AlignmentEntry) []entities.RuleViolation
}

// DefaultRuleCheckers returns the built-in checker set.
func DefaultRuleCheckers() []RuleChecker {
	return []RuleChecker{
		MaddChecker{},
		QalqalahChecker{},
		GhunnahChecker{},
		IdghamChecker{},
	}
}

// RunRuleCheckers applies every checker and concatenates the findings.
func RunRuleCheckers(checkers []RuleChecker, alignment []entities.AlignmentEntry) []entities.RuleViolation {
	var violations []entities.RuleViolation
	for _, c := range checkers {
		violations = append(violations, c.Check(alignment)...)
	}
	return violations
}

const (
	severityMinor    = "minor"
	severityModerate = "moderate"
)

// maddLetters are the elongation letters. A word carrying one is
// expected to take noticeably longer than a plain word.
const maddLetters = "اوي"

// MaddChecker flags words containing an elongation letter that were
// pronounced too quickly to have carried the madd.
type MaddChecker struct{}

func (MaddChecker) Name() string { return "madd" }

func (MaddChecker) Check(alignment []entities.AlignmentEntry) []entities.RuleViolation {
	const minMaddDuration = 0.25 // seconds

	var violations []entities.RuleViolation
	for i, e := range alignment {
		if !e.Matched || e.ObservedWord == "" {
			continue
		}
		word := arabic.Normalize(e.ExpectedWord)
		if !strings.ContainsAny(word, maddLetters) {
			continue
		}
		if e.EndTime-e.StartTime < minMaddDuration {
			violations = append(violations, entities.RuleViolation{
				Rule:      "madd",
				WordIndex: i,
				Word:      e.ExpectedWord,
				StartTime: e.StartTime,
				Severity:  severityModerate,
				Note:      "elongation too short",
			})
		}
	}
	return violations
}

// qalqalahLetters trigger an echoing bounce when carrying sukun.
const qalqalahLetters = "قطبجد"

// QalqalahChecker flags words ending in a qalqalah letter that were cut
// off abruptly, which usually means the bounce was dropped.
type QalqalahChecker struct{}

func (QalqalahChecker) Name() string { return "qalqalah" }

func (QalqalahChecker) Check(alignment []entities.AlignmentEntry) []entities.RuleViolation {
	const minEndingDuration = 0.15 // seconds

	var violations []entities.RuleViolation
	for i, e := range alignment {
		if !e.Matched || e.ObservedWord == "" {
			continue
		}
		word := []rune(arabic.Normalize(e.ExpectedWord))
		if len(word) == 0 {
			continue
		}
		last := string(word[len(word)-1])
		if !strings.Contains(qalqalahLetters, last) {
			continue
		}
		if e.EndTime-e.StartTime < minEndingDuration {
			violations = append(violations, entities.RuleViolation{
				Rule:      "qalqalah",
				WordIndex: i,
				Word:      e.ExpectedWord,
				StartTime: e.StartTime,
				Severity:  severityMinor,
				Note:      "ending cut short",
			})
		}
	}
	return violations
}

// GhunnahChecker flags likely missed nasalization on doubled noon and
// meem. Ghunnah adds roughly two counts, so a flagged word pronounced
// as fast as its neighbors probably skipped it.
type GhunnahChecker struct{}

func (GhunnahChecker) Name() string { return "ghunnah" }

func (GhunnahChecker) Check(alignment []entities.AlignmentEntry) []entities.RuleViolation {
	const minGhunnahDuration = 0.3 // seconds

	var violations []entities.RuleViolation
	for i, e := range alignment {
		if !e.Matched || e.ObservedWord == "" {
			continue
		}
		// Shadda survives only in the raw word, so test before
		// normalization.
		if !hasDoubledNasal(e.ExpectedWord) {
			continue
		}
		if e.EndTime-e.StartTime < minGhunnahDuration {
			violations = append(violations, entities.RuleViolation{
				Rule:      "ghunnah",
				WordIndex: i,
				Word:      e.ExpectedWord,
				StartTime: e.StartTime,
				Severity:  severityMinor,
				Note:      "nasalization likely skipped",
			})
		}
	}
	return violations
}

// hasDoubledNasal reports whether the word carries a noon or meem with
// shadda. The shadda may be separated from its letter by other harakat:
// both noon+shadda+fatha and noon+fatha+shadda orderings occur in
// real text, so scan past intervening combining marks.
func hasDoubledNasal(word string) bool {
	const shadda = 'ّ'
	runes := []rune(word)
	for i, r := range runes {
		if r != 'ن' && r != 'م' {
			continue
		}
		for j := i + 1; j < len(runes); j++ {
			if runes[j] == shadda {
				return true
			}
			if !unicode.Is(unicode.Mn, runes[j]) {
				break
			}
		}
	}
	return false
}

// idghamLetters absorb a preceding noon sakinah or tanwin into the next
// word.
const idghamLetters = "يرملون"

// tanwinMarks are the three tanwin vowels (fathatan, dammatan,
// kasratan).
const tanwinMarks = "ًٌٍ"

// IdghamChecker flags word pairs that should merge (noon sakinah or
// tanwin followed by an idgham letter) but were recited with a clear
// break between them.
type IdghamChecker struct{}

func (IdghamChecker) Name() string { return "idgham" }

func (IdghamChecker) Check(alignment []entities.AlignmentEntry) []entities.RuleViolation {
	const maxMergeGap = 0.2 // seconds

	var violations []entities.RuleViolation
	for i := 0; i+1 < len(alignment); i++ {
		cur, next := alignment[i], alignment[i+1]
		if !cur.Matched || cur.ObservedWord == "" || !next.Matched || next.ObservedWord == "" {
			continue
		}
		if !endsWithNoonSakinahOrTanwin(cur.ExpectedWord) {
			continue
		}
		nextWord := []rune(arabic.Normalize(next.ExpectedWord))
		if len(nextWord) == 0 || !strings.ContainsRune(idghamLetters, nextWord[0]) {
			continue
		}
		if next.StartTime-cur.EndTime > maxMergeGap {
			violations = append(violations, entities.RuleViolation{
				Rule:      "idgham",
				WordIndex: i,
				Word:      cur.ExpectedWord,
				StartTime: cur.EndTime,
				Severity:  severityMinor,
				Note:      "merge with next word dropped",
			})
		}
	}
	return violations
}

// endsWithNoonSakinahOrTanwin tests the raw word: the sukun and tanwin
// marks are stripped by normalization.
func endsWithNoonSakinahOrTanwin(word string) bool {
	runes := []rune(strings.TrimSpace(word))
	if len(runes) == 0 {
		return false
	}
	last := runes[len(runes)-1]
	if strings.ContainsRune(tanwinMarks, last) {
		return true
	}
	return strings.HasSuffix(string(runes), "نْ")
}
