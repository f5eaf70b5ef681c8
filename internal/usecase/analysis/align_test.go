package analysis

import (
	"reflect"
	"testing"

	"github.com/itqanlabs/itqan-backend/pkg/stt"
)

func TestAlignExactRecitation(t *testing.T) {
	target := "بِسْمِ اللَّهِ الرَّحْمَٰنِ الرَّحِيمِ"
	words := []stt.Word{
		{Word: "بسم", Start: 0.0, End: 0.5},
		{Word: "الله", Start: 0.6, End: 1.1},
		{Word: "الرحمن", Start: 1.2, End: 1.9},
		{Word: "الرحيم", Start: 2.0, End: 2.7},
	}

	entries := Align(target, words)
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries got %d", len(entries))
	}
	for i, e := range entries {
		if !e.Matched {
			t.Fatalf("entry %d (%s vs %s) not matched, similarity %.2f", i, e.ExpectedWord, e.ObservedWord, e.Similarity)
		}
		if e.Similarity != 1.0 {
			t.Fatalf("entry %d similarity %.2f, want 1.0", i, e.Similarity)
		}
	}
	if entries[2].StartTime != 1.2 || entries[2].EndTime != 1.9 {
		t.Fatalf("timestamps not carried over: %+v", entries[2])
	}
}

func TestAlignPadsMissingTrailingWords(t *testing.T) {
	target := "بسم الله الرحمن الرحيم"
	words := []stt.Word{
		{Word: "بسم", Start: 0.0, End: 0.5},
		{Word: "الله", Start: 0.6, End: 1.1},
	}

	entries := Align(target, words)
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries got %d", len(entries))
	}
	for _, e := range entries[2:] {
		if e.ObservedWord != "" {
			t.Fatalf("expected empty observation got %q", e.ObservedWord)
		}
		if e.Matched {
			t.Fatal("padding entry must not be matched")
		}
		if e.Similarity != 0 {
			t.Fatalf("padding entry similarity %.2f, want 0", e.Similarity)
		}
	}
}

func TestAlignIgnoresExtraTranscribedWords(t *testing.T) {
	entries := Align("بسم الله", []stt.Word{
		{Word: "بسم"}, {Word: "الله"}, {Word: "الرحمن"},
	})
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries got %d", len(entries))
	}
}

func TestAlignNearMissBelowThreshold(t *testing.T) {
	entries := Align("الرحيم", []stt.Word{{Word: "كتاب"}})
	if entries[0].Matched {
		t.Fatalf("unrelated words matched with similarity %.2f", entries[0].Similarity)
	}
}

// Reprocessing a job feeds the same transcript through Align again, so
// the alignment must be deterministic.
func TestAlignDeterministic(t *testing.T) {
	target := "بسم الله الرحمن الرحيم"
	words := []stt.Word{
		{Word: "بسم", Start: 0.0, End: 0.5},
		{Word: "اللة", Start: 0.6, End: 1.1},
		{Word: "الرحيم", Start: 2.0, End: 2.7},
	}

	first := Align(target, words)
	second := Align(target, words)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("alignment differs between runs:\n%+v\n%+v", first, second)
	}
}

func TestSimilarity(t *testing.T) {
	cases := []struct {
		a, b string
		want float64
	}{
		{"بِسْمِ", "بسم", 1.0},
		{"", "", 1.0},
		{"بسم", "", 0.0},
	}
	for _, c := range cases {
		if got := Similarity(c.a, c.b); got != c.want {
			t.Fatalf("Similarity(%q, %q) = %.2f, want %.2f", c.a, c.b, got, c.want)
		}
	}
}

func TestSimilaritySingleEdit(t *testing.T) {
	// One substitution across four letters.
	got := Similarity("الله", "اللة")
	if got != 0.75 {
		t.Fatalf("expected 0.75 got %.2f", got)
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	a, b := "الرحمن", "الرحيم"
	if Similarity(a, b) != Similarity(b, a) {
		t.Fatal("similarity must be symmetric")
	}
}
