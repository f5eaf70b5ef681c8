package arabic

import "testing"

func TestNormalizeStripsHarakat(t *testing.T) {
	got := Normalize("بِسْمِ")
	if got != "بسم" {
		t.Fatalf("expected بسم got %q", got)
	}
}

func TestNormalizeStripsShaddaAndTanwin(t *testing.T) {
	cases := map[string]string{
		"الرَّحْمَٰنِ": "الرحمن",
		"عَلِيمًا":     "عليما",
		"ٱللَّهِ":      "ٱلله",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeStripsTatweel(t *testing.T) {
	if got := Normalize("بـسـم"); got != "بسم" {
		t.Fatalf("expected بسم got %q", got)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	in := "بِسْمِ اللَّهِ الرَّحْمَٰنِ الرَّحِيمِ"
	once := Normalize(in)
	twice := Normalize(once)
	if once != twice {
		t.Fatalf("not idempotent: %q vs %q", once, twice)
	}
}

func TestNormalizeTrimsWhitespace(t *testing.T) {
	if got := Normalize("  بسم  "); got != "بسم" {
		t.Fatalf("expected trimmed بسم got %q", got)
	}
}

func TestTokenize(t *testing.T) {
	tokens := Tokenize("بسم الله  الرحمن الرحيم")
	if len(tokens) != 4 {
		t.Fatalf("expected 4 tokens got %d: %v", len(tokens), tokens)
	}
	if tokens[0] != "بسم" || tokens[3] != "الرحيم" {
		t.Fatalf("unexpected tokens %v", tokens)
	}
}

func TestTokenizeEmpty(t *testing.T) {
	if tokens := Tokenize("   "); len(tokens) != 0 {
		t.Fatalf("expected no tokens got %v", tokens)
	}
}
