package instruments

import (
	"context"
	"testing"
)

func testCatalog() *Catalog {
	return NewCatalog([]Record{
		NewRecord("500325", "RELIANCE INDUSTRIES LTD"),
		NewRecord("11536", "TATA CONSULTANCY SERVICES LIMITED"),
		NewRecord("3456", "TATA MOTORS LIMITED"),
		NewRecord("3499", "TATA STEEL LIMITED"),
		NewRecord("1594", "INFOSYS LIMITED"),
		NewRecord("1333", "HDFC BANK LTD."),
		NewRecord("14977", "ORIENT CEMENT LIMITED"),
	})
}

func TestResolveExactName(t *testing.T) {
	r := NewResolver(testCatalog())
	ctx := context.Background()

	refs := r.Resolve(ctx, "Reliance Industries Limited")
	if len(refs) != 1 {
		t.Fatalf("expected exactly 1 match, got %d", len(refs))
	}
	if refs[0].SecurityID != "500325" {
		t.Errorf("expected security id 500325, got %s", refs[0].SecurityID)
	}
}

func TestResolveExactIgnoresSuffixAndPunctuation(t *testing.T) {
	r := NewResolver(testCatalog())

	refs := r.Resolve(context.Background(), "hdfc bank")
	if len(refs) != 1 {
		t.Fatalf("expected 1 match for 'hdfc bank', got %d", len(refs))
	}
	if refs[0].DisplayName != "HDFC BANK LTD." {
		t.Errorf("unexpected match %q", refs[0].DisplayName)
	}
}

func TestResolveAbbreviation(t *testing.T) {
	r := NewResolver(testCatalog())

	refs := r.Resolve(context.Background(), "reliance ind")
	if len(refs) != 1 {
		t.Fatalf("expected 1 abbreviation match, got %d", len(refs))
	}
	if refs[0].SecurityID != "500325" {
		t.Errorf("expected reliance, got %s", refs[0].DisplayName)
	}
}

func TestResolveAllWords(t *testing.T) {
	r := NewResolver(testCatalog())

	refs := r.Resolve(context.Background(), "motors tata")
	if len(refs) != 1 {
		t.Fatalf("expected 1 all-words match, got %d", len(refs))
	}
	if refs[0].SecurityID != "3456" {
		t.Errorf("expected tata motors, got %s", refs[0].DisplayName)
	}
}

func TestResolveSingleWordAmbiguous(t *testing.T) {
	r := NewResolver(testCatalog())

	refs := r.Resolve(context.Background(), "tata")
	if len(refs) != 3 {
		t.Fatalf("expected 3 tata matches, got %d", len(refs))
	}
	// Ties preserve catalog load order.
	if refs[0].SecurityID != "11536" || refs[1].SecurityID != "3456" || refs[2].SecurityID != "3499" {
		t.Errorf("matches out of load order: %+v", refs)
	}
}

func TestResolveFuzzy(t *testing.T) {
	r := NewResolver(testCatalog())

	// Close misspelling of "infosys": no exact, abbrev, or substring hit.
	refs := r.Resolve(context.Background(), "infosis")
	if len(refs) == 0 {
		t.Fatal("expected a fuzzy match for 'infosis'")
	}
	if refs[0].SecurityID != "1594" {
		t.Errorf("expected infosys as best fuzzy match, got %s", refs[0].DisplayName)
	}
}

func TestResolveNoMatch(t *testing.T) {
	r := NewResolver(testCatalog())

	refs := r.Resolve(context.Background(), "zzzz qqqq")
	if len(refs) != 0 {
		t.Errorf("expected no matches, got %d", len(refs))
	}
}

func TestResolveEmptyInput(t *testing.T) {
	r := NewResolver(testCatalog())

	if refs := r.Resolve(context.Background(), ""); len(refs) != 0 {
		t.Errorf("expected empty result for empty input, got %d", len(refs))
	}
	if refs := r.Resolve(context.Background(), "   "); len(refs) != 0 {
		t.Errorf("expected empty result for blank input, got %d", len(refs))
	}
}

func TestResolveCapsAtFive(t *testing.T) {
	records := make([]Record, 0, 8)
	names := []string{
		"ALPHA POWER LIMITED", "ALPHA STEEL LIMITED", "ALPHA MOTORS LIMITED",
		"ALPHA CHEMICALS LIMITED", "ALPHA TEXTILES LIMITED", "ALPHA FOODS LIMITED",
		"ALPHA PAPER LIMITED", "ALPHA CABLES LIMITED",
	}
	for i, n := range names {
		records = append(records, NewRecord(string(rune('1'+i)), n))
	}
	r := NewResolver(NewCatalog(records))

	refs := r.Resolve(context.Background(), "alpha")
	if len(refs) != 5 {
		t.Errorf("expected results capped at 5, got %d", len(refs))
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"Reliance Industries Ltd.":          "reliance industries",
		"TATA CONSULTANCY SERVICES LIMITED": "tata consultancy services",
		"  Infosys  ":                       "infosys",
		"L.T. Foods Limited":                "lt foods",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}
