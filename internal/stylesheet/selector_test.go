package stylesheet_test

import (
	"testing"

	"github.com/somc-project/somc/internal/stylesheet"
)

func TestNormalizeSelectorCanonicalizesCombinatorSpacing(t *testing.T) {
	cases := map[string]string{
		"a>b":      "a > b",
		"a > b":    "a > b",
		"a  >   b": "a > b",
		"a+b":      "a + b",
		"a   b":    "a b",
		".a.b .c":  ".a.b .c",
	}
	for in, want := range cases {
		got := stylesheet.NormalizeSelectorForTest(in)
		if got != want {
			t.Errorf("normalizeSelector(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExtractParentSelector(t *testing.T) {
	got := stylesheet.ExtractParentSelectorForTest(".card > .header")
	if got != ".card" {
		t.Errorf("got %q, want %q", got, ".card")
	}
	if got := stylesheet.ExtractParentSelectorForTest(".lone"); got != "" {
		t.Errorf("single-segment selector should have no parent, got %q", got)
	}
}

func TestExtractParentSelectorIgnoresCombinatorInsidePseudoClass(t *testing.T) {
	got := stylesheet.ExtractParentSelectorForTest(".card :is(.a > .b)")
	if got != ".card" {
		t.Errorf("got %q, want %q", got, ".card")
	}
}

func TestRightmostToken(t *testing.T) {
	got := stylesheet.RightmostTokenForTest(".card > .header.active")
	if got != ".header.active" {
		t.Errorf("got %q, want %q", got, ".header.active")
	}
}
