package stylesheet_test

import (
	"testing"

	"github.com/somc-project/somc/internal/stylesheet"
)

func TestAnalyzeSimpleRule(t *testing.T) {
	res := stylesheet.NewAnalyzer(nil).Analyze([]byte(`.card { color: #2563EB; padding: 8px; }`))
	if len(res.Order) != 1 {
		t.Fatalf("expected one rule, got %d", len(res.Order))
	}
	r := res.Rules[res.Order[0]]
	if r.Selector != ".card" {
		t.Errorf("got selector %q", r.Selector)
	}
	if r.FinalClass != stylesheet.Static {
		t.Errorf("got %s, want STATIC", r.FinalClass)
	}
	if r.Declarations["padding"] != "8px" {
		t.Errorf("got %q", r.Declarations["padding"])
	}
}

func TestAnalyzeNestingExpandsAmpersand(t *testing.T) {
	res := stylesheet.NewAnalyzer(nil).Analyze([]byte(`.card { color: red; &:hover { color: blue; } }`))
	var sels []string
	for _, id := range res.Order {
		sels = append(sels, res.Rules[id].Selector)
	}
	found := false
	for _, s := range sels {
		if s == ".card:hover" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a .card:hover rule from & expansion, got %v", sels)
	}
}

func TestAnalyzeBareNestedPreludeIsDescendant(t *testing.T) {
	res := stylesheet.NewAnalyzer(nil).Analyze([]byte(`.card { .header { color: red; } }`))
	var sels []string
	for _, id := range res.Order {
		sels = append(sels, res.Rules[id].Selector)
	}
	found := false
	for _, s := range sels {
		if s == ".card .header" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected '.card .header' from bare nesting, got %v", sels)
	}
}

func TestAnalyzeMediaQueryWrapsCondition(t *testing.T) {
	res := stylesheet.NewAnalyzer(nil).Analyze([]byte(`@media (min-width: 600px) { .card { width: 50%; } }`))
	r := res.Rules[res.Order[0]]
	if r.FinalClass == stylesheet.Static {
		t.Errorf("expected dynamic classification under an @media width condition")
	}
	foundViewport := false
	for _, d := range r.Deps {
		if d.Kind == stylesheet.DepViewport {
			foundViewport = true
		}
	}
	if !foundViewport {
		t.Errorf("expected a synthesized VIEWPORT dep, got %v", r.Deps)
	}
}

func TestAnalyzeCustomPropertyFeedsTokenTable(t *testing.T) {
	res := stylesheet.NewAnalyzer(nil).Analyze([]byte(`:root { --brand: #2563EB; } .a { color: var(--brand); }`))
	if _, ok := res.Tokens["--brand"]; !ok {
		t.Fatalf("expected --brand in the token table, got %v", res.Tokens)
	}
	var rule *stylesheet.Rule
	for _, id := range res.Order {
		if res.Rules[id].Selector == ".a" {
			rule = res.Rules[id]
		}
	}
	if rule == nil {
		t.Fatal("expected a .a rule")
	}
	if rule.FinalClass != stylesheet.Static {
		t.Errorf("var() resolving to an absolute leaf must stay STATIC, got %s", rule.FinalClass)
	}
}

func TestAnalyzeUnterminatedBlockIsTolerated(t *testing.T) {
	res := stylesheet.NewAnalyzer(nil).Analyze([]byte(`.card { color: red; `))
	if len(res.Order) != 1 {
		t.Fatalf("unterminated block should still recover its rule, got %d", len(res.Order))
	}
	if res.Rules[res.Order[0]].Declarations["color"] != "red" {
		t.Errorf("expected the declaration before the unterminated end to survive")
	}
}

func TestAnalyzeUnterminatedTrailingDeclarationIsDropped(t *testing.T) {
	res := stylesheet.NewAnalyzer(nil).Analyze([]byte(`.card { color: red; } .x { width: 1px`))
	var sels []string
	for _, id := range res.Order {
		sels = append(sels, res.Rules[id].Selector)
	}
	if len(sels) != 1 || sels[0] != ".card" {
		t.Errorf("expected only .card to survive, got %v", sels)
	}
}

func TestAnalyzeStructuralPseudoForcesNondeterministic(t *testing.T) {
	res := stylesheet.NewAnalyzer(nil).Analyze([]byte(`.list > li:nth-child(2n) { color: red; }`))
	r := res.Rules[res.Order[0]]
	if r.FinalClass != stylesheet.Nondeterministic {
		t.Errorf("got %s, want NONDETERMINISTIC", r.FinalClass)
	}
	foundWarning := false
	for _, w := range res.Warnings {
		if w.Kind == stylesheet.WarnStructuralDynamic {
			foundWarning = true
		}
	}
	if !foundWarning {
		t.Error("expected a STRUCTURAL_DYNAMIC warning")
	}
}
