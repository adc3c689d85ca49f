package stylesheet_test

import (
	"testing"

	"github.com/somc-project/somc/internal/stylesheet"
)

func TestAssignRuleIDSanitizesSelectorPunctuation(t *testing.T) {
	used := map[string]bool{}
	got := stylesheet.AssignRuleIDForTest(".header.active", used)
	if got != "header_active" {
		t.Errorf("got %q, want %q", got, "header_active")
	}
}

func TestAssignRuleIDCollisionGetsDeterministicSuffix(t *testing.T) {
	used := map[string]bool{}
	first := stylesheet.AssignRuleIDForTest(".header", used)
	used[first] = true
	second := stylesheet.AssignRuleIDForTest(".header!!", used)
	if first == second {
		t.Fatalf("expected distinct ids, both were %q", first)
	}
	if second != first+"_2" {
		t.Errorf("got %q, want %q", second, first+"_2")
	}
}

func TestAnalyzeRuleIDsAreUniqueAcrossSheet(t *testing.T) {
	res := stylesheet.NewAnalyzer(nil).Analyze([]byte(`
		.card { color: red; }
		.other .card { color: blue; }
	`))
	seen := map[string]bool{}
	for _, id := range res.Order {
		if seen[id] {
			t.Fatalf("duplicate rule id %q", id)
		}
		seen[id] = true
	}
	if len(res.Order) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(res.Order))
	}
}
