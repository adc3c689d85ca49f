package stylesheet_test

import (
	"testing"

	"github.com/somc-project/somc/internal/stylesheet"
)

func TestTokenResolverResolvedAbsoluteLeaf(t *testing.T) {
	tr := stylesheet.NewTokenResolverForTest(map[string]string{"--c": "#2563EB"})
	deps, warnings := tr.ResolveForTest("color", "c", "", false)
	if len(deps) != 0 {
		t.Errorf("expected no extra deps from an absolute leaf, got %v", deps)
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
}

func TestTokenResolverResolvedDynamicLeaf(t *testing.T) {
	tr := stylesheet.NewTokenResolverForTest(map[string]string{"--gap": "4vw"})
	deps, _ := tr.ResolveForTest("margin", "gap", "", false)
	if len(deps) != 1 || deps[0].Kind != stylesheet.DepViewport {
		t.Fatalf("expected one VIEWPORT dep from resolved leaf, got %v", deps)
	}
	if deps[0].Expression != "var(--gap)" {
		t.Errorf("expected sentinel expression, got %q", deps[0].Expression)
	}
}

func TestTokenResolverUndefinedNoFallback(t *testing.T) {
	tr := stylesheet.NewTokenResolverForTest(map[string]string{})
	deps, warnings := tr.ResolveForTest("color", "missing", "", false)
	if len(deps) != 0 {
		t.Errorf("expected no deps, got %v", deps)
	}
	if len(warnings) != 1 || warnings[0].Kind != stylesheet.WarnUndefinedToken {
		t.Fatalf("expected one UNDEFINED_TOKEN warning, got %v", warnings)
	}
}

func TestTokenResolverUndefinedWithFallback(t *testing.T) {
	tr := stylesheet.NewTokenResolverForTest(map[string]string{})
	deps, warnings := tr.ResolveForTest("font-size", "u", "1rem", true)
	if len(warnings) != 1 || warnings[0].Kind != stylesheet.WarnUnresolvedToken {
		t.Fatalf("expected one UNRESOLVED_TOKEN warning, got %v", warnings)
	}
	if len(deps) != 1 || deps[0].Kind != stylesheet.DepFontMetrics {
		t.Fatalf("expected the fallback's FONT_METRICS dep adopted, got %v", deps)
	}
}

func TestTokenResolverUnresolvedTokenDedupedAcrossCalls(t *testing.T) {
	tr := stylesheet.NewTokenResolverForTest(map[string]string{})
	_, first := tr.ResolveForTest("font-size", "u", "1rem", true)
	_, second := tr.ResolveForTest("line-height", "u", "1rem", true)
	if len(first) != 1 {
		t.Fatalf("expected first call to emit the warning, got %v", first)
	}
	if len(second) != 0 {
		t.Errorf("expected the second call for the same (token, referenced) pair to be deduped, got %v", second)
	}
}

func TestTokenResolverCycle(t *testing.T) {
	tr := stylesheet.NewTokenResolverForTest(map[string]string{
		"--a": "var(--b)",
		"--b": "var(--a)",
	})
	deps, warnings := tr.ResolveForTest("color", "a", "", false)
	if len(deps) != 0 {
		t.Errorf("expected no deps from a cyclic chain, got %v", deps)
	}
	if len(warnings) != 1 || warnings[0].Kind != stylesheet.WarnTokenCycle {
		t.Fatalf("expected one TOKEN_CYCLE warning, got %v", warnings)
	}
}

func TestTokenResolverChainedIndirection(t *testing.T) {
	tr := stylesheet.NewTokenResolverForTest(map[string]string{
		"--a": "var(--b)",
		"--b": "50%",
	})
	deps, warnings := tr.ResolveForTest("width", "a", "", false)
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
	if len(deps) != 1 || deps[0].Kind != stylesheet.DepParentSize {
		t.Fatalf("expected one PARENT_SIZE dep through the indirection chain, got %v", deps)
	}
}
