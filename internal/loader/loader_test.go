package loader_test

import (
	"testing"

	"github.com/somc-project/somc/internal/codec"
	"github.com/somc-project/somc/internal/loader"
	"github.com/somc-project/somc/internal/stylesheet"
)

func analyze(src string) *stylesheet.Result {
	return stylesheet.NewAnalyzer(nil).Analyze([]byte(src))
}

func build(t *testing.T, src string) *loader.Loader {
	t.Helper()
	l, err := loader.Load(codec.Emit(analyze(src)))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return l
}

func TestLoadRejectsBadMagic(t *testing.T) {
	if _, err := loader.Load([]byte("not a real artifact, just junk bytes")); err != loader.ErrInvalidMagic {
		t.Errorf("got %v, want ErrInvalidMagic", err)
	}
}

func TestLoadRejectsTruncatedInput(t *testing.T) {
	if _, err := loader.Load([]byte{0x42, 0x53}); err == nil {
		t.Error("expected an error for a 2-byte input")
	}
}

func TestLoadEmptyInputProducesValidMinimalArtifact(t *testing.T) {
	l := build(t, ``)
	stats := l.Stats()
	if stats.StaticCount != 0 || stats.IndexedDynamicCount != 0 {
		t.Errorf("expected no rules, got static=%d dynamic=%d", stats.StaticCount, stats.IndexedDynamicCount)
	}
}

func TestRoundTripStaticRule(t *testing.T) {
	l := build(t, `.btn { color: #fff; padding: 8px 16px; }`)
	rec, ok := l.GetStatic(".btn")
	if !ok {
		t.Fatal("expected a static record for .btn")
	}
	if len(rec.Properties) != 2 {
		t.Errorf("got %d properties, want 2", len(rec.Properties))
	}
	for _, p := range rec.Properties {
		if _, ok := l.ResolveString(p.NameRef); !ok {
			t.Error("expected property name ref to resolve")
		}
		if _, ok := l.ResolveString(p.ValueRef); !ok {
			t.Error("expected property value ref to resolve")
		}
	}
}

func TestRoundTripBoundaryAndRuleSet(t *testing.T) {
	l := build(t, `.layout { width: 100%; } .layout .panel { color: blue; }`)

	boundary, ok := l.GetDynamic(".layout")
	if !ok {
		t.Fatal("expected a dynamic record for .layout")
	}
	marker, ok := boundary.(*loader.BoundaryMarkerRecord)
	if !ok {
		t.Fatalf("got %T, want *BoundaryMarkerRecord", boundary)
	}
	if len(marker.Deps) != 1 {
		t.Errorf("got %d deps, want 1 (PARENT_SIZE on width)", len(marker.Deps))
	}
	if len(marker.Subgraph) != 2 {
		t.Errorf("got %d subgraph members, want 2", len(marker.Subgraph))
	}

	// .panel is a non-boundary RULE_SET, not indexed directly; reachable
	// only through the boundary's subgraph list (§4.7).
	if _, ok := l.GetDynamic(".layout .panel"); ok {
		t.Error("RULE_SET records must not be independently indexed")
	}
	panelHash := stylesheet.HashSelector(".layout .panel")
	found := false
	for _, h := range marker.Subgraph {
		if h == panelHash {
			found = true
		}
	}
	if !found {
		t.Error("expected .panel's hash in the boundary's subgraph list")
	}
}

func TestRoundTripNondeterministic(t *testing.T) {
	l := build(t, `.table tr:nth-child(even) { background: #f8fafc; }`)
	rec, ok := l.GetDynamic(".table tr:nth-child(even)")
	if !ok {
		t.Fatal("expected an indexed nondeterministic record")
	}
	if _, ok := rec.(*loader.NondeterministicRecord); !ok {
		t.Fatalf("got %T, want *NondeterministicRecord", rec)
	}
}

func TestRepeatedLookupsReturnIdentityEqualRecords(t *testing.T) {
	l := build(t, `.layout { width: 100%; }`)
	first, ok := l.GetDynamic(".layout")
	if !ok {
		t.Fatal("expected a record")
	}
	second, _ := l.GetDynamic(".layout")
	if first.(*loader.BoundaryMarkerRecord) != second.(*loader.BoundaryMarkerRecord) {
		t.Error("expected repeated lookups to return the identical cached pointer")
	}
}

func TestGetStaticMissReturnsFalse(t *testing.T) {
	l := build(t, `.btn { color: red; }`)
	if _, ok := l.GetStatic(".nope"); ok {
		t.Error("expected a miss for an unknown selector")
	}
}
