package stylesheet_test

import (
	"testing"

	"github.com/somc-project/somc/internal/stylesheet"
)

func TestAnalyzeTreeParentLinksNestedRules(t *testing.T) {
	res := stylesheet.NewAnalyzer(nil).Analyze([]byte(`
		.card { color: red; }
		.card .header { color: blue; }
	`))
	var card, header *stylesheet.Rule
	for _, id := range res.Order {
		switch res.Rules[id].Selector {
		case ".card":
			card = res.Rules[id]
		case ".card .header":
			header = res.Rules[id]
		}
	}
	if card == nil || header == nil {
		t.Fatal("expected both rules to be present")
	}
	if header.TreeParentID != card.ID {
		t.Errorf("header.TreeParentID = %q, want %q", header.TreeParentID, card.ID)
	}
}

func TestAnalyzeContaminationPropagatesThroughTreeParent(t *testing.T) {
	res := stylesheet.NewAnalyzer(nil).Analyze([]byte(`
		.list { width: 50%; }
		.list .label { color: blue; }
	`))
	var list, label *stylesheet.Rule
	for _, id := range res.Order {
		switch res.Rules[id].Selector {
		case ".list":
			list = res.Rules[id]
		case ".list .label":
			label = res.Rules[id]
		}
	}
	if list == nil || label == nil {
		t.Fatal("expected .list and a nested .label rule")
	}
	if label.FinalClass != stylesheet.Deterministic {
		t.Errorf("got %s, want DETERMINISTIC via contamination", label.FinalClass)
	}
	if label.ContaminationSource != list.ID {
		t.Errorf("got contamination source %q, want %q", label.ContaminationSource, list.ID)
	}
}

func TestAnalyzePortalSeveranceRedirectsEffectiveParent(t *testing.T) {
	res := stylesheet.NewAnalyzer(nil).Analyze([]byte(`
		.list > li:nth-child(2n) { color: red; }
		.list .tooltip { portal-id: .modal-root; color: green; }
		.modal-root { color: black; }
	`))
	var tooltip, modalRoot *stylesheet.Rule
	for _, id := range res.Order {
		switch res.Rules[id].Selector {
		case ".list .tooltip":
			tooltip = res.Rules[id]
		case ".modal-root":
			modalRoot = res.Rules[id]
		}
	}
	if tooltip == nil || modalRoot == nil {
		t.Fatal("expected both rules")
	}
	if tooltip.EffectiveParentID != modalRoot.ID {
		t.Errorf("portal should redirect effective parent to .modal-root, got %q", tooltip.EffectiveParentID)
	}
	if tooltip.FinalClass != stylesheet.Static {
		t.Errorf("portal severance should cut tree contamination, got %s", tooltip.FinalClass)
	}
}

func TestAnalyzePortalMissingTargetWarns(t *testing.T) {
	res := stylesheet.NewAnalyzer(nil).Analyze([]byte(`.tooltip { portal-id: .nonexistent; color: green; }`))
	found := false
	for _, w := range res.Warnings {
		if w.Kind == stylesheet.WarnPortalMissing {
			found = true
		}
	}
	if !found {
		t.Error("expected a PORTAL_MISSING warning")
	}
}

func TestAnalyzeContainerSizeMissingContainerWarns(t *testing.T) {
	res := stylesheet.NewAnalyzer(nil).Analyze([]byte(`.card { width: 10cqw; }`))
	found := false
	for _, w := range res.Warnings {
		if w.Kind == stylesheet.WarnMissingContainer {
			found = true
		}
	}
	if !found {
		t.Error("expected a MISSING_CONTAINER warning with no ancestor container-type boundary")
	}
}

func TestAnalyzeContainerSizeResolvesToAncestorBoundary(t *testing.T) {
	res := stylesheet.NewAnalyzer(nil).Analyze([]byte(`
		.panel { container-type: inline-size; }
		.panel .card { width: 10cqw; }
	`))
	var panel, card *stylesheet.Rule
	for _, id := range res.Order {
		switch res.Rules[id].Selector {
		case ".panel":
			panel = res.Rules[id]
		case ".panel .card":
			card = res.Rules[id]
		}
	}
	if panel == nil || card == nil {
		t.Fatal("expected both rules")
	}
	var containerDep *stylesheet.Dependency
	for i := range card.Deps {
		if card.Deps[i].Kind == stylesheet.DepContainerSize {
			containerDep = &card.Deps[i]
		}
	}
	if containerDep == nil {
		t.Fatal("expected a CONTAINER_SIZE dep")
	}
	if containerDep.ContainerID != panel.ID {
		t.Errorf("got ContainerID %q, want %q", containerDep.ContainerID, panel.ID)
	}
}
