package stylesheet

// ComputeFinalClasses walks each rule's effective-parent chain, memoized,
// assigning FinalClass = max(LocalClass, effective-parent's FinalClass)
// and recording which ancestor (if any) is the source of contamination
// (§4.5). A cycle in the effective-parent chain (only reachable through
// portal redirection) is broken by falling back to the rule's own local
// class at the point of recurrence.
func ComputeFinalClasses(rules map[string]*Rule, order []string) {
	resolved := map[string]bool{}
	cycleWarned := map[string]bool{}

	var resolve func(id string, visiting map[string]bool) Class
	resolve = func(id string, visiting map[string]bool) Class {
		r, ok := rules[id]
		if !ok {
			return Static
		}
		if resolved[id] {
			return r.FinalClass
		}
		if visiting[id] {
			if !cycleWarned[id] {
				cycleWarned[id] = true
				r.Warnings = append(r.Warnings, Warning{
					Kind:    WarnDepWarning,
					NodeID:  id,
					Message: "effective-parent chain cycles back through " + id + "; rule retains its local class",
				})
			}
			return r.LocalClass
		}
		visiting[id] = true

		final := r.LocalClass
		if r.EffectiveParentID != "" {
			parentFinal := resolve(r.EffectiveParentID, visiting)
			if parentFinal > final {
				final = parentFinal
				// The recorded source is the contamination's origin, not
				// the immediate parent: a chain A <- B <- C points C at A.
				r.ContaminationSource = r.EffectiveParentID
				if p, ok := rules[r.EffectiveParentID]; ok && p.ContaminationSource != "" {
					r.ContaminationSource = p.ContaminationSource
				}
			}
		}
		r.FinalClass = final
		resolved[id] = true
		delete(visiting, id)
		return final
	}

	for _, id := range order {
		resolve(id, map[string]bool{})
	}
}

// ComputeBoundaries groups every non-static rule into the dynamic
// boundary rooted at the topmost rule of its contiguous non-static run
// along the effective-parent chain (the rule itself when its effective
// parent is missing or static),
// assigns each rule's BoundaryID and EmitType, and assembles one
// BoundaryManifest per root (§4.5, §4.6).
//
// A rule whose own FinalClass is NONDETERMINISTIC still joins its
// boundary's subgraph and manifest (the Result keeps the full picture
// for diagnostics and the summary record), but its EmitType is always
// EmitNondeterministic regardless of root/non-root position: §1 routes
// anything that "cannot be statically captured" to the fixed-size
// NONDETERMINISTIC binary record and the textual fallback, never to a
// BOUNDARY_MARKER or RULE_SET record, so the codec never needs to carry
// manifest bytes for it.
func ComputeBoundaries(rules map[string]*Rule, order []string) map[string]*BoundaryManifest {
	manifests := make(map[string]*BoundaryManifest)

	isRoot := func(r *Rule) bool {
		if r.FinalClass == Static {
			return false
		}
		if r.EffectiveParentID == "" {
			return true
		}
		parent, ok := rules[r.EffectiveParentID]
		return !ok || parent.FinalClass == Static
	}

	rootOf := make(map[string]string)
	for _, id := range order {
		r := rules[id]
		if r.FinalClass == Static {
			r.EmitType = EmitResolvedStyleBlock
			continue
		}
		cur := id
		walked := map[string]bool{}
		for !isRoot(rules[cur]) && !walked[cur] {
			walked[cur] = true
			cur = rules[cur].EffectiveParentID
		}
		rootOf[id] = cur
	}

	for _, id := range order {
		root, ok := rootOf[id]
		if !ok {
			continue
		}
		m, exists := manifests[root]
		if !exists {
			m = &BoundaryManifest{BoundaryID: root}
			manifests[root] = m
		}
		m.SubgraphIDs = append(m.SubgraphIDs, id)
		r := rules[id]
		r.BoundaryID = root
		switch {
		case r.FinalClass == Nondeterministic:
			r.EmitType = EmitNondeterministic
		case id == root:
			r.EmitType = EmitDynamicBoundary
		default:
			r.EmitType = EmitRuleSet
		}
	}

	// Manifest entries deduplicate by (owner, property, kind, container):
	// two deps on the same rule that differ only in source expression
	// collapse to one manifest row.
	type manifestKey struct {
		owner     string
		property  string
		kind      DepKind
		container string
	}
	for _, m := range manifests {
		seen := make(map[manifestKey]bool)
		for _, rid := range m.SubgraphIDs {
			r := rules[rid]
			for _, d := range r.Deps {
				if d.Kind == DepTheme {
					// Theme-only updates are invalidated separately by
					// the runtime and excluded from the manifest.
					continue
				}
				k := manifestKey{d.OwnerID, d.Property, d.Kind, d.ContainerID}
				if seen[k] {
					continue
				}
				seen[k] = true
				m.Entries = append(m.Entries, d)
			}
			if r.PortalTargetRaw != "" {
				m.PortalDependency = true
			}
		}
		m.ContaminationOnly = len(m.Entries) == 0
	}

	return manifests
}
