package stylesheet

import "strings"

// BuildTreeParents computes each rule's tree-parent by walking the
// depth-aware drop of trailing compound selector segments until an
// existing rule's normalized selector is found (§4.4). selectorToID maps
// a normalized selector to the id of the rule that owns it.
func BuildTreeParents(rules map[string]*Rule, order []string, selectorToID map[string]string) {
	for _, id := range order {
		r := rules[id]
		sel := r.Selector
		for {
			sel = extractParentSelector(sel)
			if sel == "" {
				break
			}
			if pid, ok := selectorToID[sel]; ok && pid != id {
				r.TreeParentID = pid
				rules[pid].TreeChildren = append(rules[pid].TreeChildren, id)
				break
			}
		}
	}
}

// ResolvePortals computes each rule's effective parent: the portal
// target when one is declared and resolvable, the tree parent otherwise.
// A declared portal target that resolvePortalTarget cannot match to any
// rule severs the rule from the tree (no effective parent) and attaches a
// PORTAL_MISSING warning (§4.4, §7).
func ResolvePortals(rules map[string]*Rule, order []string, selectorToID map[string]string) {
	for _, id := range order {
		r := rules[id]
		if r.PortalTargetRaw == "" {
			r.EffectiveParentID = r.TreeParentID
			continue
		}
		if pid, ok := resolvePortalTarget(rules, selectorToID, r.PortalTargetRaw); ok {
			r.PortalTargetID = pid
			r.EffectiveParentID = pid
			continue
		}
		r.EffectiveParentID = ""
		r.Warnings = append(r.Warnings, Warning{
			Kind:    WarnPortalMissing,
			NodeID:  id,
			Message: "portal target does not match any rule: " + r.PortalTargetRaw,
		})
	}
}

// resolvePortalTarget matches a raw portal-target identifier against, in
// order: a rule id, the selector text itself, ".<id>", "#<id>", and
// finally an alias table of lower-cased id stems (§4.4 "Portal target
// resolution").
func resolvePortalTarget(rules map[string]*Rule, selectorToID map[string]string, raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if _, ok := rules[raw]; ok {
		return raw, true
	}
	if pid, ok := selectorToID[normalizeSelector(raw)]; ok {
		return pid, true
	}
	if pid, ok := selectorToID[normalizeSelector("."+raw)]; ok {
		return pid, true
	}
	if pid, ok := selectorToID[normalizeSelector("#"+raw)]; ok {
		return pid, true
	}
	// Alias table of lower-cased id stems. Ties (ids differing only by
	// case) resolve to the lexicographically smallest id so the choice
	// is a pure function of the rule set.
	lower := strings.ToLower(raw)
	best := ""
	for rid := range rules {
		if strings.ToLower(rid) == lower && (best == "" || rid < best) {
			best = rid
		}
	}
	if best != "" {
		return best, true
	}
	return "", false
}

// ResolveContainers assigns each CONTAINER_SIZE dependency's ContainerID
// to the nearest ancestor (via the tree-parent chain, not the
// effective-parent chain) whose rule established a container boundary.
// A dependency with no qualifying ancestor gets a MISSING_CONTAINER
// warning instead (§4.4, §7).
func ResolveContainers(rules map[string]*Rule, order []string) {
	for _, id := range order {
		r := rules[id]
		for i := range r.Deps {
			d := &r.Deps[i]
			if d.Kind != DepContainerSize {
				continue
			}
			cid := nearestContainer(rules, r.TreeParentID)
			if cid == "" {
				r.Warnings = append(r.Warnings, Warning{
					Kind:     WarnMissingContainer,
					NodeID:   r.ID,
					Property: d.Property,
					Message:  "no ancestor container-type boundary for " + d.Expression,
				})
				continue
			}
			d.ContainerID = cid
		}
	}
}

func nearestContainer(rules map[string]*Rule, start string) string {
	id := start
	seen := map[string]bool{}
	for id != "" && !seen[id] {
		seen[id] = true
		r, ok := rules[id]
		if !ok {
			return ""
		}
		if r.IsContainerBoundary {
			return r.ID
		}
		id = r.TreeParentID
	}
	return ""
}
