package stylesheet

// tokenResolver resolves var(--name[, fallback]) references against the
// raw custom-property table collected during parsing (§4.3). It carries
// the dedup state for UNRESOLVED_TOKEN warnings, which are emitted at
// most once per (token_name, referenced_token) pair across the whole
// analysis.
type tokenResolver struct {
	raw            map[string]string
	unresolvedSeen map[[2]string]bool
}

func newTokenResolver(raw map[string]string) *tokenResolver {
	return &tokenResolver{
		raw:            raw,
		unresolvedSeen: make(map[[2]string]bool),
	}
}

// resolve handles one var(--name[, fallback]) occurrence found while
// classifying property's raw value. It returns the additional
// dependencies contributed by resolution (beyond the unconditional
// THEME dep the caller already attached) and any warnings.
func (tr *tokenResolver) resolve(property, name, fallback string, hasFallback bool) ([]Dependency, []Warning) {
	visiting := map[string]bool{}
	leaf, missing, cyclic := tr.chase(name, visiting)
	sentinel := "var(--" + name + ")"

	switch {
	case cyclic:
		return nil, []Warning{{
			Kind:      WarnTokenCycle,
			TokenName: name,
			Message:   "cyclic var() chain starting at --" + name,
		}}

	case missing != "":
		if !hasFallback {
			return nil, []Warning{{
				Kind:            WarnUndefinedToken,
				TokenName:       name,
				ReferencedToken: missing,
				Message:         "custom property --" + missing + " is never defined",
			}}
		}
		var warnings []Warning
		key := [2]string{name, missing}
		if !tr.unresolvedSeen[key] {
			tr.unresolvedSeen[key] = true
			warnings = append(warnings, Warning{
				Kind:            WarnUnresolvedToken,
				TokenName:       name,
				ReferencedToken: missing,
				Message:         "--" + missing + " is undefined; falling back to declared default",
			})
		}
		return collectUnitDeps(property, fallback, sentinel), warnings

	default:
		return collectUnitDeps(property, leaf, sentinel), nil
	}
}

// chase follows the var() indirection chain rooted at --name, returning
// either the ultimate non-pointer leaf raw value, the name of the first
// custom property in the chain that is undefined, or cyclic=true if a
// cycle was detected while following indirections.
func (tr *tokenResolver) chase(name string, visiting map[string]bool) (leaf, missing string, cyclic bool) {
	key := "--" + name
	if visiting[key] {
		return "", "", true
	}
	visiting[key] = true

	raw, ok := tr.raw[key]
	if !ok {
		return "", name, false
	}

	m := varRE.FindStringSubmatch(raw)
	if m == nil {
		return raw, "", false
	}
	inner := m[1]
	inner = inner[2:] // strip leading "--"
	return tr.chase(inner, visiting)
}

// buildTokenTable flattens the raw custom-property table collected by the
// parser into the TokenTable shape consumed downstream (§4.3's flattened
// representation: every token's resolved leaf value, plus a pointer to
// the ultimate absolute token name for pure indirections).
func buildTokenTable(raw map[string]string, order []string) TokenTable {
	table := make(TokenTable, len(raw))
	for _, name := range order {
		key := name
		rawVal := raw[key]
		visiting := map[string]bool{}
		leaf, missing, cyclic := (&tokenResolver{raw: raw}).chase(key[2:], visiting)
		rec := TokenRecord{Raw: rawVal}
		switch {
		case cyclic:
			rec.Resolved = rawVal
		case missing != "":
			rec.Resolved = ""
		default:
			rec.Resolved = leaf
			if m := varRE.FindStringSubmatch(rawVal); m != nil {
				rec.PointerTo = pointerTarget(raw, rawVal)
			}
		}
		table[key] = rec
	}
	return table
}

// pointerTarget follows the first var() reference of each hop, starting
// from the raw value start, and returns the name of the last token
// reached: the one whose raw value holds no var() reference. Literal
// content beside a var() reference does not stop the walk. A chain that
// reaches an undefined name returns that name; a cycle returns "".
func pointerTarget(raw map[string]string, start string) string {
	visiting := map[string]bool{}
	cur := start
	name := ""
	for {
		m := varRE.FindStringSubmatch(cur)
		if m == nil {
			return name
		}
		candidate := m[1]
		if visiting[candidate] {
			return ""
		}
		visiting[candidate] = true
		name = candidate
		next, ok := raw[candidate]
		if !ok {
			return candidate
		}
		cur = next
	}
}
