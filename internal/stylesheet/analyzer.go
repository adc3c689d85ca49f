package stylesheet

import (
	"regexp"
	"strconv"
	"strings"
)

// Analyzer runs the full pipeline over a stylesheet source: tokenize,
// classify every declaration, build the rule graph, propagate
// contamination, and assemble the Result ready for pooling and emission
// (§4).
type Analyzer struct {
	parser *Parser
}

// NewAnalyzer builds an Analyzer around p. A nil parser gets a default,
// debug-silent one.
func NewAnalyzer(p *Parser) *Analyzer {
	if p == nil {
		p = NewParser(nil)
	}
	return &Analyzer{parser: p}
}

// Analyze runs the pipeline over src and returns the full analysis
// result.
func (a *Analyzer) Analyze(src []byte) *Result {
	return a.analyze(src, nil)
}

// AnalyzeWithExternalTokens runs the pipeline over src, merging an
// external token table (§6.5's CLI collaborator contract: "an optional
// external token table mapping custom-property names to raw values")
// into the raw token table before any value is classified. A name
// already defined by a custom-property declaration anywhere in src (the
// parser collects them under every selector) takes precedence over the
// external entry.
func (a *Analyzer) AnalyzeWithExternalTokens(src []byte, external map[string]string) *Result {
	return a.analyze(src, external)
}

func (a *Analyzer) analyze(src []byte, external map[string]string) *Result {
	ps := a.parser.Parse(src)
	for name, val := range external {
		if _, exists := ps.rawTokens[name]; exists {
			continue
		}
		ps.rawTokens[name] = val
		if !ps.tokenSeen[name] {
			ps.tokenSeen[name] = true
			ps.tokenOrder = append(ps.tokenOrder, name)
		}
	}

	rules := make(map[string]*Rule, len(ps.order))
	selectorToID := make(map[string]string, len(ps.order))
	order := make([]string, 0, len(ps.order))
	usedIDs := make(map[string]bool, len(ps.order))

	resolver := newTokenResolver(ps.rawTokens)

	for _, raw := range ps.order {
		id := assignRuleID(raw.Selector, usedIDs)
		usedIDs[id] = true

		r := &Rule{
			ID:                     id,
			Selector:               raw.Selector,
			SourceOrder:            raw.SourceOrder,
			Declarations:           make(map[string]string, len(raw.Decls)),
			NormalizedDeclarations: make(map[string]string, len(raw.Decls)),
			Hash:                   HashSelector(raw.Selector),
		}

		local := Static
		for _, d := range raw.Decls {
			if _, exists := r.Declarations[d.prop]; !exists {
				r.DeclOrder = append(r.DeclOrder, d.prop)
			}
			r.Declarations[d.prop] = d.value

			cr := ClassifyValue(d.prop, d.value, resolver)
			r.NormalizedDeclarations[d.prop] = cr.NormalizedValue
			local = local.Max(cr.Classification)

			for _, dep := range cr.Deps {
				r.AddDep(dep)
			}
			for _, w := range cr.Warnings {
				w.NodeID = id
				r.Warnings = append(r.Warnings, w)
			}
			if cr.PortalTarget != "" {
				r.PortalTargetRaw = cr.PortalTarget
			}
			if cr.ContainerBoundary {
				r.IsContainerBoundary = true
			}
		}

		if raw.MediaQuery != "" {
			mediaDeps, mediaClass := synthesizeMediaDeps(raw.MediaQuery)
			for _, dep := range mediaDeps {
				r.AddDep(dep)
			}
			local = local.Max(mediaClass)
		}

		if IsStructurallyDynamic(raw.Selector) {
			local = Nondeterministic
			r.AddDep(Dependency{Property: SentinelSelector, Kind: DepStructure, Expression: raw.Selector})
			r.Warnings = append(r.Warnings, Warning{
				Kind:    WarnStructuralDynamic,
				NodeID:  id,
				Message: "structural pseudo-class forces nondeterministic binding: " + raw.Selector,
			})
		}

		r.LocalClass = local

		rules[id] = r
		selectorToID[raw.Selector] = id
		order = append(order, id)
	}

	BuildTreeParents(rules, order, selectorToID)
	ResolvePortals(rules, order, selectorToID)
	ResolveContainers(rules, order)
	ComputeFinalClasses(rules, order)
	manifests := ComputeBoundaries(rules, order)

	res := &Result{
		Rules:     rules,
		Order:     order,
		Tokens:    buildTokenTable(ps.rawTokens, ps.tokenOrder),
		Manifests: manifests,
	}
	for _, id := range order {
		res.Warnings = append(res.Warnings, rules[id].Warnings...)
	}
	return res
}

// idSanitizeRE strips everything but identifier-safe bytes from a
// selector's rightmost token when deriving a rule id.
var idSanitizeRE = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

func sanitizeID(s string) string {
	s = idSanitizeRE.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// assignRuleID derives a rule's stable identifier from the rightmost
// compound selector segment, appending a deterministic numeric suffix
// on collision (§4.1).
func assignRuleID(selector string, used map[string]bool) string {
	base := sanitizeID(rightmostToken(selector))
	if base == "" {
		base = "rule"
	}
	if !used[base] {
		return base
	}
	for n := 2; ; n++ {
		candidate := base + "_" + strconv.Itoa(n)
		if !used[candidate] {
			return candidate
		}
	}
}

// synthesizeMediaDeps derives the synthetic dependencies an @media
// condition implies: a VIEWPORT dep for width/height/orientation/
// resolution features, a USER_PREF dep for prefers-*/forced-colors/
// inverted-colors features (§4.2 "media query synthesis").
func synthesizeMediaDeps(mediaQuery string) ([]Dependency, Class) {
	var deps []Dependency
	class := Static
	if mediaViewportRE.MatchString(mediaQuery) {
		deps = append(deps, Dependency{Property: SentinelMedia, Kind: DepViewport, Expression: mediaQuery})
		class = Deterministic
	}
	if mediaUserPrefRE.MatchString(mediaQuery) {
		deps = append(deps, Dependency{Property: mediaQuery, Kind: DepUserPref, Expression: mediaQuery})
		class = Deterministic
	}
	return deps, class
}
