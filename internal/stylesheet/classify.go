package stylesheet

import (
	"regexp"
	"strings"
)

// vendorPrefixRE matches vendor-prefixed property names, which are
// treated as opaque strings (§4.2): no deps are emitted regardless of
// their percentage content.
var vendorPrefixRE = regexp.MustCompile(`(?i)^-(webkit|moz|ms)-`)

func isVendorPrefixed(property string) bool {
	return vendorPrefixRE.MatchString(property)
}

// unitRE matches a number immediately followed by one of the recognized
// CSS units. A letter unit must end at a word boundary, so the order of
// the alternatives does not change which unit matches. The word boundary
// applies to the letter units only: "%" is not a word character, so
// "50%" at the end of a value would never match a trailing \b.
var unitRE = regexp.MustCompile(`(?i)(-?[0-9]*\.?[0-9]+)((?:svmin|svmax|lvmin|lvmax|dvmin|dvmax|vmin|vmax|svw|svh|svi|svb|lvw|lvh|lvi|lvb|dvw|dvh|dvi|dvb|vw|vh|vi|vb|rem|rex|rch|rcap|ric|rlh|em|ex|ch|cap|ic|lh|cqmin|cqmax|cqw|cqh|cqi|cqb)\b|%)`)

func unitKind(unit string) (DepKind, bool) {
	switch strings.ToLower(unit) {
	case "%":
		return DepParentSize, true
	case "vw", "vh", "vi", "vb", "vmin", "vmax",
		"svw", "svh", "svi", "svb", "svmin", "svmax",
		"lvw", "lvh", "lvi", "lvb", "lvmin", "lvmax",
		"dvw", "dvh", "dvi", "dvb", "dvmin", "dvmax":
		return DepViewport, true
	case "em", "rem", "ex", "rex", "ch", "rch", "cap", "rcap", "ic", "ric", "lh", "rlh":
		return DepFontMetrics, true
	case "cqw", "cqh", "cqi", "cqb", "cqmin", "cqmax":
		return DepContainerSize, true
	default:
		return 0, false
	}
}

var envRE = regexp.MustCompile(`(?i)\benv\([^)]*\)`)
var varRE = regexp.MustCompile(`(?i)var\(\s*(--[a-zA-Z0-9_-]+)\s*(?:,\s*(.*))?\)`)
var intrinsicRE = regexp.MustCompile(`(?i)\b(min-content|max-content|fit-content|stretch)\b`)
var mathFuncRE = regexp.MustCompile(`(?i)\b(calc|min|max|clamp)\(`)
var absoluteLenRE = regexp.MustCompile(`(?i)-?[0-9]*\.?[0-9]+(px|cm|mm|in|pt|pc|q)\b`)

// opaqueColorFuncRE matches the opening of an opaque color function whose
// percentage arguments are color channels, not size percentages.
var opaqueColorFuncRE = regexp.MustCompile(`(?i)\b(rgba?|hsla?|hwb|lab|lch|oklch|oklab|color-mix|color|light-dark)\(`)

// span is a half-open byte range.
type span struct{ start, end int }

// opaqueColorSpans returns the byte ranges of opaque-color-function
// argument lists within value, used to suppress percentage-based
// PARENT_SIZE deps that are really color channels.
func opaqueColorSpans(value string) []span {
	var spans []span
	for _, m := range opaqueColorFuncRE.FindAllStringIndex(value, -1) {
		depth := 1
		i := m[1]
		for i < len(value) && depth > 0 {
			switch value[i] {
			case '(':
				depth++
			case ')':
				depth--
			}
			i++
		}
		spans = append(spans, span{start: m[1], end: i})
	}
	return spans
}

func withinSpans(pos int, spans []span) bool {
	for _, s := range spans {
		if pos >= s.start && pos < s.end {
			return true
		}
	}
	return false
}

// collectUnitDeps scans value for unit-based (%, viewport, font-metric,
// container), env(), and intrinsic-size-keyword dependencies. var() is
// handled separately by the caller (it needs chain resolution). When
// exprOverride is non-empty it replaces every returned Dependency's
// Expression — used when a dep is being unioned in through a var() chain
// (§4.3: "attach each with sentinel expression var(--name)").
func collectUnitDeps(property, value, exprOverride string) []Dependency {
	var deps []Dependency
	colorSpans := opaqueColorSpans(value)

	for _, m := range unitRE.FindAllStringSubmatchIndex(value, -1) {
		unit := value[m[4]:m[5]]
		kind, ok := unitKind(unit)
		if !ok {
			continue
		}
		if kind == DepParentSize && withinSpans(m[4], colorSpans) {
			continue
		}
		expr := value[m[2]:m[5]]
		if exprOverride != "" {
			expr = exprOverride
		}
		deps = append(deps, Dependency{Property: property, Kind: kind, Expression: expr})
	}

	for _, m := range envRE.FindAllString(value, -1) {
		expr := m
		if exprOverride != "" {
			expr = exprOverride
		}
		deps = append(deps, Dependency{Property: property, Kind: DepEnv, Expression: expr})
	}

	if m := intrinsicRE.FindString(value); m != "" {
		expr := m
		if exprOverride != "" {
			expr = exprOverride
		}
		deps = append(deps, Dependency{Property: property, Kind: DepIntrinsicSize, Expression: expr})
	}

	return deps
}

// ClassifyResult is the per-declaration classifier output (§4.2).
type ClassifyResult struct {
	Classification  Class
	Deps            []Dependency
	NormalizedValue string
	Warnings        []Warning

	PortalTarget      string
	ContainerBoundary bool
}

// ClassifyValue classifies one declaration's raw value, resolving any
// var() chains against resolver. The property name is not assumed to be
// lower-cased; comparisons are case-insensitive where it matters
// (vendor prefixes, function/keyword names).
func ClassifyValue(property, rawValue string, resolver *tokenResolver) ClassifyResult {
	norm := normalizeValue(rawValue)
	res := ClassifyResult{NormalizedValue: norm}

	lowerProp := strings.ToLower(property)
	if lowerProp == "portal_id" || lowerProp == "portal-id" {
		res.PortalTarget = strings.TrimSpace(rawValue)
	}
	if lowerProp == "container-type" {
		lv := strings.ToLower(rawValue)
		if strings.Contains(lv, "inline-size") || strings.Contains(lv, "size") {
			res.ContainerBoundary = true
		}
	}

	if isVendorPrefixed(property) {
		return res
	}

	nonTheme := false

	deps := collectUnitDeps(property, rawValue, "")
	if len(deps) > 0 {
		nonTheme = true
	}
	res.Deps = append(res.Deps, deps...)

	for _, vm := range varRE.FindAllStringSubmatch(rawValue, -1) {
		full, name := vm[0], strings.TrimPrefix(vm[1], "--")
		fallback := vm[2]
		hasFallback := len(vm) > 2 && strings.Contains(full, ",")
		res.Deps = append(res.Deps, Dependency{Property: property, Kind: DepTheme, Expression: full})
		if resolver != nil {
			extra, warnings := resolver.resolve(property, name, fallback, hasFallback)
			res.Deps = append(res.Deps, extra...)
			res.Warnings = append(res.Warnings, warnings...)
			if len(extra) > 0 {
				nonTheme = true
			}
		}
	}

	if mathFuncRE.MatchString(rawValue) && nonTheme && absoluteLenRE.MatchString(rawValue) {
		res.Warnings = append(res.Warnings, Warning{
			Kind:    WarnMixedOperands,
			Message: "math function mixes absolute and runtime operands: " + rawValue,
		})
	}

	if nonTheme {
		res.Classification = Deterministic
	} else {
		res.Classification = Static
	}
	return res
}

// structuralPseudoRE matches the structural pseudo-classes that force a
// selector's local classification to nondeterministic (§4.2).
var structuralPseudoRE = regexp.MustCompile(`(?i):(nth-child|nth-last-child|nth-of-type|nth-last-of-type|first-child|last-child|only-child|has|empty)\b`)

// IsStructurallyDynamic reports whether selector contains a structural
// pseudo-class.
func IsStructurallyDynamic(selector string) bool {
	return structuralPseudoRE.MatchString(selector)
}

// mediaViewportRE / mediaUserPrefRE detect which synthetic media
// dependency kinds a media query's condition text implies (§4.2 "Media
// query synthesis").
var mediaViewportRE = regexp.MustCompile(`(?i)(min-width|max-width|min-height|max-height|min-aspect-ratio|max-aspect-ratio|device-width|device-height|orientation|resolution)`)
var mediaUserPrefRE = regexp.MustCompile(`(?i)(prefers-[a-z-]+|forced-colors|inverted-colors)`)
