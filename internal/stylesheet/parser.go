package stylesheet

import (
	"strings"

	"go.uber.org/zap"
)

// declEntry is one raw property/value pair in source order.
type declEntry struct {
	prop  string
	value string
}

// RawRule is a single canonical selector's accumulated raw declarations,
// as produced by the tokenizer/rule parser before classification.
type RawRule struct {
	Selector    string
	MediaQuery  string
	SourceOrder int
	Decls       []declEntry
}

// parsed is the parser's output: raw rules keyed by selector and in
// source order, plus the raw custom-property table (last value wins) and
// the order in which each custom property was first observed.
type parsed struct {
	bySelector map[string]*RawRule
	order      []*RawRule

	rawTokens  map[string]string
	tokenOrder []string
	tokenSeen  map[string]bool
}

func newParsed() *parsed {
	return &parsed{
		bySelector: make(map[string]*RawRule),
		rawTokens:  make(map[string]string),
		tokenSeen:  make(map[string]bool),
	}
}

func (ps *parsed) ruleFor(sel, media string, order *int) *RawRule {
	r, ok := ps.bySelector[sel]
	if !ok {
		r = &RawRule{Selector: sel, SourceOrder: *order}
		*order++
		ps.bySelector[sel] = r
		ps.order = append(ps.order, r)
	}
	if media != "" {
		r.MediaQuery = media
	}
	return r
}

// Parser is the tokenizer / rule parser (§4.1). It never raises on
// malformed input: unterminated blocks and stray braces are tolerated by
// falling through to end-of-input, and the emitted rule set reflects
// whatever parsed cleanly.
type Parser struct {
	log *zap.Logger
}

// NewParser builds a Parser. A nil logger disables debug tracing.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("stylesheet-parser")}
}

// Parse tokenizes src into the raw rule set and raw token table.
func (p *Parser) Parse(src []byte) *parsed {
	text := stripComments(string(src))
	ps := newParsed()
	order := 0
	p.processBody(text, nil, "", ps, &order)
	p.log.Debug("parsed stylesheet", zap.Int("rules", len(ps.order)), zap.Int("tokens", len(ps.tokenOrder)))
	return ps
}

// processBody walks one block's body (or the whole file, at the top
// level), dispatching each top-level statement to a declaration, an
// at-rule, or a nested rule expanded against the current selector list.
func (p *Parser) processBody(body string, selectors []string, media string, out *parsed, order *int) {
	for _, st := range splitTopLevel(body) {
		prelude := strings.TrimSpace(st.prelude)

		if !st.isBlock {
			if prelude == "" {
				continue
			}
			prop, val, ok := splitDeclaration(prelude)
			if !ok {
				continue
			}
			p.applyDeclaration(selectors, prop, val, media, out, order)
			continue
		}

		if strings.HasPrefix(prelude, "@") {
			p.handleAtRule(prelude, st.body, selectors, media, out, order)
			continue
		}

		innerList := splitSelectorList(prelude)
		var expanded []string
		if len(selectors) == 0 {
			for _, sel := range innerList {
				if n := normalizeSelector(sel); n != "" {
					expanded = append(expanded, n)
				}
			}
		} else {
			expanded = expandNesting(selectors, innerList)
		}
		if len(expanded) == 0 {
			continue
		}
		p.processBody(st.body, expanded, media, out, order)
	}
}

// handleAtRule dispatches an at-rule block per §4.1: @media wraps its
// body with a combined condition; @layer/@supports are transparent;
// @keyframes/@font-face/@import are parsed for safety only (their bodies
// never lift rules into the output).
func (p *Parser) handleAtRule(prelude, body string, selectors []string, media string, out *parsed, order *int) {
	name, condition := splitAtRuleName(prelude)
	switch name {
	case "@media":
		newMedia := condition
		if media != "" && condition != "" {
			newMedia = media + " and " + condition
		} else if media != "" {
			newMedia = media
		}
		p.processBody(body, selectors, newMedia, out, order)
	case "@layer", "@supports":
		p.processBody(body, selectors, media, out, order)
	case "@keyframes", "@import", "@font-face":
		// Parsed above via splitTopLevel/findMatchingBrace for safety;
		// inner blocks are intentionally not lifted to rules.
		return
	default:
		return
	}
}

// splitAtRuleName separates the at-rule keyword (e.g. "@media") from its
// condition text.
func splitAtRuleName(prelude string) (name, condition string) {
	i := strings.IndexAny(prelude, " \t\n\r(")
	if i < 0 {
		return strings.ToLower(prelude), ""
	}
	name = strings.ToLower(prelude[:i])
	condition = strings.TrimSpace(prelude[i:])
	return name, condition
}

// expandNesting expands native nesting: "&" is replaced by the parent
// selector; preludes starting with a combinator, and bare preludes, are
// both concatenated with a space after the parent. The cartesian product
// over parent-list × inner-list is returned.
func expandNesting(parents, inner []string) []string {
	var out []string
	for _, parent := range parents {
		for _, raw := range inner {
			in := strings.TrimSpace(raw)
			if in == "" {
				continue
			}
			var combined string
			if strings.Contains(in, "&") {
				combined = strings.ReplaceAll(in, "&", parent)
			} else {
				combined = parent + " " + in
			}
			if n := normalizeSelector(combined); n != "" {
				out = append(out, n)
			}
		}
	}
	return out
}

// applyDeclaration records prop:val on every selector in selectors, and,
// when prop is a custom property, on the raw token table (the synthetic
// universal selector the token resolver consults).
func (p *Parser) applyDeclaration(selectors []string, prop, val string, media string, out *parsed, order *int) {
	if strings.HasPrefix(prop, "--") {
		out.rawTokens[prop] = val
		if !out.tokenSeen[prop] {
			out.tokenSeen[prop] = true
			out.tokenOrder = append(out.tokenOrder, prop)
		}
	}
	if len(selectors) == 0 {
		return
	}
	for _, sel := range selectors {
		r := out.ruleFor(sel, media, order)
		r.Decls = append(r.Decls, declEntry{prop: prop, value: val})
	}
}
