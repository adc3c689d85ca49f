// Package pool implements the compiler's constant pool (§4.6): a
// two-phase string interner whose finalized encoding is a pure function
// of its contents, independent of the order strings were discovered in
// during analysis.
package pool

import (
	"fmt"
	"sort"
)

// NullRef is the sentinel reference value meaning "no string", used
// wherever a record field would otherwise point into the pool.
const NullRef uint32 = 0xFFFFFF

// MaxEntries is the largest number of distinct strings a pool may hold
// (NullRef is reserved, so indices run from 0 to at most NullRef-2).
const MaxEntries = int(NullRef - 1)

// MaxStringBytes is the largest a single interned string may be.
const MaxStringBytes = 65535

// seedVocabulary is the fixed list of common property names interned
// unconditionally into every pool, so that reference indices stay
// stable across incremental changes that add or remove individual
// property uses elsewhere in the source (§4.6).
var seedVocabulary = []string{
	"align-content", "align-items", "align-self", "background", "background-color",
	"background-image", "background-position", "background-size", "border", "border-color",
	"border-radius", "border-style", "border-width", "bottom", "box-shadow",
	"box-sizing", "color", "container-type", "content", "cursor",
	"display", "fill", "flex", "flex-basis", "flex-direction",
	"flex-grow", "flex-shrink", "flex-wrap", "font-family", "font-size",
	"font-style", "font-weight", "gap", "grid-column", "grid-row",
	"grid-template-columns", "grid-template-rows", "height", "justify-content", "left",
	"letter-spacing", "line-height", "margin", "margin-bottom", "margin-left",
	"margin-right", "margin-top", "max-height", "max-width", "min-height",
	"min-width", "opacity", "outline", "overflow", "padding",
	"padding-bottom", "padding-left", "padding-right", "padding-top", "position",
	"right", "stroke", "text-align", "text-decoration", "text-transform",
	"top", "transform", "transition", "vertical-align", "visibility",
	"white-space", "width", "z-index",
}

// Pool interns strings during analysis and, once Finalize is called,
// assigns each a stable reference index equal to its position in the
// lexicographically sorted string table.
type Pool struct {
	seen      map[string]bool
	refs      map[string]uint32
	entries   []string
	finalized bool
}

// New builds an empty Pool, pre-seeded with the fixed property-name
// vocabulary (§4.6).
func New() *Pool {
	p := &Pool{
		seen: make(map[string]bool),
		refs: make(map[string]uint32),
	}
	for _, s := range seedVocabulary {
		p.Intern(s)
	}
	return p
}

// Intern registers s for inclusion in the pool. Calling it again with a
// string already seen is a no-op. Intern panics if called after
// Finalize, since finalization fixes the string table's byte layout.
func (p *Pool) Intern(s string) {
	if p.finalized {
		panic("pool: Intern called after Finalize")
	}
	if s == "" {
		return
	}
	if !p.seen[s] {
		p.seen[s] = true
		p.entries = append(p.entries, s)
	}
}

// Finalize sorts every interned string lexicographically by byte value
// and assigns it a stable reference index. Idempotent. Panics if the
// pool holds more than MaxEntries strings or any string exceeds
// MaxStringBytes — both are emitter-invariant violations (§4.6, §7)
// that should never occur for realistic stylesheet input.
func (p *Pool) Finalize() {
	if p.finalized {
		return
	}
	if len(p.entries) > MaxEntries {
		panic(fmt.Sprintf("pool: %d entries exceeds the %d-entry limit", len(p.entries), MaxEntries))
	}
	for _, s := range p.entries {
		if len(s) > MaxStringBytes {
			panic(fmt.Sprintf("pool: entry of %d bytes exceeds the %d-byte limit", len(s), MaxStringBytes))
		}
	}
	sort.Strings(p.entries)
	for i, s := range p.entries {
		p.refs[s] = uint32(i)
	}
	p.finalized = true
}

// Ref returns s's reference index. The empty string, and any string
// never interned, resolves to NullRef. Ref panics if called with a
// non-empty string before Finalize, since indices are only assigned then.
func (p *Pool) Ref(s string) uint32 {
	if s == "" {
		return NullRef
	}
	if !p.finalized {
		panic("pool: Ref called before Finalize")
	}
	if ref, ok := p.refs[s]; ok {
		return ref
	}
	return NullRef
}

// Entries returns the finalized, sorted string table. Callers must not
// mutate the returned slice.
func (p *Pool) Entries() []string {
	return p.entries
}

// Len returns the number of distinct strings in the pool.
func (p *Pool) Len() int {
	return len(p.entries)
}

// Lookup returns the string at reference index ref, or "" with ok=false
// for NullRef or an out-of-range index (used by the loader, §4.8).
func Lookup(entries []string, ref uint32) (string, bool) {
	if ref == NullRef || int(ref) >= len(entries) {
		return "", false
	}
	return entries[ref], true
}
