package codec

import (
	"fmt"
	"sort"
	"strings"

	"github.com/somc-project/somc/internal/stylesheet"
)

// FallbackMapEntry is one row of the fallback map (§6.3): the lower-case
// hex hash of a NONDETERMINISTIC rule's selector, and the selector text
// itself.
type FallbackMapEntry struct {
	Hash     string
	Selector string
}

// nondeterministicRules returns every rule whose EmitType is
// EmitNondeterministic, ordered by selector hash ascending with ties
// broken by selector string lexicographic order (§6.2, §6.3).
func nondeterministicRules(res *stylesheet.Result) []*stylesheet.Rule {
	var rules []*stylesheet.Rule
	for _, id := range res.Order {
		if r := res.Rules[id]; r.EmitType == stylesheet.EmitNondeterministic {
			rules = append(rules, r)
		}
	}
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Hash != rules[j].Hash {
			return rules[i].Hash < rules[j].Hash
		}
		return rules[i].Selector < rules[j].Selector
	})
	return rules
}

// FallbackText renders the textual fallback artifact (§6.2): every
// NONDETERMINISTIC rule, with its merged declarations in insertion
// order, ordered by selector hash ascending (ties by selector text).
func FallbackText(res *stylesheet.Result) string {
	var b strings.Builder
	for _, r := range nondeterministicRules(res) {
		b.WriteString(r.Selector)
		b.WriteString(" {\n")
		for _, name := range r.DeclOrder {
			fmt.Fprintf(&b, "  %s: %s;\n", name, r.Declarations[name])
		}
		b.WriteString("}\n")
	}
	return b.String()
}

// FallbackMap builds the hash -> selector lookup (§6.3), in the same
// order as FallbackText.
func FallbackMap(res *stylesheet.Result) []FallbackMapEntry {
	rules := nondeterministicRules(res)
	entries := make([]FallbackMapEntry, 0, len(rules))
	for _, r := range rules {
		entries = append(entries, FallbackMapEntry{
			Hash:     fmt.Sprintf("0x%x", r.Hash),
			Selector: r.Selector,
		})
	}
	return entries
}

// ToMap collapses the ordered entry list into a plain map for O(1)
// lookup once ordering no longer matters to the caller.
func ToMap(entries []FallbackMapEntry) map[string]string {
	m := make(map[string]string, len(entries))
	for _, e := range entries {
		m[e.Hash] = e.Selector
	}
	return m
}
