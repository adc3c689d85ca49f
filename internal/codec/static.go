package codec

import (
	"encoding/binary"
	"sort"

	"github.com/somc-project/somc/internal/pool"
	"github.com/somc-project/somc/internal/stylesheet"
)

// staticRules returns every ResolvedStyleBlock rule ordered by selector
// hash ascending, ties broken by selector string lexicographic order
// (§4.7 determinism: "all sort keys and tie-breakers must be explicit").
func staticRules(res *stylesheet.Result) []*stylesheet.Rule {
	var rules []*stylesheet.Rule
	for _, id := range res.Order {
		r := res.Rules[id]
		if r.EmitType == stylesheet.EmitResolvedStyleBlock {
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

// buildStaticTier serializes the static tier section: a 12-byte header
// (magic "SOMS", count u32, section_size u32) followed by one record per
// static rule (§4.7, §6.1).
func buildStaticTier(res *stylesheet.Result, p *pool.Pool) []byte {
	rules := staticRules(res)

	var body []byte
	for _, r := range rules {
		entries := propEntriesFor(r, p)
		rec := make([]byte, 8, 8+len(entries)*6)
		binary.LittleEndian.PutUint32(rec[0:4], r.Hash)
		putUint24(rec[4:7], p.Ref(r.Selector))
		rec[7] = byte(len(entries))
		rec = append(rec, encodePropEntries(entries)...)
		body = append(body, rec...)
	}

	out := make([]byte, staticHeaderSize, staticHeaderSize+len(body))
	copy(out[0:4], staticMagic[:])
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(rules)))
	binary.LittleEndian.PutUint32(out[8:12], uint32(len(body)))
	out = append(out, body...)
	return out
}
