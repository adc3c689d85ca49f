package codec

import (
	"encoding/binary"
	"sort"

	"github.com/somc-project/somc/internal/pool"
	"github.com/somc-project/somc/internal/stylesheet"
)

// indexEntry is one row of the dynamic index: a BOUNDARY_MARKER or
// NONDETERMINISTIC record's hash, selector ref, and byte offset into
// the dynamic tier (§4.7).
type indexEntry struct {
	hash        uint32
	selectorRef uint32
	offset      uint32
}

// dynamicRules returns every non-static rule ordered by selector hash
// ascending, ties broken by selector string (§4.7).
func dynamicRules(res *stylesheet.Result) []*stylesheet.Rule {
	var rules []*stylesheet.Rule
	for _, id := range res.Order {
		r := res.Rules[id]
		if r.EmitType != stylesheet.EmitResolvedStyleBlock {
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

// themeDependencyPresent reports whether any member of the boundary's
// subgraph declared a THEME dependency before the manifest's own THEME
// exclusion (§4.5, §4.7 flag bit 1).
func themeDependencyPresent(res *stylesheet.Result, m *stylesheet.BoundaryManifest) bool {
	for _, id := range m.SubgraphIDs {
		for _, d := range res.Rules[id].Deps {
			if d.Kind == stylesheet.DepTheme {
				return true
			}
		}
	}
	return false
}

func encodeBoundaryMarker(res *stylesheet.Result, r *stylesheet.Rule, m *stylesheet.BoundaryManifest, p *pool.Pool) []byte {
	depCount := len(m.Entries)
	if depCount > 255 {
		depCount = 255
	}
	subCount := len(m.SubgraphIDs)
	if subCount > 65535 {
		subCount = 65535
	}

	var flags byte
	if m.PortalDependency {
		flags |= FlagPortalDependency
	}
	if themeDependencyPresent(res, m) {
		flags |= FlagThemeDependency
	}

	out := make([]byte, 12, 12+depCount*8+subCount*4)
	out[0] = RecordBoundaryMarker
	binary.LittleEndian.PutUint32(out[1:5], r.Hash)
	putUint24(out[5:8], p.Ref(r.Selector))
	out[8] = byte(depCount)
	out[9] = flags
	binary.LittleEndian.PutUint16(out[10:12], uint16(subCount))

	for i := 0; i < depCount; i++ {
		d := m.Entries[i]
		entry := make([]byte, 8)
		entry[0] = byte(d.Kind)
		putUint24(entry[1:4], p.Ref(d.Property))
		var containerHash uint32
		if d.ContainerID != "" {
			if cr, ok := res.Rules[d.ContainerID]; ok {
				containerHash = cr.Hash
			}
		}
		binary.LittleEndian.PutUint32(entry[4:8], containerHash)
		out = append(out, entry...)
	}

	for i := 0; i < subCount; i++ {
		sr, ok := res.Rules[m.SubgraphIDs[i]]
		var h uint32
		if ok {
			h = sr.Hash
		}
		hb := make([]byte, 4)
		binary.LittleEndian.PutUint32(hb, h)
		out = append(out, hb...)
	}
	return out
}

func encodeRuleSet(r *stylesheet.Rule, res *stylesheet.Result, p *pool.Pool) []byte {
	entries := propEntriesFor(r, p)
	var boundaryHash uint32
	if br, ok := res.Rules[r.BoundaryID]; ok {
		boundaryHash = br.Hash
	}

	out := make([]byte, 13, 13+len(entries)*6)
	out[0] = RecordRuleSet
	binary.LittleEndian.PutUint32(out[1:5], r.Hash)
	putUint24(out[5:8], p.Ref(r.Selector))
	out[8] = byte(len(entries))
	binary.LittleEndian.PutUint32(out[9:13], boundaryHash)
	out = append(out, encodePropEntries(entries)...)
	return out
}

func encodeNondeterministic(r *stylesheet.Rule, p *pool.Pool) []byte {
	out := make([]byte, 9)
	out[0] = RecordNondeterministic
	binary.LittleEndian.PutUint32(out[1:5], r.Hash)
	putUint24(out[5:8], p.Ref(r.Selector))
	var flags byte
	if r.PortalTargetRaw != "" {
		flags |= FlagPortalDependency
	}
	out[8] = flags
	return out
}

// buildDynamicTier serializes every non-static rule's record in
// selector-hash order and returns the concatenated tier bytes along
// with the index entries for its BOUNDARY_MARKER and NONDETERMINISTIC
// records (§4.7: "RULE_SET records are reachable only through their
// boundary's subgraph list").
func buildDynamicTier(res *stylesheet.Result, p *pool.Pool) ([]byte, []indexEntry) {
	var tier []byte
	var index []indexEntry

	for _, r := range dynamicRules(res) {
		offset := uint32(len(tier))
		var rec []byte
		switch r.EmitType {
		case stylesheet.EmitDynamicBoundary:
			m := res.Manifests[r.ID]
			rec = encodeBoundaryMarker(res, r, m, p)
			index = append(index, indexEntry{hash: r.Hash, selectorRef: p.Ref(r.Selector), offset: offset})
		case stylesheet.EmitRuleSet:
			rec = encodeRuleSet(r, res, p)
		case stylesheet.EmitNondeterministic:
			rec = encodeNondeterministic(r, p)
			index = append(index, indexEntry{hash: r.Hash, selectorRef: p.Ref(r.Selector), offset: offset})
		}
		tier = append(tier, rec...)
	}
	return tier, index
}

// buildDynamicIndex serializes the dynamic index section: a 12-byte
// header (magic "SOMD", count u32, size u32) followed by 11-byte
// entries (§4.7, §6.1).
func buildDynamicIndex(entries []indexEntry) []byte {
	body := make([]byte, len(entries)*dynIndexEntrySize)
	for i, e := range entries {
		off := i * dynIndexEntrySize
		binary.LittleEndian.PutUint32(body[off:off+4], e.hash)
		putUint24(body[off+4:off+7], e.selectorRef)
		binary.LittleEndian.PutUint32(body[off+7:off+11], e.offset)
	}

	out := make([]byte, dynIndexHeaderSize, dynIndexHeaderSize+len(body))
	copy(out[0:4], dynIndexMagic[:])
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(entries)))
	binary.LittleEndian.PutUint32(out[8:12], uint32(len(body)))
	out = append(out, body...)
	return out
}
