// Package codec implements the deterministic binary emitter (§4.7) that
// turns an analyzed stylesheet.Result into the self-describing BSOM
// artifact, plus the textual fallback and summary record the runtime and
// CLI collaborators consume (§6.2-§6.4).
package codec

import (
	"encoding/binary"
	"strings"

	"github.com/somc-project/somc/internal/pool"
	"github.com/somc-project/somc/internal/stylesheet"
)

// Record type tags for the dynamic tier (§4.7).
const (
	RecordBoundaryMarker    byte = 0x01
	RecordRuleSet           byte = 0x02
	RecordNondeterministic  byte = 0x03
)

// Dynamic record flag bits.
const (
	FlagPortalDependency = 1 << 0
	FlagThemeDependency   = 1 << 1
)

var (
	fileMagic     = [4]byte{0x42, 0x53, 0x4F, 0x4D} // "BSOM"
	staticMagic   = [4]byte{0x53, 0x4F, 0x4D, 0x53} // "SOMS"
	dynIndexMagic = [4]byte{0x53, 0x4F, 0x4D, 0x44} // "SOMD"
)

const (
	fileHeaderSize     = 16
	staticHeaderSize   = 12
	dynIndexHeaderSize = 12
	dynIndexEntrySize  = 11
)

func putUint24(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
}

func getUint24(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}

// isCustomProperty reports whether a declaration's property name is a
// custom property (begins with "--"), which the static and dynamic
// tiers never carry (§4.7 "custom-property declarations are omitted").
func isCustomProperty(name string) bool {
	return strings.HasPrefix(name, "--")
}

// propEntry is a (name_ref, value_ref) pair ready for sorting and
// encoding, shared by static and RULE_SET records.
type propEntry struct {
	nameRef  uint32
	valueRef uint32
}

// internAll seeds the pool with everything each rule contributes to the
// binary artifact: its own selector, and (for tiers that carry
// properties) every non-custom-property name and normalized value, plus
// every manifest entry's property name.
func internAll(res *stylesheet.Result, p *pool.Pool) {
	for _, id := range res.Order {
		r := res.Rules[id]
		p.Intern(r.Selector)
		if r.EmitType == stylesheet.EmitNondeterministic {
			continue
		}
		for _, name := range r.DeclOrder {
			if isCustomProperty(name) {
				continue
			}
			p.Intern(name)
			p.Intern(r.NormalizedDeclarations[name])
		}
	}
	for _, m := range res.Manifests {
		for _, d := range m.Entries {
			p.Intern(d.Property)
		}
	}
}

// propEntriesFor builds the sorted, pool-ref property list for a rule's
// non-custom-property declarations, clamped to 255 entries (§4.7).
func propEntriesFor(r *stylesheet.Rule, p *pool.Pool) []propEntry {
	var entries []propEntry
	for _, name := range r.DeclOrder {
		if isCustomProperty(name) {
			continue
		}
		entries = append(entries, propEntry{
			nameRef:  p.Ref(name),
			valueRef: p.Ref(r.NormalizedDeclarations[name]),
		})
	}
	sortPropEntries(entries)
	if len(entries) > 255 {
		entries = entries[:255]
	}
	return entries
}

func sortPropEntries(entries []propEntry) {
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j-1].nameRef > entries[j].nameRef; j-- {
			entries[j-1], entries[j] = entries[j], entries[j-1]
		}
	}
}

func encodePropEntries(entries []propEntry) []byte {
	out := make([]byte, len(entries)*6)
	for i, e := range entries {
		off := i * 6
		putUint24(out[off:off+3], e.nameRef)
		putUint24(out[off+3:off+6], e.valueRef)
	}
	return out
}

// Emit runs the full pool-intern + tier-assembly pipeline over res and
// returns the complete BSOM artifact (§4.6, §4.7, §6.1).
func Emit(res *stylesheet.Result) []byte {
	p := pool.New()
	internAll(res, p)
	p.Finalize()

	staticSection := buildStaticTier(res, p)
	dynTier, index := buildDynamicTier(res, p)
	dynIndexSection := buildDynamicIndex(index)
	poolSection := pool.Encode(p)

	out := make([]byte, 0, fileHeaderSize+len(poolSection)+len(staticSection)+len(dynIndexSection)+len(dynTier))
	out = append(out, buildFileHeader()...)
	out = append(out, poolSection...)
	out = append(out, staticSection...)
	out = append(out, dynIndexSection...)
	out = append(out, dynTier...)
	return out
}

func buildFileHeader() []byte {
	h := make([]byte, fileHeaderSize)
	copy(h[0:4], fileMagic[:])
	h[4] = 1 // version
	// h[5:8] reserved zero
	binary.LittleEndian.PutUint32(h[8:12], 0)  // flags
	binary.LittleEndian.PutUint32(h[12:16], 3) // section_count
	return h
}
