// Package loader implements the read-only consumer of a compiled BSOM
// artifact (§4.8): header and section validation, pool parsing, the
// static hash map, the dynamic index, and lazy, cached dynamic record
// parsing.
package loader

import (
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/somc-project/somc/internal/codec"
	"github.com/somc-project/somc/internal/pool"
	"github.com/somc-project/somc/internal/stylesheet"
)

// Sentinel errors for the load sequence (§4.8, §7: "Loader fails loudly
// on any header or structural corruption").
var (
	ErrInvalidMagic       = fmt.Errorf("loader: invalid file magic")
	ErrUnsupportedVersion = fmt.Errorf("loader: unsupported file version")
	ErrUnknownRecordType  = fmt.Errorf("loader: unknown dynamic record type")
	ErrTruncated          = fmt.Errorf("loader: truncated or corrupt section")
)

const (
	fileHeaderSize     = 16
	staticHeaderSize   = 12
	dynIndexHeaderSize = 12
	dynIndexEntrySize  = 11
)

// PropEntry is a decoded (name_ref, value_ref) pair.
type PropEntry struct {
	NameRef  uint32
	ValueRef uint32
}

// StaticRecord is a parsed entry from the static tier.
type StaticRecord struct {
	SelectorHash uint32
	SelectorRef  uint32
	Properties   []PropEntry
}

// DepRecord is one dependency entry inside a BoundaryMarkerRecord.
type DepRecord struct {
	Kind          stylesheet.DepKind
	PropertyRef   uint32
	ContainerHash uint32
}

// BoundaryMarkerRecord is a parsed BOUNDARY_MARKER dynamic record.
type BoundaryMarkerRecord struct {
	SelectorHash uint32
	SelectorRef  uint32
	Deps         []DepRecord
	PortalDep    bool
	ThemeDep     bool
	Subgraph     []uint32 // member selector hashes, in source order
}

// RuleSetRecord is a parsed RULE_SET dynamic record.
type RuleSetRecord struct {
	SelectorHash uint32
	SelectorRef  uint32
	Properties   []PropEntry
	BoundaryHash uint32
}

// NondeterministicRecord is a parsed NONDETERMINISTIC dynamic record.
type NondeterministicRecord struct {
	SelectorHash uint32
	SelectorRef  uint32
	PortalDep    bool
}

// Stats reports the loader's view of the artifact (§4.8).
type Stats struct {
	FileSize           int
	PoolEntries        int
	StaticCount        int
	IndexedDynamicCount int
	ParseTime          time.Duration
}

type dynIndexEntry struct {
	hash        uint32
	selectorRef uint32
	offset      uint32
}

// Loader consumes an immutable byte buffer produced by codec.Emit and
// exposes validated, O(1) lookups into it (§4.8). A Loader is safe for
// concurrent reads: the dynamic record cache is guarded by a mutex, so
// at most one goroutine parses any given record and every caller
// observes an identity-equal result thereafter.
type Loader struct {
	pool []string

	staticMap map[uint32]*StaticRecord

	dynIndex map[uint32]dynIndexEntry
	dynTier  []byte

	cacheMu sync.Mutex
	cache   map[uint32]any

	log *zap.Logger

	stats Stats
}

// Load validates the artifact's header and every section in order and
// returns a Loader ready for lookups. Dynamic records are not parsed
// until first touched (§4.8 load sequence).
func Load(data []byte) (*Loader, error) {
	return LoadWithLogger(data, nil)
}

// LoadWithLogger is Load with an injectable debug logger, following the
// same nil-safe convention the parser uses. Debug output covers the load
// sequence and first-touch dynamic record parses only; lookups stay
// otherwise silent.
func LoadWithLogger(data []byte, log *zap.Logger) (*Loader, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("bsom-loader")
	start := time.Now()

	if len(data) < fileHeaderSize {
		return nil, fmt.Errorf("%w: file shorter than header", ErrTruncated)
	}
	if string(data[0:4]) != "BSOM" {
		return nil, ErrInvalidMagic
	}
	version := data[4]
	if version != 1 {
		return nil, ErrUnsupportedVersion
	}

	cursor := fileHeaderSize

	entries, consumed, err := pool.Decode(data[cursor:])
	if err != nil {
		return nil, fmt.Errorf("%w: pool: %v", ErrTruncated, err)
	}
	cursor += consumed

	staticMap, staticConsumed, err := parseStaticTier(data[cursor:])
	if err != nil {
		return nil, err
	}
	cursor += staticConsumed

	dynIndex, dynIndexConsumed, err := parseDynamicIndex(data[cursor:])
	if err != nil {
		return nil, err
	}
	cursor += dynIndexConsumed

	dynTier := data[cursor:]

	l := &Loader{
		pool:      entries,
		staticMap: staticMap,
		dynIndex:  dynIndex,
		dynTier:   dynTier,
		cache:     make(map[uint32]any),
		log:       log,
		stats: Stats{
			FileSize:            len(data),
			PoolEntries:         len(entries),
			StaticCount:         len(staticMap),
			IndexedDynamicCount: len(dynIndex),
		},
	}
	l.stats.ParseTime = time.Since(start)
	log.Debug("artifact loaded",
		zap.Int("file_size", l.stats.FileSize),
		zap.Int("pool_entries", l.stats.PoolEntries),
		zap.Int("static_records", l.stats.StaticCount),
		zap.Int("indexed_dynamic_records", l.stats.IndexedDynamicCount))
	return l, nil
}

func parseStaticTier(data []byte) (map[uint32]*StaticRecord, int, error) {
	if len(data) < staticHeaderSize {
		return nil, 0, fmt.Errorf("%w: static tier header", ErrTruncated)
	}
	if string(data[0:4]) != "SOMS" {
		return nil, 0, fmt.Errorf("%w: static tier magic", ErrInvalidMagic)
	}
	count := binary.LittleEndian.Uint32(data[4:8])
	size := binary.LittleEndian.Uint32(data[8:12])

	body := data[staticHeaderSize:]
	if uint32(len(body)) < size {
		return nil, 0, fmt.Errorf("%w: static tier body", ErrTruncated)
	}
	body = body[:size]

	out := make(map[uint32]*StaticRecord, count)
	off := 0
	for i := uint32(0); i < count; i++ {
		rec, n, err := decodeStaticRecord(body[off:])
		if err != nil {
			return nil, 0, err
		}
		out[rec.SelectorHash] = rec
		off += n
	}
	if off != len(body) {
		return nil, 0, fmt.Errorf("%w: static tier has %d trailing bytes", ErrTruncated, len(body)-off)
	}
	return out, staticHeaderSize + off, nil
}

func decodeStaticRecord(b []byte) (*StaticRecord, int, error) {
	if len(b) < 8 {
		return nil, 0, fmt.Errorf("%w: static record header", ErrTruncated)
	}
	rec := &StaticRecord{
		SelectorHash: binary.LittleEndian.Uint32(b[0:4]),
		SelectorRef:  getUint24(b[4:7]),
	}
	count := int(b[7])
	off := 8
	for i := 0; i < count; i++ {
		if off+6 > len(b) {
			return nil, 0, fmt.Errorf("%w: static record properties", ErrTruncated)
		}
		rec.Properties = append(rec.Properties, PropEntry{
			NameRef:  getUint24(b[off : off+3]),
			ValueRef: getUint24(b[off+3 : off+6]),
		})
		off += 6
	}
	return rec, off, nil
}

func parseDynamicIndex(data []byte) (map[uint32]dynIndexEntry, int, error) {
	if len(data) < dynIndexHeaderSize {
		return nil, 0, fmt.Errorf("%w: dynamic index header", ErrTruncated)
	}
	if string(data[0:4]) != "SOMD" {
		return nil, 0, fmt.Errorf("%w: dynamic index magic", ErrInvalidMagic)
	}
	count := binary.LittleEndian.Uint32(data[4:8])
	size := binary.LittleEndian.Uint32(data[8:12])

	body := data[dynIndexHeaderSize:]
	if uint32(len(body)) < size {
		return nil, 0, fmt.Errorf("%w: dynamic index body", ErrTruncated)
	}
	body = body[:size]

	out := make(map[uint32]dynIndexEntry, count)
	for i := uint32(0); i < count; i++ {
		off := int(i) * dynIndexEntrySize
		if off+dynIndexEntrySize > len(body) {
			return nil, 0, fmt.Errorf("%w: dynamic index entry %d", ErrTruncated, i)
		}
		e := dynIndexEntry{
			hash:        binary.LittleEndian.Uint32(body[off : off+4]),
			selectorRef: getUint24(body[off+4 : off+7]),
			offset:      binary.LittleEndian.Uint32(body[off+7 : off+11]),
		}
		out[e.hash] = e
	}
	return out, dynIndexHeaderSize + len(body), nil
}

func getUint24(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}

// ResolveString returns the pool string at ref, or ("", false) for
// pool.NullRef or an out-of-range index.
func (l *Loader) ResolveString(ref uint32) (string, bool) {
	return pool.Lookup(l.pool, ref)
}

// GetStaticHash returns the static record for a selector's FNV-1a-32
// hash, if present.
func (l *Loader) GetStaticHash(hash uint32) (*StaticRecord, bool) {
	r, ok := l.staticMap[hash]
	return r, ok
}

// GetStatic returns the static record for selector, if present.
func (l *Loader) GetStatic(selector string) (*StaticRecord, bool) {
	return l.GetStaticHash(stylesheet.HashSelector(selector))
}

// GetDynamicHash returns the indexed dynamic record (a
// *BoundaryMarkerRecord or *NondeterministicRecord) for hash, parsing
// and caching it on first touch. RULE_SET records are not indexed and
// are only reachable through a BoundaryMarkerRecord's Subgraph (§4.7).
func (l *Loader) GetDynamicHash(hash uint32) (any, bool) {
	entry, ok := l.dynIndex[hash]
	if !ok {
		return nil, false
	}

	l.cacheMu.Lock()
	defer l.cacheMu.Unlock()
	if cached, ok := l.cache[hash]; ok {
		return cached, true
	}

	if int(entry.offset) >= len(l.dynTier) {
		return nil, false
	}
	rec, err := decodeDynamicRecord(l.dynTier[entry.offset:])
	if err != nil {
		l.log.Debug("dynamic record parse failed", zap.Uint32("hash", hash), zap.Error(err))
		return nil, false
	}
	l.log.Debug("dynamic record parsed", zap.Uint32("hash", hash), zap.Uint32("offset", entry.offset))
	l.cache[hash] = rec
	return rec, true
}

// GetDynamic returns the indexed dynamic record for selector, if
// present.
func (l *Loader) GetDynamic(selector string) (any, bool) {
	return l.GetDynamicHash(stylesheet.HashSelector(selector))
}

func decodeDynamicRecord(b []byte) (any, error) {
	if len(b) < 1 {
		return nil, fmt.Errorf("%w: empty dynamic record", ErrTruncated)
	}
	switch b[0] {
	case codec.RecordBoundaryMarker:
		return decodeBoundaryMarker(b)
	case codec.RecordRuleSet:
		return decodeRuleSet(b)
	case codec.RecordNondeterministic:
		return decodeNondeterministic(b)
	default:
		return nil, ErrUnknownRecordType
	}
}

func decodeBoundaryMarker(b []byte) (*BoundaryMarkerRecord, error) {
	if len(b) < 12 {
		return nil, fmt.Errorf("%w: boundary marker header", ErrTruncated)
	}
	rec := &BoundaryMarkerRecord{
		SelectorHash: binary.LittleEndian.Uint32(b[1:5]),
		SelectorRef:  getUint24(b[5:8]),
	}
	depCount := int(b[8])
	flags := b[9]
	rec.PortalDep = flags&codec.FlagPortalDependency != 0
	rec.ThemeDep = flags&codec.FlagThemeDependency != 0
	subCount := int(binary.LittleEndian.Uint16(b[10:12]))

	off := 12
	for i := 0; i < depCount; i++ {
		if off+8 > len(b) {
			return nil, fmt.Errorf("%w: boundary marker deps", ErrTruncated)
		}
		rec.Deps = append(rec.Deps, DepRecord{
			Kind:          stylesheet.DepKind(b[off]),
			PropertyRef:   getUint24(b[off+1 : off+4]),
			ContainerHash: binary.LittleEndian.Uint32(b[off+4 : off+8]),
		})
		off += 8
	}
	for i := 0; i < subCount; i++ {
		if off+4 > len(b) {
			return nil, fmt.Errorf("%w: boundary marker subgraph", ErrTruncated)
		}
		rec.Subgraph = append(rec.Subgraph, binary.LittleEndian.Uint32(b[off:off+4]))
		off += 4
	}
	return rec, nil
}

func decodeRuleSet(b []byte) (*RuleSetRecord, error) {
	if len(b) < 13 {
		return nil, fmt.Errorf("%w: rule set header", ErrTruncated)
	}
	rec := &RuleSetRecord{
		SelectorHash: binary.LittleEndian.Uint32(b[1:5]),
		SelectorRef:  getUint24(b[5:8]),
		BoundaryHash: binary.LittleEndian.Uint32(b[9:13]),
	}
	count := int(b[8])
	off := 13
	for i := 0; i < count; i++ {
		if off+6 > len(b) {
			return nil, fmt.Errorf("%w: rule set properties", ErrTruncated)
		}
		rec.Properties = append(rec.Properties, PropEntry{
			NameRef:  getUint24(b[off : off+3]),
			ValueRef: getUint24(b[off+3 : off+6]),
		})
		off += 6
	}
	return rec, nil
}

func decodeNondeterministic(b []byte) (*NondeterministicRecord, error) {
	if len(b) < 9 {
		return nil, fmt.Errorf("%w: nondeterministic record", ErrTruncated)
	}
	return &NondeterministicRecord{
		SelectorHash: binary.LittleEndian.Uint32(b[1:5]),
		SelectorRef:  getUint24(b[5:8]),
		PortalDep:    b[8]&codec.FlagPortalDependency != 0,
	}, nil
}

// Stats returns the loader's view of the artifact it was built from.
func (l *Loader) Stats() Stats {
	return l.stats
}
