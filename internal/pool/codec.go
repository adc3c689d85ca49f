package pool

import (
	"encoding/binary"
	"fmt"
)

// poolMagic is the 4-byte magic for a pool section: "SOMP".
var poolMagic = [4]byte{0x53, 0x4F, 0x4D, 0x50}

const poolHeaderSize = 16

// putUint24 writes the low 24 bits of v as little-endian into b (which
// must have length >= 3).
func putUint24(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
}

func getUint24(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}

// Encode serializes the finalized pool into its binary section: a
// 16-byte header followed by entries in sorted-index order, each a
// 3-byte LE index, a 2-byte LE byte length, and the raw UTF-8 bytes
// (§4.6, §6.1). Encode panics if called before Finalize.
func Encode(p *Pool) []byte {
	if !p.finalized {
		panic("pool: Encode called before Finalize")
	}
	var dataSize int
	for _, s := range p.entries {
		dataSize += 3 + 2 + len(s)
	}

	out := make([]byte, poolHeaderSize+dataSize)
	copy(out[0:4], poolMagic[:])
	out[4] = 1 // version
	// out[5:8] reserved, already zero
	binary.LittleEndian.PutUint32(out[8:12], uint32(len(p.entries)))
	binary.LittleEndian.PutUint32(out[12:16], uint32(dataSize))

	off := poolHeaderSize
	for i, s := range p.entries {
		putUint24(out[off:off+3], uint32(i))
		binary.LittleEndian.PutUint16(out[off+3:off+5], uint16(len(s)))
		copy(out[off+5:off+5+len(s)], s)
		off += 5 + len(s)
	}
	return out
}

// Decode parses a pool section from the start of data, validating the
// magic, version, and declared sizes, and returns the reconstructed
// string table in index order together with the number of bytes
// consumed (PoolReader, §4.6/§4.8).
func Decode(data []byte) (entries []string, consumed int, err error) {
	if len(data) < poolHeaderSize {
		return nil, 0, fmt.Errorf("pool: truncated header (%d bytes)", len(data))
	}
	if string(data[0:4]) != string(poolMagic[:]) {
		return nil, 0, fmt.Errorf("pool: bad magic %x", data[0:4])
	}
	version := data[4]
	if version != 1 {
		return nil, 0, fmt.Errorf("pool: unsupported version %d", version)
	}
	count := binary.LittleEndian.Uint32(data[8:12])
	dataSize := binary.LittleEndian.Uint32(data[12:16])

	body := data[poolHeaderSize:]
	if uint32(len(body)) < dataSize {
		return nil, 0, fmt.Errorf("pool: declared data_size %d exceeds available %d bytes", dataSize, len(body))
	}
	body = body[:dataSize]

	out := make([]string, count)
	off := 0
	for i := uint32(0); i < count; i++ {
		if off+5 > len(body) {
			return nil, 0, fmt.Errorf("pool: truncated entry %d", i)
		}
		idx := getUint24(body[off : off+3])
		strLen := binary.LittleEndian.Uint16(body[off+3 : off+5])
		off += 5
		if off+int(strLen) > len(body) {
			return nil, 0, fmt.Errorf("pool: entry %d string runs past data_size", i)
		}
		if idx >= count {
			return nil, 0, fmt.Errorf("pool: entry %d has out-of-range index %d", i, idx)
		}
		out[idx] = string(body[off : off+int(strLen)])
		off += int(strLen)
	}
	if uint32(off) != dataSize {
		return nil, 0, fmt.Errorf("pool: data region is %d bytes, expected %d", off, dataSize)
	}
	return out, poolHeaderSize + off, nil
}
