package stylesheet

// FNV-1a-32 constants, per §4.7: offset basis 0x811c9dc5, prime 0x01000193.
const (
	fnvOffsetBasis32 uint32 = 0x811c9dc5
	fnvPrime32       uint32 = 0x01000193
)

// HashSelector computes the unsigned 32-bit FNV-1a hash of a selector's
// UTF-8 bytes. It is a pure function of the bytes: hash("") == 0x811c9dc5.
func HashSelector(selector string) uint32 {
	return FNV1a32([]byte(selector))
}

// FNV1a32 computes the 32-bit FNV-1a hash of data.
func FNV1a32(data []byte) uint32 {
	h := fnvOffsetBasis32
	for _, b := range data {
		h ^= uint32(b)
		h *= fnvPrime32
	}
	return h
}

// propertyBit derives a stable low-31-bit position for a property name's
// invalidation mask (bit 31 is reserved for STRUCTURE). Using FNV-1a keeps
// the mapping a pure function of the property's bytes, independent of
// declaration order across runs.
func propertyBit(property string) uint32 {
	return FNV1a32([]byte(property)) % 31
}
