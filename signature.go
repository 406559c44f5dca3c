package lattice

import "strings"

// sigMixConst is the fixed 64-bit mix constant from §6: 0x9ddfea08eb382d69.
const sigMixConst uint64 = 0x9ddfea08eb382d69

// SignatureHash is the 64-bit fingerprint of an archetype signature. Two
// pools are distinct iff their SignatureHash differs (I3); folding is
// order-sensitive, so the same multiset of components declared in a
// different order yields a different SignatureHash and a different pool.
type SignatureHash uint64

// Signature is the canonical representation of an archetype: an ordered
// list of ComponentId in the tuple's declared position order, plus the
// SignatureHash folded from it. The declared order is part of the pool's
// identity and determines column order inside a chunk.
type Signature struct {
	IDs  []ComponentId
	Hash SignatureHash
}

// NewSignature builds a Signature from component types in declared order.
func NewSignature(components ...ComponentType) Signature {
	ids := make([]ComponentId, len(components))
	for i, c := range components {
		ids[i] = c.ID()
	}
	return Signature{IDs: ids, Hash: computeSignatureHash(ids)}
}

// computeSignatureHash folds ids via the normative mix from §6:
//
//	a = (hash(id) XOR seed) * kMul; a ^= a >> 47
//	b = (seed XOR a) * kMul;        b ^= b >> 47
//	seed = b * kMul
//
// with initial seed = 0. hash(id) is the identity function: ComponentId is
// already a dense, stable 64-bit value, so it serves as its own hash input.
func computeSignatureHash(ids []ComponentId) SignatureHash {
	var seed uint64
	for _, id := range ids {
		a := (uint64(id) ^ seed) * sigMixConst
		a ^= a >> 47
		b := (seed ^ a) * sigMixConst
		b ^= b >> 47
		seed = b * sigMixConst
	}
	return SignatureHash(seed)
}

// Contains reports whether the signature includes id.
func (s Signature) Contains(id ComponentId) bool {
	for _, existing := range s.IDs {
		if existing == id {
			return true
		}
	}
	return false
}

// String renders the signature as its component ids, for error messages and
// metrics labels.
func (s Signature) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, id := range s.IDs {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(componentIdDecimal(id))
	}
	b.WriteByte(']')
	return b.String()
}

func componentIdDecimal(id ComponentId) string {
	if id == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for id > 0 {
		i--
		buf[i] = byte('0' + id%10)
		id /= 10
	}
	return string(buf[i:])
}
