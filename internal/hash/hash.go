// Package hash wraps xxHash64 for corpus fingerprints and file checksums.
package hash

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint accumulates an xxHash64 digest over a corpus traversal.
//
// Every sequence and every symbol is length-prefixed before it is hashed, so corpora
// that only differ in where sequence boundaries fall produce different fingerprints.
type Fingerprint struct {
	digest  *xxhash.Digest
	scratch [binary.MaxVarintLen64]byte
}

// NewFingerprint creates an empty fingerprint.
func NewFingerprint() *Fingerprint {
	return &Fingerprint{digest: xxhash.New()}
}

// BeginSequence marks the start of a sequence holding n symbols.
func (f *Fingerprint) BeginSequence(n int) {
	f.writeUvarint(0xFF) // sequence marker
	f.writeUvarint(uint64(n)) //nolint:gosec
}

// WriteSymbol adds the encoded bytes of a single symbol.
func (f *Fingerprint) WriteSymbol(b []byte) {
	f.writeUvarint(uint64(len(b)))
	_, _ = f.digest.Write(b)
}

// Sum64 returns the digest of everything written so far.
func (f *Fingerprint) Sum64() uint64 {
	return f.digest.Sum64()
}

func (f *Fingerprint) writeUvarint(v uint64) {
	n := binary.PutUvarint(f.scratch[:], v)
	_, _ = f.digest.Write(f.scratch[:n])
}

// Sum64 computes the xxHash64 of data.
func Sum64(data []byte) uint64 {
	return xxhash.Sum64(data)
}
