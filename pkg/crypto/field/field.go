// Package field implements the opaque, comparable, hashable identifiers
// that the storage core keys its indices on. It stands in for snarkVM's
// Field<N> element: a fixed-size digest with a total order on its
// underlying bytes.
package field

import (
	"bytes"
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// ID is a 32-byte field-element identifier.
type ID [32]byte

// Sum derives an ID from the SHA3-256 digest of the concatenated parts.
func Sum(parts ...[]byte) ID {
	var buf bytes.Buffer
	for _, p := range parts {
		buf.Write(p)
	}
	return ID(sha3.Sum256(buf.Bytes()))
}

// FromBytes copies a 32-byte slice into an ID. Panics if the length is wrong;
// callers own the decoding boundary.
func FromBytes(b []byte) ID {
	var id ID
	if len(b) != len(id) {
		panic("field: id must be 32 bytes")
	}
	copy(id[:], b)
	return id
}

// Bytes returns the big-endian byte representation.
func (id ID) Bytes() []byte {
	out := make([]byte, len(id))
	copy(out, id[:])
	return out
}

// Less gives a total order on the underlying bytes, used only for
// deterministic test fixtures and debug output — never for storage
// iteration order, which is insertion order (see pkg/core/consensus/storage).
func (id ID) Less(other ID) bool {
	return bytes.Compare(id[:], other[:]) < 0
}

// String renders the ID as a hex string.
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// IsZero reports whether the ID is the zero value.
func (id ID) IsZero() bool {
	return id == ID{}
}
