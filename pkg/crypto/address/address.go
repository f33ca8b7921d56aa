// Package address implements the author identity carried by batch
// headers and certificates. It is adapted from the node wallet's
// public-key-to-address conversion: an ed25519 public key rendered as a
// base58 string.
package address

import (
	"bytes"

	"github.com/decred/base58"
	"github.com/pkg/errors"
	"golang.org/x/crypto/ed25519"
	"golang.org/x/crypto/sha3"
)

// prefix tags addresses produced by this network, mirroring the node
// wallet's "DUSKpub"-style prefix but scoped to the mempool's own keys.
var prefix = []byte{0x4e, 0x57, 0x48, 0x4c} // "NWHL"

// Address is the opaque, comparable author identity backed by an ed25519
// public key. It satisfies map keys and set membership directly.
type Address [ed25519.PublicKeySize]byte

// FromPublicKey builds an Address from a raw ed25519 public key.
func FromPublicKey(pub ed25519.PublicKey) (Address, error) {
	if len(pub) != ed25519.PublicKeySize {
		return Address{}, errors.Errorf("address: public key must be %d bytes", ed25519.PublicKeySize)
	}
	var a Address
	copy(a[:], pub)
	return a, nil
}

// PublicKey returns the underlying ed25519 public key.
func (a Address) PublicKey() ed25519.PublicKey {
	pub := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(pub, a[:])
	return pub
}

// String renders the address as a base58-encoded, prefixed, checksummed string.
func (a Address) String() string {
	var buf bytes.Buffer
	buf.Write(prefix)
	buf.Write(a[:])
	sum := sha3.Sum256(a[:])
	buf.Write(sum[:4])
	return base58.Encode(buf.Bytes())
}

// IsZero reports whether the address is the zero value.
func (a Address) IsZero() bool {
	return a == Address{}
}
