package batch

import (
	"sort"

	"github.com/dusk-network/narwhal-store/pkg/crypto/address"
	"github.com/dusk-network/narwhal-store/pkg/crypto/field"
)

// Certificate wraps a Header with the quorum of co-signer timestamps
// that certifies it. The storage core trusts that signatures were
// already verified by the caller (see package doc, Non-goals); it only
// needs signer identity and timestamp for liveness and quorum checks.
type Certificate struct {
	Header     Header
	Signatures map[address.Address]int64 // signer -> signing timestamp
}

// CertificateID derives the certificate's identity from its header and
// signer set, so that two certificates over the same header signed by
// different quorums are distinct.
func (c *Certificate) CertificateID() field.CertificateID {
	buf := c.Header.encodeHashable()
	for _, signer := range c.sortedSigners() {
		buf = append(buf, signer[:]...)
	}
	return field.CertificateID(field.Sum(buf))
}

// Round returns the certificate's round (the header's round).
func (c *Certificate) Round() field.Round { return c.Header.Round }

// Author returns the certificate's author (the header's author).
func (c *Certificate) Author() address.Address { return c.Header.Author }

// BatchID returns the certificate's batch ID (the header's batch ID).
func (c *Certificate) BatchID() field.BatchID { return c.Header.BatchID() }

// TransmissionIDs returns the header's declared transmission IDs.
func (c *Certificate) TransmissionIDs() []field.TransmissionID {
	return c.Header.TransmissionIDs
}

// Timestamps returns the author's timestamp followed by every signer's
// timestamp, in deterministic (sorted-by-address) order.
func (c *Certificate) Timestamps() []int64 {
	out := make([]int64, 0, len(c.Signatures)+1)
	out = append(out, c.Header.Timestamp)
	for _, signer := range c.sortedSigners() {
		out = append(out, c.Signatures[signer])
	}
	return out
}

// Signers returns the addresses in Signatures, in deterministic order.
// The author is included only if it is itself a key of Signatures.
func (c *Certificate) Signers() []address.Address {
	return c.sortedSigners()
}

func (c *Certificate) sortedSigners() []address.Address {
	signers := make([]address.Address, 0, len(c.Signatures))
	for signer := range c.Signatures {
		signers = append(signers, signer)
	}
	sort.Slice(signers, func(i, j int) bool {
		return string(signers[i][:]) < string(signers[j][:])
	})
	return signers
}
