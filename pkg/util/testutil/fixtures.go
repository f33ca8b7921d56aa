// Package testutil builds random but well-formed fixtures — addresses,
// committees, transmissions, batch headers and certificates — for the
// storage package's tests. It follows the teacher's
// pkg/core/tests/helper convention of small Random* constructors instead
// of a generic fuzzer.
package testutil

import (
	"crypto/rand"
	"fmt"
	"time"

	"golang.org/x/crypto/ed25519"

	"github.com/dusk-network/narwhal-store/pkg/core/consensus/committee"
	"github.com/dusk-network/narwhal-store/pkg/core/data/batch"
	"github.com/dusk-network/narwhal-store/pkg/core/data/transmission"
	"github.com/dusk-network/narwhal-store/pkg/crypto/address"
	"github.com/dusk-network/narwhal-store/pkg/crypto/field"
)

// RandomAddress returns a fresh ed25519-derived address.
func RandomAddress() address.Address {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(err)
	}
	addr, err := address.FromPublicKey(pub)
	if err != nil {
		panic(err)
	}
	return addr
}

// RandomCommittee returns a Static committee for round with n equally
// staked members, plus the ordered slice of their addresses for the
// caller to sign with.
func RandomCommittee(round field.Round, n int) (*committee.Static, []address.Address) {
	addrs := make([]address.Address, n)
	members := make([]committee.Member, n)
	for i := 0; i < n; i++ {
		addrs[i] = RandomAddress()
		members[i] = committee.Member{Address: addrs[i], Stake: 100}
	}
	return committee.NewStatic(round, members), addrs
}

// RandomTransmission returns a transmission carrying n random bytes of
// payload.
func RandomTransmission(n int) transmission.Transmission {
	data := make([]byte, n)
	if _, err := rand.Read(data); err != nil {
		panic(err)
	}
	return transmission.Transmission{Kind: transmission.Transaction, Data: data}
}

// BatchHeaderBuilder assembles a batch.Header with sensible defaults
// that the caller can override field by field before calling Build.
type BatchHeaderBuilder struct {
	header batch.Header
}

// NewBatchHeader seeds a builder for author at round, timestamped now.
func NewBatchHeader(author address.Address, round field.Round) *BatchHeaderBuilder {
	return &BatchHeaderBuilder{header: batch.Header{
		Author:    author,
		Round:     round,
		Timestamp: time.Now().Unix(),
	}}
}

// WithTransmissions attaches transmission ids to the header under
// construction.
func (b *BatchHeaderBuilder) WithTransmissions(ids ...field.TransmissionID) *BatchHeaderBuilder {
	b.header.TransmissionIDs = ids
	return b
}

// WithPreviousCertificates attaches previous-round certificate ids to
// the header under construction.
func (b *BatchHeaderBuilder) WithPreviousCertificates(ids ...field.CertificateID) *BatchHeaderBuilder {
	b.header.PreviousCertificateIDs = ids
	return b
}

// Build returns the assembled header.
func (b *BatchHeaderBuilder) Build() batch.Header {
	return b.header
}

// QuorumCertificate builds a certificate for header signed by the first
// quorumSize addresses in signers (capped at len(signers)), each stamped
// with the header's timestamp. The author is not added separately: when
// it is among those addresses it counts once toward quorum. For a
// four-member, equally-staked RandomCommittee, quorumSize 3 is enough to
// pass Committee.IsQuorumThresholdReached.
func QuorumCertificate(header batch.Header, signers []address.Address, quorumSize int) *batch.Certificate {
	if quorumSize > len(signers) {
		quorumSize = len(signers)
	}
	sigs := make(map[address.Address]int64, quorumSize)
	for i := 0; i < quorumSize; i++ {
		sigs[signers[i]] = header.Timestamp
	}
	return &batch.Certificate{Header: header, Signatures: sigs}
}

// CertificateID formats c's round and author as a short label for test
// failure messages.
func CertificateID(c *batch.Certificate) string {
	return fmt.Sprintf("cert(round=%d author=%s)", c.Round(), c.Author())
}
