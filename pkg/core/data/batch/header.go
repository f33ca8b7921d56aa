// Package batch defines the batch header and certificate data model:
// the authenticated descriptor of a batch of transmissions, and the
// quorum of signatures that certifies it. Adapted from the node's block
// certificate (pkg/core/block/certificate.go in the teacher repository),
// generalized from block-level to batch-level certification.
package batch

import (
	"encoding/binary"

	"github.com/dusk-network/narwhal-store/pkg/crypto/address"
	"github.com/dusk-network/narwhal-store/pkg/crypto/field"
)

// Header carries everything a validator authenticates when it proposes
// a batch: authorship, round, liveness timestamp, and the DAG edges to
// the previous round's certificates.
type Header struct {
	Author                 address.Address
	Round                  field.Round
	Timestamp              int64
	TransmissionIDs        []field.TransmissionID
	PreviousCertificateIDs []field.CertificateID
}

// BatchID derives the header's identity by hashing its canonical encoding.
func (h *Header) BatchID() field.BatchID {
	return field.BatchID(field.Sum(h.encodeHashable()))
}

func (h *Header) encodeHashable() []byte {
	buf := make([]byte, 0, 64+len(h.TransmissionIDs)*32+len(h.PreviousCertificateIDs)*32)
	buf = append(buf, h.Author[:]...)
	buf = appendUint64(buf, uint64(h.Round))
	buf = appendUint64(buf, uint64(h.Timestamp))
	buf = appendUint64(buf, uint64(len(h.TransmissionIDs)))
	for _, id := range h.TransmissionIDs {
		buf = append(buf, id[:]...)
	}
	buf = appendUint64(buf, uint64(len(h.PreviousCertificateIDs)))
	for _, id := range h.PreviousCertificateIDs {
		buf = append(buf, id[:]...)
	}
	return buf
}

func appendUint64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}
