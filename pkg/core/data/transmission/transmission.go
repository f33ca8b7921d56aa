// Package transmission defines the opaque payloads referenced by batch
// headers: transactions and prover solutions.
package transmission

import "github.com/dusk-network/narwhal-store/pkg/crypto/field"

// Kind distinguishes the two payload shapes a transmission can carry.
type Kind uint8

const (
	// Transaction is a client-submitted transaction payload.
	Transaction Kind = iota
	// Solution is a prover solution payload.
	Solution
)

func (k Kind) String() string {
	switch k {
	case Transaction:
		return "transaction"
	case Solution:
		return "solution"
	default:
		return "unknown"
	}
}

// Transmission is the opaque payload a batch header declares by ID. The
// storage core never interprets Data; it only moves it between the
// caller-provided map and the transmissions index.
type Transmission struct {
	Kind Kind
	Data []byte
}

// ID derives the TransmissionID deterministically from the payload,
// mirroring how a certificate derives its own ID from its header.
func (t Transmission) ID() field.TransmissionID {
	return field.TransmissionID(field.Sum([]byte{byte(t.Kind)}, t.Data))
}
