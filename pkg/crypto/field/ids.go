package field

import "fmt"

// Round is a monotonically increasing logical epoch of the DAG.
type Round uint64

// String implements fmt.Stringer for log output.
func (r Round) String() string {
	return fmt.Sprintf("%d", uint64(r))
}

// Prev returns round-1, saturating at 0.
func (r Round) Prev() Round {
	if r == 0 {
		return 0
	}
	return r - 1
}

// CertificateID identifies a BatchCertificate.
type CertificateID ID

func (id CertificateID) String() string { return ID(id).String() }

// BatchID identifies a BatchHeader.
type BatchID ID

func (id BatchID) String() string { return ID(id).String() }

// TransmissionID identifies a Transmission.
type TransmissionID ID

func (id TransmissionID) String() string { return ID(id).String() }
