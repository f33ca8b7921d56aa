package storage

import (
	"fmt"

	"github.com/dusk-network/narwhal-store/pkg/crypto/field"
)

// Reason enumerates the admission sub-reasons from the error taxonomy.
type Reason int

const (
	// ReasonDuplicateBatch: the batch ID already exists in storage.
	ReasonDuplicateBatch Reason = iota
	// ReasonDuplicateCertificate: the certificate ID already exists in storage.
	ReasonDuplicateCertificate
	// ReasonDuplicateAuthorInRound: the author already certified this round.
	ReasonDuplicateAuthorInRound
	// ReasonNotCommitteeMember: the author or a signer is not a committee member.
	ReasonNotCommitteeMember
	// ReasonLivenessWindow: a timestamp fell outside the liveness window.
	ReasonLivenessWindow
	// ReasonMissingTransmission: a declared transmission was neither stored nor provided.
	ReasonMissingTransmission
	// ReasonMissingPreviousCommittee: the committee for the candidate's
	// round, or for the previous round, is unknown.
	ReasonMissingPreviousCommittee
	// ReasonMissingPreviousRound: the previous round has no certificates in
	// storage, or the candidate's own round is at or below gc_round.
	ReasonMissingPreviousRound
	// ReasonTooManyPreviousIDs: previous_certificate_ids exceeds the previous committee's size.
	ReasonTooManyPreviousIDs
	// ReasonUnknownPreviousCertificate: a declared previous certificate does not exist.
	ReasonUnknownPreviousCertificate
	// ReasonWrongRoundPreviousCertificate: a previous certificate is not for round-1.
	ReasonWrongRoundPreviousCertificate
	// ReasonDuplicatePreviousAuthor: two previous certificate ids share an author.
	ReasonDuplicatePreviousAuthor
	// ReasonPreviousQuorumNotReached: previous-round authors did not reach quorum.
	ReasonPreviousQuorumNotReached
	// ReasonSignerQuorumNotReached: the certificate's signers did not reach quorum.
	ReasonSignerQuorumNotReached
)

func (r Reason) String() string {
	switch r {
	case ReasonDuplicateBatch:
		return "duplicate batch"
	case ReasonDuplicateCertificate:
		return "duplicate certificate"
	case ReasonDuplicateAuthorInRound:
		return "duplicate author in round"
	case ReasonNotCommitteeMember:
		return "not a committee member"
	case ReasonLivenessWindow:
		return "outside liveness window"
	case ReasonMissingTransmission:
		return "missing transmission"
	case ReasonMissingPreviousCommittee:
		return "missing previous committee"
	case ReasonMissingPreviousRound:
		return "missing previous round"
	case ReasonTooManyPreviousIDs:
		return "too many previous certificate ids"
	case ReasonUnknownPreviousCertificate:
		return "unknown previous certificate"
	case ReasonWrongRoundPreviousCertificate:
		return "previous certificate for wrong round"
	case ReasonDuplicatePreviousAuthor:
		return "duplicate previous author"
	case ReasonPreviousQuorumNotReached:
		return "previous round quorum not reached"
	case ReasonSignerQuorumNotReached:
		return "signer quorum not reached"
	default:
		return "unknown"
	}
}

// AdmissionError reports why check_batch_header/check_certificate
// rejected a candidate, with enough context (round, gc round) for the
// caller to decide whether to request missing data, drop the peer, or
// retry later.
type AdmissionError struct {
	Reason  Reason
	Round   field.Round
	GCRound field.Round
	Detail  string
}

func (e *AdmissionError) Error() string {
	return fmt.Sprintf("admission rejected: %s for round %d (gc = %d): %s", e.Reason, e.Round, e.GCRound, e.Detail)
}

func newAdmissionError(reason Reason, round, gcRound field.Round, format string, args ...interface{}) *AdmissionError {
	return &AdmissionError{Reason: reason, Round: round, GCRound: gcRound, Detail: fmt.Sprintf(format, args...)}
}

// PreconditionOp names the operation a PreconditionError was raised by.
type PreconditionOp string

const (
	// OpAdvanceRound: advance_round was called while the current round
	// has no certificates. Whether the next round already holds
	// certificates is not checked.
	OpAdvanceRound PreconditionOp = "advance_round"
	// OpInsertCertificate: insert_certificate was called at or below gc_round.
	OpInsertCertificate PreconditionOp = "insert_certificate"
)

// PreconditionError reports a violated operation precondition — always
// recoverable by the caller.
type PreconditionError struct {
	Op     PreconditionOp
	Detail string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition failed in %s: %s", e.Op, e.Detail)
}
