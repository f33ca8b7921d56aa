package storage

import (
	"github.com/dusk-network/narwhal-store/pkg/core/data/batch"
	"github.com/dusk-network/narwhal-store/pkg/core/data/transmission"
	"github.com/dusk-network/narwhal-store/pkg/crypto/field"
)

// CheckBatchHeader validates header against storage and the liveness
// window — including the previous round's well-formedness and quorum.
// Every declared transmission must be either already stored or present
// in provided; one that is neither is an admission error. The returned
// map holds the provided transmissions the store does not yet have,
// which insertion adds alongside the certificate. It never mutates the
// store.
func (s *Store) CheckBatchHeader(header batch.Header, provided map[field.TransmissionID]transmission.Transmission) (map[field.TransmissionID]transmission.Transmission, error) {
	round := header.Round
	gcRound := s.GCRound()

	if round <= gcRound {
		return nil, newAdmissionError(ReasonMissingPreviousRound, round, gcRound, "round is at or below the garbage-collected boundary")
	}

	if s.ContainsBatch(header.BatchID()) {
		return nil, newAdmissionError(ReasonDuplicateBatch, round, gcRound, "batch %s already known", header.BatchID())
	}

	c, ok := s.GetCommittee(round)
	if !ok {
		return nil, newAdmissionError(ReasonMissingPreviousCommittee, round, gcRound, "no committee for round %d", round)
	}
	if !c.IsMember(header.Author) {
		return nil, newAdmissionError(ReasonNotCommitteeMember, round, gcRound, "author %s is not a member of the round %d committee", header.Author, round)
	}

	if err := s.liveness(header.Timestamp); err != nil {
		return nil, newAdmissionError(ReasonLivenessWindow, round, gcRound, "batch header timestamp: %s", err)
	}

	// Previous round well-formedness and quorum. A previous round at or
	// below gc_round has already been forgiven by garbage collection —
	// its committee and certificates are gone by design, not by error —
	// so the check is skipped rather than treated as a failure.
	prevRound := round.Prev()
	if prevRound > gcRound {
		if err := s.checkPreviousRound(round, gcRound, prevRound, header.PreviousCertificateIDs); err != nil {
			return nil, err
		}
	}

	missing := make(map[field.TransmissionID]transmission.Transmission)
	for _, id := range header.TransmissionIDs {
		if s.ContainsTransmission(id) {
			continue
		}
		tx, ok := provided[id]
		if !ok {
			return nil, newAdmissionError(ReasonMissingTransmission, round, gcRound, "transmission %s is neither stored nor provided", id)
		}
		missing[id] = tx
	}

	return missing, nil
}

// checkPreviousRound validates that previousCertificateIDs are
// well-formed references into prevRound and that their authors reach
// quorum under prevRound's committee.
func (s *Store) checkPreviousRound(round, gcRound, prevRound field.Round, previousCertificateIDs []field.CertificateID) error {
	prevCommittee, ok := s.GetCommittee(prevRound)
	if !ok {
		return newAdmissionError(ReasonMissingPreviousCommittee, round, gcRound, "no committee for previous round %d", prevRound)
	}
	if !s.ContainsCertificatesForRound(prevRound) {
		return newAdmissionError(ReasonMissingPreviousRound, round, gcRound, "previous round %d has no certificates", prevRound)
	}
	if len(previousCertificateIDs) > prevCommittee.NumMembers() {
		return newAdmissionError(ReasonTooManyPreviousIDs, round, gcRound, "%d previous certificate ids exceeds committee size %d", len(previousCertificateIDs), prevCommittee.NumMembers())
	}

	prevAuthors := newAddressSet()
	for _, id := range previousCertificateIDs {
		prevCert, ok := s.GetCertificate(id)
		if !ok {
			return newAdmissionError(ReasonUnknownPreviousCertificate, round, gcRound, "previous certificate %s is unknown", id)
		}
		if prevCert.Round() != prevRound {
			return newAdmissionError(ReasonWrongRoundPreviousCertificate, round, gcRound, "previous certificate %s is for round %d, expected %d", id, prevCert.Round(), prevRound)
		}
		author := prevCert.Author()
		if prevAuthors.Contains(author) {
			return newAdmissionError(ReasonDuplicatePreviousAuthor, round, gcRound, "author %s appears twice among previous certificate ids", author)
		}
		prevAuthors.Add(author)
	}
	if !prevCommittee.IsQuorumThresholdReached(prevAuthors) {
		return newAdmissionError(ReasonPreviousQuorumNotReached, round, gcRound, "previous round %d authors do not reach quorum", prevRound)
	}
	return nil
}

// CheckCertificate validates cert's batch header via CheckBatchHeader,
// then the certificate-specific rules: freshness of the certificate ID,
// one certificate per author per round, committee membership and
// liveness of every signer, and signer quorum. Like CheckBatchHeader, it
// never mutates the store.
func (s *Store) CheckCertificate(cert *batch.Certificate, provided map[field.TransmissionID]transmission.Transmission) (map[field.TransmissionID]transmission.Transmission, error) {
	round := cert.Round()
	gcRound := s.GCRound()

	missing, err := s.CheckBatchHeader(cert.Header, provided)
	if err != nil {
		return nil, err
	}

	if s.ContainsCertificate(cert.CertificateID()) {
		return nil, newAdmissionError(ReasonDuplicateCertificate, round, gcRound, "certificate %s already known", cert.CertificateID())
	}
	if s.ContainsCertificateInRoundFrom(round, cert.Author()) {
		return nil, newAdmissionError(ReasonDuplicateAuthorInRound, round, gcRound, "author %s already certified round %d", cert.Author(), round)
	}

	committee, ok := s.GetCommittee(round)
	if !ok {
		return nil, newAdmissionError(ReasonMissingPreviousCommittee, round, gcRound, "no committee for round %d", round)
	}

	for _, signer := range cert.Signers() {
		if !committee.IsMember(signer) {
			return nil, newAdmissionError(ReasonNotCommitteeMember, round, gcRound, "signer %s is not a member of the round %d committee", signer, round)
		}
	}

	for _, ts := range cert.Timestamps() {
		if err := s.liveness(ts); err != nil {
			return nil, newAdmissionError(ReasonLivenessWindow, round, gcRound, "signer timestamp: %s", err)
		}
	}

	addrSet := newAddressSet()
	addrSet.Add(cert.Author())
	for _, signer := range cert.Signers() {
		addrSet.Add(signer)
	}
	if !committee.IsQuorumThresholdReached(addrSet) {
		return nil, newAdmissionError(ReasonSignerQuorumNotReached, round, gcRound, "signers do not reach quorum for round %d", round)
	}

	return missing, nil
}
