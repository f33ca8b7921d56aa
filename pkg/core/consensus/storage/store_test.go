package storage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-network/narwhal-store/pkg/core/data/transmission"
	"github.com/dusk-network/narwhal-store/pkg/crypto/field"
	"github.com/dusk-network/narwhal-store/pkg/util/testutil"
)

var assertErrorSentinel = errors.New("timestamp outside liveness window")

func noopLiveness(int64) error { return nil }

// TestCertificateInsertRemove mirrors the original storage helper's
// insert-then-remove round trip: a genesis-round certificate should be
// admitted, visible across every index, and fully gone after removal.
func TestCertificateInsertRemove(t *testing.T) {
	committee1, signers := testutil.RandomCommittee(field.Round(1), 4)
	s := New(committee1, 100, WithLivenessCheck(noopLiveness))

	tx := testutil.RandomTransmission(32)
	header := testutil.NewBatchHeader(signers[0], field.Round(1)).
		WithTransmissions(tx.ID()).
		Build()
	cert := testutil.QuorumCertificate(header, signers, 3)

	provided := map[field.TransmissionID]transmission.Transmission{tx.ID(): tx}
	require.NoError(t, s.InsertCertificate(cert, provided))

	assert.True(t, s.ContainsCertificate(cert.CertificateID()))
	assert.True(t, s.ContainsBatch(cert.BatchID()))
	assert.True(t, s.ContainsTransmission(tx.ID()))
	assert.True(t, s.ContainsCertificateInRoundFrom(field.Round(1), signers[0]))

	got, ok := s.GetCertificate(cert.CertificateID())
	require.True(t, ok)
	assert.Equal(t, cert.CertificateID(), got.CertificateID())

	removed := s.RemoveCertificate(cert.CertificateID())
	assert.True(t, removed)
	assert.False(t, s.ContainsCertificate(cert.CertificateID()))
	assert.False(t, s.ContainsBatch(cert.BatchID()))
	assert.False(t, s.ContainsTransmission(tx.ID()))

	// Removing an already-absent certificate reports false, not an error.
	assert.False(t, s.RemoveCertificate(cert.CertificateID()))
}

// TestCertificateDuplicate mirrors the original storage helper's
// duplicate-insert test: inserting the same certificate twice is a
// no-op, and inserting two distinct certificates for the same author in
// the same round is rejected.
func TestCertificateDuplicate(t *testing.T) {
	committee1, signers := testutil.RandomCommittee(field.Round(1), 4)
	s := New(committee1, 100, WithLivenessCheck(noopLiveness))

	header := testutil.NewBatchHeader(signers[0], field.Round(1)).Build()
	cert := testutil.QuorumCertificate(header, signers, 3)

	require.NoError(t, s.InsertCertificate(cert, nil))
	require.NoError(t, s.InsertCertificate(cert, nil)) // idempotent

	header2 := testutil.NewBatchHeader(signers[0], field.Round(1)).Build()
	header2.Timestamp++ // distinct batch, same author and round
	cert2 := testutil.QuorumCertificate(header2, signers, 3)
	err := s.InsertCertificate(cert2, nil)
	require.Error(t, err)

	admissionErr, ok := err.(*AdmissionError)
	require.True(t, ok)
	assert.Equal(t, ReasonDuplicateAuthorInRound, admissionErr.Reason)
}

// TestCheckBatchHeaderRejectsNonMember ensures an author outside the
// round's committee cannot pass admission.
func TestCheckBatchHeaderRejectsNonMember(t *testing.T) {
	committee1, _ := testutil.RandomCommittee(field.Round(1), 4)
	s := New(committee1, 100, WithLivenessCheck(noopLiveness))

	outsider := testutil.RandomAddress()
	header := testutil.NewBatchHeader(outsider, field.Round(1)).Build()

	_, err := s.CheckBatchHeader(header, nil)
	require.Error(t, err)
	admissionErr, ok := err.(*AdmissionError)
	require.True(t, ok)
	assert.Equal(t, ReasonNotCommitteeMember, admissionErr.Reason)
}

// TestCheckBatchHeaderReportsMissingTransmissions ensures a declared
// transmission that is neither stored nor provided is rejected, and that
// one supplied in provided is reported back as missing from storage.
func TestCheckBatchHeaderReportsMissingTransmissions(t *testing.T) {
	committee1, signers := testutil.RandomCommittee(field.Round(1), 4)
	s := New(committee1, 100, WithLivenessCheck(noopLiveness))

	tx := testutil.RandomTransmission(16)
	header := testutil.NewBatchHeader(signers[0], field.Round(1)).
		WithTransmissions(tx.ID()).
		Build()

	_, err := s.CheckBatchHeader(header, nil)
	require.Error(t, err)
	admissionErr, ok := err.(*AdmissionError)
	require.True(t, ok)
	assert.Equal(t, ReasonMissingTransmission, admissionErr.Reason)

	provided := map[field.TransmissionID]transmission.Transmission{tx.ID(): tx}
	missing, err := s.CheckBatchHeader(header, provided)
	require.NoError(t, err)
	assert.Contains(t, missing, tx.ID())
}

// TestCheckCertificateRejectsSignerQuorumNotReached ensures a
// certificate with too few signers is rejected even when the batch
// header itself is well-formed.
func TestCheckCertificateRejectsSignerQuorumNotReached(t *testing.T) {
	committee1, signers := testutil.RandomCommittee(field.Round(1), 4)
	s := New(committee1, 100, WithLivenessCheck(noopLiveness))

	header := testutil.NewBatchHeader(signers[0], field.Round(1)).Build()
	cert := testutil.QuorumCertificate(header, signers, 1) // below quorum

	_, err := s.CheckCertificate(cert, nil)
	require.Error(t, err)
	admissionErr, ok := err.(*AdmissionError)
	require.True(t, ok)
	assert.Equal(t, ReasonSignerQuorumNotReached, admissionErr.Reason)
}

// TestAdvanceRoundRequiresCertificatesInCurrentRound checks the
// precondition that advance_round refuses to move forward over a round
// with no certificates yet.
func TestAdvanceRoundRequiresCertificatesInCurrentRound(t *testing.T) {
	committee1, _ := testutil.RandomCommittee(field.Round(1), 4)
	s := New(committee1, 100, WithLivenessCheck(noopLiveness))

	err := s.AdvanceRound()
	require.Error(t, err)
	_, ok := err.(*PreconditionError)
	assert.True(t, ok)
}

// TestAdvanceRoundInstallsNextCommitteeAndGarbageCollects exercises the
// full round-advance + GC sweep across enough rounds to push
// max_gc_rounds past the genesis round, with each round's certificates
// genuinely referencing and reaching quorum over the previous round's
// certificates (spec.md E6), not an empty PreviousCertificateIDs list.
func TestAdvanceRoundInstallsNextCommitteeAndGarbageCollects(t *testing.T) {
	committee1, signers := testutil.RandomCommittee(field.Round(1), 4)
	s := New(committee1, 2, WithLivenessCheck(noopLiveness))

	var prevCertIDs []field.CertificateID
	for round := 1; round <= 4; round++ {
		var roundCertIDs []field.CertificateID
		for i := 0; i < 3; i++ {
			builder := testutil.NewBatchHeader(signers[i], field.Round(round))
			if round > 1 {
				builder = builder.WithPreviousCertificates(prevCertIDs...)
			}
			cert := testutil.QuorumCertificate(builder.Build(), signers, 3)
			require.NoError(t, s.InsertCertificate(cert, nil))
			roundCertIDs = append(roundCertIDs, cert.CertificateID())
		}
		require.NoError(t, s.AdvanceRound())
		prevCertIDs = roundCertIDs
	}

	assert.Equal(t, field.Round(5), s.CurrentRound())
	assert.Equal(t, field.Round(3), s.GCRound())
	assert.Equal(t, RoundPurged, s.RoundState(field.Round(1)))

	_, ok := s.GetCommittee(field.Round(1))
	assert.False(t, ok)
}

// TestCheckBatchHeaderEnforcesPreviousRoundQuorum ensures the previous
// round's referenced certificates are validated inside CheckBatchHeader
// itself (spec.md §4.2 rule 5), not only when called via
// CheckCertificate: an empty PreviousCertificateIDs list at round 2
// cannot reach the round 1 committee's quorum.
func TestCheckBatchHeaderEnforcesPreviousRoundQuorum(t *testing.T) {
	committee1, signers := testutil.RandomCommittee(field.Round(1), 4)
	s := New(committee1, 100, WithLivenessCheck(noopLiveness))

	header := testutil.NewBatchHeader(signers[0], field.Round(1)).Build()
	cert := testutil.QuorumCertificate(header, signers, 3)
	require.NoError(t, s.InsertCertificate(cert, nil))
	require.NoError(t, s.AdvanceRound())

	round2Header := testutil.NewBatchHeader(signers[1], field.Round(2)).Build()
	_, err := s.CheckBatchHeader(round2Header, nil)
	require.Error(t, err)
	admissionErr, ok := err.(*AdmissionError)
	require.True(t, ok)
	assert.Equal(t, ReasonPreviousQuorumNotReached, admissionErr.Reason)
}

// TestCheckCertificateRejectsNonMemberSigner ensures a signer outside
// the committee is a hard rejection rather than being silently ignored
// while the remaining, legitimate signers still reach quorum on their
// own (spec.md §4.3 rule 9).
func TestCheckCertificateRejectsNonMemberSigner(t *testing.T) {
	committee1, signers := testutil.RandomCommittee(field.Round(1), 4)
	s := New(committee1, 100, WithLivenessCheck(noopLiveness))

	outsider := testutil.RandomAddress()
	header := testutil.NewBatchHeader(signers[0], field.Round(1)).Build()
	cert := testutil.QuorumCertificate(header, signers, 3)
	cert.Signatures[outsider] = header.Timestamp

	_, err := s.CheckCertificate(cert, nil)
	require.Error(t, err)
	admissionErr, ok := err.(*AdmissionError)
	require.True(t, ok)
	assert.Equal(t, ReasonNotCommitteeMember, admissionErr.Reason)
}

// TestCheckCertificateRejectsSignerOutsideLivenessWindow ensures every
// signer's timestamp, not just the author's, is checked against the
// liveness window (spec.md §4.3 rule 8).
func TestCheckCertificateRejectsSignerOutsideLivenessWindow(t *testing.T) {
	committee1, signers := testutil.RandomCommittee(field.Round(1), 4)
	const badTimestamp = int64(-1)
	liveness := func(ts int64) error {
		if ts == badTimestamp {
			return assertErrorSentinel
		}
		return nil
	}
	s := New(committee1, 100, WithLivenessCheck(liveness))

	header := testutil.NewBatchHeader(signers[0], field.Round(1)).Build()
	cert := testutil.QuorumCertificate(header, signers, 3)
	cert.Signatures[signers[1]] = badTimestamp

	_, err := s.CheckCertificate(cert, nil)
	require.Error(t, err)
	admissionErr, ok := err.(*AdmissionError)
	require.True(t, ok)
	assert.Equal(t, ReasonLivenessWindow, admissionErr.Reason)
}

// TestRoundStateClassification checks the RoundState accessor across
// the unknown / committee-known / quorate boundary.
func TestRoundStateClassification(t *testing.T) {
	committee1, signers := testutil.RandomCommittee(field.Round(1), 4)
	s := New(committee1, 100, WithLivenessCheck(noopLiveness))

	assert.Equal(t, RoundCommitteeKnown, s.RoundState(field.Round(1)))
	assert.Equal(t, RoundUnknown, s.RoundState(field.Round(2)))

	// Three of the four equally staked members must author a certificate.
	for i := 0; i < 3; i++ {
		header := testutil.NewBatchHeader(signers[i], field.Round(1)).Build()
		cert := testutil.QuorumCertificate(header, signers, 3)
		require.NoError(t, s.InsertCertificate(cert, nil))
	}

	assert.Equal(t, RoundQuorate, s.RoundState(field.Round(1)))
}
