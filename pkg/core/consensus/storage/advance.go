package storage

import (
	"sync/atomic"

	"github.com/emirpasic/gods/sets/linkedhashset"
	logger "github.com/sirupsen/logrus"

	"github.com/dusk-network/narwhal-store/pkg/crypto/field"
)

// RoundState classifies a round relative to the store's current
// watermarks, for callers deciding whether a round is still worth
// fetching data for.
type RoundState int

const (
	// RoundPurged: the round has been garbage collected and nothing
	// about it is retained.
	RoundPurged RoundState = iota
	// RoundUnknown: the round is ahead of any committee the store knows about.
	RoundUnknown
	// RoundCommitteeKnown: a committee exists for the round, but it has
	// not yet reached quorum.
	RoundCommitteeKnown
	// RoundQuorate: the round has reached certificate quorum.
	RoundQuorate
	// RoundRetiring: the round is behind current_round but still above gc_round.
	RoundRetiring
)

// RoundState reports the classification of round against the store's
// current watermarks and certificate set.
func (s *Store) RoundState(round field.Round) RoundState {
	gcRound := s.GCRound()
	current := s.CurrentRound()

	if round <= gcRound {
		return RoundPurged
	}
	committee, ok := s.GetCommittee(round)
	if !ok {
		return RoundUnknown
	}

	authors := newAddressSet()
	for _, cert := range s.GetCertificatesForRound(round) {
		authors.Add(cert.Author())
	}
	quorate := committee.IsQuorumThresholdReached(authors)

	switch {
	case round < current:
		return RoundRetiring
	case quorate:
		return RoundQuorate
	default:
		return RoundCommitteeKnown
	}
}

// AdvanceRound moves current_round forward by one, installing the next
// committee (derived from the current one via Committee.ToNextRound) and
// sweeping any rounds at or below the new gc_round. It
// refuses to advance past a round that has no certificates yet, since
// that would silently discard liveness information the caller may still
// need.
func (s *Store) AdvanceRound() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current := s.CurrentRound()
	if !s.ContainsCertificatesForRound(current) {
		return &PreconditionError{Op: OpAdvanceRound, Detail: "current round has no certificates yet"}
	}

	next := current + 1
	nextCommittee := s.CurrentCommittee().ToNextRound()

	s.committeesMu.Lock()
	s.committees.Put(next, nextCommittee)
	s.committeesMu.Unlock()

	atomic.StoreUint64(&s.currentRound, uint64(next))

	nextGC := saturatingSub(next, field.Round(s.maxGCRounds))
	if nextGC > s.GCRound() {
		s.garbageCollectTo(nextGC)
	}

	log.WithFields(logger.Fields{"round": next, "gc_round": s.GCRound()}).Infof("Starting round %d", next)
	return nil
}

// garbageCollectTo sweeps every round at or below target out of the
// round, certificate, batch and transmission indices, and raises
// gc_round to target. The caller must hold writeMu.
func (s *Store) garbageCollectTo(target field.Round) {
	s.roundsMu.Lock()
	staleRounds := make([]field.Round, 0)
	staleEntries := make([]roundEntry, 0)
	for _, k := range s.rounds.Keys() {
		round := k.(field.Round)
		if round > target {
			continue
		}
		staleRounds = append(staleRounds, round)
		v, _ := s.rounds.Get(round)
		for _, e := range v.(*linkedhashset.Set).Values() {
			staleEntries = append(staleEntries, e.(roundEntry))
		}
	}
	for _, round := range staleRounds {
		s.rounds.Remove(round)
	}
	s.roundsMu.Unlock()

	s.certificatesMu.Lock()
	s.batchIDsMu.Lock()
	for _, entry := range staleEntries {
		s.certificates.Remove(entry.CertificateID)
		s.batchIDs.Remove(entry.BatchID)
	}
	s.batchIDsMu.Unlock()
	s.certificatesMu.Unlock()

	s.transmissionsMu.Lock()
	for _, entry := range staleEntries {
		for _, k := range s.transmissions.Keys() {
			txID := k.(field.TransmissionID)
			v, _ := s.transmissions.Get(txID)
			te := v.(*transmissionEntry)
			if !te.CertificateIDs.Contains(entry.CertificateID) {
				continue
			}
			te.CertificateIDs.Remove(entry.CertificateID)
			if te.CertificateIDs.Size() == 0 {
				s.transmissions.Remove(txID)
			}
		}
	}
	s.transmissionsMu.Unlock()

	s.committeesMu.Lock()
	for _, k := range s.committees.Keys() {
		round := k.(field.Round)
		if round <= target {
			s.committees.Remove(round)
		}
	}
	s.committeesMu.Unlock()

	atomic.StoreUint64(&s.gcRound, uint64(target))
}

// saturatingSub computes a-b, floored at 0, mirroring the original
// storage helper's saturating_sub on next_gc_round.
func saturatingSub(a, b field.Round) field.Round {
	if b > a {
		return 0
	}
	return a - b
}
