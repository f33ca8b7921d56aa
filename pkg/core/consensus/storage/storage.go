// Package storage is the in-memory storage core of a Narwhal-style
// DAG-based mempool: the committee, certificate, batch and transmission
// indices, the admission checks that gate insertion, and garbage
// collection. It is adapted from the teacher's pkg/core/chain.Chain
// (mutex-guarded in-memory state, logrus-fielded logging) generalized
// from a single linear chain of blocks to a round-indexed DAG of batch
// certificates, and from the original snarkOS narwhal storage helper
// (node/narwhal/src/helpers/storage.rs) for the index shapes and
// admission algorithm itself.
package storage

import (
	"sync"
	"sync/atomic"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/emirpasic/gods/sets/linkedhashset"
	logger "github.com/sirupsen/logrus"

	"github.com/dusk-network/narwhal-store/pkg/config"
	"github.com/dusk-network/narwhal-store/pkg/core/consensus/committee"
	"github.com/dusk-network/narwhal-store/pkg/core/data/batch"
	"github.com/dusk-network/narwhal-store/pkg/core/data/transmission"
	"github.com/dusk-network/narwhal-store/pkg/crypto/address"
	"github.com/dusk-network/narwhal-store/pkg/crypto/field"
)

var log = logger.WithFields(logger.Fields{"process": "narwhal storage"})

// roundEntry is the (certificate ID, batch ID, author) triple the round
// index associates with each round.
type roundEntry struct {
	CertificateID field.CertificateID
	BatchID       field.BatchID
	Author        address.Address
}

// transmissionEntry pairs a stored transmission with the set of
// certificates that reference it.
type transmissionEntry struct {
	Transmission   transmission.Transmission
	CertificateIDs *linkedhashset.Set // of field.CertificateID
}

// LivenessCheck decides whether a timestamp lies within the accepted
// liveness window relative to wall-clock. It is supplied by the
// surrounding node; the storage core never owns this policy (see
// Non-goals).
type LivenessCheck func(timestamp int64) error

// Store holds the five indices and scalar watermarks described in the
// package doc. All exported methods are safe for concurrent use.
type Store struct {
	// currentRound and gcRound are atomic 64-bit watermarks: monotone,
	// used for fast reads and logging. Every correctness-critical
	// decision re-validates under the relevant index lock, per the
	// concurrency model.
	currentRound uint64
	gcRound      uint64
	maxGCRounds  uint64

	committeesMu sync.RWMutex
	committees   *linkedhashmap.Map // field.Round -> committee.Committee

	roundsMu sync.RWMutex
	rounds   *linkedhashmap.Map // field.Round -> *linkedhashset.Set of roundEntry

	certificatesMu sync.RWMutex
	certificates   *linkedhashmap.Map // field.CertificateID -> *batch.Certificate

	batchIDsMu sync.RWMutex
	batchIDs   *linkedhashmap.Map // field.BatchID -> field.Round

	transmissionsMu sync.RWMutex
	transmissions   *linkedhashmap.Map // field.TransmissionID -> *transmissionEntry

	// writeMu serializes the multi-index mutations (InsertCertificate,
	// RemoveCertificate, AdvanceRound) so that two concurrent attempts to
	// mutate the same certificate/round linearize: the loser observes
	// the winner's effects under its own index locks rather than racing
	// with it. A re-insert of the same certificate is then a no-op, and a
	// second certificate for the same (round, author) fails admission.
	writeMu sync.Mutex

	liveness LivenessCheck
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithLivenessCheck overrides the default, config-driven liveness window.
func WithLivenessCheck(check LivenessCheck) Option {
	return func(s *Store) { s.liveness = check }
}

// New initializes storage for the given starting committee and
// retention depth. The committee's own round becomes current_round, and
// is the only entry gc_round starts below.
func New(initial committee.Committee, maxGCRounds uint64, opts ...Option) *Store {
	s := &Store{
		maxGCRounds:   maxGCRounds,
		committees:    linkedhashmap.New(),
		rounds:        linkedhashmap.New(),
		certificates:  linkedhashmap.New(),
		batchIDs:      linkedhashmap.New(),
		transmissions: linkedhashmap.New(),
	}
	atomic.StoreUint64(&s.currentRound, uint64(initial.Round()))
	s.committees.Put(initial.Round(), initial)

	for _, opt := range opts {
		opt(s)
	}
	if s.liveness == nil {
		s.liveness = defaultLivenessCheck(config.Get().Storage.LivenessLowerBound, config.Get().Storage.LivenessUpperBound)
	}
	return s
}

// CurrentRound returns the current round.
func (s *Store) CurrentRound() field.Round {
	return field.Round(atomic.LoadUint64(&s.currentRound))
}

// GCRound returns the round garbage collection has occurred up to (inclusive).
func (s *Store) GCRound() field.Round {
	return field.Round(atomic.LoadUint64(&s.gcRound))
}

// MaxGCRounds returns the immutable retention depth.
func (s *Store) MaxGCRounds() uint64 {
	return s.maxGCRounds
}

// CurrentCommittee returns the committee for the current round. The
// committee for current_round always exists once the store is
// constructed (see AdvanceRound); a missing entry is a programmer error.
func (s *Store) CurrentCommittee() committee.Committee {
	c, ok := s.GetCommittee(s.CurrentRound())
	if !ok {
		panic("narwhal storage: the committee for the current round should exist")
	}
	return c
}

// GetCommittee returns the committee for round, if any.
func (s *Store) GetCommittee(round field.Round) (committee.Committee, bool) {
	s.committeesMu.RLock()
	defer s.committeesMu.RUnlock()
	v, ok := s.committees.Get(round)
	if !ok {
		return nil, false
	}
	return v.(committee.Committee), true
}

// ContainsCertificatesForRound reports whether round has any certificates.
func (s *Store) ContainsCertificatesForRound(round field.Round) bool {
	s.roundsMu.RLock()
	defer s.roundsMu.RUnlock()
	_, ok := s.rounds.Get(round)
	return ok
}

// ContainsCertificate reports whether id is present in the certificate index.
func (s *Store) ContainsCertificate(id field.CertificateID) bool {
	s.certificatesMu.RLock()
	defer s.certificatesMu.RUnlock()
	_, ok := s.certificates.Get(id)
	return ok
}

// ContainsCertificateInRoundFrom reports whether round already has a
// certificate authored by author.
func (s *Store) ContainsCertificateInRoundFrom(round field.Round, author address.Address) bool {
	s.roundsMu.RLock()
	defer s.roundsMu.RUnlock()
	v, ok := s.rounds.Get(round)
	if !ok {
		return false
	}
	for _, e := range v.(*linkedhashset.Set).Values() {
		if e.(roundEntry).Author == author {
			return true
		}
	}
	return false
}

// ContainsBatch reports whether id is present in the batch index.
func (s *Store) ContainsBatch(id field.BatchID) bool {
	s.batchIDsMu.RLock()
	defer s.batchIDsMu.RUnlock()
	_, ok := s.batchIDs.Get(id)
	return ok
}

// ContainsTransmission reports whether id is present in the transmission index.
func (s *Store) ContainsTransmission(id field.TransmissionID) bool {
	s.transmissionsMu.RLock()
	defer s.transmissionsMu.RUnlock()
	_, ok := s.transmissions.Get(id)
	return ok
}

// GetTransmission returns the transmission for id, if any.
func (s *Store) GetTransmission(id field.TransmissionID) (transmission.Transmission, bool) {
	s.transmissionsMu.RLock()
	defer s.transmissionsMu.RUnlock()
	v, ok := s.transmissions.Get(id)
	if !ok {
		return transmission.Transmission{}, false
	}
	return v.(*transmissionEntry).Transmission, true
}

// GetCertificate returns the certificate for id, if any.
func (s *Store) GetCertificate(id field.CertificateID) (*batch.Certificate, bool) {
	s.certificatesMu.RLock()
	defer s.certificatesMu.RUnlock()
	v, ok := s.certificates.Get(id)
	if !ok {
		return nil, false
	}
	return v.(*batch.Certificate), true
}

// GetRoundForBatch returns the round of the given batch ID, if any.
func (s *Store) GetRoundForBatch(id field.BatchID) (field.Round, bool) {
	s.batchIDsMu.RLock()
	defer s.batchIDsMu.RUnlock()
	v, ok := s.batchIDs.Get(id)
	if !ok {
		return 0, false
	}
	return v.(field.Round), true
}

// GetRoundForCertificate returns the round of the given certificate ID, if any.
func (s *Store) GetRoundForCertificate(id field.CertificateID) (field.Round, bool) {
	cert, ok := s.GetCertificate(id)
	if !ok {
		return 0, false
	}
	return cert.Round(), true
}

// GetCertificatesForRound returns the certificates stored for round. The
// genesis round (0) and unknown rounds both return an empty set.
func (s *Store) GetCertificatesForRound(round field.Round) []*batch.Certificate {
	if round == 0 {
		return nil
	}
	s.roundsMu.RLock()
	v, ok := s.rounds.Get(round)
	s.roundsMu.RUnlock()
	if !ok {
		return nil
	}
	entries := v.(*linkedhashset.Set).Values()

	s.certificatesMu.RLock()
	defer s.certificatesMu.RUnlock()
	out := make([]*batch.Certificate, 0, len(entries))
	for _, e := range entries {
		if c, ok := s.certificates.Get(e.(roundEntry).CertificateID); ok {
			out = append(out, c.(*batch.Certificate))
		}
	}
	return out
}

// CommitteesIter returns a snapshot of the (round, committee) entries in
// insertion order.
func (s *Store) CommitteesIter() []struct {
	Round     field.Round
	Committee committee.Committee
} {
	s.committeesMu.RLock()
	defer s.committeesMu.RUnlock()
	keys := s.committees.Keys()
	out := make([]struct {
		Round     field.Round
		Committee committee.Committee
	}, 0, len(keys))
	for _, k := range keys {
		v, _ := s.committees.Get(k)
		out = append(out, struct {
			Round     field.Round
			Committee committee.Committee
		}{k.(field.Round), v.(committee.Committee)})
	}
	return out
}
