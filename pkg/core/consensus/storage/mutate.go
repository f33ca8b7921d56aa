package storage

import (
	"sync/atomic"

	"github.com/emirpasic/gods/sets/linkedhashset"

	"github.com/dusk-network/narwhal-store/pkg/core/data/batch"
	"github.com/dusk-network/narwhal-store/pkg/core/data/transmission"
	"github.com/dusk-network/narwhal-store/pkg/crypto/field"
)

// InsertCertificate re-validates cert under CheckCertificate and, if it
// passes, atomically inserts it together with any previously-missing
// transmissions supplied in provided. Insertion is idempotent: if the
// certificate is already present this is a no-op, not an error.
func (s *Store) InsertCertificate(cert *batch.Certificate, provided map[field.TransmissionID]transmission.Transmission) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if cert.Round() <= s.GCRound() {
		return &PreconditionError{Op: OpInsertCertificate, Detail: "certificate round is at or below gc_round"}
	}

	if s.ContainsCertificate(cert.CertificateID()) {
		log.WithFields(logFields(cert)).Debug("certificate already present, skipping insert")
		return nil
	}

	missing, err := s.CheckCertificate(cert, provided)
	if err != nil {
		return err
	}

	s.insertCertificateAtomic(cert, missing)
	return nil
}

// insertCertificateAtomic performs the actual multi-index write. The
// caller must hold writeMu and must have already validated cert.
func (s *Store) insertCertificateAtomic(cert *batch.Certificate, missing map[field.TransmissionID]transmission.Transmission) {
	certID := cert.CertificateID()
	round := cert.Round()

	s.transmissionsMu.Lock()
	for id, tx := range missing {
		v, ok := s.transmissions.Get(id)
		if !ok {
			v = &transmissionEntry{Transmission: tx, CertificateIDs: linkedhashset.New()}
			s.transmissions.Put(id, v)
		}
		v.(*transmissionEntry).CertificateIDs.Add(certID)
	}
	for _, id := range cert.TransmissionIDs() {
		if v, ok := s.transmissions.Get(id); ok {
			v.(*transmissionEntry).CertificateIDs.Add(certID)
		}
	}
	s.transmissionsMu.Unlock()

	s.certificatesMu.Lock()
	s.certificates.Put(certID, cert)
	s.certificatesMu.Unlock()

	s.batchIDsMu.Lock()
	s.batchIDs.Put(cert.BatchID(), round)
	s.batchIDsMu.Unlock()

	s.roundsMu.Lock()
	v, ok := s.rounds.Get(round)
	if !ok {
		v = linkedhashset.New()
		s.rounds.Put(round, v)
	}
	v.(*linkedhashset.Set).Add(roundEntry{CertificateID: certID, BatchID: cert.BatchID(), Author: cert.Author()})
	s.roundsMu.Unlock()

	if round > s.CurrentRound() {
		atomic.StoreUint64(&s.currentRound, uint64(round))
	}

	log.WithFields(logFields(cert)).Info("inserted certificate")
}

// RemoveCertificate removes id and its batch/round/transmission
// bookkeeping from storage. It reports whether the certificate was
// present; removing an absent certificate is logged, not an error, since
// a racing AdvanceRound's garbage collection may have already done so.
func (s *Store) RemoveCertificate(id field.CertificateID) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cert, ok := s.GetCertificate(id)
	if !ok {
		log.WithField("certificate_id", id.String()).Warnf("Certificate %s does not exist in storage", id)
		return false
	}

	s.certificatesMu.Lock()
	s.certificates.Remove(id)
	s.certificatesMu.Unlock()

	s.batchIDsMu.Lock()
	s.batchIDs.Remove(cert.BatchID())
	s.batchIDsMu.Unlock()

	s.roundsMu.Lock()
	if v, ok := s.rounds.Get(cert.Round()); ok {
		set := v.(*linkedhashset.Set)
		set.Remove(roundEntry{CertificateID: id, BatchID: cert.BatchID(), Author: cert.Author()})
		if set.Size() == 0 {
			s.rounds.Remove(cert.Round())
		}
	}
	s.roundsMu.Unlock()

	s.transmissionsMu.Lock()
	for _, txID := range cert.TransmissionIDs() {
		v, ok := s.transmissions.Get(txID)
		if !ok {
			continue
		}
		entry := v.(*transmissionEntry)
		entry.CertificateIDs.Remove(id)
		if entry.CertificateIDs.Size() == 0 {
			s.transmissions.Remove(txID)
		}
	}
	s.transmissionsMu.Unlock()

	log.WithFields(logFields(cert)).Info("removed certificate")
	return true
}
