package storage

import (
	logger "github.com/sirupsen/logrus"

	"github.com/dusk-network/narwhal-store/pkg/core/data/batch"
)

// logFields builds the structured fields the teacher's chain package
// attaches to every state-changing log line.
func logFields(cert *batch.Certificate) logger.Fields {
	return logger.Fields{
		"round":          cert.Round(),
		"certificate_id": cert.CertificateID().String(),
		"batch_id":       cert.BatchID().String(),
		"author":         cert.Author().String(),
	}
}
