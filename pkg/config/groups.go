package config

import "time"

// loggerConfiguration controls the storage core's logrus output, kept
// from the node's general configuration layout.
type loggerConfiguration struct {
	Level  string
	Output string
}

// storageConfiguration groups the knobs owned by the mempool storage
// core. Unlike the node's other configuration groups (network, database,
// rpc — dropped here, see DESIGN.md, since the core has no network or
// persistence surface), this is the only group the core itself reads.
type storageConfiguration struct {
	// MaxGCRounds is the retention depth in rounds (the core's single
	// immutable knob, per spec).
	MaxGCRounds uint64

	// LivenessLowerBound and LivenessUpperBound bound how far a batch
	// header or signer timestamp may drift from wall-clock before the
	// liveness check rejects it.
	LivenessLowerBound time.Duration
	LivenessUpperBound time.Duration
}
