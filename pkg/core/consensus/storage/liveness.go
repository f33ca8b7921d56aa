package storage

import (
	"time"

	"github.com/pkg/errors"
)

// defaultLivenessCheck builds the config-driven LivenessCheck used when a
// Store is constructed without WithLivenessCheck: a timestamp is accepted
// if it falls within [now-lower, now+upper].
func defaultLivenessCheck(lower, upper time.Duration) LivenessCheck {
	return func(timestamp int64) error {
		now := time.Now()
		ts := time.Unix(timestamp, 0)
		if ts.Before(now.Add(-lower)) {
			return errors.Errorf("timestamp %d is older than the liveness lower bound %s", timestamp, lower)
		}
		if ts.After(now.Add(upper)) {
			return errors.Errorf("timestamp %d is ahead of the liveness upper bound %s", timestamp, upper)
		}
		return nil
	}
}
