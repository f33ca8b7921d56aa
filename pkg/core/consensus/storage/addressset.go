package storage

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/dusk-network/narwhal-store/pkg/crypto/address"
)

// addressSet is the small membership set admission checks build up to
// hand to committee.Committee.IsQuorumThresholdReached.
type addressSet = mapset.Set[address.Address]

func newAddressSet() addressSet {
	return mapset.NewThreadUnsafeSet[address.Address]()
}
