// Package committee defines the validator-set capability the storage
// core relies on for membership and quorum checks. It generalizes the
// teacher's reduction committee (committee size capped, 0.75 quorum
// fraction) into a stake-weighted Byzantine quorum (>= 2f+1 of total
// stake), since the mempool committee carries real stake weights rather
// than a flat per-validator vote.
package committee

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/dusk-network/narwhal-store/pkg/crypto/address"
	"github.com/dusk-network/narwhal-store/pkg/crypto/field"
)

// Committee is the validator set and stake distribution for a single
// round, with the quorum predicate the storage core's admission checks
// depend on. The storage core never constructs one; it is handed
// committees by the caller at construction and on each round advance.
type Committee interface {
	// Round is the round this committee snapshot applies to.
	Round() field.Round
	// IsMember reports whether addr holds stake in this committee.
	IsMember(addr address.Address) bool
	// NumMembers is the number of distinct stakers.
	NumMembers() int
	// IsQuorumThresholdReached reports whether the combined stake of
	// authors reaches the Byzantine quorum (>= 2f+1 of total stake).
	IsQuorumThresholdReached(authors mapset.Set[address.Address]) bool
	// ToNextRound derives the committee that governs round+1.
	ToNextRound() Committee
}

// Static is an immutable, stake-weighted Committee snapshot. It is the
// only implementation the storage core ships with; real deployments are
// expected to supply their own Committee built from the ledger's
// current stake distribution.
type Static struct {
	round      field.Round
	membersIdx map[address.Address]uint64
	order      []address.Address // insertion order, for deterministic ToNextRound
	totalStake uint64
}

// NewStatic builds a Static committee for round from a stable-ordered
// list of (address, stake) pairs. Stake amounts of 0 are rejected by the
// caller's own construction logic; the storage core does not validate them.
func NewStatic(round field.Round, members []Member) *Static {
	c := &Static{
		round:      round,
		membersIdx: make(map[address.Address]uint64, len(members)),
		order:      make([]address.Address, 0, len(members)),
	}
	for _, m := range members {
		if _, exists := c.membersIdx[m.Address]; exists {
			continue
		}
		c.membersIdx[m.Address] = m.Stake
		c.order = append(c.order, m.Address)
		c.totalStake += m.Stake
	}
	return c
}

// Member is a single staker entry used to construct a Static committee.
type Member struct {
	Address address.Address
	Stake   uint64
}

// Round implements Committee.
func (c *Static) Round() field.Round { return c.round }

// IsMember implements Committee.
func (c *Static) IsMember(addr address.Address) bool {
	_, ok := c.membersIdx[addr]
	return ok
}

// NumMembers implements Committee.
func (c *Static) NumMembers() int { return len(c.order) }

// IsQuorumThresholdReached implements Committee. The Byzantine quorum is
// reached once the combined stake of authors strictly exceeds 2/3 of
// total stake (equivalent to >= 2f+1 when stake is evenly split across
// 3f+1 members).
func (c *Static) IsQuorumThresholdReached(authors mapset.Set[address.Address]) bool {
	if c.totalStake == 0 {
		return false
	}
	var sum uint64
	authors.Each(func(addr address.Address) bool {
		if stake, ok := c.membersIdx[addr]; ok {
			sum += stake
		}
		return false
	})
	// sum*3 > totalStake*2, computed without floating point.
	return sum*3 > c.totalStake*2
}

// ToNextRound implements Committee. Absent any stake-transition policy
// from the caller, the committee carries the same members forward to
// round+1 — real deployments are expected to call NewStatic directly
// with the ledger's updated stake distribution instead of relying on
// this default.
func (c *Static) ToNextRound() Committee {
	members := make([]Member, 0, len(c.order))
	for _, addr := range c.order {
		members = append(members, Member{Address: addr, Stake: c.membersIdx[addr]})
	}
	return NewStatic(c.round+1, members)
}
