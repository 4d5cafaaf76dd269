package nocroute

// destset.go implements the destination-set type attached to routing-table entries
// and carried by packets: a set of endpoint identities.

import (
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// DestSet is a set of endpoint identities. The zero value is the empty set.
type DestSet struct {
	bits *bitset.BitSet
}

// NewDestSet returns the set holding the given endpoints
func NewDestSet(eps ...int) DestSet {
	ds := DestSet{}
	for _, ep := range eps {
		ds.Add(ep)
	}
	return ds
}

// Add includes endpoint ep
func (ds *DestSet) Add(ep int) {
	if ep < 0 {
		panic("negative endpoint in destination set")
	}
	if ds.bits == nil {
		ds.bits = bitset.New(uint(ep + 1))
	}
	ds.bits.Set(uint(ep))
}

// Has tells whether ep is a member
func (ds DestSet) Has(ep int) bool {
	if ds.bits == nil || ep < 0 {
		return false
	}
	return ds.bits.Test(uint(ep))
}

// Len is the number of members
func (ds DestSet) Len() int {
	if ds.bits == nil {
		return 0
	}
	return int(ds.bits.Count())
}

// Empty is true when the set has no members
func (ds DestSet) Empty() bool {
	return ds.Len() == 0
}

// Intersects is true when ds and other share a member
func (ds DestSet) Intersects(other DestSet) bool {
	if ds.bits == nil || other.bits == nil {
		return false
	}
	return ds.bits.IntersectionCardinality(other.bits) > 0
}

// Union returns a new set holding the members of both
func (ds DestSet) Union(other DestSet) DestSet {
	switch {
	case ds.bits == nil && other.bits == nil:
		return DestSet{}
	case ds.bits == nil:
		return DestSet{bits: other.bits.Clone()}
	case other.bits == nil:
		return DestSet{bits: ds.bits.Clone()}
	}
	return DestSet{bits: ds.bits.Union(other.bits)}
}

// IsSubsetOf is true when every member of ds is in other
func (ds DestSet) IsSubsetOf(other DestSet) bool {
	if ds.bits == nil {
		return true
	}
	if other.bits == nil {
		return ds.Empty()
	}
	return ds.bits.DifferenceCardinality(other.bits) == 0
}

// Equal compares membership
func (ds DestSet) Equal(other DestSet) bool {
	return ds.IsSubsetOf(other) && other.IsSubsetOf(ds)
}

// Members lists the endpoints in increasing order
func (ds DestSet) Members() []int {
	members := []int{}
	if ds.bits == nil {
		return members
	}
	for i, ok := ds.bits.NextSet(0); ok; i, ok = ds.bits.NextSet(i + 1) {
		members = append(members, int(i))
	}
	return members
}

func (ds DestSet) String() string {
	strs := []string{}
	for _, ep := range ds.Members() {
		strs = append(strs, strconv.Itoa(ep))
	}
	return "{" + strings.Join(strs, ",") + "}"
}
