package types

import (
	"fmt"
	"math"
)

/*
PairKey is an always positive number that stores two element IDs in ascending order, so that the pair
(7, 3) and the pair (3, 7) share one key. It is the lookup key of the contact pair registry.
*/
type PairKey uint64

func NewPairKey(ids [2]int) (packed PairKey) {
	var (
		limit = math.MaxUint32
	)
	for _, id := range ids {
		if id < 0 || id > limit {
			panic(fmt.Errorf("unable to pack two element IDs into a uint64, have %d and %d as inputs",
				ids[0], ids[1]))
		}
	}
	var i1, i2 int
	if ids[0] <= ids[1] {
		i1, i2 = ids[0], ids[1]
	} else {
		i1, i2 = ids[1], ids[0]
	}
	packed = PairKey(i1 + i2<<32)
	return
}

// IDs returns the element IDs, smaller first
func (pk PairKey) IDs() (ids [2]int) {
	var (
		hi PairKey
	)
	hi = pk >> 32
	ids[1] = int(hi)
	ids[0] = int(pk - hi*(1<<32))
	return
}

func (pk PairKey) String() string {
	ids := pk.IDs()
	return fmt.Sprintf("(%d,%d)", ids[0], ids[1])
}
