package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypes(t *testing.T) {
	{ // Test packed int for pair lookup
		pk := NewPairKey([2]int{1, 0})
		assert.Equal(t, PairKey(1<<32), pk)
		assert.Equal(t, [2]int{0, 1}, pk.IDs())

		pk = NewPairKey([2]int{0, 1})
		assert.Equal(t, PairKey(1<<32), pk)

		pk = NewPairKey([2]int{100, 1})
		assert.Equal(t, PairKey(100*(1<<32)+1), pk)
		assert.Equal(t, [2]int{1, 100}, pk.IDs())
		assert.Equal(t, "(1,100)", pk.String())

		pk = NewPairKey([2]int{1<<32 - 1, 1<<32 - 1})
		assert.Equal(t, PairKey(1<<64-1), pk)
		assert.Equal(t, [2]int{1<<32 - 1, 1<<32 - 1}, pk.IDs())

		assert.Panics(t, func() { NewPairKey([2]int{-1, 2}) })
	}
	{ // Penalty law labels
		labels := []string{"LP", "qp", " LPQP", "lpcp", "LpDqP", "lpep", "LNQP"}
		laws := []PenaltyLaw{PL_LP, PL_QP, PL_LPQP, PL_LPCP, PL_LPDQP, PL_LPEP, PL_LNQP}
		for i, label := range labels {
			pl, err := NewPenaltyLaw(label)
			assert.NoError(t, err)
			assert.Equal(t, laws[i], pl)
		}
		assert.Equal(t, "LPDQP", PL_LPDQP.String())
		_, err := NewPenaltyLaw("cubic")
		assert.True(t, errors.Is(err, ErrBadInput))
	}
	{ // Smoothing and contact kinds
		sm, err := NewSmoothing("CPP")
		assert.NoError(t, err)
		assert.Equal(t, SM_CPP, sm)
		sm, err = NewSmoothing("")
		assert.NoError(t, err)
		assert.Equal(t, SM_None, sm)
		_, err = NewSmoothing("spline")
		assert.ErrorIs(t, err, ErrBadInput)
		assert.Equal(t, "SmallAngleGP", CK_SmallAngleGP.String())
		assert.Equal(t, "Endpoint", CK_Endpoint.String())
	}
}
