package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSparseAssembly(t *testing.T) {
	{ // Overlapping blocks are summed, negative locations skipped
		K := NewDOK(4, 4)
		local := mat.NewDense(2, 2, []float64{
			1, 2,
			3, 4,
		})
		require.NoError(t, K.Assemble(0, local, []int{0, 1}, []int{0, 1}))
		require.NoError(t, K.Assemble(1, local, []int{1, 2}, []int{1, 2}))
		require.NoError(t, K.Assemble(2, local, []int{-1, 3}, []int{3, -1}))
		Kd := K.ToDense()
		assert.Equal(t, []float64{
			1, 2, 0, 0,
			3, 5, 2, 0,
			0, 3, 4, 0,
			0, 0, 0, 3,
		}, Kd.RawMatrix().Data)
		assert.Equal(t, 8, K.NNZ())

		Kc := K.ToCSR()
		y := Kc.MulVec(mat.NewVecDense(4, []float64{1, 1, 1, 1}))
		assert.Equal(t, []float64{3, 10, 7, 3}, y.RawVector().Data)
		assert.False(t, Kc.IsSymmetric(1.e-12))
	}
	{ // Dimension errors are reported, not panicked
		K := NewDOK(2, 2)
		local := mat.NewDense(2, 2, nil)
		assert.Error(t, K.Assemble(7, local, []int{0}, []int{0, 1}))
		local.Set(0, 0, 1)
		assert.Error(t, K.Assemble(7, local, []int{0, 2}, []int{0, 1}))
	}
	{ // Read only matrices refuse writes
		K := NewDOK(2, 2)
		K.SetReadOnly("K")
		assert.Panics(t, func() { _ = K.Assemble(0, mat.NewDense(1, 1, []float64{1}), []int{0}, []int{0}) })
	}
	{ // Symmetric assembly
		K := NewDOK(3, 3)
		local := mat.NewDense(2, 2, []float64{2, -1, -1, 2})
		require.NoError(t, K.Assemble(0, local, []int{0, 1}, []int{0, 1}))
		require.NoError(t, K.Assemble(1, local, []int{1, 2}, []int{1, 2}))
		assert.True(t, K.ToCSR().IsSymmetric(1.e-12))
	}
}

func TestGlobalVector(t *testing.T) {
	R := NewGlobalVector(4, "R")
	assert.NoError(t, R.ScatterAdd([]float64{1, 2}, []int{0, 3}))
	assert.NoError(t, R.ScatterAdd([]float64{1, 5}, []int{3, -1}))
	assert.Equal(t, []float64{1, 0, 0, 3}, R.Data())
	assert.Equal(t, 3., R.MaxAbs())
	assert.Error(t, R.ScatterAdd([]float64{1}, []int{4}))
	assert.Error(t, R.ScatterAdd([]float64{1, 2}, []int{1}))
	assert.False(t, IsNan(R))
	R.Data()[1] = math.NaN()
	assert.True(t, IsNan(R))
	R.Zero()
	assert.Equal(t, 0., R.MaxAbs())
}

func TestPOW(t *testing.T) {
	assert.Equal(t, 1., POW(3, 0))
	assert.Equal(t, 81., POW(3, 4))
	assert.InDelta(t, 1./27., POW(3, -3), 1.e-15)
	assert.InDelta(t, 3486784401., POW(3, 20), 1.e-3)
	assert.Equal(t, -1., Sign(-0.5))
	assert.Equal(t, 1., Sign(0))
	assert.InDelta(t, 90., Rad2Deg(Deg2Rad(90)), 1.e-12)
}
