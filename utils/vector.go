package utils

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// GlobalVector is a dense global residual that element contributions are scattered into
type GlobalVector struct {
	V    *mat.VecDense
	name string
}

func NewGlobalVector(N int, name ...string) (gv GlobalVector) {
	gv = GlobalVector{
		V:    mat.NewVecDense(N, nil),
		name: "unnamed",
	}
	if len(name) != 0 {
		gv.name = name[0]
	}
	return
}

func (gv GlobalVector) Len() int            { return gv.V.Len() }
func (gv GlobalVector) AtVec(i int) float64 { return gv.V.AtVec(i) }
func (gv GlobalVector) Data() []float64     { return gv.V.RawVector().Data }

// ScatterAdd sums local into the entries lm; negative entries of lm are skipped
func (gv GlobalVector) ScatterAdd(local []float64, lm []int) (err error) {
	var (
		N    = gv.V.Len()
		data = gv.V.RawVector().Data
	)
	if len(local) != len(lm) {
		err = fmt.Errorf("vector %q: %d local values for %d locations", gv.name, len(local), len(lm))
		return
	}
	for i, ind := range lm {
		if ind < 0 {
			continue
		}
		if ind >= N {
			err = fmt.Errorf("vector %q: location %d out of range [0,%d)", gv.name, ind, N)
			return
		}
		data[ind] += local[i]
	}
	return
}

func (gv GlobalVector) Zero() {
	gv.V.Zero()
}

func (gv GlobalVector) MaxAbs() (m float64) {
	for _, val := range gv.Data() {
		m = math.Max(m, math.Abs(val))
	}
	return
}
