package geometry

import (
	"gonum.org/v1/gonum/num/dual"
	"gonum.org/v1/gonum/spatial/r3"
)

// DualVec is a 3-vector of dual numbers, the real part is the value and the epsilon part its
// directional derivative
type DualVec struct {
	X, Y, Z dual.Number
}

func NewDualVec(real, emag r3.Vec) DualVec {
	return DualVec{
		X: dual.Number{Real: real.X, Emag: emag.X},
		Y: dual.Number{Real: real.Y, Emag: emag.Y},
		Z: dual.Number{Real: real.Z, Emag: emag.Z},
	}
}

func (a DualVec) Real() r3.Vec { return r3.Vec{X: a.X.Real, Y: a.Y.Real, Z: a.Z.Real} }

func (a DualVec) Emag() r3.Vec { return r3.Vec{X: a.X.Emag, Y: a.Y.Emag, Z: a.Z.Emag} }

func DualAdd(a, b DualVec) DualVec { return NewDualVec(r3.Add(a.Real(), b.Real()), r3.Add(a.Emag(), b.Emag())) }

func DualSub(a, b DualVec) DualVec { return NewDualVec(r3.Sub(a.Real(), b.Real()), r3.Sub(a.Emag(), b.Emag())) }

// DualScale returns s*a
func DualScale(s dual.Number, a DualVec) DualVec {
	return DualVec{X: dual.Mul(s, a.X), Y: dual.Mul(s, a.Y), Z: dual.Mul(s, a.Z)}
}

func DualDot(a, b DualVec) dual.Number {
	return DualSum(dual.Mul(a.X, b.X), dual.Mul(a.Y, b.Y), dual.Mul(a.Z, b.Z))
}

func DualNorm(a DualVec) dual.Number { return dual.Sqrt(DualDot(a, a)) }

// DualSum adds dual numbers
func DualSum(x ...dual.Number) (s dual.Number) {
	for _, v := range x {
		s.Real += v.Real
		s.Emag += v.Emag
	}
	return
}

/*
EvalDual evaluates the centerline at a dual parameter with the dofs moving in direction v,
d(eps) = Dofs + eps*v. A nil v keeps the dofs fixed. The epsilon parts are

	r:   N v + xi.Emag Nxi d
	rxi: Nxi v + xi.Emag Nxixi d
*/
func (c *Centerline) EvalDual(xi dual.Number, v []float64) (r, rxi DualVec) {
	N, Nxi, Nxixi := c.Ele.Basis(xi.Real)
	var (
		er  = r3.Scale(xi.Emag, Nxi.Apply(c.Dofs))
		erx = r3.Scale(xi.Emag, Nxixi.Apply(c.Dofs))
	)
	if v != nil {
		er = r3.Add(er, N.Apply(v))
		erx = r3.Add(erx, Nxi.Apply(v))
	}
	r = NewDualVec(N.Apply(c.Dofs), er)
	rxi = NewDualVec(Nxi.Apply(c.Dofs), erx)
	return
}
