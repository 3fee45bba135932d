package geometry

import (
	"gonum.org/v1/gonum/num/hyperdual"
	"gonum.org/v1/gonum/spatial/r3"
)

// HyperVec is a 3-vector of hyperdual numbers, the E1E2 part carries the mixed second derivative
type HyperVec struct {
	X, Y, Z hyperdual.Number
}

func NewHyperVec(real, e1, e2, e1e2 r3.Vec) HyperVec {
	return HyperVec{
		X: hyperdual.Number{Real: real.X, E1mag: e1.X, E2mag: e2.X, E1E2mag: e1e2.X},
		Y: hyperdual.Number{Real: real.Y, E1mag: e1.Y, E2mag: e2.Y, E1E2mag: e1e2.Y},
		Z: hyperdual.Number{Real: real.Z, E1mag: e1.Z, E2mag: e2.Z, E1E2mag: e1e2.Z},
	}
}

func HyperSub(a, b HyperVec) HyperVec {
	return HyperVec{X: hyperdual.Sub(a.X, b.X), Y: hyperdual.Sub(a.Y, b.Y), Z: hyperdual.Sub(a.Z, b.Z)}
}

func HyperDot(a, b HyperVec) hyperdual.Number {
	return hyperdual.Add(hyperdual.Add(hyperdual.Mul(a.X, b.X), hyperdual.Mul(a.Y, b.Y)), hyperdual.Mul(a.Z, b.Z))
}

func HyperNorm(a HyperVec) hyperdual.Number { return hyperdual.Sqrt(HyperDot(a, a)) }

/*
hyperTaylor evaluates f(xi) = B0(xi) d with xi = x + a e1 + b e2 + c e1e2 and d = D + e1 v1 + e2 v2,
B1 and B2 being the first and second derivative of B0:

	e1:   a B1 D + B0 v1
	e2:   b B1 D + B0 v2
	e1e2: c B1 D + a b B2 D + a B1 v2 + b B1 v1
*/
func hyperTaylor(xi hyperdual.Number, B0, B1, B2 Basis, D, v1, v2 []float64) HyperVec {
	var (
		a, b, c = xi.E1mag, xi.E2mag, xi.E1E2mag
		b1d     = B1.Apply(D)
		e1      = r3.Scale(a, b1d)
		e2      = r3.Scale(b, b1d)
		e12     = r3.Add(r3.Scale(c, b1d), r3.Scale(a*b, B2.Apply(D)))
	)
	if v1 != nil {
		e1 = r3.Add(e1, B0.Apply(v1))
		e12 = r3.Add(e12, r3.Scale(b, B1.Apply(v1)))
	}
	if v2 != nil {
		e2 = r3.Add(e2, B0.Apply(v2))
		e12 = r3.Add(e12, r3.Scale(a, B1.Apply(v2)))
	}
	return NewHyperVec(B0.Apply(D), e1, e2, e12)
}

// EvalHyper evaluates r and r_xi at a hyperdual parameter with the dofs moving along v1 (e1) and v2 (e2)
func (c *Centerline) EvalHyper(xi hyperdual.Number, v1, v2 []float64) (r, rxi HyperVec) {
	N, Nxi, Nxixi := c.Ele.Basis(xi.Real)
	N3 := c.Ele.BasisThird(xi.Real)
	r = hyperTaylor(xi, N, Nxi, Nxixi, c.Dofs, v1, v2)
	rxi = hyperTaylor(xi, Nxi, Nxixi, N3, c.Dofs, v1, v2)
	return
}

// SmoothedTangentHyper interpolates the smoothed nodal tangents at a hyperdual parameter
func (c *Centerline) SmoothedTangentHyper(xi hyperdual.Number) (t HyperVec) {
	var (
		N, Nxi, Nxixi = c.Ele.Basis(xi.Real)
		a, b, cc      = xi.E1mag, xi.E2mag, xi.E1E2mag
		t0, t1, t2    r3.Vec
	)
	for k, tk := range c.NodalTangents {
		t0 = r3.Add(t0, r3.Scale(N[k], tk))
		t1 = r3.Add(t1, r3.Scale(Nxi[k], tk))
		t2 = r3.Add(t2, r3.Scale(Nxixi[k], tk))
	}
	return NewHyperVec(t0, r3.Scale(a, t1), r3.Scale(b, t1), r3.Add(r3.Scale(cc, t1), r3.Scale(a*b, t2)))
}
