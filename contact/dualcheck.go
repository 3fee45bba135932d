package contact

import (
	"math"

	"github.com/notargets/gobeamcontact/geometry"
	"github.com/notargets/gobeamcontact/types"
	"github.com/notargets/gobeamcontact/utils"
	"gonum.org/v1/gonum/num/dual"
	"gonum.org/v1/gonum/num/hyperdual"
)

func dualConst(x float64) dual.Number { return dual.Number{Real: x} }

// conditions are the closest point conditions dr.r1xi and dr.r2xi in dual numbers
func (ec *evalContext) conditions(xi, eta dual.Number, v1, v2 []float64) (c1, c2 dual.Number) {
	r1, r1xi := ec.c1.EvalDual(xi, v1)
	r2, r2xi := ec.c2.EvalDual(eta, v2)
	dr := geometry.DualSub(r1, r2)
	return geometry.DualDot(dr, r1xi), geometry.DualDot(dr, r2xi)
}

// dualParams solves the linearized parameter conditions of v for the dof direction (v1, v2)
func (p *Pair) dualParams(ec *evalContext, v *Variable, v1, v2 []float64) (xiE, etaE float64, err error) {
	var (
		x, e     = dualConst(v.Xi), dualConst(v.Eta)
		c1x, c2x = ec.conditions(dual.Number{Real: v.Xi, Emag: 1}, e, nil, nil)
		c1e, c2e = ec.conditions(x, dual.Number{Real: v.Eta, Emag: 1}, nil, nil)
		c1d, c2d = ec.conditions(x, e, v1, v2)
	)
	singular := func(det float64) error {
		return badInput("pair %v: singular parameter conditions at (%g,%g), det %g", p.key, v.Xi, v.Eta, det)
	}
	switch v.mode {
	case pmFixed:
	case pmEtaFree:
		if math.Abs(c2e.Emag) < utils.DETERMINANTTOL {
			return 0, 0, singular(c2e.Emag)
		}
		etaE = -c2d.Emag / c2e.Emag
	case pmXiFree:
		if math.Abs(c1x.Emag) < utils.DETERMINANTTOL {
			return 0, 0, singular(c1x.Emag)
		}
		xiE = -c1d.Emag / c1x.Emag
	case pmCPP:
		det := c1x.Emag*c2e.Emag - c1e.Emag*c2x.Emag
		if math.Abs(det) < utils.DETERMINANTTOL {
			return 0, 0, singular(det)
		}
		xiE = -(c2e.Emag*c1d.Emag - c1e.Emag*c2d.Emag) / det
		etaE = -(c1x.Emag*c2d.Emag - c2x.Emag*c1d.Emag) / det
	default:
		err = badInput("pair %v: no dual check for cut Gauss points", p.key)
	}
	return
}

// dualForce is the directional derivative of the contact force of v for the dof direction dir
func (p *Pair) dualForce(ec *evalContext, v *Variable, dir []float64) (fcE []float64, err error) {
	var (
		n1        = p.e1.NumDofs()
		v1, v2    = dir[:n1], dir[n1:]
		xiE, etaE float64
	)
	if xiE, etaE, err = p.dualParams(ec, v, v1, v2); err != nil {
		return
	}
	xi := dual.Number{Real: v.Xi, Emag: xiE}
	eta := dual.Number{Real: v.Eta, Emag: etaE}
	r1, r1xi := ec.c1.EvalDual(xi, v1)
	r2, r2xi := ec.c2.EvalDual(eta, v2)
	dr := geometry.DualSub(r1, r2)
	norm := geometry.DualNorm(dr)
	n := geometry.DualScale(dual.Scale(v.Sign, dual.Inv(norm)), dr)
	g := geometry.DualSum(dual.Scale(v.Sign, norm), dualConst(-p.e1.Radius-p.e2.Radius))

	dot := geometry.DualDot(r1xi, r2xi)
	lens := dual.Mul(geometry.DualNorm(r1xi), geometry.DualNorm(r2xi))
	c := dual.Mul(dual.Scale(utils.Sign(dot.Real), dot), dual.Inv(lens))
	scale := dual.Number{Real: v.Scale, Emag: v.DScale * c.Emag}

	force := dual.Number{Real: v.Fp, Emag: v.Dfp * g.Emag}
	if v.Damping && ec.hasVelocity() {
		o1, _ := ec.old1.EvalDual(xi, nil)
		o2, _ := ec.old2.EvalDual(eta, nil)
		rel := geometry.DualSub(geometry.DualSub(r1, o1), geometry.DualSub(r2, o2))
		gdot := geometry.DualDot(n, geometry.DualScale(dualConst(1/ec.dt), rel))
		d := dual.Number{Real: v.D, Emag: v.DD * g.Emag}
		force = geometry.DualSum(force, dual.Mul(d, dual.Scale(-1, gdot)))
	}
	nF := geometry.DualScale(dual.Scale(v.IntFac, dual.Mul(scale, force)), n)

	fcE = make([]float64, p.numDofs())
	scatter := func(N, Nxi geometry.Basis, paramE float64, off int, sgn float64) {
		for i := range N {
			Ni := dual.Number{Real: N[i], Emag: paramE * Nxi[i]}
			for j, comp := range [3]dual.Number{nF.X, nF.Y, nF.Z} {
				fcE[off+3*i+j] = sgn * dual.Mul(Ni, comp).Emag
			}
		}
	}
	N1, N1xi, _ := p.e1.Basis(v.Xi)
	N2, N2xi, _ := p.e2.Basis(v.Eta)
	scatter(N1, N1xi, xiE, 0, 1)
	scatter(N2, N2xi, etaE, n1, -1)
	if p.cfg.ConsistentTransition && v.DScale != 0 {
		// -IntFac E dScale dc, with dc and its derivative along dir from hyperdual numbers
		var (
			u  = make([]float64, len(dir))
			hc hyperdual.Number
		)
		for i := range u {
			u[i] = 1
			hc, err = p.hyperCosine(ec, v, hyperDirs{u1: u[:n1], u2: u[n1:], w1: v1, w2: v2})
			u[i] = 0
			if err != nil {
				return nil, err
			}
			fcE[i] -= v.IntFac * (-v.Fp*g.Emag*v.DScale*hc.E1mag + v.Energy*v.ddScale*hc.E2mag*hc.E1mag +
				v.Energy*v.DScale*hc.E1E2mag)
		}
	}
	return
}

/*
CheckTangentDual compares the tangent of every contact point with the dual number derivative of its
force, one dof direction at a time. Points with the basic stiffness only are skipped.
*/
func (p *Pair) CheckTangentDual(in EvalInput, tol float64) (tc TangentCheck, err error) {
	var (
		cfg = p.cfg
		ev  *evaluation
		ec  *evalContext
		nd  = p.numDofs()
		dir = make([]float64, nd)
	)
	switch {
	case cfg.EndpointSegmentation:
		return tc, badInput("dual tangent check with BEAMS_ENDPOINTSEGMENTATION")
	case cfg.Smoothing == types.SM_CPP:
		return tc, badInput("dual tangent check with tangent smoothing")
	}
	if ev, err = p.evaluate(in); err != nil {
		return
	}
	if ec, err = p.context(in); err != nil {
		return
	}
	for v := range ev.store.All() {
		if !v.CompleteStf {
			continue
		}
		_, K, err := p.contribution(ec, v)
		if err != nil {
			return tc, err
		}
		tc.Points++
		for k := 0; k < nd; k++ {
			dir[k] = 1
			fcE, err := p.dualForce(ec, v, dir)
			dir[k] = 0
			if err != nil {
				return tc, err
			}
			for i := 0; i < nd; i++ {
				tc.compare(K.At(i, k), -fcE[i])
			}
		}
	}
	tc.finish(tol)
	return
}
