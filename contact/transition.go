package contact

import (
	"fmt"
	"math"

	"github.com/notargets/gobeamcontact/geometry"
	"github.com/notargets/gobeamcontact/types"
	"github.com/notargets/gobeamcontact/utils"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/hyperdual"
)

// hyperDirs are two dof directions of a pair split by element, u along e1 and w along e2
type hyperDirs struct {
	u1, u2, w1, w2 []float64
}

// condition selects one of the parameter conditions
type condition uint8

const (
	condXi    condition = iota // dr.t1
	condEta                    // dr.t2
	condBound                  // projection of a beam end of element 2 onto element 1
)

func hyperConst(x float64) hyperdual.Number { return hyperdual.Number{Real: x} }

func hyperSeed(x float64) hyperdual.Number { return hyperdual.Number{Real: x, E1mag: 1} }

// hyperCondition evaluates a parameter condition in hyperdual numbers
func (p *Pair) hyperCondition(ec *evalContext, cond condition, smoothed bool, xi, eta hyperdual.Number,
	hd hyperDirs) hyperdual.Number {
	r1, t1 := ec.c1.EvalHyper(xi, hd.u1, hd.w1)
	r2, t2 := ec.c2.EvalHyper(eta, hd.u2, hd.w2)
	if smoothed && ec.c1.Smoothed() {
		t1 = ec.c1.SmoothedTangentHyper(xi)
	}
	if smoothed && ec.c2.Smoothed() {
		t2 = ec.c2.SmoothedTangentHyper(eta)
	}
	dr := geometry.HyperSub(r1, r2)
	if cond == condEta || (cond == condBound && p.cfg.ChangeEndpointProjection) {
		return geometry.HyperDot(dr, t2)
	}
	return geometry.HyperDot(dr, t1)
}

/*
chord corrects the infinitesimal parts of x towards F(x) = 0 with the real slope J. The error of
each step is one order higher in the directions than the one before, so two steps give the exact
first and mixed second derivatives. The real part stays at the converged parameter.
*/
func chord(x hyperdual.Number, J float64, F func(hyperdual.Number) hyperdual.Number) hyperdual.Number {
	for it := 0; it < 2; it++ {
		f := F(x)
		x.E1mag -= f.E1mag / J
		x.E2mag -= f.E2mag / J
		x.E1E2mag -= f.E1E2mag / J
	}
	return x
}

// hyperParams follows the contact point parameters of v to second order along both directions
func (p *Pair) hyperParams(ec *evalContext, v *Variable, hd hyperDirs) (xi, eta hyperdual.Number, err error) {
	var (
		none     hyperDirs
		smoothed = p.cfg.Smoothing == types.SM_CPP
	)
	xi, eta = hyperConst(v.Xi), hyperConst(v.Eta)
	singular := func(det float64) error {
		return fmt.Errorf("pair %v: singular parameter conditions at (%g,%g), det %g: %w", p.key, v.Xi, v.Eta,
			det, types.ErrStepTooLarge)
	}
	solveEta := func() error {
		J := p.hyperCondition(ec, condEta, false, hyperConst(v.Xi), hyperSeed(v.Eta), none).E1mag
		if math.Abs(J) < utils.DETERMINANTTOL {
			return singular(J)
		}
		eta = chord(eta, J, func(e hyperdual.Number) hyperdual.Number {
			return p.hyperCondition(ec, condEta, false, xi, e, hd)
		})
		return nil
	}
	switch v.mode {
	case pmFixed:
	case pmEtaFree:
		err = solveEta()
	case pmXiFree:
		J := p.hyperCondition(ec, condXi, false, hyperSeed(v.Xi), eta, none).E1mag
		if math.Abs(J) < utils.DETERMINANTTOL {
			return xi, eta, singular(J)
		}
		xi = chord(xi, J, func(x hyperdual.Number) hyperdual.Number {
			return p.hyperCondition(ec, condXi, false, x, eta, hd)
		})
	case pmCutGauss:
		var (
			cg = v.cut
			be = hyperConst(cg.boundEta)
			J  = p.hyperCondition(ec, condBound, false, hyperSeed(cg.boundXi), be, none).E1mag
		)
		if math.Abs(J) < utils.DETERMINANTTOL {
			return xi, eta, singular(J)
		}
		b := chord(hyperConst(cg.boundXi), J, func(x hyperdual.Number) hyperdual.Number {
			return p.hyperCondition(ec, condBound, false, x, be, hd)
		})
		xi.E1mag, xi.E2mag, xi.E1E2mag = cg.dXiDb*b.E1mag, cg.dXiDb*b.E2mag, cg.dXiDb*b.E1E2mag
		err = solveEta()
	case pmCPP:
		var (
			a   = p.hyperCondition(ec, condXi, smoothed, hyperSeed(v.Xi), eta, none).E1mag
			b   = p.hyperCondition(ec, condXi, smoothed, xi, hyperSeed(v.Eta), none).E1mag
			c   = p.hyperCondition(ec, condEta, smoothed, hyperSeed(v.Xi), eta, none).E1mag
			d   = p.hyperCondition(ec, condEta, smoothed, xi, hyperSeed(v.Eta), none).E1mag
			det = a*d - b*c
		)
		if math.Abs(det) < utils.DETERMINANTTOL {
			return xi, eta, singular(det)
		}
		for it := 0; it < 2; it++ {
			f1 := p.hyperCondition(ec, condXi, smoothed, xi, eta, hd)
			f2 := p.hyperCondition(ec, condEta, smoothed, xi, eta, hd)
			step := func(g1, g2 float64) (dx, de float64) {
				return (d*g1 - b*g2) / det, (a*g2 - c*g1) / det
			}
			dx, de := step(f1.E1mag, f2.E1mag)
			xi.E1mag, eta.E1mag = xi.E1mag-dx, eta.E1mag-de
			dx, de = step(f1.E2mag, f2.E2mag)
			xi.E2mag, eta.E2mag = xi.E2mag-dx, eta.E2mag-de
			dx, de = step(f1.E1E2mag, f2.E1E2mag)
			xi.E1E2mag, eta.E1E2mag = xi.E1E2mag-dx, eta.E1E2mag-de
		}
	}
	return
}

// hyperCosine is |t1.t2|/(|t1||t2|) at the contact point of v, E1E2mag is its mixed second derivative
func (p *Pair) hyperCosine(ec *evalContext, v *Variable, hd hyperDirs) (c hyperdual.Number, err error) {
	var (
		xi, eta hyperdual.Number
	)
	if xi, eta, err = p.hyperParams(ec, v, hd); err != nil {
		return
	}
	_, t1 := ec.c1.EvalHyper(xi, hd.u1, hd.w1)
	_, t2 := ec.c2.EvalHyper(eta, hd.u2, hd.w2)
	dot := geometry.HyperDot(t1, t2)
	lens := hyperdual.Mul(geometry.HyperNorm(t1), geometry.HyperNorm(t2))
	c = hyperdual.Mul(hyperdual.Scale(utils.Sign(dot.Real), dot), hyperdual.Inv(lens))
	return
}

// cosineHessian is d^2 c / d dofs^2 at the contact point of v
func (p *Pair) cosineHessian(ec *evalContext, v *Variable) (H *mat.SymDense, err error) {
	var (
		nd   = p.numDofs()
		n1   = p.e1.NumDofs()
		u, w = make([]float64, nd), make([]float64, nd)
		c    hyperdual.Number
	)
	H = mat.NewSymDense(nd, nil)
	for j := 0; j < nd; j++ {
		u[j] = 1
		for k := j; k < nd; k++ {
			w[k] = 1
			c, err = p.hyperCosine(ec, v, hyperDirs{u1: u[:n1], u2: u[n1:], w1: w[:n1], w2: w[n1:]})
			w[k] = 0
			if err != nil {
				return nil, err
			}
			H.SetSym(j, k, c.E1E2mag)
		}
		u[j] = 0
	}
	return
}
