package contact

import (
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// TangentCheck compares an analytic tangent or residual with a reference derivative
type TangentCheck struct {
	MaxError  float64 // largest absolute deviation
	Reference float64 // largest absolute reference entry
	Points    int     // contact points taking part
	OK        bool
}

func (tc *TangentCheck) compare(analytic, reference float64) {
	tc.MaxError = math.Max(tc.MaxError, math.Abs(analytic-reference))
	tc.Reference = math.Max(tc.Reference, math.Abs(reference))
}

// finish sets OK for a relative tolerance, small references are compared absolutely
func (tc *TangentCheck) finish(tol float64) {
	tc.OK = tc.MaxError <= tol*math.Max(1, tc.Reference)
}

// withDofs returns a copy of in evaluated at the stacked dofs x of both elements
func (p *Pair) withDofs(in EvalInput, x []float64) EvalInput {
	n1 := p.e1.NumDofs()
	in.Pos1 = append([]float64{}, x[:n1]...)
	in.Pos2 = append([]float64{}, x[n1:]...)
	return in
}

func stack(in EvalInput) []float64 {
	return append(append([]float64{}, in.Pos1...), in.Pos2...)
}

/*
CheckTangentFD compares the pair tangent with central differences of the contact force. The contact
set has to be the same at all perturbed states.
*/
func (p *Pair) CheckTangentFD(in EvalInput, h, tol float64) (tc TangentCheck, err error) {
	var (
		ev   *evaluation
		nd   = p.numDofs()
		x    = stack(in)
		J    = mat.NewDense(nd, nd, nil)
		ferr error
	)
	if ev, err = p.evaluate(in); err != nil {
		return
	}
	tc.Points = ev.store.Len() + len(ev.inactive)
	fd.Jacobian(J, func(y, x []float64) {
		evx, err := p.evaluate(p.withDofs(in, x))
		if err != nil {
			ferr = err
			return
		}
		for i := range y {
			y[i] = -evx.f[i]
		}
	}, x, &fd.JacobianSettings{Formula: fd.Central, Step: h})
	if ferr != nil {
		return tc, ferr
	}
	for i := 0; i < nd; i++ {
		for j := 0; j < nd; j++ {
			tc.compare(ev.K.At(i, j), J.At(i, j))
		}
	}
	tc.finish(tol)
	return
}

/*
CheckResidualFD compares the contact force with the central difference gradient of the contact
potential, f = -dPi/dd. This holds without damping and with constant or consistently linearized
scale factors.
*/
func (p *Pair) CheckResidualFD(in EvalInput, h, tol float64) (tc TangentCheck, err error) {
	var (
		ev   *evaluation
		nd   = p.numDofs()
		grad = make([]float64, nd)
		ferr error
	)
	if ev, err = p.evaluate(in); err != nil {
		return
	}
	tc.Points = ev.store.Len()
	fd.Gradient(grad, func(x []float64) float64 {
		evx, err := p.evaluate(p.withDofs(in, x))
		if err != nil {
			ferr = err
			return math.NaN()
		}
		return evx.energy
	}, stack(in), &fd.Settings{Formula: fd.Central, Step: h})
	if ferr != nil {
		return tc, ferr
	}
	for i := range grad {
		tc.compare(ev.f[i], -grad[i])
	}
	tc.finish(tol)
	return
}
