package contact

import (
	"fmt"
	"math"

	"github.com/notargets/gobeamcontact/geometry"
	"github.com/notargets/gobeamcontact/projection"
	"github.com/notargets/gobeamcontact/types"
	"github.com/notargets/gobeamcontact/utils"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// jac3 is the derivative of a 3-vector with respect to the pair dofs [d1, d2]
type jac3 [3][]float64

func newJac3(nd int) (J jac3) {
	for j := range J {
		J[j] = make([]float64, nd)
	}
	return
}

// addBasis sums scale * N into the columns starting at off
func (J jac3) addBasis(N geometry.Basis, off int, scale float64) {
	for i, val := range N {
		for j := 0; j < 3; j++ {
			J[j][off+3*i+j] += scale * val
		}
	}
}

// addOuter sums v (x) row
func (J jac3) addOuter(v r3.Vec, row []float64, scale float64) {
	floats.AddScaled(J[0], scale*v.X, row)
	floats.AddScaled(J[1], scale*v.Y, row)
	floats.AddScaled(J[2], scale*v.Z, row)
}

// dot returns v^T J
func (J jac3) dot(v r3.Vec) (row []float64) {
	row = make([]float64, len(J[0]))
	floats.AddScaled(row, v.X, J[0])
	floats.AddScaled(row, v.Y, J[1])
	floats.AddScaled(row, v.Z, J[2])
	return
}

// kinematics holds both centerlines evaluated at a contact point
type kinematics struct {
	xi, eta          float64
	p1, p2           geometry.Point
	N1, N1xi, N1xixi geometry.Basis
	N2, N2xi, N2xixi geometry.Basis
	dr               r3.Vec
	n1, nd           int
}

func newKinematics(c1, c2 *geometry.Centerline, xi, eta float64) (k kinematics) {
	k = kinematics{
		xi: xi, eta: eta,
		p1: c1.Eval(xi), p2: c2.Eval(eta),
		n1: c1.Ele.NumDofs(),
	}
	k.nd = k.n1 + c2.Ele.NumDofs()
	k.N1, k.N1xi, k.N1xixi = c1.Ele.Basis(xi)
	k.N2, k.N2xi, k.N2xixi = c2.Ele.Basis(eta)
	k.dr = r3.Sub(k.p1.R, k.p2.R)
	return
}

// rowDr returns v^T [N1, -N2]
func (k kinematics) rowDr(v r3.Vec) (row []float64) {
	row = make([]float64, k.nd)
	k.N1.AddTransposed(row[:k.n1], v, 1)
	k.N2.AddTransposed(row[k.n1:], v, -1)
	return
}

// rowXi1 returns v^T [N1xi, 0] and rowXi2 returns v^T [0, N2xi]
func (k kinematics) rowXi1(v r3.Vec) (row []float64) {
	row = make([]float64, k.nd)
	k.N1xi.AddTransposed(row[:k.n1], v, 1)
	return
}

func (k kinematics) rowXi2(v r3.Vec) (row []float64) {
	row = make([]float64, k.nd)
	k.N2xi.AddTransposed(row[k.n1:], v, 1)
	return
}

// ptlEta is the point to line condition on element 2 for a given xi, F = -dr.r2xi, and its derivatives
func (k kinematics) ptlEta() (Fxi, Feta float64, Fd []float64) {
	r2xi := k.p2.Rxi
	Fxi = -r3.Dot(k.p1.Rxi, r2xi)
	Feta = r3.Dot(r2xi, r2xi) - r3.Dot(k.dr, k.p2.Rxixi)
	Fd = k.rowDr(r3.Scale(-1, r2xi))
	floats.AddScaled(Fd, -1, k.rowXi2(k.dr))
	return
}

// ptlXi is the point to line condition on element 1 for a given eta, F = dr.r1xi, and its derivatives
func (k kinematics) ptlXi() (Fxi float64, Fd []float64) {
	r1xi := k.p1.Rxi
	Fxi = r3.Dot(r1xi, r1xi) + r3.Dot(k.dr, k.p1.Rxixi)
	Fd = k.rowDr(r1xi)
	floats.AddScaled(Fd, 1, k.rowXi1(k.dr))
	return
}

// sensitivities returns d xi / d dofs and d eta / d dofs of a contact point
func (p *Pair) sensitivities(c1, c2 *geometry.Centerline, k kinematics, v *Variable) (dxi, deta []float64,
	err error) {
	dxi, deta = make([]float64, k.nd), make([]float64, k.nd)
	singular := func(what string, det float64) error {
		return fmt.Errorf("pair %v: singular %s linearization at (%g,%g), det %g: %w", p.key, what,
			v.Xi, v.Eta, det, types.ErrStepTooLarge)
	}
	switch v.mode {
	case pmFixed:
	case pmEtaFree:
		_, Feta, Fd := k.ptlEta()
		if math.Abs(Feta) < utils.DETERMINANTTOL {
			return nil, nil, singular("point to line", Feta)
		}
		floats.AddScaled(deta, -1/Feta, Fd)
	case pmXiFree:
		Fxi, Fd := k.ptlXi()
		if math.Abs(Fxi) < utils.DETERMINANTTOL {
			return nil, nil, singular("point to line", Fxi)
		}
		floats.AddScaled(dxi, -1/Fxi, Fd)
	case pmCutGauss:
		floats.AddScaled(dxi, v.cut.dXiDb, v.cut.dBound)
		Fxi, Feta, Fd := k.ptlEta()
		if math.Abs(Feta) < utils.DETERMINANTTOL {
			return nil, nil, singular("point to line", Feta)
		}
		floats.AddScaled(Fd, Fxi, dxi)
		floats.AddScaled(deta, -1/Feta, Fd)
	case pmCPP:
		var (
			smoothed   = p.cfg.Smoothing == types.SM_CPP
			t1, t1xi   = projection.Tangents(c1, k.xi, k.p1, smoothed)
			t2, t2xi   = projection.Tangents(c2, k.eta, k.p2, smoothed)
			_, J, norm = projection.CPPSystem(k.p1, k.p2, t1, t1xi, t2, t2xi)
			Fd         = mat.NewDense(2, k.nd, nil)
			Jinv       mat.Dense
			D          mat.Dense
		)
		row0, row1 := k.rowDr(t1), k.rowDr(r3.Scale(-1, t2))
		if !smoothed {
			floats.AddScaled(row0, 1, k.rowXi1(k.dr))
			floats.AddScaled(row1, -1, k.rowXi2(k.dr))
		}
		Fd.SetRow(0, row0)
		Fd.SetRow(1, row1)
		if det := mat.Det(J) * norm * norm; math.Abs(det) < utils.DETERMINANTTOL {
			return nil, nil, singular("closest point", det)
		}
		if err = Jinv.Inverse(J); err != nil {
			return nil, nil, singular("closest point", mat.Det(J))
		}
		// J is scaled by 1/|dr|, the conditions are not
		D.Mul(&Jinv, Fd)
		D.Scale(-1/norm, &D)
		mat.Row(dxi, 0, &D)
		mat.Row(deta, 1, &D)
	}
	return
}

// cosine is |t1.t2|/(|t1||t2|) with its derivative with respect to the dofs
func (k kinematics) cosine(dxi, deta []float64) (c float64, dc []float64) {
	var (
		t1, t2 = k.p1.Rxi, k.p2.Rxi
		l1, l2 = r3.Norm(t1), r3.Norm(t2)
		dot    = r3.Dot(t1, t2)
		sigma  = utils.Sign(dot)
	)
	c = math.Min(sigma*dot/(l1*l2), 1)
	dcdt1 := r3.Sub(r3.Scale(sigma/(l1*l2), t2), r3.Scale(c/(l1*l1), t1))
	dcdt2 := r3.Sub(r3.Scale(sigma/(l1*l2), t1), r3.Scale(c/(l2*l2), t2))
	dc = k.rowXi1(dcdt1)
	floats.AddScaled(dc, 1, k.rowXi2(dcdt2))
	floats.AddScaled(dc, r3.Dot(dcdt1, k.p1.Rxixi), dxi)
	floats.AddScaled(dc, r3.Dot(dcdt2, k.p2.Rxixi), deta)
	return
}

// distance returns d dr / d dofs = [N1, -N2] + r1xi (x) dxi - r2xi (x) deta
func (k kinematics) distance(dxi, deta []float64) (J jac3) {
	J = newJac3(k.nd)
	J.addBasis(k.N1, 0, 1)
	J.addBasis(k.N2, k.n1, -1)
	J.addOuter(k.p1.Rxi, dxi, 1)
	J.addOuter(k.p2.Rxi, deta, -1)
	return
}
