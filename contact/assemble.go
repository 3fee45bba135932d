package contact

import (
	"github.com/notargets/gobeamcontact/geometry"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// SparseAssembler receives the stiffness of a pair; utils.DOK implements it
type SparseAssembler interface {
	Assemble(block int, local mat.Matrix, rowLM, colLM []int) error
}

// VectorAssembler receives the contact forces of a pair; utils.GlobalVector implements it
type VectorAssembler interface {
	ScatterAdd(local []float64, lm []int) error
}

// evalContext is what the contact points of one evaluation share
type evalContext struct {
	c1, c2     *geometry.Centerline
	old1, old2 *geometry.Centerline // end of the last step, nil without history
	dt         float64
}

func (ec *evalContext) hasVelocity() bool {
	return ec.old1 != nil && ec.old2 != nil && ec.dt > 0
}

// bMatrix is [N1^T; -N2^T], it maps a force vector at the contact point onto the pair dofs
func (k kinematics) bMatrix() (B *mat.Dense) {
	B = mat.NewDense(k.nd, 3, nil)
	for i, val := range k.N1 {
		for j := 0; j < 3; j++ {
			B.Set(3*i+j, j, val)
		}
	}
	for i, val := range k.N2 {
		for j := 0; j < 3; j++ {
			B.Set(k.n1+3*i+j, j, -val)
		}
	}
	return
}

/*
contribution returns the contact force fc of one point and the tangent K = -d fc / d dofs.

	fc = [N1^T n; -N2^T n] F,  F = IntFac Scale (fp + d fd)

The tangent linearizes F through the gap, the damping gap rate, the angle and the integration
factor of cut intervals; with the complete stiffness it adds the normal and the moving point terms.
The consistent transition term needs the second derivatives of the angle cosine, which follow the
contact point parameters in hyperdual numbers.
*/
func (p *Pair) contribution(ec *evalContext, v *Variable) (f []float64, K *mat.Dense, err error) {
	var (
		k         = newKinematics(ec.c1, ec.c2, v.Xi, v.Eta)
		n         = v.Normal
		dxi, deta []float64
		fd        = -v.GapRate
		force     = v.Fp + v.D*fd
		F         = v.IntFac * v.Scale * force
		nd        = k.nd
	)
	if dxi, deta, err = p.sensitivities(ec.c1, ec.c2, k, v); err != nil {
		return
	}
	dDr := k.distance(dxi, deta)
	dg := dDr.dot(n)
	dn := newJac3(nd)
	for j := range dn {
		copy(dn[j], dDr[j])
	}
	dn.addOuter(n, dg, -1)
	for j := range dn {
		floats.Scale(v.Sign/v.dist, dn[j])
	}
	_, dc := k.cosine(dxi, deta)

	dF := make([]float64, nd)
	floats.AddScaled(dF, v.IntFac*v.Scale*(v.Dfp+v.DD*fd), dg)
	floats.AddScaled(dF, v.IntFac*v.DScale*force, dc)
	if v.Damping && v.D != 0 && ec.hasVelocity() {
		floats.AddScaled(dF, -v.IntFac*v.Scale*v.D, p.gapRateRow(ec, k, v, dn, dxi, deta))
	}
	if v.cut != nil {
		floats.AddScaled(dF, v.Scale*force, v.cut.intFacRow(dxi))
	}

	Bn := k.rowDr(n)
	f = make([]float64, nd)
	floats.AddScaled(f, F, Bn)
	K = mat.NewDense(nd, nd, nil)
	K.RankOne(K, -1, mat.NewVecDense(nd, Bn), mat.NewVecDense(nd, dF))
	if v.CompleteStf && F != 0 {
		var (
			BdN mat.Dense
			dN  = mat.NewDense(3, nd, nil)
		)
		for j := range dn {
			dN.SetRow(j, dn[j])
		}
		BdN.Mul(k.bMatrix(), dN)
		BdN.Scale(-F, &BdN)
		K.Add(K, &BdN)
		K.RankOne(K, -F, mat.NewVecDense(nd, k.rowXi1(n)), mat.NewVecDense(nd, dxi))
		K.RankOne(K, F, mat.NewVecDense(nd, k.rowXi2(n)), mat.NewVecDense(nd, deta))
	}
	if p.cfg.ConsistentTransition && v.DScale != 0 {
		// f -= IntFac E dScale dc
		var (
			H  *mat.SymDense
			KH mat.Dense
		)
		floats.AddScaled(f, -v.IntFac*v.Energy*v.DScale, dc)
		dE := make([]float64, nd)
		floats.AddScaled(dE, -v.Fp, dg)
		dcv := mat.NewVecDense(nd, dc)
		K.RankOne(K, v.IntFac*v.DScale, dcv, mat.NewVecDense(nd, dE))
		K.RankOne(K, v.IntFac*v.Energy*v.ddScale, dcv, dcv)
		if H, err = p.cosineHessian(ec, v); err != nil {
			return
		}
		KH.Scale(v.IntFac*v.Energy*v.DScale, H)
		K.Add(K, &KH)
		if v.cut != nil {
			K.RankOne(K, v.Energy*v.DScale, dcv, mat.NewVecDense(nd, v.cut.intFacRow(dxi)))
		}
	}
	return
}

// gapRateRow is the derivative of gdot = n.(v1 - v2) with v = (r - r_old)/dt at fixed parameters
func (p *Pair) gapRateRow(ec *evalContext, k kinematics, v *Variable, dn jac3, dxi, deta []float64) (row []float64) {
	var (
		o1, o2 = ec.old1.Eval(v.Xi), ec.old2.Eval(v.Eta)
		w      = r3.Scale(1/ec.dt, r3.Sub(r3.Sub(k.p1.R, o1.R), r3.Sub(k.p2.R, o2.R)))
		w1xi   = r3.Scale(1/ec.dt, r3.Sub(k.p1.Rxi, o1.Rxi))
		w2xi   = r3.Scale(1/ec.dt, r3.Sub(k.p2.Rxi, o2.Rxi))
	)
	row = dn.dot(w)
	floats.AddScaled(row, 1/ec.dt, k.rowDr(v.Normal))
	floats.AddScaled(row, r3.Dot(v.Normal, w1xi), dxi)
	floats.AddScaled(row, -r3.Dot(v.Normal, w2xi), deta)
	return
}

// intFacRow is the derivative of weight * jacobi(xi) * halfLen through xi and the interval bound
func (cg *cutGauss) intFacRow(dxi []float64) (row []float64) {
	row = make([]float64, len(dxi))
	floats.AddScaled(row, cg.weight*cg.slope*cg.halfLen, dxi)
	floats.AddScaled(row, cg.weight*cg.jacobi*0.5*cg.dLenDb, cg.dBound)
	return
}

// gapRate is n.(v1 - v2) at the contact point, zero without history
func (ec *evalContext) gapRate(xi, eta float64, r1, r2, n r3.Vec) float64 {
	if !ec.hasVelocity() {
		return 0
	}
	v1 := r3.Sub(r1, ec.old1.Position(xi))
	v2 := r3.Sub(r2, ec.old2.Position(eta))
	return r3.Dot(n, r3.Scale(1/ec.dt, r3.Sub(v1, v2)))
}

// add sums the local force and stiffness of a pair into the global assemblers
func (p *Pair) add(f []float64, K mat.Matrix, Kg SparseAssembler, Rg VectorAssembler) (err error) {
	lm := p.lm
	if Rg != nil {
		if err = Rg.ScatterAdd(f, lm); err != nil {
			return
		}
	}
	if Kg != nil {
		err = Kg.Assemble(p.block(), K, lm, lm)
	}
	return
}
