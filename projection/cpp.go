package projection

import (
	"fmt"
	"math"

	"github.com/notargets/gobeamcontact/geometry"
	"github.com/notargets/gobeamcontact/types"
	"github.com/notargets/gobeamcontact/utils"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Box is the parameter rectangle of a segment pair, with an optional seed in local coordinates [-1,1]
type Box struct {
	Left1, L1    float64
	Left2, L2    float64
	Seed1, Seed2 float64
	SeedSet      bool
}

func (b Box) Contains(xi, eta float64) bool {
	return inside(xi, b.Left1, b.L1) && inside(eta, b.Left2, b.L2)
}

// Starts lists the Newton start points: the seed when usable, the box center and its 8 neighbors
func (b Box) Starts() (starts [][2]float64) {
	if b.SeedSet && math.Abs(b.Seed1) <= 1 && math.Abs(b.Seed2) <= 1 {
		starts = append(starts, [2]float64{
			b.Left1 + 0.5*b.L1*(1+b.Seed1),
			b.Left2 + 0.5*b.L2*(1+b.Seed2),
		})
	} else {
		starts = append(starts, [2]float64{math.Inf(1), math.Inf(1)})
	}
	starts = append(starts, [2]float64{b.Left1 + 0.5*b.L1, b.Left2 + 0.5*b.L2})
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if i == 1 && j == 1 {
				continue
			}
			starts = append(starts, [2]float64{
				b.Left1 + float64(i)*0.5*b.L1,
				b.Left2 + float64(j)*0.5*b.L2,
			})
		}
	}
	return
}

type CPPResult struct {
	Xi, Eta    float64
	Found      bool // converged inside the box
	Colinear   bool
	Ambiguous  bool // converged on an element boundary
	StartIndex int
	Dist       float64 // |r1 - r2|
	Angle      float64
	Iterations int
}

/*
ClosestPoint solves the closest point projection between c1 and c2 restricted to a segment box.
Starts converging outside the box are skipped; a singular Jacobian marks the elements colinear and
ends the search. ErrUnconvergedCPP is returned when no start converges, ErrStepTooLarge for
coincident axes inside the elements.
*/
func ClosestPoint(c1, c2 *geometry.Centerline, box Box, s Settings) (res CPPResult, err error) {
	var (
		anyConverged bool
	)
	for is, x0 := range box.Starts() {
		if math.IsInf(x0[0], 0) {
			continue
		}
		var (
			ok bool
		)
		res = CPPResult{StartIndex: is}
		if ok, err = newtonCPP(c1, c2, x0, s, &res); err != nil {
			return
		}
		if res.Colinear {
			return
		}
		if !ok {
			continue
		}
		anyConverged = true
		if !box.Contains(res.Xi, res.Eta) {
			continue
		}
		if onElementBoundary(res.Xi) || onElementBoundary(res.Eta) {
			res.Ambiguous = true
			return
		}
		p1, p2 := c1.Eval(res.Xi), c2.Eval(res.Eta)
		if r3.Norm(p1.Rxi) < utils.TANGENTTOL || r3.Norm(p2.Rxi) < utils.TANGENTTOL {
			err = fmt.Errorf("cpp (%g,%g) elements %d,%d: %w", res.Xi, res.Eta, c1.Ele.ID, c2.Ele.ID,
				types.ErrTangentZero)
			return
		}
		if res.Angle, err = geometry.EnclosedAngle(p1.Rxi, p2.Rxi); err != nil {
			return
		}
		res.Found = true
		return
	}
	if !anyConverged {
		err = fmt.Errorf("elements %d,%d box [%g,%g]x[%g,%g]: %w", c1.Ele.ID, c2.Ele.ID,
			box.Left1, box.Left1+box.L1, box.Left2, box.Left2+box.L2, types.ErrUnconvergedCPP)
	}
	res = CPPResult{Xi: math.Inf(1), Eta: math.Inf(1)}
	return
}

func newtonCPP(c1, c2 *geometry.Centerline, x0 [2]float64, s Settings, res *CPPResult) (ok bool, err error) {
	var (
		xi, eta   = x0[0], x0[1]
		J1, J2    = c1.Ele.Jacobi(), c2.Ele.Jacobi()
		residual0 float64
		d         = mat.NewVecDense(2, nil)
	)
	for iter := 0; iter < s.maxIter(); iter++ {
		p1, p2 := c1.Eval(xi), c2.Eval(eta)
		t1, t1xi := Tangents(c1, xi, p1, s.Smoothed)
		t2, t2xi := Tangents(c2, eta, p2, s.Smoothed)
		if r3.Norm(r3.Sub(p1.R, p2.R)) < utils.NORMTOL {
			if math.Abs(xi) <= 1 && math.Abs(eta) <= 1 {
				err = fmt.Errorf("coincident axes at (%g,%g) of elements %d,%d: %w", xi, eta,
					c1.Ele.ID, c2.Ele.ID, types.ErrStepTooLarge)
			}
			return
		}
		f, J, norm := CPPSystem(p1, p2, t1, t1xi, t2, t2xi)
		residual := math.Sqrt(f[0]*f[0]/(J1*J1) + f[1]*f[1]/(J2*J2))
		if iter == 0 {
			residual0 = residual
		}
		if math.Abs(mat.Det(J))*norm*norm < utils.COLLINEARTOL {
			res.Colinear = true
			return
		}
		if err = d.SolveVec(J, mat.NewVecDense(2, []float64{-f[0], -f[1]})); err != nil {
			res.Colinear, err = true, nil
			return
		}
		step := []float64{d.AtVec(0), d.AtVec(1)}
		limitStep(step)
		xi += step[0]
		eta += step[1]
		res.Xi, res.Eta, res.Dist, res.Iterations = xi, eta, norm, iter+1
		if converged(residual, residual0) &&
			math.Abs(step[0]) < utils.XIETAITERATIVEDISPTOL && math.Abs(step[1]) < utils.XIETAITERATIVEDISPTOL {
			res.Dist = r3.Norm(r3.Sub(c1.Position(xi), c2.Position(eta)))
			ok = true
			return
		}
	}
	return
}

// Unbounded solves the closest point projection on the continuation of both centerlines beyond
// [-1,1], starting from the element midpoints. ok is false for colinear or unconverged elements.
func Unbounded(c1, c2 *geometry.Centerline, s Settings) (xi, eta float64, ok bool, err error) {
	var (
		res CPPResult
	)
	if ok, err = newtonCPP(c1, c2, [2]float64{0, 0}, s, &res); err != nil || !ok || res.Colinear {
		return 0, 0, false, err
	}
	return res.Xi, res.Eta, true, nil
}
