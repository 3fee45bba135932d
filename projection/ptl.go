package projection

import (
	"fmt"
	"math"

	"github.com/notargets/gobeamcontact/geometry"
	"github.com/notargets/gobeamcontact/types"
	"github.com/notargets/gobeamcontact/utils"
	"gonum.org/v1/gonum/spatial/r3"
)

type PTLResult struct {
	Eta        float64 // parameter on the searched element
	Found      bool
	StartIndex int
	Dist       float64
	Angle      float64
	Iterations int
}

/*
PointToLine projects the point of the given element at xiGiven onto the searched element within
[etaLeft, etaLeft+l]. Starts are the interval midpoint and its two ends.
*/
func PointToLine(given, searched *geometry.Centerline, xiGiven, etaLeft, l float64, orthogonal bool,
	s Settings) (res PTLResult, err error) {
	var (
		pG           = given.Eval(xiGiven)
		J            = searched.Ele.Jacobi()
		starts       = []float64{etaLeft + 0.5*l, etaLeft, etaLeft + l}
		anyConverged bool
	)
	for is, eta0 := range starts {
		var (
			eta       = eta0
			residual0 float64
			ok        bool
		)
		res = PTLResult{StartIndex: is}
		for iter := 0; iter < s.maxIter(); iter++ {
			pS := searched.Eval(eta)
			if r3.Norm(r3.Sub(pG.R, pS.R)) < utils.NORMTOL {
				if math.Abs(xiGiven)+math.Abs(eta) < utils.NEIGHBORTOL {
					err = fmt.Errorf("coincident axes at (%g,%g) of elements %d,%d: %w", xiGiven, eta,
						given.Ele.ID, searched.Ele.ID, types.ErrStepTooLarge)
					return
				}
				break
			}
			f, df, norm := PTLSystem(pG, pS, orthogonal)
			residual := math.Abs(f / J)
			if iter == 0 {
				residual0 = residual
			}
			if math.Abs(df) < utils.COLLINEARTOL {
				err = fmt.Errorf("singular point to line projection on element %d: %w", searched.Ele.ID,
					types.ErrUnconvergedPTL)
				return
			}
			step := []float64{-f / df}
			limitStep(step)
			eta += step[0]
			res.Eta, res.Dist, res.Iterations = eta, norm, iter+1
			if converged(residual, residual0) && math.Abs(step[0]) < utils.XIETAITERATIVEDISPTOL {
				ok = true
				break
			}
		}
		if !ok {
			continue
		}
		anyConverged = true
		if !inside(eta, etaLeft, l) {
			continue
		}
		pS := searched.Eval(eta)
		if r3.Norm(pS.Rxi) < utils.TANGENTTOL || r3.Norm(pG.Rxi) < utils.TANGENTTOL {
			err = fmt.Errorf("point to line projection on element %d: %w", searched.Ele.ID, types.ErrTangentZero)
			return
		}
		res.Dist = r3.Norm(r3.Sub(pG.R, pS.R))
		if res.Angle, err = geometry.EnclosedAngle(pG.Rxi, pS.Rxi); err != nil {
			return
		}
		res.Found = true
		return
	}
	if !anyConverged {
		err = fmt.Errorf("point %g of element %d onto element %d: %w", xiGiven, given.Ele.ID, searched.Ele.ID,
			types.ErrUnconvergedPTL)
	}
	res = PTLResult{Eta: math.Inf(1)}
	return
}
