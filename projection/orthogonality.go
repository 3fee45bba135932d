package projection

import (
	"math"

	"github.com/notargets/gobeamcontact/geometry"
	"github.com/notargets/gobeamcontact/utils"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Settings of the local Newton solvers
type Settings struct {
	MaxIter  int
	Smoothed bool // use the smoothed nodal tangents in the orthogonality conditions
}

func DefaultSettings() Settings {
	return Settings{MaxIter: utils.BEAMCONTACTMAXITER}
}

func (s Settings) maxIter() int {
	if s.MaxIter < 1 {
		return utils.BEAMCONTACTMAXITER
	}
	return s.MaxIter
}

// Tangents returns the tangent entering the orthogonality condition and its parameter derivative
func Tangents(c *geometry.Centerline, xi float64, p geometry.Point, smoothed bool) (t, txi r3.Vec) {
	if smoothed && c.Smoothed() {
		return c.SmoothedTangent(xi)
	}
	return p.Rxi, p.Rxixi
}

/*
CPPSystem evaluates the orthogonality conditions

	f = [ dr.t1, -dr.t2 ] / |dr|,  dr = r1 - r2

and their Jacobian with respect to (xi, eta). The derivative of 1/|dr| multiplies f and is left out.
*/
func CPPSystem(p1, p2 geometry.Point, t1, t1xi, t2, t2xi r3.Vec) (f [2]float64, J *mat.Dense, norm float64) {
	dr := r3.Sub(p1.R, p2.R)
	norm = r3.Norm(dr)
	f[0] = r3.Dot(dr, t1) / norm
	f[1] = -r3.Dot(dr, t2) / norm
	J = mat.NewDense(2, 2, []float64{
		(r3.Dot(p1.Rxi, t1) + r3.Dot(dr, t1xi)) / norm, -r3.Dot(p2.Rxi, t1) / norm,
		-r3.Dot(p1.Rxi, t2) / norm, (r3.Dot(p2.Rxi, t2) - r3.Dot(dr, t2xi)) / norm,
	})
	return
}

/*
PTLSystem evaluates the point to line condition for a fixed point pG on the given side and a running
point pS on the searched side, dr = rG - rS

	default:    f = -dr.rS_xi / |dr|,  df = (rS_xi.rS_xi - dr.rS_xixi) / |dr|
	orthogonal: f = -dr.rG_xi / |dr|,  df = rG_xi.rS_xi / |dr|
*/
func PTLSystem(pG, pS geometry.Point, orthogonal bool) (f, df, norm float64) {
	dr := r3.Sub(pG.R, pS.R)
	norm = r3.Norm(dr)
	if orthogonal {
		f = -r3.Dot(dr, pG.Rxi) / norm
		df = r3.Dot(pG.Rxi, pS.Rxi) / norm
		return
	}
	f = -r3.Dot(dr, pS.Rxi) / norm
	df = (r3.Dot(pS.Rxi, pS.Rxi) - r3.Dot(dr, pS.Rxixi)) / norm
	return
}

// converged applies the residual criteria, absolute always and relative for a large initial residual
func converged(residual, residual0 float64) bool {
	if residual < utils.BEAMCONTACTTOL {
		return true
	}
	return residual0 > utils.RELRESIDUALMIN && residual/residual0 < utils.RELBEAMCONTACTTOL
}

// limitStep scales a Newton step so no component exceeds MAXDELTAXIETA
func limitStep(d []float64) {
	var m float64
	for _, v := range d {
		m = math.Max(m, math.Abs(v))
	}
	if m > utils.MAXDELTAXIETA {
		for i := range d {
			d[i] *= utils.MAXDELTAXIETA / m
		}
	}
}

func inside(x, left, l float64) bool {
	return x >= left-utils.XIETAITERATIVEDISPTOL && x <= left+l+utils.XIETAITERATIVEDISPTOL
}

// onElementBoundary marks converged parameters too close to +-1 to be assigned to one element
func onElementBoundary(x float64) bool {
	tol := utils.CPPBOUNDARYFAC * utils.XIETAITERATIVEDISPTOL
	return math.Abs(math.Abs(x)-1) < tol
}
