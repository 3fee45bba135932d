package contact

import (
	"math"

	"github.com/notargets/gobeamcontact/geometry"
	"github.com/notargets/gobeamcontact/segments"
	"github.com/notargets/gobeamcontact/types"
	"github.com/notargets/gobeamcontact/utils"
	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/num/dual"
	"gonum.org/v1/gonum/spatial/r3"
)

const intervalTol = 1.e-10

// gaussRule is the fixed NUMGAUSSPOINTS point Legendre rule on [-1,1]
func gaussRule() (x, w []float64) {
	x, w = make([]float64, utils.NUMGAUSSPOINTS), make([]float64, utils.NUMGAUSSPOINTS)
	quad.Legendre{}.FixedLocations(x, w, -1, 1)
	return
}

/*
IntervalID returns the integration interval of xi among n equal intervals of [-1,1]. A point on an
interval border belongs to the right interval, or to the left one when left is false.
*/
func IntervalID(xi float64, n int, left bool) (id int) {
	var (
		h = 2 / float64(n)
		x = (xi + 1) / h
	)
	id = int(math.Floor(x))
	if !left && id > 0 && math.Abs(x-math.Round(x)) < intervalTol {
		id = int(math.Round(x)) - 1
	}
	return max(0, min(id, n-1))
}

// bound is the point of element 1 where the line contact ends at a beam end of element 2
type bound struct {
	xi, eta  float64 // eta is the beam end of element 2
	interval int
	dXi      []float64 // d xi / d dofs
}

/*
endpointBounds projects the beam ends of element 2 onto element 1. Element 2 continuing towards
larger xi gives a left bound, otherwise a right bound.
*/
func (p *Pair) endpointBounds(ec *evalContext, s1, s2 *segments.Segmentation,
	cands []segments.Candidate) (left, right *bound, err error) {
	var (
		cfg = p.cfg
		n2  = s2.NumSegments()
	)
	for side, eta := range [2]float64{-1, 1} {
		if !p.e2.BoundaryNode[side] {
			continue
		}
		seg := 0
		if side == 1 {
			seg = n2 - 1
		}
		for _, cd := range cands {
			if cd.Seg2 != seg {
				continue
			}
			var (
				xi    float64
				found bool
			)
			if xi, found, err = p.project(ec, true, eta, s1.Left(cd.Seg1), s1.Length(),
				cfg.ChangeEndpointProjection); err != nil {
				return
			}
			if !found {
				continue
			}
			inward := ec.c2.Tangent(eta)
			if side == 1 {
				inward = r3.Scale(-1, inward)
			}
			b := &bound{xi: xi, eta: eta, dXi: p.boundSensitivity(ec, xi, eta)}
			if r3.Dot(inward, ec.c1.Tangent(xi)) > 0 {
				b.interval = IntervalID(xi, cfg.NumIntervals, true)
				left = b
			} else {
				b.interval = IntervalID(xi, cfg.NumIntervals, false)
				right = b
			}
			break
		}
	}
	if left != nil && right != nil && left.interval == right.interval {
		err = badInput("pair %v: both ends of element %d in integration interval %d of element %d",
			p.key, p.e2.ID, left.interval, p.e1.ID)
	}
	return
}

// boundCondition is the projection condition defining the bound, evaluated in dual numbers
func (p *Pair) boundCondition(ec *evalContext, xi, eta dual.Number, v1, v2 []float64) dual.Number {
	r1, r1xi := ec.c1.EvalDual(xi, v1)
	r2, r2xi := ec.c2.EvalDual(eta, v2)
	dr := geometry.DualSub(r1, r2)
	if p.cfg.ChangeEndpointProjection {
		return geometry.DualDot(dr, r2xi)
	}
	return geometry.DualDot(dr, r1xi)
}

// boundSensitivity is d xi_b / d dofs = -F_d / F_xi of the bound condition with eta at the beam end
func (p *Pair) boundSensitivity(ec *evalContext, xi, eta float64) (dXi []float64) {
	var (
		n1  = p.e1.NumDofs()
		nd  = p.numDofs()
		e   = dual.Number{Real: eta}
		x   = dual.Number{Real: xi}
		Fxi = p.boundCondition(ec, dual.Number{Real: xi, Emag: 1}, e, nil, nil).Emag
		v1  = make([]float64, n1)
		v2  = make([]float64, nd-n1)
		fdk float64
	)
	dXi = make([]float64, nd)
	if math.Abs(Fxi) < utils.DETERMINANTTOL {
		return
	}
	for k := 0; k < nd; k++ {
		if k < n1 {
			v1[k] = 1
			fdk = p.boundCondition(ec, x, e, v1, nil).Emag
			v1[k] = 0
		} else {
			v2[k-n1] = 1
			fdk = p.boundCondition(ec, x, e, nil, v2).Emag
			v2[k-n1] = 0
		}
		dXi[k] = -fdk / Fxi
	}
	return
}

// gaussPoint places Gauss point x of interval i, cut by the bounds when they fall in it
func gaussPoint(i, n int, x, w float64, left, right *bound) (xi, halfLen float64, cut *cutGauss) {
	var (
		h = 2 / float64(n)
		a = -1 + float64(i)*h
	)
	switch {
	case left != nil && i == left.interval:
		halfLen = 0.5 * (a + h - left.xi)
		xi = left.xi + (1+x)*halfLen
		cut = &cutGauss{dXiDb: 0.5 * (1 - x), dLenDb: -1, dBound: left.dXi, weight: w, halfLen: halfLen,
			boundXi: left.xi, boundEta: left.eta}
	case right != nil && i == right.interval:
		halfLen = 0.5 * (right.xi - a)
		xi = a + (1+x)*halfLen
		cut = &cutGauss{dXiDb: 0.5 * (1 + x), dLenDb: 1, dBound: right.dXi, weight: w, halfLen: halfLen,
			boundXi: right.xi, boundEta: right.eta}
	default:
		halfLen = 0.5 * h
		xi = a + (1+x)*halfLen
	}
	return
}

/*
smallAngle integrates line contact over the intervals of element 1 that the small angle segment
pairs touch. Each Gauss point is projected onto element 2, the first segment pair giving a
projection wins. With endpoint segmentation the integration stops at the projected beam ends of
element 2.
*/
func (p *Pair) smallAngle(ec *evalContext, s1, s2 *segments.Segmentation, cands []segments.Candidate,
	nOld r3.Vec, ev *evaluation) (err error) {
	var (
		cfg         = p.cfg
		n           = cfg.NumIntervals
		h           = 2 / float64(n)
		lo, hi      = n, -1
		left, right *bound
		xg, wg      = gaussRule()
	)
	if len(cands) == 0 {
		return
	}
	for _, cd := range cands {
		l := s1.Left(cd.Seg1)
		lo = min(lo, IntervalID(l, n, true))
		hi = max(hi, IntervalID(l+s1.Length(), n, false))
	}
	if cfg.EndpointSegmentation {
		if left, right, err = p.endpointBounds(ec, s1, s2, cands); err != nil {
			return
		}
		if left != nil {
			lo = max(lo, left.interval)
		}
		if right != nil {
			hi = min(hi, right.interval)
		}
	}
	for i := lo; i <= hi; i++ {
		var (
			a, b  = -1 + float64(i)*h, -1 + float64(i+1)*h
			local []segments.Candidate
		)
		for _, cd := range cands {
			l := s1.Left(cd.Seg1)
			if l <= b+intervalTol && l+s1.Length() >= a-intervalTol {
				local = append(local, cd)
			}
		}
		if len(local) == 0 {
			continue
		}
		for q := range xg {
			xi, halfLen, cut := gaussPoint(i, n, xg[q], wg[q], left, right)
			if err = p.gaussPointContact(ec, s1, s2, local, xi, halfLen, wg[q], cut, nOld, ev); err != nil {
				return
			}
		}
	}
	return
}

func (p *Pair) gaussPointContact(ec *evalContext, s1, s2 *segments.Segmentation, local []segments.Candidate,
	xi, halfLen, w float64, cut *cutGauss, nOld r3.Vec, ev *evaluation) (err error) {
	mode := pmEtaFree
	if cut != nil {
		mode = pmCutGauss
	}
	for _, cd := range local {
		l := s1.Left(cd.Seg1)
		if xi < l-intervalTol || xi > l+s1.Length()+intervalTol {
			continue
		}
		var (
			eta   float64
			found bool
			v     *Variable
		)
		if eta, found, err = p.project(ec, false, xi, s2.Left(cd.Seg2), s2.Length(), false); err != nil {
			return
		}
		if !found {
			continue
		}
		if v, err = p.newVariable(ec, types.CK_SmallAngleGP, mode, xi, eta, nOld); err != nil {
			return
		}
		if v.Angle > p.cfg.ParShift2 || !(v.Contact || v.Damping) {
			return
		}
		jac := p.e1.JacobiAt(xi)
		v.Jacobian = jac * halfLen
		v.IntFac = v.Jacobian * w
		if cut != nil {
			cut.jacobi, cut.slope = jac, p.e1.JacobiSlope(xi)
			v.cut = cut
		}
		ev.store.Add(v)
		return
	}
	return
}
