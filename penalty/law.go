package penalty

import (
	"fmt"
	"math"

	"github.com/notargets/gobeamcontact/types"
	"github.com/notargets/gobeamcontact/utils"
)

// Params selects and regularizes the scalar penalty law. Zero regularization values are unset.
type Params struct {
	Law        types.PenaltyLaw
	G0, F0, C0 float64
	GapShift   float64 // LPQP only

	Damping                      bool
	DampingParam                 float64
	DampRegParam1, DampRegParam2 float64
}

// Law evaluates the contact force fp(g) of a gap, its slope and the potential E with fp = -dE/dg.
// Immutable after NewLaw.
type Law struct {
	p Params
}

func NewLaw(p Params) (l *Law, err error) {
	need := func(name string, v float64) error {
		if !(v > 0) {
			return fmt.Errorf("penalty law %s needs %s > 0, have %g: %w", p.Law, name, v, types.ErrBadInput)
		}
		return nil
	}
	switch p.Law {
	case types.PL_LP, types.PL_QP:
	case types.PL_LPQP, types.PL_LNQP:
		err = need("BEAMS_PENREGPARAM_G0", p.G0)
	case types.PL_LPCP:
		err = need("BEAMS_PENREGPARAM_G0", p.G0)
		if err == nil {
			err = need("BEAMS_PENREGPARAM_C0", p.C0)
		}
	case types.PL_LPDQP:
		for _, chk := range []error{need("BEAMS_PENREGPARAM_G0", p.G0), need("BEAMS_PENREGPARAM_F0", p.F0),
			need("BEAMS_PENREGPARAM_C0", p.C0)} {
			if chk != nil {
				err = chk
				break
			}
		}
		if err == nil && p.C0 > 2 {
			err = fmt.Errorf("penalty law %s needs BEAMS_PENREGPARAM_C0 in (0,2], have %g: %w", p.Law, p.C0,
				types.ErrBadInput)
		}
	case types.PL_LPEP:
		err = need("BEAMS_PENREGPARAM_G0", p.G0)
		if err == nil {
			err = need("BEAMS_PENREGPARAM_F0", p.F0)
		}
	default:
		err = fmt.Errorf("unknown penalty law %d: %w", p.Law, types.ErrBadInput)
	}
	if err != nil {
		return
	}
	if p.GapShift != 0 && p.Law != types.PL_LPQP {
		err = fmt.Errorf("BEAMS_GAPSHIFTPARAM is only possible for penalty law lpqp, have %s: %w", p.Law,
			types.ErrBadInput)
		return
	}
	if p.Damping {
		if p.DampingParam < 0 || p.DampRegParam1 < p.DampRegParam2 {
			err = fmt.Errorf("damping needs BEAMS_DAMPINGPARAM >= 0 and BEAMS_DAMPREGPARAM1 >= BEAMS_DAMPREGPARAM2, "+
				"have %g, %g, %g: %w", p.DampingParam, p.DampRegParam1, p.DampRegParam2, types.ErrBadInput)
			return
		}
	}
	l = &Law{p: p}
	return
}

func (l *Law) Params() Params { return l.p }

// Check validates the law against a penalty parameter
func (l *Law) Check(pp float64) (err error) {
	if !(pp > 0) {
		return fmt.Errorf("penalty parameter %g: %w", pp, types.ErrBadInput)
	}
	if l.p.Law == types.PL_LPDQP {
		if g1 := l.p.C0 * l.p.F0 / pp; g1 >= l.p.G0 {
			return fmt.Errorf("lpdqp transition gap %g must be below BEAMS_PENREGPARAM_G0 %g: %w", g1, l.p.G0,
				types.ErrBadInput)
		}
	}
	return
}

// CutOffWarning reports an exponential law whose force at the cut off is above 1% of f0
func (l *Law) CutOffWarning(pp float64) bool {
	return l.p.Law == types.PL_LPEP && math.Exp(-pp*l.p.G0/l.p.F0) > 0.01
}

func (l *Law) Active(g float64) bool {
	switch l.p.Law {
	case types.PL_LPQP:
		return g+l.p.GapShift < l.p.G0
	case types.PL_LPCP, types.PL_LPDQP, types.PL_LPEP:
		return g < l.p.G0
	default:
		return g < 0
	}
}

func (l *Law) DampingActive(g float64) bool {
	return l.p.Damping && g < l.p.DampRegParam1
}

// MaxActiveDist is the largest gap at which the law or the damping can be active
func (l *Law) MaxActiveDist() (d float64) {
	switch l.p.Law {
	case types.PL_LPQP:
		d = l.p.G0 - l.p.GapShift
	case types.PL_LPCP, types.PL_LPDQP, types.PL_LPEP:
		d = l.p.G0
	}
	if l.p.Damping {
		d = math.Max(d, l.p.DampRegParam1)
	}
	return
}

// Eval returns fp, dfp/dg and E at gap g for penalty parameter pp; all are zero for an inactive gap
func (l *Law) Eval(pp, g float64) (fp, dfp, e float64) {
	if !l.Active(g) {
		return
	}
	var (
		g0 = l.p.G0
	)
	// linear branch below zero with force f0 at g=0, potential e0 at g=0
	linear := func(f0, e0 float64) {
		fp = f0 - pp*g
		dfp = -pp
		e = e0 - f0*g + 0.5*pp*g*g
	}
	switch l.p.Law {
	case types.PL_LP:
		fp, dfp, e = -pp*g, -pp, 0.5*pp*g*g
	case types.PL_QP:
		fp, dfp, e = pp*g*g, 2*pp*g, -pp*g*g*g/3
	case types.PL_LNQP:
		if g > -g0 {
			fp = pp / (2 * g0) * g * g
			dfp = pp / g0 * g
			e = -pp * g * g * g / (6 * g0)
		} else {
			fp = -pp * (g + g0/2)
			dfp = -pp
			e = pp*g0*g0/6 + 0.5*pp*(g*g+g0*g)
		}
	case types.PL_LPQP:
		g += l.p.GapShift
		var (
			f0 = g0 * pp / 2
			a  = pp / (2 * g0)
		)
		if g > 0 {
			fp = a*g*g - pp*g + f0
			dfp = 2*a*g - pp
			e = pp*g0*g0/6 - (pp/(6*g0)*g*g*g - pp/2*g*g + pp*g0/2*g)
		} else {
			linear(f0, pp*g0*g0/6)
		}
	case types.PL_LPCP:
		var (
			f0 = pp * g0 / l.p.C0
			a  = -pp*utils.POW(g0, -2) + 2*f0*utils.POW(g0, -3)
			b  = 2*pp/g0 - 3*f0*utils.POW(g0, -2)
			c  = -pp
		)
		F := func(x float64) float64 { return a*utils.POW(x, 4)/4 + b*utils.POW(x, 3)/3 + c*x*x/2 + f0*x }
		if g > 0 {
			fp = a*utils.POW(g, 3) + b*g*g + c*g + f0
			dfp = 3*a*g*g + 2*b*g + c
			e = F(g0) - F(g)
		} else {
			linear(f0, F(g0))
		}
	case types.PL_LPDQP:
		var (
			f0     = l.p.F0
			g1     = l.p.C0 * f0 / pp
			aBar   = (2*f0 - pp*g1) / (2 * g0 * (g0 - g1))
			bBar   = -2 * g0 * aBar
			cBar   = g0 * g0 * aBar
			aTilde = (2*g1*aBar + bBar + pp) / (2 * g1)
		)
		Fbar := func(x float64) float64 { return aBar*x*x*x/3 + bBar*x*x/2 + cBar*x }
		Ftilde := func(x float64) float64 { return aTilde*x*x*x/3 - pp*x*x/2 + f0*x }
		e1 := Fbar(g0) - Fbar(g1)
		switch {
		case g > g1:
			fp = aBar*g*g + bBar*g + cBar
			dfp = 2*aBar*g + bBar
			e = Fbar(g0) - Fbar(g)
		case g > 0:
			fp = aTilde*g*g - pp*g + f0
			dfp = 2*aTilde*g - pp
			e = e1 + Ftilde(g1) - Ftilde(g)
		default:
			linear(f0, e1+Ftilde(g1))
		}
	case types.PL_LPEP:
		f0 := l.p.F0
		if g > 0 {
			ex := math.Exp(-pp * g / f0)
			fp = f0 * ex
			dfp = -pp * ex
			e = f0 * f0 / pp * (ex - math.Exp(-pp*g0/f0))
		} else {
			linear(f0, f0*f0/pp*(1-math.Exp(-pp*g0/f0)))
		}
	}
	return
}

// Breakpoints lists the gaps where the law changes branch
func (l *Law) Breakpoints(pp float64) (gs []float64) {
	switch l.p.Law {
	case types.PL_LP, types.PL_QP:
		gs = []float64{0}
	case types.PL_LNQP:
		gs = []float64{-l.p.G0, 0}
	case types.PL_LPQP:
		gs = []float64{-l.p.GapShift, l.p.G0 - l.p.GapShift}
	case types.PL_LPCP:
		gs = []float64{0, l.p.G0}
	case types.PL_LPEP:
		// the cut off at G0 is not a regularization
		gs = []float64{0}
	case types.PL_LPDQP:
		gs = []float64{0, l.p.C0 * l.p.F0 / pp, l.p.G0}
	}
	return
}
