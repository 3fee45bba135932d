package penalty

import (
	"errors"
	"math"
	"testing"

	"github.com/notargets/gobeamcontact/types"
	"github.com/notargets/gobeamcontact/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
)

func near(a, b float64, tolI ...float64) bool {
	tol := 1.e-10
	if len(tolI) != 0 {
		tol = tolI[0]
	}
	return math.Abs(a-b) <= tol*math.Max(1, math.Abs(a))
}

const pp = 100.

var allLaws = []Params{
	{Law: types.PL_LP},
	{Law: types.PL_QP},
	{Law: types.PL_LNQP, G0: 0.01},
	{Law: types.PL_LPQP, G0: 0.02},
	{Law: types.PL_LPQP, G0: 0.02, GapShift: 0.005},
	{Law: types.PL_LPCP, G0: 0.02, C0: 2.5},
	{Law: types.PL_LPDQP, G0: 0.02, F0: 0.5, C0: 1.5},
	{Law: types.PL_LPEP, G0: 0.2, F0: 0.5},
}

func TestLawContinuity(t *testing.T) {
	var (
		eps = 1.e-9
	)
	for _, p := range allLaws {
		l, err := NewLaw(p)
		require.NoError(t, err, p.Law.String())
		require.NoError(t, l.Check(pp))
		for _, gb := range l.Breakpoints(pp) {
			fm, dfm, em := l.Eval(pp, gb-eps)
			fp, dfp, ep := l.Eval(pp, gb+eps)
			assert.True(t, near(fm, fp, 1.e-6), "%s fp at %g: %g != %g", p.Law, gb, fm, fp)
			assert.True(t, near(em, ep, 1.e-8), "%s e at %g", p.Law, gb)
			switch p.Law {
			case types.PL_LPQP, types.PL_LPCP, types.PL_LPDQP, types.PL_LPEP, types.PL_LNQP:
				assert.True(t, near(dfm, dfp, 1.e-5), "%s dfp at %g: %g != %g", p.Law, gb, dfm, dfp)
			}
		}
	}
}

func TestLawPotential(t *testing.T) {
	for _, p := range allLaws {
		l, err := NewLaw(p)
		require.NoError(t, err)
		gmax := l.MaxActiveDist()
		for _, g := range []float64{-0.05, -0.013, -0.002, 0.3 * gmax, 0.8 * gmax} {
			if !l.Active(g) {
				continue
			}
			fp, dfp, _ := l.Eval(pp, g)
			de := fd.Derivative(func(x float64) float64 {
				_, _, e := l.Eval(pp, x)
				return e
			}, g, &fd.Settings{Formula: fd.Central, Step: 1.e-7})
			assert.True(t, near(-de, fp, 1.e-6), "%s at %g: -dE %g fp %g", p.Law, g, -de, fp)
			dfd := fd.Derivative(func(x float64) float64 {
				f, _, _ := l.Eval(pp, x)
				return f
			}, g, &fd.Settings{Formula: fd.Central, Step: 1.e-7})
			assert.True(t, near(dfd, dfp, 1.e-5), "%s at %g", p.Law, g)
		}
		{ // nothing beyond the active region
			fp, dfp, e := l.Eval(pp, gmax+1.e-3)
			assert.Zero(t, fp)
			assert.Zero(t, dfp)
			assert.Zero(t, e)
		}
	}
}

func TestLawValues(t *testing.T) {
	{
		l, err := NewLaw(Params{Law: types.PL_LP})
		require.NoError(t, err)
		fp, dfp, e := l.Eval(pp, -0.01)
		assert.True(t, near(fp, 1))
		assert.True(t, near(dfp, -pp))
		assert.True(t, near(e, 0.005))
		assert.False(t, l.Active(0))
		assert.Zero(t, l.MaxActiveDist())
	}
	{
		l, err := NewLaw(Params{Law: types.PL_LPQP, G0: 0.02, GapShift: 0.005})
		require.NoError(t, err)
		assert.True(t, near(l.MaxActiveDist(), 0.015))
		fp, _, _ := l.Eval(pp, -0.005)
		assert.True(t, near(fp, pp*0.02/2))
	}
	{
		l, err := NewLaw(Params{Law: types.PL_LPDQP, G0: 0.02, F0: 0.5, C0: 1.5})
		require.NoError(t, err)
		fp, _, _ := l.Eval(pp, 0)
		assert.True(t, near(fp, 0.5))
		g1 := 1.5 * 0.5 / pp
		f1, _, _ := l.Eval(pp, g1)
		assert.True(t, f1 > 0 && f1 < 0.5)
		assert.True(t, errors.Is(l.Check(10), types.ErrBadInput))
	}
	{
		l, err := NewLaw(Params{Law: types.PL_LPEP, G0: 0.002, F0: 0.5})
		require.NoError(t, err)
		assert.True(t, l.CutOffWarning(pp))
		assert.False(t, l.CutOffWarning(1.e5))
	}
	{
		l, err := NewLaw(Params{Law: types.PL_LP, Damping: true, DampingParam: 2, DampRegParam1: 0.05,
			DampRegParam2: 0.01})
		require.NoError(t, err)
		assert.True(t, near(l.MaxActiveDist(), 0.05))
		assert.True(t, l.DampingActive(0.04))
		assert.False(t, l.Active(0.04))
	}
}

func TestLawErrors(t *testing.T) {
	bad := []Params{
		{Law: types.PL_LPQP},
		{Law: types.PL_LNQP, G0: -1},
		{Law: types.PL_LPCP, G0: 0.1},
		{Law: types.PL_LPDQP, G0: 0.1, F0: 1},
		{Law: types.PL_LPDQP, G0: 0.1, F0: 1, C0: 3},
		{Law: types.PL_LPEP, G0: 0.1},
		{Law: types.PL_LP, GapShift: 0.1},
		{Law: types.PL_LP, Damping: true, DampingParam: 1, DampRegParam1: 0.01, DampRegParam2: 0.02},
		{Law: types.PenaltyLaw(99)},
	}
	for _, p := range bad {
		_, err := NewLaw(p)
		assert.True(t, errors.Is(err, types.ErrBadInput), "%+v", p)
	}
	l, err := NewLaw(Params{Law: types.PL_LP})
	require.NoError(t, err)
	assert.True(t, errors.Is(l.Check(0), types.ErrBadInput))
}

func TestScaleFactors(t *testing.T) {
	var (
		shift1, shift2 = utils.Deg2Rad(20), utils.Deg2Rad(30)
		s1, s2         = math.Cos(shift1), math.Cos(shift2)
	)
	{
		fac, _ := PerpScale(1, shift1, shift2)
		assert.Zero(t, fac)
		fac, _ = PerpScale(0, shift1, shift2)
		assert.Equal(t, 1., fac)
		fac, _ = ParScale(1, shift1, shift2)
		assert.Equal(t, 1., fac)
		fac, _ = ParScale(0, shift1, shift2)
		assert.Zero(t, fac)
	}
	{ // bounds and monotonicity over the transition
		var (
			n                 = 50
			lastPerp, lastPar = 2., -1.
		)
		for i := 1; i < n; i++ {
			s := s2 + (s1-s2)*float64(i)/float64(n)
			perp, dperp := PerpScale(s, shift1, shift2)
			par, dpar := ParScale(s, shift1, shift2)
			assert.True(t, perp >= 0 && perp <= 1)
			assert.True(t, par >= 0 && par <= 1)
			assert.True(t, perp <= lastPerp)
			assert.True(t, par >= lastPar)
			lastPerp, lastPar = perp, par
			dfd := fd.Derivative(func(x float64) float64 {
				f, _ := PerpScale(x, shift1, shift2)
				return f
			}, s, &fd.Settings{Formula: fd.Central, Step: 1.e-8})
			assert.True(t, near(dfd, dperp, 1.e-5))
			dfd = fd.Derivative(func(x float64) float64 {
				f, _ := ParScale(x, shift1, shift2)
				return f
			}, s, &fd.Settings{Formula: fd.Central, Step: 1.e-8})
			assert.True(t, near(dfd, dpar, 1.e-5))
			ddfd := fd.Derivative(func(x float64) float64 {
				_, df := PerpScale(x, shift1, shift2)
				return df
			}, s, &fd.Settings{Formula: fd.Central, Step: 1.e-7})
			assert.True(t, near(ddfd, PerpScaleCurvature(s, shift1, shift2), 1.e-4))
			ddfd = fd.Derivative(func(x float64) float64 {
				_, df := ParScale(x, shift1, shift2)
				return df
			}, s, &fd.Settings{Formula: fd.Central, Step: 1.e-7})
			assert.True(t, near(ddfd, ParScaleCurvature(s, shift1, shift2), 1.e-4))
		}
	}
	{ // switched off
		fac, _ := PerpScale(0, 2, 2)
		assert.Zero(t, fac)
		fac, _ = ParScale(0, 2, 2)
		assert.Equal(t, 1., fac)
	}
}

func TestDamping(t *testing.T) {
	l, err := NewLaw(Params{Law: types.PL_LP, Damping: true, DampingParam: 2, DampRegParam1: 0.05,
		DampRegParam2: 0.01})
	require.NoError(t, err)
	d, dd := l.Damping(0.06)
	assert.Zero(t, d)
	assert.Zero(t, dd)
	d, _ = l.Damping(0.0)
	assert.Equal(t, 2., d)
	d, _ = l.Damping(0.03)
	assert.True(t, near(d, 1))
	for _, g := range []float64{0.015, 0.027, 0.045} {
		_, dd = l.Damping(g)
		dfd := fd.Derivative(func(x float64) float64 {
			d, _ := l.Damping(x)
			return d
		}, g, &fd.Settings{Formula: fd.Central, Step: 1.e-7})
		assert.True(t, near(dfd, dd, 1.e-5))
	}
	{ // coincident regularization gaps switch at the first
		l, err := NewLaw(Params{Law: types.PL_LP, Damping: true, DampingParam: 2, DampRegParam1: 0.05,
			DampRegParam2: 0.05})
		require.NoError(t, err)
		d, _ := l.Damping(0.049)
		assert.Equal(t, 2., d)
	}
}
