package projection

import (
	"errors"
	"math"
	"testing"

	"github.com/notargets/gobeamcontact/geometry"
	"github.com/notargets/gobeamcontact/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

func near(a, b float64, tolI ...float64) bool {
	tol := 1.e-10
	if len(tolI) != 0 {
		tol = tolI[0]
	}
	return math.Abs(a-b) <= tol*math.Max(1, math.Abs(a))
}

func line(t *testing.T, id int, a, b r3.Vec) *geometry.Centerline {
	refPos := []float64{a.X, a.Y, a.Z, b.X, b.Y, b.Z}
	e, err := geometry.NewElement(id, []int{2 * id, 2*id + 1}, 1, refPos, 0.1)
	require.NoError(t, err)
	c, err := geometry.NewCenterline(e, refPos)
	require.NoError(t, err)
	return c
}

// bent is a three node element from a to b with the middle node lifted by h along z
func bent(t *testing.T, id int, a, b r3.Vec, h float64) *geometry.Centerline {
	m := r3.Add(r3.Scale(0.5, r3.Add(a, b)), r3.Vec{Z: h})
	refPos := []float64{a.X, a.Y, a.Z, b.X, b.Y, b.Z, m.X, m.Y, m.Z}
	e, err := geometry.NewElement(id, []int{3 * id, 3*id + 2, 3*id + 1}, 1, refPos, 0.01)
	require.NoError(t, err)
	c, err := geometry.NewCenterline(e, refPos)
	require.NoError(t, err)
	return c
}

var fullBox = Box{Left1: -1, L1: 2, Left2: -1, L2: 2}

func TestBoxStarts(t *testing.T) {
	{ // without a seed the first start is unusable, then the center and the 8 points around it
		starts := fullBox.Starts()
		require.Len(t, starts, 10)
		assert.True(t, math.IsInf(starts[0][0], 1))
		assert.Equal(t, [2]float64{0, 0}, starts[1])
		var center int
		for _, x := range starts[1:] {
			if x == [2]float64{0, 0} {
				center++
			}
		}
		assert.Equal(t, 1, center)
		assert.Contains(t, starts, [2]float64{-1, -1})
		assert.Contains(t, starts, [2]float64{1, 1})
		assert.Contains(t, starts, [2]float64{-1, 0})
	}
	{ // a seed maps onto the box
		box := Box{Left1: 0, L1: 1, Left2: -1, L2: 2, Seed1: -1, Seed2: 1, SeedSet: true}
		starts := box.Starts()
		require.Len(t, starts, 10)
		assert.Equal(t, [2]float64{0, 1}, starts[0])
		assert.Equal(t, [2]float64{0.5, 0}, starts[1])
		assert.Contains(t, starts[2:], [2]float64{0, -1})
	}
}

func TestClosestPointStraight(t *testing.T) {
	var (
		c1 = line(t, 0, r3.Vec{X: -1}, r3.Vec{X: 1})
		s  = DefaultSettings()
	)
	{ // crossing beams
		c2 := line(t, 1, r3.Vec{X: 0.5, Y: -1, Z: 0.15}, r3.Vec{X: 0.5, Y: 1, Z: 0.15})
		res, err := ClosestPoint(c1, c2, fullBox, s)
		require.NoError(t, err)
		assert.True(t, res.Found)
		assert.True(t, near(res.Xi, 0.5))
		assert.True(t, near(res.Eta, 0))
		assert.True(t, near(res.Dist, 0.15))
		assert.True(t, near(res.Angle, math.Pi/2))
		assert.Equal(t, 1, res.StartIndex)
	}
	{ // seeded box of the right half of c1
		c2 := line(t, 1, r3.Vec{X: 0.5, Y: -1, Z: 0.15}, r3.Vec{X: 0.5, Y: 1, Z: 0.15})
		box := Box{Left1: 0, L1: 1, Left2: -1, L2: 2, Seed1: 0, Seed2: 0, SeedSet: true}
		res, err := ClosestPoint(c1, c2, box, s)
		require.NoError(t, err)
		assert.True(t, res.Found)
		assert.Equal(t, 0, res.StartIndex)
		assert.True(t, near(res.Xi, 0.5))
		{ // the left half does not hold the point
			box.Left1 = -1
			res, err = ClosestPoint(c1, c2, box, s)
			require.NoError(t, err)
			assert.False(t, res.Found)
			assert.True(t, math.IsInf(res.Xi, 1))
		}
	}
	{ // projection outside both elements
		c2 := line(t, 1, r3.Vec{X: 3, Y: -1, Z: 0.15}, r3.Vec{X: 3, Y: 1, Z: 0.15})
		res, err := ClosestPoint(c1, c2, fullBox, s)
		require.NoError(t, err)
		assert.False(t, res.Found)
		assert.True(t, math.IsInf(res.Xi, 1) && math.IsInf(res.Eta, 1))
		xi, eta, ok, err := Unbounded(c1, c2, s)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, near(xi, 3, 1.e-8))
		assert.True(t, near(eta, 0, 1.e-8))
	}
	{ // parallel beams are colinear for the projection
		c2 := line(t, 1, r3.Vec{X: -1, Y: 0.15}, r3.Vec{X: 1, Y: 0.15})
		res, err := ClosestPoint(c1, c2, fullBox, s)
		require.NoError(t, err)
		assert.True(t, res.Colinear)
		assert.False(t, res.Found)
		_, _, ok, err := Unbounded(c1, c2, s)
		assert.NoError(t, err)
		assert.False(t, ok)
	}
	{ // intersecting axes
		c2 := line(t, 1, r3.Vec{X: 0.5, Y: -1}, r3.Vec{X: 0.5, Y: 1})
		_, err := ClosestPoint(c1, c2, fullBox, s)
		assert.True(t, errors.Is(err, types.ErrStepTooLarge))
	}
	{ // contact point on the element end
		c2 := line(t, 1, r3.Vec{X: 1, Y: -1, Z: 0.15}, r3.Vec{X: 1, Y: 1, Z: 0.15})
		res, err := ClosestPoint(c1, c2, fullBox, s)
		require.NoError(t, err)
		assert.True(t, res.Ambiguous)
		assert.False(t, res.Found)
	}
}

func TestClosestPointCurved(t *testing.T) {
	var (
		c1 = bent(t, 0, r3.Vec{X: -1}, r3.Vec{X: 1}, 0.1)
		c2 = line(t, 1, r3.Vec{X: 0.3, Y: -1, Z: 0.3}, r3.Vec{X: 0.2, Y: 1, Z: 0.35})
	)
	res, err := ClosestPoint(c1, c2, fullBox, DefaultSettings())
	require.NoError(t, err)
	require.True(t, res.Found)
	p1, p2 := c1.Eval(res.Xi), c2.Eval(res.Eta)
	dr := r3.Sub(p1.R, p2.R)
	assert.True(t, near(r3.Dot(dr, p1.Rxi)/r3.Norm(dr), 0, 1.e-9))
	assert.True(t, near(r3.Dot(dr, p2.Rxi)/r3.Norm(dr), 0, 1.e-9))
	assert.True(t, near(res.Dist, r3.Norm(dr)))
	assert.True(t, res.Iterations < 10)
}

func TestSystemsJacobian(t *testing.T) {
	var (
		c1 = bent(t, 0, r3.Vec{X: -1}, r3.Vec{X: 1}, 0.1)
		c2 = bent(t, 1, r3.Vec{X: 0.3, Y: -1, Z: 0.3}, r3.Vec{X: 0.2, Y: 1, Z: 0.35}, -0.05)
		x  = []float64{0.31, -0.42}
	)
	scaled := func(y, x []float64) {
		p1, p2 := c1.Eval(x[0]), c2.Eval(x[1])
		f, _, norm := CPPSystem(p1, p2, p1.Rxi, p1.Rxixi, p2.Rxi, p2.Rxixi)
		y[0], y[1] = f[0]*norm, f[1]*norm
	}
	{
		p1, p2 := c1.Eval(x[0]), c2.Eval(x[1])
		_, J, norm := CPPSystem(p1, p2, p1.Rxi, p1.Rxixi, p2.Rxi, p2.Rxixi)
		Jfd := mat.NewDense(2, 2, nil)
		fd.Jacobian(Jfd, scaled, x, &fd.JacobianSettings{Formula: fd.Central, Step: 1.e-6})
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				assert.True(t, near(J.At(i, j)*norm, Jfd.At(i, j), 1.e-7))
			}
		}
	}
	for _, orthogonal := range []bool{false, true} {
		pG := c1.Eval(x[0])
		_, df, norm := PTLSystem(pG, c2.Eval(x[1]), orthogonal)
		dfd := fd.Derivative(func(eta float64) float64 {
			f, _, n := PTLSystem(pG, c2.Eval(eta), orthogonal)
			return f * n
		}, x[1], &fd.Settings{Formula: fd.Central, Step: 1.e-6})
		assert.True(t, near(df*norm, dfd, 1.e-7))
	}
}

func TestPointToLine(t *testing.T) {
	var (
		c1 = line(t, 0, r3.Vec{X: -1}, r3.Vec{X: 1})
		c2 = line(t, 1, r3.Vec{X: -1, Y: 0.15}, r3.Vec{X: 1, Y: 0.15})
		s  = DefaultSettings()
	)
	for _, orthogonal := range []bool{false, true} {
		res, err := PointToLine(c2, c1, 0.2, -1, 2, orthogonal, s)
		require.NoError(t, err)
		assert.True(t, res.Found)
		assert.True(t, near(res.Eta, 0.2))
		assert.True(t, near(res.Dist, 0.15))
		assert.True(t, near(res.Angle, 0))
	}
	{ // outside the searched interval
		res, err := PointToLine(c2, c1, 0.5, -1, 0.5, false, s)
		require.NoError(t, err)
		assert.False(t, res.Found)
		assert.True(t, math.IsInf(res.Eta, 1))
	}
	{ // identical axes
		c3 := line(t, 2, r3.Vec{X: -1}, r3.Vec{X: 1})
		_, err := PointToLine(c3, c1, 0, -1, 2, false, s)
		assert.True(t, errors.Is(err, types.ErrStepTooLarge))
	}
	{ // endpoint of a perpendicular beam onto a curved one
		c4 := bent(t, 3, r3.Vec{X: -1}, r3.Vec{X: 1}, 0.1)
		c5 := line(t, 4, r3.Vec{X: 0.4, Y: 0.1, Z: 0.2}, r3.Vec{X: 0.4, Y: 1, Z: 0.2})
		res, err := PointToLine(c5, c4, -1, -1, 2, false, s)
		require.NoError(t, err)
		require.True(t, res.Found)
		pS := c4.Eval(res.Eta)
		dr := r3.Sub(c5.Position(-1), pS.R)
		assert.True(t, near(r3.Dot(dr, pS.Rxi), 0, 1.e-9))
	}
}
