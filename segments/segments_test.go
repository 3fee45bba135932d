package segments

import (
	"errors"
	"math"
	"testing"

	"github.com/notargets/gobeamcontact/geometry"
	"github.com/notargets/gobeamcontact/types"
	"github.com/notargets/gobeamcontact/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func near(a, b float64, tolI ...float64) bool {
	tol := 1.e-10
	if len(tolI) != 0 {
		tol = tolI[0]
	}
	return math.Abs(a-b) <= tol*math.Max(1, math.Abs(a))
}

// quarterArc is a three node Lagrange element through three points of the unit circle
func quarterArc(t *testing.T) *geometry.Centerline {
	var (
		s2 = math.Sqrt(0.5)
	)
	refPos := []float64{1, 0, 0, 0, 1, 0, s2, s2, 0}
	e, err := geometry.NewElement(0, []int{0, 2, 1}, 1, refPos, 0.001)
	require.NoError(t, err)
	c, err := geometry.NewCenterline(e, refPos)
	require.NoError(t, err)
	return c
}

func straight(t *testing.T, start, end r3.Vec, id int) *geometry.Centerline {
	els, err := geometry.StraightBeam(geometry.BeamSpec{
		FirstElementID: id, FirstNodeID: 10 * id, Start: start, End: end,
		NumElements: 1, NodesPerElement: 2, NumNodalValues: 1, Radius: 0.1,
	})
	require.NoError(t, err)
	c, err := geometry.NewCenterline(els[0], els[0].RefPos)
	require.NoError(t, err)
	return c
}

func TestSubdivisions(t *testing.T) {
	var ns []int
	for n := range Subdivisions(16) {
		ns = append(ns, n)
	}
	assert.Equal(t, []int{1, 2, 4, 8, 16}, ns)
	var (
		count int
		last  [2]float64
	)
	for i, iv := range Intervals(4) {
		if i == 0 {
			assert.True(t, near(iv[0], -1))
		}
		assert.True(t, near(iv[1]-iv[0], 0.5))
		last = iv
		count++
	}
	assert.Equal(t, 4, count)
	assert.True(t, near(last[1], 1))
}

func TestCreateStraight(t *testing.T) {
	var (
		segAngle = utils.Deg2Rad(2)
	)
	c := straight(t, r3.Vec{}, r3.Vec{X: 2}, 0)
	s, err := Create(c, segAngle, utils.MAXSEGMENTS)
	require.NoError(t, err)
	assert.Equal(t, 1, s.NumSegments())
	assert.True(t, near(s.Length(), 2))
	assert.True(t, near(s.MaxSegDist, math.Tan(segAngle)))
	assert.Equal(t, []float64{-1, 1}, s.Breaks)
	{ // bad angle
		_, err = Create(c, 0, utils.MAXSEGMENTS)
		assert.True(t, errors.Is(err, types.ErrBadInput))
	}
}

func TestCreateCurved(t *testing.T) {
	var (
		segAngle = utils.Deg2Rad(5)
	)
	c := quarterArc(t)
	s, err := Create(c, segAngle, utils.MAXSEGMENTS)
	require.NoError(t, err)
	n := s.NumSegments()
	assert.True(t, n >= 8)
	assert.Equal(t, 0, n&(n-1), "segment count is a power of two")
	for i, seg := range s.All() {
		assert.True(t, near(seg.Left, s.Left(i)))
		assert.True(t, near(seg.Right-seg.Left, s.Length()))
		chord := r3.Sub(seg.B, seg.A)
		for _, xi := range []float64{seg.Left, seg.Right} {
			a, err := geometry.EnclosedAngle(c.Tangent(xi), chord)
			require.NoError(t, err)
			assert.Less(t, a, segAngle)
		}
	}
	assert.Equal(t, 0, s.SegmentID(-1))
	assert.Equal(t, n-1, s.SegmentID(1))
	assert.Equal(t, n/2, s.SegmentID(1.e-9))
	{ // too few segments allowed
		_, err = Create(c, segAngle, 2)
		assert.True(t, errors.Is(err, types.ErrSegmentLimitExceeded))
	}
}

func TestCylinders(t *testing.T) {
	{ // crossing chords, closest points inside both
		hit, eta1, eta2, set := ArbitraryCylinders(
			r3.Vec{X: -1}, r3.Vec{X: 1},
			r3.Vec{X: 0.5, Y: -1, Z: 0.15}, r3.Vec{X: 0.5, Y: 1, Z: 0.15}, 0.3)
		assert.True(t, hit)
		assert.True(t, set)
		assert.True(t, near(eta1, 0.5))
		assert.True(t, near(eta2, 0))
		hit, _, _, _ = ArbitraryCylinders(
			r3.Vec{X: -1}, r3.Vec{X: 1},
			r3.Vec{X: 0.5, Y: -1, Z: 0.15}, r3.Vec{X: 0.5, Y: 1, Z: 0.15}, 0.1)
		assert.False(t, hit)
	}
	{ // crossing of the axes outside the second chord
		hit, eta1, _, set := ArbitraryCylinders(
			r3.Vec{X: -1}, r3.Vec{X: 1},
			r3.Vec{X: 0.5, Y: 0.05}, r3.Vec{X: 0.5, Y: 1}, 0.2)
		assert.True(t, hit)
		assert.False(t, set)
		assert.Equal(t, NoSeed, eta1)
		assert.True(t, near(SegmentDistance(r3.Vec{X: -1}, r3.Vec{X: 1},
			r3.Vec{X: 0.5, Y: 0.05}, r3.Vec{X: 0.5, Y: 1}), 0.05))
	}
	{ // parallel chords
		a1, b1 := r3.Vec{}, r3.Vec{X: 1}
		assert.True(t, ParallelCylinders(a1, b1, r3.Vec{X: 0.5, Y: 0.15}, r3.Vec{X: 1.5, Y: 0.15}, 0.3))
		assert.False(t, ParallelCylinders(a1, b1, r3.Vec{X: 0.5, Y: 0.5}, r3.Vec{X: 1.5, Y: 0.5}, 0.3))
		assert.False(t, ParallelCylinders(a1, b1, r3.Vec{X: 2, Y: 0.15}, r3.Vec{X: 3, Y: 0.15}, 0.3))
		assert.True(t, ParallelCylinders(a1, b1, r3.Vec{X: 1.2, Y: 0.15}, r3.Vec{X: 3, Y: 0.15}, 0.3))
	}
	assert.True(t, near(PointDistance(r3.Vec{X: 2, Y: 1}, r3.Vec{}, r3.Vec{X: 1}), math.Sqrt(2)))
}

func TestClosePairs(t *testing.T) {
	var (
		s1 = &Segmentation{
			Breaks: []float64{-1, 0, 1},
			Points: []r3.Vec{{X: 0}, {X: 1}, {X: 2}},
		}
		// parallel to s1 above its second segment, and a crossing segment
		s2 = &Segmentation{
			Breaks: []float64{-1, 0, 1},
			Points: []r3.Vec{{X: 1.4, Y: 0.15}, {X: 1.8, Y: 0.15}, {X: 1.8, Y: 1.15}},
		}
	)
	var cands []Candidate
	for cd := range ClosePairs(s1, s2, 0.3) {
		cands = append(cands, cd)
	}
	require.Len(t, cands, 2)
	assert.Equal(t, [2]int{1, 0}, [2]int{cands[0].Seg1, cands[0].Seg2})
	assert.True(t, near(cands[0].Angle, 0))
	assert.Equal(t, NoSeed, cands[0].Eta1Seed)
	assert.Equal(t, [2]int{1, 1}, [2]int{cands[1].Seg1, cands[1].Seg2})
	assert.True(t, near(cands[1].Angle, math.Pi/2))
	{ // early stop
		count := 0
		for range ClosePairs(s1, s2, 0.3) {
			count++
			break
		}
		assert.Equal(t, 1, count)
	}
	{
		cl := NewClassifier(utils.Deg2Rad(20), utils.Deg2Rad(10), utils.Deg2Rad(1))
		assert.True(t, near(cl.DeltaSmall, utils.Deg2Rad(13)))
		assert.True(t, near(cl.DeltaLarge, utils.Deg2Rad(17)))
		assert.Equal(t, 0., NewClassifier(utils.Deg2Rad(2), utils.Deg2Rad(10), utils.Deg2Rad(1)).DeltaLarge)
		cs := cl.Classify(ClosePairs(s1, s2, 0.3), 2, 2)
		assert.Len(t, cs.SmallAngle, 1)
		assert.Len(t, cs.LargeAngle, 1)
		assert.Len(t, cs.Endpoint, 0)
		cl.EndpointPenalty = true
		cl.Boundary2 = [2]bool{false, true}
		cs = cl.Classify(ClosePairs(s1, s2, 0.3), 2, 2)
		require.Len(t, cs.Endpoint, 1)
		assert.Equal(t, 1, cs.Endpoint[0].Seg2)
		assert.False(t, cs.Empty())
	}
	assert.True(t, near(DistanceLimit(s1, s1, 0.01, 0.1, 0.1), 1.1*0.21))
}
