package segments

import (
	"fmt"
	"iter"
	"math"

	"github.com/notargets/gobeamcontact/geometry"
	"github.com/notargets/gobeamcontact/types"
	"gonum.org/v1/gonum/spatial/r3"
)

// Segmentation is a uniform subdivision of [-1,1] fine enough that every segment chord stays within
// the segment angle of the centerline tangents at its ends
type Segmentation struct {
	Breaks     []float64 // parameter values, Breaks[0] = -1 and Breaks[n] = 1
	Points     []r3.Vec  // centerline positions at Breaks
	MaxSegDist float64   // largest distance between a segment chord and its circular arc approximation
}

type Segment struct {
	Left, Right float64
	A, B        r3.Vec
}

// Subdivisions yields the trial segment counts 1, 2, 4, ... up to maxSeg
func Subdivisions(maxSeg int) iter.Seq[int] {
	return func(yield func(int) bool) {
		for n := 1; n <= maxSeg; n *= 2 {
			if !yield(n) {
				return
			}
		}
	}
}

// Intervals yields the n uniform subintervals of [-1,1]
func Intervals(n int) iter.Seq2[int, [2]float64] {
	return func(yield func(int, [2]float64) bool) {
		for i := 0; i < n; i++ {
			xi1 := -1 + float64(i)/float64(n)*2
			xi2 := -1 + float64(i+1)/float64(n)*2
			if !yield(i, [2]float64{xi1, xi2}) {
				return
			}
		}
	}
}

func Create(c *geometry.Centerline, segAngle float64, maxSeg int) (s *Segmentation, err error) {
	if !(segAngle > 0) {
		err = fmt.Errorf("segment angle %g: %w", segAngle, types.ErrBadInput)
		return
	}
	for n := range Subdivisions(maxSeg) {
		var (
			fine       = true
			maxSegDist float64
			breaks     = make([]float64, n+1)
			points     = make([]r3.Vec, n+1)
		)
		for i, iv := range Intervals(n) {
			var (
				p1, p2  = c.Eval(iv[0]), c.Eval(iv[1])
				rm      = c.Position((iv[0] + iv[1]) / 2)
				l       = r3.Norm(r3.Sub(p2.R, p1.R))
				segDist = l / 2 * math.Tan(segAngle)
			)
			breaks[i], breaks[i+1] = iv[0], iv[1]
			points[i], points[i+1] = p1.R, p2.R
			maxSegDist = math.Max(maxSegDist, segDist)
			var ok bool
			if ok, err = checkSegment(p1.R, p1.Rxi, p2.R, p2.Rxi, rm, segAngle, segDist); err != nil {
				err = fmt.Errorf("element %d, segment %d of %d: %w", c.Ele.ID, i, n, err)
				return
			}
			if !ok {
				fine = false
			}
		}
		if fine {
			s = &Segmentation{
				Breaks:     breaks,
				Points:     points,
				MaxSegDist: maxSegDist,
			}
			return
		}
	}
	err = fmt.Errorf("element %d needs more than %d segments: %w", c.Ele.ID, maxSeg, types.ErrSegmentLimitExceeded)
	return
}

// checkSegment accepts a segment when both end tangents enclose less than segAngle with the chord
func checkSegment(r1, t1, r2, t2, rm r3.Vec, segAngle, segDist float64) (ok bool, err error) {
	var (
		chord  = r3.Sub(r2, r1)
		rmLin  = r3.Scale(0.5, r3.Add(r1, r2))
		a1, a2 float64
	)
	if a1, err = geometry.EnclosedAngle(t1, chord); err != nil {
		return
	}
	if a2, err = geometry.EnclosedAngle(t2, chord); err != nil {
		return
	}
	if a1 < segAngle && a2 < segAngle {
		if dist := r3.Norm(r3.Sub(rmLin, rm)); dist > segDist {
			err = fmt.Errorf("midpoint offset %g exceeds the arc bound %g: %w", dist, segDist,
				types.ErrSegmentLimitExceeded)
			return
		}
		ok = true
	}
	return
}

func (s *Segmentation) NumSegments() int { return len(s.Breaks) - 1 }

// Length is the parameter length of one segment
func (s *Segmentation) Length() float64 { return 2 / float64(s.NumSegments()) }

func (s *Segmentation) Left(i int) float64 { return s.Breaks[i] }

func (s *Segmentation) Segment(i int) Segment {
	return Segment{
		Left:  s.Breaks[i],
		Right: s.Breaks[i+1],
		A:     s.Points[i],
		B:     s.Points[i+1],
	}
}

func (s *Segmentation) All() iter.Seq2[int, Segment] {
	return func(yield func(int, Segment) bool) {
		for i := 0; i < s.NumSegments(); i++ {
			if !yield(i, s.Segment(i)) {
				return
			}
		}
	}
}

// SegmentID returns the segment containing the parameter xi
func (s *Segmentation) SegmentID(xi float64) int {
	var (
		n = s.NumSegments()
	)
	id := int(math.Floor((xi + 1) / s.Length()))
	if id < 0 {
		id = 0
	}
	if id > n-1 {
		id = n - 1
	}
	return id
}
