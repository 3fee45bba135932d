package segments

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Seeds of a parallel pair have no meaning
const NoSeed = 1000.

func clamp01(f float64) float64 { return math.Max(0, math.Min(f, 1)) }

// closestOnSegment returns the closest point to p on the chord a-b and its position s in [0,1]
func closestOnSegment(p, a, b r3.Vec) (q r3.Vec, s float64) {
	var (
		delta = r3.Sub(a, b)
		l2    = r3.Dot(delta, delta)
	)
	if l2 == 0 {
		return a, 0
	}
	s = clamp01(r3.Dot(delta, r3.Sub(a, p)) / l2)
	q = r3.Add(a, r3.Scale(s, r3.Sub(b, a)))
	return
}

// ParallelCylinders tests two almost parallel chords for a distance below limit. The perpendicular
// distance is measured from the axis of the first chord and the axial extents must overlap within limit
func ParallelCylinders(a1, b1, a2, b2 r3.Vec, limit float64) bool {
	var (
		t1 = r3.Sub(b1, a1)
		l1 = r3.Norm(t1)
	)
	if l1 == 0 {
		return false
	}
	t1 = r3.Scale(1/l1, t1)
	perp := func(p r3.Vec) float64 {
		d := r3.Sub(p, a1)
		return r3.Norm(r3.Sub(d, r3.Scale(r3.Dot(d, t1), t1)))
	}
	if math.Min(perp(a2), perp(b2)) >= limit {
		return false
	}
	var (
		sa = r3.Dot(r3.Sub(a2, a1), t1)
		sb = r3.Dot(r3.Sub(b2, a1), t1)
	)
	lo, hi := math.Min(sa, sb), math.Max(sa, sb)
	return hi > -limit && lo < l1+limit
}

// ArbitraryCylinders intersects two chords at an arbitrary angle. When the closest points of the
// infinite axes fall inside both chords they are returned as seeds on [-1,1] and etaSet is true,
// otherwise the distance is the one of the clamped chords and the seeds are NoSeed
func ArbitraryCylinders(a1, b1, a2, b2 r3.Vec, limit float64) (hit bool, eta1, eta2 float64, etaSet bool) {
	var (
		d1  = r3.Sub(b1, a1)
		d2  = r3.Sub(b2, a2)
		w   = r3.Sub(a1, a2)
		a   = r3.Dot(d1, d1)
		b   = r3.Dot(d1, d2)
		c   = r3.Dot(d2, d2)
		d   = r3.Dot(d1, w)
		e   = r3.Dot(d2, w)
		den = a*c - b*b
	)
	eta1, eta2 = NoSeed, NoSeed
	if den > 1.e-14*a*c {
		s := (b*e - c*d) / den
		t := (a*e - b*d) / den
		if s >= 0 && s <= 1 && t >= 0 && t <= 1 {
			p1 := r3.Add(a1, r3.Scale(s, d1))
			p2 := r3.Add(a2, r3.Scale(t, d2))
			if r3.Norm(r3.Sub(p1, p2)) < limit {
				hit, etaSet = true, true
				eta1, eta2 = 2*s-1, 2*t-1
			}
			return
		}
	}
	hit = SegmentDistance(a1, b1, a2, b2) < limit
	return
}

// SegmentDistance is the smallest distance between two chords
func SegmentDistance(a1, b1, a2, b2 r3.Vec) (dist float64) {
	var (
		d1 = r3.Sub(b1, a1)
		d2 = r3.Sub(b2, a2)
		w  = r3.Sub(a1, a2)
		a  = r3.Dot(d1, d1)
		b  = r3.Dot(d1, d2)
		c  = r3.Dot(d2, d2)
		d  = r3.Dot(d1, w)
		e  = r3.Dot(d2, w)
	)
	var s, t float64
	switch {
	case a == 0 && c == 0:
		return r3.Norm(w)
	case a == 0:
		t = clamp01(e / c)
	case c == 0:
		s = clamp01(-d / a)
	default:
		den := a*c - b*b
		if den > 0 {
			s = clamp01((b*e - c*d) / den)
		}
		t = (b*s + e) / c
		if t < 0 {
			t, s = 0, clamp01(-d/a)
		} else if t > 1 {
			t, s = 1, clamp01((b-d)/a)
		}
	}
	p1 := r3.Add(a1, r3.Scale(s, d1))
	p2 := r3.Add(a2, r3.Scale(t, d2))
	return r3.Norm(r3.Sub(p1, p2))
}

// PointDistance is the distance of p to the chord a-b
func PointDistance(p, a, b r3.Vec) float64 {
	q, _ := closestOnSegment(p, a, b)
	return r3.Norm(r3.Sub(p, q))
}
