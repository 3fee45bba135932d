package segments

import (
	"iter"
	"math"

	"github.com/notargets/gobeamcontact/geometry"
	"github.com/notargets/gobeamcontact/utils"
	"gonum.org/v1/gonum/spatial/r3"
)

// Candidate is a pair of segments whose cylinders are close
type Candidate struct {
	Seg1, Seg2         int
	Angle              float64
	Eta1Seed, Eta2Seed float64 // local seeds on [-1,1], NoSeed when unknown
	EtaSet             bool
}

// DistanceLimit is the distance below which two segment chords can carry an active contact point
func DistanceLimit(s1, s2 *Segmentation, maxActiveDist, r1, r2 float64) float64 {
	return utils.SEGMENTSAFETYFAC * (s1.MaxSegDist + s2.MaxSegDist + maxActiveDist + r1 + r2)
}

// ClosePairs iterates all segment pairs of two segmentations whose cylinders are within distanceLimit
func ClosePairs(s1, s2 *Segmentation, distanceLimit float64) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		for i, seg1 := range s1.All() {
			t1 := r3.Sub(seg1.B, seg1.A)
			for j, seg2 := range s2.All() {
				t2 := r3.Sub(seg2.B, seg2.A)
				angle, err := geometry.EnclosedAngle(t1, t2)
				if err != nil {
					// degenerate chord, both ends coincide
					angle = math.Pi / 2
				}
				cd := Candidate{
					Seg1: i, Seg2: j, Angle: angle,
					Eta1Seed: NoSeed, Eta2Seed: NoSeed,
				}
				var hit bool
				if angle < utils.ANGLETOL {
					hit = ParallelCylinders(seg1.A, seg1.B, seg2.A, seg2.B, distanceLimit)
				} else {
					hit, cd.Eta1Seed, cd.Eta2Seed, cd.EtaSet = ArbitraryCylinders(seg1.A, seg1.B,
						seg2.A, seg2.B, distanceLimit)
				}
				if hit {
					if !yield(cd) {
						return
					}
				}
			}
		}
	}
}

// Classifier sorts close segment pairs into the large angle, small angle and endpoint sets
type Classifier struct {
	DeltaSmall, DeltaLarge float64
	EndpointPenalty        bool
	Boundary1, Boundary2   [2]bool // physical beam end at xi=-1 and xi=1 of each element
}

type CloseSets struct {
	LargeAngle, SmallAngle, Endpoint []Candidate
}

func (cs CloseSets) Empty() bool {
	return len(cs.LargeAngle)+len(cs.SmallAngle)+len(cs.Endpoint) == 0
}

// NewClassifier derives the set limits from the transition angles, the segment angle widens both
func NewClassifier(perpShift1, parShift2, segAngle float64) Classifier {
	return Classifier{
		DeltaSmall: parShift2 + 2*utils.SHIFTANGLESAFETYFAC*segAngle,
		DeltaLarge: math.Max(0, perpShift1-2*utils.SHIFTANGLESAFETYFAC*segAngle),
	}
}

func (cl Classifier) touchesBoundary(i, j, n1, n2 int) bool {
	return (i == 0 && cl.Boundary1[0]) || (i == n1-1 && cl.Boundary1[1]) ||
		(j == 0 && cl.Boundary2[0]) || (j == n2-1 && cl.Boundary2[1])
}

func (cl Classifier) Classify(cands iter.Seq[Candidate], n1, n2 int) (cs CloseSets) {
	for cd := range cands {
		if cd.Angle <= cl.DeltaSmall {
			cs.SmallAngle = append(cs.SmallAngle, cd)
		}
		if cd.Angle >= cl.DeltaLarge {
			cs.LargeAngle = append(cs.LargeAngle, cd)
		}
		if cl.EndpointPenalty && cl.touchesBoundary(cd.Seg1, cd.Seg2, n1, n2) {
			cs.Endpoint = append(cs.Endpoint, cd)
		}
	}
	return
}
