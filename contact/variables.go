package contact

import (
	"iter"
	"math"

	"github.com/notargets/gobeamcontact/types"
	"github.com/notargets/gobeamcontact/utils"
	"gonum.org/v1/gonum/spatial/r3"
)

// paramMode says how the contact point parameters follow the dofs
type paramMode uint8

const (
	pmCPP      paramMode = iota // both from the closest point conditions
	pmEtaFree                   // xi fixed, eta from the point to line condition on element 2
	pmXiFree                    // eta fixed, xi from the point to line condition on element 1
	pmFixed                     // both fixed
	pmCutGauss                  // Gauss point of a cut interval, xi moves with the interval bound
)

// Variable is one contact point of a pair
type Variable struct {
	Kind        types.ContactKind
	Xi, Eta     float64
	Normal      r3.Vec
	Gap         float64
	Angle       float64
	Cos         float64 // |cos| of the angle, argument of the scale factor
	Penalty     float64
	Scale       float64
	DScale      float64 // d Scale / d Cos
	Fp, Dfp     float64
	Energy      float64 // potential per unit length at the gap, fp = -dE/dg
	Integrated  float64 // Scale * Energy * IntFac
	IntFac      float64 // Gauss weight times jacobian, 1 for point contact
	Jacobian    float64
	Sign        float64 // sign of n.n_old for the new gap, 1 otherwise
	Damping     bool
	D, DD       float64 // damping coefficient and its gap derivative
	GapRate     float64
	Contact     bool // penalty law active, the point may be present for damping only
	CompleteStf bool // all tangent parts, false when the basic stiffness gap clips

	mode    paramMode
	dist    float64 // |r1 - r2|
	ddScale float64
	cut     *cutGauss
}

// cutGauss carries the interval bound dependence of a Gauss point in a cut interval
type cutGauss struct {
	dXiDb   float64   // d xi_GP / d xi_b
	dLenDb  float64   // d interval length / d xi_b
	dBound  []float64 // d xi_b / d dofs
	weight  float64
	jacobi  float64 // element jacobian at xi_GP
	slope   float64 // d jacobi / d xi
	halfLen float64 // interval jacobian

	boundXi, boundEta float64 // the bound on element 1 and the beam end of element 2 it projects
}

// Store keeps the contact points of a pair in one list per kind. Insertion drops points that
// coincide with a point already in the list.
type Store struct {
	lists [3][]*Variable
}

func (s *Store) Reset() {
	for i := range s.lists {
		s.lists[i] = s.lists[i][:0]
	}
}

func coincide(a, b *Variable) bool {
	tol := utils.XIETARESOLUTIONFAC * utils.XIETAITERATIVEDISPTOL
	return math.Abs(a.Xi-b.Xi) < tol && math.Abs(a.Eta-b.Eta) < tol
}

// Add inserts v unless a coinciding point exists, it reports whether v was inserted
func (s *Store) Add(v *Variable) bool {
	for _, w := range s.lists[v.Kind] {
		if coincide(v, w) {
			return false
		}
	}
	s.lists[v.Kind] = append(s.lists[v.Kind], v)
	return true
}

func (s *Store) List(kind types.ContactKind) []*Variable { return s.lists[kind] }

func (s *Store) Len() (n int) {
	for _, l := range s.lists {
		n += len(l)
	}
	return
}

// All iterates large angle, then small angle, then endpoint points
func (s *Store) All() iter.Seq[*Variable] {
	return func(yield func(*Variable) bool) {
		for _, l := range s.lists {
			for _, v := range l {
				if !yield(v) {
					return
				}
			}
		}
	}
}

// closest returns the point with the smallest gap, nil for an empty store
func (s *Store) closest() (best *Variable) {
	for v := range s.All() {
		if best == nil || v.Gap < best.Gap {
			best = v
		}
	}
	return
}
