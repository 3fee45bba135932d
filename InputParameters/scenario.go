package InputParameters

import (
	"fmt"

	"github.com/ghodss/yaml"
	"github.com/notargets/gobeamcontact/contact"
	"github.com/notargets/gobeamcontact/geometry"
	"github.com/notargets/gobeamcontact/types"
	"gonum.org/v1/gonum/spatial/r3"
)

// BeamInput is one straight beam of a scenario, moving with a constant velocity
type BeamInput struct {
	Start           [3]float64 `json:"Start"`
	End             [3]float64 `json:"End"`
	Velocity        [3]float64 `json:"Velocity"`
	NumElements     int        `json:"NumElements"`
	NodesPerElement int        `json:"NodesPerElement"`
	Hermite         bool       `json:"Hermite"`
	Radius          float64    `json:"Radius"`
}

// Scenario drives a set of beams through prescribed rigid motions
type Scenario struct {
	Title    string      `json:"Title"`
	Beams    []BeamInput `json:"Beams"`
	NumSteps int         `json:"NumSteps"`
	Dt       float64     `json:"Dt"`
	Threads  int         `json:"Threads"`
}

func (sc *Scenario) Parse(data []byte) error {
	return yaml.Unmarshal(data, sc)
}

func (sc *Scenario) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", sc.Title)
	fmt.Printf("[%d]\t\t\t\t= Number of Steps\n", sc.NumSteps)
	fmt.Printf("%8.5f\t\t= Dt\n", sc.Dt)
	fmt.Printf("[%d]\t\t\t\t= Threads\n", sc.Threads)
	for i, b := range sc.Beams {
		fmt.Printf("Beam[%d] = %v -> %v, v = %v, K = %d, R = %g\n", i, b.Start, b.End, b.Velocity,
			b.NumElements, b.Radius)
	}
}

func vec(a [3]float64) r3.Vec { return r3.Vec{X: a[0], Y: a[1], Z: a[2]} }

/*
Mesh builds the elements of all beams. Element and node numbers run on from one beam to the next, so
every element dof has its own global number; velocity holds the velocity of each element by ID.
*/
func (sc *Scenario) Mesh() (elements []*geometry.Element, velocity map[int]r3.Vec, err error) {
	var (
		elementID, nodeID int
	)
	if len(sc.Beams) < 2 {
		err = fmt.Errorf("scenario needs at least two beams, have %d: %w", len(sc.Beams), types.ErrBadInput)
		return
	}
	if sc.NumSteps < 1 || !(sc.Dt > 0) {
		err = fmt.Errorf("scenario needs NumSteps >= 1 and Dt > 0, have %d and %g: %w", sc.NumSteps, sc.Dt,
			types.ErrBadInput)
		return
	}
	velocity = make(map[int]r3.Vec)
	for ib, b := range sc.Beams {
		var (
			els []*geometry.Element
			nv  = 1
		)
		if b.Hermite {
			nv = 2
		}
		if els, err = geometry.StraightBeam(geometry.BeamSpec{
			FirstElementID:  elementID,
			FirstNodeID:     nodeID,
			Start:           vec(b.Start),
			End:             vec(b.End),
			NumElements:     b.NumElements,
			NodesPerElement: b.NodesPerElement,
			NumNodalValues:  nv,
			Radius:          b.Radius,
		}); err != nil {
			err = fmt.Errorf("beam %d: %w", ib, err)
			return
		}
		for _, e := range els {
			velocity[e.ID] = vec(b.Velocity)
			for _, id := range e.NodeIDs {
				nodeID = max(nodeID, id+1)
			}
		}
		elementID += len(els)
		// Hermite and Lagrange beams number dofs as nodeID * nodal values, keep them apart
		nodeID *= 2
		elements = append(elements, els...)
	}
	return
}

// Positions returns the element dofs at time t
func Positions(elements []*geometry.Element, velocity map[int]r3.Vec, t float64) (pos map[int][]float64) {
	pos = make(map[int][]float64, len(elements))
	for _, e := range elements {
		pos[e.ID] = geometry.TranslatedDofs(e, r3.Scale(t, velocity[e.ID]))
	}
	return
}

// NumDofs is one past the largest global dof number of the elements
func NumDofs(elements []*geometry.Element) (n int) {
	for _, e := range elements {
		for _, g := range e.DofGIDs {
			n = max(n, g+1)
		}
	}
	return
}

// RestartFile is the YAML restart record of a contact manager
type RestartFile struct {
	Step  int                   `json:"step"`
	Pairs []contact.RestartData `json:"pairs"`
}

func (rf *RestartFile) Parse(data []byte) error {
	return yaml.Unmarshal(data, rf)
}

func (rf *RestartFile) Marshal() ([]byte, error) {
	return yaml.Marshal(rf)
}
