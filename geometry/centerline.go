package geometry

import (
	"fmt"

	"github.com/notargets/gobeamcontact/types"
	"gonum.org/v1/gonum/spatial/r3"
)

// Point is a centerline location with its first and second parameter derivatives
type Point struct {
	R, Rxi, Rxixi r3.Vec
}

// Centerline is an element evaluated at a set of current dofs
type Centerline struct {
	Ele           *Element
	Dofs          []float64
	NodalTangents []r3.Vec // smoothed nodal tangents, nil unless smoothing is on
}

func NewCenterline(e *Element, dofs []float64) (c *Centerline, err error) {
	if len(dofs) != e.NumDofs() {
		err = fmt.Errorf("element %d: %d dofs, want %d: %w", e.ID, len(dofs), e.NumDofs(), types.ErrBadInput)
		return
	}
	c = &Centerline{
		Ele:  e,
		Dofs: dofs,
	}
	return
}

func (c *Centerline) Eval(xi float64) (p Point) {
	N, Nxi, Nxixi := c.Ele.Basis(xi)
	p.R = N.Apply(c.Dofs)
	p.Rxi = Nxi.Apply(c.Dofs)
	p.Rxixi = Nxixi.Apply(c.Dofs)
	return
}

func (c *Centerline) Position(xi float64) r3.Vec {
	N, _, _ := c.Ele.Basis(xi)
	return N.Apply(c.Dofs)
}

func (c *Centerline) Tangent(xi float64) r3.Vec {
	_, Nxi, _ := c.Ele.Basis(xi)
	return Nxi.Apply(c.Dofs)
}

// Node returns the current position of local node k
func (c *Centerline) Node(k int) r3.Vec {
	return c.Ele.node(c.Dofs, k)
}

// Chord is the current distance between the end nodes
func (c *Centerline) Chord() float64 {
	return r3.Norm(r3.Sub(c.Node(1), c.Node(0)))
}

// SmoothedTangent interpolates the smoothed nodal tangents at xi
func (c *Centerline) SmoothedTangent(xi float64) (t, txi r3.Vec) {
	N, Nxi, _ := c.Ele.Basis(xi)
	for k, tk := range c.NodalTangents {
		t = r3.Add(t, r3.Scale(N[k], tk))
		txi = r3.Add(txi, r3.Scale(Nxi[k], tk))
	}
	return
}

func (c *Centerline) Smoothed() bool { return len(c.NodalTangents) != 0 }
