package geometry

import (
	"fmt"

	"github.com/notargets/gobeamcontact/types"
	"github.com/notargets/gobeamcontact/utils"
	"gonum.org/v1/gonum/spatial/r3"
)

/*
SmoothNodalTangents builds a continuous tangent field for position-only elements. The end node
tangents are the average of the unit chords of the element and of its neighbor across that end; the
interior node tangents are the unit centerline tangents at the node. A nil neighbor keeps the own chord.
*/
func SmoothNodalTangents(self, left, right *Centerline) (tangents []r3.Vec, err error) {
	var (
		e = self.Ele
	)
	if e.NumNodalValues != 1 {
		err = fmt.Errorf("element %d: tangent smoothing needs position-only elements: %w", e.ID, types.ErrBadInput)
		return
	}
	chord := func(c *Centerline) (t r3.Vec, err error) {
		d := r3.Sub(c.Node(1), c.Node(0))
		if r3.Norm(d) < utils.TANGENTTOL {
			err = fmt.Errorf("element %d: zero chord: %w", c.Ele.ID, types.ErrTangentZero)
			return
		}
		t = r3.Unit(d)
		return
	}
	var own r3.Vec
	if own, err = chord(self); err != nil {
		return
	}
	tangents = make([]r3.Vec, e.NumNodes)
	tangents[0], tangents[1] = own, own
	if left != nil {
		var tl r3.Vec
		if tl, err = chord(left); err != nil {
			return
		}
		tangents[0] = r3.Unit(r3.Add(tl, own))
	}
	if right != nil {
		var tr r3.Vec
		if tr, err = chord(right); err != nil {
			return
		}
		tangents[1] = r3.Unit(r3.Add(tr, own))
	}
	x := LagrangeNodes(e.NumNodes)
	for k := 2; k < e.NumNodes; k++ {
		t := self.Tangent(x[k])
		if r3.Norm(t) < utils.TANGENTTOL {
			err = fmt.Errorf("element %d: zero tangent at node %d: %w", e.ID, k, types.ErrTangentZero)
			return
		}
		tangents[k] = r3.Unit(t)
	}
	return
}
