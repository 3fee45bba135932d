package geometry

import (
	"fmt"

	"github.com/notargets/gobeamcontact/types"
	"gonum.org/v1/gonum/spatial/r3"
)

// BeamSpec describes a straight beam discretized into equal elements
type BeamSpec struct {
	FirstElementID  int
	FirstNodeID     int
	Start, End      r3.Vec
	NumElements     int
	NodesPerElement int
	NumNodalValues  int
	Radius          float64
}

// StraightBeam builds connected elements along Start-End; both ends are physical boundary nodes
func StraightBeam(bs BeamSpec) (elements []*Element, err error) {
	var (
		n   = bs.NodesPerElement
		v   = bs.NumNodalValues
		K   = bs.NumElements
		dir r3.Vec
	)
	if K < 1 {
		err = fmt.Errorf("beam needs at least one element, have %d: %w", K, types.ErrBadInput)
		return
	}
	if v == 2 {
		n = 2
	}
	if n < 2 {
		err = fmt.Errorf("beam needs at least two nodes per element, have %d: %w", n, types.ErrBadInput)
		return
	}
	axis := r3.Sub(bs.End, bs.Start)
	if r3.Norm(axis) == 0 {
		err = fmt.Errorf("beam of zero length: %w", types.ErrBadInput)
		return
	}
	dir = r3.Unit(axis)
	xNodes := LagrangeNodes(n)
	at := func(k int, xi float64) r3.Vec {
		s := (float64(k) + (1+xi)/2) / float64(K)
		return r3.Add(bs.Start, r3.Scale(s, axis))
	}
	elements = make([]*Element, K)
	for k := 0; k < K; k++ {
		var (
			left    = bs.FirstNodeID + k*(n-1)
			nodeIDs = make([]int, n)
			refPos  = make([]float64, 0, 3*n*v)
		)
		nodeIDs[0], nodeIDs[1] = left, left+n-1
		for m := 2; m < n; m++ {
			nodeIDs[m] = left + m - 1
		}
		for m := 0; m < n; m++ {
			x := at(k, xNodes[m])
			refPos = append(refPos, x.X, x.Y, x.Z)
			if v == 2 {
				refPos = append(refPos, dir.X, dir.Y, dir.Z)
			}
		}
		if elements[k], err = NewElement(bs.FirstElementID+k, nodeIDs, v, refPos, bs.Radius); err != nil {
			return nil, err
		}
	}
	for k, e := range elements {
		if k > 0 {
			e.LeftNeighbor = elements[k-1].ID
		}
		if k < K-1 {
			e.RightNeighbor = elements[k+1].ID
		}
	}
	elements[0].BoundaryNode[0] = true
	elements[K-1].BoundaryNode[1] = true
	return
}

// TranslatedDofs returns the reference dofs of e moved rigidly by d; tangent dofs are unchanged
func TranslatedDofs(e *Element, d r3.Vec) (dofs []float64) {
	dofs = append([]float64{}, e.RefPos...)
	for k := 0; k < e.NumNodes; k++ {
		off := e.NodeOffset(k)
		dofs[off] += d.X
		dofs[off+1] += d.Y
		dofs[off+2] += d.Z
	}
	return
}
