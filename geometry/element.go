package geometry

import (
	"fmt"
	"math"

	"github.com/notargets/gobeamcontact/types"
	"github.com/notargets/gobeamcontact/utils"
	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/spatial/r3"
)

// Element is a beam element handle as seen by the contact kernel. Dofs are ordered basis function by
// basis function, three components each; for Hermite elements the basis functions are ordered
// position 1, tangent 1, position 2, tangent 2.
type Element struct {
	ID             int
	NodeIDs        []int
	NumNodes       int // n
	NumNodalValues int // v: 1 = positions only (Lagrange), 2 = positions and tangents (Hermite)
	RefLength      float64
	Radius         float64
	RefPos         []float64
	DofGIDs        []int
	LeftNeighbor   int // element ID across the xi=-1 end, -1 if none
	RightNeighbor  int // element ID across the xi=+1 end, -1 if none
	BoundaryNode   [2]bool
}

func NewElement(id int, nodeIDs []int, numNodalValues int, refPos []float64, radius float64) (e *Element, err error) {
	var (
		n = len(nodeIDs)
	)
	switch {
	case id < 0:
		err = fmt.Errorf("element ID %d is negative: %w", id, types.ErrBadInput)
	case numNodalValues == 1 && (n < 2 || n > 5):
		err = fmt.Errorf("element %d: Lagrange elements have 2 to 5 nodes, have %d: %w", id, n, types.ErrBadInput)
	case numNodalValues == 2 && n != 2:
		err = fmt.Errorf("element %d: Hermite elements have 2 nodes, have %d: %w", id, n, types.ErrBadInput)
	case numNodalValues != 1 && numNodalValues != 2:
		err = fmt.Errorf("element %d: %d nodal values: %w", id, numNodalValues, types.ErrBadInput)
	case len(refPos) != 3*n*numNodalValues:
		err = fmt.Errorf("element %d: %d reference dofs, want %d: %w", id, len(refPos), 3*n*numNodalValues,
			types.ErrBadInput)
	case !(radius > 0):
		err = fmt.Errorf("element %d: radius %g: %w", id, radius, types.ErrBadInput)
	}
	if err != nil {
		return
	}
	e = &Element{
		ID:             id,
		NodeIDs:        append([]int{}, nodeIDs...),
		NumNodes:       n,
		NumNodalValues: numNodalValues,
		Radius:         radius,
		RefPos:         append([]float64{}, refPos...),
		LeftNeighbor:   -1,
		RightNeighbor:  -1,
	}
	e.DofGIDs = make([]int, e.NumDofs())
	for i := 0; i < e.NumBasis(); i++ {
		node, slot := i/numNodalValues, i%numNodalValues
		for j := 0; j < 3; j++ {
			e.DofGIDs[3*i+j] = 3*(nodeIDs[node]*numNodalValues+slot) + j
		}
	}
	if e.RefLength, err = e.computeRefLength(); err != nil {
		return nil, err
	}
	return
}

func (e *Element) NumBasis() int { return e.NumNodes * e.NumNodalValues }

func (e *Element) NumDofs() int { return 3 * e.NumNodes * e.NumNodalValues }

// NodeOffset returns the dof offset of the position of local node k
func (e *Element) NodeOffset(k int) int { return 3 * e.NumNodalValues * k }

// Jacobi is the constant arc length factor ds/dxi of a straight element in the reference configuration
func (e *Element) Jacobi() float64 { return e.RefLength / 2 }

// JacobiAt is the reference arc length factor ds/dxi at xi
func (e *Element) JacobiAt(xi float64) float64 {
	_, Nxi, _ := e.Basis(xi)
	return r3.Norm(Nxi.Apply(e.RefPos))
}

// JacobiSlope is d JacobiAt / d xi
func (e *Element) JacobiSlope(xi float64) float64 {
	_, Nxi, Nxixi := e.Basis(xi)
	t := Nxi.Apply(e.RefPos)
	return r3.Dot(t, Nxixi.Apply(e.RefPos)) / r3.Norm(t)
}

func (e *Element) Basis(xi float64) (N, Nxi, Nxixi Basis) {
	if e.NumNodalValues == 2 {
		return hermiteBasis(xi, e.RefLength)
	}
	return lagrangeBasis(xi, e.NumNodes)
}

// BasisThird is the third derivative of the basis functions
func (e *Element) BasisThird(xi float64) Basis {
	if e.NumNodalValues == 2 {
		return hermiteThird(e.RefLength)
	}
	return lagrangeThird(xi, e.NumNodes)
}

func (e *Element) computeRefLength() (L float64, err error) {
	var (
		nq      = 10
		xq      = make([]float64, nq)
		wq      = make([]float64, nq)
		arcLen  func() float64
		x0, x1  = e.node(e.RefPos, 0), e.node(e.RefPos, 1)
		maxIter = 100
	)
	quad.Legendre{}.FixedLocations(xq, wq, -1, 1)
	arcLen = func() (s float64) {
		for i := range xq {
			s += wq[i] * e.JacobiAt(xq[i])
		}
		return
	}
	L = r3.Norm(r3.Sub(x1, x0))
	if L < utils.NODETOL {
		err = fmt.Errorf("element %d: coincident end nodes: %w", e.ID, types.ErrBadInput)
		return
	}
	if e.NumNodalValues == 1 {
		L = arcLen()
		return
	}
	// The Hermite basis is scaled by the length it defines
	for iter := 0; iter < maxIter; iter++ {
		e.RefLength = L
		Lnew := arcLen()
		if math.Abs(Lnew-L) < 1.e-14*L {
			return Lnew, nil
		}
		L = Lnew
	}
	err = fmt.Errorf("element %d: reference length iteration did not converge: %w", e.ID, types.ErrBadInput)
	return
}

func (e *Element) node(dofs []float64, k int) r3.Vec {
	off := e.NodeOffset(k)
	return r3.Vec{X: dofs[off], Y: dofs[off+1], Z: dofs[off+2]}
}
