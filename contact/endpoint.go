package contact

import (
	"errors"
	"fmt"

	"github.com/notargets/gobeamcontact/projection"
	"github.com/notargets/gobeamcontact/segments"
	"github.com/notargets/gobeamcontact/types"
	"gonum.org/v1/gonum/spatial/r3"
)

/*
project runs a point to line projection from element 1 onto element 2, or the reverse when
fromSecond is set. An unconverged projection is logged and reported as not found.
*/
func (p *Pair) project(ec *evalContext, fromSecond bool, x, left, l float64, orthogonal bool) (param float64,
	found bool, err error) {
	given, searched := ec.c1, ec.c2
	if fromSecond {
		given, searched = ec.c2, ec.c1
	}
	res, err := projection.PointToLine(given, searched, x, left, l, orthogonal, p.settings())
	switch {
	case errors.Is(err, types.ErrUnconvergedPTL):
		p.cfg.logf("warning: pair %v: %v", p.key, err)
		return 0, false, nil
	case err != nil:
		return 0, false, fmt.Errorf("pair %v: %w", p.key, err)
	}
	return res.Eta, res.Found, nil
}

// beamEnds lists the physical beam ends of an element that lie in segment i
func beamEnds(boundary [2]bool, i, n int) (ends []float64) {
	if i == 0 && boundary[0] {
		ends = append(ends, -1)
	}
	if i == n-1 && boundary[1] {
		ends = append(ends, 1)
	}
	return
}

/*
endpoints adds the contact points with a parameter fixed at a physical beam end: an end of element 1
projected onto element 2, an end of element 2 projected onto element 1, and end to end.
*/
func (p *Pair) endpoints(ec *evalContext, s1, s2 *segments.Segmentation, cands []segments.Candidate,
	nOld r3.Vec, ev *evaluation) (err error) {
	var (
		n1, n2 = s1.NumSegments(), s2.NumSegments()
	)
	add := func(mode paramMode, xi, eta float64) error {
		v, err := p.newVariable(ec, types.CK_Endpoint, mode, xi, eta, nOld)
		if err != nil {
			return err
		}
		if v.Contact || v.Damping {
			ev.store.Add(v)
		}
		return nil
	}
	for _, cd := range cands {
		var (
			ends1 = beamEnds(p.e1.BoundaryNode, cd.Seg1, n1)
			ends2 = beamEnds(p.e2.BoundaryNode, cd.Seg2, n2)
		)
		for _, xi := range ends1 {
			eta, found, err := p.project(ec, false, xi, s2.Left(cd.Seg2), s2.Length(), false)
			if err != nil {
				return err
			}
			if found {
				if err = add(pmEtaFree, xi, eta); err != nil {
					return err
				}
			}
		}
		for _, eta := range ends2 {
			xi, found, err := p.project(ec, true, eta, s1.Left(cd.Seg1), s1.Length(), false)
			if err != nil {
				return err
			}
			if found {
				if err = add(pmXiFree, xi, eta); err != nil {
					return err
				}
			}
		}
		for _, xi := range ends1 {
			for _, eta := range ends2 {
				if err = add(pmFixed, xi, eta); err != nil {
					return
				}
			}
		}
	}
	return
}
