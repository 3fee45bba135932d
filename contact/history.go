package contact

import (
	"fmt"
	"math"

	"github.com/notargets/gobeamcontact/geometry"
	"github.com/notargets/gobeamcontact/projection"
	"github.com/notargets/gobeamcontact/segments"
	"github.com/notargets/gobeamcontact/types"
	"github.com/notargets/gobeamcontact/utils"
	"gonum.org/v1/gonum/spatial/r3"
)

const handoverTol = 1.e-8

// neighborID is the element across the end that x lies beyond, the element itself when x is inside
func neighborID(e *geometry.Element, x float64) int {
	switch {
	case x < -1-handoverTol:
		return e.LeftNeighbor
	case x > 1+handoverTol:
		return e.RightNeighbor
	}
	return e.ID
}

func clampUnit(x float64) float64 { return math.Max(-1, math.Min(x, 1)) }

/*
referenceNormal is the old normal the gap sign is taken from. When the last closest point left the
elements it is taken from the neighbor pair that now holds the contact, as long as the beams are
close enough for the sign to matter.
*/
func (p *Pair) referenceNormal(ec *evalContext, reg *Registry) (nOld r3.Vec, err error) {
	nOld = p.normalOld
	if !p.hasOld || reg == nil {
		return
	}
	var (
		ax, ae = math.Abs(p.xiOld), math.Abs(p.etaOld)
	)
	if ax <= 1+handoverTol && ae <= 1+handoverTol {
		return
	}
	if ax >= utils.NEIGHBORNORMALTOL || ae >= utils.NEIGHBORNORMALTOL {
		return
	}
	id1, id2 := neighborID(p.e1, p.xiOld), neighborID(p.e2, p.etaOld)
	if id1 < 0 || id2 < 0 || id1 == id2 {
		return
	}
	dist := r3.Norm(r3.Sub(ec.c1.Position(clampUnit(p.xiOld)), ec.c2.Position(clampUnit(p.etaOld))))
	if dist >= p.closeDistance() {
		return
	}
	snap, ok := reg.Get([2]int{id1, id2})
	if !ok || r3.Norm(snap.NormalOld) < utils.NORMALTOL {
		err = fmt.Errorf("pair %v: old contact point (%g,%g) moved to pair (%d,%d): %w", p.key, p.xiOld,
			p.etaOld, id1, id2, types.ErrNeighborHandoverMissing)
		return
	}
	nOld = snap.NormalOld
	return
}

// closeDistance is the centerline distance below which a handed over normal is required
func (p *Pair) closeDistance() float64 {
	return p.e1.Radius + p.e2.Radius + math.Max(p.law.MaxActiveDist(), 2*utils.MAXDELTADFAC*p.cfg.SearchBoxInc)
}

// centerlineDistance is the smallest distance of the segment chords of two centerlines
func centerlineDistance(c1, c2 *geometry.Centerline, segAngle float64, maxSeg int) (dist float64, err error) {
	var (
		s1, s2 *segments.Segmentation
	)
	if s1, err = segments.Create(c1, segAngle, maxSeg); err != nil {
		return
	}
	if s2, err = segments.Create(c2, segAngle, maxSeg); err != nil {
		return
	}
	dist = math.Inf(1)
	for _, a := range s1.All() {
		for _, b := range s2.All() {
			dist = math.Min(dist, segments.SegmentDistance(a.A, a.B, b.A, b.B))
		}
	}
	return
}

// checkStep rejects steps whose nodes moved more than the search box allows
func (p *Pair) checkStep() (err error) {
	var (
		cfg    = p.cfg
		limit  = utils.MAXDELTADFAC * cfg.SearchBoxInc
		c1, c2 *geometry.Centerline
	)
	if !p.evaluated || !(cfg.SearchBoxInc > 0) {
		return
	}
	if c1, err = geometry.NewCenterline(p.e1, p.pos1); err != nil {
		return
	}
	if c2, err = geometry.NewCenterline(p.e2, p.pos2); err != nil {
		return
	}
	if p.pos1Old != nil {
		old1, _ := geometry.NewCenterline(p.e1, p.pos1Old)
		old2, _ := geometry.NewCenterline(p.e2, p.pos2Old)
		for _, c := range [][2]*geometry.Centerline{{c1, old1}, {c2, old2}} {
			for k := 0; k < c[0].Ele.NumNodes; k++ {
				if d := r3.Norm(r3.Sub(c[0].Node(k), c[1].Node(k))); d > limit {
					return fmt.Errorf("pair %v: node %d of element %d moved %g, limit %g: %w", p.key, k,
						c[0].Ele.ID, d, limit, types.ErrStepTooLarge)
				}
			}
		}
	}
	if p.firstTimeStep && p.firstStep > 0 {
		var dist float64
		if dist, err = centerlineDistance(c1, c2, cfg.SegAngle, cfg.maxSegments()); err != nil {
			return
		}
		if dist <= 2*limit {
			return fmt.Errorf("pair %v: centerline distance %g in the first step of the pair at step %d: %w",
				p.key, dist, p.firstStep, types.ErrFirstStepActivation)
		}
	}
	return
}

/*
commitStep stores the converged state as history. The old normal and parameters come from the
closest contact point, without contact points from an unbounded closest point projection.
*/
func (p *Pair) commitStep(reg *Registry) {
	if !p.evaluated {
		return
	}
	if v := p.store.closest(); v != nil {
		p.normalOld, p.xiOld, p.etaOld, p.hasOld = v.Normal, v.Xi, v.Eta, true
	} else if c1, c2, ok := p.currentCenterlines(); ok {
		xi, eta, found, err := projection.Unbounded(c1, c2, p.settings())
		if err == nil && found {
			n, _, _, _, nerr := p.normalGap(c1.Position(xi), c2.Position(eta), p.normalOld)
			if nerr == nil {
				p.normalOld, p.xiOld, p.etaOld, p.hasOld = n, xi, eta, true
			}
		}
	}
	p.pos1Old = append(p.pos1Old[:0], p.pos1...)
	p.pos2Old = append(p.pos2Old[:0], p.pos2...)
	p.firstTimeStep = false
	p.activeLastStep = p.store.Len() > 0
	p.iter = 0
	if reg != nil {
		reg.Put(p.key, p.snapshot())
	}
}

func (p *Pair) currentCenterlines() (c1, c2 *geometry.Centerline, ok bool) {
	var err error
	if c1, err = geometry.NewCenterline(p.e1, p.pos1); err != nil {
		return
	}
	if c2, err = geometry.NewCenterline(p.e2, p.pos2); err != nil {
		return
	}
	return c1, c2, true
}

func (p *Pair) snapshot() Snapshot {
	return Snapshot{
		NormalOld:     p.normalOld,
		XiOld:         p.xiOld,
		EtaOld:        p.etaOld,
		FirstTimeStep: p.firstTimeStep,
	}
}

// UpdateStep checks the converged step and makes it the history of the next one
func (p *Pair) UpdateStep(reg *Registry) (err error) {
	if err = p.checkStep(); err != nil {
		return
	}
	p.commitStep(reg)
	return
}
