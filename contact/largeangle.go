package contact

import (
	"errors"
	"fmt"
	"math"

	"github.com/notargets/gobeamcontact/projection"
	"github.com/notargets/gobeamcontact/segments"
	"github.com/notargets/gobeamcontact/types"
	"gonum.org/v1/gonum/spatial/r3"
)

// number of sample points per segment when a closest point projection does not converge
const unconvergedSamples = 11

func (p *Pair) settings() projection.Settings {
	return projection.Settings{
		MaxIter:  p.cfg.MaxIter,
		Smoothed: p.cfg.Smoothing == types.SM_CPP,
	}
}

func segmentBox(s1, s2 *segments.Segmentation, cd segments.Candidate) projection.Box {
	return projection.Box{
		Left1: s1.Left(cd.Seg1), L1: s1.Length(),
		Left2: s2.Left(cd.Seg2), L2: s2.Length(),
		Seed1: cd.Eta1Seed, Seed2: cd.Eta2Seed,
		SeedSet: cd.EtaSet,
	}
}

/*
largeAngle finds the point contacts of the large angle segment pairs. A colinear pair ends the
search, points on an element boundary are left to the neighbor pair.
*/
func (p *Pair) largeAngle(ec *evalContext, s1, s2 *segments.Segmentation, cands []segments.Candidate,
	nOld r3.Vec, ev *evaluation) (err error) {
	var (
		cfg = p.cfg
	)
	for _, cd := range cands {
		var (
			box = segmentBox(s1, s2, cd)
			res projection.CPPResult
			v   *Variable
		)
		res, err = projection.ClosestPoint(ec.c1, ec.c2, box, p.settings())
		switch {
		case errors.Is(err, types.ErrUnconvergedCPP):
			if v, err = p.unconvergedSegment(ec, box, nOld); err != nil {
				return
			}
			if v != nil {
				ev.store.Add(v)
			}
			continue
		case err != nil:
			return fmt.Errorf("pair %v, segments %d/%d: %w", p.key, cd.Seg1, cd.Seg2, err)
		case res.Colinear:
			cfg.debugf("pair %v: colinear segments %d/%d, no point contact", p.key, cd.Seg1, cd.Seg2)
			return nil
		case res.Ambiguous:
			cfg.debugf("pair %v: contact point (%g,%g) on an element boundary", p.key, res.Xi, res.Eta)
			continue
		case !res.Found:
			continue
		}
		if res.StartIndex > 0 {
			cfg.debugf("pair %v: closest point (%g,%g) from start %d", p.key, res.Xi, res.Eta, res.StartIndex)
		}
		if v, err = p.newVariable(ec, types.CK_LargeAngle, pmCPP, res.Xi, res.Eta, nOld); err != nil {
			return
		}
		if v.Angle < cfg.PerpShift1 {
			continue
		}
		switch {
		case v.Contact || v.Damping:
			ev.store.Add(v)
		case cfg.InactiveStiff && p.iter == 0 && p.activeLastStep:
			// stiffness only, keeps the first iterate of a step from losing the contact
			v.Fp, v.Dfp, v.Energy = 0, -v.Penalty, 0
			ev.inactive = append(ev.inactive, v)
		}
	}
	return
}

/*
unconvergedSegment samples the segment pair when the closest point projection fails. If the smallest
sampled gap may be active the step fails, or with the approximation enabled the sampled minimum is
used as a point contact with xi fixed.
*/
func (p *Pair) unconvergedSegment(ec *evalContext, box projection.Box, nOld r3.Vec) (v *Variable, err error) {
	var (
		cfg       = p.cfg
		gMin      = math.Inf(1)
		xiM, etaM float64
		angle     float64
		found     bool
	)
	for i := 0; i < unconvergedSamples; i++ {
		xi := box.Left1 + box.L1*float64(i)/float64(unconvergedSamples-1)
		res, perr := projection.PointToLine(ec.c1, ec.c2, xi, box.Left2, box.L2, false, p.settings())
		switch {
		case errors.Is(perr, types.ErrUnconvergedPTL):
			continue
		case perr != nil:
			return nil, perr
		case !res.Found:
			continue
		}
		if g := res.Dist - p.e1.Radius - p.e2.Radius; g < gMin {
			gMin, xiM, etaM, angle, found = g, xi, res.Eta, res.Angle, true
		}
	}
	if !found {
		return
	}
	estimate := gMin - 0.1*p.e2.Radius
	if !(p.law.Active(estimate) || p.law.DampingActive(estimate)) || angle < cfg.PerpShift1 {
		return
	}
	if !cfg.CPPApprox {
		err = fmt.Errorf("pair %v: probably active segment pair at (%g,%g), gap %g: %w", p.key, xiM, etaM,
			gMin, types.ErrUnconvergedCPP)
		return
	}
	cfg.logf("warning: pair %v: closest point not converged, using sampled point (%g,%g) gap %g",
		p.key, xiM, etaM, gMin)
	if v, err = p.newVariable(ec, types.CK_LargeAngle, pmEtaFree, xiM, etaM, nOld); err != nil {
		return nil, err
	}
	if !(v.Contact || v.Damping) {
		v = nil
	}
	return
}
