package contact

import (
	"fmt"
	"math"

	"github.com/notargets/gobeamcontact/geometry"
	"github.com/notargets/gobeamcontact/penalty"
	"github.com/notargets/gobeamcontact/segments"
	"github.com/notargets/gobeamcontact/types"
	"github.com/notargets/gobeamcontact/utils"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

/*
Pair is the contact interaction of two beam elements, the element with the smaller ID first. It owns
its contact points and the history of the last converged step; all methods of one pair are called
from one goroutine at a time.
*/
type Pair struct {
	cfg    Config
	law    *penalty.Law
	e1, e2 *geometry.Element
	key    types.PairKey
	lm     []int

	store    Store
	inactive []*Variable
	energy   float64

	evaluated          bool
	pos1, pos2         []float64
	pos1Old, pos2Old   []float64
	pos1Last, pos2Last []float64

	normalOld      r3.Vec
	xiOld, etaOld  float64
	hasOld         bool
	firstTimeStep  bool
	firstStep      int // step of the first evaluation, -1 before
	iter           int // Newton iterations since the last step update
	activeLastStep bool
}

// EvalInput is the state a pair is evaluated at
type EvalInput struct {
	Pos1, Pos2             []float64               // current dofs of the first and second element
	Neighbors1, Neighbors2 [2]*geometry.Centerline // left and right neighbors for tangent smoothing
	Dt                     float64                 // time step for the damping velocities
	Step                   int                     // time step index, 0 is the first step
	Registry               *Registry               // history of the other pairs, nil disables the handover
}

func NewPair(cfg Config, e1, e2 *geometry.Element) (p *Pair, err error) {
	var (
		law *penalty.Law
	)
	if law, err = cfg.Validate(); err != nil {
		return
	}
	if e1.ID == e2.ID {
		err = badInput("element %d paired with itself", e1.ID)
		return
	}
	if e1.ID > e2.ID {
		e1, e2 = e2, e1
	}
	if sharesNode(e1, e2) {
		err = badInput("elements %d and %d share a node", e1.ID, e2.ID)
		return
	}
	if cfg.Smoothing == types.SM_CPP && (e1.NumNodalValues != 1 || e2.NumNodalValues != 1) {
		err = badInput("tangent smoothing of elements %d, %d with nodal tangents", e1.ID, e2.ID)
		return
	}
	if cfg.LineContact() {
		var (
			l1, l2 = e1.RefLength, e2.RefLength
			deltaL = utils.GAUSSPOINTSAFETYFAC * l1 / float64(cfg.NumIntervals*utils.NUMGAUSSPOINTS)
		)
		if l2+1.e-8 < l1/float64(cfg.NumIntervals) {
			err = badInput("element %d is shorter than one integration interval of element %d", e2.ID, e1.ID)
			return
		}
		if !cfg.Debug && deltaL > e1.Radius/math.Sin(cfg.ParShift2) {
			err = badInput("not enough Gauss points on element %d for BEAMS_PARSHIFTANGLE2 %g", e1.ID,
				utils.Rad2Deg(cfg.ParShift2))
			return
		}
	}
	p = &Pair{
		cfg:           cfg,
		law:           law,
		e1:            e1,
		e2:            e2,
		key:           types.NewPairKey([2]int{e1.ID, e2.ID}),
		lm:            cfg.dofs(append(append([]int{}, e1.DofGIDs...), e2.DofGIDs...)),
		firstTimeStep: true,
		firstStep:     -1,
	}
	return
}

func (p *Pair) Key() types.PairKey { return p.key }

// Elements returns the elements in pair order, the smaller ID first
func (p *Pair) Elements() (e1, e2 *geometry.Element) { return p.e1, p.e2 }

// Energy is the contact potential of the last evaluation
func (p *Pair) Energy() float64 { return p.energy }

// ActivePoints returns copies of the contact points of the last evaluation
func (p *Pair) ActivePoints() (vs []Variable) {
	for v := range p.store.All() {
		vs = append(vs, *v)
	}
	return
}

func (p *Pair) block() int { return int(p.key) }

func (p *Pair) numDofs() int { return p.e1.NumDofs() + p.e2.NumDofs() }

// evaluation is the result of one pair evaluation before it is committed to the pair
type evaluation struct {
	store    Store
	inactive []*Variable
	f        []float64
	K        *mat.Dense
	energy   float64
}

func (ev *evaluation) empty() bool { return ev.store.Len()+len(ev.inactive) == 0 }

// Evaluate finds the contact points at the input state and assembles their forces and stiffness
func (p *Pair) Evaluate(in EvalInput, K SparseAssembler, R VectorAssembler) (err error) {
	var (
		ev *evaluation
	)
	if ev, err = p.evaluate(in); err != nil {
		return
	}
	p.commit(in, ev)
	if ev.empty() {
		return
	}
	return p.add(ev.f, ev.K, K, R)
}

func (p *Pair) commit(in EvalInput, ev *evaluation) {
	p.evaluated = true
	p.pos1 = append(p.pos1[:0], in.Pos1...)
	p.pos2 = append(p.pos2[:0], in.Pos2...)
	if p.firstStep < 0 {
		p.firstStep = in.Step
	}
	p.store, p.inactive, p.energy = ev.store, ev.inactive, ev.energy
}

func (p *Pair) context(in EvalInput) (ec *evalContext, err error) {
	ec = &evalContext{dt: in.Dt}
	if ec.c1, err = geometry.NewCenterline(p.e1, in.Pos1); err != nil {
		return
	}
	if ec.c2, err = geometry.NewCenterline(p.e2, in.Pos2); err != nil {
		return
	}
	if p.cfg.Smoothing == types.SM_CPP {
		if ec.c1.NodalTangents, err = geometry.SmoothNodalTangents(ec.c1, in.Neighbors1[0], in.Neighbors1[1]); err != nil {
			return
		}
		if ec.c2.NodalTangents, err = geometry.SmoothNodalTangents(ec.c2, in.Neighbors2[0], in.Neighbors2[1]); err != nil {
			return
		}
	}
	if p.pos1Old != nil {
		ec.old1, _ = geometry.NewCenterline(p.e1, p.pos1Old)
		ec.old2, _ = geometry.NewCenterline(p.e2, p.pos2Old)
	}
	if p.law.Params().Damping && !(in.Dt > 0) {
		err = badInput("pair %v: damping needs a positive time step, have %g", p.key, in.Dt)
	}
	return
}

func (p *Pair) evaluate(in EvalInput) (ev *evaluation, err error) {
	var (
		ec     *evalContext
		nOld   r3.Vec
		s1, s2 *segments.Segmentation
		cfg    = p.cfg
	)
	if ec, err = p.context(in); err != nil {
		return
	}
	if nOld, err = p.referenceNormal(ec, in.Registry); err != nil {
		return
	}
	if s1, err = segments.Create(ec.c1, cfg.SegAngle, cfg.maxSegments()); err != nil {
		return nil, fmt.Errorf("pair %v, element %d: %w", p.key, p.e1.ID, err)
	}
	if s2, err = segments.Create(ec.c2, cfg.SegAngle, cfg.maxSegments()); err != nil {
		return nil, fmt.Errorf("pair %v, element %d: %w", p.key, p.e2.ID, err)
	}
	limit := segments.DistanceLimit(s1, s2, p.law.MaxActiveDist(), p.e1.Radius, p.e2.Radius)
	cl := segments.NewClassifier(cfg.PerpShift1, cfg.ParShift2, cfg.SegAngle)
	cl.EndpointPenalty = cfg.EndpointPenalty
	cl.Boundary1, cl.Boundary2 = p.e1.BoundaryNode, p.e2.BoundaryNode
	sets := cl.Classify(segments.ClosePairs(s1, s2, limit), s1.NumSegments(), s2.NumSegments())

	ev = &evaluation{}
	if err = p.largeAngle(ec, s1, s2, sets.LargeAngle, nOld, ev); err != nil {
		return nil, err
	}
	if cfg.LineContact() {
		if err = p.smallAngle(ec, s1, s2, sets.SmallAngle, nOld, ev); err != nil {
			return nil, err
		}
	}
	if cfg.EndpointPenalty {
		if err = p.endpoints(ec, s1, s2, sets.Endpoint, nOld, ev); err != nil {
			return nil, err
		}
	}
	maxPenetration := utils.MAXPENETRATIONFAC * (p.e1.Radius + p.e2.Radius)
	for v := range ev.store.All() {
		if v.Gap < -maxPenetration {
			return nil, fmt.Errorf("pair %v: gap %g at (%g,%g) below %g: %w", p.key, v.Gap, v.Xi, v.Eta,
				-maxPenetration, types.ErrStepTooLarge)
		}
	}
	nd := p.numDofs()
	ev.f = make([]float64, nd)
	ev.K = mat.NewDense(nd, nd, nil)
	addPoint := func(v *Variable) error {
		f, K, err := p.contribution(ec, v)
		if err != nil {
			return err
		}
		for i := range f {
			ev.f[i] += f[i]
		}
		ev.K.Add(ev.K, K)
		return nil
	}
	for v := range ev.store.All() {
		v.Integrated = v.Scale * v.Energy * v.IntFac
		ev.energy += v.Integrated
		if err = addPoint(v); err != nil {
			return nil, err
		}
	}
	for _, v := range ev.inactive {
		if err = addPoint(v); err != nil {
			return nil, err
		}
	}
	return
}

/*
newVariable evaluates the normal, gap, angle, scale factor and the penalty and damping laws at
(xi, eta). Scale factors depend on the kind: point contact ramps with the perpendicular shift
angles, line contact with the parallel ones and endpoint contact is not scaled.
*/
func (p *Pair) newVariable(ec *evalContext, kind types.ContactKind, mode paramMode, xi, eta float64,
	nOld r3.Vec) (v *Variable, err error) {
	var (
		cfg    = p.cfg
		p1, p2 = ec.c1.Eval(xi), ec.c2.Eval(eta)
	)
	v = &Variable{
		Kind: kind, Xi: xi, Eta: eta,
		IntFac: 1, Jacobian: 1,
		mode: mode,
	}
	if v.Normal, v.Gap, v.Sign, v.dist, err = p.normalGap(p1.R, p2.R, nOld); err != nil {
		return nil, err
	}
	if v.Angle, err = geometry.EnclosedAngle(p1.Rxi, p2.Rxi); err != nil {
		return nil, fmt.Errorf("pair %v at (%g,%g): %w", p.key, xi, eta, err)
	}
	v.Cos = geometry.AbsCosine(p1.Rxi, p2.Rxi)
	v.Penalty = cfg.PointPenalty
	switch kind {
	case types.CK_LargeAngle:
		v.Scale, v.DScale = penalty.PerpScale(v.Cos, cfg.PerpShift1, cfg.PerpShift2)
		v.ddScale = penalty.PerpScaleCurvature(v.Cos, cfg.PerpShift1, cfg.PerpShift2)
	case types.CK_SmallAngleGP:
		v.Penalty = cfg.LinePenalty
		v.Scale, v.DScale = penalty.ParScale(v.Cos, cfg.ParShift1, cfg.ParShift2)
		v.ddScale = penalty.ParScaleCurvature(v.Cos, cfg.ParShift1, cfg.ParShift2)
	default:
		v.Scale = 1
	}
	v.Contact = p.law.Active(v.Gap)
	v.Damping = p.law.DampingActive(v.Gap)
	if v.Contact {
		v.Fp, v.Dfp, v.Energy = p.law.Eval(v.Penalty, v.Gap)
	}
	if v.Damping {
		v.D, v.DD = p.law.Damping(v.Gap)
		v.GapRate = ec.gapRate(xi, eta, p1.R, p2.R, v.Normal)
	}
	v.CompleteStf = !(cfg.BasicStiffGap >= 0 && v.Gap < -cfg.BasicStiffGap)
	return
}

// UpdateIter marks the end of a Newton iteration
func (p *Pair) UpdateIter() {
	p.iter++
	p.pos1Last = append(p.pos1Last[:0], p.pos1...)
	p.pos2Last = append(p.pos2Last[:0], p.pos2...)
}

// LastIterIncrement is the largest dof change of the last Newton iteration
func (p *Pair) LastIterIncrement() (inc float64) {
	if len(p.pos1Last) != len(p.pos1) {
		return
	}
	for i := range p.pos1 {
		inc = math.Max(inc, math.Abs(p.pos1[i]-p.pos1Last[i]))
	}
	for i := range p.pos2 {
		inc = math.Max(inc, math.Abs(p.pos2[i]-p.pos2Last[i]))
	}
	return
}
