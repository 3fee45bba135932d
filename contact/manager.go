package contact

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/notargets/gobeamcontact/geometry"
	"github.com/notargets/gobeamcontact/penalty"
	"github.com/notargets/gobeamcontact/types"
	"github.com/notargets/gobeamcontact/utils"
)

/*
Manager owns the pairs of a set of beam elements. It creates a pair when two elements without a
shared node come close, evaluates the pairs in parallel and assembles them in key order so the
global result does not depend on the number of threads.
*/
type Manager struct {
	cfg      Config
	law      *penalty.Law
	elements map[int]*geometry.Element
	ids      []int
	pairs    map[types.PairKey]*Pair
	keys     []types.PairKey
	reg      *Registry
	threads  int
	step     int
}

func NewManager(cfg Config, elements []*geometry.Element, threads int) (m *Manager, err error) {
	var (
		law *penalty.Law
	)
	if law, err = cfg.Validate(); err != nil {
		return
	}
	m = &Manager{
		cfg:      cfg,
		law:      law,
		elements: make(map[int]*geometry.Element, len(elements)),
		pairs:    make(map[types.PairKey]*Pair),
		reg:      NewRegistry(),
		threads:  max(1, threads),
	}
	for _, e := range elements {
		if _, dup := m.elements[e.ID]; dup {
			return nil, badInput("element %d given twice", e.ID)
		}
		m.elements[e.ID] = e
		m.ids = append(m.ids, e.ID)
	}
	sort.Ints(m.ids)
	return
}

func (m *Manager) Registry() *Registry { return m.reg }

func (m *Manager) Step() int { return m.step }

func (m *Manager) NumPairs() int { return len(m.keys) }

func (m *Manager) Pair(key types.PairKey) *Pair { return m.pairs[key] }

// searchDistance is the centerline distance at which a pair is created
func (m *Manager) searchDistance(e1, e2 *geometry.Element) float64 {
	return e1.Radius + e2.Radius + m.law.MaxActiveDist() + 4*m.cfg.SearchBoxInc
}

func sortKeys(keys []types.PairKey) {
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
}

func sharesNode(e1, e2 *geometry.Element) bool {
	for _, a := range e1.NodeIDs {
		for _, b := range e2.NodeIDs {
			if a == b {
				return true
			}
		}
	}
	return false
}

func (m *Manager) centerlines(pos map[int][]float64) (cls map[int]*geometry.Centerline, err error) {
	cls = make(map[int]*geometry.Centerline, len(m.ids))
	for _, id := range m.ids {
		d, ok := pos[id]
		if !ok {
			return nil, badInput("no dofs for element %d", id)
		}
		if cls[id], err = geometry.NewCenterline(m.elements[id], d); err != nil {
			return
		}
	}
	return
}

// search creates the pairs of close elements not paired yet
func (m *Manager) search(cls map[int]*geometry.Centerline) (err error) {
	var (
		added bool
	)
	for i, id1 := range m.ids {
		for _, id2 := range m.ids[i+1:] {
			key := types.NewPairKey([2]int{id1, id2})
			e1, e2 := m.elements[id1], m.elements[id2]
			if _, ok := m.pairs[key]; ok || sharesNode(e1, e2) {
				continue
			}
			var dist float64
			if dist, err = centerlineDistance(cls[id1], cls[id2], m.cfg.SegAngle, m.cfg.maxSegments()); err != nil {
				return
			}
			if dist > m.searchDistance(e1, e2) {
				continue
			}
			var p *Pair
			if p, err = NewPair(m.cfg, e1, e2); err != nil {
				return
			}
			m.pairs[key] = p
			m.keys = append(m.keys, key)
			added = true
		}
	}
	if added {
		sortKeys(m.keys)
	}
	return
}

func (m *Manager) neighbors(cls map[int]*geometry.Centerline, e *geometry.Element) (nb [2]*geometry.Centerline) {
	for i, id := range [2]int{e.LeftNeighbor, e.RightNeighbor} {
		if id >= 0 {
			nb[i] = cls[id]
		}
	}
	return
}

func (m *Manager) input(cls map[int]*geometry.Centerline, p *Pair, dt float64) EvalInput {
	return EvalInput{
		Pos1:       cls[p.e1.ID].Dofs,
		Pos2:       cls[p.e2.ID].Dofs,
		Neighbors1: m.neighbors(cls, p.e1),
		Neighbors2: m.neighbors(cls, p.e2),
		Dt:         dt,
		Step:       m.step,
		Registry:   m.reg,
	}
}

// forEachPair runs f on all pairs, split over the threads by contiguous key ranges
func (m *Manager) forEachPair(f func(i int, p *Pair) error) error {
	var (
		pm   = utils.NewPartitionMap(m.threads, len(m.keys))
		errs = make([]error, len(m.keys))
		wg   = sync.WaitGroup{}
	)
	for _, bucket := range pm.Buckets() {
		wg.Add(1)
		go func(kMin, kMax int) {
			defer wg.Done()
			for i := kMin; i < kMax; i++ {
				errs[i] = f(i, m.pairs[m.keys[i]])
			}
		}(bucket[0], bucket[1])
	}
	wg.Wait()
	return errors.Join(errs...)
}

/*
Evaluate searches new pairs at the given element dofs, evaluates all pairs and assembles their
contributions. Nothing is committed to the pairs when one of them fails.
*/
func (m *Manager) Evaluate(pos map[int][]float64, dt float64, K SparseAssembler, R VectorAssembler) (err error) {
	var (
		cls map[int]*geometry.Centerline
	)
	if cls, err = m.centerlines(pos); err != nil {
		return
	}
	if err = m.search(cls); err != nil {
		return
	}
	var (
		ins = make([]EvalInput, len(m.keys))
		evs = make([]*evaluation, len(m.keys))
	)
	for i, key := range m.keys {
		ins[i] = m.input(cls, m.pairs[key], dt)
	}
	if err = m.forEachPair(func(i int, p *Pair) (err error) {
		evs[i], err = p.evaluate(ins[i])
		return
	}); err != nil {
		return
	}
	for i, key := range m.keys {
		p := m.pairs[key]
		p.commit(ins[i], evs[i])
		if evs[i].empty() {
			continue
		}
		if err = p.add(evs[i].f, evs[i].K, K, R); err != nil {
			return fmt.Errorf("pair %v: %w", key, err)
		}
	}
	return
}

func (m *Manager) UpdateIter() {
	for _, key := range m.keys {
		m.pairs[key].UpdateIter()
	}
}

// UpdateStep checks all pairs and, when none rejects the step, commits their history
func (m *Manager) UpdateStep() (err error) {
	if err = m.forEachPair(func(_ int, p *Pair) error {
		return p.checkStep()
	}); err != nil {
		return
	}
	for _, key := range m.keys {
		m.pairs[key].commitStep(m.reg)
	}
	m.step++
	return
}

func (m *Manager) TotalEnergy() (e float64) {
	for _, key := range m.keys {
		e += m.pairs[key].Energy()
	}
	return
}

// ActivePoint is a contact point with the pair it belongs to
type ActivePoint struct {
	Pair types.PairKey
	Variable
}

func (m *Manager) ActivePoints() (aps []ActivePoint) {
	for _, key := range m.keys {
		for _, v := range m.pairs[key].ActivePoints() {
			aps = append(aps, ActivePoint{Pair: key, Variable: v})
		}
	}
	return
}

// MinGap is the smallest gap over all contact points, +Inf without contact
func (m *Manager) MinGap() (g float64) {
	g = math.Inf(1)
	for _, ap := range m.ActivePoints() {
		g = math.Min(g, ap.Gap)
	}
	return
}

// LastIterIncrement is the largest dof change of the last Newton iteration over all pairs
func (m *Manager) LastIterIncrement() (inc float64) {
	for _, key := range m.keys {
		inc = math.Max(inc, m.pairs[key].LastIterIncrement())
	}
	return
}

// Inputs returns the evaluation input of every pair at the given element dofs, for the tangent checks
func (m *Manager) Inputs(pos map[int][]float64, dt float64) (ins map[types.PairKey]EvalInput, err error) {
	var (
		cls map[int]*geometry.Centerline
	)
	if cls, err = m.centerlines(pos); err != nil {
		return
	}
	ins = make(map[types.PairKey]EvalInput, len(m.keys))
	for _, key := range m.keys {
		ins[key] = m.input(cls, m.pairs[key], dt)
	}
	return
}

// Keys lists the pair keys in ascending order
func (m *Manager) Keys() []types.PairKey { return append([]types.PairKey{}, m.keys...) }
