package contact

import (
	"fmt"

	"github.com/notargets/gobeamcontact/types"
	"gonum.org/v1/gonum/spatial/r3"
)

// RestartData is the history of a pair needed to continue a simulation
type RestartData struct {
	ID1           int        `json:"id1"`
	ID2           int        `json:"id2"`
	NormalOld     [3]float64 `json:"normal_old"`
	XiOld         float64    `json:"xi_old"`
	EtaOld        float64    `json:"eta_old"`
	HasOld        bool       `json:"has_old"`
	Ele1PosOld    []float64  `json:"ele1_pos_old"`
	Ele2PosOld    []float64  `json:"ele2_pos_old"`
	FirstTimeStep bool       `json:"first_time_step"`
	FirstStep     int        `json:"first_step"`
}

func (p *Pair) Restart() RestartData {
	return RestartData{
		ID1:           p.e1.ID,
		ID2:           p.e2.ID,
		NormalOld:     [3]float64{p.normalOld.X, p.normalOld.Y, p.normalOld.Z},
		XiOld:         p.xiOld,
		EtaOld:        p.etaOld,
		HasOld:        p.hasOld,
		Ele1PosOld:    append([]float64{}, p.pos1Old...),
		Ele2PosOld:    append([]float64{}, p.pos2Old...),
		FirstTimeStep: p.firstTimeStep,
		FirstStep:     p.firstStep,
	}
}

func (p *Pair) ApplyRestart(rd RestartData) (err error) {
	switch {
	case types.NewPairKey([2]int{rd.ID1, rd.ID2}) != p.key:
		return badInput("restart data of pair (%d,%d) applied to pair %v", rd.ID1, rd.ID2, p.key)
	case rd.Ele1PosOld != nil && len(rd.Ele1PosOld) != p.e1.NumDofs():
		return badInput("restart data of pair %v: %d dofs for element %d", p.key, len(rd.Ele1PosOld), p.e1.ID)
	case rd.Ele2PosOld != nil && len(rd.Ele2PosOld) != p.e2.NumDofs():
		return badInput("restart data of pair %v: %d dofs for element %d", p.key, len(rd.Ele2PosOld), p.e2.ID)
	case (rd.Ele1PosOld == nil) != (rd.Ele2PosOld == nil):
		return badInput("restart data of pair %v: old positions of one element only", p.key)
	}
	p.normalOld = r3.Vec{X: rd.NormalOld[0], Y: rd.NormalOld[1], Z: rd.NormalOld[2]}
	p.xiOld, p.etaOld, p.hasOld = rd.XiOld, rd.EtaOld, rd.HasOld
	p.pos1Old = append([]float64(nil), rd.Ele1PosOld...)
	p.pos2Old = append([]float64(nil), rd.Ele2PosOld...)
	if rd.Ele1PosOld == nil {
		p.pos1Old, p.pos2Old = nil, nil
	}
	p.firstTimeStep, p.firstStep = rd.FirstTimeStep, rd.FirstStep
	return
}

// Restart collects the restart data of all pairs in key order
func (m *Manager) Restart() (rds []RestartData) {
	for _, key := range m.keys {
		rds = append(rds, m.pairs[key].Restart())
	}
	return
}

// ApplyRestart recreates the pairs of the restart data and sets their history
func (m *Manager) ApplyRestart(step int, rds []RestartData) (err error) {
	for _, rd := range rds {
		key := types.NewPairKey([2]int{rd.ID1, rd.ID2})
		p, ok := m.pairs[key]
		if !ok {
			e1, ok1 := m.elements[rd.ID1]
			e2, ok2 := m.elements[rd.ID2]
			if !ok1 || !ok2 {
				return badInput("restart data of pair %v: unknown element", key)
			}
			if p, err = NewPair(m.cfg, e1, e2); err != nil {
				return
			}
			m.pairs[key] = p
			m.keys = append(m.keys, key)
		}
		if err = p.ApplyRestart(rd); err != nil {
			return fmt.Errorf("restart: %w", err)
		}
		if p.hasOld || p.pos1Old != nil {
			m.reg.Put(key, p.snapshot())
		}
	}
	sortKeys(m.keys)
	m.step = step
	return
}
