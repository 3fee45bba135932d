package contact

import (
	"sync"

	"github.com/notargets/gobeamcontact/types"
	"gonum.org/v1/gonum/spatial/r3"
)

// Snapshot is the converged history of a pair as seen by its neighbors
type Snapshot struct {
	NormalOld     r3.Vec
	XiOld, EtaOld float64
	FirstTimeStep bool
}

// Registry holds the snapshots of all pairs, written at step updates and read during evaluation
type Registry struct {
	mu    sync.RWMutex
	snaps map[types.PairKey]Snapshot
}

func NewRegistry() *Registry {
	return &Registry{snaps: make(map[types.PairKey]Snapshot)}
}

func (r *Registry) Put(key types.PairKey, s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps[key] = s
}

// Get looks up the pair of two elements in either order
func (r *Registry) Get(ids [2]int) (s Snapshot, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok = r.snaps[types.NewPairKey(ids)]
	return
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.snaps)
}
