package settlement

import (
	"github.com/google/uuid"
)

// Allocation is the distribution of the worker-pay pool across the
// assigned crew.
type Allocation struct {
	DefaultPerWorker int64
	PerWorker        map[uuid.UUID]int64
	TotalPayout      int64
}

// allocate splits the adjusted worker-pay pool evenly across the assigned
// workers, letting explicit per-worker overrides win. An empty crew is a
// legal "not yet staffed" state and yields a zero allocation, never a
// division by zero. The total is the sum of the amounts actually assigned,
// so overrides shift it away from the pool.
func allocate(pool int64, workerIDs []uuid.UUID, overrides map[uuid.UUID]int64) Allocation {
	a := Allocation{PerWorker: make(map[uuid.UUID]int64, len(workerIDs))}
	if len(workerIDs) == 0 {
		return a
	}
	a.DefaultPerWorker = pool / int64(len(workerIDs))
	for _, id := range workerIDs {
		amount := a.DefaultPerWorker
		if override, ok := overrides[id]; ok {
			amount = override
		}
		a.PerWorker[id] = amount
		a.TotalPayout += amount
	}
	return a
}

// allocateFlat handles the manual-override path: every assigned worker
// receives the operator's flat per-head figure and individual entries are
// not distinguished.
func allocateFlat(perWorker int64, workerIDs []uuid.UUID) Allocation {
	a := Allocation{
		DefaultPerWorker: perWorker,
		PerWorker:        make(map[uuid.UUID]int64, len(workerIDs)),
	}
	for _, id := range workerIDs {
		a.PerWorker[id] = perWorker
	}
	a.TotalPayout = perWorker * int64(len(workerIDs))
	return a
}
