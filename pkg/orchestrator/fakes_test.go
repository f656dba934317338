package orchestrator_test

import (
	"context"
	"sync"

	"github.com/papercomputeco/folio/pkg/storage"
	"github.com/papercomputeco/folio/pkg/worker"
)

// recordingPool records enqueued jobs without running them.
type recordingPool struct {
	mu   sync.Mutex
	jobs []worker.Job
	full bool
}

func (p *recordingPool) Enqueue(job worker.Job) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.full {
		return false
	}
	p.jobs = append(p.jobs, job)
	return true
}

func (p *recordingPool) Jobs() []worker.Job {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]worker.Job(nil), p.jobs...)
}

// scriptedNeighbors wraps a NeighborStore. Ids in missing fail with a
// NotFoundError and ids in slow block until the context ends.
type scriptedNeighbors struct {
	storage.NeighborStore
	missing map[int64]bool
	slow    map[int64]bool
}

func (s *scriptedNeighbors) Neighbors(ctx context.Context, id int64) ([]int64, error) {
	if s.missing[id] {
		return nil, storage.NotFoundError{ID: id}
	}
	if s.slow[id] {
		<-ctx.Done()
		return nil, storage.Unavailable("neighbors", ctx.Err())
	}
	return s.NeighborStore.Neighbors(ctx, id)
}
