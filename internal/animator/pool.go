package animator

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"go.uber.org/zap"
)

const (
	// poolQueueSize bounds pending tasks per tick before submitters block.
	poolQueueSize = 256
	poolIdle      = 1 * time.Second
)

// Pool updates independent animators in parallel. Each animator owns its
// skeleton, so workers share no mutable state; the tick returns once every
// animator has been updated.
type Pool struct {
	workers worker.DynamicWorkerPool
	size    int
	log     *zap.Logger
}

// NewPool creates a pool with up to size workers. Workers exit after a second
// idle and respawn on demand.
func NewPool(size int, log *zap.Logger) *Pool {
	if size < 1 {
		size = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pool{
		workers: worker.NewDynamicWorkerPool(size, poolQueueSize, poolIdle),
		size:    size,
		log:     log,
	}
}

// Size returns the maximum number of workers.
func (p *Pool) Size() int { return p.size }

// Update advances every animator by dt. Failures do not stop other
// animators; they are joined into the returned error.
func (p *Pool) Update(animators []*Animator, dt float32) error {
	errs := make([]error, len(animators))

	// The pool's own Wait blocks until workers idle out, so a WaitGroup is
	// the per-tick barrier.
	var wg sync.WaitGroup
	for i, a := range animators {
		if a == nil {
			continue
		}
		wg.Add(1)
		idx, inst := i, a
		p.workers.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				if err := inst.Update(dt); err != nil {
					errs[idx] = fmt.Errorf("animator %d: %w", idx, err)
					return nil, errs[idx]
				}
				return nil, nil
			},
		})
	}
	wg.Wait()

	err := errors.Join(errs...)
	p.log.Debug("animators updated",
		zap.Int("count", len(animators)),
		zap.Float32("dt", dt),
		zap.Bool("failed", err != nil))
	return err
}
