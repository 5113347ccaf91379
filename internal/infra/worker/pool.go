// File: internal/infra/worker/pool.go
package worker

import (
	"context"
	"errors"
	"hash/fnv"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
)

var (
	ErrQueueFull  = errors.New("worker queue full")
	ErrPoolClosed = errors.New("worker pool stopped")
)

type Task func(ctx context.Context) error

// Pool runs submitted tasks on a fixed set of workers. Tasks with the same key
// always land on the same worker and run in submission order.
type Pool struct {
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	queues []chan Task
	log    *zerolog.Logger
}

func NewPool(workers, queueSize int, log *zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	p := &Pool{queues: make([]chan Task, workers), log: log}
	for i := range p.queues {
		p.queues[i] = make(chan Task, queueSize)
	}
	return p
}

func (p *Pool) Start(ctx context.Context) {
	for i, q := range p.queues {
		p.wg.Add(1)
		go func(id int, q <-chan Task) {
			defer p.wg.Done()
			for task := range q {
				if err := task(ctx); err != nil {
					p.log.Warn().Err(err).Int("worker", id).Msg("task failed")
				}
			}
		}(i, q)
	}
}

// Stop rejects new tasks and waits until queued ones have run.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	for _, q := range p.queues {
		close(q)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

// Submit enqueues task without blocking.
func (p *Pool) Submit(key string, task Task) error {
	if task == nil {
		return errors.New("nil task")
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.queues[p.slot(key)] <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

func (p *Pool) slot(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(p.queues)))
}
