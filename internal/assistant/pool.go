package assistant

import (
	"log/slog"
	"sync"
)

// workerPool runs background tasks on a small fixed set of goroutines.
// Submission never blocks the caller: when the queue is full the task is
// dropped. Tasks are best-effort and at-most-once; a panic is logged and
// the worker keeps going.
type workerPool struct {
	tasks    chan func()
	wg       sync.WaitGroup
	stopOnce sync.Once
	onDrop   func()

	mu     sync.Mutex
	closed bool
}

func newWorkerPool(workers, queueSize int, onDrop func()) *workerPool {
	if workers <= 0 {
		workers = 3
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	p := &workerPool{
		tasks:  make(chan func(), queueSize),
		onDrop: onDrop,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *workerPool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		p.run(task)
	}
}

func (p *workerPool) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("background task panicked", "panic", r)
		}
	}()
	task()
}

// Submit enqueues task, reporting whether it was accepted.
func (p *workerPool) Submit(task func()) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	select {
	case p.tasks <- task:
		return true
	default:
		if p.onDrop != nil {
			p.onDrop()
		}
		return false
	}
}

// Close stops accepting work and waits for queued tasks to finish.
func (p *workerPool) Close() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.tasks)
		p.mu.Unlock()
	})
	p.wg.Wait()
}
