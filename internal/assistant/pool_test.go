package assistant

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestWorkerPoolRunsSubmittedTasks(t *testing.T) {
	p := newWorkerPool(3, 16, nil)
	var count atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		ok := p.Submit(func() {
			defer wg.Done()
			count.Add(1)
		})
		if !ok {
			wg.Done()
		}
	}
	wg.Wait()
	p.Close()

	if count.Load() != 10 {
		t.Fatalf("ran %d tasks, want 10", count.Load())
	}
}

func TestWorkerPoolDropsWhenQueueFull(t *testing.T) {
	var drops atomic.Int64
	p := newWorkerPool(1, 1, func() { drops.Add(1) })
	defer p.Close()

	block := make(chan struct{})
	started := make(chan struct{})
	// Occupy the single worker, then fill the queue.
	p.Submit(func() {
		close(started)
		<-block
	})
	<-started
	p.Submit(func() {})

	if ok := p.Submit(func() {}); ok {
		t.Fatalf("Submit() on a full queue should report a drop")
	}
	if drops.Load() == 0 {
		t.Fatalf("drop callback was not invoked")
	}
	close(block)
}

func TestWorkerPoolCloseWaitsForQueued(t *testing.T) {
	p := newWorkerPool(2, 8, nil)
	var count atomic.Int64
	for i := 0; i < 5; i++ {
		p.Submit(func() { count.Add(1) })
	}
	p.Close()
	if count.Load() != 5 {
		t.Fatalf("Close() returned before queued tasks ran: %d of 5", count.Load())
	}
}

func TestWorkerPoolSubmitAfterCloseIsNoop(t *testing.T) {
	p := newWorkerPool(1, 4, nil)
	p.Close()
	if ok := p.Submit(func() {}); ok {
		t.Fatalf("Submit() after Close() should report false")
	}
}

func TestWorkerPoolRecoversFromPanic(t *testing.T) {
	p := newWorkerPool(1, 4, nil)
	defer p.Close()

	var ran atomic.Bool
	var wg sync.WaitGroup
	wg.Add(2)
	p.Submit(func() {
		defer wg.Done()
		panic("boom")
	})
	p.Submit(func() {
		defer wg.Done()
		ran.Store(true)
	})
	wg.Wait()

	if !ran.Load() {
		t.Fatalf("worker should survive a panicking task")
	}
}
