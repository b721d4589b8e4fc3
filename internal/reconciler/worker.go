package reconciler

import (
	"sync"

	"github.com/google/uuid"
)

// Worker runs Reconciler.Run on a background goroutine, coalescing bursts
// of refresh requests into a single pending sweep: a request arriving
// while a sweep is running queues one more sweep, and a request arriving
// while a sweep is already queued is dropped rather than queued again,
// since the queued sweep will observe whatever state triggered the new
// request too.
type Worker struct {
	r *Reconciler

	mu      sync.Mutex
	pending chan struct{}
	stop    chan struct{}
	done    chan struct{}
	started bool
}

// NewWorker wraps r with an async worker. Start must be called before
// Trigger has any effect.
func NewWorker(r *Reconciler) *Worker {
	return &Worker{
		r:       r,
		pending: make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start launches the worker goroutine. Calling Start twice is a no-op.
func (w *Worker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return
	}
	w.started = true

	go w.loop()
}

// Stop signals the worker goroutine to exit and waits for it to do so.
// Stop is idempotent but not safe to call concurrently with itself.
func (w *Worker) Stop() {
	w.mu.Lock()
	started := w.started
	w.mu.Unlock()
	if !started {
		return
	}

	select {
	case <-w.stop:
	default:
		close(w.stop)
	}
	<-w.done
}

// Trigger requests a refresh sweep. It never blocks: if a sweep is already
// pending, the request is coalesced into it and dropped silently.
func (w *Worker) Trigger() {
	select {
	case w.pending <- struct{}{}:
	default:
	}
}

func (w *Worker) loop() {
	defer close(w.done)

	for {
		select {
		case <-w.stop:
			return
		case <-w.pending:
			refreshID := uuid.NewString()
			if err := w.r.Run(refreshID); err != nil {
				w.r.Log.ProbeFault(refreshID, "", err)
			}
		}
	}
}
