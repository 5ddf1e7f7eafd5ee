// Package mirror delivers file writes to an external saver in the background.
// Producers enqueue without blocking; a single Worker drains the queue.
package mirror

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrQueueFull is returned by Enqueue when the queue has no free slot.
	ErrQueueFull = errors.New("mirror queue full")
	// ErrQueueClosed is returned by Enqueue after Close.
	ErrQueueClosed = errors.New("mirror queue closed")
)

// DefaultQueueSize is used when NewQueue is given a non-positive size.
const DefaultQueueSize = 64

// Request is one file write to mirror.
type Request struct {
	ID      string
	Path    string // Project-relative, already validated
	Content string
	At      time.Time
}

// NewRequest stamps a request with a fresh ID.
func NewRequest(path, content string) Request {
	return Request{ID: uuid.NewString(), Path: path, Content: content, At: time.Now().UTC()}
}

// Saver writes one file somewhere outside the store.
type Saver interface {
	Save(ctx context.Context, path, content string) error
}

// FailureFunc is called for every request a Saver could not deliver.
type FailureFunc func(Request, error)

// Queue is a bounded FIFO of requests.
type Queue struct {
	mu     sync.RWMutex
	ch     chan Request
	closed bool
}

// NewQueue creates a queue holding at most size pending requests.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{ch: make(chan Request, size)}
}

// Enqueue adds r without blocking.
func (q *Queue) Enqueue(r Request) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.ch <- r:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting requests. Pending requests are still delivered.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
}

// Len returns the number of pending requests.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Worker drains a Queue into a Saver.
type Worker struct {
	queue     *Queue
	saver     Saver
	logger    *slog.Logger
	onFailure FailureFunc
	timeout   time.Duration
}

// NewWorker creates a worker. onFailure may be nil. A positive timeout
// bounds each Save call.
func NewWorker(q *Queue, saver Saver, logger *slog.Logger, onFailure FailureFunc, timeout time.Duration) *Worker {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Worker{queue: q, saver: saver, logger: logger, onFailure: onFailure, timeout: timeout}
}

// Run delivers requests until ctx is cancelled or the queue is closed and
// drained. It returns nil after a drain and ctx.Err() after a cancel.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Debug("Mirror worker started")
	defer w.logger.Debug("Mirror worker stopped")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req, ok := <-w.queue.ch:
			if !ok {
				return nil
			}
			w.deliver(ctx, req)
		}
	}
}

func (w *Worker) deliver(ctx context.Context, req Request) {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	if err := w.saver.Save(ctx, req.Path, req.Content); err != nil {
		w.logger.Warn("Mirror save failed", "path", req.Path, "requestID", req.ID, "error", err)
		if w.onFailure != nil {
			w.onFailure(req, err)
		}
		return
	}
	w.logger.Debug("Mirrored file", "path", req.Path, "requestID", req.ID)
}
