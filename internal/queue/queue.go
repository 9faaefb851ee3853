// Package queue serializes display updates through a single worker.
//
// The panel and the planner's retained baseline are both single-writer
// state, so every incoming frame goes through one goroutine that plans
// and applies updates in arrival order.
package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	epaper "github.com/alchemist-s/e-paper-simulation"
)

// ErrQueueFull is returned by Enqueue when the job buffer is at
// capacity. Callers decide whether to drop or retry.
var ErrQueueFull = errors.New("queue: full")

// ErrStopped is returned by Enqueue after the worker has shut down.
var ErrStopped = errors.New("queue: stopped")

// Job is one frame waiting to be displayed.
type Job struct {
	ID       uuid.UUID
	Frame    *epaper.Frame
	Enqueued time.Time
}

// Status is a point-in-time view of the processor.
type Status struct {
	Depth      int       `json:"queue_size"`
	Processing bool      `json:"processing"`
	Processed  uint64    `json:"processed"`
	Failed     uint64    `json:"failed"`
	LastJobID  string    `json:"last_job_id,omitempty"`
	LastError  string    `json:"last_error,omitempty"`
	LastUpdate time.Time `json:"last_update,omitzero"`
}

// Processor owns the planner and the sink and drains jobs one at a time.
type Processor struct {
	planner *epaper.Planner
	sink    epaper.Sink
	logger  *log.Logger
	jobs    chan Job

	mu      sync.Mutex
	stopped bool
	status  Status
}

// New creates a processor with a buffered job channel of the given
// depth. The worker does not run until Run is called.
func New(planner *epaper.Planner, sink epaper.Sink, logger *log.Logger, depth int) *Processor {
	if depth <= 0 {
		depth = 16
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Processor{
		planner: planner,
		sink:    sink,
		logger:  logger,
		jobs:    make(chan Job, depth),
	}
}

// Enqueue adds a frame to the queue without blocking.
func (p *Processor) Enqueue(f *epaper.Frame) (uuid.UUID, error) {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return uuid.Nil, ErrStopped
	}
	p.mu.Unlock()

	j := Job{ID: uuid.New(), Frame: f, Enqueued: time.Now()}
	select {
	case p.jobs <- j:
		p.logger.Debug("enqueued frame", "job", j.ID)
		return j.ID, nil
	default:
		return uuid.Nil, ErrQueueFull
	}
}

// Run drains the queue until ctx is cancelled. It is the only goroutine
// touching the planner and the sink.
func (p *Processor) Run(ctx context.Context) error {
	p.setProcessing(true)
	defer p.setProcessing(false)

	p.logger.Info("update worker started")
	for {
		select {
		case <-ctx.Done():
			p.shutdown()
			p.logger.Info("update worker stopped")
			return ctx.Err()
		case j := <-p.jobs:
			p.process(ctx, j)
		}
	}
}

func (p *Processor) process(ctx context.Context, j Job) {
	start := time.Now()
	plan, err := p.planner.Update(ctx, p.sink, j.Frame)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.LastJobID = j.ID.String()
	p.status.LastUpdate = time.Now()

	if err != nil {
		p.status.Failed++
		p.status.LastError = err.Error()
		p.logger.Error("display update failed", "job", j.ID, "err", err)
		return
	}
	p.status.Processed++
	p.status.LastError = ""
	p.logger.Info("display updated",
		"job", j.ID,
		"kind", plan.Kind,
		"commands", len(plan.Commands),
		"waited", start.Sub(j.Enqueued),
		"took", time.Since(start))
}

// Status reports the current queue state.
func (p *Processor) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.status
	s.Depth = len(p.jobs)
	return s
}

func (p *Processor) setProcessing(on bool) {
	p.mu.Lock()
	p.status.Processing = on
	p.mu.Unlock()
}

// shutdown marks the processor closed and drops queued jobs. Frames
// still queued are stale by definition; the next enqueued frame after a
// restart replans against the retained baseline.
func (p *Processor) shutdown() {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()
	for {
		select {
		case j := <-p.jobs:
			p.logger.Warn("dropping queued frame on shutdown", "job", j.ID)
		default:
			return
		}
	}
}
