package epaper

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/charmbracelet/log"
)

// UpdateCommand is one refresh instruction for the sink: a byte-aligned
// window plus its packed pixel buffer. Commands are consumed exactly once.
type UpdateCommand struct {
	// Region is the window to refresh. For a full refresh it spans the
	// whole frame.
	Region image.Rectangle

	// Buffer is the packed crop of the new frame over Region.
	Buffer []byte

	// Full selects the sink's full-refresh path instead of the
	// partial-update path.
	Full bool
}

// Plan is the ordered command list for one update cycle, bound to the
// frame it was computed from. A Plan must be committed back to its Planner
// once the sink has accepted every command; an uncommitted plan leaves the
// diff baseline at the last applied frame.
type Plan struct {
	Commands []UpdateCommand
	Kind     DiffKind

	next *Frame
}

// Empty reports whether the plan carries no commands.
func (p *Plan) Empty() bool {
	return len(p.Commands) == 0
}

// RegionError reports a failure confined to a single window. Sibling
// windows in the same cycle are unaffected.
type RegionError struct {
	Region image.Rectangle
	Err    error
}

// Error implements the error interface.
func (e *RegionError) Error() string {
	return fmt.Sprintf("epaper: region %v: %v", e.Region, e.Err)
}

// Unwrap returns the underlying error.
func (e *RegionError) Unwrap() error {
	return e.Err
}

// Planner runs the partial-update pipeline and owns the retained
// last-displayed frame. Construct it once per panel with NewPlanner; the
// zero value is not usable.
//
// A Planner performs no I/O and never blocks. Cycles are expected to run
// sequentially; the retained frame is still guarded so a Commit is atomic
// with respect to the next cycle's read.
type Planner struct {
	cfg    Config
	bounds image.Rectangle
	logger *log.Logger

	mu       sync.Mutex
	retained *Frame
}

// NewPlanner creates a planner for a w×h panel. Width must be a multiple
// of 8: partial windows are addressed in whole bytes. logger may be nil.
func NewPlanner(w, h int, cfg Config, logger *log.Logger) (*Planner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("epaper: panel dimensions must be positive, got %dx%d", w, h)
	}
	if w%8 != 0 {
		return nil, fmt.Errorf("epaper: panel width must be a multiple of 8, got %d", w)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Planner{
		cfg:    cfg,
		bounds: image.Rect(0, 0, w, h),
		logger: logger,
	}, nil
}

// Bounds returns the panel dimensions the planner was built for.
func (pl *Planner) Bounds() image.Rectangle {
	return pl.bounds
}

// HasBaseline reports whether a frame has been committed yet.
func (pl *Planner) HasBaseline() bool {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return pl.retained != nil
}

// Reset drops the retained frame. The next cycle plans a full refresh.
func (pl *Planner) Reset() {
	pl.mu.Lock()
	pl.retained = nil
	pl.mu.Unlock()
}

// Plan computes the command list that brings the panel from the retained
// frame to next.
//
// The first cycle, and any cycle whose frame geometry differs from the
// retained frame, yields a single full-refresh command. An unchanged frame
// yields an empty plan. Otherwise changed pixels are clustered, refined
// and aligned into at most MaxRegionsPerCycle windows, ordered largest
// first.
//
// A packing failure on one window does not abort its siblings: Plan
// returns the remaining commands together with the per-window errors.
func (pl *Planner) Plan(next *Frame) (*Plan, error) {
	if next == nil {
		return nil, errors.New("epaper: nil frame")
	}

	pl.mu.Lock()
	prev := pl.retained
	pl.mu.Unlock()

	res := Diff(prev, next)
	plan := &Plan{Kind: res.Kind, next: next}

	switch res.Kind {
	case NoChange:
		pl.logger.Debug("no changes detected, skipping update")
		return plan, nil

	case FullRepaint:
		cmd, err := pl.fullCommand(next)
		if err != nil {
			return nil, err
		}
		plan.Commands = []UpdateCommand{cmd}
		pl.logger.Debug("planned full refresh", "bounds", next.Rect)
		return plan, nil
	}

	regions := clusterRegions(res.Mask, pl.cfg.RegionPaddingPx)
	refined, escalate := refineRegions(regions, &pl.cfg)
	if escalate {
		// Real change exists but the size floor removed every
		// candidate. Dropping the cycle would desync the panel from
		// the retained frame, so escalate to a full refresh.
		cmd, err := pl.fullCommand(next)
		if err != nil {
			return nil, err
		}
		plan.Kind = FullRepaint
		plan.Commands = []UpdateCommand{cmd}
		pl.logger.Debug("all regions below size floor, escalating to full refresh")
		return plan, nil
	}

	var errs []error
	for _, r := range refined {
		aligned := alignRegion(r, next.Rect.Dx())
		buf, err := packRegion(next, aligned, pl.cfg.BitPolarity)
		if err != nil {
			errs = append(errs, &RegionError{Region: aligned, Err: err})
			continue
		}
		plan.Commands = append(plan.Commands, UpdateCommand{Region: aligned, Buffer: buf})
	}

	pl.logger.Debug("planned partial update",
		"clusters", len(regions),
		"windows", len(plan.Commands))
	return plan, errors.Join(errs...)
}

// fullCommand packs the whole frame into a single full-refresh command.
func (pl *Planner) fullCommand(next *Frame) (UpdateCommand, error) {
	buf, err := packRegion(next, next.Rect, pl.cfg.BitPolarity)
	if err != nil {
		return UpdateCommand{}, err
	}
	return UpdateCommand{Region: next.Rect, Buffer: buf, Full: true}, nil
}

// Commit replaces the retained frame with the plan's frame. Call it only
// after the sink accepted every command of the plan; Apply does so
// automatically. Committing an empty NoChange plan is a no-op.
func (pl *Planner) Commit(p *Plan) {
	if p == nil || p.Kind == NoChange {
		return
	}
	pl.mu.Lock()
	pl.retained = p.next
	pl.mu.Unlock()
}

// Apply dispatches a plan's commands to the sink in order and commits on
// full success. A failing window is reported as a RegionError and does not
// abort its siblings; if any window fails, or ctx is cancelled before all
// commands were sent, the baseline is not advanced and the whole cycle is
// re-planned against the old retained frame next time. Windows that did
// reach the panel are then re-sent, which is harmless.
func (pl *Planner) Apply(ctx context.Context, sink Sink, p *Plan) error {
	if p == nil || p.Empty() {
		return nil
	}

	var errs []error
	for _, cmd := range p.Commands {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		var err error
		if cmd.Full {
			err = sink.ApplyFull(ctx, cmd.Buffer)
		} else {
			err = sink.ApplyPartial(ctx, cmd.Region, cmd.Buffer)
		}
		if err != nil {
			errs = append(errs, &RegionError{Region: cmd.Region, Err: err})
			pl.logger.Error("window apply failed", "region", cmd.Region, "err", err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	pl.Commit(p)
	return nil
}

// Update is one whole cycle: Plan, Apply, Commit. It is the entry point
// callers normally use. The returned plan is non-nil whenever planning
// succeeded, even if applying failed.
func (pl *Planner) Update(ctx context.Context, sink Sink, next *Frame) (*Plan, error) {
	plan, planErr := pl.Plan(next)
	if plan == nil {
		return nil, planErr
	}
	if err := pl.Apply(ctx, sink, plan); err != nil {
		return plan, errors.Join(planErr, err)
	}
	return plan, planErr
}
