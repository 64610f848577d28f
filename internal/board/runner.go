package board

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"subwayboard/internal/realtime"
)

// Renderer displays a board.
type Renderer interface {
	Render(ctx context.Context, b Board) error
}

// DefaultInterval is the poll cadence used when a Schedule leaves it unset.
const DefaultInterval = 2 * time.Second

// Schedule controls how often and for how long the runner polls.
// Zero MaxPolls or RunFor means no limit.
type Schedule struct {
	Interval time.Duration
	Timeout  time.Duration // per poll
	MaxPolls int
	RunFor   time.Duration
}

// Runner drives a Pipeline on a Schedule.
type Runner struct {
	pipeline  *Pipeline
	store     *Store
	renderers []Renderer
	schedule  Schedule
	logger    *slog.Logger
}

// NewRunner creates a runner. Successful boards go to the store and then to
// each renderer in order.
func NewRunner(p *Pipeline, store *Store, schedule Schedule, logger *slog.Logger, renderers ...Renderer) *Runner {
	if schedule.Interval <= 0 {
		schedule.Interval = DefaultInterval
	}
	return &Runner{
		pipeline:  p,
		store:     store,
		renderers: renderers,
		schedule:  schedule,
		logger:    logger,
	}
}

// Run polls immediately and then on every interval tick. It returns nil when
// ctx is cancelled, the poll budget is spent or the deadline passes, and an
// error only for failures no later poll can fix.
func (r *Runner) Run(ctx context.Context) error {
	if r.schedule.RunFor > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.schedule.RunFor)
		defer cancel()
	}

	ticker := time.NewTicker(r.schedule.Interval)
	defer ticker.Stop()

	polls := 0
	for {
		if err := r.pollOnce(ctx); err != nil {
			return err
		}
		polls++
		if r.schedule.MaxPolls > 0 && polls >= r.schedule.MaxPolls {
			r.logger.Info("poll budget spent", "polls", polls)
			return nil
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			r.logger.Info("board runner stopped", "polls", polls)
			return nil
		}
	}
}

// pollOnce runs one pipeline pass. Network and feed errors are recorded and
// swallowed so the previous board stays on display.
func (r *Runner) pollOnce(ctx context.Context) error {
	pollCtx := ctx
	if r.schedule.Timeout > 0 {
		var cancel context.CancelFunc
		pollCtx, cancel = context.WithTimeout(ctx, r.schedule.Timeout)
		defer cancel()
	}

	b, err := r.pipeline.Poll(pollCtx)
	if err != nil {
		var lineErr *realtime.UnsupportedLineError
		if errors.As(err, &lineErr) {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
		r.store.RecordError(err, time.Now())
		r.logger.Warn("poll failed, keeping last board",
			"error", err,
			"failures", r.store.Status().ConsecutiveFailures,
		)
		return nil
	}

	if err := r.store.Render(ctx, b); err != nil {
		return err
	}
	for _, rd := range r.renderers {
		if err := rd.Render(ctx, b); err != nil {
			r.logger.Error("render board", "poll_id", b.PollID, "error", err)
		}
	}
	r.logger.Debug("board updated", "poll_id", b.PollID, "north", b.North, "south", b.South)
	return nil
}
