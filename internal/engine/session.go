package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/revline/internal/ir"
)

// PlanFunc computes the steps to run once the session is open. It may call
// s.Current to learn the target's position, or act on the target directly
// (Session.Stamp) and return no steps.
type PlanFunc func(ctx context.Context, s *Session) ([]Step, error)

// Options configures a session.
type Options struct {
	// Direction labels the session for framing and logs.
	Direction ir.Direction

	// StartingRevision is the explicit start for text mode ("A" of "A:B").
	// Ignored in live mode, where the target is queried.
	StartingRevision string
	HasStart         bool

	// Destination labels the framing header.
	Destination string

	// Tag is an arbitrary caller label carried into the framing header and
	// the session report.
	Tag string

	// Logger receives step progress. Nil discards.
	Logger *slog.Logger
}

// StepResult records one committed step.
type StepResult struct {
	Seq  int64  `json:"seq"`
	ID   string `json:"revision"`
	From string `json:"from"`
	To   string `json:"to"`
	Kind string `json:"direction"`
}

// Report summarizes a finished session.
type Report struct {
	Mode    Mode         `json:"-"`
	Start   string       `json:"start"`
	Final   string       `json:"final"`
	Applied []StepResult `json:"applied"`
	Tag     string       `json:"tag,omitempty"`
}

// Session is the view of the target a PlanFunc receives.
type Session struct {
	target Target
	opts   Options
	logger *slog.Logger
	clock  *Clock

	current      string
	currentKnown bool
	framed       bool // header written
}

// Mode reports the target's mode.
func (s *Session) Mode() Mode {
	return s.target.Mode()
}

// Current returns the target's current position.
//
// Live targets are queried once; the answer is cached for the session. Text
// targets answer with the explicit starting revision, or ErrNoCurrentState
// when none was supplied.
func (s *Session) Current(ctx context.Context) (string, error) {
	if s.currentKnown {
		return s.current, nil
	}
	if s.target.Mode() == ModeText {
		if !s.opts.HasStart {
			return "", ErrNoCurrentState
		}
		s.current, s.currentKnown = s.opts.StartingRevision, true
		return s.current, nil
	}

	cur, err := s.target.CurrentPosition(ctx)
	if err != nil {
		return "", fmt.Errorf("query current revision: %w", err)
	}
	s.current, s.currentKnown = cur, true
	return cur, nil
}

// Stamp sets the marker to dest without running any payload.
// In text mode the marker statements are emitted instead.
func (s *Session) Stamp(ctx context.Context, dest string) error {
	if s.target.Mode() == ModeLive {
		cur, err := s.Current(ctx)
		if err != nil {
			return err
		}
		if cur == dest {
			s.logger.Info("stamp is a no-op", "revision", displayID(dest))
			return nil
		}
		s.logger.Info("stamping", "from", displayID(cur), "to", displayID(dest))
	}

	if err := s.openFrame(ctx); err != nil {
		return err
	}
	tx, err := s.target.Begin(ctx)
	if err != nil {
		return fmt.Errorf("stamp: begin: %w", err)
	}
	if err := tx.ReplaceMarker(ctx, dest); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("stamp: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("stamp: commit: %w", err)
	}
	s.current, s.currentKnown = dest, true
	return nil
}

// RunSession opens a session on target, plans with plan and executes the
// resulting steps in order. target.Close runs exactly once on every path.
//
// Planning errors (resolution, path) are returned unchanged; no step has run.
// A failing step returns an *ExecutionError.
func RunSession(ctx context.Context, target Target, opts Options, plan PlanFunc) (report *Report, err error) {
	if target == nil {
		return nil, errors.New("run session: nil target")
	}
	defer func() {
		if cerr := target.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close target: %w", cerr)
		}
	}()

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Session{
		target: target,
		opts:   opts,
		logger: logger.With("mode", target.Mode().String()),
		clock:  NewClock(),
	}

	steps, err := plan(ctx, s)
	if err != nil {
		return nil, err
	}
	if err := s.openFrame(ctx); err != nil {
		return nil, err
	}

	report, err = s.execute(ctx, steps)
	if err != nil {
		return report, err
	}

	if s.framed {
		if err := s.target.(Framer).Footer(ctx); err != nil {
			return report, fmt.Errorf("write footer: %w", err)
		}
	}
	return report, nil
}

// openFrame writes the text header the first time the session emits
// anything, so a plan that fails before that leaves the output empty.
func (s *Session) openFrame(ctx context.Context) error {
	framer, ok := s.target.(Framer)
	if !ok || s.target.Mode() != ModeText || s.framed {
		return nil
	}
	if err := framer.Header(ctx, FrameInfo{
		Direction:        s.opts.Direction,
		StartingRevision: s.opts.StartingRevision,
		HasStart:         s.opts.HasStart,
		Destination:      s.opts.Destination,
		Tag:              s.opts.Tag,
	}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	s.framed = true
	return nil
}

// execute runs steps strictly in order, one transaction each.
func (s *Session) execute(ctx context.Context, steps []Step) (*Report, error) {
	report := &Report{Mode: s.target.Mode(), Applied: []StepResult{}, Tag: s.opts.Tag}
	if s.currentKnown {
		report.Start = s.current
	} else if len(steps) > 0 {
		report.Start = steps[0].From()
	}
	report.Final = report.Start

	last := report.Start
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return report, &ExecutionError{Step: step.ID(), Direction: step.Direction, Index: i, LastCommitted: last, Err: err}
		}

		s.logger.Info("running "+step.String(), "revision", step.ID(), "message", step.Revision.Message)
		if err := s.runStep(ctx, step); err != nil {
			s.logger.Error("step failed", "revision", step.ID(), "error", err)
			return report, &ExecutionError{Step: step.ID(), Direction: step.Direction, Index: i, LastCommitted: last, Err: err}
		}

		last = step.To()
		report.Final = last
		report.Applied = append(report.Applied, StepResult{
			Seq:  s.clock.Next(),
			ID:   step.ID(),
			From: step.From(),
			To:   step.To(),
			Kind: string(step.Direction),
		})
	}

	s.current, s.currentKnown = last, true
	return report, nil
}

// runStep applies one step's payload and moves the marker in one transaction.
func (s *Session) runStep(ctx context.Context, step Step) error {
	tx, err := s.target.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	if a, ok := tx.(Annotator); ok {
		if err := a.Annotate(ctx, "Running "+step.String()); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if err := ir.Run(ctx, step.Revision.Payload, step.Direction, tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.SetMarker(ctx, step.From(), step.To()); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("update marker: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
