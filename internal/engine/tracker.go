package engine

import (
	"context"
	"fmt"
)

// CurrentPosition reads the target's marker without side effects and
// releases the target. Text targets have no queryable state and return
// ErrNoCurrentState.
func CurrentPosition(ctx context.Context, target Target) (id string, err error) {
	defer func() {
		if cerr := target.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close target: %w", cerr)
		}
	}()

	if target.Mode() == ModeText {
		return "", ErrNoCurrentState
	}
	return target.CurrentPosition(ctx)
}

// Stamp sets the marker to dest (already resolved) without invoking any
// payload, inside its own session. In text mode the marker statements are
// emitted inside the usual framing.
func Stamp(ctx context.Context, target Target, dest string, opts Options) error {
	opts.Destination = dest
	_, err := RunSession(ctx, target, opts, func(ctx context.Context, s *Session) ([]Step, error) {
		return nil, s.Stamp(ctx, dest)
	})
	return err
}
