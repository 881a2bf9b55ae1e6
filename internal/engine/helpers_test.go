package engine_test

import (
	"context"
	"fmt"

	"github.com/roach88/revline/internal/engine"
)

// textTarget records what a session asks a text-mode target to emit.
type textTarget struct {
	events []string
	closed int
}

func (t *textTarget) Mode() engine.Mode { return engine.ModeText }

func (t *textTarget) CurrentPosition(context.Context) (string, error) {
	return "", engine.ErrNoCurrentState
}

func (t *textTarget) Begin(context.Context) (engine.Tx, error) {
	return &textTx{t: t}, nil
}

func (t *textTarget) Close() error {
	t.closed++
	return nil
}

func (t *textTarget) Header(_ context.Context, info engine.FrameInfo) error {
	t.events = append(t.events, fmt.Sprintf("header %s start=%q has=%v dest=%q",
		info.Direction, info.StartingRevision, info.HasStart, info.Destination))
	return nil
}

func (t *textTarget) Footer(context.Context) error {
	t.events = append(t.events, "footer")
	return nil
}

type textTx struct{ t *textTarget }

func (x *textTx) Exec(_ context.Context, stmt string) error {
	x.t.events = append(x.t.events, stmt)
	return nil
}

func (x *textTx) SetMarker(_ context.Context, from, to string) error {
	x.t.events = append(x.t.events, fmt.Sprintf("marker %q -> %q", from, to))
	return nil
}

func (x *textTx) ReplaceMarker(_ context.Context, to string) error {
	x.t.events = append(x.t.events, fmt.Sprintf("replace marker %q", to))
	return nil
}

func (x *textTx) Annotate(_ context.Context, text string) error {
	x.t.events = append(x.t.events, "-- "+text)
	return nil
}

func (x *textTx) Commit() error   { return nil }
func (x *textTx) Rollback() error { return nil }
