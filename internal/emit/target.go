package emit

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/roach88/revline/internal/engine"
	"github.com/roach88/revline/internal/ir"
	"github.com/roach88/revline/internal/store"
)

// Options configures a text target.
type Options struct {
	// VersionTable names the marker table. Empty means store.DefaultVersionTable.
	VersionTable string
}

// Target writes a session's statements to an io.Writer.
type Target struct {
	w     io.Writer
	table string
	err   error
}

var (
	_ engine.Target = (*Target)(nil)
	_ engine.Framer = (*Target)(nil)
)

// New creates a text target writing to w.
func New(w io.Writer, opts Options) (*Target, error) {
	table := opts.VersionTable
	if table == "" {
		table = store.DefaultVersionTable
	}
	if err := store.ValidateTableName(table); err != nil {
		return nil, err
	}
	return &Target{w: w, table: table}, nil
}

// Mode implements engine.Target.
func (t *Target) Mode() engine.Mode {
	return engine.ModeText
}

// CurrentPosition implements engine.Target. Text has no queryable state.
func (t *Target) CurrentPosition(context.Context) (string, error) {
	return "", engine.ErrNoCurrentState
}

// Begin implements engine.Target.
func (t *Target) Begin(context.Context) (engine.Tx, error) {
	if t.err != nil {
		return nil, t.err
	}
	return &textTx{target: t}, nil
}

// Close flushes w when it buffers. The writer itself stays open.
func (t *Target) Close() error {
	if f, ok := t.w.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil && t.err == nil {
			t.err = err
		}
	}
	return t.err
}

// Header implements engine.Framer.
func (t *Target) Header(_ context.Context, info engine.FrameInfo) error {
	var b strings.Builder
	b.WriteString("-- revline offline script\n")

	start := "<current>"
	if info.HasStart {
		start = display(info.StartingRevision)
	} else if info.Direction == ir.Upgrade {
		start = display(ir.None)
	}
	fmt.Fprintf(&b, "-- %s %s -> %s\n", info.Direction, start, display(info.Destination))
	if info.Tag != "" {
		fmt.Fprintf(&b, "-- tag: %s\n", strings.ReplaceAll(info.Tag, "\n", " "))
	}
	b.WriteString("BEGIN;\n\n")

	if info.Direction == ir.Upgrade && (!info.HasStart || info.StartingRevision == ir.None) {
		b.WriteString(Statement(store.VersionTableDDL(t.table)))
		b.WriteString("\n")
	}
	return t.write(b.String())
}

// Footer implements engine.Framer.
func (t *Target) Footer(context.Context) error {
	return t.write("COMMIT;\n")
}

func (t *Target) write(s string) error {
	if t.err != nil {
		return t.err
	}
	_, t.err = io.WriteString(t.w, s)
	return t.err
}

// textTx buffers one step's text until Commit.
type textTx struct {
	target *Target
	buf    bytes.Buffer
	done   bool
}

var _ engine.Annotator = (*textTx)(nil)

func (x *textTx) Annotate(_ context.Context, text string) error {
	fmt.Fprintf(&x.buf, "-- %s\n\n", text)
	return nil
}

func (x *textTx) Exec(_ context.Context, stmt string) error {
	x.buf.WriteString(Statement(stmt))
	x.buf.WriteString("\n")
	return nil
}

func (x *textTx) SetMarker(_ context.Context, from, to string) error {
	for _, stmt := range MarkerStatements(x.target.table, from, to) {
		x.buf.WriteString(Statement(stmt))
		x.buf.WriteString("\n")
	}
	return nil
}

func (x *textTx) ReplaceMarker(_ context.Context, to string) error {
	x.buf.WriteString(Statement(fmt.Sprintf("DELETE FROM %s", x.target.table)))
	x.buf.WriteString("\n")
	if to != ir.None {
		x.buf.WriteString(Statement(insertMarker(x.target.table, to)))
		x.buf.WriteString("\n")
	}
	return nil
}

func (x *textTx) Commit() error {
	if x.done {
		return fmt.Errorf("transaction already finished")
	}
	x.done = true
	return x.target.write(x.buf.String())
}

func (x *textTx) Rollback() error {
	x.done = true
	x.buf.Reset()
	return nil
}

func display(id string) string {
	if id == ir.None {
		return "<base>"
	}
	return id
}
