package ir

import (
	"context"
	"fmt"
)

// SQLPayload is a payload made of plain statement lists, as loaded from
// revision files. Statements run in order; the first failure stops the step.
type SQLPayload struct {
	Up   []string `json:"upgrade" yaml:"upgrade"`
	Down []string `json:"downgrade" yaml:"downgrade"`
}

// Upgrade implements Payload.
func (p SQLPayload) Upgrade(ctx context.Context, x Executor) error {
	return execAll(ctx, x, p.Up)
}

// Downgrade implements Payload.
func (p SQLPayload) Downgrade(ctx context.Context, x Executor) error {
	return execAll(ctx, x, p.Down)
}

func execAll(ctx context.Context, x Executor, stmts []string) error {
	for i, stmt := range stmts {
		if err := x.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("statement %d: %w", i+1, err)
		}
	}
	return nil
}

// FuncPayload adapts two functions to the Payload interface.
// Either function may be nil, in which case that direction is a no-op.
type FuncPayload struct {
	Up   func(ctx context.Context, x Executor) error
	Down func(ctx context.Context, x Executor) error
}

// Upgrade implements Payload.
func (p FuncPayload) Upgrade(ctx context.Context, x Executor) error {
	if p.Up == nil {
		return nil
	}
	return p.Up(ctx, x)
}

// Downgrade implements Payload.
func (p FuncPayload) Downgrade(ctx context.Context, x Executor) error {
	if p.Down == nil {
		return nil
	}
	return p.Down(ctx, x)
}
