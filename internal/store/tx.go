package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/revline/internal/ir"
)

// sqlTx is one step's transaction.
type sqlTx struct {
	tx     *sql.Tx
	table  string
	logger *slog.Logger
}

func (t *sqlTx) Exec(ctx context.Context, stmt string) error {
	t.logger.Debug("exec", "sql", stmt)
	_, err := t.tx.ExecContext(ctx, stmt)
	return err
}

// SetMarker moves the marker, checking that it currently reads from.
func (t *sqlTx) SetMarker(ctx context.Context, from, to string) error {
	if from == to {
		return nil
	}

	switch {
	case from == ir.None:
		var n int
		if err := t.tx.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", t.table)).Scan(&n); err != nil {
			return fmt.Errorf("count %s: %w", t.table, err)
		}
		if n != 0 {
			return fmt.Errorf("%s is not empty; expected no applied revision", t.table)
		}
		if _, err := t.tx.ExecContext(ctx, fmt.Sprintf("INSERT INTO %s (version_num) VALUES (?)", t.table), to); err != nil {
			return fmt.Errorf("insert %s: %w", to, err)
		}
	case to == ir.None:
		if err := t.expectOne(ctx, fmt.Sprintf("DELETE FROM %s WHERE version_num = ?", t.table), from); err != nil {
			return err
		}
	default:
		if err := t.expectOne(ctx, fmt.Sprintf("UPDATE %s SET version_num = ? WHERE version_num = ?", t.table), from, to, from); err != nil {
			return err
		}
	}
	return t.record(ctx, "step", from, to)
}

// ReplaceMarker clears the table and writes to, whatever was there.
func (t *sqlTx) ReplaceMarker(ctx context.Context, to string) error {
	var from string
	err := t.tx.QueryRowContext(ctx, fmt.Sprintf("SELECT version_num FROM %s LIMIT 1", t.table)).Scan(&from)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read %s: %w", t.table, err)
	}

	if _, err := t.tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", t.table)); err != nil {
		return fmt.Errorf("clear %s: %w", t.table, err)
	}
	if to != ir.None {
		if _, err := t.tx.ExecContext(ctx, fmt.Sprintf("INSERT INTO %s (version_num) VALUES (?)", t.table), to); err != nil {
			return fmt.Errorf("insert %s: %w", to, err)
		}
	}
	return t.record(ctx, "stamp", from, to)
}

func (t *sqlTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqlTx) Rollback() error {
	return t.tx.Rollback()
}

// expectOne runs a marker statement that must touch exactly one row.
// from is the expected current marker, used in the error.
func (t *sqlTx) expectOne(ctx context.Context, query, from string, args ...any) error {
	if len(args) == 0 {
		args = []any{from}
	}
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return fmt.Errorf("%s does not contain %s", t.table, from)
	}
	return nil
}

func (t *sqlTx) record(ctx context.Context, kind, from, to string) error {
	_, err := t.tx.ExecContext(ctx,
		"INSERT INTO revline_history (kind, from_rev, to_rev, version_table) VALUES (?, ?, ?, ?)",
		kind, from, to, t.table)
	if err != nil {
		return fmt.Errorf("record history: %w", err)
	}
	return nil
}
