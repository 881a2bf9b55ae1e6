package store

import (
	"context"
	"fmt"
)

// HistoryEntry is one recorded marker change.
type HistoryEntry struct {
	Seq          int64  `json:"seq"`
	Kind         string `json:"kind"`
	From         string `json:"from"`
	To           string `json:"to"`
	VersionTable string `json:"version_table"`
}

// History returns every marker change recorded for this store's version
// table, oldest first.
func (s *Store) History(ctx context.Context) ([]HistoryEntry, error) {
	if s.readOnly {
		ok, err := s.hasTable(ctx, "revline_history")
		if err != nil {
			return nil, err
		}
		if !ok {
			return []HistoryEntry{}, nil
		}
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, kind, from_rev, to_rev, version_table
		FROM revline_history
		WHERE version_table = ?
		ORDER BY seq ASC
	`, s.table)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	entries := []HistoryEntry{}
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.Seq, &e.Kind, &e.From, &e.To, &e.VersionTable); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}
