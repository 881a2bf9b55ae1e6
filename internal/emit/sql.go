package emit

import (
	"fmt"
	"strings"

	"github.com/roach88/revline/internal/ir"
)

// Statement terminates stmt with ";" and a newline, trimming surrounding
// whitespace and any terminator already present.
func Statement(stmt string) string {
	stmt = strings.TrimSpace(stmt)
	stmt = strings.TrimRight(stmt, "; \t\n")
	return stmt + ";\n"
}

// Literal quotes s as a SQL string literal.
func Literal(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// MarkerStatements returns the statements moving the marker in table from
// one revision to another: from None inserts, to None deletes, otherwise
// updates. Equal positions need nothing.
func MarkerStatements(table, from, to string) []string {
	switch {
	case from == to:
		return nil
	case from == ir.None:
		return []string{insertMarker(table, to)}
	case to == ir.None:
		return []string{fmt.Sprintf("DELETE FROM %s WHERE version_num = %s", table, Literal(from))}
	}
	return []string{fmt.Sprintf("UPDATE %s SET version_num = %s WHERE version_num = %s", table, Literal(to), Literal(from))}
}

func insertMarker(table, id string) string {
	return fmt.Sprintf("INSERT INTO %s (version_num) VALUES (%s)", table, Literal(id))
}
