package store

import "context"

// Row is a table row together with its 1-indexed position at read time.
// Positions are not stable across deletions; a row located inside the guard
// must be acted on inside the same guarded section.
type Row struct {
	Index int      `json:"index"`
	Cells []string `json:"cells"`
}

// Cell returns the 1-indexed column value, or "" when the row is short.
func (r Row) Cell(col int) string {
	if col < 1 || col > len(r.Cells) {
		return ""
	}
	return r.Cells[col-1]
}

// RowStore is the external row-oriented store consumed by the coordinator.
// It offers plain find/append/update/delete primitives and nothing more: no
// transactions, no compare-and-swap. Lookups match the key against column 1
// by exact string comparison.
type RowStore interface {
	Rows(ctx context.Context, table string) ([]Row, error)
	FindRow(ctx context.Context, table, key string) (Row, error)
	AppendRow(ctx context.Context, table string, cells []string) error
	UpdateCell(ctx context.Context, table string, row, col int, value string) error
	DeleteRow(ctx context.Context, table string, row int) error
	Ping(ctx context.Context) error
}
