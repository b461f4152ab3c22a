package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory RowStore used by tests and local development.
// Like the real sheet API it renumbers rows on deletion and offers no
// atomicity beyond the single call.
type MemoryStore struct {
	mu     sync.Mutex
	tables map[string][][]string
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string][][]string)}
}

// Seed replaces the table contents with the given rows.
func (m *MemoryStore) Seed(table string, rows [][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([][]string, 0, len(rows))
	for _, cells := range rows {
		copied = append(copied, append([]string(nil), cells...))
	}
	m.tables[table] = copied
}

// Rows returns a snapshot of the table.
func (m *MemoryStore) Rows(ctx context.Context, table string) ([]Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := make([]Row, 0, len(m.tables[table]))
	for i, cells := range m.tables[table] {
		rows = append(rows, Row{Index: i + 1, Cells: append([]string(nil), cells...)})
	}
	return rows, nil
}

// FindRow matches key against column 1 by exact string comparison.
func (m *MemoryStore) FindRow(ctx context.Context, table, key string) (Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, cells := range m.tables[table] {
		if len(cells) > 0 && cells[0] == key {
			return Row{Index: i + 1, Cells: append([]string(nil), cells...)}, nil
		}
	}
	return Row{}, NewTerminal("memory.find_row", ErrRowNotFound)
}

// AppendRow appends cells at the bottom of the table.
func (m *MemoryStore) AppendRow(ctx context.Context, table string, cells []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table] = append(m.tables[table], append([]string(nil), cells...))
	return nil
}

// UpdateCell writes one cell, growing the row if it is short.
func (m *MemoryStore) UpdateCell(ctx context.Context, table string, row, col int, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.tables[table]
	if row < 1 || row > len(rows) {
		return NewTerminal("memory.update_cell", ErrRowNotFound)
	}
	cells := rows[row-1]
	for len(cells) < col {
		cells = append(cells, "")
	}
	cells[col-1] = value
	rows[row-1] = cells
	return nil
}

// DeleteRow removes the row, shifting later rows up.
func (m *MemoryStore) DeleteRow(ctx context.Context, table string, row int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.tables[table]
	if row < 1 || row > len(rows) {
		return NewTerminal("memory.delete_row", ErrRowNotFound)
	}
	m.tables[table] = append(rows[:row-1], rows[row:]...)
	return nil
}

// Ping always succeeds.
func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}
