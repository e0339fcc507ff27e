package storage

import (
	"context"
	"strings"
)

// pageUpdate accumulates (column, bound value) pairs for a page row and
// renders them as a single parameterized UPDATE, so an observation touches
// only the columns it actually changed.
type pageUpdate struct {
	columns []string
	args    []interface{}
}

func (u *pageUpdate) set(column string, value interface{}) {
	u.columns = append(u.columns, column)
	u.args = append(u.args, value)
}

func (u *pageUpdate) empty() bool { return len(u.columns) == 0 }

func (u *pageUpdate) apply(ctx context.Context, q Querier, id RowID) error {
	if u.empty() {
		return nil
	}
	var b strings.Builder
	b.WriteString("UPDATE places SET ")
	for i, col := range u.columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(col)
		b.WriteString(" = ?")
	}
	b.WriteString(" WHERE id = ?")
	args := append(append([]interface{}{}, u.args...), id)
	if _, err := q.ExecContext(ctx, b.String(), args...); err != nil {
		return &StorageError{Op: "update page", Err: err}
	}
	return nil
}
