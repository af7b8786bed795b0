package logs

import (
	"github.com/goliatone/go-logtrail/pkg/types"
	"github.com/uptrace/bun"
)

// ApplyCursorPagination applies keyset pagination using created/id ordering.
// Results are ordered by created DESC, id DESC, and filtered to rows older
// than the supplied cursor.
func ApplyCursorPagination(q *bun.SelectQuery, cursor *types.LogCursor, limit int) *bun.SelectQuery {
	if q == nil {
		return nil
	}
	q = q.OrderExpr("created DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if cursor == nil || cursor.CreatedAt.IsZero() {
		return q
	}
	createdAt := cursor.CreatedAt.UTC()
	if cursor.ID <= 0 {
		return q.Where("created < ?", createdAt)
	}
	return q.Where("(created < ? OR (created = ? AND id < ?))", createdAt, createdAt, cursor.ID)
}
