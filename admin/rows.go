package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-logtrail/display"
	"github.com/goliatone/go-logtrail/pkg/types"
	"github.com/goliatone/go-logtrail/snapshot"
)

// RowSource exposes the object views a list row needs. query.ObjectLogQuery
// satisfies it.
type RowSource interface {
	ObjectTypeLabel(record types.Record) string
	Object(record types.Record) (*snapshot.Instance, error)
	Changes(ctx context.Context, record types.Record) (display.Mapping, error)
}

// Row is one line of the log list view.
type Row struct {
	ID       int64
	Message  string
	Action   Badge
	Object   string
	Changes  display.Mapping
	Time     time.Time
	Username string
	Level    Badge
}

// BuildRows renders records into list rows. Object lookups that fail leave
// the object and changes cells empty.
func BuildRows(ctx context.Context, records []types.Record, src RowSource, logger types.Logger) []Row {
	if logger == nil {
		logger = types.NopLogger{}
	}
	rows := make([]Row, 0, len(records))
	for _, record := range records {
		row := Row{
			ID:       record.ID,
			Message:  record.Message,
			Action:   ActionBadge(record.Action),
			Time:     record.CreatedAt,
			Username: record.Username(),
			Level:    LevelBadge(record.Level),
		}
		if src != nil {
			row.Object = objectLabel(record, src, logger)
			changes, err := src.Changes(ctx, record)
			if err != nil {
				logger.Error("logtrail: compute changes failed", err, "log_id", record.ID)
			} else {
				row.Changes = changes
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func objectLabel(record types.Record, src RowSource, logger types.Logger) string {
	label := src.ObjectTypeLabel(record)
	if label == "" {
		return ""
	}
	obj, err := src.Object(record)
	if err != nil {
		logger.Error("logtrail: rebuild object failed", err, "log_id", record.ID)
		return ""
	}
	if obj == nil {
		return ""
	}
	id, _ := obj.ID()
	return fmt.Sprintf("%s (id: %s)", label, display.Value(id))
}
