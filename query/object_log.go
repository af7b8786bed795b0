package query

import (
	"context"

	"github.com/goliatone/go-logtrail/changes"
	"github.com/goliatone/go-logtrail/display"
	"github.com/goliatone/go-logtrail/pkg/types"
	"github.com/goliatone/go-logtrail/registry"
	"github.com/goliatone/go-logtrail/snapshot"
)

// ObjectLogQuery exposes the object-centric views of a stored record: its
// snapshot, the rendered mapping and what changed since the previous record
// for the same object. Records whose object name is not registered yield nil
// results.
type ObjectLogQuery struct {
	repo      types.RecordRepository
	registry  *registry.Registry
	formatter *display.Formatter
	logger    types.Logger
}

// ObjectLogConfig wires dependencies for the object log helpers.
type ObjectLogConfig struct {
	Repository types.RecordRepository
	Registry   *registry.Registry
	Resolver   display.Resolver
	Logger     types.Logger
}

// NewObjectLogQuery constructs the object log helper.
func NewObjectLogQuery(cfg ObjectLogConfig) *ObjectLogQuery {
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &ObjectLogQuery{
		repo:      cfg.Repository,
		registry:  cfg.Registry,
		formatter: display.NewFormatter(cfg.Registry, cfg.Resolver),
		logger:    logger,
	}
}

// Descriptor returns the tracked type the record refers to.
func (q *ObjectLogQuery) Descriptor(record types.Record) (*registry.Descriptor, bool) {
	if q.registry == nil || record.ObjectName == "" {
		return nil, false
	}
	return q.registry.ByLogName(record.ObjectName)
}

// ObjectTypeLabel returns the human readable name of the record's type, or
// an empty string when the type is not registered.
func (q *ObjectLogQuery) ObjectTypeLabel(record types.Record) string {
	desc, ok := q.Descriptor(record)
	if !ok {
		return ""
	}
	return desc.DisplayLabel()
}

// ObjectData parses the stored snapshot.
func (q *ObjectLogQuery) ObjectData(record types.Record) (snapshot.Snapshot, error) {
	if !record.HasObjectData() {
		return nil, nil
	}
	return snapshot.Parse(record.ObjectData)
}

// Object rebuilds an unsaved instance of the logged object.
func (q *ObjectLogQuery) Object(record types.Record) (*snapshot.Instance, error) {
	desc, ok := q.Descriptor(record)
	if !ok {
		return nil, nil
	}
	snap, err := q.ObjectData(record)
	if err != nil {
		return nil, err
	}
	return snapshot.Decode(snap, desc), nil
}

// ObjectDataDisplay renders the stored snapshot for display.
func (q *ObjectLogQuery) ObjectDataDisplay(ctx context.Context, record types.Record) (display.Mapping, error) {
	desc, ok := q.Descriptor(record)
	if !ok {
		q.logger.Debug("logtrail: object type not registered", "object_name", record.ObjectName, "log_id", record.ID)
		return nil, nil
	}
	snap, err := q.ObjectData(record)
	if err != nil || snap == nil {
		return nil, err
	}
	return q.formatter.Format(ctx, snap, desc)
}

// PreviousObjectLog returns the record logged for the same object right
// before this one.
func (q *ObjectLogQuery) PreviousObjectLog(ctx context.Context, record types.Record) (*types.Record, error) {
	if q.repo == nil {
		return nil, types.ErrMissingRepository
	}
	return q.repo.PreviousForObject(ctx, record)
}

// Changes returns what differs from the previous record of the same object.
// The first record of an object reports its whole mapping.
func (q *ObjectLogQuery) Changes(ctx context.Context, record types.Record) (display.Mapping, error) {
	current, err := q.ObjectDataDisplay(ctx, record)
	if err != nil || current == nil {
		return nil, err
	}
	previous, err := q.PreviousObjectLog(ctx, record)
	if err != nil {
		return nil, err
	}
	if previous == nil {
		return changes.ForRecord(nil, current, false), nil
	}
	before, err := q.ObjectDataDisplay(ctx, *previous)
	if err != nil {
		return nil, err
	}
	return changes.ForRecord(before, current, true), nil
}
