package logs

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/goliatone/go-logtrail/pkg/types"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

const (
	defaultPageSize = 30
	maxPageSize     = 200
)

// RepositoryConfig wires the Bun-backed log repository.
type RepositoryConfig struct {
	DB    *bun.DB
	Clock types.Clock
}

// Repository persists log records and exposes query helpers.
type Repository struct {
	db    *bun.DB
	clock types.Clock
}

// NewRepository constructs a repository that implements both RecordSink and
// RecordRepository interfaces.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if cfg.DB == nil {
		return nil, errors.New("logs: db required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	return &Repository{
		db:    cfg.DB,
		clock: clock,
	}, nil
}

var (
	_ types.RecordSink       = (*Repository)(nil)
	_ types.RecordRepository = (*Repository)(nil)
)

// Log persists a record into the database.
func (r *Repository) Log(ctx context.Context, record types.Record) error {
	_, err := r.Create(ctx, record)
	return err
}

// Create persists a record and returns it with the assigned primary key.
func (r *Repository) Create(ctx context.Context, record types.Record) (*types.Record, error) {
	entry := fromDomain(record)
	if entry.Created.IsZero() {
		entry.Created = r.clock.Now()
	}
	entry.Created = entry.Created.UTC()
	if _, err := r.db.NewInsert().Model(entry).Returning("id").Exec(ctx); err != nil {
		return nil, repository.MapDatabaseError(err, repository.DetectDriver(r.db))
	}
	return toDomainPtr(entry), nil
}

// GetLog returns the record stored under id.
func (r *Repository) GetLog(ctx context.Context, id int64) (*types.Record, error) {
	entry := &Entry{}
	err := r.db.NewSelect().
		Model(entry).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.NewRecordNotFound()
	}
	if err != nil {
		return nil, repository.MapDatabaseError(err, repository.DetectDriver(r.db))
	}
	return toDomainPtr(entry), nil
}

// ListLogs returns a page filtered by the supplied criteria, newest first.
func (r *Repository) ListLogs(ctx context.Context, filter types.LogFilter) (types.LogPage, error) {
	pagination := normalizePagination(filter.Pagination, defaultPageSize, maxPageSize)

	var rows []Entry
	q := r.db.NewSelect().Model(&rows)
	q = applyLogFilter(q, filter)
	if filter.Cursor != nil {
		q = ApplyCursorPagination(q, filter.Cursor, pagination.Limit)
	} else {
		q = q.OrderExpr("created DESC, id DESC").
			Limit(pagination.Limit).
			Offset(pagination.Offset)
	}

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return types.LogPage{}, repository.MapDatabaseError(err, repository.DetectDriver(r.db))
	}

	records := make([]types.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, toDomain(&row))
	}
	page := types.LogPage{
		Records: records,
		Total:   total,
	}
	if filter.Cursor != nil {
		page.HasMore = total > len(records)
	} else {
		page.NextOffset = pagination.Offset + pagination.Limit
		page.HasMore = pagination.Offset+pagination.Limit < total
	}
	if page.HasMore && len(records) > 0 {
		last := records[len(records)-1]
		page.NextCursor = &types.LogCursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return page, nil
}

// LogStats aggregates counts grouped by level and by action.
func (r *Repository) LogStats(ctx context.Context, filter types.LogStatsFilter) (types.LogStats, error) {
	stats := types.LogStats{
		ByLevel:  make(map[types.Level]int),
		ByAction: make(map[types.Action]int),
	}

	type row struct {
		Bucket string `bun:"bucket"`
		Total  int    `bun:"total"`
	}

	var levels []row
	q := r.db.NewSelect().
		Model((*Entry)(nil)).
		ColumnExpr("level AS bucket").
		ColumnExpr("COUNT(*) AS total").
		Group("level")
	if err := applyStatsFilter(q, filter).Scan(ctx, &levels); err != nil {
		return stats, repository.MapDatabaseError(err, repository.DetectDriver(r.db))
	}
	for _, rec := range levels {
		stats.ByLevel[types.Level(rec.Bucket)] = rec.Total
		stats.Total += rec.Total
	}

	var actions []row
	q = r.db.NewSelect().
		Model((*Entry)(nil)).
		ColumnExpr("action AS bucket").
		ColumnExpr("COUNT(*) AS total").
		Where("action <> ''").
		Group("action")
	if err := applyStatsFilter(q, filter).Scan(ctx, &actions); err != nil {
		return stats, repository.MapDatabaseError(err, repository.DetectDriver(r.db))
	}
	for _, rec := range actions {
		stats.ByAction[types.Action(rec.Bucket)] = rec.Total
	}
	return stats, nil
}

// PreviousForObject returns the record logged for the same object immediately
// before record, by primary key. Records without a snapshot have no previous.
func (r *Repository) PreviousForObject(ctx context.Context, record types.Record) (*types.Record, error) {
	if !record.HasObjectData() {
		return nil, nil
	}
	entry := &Entry{}
	q := r.db.NewSelect().
		Model(entry).
		Where("id < ?", record.ID).
		Where("object_name = ?", record.ObjectName)
	if record.ObjectID == nil {
		q = q.Where("object_id IS NULL")
	} else {
		q = q.Where("object_id = ?", *record.ObjectID)
	}
	err := q.OrderExpr("id DESC").Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, repository.MapDatabaseError(err, repository.DetectDriver(r.db))
	}
	return toDomainPtr(entry), nil
}

func applyLogFilter(q *bun.SelectQuery, filter types.LogFilter) *bun.SelectQuery {
	if username := strings.TrimSpace(filter.Username); username != "" {
		q = q.Where("LOWER(username) LIKE ?", containsPattern(username))
	}
	if filter.ObjectID != nil {
		q = q.Where("object_id = ?", *filter.ObjectID)
	}
	if message := strings.TrimSpace(filter.Message); message != "" {
		q = q.Where("LOWER(message) LIKE ?", containsPattern(message))
	}
	if len(filter.Actions) > 0 {
		q = q.Where("action IN (?)", bun.In(filter.Actions))
	}
	if len(filter.Levels) > 0 {
		q = q.Where("level IN (?)", bun.In(filter.Levels))
	}
	if len(filter.ObjectNames) > 0 {
		q = q.Where("object_name IN (?)", bun.In(filter.ObjectNames))
	}
	if filter.Since != nil && !filter.Since.IsZero() {
		q = q.Where("created >= ?", filter.Since.UTC())
	}
	if filter.Until != nil && !filter.Until.IsZero() {
		q = q.Where("created <= ?", filter.Until.UTC())
	}
	return q
}

func applyStatsFilter(q *bun.SelectQuery, filter types.LogStatsFilter) *bun.SelectQuery {
	if len(filter.ObjectNames) > 0 {
		q = q.Where("object_name IN (?)", bun.In(filter.ObjectNames))
	}
	if filter.Since != nil && !filter.Since.IsZero() {
		q = q.Where("created >= ?", filter.Since.UTC())
	}
	if filter.Until != nil && !filter.Until.IsZero() {
		q = q.Where("created <= ?", filter.Until.UTC())
	}
	return q
}

func containsPattern(value string) string {
	return "%" + strings.ToLower(value) + "%"
}

func normalizePagination(p types.Pagination, def, max int) types.Pagination {
	if p.Limit <= 0 {
		p.Limit = def
	}
	if p.Limit > max {
		p.Limit = max
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

func fromDomain(record types.Record) *Entry {
	level := record.Level
	if level == "" {
		level = types.LevelNotSet
	}
	return &Entry{
		ID:              record.ID,
		Action:          string(record.Action),
		Message:         record.Message,
		FuncName:        record.FuncName,
		Level:           string(level),
		HTTPPath:        record.Request.Path,
		HTTPMethod:      record.Request.Method,
		HTTPRequestGet:  record.Request.Query,
		HTTPRequestPost: record.Request.Body,
		HTTPReferrer:    record.Request.Referrer,
		UserID:          record.UserID(),
		Username:        record.Username(),
		ObjectName:      record.ObjectName,
		ObjectID:        record.ObjectID,
		ObjectData:      record.ObjectData,
		Extra:           record.Extra,
		Created:         record.CreatedAt,
	}
}

func toDomain(entry *Entry) types.Record {
	record := types.Record{
		ID:       entry.ID,
		Message:  entry.Message,
		FuncName: entry.FuncName,
		Level:    types.Level(entry.Level),
		Action:   types.Action(entry.Action),
		Request: types.RequestInfo{
			Method:   entry.HTTPMethod,
			Path:     entry.HTTPPath,
			Referrer: entry.HTTPReferrer,
			Query:    entry.HTTPRequestGet,
			Body:     entry.HTTPRequestPost,
		},
		ObjectName: entry.ObjectName,
		ObjectID:   entry.ObjectID,
		ObjectData: entry.ObjectData,
		Extra:      entry.Extra,
		CreatedAt:  entry.Created.UTC(),
	}
	if entry.UserID != nil || entry.Username != "" {
		record.Actor = &types.Actor{ID: entry.UserID, Username: entry.Username}
	}
	return record
}

func toDomainPtr(entry *Entry) *types.Record {
	if entry == nil {
		return nil
	}
	record := toDomain(entry)
	return &record
}
