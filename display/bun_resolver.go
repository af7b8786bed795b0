package display

import (
	"context"
	"database/sql"
	"errors"

	"github.com/goliatone/go-logtrail/registry"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// BunResolver loads related rows from the target descriptor table. Every
// call issues a fresh query; nothing is cached.
type BunResolver struct {
	db *bun.DB
}

// NewBunResolver constructs a resolver reading through db.
func NewBunResolver(db *bun.DB) (*BunResolver, error) {
	if db == nil {
		return nil, errors.New("display: db required")
	}
	return &BunResolver{db: db}, nil
}

var _ Resolver = (*BunResolver)(nil)

// Resolve performs a point query by key.
func (r *BunResolver) Resolve(ctx context.Context, target *registry.Descriptor, key string, id any) (string, bool, error) {
	if target == nil || target.Table == "" {
		return "", false, nil
	}
	row := map[string]any{}
	err := r.db.NewSelect().
		Table(target.Table).
		Where("? = ?", bun.Ident(key), id).
		Limit(1).
		Scan(ctx, &row)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, repository.MapDatabaseError(err, repository.DetectDriver(r.db))
	}
	if len(row) == 0 {
		return "", false, nil
	}
	return target.DisplayString(row), true, nil
}

// ResolveMany performs a membership query by key.
func (r *BunResolver) ResolveMany(ctx context.Context, target *registry.Descriptor, key string, ids []any) ([]string, error) {
	if target == nil || target.Table == "" || len(ids) == 0 {
		return []string{}, nil
	}
	var rows []map[string]any
	err := r.db.NewSelect().
		Table(target.Table).
		Where("? IN (?)", bun.Ident(key), bun.In(ids)).
		Scan(ctx, &rows)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, repository.MapDatabaseError(err, repository.DetectDriver(r.db))
	}
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, target.DisplayString(row))
	}
	return out, nil
}
