package query

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-logtrail/pkg/types"
)

// LogFeedQuery renders paginated log lists for the admin view.
type LogFeedQuery struct {
	repo types.RecordRepository
}

// NewLogFeedQuery constructs the feed query helper.
func NewLogFeedQuery(repo types.RecordRepository) *LogFeedQuery {
	return &LogFeedQuery{repo: repo}
}

var _ gocommand.Querier[types.LogFilter, types.LogPage] = (*LogFeedQuery)(nil)

// Query fetches a page of log records via the injected repository.
func (q *LogFeedQuery) Query(ctx context.Context, filter types.LogFilter) (types.LogPage, error) {
	if q.repo == nil {
		return types.LogPage{}, types.ErrMissingRepository
	}
	if err := filter.Validate(); err != nil {
		return types.LogPage{}, err
	}
	return q.repo.ListLogs(ctx, filter)
}

// LogStatsQuery aggregates record counts per level and action.
type LogStatsQuery struct {
	repo types.RecordRepository
}

// NewLogStatsQuery constructs the stats helper.
func NewLogStatsQuery(repo types.RecordRepository) *LogStatsQuery {
	return &LogStatsQuery{repo: repo}
}

var _ gocommand.Querier[types.LogStatsFilter, types.LogStats] = (*LogStatsQuery)(nil)

// Query returns aggregate counts for UI widgets.
func (q *LogStatsQuery) Query(ctx context.Context, filter types.LogStatsFilter) (types.LogStats, error) {
	if q.repo == nil {
		return types.LogStats{}, types.ErrMissingRepository
	}
	if err := filter.Validate(); err != nil {
		return types.LogStats{}, err
	}
	return q.repo.LogStats(ctx, filter)
}
