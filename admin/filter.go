package admin

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-logtrail/pkg/types"
)

const (
	// DefaultPerPage matches the page size of the log list view.
	DefaultPerPage = 30
	// MaxPerPage caps per_page requests.
	MaxPerPage = 200

	textCodeInvalidFilter = "LOG_FILTER_INVALID"
)

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseFilter reads list-view filters from query params. Unparseable pages
// fall back to the first page; other malformed values are rejected.
func ParseFilter(values url.Values) (types.LogFilter, error) {
	filter := types.LogFilter{
		Username: strings.TrimSpace(values.Get("username")),
		Message:  strings.TrimSpace(values.Get("message")),
	}

	if raw := strings.TrimSpace(values.Get("object_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return types.LogFilter{}, invalidFilter("object_id", raw, err)
		}
		filter.ObjectID = &id
	}

	for _, raw := range nonEmpty(values["action"]) {
		action, err := types.ParseAction(raw)
		if err != nil {
			return types.LogFilter{}, invalidFilter("action", raw, err)
		}
		filter.Actions = append(filter.Actions, action)
	}
	for _, raw := range nonEmpty(values["level"]) {
		level, err := types.ParseLevel(raw)
		if err != nil {
			return types.LogFilter{}, invalidFilter("level", raw, err)
		}
		filter.Levels = append(filter.Levels, level)
	}
	filter.ObjectNames = nonEmpty(values["object_name"])

	for param, dest := range map[string]**time.Time{
		"datetime_from": &filter.Since,
		"datetime_to":   &filter.Until,
	} {
		raw := strings.TrimSpace(values.Get(param))
		if raw == "" {
			continue
		}
		parsed, err := parseDateTime(raw)
		if err != nil {
			return types.LogFilter{}, invalidFilter(param, raw, err)
		}
		*dest = &parsed
	}

	perPage := DefaultPerPage
	if raw := strings.TrimSpace(values.Get("per_page")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			perPage = min(n, MaxPerPage)
		}
	}
	page := 1
	if n, err := strconv.Atoi(strings.TrimSpace(values.Get("page"))); err == nil && n > 0 {
		page = n
	}
	filter.Pagination = types.Pagination{Limit: perPage, Offset: (page - 1) * perPage}

	if err := filter.Validate(); err != nil {
		return types.LogFilter{}, invalidFilter("datetime_to", values.Get("datetime_to"), err)
	}
	return filter, nil
}

// Page returns the 1-based page number a filter points at.
func Page(filter types.LogFilter) int {
	if filter.Pagination.Limit <= 0 {
		return 1
	}
	return filter.Pagination.Offset/filter.Pagination.Limit + 1
}

// ClampToLastPage moves a filter whose offset runs past total onto the last
// page. Empty result sets stay on page 1.
func ClampToLastPage(filter types.LogFilter, total int) types.LogFilter {
	limit := filter.Pagination.Limit
	if limit <= 0 || total <= 0 {
		filter.Pagination.Offset = 0
		return filter
	}
	if filter.Pagination.Offset >= total {
		filter.Pagination.Offset = (total - 1) / limit * limit
	}
	return filter
}

func parseDateTime(raw string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateTimeLayouts {
		parsed, err := time.Parse(layout, raw)
		if err == nil {
			return parsed.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func nonEmpty(values []string) []string {
	var out []string
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			out = append(out, value)
		}
	}
	return out
}

func invalidFilter(param, value string, err error) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, "go-logtrail: invalid log filter "+param).
		WithCode(goerrors.CodeBadRequest).
		WithTextCode(textCodeInvalidFilter).
		WithMetadata(map[string]any{"param": param, "value": value})
}
