package admin

import (
	"errors"
	"net/url"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-logtrail/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestParseFilter_AllParams(t *testing.T) {
	values := url.Values{
		"username":      {" ada "},
		"object_id":     {"7"},
		"message":       {"saved"},
		"action":        {"updated", "CREATED", ""},
		"level":         {"error", "warn"},
		"object_name":   {"order", "customer"},
		"datetime_from": {"2024-01-01 10:00"},
		"datetime_to":   {"2024-01-02T10:00:00+02:00"},
		"page":          {"3"},
		"per_page":      {"10"},
	}

	filter, err := ParseFilter(values)
	require.NoError(t, err)
	require.Equal(t, "ada", filter.Username)
	require.Equal(t, int64(7), *filter.ObjectID)
	require.Equal(t, "saved", filter.Message)
	require.Equal(t, []types.Action{types.ActionUpdated, types.ActionCreated}, filter.Actions)
	require.Equal(t, []types.Level{types.LevelError, types.LevelWarning}, filter.Levels)
	require.Equal(t, []string{"order", "customer"}, filter.ObjectNames)
	require.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), *filter.Since)
	require.Equal(t, time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC), *filter.Until)
	require.Equal(t, types.Pagination{Limit: 10, Offset: 20}, filter.Pagination)
	require.Equal(t, 3, Page(filter))
}

func TestParseFilter_Defaults(t *testing.T) {
	filter, err := ParseFilter(url.Values{"page": {"abc"}, "per_page": {"5000"}})
	require.NoError(t, err)
	require.Equal(t, types.Pagination{Limit: MaxPerPage, Offset: 0}, filter.Pagination)
	require.Nil(t, filter.ObjectID)
	require.Nil(t, filter.Since)
	require.Empty(t, filter.Actions)

	filter, err = ParseFilter(url.Values{})
	require.NoError(t, err)
	require.Equal(t, DefaultPerPage, filter.Pagination.Limit)
	require.Equal(t, 1, Page(filter))
}

func TestParseFilter_RejectsMalformedValues(t *testing.T) {
	cases := []url.Values{
		{"object_id": {"seven"}},
		{"action": {"renamed"}},
		{"level": {"LOUD"}},
		{"datetime_from": {"yesterday"}},
		{"datetime_from": {"2024-02-01"}, "datetime_to": {"2024-01-01"}},
	}
	for _, values := range cases {
		_, err := ParseFilter(values)
		require.Error(t, err, values.Encode())

		var richErr *goerrors.Error
		require.True(t, errors.As(err, &richErr), values.Encode())
		require.Equal(t, goerrors.CategoryValidation, richErr.Category)
		require.Equal(t, textCodeInvalidFilter, richErr.TextCode)
	}
}

func TestClampToLastPage(t *testing.T) {
	filter := types.LogFilter{Pagination: types.Pagination{Limit: 30, Offset: 300}}

	clamped := ClampToLastPage(filter, 61)
	require.Equal(t, 60, clamped.Pagination.Offset)
	require.Equal(t, 3, Page(clamped))

	clamped = ClampToLastPage(filter, 0)
	require.Equal(t, 0, clamped.Pagination.Offset)

	inRange := types.LogFilter{Pagination: types.Pagination{Limit: 30, Offset: 30}}
	require.Equal(t, inRange, ClampToLastPage(inRange, 61))
}
