package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-logtrail/display"
	"github.com/goliatone/go-logtrail/pkg/types"
	"github.com/goliatone/go-logtrail/registry"
	"github.com/goliatone/go-logtrail/snapshot"
	"github.com/stretchr/testify/require"
)

type stubRowSource struct {
	label      string
	object     *snapshot.Instance
	objectErr  error
	changes    display.Mapping
	changesErr error
}

func (s stubRowSource) ObjectTypeLabel(types.Record) string { return s.label }

func (s stubRowSource) Object(types.Record) (*snapshot.Instance, error) {
	return s.object, s.objectErr
}

func (s stubRowSource) Changes(context.Context, types.Record) (display.Mapping, error) {
	return s.changes, s.changesErr
}

func orderInstance(id any) *snapshot.Instance {
	inst := snapshot.NewInstance(&registry.Descriptor{Name: "shop.order", IDField: "id"})
	inst.Set("id", id)
	return inst
}

func TestBuildRows(t *testing.T) {
	stamp := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	records := []types.Record{{
		ID:        4,
		Message:   "order saved",
		Action:    types.ActionUpdated,
		Level:     types.LevelWarning,
		Actor:     &types.Actor{Username: "ada"},
		CreatedAt: stamp,
	}}
	src := stubRowSource{
		label:   "Order",
		object:  orderInstance(int64(7)),
		changes: display.Mapping{{Label: "Total", Value: "15.00"}},
	}

	rows := BuildRows(context.Background(), records, src, nil)
	require.Len(t, rows, 1)
	row := rows[0]
	require.Equal(t, int64(4), row.ID)
	require.Equal(t, "order saved", row.Message)
	require.Equal(t, Badge{Label: "Updated", Color: "#fff3cd"}, row.Action)
	require.Equal(t, Badge{Label: "WARNING", Color: "#ffc107"}, row.Level)
	require.Equal(t, "Order (id: 7)", row.Object)
	require.Equal(t, src.changes, row.Changes)
	require.Equal(t, "ada", row.Username)
	require.Equal(t, stamp, row.Time)
}

func TestBuildRows_DegradesOnErrors(t *testing.T) {
	records := []types.Record{{ID: 1, Message: "m"}}
	src := stubRowSource{
		label:      "Order",
		objectErr:  errors.New("bad snapshot"),
		changesErr: errors.New("db down"),
	}
	rows := BuildRows(context.Background(), records, src, types.NopLogger{})
	require.Empty(t, rows[0].Object)
	require.Nil(t, rows[0].Changes)
	require.Equal(t, Badge{Label: "", Color: "#e2e3e5"}, rows[0].Action)
	require.Equal(t, Badge{Label: "", Color: "#6c757d"}, rows[0].Level)

	rows = BuildRows(context.Background(), records, stubRowSource{}, nil)
	require.Empty(t, rows[0].Object, "unknown types have no object label")
}

func TestBadges(t *testing.T) {
	require.Equal(t, "#f8d7da", ActionBadge(types.ActionDeleted).Color)
	require.Equal(t, "#d1ecf1", ActionBadge(types.ActionCreated).Color)
	require.Equal(t, Badge{Label: "Other", Color: "#e2e3e5"}, ActionBadge(types.ActionOther))
	require.Equal(t, "#dc3545", LevelBadge(types.LevelCritical).Color)
	require.Equal(t, "#dc3545", LevelBadge(types.LevelError).Color)
	require.Equal(t, "#17a2b8", LevelBadge(types.LevelInfo).Color)
	require.Equal(t, "#6c757d", LevelBadge(types.LevelDebug).Color)
}

func TestChoices(t *testing.T) {
	reg := registry.MustNew(&registry.Descriptor{Name: "shop.order", LogName: "order", Label: "Order"})
	choices := Choices(reg)
	require.Len(t, choices.Actions, 4)
	require.Equal(t, registry.Choice{Value: "created", Label: "Created"}, choices.Actions[0])
	require.Len(t, choices.Levels, len(types.Levels()))
	require.Equal(t, []registry.Choice{{Value: "order", Label: "Order"}}, choices.ObjectNames)
	require.Nil(t, Choices(nil).ObjectNames)
}
