package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"runtime"
	"strings"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-logtrail/command"
	"github.com/goliatone/go-logtrail/pkg/authctx"
	"github.com/goliatone/go-logtrail/pkg/types"
	"github.com/goliatone/go-logtrail/registry"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	records []types.Record
	err     error
}

func (s *recordingSink) Log(_ context.Context, record types.Record) error {
	s.records = append(s.records, record)
	return s.err
}

type stubFeatureGate struct {
	enabled bool
	err     error
	keys    []string
	chains  []featuregate.ScopeChain
}

func (s *stubFeatureGate) Enabled(_ context.Context, key string, opts ...featuregate.ResolveOption) (bool, error) {
	s.keys = append(s.keys, key)
	req := &featuregate.ResolveRequest{}
	for _, opt := range opts {
		opt(req)
	}
	if req.ScopeChain != nil {
		s.chains = append(s.chains, *req.ScopeChain)
	}
	if s.err != nil {
		return false, s.err
	}
	return s.enabled, nil
}

type order struct {
	id    int64
	total decimal.Decimal
}

func (o order) LogID() int64    { return o.id }
func (o order) LogName() string { return "order" }

func (o order) FieldValue(name string) (any, error) {
	switch name {
	case "id":
		return o.id, nil
	case "total":
		return o.total, nil
	}
	return nil, errors.New("unknown field")
}

func testRegistry() *registry.Registry {
	return registry.MustNew(&registry.Descriptor{
		Name:    "shop.order",
		LogName: "order",
		IDField: "id",
		Fields: []registry.Field{
			{Name: "id"},
			{Name: "total", Kind: registry.KindDecimal, Places: 2},
		},
	})
}

func newEntry(fields logrus.Fields) *logrus.Entry {
	entry := logrus.NewEntry(logrus.New()).WithFields(fields)
	entry.Message = "order saved"
	entry.Level = logrus.InfoLevel
	return entry
}

func TestHook_FireMapsEntry(t *testing.T) {
	sink := &recordingSink{}
	hook, err := NewHook(Config{Sink: sink, Registry: testRegistry()})
	require.NoError(t, err)

	stamp := time.Date(2024, 1, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600))
	entry := newEntry(logrus.Fields{
		FieldObject: order{id: 7, total: decimal.RequireFromString("12.5")},
		FieldAction: types.ActionUpdated,
		FieldExtra:  map[string]any{"source": "api"},
	})
	entry.Time = stamp
	entry.Caller = &runtime.Frame{File: "/app/shop/orders.go", Function: "github.com/acme/shop.(*Service).Save", Line: 42}

	require.NoError(t, hook.Fire(entry))
	require.Len(t, sink.records, 1)
	rec := sink.records[0]
	require.Equal(t, "order saved", rec.Message)
	require.Equal(t, types.LevelInfo, rec.Level)
	require.Equal(t, types.ActionUpdated, rec.Action)
	require.Equal(t, "orders.Save; line 42", rec.FuncName)
	require.Equal(t, "order", rec.ObjectName)
	require.Equal(t, int64(7), *rec.ObjectID)
	require.JSONEq(t, `{"id":7,"total":"12.50"}`, rec.ObjectData)
	require.JSONEq(t, `{"source":"api"}`, rec.Extra)
	require.Equal(t, time.UTC, rec.CreatedAt.Location())
	require.True(t, stamp.Equal(rec.CreatedAt))
}

func TestHook_ObjectOverridesAndUnregisteredTypes(t *testing.T) {
	sink := &recordingSink{}
	hook, err := NewHook(Config{Sink: sink, Registry: registry.MustNew()})
	require.NoError(t, err)

	require.NoError(t, hook.Fire(newEntry(logrus.Fields{
		FieldObject: order{id: 7},
	})))
	require.Equal(t, "order", sink.records[0].ObjectName)
	require.Empty(t, sink.records[0].ObjectData, "unregistered types keep name and id only")

	require.NoError(t, hook.Fire(newEntry(logrus.Fields{
		FieldObject:     order{id: 7},
		FieldObjectName: "invoice",
		FieldObjectID:   "12",
		FieldAction:     "renamed",
	})))
	rec := sink.records[1]
	require.Equal(t, "invoice", rec.ObjectName)
	require.Equal(t, int64(12), *rec.ObjectID)
	require.Equal(t, types.ActionNone, rec.Action, "unknown actions are dropped")

	require.NoError(t, hook.Fire(newEntry(logrus.Fields{FieldObject: "not trackable"})))
	require.Empty(t, sink.records[2].ObjectName)
}

func TestHook_RequestData(t *testing.T) {
	sink := &recordingSink{}
	hook, err := NewHook(Config{Sink: sink, CaptureRequestParams: true})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/orders/7?page=2&tag=a&tag=b", strings.NewReader("password=hunter2&note=hi"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.2")
	require.NoError(t, req.ParseForm())
	id := int64(3)
	req = req.WithContext(authctx.WithActor(req.Context(), types.Actor{ID: &id, Username: "ada"}))

	require.NoError(t, hook.Fire(newEntry(logrus.Fields{FieldRequest: req})))
	rec := sink.records[0]
	require.Equal(t, http.MethodPost, rec.Request.Method)
	require.Equal(t, "/orders/7", rec.Request.Path)
	require.Equal(t, "10.0.0.2", rec.Request.Referrer)
	require.Equal(t, "ada", rec.Username())
	require.Equal(t, int64(3), *rec.UserID())
	require.JSONEq(t, `{"page":"2","tag":["a","b"]}`, rec.Request.Query)
	require.Contains(t, rec.Request.Body, `"note":"hi"`)
	require.NotContains(t, rec.Request.Body, "hunter2")
}

func TestHook_RequestParamsDisabledByDefault(t *testing.T) {
	sink := &recordingSink{}
	hook, err := NewHook(Config{Sink: sink})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/orders?page=2", nil)
	require.NoError(t, hook.Fire(newEntry(logrus.Fields{FieldRequest: req})))
	rec := sink.records[0]
	require.Equal(t, "192.0.2.1", rec.Request.Referrer)
	require.Empty(t, rec.Request.Query)
	require.Empty(t, rec.Request.Body)
	require.Nil(t, rec.Actor)
}

func TestHook_RequestParamsFeatureGate(t *testing.T) {
	sink := &recordingSink{}
	gate := &stubFeatureGate{enabled: true}
	hook, err := NewHook(Config{Sink: sink, FeatureGate: gate})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/orders?page=2", nil)
	require.NoError(t, hook.Fire(newEntry(logrus.Fields{FieldRequest: req})))
	require.Equal(t, []string{FeatureRequestParams}, gate.keys)
	require.JSONEq(t, `{"page":"2"}`, sink.records[0].Request.Query)
	require.Empty(t, sink.records[0].Request.Body, "form params are only read once parsed")

	gate.enabled = false
	gate.err = errors.New("gate offline")
	require.NoError(t, hook.Fire(newEntry(logrus.Fields{FieldRequest: req})))
	require.Empty(t, sink.records[1].Request.Query)
	require.Empty(t, gate.chains, "anonymous requests resolve without a scope chain")
}

func TestHook_RequestParamsFeatureGateScopesActor(t *testing.T) {
	sink := &recordingSink{}
	gate := &stubFeatureGate{enabled: true}
	hook, err := NewHook(Config{Sink: sink, FeatureGate: gate})
	require.NoError(t, err)

	id := int64(42)
	req := httptest.NewRequest(http.MethodGet, "/orders?page=2", nil)
	req = req.WithContext(authctx.WithActor(req.Context(), types.Actor{ID: &id, Username: "ada"}))
	require.NoError(t, hook.Fire(newEntry(logrus.Fields{FieldRequest: req})))

	require.Equal(t, []featuregate.ScopeChain{{
		{Kind: featuregate.ScopeUser, ID: "42"},
		{Kind: featuregate.ScopeSystem},
	}}, gate.chains)
	require.JSONEq(t, `{"page":"2"}`, sink.records[0].Request.Query)
}

func TestHook_CustomActorResolverAndEmitExtra(t *testing.T) {
	sink := &recordingSink{}
	hook, err := NewHook(Config{
		Sink: sink,
		ActorResolver: func(r *http.Request) *types.Actor {
			return &types.Actor{Username: r.Header.Get("X-User")}
		},
		EmitExtra: func(_ context.Context, record *types.Record, entry *logrus.Entry) {
			record.Message = record.Message + " by " + entry.Data["source"].(string)
		},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User", "grace")
	require.NoError(t, hook.Fire(newEntry(logrus.Fields{FieldRequest: req, "source": "cron"})))
	require.Equal(t, "grace", sink.records[0].Username())
	require.Equal(t, "order saved by cron", sink.records[0].Message)
}

func TestHook_ExtraEncodeFailureLeavesExtraEmpty(t *testing.T) {
	sink := &recordingSink{}
	hook, err := NewHook(Config{Sink: sink})
	require.NoError(t, err)

	require.NoError(t, hook.Fire(newEntry(logrus.Fields{FieldExtra: make(chan int)})))
	require.Empty(t, sink.records[0].Extra)
}

func TestHook_ReturnsSinkErrors(t *testing.T) {
	sinkErr := errors.New("db down")
	hook, err := NewHook(Config{Sink: &recordingSink{err: sinkErr}})
	require.NoError(t, err)
	require.ErrorIs(t, hook.Fire(newEntry(nil)), sinkErr)
}

func TestNewHookRequiresSink(t *testing.T) {
	_, err := NewHook(Config{})
	require.Error(t, err)
	var richErr *goerrors.Error
	require.True(t, errors.As(err, &richErr))
	require.Equal(t, goerrors.CategoryInternal, richErr.Category)
}

func TestHook_LevelsDefaultToAll(t *testing.T) {
	hook, err := NewHook(Config{Sink: &recordingSink{}})
	require.NoError(t, err)
	require.Equal(t, logrus.AllLevels, hook.Levels())

	hook, err = NewHook(Config{Sink: &recordingSink{}, Levels: []logrus.Level{logrus.ErrorLevel}})
	require.NoError(t, err)
	require.Equal(t, []logrus.Level{logrus.ErrorLevel}, hook.Levels())
}

func TestMapLevel(t *testing.T) {
	cases := map[logrus.Level]types.Level{
		logrus.PanicLevel: types.LevelCritical,
		logrus.FatalLevel: types.LevelCritical,
		logrus.ErrorLevel: types.LevelError,
		logrus.WarnLevel:  types.LevelWarning,
		logrus.InfoLevel:  types.LevelInfo,
		logrus.DebugLevel: types.LevelDebug,
		logrus.TraceLevel: types.LevelDebug,
	}
	for in, want := range cases {
		require.Equal(t, want, MapLevel(in), in.String())
	}
}

func TestParamsToMap(t *testing.T) {
	values := url.Values{"one": {"1"}, "many": {"a", "b"}, "none": {}}
	require.Equal(t, map[string]any{
		"one":  "1",
		"many": []any{"a", "b"},
		"none": "",
	}, paramsToMap(values))
}

func TestHook_AttachedToLogger(t *testing.T) {
	sink := &recordingSink{}
	hook, err := NewHook(Config{Sink: sink, Registry: testRegistry()})
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetReportCaller(true)
	logger.AddHook(hook)

	logger.WithField(FieldObject, order{id: 1, total: decimal.RequireFromString("3")}).Warn("stock low")
	require.Len(t, sink.records, 1)
	require.Equal(t, types.LevelWarning, sink.records[0].Level)
	require.True(t, strings.HasPrefix(sink.records[0].FuncName, "hook_test.TestHook_AttachedToLogger; line "))
	require.JSONEq(t, `{"id":1,"total":"3.00"}`, sink.records[0].ObjectData)
}

func TestHook_PersistsBlankMessage(t *testing.T) {
	sink := &recordingSink{}
	hook, err := NewHook(Config{Sink: command.NewLogCommand(command.LogConfig{Sink: sink}), Registry: testRegistry()})
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.AddHook(hook)

	logger.WithField(FieldObject, order{id: 2, total: decimal.RequireFromString("1")}).Info("")
	require.Len(t, sink.records, 1)
	require.Empty(t, sink.records[0].Message)
	require.Equal(t, "order", sink.records[0].ObjectName)
}

func TestHook_SkipsEntriesFromOwnLogger(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	sink := &recordingSink{err: errors.New("db down")}
	diagnostics := NewLogrusLogger(logrus.NewEntry(logger))
	cmd := command.NewLogCommand(command.LogConfig{Sink: sink, Logger: diagnostics})
	hook, err := NewHook(Config{Sink: cmd, Logger: diagnostics})
	require.NoError(t, err)
	logger.AddHook(hook)

	logger.Error("payment failed")
	require.Len(t, sink.records, 1, "the command's own failure report is not persisted again")
	require.Equal(t, "payment failed", sink.records[0].Message)

	require.NoError(t, hook.Fire(newEntry(logrus.Fields{FieldInternal: true})))
	require.Len(t, sink.records, 1)
}
