package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-logtrail/logs"
	"github.com/goliatone/go-logtrail/pkg/authctx"
	"github.com/goliatone/go-logtrail/pkg/types"
	"github.com/goliatone/go-logtrail/registry"
	"github.com/goliatone/go-logtrail/snapshot"
	"github.com/goliatone/go-masker"
	"github.com/sirupsen/logrus"
)

// Entry field keys read by the hook.
const (
	FieldRequest    = "request"
	FieldObject     = "object"
	FieldObjectName = "object_name"
	FieldObjectID   = "object_id"
	FieldAction     = "action"
	FieldExtra      = "extra"
)

// EmitExtraFunc runs after the standard fields are mapped and before the
// record is persisted, so hosts can copy additional entry fields.
type EmitExtraFunc func(ctx context.Context, record *types.Record, entry *logrus.Entry)

// Config wires the logrus hook.
type Config struct {
	Sink     types.RecordSink
	Registry *registry.Registry
	// Levels defaults to logrus.AllLevels.
	Levels []logrus.Level
	// CaptureRequestParams stores query and form params on every record.
	// When false, FeatureGate may still enable capture per request.
	CaptureRequestParams bool
	FeatureGate          featuregate.FeatureGate
	Masker               *masker.Masker
	ActorResolver        ActorResolver
	EmitExtra            EmitExtraFunc
	// Logger reports hook diagnostics. A custom Logger must not write through
	// the logrus logger the hook is attached to; LogrusLogger is safe because
	// the hook skips its entries.
	Logger types.Logger
}

// Hook persists logrus entries as log records.
type Hook struct {
	sink                 types.RecordSink
	registry             *registry.Registry
	levels               []logrus.Level
	captureRequestParams bool
	gate                 featuregate.FeatureGate
	masker               *masker.Masker
	actorResolver        ActorResolver
	emitExtra            EmitExtraFunc
	logger               types.Logger
}

var _ logrus.Hook = (*Hook)(nil)

// NewHook validates the configuration and builds the hook.
func NewHook(cfg Config) (*Hook, error) {
	if cfg.Sink == nil {
		return nil, goerrors.Wrap(types.ErrMissingSink, goerrors.CategoryInternal, "go-logtrail: logging hook requires a record sink").
			WithCode(goerrors.CodeInternal)
	}
	levels := cfg.Levels
	if len(levels) == 0 {
		levels = logrus.AllLevels
	}
	resolver := cfg.ActorResolver
	if resolver == nil {
		resolver = authctx.ActorFromRequest
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &Hook{
		sink:                 cfg.Sink,
		registry:             cfg.Registry,
		levels:               levels,
		captureRequestParams: cfg.CaptureRequestParams,
		gate:                 cfg.FeatureGate,
		masker:               defaultMasker(cfg.Masker),
		actorResolver:        resolver,
		emitExtra:            cfg.EmitExtra,
		logger:               logger,
	}, nil
}

// Levels implements logrus.Hook.
func (h *Hook) Levels() []logrus.Level {
	return h.levels
}

// Fire implements logrus.Hook. Degraded input never fails the call; only
// sink errors are returned. Entries tagged with FieldInternal are ignored.
func (h *Hook) Fire(entry *logrus.Entry) error {
	if _, internal := entry.Data[FieldInternal]; internal {
		return nil
	}
	ctx := entry.Context
	if ctx == nil {
		ctx = context.Background()
	}
	record := h.Record(ctx, entry)
	return h.sink.Log(ctx, record)
}

// Record maps an entry into a record without persisting it.
func (h *Hook) Record(ctx context.Context, entry *logrus.Entry) types.Record {
	record := types.Record{
		Message:  entry.Message,
		FuncName: funcName(entry),
		Level:    MapLevel(entry.Level),
	}
	if !entry.Time.IsZero() {
		record.CreatedAt = entry.Time.UTC()
	}

	if r, ok := entry.Data[FieldRequest].(*http.Request); ok {
		h.applyRequest(ctx, &record, r)
	}
	if value, ok := entry.Data[FieldObject]; ok && value != nil {
		h.applyObject(&record, value)
	}
	if value, ok := entry.Data[FieldObjectName]; ok && value != nil {
		record.ObjectName = fmt.Sprint(value)
	}
	if value, ok := entry.Data[FieldObjectID]; ok {
		record.ObjectID = objectID(value)
	}
	if value, ok := entry.Data[FieldAction]; ok && value != nil {
		action, err := types.ParseAction(fmt.Sprint(value))
		if err != nil {
			h.logger.Error("logtrail: unknown action dropped", err, "action", value)
		} else {
			record.Action = action
		}
	}
	if value, ok := entry.Data[FieldExtra]; ok && value != nil {
		record.Extra = h.encodeExtra(value)
	}

	if h.emitExtra != nil {
		h.emitExtra(ctx, &record, entry)
	}
	return record
}

func (h *Hook) applyObject(record *types.Record, value any) {
	tracked, ok := value.(snapshot.Trackable)
	if !ok {
		h.logger.Debug("logtrail: object field is not trackable", "type", fmt.Sprintf("%T", value))
		return
	}
	id := tracked.LogID()
	record.ObjectID = &id
	record.ObjectName = tracked.LogName()

	if h.registry == nil {
		return
	}
	desc, ok := h.registry.ByLogName(record.ObjectName)
	if !ok {
		h.logger.Debug("logtrail: object type not registered", "object_name", record.ObjectName)
		return
	}
	text, err := snapshot.Marshal(snapshot.Encode(tracked, desc))
	if err != nil {
		h.logger.Error("logtrail: encode object snapshot failed", err, "object_name", record.ObjectName)
		return
	}
	record.ObjectData = text
}

func (h *Hook) encodeExtra(value any) string {
	if payload, ok := value.(map[string]any); ok {
		value = logs.SanitizeParams(h.masker, payload)
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		h.logger.Error("logtrail: encode extra data failed", err)
		return ""
	}
	return string(encoded)
}

// MapLevel translates logrus severities into stored level names.
func MapLevel(level logrus.Level) types.Level {
	switch level {
	case logrus.PanicLevel, logrus.FatalLevel:
		return types.LevelCritical
	case logrus.ErrorLevel:
		return types.LevelError
	case logrus.WarnLevel:
		return types.LevelWarning
	case logrus.InfoLevel:
		return types.LevelInfo
	case logrus.DebugLevel, logrus.TraceLevel:
		return types.LevelDebug
	default:
		return types.LevelNotSet
	}
}

// funcName renders the caller as "file.Func; line N". Entries only carry a
// caller when the logger reports callers.
func funcName(entry *logrus.Entry) string {
	if entry.Caller == nil {
		return ""
	}
	module := strings.TrimSuffix(filepath.Base(entry.Caller.File), ".go")
	function := entry.Caller.Function
	if idx := strings.LastIndex(function, "."); idx >= 0 {
		function = function[idx+1:]
	}
	return fmt.Sprintf("%s.%s; line %d", module, function, entry.Caller.Line)
}

func objectID(value any) *int64 {
	if ptr, ok := value.(*int64); ok {
		return ptr
	}
	id, ok := snapshot.Int64(value)
	if !ok {
		return nil
	}
	return &id
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
