package types

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Level mirrors the severity names stored in the log table.
type Level string

const (
	LevelCritical Level = "CRITICAL"
	LevelError    Level = "ERROR"
	LevelWarning  Level = "WARNING"
	LevelInfo     Level = "INFO"
	LevelDebug    Level = "DEBUG"
	LevelNotSet   Level = "NOTSET"
)

// Levels returns every supported severity, most severe first.
func Levels() []Level {
	return []Level{LevelCritical, LevelError, LevelWarning, LevelInfo, LevelDebug, LevelNotSet}
}

// Valid reports whether the level is one of the supported severities.
func (l Level) Valid() bool {
	for _, level := range Levels() {
		if l == level {
			return true
		}
	}
	return false
}

// ParseLevel normalizes a level name. Empty input maps to LevelNotSet.
func ParseLevel(value string) (Level, error) {
	value = strings.ToUpper(strings.TrimSpace(value))
	if value == "" {
		return LevelNotSet, nil
	}
	if value == "WARN" {
		return LevelWarning, nil
	}
	level := Level(value)
	if !level.Valid() {
		return "", ErrInvalidLevel
	}
	return level, nil
}

// Action classifies what happened to the tracked object.
type Action string

const (
	ActionNone    Action = ""
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
	ActionOther   Action = "other"
)

// Actions returns the non-empty action kinds.
func Actions() []Action {
	return []Action{ActionCreated, ActionUpdated, ActionDeleted, ActionOther}
}

// Valid reports whether the action is empty or one of the known kinds.
func (a Action) Valid() bool {
	if a == ActionNone {
		return true
	}
	for _, action := range Actions() {
		if a == action {
			return true
		}
	}
	return false
}

// ParseAction normalizes an action name.
func ParseAction(value string) (Action, error) {
	action := Action(strings.ToLower(strings.TrimSpace(value)))
	if !action.Valid() {
		return "", ErrInvalidAction
	}
	return action, nil
}

// RequestInfo holds the HTTP request context captured with a record. Query and
// Body carry JSON text and stay empty unless parameter capture is enabled.
type RequestInfo struct {
	Method   string
	Path     string
	Referrer string
	Query    string
	Body     string
}

// Actor identifies the user that triggered the log call.
type Actor struct {
	ID       *int64
	Username string
}

// Record is a single append-only log entry.
type Record struct {
	ID         int64
	Message    string
	FuncName   string
	Level      Level
	Action     Action
	Request    RequestInfo
	Actor      *Actor
	ObjectName string
	ObjectID   *int64
	ObjectData string
	Extra      string
	CreatedAt  time.Time
}

// HasObjectData reports whether the record carries a snapshot.
func (r Record) HasObjectData() bool {
	return strings.TrimSpace(r.ObjectData) != ""
}

// UserID returns the actor id when one was captured.
func (r Record) UserID() *int64 {
	if r.Actor == nil {
		return nil
	}
	return r.Actor.ID
}

// Username returns the actor username or an empty string.
func (r Record) Username() string {
	if r.Actor == nil {
		return ""
	}
	return r.Actor.Username
}

// PrettyExtra returns the extra payload indented for display. Malformed or
// empty payloads report false.
func (r Record) PrettyExtra() (string, bool) {
	return prettyJSON(r.Extra)
}

// PrettyRequestQuery returns the captured query params indented for display.
func (r Record) PrettyRequestQuery() (string, bool) {
	return prettyJSON(r.Request.Query)
}

// PrettyRequestBody returns the captured form params indented for display.
func (r Record) PrettyRequestBody() (string, bool) {
	return prettyJSON(r.Request.Body)
}

func prettyJSON(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	var out bytes.Buffer
	if err := json.Indent(&out, []byte(raw), "", "    "); err != nil {
		return "", false
	}
	return out.String(), true
}

// Pagination supports query pagination across admin panels.
type Pagination struct {
	Limit  int
	Offset int
}

// LogFilter collects the list-view filters.
type LogFilter struct {
	Username    string
	ObjectID    *int64
	Message     string
	Actions     []Action
	Levels      []Level
	ObjectNames []string
	Since       *time.Time
	Until       *time.Time
	Pagination  Pagination
	// Cursor switches the feed to keyset pagination; Pagination.Offset is
	// ignored when set.
	Cursor *LogCursor
}

// LogCursor marks the oldest record of a previously returned page.
type LogCursor struct {
	CreatedAt time.Time
	ID        int64
}

// Type implements gocommand.Message for query inputs.
func (LogFilter) Type() string {
	return "query.logs.feed"
}

// Validate implements gocommand.Message.
func (filter LogFilter) Validate() error {
	for _, level := range filter.Levels {
		if !level.Valid() {
			return ErrInvalidLevel
		}
	}
	for _, action := range filter.Actions {
		if !action.Valid() {
			return ErrInvalidAction
		}
	}
	if filter.Since != nil && filter.Until != nil && filter.Until.Before(*filter.Since) {
		return ErrInvalidRange
	}
	return nil
}

// LogPage is a page of records, newest first.
type LogPage struct {
	Records    []Record
	Total      int
	NextOffset int
	NextCursor *LogCursor
	HasMore    bool
}

// LogStatsFilter scopes aggregate queries.
type LogStatsFilter struct {
	ObjectNames []string
	Since       *time.Time
	Until       *time.Time
}

// Type implements gocommand.Message for query inputs.
func (LogStatsFilter) Type() string {
	return "query.logs.stats"
}

// Validate implements gocommand.Message.
func (filter LogStatsFilter) Validate() error {
	if filter.Since != nil && filter.Until != nil && filter.Until.Before(*filter.Since) {
		return ErrInvalidRange
	}
	return nil
}

// LogStats summarizes record counts for dashboard widgets.
type LogStats struct {
	Total    int
	ByLevel  map[Level]int
	ByAction map[Action]int
}

// Hooks groups optional callbacks invoked after key workflows complete.
type Hooks struct {
	AfterLog func(context.Context, Record)
}

// RecordSink is the write-side contract used by the logging hook.
type RecordSink interface {
	Log(context.Context, Record) error
}

// RecordRepository exposes read-side access to stored records.
type RecordRepository interface {
	GetLog(ctx context.Context, id int64) (*Record, error)
	ListLogs(ctx context.Context, filter LogFilter) (LogPage, error)
	LogStats(ctx context.Context, filter LogStatsFilter) (LogStats, error)
	PreviousForObject(ctx context.Context, record Record) (*Record, error)
}

// Clock abstracts time retrieval for deterministic testing.
type Clock interface {
	Now() time.Time
}

// Logger captures basic logging hooks used by the service.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Error(msg string, err error, fields ...any)
}

// SystemClock defers to time.Now for production usage.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// NopLogger discards all log lines.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(string, ...any) {}

// Info implements Logger.
func (NopLogger) Info(string, ...any) {}

// Error implements Logger.
func (NopLogger) Error(string, error, ...any) {}

var (
	// ErrInvalidLevel indicates an unknown severity name.
	ErrInvalidLevel = errors.New("go-logtrail: invalid log level")
	// ErrInvalidAction indicates an unknown action kind.
	ErrInvalidAction = errors.New("go-logtrail: invalid log action")
	// ErrInvalidRange indicates the until bound precedes the since bound.
	ErrInvalidRange = errors.New("go-logtrail: invalid time range")
	// ErrMissingSink occurs when no record sink was supplied.
	ErrMissingSink = errors.New("go-logtrail: missing record sink")
	// ErrMissingRepository occurs when no record repository was supplied.
	ErrMissingRepository = errors.New("go-logtrail: missing record repository")
	// ErrServiceNotReady indicates the service is missing required dependencies.
	ErrServiceNotReady = errors.New("go-logtrail: service not ready")
)
