package command

import (
	"context"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-logtrail/pkg/types"
)

// LogInput wraps a record to persist through the RecordSink.
type LogInput struct {
	Record types.Record
}

// Type implements gocommand.Message.
func (LogInput) Type() string {
	return "command.logs.log"
}

// Validate implements gocommand.Message. Blank messages are accepted.
func (input LogInput) Validate() error {
	record := input.Record
	if record.Level != "" && !record.Level.Valid() {
		return types.ErrInvalidLevel
	}
	if !record.Action.Valid() {
		return types.ErrInvalidAction
	}
	if record.HasObjectData() && strings.TrimSpace(record.ObjectName) == "" {
		return ErrObjectNameRequired
	}
	return nil
}

// LogCommand persists log records.
type LogCommand struct {
	sink   types.RecordSink
	hooks  types.Hooks
	clock  types.Clock
	logger types.Logger
}

// LogConfig wires dependencies for the log command.
type LogConfig struct {
	Sink   types.RecordSink
	Hooks  types.Hooks
	Clock  types.Clock
	Logger types.Logger
}

// NewLogCommand constructs the logging command handler.
func NewLogCommand(cfg LogConfig) *LogCommand {
	return &LogCommand{
		sink:   cfg.Sink,
		hooks:  cfg.Hooks,
		clock:  safeClock(cfg.Clock),
		logger: safeLogger(cfg.Logger),
	}
}

var (
	_ gocommand.Commander[LogInput] = (*LogCommand)(nil)
	_ types.RecordSink              = (*LogCommand)(nil)
)

// Execute validates and persists the supplied record.
func (c *LogCommand) Execute(ctx context.Context, input LogInput) error {
	if c.sink == nil {
		return types.ErrMissingSink
	}
	if err := input.Validate(); err != nil {
		return err
	}
	record := input.Record
	if record.Level == "" {
		record.Level = types.LevelNotSet
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now(c.clock)
	}
	if err := c.sink.Log(ctx, record); err != nil {
		c.logger.Error("logtrail: persist record failed", err, "object_name", record.ObjectName)
		return err
	}
	emitLogHook(ctx, c.hooks, record)
	return nil
}

// Log lets the command stand in as the sink of the logging hook.
func (c *LogCommand) Log(ctx context.Context, record types.Record) error {
	return c.Execute(ctx, LogInput{Record: record})
}
