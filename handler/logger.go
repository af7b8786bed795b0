package handler

import (
	"fmt"

	"github.com/goliatone/go-logtrail/pkg/types"
	"github.com/sirupsen/logrus"
)

// FieldInternal marks entries written by LogrusLogger. The hook skips them,
// so the adapter may wrap the logger the hook is attached to.
const FieldInternal = "logtrail_internal"

// LogrusLogger adapts a logrus entry to types.Logger. Fields are passed as
// alternating key/value pairs.
type LogrusLogger struct {
	entry *logrus.Entry
}

var _ types.Logger = (*LogrusLogger)(nil)

// NewLogrusLogger wraps entry; nil falls back to the standard logger.
func NewLogrusLogger(entry *logrus.Entry) *LogrusLogger {
	if entry == nil {
		entry = logrus.NewEntry(logrus.StandardLogger())
	}
	return &LogrusLogger{entry: entry}
}

// Debug implements types.Logger.
func (l *LogrusLogger) Debug(msg string, fields ...any) {
	l.entry.WithFields(toFields(fields)).Debug(msg)
}

// Info implements types.Logger.
func (l *LogrusLogger) Info(msg string, fields ...any) {
	l.entry.WithFields(toFields(fields)).Info(msg)
}

// Error implements types.Logger.
func (l *LogrusLogger) Error(msg string, err error, fields ...any) {
	l.entry.WithFields(toFields(fields)).WithError(err).Error(msg)
}

func toFields(pairs []any) logrus.Fields {
	fields := make(logrus.Fields, (len(pairs)+1)/2+1)
	fields[FieldInternal] = true
	for i := 0; i < len(pairs); i += 2 {
		key := fmt.Sprint(pairs[i])
		if i+1 >= len(pairs) {
			fields[key] = nil
			continue
		}
		fields[key] = pairs[i+1]
	}
	return fields
}
