package command

import (
	"context"
	"time"

	"github.com/goliatone/go-logtrail/pkg/types"
)

func safeClock(clock types.Clock) types.Clock {
	if clock != nil {
		return clock
	}
	return types.SystemClock{}
}

func safeLogger(logger types.Logger) types.Logger {
	if logger != nil {
		return logger
	}
	return types.NopLogger{}
}

func now(clock types.Clock) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock.Now()
}

func emitLogHook(ctx context.Context, hooks types.Hooks, record types.Record) {
	if hooks.AfterLog == nil {
		return
	}
	hooks.AfterLog(ctx, record)
}
