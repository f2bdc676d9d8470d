package obs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

type ctxKey string

const RunIDKey ctxKey = "run_id"

// WithRunID tags the context with the identifier of an optimisation run.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

func RunID(ctx context.Context) string {
	id, _ := ctx.Value(RunIDKey).(string)
	return id
}

// Entry returns a logger carrying the run id found in ctx.
func Entry(ctx context.Context) *logrus.Entry {
	return Logger.WithField("run_id", RunID(ctx))
}

func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	return func(errp *error) {
		entry := Entry(ctx).WithFields(logrus.Fields{
			"op":  name,
			"dur": time.Since(start).Milliseconds(),
		})

		if errp != nil && *errp != nil {
			entry.WithError(*errp).Warn("operation failed")
			return
		}
		entry.Info("operation done")
	}
}
