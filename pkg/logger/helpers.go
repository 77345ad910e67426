package logger

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// LogFetch records the outcome of a single image fetch
func LogFetch(l Logger, index int, url string, size int, err error) {
	fields := map[string]interface{}{
		"index": index,
		"url":   url,
	}
	if err != nil {
		l.WithError(err).WarnWithFields("Fetch failed, item skipped", fields)
		return
	}
	fields["bytes"] = size
	l.DebugWithFields("Fetch completed", fields)
}

// LogPersist records the outcome of writing one file to the output target
func LogPersist(l Logger, target, name string, err error) {
	fields := map[string]interface{}{
		"target": target,
		"file":   name,
	}
	if err != nil {
		l.WithError(err).WarnWithFields("Write failed, item skipped", fields)
		return
	}
	l.DebugWithFields("File written", fields)
}

// LogHarvestProgress logs one scroll tick of the harvest phase
func LogHarvestProgress(l Logger, collected, added, stallTicks int) {
	l.DebugWithFields("Harvest tick", map[string]interface{}{
		"collected":   collected,
		"added":       added,
		"stall_ticks": stallTicks,
	})
}

// LogOutcome logs the final saved/attempted counts of a run
func LogOutcome(l Logger, board string, saved, attempted int) {
	percentage := 0.0
	if attempted > 0 {
		percentage = float64(saved) / float64(attempted) * 100
	}

	l.InfoWithFields("Run finished", map[string]interface{}{
		"board":      board,
		"saved":      saved,
		"attempted":  attempted,
		"percentage": fmt.Sprintf("%.1f%%", percentage),
	})
}

// LogComponentStart logs when a component starts
func LogComponentStart(l Logger, component string, settings map[string]interface{}) {
	scoped := l.WithField("component", component)
	if len(settings) > 0 {
		scoped = scoped.WithFields(settings)
	}
	scoped.Info("Component started")
}

// LogComponentStop logs when a component stops
func LogComponentStop(l Logger, component string, reason string) {
	l.WithFields(map[string]interface{}{
		"component": component,
		"reason":    reason,
	}).Info("Component stopped")
}

// NewNopLogger creates a logger that discards everything
func NewNopLogger() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) FatalWithFields(msg string, fields map[string]interface{}) {}

func (n *nopLogger) GetZerolog() *zerolog.Logger {
	nop := zerolog.Nop()
	return &nop
}
