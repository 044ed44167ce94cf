// Package hooks provides production-ready Hook and Logger implementations.
package hooks

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/iconforge/iconforge/core"
)

// ── Structured logger adapter ─────────────────────────────────────────────────

// ZerologLogger wraps a zerolog.Logger to satisfy core.Logger.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerolog creates a console logger at the given level.  Unknown levels fall
// back to info.
func NewZerolog(level string) *ZerologLogger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	l := zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
	return &ZerologLogger{log: l}
}

// NewZerologLogger wraps an existing zerolog.Logger.
func NewZerologLogger(l zerolog.Logger) *ZerologLogger { return &ZerologLogger{log: l} }

func (z *ZerologLogger) Debug(msg string, fields ...interface{}) {
	withFields(z.log.Debug(), fields).Msg(msg)
}
func (z *ZerologLogger) Info(msg string, fields ...interface{}) {
	withFields(z.log.Info(), fields).Msg(msg)
}
func (z *ZerologLogger) Warn(msg string, fields ...interface{}) {
	withFields(z.log.Warn(), fields).Msg(msg)
}
func (z *ZerologLogger) Error(msg string, fields ...interface{}) {
	withFields(z.log.Error(), fields).Msg(msg)
}

func withFields(e *zerolog.Event, fields []interface{}) *zerolog.Event {
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			key = fmt.Sprint(fields[i])
		}
		e = e.Interface(key, fields[i+1])
	}
	return e
}

// ── Logging hook ──────────────────────────────────────────────────────────────

// LoggingHook logs before/after each pipeline step.
type LoggingHook struct {
	logger core.Logger
}

// NewLoggingHook creates a LoggingHook.
func NewLoggingHook(l core.Logger) *LoggingHook { return &LoggingHook{logger: l} }

func (h *LoggingHook) BeforeStep(_ context.Context, stepName string, r *core.Raster) {
	in := "nil"
	if r != nil {
		in = fmt.Sprintf("%dx%d %s", r.Width(), r.Height(), r.Format)
	}
	h.logger.Debug("pipeline.step.start",
		"step", stepName,
		"input", in,
	)
}

func (h *LoggingHook) AfterStep(_ context.Context, stepName string, r *core.Raster, d time.Duration, err error) {
	if err != nil {
		h.logger.Error("pipeline.step.error",
			"step", stepName,
			"duration_ms", d.Milliseconds(),
			"error", err.Error(),
		)
		return
	}
	out := "nil"
	if r != nil {
		out = fmt.Sprintf("%dx%d %s %dB", r.Width(), r.Height(), r.Format, len(r.Data))
	}
	h.logger.Debug("pipeline.step.done",
		"step", stepName,
		"duration_ms", d.Milliseconds(),
		"output", out,
	)
}

// ── In-memory step metrics ────────────────────────────────────────────────────

// StepMetrics accumulates per-step counters; safe for concurrent use.
type StepMetrics struct {
	mu sync.RWMutex

	durationsMs map[string]int64 // cumulative ms per step
	calls       map[string]int64 // call count per step
	errors      map[string]int64
}

// NewStepMetrics creates an empty metrics store.
func NewStepMetrics() *StepMetrics {
	return &StepMetrics{
		durationsMs: make(map[string]int64),
		calls:       make(map[string]int64),
		errors:      make(map[string]int64),
	}
}

func (m *StepMetrics) record(stepName string, d time.Duration, failed bool) {
	m.mu.Lock()
	m.durationsMs[stepName] += d.Milliseconds()
	m.calls[stepName]++
	if failed {
		m.errors[stepName]++
	}
	m.mu.Unlock()
}

// Snapshot returns a copy of current metrics.
func (m *StepMetrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := MetricsSnapshot{
		StepDurationsMs: make(map[string]int64, len(m.durationsMs)),
		StepCalls:       make(map[string]int64, len(m.calls)),
		StepErrors:      make(map[string]int64, len(m.errors)),
	}
	for k, v := range m.durationsMs {
		snap.StepDurationsMs[k] = v
	}
	for k, v := range m.calls {
		snap.StepCalls[k] = v
	}
	for k, v := range m.errors {
		snap.StepErrors[k] = v
	}
	return snap
}

// MetricsSnapshot is an immutable point-in-time copy of metrics.
type MetricsSnapshot struct {
	StepDurationsMs map[string]int64
	StepCalls       map[string]int64
	StepErrors      map[string]int64
}

// ── Metrics hook ──────────────────────────────────────────────────────────────

// MetricsHook feeds pipeline step timings into a StepMetrics store.
type MetricsHook struct {
	metrics *StepMetrics
}

// NewMetricsHook creates a MetricsHook.
func NewMetricsHook(m *StepMetrics) *MetricsHook { return &MetricsHook{metrics: m} }

func (h *MetricsHook) BeforeStep(_ context.Context, _ string, _ *core.Raster) {}

func (h *MetricsHook) AfterStep(_ context.Context, stepName string, _ *core.Raster, d time.Duration, err error) {
	h.metrics.record(stepName, d, err != nil)
}
