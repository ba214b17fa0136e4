package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger with "HH:MM:SS.ms" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs completion of an operation with its elapsed time.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Rendered diagram (12ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// loggingHooks reports conversion and cache events at debug level.
// Registered with --verbose.
type loggingHooks struct {
	logger *log.Logger
}

func (h loggingHooks) OnLoadStart(_ context.Context, hint string, size int) {
	h.logger.Debug("load start", "hint", hint, "bytes", size)
}

func (h loggingHooks) OnLoadComplete(_ context.Context, format string, elements int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("load failed", "format", format, "error", err, "duration", d)
		return
	}
	h.logger.Debug("load complete", "format", format, "elements", elements, "duration", d)
}

func (h loggingHooks) OnRenderStart(_ context.Context, format string, elements int) {
	h.logger.Debug("render start", "format", format, "elements", elements)
}

func (h loggingHooks) OnRenderComplete(_ context.Context, format string, size int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("render failed", "format", format, "error", err, "duration", d)
		return
	}
	h.logger.Debug("render complete", "format", format, "bytes", size, "duration", d)
}

func (h loggingHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h loggingHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h loggingHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}
