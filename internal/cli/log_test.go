package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spdx2mermaid/pkg/observability"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(l *log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("loaded document") }, true},
		{"warn at info level", log.InfoLevel, func(l *log.Logger) { l.Warn("cache disabled") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("cache hit") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("cache hit") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	time.Sleep(5 * time.Millisecond)
	prog.done("Converted sbom.json")

	if !strings.Contains(buf.String(), "Converted sbom.json") {
		t.Errorf("progress output missing message: %q", buf.String())
	}
}

func TestLoggerContext(t *testing.T) {
	if loggerFromContext(context.Background()) == nil {
		t.Fatal("loggerFromContext should fall back to the default logger")
	}

	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)
	ctx := withLogger(context.Background(), custom)
	if loggerFromContext(ctx) != custom {
		t.Fatal("loggerFromContext should return the attached logger")
	}
	loggerFromContext(ctx).Info("read input")
	if buf.Len() == 0 {
		t.Error("attached logger should write to its writer")
	}
}

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	h := loggingHooks{newLogger(&buf, log.DebugLevel)}
	ctx := context.Background()

	h.OnLoadStart(ctx, "sbom.json", 10)
	h.OnLoadComplete(ctx, "json", 3, time.Millisecond, nil)
	h.OnRenderStart(ctx, "mermaid", 3)
	h.OnRenderComplete(ctx, "mermaid", 0, time.Millisecond, errors.New("boom"))
	h.OnCacheHit(ctx, "model")
	h.OnCacheMiss(ctx, "artifact")
	h.OnCacheSet(ctx, "artifact", 42)

	out := buf.String()
	for _, want := range []string{"load start", "load complete", "render start", "render failed", "boom", "cache hit", "cache miss", "cache set"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
}

func TestVerboseRegistersHooks(t *testing.T) {
	isolate(t)
	t.Cleanup(observability.Reset)
	in := writeInput(t, "sbom.spdx.json", exampleJSON)
	out := filepath.Join(t.TempDir(), "out.mmd")

	if _, err := execute(t, "-v", "convert", in, "-o", out); err != nil {
		t.Fatal(err)
	}
	if _, ok := observability.Convert().(loggingHooks); !ok {
		t.Errorf("convert hooks = %T, want loggingHooks", observability.Convert())
	}
}
