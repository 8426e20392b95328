package logger

import (
	"bytes"
	"context"
	"errors"
	log "log/slog"
	"strings"
	"testing"
	"time"
)

func newJSON(buf *bytes.Buffer, level log.Level) log.Handler {
	return log.NewJSONHandler(buf, &log.HandlerOptions{Level: level})
}

func TestContextHandlerAddsTraceAndTask(t *testing.T) {
	var buf bytes.Buffer
	l := log.New(&ContextHandler{newJSON(&buf, log.LevelInfo)})

	ctx := WithTask(WithTraceID(context.Background(), "job-x-1"), "profile-rebuild")
	l.InfoContext(ctx, "hello")
	out := buf.String()
	if !strings.Contains(out, `"trace_id":"job-x-1"`) || !strings.Contains(out, `"task":"profile-rebuild"`) {
		t.Errorf("log line = %s", out)
	}

	buf.Reset()
	l.InfoContext(context.Background(), "plain")
	if strings.Contains(buf.String(), "trace_id") || strings.Contains(buf.String(), `"task"`) {
		t.Errorf("untraced line carries ids: %s", buf.String())
	}
}

func TestTraceIDFromContext(t *testing.T) {
	if got := TraceID(context.Background()); got != "" {
		t.Errorf("empty ctx trace = %q", got)
	}
	if got := TraceID(WithTraceID(context.Background(), "abc")); got != "abc" {
		t.Errorf("trace = %q, want abc", got)
	}
}

func TestRemoteFilterHandler(t *testing.T) {
	tests := []struct {
		name    string
		logFn   func(l *log.Logger)
		forward bool
	}{
		{"no trace", func(l *log.Logger) { l.Info("startup") }, false},
		{"trace from ctx", func(l *log.Logger) { l.InfoContext(WithTraceID(context.Background(), "t1"), "req") }, true},
		{"trace bound with With", func(l *log.Logger) { l.With(TraceIDKey, "t2").Info("bound") }, true},
		{"empty trace bound", func(l *log.Logger) { l.With(TraceIDKey, "").Info("bound") }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var remote bytes.Buffer
			l := log.New(&ContextHandler{&RemoteFilterHandler{next: newJSON(&remote, log.LevelInfo)}})
			tt.logFn(l)
			if got := remote.Len() > 0; got != tt.forward {
				t.Errorf("forwarded = %v, want %v (%s)", got, tt.forward, remote.String())
			}
		})
	}
}

type failingHandler struct{ log.Handler }

func (failingHandler) Handle(context.Context, log.Record) error { return errors.New("conn closed") }

func TestTeeHandler(t *testing.T) {
	var info, debug bytes.Buffer
	tee := &TeeHandler{handlers: []log.Handler{
		failingHandler{newJSON(&bytes.Buffer{}, log.LevelInfo)},
		newJSON(&info, log.LevelInfo),
		newJSON(&debug, log.LevelDebug),
	}}
	l := log.New(tee)

	l.Debug("detail")
	if info.Len() != 0 || debug.Len() == 0 {
		t.Errorf("debug routing: info=%q debug=%q", info.String(), debug.String())
	}

	if err := tee.Handle(context.Background(), log.NewRecord(testTime, log.LevelInfo, "msg", 0)); err == nil {
		t.Error("handler error not reported")
	}
	if !strings.Contains(info.String(), `"msg":"msg"`) {
		t.Errorf("failing handler blocked the rest: %q", info.String())
	}
}

var testTime = time.Date(2026, 10, 15, 10, 30, 0, 0, time.UTC)
