package logger

import (
	"context"
	log "log/slog"
)

// TraceIDKey 日志字段名，同时作为 gin.Context 中的 key
const TraceIDKey = "trace_id"

// TaskKey 后台任务名的日志字段，定时任务、worker 池和消费者各自填写
const TaskKey = "task"

type ctxKey int

const (
	traceCtxKey ctxKey = iota
	taskCtxKey
)

// WithTraceID 把 trace id 放进 ctx
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceCtxKey, traceID)
}

// TraceID 取出 ctx 中的 trace id，没有时返回空串
func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(traceCtxKey).(string)
	return id
}

// WithTask 标记当前 ctx 所属的后台任务
func WithTask(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, taskCtxKey, name)
}

// ContextHandler 从 ctx 中提取 trace id 与任务名写入每条日志
type ContextHandler struct {
	log.Handler
}

func (h *ContextHandler) Handle(ctx context.Context, r log.Record) error {
	if ctx != nil {
		if traceID := TraceID(ctx); traceID != "" {
			r.AddAttrs(log.String(TraceIDKey, traceID))
		}
		if task, ok := ctx.Value(taskCtxKey).(string); ok && task != "" {
			r.AddAttrs(log.String(TaskKey, task))
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []log.Attr) log.Handler {
	return &ContextHandler{h.Handler.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) log.Handler {
	return &ContextHandler{h.Handler.WithGroup(name)}
}
