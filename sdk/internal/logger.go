package internal

import (
	"context"
	"log/slog"
)

func defaultLogger(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}

// replayFilterHandler drops records emitted while the run is replaying
// history, so re-executed workflow code does not duplicate its log lines.
type replayFilterHandler struct {
	inner slog.Handler
	eng   *Engine
}

func (h *replayFilterHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if h.eng.info != nil && h.eng.info.IsReplaying {
		return false
	}
	return h.inner.Enabled(ctx, level)
}

func (h *replayFilterHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.eng.info != nil && h.eng.info.IsReplaying {
		return nil
	}
	return h.inner.Handle(ctx, r)
}

func (h *replayFilterHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &replayFilterHandler{inner: h.inner.WithAttrs(attrs), eng: h.eng}
}

func (h *replayFilterHandler) WithGroup(name string) slog.Handler {
	return &replayFilterHandler{inner: h.inner.WithGroup(name), eng: h.eng}
}

// WorkflowLogger returns the logger workflow code should use: engine-scoped
// fields, replay suppression.
func (e *Engine) WorkflowLogger() *slog.Logger {
	base := e.logger.With("run_id", e.info.RunID, "workflow_type", e.info.WorkflowType)
	return slog.New(&replayFilterHandler{inner: base.Handler(), eng: e})
}
