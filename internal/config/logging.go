// Copyright 2025 The sdk-core Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level        string `env:"LEVEL"         envDefault:"info"` // debug|info|warn|error
	OTELExporter string `env:"OTEL_EXPORTER" envDefault:"none"` // none|otlp-http
}

// Logger bundles the process slog.Logger with the otel provider that must be
// shut down with it. Provider is nil unless the OTLP exporter is configured.
type Logger struct {
	Slogger  *slog.Logger
	Provider *sdklog.LoggerProvider
}

// NewLogger builds the process logger: a colored debug handler in debug
// mode, JSON in release mode, plus an OTLP pipeline in release mode when
// Logger.OTELExporter is "otlp-http".
func NewLogger(ctx context.Context, cfg *Config, out io.Writer) (*Logger, error) {
	if out == nil {
		out = os.Stdout
	}

	if cfg.Mode == ModeDebug {
		return &Logger{Slogger: slog.New(&debugHandler{out: out})}, nil
	}

	handlers := []slog.Handler{
		slog.NewJSONHandler(out, &slog.HandlerOptions{Level: parseLevel(cfg.Logger.Level)}),
	}

	var provider *sdklog.LoggerProvider
	if cfg.Logger.OTELExporter == "otlp-http" {
		res, err := resource.Merge(
			resource.Default(),
			resource.NewWithAttributes(
				semconv.SchemaURL,
				semconv.ServiceName(cfg.Service),
				semconv.ServiceVersion(cfg.Version),
			),
		)
		if err != nil {
			return nil, err
		}
		exporter, err := otlploghttp.New(ctx)
		if err != nil {
			return nil, err
		}
		provider = sdklog.NewLoggerProvider(
			sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter, nil)),
			sdklog.WithResource(res),
		)
		handlers = append(handlers, otelslog.NewHandler(cfg.Service, otelslog.WithLoggerProvider(provider)))
	}

	return &Logger{
		Slogger:  slog.New(&multiHandler{handlers: handlers}),
		Provider: provider,
	}, nil
}

// Shutdown flushes the OTLP pipeline, if one was configured.
func (l *Logger) Shutdown(ctx context.Context) error {
	if l.Provider == nil {
		return nil
	}
	return l.Provider.Shutdown(ctx)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// debugHandler prints compact colored lines for local development.
type debugHandler struct {
	out   io.Writer
	attrs []slog.Attr
	mut   sync.Mutex
}

var _ slog.Handler = (*debugHandler)(nil)

func (h *debugHandler) Handle(_ context.Context, r slog.Record) error {
	h.mut.Lock()
	defer h.mut.Unlock()

	timeStr := color.New(color.FgHiBlack).Sprint(r.Time.Format("15:04:05"))
	attrs := append([]slog.Attr{}, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})

	logEntry := fmt.Sprintf("%s %s %s%s\n",
		timeStr,
		levelColor(r.Level),
		r.Message,
		formatAttributes(attrs),
	)

	_, err := h.out.Write([]byte(logEntry))
	return err
}

func (h *debugHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &debugHandler{
		out:   h.out,
		attrs: append(h.attrs, attrs...),
	}
}

func (h *debugHandler) WithGroup(name string) slog.Handler { return h }

func (h *debugHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelDebug
}

// multiHandler fans records out to several handlers.
type multiHandler struct {
	handlers []slog.Handler
}

var _ slog.Handler = (*multiHandler)(nil)

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, h := range m.handlers {
		// Best-effort: log a handler failure but keep the others going.
		if err := h.Handle(ctx, record); err != nil {
			slog.Error("error from slog handler", "error", err)
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newHandlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		newHandlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: newHandlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	newHandlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		newHandlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: newHandlers}
}

func levelColor(level slog.Level) string {
	var bg, fg color.Attribute
	switch level {
	case slog.LevelDebug:
		bg, fg = color.BgMagenta, color.FgWhite
	case slog.LevelInfo:
		bg, fg = color.BgBlue, color.FgWhite
	case slog.LevelWarn:
		bg, fg = color.BgYellow, color.FgBlack
	case slog.LevelError:
		bg, fg = color.BgRed, color.FgWhite
	default:
		bg, fg = color.BgWhite, color.FgBlack
	}
	return color.New(bg, fg, color.Bold).Sprint(" " + strings.ToUpper(level.String()) + " ")
}

func formatAttributes(attrs []slog.Attr) string {
	if len(attrs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(attrs))
	for _, a := range attrs {
		parts = append(parts, color.New(color.FgCyan).Sprint(a.Key)+"="+fmt.Sprint(a.Value.Any()))
	}
	return " " + strings.Join(parts, " ")
}
