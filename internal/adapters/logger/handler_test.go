package logger_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/busy/internal/adapters/logger"
)

func TestPrettyHandler_Handle_Levels(t *testing.T) {
	tests := []struct {
		name       string
		minLevel   slog.Level
		level      slog.Level
		msg        string
		goldenName string
	}{
		{"info level", slog.LevelInfo, slog.LevelInfo, "information message", "handler_info"},
		{"warn level", slog.LevelInfo, slog.LevelWarn, "warning message", "handler_warn"},
		{"error level", slog.LevelInfo, slog.LevelError, "error message", "handler_error"},
		{"debug level filtered", slog.LevelInfo, slog.LevelDebug, "debug message", "handler_debug_filtered"},
		{"debug level enabled", slog.LevelDebug, slog.LevelDebug, "debug message", "handler_debug_enabled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", "1")

			buf := &bytes.Buffer{}
			handler := logger.NewPrettyHandler(buf, &slog.HandlerOptions{Level: tt.minLevel})
			slog.New(handler).Log(t.Context(), tt.level, tt.msg)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestPrettyHandler_Attrs(t *testing.T) {
	tests := []struct {
		name       string
		attrs      []slog.Attr
		groups     []string
		goldenName string
	}{
		{
			name:       "multiple attributes",
			attrs:      []slog.Attr{slog.String("target", "net"), slog.Int("exit_code", 1)},
			goldenName: "handler_attrs_multi",
		},
		{
			name:       "group attribute",
			attrs:      []slog.Attr{slog.Group("job", slog.String("file", "socket.cpp"))},
			goldenName: "handler_attrs_group",
		},
		{
			name:       "nested groups",
			attrs:      []slog.Attr{slog.String("key", "val")},
			groups:     []string{"a", "b"},
			goldenName: "handler_group_nested",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", "1")

			buf := &bytes.Buffer{}
			var handler slog.Handler = logger.NewPrettyHandler(buf, nil)
			for _, g := range tt.groups {
				handler = handler.WithGroup(g)
			}
			handler = handler.WithAttrs(tt.attrs)
			slog.New(handler).Info("compile")

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestPrettyHandler_WithGroup_EmptyName(t *testing.T) {
	handler := logger.NewPrettyHandler(&bytes.Buffer{}, nil)
	assert.Same(t, handler, handler.WithGroup(""))
}
