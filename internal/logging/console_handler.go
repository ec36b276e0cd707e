package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// consoleHandler renders compact single-line records for humans:
// "15:04:05 INFO  message key=value ...". Levels are colored when the writer
// is a terminal.
type consoleHandler struct {
	mu    *sync.Mutex
	out   io.Writer
	level slog.Level
	color bool
	attrs []slog.Attr
}

func newConsoleHandler(out io.Writer, level slog.Level) *consoleHandler {
	color := false
	if f, ok := out.(interface{ Fd() uintptr }); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &consoleHandler{mu: new(sync.Mutex), out: out, level: level, color: color}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *consoleHandler) Handle(_ context.Context, rec slog.Record) error {
	var b strings.Builder
	b.WriteString(rec.Time.Format("15:04:05"))
	b.WriteByte(' ')
	b.WriteString(h.levelTag(rec.Level))
	b.WriteByte(' ')
	b.WriteString(rec.Message)

	writeAttr := func(a slog.Attr) {
		if a.Key == "" {
			return
		}
		b.WriteByte(' ')
		b.WriteString(a.Key)
		b.WriteByte('=')
		b.WriteString(fmt.Sprint(a.Value.Any()))
	}
	for _, a := range h.attrs {
		writeAttr(a)
	}
	rec.Attrs(func(a slog.Attr) bool {
		writeAttr(a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *consoleHandler) WithGroup(string) slog.Handler { return h }

func (h *consoleHandler) levelTag(level slog.Level) string {
	tag := strings.ToUpper(level.String())
	if len(tag) > 5 {
		tag = tag[:5]
	}
	tag = fmt.Sprintf("%-5s", tag)
	if !h.color {
		return tag
	}
	switch {
	case level >= slog.LevelError:
		return text.FgRed.Sprint(tag)
	case level >= slog.LevelWarn:
		return text.FgYellow.Sprint(tag)
	case level >= slog.LevelInfo:
		return text.FgGreen.Sprint(tag)
	default:
		return text.FgCyan.Sprint(tag)
	}
}
