package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "debug", "info", "warning", "error"
}

// Console keeps the most recent log messages for the web console.
type Console struct {
	mu       sync.Mutex
	messages []ConsoleMessage
	next     int
	full     bool
}

// NewConsole creates a console holding up to capacity messages.
func NewConsole(capacity int) *Console {
	return &Console{messages: make([]ConsoleMessage, max(1, capacity))}
}

func (c *Console) add(msg ConsoleMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages[c.next] = msg
	c.next = (c.next + 1) % len(c.messages)
	if c.next == 0 {
		c.full = true
	}
}

// Messages returns the retained messages, oldest first.
func (c *Console) Messages() []ConsoleMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.full {
		return append([]ConsoleMessage(nil), c.messages[:c.next]...)
	}
	out := make([]ConsoleMessage, 0, len(c.messages))
	out = append(out, c.messages[c.next:]...)
	return append(out, c.messages[:c.next]...)
}

// Handler returns a slog.Handler that records into the console and then
// passes records to next, which may be nil.
func (c *Console) Handler(level slog.Leveler, next slog.Handler) slog.Handler {
	return &consoleHandler{console: c, level: level, next: next}
}

type consoleHandler struct {
	console *Console
	level   slog.Leveler
	next    slog.Handler
	attrs   []slog.Attr
	group   string
}

func (h *consoleHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if level >= h.level.Level() {
		return true
	}
	return h.next != nil && h.next.Enabled(ctx, level)
}

func (h *consoleHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= h.level.Level() {
		var sb strings.Builder
		sb.WriteString(r.Message)
		for _, a := range h.attrs {
			fmt.Fprintf(&sb, " %s=%v", a.Key, a.Value)
		}
		r.Attrs(func(a slog.Attr) bool {
			fmt.Fprintf(&sb, " %s=%v", h.qualify(a.Key), a.Value)
			return true
		})
		h.console.add(ConsoleMessage{
			Message:   sb.String(),
			Timestamp: r.Time,
			Level:     levelName(r.Level),
		})
	}
	if h.next != nil && h.next.Enabled(ctx, r.Level) {
		return h.next.Handle(ctx, r)
	}
	return nil
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, a := range attrs {
		clone.attrs = append(clone.attrs, slog.Attr{Key: h.qualify(a.Key), Value: a.Value})
	}
	if h.next != nil {
		clone.next = h.next.WithAttrs(attrs)
	}
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	clone := *h
	if clone.group != "" {
		name = clone.group + "." + name
	}
	clone.group = name
	if h.next != nil {
		clone.next = h.next.WithGroup(name)
	}
	return &clone
}

func (h *consoleHandler) qualify(key string) string {
	if h.group == "" {
		return key
	}
	return h.group + "." + key
}

func levelName(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "error"
	case l >= slog.LevelWarn:
		return "warning"
	case l >= slog.LevelInfo:
		return "info"
	default:
		return "debug"
	}
}
