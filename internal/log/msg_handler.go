// Package log contains slog handlers for console output.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// MsgHandler prints the message and the attribute values like fmt.Println.
// Records above info level are prefixed with their lowercase level.
type MsgHandler struct {
	mu     *sync.Mutex
	writer io.Writer
	level  slog.Level
	attrs  []slog.Attr
}

func NewMsgHandler(writer io.Writer, level slog.Level) *MsgHandler {
	return &MsgHandler{mu: &sync.Mutex{}, writer: writer, level: level}
}

func (h *MsgHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *MsgHandler) Handle(_ context.Context, record slog.Record) error {
	var b strings.Builder
	if record.Level > slog.LevelInfo {
		b.WriteString(strings.ToLower(record.Level.String()))
		b.WriteString(": ")
	}
	b.WriteString(record.Message)

	write := func(a slog.Attr) bool {
		_, _ = fmt.Fprint(&b, " ", a.Value)
		return true
	}
	for _, a := range h.attrs {
		write(a)
	}
	record.Attrs(write)
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.writer, b.String())
	return err
}

func (h *MsgHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := *h
	h2.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...)
	return &h2
}

func (h *MsgHandler) WithGroup(_ string) slog.Handler {
	return h
}
