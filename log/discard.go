package log

import (
	"context"
	"log/slog"
)

// discardHandler drops every record. slog.DiscardHandler exists from Go
// 1.24 but a local type keeps the wrapper self-contained.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }
