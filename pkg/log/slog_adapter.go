package log

import (
	"context"
	"fmt"
	"log/slog"
)

// SlogAdapter writes journal events to an slog.Logger.
// Useful for development when you want to see edits in the console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("model_id", event.ModelID),
		slog.String("category", event.Category.String()),
	}
	if event.Source != "" {
		attrs = append(attrs, slog.String("source", event.Source))
	}

	switch {
	case event.Change != nil:
		c := event.Change
		attrs = append(attrs,
			slog.String("change", c.Type.String()),
			slog.String("path", c.Path),
			slog.String("node", c.NodeKind),
		)
		if c.Container != "" {
			attrs = append(attrs, slog.String("container", c.Container), slog.Int("index", c.Index))
		}
		if c.Other != "" {
			attrs = append(attrs, slog.String("other", c.Other))
		}
		if c.Property != "" {
			attrs = append(attrs,
				slog.String("property", c.Property),
				slog.String("old", FormatValue(c.OldValue)),
				slog.String("new", FormatValue(c.NewValue)),
			)
		}
	case event.Lifecycle != nil:
		l := event.Lifecycle
		attrs = append(attrs,
			slog.String("action", l.Action.String()),
			slog.String("state", l.State),
			slog.Int("nodes", l.Nodes),
		)
		if l.Abbreviated {
			attrs = append(attrs, slog.Bool("abbreviated", true))
		}
		if l.Bytes > 0 {
			attrs = append(attrs, slog.Int("bytes", l.Bytes))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
		if event.Error.Count > 0 {
			attrs = append(attrs, slog.Int("error_count", event.Error.Count))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "journal", attrs...)
}

// FormatValue renders a property value for display. Nil prints as <none>.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "<none>"
	case string:
		return fmt.Sprintf("%q", x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
