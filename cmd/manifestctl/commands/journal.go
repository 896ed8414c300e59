package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/manifestkit/manifest-go/pkg/log"
)

// JournalFilter holds the raw filter flags of the journal command.
type JournalFilter struct {
	ModelID    string
	Source     string
	Category   string
	Change     string
	PathPrefix string
	TimeStart  string
	TimeEnd    string
}

// Build converts the flags into a log.Filter.
func (f JournalFilter) Build() (log.Filter, error) {
	filter := log.Filter{
		ModelID:    f.ModelID,
		Source:     f.Source,
		PathPrefix: f.PathPrefix,
	}
	if f.Category != "" {
		c, err := ParseCategoryFlag(f.Category)
		if err != nil {
			return filter, err
		}
		filter.Category = &c
	}
	if f.Change != "" {
		t, err := ParseChangeTypeFlag(f.Change)
		if err != nil {
			return filter, err
		}
		filter.ChangeType = &t
	}
	if f.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, f.TimeStart)
		if err != nil {
			return filter, fmt.Errorf("invalid time-start: %w", err)
		}
		filter.TimeStart = &t
	}
	if f.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, f.TimeEnd)
		if err != nil {
			return filter, fmt.Errorf("invalid time-end: %w", err)
		}
		filter.TimeEnd = &t
	}
	return filter, nil
}

// ParseCategoryFlag parses a category name (change, lifecycle, error).
func ParseCategoryFlag(s string) (log.Category, error) {
	for _, c := range []log.Category{log.CategoryChange, log.CategoryLifecycle, log.CategoryError} {
		if strings.EqualFold(s, c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown category %q (use change, lifecycle, error)", s)
}

// ParseChangeTypeFlag parses a change type name (insert, remove, reorder,
// property).
func ParseChangeTypeFlag(s string) (log.ChangeType, error) {
	for _, t := range []log.ChangeType{log.ChangeInsert, log.ChangeRemove, log.ChangeReorder, log.ChangeProperty} {
		if strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown change type %q (use insert, remove, reorder, property)", s)
}

// RunJournal prints the events of a journal file that match filter.
func RunJournal(path string, filter log.Filter, w io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer reader.Close()

	count := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(w, event)
		count++
	}
	fmt.Fprintf(w, "%d event(s)\n", count)
	return nil
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	label := event.Category.String()
	switch {
	case event.Change != nil:
		label = event.Change.Type.String()
	case event.Lifecycle != nil:
		label = event.Lifecycle.Action.String()
	}

	fmt.Fprintf(w, "%s [model:%s] %s %s", ts, shortenID(event.ModelID), event.Category, label)
	if event.Source != "" {
		fmt.Fprintf(w, " (%s)", event.Source)
	}
	fmt.Fprintln(w)

	switch {
	case event.Change != nil:
		formatChangeDetails(w, event.Change)
	case event.Lifecycle != nil:
		formatLifecycleDetails(w, event.Lifecycle)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}
	fmt.Fprintln(w)
}

// shortenID returns the first 8 characters of a model ID.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatChangeDetails(w io.Writer, c *log.ChangeEventData) {
	fmt.Fprintf(w, "  Path: %s (%s)\n", c.Path, c.NodeKind)
	switch c.Type {
	case log.ChangeInsert, log.ChangeRemove:
		fmt.Fprintf(w, "  Container: %s  Index: %d\n", c.Container, c.Index)
	case log.ChangeReorder:
		fmt.Fprintf(w, "  Container: %s  Swapped with: %s\n", c.Container, c.Other)
	case log.ChangeProperty:
		fmt.Fprintf(w, "  Property: %s\n", c.Property)
		fmt.Fprintf(w, "  %s -> %s\n", log.FormatValue(c.OldValue), log.FormatValue(c.NewValue))
	}
}

func formatLifecycleDetails(w io.Writer, l *log.LifecycleEvent) {
	if l.State != "" {
		fmt.Fprintf(w, "  State: %s  Nodes: %d\n", l.State, l.Nodes)
	}
	if l.Abbreviated {
		fmt.Fprintln(w, "  Abbreviated")
	}
	if l.Bytes > 0 {
		fmt.Fprintf(w, "  Bytes: %d\n", l.Bytes)
	}
}

func formatErrorDetails(w io.Writer, e *log.ErrorEventData) {
	fmt.Fprintf(w, "  Message: %s\n", e.Message)
	if e.Count > 0 {
		fmt.Fprintf(w, "  Errors: %d at lines %v\n", e.Count, e.Lines)
	}
	if e.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", e.Context)
	}
}
