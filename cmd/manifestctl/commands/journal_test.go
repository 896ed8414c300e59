package commands

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mlog "github.com/manifestkit/manifest-go/pkg/log"
)

func writeJournal(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "edit.journal")
	fl, err := mlog.NewFileLogger(path)
	require.NoError(t, err)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	events := []mlog.Event{
		{
			Timestamp: base,
			ModelID:   "0123456789abcdef",
			Source:    JournalSource,
			Category:  mlog.CategoryLifecycle,
			Lifecycle: &mlog.LifecycleEvent{Action: mlog.ActionLoad, State: "LOADED", Nodes: 4, Abbreviated: true},
		},
		{
			Timestamp: base.Add(time.Second),
			ModelID:   "0123456789abcdef",
			Source:    JournalSource,
			Category:  mlog.CategoryChange,
			Change: &mlog.ChangeEventData{
				Type: mlog.ChangeProperty, Path: "extension[0]", NodeKind: "extension",
				Property: "id", OldValue: "main", NewValue: "other",
			},
		},
		{
			Timestamp: base.Add(2 * time.Second),
			ModelID:   "0123456789abcdef",
			Source:    JournalSource,
			Category:  mlog.CategoryChange,
			Change: &mlog.ChangeEventData{
				Type: mlog.ChangeInsert, Path: "library[1]", NodeKind: "library",
				Container: ".", Index: 1,
			},
		},
		{
			Timestamp: base.Add(3 * time.Second),
			ModelID:   "fedcba9876543210",
			Source:    "other",
			Category:  mlog.CategoryError,
			Error:     &mlog.ErrorEventData{Message: "2 parse errors", Count: 2, Lines: []int{3, 7}, Context: "reload a.xml"},
		},
	}
	for _, ev := range events {
		fl.Log(ev)
	}
	require.NoError(t, fl.Close())
	return path
}

func TestRunJournal(t *testing.T) {
	path := writeJournal(t)

	tests := []struct {
		name     string
		filter   JournalFilter
		count    string
		contains []string
		excludes []string
	}{
		{
			name:  "All",
			count: "4 event(s)",
			contains: []string{
				"2026-03-01T12:00:00.000000Z [model:01234567] LIFECYCLE LOAD (manifestctl edit)",
				"  State: LOADED  Nodes: 4",
				"  Abbreviated",
				"CHANGE PROPERTY",
				"  Property: id",
				`  "main" -> "other"`,
				"  Container: .  Index: 1",
				"[model:fedcba98] ERROR ERROR (other)",
				"  Errors: 2 at lines [3 7]",
				"  Context: reload a.xml",
			},
		},
		{
			name:     "Category",
			filter:   JournalFilter{Category: "change"},
			count:    "2 event(s)",
			excludes: []string{"LIFECYCLE", "ERROR"},
		},
		{
			name:     "ChangeType",
			filter:   JournalFilter{Change: "insert"},
			count:    "1 event(s)",
			contains: []string{"Path: library[1] (library)"},
		},
		{
			name:     "PathPrefix",
			filter:   JournalFilter{PathPrefix: "extension"},
			count:    "1 event(s)",
			contains: []string{"CHANGE PROPERTY"},
		},
		{
			name:   "Source",
			filter: JournalFilter{Source: "other"},
			count:  "1 event(s)",
		},
		{
			name:     "TimeRange",
			filter:   JournalFilter{TimeStart: "2026-03-01T12:00:01Z", TimeEnd: "2026-03-01T12:00:03Z"},
			count:    "2 event(s)",
			excludes: []string{"LOAD", "ERROR ERROR"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := tt.filter.Build()
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, RunJournal(path, filter, &buf))
			out := buf.String()
			assert.Contains(t, out, tt.count)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestRunJournalMissingFile(t *testing.T) {
	var buf bytes.Buffer
	err := RunJournal(filepath.Join(t.TempDir(), "missing"), mlog.Filter{}, &buf)
	assert.ErrorContains(t, err, "failed to open journal")
}

func TestJournalFilterBuildErrors(t *testing.T) {
	for name, f := range map[string]JournalFilter{
		"category":   {Category: "bogus"},
		"change":     {Change: "bogus"},
		"time-start": {TimeStart: "yesterday"},
		"time-end":   {TimeEnd: "2026-13-01"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.Build()
			assert.Error(t, err)
		})
	}
}

func TestParseFlags(t *testing.T) {
	c, err := ParseCategoryFlag("Lifecycle")
	require.NoError(t, err)
	assert.Equal(t, mlog.CategoryLifecycle, c)

	ct, err := ParseChangeTypeFlag("REORDER")
	require.NoError(t, err)
	assert.Equal(t, mlog.ChangeReorder, ct)

	_, err = ParseChangeTypeFlag("world")
	assert.Error(t, err)
}
