package log

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func createTestJournal(t *testing.T, events []Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test"+FileExtension)

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create test journal: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	if err := logger.Err(); err != nil {
		t.Fatalf("logger error: %v", err)
	}
	logger.Close()
	return path
}

func readAll(t *testing.T, r *Reader) []Event {
	t.Helper()
	var out []Event
	for {
		event, err := r.Next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		out = append(out, event)
	}
}

func change(model string, typ ChangeType, path string) Event {
	return Event{
		Timestamp: time.Now(),
		ModelID:   model,
		Category:  CategoryChange,
		Change:    &ChangeEventData{Type: typ, Path: path},
	}
}

func TestReaderIteratesEvents(t *testing.T) {
	events := []Event{
		change("m-1", ChangeInsert, "extension[0]"),
		change("m-2", ChangeProperty, "library[0]"),
		{Timestamp: time.Now(), ModelID: "m-3", Category: CategoryLifecycle, Lifecycle: &LifecycleEvent{Action: ActionLoad}},
	}
	path := createTestJournal(t, events)

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)
	if len(read) != 3 {
		t.Fatalf("got %d events, want 3", len(read))
	}
	for i, want := range []string{"m-1", "m-2", "m-3"} {
		if read[i].ModelID != want {
			t.Errorf("event %d ModelID = %q, want %q", i, read[i].ModelID, want)
		}
	}
}

func TestReaderFilters(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	events := []Event{
		change("a", ChangeInsert, "extension[0]"),
		change("a", ChangeProperty, "extension[0]/element[1]"),
		change("b", ChangeProperty, "library[0]"),
		{ModelID: "a", Category: CategoryError, Error: &ErrorEventData{Message: "boom"}},
	}
	for i := range events {
		events[i].Timestamp = base.Add(time.Duration(i) * time.Minute)
	}
	events[2].Source = "other.xml"
	path := createTestJournal(t, events)

	cat := CategoryError
	prop := ChangeProperty
	start := base.Add(time.Minute)
	end := base.Add(3 * time.Minute)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"none", Filter{}, 4},
		{"model", Filter{ModelID: "a"}, 3},
		{"source", Filter{Source: "other.xml"}, 1},
		{"category", Filter{Category: &cat}, 1},
		{"change type", Filter{ChangeType: &prop}, 2},
		{"path prefix", Filter{PathPrefix: "extension[0]"}, 2},
		{"time window", Filter{TimeStart: &start, TimeEnd: &end}, 2},
		{"combined", Filter{ModelID: "a", ChangeType: &prop}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewFilteredReader(path, tt.filter)
			if err != nil {
				t.Fatalf("NewFilteredReader failed: %v", err)
			}
			defer r.Close()
			if got := len(readAll(t, r)); got != tt.want {
				t.Errorf("got %d events, want %d", got, tt.want)
			}
		})
	}
}

func TestReaderTruncatedJournal(t *testing.T) {
	path := createTestJournal(t, []Event{change("a", ChangeInsert, "x[0]"), change("a", ChangeInsert, "x[1]")})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data[:len(data)-3], 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer r.Close()

	if _, err := r.Next(); err != nil {
		t.Fatalf("first event: %v", err)
	}
	if _, err := r.Next(); err == nil || errors.Is(err, io.EOF) {
		t.Errorf("second event error = %v, want a decode error", err)
	}
}

func TestReaderMissingFile(t *testing.T) {
	if _, err := NewReader(filepath.Join(t.TempDir(), "missing"+FileExtension)); !os.IsNotExist(err) {
		t.Errorf("NewReader error = %v, want not-exist", err)
	}
}
