package log

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/manifestkit/manifest-go/pkg/model"
)

const journalManifest = `<plugin id="p" version="1.0">
<requires><import plugin="dep" version="1"/></requires>
<extension point="a"><child k="v"/></extension>
</plugin>`

func newJournaled(t *testing.T) (*model.Model, *Journal, *captureLogger) {
	t.Helper()
	m := model.New(model.DefaultOptions())
	if err := m.Load(strings.NewReader(journalManifest), false); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	capture := &captureLogger{}
	j := NewJournal(capture, m.ID(), "plugin.xml")
	fixed := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	j.clock = func() time.Time { return fixed }
	m.Subscribe(j)
	return m, j, capture
}

func TestJournalRecordsChanges(t *testing.T) {
	m, _, capture := newJournaled(t)
	root := m.Root()

	if err := root.SetVersion("2.0"); err != nil {
		t.Fatal(err)
	}
	if err := root.Extensions()[0].Elements()[0].RemoveAttribute("k"); err != nil {
		t.Fatal(err)
	}
	if err := root.Imports()[0].SetMatch(model.MatchPerfect); err != nil {
		t.Fatal(err)
	}
	x := m.NewExtension("b")
	if err := root.AddExtension(x); err != nil {
		t.Fatal(err)
	}
	if err := root.SwapExtensions(root.Extensions()[0], x); err != nil {
		t.Fatal(err)
	}
	if err := root.RemoveExtension(x); err != nil {
		t.Fatal(err)
	}

	var got []ChangeEventData
	for _, e := range capture.all() {
		if e.Category != CategoryChange || e.Change == nil {
			t.Fatalf("unexpected event %+v", e)
		}
		if e.ModelID != m.ID().String() || e.Source != "plugin.xml" {
			t.Errorf("event identity = %q %q", e.ModelID, e.Source)
		}
		got = append(got, *e.Change)
	}

	want := []ChangeEventData{
		{Type: ChangeProperty, Path: ".", NodeKind: "plugin", Property: "version", OldValue: "1.0", NewValue: "2.0"},
		{Type: ChangeProperty, Path: "extension[0]/element[0]", NodeKind: "element", Property: "@k", OldValue: "v"},
		{Type: ChangeProperty, Path: "import[0]", NodeKind: "import", Property: "match", OldValue: "", NewValue: "perfect"},
		{Type: ChangeInsert, Path: "extension[1]", NodeKind: "extension", Container: ".", Index: 1},
		{Type: ChangeReorder, Path: "extension[1]", NodeKind: "extension", Container: ".", Index: 1, Other: "extension[0]"},
		{Type: ChangeRemove, Path: "extension[0]", NodeKind: "extension", Container: "."},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("journal mismatch (-want +got):\n%s", diff)
	}
}

func TestJournalLifecycle(t *testing.T) {
	m, j, capture := newJournaled(t)

	j.Loaded(m)
	if err := m.Reload(strings.NewReader(journalManifest), false); err != nil {
		t.Fatal(err)
	}
	j.Saved(m, 42)
	m.Reset()

	events := capture.all()
	if len(events) != 4 {
		t.Fatalf("got %d events, want 4", len(events))
	}
	actions := []LifecycleAction{ActionLoad, ActionReload, ActionSave, ActionReset}
	for i, e := range events {
		if e.Category != CategoryLifecycle || e.Lifecycle == nil {
			t.Fatalf("event %d = %+v", i, e)
		}
		if e.Lifecycle.Action != actions[i] {
			t.Errorf("event %d action = %s, want %s", i, e.Lifecycle.Action, actions[i])
		}
	}
	if events[0].Lifecycle.Nodes != 4 || events[0].Lifecycle.State != "LOADED" {
		t.Errorf("load event = %+v", events[0].Lifecycle)
	}
	if events[2].Lifecycle.Bytes != 42 {
		t.Errorf("save bytes = %d", events[2].Lifecycle.Bytes)
	}
}

func TestJournalFailed(t *testing.T) {
	m, j, capture := newJournaled(t)

	err := m.Load(strings.NewReader("<plugin>\n<a>\n<b>\n</plugin>"), false)
	j.Failed("load", err)
	j.Failed("save", errors.New("disk full"))

	events := capture.all()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	perr := events[0].Error
	if perr == nil || perr.Context != "load" || perr.Count != 2 || len(perr.Lines) == 0 {
		t.Errorf("parse failure event = %+v", perr)
	}
	if events[1].Error.Message != "disk full" || events[1].Error.Count != 0 {
		t.Errorf("plain failure event = %+v", events[1].Error)
	}
}

func TestJournalNilLogger(t *testing.T) {
	m := model.New(model.DefaultOptions())
	j := NewJournal(nil, m.ID(), "")
	j.SetSource("x.xml")
	j.Failed("load", errors.New("nothing"))
}
