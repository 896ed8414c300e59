package inspect

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func TestTakeSnapshot(t *testing.T) {
	m := loadTestModel(t)
	s := TakeSnapshot(m.Root().Extensions()[0])

	want := &Snapshot{
		Kind:       "extension",
		Path:       "extension[0]",
		Properties: []Property{{"id", "main"}, {"point", "org.example.core.views"}},
		Lines:      []int{11, 14},
		Children: []*Snapshot{
			{
				Kind:       "element",
				Path:       "extension[0]/element[0]",
				Properties: []Property{{"id", "v1"}, {"class", "a.B"}},
				Text:       "Hello",
				Lines:      []int{12, 12},
			},
			{
				Kind:       "element",
				Path:       "extension[0]/element[1]",
				Properties: []Property{{"name", "c"}},
				Lines:      []int{13, 13},
				Children: []*Snapshot{{
					Kind:  "element",
					Path:  "extension[0]/element[1]/element[0]",
					Lines: []int{13, 13},
				}},
			},
		},
	}

	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("TakeSnapshot() mismatch (-want +got):\n%s", diff)
	}
}

func TestSnapshotRoot(t *testing.T) {
	m := loadTestModel(t)
	s := TakeSnapshot(m.Root())

	if s.Path != "." {
		t.Errorf("Path = %q, want %q", s.Path, ".")
	}
	if s.Count() != m.NodeCount() {
		t.Errorf("Count() = %d, want %d", s.Count(), m.NodeCount())
	}
	if len(s.Comments) != 1 || s.Comments[0] != (Comment{Section: "runtime", Text: " libs "}) {
		t.Errorf("Comments = %+v", s.Comments)
	}
	if s.Children[0].Path != "library[0]" {
		t.Errorf("first child path = %q", s.Children[0].Path)
	}
}

func TestSnapshotEncodings(t *testing.T) {
	m := loadTestModel(t)
	s := TakeSnapshot(m.Root())

	t.Run("yaml", func(t *testing.T) {
		data, err := yaml.Marshal(s)
		if err != nil {
			t.Fatalf("yaml.Marshal() error = %v", err)
		}
		var back Snapshot
		if err := yaml.Unmarshal(data, &back); err != nil {
			t.Fatalf("yaml.Unmarshal() error = %v", err)
		}
		if diff := cmp.Diff(s, &back); diff != "" {
			t.Errorf("yaml round trip mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("json", func(t *testing.T) {
		data, err := json.Marshal(s)
		if err != nil {
			t.Fatalf("json.Marshal() error = %v", err)
		}
		var back Snapshot
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("json.Unmarshal() error = %v", err)
		}
		if diff := cmp.Diff(s, &back); diff != "" {
			t.Errorf("json round trip mismatch (-want +got):\n%s", diff)
		}
	})
}
