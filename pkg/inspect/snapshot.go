package inspect

import (
	"github.com/manifestkit/manifest-go/pkg/model"
)

// Snapshot is a plain-data copy of a subtree, suitable for YAML or JSON
// export and for structural comparison in tests.
type Snapshot struct {
	Kind       string      `yaml:"kind" json:"kind"`
	Path       string      `yaml:"path" json:"path"`
	Properties []Property  `yaml:"properties,omitempty" json:"properties,omitempty"`
	Text       string      `yaml:"text,omitempty" json:"text,omitempty"`
	Lines      []int       `yaml:"lines,flow,omitempty" json:"lines,omitempty"`
	Comments   []Comment   `yaml:"comments,omitempty" json:"comments,omitempty"`
	Children   []*Snapshot `yaml:"children,omitempty" json:"children,omitempty"`
}

// Comment is a captured section comment of the root.
type Comment struct {
	Section string `yaml:"section" json:"section"`
	Text    string `yaml:"text" json:"text"`
}

// TakeSnapshot copies n and its descendants.
func TakeSnapshot(n model.Node) *Snapshot {
	return snapshot(n, PathOf(n).String())
}

func snapshot(n model.Node, path string) *Snapshot {
	s := &Snapshot{
		Kind:       n.Kind().String(),
		Path:       path,
		Properties: Properties(n),
	}
	if r := n.SourceRange(); r.Known() {
		s.Lines = []int{r.Start, r.Stop}
	}

	switch x := n.(type) {
	case *model.Element:
		s.Text = x.Text()
	case *model.Root:
		for _, sec := range []model.Section{model.SectionRuntime, model.SectionRequires} {
			for _, c := range x.LeadingComments(sec) {
				s.Comments = append(s.Comments, Comment{Section: sec.String(), Text: c})
			}
		}
	}

	c, ok := n.(model.Container)
	if !ok {
		return s
	}
	counts := map[model.NodeKind]int{}
	for _, child := range c.Children() {
		step := Step{Kind: child.Kind(), Index: counts[child.Kind()]}
		counts[child.Kind()]++
		childPath := step.String()
		if path != RootPath {
			childPath = path + "/" + childPath
		}
		s.Children = append(s.Children, snapshot(child, childPath))
	}
	return s
}

// Count returns the number of nodes in the snapshot.
func (s *Snapshot) Count() int {
	n := 1
	for _, c := range s.Children {
		n += c.Count()
	}
	return n
}
