package inspect

import (
	"errors"
	"reflect"
	"testing"

	"github.com/manifestkit/manifest-go/pkg/model"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    *Path
		wantErr error
	}{
		{
			name:  "root",
			input: ".",
			want:  &Path{},
		},
		{
			name:  "root property",
			input: "@version",
			want:  &Path{Property: "version"},
		},
		{
			name:  "index steps",
			input: "extension[2]/element[0]",
			want: &Path{Steps: []Step{
				{Kind: model.KindExtension, Index: 2},
				{Kind: model.KindElement, Index: 0},
			}},
		},
		{
			name:  "aliases and attribute",
			input: "ext[0]/el[1]/@class",
			want: &Path{
				Steps: []Step{
					{Kind: model.KindExtension, Index: 0},
					{Kind: model.KindElement, Index: 1},
				},
				Property: "class",
			},
		},
		{
			name:  "key containing slash",
			input: "library[lib/core.jar]/@type",
			want: &Path{
				Steps:    []Step{{Kind: model.KindLibrary, Key: "lib/core.jar"}},
				Property: "type",
			},
		},
		{
			name:  "case insensitive step",
			input: "Extension-Point[views]",
			want:  &Path{Steps: []Step{{Kind: model.KindExtensionPoint, Key: "views"}}},
		},
		{name: "empty", input: "  ", wantErr: ErrEmptyPath},
		{name: "leading slash", input: "/extension[0]", wantErr: ErrInvalidPath},
		{name: "missing index", input: "extension", wantErr: ErrInvalidPath},
		{name: "missing index before slash", input: "extension/element[0]", wantErr: ErrInvalidPath},
		{name: "unterminated", input: "extension[0", wantErr: ErrInvalidPath},
		{name: "empty selector", input: "extension[]", wantErr: ErrInvalidPath},
		{name: "trailing slash", input: "extension[0]/", wantErr: ErrInvalidPath},
		{name: "junk after step", input: "extension[0]x", wantErr: ErrInvalidPath},
		{name: "unknown step", input: "feature[0]", wantErr: ErrUnknownStep},
		{name: "empty property", input: "extension[0]/@", wantErr: ErrInvalidPath},
		{name: "property not last", input: "@id/extension[0]", wantErr: ErrInvalidPath},
		{name: "index overflow", input: "extension[99999999999999999999]", wantErr: ErrInvalidNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePath(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParsePath(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePath(%q) error = %v", tt.input, err)
			}
			if !reflect.DeepEqual(got.Steps, tt.want.Steps) {
				t.Errorf("Steps = %+v, want %+v", got.Steps, tt.want.Steps)
			}
			if got.Property != tt.want.Property {
				t.Errorf("Property = %q, want %q", got.Property, tt.want.Property)
			}
		})
	}
}

func TestPathString(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{".", "."},
		{"@version", "@version"},
		{"ext[0]/el[1]/@class", "extension[0]/element[1]/@class"},
		{"xp[views]", "extension-point[views]"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p, err := ParsePath(tt.input)
			if err != nil {
				t.Fatalf("ParsePath() error = %v", err)
			}
			if got := p.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPathOfRoundTrip(t *testing.T) {
	m := loadTestModel(t)

	model.Walk(m.Root(), func(n model.Node) bool {
		p := PathOf(n)
		parsed, err := ParsePath(p.String())
		if err != nil {
			t.Fatalf("ParsePath(%q) error = %v", p, err)
		}
		got, err := Resolve(m.Root(), parsed)
		if err != nil {
			t.Fatalf("Resolve(%q) error = %v", p, err)
		}
		if got != n {
			t.Errorf("Resolve(PathOf(%s)) returned a different node", p)
		}
		return true
	})
}

func TestPathOfDetached(t *testing.T) {
	m := loadTestModel(t)
	x := m.NewExtension("p")
	e := m.NewElement("a")
	if err := x.AddElement(e); err != nil {
		t.Fatalf("AddElement() error = %v", err)
	}

	if got := PathOf(e).String(); got != "element[0]" {
		t.Errorf("PathOf(detached) = %q, want %q", got, "element[0]")
	}
}
