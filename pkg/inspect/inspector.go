package inspect

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/manifestkit/manifest-go/pkg/model"
)

// Inspector errors.
var (
	ErrNodeNotFound     = errors.New("node not found")
	ErrPropertyNotFound = errors.New("property not found")
	ErrInvalidValue     = errors.New("invalid property value")
	ErrNoRoot           = errors.New("model has no manifest loaded")
)

// Inspector provides inspection and mutation capabilities for a manifest model.
type Inspector struct {
	model *model.Model
}

// NewInspector creates a new Inspector for the given model.
func NewInspector(m *model.Model) *Inspector {
	return &Inspector{model: m}
}

// Model returns the underlying manifest model.
func (i *Inspector) Model() *model.Model {
	return i.model
}

// Property is one named value of a node as shown by the inspector.
type Property struct {
	Name  string `yaml:"name" json:"name"`
	Value string `yaml:"value" json:"value"`
}

// Resolve walks p from root and returns the selected node. A trailing
// property is ignored.
func Resolve(root model.Node, p *Path) (model.Node, error) {
	n := root
	for depth, step := range p.Steps {
		c, ok := n.(model.Container)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no children (step %d)", ErrNodeNotFound, n.Kind(), depth)
		}
		next := selectChild(c, step)
		if next == nil {
			return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, step)
		}
		n = next
	}
	return n, nil
}

func selectChild(c model.Container, s Step) model.Node {
	idx := 0
	for _, child := range c.Children() {
		if child.Kind() != s.Kind {
			continue
		}
		if s.Key != "" {
			if KeyOf(child) == s.Key {
				return child
			}
			continue
		}
		if idx == s.Index {
			return child
		}
		idx++
	}
	return nil
}

// Node resolves p against the loaded tree.
func (i *Inspector) Node(p *Path) (model.Node, error) {
	root := i.model.Root()
	if root == nil {
		return nil, ErrNoRoot
	}
	return Resolve(root, p)
}

// Properties returns the non-empty properties of n in manifest order.
// Element attributes are reported with their attribute names.
func Properties(n model.Node) []Property {
	var out []Property
	if e, ok := n.(*model.Element); ok {
		for _, a := range e.Attributes() {
			out = append(out, Property{Name: a.Name, Value: a.Value})
		}
		return out
	}
	for _, acc := range accessorsFor(n) {
		if v := acc.get(n); v != "" {
			out = append(out, Property{Name: acc.name, Value: v})
		}
	}
	return out
}

// Read returns the value of the property named by p.
func (i *Inspector) Read(p *Path) (string, error) {
	if p.Property == "" {
		return "", fmt.Errorf("%w: path %s selects a node", ErrPropertyNotFound, p)
	}
	n, err := i.Node(p)
	if err != nil {
		return "", err
	}
	if e, ok := n.(*model.Element); ok {
		v, ok := e.Attribute(p.Property)
		if !ok {
			return "", fmt.Errorf("%w: @%s", ErrPropertyNotFound, p.Property)
		}
		return v, nil
	}
	acc, err := accessor(n, p.Property)
	if err != nil {
		return "", err
	}
	return acc.get(n), nil
}

// Write sets the property named by p. Edits go through the model and fail
// with model.ErrEditNotPermitted when it is not editable.
func (i *Inspector) Write(p *Path, value string) error {
	if p.Property == "" {
		return fmt.Errorf("%w: path %s selects a node", ErrPropertyNotFound, p)
	}
	n, err := i.Node(p)
	if err != nil {
		return err
	}
	if e, ok := n.(*model.Element); ok {
		return e.SetAttributeValue(p.Property, value)
	}
	acc, err := accessor(n, p.Property)
	if err != nil {
		return err
	}
	return acc.set(n, value)
}

// Remove deletes what p selects: an element attribute or a whole node.
// Non-attribute properties are cleared instead.
func (i *Inspector) Remove(p *Path) error {
	n, err := i.Node(p)
	if err != nil {
		return err
	}
	if p.Property != "" {
		if e, ok := n.(*model.Element); ok {
			if _, exists := e.Attribute(p.Property); !exists {
				return fmt.Errorf("%w: @%s", ErrPropertyNotFound, p.Property)
			}
			return e.RemoveAttribute(p.Property)
		}
		acc, err := accessor(n, p.Property)
		if err != nil {
			return err
		}
		return acc.set(n, "")
	}

	parent, ok := n.Parent().(model.Container)
	if !ok {
		return fmt.Errorf("%w: the root cannot be removed", ErrInvalidValue)
	}
	return parent.RemoveChild(n)
}

// SetText replaces the text of the element selected by p.
func (i *Inspector) SetText(p *Path, text string) error {
	n, err := i.Node(p)
	if err != nil {
		return err
	}
	e, ok := n.(*model.Element)
	if !ok {
		return fmt.Errorf("%w: %s has no text", ErrInvalidValue, n.Kind())
	}
	return e.SetText(text)
}

type propertyAccessor struct {
	name string
	get  func(model.Node) string
	set  func(model.Node, string) error
}

func accessor(n model.Node, name string) (propertyAccessor, error) {
	for _, acc := range accessorsFor(n) {
		if acc.name == name {
			return acc, nil
		}
	}
	return propertyAccessor{}, fmt.Errorf("%w: %s on %s", ErrPropertyNotFound, name, n.Kind())
}

var (
	idAccessor = propertyAccessor{
		name: model.PropID,
		get:  func(n model.Node) string { return n.(model.Identifiable).ID() },
		set:  func(n model.Node, v string) error { return n.(model.Identifiable).SetID(v) },
	}
	nameAccessor = propertyAccessor{
		name: model.PropName,
		get:  func(n model.Node) string { return n.Name() },
		set:  func(n model.Node, v string) error { return n.SetName(v) },
	}
)

func accessorsFor(n model.Node) []propertyAccessor {
	switch x := n.(type) {
	case *model.Root:
		return rootAccessors(x)
	case *model.Extension:
		return []propertyAccessor{idAccessor, nameAccessor, {
			name: model.PropPoint,
			get:  func(model.Node) string { return x.Point() },
			set:  func(_ model.Node, v string) error { return x.SetPoint(v) },
		}}
	case *model.ExtensionPoint:
		return []propertyAccessor{idAccessor, nameAccessor, {
			name: model.PropSchema,
			get:  func(model.Node) string { return x.Schema() },
			set:  func(_ model.Node, v string) error { return x.SetSchema(v) },
		}}
	case *model.Library:
		return []propertyAccessor{nameAccessor, {
			name: model.PropType,
			get:  func(model.Node) string { return x.Type() },
			set:  func(_ model.Node, v string) error { return x.SetType(v) },
		}, {
			name: "export",
			get:  func(model.Node) string { return strings.Join(x.ContentFilters(), ",") },
			set:  func(_ model.Node, v string) error { return x.SetContentFilters(splitFilters(v)) },
		}}
	case *model.Import:
		return []propertyAccessor{{
			name: "plugin",
			get:  func(model.Node) string { return x.ID() },
			set:  func(_ model.Node, v string) error { return x.SetID(v) },
		}, {
			name: model.PropVersion,
			get:  func(model.Node) string { return x.Version() },
			set:  func(_ model.Node, v string) error { return x.SetVersion(v) },
		}, {
			name: model.PropMatch,
			get:  func(model.Node) string { return x.Match().String() },
			set: func(_ model.Node, v string) error {
				r, err := parseMatch(v)
				if err != nil {
					return err
				}
				return x.SetMatch(r)
			},
		}, {
			name: model.PropReexported,
			get:  func(model.Node) string { return flag(x.Reexported()) },
			set: func(_ model.Node, v string) error {
				b, err := parseFlag(v)
				if err != nil {
					return err
				}
				return x.SetReexported(b)
			},
		}, {
			name: model.PropOptional,
			get:  func(model.Node) string { return flag(x.Optional()) },
			set: func(_ model.Node, v string) error {
				b, err := parseFlag(v)
				if err != nil {
					return err
				}
				return x.SetOptional(b)
			},
		}}
	}
	return nil
}

func rootAccessors(r *model.Root) []propertyAccessor {
	str := func(name string, get func() string, set func(string) error) propertyAccessor {
		return propertyAccessor{
			name: name,
			get:  func(model.Node) string { return get() },
			set:  func(_ model.Node, v string) error { return set(v) },
		}
	}

	out := []propertyAccessor{
		idAccessor,
		nameAccessor,
		str(model.PropVersion, r.Version, r.SetVersion),
		str(model.PropProviderName, r.ProviderName, r.SetProviderName),
	}
	if r.IsFragment() {
		out = append(out,
			str(model.PropPluginID, r.PluginID, r.SetPluginID),
			str(model.PropPluginVersion, r.PluginVersion, r.SetPluginVersion),
			propertyAccessor{
				name: model.PropMatch,
				get:  func(model.Node) string { return r.Match().String() },
				set: func(_ model.Node, v string) error {
					m, err := parseMatch(v)
					if err != nil {
						return err
					}
					return r.SetMatch(m)
				},
			},
		)
	} else {
		out = append(out, str(model.PropClass, r.ClassName, r.SetClassName))
	}
	return append(out, str(model.PropSchemaVersion, r.SchemaVersion, r.SetSchemaVersion))
}

func parseMatch(v string) (model.MatchRule, error) {
	r, ok := model.ParseMatchRule(v)
	if !ok {
		return model.MatchNone, fmt.Errorf("%w: match %q", ErrInvalidValue, v)
	}
	return r, nil
}

func parseFlag(v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, v)
	}
	return b, nil
}

func flag(b bool) string {
	if b {
		return "true"
	}
	return ""
}

func splitFilters(v string) []string {
	var out []string
	for _, f := range strings.Split(v, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
