package model

// NodeKind tags the concrete type of a node.
type NodeKind uint8

// Node kinds.
const (
	KindInvalid NodeKind = iota
	KindPlugin
	KindFragment
	KindExtension
	KindExtensionPoint
	KindLibrary
	KindImport
	KindElement
)

// String returns the manifest tag name of the kind.
func (k NodeKind) String() string {
	switch k {
	case KindPlugin:
		return "plugin"
	case KindFragment:
		return "fragment"
	case KindExtension:
		return "extension"
	case KindExtensionPoint:
		return "extension-point"
	case KindLibrary:
		return "library"
	case KindImport:
		return "import"
	case KindElement:
		return "element"
	default:
		return "invalid"
	}
}

// SourceRange is the line span a node was parsed from.
// The zero value means unknown.
type SourceRange struct {
	Start int
	Stop  int
}

// Known reports whether the range was recorded by the parser.
func (r SourceRange) Known() bool {
	return r.Start > 0
}

// Contains reports whether line falls inside the range.
func (r SourceRange) Contains(line int) bool {
	return r.Known() && line >= r.Start && line <= r.Stop
}

// Node is implemented by every manifest model object. The set of
// implementations is closed: *Root, *Extension, *ExtensionPoint, *Library,
// *Import and *Element.
type Node interface {
	// Handle returns the arena handle of the node.
	Handle() Handle

	// Kind returns the concrete kind.
	Kind() NodeKind

	// Model returns the owning model. It never changes.
	Model() *Model

	// Parent returns the containing node, or nil when detached.
	Parent() Node

	// Name returns the name, empty when absent.
	Name() string

	// SetName changes the name.
	SetName(name string) error

	// TranslatedName returns the display name, resolving %key references.
	TranslatedName() string

	// SourceRange returns the parsed line span.
	SourceRange() SourceRange

	// InModel reports whether the node is part of the model's live tree.
	InModel() bool

	// RestoreProperty re-applies oldValue for the given property key through
	// the regular setter. newValue is the value being replaced.
	RestoreProperty(key string, oldValue, newValue any) error

	base() *nodeBase
}

// Identifiable is a node with an optional, not necessarily unique, id.
type Identifiable interface {
	Node
	ID() string
	SetID(id string) error
}

type nodeBase struct {
	model  *Model
	arena  *arena
	handle Handle
	kind   NodeKind
	parent Handle

	name       string
	translated *string
	rng        SourceRange
	inModel    bool
}

// register allocates a handle for n in a.
func (b *nodeBase) register(m *Model, a *arena, kind NodeKind, n Node) {
	if m == nil {
		panic("model: node created without a model")
	}
	b.model = m
	b.arena = a
	b.kind = kind
	b.handle = a.add(n)
}

func (b *nodeBase) base() *nodeBase {
	return b
}

// self returns the concrete node that embeds b.
func (b *nodeBase) self() Node {
	return b.arena.get(b.handle)
}

// Handle returns the arena handle of the node.
func (b *nodeBase) Handle() Handle {
	return b.handle
}

// Kind returns the concrete kind.
func (b *nodeBase) Kind() NodeKind {
	return b.kind
}

// Model returns the owning model.
func (b *nodeBase) Model() *Model {
	return b.model
}

// Parent returns the containing node, or nil when detached.
func (b *nodeBase) Parent() Node {
	return b.arena.get(b.parent)
}

// Name returns the name, empty when absent.
func (b *nodeBase) Name() string {
	return b.name
}

// SetName changes the name.
func (b *nodeBase) SetName(name string) error {
	return b.model.edit(b.arena, PropName, func() (*change, error) {
		if b.name == name {
			return nil, nil
		}
		old := b.name
		b.name = name
		b.translated = nil
		return propertyChange(b.self(), PropName, old, name), nil
	})
}

// TranslatedName returns the display name. A name of the form %key is
// looked up in the model's translator and falls back to key.
func (b *nodeBase) TranslatedName() string {
	if b.translated != nil {
		return *b.translated
	}
	s := b.model.translate(b.name)
	b.translated = &s
	return s
}

// SourceRange returns the parsed line span.
func (b *nodeBase) SourceRange() SourceRange {
	return b.rng
}

// InModel reports whether the node is part of the model's live tree.
func (b *nodeBase) InModel() bool {
	return b.inModel
}

// restore handles the properties shared by every node kind.
func (b *nodeBase) restore(key string, oldValue any) (bool, error) {
	if key != PropName {
		return false, nil
	}
	s, err := stringValue(key, oldValue)
	if err != nil {
		return true, err
	}
	return true, b.SetName(s)
}

type identifiableBase struct {
	nodeBase
	id string
}

// ID returns the id, empty when absent.
func (b *identifiableBase) ID() string {
	return b.id
}

// SetID changes the id.
func (b *identifiableBase) SetID(id string) error {
	return b.setString(PropID, &b.id, id)
}

func (b *identifiableBase) restore(key string, oldValue any) (bool, error) {
	if key != PropID {
		return b.nodeBase.restore(key, oldValue)
	}
	s, err := stringValue(key, oldValue)
	if err != nil {
		return true, err
	}
	return true, b.SetID(s)
}

// setString is the common body of the string property setters.
func (b *nodeBase) setString(key string, field *string, value string) error {
	return b.model.edit(b.arena, key, func() (*change, error) {
		if *field == value {
			return nil, nil
		}
		old := *field
		*field = value
		return propertyChange(b.self(), key, old, value), nil
	})
}

func (b *nodeBase) setBool(key string, field *bool, value bool) error {
	return b.model.edit(b.arena, key, func() (*change, error) {
		if *field == value {
			return nil, nil
		}
		old := *field
		*field = value
		return propertyChange(b.self(), key, old, value), nil
	})
}
