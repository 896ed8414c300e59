package model

import "slices"

// Section names a part of the root whose leading comments are preserved.
type Section uint8

// Sections with a comment side table.
const (
	SectionRuntime Section = iota
	SectionRequires
)

// String returns the section tag name.
func (s Section) String() string {
	switch s {
	case SectionRuntime:
		return "runtime"
	case SectionRequires:
		return "requires"
	default:
		return "unknown"
	}
}

// Root is the <plugin> or <fragment> element of a manifest.
type Root struct {
	identifiableBase

	version       string
	providerName  string
	className     string
	pluginID      string
	pluginVersion string
	match         MatchRule
	schemaVersion string

	libraries       []*Library
	imports         []*Import
	extensionPoints []*ExtensionPoint
	extensions      []*Extension
	unknown         []*Element

	comments map[Section][]string
}

func newRoot(m *Model, a *arena, fragment bool) *Root {
	r := &Root{}
	kind := KindPlugin
	if fragment {
		kind = KindFragment
	}
	r.register(m, a, kind, r)
	return r
}

// IsFragment reports whether the root is a <fragment>.
func (r *Root) IsFragment() bool {
	return r.kind == KindFragment
}

// Version returns the plugin version.
func (r *Root) Version() string {
	return r.version
}

// SetVersion changes the plugin version.
func (r *Root) SetVersion(v string) error {
	return r.setString(PropVersion, &r.version, v)
}

// ProviderName returns the provider name.
func (r *Root) ProviderName() string {
	return r.providerName
}

// SetProviderName changes the provider name.
func (r *Root) SetProviderName(v string) error {
	return r.setString(PropProviderName, &r.providerName, v)
}

// SchemaVersion returns the version of the eclipse processing instruction.
// Empty means a legacy manifest.
func (r *Root) SchemaVersion() string {
	return r.schemaVersion
}

// SetSchemaVersion changes the schema version; empty selects the legacy dialect.
func (r *Root) SetSchemaVersion(v string) error {
	return r.setString(PropSchemaVersion, &r.schemaVersion, v)
}

// IsLegacy reports whether the manifest uses the legacy dialect.
func (r *Root) IsLegacy() bool {
	return r.schemaVersion == ""
}

// ClassName returns the plugin class. Always empty for fragments.
func (r *Root) ClassName() string {
	return r.className
}

// SetClassName changes the plugin class.
func (r *Root) SetClassName(v string) error {
	if r.IsFragment() {
		return ErrNotPlugin
	}
	return r.setString(PropClass, &r.className, v)
}

// PluginID returns the host plugin id of a fragment.
func (r *Root) PluginID() string {
	return r.pluginID
}

// SetPluginID changes the host plugin id.
func (r *Root) SetPluginID(v string) error {
	if !r.IsFragment() {
		return ErrNotFragment
	}
	return r.setString(PropPluginID, &r.pluginID, v)
}

// PluginVersion returns the host version constraint of a fragment.
func (r *Root) PluginVersion() string {
	return r.pluginVersion
}

// SetPluginVersion changes the host version constraint.
func (r *Root) SetPluginVersion(v string) error {
	if !r.IsFragment() {
		return ErrNotFragment
	}
	return r.setString(PropPluginVersion, &r.pluginVersion, v)
}

// Match returns the host match rule of a fragment.
func (r *Root) Match() MatchRule {
	return r.match
}

// SetMatch changes the host match rule.
func (r *Root) SetMatch(m MatchRule) error {
	if !r.IsFragment() {
		return ErrNotFragment
	}
	return r.model.edit(r.arena, PropMatch, func() (*change, error) {
		if r.match == m {
			return nil, nil
		}
		old := r.match
		r.match = m
		return propertyChange(r, PropMatch, old, m), nil
	})
}

// LeadingComments returns the comments captured right before a section.
func (r *Root) LeadingComments(s Section) []string {
	return slices.Clone(r.comments[s])
}

func (r *Root) addComment(s Section, text string) {
	if r.comments == nil {
		r.comments = make(map[Section][]string)
	}
	r.comments[s] = append(r.comments[s], text)
}

// Libraries returns the runtime libraries.
func (r *Root) Libraries() []*Library {
	return slices.Clone(r.libraries)
}

// AddLibrary appends a library.
func (r *Root) AddLibrary(l *Library) error {
	return insertChild(r, &r.libraries, -1, l)
}

// AddLibraryAt inserts a library at index.
func (r *Root) AddLibraryAt(index int, l *Library) error {
	return insertChild(r, &r.libraries, index, l)
}

// RemoveLibrary detaches a library.
func (r *Root) RemoveLibrary(l *Library) error {
	return removeChild(r, &r.libraries, l)
}

// SwapLibraries exchanges two libraries.
func (r *Root) SwapLibraries(a, b *Library) error {
	return swapChildren(r, &r.libraries, a, b)
}

// FindLibrary returns the first library with the given name.
func (r *Root) FindLibrary(name string) *Library {
	for _, l := range r.libraries {
		if l.name == name {
			return l
		}
	}
	return nil
}

// Imports returns the required plugins.
func (r *Root) Imports() []*Import {
	return slices.Clone(r.imports)
}

// AddImport appends an import.
func (r *Root) AddImport(i *Import) error {
	return insertChild(r, &r.imports, -1, i)
}

// AddImportAt inserts an import at index.
func (r *Root) AddImportAt(index int, i *Import) error {
	return insertChild(r, &r.imports, index, i)
}

// RemoveImport detaches an import.
func (r *Root) RemoveImport(i *Import) error {
	return removeChild(r, &r.imports, i)
}

// SwapImports exchanges two imports.
func (r *Root) SwapImports(a, b *Import) error {
	return swapChildren(r, &r.imports, a, b)
}

// FindImport returns the first import of the given plugin id.
func (r *Root) FindImport(pluginID string) *Import {
	for _, i := range r.imports {
		if i.id == pluginID {
			return i
		}
	}
	return nil
}

// ExtensionPoints returns the declared extension points.
func (r *Root) ExtensionPoints() []*ExtensionPoint {
	return slices.Clone(r.extensionPoints)
}

// AddExtensionPoint appends an extension point.
func (r *Root) AddExtensionPoint(p *ExtensionPoint) error {
	return insertChild(r, &r.extensionPoints, -1, p)
}

// AddExtensionPointAt inserts an extension point at index.
func (r *Root) AddExtensionPointAt(index int, p *ExtensionPoint) error {
	return insertChild(r, &r.extensionPoints, index, p)
}

// RemoveExtensionPoint detaches an extension point.
func (r *Root) RemoveExtensionPoint(p *ExtensionPoint) error {
	return removeChild(r, &r.extensionPoints, p)
}

// SwapExtensionPoints exchanges two extension points.
func (r *Root) SwapExtensionPoints(a, b *ExtensionPoint) error {
	return swapChildren(r, &r.extensionPoints, a, b)
}

// FindExtensionPoint returns the extension point with the given id, simple
// or fully qualified.
func (r *Root) FindExtensionPoint(id string) *ExtensionPoint {
	for _, p := range r.extensionPoints {
		if p.id == id || p.FullID() == id {
			return p
		}
	}
	return nil
}

// Extensions returns the extensions.
func (r *Root) Extensions() []*Extension {
	return slices.Clone(r.extensions)
}

// AddExtension appends an extension.
func (r *Root) AddExtension(x *Extension) error {
	return insertChild(r, &r.extensions, -1, x)
}

// AddExtensionAt inserts an extension at index.
func (r *Root) AddExtensionAt(index int, x *Extension) error {
	return insertChild(r, &r.extensions, index, x)
}

// RemoveExtension detaches an extension.
func (r *Root) RemoveExtension(x *Extension) error {
	return removeChild(r, &r.extensions, x)
}

// SwapExtensions exchanges two extensions.
func (r *Root) SwapExtensions(a, b *Extension) error {
	return swapChildren(r, &r.extensions, a, b)
}

// ExtensionsByPoint returns the extensions contributing to point.
func (r *Root) ExtensionsByPoint(point string) []*Extension {
	var out []*Extension
	for _, x := range r.extensions {
		if x.point == point {
			out = append(out, x)
		}
	}
	return out
}

// RemoveExtensionsByPoint removes every extension contributing to point and
// returns how many were removed.
func (r *Root) RemoveExtensionsByPoint(point string) (int, error) {
	matches := r.ExtensionsByPoint(point)
	if len(matches) == 0 {
		return 0, r.model.authorize()
	}
	for n, x := range matches {
		if err := r.RemoveExtension(x); err != nil {
			return n, err
		}
	}
	return len(matches), nil
}

// UnknownElements returns the top-level elements the manifest format does
// not define. They are kept and written after the extensions.
func (r *Root) UnknownElements() []*Element {
	return slices.Clone(r.unknown)
}

// AddUnknownElement appends an unknown top-level element.
func (r *Root) AddUnknownElement(e *Element) error {
	return insertChild(r, &r.unknown, -1, e)
}

// RemoveUnknownElement detaches an unknown top-level element.
func (r *Root) RemoveUnknownElement(e *Element) error {
	return removeChild(r, &r.unknown, e)
}

// Children returns all children in serialization order.
func (r *Root) Children() []Node {
	out := make([]Node, 0, len(r.libraries)+len(r.imports)+len(r.extensionPoints)+len(r.extensions)+len(r.unknown))
	out = append(out, nodes(r.libraries)...)
	out = append(out, nodes(r.imports)...)
	out = append(out, nodes(r.extensionPoints)...)
	out = append(out, nodes(r.extensions)...)
	out = append(out, nodes(r.unknown)...)
	return out
}

// IndexOf returns the position of child within the list for its kind, or -1.
func (r *Root) IndexOf(child Node) int {
	switch c := child.(type) {
	case *Library:
		return slices.Index(r.libraries, c)
	case *Import:
		return slices.Index(r.imports, c)
	case *ExtensionPoint:
		return slices.Index(r.extensionPoints, c)
	case *Extension:
		return slices.Index(r.extensions, c)
	case *Element:
		return slices.Index(r.unknown, c)
	}
	return -1
}

// InsertChild inserts child into the list for its kind.
func (r *Root) InsertChild(index int, child Node) error {
	switch c := child.(type) {
	case *Library:
		return r.AddLibraryAt(index, c)
	case *Import:
		return r.AddImportAt(index, c)
	case *ExtensionPoint:
		return r.AddExtensionPointAt(index, c)
	case *Extension:
		return r.AddExtensionAt(index, c)
	case *Element:
		return insertChild(r, &r.unknown, index, c)
	}
	return ErrInvalidChild
}

// RemoveChild detaches child.
func (r *Root) RemoveChild(child Node) error {
	switch c := child.(type) {
	case *Library:
		return r.RemoveLibrary(c)
	case *Import:
		return r.RemoveImport(c)
	case *ExtensionPoint:
		return r.RemoveExtensionPoint(c)
	case *Extension:
		return r.RemoveExtension(c)
	case *Element:
		return r.RemoveUnknownElement(c)
	}
	return ErrNotFound
}

// SwapChildren exchanges two children of the same kind.
func (r *Root) SwapChildren(a, b Node) error {
	switch a.(type) {
	case *Library:
		return swapKind[*Library](r, &r.libraries, a, b)
	case *Import:
		return swapKind[*Import](r, &r.imports, a, b)
	case *ExtensionPoint:
		return swapKind[*ExtensionPoint](r, &r.extensionPoints, a, b)
	case *Extension:
		return swapKind[*Extension](r, &r.extensions, a, b)
	case *Element:
		return swapKind[*Element](r, &r.unknown, a, b)
	}
	return ErrNotFound
}

// RestoreProperty re-applies oldValue for key.
func (r *Root) RestoreProperty(key string, oldValue, newValue any) error {
	var set func(string) error
	switch key {
	case PropVersion:
		set = r.SetVersion
	case PropProviderName:
		set = r.SetProviderName
	case PropSchemaVersion:
		set = r.SetSchemaVersion
	case PropClass:
		set = r.SetClassName
	case PropPluginID:
		set = r.SetPluginID
	case PropPluginVersion:
		set = r.SetPluginVersion
	case PropMatch:
		m, err := matchValue(key, oldValue)
		if err != nil {
			return err
		}
		return r.SetMatch(m)
	}
	if set != nil {
		s, err := stringValue(key, oldValue)
		if err != nil {
			return err
		}
		return set(s)
	}
	if handled, err := r.restore(key, oldValue); handled {
		return err
	}
	return unknownProperty(r, key)
}
