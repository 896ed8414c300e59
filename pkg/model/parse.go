package model

import (
	"strings"

	"github.com/manifestkit/manifest-go/pkg/markup"
	"github.com/manifestkit/manifest-go/pkg/version"
)

// DefaultSchemaVersion is used for an eclipse instruction without a version.
const DefaultSchemaVersion = version.CurrentSchema

type frameKind uint8

const (
	frameRoot frameKind = iota
	frameRuntime
	frameRequires
	frameLibrary
	frameImport
	frameExtensionPoint
	frameExtension
	frameElement
	frameIgnored
)

type parseFrame struct {
	kind frameKind
	node Node
	text strings.Builder
}

// builder turns scanner events into in-model nodes. One builder serves
// exactly one load.
type builder struct {
	m      *Model
	a      *arena
	diag   *markup.Collector
	points map[string]bool

	root          *Root
	schemaVersion string
	pending       []string
	stack         []*parseFrame
}

var _ markup.Handler = (*builder)(nil)

// parse builds a new tree in a. With a non-nil points set only extensions
// for those points are built and text is discarded.
func parse(m *Model, a *arena, data []byte, points map[string]bool) (*Root, *ParseErrors) {
	s := markup.NewScanner(markup.Options{DiscardText: points != nil})
	b := &builder{
		m:      m,
		a:      a,
		diag:   s.Collector(),
		points: points,
	}

	diag := s.ScanBytes(data, b)
	if diag.HasErrors() {
		return nil, newParseErrors(diag)
	}
	if b.root == nil {
		diag.Fatalf(0, "no manifest root")
		return nil, newParseErrors(diag)
	}
	return b.root, nil
}

func (b *builder) top() *parseFrame {
	if len(b.stack) == 0 {
		return nil
	}
	return b.stack[len(b.stack)-1]
}

func (b *builder) push(kind frameKind, n Node) {
	b.stack = append(b.stack, &parseFrame{kind: kind, node: n})
}

// ProcInst records the eclipse instruction that selects the current dialect.
func (b *builder) ProcInst(target, inst string, line int) {
	if target != "eclipse" || b.root != nil {
		return
	}
	v, ok := markup.PseudoAttr(inst, "version")
	if !ok {
		b.schemaVersion = DefaultSchemaVersion
		return
	}
	if _, err := version.ParseSchema(v); err != nil {
		b.m.debugLog("bad eclipse version, using default", "line", line, "error", err)
		v = DefaultSchemaVersion
	}
	b.schemaVersion = v
}

// Comment keeps comments written directly under the root; they attach to the
// next runtime or requires section.
func (b *builder) Comment(text string, line int) {
	if f := b.top(); f != nil && f.kind == frameRoot {
		b.pending = append(b.pending, text)
	}
}

// Text accumulates character data for the innermost element.
func (b *builder) Text(data string, line int) {
	if f := b.top(); f != nil && f.kind == frameElement {
		f.text.WriteString(data)
	}
}

// StartElement creates the node for a tag.
func (b *builder) StartElement(name string, attrs []markup.Attr, line int) markup.Action {
	parent := b.top()
	if parent == nil {
		return b.startRoot(name, attrs, line)
	}

	switch parent.kind {
	case frameRoot:
		return b.startSection(name, attrs, line)
	case frameRuntime:
		if name != "library" {
			b.push(frameIgnored, nil)
			return markup.Descend
		}
		l := newLibrary(b.m, b.a, attrValue(attrs, "name"))
		l.libType = attrValue(attrs, "type")
		l.rng = SourceRange{Start: line, Stop: line}
		attachParsed(b.root, &b.root.libraries, l)
		b.push(frameLibrary, l)
	case frameLibrary:
		if name == "export" {
			lib := parent.node.(*Library)
			if f := attrValue(attrs, "name"); validExportFilter(f) {
				lib.exports = append(lib.exports, f)
			}
		}
		b.push(frameIgnored, nil)
	case frameRequires:
		if name != "import" {
			b.push(frameIgnored, nil)
			return markup.Descend
		}
		b.startImport(attrs, line)
	case frameExtension, frameElement:
		e := b.newElement(name, attrs, line)
		switch c := parent.node.(type) {
		case *Extension:
			attachParsed(c, &c.elements, e)
		case *Element:
			attachParsed(c, &c.children, e)
		}
		b.push(frameElement, e)
	default:
		b.push(frameIgnored, nil)
	}
	return markup.Descend
}

func (b *builder) startRoot(name string, attrs []markup.Attr, line int) markup.Action {
	if name != "plugin" && name != "fragment" {
		b.diag.Errorf(line, "unexpected root element <%s>, want <plugin> or <fragment>", name)
		return markup.Skip
	}

	r := newRoot(b.m, b.a, name == "fragment")
	r.id = attrValue(attrs, "id")
	r.name = attrValue(attrs, "name")
	r.version = attrValue(attrs, "version")
	r.providerName = attrValue(attrs, "provider-name")
	r.schemaVersion = b.schemaVersion
	if r.IsFragment() {
		r.pluginID = attrValue(attrs, "plugin-id")
		r.pluginVersion = attrValue(attrs, "plugin-version")
		r.match = b.matchRule(attrs, line)
	} else {
		r.className = attrValue(attrs, "class")
	}
	r.rng = SourceRange{Start: line, Stop: line}

	b.root = r
	b.push(frameRoot, r)
	return markup.Descend
}

func (b *builder) startSection(name string, attrs []markup.Attr, line int) markup.Action {
	r := b.root
	switch name {
	case "runtime":
		b.flushComments(SectionRuntime)
		b.push(frameRuntime, nil)
	case "requires":
		b.flushComments(SectionRequires)
		b.push(frameRequires, nil)
	case "extension-point":
		b.pending = nil
		p := newExtensionPoint(b.m, b.a, attrValue(attrs, "id"))
		p.name = attrValue(attrs, "name")
		p.schema = attrValue(attrs, "schema")
		p.rng = SourceRange{Start: line, Stop: line}
		attachParsed(r, &r.extensionPoints, p)
		b.push(frameExtensionPoint, p)
	case "extension":
		b.pending = nil
		point := attrValue(attrs, "point")
		if b.points != nil && !b.points[point] {
			return markup.Skip
		}
		x := newExtension(b.m, b.a, point)
		x.id = attrValue(attrs, "id")
		x.name = attrValue(attrs, "name")
		x.rng = SourceRange{Start: line, Stop: line}
		attachParsed(r, &r.extensions, x)
		b.push(frameExtension, x)
	default:
		b.pending = nil
		e := b.newElement(name, attrs, line)
		attachParsed(r, &r.unknown, e)
		b.push(frameElement, e)
	}
	return markup.Descend
}

func (b *builder) startImport(attrs []markup.Attr, line int) {
	i := newImport(b.m, b.a, attrValue(attrs, "plugin"))
	i.version = attrValue(attrs, "version")
	i.match = b.matchRule(attrs, line)
	i.reexported = attrValue(attrs, "export") == "true"
	i.optional = attrValue(attrs, "optional") == "true"
	i.rng = SourceRange{Start: line, Stop: line}
	attachParsed(b.root, &b.root.imports, i)
	b.push(frameImport, i)
}

func (b *builder) newElement(name string, attrs []markup.Attr, line int) *Element {
	e := newElement(b.m, b.a, name)
	for _, a := range attrs {
		e.attrs.set(a.Name, a.Value)
	}
	e.rng = SourceRange{Start: line, Stop: line}
	return e
}

// matchRule reads the match attribute. Unknown values are kept as no rule.
func (b *builder) matchRule(attrs []markup.Attr, line int) MatchRule {
	r, ok := ParseMatchRule(attrValue(attrs, "match"))
	if !ok {
		b.m.debugLog("unknown match rule ignored", "line", line, "match", attrValue(attrs, "match"))
	}
	return r
}

func (b *builder) flushComments(s Section) {
	for _, c := range b.pending {
		b.root.addComment(s, c)
	}
	b.pending = nil
}

// attachParsed links a freshly parsed child without authorization or events.
func attachParsed[T member](parent Node, list *[]T, child T) {
	*list = append(*list, child)
	child.base().parent = parent.Handle()
}

// EndElement closes the innermost frame and records its end line.
func (b *builder) EndElement(name string, line int) {
	f := b.top()
	if f == nil {
		return
	}
	b.stack = b.stack[:len(b.stack)-1]

	if f.node != nil {
		f.node.base().rng.Stop = line
	}
	if f.kind == frameElement {
		f.node.(*Element).text = strings.TrimSpace(f.text.String())
	}
	if f.kind == frameRoot {
		b.pending = nil
	}
}

func attrValue(attrs []markup.Attr, name string) string {
	for _, a := range attrs {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}
