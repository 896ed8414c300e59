package model

import (
	"bytes"
	"fmt"
	"strings"
)

const indentUnit = "   "

var (
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"\t", "&#9;",
		"\n", "&#10;",
		"\r", "&#13;",
	)
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
)

type manifestWriter struct {
	buf *bytes.Buffer
}

// writeManifest renders r into buf. The tree is verified first so an
// inconsistent tree never produces partial output.
func writeManifest(buf *bytes.Buffer, r *Root) {
	verifyTree(r)

	w := manifestWriter{buf: buf}
	w.line(0, `<?xml version="1.0" encoding="UTF-8"?>`)
	if r.schemaVersion != "" {
		w.line(0, `<?eclipse version="`+attrEscaper.Replace(r.schemaVersion)+`"?>`)
	}
	w.rootOpen(r)

	if len(r.libraries) > 0 {
		w.comments(r, SectionRuntime)
		w.line(1, "<runtime>")
		for _, l := range r.libraries {
			w.library(l)
		}
		w.line(1, "</runtime>")
		w.blank()
	}

	if len(r.imports) > 0 {
		w.comments(r, SectionRequires)
		w.line(1, "<requires>")
		for _, i := range r.imports {
			w.importDecl(i)
		}
		w.line(1, "</requires>")
		w.blank()
	}

	for _, p := range r.extensionPoints {
		w.tag(1, "extension-point", []Attribute{
			{"id", p.id}, {"name", p.name}, {"schema", p.schema},
		}, true)
	}
	if len(r.extensionPoints) > 0 {
		w.blank()
	}

	for _, x := range r.extensions {
		attrs := []Attribute{{"id", x.id}, {"name", x.name}, {"point", x.point}}
		if len(x.elements) == 0 {
			w.tag(1, "extension", attrs, true)
		} else {
			w.tag(1, "extension", attrs, false)
			for _, e := range x.elements {
				w.element(2, e)
			}
			w.line(1, "</extension>")
		}
		w.blank()
	}

	for _, e := range r.unknown {
		w.element(1, e)
	}

	w.line(0, "</"+r.kind.String()+">")
}

func (w manifestWriter) rootOpen(r *Root) {
	attrs := []Attribute{
		{"id", r.id},
		{"name", r.name},
		{"version", r.version},
		{"provider-name", r.providerName},
	}
	if r.IsFragment() {
		attrs = append(attrs,
			Attribute{"plugin-id", r.pluginID},
			Attribute{"plugin-version", r.pluginVersion},
			Attribute{"match", r.match.String()},
		)
	} else {
		attrs = append(attrs, Attribute{"class", r.className})
	}

	w.buf.WriteString("<" + r.kind.String())
	for _, a := range attrs {
		if a.Value == "" {
			continue
		}
		w.buf.WriteString("\n" + indentUnit + a.Name + `="` + attrEscaper.Replace(a.Value) + `"`)
	}
	w.buf.WriteString(">\n")
	w.blank()
}

func (w manifestWriter) comments(r *Root, s Section) {
	for _, c := range r.comments[s] {
		w.line(1, "<!--"+c+"-->")
	}
}

func (w manifestWriter) library(l *Library) {
	attrs := []Attribute{{"name", l.name}, {"type", l.libType}}
	if len(l.exports) == 0 {
		w.tag(2, "library", attrs, true)
		return
	}
	w.tag(2, "library", attrs, false)
	for _, f := range l.exports {
		w.tag(3, "export", []Attribute{{"name", f}}, true)
	}
	w.line(2, "</library>")
}

func (w manifestWriter) importDecl(i *Import) {
	attrs := []Attribute{
		{"plugin", i.id},
		{"version", i.version},
		{"match", i.match.String()},
	}
	if i.reexported {
		attrs = append(attrs, Attribute{"export", "true"})
	}
	if i.optional {
		attrs = append(attrs, Attribute{"optional", "true"})
	}
	w.tag(2, "import", attrs, true)
}

func (w manifestWriter) element(depth int, e *Element) {
	attrs := e.attrs.list()
	switch {
	case len(e.children) == 0 && e.text == "":
		w.tagAll(depth, e.name, attrs, true)
	case len(e.children) == 0:
		w.indent(depth)
		w.open(e.name, attrs, false, false)
		w.buf.WriteString(textEscaper.Replace(e.text))
		w.buf.WriteString("</" + e.name + ">\n")
	default:
		w.tagAll(depth, e.name, attrs, false)
		if e.text != "" {
			w.line(depth+1, textEscaper.Replace(e.text))
		}
		for _, c := range e.children {
			w.element(depth+1, c)
		}
		w.line(depth, "</"+e.name+">")
	}
}

// tag writes an open or empty tag, leaving out attributes with empty values.
func (w manifestWriter) tag(depth int, name string, attrs []Attribute, empty bool) {
	w.indent(depth)
	w.open(name, attrs, empty, true)
	w.buf.WriteByte('\n')
}

// tagAll writes an open or empty tag with every attribute, empty or not.
func (w manifestWriter) tagAll(depth int, name string, attrs []Attribute, empty bool) {
	w.indent(depth)
	w.open(name, attrs, empty, false)
	w.buf.WriteByte('\n')
}

func (w manifestWriter) open(name string, attrs []Attribute, empty, skipEmpty bool) {
	w.buf.WriteString("<" + name)
	for _, a := range attrs {
		if skipEmpty && a.Value == "" {
			continue
		}
		w.buf.WriteString(" " + a.Name + `="` + attrEscaper.Replace(a.Value) + `"`)
	}
	if empty {
		w.buf.WriteString("/>")
	} else {
		w.buf.WriteString(">")
	}
}

func (w manifestWriter) line(depth int, s string) {
	w.indent(depth)
	w.buf.WriteString(s)
	w.buf.WriteByte('\n')
}

func (w manifestWriter) blank() {
	w.buf.WriteByte('\n')
}

func (w manifestWriter) indent(depth int) {
	for i := 0; i < depth; i++ {
		w.buf.WriteString(indentUnit)
	}
}

// verifyTree panics if a child does not point back to its container.
func verifyTree(r *Root) {
	Walk(r, func(n Node) bool {
		c, ok := n.(Container)
		if !ok {
			return true
		}
		for _, child := range c.Children() {
			if child.base().parent != n.Handle() {
				panic(fmt.Sprintf("model: %s %d is listed under %s %d but has parent %d",
					child.Kind(), child.Handle(), n.Kind(), n.Handle(), child.base().parent))
			}
		}
		return true
	})
}
