package inspect

import (
	"fmt"
	"strings"

	"github.com/manifestkit/manifest-go/pkg/model"
)

// Formatter formats inspection output.
type Formatter struct {
	// ShowLines appends the source line span of parsed nodes.
	ShowLines bool

	// ShowPaths prefixes every node with its path expression.
	ShowPaths bool

	// IndentWidth is the number of spaces per indent level
	IndentWidth int

	// MaxValueLen truncates long values; 0 disables truncation.
	MaxValueLen int
}

// NewFormatter creates a new Formatter with default settings.
func NewFormatter() *Formatter {
	return &Formatter{
		ShowLines:   true,
		ShowPaths:   false,
		IndentWidth: 2,
		MaxValueLen: 60,
	}
}

// Indent returns the content with indentation.
func (f *Formatter) Indent(depth int, content string) string {
	width := f.IndentWidth
	if width == 0 {
		width = 2
	}
	indent := strings.Repeat(" ", depth*width)
	return indent + content
}

// FormatValue quotes a property value for display.
func (f *Formatter) FormatValue(value string) string {
	if f.MaxValueLen > 3 && len(value) > f.MaxValueLen {
		value = value[:f.MaxValueLen-3] + "..."
	}
	return fmt.Sprintf("%q", value)
}

// FormatLines formats a source range.
func FormatLines(r model.SourceRange) string {
	switch {
	case !r.Known():
		return "new"
	case r.Start == r.Stop:
		return fmt.Sprintf("line %d", r.Start)
	default:
		return fmt.Sprintf("lines %d-%d", r.Start, r.Stop)
	}
}

// FormatNode returns the one-line header of n.
func (f *Formatter) FormatNode(n model.Node) string {
	var sb strings.Builder
	if f.ShowPaths {
		sb.WriteString(PathOf(n).String())
		sb.WriteString(" ")
	}

	switch x := n.(type) {
	case *model.Root:
		sb.WriteString(x.Kind().String())
		if x.ID() != "" {
			sb.WriteString(" " + x.ID())
		}
		if x.Version() != "" {
			sb.WriteString(" " + x.Version())
		}
		if x.IsFragment() && x.PluginID() != "" {
			sb.WriteString(" (host " + x.PluginID() + ")")
		}
	case *model.Extension:
		sb.WriteString("extension")
		if x.ID() != "" {
			sb.WriteString(" " + x.ID())
		}
		sb.WriteString(" -> " + x.Point())
	case *model.ExtensionPoint:
		sb.WriteString("extension-point " + x.FullID())
	case *model.Library:
		sb.WriteString("library " + x.Name())
		if x.FullyExported() {
			sb.WriteString(" (exported)")
		} else if x.Exported() {
			sb.WriteString(" (exports " + strings.Join(x.ContentFilters(), ", ") + ")")
		}
	case *model.Import:
		sb.WriteString("import " + x.ID())
		if x.Version() != "" {
			sb.WriteString(" " + x.Version())
			if m := x.EffectiveMatch(); m != model.MatchNone {
				sb.WriteString(" " + m.String())
			}
		}
		if x.Optional() {
			sb.WriteString(" optional")
		}
		if x.Reexported() {
			sb.WriteString(" reexported")
		}
	case *model.Element:
		sb.WriteString("<" + x.Name() + ">")
		for _, a := range x.Attributes() {
			sb.WriteString(" " + a.Name + "=" + f.FormatValue(a.Value))
		}
		if x.Text() != "" {
			sb.WriteString(" " + f.FormatValue(x.Text()))
		}
	default:
		sb.WriteString(n.Kind().String())
	}

	if f.ShowLines {
		sb.WriteString(" [" + FormatLines(n.SourceRange()) + "]")
	}
	return sb.String()
}

// FormatTree formats n and its descendants, one node per line.
func (f *Formatter) FormatTree(n model.Node) string {
	var sb strings.Builder
	f.formatTree(&sb, n, 0)
	return sb.String()
}

func (f *Formatter) formatTree(sb *strings.Builder, n model.Node, depth int) {
	sb.WriteString(f.Indent(depth, f.FormatNode(n)))
	sb.WriteString("\n")
	if c, ok := n.(model.Container); ok {
		for _, child := range c.Children() {
			f.formatTree(sb, child, depth+1)
		}
	}
}

// FormatProperties formats a list of properties as a table.
func (f *Formatter) FormatProperties(props []Property) string {
	if len(props) == 0 {
		return "  (no properties)"
	}

	width := 0
	for _, p := range props {
		width = max(width, len(p.Name))
	}

	var sb strings.Builder
	for _, p := range props {
		sb.WriteString(fmt.Sprintf("  %-*s = %s\n", width, p.Name, f.FormatValue(p.Value)))
	}
	return sb.String()
}

// FormatParseErrors formats parse diagnostics, one per line.
func FormatParseErrors(err *model.ParseErrors) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d error(s)\n", err.Count())
	for _, d := range err.Diagnostics {
		sb.WriteString("  ")
		sb.WriteString(d.Error())
		sb.WriteString("\n")
	}
	return sb.String()
}
