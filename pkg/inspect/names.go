package inspect

import (
	"strings"

	"github.com/manifestkit/manifest-go/pkg/model"
)

// stepNames maps path step names to the node kind they select. Root-level
// unknown elements and nested extension content share the "element" step.
var stepNames = map[string]model.NodeKind{
	"library":         model.KindLibrary,
	"import":          model.KindImport,
	"extension-point": model.KindExtensionPoint,
	"extension":       model.KindExtension,
	"element":         model.KindElement,
}

// stepAliases are short forms accepted on input.
var stepAliases = map[string]string{
	"lib":  "library",
	"req":  "import",
	"xp":   "extension-point",
	"ext":  "extension",
	"el":   "element",
	"elem": "element",
}

// ResolveStepName resolves a step name or alias to a node kind
// (case-insensitive).
func ResolveStepName(name string) (model.NodeKind, bool) {
	lname := strings.ToLower(name)
	if full, ok := stepAliases[lname]; ok {
		lname = full
	}
	k, ok := stepNames[lname]
	return k, ok
}

// StepName returns the canonical step name for a node kind, or "" for the
// root kinds.
func StepName(kind model.NodeKind) string {
	for name, k := range stepNames {
		if k == kind {
			return name
		}
	}
	return ""
}

// KeyOf returns the name-based key that selects n within its list: the id
// for identifiable nodes, the library path for libraries and the tag for
// elements.
func KeyOf(n model.Node) string {
	if i, ok := n.(model.Identifiable); ok {
		return i.ID()
	}
	return n.Name()
}
