package commands

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/manifestkit/manifest-go/pkg/inspect"
	"github.com/manifestkit/manifest-go/pkg/model"
)

// ExtensionsOptions configures the extensions command.
type ExtensionsOptions struct {
	LoadOptions

	// Declared lists the extension points the manifest declares instead of
	// its extensions.
	Declared bool

	// Elements also prints the element trees of each extension.
	Elements bool
}

// RunExtensions lists the extensions of a manifest. With Points set only
// the extensions of those points are loaded.
func RunExtensions(path string, opts ExtensionsOptions, cfg *Config, logger *slog.Logger, w io.Writer) error {
	opts.ReadOnly = true
	l, err := openManifest(path, cfg, opts.LoadOptions, logger)
	if err != nil {
		return err
	}
	root := l.model.Root()
	f := inspect.NewFormatter()
	f.ShowPaths = true

	if opts.Declared {
		points := root.ExtensionPoints()
		if len(points) == 0 {
			fmt.Fprintln(w, "No extension points")
			return nil
		}
		for _, p := range points {
			fmt.Fprintln(w, f.FormatNode(p))
		}
		return nil
	}

	exts := root.Extensions()
	if len(exts) == 0 {
		fmt.Fprintln(w, "No extensions")
		return nil
	}
	for _, x := range exts {
		fmt.Fprintf(w, "%s  (%d element(s))\n", f.FormatNode(x), countElements(x))
		if opts.Elements {
			for _, e := range x.Elements() {
				fmt.Fprint(w, indentTree(f, e))
			}
		}
	}
	return nil
}

func countElements(n model.Node) int {
	count := -1
	model.Walk(n, func(model.Node) bool {
		count++
		return true
	})
	return count
}

func indentTree(f *inspect.Formatter, n model.Node) string {
	sub := *f
	sub.ShowPaths = false
	var sb strings.Builder
	for _, line := range strings.SplitAfter(sub.FormatTree(n), "\n") {
		if line != "" {
			sb.WriteString(sub.Indent(1, line))
		}
	}
	return sb.String()
}
