package commands

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"

	"github.com/manifestkit/manifest-go/pkg/model"
	"github.com/manifestkit/manifest-go/pkg/version"
)

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
)

// CheckOptions configures the check command.
type CheckOptions struct {
	// Diff prints how files that are not in canonical form would change.
	Diff bool

	// Strict counts warnings as failures.
	Strict bool
}

// CheckResult is the outcome for one manifest.
type CheckResult struct {
	Path      string
	Err       error
	Warnings  []string
	Canonical bool
	Diff      string
}

// Failed reports whether the manifest did not load or does not survive a
// round trip.
func (r *CheckResult) Failed() bool {
	return r.Err != nil
}

// RunCheck validates manifests and returns the number of failed files.
func RunCheck(paths []string, opts CheckOptions, cfg *Config, logger *slog.Logger, w io.Writer) int {
	failed := 0
	for _, path := range paths {
		r := CheckFile(path, opts, cfg, logger)
		printCheckResult(w, r)
		if r.Failed() || (opts.Strict && len(r.Warnings) > 0) {
			failed++
		}
	}
	return failed
}

// CheckFile loads one manifest, collects warnings and verifies that the
// canonical form parses back to an equal tree.
func CheckFile(path string, opts CheckOptions, cfg *Config, logger *slog.Logger) *CheckResult {
	r := &CheckResult{Path: path}
	l, err := openManifest(path, cfg, LoadOptions{ReadOnly: true}, logger)
	if err != nil {
		r.Err = err
		return r
	}

	r.Warnings = lint(l.model.Root())

	canonical, err := l.model.Serialize()
	if err != nil {
		r.Err = err
		return r
	}
	again := model.New(model.Options{Logger: logger})
	if err := again.Load(bytes.NewReader(canonical), true); err != nil {
		r.Err = fmt.Errorf("canonical form does not parse: %w", err)
		return r
	}
	if !model.Equal(l.model.Root(), again.Root()) {
		r.Err = fmt.Errorf("canonical form differs from the parsed document")
		return r
	}

	r.Canonical = bytes.Equal(canonical, l.snap.Data)
	if !r.Canonical && opts.Diff {
		if r.Diff, err = unifiedDiff(path, l.snap.Data, canonical); err != nil {
			r.Err = err
		}
	}
	return r
}

// lint returns non-fatal findings in document order.
func lint(root *model.Root) []string {
	var out []string
	warn := func(n model.Node, format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		if r := n.SourceRange(); r.Known() {
			msg = fmt.Sprintf("line %d: %s", r.Start, msg)
		}
		out = append(out, msg)
	}

	if root.ID() == "" {
		warn(root, "%s has no id", root.Kind())
	}
	if _, err := version.Parse(root.Version()); err != nil {
		warn(root, "%v", err)
	}
	if root.IsFragment() {
		if root.PluginID() == "" {
			warn(root, "fragment has no plugin-id")
		}
		if v := root.PluginVersion(); v != "" {
			if _, err := version.Parse(v); err != nil {
				warn(root, "plugin-version: %v", err)
			}
		}
	}

	dialect, err := version.LoadDialect(root.SchemaVersion())
	if err != nil {
		warn(root, "unknown schema version %q", root.SchemaVersion())
	}

	for _, imp := range root.Imports() {
		if imp.ID() == "" {
			warn(imp, "import without plugin")
		}
		if v := imp.Version(); v != "" {
			if _, err := version.Parse(v); err != nil {
				warn(imp, "import %s: %v", imp.ID(), err)
			}
		}
	}

	seen := map[string]bool{}
	for _, p := range root.ExtensionPoints() {
		if p.ID() == "" {
			warn(p, "extension point without id")
			continue
		}
		if seen[p.ID()] {
			warn(p, "duplicate extension point %s", p.ID())
		}
		seen[p.ID()] = true
	}

	for _, x := range root.Extensions() {
		if x.Point() == "" {
			warn(x, "extension without point")
		}
	}

	for _, e := range root.UnknownElements() {
		if dialect != nil && !dialect.KnowsSection(e.Name()) {
			warn(e, "unknown element <%s>", e.Name())
		}
	}
	return out
}

func printCheckResult(w io.Writer, r *CheckResult) {
	switch {
	case r.Failed():
		fmt.Fprintf(w, "%s %s\n", failColor.Sprint("FAIL"), r.Path)
		reportLoadError(w, "  ", r.Err)
	case len(r.Warnings) > 0:
		fmt.Fprintf(w, "%s %s\n", warnColor.Sprint("WARN"), r.Path)
	default:
		fmt.Fprintf(w, "%s %s\n", okColor.Sprint("OK"), r.Path)
	}
	for _, msg := range r.Warnings {
		fmt.Fprintf(w, "  %s\n", msg)
	}
	if !r.Failed() && !r.Canonical {
		fmt.Fprintln(w, "  not in canonical form")
	}
	if r.Diff != "" {
		fmt.Fprint(w, r.Diff)
	}
}
