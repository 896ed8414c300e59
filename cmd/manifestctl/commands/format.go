package commands

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/pmezard/go-difflib/difflib"
)

// FmtOptions configures the fmt command.
type FmtOptions struct {
	// Write replaces the file instead of printing the canonical form.
	Write bool

	// Diff prints a unified diff against the canonical form.
	Diff bool
}

// RunFmt rewrites a manifest in canonical form.
func RunFmt(path string, opts FmtOptions, cfg *Config, logger *slog.Logger, w io.Writer) error {
	l, err := openManifest(path, cfg, LoadOptions{}, logger)
	if err != nil {
		return err
	}
	canonical, err := l.model.Serialize()
	if err != nil {
		return err
	}

	switch {
	case opts.Diff:
		d, err := unifiedDiff(path, l.snap.Data, canonical)
		if err != nil {
			return err
		}
		fmt.Fprint(w, d)
		return nil
	case opts.Write:
		if bytes.Equal(canonical, l.snap.Data) {
			fmt.Fprintf(w, "%s: unchanged\n", path)
			return nil
		}
		if _, err := l.store.Save(l.model); err != nil {
			return err
		}
		fmt.Fprintf(w, "%s: formatted\n", path)
		return nil
	default:
		_, err := w.Write(canonical)
		return err
	}
}

// unifiedDiff returns the diff from original to canonical, empty when they
// are equal.
func unifiedDiff(path string, original, canonical []byte) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(original)),
		B:        difflib.SplitLines(string(canonical)),
		FromFile: path,
		ToFile:   path + " (canonical)",
		Context:  3,
	})
}
