package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/manifestkit/manifest-go/pkg/inspect"
)

// ShowOptions configures the show command.
type ShowOptions struct {
	LoadOptions

	// Path selects the node or property to show; empty shows the root.
	Path string

	// Format is text, yaml or json.
	Format string

	// Lines adds source line spans to text output.
	Lines bool

	// Paths prefixes text output with node paths.
	Paths bool

	// Translated shows translated names instead of %keys.
	Translated bool
}

// RunShow prints a manifest or a part of it.
func RunShow(path string, opts ShowOptions, cfg *Config, logger *slog.Logger, w io.Writer) error {
	opts.ReadOnly = true
	l, err := openManifest(path, cfg, opts.LoadOptions, logger)
	if err != nil {
		return err
	}

	expr := opts.Path
	if expr == "" {
		expr = inspect.RootPath
	}
	p, err := inspect.ParsePath(expr)
	if err != nil {
		return err
	}
	insp := inspect.NewInspector(l.model)

	if p.Property != "" {
		v, err := insp.Read(p)
		if err != nil {
			return err
		}
		if opts.Format == "text" || opts.Format == "" {
			fmt.Fprintln(w, v)
			return nil
		}
		return encode(w, opts.Format, inspect.Property{Name: p.Property, Value: v})
	}

	n, err := insp.Node(p)
	if err != nil {
		return err
	}

	switch opts.Format {
	case "", "text":
		f := inspect.NewFormatter()
		f.ShowLines = opts.Lines
		f.ShowPaths = opts.Paths
		fmt.Fprint(w, f.FormatTree(n))
		if opts.Translated && n.Name() != "" {
			fmt.Fprintf(w, "\nName: %s\n", n.TranslatedName())
		}
		fmt.Fprintln(w, "\nProperties:")
		props := f.FormatProperties(inspect.Properties(n))
		if !strings.HasSuffix(props, "\n") {
			props += "\n"
		}
		fmt.Fprint(w, props)
		if l.model.IsAbbreviated() {
			fmt.Fprintln(w, "\n(abbreviated)")
		}
		return nil
	default:
		return encode(w, opts.Format, inspect.TakeSnapshot(n))
	}
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	default:
		return fmt.Errorf("unknown format %q (use text, yaml, json)", format)
	}
}
