package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/manifestkit/manifest-go/pkg/inspect"
	"github.com/manifestkit/manifest-go/pkg/model"
	"github.com/manifestkit/manifest-go/pkg/persistence"
)

// LoadOptions controls how a command loads its manifest.
type LoadOptions struct {
	// Points restricts the load to extensions of these points (see
	// Config.Points). Abbreviated models are read-only.
	Points string

	// Translations is a plugin.properties file resolving %key names.
	Translations string

	// ReadOnly overrides the configured edit permission.
	ReadOnly bool
}

// loaded is a manifest opened by a command.
type loaded struct {
	model *model.Model
	store *persistence.FileStore
	snap  *persistence.Snapshot
}

func openManifest(path string, cfg *Config, lo LoadOptions, logger *slog.Logger) (*loaded, error) {
	opts := cfg.ModelOptions(logger)
	if lo.ReadOnly {
		opts.Editable = false
	}
	if lo.Translations != "" {
		t, err := readTranslations(lo.Translations)
		if err != nil {
			return nil, err
		}
		opts.Translator = t
	}

	points, err := cfg.Points(lo.Points)
	if err != nil {
		return nil, err
	}

	m := model.New(opts)
	store := persistence.NewFileStore(path)
	var snap *persistence.Snapshot
	if points != nil {
		snap, err = store.LoadAbbreviated(m, points)
	} else {
		snap, err = store.Load(m)
	}
	if err != nil {
		return nil, err
	}
	return &loaded{model: m, store: store, snap: snap}, nil
}

func readTranslations(path string) (model.MapTranslator, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening translations: %w", err)
	}
	defer f.Close()
	return model.ParseProperties(f)
}

// reportLoadError prints err below a result line. Parse diagnostics are
// listed one per line.
func reportLoadError(w io.Writer, indent string, err error) {
	var perr *model.ParseErrors
	if !errors.As(err, &perr) {
		fmt.Fprintf(w, "%s%v\n", indent, err)
		return
	}
	for _, line := range strings.Split(strings.TrimRight(inspect.FormatParseErrors(perr), "\n"), "\n") {
		fmt.Fprintf(w, "%s%s\n", indent, line)
	}
}
