package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"golang.org/x/sync/errgroup"

	"github.com/manifestkit/manifest-go/pkg/model"
	"github.com/manifestkit/manifest-go/pkg/persistence"
	"github.com/manifestkit/manifest-go/pkg/version"
)

// ManifestNames are the file names the index command looks for.
var ManifestNames = []string{"plugin.xml", "fragment.xml"}

// IndexOptions configures the index command.
type IndexOptions struct {
	// Cache is a JSON file reused between runs; empty disables caching.
	Cache string

	// Concurrency overrides the configured number of parallel loads.
	Concurrency int
}

// Index is the result of indexing a directory.
type Index struct {
	// Entries maps manifest paths to their summaries.
	Entries map[string]persistence.IndexEntry

	// Newest maps each id to the path of its highest version.
	Newest map[string]string

	// Parsed counts the files that were parsed rather than taken from the
	// cache.
	Parsed int
}

// BuildIndex loads every manifest below dir concurrently.
func BuildIndex(ctx context.Context, dir string, opts IndexOptions, cfg *Config, logger *slog.Logger) (*Index, error) {
	paths, err := findManifests(dir)
	if err != nil {
		return nil, err
	}

	var cacheStore *persistence.IndexStore
	var cache *persistence.IndexState
	if opts.Cache != "" {
		cacheStore = persistence.NewIndexStore(opts.Cache)
		if cache, err = cacheStore.Load(); err != nil {
			logger.Warn("ignoring index cache", "path", opts.Cache, "error", err)
			cache = nil
		}
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = cfg.IndexConcurrency
	}
	if limit <= 0 {
		limit = 1
	}

	entries := make([]persistence.IndexEntry, len(paths))
	parsed := make([]bool, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			snap, err := persistence.NewFileStore(path).Read()
			if err != nil {
				return err
			}
			if e, ok := cache.Lookup(path, snap.Digest); ok {
				entries[i] = e
				return nil
			}
			entries[i] = summarize(snap, logger)
			parsed[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	idx := &Index{
		Entries: make(map[string]persistence.IndexEntry, len(paths)),
	}
	for i, path := range paths {
		idx.Entries[path] = entries[i]
		if parsed[i] {
			idx.Parsed++
		}
	}
	idx.Newest = newest(idx.Entries)

	if cacheStore != nil {
		if err := cacheStore.Save(&persistence.IndexState{Entries: idx.Entries}); err != nil {
			return nil, fmt.Errorf("saving index cache: %w", err)
		}
	}
	return idx, nil
}

func findManifests(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		for _, name := range ManifestNames {
			if d.Name() == name {
				paths = append(paths, path)
				break
			}
		}
		return nil
	})
	sort.Strings(paths)
	return paths, err
}

// summarize parses a snapshot into an index entry. Parse failures are
// recorded in the entry.
func summarize(snap *persistence.Snapshot, logger *slog.Logger) persistence.IndexEntry {
	e := persistence.IndexEntry{Digest: persistence.HexDigest(snap.Digest)}

	m := model.New(model.Options{Logger: logger})
	if err := m.Load(snap.Reader(), false); err != nil {
		var perr *model.ParseErrors
		if errors.As(err, &perr) {
			e.Errors = perr.Count()
		} else {
			e.Errors = 1
		}
		return e
	}

	root := m.Root()
	e.ID = root.ID()
	e.Version = root.Version()
	e.Fragment = root.IsFragment()
	for _, p := range root.ExtensionPoints() {
		e.Points = append(e.Points, p.FullID())
	}
	seen := map[string]bool{}
	for _, x := range root.Extensions() {
		if !seen[x.Point()] {
			seen[x.Point()] = true
			e.Extends = append(e.Extends, x.Point())
		}
	}
	return e
}

// newest picks, per id, the path with the highest version. Unparseable
// versions lose against parseable ones; ties go to the first path.
func newest(entries map[string]persistence.IndexEntry) map[string]string {
	paths := make([]string, 0, len(entries))
	for p := range entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	type best struct {
		path string
		v    version.Version
		ok   bool
	}
	byID := map[string]best{}
	for _, p := range paths {
		e := entries[p]
		if e.Errors > 0 || e.ID == "" || e.Fragment {
			continue
		}
		v, err := version.Parse(e.Version)
		cand := best{path: p, v: v, ok: err == nil}
		cur, exists := byID[e.ID]
		switch {
		case !exists:
			byID[e.ID] = cand
		case cand.ok && !cur.ok:
			byID[e.ID] = cand
		case cand.ok && cur.ok && cand.v.Compare(cur.v) > 0:
			byID[e.ID] = cand
		}
	}

	out := make(map[string]string, len(byID))
	for id, b := range byID {
		out[id] = b.path
	}
	return out
}

// RunIndex indexes dir and prints one line per manifest.
func RunIndex(ctx context.Context, dir string, opts IndexOptions, cfg *Config, logger *slog.Logger, w io.Writer) error {
	idx, err := BuildIndex(ctx, dir, opts, cfg, logger)
	if err != nil {
		return err
	}

	paths := make([]string, 0, len(idx.Entries))
	for p := range idx.Entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tVERSION\tKIND\tPOINTS\tEXTENDS\tPATH\t")
	for _, p := range paths {
		e := idx.Entries[p]
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			rel = p
		}
		if e.Errors > 0 {
			fmt.Fprintf(tw, "-\t-\t%s\t-\t-\t%s\t\n", failColor.Sprintf("%d error(s)", e.Errors), rel)
			continue
		}
		kind := "plugin"
		if e.Fragment {
			kind = "fragment"
		}
		if !e.Fragment && idx.Newest[e.ID] != p {
			kind += " (shadowed)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t\n", e.ID, e.Version, kind, len(e.Points), len(e.Extends), rel)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%d manifest(s), %d parsed, %d cached\n", len(paths), idx.Parsed, len(paths)-idx.Parsed)
	return nil
}
