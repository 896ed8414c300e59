// Command manifestctl inspects, checks, formats and edits plug-in
// manifests (plugin.xml and fragment.xml).
//
// Usage:
//
//	manifestctl <command> [flags] <args>
//
// Commands:
//
//	show        Print a manifest tree or one node as text, YAML or JSON
//	fmt         Print or rewrite a manifest in canonical form
//	check       Validate manifests and verify their canonical round trip
//	extensions  List extensions or declared extension points
//	index       Index all manifests below a directory
//	edit        Edit a manifest interactively
//	journal     View a change journal written by edit
//
// Examples:
//
//	# Show the tree with source lines
//	manifestctl show -lines plugin.xml
//
//	# Export one extension as YAML
//	manifestctl show -format yaml -path 'extension[org.example.views]' plugin.xml
//
//	# List only the views contributed, loading nothing else
//	manifestctl extensions -points org.eclipse.ui.views plugin.xml
//
//	# Check a workspace, showing how files would be reformatted
//	manifestctl check -diff */plugin.xml
//
//	# Edit with a change journal
//	manifestctl edit -journal edits.mjournal plugin.xml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/manifestkit/manifest-go/cmd/manifestctl/commands"
	"github.com/manifestkit/manifest-go/pkg/inspect"
	"github.com/manifestkit/manifest-go/pkg/model"
)

const usage = `manifestctl - Plug-in Manifest Tool

Usage:
  manifestctl <command> [flags] <args>

Commands:
  show        Print a manifest tree or one node as text, YAML or JSON
  fmt         Print or rewrite a manifest in canonical form
  check       Validate manifests and verify their canonical round trip
  extensions  List extensions or declared extension points
  index       Index all manifests below a directory
  edit        Edit a manifest interactively
  journal     View a change journal written by edit

Use "manifestctl <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "show":
		runShow(args)
	case "fmt":
		runFmt(args)
	case "check":
		runCheck(args)
	case "extensions", "ext":
		runExtensions(args)
	case "index":
		runIndex(args)
	case "edit":
		runEdit(args)
	case "journal":
		runJournal(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// globalFlags are accepted by every command that loads manifests.
type globalFlags struct {
	config   *string
	logLevel *string
}

func addGlobalFlags(fs *flag.FlagSet) *globalFlags {
	return &globalFlags{
		config:   fs.String("config", "", "Configuration file path (YAML)"),
		logLevel: fs.String("log-level", "", "Log level: debug, info, warn, error (overrides config)"),
	}
}

func (g *globalFlags) load() (*commands.Config, *slog.Logger) {
	cfg, err := commands.LoadConfig(*g.config)
	if err != nil {
		exitErr(err)
	}
	if *g.logLevel != "" {
		cfg.LogLevel = *g.logLevel
		if err := cfg.Validate(); err != nil {
			exitErr(err)
		}
	}
	return cfg, cfg.Logger(os.Stderr)
}

func addLoadFlags(fs *flag.FlagSet) *commands.LoadOptions {
	lo := &commands.LoadOptions{}
	fs.StringVar(&lo.Points, "points", "", "Only load extensions of these points (comma list or @set from config)")
	fs.StringVar(&lo.Translations, "translations", "", "plugin.properties file for %key names")
	return lo
}

func exitErr(err error) {
	var perr *model.ParseErrors
	if errors.As(err, &perr) {
		fmt.Fprintf(os.Stderr, "Error: %s", inspect.FormatParseErrors(perr))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}

func requireArg(fs *flag.FlagSet, what string) string {
	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: %s required\n", what)
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func newFlagSet(name, help string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, help)
		fmt.Fprintln(os.Stderr, "\nFlags:")
		fs.PrintDefaults()
	}
	return fs
}

func runShow(args []string) {
	fs := newFlagSet("show", `manifestctl show - Print a manifest tree or one node

Usage:
  manifestctl show [flags] <plugin.xml>
`)
	g := addGlobalFlags(fs)
	lo := addLoadFlags(fs)
	opts := commands.ShowOptions{}
	fs.StringVar(&opts.Path, "path", "", "Node or property path (default: root)")
	fs.StringVar(&opts.Format, "format", "text", "Output format (text, yaml, json)")
	fs.BoolVar(&opts.Lines, "lines", false, "Show source line spans")
	fs.BoolVar(&opts.Paths, "paths", false, "Prefix nodes with their paths")
	fs.BoolVar(&opts.Translated, "translated", false, "Show the translated name of the node")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requireArg(fs, "manifest path")
	cfg, logger := g.load()
	opts.LoadOptions = *lo

	if err := commands.RunShow(path, opts, cfg, logger, os.Stdout); err != nil {
		exitErr(err)
	}
}

func runFmt(args []string) {
	fs := newFlagSet("fmt", `manifestctl fmt - Print or rewrite a manifest in canonical form

Usage:
  manifestctl fmt [flags] <plugin.xml>
`)
	g := addGlobalFlags(fs)
	opts := commands.FmtOptions{}
	fs.BoolVar(&opts.Write, "w", false, "Write the result back to the file")
	fs.BoolVar(&opts.Diff, "d", false, "Print a diff instead of the result")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requireArg(fs, "manifest path")
	cfg, logger := g.load()

	if err := commands.RunFmt(path, opts, cfg, logger, os.Stdout); err != nil {
		exitErr(err)
	}
}

func runCheck(args []string) {
	fs := newFlagSet("check", `manifestctl check - Validate manifests

Usage:
  manifestctl check [flags] <plugin.xml>...
`)
	g := addGlobalFlags(fs)
	opts := commands.CheckOptions{}
	fs.BoolVar(&opts.Diff, "diff", false, "Show how non-canonical files would be reformatted")
	fs.BoolVar(&opts.Strict, "strict", false, "Treat warnings as failures")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	requireArg(fs, "manifest path")
	cfg, logger := g.load()

	if failed := commands.RunCheck(fs.Args(), opts, cfg, logger, os.Stdout); failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d file(s) failed\n", failed, fs.NArg())
		os.Exit(1)
	}
}

func runExtensions(args []string) {
	fs := newFlagSet("extensions", `manifestctl extensions - List extensions or extension points

Usage:
  manifestctl extensions [flags] <plugin.xml>
`)
	g := addGlobalFlags(fs)
	lo := addLoadFlags(fs)
	opts := commands.ExtensionsOptions{}
	fs.BoolVar(&opts.Declared, "declared", false, "List declared extension points instead")
	fs.BoolVar(&opts.Elements, "elements", false, "Print the element tree of each extension")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requireArg(fs, "manifest path")
	cfg, logger := g.load()
	opts.LoadOptions = *lo

	if err := commands.RunExtensions(path, opts, cfg, logger, os.Stdout); err != nil {
		exitErr(err)
	}
}

func runIndex(args []string) {
	fs := newFlagSet("index", `manifestctl index - Index all manifests below a directory

Usage:
  manifestctl index [flags] <dir>
`)
	g := addGlobalFlags(fs)
	opts := commands.IndexOptions{}
	fs.StringVar(&opts.Cache, "cache", "", "Index cache file reused between runs")
	fs.IntVar(&opts.Concurrency, "j", 0, "Parallel loads (default from config)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	dir := requireArg(fs, "directory")
	cfg, logger := g.load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := commands.RunIndex(ctx, dir, opts, cfg, logger, os.Stdout); err != nil {
		exitErr(err)
	}
}

func runEdit(args []string) {
	fs := newFlagSet("edit", `manifestctl edit - Edit a manifest interactively

Usage:
  manifestctl edit [flags] <plugin.xml>

A missing file starts a new manifest.
`)
	g := addGlobalFlags(fs)
	journal := fs.String("journal", "", "Change journal file (overrides config)")
	noWatch := fs.Bool("no-watch", false, "Do not watch the file for outside changes")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requireArg(fs, "manifest path")
	cfg, logger := g.load()
	if *journal != "" {
		cfg.Journal = *journal
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer cancel()

	ed, err := commands.NewEditor(path, cfg, logger, os.Stdout)
	if err != nil {
		exitErr(err)
	}
	defer ed.Close()

	if !*noWatch {
		if err := ed.Watch(ctx); err != nil {
			logger.Warn("not watching manifest", "path", path, "error", err)
		}
	}
	if err := ed.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
}

func runJournal(args []string) {
	fs := newFlagSet("journal", `manifestctl journal - View a change journal

Usage:
  manifestctl journal [flags] <file.mjournal>
`)
	var jf commands.JournalFilter
	fs.StringVar(&jf.ModelID, "model-id", "", "Filter by model ID")
	fs.StringVar(&jf.Source, "source", "", "Filter by source")
	fs.StringVar(&jf.Category, "category", "", "Filter by category (change, lifecycle, error)")
	fs.StringVar(&jf.Change, "change", "", "Filter by change type (insert, remove, reorder, property)")
	fs.StringVar(&jf.PathPrefix, "path", "", "Filter changes by path prefix")
	fs.StringVar(&jf.TimeStart, "time-start", "", "Filter by start time (RFC3339)")
	fs.StringVar(&jf.TimeEnd, "time-end", "", "Filter by end time (RFC3339)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requireArg(fs, "journal path")

	filter, err := jf.Build()
	if err != nil {
		exitErr(err)
	}
	if err := commands.RunJournal(path, filter, os.Stdout); err != nil {
		exitErr(err)
	}
}
