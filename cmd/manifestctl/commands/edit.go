package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chzyer/readline"

	"github.com/manifestkit/manifest-go/pkg/history"
	"github.com/manifestkit/manifest-go/pkg/inspect"
	mlog "github.com/manifestkit/manifest-go/pkg/log"
	"github.com/manifestkit/manifest-go/pkg/model"
	"github.com/manifestkit/manifest-go/pkg/persistence"
)

// JournalSource is recorded as the source of editor journal events.
const JournalSource = "manifestctl edit"

// Editor is the interactive manifest editor.
type Editor struct {
	path   string
	cfg    *Config
	logger *slog.Logger

	model     *model.Model
	store     *persistence.FileStore
	inspector *inspect.Inspector
	formatter *inspect.Formatter
	history   *history.Manager
	journal   *mlog.Journal
	journalFn *mlog.FileLogger
	watcher   *persistence.Watcher
	subs      []model.Subscription

	mu        sync.Mutex
	out       io.Writer
	snap      *persistence.Snapshot
	diskDirty bool
}

// NewEditor opens path for editing. A missing file starts an empty
// manifest named after the configured identity hint; it is a fragment when
// the file is called fragment.xml.
func NewEditor(path string, cfg *Config, logger *slog.Logger, out io.Writer) (*Editor, error) {
	e := &Editor{
		path:      path,
		cfg:       cfg,
		logger:    logger,
		model:     model.New(cfg.ModelOptions(logger)),
		store:     persistence.NewFileStore(path),
		formatter: inspect.NewFormatter(),
		out:       out,
	}
	e.inspector = inspect.NewInspector(e.model)

	loggers := []mlog.Logger{mlog.NewSlogAdapter(logger)}
	if cfg.Journal != "" {
		fl, err := mlog.NewFileLogger(cfg.Journal)
		if err != nil {
			return nil, fmt.Errorf("opening journal: %w", err)
		}
		e.journalFn = fl
		loggers = append(loggers, fl)
	}
	e.journal = mlog.NewJournal(mlog.NewMultiLogger(loggers...), e.model.ID(), JournalSource)

	snap, err := e.store.Load(e.model)
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		e.model.InitEmpty(filepath.Base(path) == "fragment.xml")
	case err != nil:
		e.journal.Failed("load "+path, err)
		e.closeJournal()
		return nil, err
	default:
		e.snap = snap
		e.journal.Loaded(e.model)
	}

	e.subs = append(e.subs, e.model.Subscribe(e.journal))
	e.history = history.NewManager(e.model, 0)
	return e, nil
}

// Model returns the edited model.
func (e *Editor) Model() *model.Model {
	return e.model
}

// Watch starts reporting changes other programs make to the file.
func (e *Editor) Watch(ctx context.Context) error {
	e.mu.Lock()
	base := e.snap
	e.mu.Unlock()

	w, err := e.store.Watch(ctx, base, persistence.DefaultDebounce)
	if err != nil {
		return err
	}
	e.watcher = w
	go func() {
		for c := range w.Changes() {
			e.diskChanged(c)
		}
	}()
	return nil
}

func (e *Editor) diskChanged(c persistence.Change) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case c.Err != nil:
		e.logger.Warn("watching manifest", "path", e.path, "error", c.Err)
		return
	case c.Removed:
		fmt.Fprintf(e.out, "\n%s was removed on disk\n", e.path)
	default:
		fmt.Fprintf(e.out, "\n%s changed on disk; 'reload' to load it or 'save!' to overwrite\n", e.path)
	}
	e.diskDirty = true
}

// Close stops watching and recording.
func (e *Editor) Close() error {
	if e.watcher != nil {
		e.watcher.Close()
	}
	e.history.Close()
	for _, s := range e.subs {
		e.model.Unsubscribe(s)
	}
	return e.closeJournal()
}

func (e *Editor) closeJournal() error {
	if e.journalFn == nil {
		return nil
	}
	if err := e.journalFn.Err(); err != nil {
		e.logger.Warn("journal write failed", "path", e.cfg.Journal, "error", err)
	}
	return e.journalFn.Close()
}

// Run starts the interactive command loop.
func (e *Editor) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          e.prompt(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	e.mu.Lock()
	e.out = rl.Stdout()
	e.mu.Unlock()

	e.printHelp()
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(rl.Stdout(), "Exiting...")
			return nil
		}
		if e.Exec(line) {
			return nil
		}
		rl.SetPrompt(e.prompt())
	}
}

func (e *Editor) prompt() string {
	if e.model.IsDirty() {
		return "manifest*> "
	}
	return "manifest> "
}

func (e *Editor) printf(format string, args ...any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fmt.Fprintf(e.out, format, args...)
}

func (e *Editor) fail(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var perr *model.ParseErrors
	if errors.As(err, &perr) {
		reportLoadError(e.out, "", err)
		return
	}
	fmt.Fprintf(e.out, "Error: %v\n", err)
}

// Exec runs one command line and reports whether the editor should exit.
func (e *Editor) Exec(line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return false
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		e.printHelp()
	case "show", "ls":
		e.cmdShow(args)
	case "get", "read":
		e.cmdGet(args)
	case "set", "write":
		e.cmdSet(args)
	case "text":
		e.cmdText(args)
	case "rm", "remove":
		e.cmdRemove(args)
	case "add":
		e.cmdAdd(args)
	case "swap":
		e.cmdSwap(args)
	case "undo", "u":
		e.report(e.history.Undo())
	case "redo":
		e.report(e.history.Redo())
	case "save", "save!":
		e.cmdSave(cmd == "save!")
	case "reload", "reload!":
		e.cmdReload(cmd == "reload!")
	case "editable":
		e.cmdEditable(args)
	case "status":
		e.cmdStatus()
	case "quit", "exit", "q":
		if e.model.IsDirty() {
			e.printf("Unsaved changes; use 'quit!' to discard them\n")
			return false
		}
		return true
	case "quit!", "q!":
		return true
	default:
		e.printf("Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (e *Editor) printHelp() {
	e.printf(`
Manifest Editor Commands:
  Inspection:
    show [path]              - Show the tree below path (default: root)
    get <path/@prop>         - Read a property or attribute
    status                   - Show model and file state

  Editing:
    set <path/@prop> <value> - Set a property or attribute
    text <path> <value>      - Set the text of an element
    rm <path>                - Remove a node, attribute or property
    add <path> <kind> <arg>  - Append a child: extension <point>,
                               extension-point <id>, library <name>,
                               import <plugin>, element <tag>
    swap <path> <path>       - Exchange two siblings
    undo / redo              - Revert or repeat the last edit
    editable on|off          - Allow or forbid edits

  File:
    save / save!             - Write the file (! overwrites outside changes)
    reload / reload!         - Re-read the file (! discards edits)

  General:
    help                     - Show this help
    quit / quit!             - Exit (! discards edits)

  Path Format:
    step[index-or-key]/.../@property, e.g. extension[0]/element[1]/@id
    Steps: library, import, extension-point, extension, element
`)
}

func (e *Editor) report(err error) {
	if err != nil {
		e.fail(err)
		return
	}
	e.printf("OK\n")
}

func (e *Editor) parse(expr string) (*inspect.Path, bool) {
	p, err := inspect.ParsePath(expr)
	if err != nil {
		e.printf("Invalid path: %v\n", err)
		return nil, false
	}
	return p, true
}

func joinValue(args []string) string {
	return strings.Trim(strings.Join(args, " "), "\"'")
}

func (e *Editor) cmdShow(args []string) {
	expr := inspect.RootPath
	if len(args) > 0 {
		expr = args[0]
	}
	p, ok := e.parse(expr)
	if !ok {
		return
	}
	n, err := e.inspector.Node(p.NodePath())
	if err != nil {
		e.fail(err)
		return
	}
	e.printf("%s", e.formatter.FormatTree(n))
	e.printf("%s", e.formatter.FormatProperties(inspect.Properties(n)))
	e.printf("\n")
}

func (e *Editor) cmdGet(args []string) {
	if len(args) != 1 {
		e.printf("Usage: get <path/@prop>\n  Example: get extension[0]/@point\n")
		return
	}
	p, ok := e.parse(args[0])
	if !ok {
		return
	}
	v, err := e.inspector.Read(p)
	if err != nil {
		e.fail(err)
		return
	}
	e.printf("%s = %s\n", p.Property, e.formatter.FormatValue(v))
}

func (e *Editor) cmdSet(args []string) {
	if len(args) < 2 {
		e.printf("Usage: set <path/@prop> <value>\n  Example: set @version 2.0.0\n")
		return
	}
	p, ok := e.parse(args[0])
	if !ok {
		return
	}
	e.report(e.inspector.Write(p, joinValue(args[1:])))
}

func (e *Editor) cmdText(args []string) {
	if len(args) < 1 {
		e.printf("Usage: text <path> <value>\n")
		return
	}
	p, ok := e.parse(args[0])
	if !ok {
		return
	}
	e.report(e.inspector.SetText(p, joinValue(args[1:])))
}

func (e *Editor) cmdRemove(args []string) {
	if len(args) != 1 {
		e.printf("Usage: rm <path>\n")
		return
	}
	p, ok := e.parse(args[0])
	if !ok {
		return
	}
	e.report(e.inspector.Remove(p))
}

func (e *Editor) cmdAdd(args []string) {
	if len(args) < 3 {
		e.printf("Usage: add <path> <kind> <arg>\n  Example: add . extension org.example.views\n")
		return
	}
	p, ok := e.parse(args[0])
	if !ok {
		return
	}
	parent, err := e.inspector.Node(p.NodePath())
	if err != nil {
		e.fail(err)
		return
	}
	c, ok := parent.(model.Container)
	if !ok {
		e.printf("Error: %s cannot have children\n", parent.Kind())
		return
	}
	kind, ok := inspect.ResolveStepName(args[1])
	if !ok {
		e.printf("Unknown kind: %s\n", args[1])
		return
	}

	arg := args[2]
	var child model.Node
	switch kind {
	case model.KindExtension:
		child = e.model.NewExtension(arg)
	case model.KindExtensionPoint:
		child = e.model.NewExtensionPoint(arg, joinValue(args[3:]))
	case model.KindLibrary:
		child = e.model.NewLibrary(arg)
	case model.KindImport:
		child = e.model.NewImport(arg)
	case model.KindElement:
		child = e.model.NewElement(arg)
	default:
		e.printf("Unknown kind: %s\n", args[1])
		return
	}
	if err := c.InsertChild(-1, child); err != nil {
		e.fail(err)
		return
	}
	e.printf("Added %s\n", inspect.PathOf(child))
}

func (e *Editor) cmdSwap(args []string) {
	if len(args) != 2 {
		e.printf("Usage: swap <path> <path>\n")
		return
	}
	var nodes [2]model.Node
	for i, a := range args {
		p, ok := e.parse(a)
		if !ok {
			return
		}
		n, err := e.inspector.Node(p.NodePath())
		if err != nil {
			e.fail(err)
			return
		}
		nodes[i] = n
	}
	parent, ok := nodes[0].Parent().(model.Container)
	if !ok || nodes[1].Parent() != nodes[0].Parent() {
		e.printf("Error: nodes are not siblings\n")
		return
	}
	e.report(parent.SwapChildren(nodes[0], nodes[1]))
}

func (e *Editor) cmdSave(force bool) {
	e.mu.Lock()
	snap, diskDirty := e.snap, e.diskDirty
	e.mu.Unlock()

	if !force {
		changed := diskDirty
		if !changed && snap != nil {
			var err error
			if changed, err = e.store.Changed(snap); err != nil {
				e.fail(err)
				return
			}
		}
		if changed {
			e.printf("%s changed on disk; use 'save!' to overwrite or 'reload!' to discard your edits\n", e.path)
			return
		}
	}

	snap, err := e.store.Save(e.model)
	if err != nil {
		e.journal.Failed("save "+e.path, err)
		e.fail(err)
		return
	}
	if e.watcher != nil {
		e.watcher.SetBaseline(snap)
	}
	e.mu.Lock()
	e.snap = snap
	e.diskDirty = false
	e.mu.Unlock()

	e.journal.Saved(e.model, len(snap.Data))
	e.printf("Saved %s (%d bytes)\n", e.path, len(snap.Data))
}

func (e *Editor) cmdReload(force bool) {
	if e.model.IsDirty() && !force {
		e.printf("Unsaved changes; use 'reload!' to discard them\n")
		return
	}
	snap, err := e.store.Reload(e.model)
	if err != nil {
		e.journal.Failed("reload "+e.path, err)
		e.fail(err)
		return
	}
	if e.watcher != nil {
		e.watcher.SetBaseline(snap)
	}
	e.mu.Lock()
	e.snap = snap
	e.diskDirty = false
	e.mu.Unlock()
	e.printf("Reloaded %s (%d nodes)\n", e.path, e.model.NodeCount())
}

func (e *Editor) cmdEditable(args []string) {
	if len(args) != 1 {
		e.printf("editable: %v\n", e.model.IsEditable())
		return
	}
	b, err := parseOnOff(args[0])
	if err != nil {
		e.fail(err)
		return
	}
	e.model.SetEditable(b)
	e.printf("editable: %v\n", e.model.IsEditable())
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}

func (e *Editor) cmdStatus() {
	e.mu.Lock()
	snap, diskDirty := e.snap, e.diskDirty
	e.mu.Unlock()

	inSync := snap != nil && !diskDirty && e.model.IsInSync(snap.ModTime)
	undo, redo := e.history.Depth()

	e.printf("File:        %s\n", e.path)
	e.printf("State:       %s\n", e.model.State())
	e.printf("Nodes:       %d\n", e.model.NodeCount())
	e.printf("Dirty:       %v\n", e.model.IsDirty())
	e.printf("Editable:    %v\n", e.model.IsEditable())
	e.printf("Abbreviated: %v\n", e.model.IsAbbreviated())
	e.printf("In sync:     %v\n", inSync)
	e.printf("Undo/Redo:   %d/%d\n", undo, redo)
}
