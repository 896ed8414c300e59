package model

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle state of a Model.
type State uint8

// Lifecycle states.
const (
	StateUnloaded State = iota
	StateLoading
	StateLoaded
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "UNLOADED"
	case StateLoading:
		return "LOADING"
	case StateLoaded:
		return "LOADED"
	default:
		return "UNKNOWN"
	}
}

// Stamper is implemented by byte sources that know the modification time of
// their backing store. Load uses it as the synchronization stamp.
type Stamper interface {
	Stamp() time.Time
}

// Options configures a Model.
type Options struct {
	// Editable allows mutations once the model is loaded.
	Editable bool

	// IdentityHint is used as id and name by InitEmpty.
	IdentityHint string

	// Translator resolves %key names. Optional.
	Translator Translator

	// Logger receives debug output. Nil disables logging.
	Logger *slog.Logger

	// Clock supplies the sync stamp when the reader is not a Stamper.
	Clock func() time.Time
}

// DefaultOptions returns options for an editable model.
func DefaultOptions() Options {
	return Options{
		Editable: true,
		Clock:    time.Now,
	}
}

// Model owns one manifest tree and controls its lifecycle: load, reload,
// save, dirty tracking, edit authorization and change notification.
//
// A Model has a single logical owner. Loads, saves and mutations are
// serialized by an internal lock; observers are called outside of it.
type Model struct {
	id   uuid.UUID
	opts Options

	mu          sync.Mutex
	state       State
	editable    bool
	abbreviated bool
	dirty       bool
	root        *Root
	arena       *arena
	syncStamp   time.Time
	lastErr     error

	obsMu       sync.RWMutex
	observers   []subscriber
	nextSub     uint64
	dispatching atomic.Int32
}

// New creates an unloaded model.
func New(opts Options) *Model {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Model{
		id:       uuid.New(),
		opts:     opts,
		editable: opts.Editable,
		arena:    newArena(),
	}
}

// ID returns the unique id of this model instance.
func (m *Model) ID() uuid.UUID {
	return m.id
}

// State returns the lifecycle state.
func (m *Model) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Root returns the manifest root, or nil when unloaded.
func (m *Model) Root() *Root {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.root
}

// IsLoaded reports whether a tree is loaded.
func (m *Model) IsLoaded() bool {
	return m.State() == StateLoaded
}

// IsAbbreviated reports whether the tree came from LoadAbbreviated.
func (m *Model) IsAbbreviated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.abbreviated
}

// IsDirty reports whether the tree changed since the last load or save.
func (m *Model) IsDirty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dirty
}

// IsEditable reports whether mutations are currently allowed.
func (m *Model) IsEditable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isEditableLocked()
}

func (m *Model) isEditableLocked() bool {
	return m.editable && m.state == StateLoaded && !m.abbreviated
}

// SetEditable changes the editable flag.
func (m *Model) SetEditable(editable bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.editable = editable
}

// LastLoadError returns the error of the most recent failed load, or nil if
// the most recent load succeeded.
func (m *Model) LastLoadError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// SyncStamp returns the synchronization timestamp.
func (m *Model) SyncStamp() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.syncStamp
}

// SetSyncStamp replaces the synchronization timestamp, typically after the
// caller wrote a save to its backing store.
func (m *Model) SetSyncStamp(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncStamp = t
}

// IsInSync reports whether the backing store timestamp t equals the sync stamp.
func (m *Model) IsInSync(t time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.syncStamp.IsZero() && m.syncStamp.Equal(t)
}

// Lookup resolves a handle of the current tree generation.
func (m *Model) Lookup(h Handle) Node {
	m.mu.Lock()
	a := m.arena
	m.mu.Unlock()
	return a.get(h)
}

// NodeCount returns the number of nodes allocated in the current generation,
// including detached ones.
func (m *Model) NodeCount() int {
	m.mu.Lock()
	a := m.arena
	m.mu.Unlock()
	return a.len()
}

// Load parses r and replaces the tree. Unless outOfSync is set, the sync
// stamp is updated from r (see Stamper) or the model clock.
//
// On failure the model keeps its previous state and tree and the error is
// returned; parse failures are *ParseErrors.
func (m *Model) Load(r io.Reader, outOfSync bool) error {
	return m.load(r, outOfSync, nil, false)
}

// LoadAbbreviated parses r keeping only the extensions whose point is in
// points and discarding text content. The result is never editable and
// cannot be saved.
func (m *Model) LoadAbbreviated(r io.Reader, points []string) error {
	set := make(map[string]bool, len(points))
	for _, p := range points {
		set[p] = true
	}
	return m.load(r, false, set, false)
}

// Reload loads r like Load and then sends one WorldChanged event.
func (m *Model) Reload(r io.Reader, outOfSync bool) error {
	return m.load(r, outOfSync, nil, true)
}

func (m *Model) load(r io.Reader, outOfSync bool, points map[string]bool, world bool) error {
	m.checkNotDispatching("load")

	m.mu.Lock()
	prev := m.state
	m.state = StateLoading

	data, err := io.ReadAll(r)
	if err != nil {
		m.state = prev
		m.mu.Unlock()
		return fmt.Errorf("read manifest: %w", err)
	}

	a := newArena()
	root, perr := parse(m, a, data, points)
	if perr != nil {
		m.state = prev
		m.lastErr = perr
		m.mu.Unlock()
		m.debugLog("load failed", "model", m.id, "errors", perr.Count(), "lines", perr.Lines())
		return perr
	}

	old := m.root
	setInModel(root, true)
	m.root = root
	m.arena = a
	m.state = StateLoaded
	m.dirty = false
	m.abbreviated = points != nil
	m.lastErr = nil
	if !outOfSync {
		m.syncStamp = m.stampFrom(r)
	}
	m.mu.Unlock()

	if old != nil {
		setInModel(old, false)
	}
	m.debugLog("manifest loaded",
		"model", m.id,
		"nodes", a.len(),
		"abbreviated", points != nil,
		"outOfSync", outOfSync)

	if world {
		m.fire(ChangeEvent{Kind: WorldChanged, Subject: root})
	}
	return nil
}

func (m *Model) stampFrom(r io.Reader) time.Time {
	if s, ok := r.(Stamper); ok {
		if t := s.Stamp(); !t.IsZero() {
			return t
		}
	}
	return m.opts.Clock()
}

// Reset drops the tree and returns to the unloaded state. Observers get a
// WorldChanged event with a nil subject.
func (m *Model) Reset() {
	m.checkNotDispatching("reset")

	m.mu.Lock()
	old := m.root
	m.root = nil
	m.arena = newArena()
	m.state = StateUnloaded
	m.dirty = false
	m.abbreviated = false
	m.syncStamp = time.Time{}
	m.mu.Unlock()

	if old != nil {
		setInModel(old, false)
	}
	m.debugLog("model reset", "model", m.id)
	m.fire(ChangeEvent{Kind: WorldChanged})
}

// InitEmpty replaces the tree with an empty plugin or fragment whose id and
// name come from the identity hint.
func (m *Model) InitEmpty(fragment bool) {
	m.checkNotDispatching("init")

	a := newArena()
	root := newRoot(m, a, fragment)
	root.id = m.opts.IdentityHint
	root.name = m.opts.IdentityHint
	root.version = "1.0.0"
	root.schemaVersion = DefaultSchemaVersion

	m.mu.Lock()
	old := m.root
	setInModel(root, true)
	m.root = root
	m.arena = a
	m.state = StateLoaded
	m.dirty = false
	m.abbreviated = false
	m.lastErr = nil
	m.mu.Unlock()

	if old != nil {
		setInModel(old, false)
	}
	m.fire(ChangeEvent{Kind: WorldChanged, Subject: root})
}

// Serialize renders the tree without changing any state.
func (m *Model) Serialize() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateLoaded {
		return nil, ErrNotLoaded
	}
	var buf bytes.Buffer
	writeManifest(&buf, m.root)
	return buf.Bytes(), nil
}

// Save serializes the tree to w and clears the dirty flag. Nothing is
// written unless the whole document rendered.
func (m *Model) Save(w io.Writer) error {
	m.mu.Lock()
	if m.abbreviated {
		m.mu.Unlock()
		return ErrAbbreviated
	}
	m.mu.Unlock()

	data, err := m.Serialize()
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	m.mu.Lock()
	m.dirty = false
	m.mu.Unlock()
	m.debugLog("manifest saved", "model", m.id, "bytes", len(data))
	return nil
}

// NewExtension creates a detached extension for point.
func (m *Model) NewExtension(point string) *Extension {
	return newExtension(m, m.currentArena(), point)
}

// NewExtensionPoint creates a detached extension point.
func (m *Model) NewExtensionPoint(id, name string) *ExtensionPoint {
	p := newExtensionPoint(m, m.currentArena(), id)
	p.name = name
	return p
}

// NewLibrary creates a detached library.
func (m *Model) NewLibrary(name string) *Library {
	return newLibrary(m, m.currentArena(), name)
}

// NewImport creates a detached import of pluginID.
func (m *Model) NewImport(pluginID string) *Import {
	return newImport(m, m.currentArena(), pluginID)
}

// NewElement creates a detached element with the given tag.
func (m *Model) NewElement(tag string) *Element {
	return newElement(m, m.currentArena(), tag)
}

func (m *Model) currentArena() *arena {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.arena
}

// authorize checks that a mutation would be allowed without performing one.
func (m *Model) authorize() error {
	return m.edit(nil, "authorize", func() (*change, error) { return nil, nil })
}

// edit runs one mutation: authorization, the change itself, dirty marking
// and notification, in that order. fn runs under the model lock and returns
// nil when nothing changed. owner is the arena of the edited node; a node
// of a replaced tree panics.
func (m *Model) edit(owner *arena, op string, fn func() (*change, error)) error {
	m.checkNotDispatching(op)

	m.mu.Lock()
	if owner != nil && owner != m.arena {
		m.mu.Unlock()
		panic(fmt.Sprintf("model: %s on a node of a discarded tree", op))
	}
	if !m.isEditableLocked() {
		m.mu.Unlock()
		m.debugLog("edit rejected", "model", m.id, "op", op)
		return ErrEditNotPermitted
	}
	ch, err := fn()
	if err != nil || ch == nil {
		m.mu.Unlock()
		return err
	}
	m.dirty = true
	m.mu.Unlock()

	m.fire(ch.event)

	if ch.after != nil {
		m.mu.Lock()
		ch.after()
		m.mu.Unlock()
	}
	return nil
}

func (m *Model) checkNotDispatching(op string) {
	if m.dispatching.Load() > 0 {
		m.debugLog("reentrant mutation", "model", m.id, "op", op)
		panic(ErrReentrantMutation)
	}
}

func (m *Model) translate(name string) string {
	if len(name) < 2 || name[0] != '%' {
		return name
	}
	key := name[1:]
	if m.opts.Translator != nil {
		if v, ok := m.opts.Translator.Translate(key); ok {
			return v
		}
	}
	return key
}

// debugLog logs a debug message if a logger is configured.
func (m *Model) debugLog(msg string, args ...any) {
	if m.opts.Logger != nil {
		m.opts.Logger.Debug(msg, args...)
	}
}
