// Package history records model edits and undoes or redoes them.
//
// A Manager subscribes to a model and keeps every change notification. Undo
// applies the inverse of the most recent step through the regular model
// API: property changes are restored with RestoreProperty, inserts are
// removed, removals re-inserted at their old index and swaps swapped back.
// The events those inverse edits produce become the redo step, so redo is
// simply the undo of an undo.
//
// A WorldChanged notification (load, reload, reset) clears both stacks,
// since the recorded nodes belong to a discarded tree.
package history

import (
	"errors"
	"fmt"
	"sync"

	"github.com/manifestkit/manifest-go/pkg/model"
)

// DefaultLimit is the number of undo steps kept when no limit is given.
const DefaultLimit = 100

// History errors.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	ErrBusy          = errors.New("undo or redo in progress")
)

// Step is one undoable unit: the change events of a single edit, or of a
// group of edits, in the order they happened.
type Step []model.ChangeEvent

type mode uint8

const (
	recording mode = iota
	grouping
	undoing
	redoing
)

// Manager keeps undo and redo stacks for one model.
type Manager struct {
	model *model.Model
	limit int
	sub   model.Subscription

	mu      sync.Mutex
	mode    mode
	pending Step
	undo    []Step
	redo    []Step
}

// NewManager starts recording the edits of m. At most limit steps are kept;
// limit <= 0 selects DefaultLimit.
func NewManager(m *model.Model, limit int) *Manager {
	if limit <= 0 {
		limit = DefaultLimit
	}
	h := &Manager{model: m, limit: limit}
	h.sub = m.Subscribe(h)
	return h
}

// Close stops recording.
func (h *Manager) Close() {
	h.model.Unsubscribe(h.sub)
}

// ModelChanged records ev.
func (h *Manager) ModelChanged(ev model.ChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ev.Kind == model.WorldChanged {
		h.undo, h.redo, h.pending = nil, nil, nil
		return
	}

	switch h.mode {
	case recording:
		h.push(&h.undo, Step{ev})
		h.redo = nil
	default:
		h.pending = append(h.pending, ev)
	}
}

func (h *Manager) push(stack *[]Step, s Step) {
	*stack = append(*stack, s)
	if over := len(*stack) - h.limit; over > 0 {
		*stack = append((*stack)[:0], (*stack)[over:]...)
	}
}

// Group runs fn and records all edits it makes as one step. The edits made
// before a failure are kept as a step too.
func (h *Manager) Group(fn func() error) error {
	h.mu.Lock()
	if h.mode != recording {
		h.mu.Unlock()
		return ErrBusy
	}
	h.mode = grouping
	h.pending = nil
	h.mu.Unlock()

	err := fn()

	h.mu.Lock()
	defer h.mu.Unlock()
	h.mode = recording
	if len(h.pending) > 0 {
		h.push(&h.undo, h.pending)
		h.redo = nil
	}
	h.pending = nil
	return err
}

// CanUndo reports whether a step can be undone.
func (h *Manager) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo) > 0
}

// CanRedo reports whether a step can be redone.
func (h *Manager) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo) > 0
}

// Depth returns the sizes of the undo and redo stacks.
func (h *Manager) Depth() (undo, redo int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo), len(h.redo)
}

// Clear drops all recorded steps.
func (h *Manager) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undo, h.redo = nil, nil
}

// Undo reverts the most recent step.
func (h *Manager) Undo() error {
	return h.apply(undoing)
}

// Redo re-applies the most recently undone step.
func (h *Manager) Redo() error {
	return h.apply(redoing)
}

func (h *Manager) apply(m mode) error {
	h.mu.Lock()
	if h.mode != recording {
		h.mu.Unlock()
		return ErrBusy
	}
	from, to := &h.undo, &h.redo
	empty := ErrNothingToUndo
	if m == redoing {
		from, to = &h.redo, &h.undo
		empty = ErrNothingToRedo
	}
	if len(*from) == 0 {
		h.mu.Unlock()
		return empty
	}
	step := (*from)[len(*from)-1]
	*from = (*from)[:len(*from)-1]
	h.mode = m
	h.pending = nil
	h.mu.Unlock()

	// Inverses are applied newest first.
	i := len(step) - 1
	var err error
	for ; i >= 0; i-- {
		if err = Invert(step[i]); err != nil {
			break
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.mode = recording
	if len(h.pending) > 0 {
		h.push(to, h.pending)
	}
	h.pending = nil
	if err != nil {
		// Put back what could not be reverted.
		h.push(from, step[:i+1])
		return err
	}
	return nil
}

// Invert applies the inverse of ev to the model that produced it.
func Invert(ev model.ChangeEvent) error {
	switch ev.Kind {
	case model.PropertyChanged:
		return ev.Subject.RestoreProperty(ev.Property, ev.OldValue, ev.NewValue)
	case model.Insert:
		c, err := container(ev)
		if err != nil {
			return err
		}
		return c.RemoveChild(ev.Subject)
	case model.Remove:
		c, err := container(ev)
		if err != nil {
			return err
		}
		return c.InsertChild(ev.Index, ev.Subject)
	case model.Reorder:
		c, err := container(ev)
		if err != nil {
			return err
		}
		return c.SwapChildren(ev.Subject, ev.Other)
	}
	return fmt.Errorf("history: %s cannot be inverted", ev.Kind)
}

func container(ev model.ChangeEvent) (model.Container, error) {
	c, ok := ev.Container.(model.Container)
	if !ok {
		return nil, fmt.Errorf("history: %s event without container", ev.Kind)
	}
	return c, nil
}

var _ model.Observer = (*Manager)(nil)
