package log

import (
	"time"
)

// Event represents one journal entry about a manifest model.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ModelID identifies the model instance (UUID).
	ModelID string `cbor:"2,keyasint"`

	// Source names the manifest the model was loaded from, if any.
	Source string `cbor:"3,keyasint,omitempty"`

	// Category classifies the event type.
	Category Category `cbor:"4,keyasint"`

	// Type-specific payload (one of these will be set).
	Change    *ChangeEventData `cbor:"5,keyasint,omitempty"` // Tree edits
	Lifecycle *LifecycleEvent  `cbor:"6,keyasint,omitempty"` // Load, save, reset
	Error     *ErrorEventData  `cbor:"7,keyasint,omitempty"` // Failed operations
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryChange indicates a change to the tree.
	CategoryChange Category = 0
	// CategoryLifecycle indicates a model lifecycle transition.
	CategoryLifecycle Category = 1
	// CategoryError indicates a failed operation.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryChange:
		return "CHANGE"
	case CategoryLifecycle:
		return "LIFECYCLE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ChangeType mirrors model.ChangeKind in the journal.
type ChangeType uint8

const (
	ChangeInsert ChangeType = 1 + iota
	ChangeRemove
	ChangeReorder
	ChangeProperty
	ChangeWorld
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeInsert:
		return "INSERT"
	case ChangeRemove:
		return "REMOVE"
	case ChangeReorder:
		return "REORDER"
	case ChangeProperty:
		return "PROPERTY"
	case ChangeWorld:
		return "WORLD"
	default:
		return "UNKNOWN"
	}
}

// ChangeEventData captures one change notification of the model.
type ChangeEventData struct {
	// Type of change.
	Type ChangeType `cbor:"1,keyasint"`

	// Path of the subject node at the time of the change.
	Path string `cbor:"2,keyasint"`

	// NodeKind is the subject's kind name.
	NodeKind string `cbor:"3,keyasint,omitempty"`

	// Container is the path of the parent for structural changes.
	Container string `cbor:"4,keyasint,omitempty"`

	// Index is the position for insert, remove and reorder changes.
	Index int `cbor:"5,keyasint,omitempty"`

	// Other is the path of the second node of a reorder.
	Other string `cbor:"6,keyasint,omitempty"`

	// Property key for property changes.
	Property string `cbor:"7,keyasint,omitempty"`

	// OldValue and NewValue of a property change. Nil means absent.
	OldValue any `cbor:"8,keyasint,omitempty"`
	NewValue any `cbor:"9,keyasint,omitempty"`
}

// LifecycleEvent captures load, save and reset transitions.
type LifecycleEvent struct {
	// Action performed.
	Action LifecycleAction `cbor:"1,keyasint"`

	// State is the model state after the action.
	State string `cbor:"2,keyasint,omitempty"`

	// Nodes is the number of nodes in the tree after the action.
	Nodes int `cbor:"3,keyasint,omitempty"`

	// Abbreviated is set for abbreviated loads.
	Abbreviated bool `cbor:"4,keyasint,omitempty"`

	// Bytes written by a save.
	Bytes int `cbor:"5,keyasint,omitempty"`
}

// LifecycleAction indicates what happened to the model.
type LifecycleAction uint8

const (
	// ActionLoad indicates a successful load.
	ActionLoad LifecycleAction = 0
	// ActionReload indicates a successful reload.
	ActionReload LifecycleAction = 1
	// ActionSave indicates a successful save.
	ActionSave LifecycleAction = 2
	// ActionReset indicates the tree was dropped.
	ActionReset LifecycleAction = 3
)

// String returns the action name.
func (a LifecycleAction) String() string {
	switch a {
	case ActionLoad:
		return "LOAD"
	case ActionReload:
		return "RELOAD"
	case ActionSave:
		return "SAVE"
	case ActionReset:
		return "RESET"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures a failed operation.
type ErrorEventData struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Count is the number of diagnostics for parse failures.
	Count int `cbor:"2,keyasint,omitempty"`

	// Lines lists the distinct lines with diagnostics.
	Lines []int `cbor:"3,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"4,keyasint,omitempty"`
}
