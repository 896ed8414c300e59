package log

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/manifestkit/manifest-go/pkg/inspect"
	"github.com/manifestkit/manifest-go/pkg/model"
)

// Journal converts model change notifications into journal events.
// Register it with model.Model.Subscribe.
type Journal struct {
	logger  Logger
	modelID string
	clock   func() time.Time

	mu     sync.Mutex
	source string
}

// NewJournal creates a Journal writing to logger. A nil logger discards
// events.
func NewJournal(logger Logger, modelID uuid.UUID, source string) *Journal {
	if logger == nil {
		logger = NoopLogger{}
	}
	return &Journal{
		logger:  logger,
		modelID: modelID.String(),
		source:  source,
		clock:   time.Now,
	}
}

// SetSource changes the source recorded in subsequent events.
func (j *Journal) SetSource(source string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.source = source
}

func (j *Journal) event(cat Category) Event {
	j.mu.Lock()
	source := j.source
	j.mu.Unlock()
	return Event{
		Timestamp: j.clock(),
		ModelID:   j.modelID,
		Source:    source,
		Category:  cat,
	}
}

// ModelChanged records ev. WorldChanged notifications become lifecycle
// events; everything else is a change event.
func (j *Journal) ModelChanged(ev model.ChangeEvent) {
	if ev.Kind == model.WorldChanged {
		e := j.event(CategoryLifecycle)
		e.Lifecycle = &LifecycleEvent{Action: ActionReload}
		if ev.Subject == nil {
			e.Lifecycle.Action = ActionReset
		} else {
			e.Lifecycle.State = ev.Subject.Model().State().String()
			e.Lifecycle.Nodes = ev.Subject.Model().NodeCount()
		}
		j.logger.Log(e)
		return
	}

	e := j.event(CategoryChange)
	e.Change = changeData(ev)
	j.logger.Log(e)
}

func changeData(ev model.ChangeEvent) *ChangeEventData {
	d := &ChangeEventData{
		Type:     ChangeType(ev.Kind),
		NodeKind: ev.Subject.Kind().String(),
	}

	switch ev.Kind {
	case model.Insert, model.Remove:
		// A removed node is no longer listed in its container, so its path
		// is rebuilt from the container path and the event index.
		container := inspect.PathOf(ev.Container)
		d.Container = container.String()
		d.Index = ev.Index
		child := &inspect.Path{Steps: append(append([]inspect.Step{}, container.Steps...),
			inspect.Step{Kind: ev.Subject.Kind(), Index: ev.Index})}
		d.Path = child.String()
	case model.Reorder:
		d.Path = inspect.PathOf(ev.Subject).String()
		d.Container = inspect.PathOf(ev.Container).String()
		d.Index = ev.Index
		d.Other = inspect.PathOf(ev.Other).String()
	case model.PropertyChanged:
		d.Path = inspect.PathOf(ev.Subject).String()
		d.Property = ev.Property
		d.OldValue = journalValue(ev.OldValue)
		d.NewValue = journalValue(ev.NewValue)
	}
	return d
}

// journalValue converts property values to CBOR-friendly forms.
func journalValue(v any) any {
	switch x := v.(type) {
	case model.MatchRule:
		return x.String()
	default:
		return v
	}
}

// Loaded records a successful load. Reloads are recorded through the
// WorldChanged notification instead.
func (j *Journal) Loaded(m *model.Model) {
	e := j.event(CategoryLifecycle)
	e.Lifecycle = &LifecycleEvent{
		Action:      ActionLoad,
		State:       m.State().String(),
		Nodes:       m.NodeCount(),
		Abbreviated: m.IsAbbreviated(),
	}
	j.logger.Log(e)
}

// Saved records a successful save of n bytes.
func (j *Journal) Saved(m *model.Model, n int) {
	e := j.event(CategoryLifecycle)
	e.Lifecycle = &LifecycleEvent{
		Action: ActionSave,
		State:  m.State().String(),
		Nodes:  m.NodeCount(),
		Bytes:  n,
	}
	j.logger.Log(e)
}

// Failed records a failed operation. Parse failures keep their diagnostic
// count and lines.
func (j *Journal) Failed(context string, err error) {
	e := j.event(CategoryError)
	e.Error = &ErrorEventData{Message: err.Error(), Context: context}
	var perr *model.ParseErrors
	if errors.As(err, &perr) {
		e.Error.Count = perr.Count()
		e.Error.Lines = perr.Lines()
	}
	j.logger.Log(e)
}

// Compile-time interface satisfaction check.
var _ model.Observer = (*Journal)(nil)
