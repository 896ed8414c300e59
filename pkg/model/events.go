package model

// ChangeKind classifies a change event.
type ChangeKind uint8

// Change kinds.
const (
	Insert ChangeKind = iota + 1
	Remove
	Reorder
	PropertyChanged
	WorldChanged
)

// String returns the change kind name.
func (k ChangeKind) String() string {
	switch k {
	case Insert:
		return "INSERT"
	case Remove:
		return "REMOVE"
	case Reorder:
		return "REORDER"
	case PropertyChanged:
		return "PROPERTY_CHANGED"
	case WorldChanged:
		return "WORLD_CHANGED"
	default:
		return "UNKNOWN"
	}
}

// ChangeEvent describes one change to the model.
//
// Insert, Remove: Subject is the child, Container the parent and Index the
// position within the parent's list for that kind of child (the position
// the child was removed from, for Remove).
//
// Reorder: Subject and Other were swapped in Container; Index is the new
// position of Subject.
//
// PropertyChanged: Property is the key, OldValue and NewValue the values.
// For element attributes a nil value means the attribute is absent.
//
// WorldChanged: the whole tree was replaced. Subject is the new root, or
// nil after Reset.
type ChangeEvent struct {
	Kind      ChangeKind
	Subject   Node
	Container Node
	Index     int
	Other     Node
	Property  string
	OldValue  any
	NewValue  any
}

// Observer is notified synchronously about model changes. Observers may read
// the model but must not mutate it; doing so panics with ErrReentrantMutation.
type Observer interface {
	ModelChanged(ev ChangeEvent)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ev ChangeEvent)

// ModelChanged calls f(ev).
func (f ObserverFunc) ModelChanged(ev ChangeEvent) {
	f(ev)
}

// Subscription is the token returned by Subscribe. The zero value is not a
// valid subscription.
type Subscription struct {
	id uint64
}

// Valid reports whether the token came from Subscribe.
func (s Subscription) Valid() bool {
	return s.id != 0
}

type subscriber struct {
	id  uint64
	obs Observer
}

// change is what a mutation hands back to Model.edit.
type change struct {
	event ChangeEvent

	// after runs once observers have seen the event.
	after func()
}

// Subscribe registers o. Observers are called in registration order.
func (m *Model) Subscribe(o Observer) Subscription {
	m.obsMu.Lock()
	defer m.obsMu.Unlock()

	m.nextSub++
	m.observers = append(m.observers, subscriber{id: m.nextSub, obs: o})
	return Subscription{id: m.nextSub}
}

// Unsubscribe removes the observer registered under s.
// Returns false if s is unknown or was already removed.
func (m *Model) Unsubscribe(s Subscription) bool {
	m.obsMu.Lock()
	defer m.obsMu.Unlock()

	for i, sub := range m.observers {
		if sub.id == s.id {
			m.observers = append(m.observers[:i], m.observers[i+1:]...)
			return true
		}
	}
	return false
}

// ObserverCount returns the number of registered observers.
func (m *Model) ObserverCount() int {
	m.obsMu.RLock()
	defer m.obsMu.RUnlock()
	return len(m.observers)
}

// fire dispatches ev to a snapshot of the observers.
func (m *Model) fire(ev ChangeEvent) {
	m.obsMu.RLock()
	subs := make([]subscriber, len(m.observers))
	copy(subs, m.observers)
	m.obsMu.RUnlock()

	if len(subs) == 0 {
		return
	}

	m.dispatching.Add(1)
	defer m.dispatching.Add(-1)

	for _, sub := range subs {
		sub.obs.ModelChanged(ev)
	}
}
