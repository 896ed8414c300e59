// Package model implements the manifest object model.
//
// # Node Hierarchy
//
// A manifest is a plugin or fragment descriptor:
//
//	Root (plugin | fragment)
//	├── Library          <runtime><library>
//	├── Import           <requires><import>
//	├── ExtensionPoint   <extension-point>
//	├── Extension        <extension>
//	│   └── Element      arbitrary nested markup
//	│       └── Element
//	└── Element          unknown top-level markup, preserved
//
// Every node lives in the arena of the tree generation that created it and is
// addressed by a Handle. Containers own their children; a child only stores
// its parent's handle.
//
// # Lifecycle
//
// A Model goes from Unloaded to Loaded through Load, LoadAbbreviated or
// InitEmpty and back through Reset. A failed load leaves the model as it
// was and returns *ParseErrors. Mutations mark the model dirty; Save clears
// the flag.
//
// # Editing
//
// Every mutation first checks Model.IsEditable and fails with
// ErrEditNotPermitted without changing anything. Successful mutations notify
// observers synchronously, in registration order, before returning:
//
//	sub := m.Subscribe(model.ObserverFunc(func(ev model.ChangeEvent) {
//		fmt.Println(ev.Kind, ev.Subject.Kind())
//	}))
//	defer m.Unsubscribe(sub)
//
// Observers must not mutate the model; doing so panics with
// ErrReentrantMutation. RestoreProperty is the single entry point an undo
// stack needs to revert a PropertyChanged event.
package model
