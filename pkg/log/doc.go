// Package log provides a structured change journal for manifest models.
//
// This package defines the Logger interface and Event types for recording
// what happened to a model: edits (one event per change notification),
// lifecycle transitions (load, reload, save, reset) and failed operations.
// It is separate from operational logging (slog) - the journal is a complete
// machine-readable trace that can be replayed for auditing and debugging.
//
// # Basic Usage
//
// A Journal observes a model and forwards events to a Logger:
//
//	fl, _ := log.NewFileLogger("plugin.mjournal")
//	j := log.NewJournal(log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fl,
//	), m.ID(), "plugin.xml")
//	sub := m.Subscribe(j)
//	defer m.Unsubscribe(sub)
//
// Lifecycle transitions that do not produce change notifications are
// recorded explicitly with Journal.Loaded, Journal.Saved and Journal.Failed.
//
// # File Format
//
// Journal files are a stream of CBOR-encoded events with the .mjournal
// extension. The manifestctl journal command views and filters them.
package log
