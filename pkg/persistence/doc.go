// Package persistence stores manifest files on disk.
//
// FileStore reads a manifest into a Snapshot that carries the file's
// modification time and a BLAKE2b digest of its content. A Snapshot's reader
// implements model.Stamper, so loading through it records the file time as
// the model's sync stamp. Writes are atomic: data goes to a temporary file in
// the same directory which is then renamed over the target.
//
// Changed and Watch detect edits made by other programs. IndexStore keeps
// the JSON cache used when indexing a directory of manifests.
package persistence
