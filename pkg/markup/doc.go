// Package markup implements the single-pass, push-style scanner used to read
// manifest documents.
//
// The scanner walks the raw document once and pushes events to a [Handler]:
//
//	ProcInst      <?target instruction?>
//	StartElement  <name attr="value">   (the handler may ask to skip the subtree)
//	EndElement    </name>
//	Text          character data, CDATA sections
//	Comment       <!-- comment -->
//
// There is no intermediate generic tree. Handlers build their own objects
// directly from the events.
//
// # Line Tracking
//
// Every event carries the 1-based line number of the construct that produced
// it. For elements this is the line of the '<' that opens the tag.
//
// # Error Collection
//
// Syntax problems do not abort the scan. They are recorded in a [Collector]
// and scanning continues with a best-effort recovery:
//
//   - an invalid UTF-8 byte run counts as one error and is replaced by U+FFFD
//   - an end tag closing an outer element counts one error per inner element
//     it implicitly closes; elements still open at EOF count one error each
//   - stray end tags, malformed or duplicate attributes, unknown entities and
//     text outside the root element count one error each
//
// Unterminated markup at end of input, a missing root element and an
// unsupported declared encoding are fatal: they are counted and scanning
// stops.
//
// A Scanner and its Collector belong to a single document. Allocate a new
// Scanner per scan; nothing in this package holds shared mutable state.
package markup
