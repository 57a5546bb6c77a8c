// Package tweet defines the ledger's data model: the 128-bit tweet
// identifier, the immutable tweet record, the closed rejection taxonomy,
// and the canonical JSON serialization used for notifications and golden
// traces.
//
// Everything in this package is pure data - no I/O, no storage. The store
// and engine packages build on these types.
package tweet
