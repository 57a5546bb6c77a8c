// Package harness runs data-driven ledger scenarios.
//
// A scenario is a YAML file: a sequence of operations (posts,
// quote-reposts, comments) with optional per-step expectations, plus
// assertions on the final ledger state. Each scenario runs against a
// fresh store with a zeroed clock and sequence tokens, so the same
// scenario always produces a byte-identical trace. Golden files pin
// those traces down.
//
// The CLI's run command executes the same scenarios against a real
// database.
package harness
