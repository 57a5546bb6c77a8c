// Package store provides durable storage for the tweet ledger.
//
// SQLite backs the ledger. The three mutation paths (post, quote-repost,
// comment) all funnel through CreateTweet, which runs the whole
// validate-allocate-write pipeline inside a single transaction so a
// rejection never consumes an identifier or leaves a partial record.
//
// Identifiers are stored as fixed-width 32-char hex strings; the
// allocator counter is stored as two 64-bit halves in a single-row table.
package store
