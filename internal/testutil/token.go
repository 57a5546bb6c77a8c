// Package testutil provides deterministic token generators for tests
// and the scenario harness.
package testutil

import (
	"fmt"
	"sync"
)

// SequenceTokenGenerator generates "prefix-000001", "prefix-000002", ...
//
// Unlike engine.FixedGenerator it never runs out, which suits scenario
// runs whose operation count is data-driven. The same scenario always
// produces the same token sequence, so golden traces are byte-identical
// across runs.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequenceTokenGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceTokenGenerator creates a generator with the given prefix.
// An empty prefix defaults to "op".
func NewSequenceTokenGenerator(prefix string) *SequenceTokenGenerator {
	if prefix == "" {
		prefix = "op"
	}
	return &SequenceTokenGenerator{prefix: prefix}
}

// Generate returns the next token in the sequence.
//
// Implements engine.TokenGenerator.
func (g *SequenceTokenGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%06d", g.prefix, g.n)
}

// Reset restarts the sequence. After Reset(), the next token is
// "prefix-000001" again.
func (g *SequenceTokenGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n = 0
}

// StaticTokenGenerator returns the same token every time.
//
// Useful when a test only cares that a token is present, not which one.
//
// Thread-safety: stateless and safe for concurrent use.
type StaticTokenGenerator struct {
	token string
}

// NewStaticTokenGenerator creates a generator for the given token.
// If token is empty, Generate() returns "test-token".
func NewStaticTokenGenerator(token string) *StaticTokenGenerator {
	if token == "" {
		token = "test-token"
	}
	return &StaticTokenGenerator{token: token}
}

// Generate returns the fixed token.
//
// Implements engine.TokenGenerator.
func (g *StaticTokenGenerator) Generate() string {
	return g.token
}
