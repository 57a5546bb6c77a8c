package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequenceTokenGenerator_Sequential(t *testing.T) {
	gen := NewSequenceTokenGenerator("op")

	assert.Equal(t, "op-000001", gen.Generate())
	assert.Equal(t, "op-000002", gen.Generate())
	assert.Equal(t, "op-000003", gen.Generate())
}

func TestSequenceTokenGenerator_DefaultPrefix(t *testing.T) {
	gen := NewSequenceTokenGenerator("")
	assert.Equal(t, "op-000001", gen.Generate())
}

func TestSequenceTokenGenerator_Reset(t *testing.T) {
	gen := NewSequenceTokenGenerator("op")
	gen.Generate()
	gen.Generate()

	gen.Reset()
	assert.Equal(t, "op-000001", gen.Generate())
}

func TestSequenceTokenGenerator_ThreadSafe(t *testing.T) {
	gen := NewSequenceTokenGenerator("op")
	const goroutines = 50

	var wg sync.WaitGroup
	tokens := make(chan string, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tokens <- gen.Generate()
		}()
	}
	wg.Wait()
	close(tokens)

	seen := make(map[string]bool)
	for token := range tokens {
		assert.False(t, seen[token], "token %s generated twice", token)
		seen[token] = true
	}
	assert.Len(t, seen, goroutines)
}

func TestStaticTokenGenerator(t *testing.T) {
	gen := NewStaticTokenGenerator("fixed")
	assert.Equal(t, "fixed", gen.Generate())
	assert.Equal(t, "fixed", gen.Generate())
}

func TestStaticTokenGenerator_Default(t *testing.T) {
	gen := NewStaticTokenGenerator("")
	assert.Equal(t, "test-token", gen.Generate())
}
