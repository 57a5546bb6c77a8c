package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpQueue_EnqueueDequeue(t *testing.T) {
	q := newOpQueue()

	ok := q.Enqueue(Op{Kind: OpPost, Author: "alice", Text: "hello"})
	require.True(t, ok, "enqueue should succeed")

	got, ok := q.TryDequeue()
	require.True(t, ok, "dequeue should succeed")
	assert.Equal(t, OpPost, got.Kind)
	assert.Equal(t, "alice", got.Author)
}

func TestOpQueue_FIFO(t *testing.T) {
	q := newOpQueue()

	for _, author := range []string{"A", "B", "C"} {
		q.Enqueue(Op{Kind: OpPost, Author: author})
	}

	for _, want := range []string{"A", "B", "C"} {
		op, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, want, op.Author)
	}
}

func TestOpQueue_TryDequeue_Empty(t *testing.T) {
	q := newOpQueue()

	_, ok := q.TryDequeue()
	assert.False(t, ok, "dequeue from empty queue should return false")
}

func TestOpQueue_EnqueueAfterClose(t *testing.T) {
	q := newOpQueue()
	q.Close()

	ok := q.Enqueue(Op{Kind: OpPost, Author: "alice"})
	assert.False(t, ok, "enqueue after close should fail")
}

func TestOpQueue_CloseIdempotent(t *testing.T) {
	q := newOpQueue()
	q.Close()
	q.Close() // Must not panic
}

func TestOpQueue_Len(t *testing.T) {
	q := newOpQueue()
	assert.Equal(t, 0, q.Len())

	q.Enqueue(Op{Kind: OpPost})
	q.Enqueue(Op{Kind: OpPost})
	assert.Equal(t, 2, q.Len())

	q.TryDequeue()
	assert.Equal(t, 1, q.Len())
}

func TestOpQueue_WaitSignalsOnEnqueue(t *testing.T) {
	q := newOpQueue()

	done := make(chan Op)
	go func() {
		<-q.Wait()
		op, ok := q.TryDequeue()
		if ok {
			done <- op
		}
	}()

	q.Enqueue(Op{Kind: OpPost, Author: "alice"})

	op := <-done
	assert.Equal(t, "alice", op.Author)
}

func TestOpQueue_ConcurrentEnqueue(t *testing.T) {
	q := newOpQueue()
	const goroutines = 50
	const opsPerGoroutine = 20

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < opsPerGoroutine; j++ {
				q.Enqueue(Op{Kind: OpPost})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines*opsPerGoroutine, q.Len())
}
