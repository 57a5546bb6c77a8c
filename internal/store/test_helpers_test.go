package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/microlog/internal/tweet"
)

// createTestStore creates a fresh on-disk store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// mustCreate runs CreateTweet and fails the test on any error.
func mustCreate(t *testing.T, s *Store, p CreateParams) tweet.Tweet {
	t.Helper()
	tw, err := s.CreateTweet(context.Background(), p)
	if err != nil {
		t.Fatalf("CreateTweet(%+v) failed: %v", p, err)
	}
	return tw
}

// postParams builds CreateParams for a plain post.
func postParams(author, text string, createdAt int64) CreateParams {
	return CreateParams{
		CreatedAt: createdAt,
		Text:      text,
		Author:    author,
	}
}
