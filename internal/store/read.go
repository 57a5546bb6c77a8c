package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/microlog/internal/tweet"
)

// GetTweet loads a single tweet with its full comment list. Returns a
// TWEET_NOT_FOUND rejection when the id does not exist.
func (s *Store) GetTweet(ctx context.Context, id tweet.ID) (tweet.Tweet, error) {
	var (
		t       tweet.Tweet
		hexID   string
		quoteOf sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, quote_of, text, author
		FROM tweets WHERE id = ?
	`, id.Hex()).Scan(&hexID, &t.CreatedAt, &quoteOf, &t.Text, &t.Author)
	if errors.Is(err, sql.ErrNoRows) {
		return tweet.Tweet{}, tweet.NewNotFoundError(id)
	}
	if err != nil {
		return tweet.Tweet{}, fmt.Errorf("get tweet: %w", err)
	}

	t.ID, err = tweet.ParseHex(hexID)
	if err != nil {
		return tweet.Tweet{}, fmt.Errorf("get tweet: %w", err)
	}
	if quoteOf.Valid {
		quoted, err := tweet.ParseHex(quoteOf.String)
		if err != nil {
			return tweet.Tweet{}, fmt.Errorf("get tweet: %w", err)
		}
		t.QuoteOf = &quoted
	}

	t.Comments, err = s.commentIDs(ctx, id)
	if err != nil {
		return tweet.Tweet{}, err
	}

	return t, nil
}

// HasTweet reports whether the id exists in the ledger.
func (s *Store) HasTweet(ctx context.Context, id tweet.ID) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM tweets WHERE id = ?
	`, id.Hex()).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("has tweet: %w", err)
	}
	return count > 0, nil
}

// AccountTimeline returns every tweet the account has authored, in
// creation order. An account that has never posted gets an empty slice,
// not nil - unknown accounts are indistinguishable from silent ones.
func (s *Store) AccountTimeline(ctx context.Context, author string) ([]tweet.Tweet, error) {
	// Fixed-width hex keys make ORDER BY tweet_id creation order.
	rows, err := s.db.QueryContext(ctx, `
		SELECT tweet_id FROM account_tweets
		WHERE author = ?
		ORDER BY tweet_id
	`, author)
	if err != nil {
		return nil, fmt.Errorf("account timeline: %w", err)
	}
	defer rows.Close()

	ids := []tweet.ID{}
	for rows.Next() {
		var hexID string
		if err := rows.Scan(&hexID); err != nil {
			return nil, fmt.Errorf("account timeline: %w", err)
		}
		id, err := tweet.ParseHex(hexID)
		if err != nil {
			return nil, fmt.Errorf("account timeline: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("account timeline: %w", err)
	}

	timeline := []tweet.Tweet{}
	for _, id := range ids {
		t, err := s.GetTweet(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("account timeline: %w", err)
		}
		timeline = append(timeline, t)
	}
	return timeline, nil
}

// NextID returns the allocator counter, the identifier the next accepted
// operation will receive.
func (s *Store) NextID(ctx context.Context) (tweet.ID, error) {
	var hi, lo int64
	err := s.db.QueryRowContext(ctx, `
		SELECT next_hi, next_lo FROM allocator WHERE id = 1
	`).Scan(&hi, &lo)
	if err != nil {
		return tweet.ID{}, fmt.Errorf("next id: %w", err)
	}
	return tweet.ID{Hi: uint64(hi), Lo: uint64(lo)}, nil
}

// MaxCreatedAt returns the highest causal-clock ordinal in the ledger,
// or 0 for an empty ledger. Used to resume the clock across process
// restarts.
func (s *Store) MaxCreatedAt(ctx context.Context) (int64, error) {
	var max sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(created_at) FROM tweets
	`).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("max created_at: %w", err)
	}
	if !max.Valid {
		return 0, nil
	}
	return max.Int64, nil
}

// commentIDs loads a tweet's comment list in append order.
func (s *Store) commentIDs(ctx context.Context, id tweet.ID) ([]tweet.ID, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT comment_id FROM tweet_comments
		WHERE tweet_id = ?
		ORDER BY ord
	`, id.Hex())
	if err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}
	defer rows.Close()

	comments := []tweet.ID{}
	for rows.Next() {
		var hexID string
		if err := rows.Scan(&hexID); err != nil {
			return nil, fmt.Errorf("load comments: %w", err)
		}
		cid, err := tweet.ParseHex(hexID)
		if err != nil {
			return nil, fmt.Errorf("load comments: %w", err)
		}
		comments = append(comments, cid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}
	return comments, nil
}
