package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/microlog/internal/tweet"
)

// CreateParams carries one mutation through the create pipeline. Exactly
// one of QuoteOf and CommentOn may be set: QuoteOf marks a quote-repost
// of the target, CommentOn appends the new record to the target's comment
// list. Both nil is a plain post.
type CreateParams struct {
	CreatedAt int64
	QuoteOf   *tweet.ID
	Text      string
	Author    string
	CommentOn *tweet.ID
}

// CreateTweet runs the whole create pipeline in one transaction:
//
//  1. Validate text length
//  2. Verify referenced tweets exist
//  3. Allocate the next identifier and advance the counter
//  4. Insert the record, index it under the author, and (for comments)
//     append to the target's comment list
//
// Any rejection rolls the transaction back, so a failed operation never
// consumes an identifier and never leaves a partial record. Rejections
// are returned as *tweet.RejectError; anything else is a storage fault.
func (s *Store) CreateTweet(ctx context.Context, p CreateParams) (tweet.Tweet, error) {
	if err := tweet.ValidateText(p.Text); err != nil {
		return tweet.Tweet{}, err
	}
	if p.QuoteOf != nil && p.CommentOn != nil {
		return tweet.Tweet{}, fmt.Errorf("create tweet: quote and comment targets are mutually exclusive")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return tweet.Tweet{}, fmt.Errorf("create tweet: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	// Step 2: Existence checks happen before allocation so a rejected
	// operation never moves the counter.
	if p.QuoteOf != nil {
		if err := requireTweetTx(ctx, tx, *p.QuoteOf); err != nil {
			return tweet.Tweet{}, err
		}
	}
	if p.CommentOn != nil {
		if err := requireTweetTx(ctx, tx, *p.CommentOn); err != nil {
			return tweet.Tweet{}, err
		}
	}

	// Step 3: Allocate.
	id, err := allocateIDTx(ctx, tx)
	if err != nil {
		return tweet.Tweet{}, err
	}

	// Step 4: Write.
	var quoteOf any
	if p.QuoteOf != nil {
		quoteOf = p.QuoteOf.Hex()
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO tweets (id, created_at, quote_of, text, author)
		VALUES (?, ?, ?, ?, ?)
	`, id.Hex(), p.CreatedAt, quoteOf, p.Text, p.Author)
	if err != nil {
		return tweet.Tweet{}, fmt.Errorf("create tweet: insert: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO account_tweets (author, tweet_id)
		VALUES (?, ?)
	`, p.Author, id.Hex())
	if err != nil {
		return tweet.Tweet{}, fmt.Errorf("create tweet: index under author: %w", err)
	}

	if p.CommentOn != nil {
		if err := appendCommentTx(ctx, tx, *p.CommentOn, id); err != nil {
			return tweet.Tweet{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return tweet.Tweet{}, fmt.Errorf("create tweet: commit: %w", err)
	}

	return tweet.Tweet{
		ID:        id,
		CreatedAt: p.CreatedAt,
		QuoteOf:   p.QuoteOf,
		Text:      p.Text,
		Comments:  []tweet.ID{},
		Author:    p.Author,
	}, nil
}

// requireTweetTx returns a TWEET_NOT_FOUND rejection when id does not
// exist in the ledger.
func requireTweetTx(ctx context.Context, tx *sql.Tx, id tweet.ID) error {
	var count int
	err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM tweets WHERE id = ?
	`, id.Hex()).Scan(&count)
	if err != nil {
		return fmt.Errorf("create tweet: check target: %w", err)
	}
	if count == 0 {
		return tweet.NewNotFoundError(id)
	}
	return nil
}

// allocateIDTx hands out the allocator's current counter value and
// advances it. The counter must always hold the next identifier to hand
// out, so allocation fails (counter unchanged, via rollback) when the
// advanced value would overflow. The maximum identifier is therefore
// never handed out.
func allocateIDTx(ctx context.Context, tx *sql.Tx) (tweet.ID, error) {
	var hi, lo int64
	err := tx.QueryRowContext(ctx, `
		SELECT next_hi, next_lo FROM allocator WHERE id = 1
	`).Scan(&hi, &lo)
	if err != nil {
		return tweet.ID{}, fmt.Errorf("create tweet: read allocator: %w", err)
	}

	id := tweet.ID{Hi: uint64(hi), Lo: uint64(lo)}
	next, ok := id.Next()
	if !ok {
		return tweet.ID{}, tweet.NewExhaustedError()
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE allocator SET next_hi = ?, next_lo = ? WHERE id = 1
	`, int64(next.Hi), int64(next.Lo))
	if err != nil {
		return tweet.ID{}, fmt.Errorf("create tweet: advance allocator: %w", err)
	}

	return id, nil
}

// appendCommentTx appends commentID to the end of target's comment list.
// ord is dense and 0-based; acceptance order is append order because all
// mutations run on a single writer.
func appendCommentTx(ctx context.Context, tx *sql.Tx, target, commentID tweet.ID) error {
	var ord int
	err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM tweet_comments WHERE tweet_id = ?
	`, target.Hex()).Scan(&ord)
	if err != nil {
		return fmt.Errorf("create tweet: count comments: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tweet_comments (tweet_id, ord, comment_id)
		VALUES (?, ?, ?)
	`, target.Hex(), ord, commentID.Hex())
	if err != nil {
		return fmt.Errorf("create tweet: append comment: %w", err)
	}
	return nil
}

// SetNextID overwrites the allocator counter. Used by tests and the
// harness to drive the ledger toward exhaustion without allocating
// 2^128 identifiers.
func (s *Store) SetNextID(ctx context.Context, next tweet.ID) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE allocator SET next_hi = ?, next_lo = ? WHERE id = 1
	`, int64(next.Hi), int64(next.Lo))
	if err != nil {
		return fmt.Errorf("set next id: %w", err)
	}
	return nil
}
