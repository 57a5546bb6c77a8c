package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/microlog/internal/monitoring"
	"github.com/roach88/microlog/internal/store"
	"github.com/roach88/microlog/internal/tweet"
)

// Engine is the single-writer mutation loop for the tweet ledger.
//
// The engine applies operations (posts, quote-reposts, comments) in FIFO
// order. Each accepted operation allocates one identifier, stamps one
// clock ordinal, and emits one notification.
//
// CRITICAL: All mutations happen in the single-writer Run loop goroutine
// (or through Apply in single-threaded drivers). External callers use
// PostTweet, Retweet, and Comment to submit operations.
//
// Thread-safety model:
//   - PostTweet/Retweet/Comment: safe from any goroutine
//   - Run(): must be called from exactly one goroutine
//   - Apply(): single-threaded drivers only, never alongside Run
type Engine struct {
	store    *store.Store
	clock    *Clock
	queue    *opQueue
	tokenGen TokenGenerator
	notifier Notifier
}

// Option allows configuration of engine parameters.
type Option func(*Engine)

// WithClock sets a pre-positioned clock. Used to resume ordinals from
// the ledger's highest created_at across restarts.
func WithClock(c *Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithNotifier sets the notifier for accepted operations.
// Default: notifications are dropped.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) {
		e.notifier = n
	}
}

// New creates an Engine over the given store and token generator.
func New(s *store.Store, tokenGen TokenGenerator, opts ...Option) *Engine {
	e := &Engine{
		store:    s,
		clock:    NewClock(),
		queue:    newOpQueue(),
		tokenGen: tokenGen,
		notifier: nopNotifier{},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// SetNotifier replaces the notifier. Must be called before Run; it
// exists because notifiers like the firehose server are constructed
// over the engine itself.
func (e *Engine) SetNotifier(n Notifier) {
	e.notifier = n
}

// PostTweet submits an original tweet and waits for the outcome.
// Thread-safe: may be called from any goroutine while Run is active.
func (e *Engine) PostTweet(ctx context.Context, author, text string) (tweet.Tweet, error) {
	return e.submit(ctx, Op{Kind: OpPost, Author: author, Text: text})
}

// Retweet submits a quote-repost of target and waits for the outcome.
func (e *Engine) Retweet(ctx context.Context, author string, target tweet.ID, text string) (tweet.Tweet, error) {
	return e.submit(ctx, Op{Kind: OpRetweet, Author: author, Text: text, Target: &target})
}

// Comment submits a comment on target and waits for the outcome.
func (e *Engine) Comment(ctx context.Context, author, text string, target tweet.ID) (tweet.Tweet, error) {
	return e.submit(ctx, Op{Kind: OpComment, Author: author, Text: text, Target: &target})
}

// submit enqueues an op for the Run loop and waits for its result.
func (e *Engine) submit(ctx context.Context, op Op) (tweet.Tweet, error) {
	reply := make(chan OpResult, 1)
	op.Reply = reply

	if !e.queue.Enqueue(op) {
		return tweet.Tweet{}, fmt.Errorf("engine stopped")
	}

	select {
	case <-ctx.Done():
		return tweet.Tweet{}, ctx.Err()
	case res := <-reply:
		return res.Tweet, res.Err
	}
}

// Run starts the single-writer operation loop.
// Blocks until context is cancelled or Stop() is called.
//
// CRITICAL: Must be called from exactly ONE goroutine.
// All validation, allocation, and store writes happen in this goroutine
// so acceptance order is total.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("engine starting", "next_ordinal", e.clock.Current()+1)

	for {
		// Try non-blocking dequeue first
		op, ok := e.queue.TryDequeue()
		if ok {
			e.processOp(ctx, op)
			continue
		}

		// No op ready - wait for signal or context cancellation
		select {
		case <-ctx.Done():
			slog.Info("engine stopping: context cancelled")
			e.queue.Close()
			return ctx.Err()

		case <-e.queue.Wait():
			// Signal received - loop back to TryDequeue.
			// The signal channel closes when the queue is closed,
			// which makes this case fire immediately.
			if e.queue.Len() == 0 {
				slog.Info("engine stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop gracefully shuts down the engine.
// Closes the op queue, which will cause Run() to return.
func (e *Engine) Stop() {
	e.queue.Close()
}

// processOp applies one op and delivers the result to the submitter.
// CRITICAL: Called only from Run() goroutine - single-writer guarantee.
func (e *Engine) processOp(ctx context.Context, op Op) {
	tw, err := e.Apply(ctx, op)

	if op.Reply != nil {
		op.Reply <- OpResult{Tweet: tw, Err: err}
	}
}

// Apply runs one op against the ledger and returns the outcome.
//
// Exported for single-threaded drivers (the scenario harness and the
// one-shot CLI commands), which apply operations directly instead of
// going through the Run loop. Never call Apply while Run is active.
func (e *Engine) Apply(ctx context.Context, op Op) (tweet.Tweet, error) {
	slog.Debug("processing op",
		"kind", op.Kind,
		"author", op.Author,
	)

	params, err := e.createParams(op)
	if err != nil {
		monitoring.OperationsTotal.WithLabelValues(string(op.Kind), "error").Inc()
		return tweet.Tweet{}, err
	}

	tw, err := e.store.CreateTweet(ctx, params)
	if err != nil {
		if code := tweet.RejectCodeOf(err); code != "" {
			slog.Warn("op rejected",
				"kind", op.Kind,
				"author", op.Author,
				"code", string(code),
			)
			monitoring.OperationsTotal.WithLabelValues(string(op.Kind), "rejected").Inc()
		} else {
			slog.Error("op failed",
				"kind", op.Kind,
				"author", op.Author,
				"error", err,
			)
			monitoring.OperationsTotal.WithLabelValues(string(op.Kind), "error").Inc()
		}
		return tweet.Tweet{}, err
	}

	// The clock only moves on acceptance; CreateTweet wrote the ordinal
	// we reserved in createParams.
	e.clock.Next()
	monitoring.OperationsTotal.WithLabelValues(string(op.Kind), "accepted").Inc()

	slog.Info("op accepted",
		"kind", op.Kind,
		"author", op.Author,
		"id", tw.ID.String(),
		"created_at", tw.CreatedAt,
	)

	n := Notification{
		Token: e.tokenGen.Generate(),
		Kind:  op.Kind,
		Tweet: tw,
	}
	e.notifier.TweetAccepted(n)
	monitoring.NotificationsTotal.Inc()

	return tw, nil
}

// createParams maps an op onto store parameters, reserving the next
// clock ordinal as created_at. The ordinal is only committed to the
// clock when the store accepts the op.
func (e *Engine) createParams(op Op) (store.CreateParams, error) {
	p := store.CreateParams{
		CreatedAt: e.clock.Current() + 1,
		Text:      op.Text,
		Author:    op.Author,
	}

	switch op.Kind {
	case OpPost:
		if op.Target != nil {
			return store.CreateParams{}, fmt.Errorf("post op must not carry a target")
		}
	case OpRetweet:
		if op.Target == nil {
			return store.CreateParams{}, fmt.Errorf("retweet op requires a target")
		}
		p.QuoteOf = op.Target
	case OpComment:
		if op.Target == nil {
			return store.CreateParams{}, fmt.Errorf("comment op requires a target")
		}
		p.CommentOn = op.Target
	default:
		return store.CreateParams{}, fmt.Errorf("unknown op kind: %q", op.Kind)
	}

	return p, nil
}

// Clock exposes the engine's clock for inspection.
func (e *Engine) Clock() *Clock {
	return e.clock
}
