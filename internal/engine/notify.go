package engine

import (
	"log/slog"

	"github.com/roach88/microlog/internal/tweet"
)

// Notification is emitted once per accepted operation, after the
// transaction commits. It carries the full new record, so subscribers
// never have to read the store to act on it.
type Notification struct {
	// Token correlates the notification with the request that caused it.
	Token string `json:"token"`

	// Kind is the operation that produced the record.
	Kind OpKind `json:"kind"`

	// Tweet is the newly created record.
	Tweet tweet.Tweet `json:"tweet"`
}

// Notifier receives notifications for accepted operations. Calls happen
// on the engine's writer goroutine, so implementations must not block;
// hand off to a channel or goroutine for slow consumers.
type Notifier interface {
	TweetAccepted(n Notification)
}

// FanoutNotifier delivers each notification to several notifiers in
// registration order.
type FanoutNotifier struct {
	notifiers []Notifier
}

// NewFanoutNotifier creates a fanout over the given notifiers.
func NewFanoutNotifier(notifiers ...Notifier) *FanoutNotifier {
	return &FanoutNotifier{notifiers: notifiers}
}

// TweetAccepted implements Notifier.
func (f *FanoutNotifier) TweetAccepted(n Notification) {
	for _, notifier := range f.notifiers {
		notifier.TweetAccepted(n)
	}
}

// LogNotifier writes each notification to the structured log. Useful on
// its own for the CLI and as a debugging tap alongside the firehose.
type LogNotifier struct{}

// TweetAccepted implements Notifier.
func (LogNotifier) TweetAccepted(n Notification) {
	slog.Info("tweet accepted",
		"token", n.Token,
		"kind", n.Kind,
		"id", n.Tweet.ID.String(),
		"author", n.Tweet.Author,
		"created_at", n.Tweet.CreatedAt,
	)
}

// nopNotifier drops notifications. Default when no notifier is configured.
type nopNotifier struct{}

func (nopNotifier) TweetAccepted(Notification) {}
