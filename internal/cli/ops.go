package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/microlog/internal/engine"
	"github.com/roach88/microlog/internal/store"
	"github.com/roach88/microlog/internal/tweet"
)

// OpOptions holds flags shared by the one-shot mutation commands.
type OpOptions struct {
	*RootOptions
	Database string
	Author   string
	Target   string

	// TokenGenerator allows overriding the correlation token generator
	// (for testing). If nil, defaults to UUIDv7Generator.
	TokenGenerator engine.TokenGenerator
}

// NewPostCommand creates the post command.
func NewPostCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OpOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "post <text>",
		Short: "Post an original tweet",
		Long: `Post an original tweet to the ledger.

Example:
  microlog post --db ./microlog.db --author alice "hello world"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			op := engine.Op{Kind: engine.OpPost, Author: opts.Author, Text: args[0]}
			return applyOp(opts, op, cmd)
		},
	}

	addOpFlags(cmd, opts, false)
	return cmd
}

// NewRetweetCommand creates the quote command.
func NewRetweetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OpOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:     "quote <text>",
		Aliases: []string{"retweet"},
		Short:   "Quote-repost an existing tweet",
		Long: `Quote-repost an existing tweet with commentary text.

The target must already exist in the ledger; quoting a missing id is
rejected with TWEET_NOT_FOUND.

Example:
  microlog quote --db ./microlog.db --author bob --target 0 "look at this"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := tweet.ParseID(opts.Target)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid target id", err)
			}
			op := engine.Op{Kind: engine.OpRetweet, Author: opts.Author, Text: args[0], Target: &target}
			return applyOp(opts, op, cmd)
		},
	}

	addOpFlags(cmd, opts, true)
	return cmd
}

// NewCommentCommand creates the comment command.
func NewCommentCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OpOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "comment <text>",
		Short: "Comment on an existing tweet",
		Long: `Comment on an existing tweet.

The comment becomes a tweet of its own and its id is appended to the
target's comment list.

Example:
  microlog comment --db ./microlog.db --author carol --target 0 "nice"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := tweet.ParseID(opts.Target)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid target id", err)
			}
			op := engine.Op{Kind: engine.OpComment, Author: opts.Author, Text: args[0], Target: &target}
			return applyOp(opts, op, cmd)
		},
	}

	addOpFlags(cmd, opts, true)
	return cmd
}

// addOpFlags registers the flags every mutation command takes.
func addOpFlags(cmd *cobra.Command, opts *OpOptions, needsTarget bool) {
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite ledger database (required)")
	cmd.Flags().StringVar(&opts.Author, "author", "", "account name the operation is attributed to (required)")
	_ = cmd.MarkFlagRequired("db")
	_ = cmd.MarkFlagRequired("author")

	if needsTarget {
		cmd.Flags().StringVar(&opts.Target, "target", "", "decimal id of the tweet to act on (required)")
		_ = cmd.MarkFlagRequired("target")
	}
}

// applyOp opens the ledger, applies a single operation, and reports the
// outcome. Rejections print through the formatter and exit with
// ExitFailure; infrastructure faults exit with ExitCommandError.
func applyOp(opts *OpOptions, op engine.Op, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, eng, err := openLedger(ctx, opts.Database, opts.TokenGenerator)
	if err != nil {
		return err
	}
	defer closeStore(st)

	out := formatter(cmd, opts.RootOptions)

	tw, err := eng.Apply(ctx, op)
	if err != nil {
		code := tweet.RejectCodeOf(err)
		if code == "" {
			return WrapExitError(ExitCommandError, "operation failed", err)
		}
		if ferr := out.Error(string(code), err.Error(), nil); ferr != nil {
			return WrapExitError(ExitCommandError, "failed to write output", ferr)
		}
		// The formatter already reported the rejection.
		return &ExitError{Code: ExitFailure}
	}

	return writeTweet(out, tw)
}

// openLedger opens the store and builds an engine whose clock resumes
// from the highest committed ordinal.
func openLedger(ctx context.Context, dbPath string, gen engine.TokenGenerator) (*store.Store, *engine.Engine, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	maxOrdinal, err := st.MaxCreatedAt(ctx)
	if err != nil {
		closeStore(st)
		return nil, nil, WrapExitError(ExitCommandError, "failed to read clock position", err)
	}

	if gen == nil {
		gen = engine.UUIDv7Generator{}
	}
	eng := engine.New(st, gen,
		engine.WithClock(engine.NewClockAt(maxOrdinal)),
		engine.WithNotifier(engine.LogNotifier{}),
	)
	return st, eng, nil
}

func closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

// writeTweet reports one tweet in the configured format. JSON output
// carries the canonical map; text output is one line per field.
func writeTweet(out *OutputFormatter, tw tweet.Tweet) error {
	if out.Format == "json" {
		return out.Success(tw.CanonicalMap())
	}

	fmt.Fprintf(out.Writer, "id: %s\n", tw.ID.String())
	fmt.Fprintf(out.Writer, "author: %s\n", tw.Author)
	fmt.Fprintf(out.Writer, "created_at: %d\n", tw.CreatedAt)
	if tw.QuoteOf != nil {
		fmt.Fprintf(out.Writer, "quote_of: %s\n", tw.QuoteOf.String())
	}
	fmt.Fprintf(out.Writer, "text: %s\n", tw.Text)
	if len(tw.Comments) > 0 {
		fmt.Fprintf(out.Writer, "comments:")
		for _, cid := range tw.Comments {
			fmt.Fprintf(out.Writer, " %s", cid.String())
		}
		fmt.Fprintln(out.Writer)
	}
	return nil
}
