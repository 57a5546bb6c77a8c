package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/microlog/internal/store"
	"github.com/roach88/microlog/internal/tweet"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Database string
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a single tweet",
		Long: `Show a single tweet by its decimal identifier, including its
comment list.

Example:
  microlog show --db ./microlog.db 0`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showTweet(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite ledger database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func showTweet(opts *ShowOptions, rawID string, cmd *cobra.Command) error {
	id, err := tweet.ParseID(rawID)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid tweet id", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer closeStore(st)

	out := formatter(cmd, opts.RootOptions)

	tw, err := st.GetTweet(ctx, id)
	if err != nil {
		code := tweet.RejectCodeOf(err)
		if code == "" {
			return WrapExitError(ExitCommandError, "failed to load tweet", err)
		}
		if ferr := out.Error(string(code), err.Error(), nil); ferr != nil {
			return WrapExitError(ExitCommandError, "failed to write output", ferr)
		}
		return &ExitError{Code: ExitFailure}
	}

	return writeTweet(out, tw)
}
