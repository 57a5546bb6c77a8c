package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/microlog/internal/store"
)

// TimelineOptions holds flags for the timeline command.
type TimelineOptions struct {
	*RootOptions
	Database string
}

// NewTimelineCommand creates the timeline command.
func NewTimelineCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TimelineOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "timeline <author>",
		Short: "List every tweet an account has authored",
		Long: `List every tweet an account has authored, in creation order.

An account that has never posted produces an empty timeline; unknown
accounts are indistinguishable from silent ones.

Example:
  microlog timeline --db ./microlog.db alice`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showTimeline(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite ledger database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func showTimeline(opts *TimelineOptions, author string, cmd *cobra.Command) error {
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

	timeline, err := st.AccountTimeline(ctx, author)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load timeline", err)
	}

	if out.Format == "json" {
		tweets := make([]any, len(timeline))
		for i, tw := range timeline {
			tweets[i] = tw.CanonicalMap()
		}
		return out.Success(map[string]any{
			"author": author,
			"tweets": tweets,
		})
	}

	if len(timeline) == 0 {
		fmt.Fprintf(out.Writer, "no tweets by %s\n", author)
		return nil
	}
	for _, tw := range timeline {
		fmt.Fprintf(out.Writer, "%s\t%d\t%s\n", tw.ID.String(), tw.CreatedAt, tw.Text)
	}
	return nil
}
