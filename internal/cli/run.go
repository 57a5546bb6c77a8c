package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/microlog/internal/engine"
	"github.com/roach88/microlog/internal/harness"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml> [scenario.yaml...]",
		Short: "Execute scenario files against the ledger",
		Long: `Execute one or more YAML scenario files.

Without --db each scenario runs against a fresh in-memory ledger with a
zeroed clock and sequential tokens, so traces are deterministic. With
--db the operations are applied to the given database and assertions
are evaluated against its resulting state.

Example:
  microlog run scenarios/ledger-basics.yaml
  microlog run --db ./microlog.db scenarios/smoke.yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite ledger database (default: in-memory)")

	return cmd
}

func runScenarios(opts *RunOptions, paths []string, cmd *cobra.Command) error {
	out := formatter(cmd, opts.RootOptions)

	failed := 0
	for _, path := range paths {
		scenario, err := harness.LoadScenario(path)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to load scenario %s", path), err)
		}

		result, err := runOneScenario(opts, scenario, cmd)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("scenario %s aborted", scenario.Name), err)
		}

		if err := reportScenario(out, scenario, result); err != nil {
			return WrapExitError(ExitCommandError, "failed to write output", err)
		}
		if !result.Pass {
			failed++
		}
	}

	if failed > 0 {
		return &ExitError{Code: ExitFailure}
	}
	return nil
}

// runOneScenario executes a scenario either in-memory or against the
// configured database.
func runOneScenario(opts *RunOptions, scenario *harness.Scenario, cmd *cobra.Command) (*harness.Result, error) {
	if opts.Database == "" {
		return harness.Run(scenario)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, eng, err := openLedger(ctx, opts.Database, nil)
	if err != nil {
		return nil, err
	}
	defer closeStore(st)

	// The recorder joins the notifier chain so trace events carry the
	// tokens the engine handed out.
	rec := harness.NewRecorder()
	eng.SetNotifier(engine.NewFanoutNotifier(rec, engine.LogNotifier{}))

	result, err := harness.Apply(ctx, eng, rec, scenario)
	if err != nil {
		return nil, err
	}
	harness.EvaluateAssertions(ctx, st, scenario.Assertions, result)
	return result, nil
}

// reportScenario writes one scenario's verdict in the configured format.
func reportScenario(out *OutputFormatter, scenario *harness.Scenario, result *harness.Result) error {
	if out.Format == "json" {
		return out.Success(map[string]any{
			"scenario": scenario.Name,
			"pass":     result.Pass,
			"ops":      len(result.Trace),
			"errors":   result.Errors,
		})
	}

	if result.Pass {
		fmt.Fprintf(out.Writer, "scenario %s: PASS (%d ops)\n", scenario.Name, len(result.Trace))
		return nil
	}

	fmt.Fprintf(out.Writer, "scenario %s: FAIL\n", scenario.Name)
	for _, e := range result.Errors {
		fmt.Fprintf(out.Writer, "  %s\n", e)
	}
	return nil
}
