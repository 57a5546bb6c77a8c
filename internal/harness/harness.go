package harness

import (
	"context"
	"fmt"

	"github.com/roach88/microlog/internal/engine"
	"github.com/roach88/microlog/internal/store"
	"github.com/roach88/microlog/internal/testutil"
	"github.com/roach88/microlog/internal/tweet"
)

// Recorder captures the correlation token of the most recent
// notification. The harness registers it as the engine's notifier (or
// part of a fanout) so trace events can carry tokens.
//
// Not safe for concurrent use; scenarios apply operations one at a time.
type Recorder struct {
	last string
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// TweetAccepted implements engine.Notifier.
func (r *Recorder) TweetAccepted(n engine.Notification) {
	r.last = n.Token
}

// LastToken returns the token of the most recent notification.
func (r *Recorder) LastToken() string {
	return r.last
}

// Run executes a scenario against a fresh in-memory store.
//
// The clock starts at zero and tokens are sequential, so the same
// scenario always produces a byte-identical trace.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	rec := NewRecorder()
	gen := testutil.NewSequenceTokenGenerator(scenario.TokenPrefix)
	eng := engine.New(st, gen, engine.WithNotifier(rec))

	ctx := context.Background()
	result, err := Apply(ctx, eng, rec, scenario)
	if err != nil {
		return nil, err
	}

	EvaluateAssertions(ctx, st, scenario.Assertions, result)
	return result, nil
}

// Apply runs a scenario's operations against an existing engine and
// validates each step's expect clause. The engine's notifier must
// include rec, or trace events will carry stale tokens.
//
// The CLI's run command uses Apply directly to execute scenarios
// against a real database; assertions are the caller's responsibility.
func Apply(ctx context.Context, eng *engine.Engine, rec *Recorder, scenario *Scenario) (*Result, error) {
	result := NewResult()

	for i, step := range scenario.Ops {
		op, err := buildOp(step)
		if err != nil {
			return nil, fmt.Errorf("ops[%d]: %w", i, err)
		}

		tw, err := eng.Apply(ctx, op)

		event := TraceEvent{
			Op:     step.Op,
			Author: step.Author,
			Text:   step.Text,
			Target: step.Target,
		}
		if err != nil {
			code := tweet.RejectCodeOf(err)
			if code == "" {
				// Not a rejection: a storage fault aborts the scenario.
				return nil, fmt.Errorf("ops[%d]: %w", i, err)
			}
			event.Outcome = string(code)
		} else {
			event.Outcome = OutcomeAccepted
			event.ID = tw.ID.String()
			event.CreatedAt = tw.CreatedAt
			event.Token = rec.LastToken()
		}
		result.Trace = append(result.Trace, event)

		validateExpect(i, step, event, result)
	}

	return result, nil
}

// buildOp maps a scenario step onto an engine op.
func buildOp(step OpStep) (engine.Op, error) {
	op := engine.Op{
		Author: step.Author,
		Text:   step.Text,
	}

	switch step.Op {
	case OpNamePost:
		op.Kind = engine.OpPost
	case OpNameRetweet:
		op.Kind = engine.OpRetweet
	case OpNameComment:
		op.Kind = engine.OpComment
	default:
		return engine.Op{}, fmt.Errorf("unknown op %q", step.Op)
	}

	if step.Target != "" {
		target, err := tweet.ParseID(step.Target)
		if err != nil {
			return engine.Op{}, err
		}
		op.Target = &target
	}

	return op, nil
}

// validateExpect checks a step's outcome against its expect clause.
// Steps without an expect clause are assumed to be accepted.
func validateExpect(index int, step OpStep, event TraceEvent, result *Result) {
	wantOutcome := OutcomeAccepted
	wantID := ""
	if step.Expect != nil {
		wantOutcome = step.Expect.Outcome
		wantID = step.Expect.ID
	}

	if event.Outcome != wantOutcome {
		result.AddError(fmt.Sprintf(
			"ops[%d]: outcome = %s, want %s", index, event.Outcome, wantOutcome))
		return
	}

	if wantID != "" && event.ID != wantID {
		result.AddError(fmt.Sprintf(
			"ops[%d]: id = %s, want %s", index, event.ID, wantID))
	}
}
