package harness

import (
	"context"
	"fmt"

	"github.com/roach88/microlog/internal/store"
	"github.com/roach88/microlog/internal/tweet"
)

// EvaluateAssertions checks every assertion against the final ledger
// state, recording failures on the result.
func EvaluateAssertions(ctx context.Context, st *store.Store, assertions []Assertion, result *Result) {
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertTweet:
			err = evaluateTweet(ctx, st, &a)
		case AssertTimeline:
			err = evaluateTimeline(ctx, st, &a)
		case AssertNextID:
			err = evaluateNextID(ctx, st, &a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			result.AddError(fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
}

// evaluateTweet loads the tweet and subset-matches the expected fields
// against its canonical map.
func evaluateTweet(ctx context.Context, st *store.Store, a *Assertion) error {
	id, err := tweet.ParseID(a.ID)
	if err != nil {
		return err
	}

	tw, err := st.GetTweet(ctx, id)
	if err != nil {
		return fmt.Errorf("tweet %s: %w", a.ID, err)
	}

	m := tw.CanonicalMap()
	for field, want := range a.Expect {
		got, ok := m[field]
		if !ok {
			return fmt.Errorf("tweet %s: field %q is absent", a.ID, field)
		}
		if !matchValue(got, want) {
			return fmt.Errorf("tweet %s: %s = %v, want %v", a.ID, field, got, want)
		}
	}
	return nil
}

// evaluateTimeline checks an account's tweet ids in creation order.
func evaluateTimeline(ctx context.Context, st *store.Store, a *Assertion) error {
	timeline, err := st.AccountTimeline(ctx, a.Author)
	if err != nil {
		return err
	}

	if len(timeline) != len(a.IDs) {
		return fmt.Errorf("timeline %s: has %d tweets, want %d",
			a.Author, len(timeline), len(a.IDs))
	}
	for i, tw := range timeline {
		if tw.ID.String() != a.IDs[i] {
			return fmt.Errorf("timeline %s: [%d] = %s, want %s",
				a.Author, i, tw.ID, a.IDs[i])
		}
	}
	return nil
}

// evaluateNextID checks the allocator counter.
func evaluateNextID(ctx context.Context, st *store.Store, a *Assertion) error {
	next, err := st.NextID(ctx)
	if err != nil {
		return err
	}
	if next.String() != a.Value {
		return fmt.Errorf("next_id = %s, want %s", next, a.Value)
	}
	return nil
}

// matchValue compares a canonical-map value against a YAML-parsed
// expected value. Numbers are normalized, slices compared element-wise.
func matchValue(got, want any) bool {
	switch w := want.(type) {
	case []interface{}:
		g, ok := got.([]any)
		if !ok || len(g) != len(w) {
			return false
		}
		for i := range w {
			if !matchValue(g[i], w[i]) {
				return false
			}
		}
		return true
	case int:
		g, ok := asInt64(got)
		return ok && g == int64(w)
	case int64:
		g, ok := asInt64(got)
		return ok && g == w
	case string:
		g, ok := got.(string)
		return ok && g == w
	case bool:
		g, ok := got.(bool)
		return ok && g == w
	default:
		return false
	}
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	default:
		return 0, false
	}
}
