package harness

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_LedgerBasics(t *testing.T) {
	sc, err := LoadScenario("testdata/ledger-basics.yaml")
	require.NoError(t, err)

	result, err := Run(sc)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	require.Len(t, result.Trace, 4)
	assert.Equal(t, "accepted", result.Trace[0].Outcome)
	assert.Equal(t, "0", result.Trace[0].ID)
	assert.Equal(t, int64(1), result.Trace[0].CreatedAt)
	assert.Equal(t, "op-000001", result.Trace[0].Token)
	assert.Equal(t, "TWEET_NOT_FOUND", result.Trace[3].Outcome)
	assert.Empty(t, result.Trace[3].Token, "rejections carry no token")
}

func TestRun_Rejections(t *testing.T) {
	sc, err := LoadScenario("testdata/rejections.yaml")
	require.NoError(t, err)

	result, err := Run(sc)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	// The two rejections must not consume tokens; the one accepted op
	// gets the first token.
	assert.Equal(t, "op-000001", result.Trace[2].Token)
}

func TestRun_Threads(t *testing.T) {
	sc, err := LoadScenario("testdata/threads.yaml")
	require.NoError(t, err)

	result, err := Run(sc)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_Deterministic(t *testing.T) {
	sc, err := LoadScenario("testdata/ledger-basics.yaml")
	require.NoError(t, err)

	first, err := Run(sc)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		again, err := Run(sc)
		require.NoError(t, err)
		assert.Equal(t, first.Trace, again.Trace, "run %d differs", i)
	}
}

func TestRun_ExpectMismatchFails(t *testing.T) {
	sc := &Scenario{
		Name:        "expect-mismatch",
		Description: "step expects rejection but is accepted",
		Ops: []OpStep{
			{Op: "post", Author: "alice", Text: "fine",
				Expect: &ExpectClause{Outcome: "TWEET_TOO_LONG"}},
		},
	}

	result, err := Run(sc)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "outcome = accepted")
}

func TestRun_IDMismatchFails(t *testing.T) {
	sc := &Scenario{
		Name:        "id-mismatch",
		Description: "step expects the wrong id",
		Ops: []OpStep{
			{Op: "post", Author: "alice", Text: "fine",
				Expect: &ExpectClause{Outcome: "accepted", ID: "7"}},
		},
	}

	result, err := Run(sc)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], `id = 0, want 7`)
}

func TestRun_UnexpectedRejectionFails(t *testing.T) {
	sc := &Scenario{
		Name:        "implicit-accept",
		Description: "steps without expect are assumed accepted",
		Ops: []OpStep{
			{Op: "post", Author: "alice", Text: strings.Repeat("a", 141)},
		},
	}

	result, err := Run(sc)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "TWEET_TOO_LONG")
}

func TestRun_AssertionFailureFails(t *testing.T) {
	sc := &Scenario{
		Name:        "bad-assertion",
		Description: "assertion expects the wrong text",
		Ops: []OpStep{
			{Op: "post", Author: "alice", Text: "actual"},
		},
		Assertions: []Assertion{
			{Type: AssertTweet, ID: "0", Expect: map[string]interface{}{"text": "expected"}},
		},
	}

	result, err := Run(sc)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "text")
}

func TestRun_TokenPrefix(t *testing.T) {
	sc := &Scenario{
		Name:        "token-prefix",
		Description: "custom token prefix",
		TokenPrefix: "trace",
		Ops: []OpStep{
			{Op: "post", Author: "alice", Text: "hi"},
		},
	}

	result, err := Run(sc)
	require.NoError(t, err)
	assert.Equal(t, "trace-000001", result.Trace[0].Token)
}

func TestRun_BadTargetAborts(t *testing.T) {
	sc := &Scenario{
		Name:        "bad-target",
		Description: "malformed target id",
		Ops: []OpStep{
			{Op: "comment", Author: "alice", Text: "hi", Target: "not-a-number"},
		},
	}

	_, err := Run(sc)
	assert.Error(t, err, "malformed ids are scenario errors, not rejections")
}
