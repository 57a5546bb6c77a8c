package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	return path
}

func TestLoadScenario_Valid(t *testing.T) {
	sc, err := LoadScenario("testdata/ledger-basics.yaml")
	require.NoError(t, err)

	assert.Equal(t, "ledger-basics", sc.Name)
	require.Len(t, sc.Ops, 4)
	assert.Equal(t, "post", sc.Ops[0].Op)
	assert.Equal(t, "alice", sc.Ops[0].Author)
	require.NotNil(t, sc.Ops[3].Expect)
	assert.Equal(t, "TWEET_NOT_FOUND", sc.Ops[3].Expect.Outcome)
	assert.NotEmpty(t, sc.Assertions)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/does-not-exist.yaml")
	assert.Error(t, err)
}

func TestLoadScenario_RejectsUnknownFields(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: has a typo'd key
opps:
  - op: post
    author: alice
    text: hi
`)
	_, err := LoadScenario(path)
	assert.Error(t, err, "unknown fields must fail, not be ignored")
}

func TestLoadScenario_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{
			"missing name",
			`
description: no name
ops:
  - {op: post, author: alice, text: hi}
`,
		},
		{
			"missing description",
			`
name: x
ops:
  - {op: post, author: alice, text: hi}
`,
		},
		{
			"no ops",
			`
name: x
description: y
ops: []
`,
		},
		{
			"unknown op kind",
			`
name: x
description: y
ops:
  - {op: boost, author: alice, text: hi}
`,
		},
		{
			"post with target",
			`
name: x
description: y
ops:
  - {op: post, author: alice, text: hi, target: "0"}
`,
		},
		{
			"retweet without target",
			`
name: x
description: y
ops:
  - {op: retweet, author: alice, text: hi}
`,
		},
		{
			"comment without target",
			`
name: x
description: y
ops:
  - {op: comment, author: alice, text: hi}
`,
		},
		{
			"missing author",
			`
name: x
description: y
ops:
  - {op: post, text: hi}
`,
		},
		{
			"expect without outcome",
			`
name: x
description: y
ops:
  - op: post
    author: alice
    text: hi
    expect:
      id: "0"
`,
		},
		{
			"tweet assertion without id",
			`
name: x
description: y
ops:
  - {op: post, author: alice, text: hi}
assertions:
  - type: tweet
    expect:
      text: hi
`,
		},
		{
			"timeline assertion without ids",
			`
name: x
description: y
ops:
  - {op: post, author: alice, text: hi}
assertions:
  - type: timeline
    author: alice
`,
		},
		{
			"next_id assertion without value",
			`
name: x
description: y
ops:
  - {op: post, author: alice, text: hi}
assertions:
  - type: next_id
`,
		},
		{
			"unknown assertion type",
			`
name: x
description: y
ops:
  - {op: post, author: alice, text: hi}
assertions:
  - type: tweet_count
    id: "0"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.source))
			assert.Error(t, err)
		})
	}
}

func TestLoadScenario_AllTestdataFilesValid(t *testing.T) {
	paths, err := filepath.Glob("testdata/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		_, err := LoadScenario(path)
		assert.NoError(t, err, "scenario %s should load", path)
	}
}
