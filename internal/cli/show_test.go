package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowCommand_Text(t *testing.T) {
	db := testDB(t)

	_, _, err := execute(t, "post", "--db", db, "--author", "alice", "hello")
	require.NoError(t, err)

	out, _, err := execute(t, "show", "--db", db, "0")
	require.NoError(t, err)
	assert.Contains(t, out, "id: 0\n")
	assert.Contains(t, out, "text: hello\n")
}

func TestShowCommand_JSON(t *testing.T) {
	db := testDB(t)

	_, _, err := execute(t, "post", "--db", db, "--author", "alice", "hello")
	require.NoError(t, err)

	out, _, err := execute(t, "--format", "json", "show", "--db", db, "0")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "0", data["id"])
	assert.Equal(t, []interface{}{}, data["comments"])
}

func TestShowCommand_NotFound(t *testing.T) {
	out, _, err := execute(t, "show", "--db", testDB(t), "5")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "TWEET_NOT_FOUND")
}

func TestShowCommand_MalformedID(t *testing.T) {
	_, _, err := execute(t, "show", "--db", testDB(t), "not-a-number")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTimelineCommand_Empty(t *testing.T) {
	out, _, err := execute(t, "timeline", "--db", testDB(t), "nobody")
	require.NoError(t, err)
	assert.Contains(t, out, "no tweets by nobody")
}

func TestTimelineCommand_CreationOrder(t *testing.T) {
	db := testDB(t)

	_, _, err := execute(t, "post", "--db", db, "--author", "alice", "first")
	require.NoError(t, err)
	_, _, err = execute(t, "post", "--db", db, "--author", "bob", "interleaved")
	require.NoError(t, err)
	_, _, err = execute(t, "post", "--db", db, "--author", "alice", "second")
	require.NoError(t, err)

	out, _, err := execute(t, "timeline", "--db", db, "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "0\t1\tfirst\n")
	assert.Contains(t, out, "2\t3\tsecond\n")
	assert.NotContains(t, out, "interleaved")
}

func TestTimelineCommand_JSON(t *testing.T) {
	db := testDB(t)

	_, _, err := execute(t, "post", "--db", db, "--author", "alice", "hi")
	require.NoError(t, err)

	out, _, err := execute(t, "--format", "json", "timeline", "--db", db, "alice")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "alice", data["author"])

	tweets, ok := data["tweets"].([]interface{})
	require.True(t, ok)
	require.Len(t, tweets, 1)
}
