package tweet

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRejectError_Codes(t *testing.T) {
	assert.Equal(t, CodeTweetTooLong, NewTooLongError(141).Code)
	assert.Equal(t, CodeTweetNotFound, NewNotFoundError(ID{Lo: 7}).Code)
	assert.Equal(t, CodeNoAvailableTweetID, NewExhaustedError().Code)
}

func TestRejectError_ErrorMessage(t *testing.T) {
	err := NewTooLongError(200)
	assert.Contains(t, err.Error(), "TWEET_TOO_LONG")
	assert.Contains(t, err.Error(), "200")
	assert.Contains(t, err.Error(), "140")

	err = NewNotFoundError(ID{Lo: 42})
	assert.Contains(t, err.Error(), "TWEET_NOT_FOUND")
	assert.Contains(t, err.Error(), "tweet=42")
}

func TestIsHelpers(t *testing.T) {
	tooLong := NewTooLongError(141)
	notFound := NewNotFoundError(ID{Lo: 1})
	exhausted := NewExhaustedError()

	assert.True(t, IsTooLong(tooLong))
	assert.False(t, IsTooLong(notFound))
	assert.False(t, IsTooLong(exhausted))

	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsNotFound(tooLong))

	assert.True(t, IsExhausted(exhausted))
	assert.False(t, IsExhausted(notFound))
}

func TestIsHelpers_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("apply op: %w", NewNotFoundError(ID{Lo: 3}))
	assert.True(t, IsNotFound(wrapped), "errors.As should unwrap")
}

func TestIsHelpers_NonRejectError(t *testing.T) {
	plain := fmt.Errorf("disk on fire")
	assert.False(t, IsTooLong(plain))
	assert.False(t, IsNotFound(plain))
	assert.False(t, IsExhausted(plain))
	assert.False(t, IsNotFound(nil))
}

func TestRejectCodeOf(t *testing.T) {
	assert.Equal(t, CodeTweetTooLong, RejectCodeOf(NewTooLongError(141)))
	assert.Equal(t, CodeTweetNotFound,
		RejectCodeOf(fmt.Errorf("wrapped: %w", NewNotFoundError(ID{}))))
	assert.Equal(t, RejectCode(""), RejectCodeOf(fmt.Errorf("plain")))
	assert.Equal(t, RejectCode(""), RejectCodeOf(nil))
}
