package tweet

import (
	"errors"
	"fmt"
)

// RejectError is a rejected operation. The taxonomy is closed: every
// failure path in the mutation handlers is one of the three codes below.
// A rejection leaves ledger state unchanged - no partial writes, no
// consumed identifiers.
type RejectError struct {
	// Code identifies the rejection category.
	Code RejectCode

	// Message is a human-readable description.
	Message string

	// TweetID identifies the missing tweet for TWEET_NOT_FOUND.
	TweetID ID
}

// RejectCode categorizes rejections.
type RejectCode string

const (
	// CodeTweetTooLong indicates the text exceeds MaxTextLen bytes.
	CodeTweetTooLong RejectCode = "TWEET_TOO_LONG"

	// CodeTweetNotFound indicates a referenced tweet does not exist.
	CodeTweetNotFound RejectCode = "TWEET_NOT_FOUND"

	// CodeNoAvailableTweetID indicates the allocator counter is exhausted.
	CodeNoAvailableTweetID RejectCode = "NO_AVAILABLE_TWEET_ID"
)

// Error implements the error interface.
func (e *RejectError) Error() string {
	if e.Code == CodeTweetNotFound {
		return fmt.Sprintf("%s: %s (tweet=%s)", e.Code, e.Message, e.TweetID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsTooLong returns true if the error is a TWEET_TOO_LONG rejection.
// Uses errors.As to handle wrapped errors.
func IsTooLong(err error) bool {
	var re *RejectError
	return errors.As(err, &re) && re.Code == CodeTweetTooLong
}

// IsNotFound returns true if the error is a TWEET_NOT_FOUND rejection.
func IsNotFound(err error) bool {
	var re *RejectError
	return errors.As(err, &re) && re.Code == CodeTweetNotFound
}

// IsExhausted returns true if the error is a NO_AVAILABLE_TWEET_ID rejection.
func IsExhausted(err error) bool {
	var re *RejectError
	return errors.As(err, &re) && re.Code == CodeNoAvailableTweetID
}

// RejectCodeOf extracts the rejection code from an error, or "" if the
// error is not a RejectError.
func RejectCodeOf(err error) RejectCode {
	var re *RejectError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// NewTooLongError creates a TWEET_TOO_LONG rejection for text of n bytes.
func NewTooLongError(n int) *RejectError {
	return &RejectError{
		Code:    CodeTweetTooLong,
		Message: fmt.Sprintf("text is %d bytes, limit is %d", n, MaxTextLen),
	}
}

// NewNotFoundError creates a TWEET_NOT_FOUND rejection for id.
func NewNotFoundError(id ID) *RejectError {
	return &RejectError{
		Code:    CodeTweetNotFound,
		Message: "tweet does not exist",
		TweetID: id,
	}
}

// NewExhaustedError creates a NO_AVAILABLE_TWEET_ID rejection.
func NewExhaustedError() *RejectError {
	return &RejectError{
		Code:    CodeNoAvailableTweetID,
		Message: "tweet id space exhausted",
	}
}
