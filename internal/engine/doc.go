// Package engine is the single-writer mutation loop for the tweet
// ledger.
//
// All three mutations (post, quote-repost, comment) are submitted as
// operations and applied one at a time from a single goroutine, so
// acceptance order is total and created_at ordinals are strictly
// increasing across accepted operations. Rejections return one of the
// three tweet.RejectError codes and leave ledger state untouched.
//
// Accepted operations emit a Notification carrying the full new record
// and a correlation token.
package engine
