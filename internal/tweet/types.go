package tweet

// MaxTextLen is the maximum text length in bytes. Enforced before any
// allocation or write; there is no encoding validation beyond this bound.
const MaxTextLen = 140

// Tweet is a single authored record in the ledger: an original post, a
// quote-repost, or a comment. Records are created exactly once and never
// deleted; Comments is the only field mutated after creation, and only by
// appends.
type Tweet struct {
	// ID is the globally unique identifier assigned at creation.
	ID ID `json:"id"`

	// CreatedAt is the causal-clock ordinal at creation time.
	CreatedAt int64 `json:"created_at"`

	// QuoteOf references the quoted tweet. Nil except for quote-reposts.
	QuoteOf *ID `json:"quote_of,omitempty"`

	// Text is the authored text, at most MaxTextLen bytes.
	Text string `json:"text"`

	// Comments lists the IDs of comments on this tweet, in the order the
	// comment operations were accepted. Append-only.
	Comments []ID `json:"comments"`

	// Author is the pre-authenticated account identifier that created
	// the tweet.
	Author string `json:"author"`
}

// ValidateText checks the text length bound and returns a TWEET_TOO_LONG
// rejection when exceeded. The bound is in bytes, not runes.
func ValidateText(text string) error {
	if len(text) > MaxTextLen {
		return NewTooLongError(len(text))
	}
	return nil
}
