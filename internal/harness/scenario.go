package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a ledger test scenario: a sequence of operations and
// assertions on the resulting state.
type Scenario struct {
	// Name uniquely identifies this scenario. Also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Ops is the operation sequence, applied in order.
	Ops []OpStep `yaml:"ops"`

	// Assertions validate the final ledger state.
	// Supported types: tweet, timeline, next_id
	Assertions []Assertion `yaml:"assertions"`

	// TokenPrefix overrides the correlation-token prefix. Defaults to
	// "op", giving tokens op-000001, op-000002, ...
	TokenPrefix string `yaml:"token_prefix,omitempty"`
}

// OpStep is one operation in the sequence.
type OpStep struct {
	// Op is the operation kind: post, retweet, or comment.
	Op string `yaml:"op"`

	// Author is the account submitting the operation.
	Author string `yaml:"author"`

	// Text is the authored text.
	Text string `yaml:"text"`

	// Target is the decimal id of the quoted or commented-on tweet.
	// Required for retweet and comment, forbidden for post.
	Target string `yaml:"target,omitempty"`

	// Expect specifies the expected outcome. If nil, the step is
	// assumed to be accepted.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a step.
type ExpectClause struct {
	// Outcome is "accepted" or a rejection code
	// (TWEET_TOO_LONG, TWEET_NOT_FOUND, NO_AVAILABLE_TWEET_ID).
	Outcome string `yaml:"outcome"`

	// ID is the expected decimal identifier for accepted steps.
	// Optional; only validated when set.
	ID string `yaml:"id,omitempty"`
}

// Assertion validates final ledger state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "tweet": load a tweet and subset-match its fields
	// - "timeline": check an account's tweet ids in order
	// - "next_id": check the allocator counter
	Type string `yaml:"type"`

	// ID is the decimal tweet id (used by tweet).
	ID string `yaml:"id,omitempty"`

	// Expect contains expected field values keyed like the canonical
	// serialization: text, author, created_at, quote_of, comments.
	// Subset match - only specified fields are validated.
	Expect map[string]interface{} `yaml:"expect,omitempty"`

	// Author is the account name (used by timeline).
	Author string `yaml:"author,omitempty"`

	// IDs is the expected decimal id sequence (used by timeline).
	IDs []string `yaml:"ids,omitempty"`

	// Value is the expected decimal counter (used by next_id).
	Value string `yaml:"value,omitempty"`
}

// Assertion type constants.
const (
	AssertTweet    = "tweet"
	AssertTimeline = "timeline"
	AssertNextID   = "next_id"
)

// Operation name constants, matching engine.OpKind values.
const (
	OpNamePost    = "post"
	OpNameRetweet = "retweet"
	OpNameComment = "comment"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Ops) == 0 {
		return fmt.Errorf("ops list is required and must be non-empty")
	}

	for i, step := range s.Ops {
		if step.Author == "" {
			return fmt.Errorf("ops[%d]: author is required", i)
		}
		switch step.Op {
		case OpNamePost:
			if step.Target != "" {
				return fmt.Errorf("ops[%d]: post must not have a target", i)
			}
		case OpNameRetweet, OpNameComment:
			if step.Target == "" {
				return fmt.Errorf("ops[%d]: target is required for %s", i, step.Op)
			}
		default:
			return fmt.Errorf("ops[%d]: unknown op %q", i, step.Op)
		}
		if step.Expect != nil && step.Expect.Outcome == "" {
			return fmt.Errorf("ops[%d].expect: outcome is required", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTweet:
		if a.ID == "" {
			return fmt.Errorf("assertions[%d]: id is required for tweet", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for tweet", index)
		}
	case AssertTimeline:
		if a.Author == "" {
			return fmt.Errorf("assertions[%d]: author is required for timeline", index)
		}
		if a.IDs == nil {
			return fmt.Errorf("assertions[%d]: ids is required for timeline (use empty list for no tweets)", index)
		}
	case AssertNextID:
		if a.Value == "" {
			return fmt.Errorf("assertions[%d]: value is required for next_id", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
