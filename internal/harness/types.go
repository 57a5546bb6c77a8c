package harness

// TraceEvent records the outcome of one operation step.
type TraceEvent struct {
	Op      string `json:"op"`
	Author  string `json:"author"`
	Text    string `json:"text"`
	Target  string `json:"target,omitempty"`
	Outcome string `json:"outcome"` // "accepted" or a rejection code

	// Set only for accepted operations.
	ID        string `json:"id,omitempty"`
	CreatedAt int64  `json:"created_at,omitempty"`
	Token     string `json:"token,omitempty"`
}

// toCanonicalMap converts the event to the map shape
// tweet.MarshalCanonical accepts. Rejected steps carry no id, ordinal,
// or token.
func (e TraceEvent) toCanonicalMap() map[string]any {
	m := map[string]any{
		"op":      e.Op,
		"author":  e.Author,
		"text":    e.Text,
		"outcome": e.Outcome,
	}
	if e.Target != "" {
		m["target"] = e.Target
	}
	if e.Outcome == OutcomeAccepted {
		m["id"] = e.ID
		m["created_at"] = e.CreatedAt
		m["token"] = e.Token
	}
	return m
}

// OutcomeAccepted marks a step the ledger accepted; rejected steps
// carry their rejection code instead.
const OutcomeAccepted = "accepted"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every expect clause and
	// assertion matched.
	Pass bool `json:"pass"`

	// Trace contains one event per operation step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
