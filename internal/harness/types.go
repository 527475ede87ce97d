package harness

// StatementResult is one instantiated statement as seen by assertions.
type StatementResult struct {
	ID         string   `json:"id"`
	Resource   string   `json:"resource"`
	Query      string   `json:"query"`
	Predicates []string `json:"predicates"`
	Length     int      `json:"length"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every assertion held.
	Pass bool `json:"pass"`

	// RunID is the run the statements were recorded under.
	RunID string `json:"run_id"`

	// Statements are in resource order.
	Statements []StatementResult `json:"statements"`

	// Errors contains assertion failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(runID string) *Result {
	return &Result{
		Pass:       true,
		RunID:      runID,
		Statements: []StatementResult{},
		Errors:     []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Queries returns the query text of every statement, in order.
func (r *Result) Queries() []string {
	out := make([]string, len(r.Statements))
	for i, s := range r.Statements {
		out[i] = s.Query
	}
	return out
}
