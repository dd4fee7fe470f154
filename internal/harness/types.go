package harness

import (
	"github.com/rvmodel/zcseq/internal/seq"
	"github.com/rvmodel/zcseq/internal/trace"
	"github.com/rvmodel/zcseq/internal/verify"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace contains every observed cycle in order.
	Trace trace.Trace `json:"trace"`

	// Violations are the invariant breaches the monitor observed.
	Violations []*verify.Violation `json:"-"`

	// Errors contains validation error messages. Empty when Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the state registered after the last cycle.
	Final seq.State `json:"final"`

	// RunID identifies the persisted trace in the scenario's store.
	RunID string `json:"run_id"`
}

// NewResult creates a passing result to accumulate into.
func NewResult() *Result {
	return &Result{Pass: true}
}

// AddError records a validation failure and marks the result failed.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}
