// Package trace defines the cycle record: the unit of storage, golden
// comparison, and replay for sequencer runs.
package trace

import (
	"encoding/json"
	"fmt"

	"github.com/rvmodel/zcseq/internal/seq"
)

// Record captures one fully-observed cycle: the registered state the cycle
// started from, the sampled inputs, the driven outputs, and the state
// registered for the next cycle.
type Record struct {
	// Cycle is the zero-based cycle index within the run.
	Cycle int64 `json:"cycle" yaml:"cycle"`

	// Before is the state at the start of the cycle.
	Before seq.State `json:"before" yaml:"before"`

	// Inputs are the signals sampled during the cycle.
	Inputs seq.Inputs `json:"inputs" yaml:"inputs"`

	// Outputs are the signals driven during the cycle.
	Outputs seq.Outputs `json:"outputs" yaml:"outputs"`

	// After is the state registered for the next cycle.
	After seq.State `json:"after" yaml:"after"`
}

// Handshake reports whether a transfer completed this cycle: valid_o and
// ready_i held together.
func (r Record) Handshake() bool {
	return r.Outputs.Valid && r.Inputs.Ready
}

// Trace is an ordered run of cycle records.
type Trace []Record

// Handshakes returns the number of completed transfers in the trace.
func (t Trace) Handshakes() int64 {
	var n int64
	for _, r := range t {
		if r.Handshake() {
			n++
		}
	}
	return n
}

// Final returns the state registered after the last cycle, or the reset
// state for an empty trace.
func (t Trace) Final() seq.State {
	if len(t) == 0 {
		return seq.Reset()
	}
	return t[len(t)-1].After
}

// MarshalIndent renders the trace as stable, indented JSON. Field order is
// fixed by the struct definitions, so the output is deterministic and safe
// for golden comparison.
func (t Trace) MarshalIndent() ([]byte, error) {
	out, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal trace: %w", err)
	}
	return out, nil
}
