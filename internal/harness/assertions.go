package harness

import (
	"fmt"

	"github.com/rvmodel/zcseq/internal/seq"
)

// EvaluateAssertions checks every end-of-run assertion against the result,
// appending an error per failed assertion.
func EvaluateAssertions(result *Result, assertions []Assertion) {
	for i, a := range assertions {
		switch a.Type {
		case AssertNoViolations:
			// Violations already fail the run cycle-by-cycle; this adds an
			// explicit summary line so the assertion reads in the output.
			if n := len(result.Violations); n > 0 {
				result.AddError(fmt.Sprintf("assertions[%d]: %d violations observed", i, n))
			}

		case AssertFinalState:
			fsm, err := seq.ParseFSM(a.FSM)
			if err != nil {
				result.AddError(fmt.Sprintf("assertions[%d]: %v", i, err))
				continue
			}
			want := seq.State{FSM: fsm, Count: a.Count}
			if result.Final != want {
				result.AddError(fmt.Sprintf(
					"assertions[%d]: final state %s/%d, expected %s/%d",
					i, result.Final.FSM, result.Final.Count, want.FSM, want.Count))
			}

		case AssertHandshakeCount:
			got := result.Trace.Handshakes()
			if got != int64(a.Handshakes) {
				result.AddError(fmt.Sprintf(
					"assertions[%d]: %d completed handshakes, expected %d",
					i, got, a.Handshakes))
			}

		case AssertLastAt:
			got := lastCycles(result)
			if !equalInt64s(got, a.Cycles) {
				result.AddError(fmt.Sprintf(
					"assertions[%d]: seq_last asserted at cycles %v, expected %v",
					i, got, a.Cycles))
			}

		default:
			result.AddError(fmt.Sprintf("assertions[%d]: unknown type %q", i, a.Type))
		}
	}
}

// lastCycles returns the cycles where seq_last_o was driven.
func lastCycles(result *Result) []int64 {
	var out []int64
	for _, r := range result.Trace {
		if r.Outputs.Valid && r.Outputs.Last {
			out = append(out, r.Cycle)
		}
	}
	return out
}

func equalInt64s(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
