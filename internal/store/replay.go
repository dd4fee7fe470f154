package store

import (
	"context"
	"fmt"

	"github.com/rvmodel/zcseq/internal/seq"
)

// Mismatch records one cycle where a replayed run diverged from its stored
// trace.
type Mismatch struct {
	Cycle         int64       `json:"cycle"`
	StoredOutputs seq.Outputs `json:"stored_outputs"`
	ReplayOutputs seq.Outputs `json:"replay_outputs"`
	StoredAfter   seq.State   `json:"stored_after"`
	ReplayAfter   seq.State   `json:"replay_after"`
}

// ReplayResult summarizes a determinism check of one stored run.
type ReplayResult struct {
	RunID         string     `json:"run_id"`
	Cycles        int64      `json:"cycles"`
	Deterministic bool       `json:"deterministic"`
	Mismatches    []Mismatch `json:"mismatches,omitempty"`
}

// ReplayRun re-drives a stored run's stimulus through the transition
// function from reset and compares every cycle's outputs and registered
// state against the stored trace.
//
// The transition function is pure, so a mismatch means either the stored
// trace was produced by a different model version or the database was
// modified. Replay never mutates the store, and it deliberately calls
// seq.Transition directly so the replay path is identical to the original
// execution path.
func (s *Store) ReplayRun(ctx context.Context, runID string) (*ReplayResult, error) {
	tr, err := s.ReadTrace(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("replay run: %w", err)
	}

	result := &ReplayResult{
		RunID:         runID,
		Cycles:        int64(len(tr)),
		Deterministic: true,
	}

	st := seq.Reset()
	for _, r := range tr {
		next, out := seq.Transition(st, r.Inputs)
		if out != r.Outputs || next != r.After {
			result.Deterministic = false
			result.Mismatches = append(result.Mismatches, Mismatch{
				Cycle:         r.Cycle,
				StoredOutputs: r.Outputs,
				ReplayOutputs: out,
				StoredAfter:   r.After,
				ReplayAfter:   next,
			})
		}
		st = next
	}

	return result, nil
}
