package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rvmodel/zcseq/internal/trace"
)

// Run summarizes one stored run.
type Run struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	Cycles     int64  `json:"cycles"`
	Handshakes int64  `json:"handshakes"`
	Violations int64  `json:"violations"`
}

// WriteRun persists a complete trace as a new run and returns its ID.
//
// The whole run is written in a single transaction: either every cycle row
// and the summary row exist, or none do. violations is the number of
// invariant breaches the monitor observed during the run (zero for a
// healthy sequencer; stored so check results survive alongside the trace).
func (s *Store) WriteRun(ctx context.Context, label string, tr trace.Trace, violations int) (string, error) {
	id := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("write run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, label, cycles, handshakes, violations)
		VALUES (?, ?, ?, ?, ?)
	`, id, label, len(tr), tr.Handshakes(), violations)
	if err != nil {
		return "", fmt.Errorf("write run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cycles
		(run_id, cycle,
		 valid_i, kill_i, halt_i, ready_i, kind, tbljmp, tbljmp_ptr, clic_ptr, mret_ptr,
		 ready_o, valid_o, last_o,
		 fsm_before, count_before, fsm_after, count_after)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("write run: %w", err)
	}
	defer stmt.Close()

	for _, r := range tr {
		_, err = stmt.ExecContext(ctx,
			id, r.Cycle,
			r.Inputs.Valid, r.Inputs.Kill, r.Inputs.Halt, r.Inputs.Ready,
			r.Inputs.Kind.String(),
			r.Inputs.Flags.TblJmp, r.Inputs.Flags.TblJmpPtr,
			r.Inputs.Flags.ClicPtr, r.Inputs.Flags.MretPtr,
			r.Outputs.Ready, r.Outputs.Valid, r.Outputs.Last,
			r.Before.FSM.String(), r.Before.Count,
			r.After.FSM.String(), r.After.Count,
		)
		if err != nil {
			return "", fmt.Errorf("write cycle %d: %w", r.Cycle, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("write run: %w", err)
	}
	return id, nil
}
