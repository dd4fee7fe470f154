package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rvmodel/zcseq/internal/seq"
	"github.com/rvmodel/zcseq/internal/trace"
)

// ErrRunNotFound is returned when the requested run does not exist.
var ErrRunNotFound = errors.New("run not found")

// GetRun returns the summary row for a run.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	var run Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, label, cycles, handshakes, violations
		FROM runs WHERE id = ?
	`, id).Scan(&run.ID, &run.Label, &run.Cycles, &run.Handshakes, &run.Violations)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return &run, nil
}

// ListRuns returns all run summaries ordered by ID for determinism.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, label, cycles, handshakes, violations
		FROM runs ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Label, &run.Cycles, &run.Handshakes, &run.Violations); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// ReadTrace loads a run's full trace in cycle order.
func (s *Store) ReadTrace(ctx context.Context, runID string) (trace.Trace, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT cycle,
		       valid_i, kill_i, halt_i, ready_i, kind, tbljmp, tbljmp_ptr, clic_ptr, mret_ptr,
		       ready_o, valid_o, last_o,
		       fsm_before, count_before, fsm_after, count_after
		FROM cycles WHERE run_id = ? ORDER BY cycle ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	defer rows.Close()

	var tr trace.Trace
	for rows.Next() {
		var r trace.Record
		var kindName, fsmBefore, fsmAfter string
		err := rows.Scan(&r.Cycle,
			&r.Inputs.Valid, &r.Inputs.Kill, &r.Inputs.Halt, &r.Inputs.Ready,
			&kindName,
			&r.Inputs.Flags.TblJmp, &r.Inputs.Flags.TblJmpPtr,
			&r.Inputs.Flags.ClicPtr, &r.Inputs.Flags.MretPtr,
			&r.Outputs.Ready, &r.Outputs.Valid, &r.Outputs.Last,
			&fsmBefore, &r.Before.Count, &fsmAfter, &r.After.Count,
		)
		if err != nil {
			return nil, fmt.Errorf("read trace: %w", err)
		}

		if r.Inputs.Kind, err = seq.ParseKind(kindName); err != nil {
			return nil, fmt.Errorf("read trace cycle %d: %w", r.Cycle, err)
		}
		if r.Before.FSM, err = seq.ParseFSM(fsmBefore); err != nil {
			return nil, fmt.Errorf("read trace cycle %d: %w", r.Cycle, err)
		}
		if r.After.FSM, err = seq.ParseFSM(fsmAfter); err != nil {
			return nil, fmt.Errorf("read trace cycle %d: %w", r.Cycle, err)
		}

		tr = append(tr, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	return tr, nil
}
