package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rvmodel/zcseq/internal/seq"
	"github.com/rvmodel/zcseq/internal/testutil"
	"github.com/rvmodel/zcseq/internal/trace"
)

// openTestStore opens a fresh in-memory store with cleanup.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// pushTrace produces a short real trace: a full PUSH expansion.
func pushTrace(t *testing.T) trace.Trace {
	t.Helper()
	sq := seq.New()
	in := seq.Inputs{Valid: true, Ready: true, Kind: seq.KindPush}

	var tr trace.Trace
	for i := 0; i < 14; i++ {
		before := sq.State()
		cycle := sq.Cycle()
		out := sq.Step(in)
		tr = append(tr, trace.Record{
			Cycle: cycle, Before: before, Inputs: in, Outputs: out, After: sq.State(),
		})
	}
	return tr
}

// TestOpen_Idempotent tests that opening the same file twice applies the
// schema without error.
func TestOpen_Idempotent(t *testing.T) {
	path := t.TempDir() + "/trace.db"

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	assert.NoError(t, s2.Close())
}

// TestWriteRun_RoundTrip tests that a written trace reads back identically.
func TestWriteRun_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	tr := pushTrace(t)

	id, err := s.WriteRun(ctx, "push-full", tr, 0)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := s.ReadTrace(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, tr, got)

	run, err := s.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "push-full", run.Label)
	assert.Equal(t, int64(14), run.Cycles)
	assert.Equal(t, int64(14), run.Handshakes)
	assert.Equal(t, int64(0), run.Violations)
}

// TestReadTrace_NotFound tests the missing-run error path.
func TestReadTrace_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.ReadTrace(context.Background(), "no-such-run")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

// TestListRuns tests that multiple runs list deterministically.
func TestListRuns(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	tr := pushTrace(t)

	id1, err := s.WriteRun(ctx, "a", tr, 0)
	require.NoError(t, err)
	id2, err := s.WriteRun(ctx, "b", tr, 2)
	require.NoError(t, err)

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	byID := map[string]Run{}
	for _, r := range runs {
		byID[r.ID] = r
	}
	assert.Equal(t, "a", byID[id1].Label)
	assert.Equal(t, int64(2), byID[id2].Violations)

	// Ordered by ID.
	assert.LessOrEqual(t, runs[0].ID, runs[1].ID)
}

// TestReplayRun_Deterministic tests that a faithfully stored run replays
// without mismatches.
func TestReplayRun_Deterministic(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	tr := testutil.DriveRandom(seq.New(), testutil.NewStimulusGenerator(42), 300)
	id, err := s.WriteRun(ctx, "random-42", tr, 0)
	require.NoError(t, err)

	result, err := s.ReplayRun(ctx, id)
	require.NoError(t, err)
	assert.True(t, result.Deterministic)
	assert.Empty(t, result.Mismatches)
	assert.Equal(t, int64(300), result.Cycles)
}

// TestReplayRun_DetectsTamperedTrace tests that replay flags a stored
// trace whose outputs were altered after the fact.
func TestReplayRun_DetectsTamperedTrace(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	tr := pushTrace(t)

	// Corrupt one stored output before writing.
	tr[5].Outputs.Last = true

	id, err := s.WriteRun(ctx, "tampered", tr, 0)
	require.NoError(t, err)

	result, err := s.ReplayRun(ctx, id)
	require.NoError(t, err)
	assert.False(t, result.Deterministic)
	require.Len(t, result.Mismatches, 1)
	assert.Equal(t, int64(5), result.Mismatches[0].Cycle)
	assert.True(t, result.Mismatches[0].StoredOutputs.Last)
	assert.False(t, result.Mismatches[0].ReplayOutputs.Last)
}
