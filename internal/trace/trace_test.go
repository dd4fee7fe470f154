package trace

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rvmodel/zcseq/internal/seq"
)

// TestRecord_Handshake tests the transfer predicate.
func TestRecord_Handshake(t *testing.T) {
	assert.True(t, Record{
		Inputs:  seq.Inputs{Ready: true},
		Outputs: seq.Outputs{Valid: true},
	}.Handshake())
	assert.False(t, Record{Outputs: seq.Outputs{Valid: true}}.Handshake())
	assert.False(t, Record{Inputs: seq.Inputs{Ready: true}}.Handshake())
}

// TestTrace_Handshakes counts completed transfers. The count is int64 so
// it flows into run summaries and database columns without conversion.
func TestTrace_Handshakes(t *testing.T) {
	tr := Trace{
		{Inputs: seq.Inputs{Ready: true}, Outputs: seq.Outputs{Valid: true}},
		{Inputs: seq.Inputs{Ready: false}, Outputs: seq.Outputs{Valid: true}},
		{Inputs: seq.Inputs{Ready: true}, Outputs: seq.Outputs{Valid: true}},
	}
	assert.Equal(t, int64(2), tr.Handshakes())
}

// TestTrace_Final tests final-state extraction, including the empty trace.
func TestTrace_Final(t *testing.T) {
	assert.Equal(t, seq.Reset(), Trace{}.Final())

	tr := Trace{{After: seq.State{FSM: seq.FSMSequencing, Count: 4}}}
	assert.Equal(t, seq.State{FSM: seq.FSMSequencing, Count: 4}, tr.Final())
}

// TestTrace_MarshalIndent_Deterministic tests that two marshals of the same
// trace are byte-identical, which golden comparison depends on.
func TestTrace_MarshalIndent_Deterministic(t *testing.T) {
	tr := Trace{{
		Cycle:   0,
		Before:  seq.Reset(),
		Inputs:  seq.Inputs{Valid: true, Ready: true, Kind: seq.KindPush},
		Outputs: seq.Outputs{Valid: true},
		After:   seq.State{FSM: seq.FSMSequencing, Count: 1},
	}}

	a, err := tr.MarshalIndent()
	require.NoError(t, err)
	b, err := tr.MarshalIndent()
	require.NoError(t, err)
	assert.Equal(t, a, b)

	var back Trace
	require.NoError(t, json.Unmarshal(a, &back))
	assert.Equal(t, tr[0].After, back[0].After)
}
