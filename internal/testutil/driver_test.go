package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rvmodel/zcseq/internal/seq"
)

// TestDriveRandom_Reproducible tests that the same seed produces the same
// full trace, including outputs and state edges.
func TestDriveRandom_Reproducible(t *testing.T) {
	a := DriveRandom(seq.New(), NewStimulusGenerator(99), 1000)
	b := DriveRandom(seq.New(), NewStimulusGenerator(99), 1000)
	assert.Equal(t, a, b)
}

// TestDriveRandom_HoldsInstructionUnderBackpressure tests the stable
// instruction protocol: while ready_o is withheld, the offered kind and
// flags never change between consecutive cycles.
func TestDriveRandom_HoldsInstructionUnderBackpressure(t *testing.T) {
	tr := DriveRandom(seq.New(), NewStimulusGenerator(5), 3000)
	require.Len(t, tr, 3000)

	for i := 1; i < len(tr); i++ {
		prev := tr[i-1]
		if !prev.Outputs.Ready && prev.Inputs.Valid {
			assert.True(t, tr[i].Inputs.Valid, "cycle %d", i)
			assert.Equal(t, prev.Inputs.Kind, tr[i].Inputs.Kind, "cycle %d", i)
			assert.Equal(t, prev.Inputs.Flags, tr[i].Inputs.Flags, "cycle %d", i)
		}
	}
}

// TestDriveRandom_StateChains tests that each record's After is the next
// record's Before, so the trace is a gapless state chain.
func TestDriveRandom_StateChains(t *testing.T) {
	tr := DriveRandom(seq.New(), NewStimulusGenerator(11), 500)
	for i := 1; i < len(tr); i++ {
		require.Equal(t, tr[i-1].After, tr[i].Before, "cycle %d", i)
		require.Equal(t, int64(i), tr[i].Cycle)
	}
}
