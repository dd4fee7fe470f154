package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rvmodel/zcseq/internal/seq"
)

// TestLoadScenario_Valid loads a shipped scenario file.
func TestLoadScenario_Valid(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "push-kill-mid-sequence.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "push-kill-mid-sequence", s.Name)
	require.Len(t, s.Cycles, 2)
	assert.Equal(t, 5, s.Cycles[0].Repeat)
	assert.Equal(t, seq.KindPush, s.Cycles[0].Inputs.Kind)
	require.NotNil(t, s.Cycles[1].Expect)
	assert.True(t, s.Cycles[1].Inputs.Kill)
}

// TestLoadScenario_MissingFile tests the not-found error path.
func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

// TestParseScenario_UnknownField tests that typos are rejected by strict
// decoding or the schema.
func TestParseScenario_UnknownField(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: typo
description: "assertion instead of assertions"
cycles:
  - inputs: {valid: true, kind: PUSH}
assertion:
  - type: no_violations
`))
	require.Error(t, err)
}

// TestParseScenario_BadKind tests that the CUE schema rejects unknown
// sequence kinds before Go decoding runs.
func TestParseScenario_BadKind(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: bad-kind
description: "kind outside the enum"
cycles:
  - inputs: {valid: true, kind: PUSHPOP}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation")
}

// TestParseScenario_BadFSM tests schema rejection of an invalid phase name
// in an expect clause.
func TestParseScenario_BadFSM(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: bad-fsm
description: "phase outside the enum"
cycles:
  - inputs: {valid: true, kind: PUSH}
    expect:
      after: {fsm: RUNNING, count: 1}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation")
}

// TestParseScenario_MissingRequired tests required-field validation.
func TestParseScenario_MissingRequired(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"no name", "description: d\ncycles:\n  - inputs: {valid: true}\n"},
		{"no description", "name: n\ncycles:\n  - inputs: {valid: true}\n"},
		{"no cycles", "name: n\ndescription: d\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tc.src))
			require.Error(t, err)
		})
	}
}

// TestParseScenario_BadAssertionType tests assertion validation.
func TestParseScenario_BadAssertionType(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: bad-assert
description: "unknown assertion type"
cycles:
  - inputs: {valid: true, kind: PUSH}
assertions:
  - type: trace_contains
`))
	require.Error(t, err)
}

// TestScenario_Stimulus tests repeat expansion.
func TestScenario_Stimulus(t *testing.T) {
	s := &Scenario{
		Cycles: []CycleStep{
			{Inputs: seq.Inputs{Valid: true, Kind: seq.KindPush}, Repeat: 3},
			{Inputs: seq.Inputs{Kill: true}},
		},
	}

	stim := s.Stimulus()
	require.Len(t, stim, 4)
	assert.Equal(t, seq.KindPush, stim[2].Kind)
	assert.True(t, stim[3].Kill)
}

// TestLoadScenario_AllShippedFilesParse parses every file under
// testdata/scenarios, so a broken fixture fails fast here rather than in
// whichever test happens to use it.
func TestLoadScenario_AllShippedFilesParse(t *testing.T) {
	entries, err := os.ReadDir(filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, e := range entries {
		_, err := LoadScenario(filepath.Join("testdata", "scenarios", e.Name()))
		assert.NoError(t, err, e.Name())
	}
}
