package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rvmodel/zcseq/internal/seq"
)

// loadTestScenario loads a scenario from testdata/scenarios.
func loadTestScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return s
}

// TestRun_ConformanceScenarios runs every shipped conformance scenario and
// requires a clean pass.
func TestRun_ConformanceScenarios(t *testing.T) {
	names := []string{
		"push-full-expansion",
		"push-kill-mid-sequence",
		"pop-halt-freeze",
		"clic-pointer-no-admit",
		"mva01s-pair",
		"tbljmp-count-clear",
	}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			result, err := Run(loadTestScenario(t, name))
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Violations)
			assert.NotEmpty(t, result.RunID)
		})
	}
}

// TestRun_PushFullExpansion_TraceShape pins the trace details of the
// 14-op PUSH beyond what its assertions cover: count progression and the
// exact seq_last position.
func TestRun_PushFullExpansion_TraceShape(t *testing.T) {
	result, err := Run(loadTestScenario(t, "push-full-expansion"))
	require.NoError(t, err)
	require.Len(t, result.Trace, 14)

	for i, rec := range result.Trace {
		assert.Equal(t, i, rec.Before.Count, "cycle %d", i)
		assert.True(t, rec.Outputs.Valid, "cycle %d", i)
		assert.Equal(t, i == 13, rec.Outputs.Last, "cycle %d", i)
	}
	assert.Equal(t, seq.Reset(), result.Final)
}

// TestRun_FailingExpect tests that a wrong expect clause fails the run
// with a descriptive error.
func TestRun_FailingExpect(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: wrong-expect
description: "expects the wrong registered state"
cycles:
  - inputs: {valid: true, ready: true, kind: PUSH}
    expect:
      after: {fsm: IDLE, count: 0}
assertions: []
`))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "expected IDLE/0")
}

// TestRun_FailingAssertion tests that a wrong end-of-run assertion fails
// the run.
func TestRun_FailingAssertion(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: wrong-handshakes
description: "asserts the wrong number of handshakes"
cycles:
  - inputs: {valid: true, ready: true, kind: MVSA01}
    repeat: 2
assertions:
  - type: handshake_count
    handshakes: 5
`))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "2 completed handshakes, expected 5")
}

// TestRun_BackpressureScenario tests an inline scenario with withheld
// ready_i: the same sub-operation retries and the count holds.
func TestRun_BackpressureScenario(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: popretz-backpressure
description: "withheld ready_i retries the same sub-operation"
cycles:
  - inputs: {valid: true, ready: true, kind: POPRETZ}
  - inputs: {valid: true, ready: false, kind: POPRETZ}
    repeat: 3
    expect:
      after: {fsm: SEQUENCING, count: 1}
  - inputs: {valid: true, ready: true, kind: POPRETZ}
    repeat: 15
assertions:
  - type: no_violations
  - type: final_state
    fsm: IDLE
    count: 0
  - type: handshake_count
    handshakes: 16
  - type: last_at
    cycles: [18]
`))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}
