// Package harness provides conformance testing for the sequencer model.
//
// Scenarios are YAML files describing a cycle-by-cycle stimulus with
// optional per-cycle expectations and end-of-run assertions. The harness
// drives the real transition function - there is no separate test
// interpreter - so what a scenario observes is exactly what the model
// does.
//
// # Scenario format
//
//	name: push-kill-mid-sequence
//	description: "Kill cancels an in-flight PUSH"
//	cycles:
//	  - inputs: {valid: true, ready: true, kind: PUSH}
//	    repeat: 5
//	  - inputs: {valid: true, ready: true, kind: PUSH, kill: true}
//	    expect:
//	      outputs: {ready: true}
//	      after: {fsm: IDLE, count: 0}
//	assertions:
//	  - type: no_violations
//	  - type: final_state
//	    fsm: IDLE
//	    count: 0
//
// Scenario files are validated twice before running: strict YAML decoding
// (unknown fields are typos) and an embedded CUE schema that checks value
// domains.
//
// # Execution
//
// Each scenario runs against a fresh sequencer, a fresh property monitor,
// and a fresh in-memory trace store. The full trace is persisted and then
// replayed from the store as an implicit determinism check. Any violation
// reported by the monitor fails the scenario.
//
// Golden comparison via RunWithGolden snapshots the JSON trace under
// testdata/golden; regenerate with:
//
//	go test ./internal/harness -update
package harness
