// Package verify implements the sequencer's property monitor.
//
// The monitor is the software counterpart of the assertion layer that
// watches the RTL: it observes every cycle of a run as a trace.Record and
// reports breaches of the sequencer's invariants as structured Violation
// values. A violation is a design-time defect in the sequencer or one of
// its collaborators, not a runtime-recoverable error; nothing in this
// package attempts recovery.
//
// Violation taxonomy:
//   - RESET_INTEGRITY: state/count not back to IDLE/0 the cycle after a
//     kill or after a sequence's final handshake completes
//   - HANDSHAKE_INTEGRITY: kill without ready+!valid, halt without
//     !ready+!valid, or state drift while halted
//   - OVERRUN: the progress count reaching the active kind's maximum
//   - ILLEGAL_DECODE: a pointer-derived instruction treated as a live
//     sequence
//   - COUNT_LEAK: a nonzero count the cycle after a table-jump handshake
//
// The monitor is exercised three ways: by the harness on every scenario,
// by the CLI check command over stimulus files and randomized traces, and
// directly by property tests that feed it hand-built bad transitions.
package verify
