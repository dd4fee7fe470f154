// Package seq models the control logic of the Zc instruction sequencer.
//
// The sequencer decomposes a single compressed macro-instruction
// (cm.push/cm.pop/cm.popret/cm.popretz/cm.mva01s/cm.mvsa01) into an
// ordered stream of primitive sub-operations, issuing one per cycle to a
// downstream consumer under a valid/ready handshake.
//
// ARCHITECTURE:
//
// Synchronous single-record state:
// The entire mutable state is one State value (FSM phase + progress count),
// updated atomically once per cycle by the pure Transition function. There
// is no internal concurrency and no hidden clock - the caller owns time.
//
// Cycle evaluation order:
// 1. GuardRules force the effective Kind to Invalid for pointer-derived forms
// 2. Arbitrate resolves the cycle's Mode (Kill > Halt > Normal)
// 3. The mode's handshake outputs (ready_o/valid_o/seq_last_o) are derived
// 4. If a handshake completes (valid_o && ready_i), the counter advances,
//    or resets when the sequence finishes or a table jump was consumed
//
// Kill cancels any in-flight sequence on the next cycle and absorbs the
// current one (ready asserted, valid deasserted). Halt freezes state and
// deasserts both handshake signals. Backpressure is expressed through
// ready_i: without it the same sub-operation is retried next cycle.
//
// The transition function is deliberately deterministic: identical input
// traces always produce identical state/output traces, which is what the
// store's replay check and the harness golden files rely on.
package seq
