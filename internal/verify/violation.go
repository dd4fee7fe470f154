package verify

import (
	"errors"
	"fmt"

	"github.com/rvmodel/zcseq/internal/trace"
)

// Code categorizes invariant breaches.
type Code string

const (
	// CodeResetIntegrity indicates state/count did not return to IDLE/0
	// the cycle after a kill or after a final handshake.
	CodeResetIntegrity Code = "RESET_INTEGRITY"

	// CodeHandshakeIntegrity indicates the handshake outputs or the frozen
	// state contract of kill/halt was broken.
	CodeHandshakeIntegrity Code = "HANDSHAKE_INTEGRITY"

	// CodeOverrun indicates the progress count reached or exceeded the
	// active kind's maximum sub-operation count.
	CodeOverrun Code = "OVERRUN"

	// CodeIllegalDecode indicates a pointer-derived instruction was
	// classified as anything other than INVALID.
	CodeIllegalDecode Code = "ILLEGAL_DECODE"

	// CodeCountLeak indicates a nonzero count the cycle after a table-jump
	// (or table-jump pointer) handshake.
	CodeCountLeak Code = "COUNT_LEAK"
)

// Violation is a breach of one of the sequencer's invariants, with the
// full cycle observation attached for diagnostics.
type Violation struct {
	// Code identifies the breached invariant.
	Code Code

	// Message is a human-readable description of the breach.
	Message string

	// Record is the observed cycle where the breach was detected.
	Record trace.Record
}

// Error implements the error interface.
func (v *Violation) Error() string {
	return fmt.Sprintf("%s: %s (cycle=%d, before=%s/%d, after=%s/%d)",
		v.Code, v.Message, v.Record.Cycle,
		v.Record.Before.FSM, v.Record.Before.Count,
		v.Record.After.FSM, v.Record.After.Count)
}

// IsViolation reports whether err is (or wraps) a Violation.
func IsViolation(err error) bool {
	var v *Violation
	return errors.As(err, &v)
}

// HasCode reports whether err is a Violation with the given code.
func HasCode(err error, code Code) bool {
	var v *Violation
	if errors.As(err, &v) {
		return v.Code == code
	}
	return false
}
