package verify

import (
	"fmt"

	"github.com/rvmodel/zcseq/internal/seq"
	"github.com/rvmodel/zcseq/internal/trace"
)

// Check evaluates every invariant against one observed cycle and returns
// all breaches found. A correct sequencer returns nothing, ever.
func Check(r trace.Record) []*Violation {
	var found []*Violation
	report := func(code Code, format string, args ...interface{}) {
		found = append(found, &Violation{
			Code:    code,
			Message: fmt.Sprintf(format, args...),
			Record:  r,
		})
	}

	mode := seq.Arbitrate(r.Inputs.Kill, r.Inputs.Halt)
	kind := seq.EffectiveKind(r.Inputs.Kind, r.Inputs.Flags)

	// The count is zero whenever the FSM is idle, on both edges of the cycle.
	if r.Before.FSM == seq.FSMIdle && r.Before.Count != 0 {
		report(CodeResetIntegrity, "idle with nonzero count %d", r.Before.Count)
	}
	if r.After.FSM == seq.FSMIdle && r.After.Count != 0 {
		report(CodeResetIntegrity, "registered idle with nonzero count %d", r.After.Count)
	}

	switch mode {
	case seq.ModeKill:
		if !r.Outputs.Ready || r.Outputs.Valid {
			report(CodeHandshakeIntegrity,
				"kill requires ready=1 valid=0, got ready=%v valid=%v",
				r.Outputs.Ready, r.Outputs.Valid)
		}
		if r.After != seq.Reset() {
			report(CodeResetIntegrity, "state not reset the cycle after kill")
		}
	case seq.ModeHalt:
		if r.Outputs.Ready || r.Outputs.Valid {
			report(CodeHandshakeIntegrity,
				"halt requires ready=0 valid=0, got ready=%v valid=%v",
				r.Outputs.Ready, r.Outputs.Valid)
		}
		if r.After != r.Before {
			report(CodeHandshakeIntegrity, "state drifted while halted")
		}
	case seq.ModeNormal:
		// A completed final handshake returns the unit to reset.
		if r.Outputs.Valid && r.Outputs.Last && r.Inputs.Ready && r.After != seq.Reset() {
			report(CodeResetIntegrity, "state not reset the cycle after the final handshake")
		}
		// seq_last_o is a pure function of (kind, count) while emitting.
		if r.Outputs.Valid && r.Outputs.Last != kind.IsLast(r.Before.Count) {
			report(CodeHandshakeIntegrity,
				"seq_last=%v disagrees with %s at count %d",
				r.Outputs.Last, kind, r.Before.Count)
		}
	}

	// Overrun: the count must stay strictly below the active kind's maximum.
	if r.Inputs.Valid && kind.Valid() && r.Before.Count >= kind.MaxCount() {
		report(CodeOverrun, "count %d reached max %d for %s",
			r.Before.Count, kind.MaxCount(), kind)
	}

	// Pointer-derived instructions must never present as a live sequence.
	if r.Inputs.Flags.PointerDerived() && r.Outputs.Valid {
		report(CodeIllegalDecode, "pointer-derived instruction emitted as %s", r.Inputs.Kind)
	}

	// Table-jump activity never contributes to the count, even transiently.
	if r.Handshake() && (r.Inputs.Flags.TblJmp || r.Inputs.Flags.TblJmpPtr) && r.After.Count != 0 {
		report(CodeCountLeak, "count %d survived a table-jump handshake", r.After.Count)
	}

	return found
}

// Monitor accumulates violations over a run. One monitor watches one run;
// the harness creates a fresh monitor per scenario.
type Monitor struct {
	cycles     int64
	violations []*Violation
}

// NewMonitor creates an empty monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// Observe checks one cycle and records any breaches. Returns the breaches
// found in this cycle only.
func (m *Monitor) Observe(r trace.Record) []*Violation {
	m.cycles++
	found := Check(r)
	m.violations = append(m.violations, found...)
	return found
}

// ObserveTrace checks every record of a completed trace.
func (m *Monitor) ObserveTrace(tr trace.Trace) {
	for _, r := range tr {
		m.Observe(r)
	}
}

// Ok reports whether no violation has been observed.
func (m *Monitor) Ok() bool {
	return len(m.violations) == 0
}

// Violations returns all breaches observed so far, in cycle order.
func (m *Monitor) Violations() []*Violation {
	return m.violations
}

// Cycles returns the number of cycles observed.
func (m *Monitor) Cycles() int64 {
	return m.cycles
}
