package seq

import "fmt"

// FSM is the sequencer's control phase.
type FSM uint8

const (
	// FSMIdle means no sequence is in flight. Initial and terminal phase;
	// the sequencer always returns here between sequences.
	FSMIdle FSM = iota

	// FSMSequencing means sub-operations remain to be emitted.
	FSMSequencing
)

// String returns the canonical phase name.
func (f FSM) String() string {
	if f == FSMSequencing {
		return "SEQUENCING"
	}
	return "IDLE"
}

// ParseFSM converts a canonical phase name back to an FSM value.
// Used by the scenario loader and the trace store.
func ParseFSM(name string) (FSM, error) {
	switch name {
	case "IDLE":
		return FSMIdle, nil
	case "SEQUENCING":
		return FSMSequencing, nil
	}
	return FSMIdle, fmt.Errorf("unknown sequencer phase %q", name)
}

// Inputs is the per-cycle input signal set, sampled synchronously.
type Inputs struct {
	// Valid means the upstream producer has an instruction ready (valid_i).
	Valid bool `json:"valid,omitempty" yaml:"valid,omitempty"`

	// Kill requests unconditional cancellation of any in-flight sequence (kill_i).
	Kill bool `json:"kill,omitempty" yaml:"kill,omitempty"`

	// Halt requests a stall with no cancellation intent (halt_i).
	Halt bool `json:"halt,omitempty" yaml:"halt,omitempty"`

	// Ready means the downstream consumer can accept a sub-operation (ready_i).
	Ready bool `json:"ready,omitempty" yaml:"ready,omitempty"`

	// Kind is the raw classifier output for the current instruction.
	Kind Kind `json:"kind,omitempty" yaml:"kind,omitempty"`

	// Flags carries the table-jump and pointer-derived markers.
	Flags Flags `json:"flags,omitempty" yaml:"flags,omitempty"`
}

// Outputs is the per-cycle output signal set.
type Outputs struct {
	// Ready means the unit can accept a new instruction (ready_o).
	Ready bool `json:"ready,omitempty" yaml:"ready,omitempty"`

	// Valid means a sub-operation is being emitted this cycle (valid_o).
	Valid bool `json:"valid,omitempty" yaml:"valid,omitempty"`

	// Last means the emitted sub-operation is the final one of the
	// current sequence (seq_last_o). Meaningful only while Valid holds.
	Last bool `json:"last,omitempty" yaml:"last,omitempty"`
}

// State is the sequencer's entire mutable state: one fixed-size record,
// owned solely by this component, updated atomically once per cycle.
type State struct {
	// FSM is the control phase.
	FSM FSM `json:"fsm" yaml:"fsm"`

	// Count is the index of the next sub-operation to emit within the
	// current sequence. Always 0 while FSM is IDLE, and always below the
	// active kind's MaxCount while a handshake is attempted.
	Count int `json:"count" yaml:"count"`
}

// Reset returns the power-on state: IDLE with a zero count.
func Reset() State {
	return State{FSM: FSMIdle, Count: 0}
}

// Transition computes one synchronous update: the outputs driven during
// the cycle and the state registered for the next cycle.
//
// The admission convention: the count starts at 0 when a sequence is
// admitted (sub-operation 0 is the one being emitted) and increments on
// every completed handshake, so a 14-op PUSH observes counts 0..13 with
// Last asserted at 13. The cycle after the final handshake, state is back
// to IDLE/0.
func Transition(st State, in Inputs) (State, Outputs) {
	switch Arbitrate(in.Kill, in.Halt) {
	case ModeKill:
		// Absorb the instruction and cancel: upstream is clear to proceed,
		// nothing is emitted, state resets on the next cycle.
		return Reset(), Outputs{Ready: true}
	case ModeHalt:
		// Freeze in place: no handshake in either direction, state
		// unchanged into the next cycle.
		return st, Outputs{}
	}

	kind := EffectiveKind(in.Kind, in.Flags)
	emitting := in.Valid && kind.Valid()
	last := emitting && kind.IsLast(st.Count)

	out := Outputs{
		Valid: emitting,
		Last:  last,
		// Ready to admit a new instruction when nothing is mid-sequence,
		// or when the final sub-operation is being consumed this cycle.
		Ready: !emitting || (in.Ready && last),
	}

	next := st
	switch {
	case !emitting:
		// No active sequence this cycle (no input, or the instruction is
		// not a live sequence). The counter holds no progress.
		next = Reset()
	case in.Ready:
		// Handshake completes.
		if last || clearsCount(in.Flags) {
			next = Reset()
		} else {
			next = State{FSM: FSMSequencing, Count: st.Count + 1}
		}
	}
	// Otherwise the consumer withheld ready_i: hold state and retry the
	// same sub-operation next cycle.

	return next, out
}

// Sequencer wraps a State with a cycle counter for step-by-step driving.
// The caller owns time: each Step is one clock edge.
type Sequencer struct {
	state State
	cycle int64
}

// New returns a sequencer in the reset state.
func New() *Sequencer {
	return &Sequencer{state: Reset()}
}

// Step applies one cycle of inputs and returns the outputs driven during
// that cycle. State visible through State() afterwards is the next-cycle
// (registered) state.
func (s *Sequencer) Step(in Inputs) Outputs {
	next, out := Transition(s.state, in)
	s.state = next
	s.cycle++
	return out
}

// State returns the current registered state.
func (s *Sequencer) State() State {
	return s.state
}

// Cycle returns the number of steps taken since reset.
func (s *Sequencer) Cycle() int64 {
	return s.cycle
}

// Reset returns the sequencer to the power-on state and rewinds the cycle
// counter. Used by the harness between scenarios and by replay.
func (s *Sequencer) Reset() {
	s.state = Reset()
	s.cycle = 0
}
