package seq

// Mode is the cycle's control mode, resolved fresh every cycle from the
// kill and halt inputs. It is derived, never stored.
type Mode uint8

const (
	// ModeNormal lets the FSM follow ordinary handshake occupancy.
	ModeNormal Mode = iota

	// ModeHalt freezes state in place and deasserts both handshake signals.
	ModeHalt

	// ModeKill cancels any in-flight sequence: ready asserted, valid
	// deasserted, state reset on the next cycle.
	ModeKill
)

// modeNames maps modes to trace names.
var modeNames = map[Mode]string{
	ModeNormal: "normal",
	ModeHalt:   "halt",
	ModeKill:   "kill",
}

// String returns the lowercase trace name of the mode.
func (m Mode) String() string {
	return modeNames[m]
}

// Arbitrate resolves the cycle's mode from the kill and halt requests.
//
// Kill takes strict priority: when both are asserted, halt is ignored for
// that cycle. Cancellation must win because it carries flush intent (an
// exception or pipeline flush), while halt is only a stall request.
func Arbitrate(kill, halt bool) Mode {
	switch {
	case kill:
		return ModeKill
	case halt:
		return ModeHalt
	default:
		return ModeNormal
	}
}
