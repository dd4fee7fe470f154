package seq

import "fmt"

// Kind classifies a macro-instruction into its sequence type.
//
// KindInvalid is the zero value and doubles as "not a sequence": plain
// instructions, reserved encodings, and pointer-derived forms all present
// as KindInvalid to the sequencer.
type Kind uint8

const (
	// KindInvalid marks an instruction that never sequences.
	KindInvalid Kind = iota

	// KindPush is cm.push: store {ra, s0-s11} and adjust sp.
	KindPush

	// KindPop is cm.pop: load {ra, s0-s11} and adjust sp.
	KindPop

	// KindPopRet is cm.popret: cm.pop followed by a return jump.
	KindPopRet

	// KindPopRetZ is cm.popretz: cm.popret plus zeroing a0.
	KindPopRetZ

	// KindMVA01S is cm.mva01s: move two saved registers into a0/a1.
	KindMVA01S

	// KindMVSA01 is cm.mvsa01: move a0/a1 into two saved registers.
	KindMVSA01
)

// kindNames maps kinds to their canonical uppercase names.
// The names are stable: they appear in traces, golden files, and scenario YAML.
var kindNames = map[Kind]string{
	KindInvalid: "INVALID",
	KindPush:    "PUSH",
	KindPop:     "POP",
	KindPopRet:  "POPRET",
	KindPopRetZ: "POPRETZ",
	KindMVA01S:  "MVA01S",
	KindMVSA01:  "MVSA01",
}

// maxCounts is the length policy: maximum sub-operation count per kind.
//
// Push/pop family lengths are for the full register list {ra, s0-s11}:
// 13 register transfers plus one stack-pointer adjustment, plus the return
// jump for popret and additionally the a0 zeroing for popretz.
var maxCounts = map[Kind]int{
	KindPush:    14,
	KindPop:     14,
	KindPopRet:  15,
	KindPopRetZ: 16,
	KindMVA01S:  2,
	KindMVSA01:  2,
}

// String returns the canonical name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Valid reports whether the kind denotes a live sequence.
func (k Kind) Valid() bool {
	return k != KindInvalid && k <= KindMVSA01
}

// MaxCount returns the maximum number of sub-operations for the kind.
// The progress count must never reach this value while the kind is active;
// doing so is an overrun violation. KindInvalid returns 0.
func (k Kind) MaxCount() int {
	return maxCounts[k]
}

// IsLast reports whether count indexes the final sub-operation of the kind.
//
// It holds exactly one cycle before the count would overflow, so the
// consumer learns "this is the final sub-operation" in the same cycle the
// sub-operation is issued. Never true for KindInvalid.
func (k Kind) IsLast(count int) bool {
	max := k.MaxCount()
	return max > 0 && count == max-1
}

// ParseKind converts a canonical name (as emitted by String) back to a Kind.
// Used by the scenario loader.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return KindInvalid, fmt.Errorf("unknown sequence kind %q", name)
}
