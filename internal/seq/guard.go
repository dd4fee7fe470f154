package seq

// Flags carries the classifier's side-channel flags for an instruction.
//
// The pointer flags describe how the instruction was materialized (from a
// table-jump, CLIC, or mret pointer fetch) rather than what its bits
// encode; they come from fetch context and are supplied alongside the raw
// classified kind.
type Flags struct {
	// TblJmp marks a table-jump instruction (cm.jt/cm.jalt).
	TblJmp bool `json:"tbljmp,omitempty" yaml:"tbljmp,omitempty"`

	// TblJmpPtr marks an instruction materialized from a table-jump pointer.
	TblJmpPtr bool `json:"tbljmp_ptr,omitempty" yaml:"tbljmp_ptr,omitempty"`

	// ClicPtr marks an instruction materialized from a CLIC pointer.
	ClicPtr bool `json:"clic_ptr,omitempty" yaml:"clic_ptr,omitempty"`

	// MretPtr marks an instruction materialized from an mret pointer.
	MretPtr bool `json:"mret_ptr,omitempty" yaml:"mret_ptr,omitempty"`
}

// PointerDerived reports whether any pointer-derived flag is set.
func (f Flags) PointerDerived() bool {
	return f.TblJmpPtr || f.ClicPtr || f.MretPtr
}

// EffectiveKind applies the pointer guard to the classifier's raw output.
//
// Pointer-derived instructions must never decode into a live sequence,
// regardless of what their bits happen to look like. The guard is applied
// in one place, before any other use of the kind, because the rule is
// cross-cutting and easy to omit if re-derived per instruction kind.
func EffectiveKind(raw Kind, f Flags) Kind {
	if f.PointerDerived() {
		return KindInvalid
	}
	return raw
}

// clearsCount reports whether a completed handshake for an instruction
// with these flags must force the progress count to zero on the next
// cycle. Table-jump activity must never contribute to sequence counting,
// even transiently.
func clearsCount(f Flags) bool {
	return f.TblJmp || f.TblJmpPtr
}
