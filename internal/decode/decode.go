// Package decode classifies compressed RV32 instruction words into
// sequence kinds for the sequencer.
//
// Only the Zcmp/Zcmt subset matters here: the push/pop family and the
// register-move pairs sequence, the table jumps are flagged so the
// sequencer can exclude them from counting, and everything else is a
// non-sequence instruction. Pointer-derived flags are not decoded from
// instruction bits; they come from fetch context and travel alongside the
// classified kind as stimulus.
package decode

import "github.com/rvmodel/zcseq/internal/seq"

// Field extraction for the 16-bit compressed format. Zcmp and Zcmt both
// live in quadrant 2 (op=10) under funct3=101.
const (
	opMask    = 0x0003
	opC2      = 0x0002
	funct3Pos = 13
	funct3Zc  = 0x5
)

// Result is the classifier's verdict on one instruction word.
type Result struct {
	// Kind is the sequence classification; KindInvalid for anything that
	// does not sequence, including table jumps.
	Kind seq.Kind

	// TblJmp marks cm.jt/cm.jalt, which must never contribute to the
	// sequencer's count.
	TblJmp bool
}

// Classify decodes one compressed instruction word.
func Classify(instr uint16) Result {
	if instr&opMask != opC2 || instr>>funct3Pos != funct3Zc {
		return Result{}
	}

	switch (instr >> 10) & 0x7 {
	case 0x0:
		// cm.jt (index < 32) and cm.jalt (index >= 32). The distinction
		// does not matter to the sequencer; both are table jumps.
		return Result{TblJmp: true}
	case 0x3:
		// Register-move pairs, selected by bits [6:5].
		switch (instr >> 5) & 0x3 {
		case 0x1:
			return Result{Kind: seq.KindMVSA01}
		case 0x3:
			return Result{Kind: seq.KindMVA01S}
		}
		return Result{}
	case 0x6, 0x7:
		return classifyPushPop(instr)
	}

	return Result{}
}

// classifyPushPop decodes the cm.push/cm.pop family, selected by
// bits [12:8]. The register list in bits [7:4] must be at least 4
// ({ra} alone); smaller values are reserved encodings.
func classifyPushPop(instr uint16) Result {
	if rlist := (instr >> 4) & 0xF; rlist < 4 {
		return Result{}
	}

	switch (instr >> 8) & 0x1F {
	case 0x18:
		return Result{Kind: seq.KindPush}
	case 0x1A:
		return Result{Kind: seq.KindPop}
	case 0x1C:
		return Result{Kind: seq.KindPopRetZ}
	case 0x1E:
		return Result{Kind: seq.KindPopRet}
	}

	return Result{}
}

// Inputs builds a sequencer input vector for a raw instruction word,
// marking it valid and wiring the table-jump flag. The caller fills in the
// control signals and any pointer-derived flags from fetch context.
func Inputs(instr uint16) seq.Inputs {
	res := Classify(instr)
	return seq.Inputs{
		Valid: true,
		Kind:  res.Kind,
		Flags: seq.Flags{TblJmp: res.TblJmp},
	}
}
