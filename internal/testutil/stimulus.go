package testutil

import (
	"math/rand"

	"github.com/rvmodel/zcseq/internal/seq"
	"github.com/rvmodel/zcseq/internal/trace"
)

// sequenceKinds are the admissible multi-op kinds.
var sequenceKinds = []seq.Kind{
	seq.KindPush,
	seq.KindPop,
	seq.KindPopRet,
	seq.KindPopRetZ,
	seq.KindMVA01S,
	seq.KindMVSA01,
}

// StimulusGenerator produces randomized per-cycle input vectors from a
// fixed seed. The same seed always yields the same stimulus, so failing
// property runs are reproducible by seed alone.
//
// The distribution is biased toward the interesting regions: mostly valid
// instructions with downstream ready, salted with kills, halts,
// backpressure, table jumps, and pointer-derived flags.
type StimulusGenerator struct {
	rng *rand.Rand
}

// NewStimulusGenerator creates a generator for the given seed.
func NewStimulusGenerator(seed int64) *StimulusGenerator {
	return &StimulusGenerator{rng: rand.New(rand.NewSource(seed))}
}

// Next returns the next raw input vector. Raw vectors do not respect the
// upstream stable-instruction protocol; use DriveRandom for
// protocol-correct runs.
func (g *StimulusGenerator) Next() seq.Inputs {
	in := seq.Inputs{
		Valid: g.chance(85),
		Ready: g.chance(75),
		Kill:  g.chance(5),
		Halt:  g.chance(10),
	}

	if g.chance(70) {
		in.Kind = sequenceKinds[g.rng.Intn(len(sequenceKinds))]
	}

	// Rare cross-cutting flags, including illegal-looking combinations
	// (pointer flags on a sequence decode) that the guards must neutralize.
	in.Flags = seq.Flags{
		TblJmp:    g.chance(5),
		TblJmpPtr: g.chance(3),
		ClicPtr:   g.chance(3),
		MretPtr:   g.chance(3),
	}

	return in
}

// Trace returns n consecutive raw input vectors.
func (g *StimulusGenerator) Trace(n int) []seq.Inputs {
	out := make([]seq.Inputs, n)
	for i := range out {
		out[i] = g.Next()
	}
	return out
}

// chance returns true with the given percent probability.
func (g *StimulusGenerator) chance(percent int) bool {
	return g.rng.Intn(100) < percent
}

// DriveRandom steps the sequencer through n cycles of seeded stimulus and
// returns the observed trace.
//
// It respects the upstream handshake protocol: once an instruction is
// offered and the unit withholds ready_o, the instruction (valid, kind,
// flags) is held stable into the next cycle and only the control signals
// (ready_i, kill, halt) are re-rolled. Without this, stimulus could swap a
// long sequence for a short one mid-flight, which no legal producer does.
func DriveRandom(s *seq.Sequencer, gen *StimulusGenerator, n int) trace.Trace {
	tr := make(trace.Trace, 0, n)
	var held *seq.Inputs

	for i := 0; i < n; i++ {
		in := gen.Next()
		if held != nil {
			in.Valid = true
			in.Kind = held.Kind
			in.Flags = held.Flags
		}

		before := s.State()
		cycle := s.Cycle()
		out := s.Step(in)
		tr = append(tr, trace.Record{
			Cycle:   cycle,
			Before:  before,
			Inputs:  in,
			Outputs: out,
			After:   s.State(),
		})

		if out.Ready {
			held = nil
		} else if in.Valid {
			offered := in
			held = &offered
		}
	}

	return tr
}
