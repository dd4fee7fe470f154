package harness

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"

	"github.com/rvmodel/zcseq/internal/seq"
)

//go:embed schema.cue
var schemaCUE string

// Scenario defines a conformance test scenario: a stimulus trace with
// expectations and end-of-run assertions.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Cycles is the stimulus, in order.
	Cycles []CycleStep `yaml:"cycles"`

	// Assertions validate the completed run.
	Assertions []Assertion `yaml:"assertions"`
}

// CycleStep drives one or more identical cycles.
type CycleStep struct {
	// Inputs is the input vector sampled during the cycle.
	Inputs seq.Inputs `yaml:"inputs"`

	// Repeat drives the same inputs for this many cycles (default 1).
	Repeat int `yaml:"repeat,omitempty"`

	// Expect optionally pins the outputs and/or registered state of the
	// cycle. With Repeat > 1 it is checked on every repetition.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause pins observable behavior of a single cycle.
type ExpectClause struct {
	// Outputs, if set, must equal the driven outputs exactly.
	Outputs *seq.Outputs `yaml:"outputs,omitempty"`

	// After, if set, must equal the registered state exactly.
	After *seq.State `yaml:"after,omitempty"`
}

// Assertion validates the completed run.
type Assertion struct {
	// Type selects the assertion:
	//   - "no_violations": the property monitor observed nothing
	//   - "final_state": the run ends in the given fsm/count
	//   - "handshake_count": exactly Count transfers completed
	//   - "last_at": seq_last_o was asserted exactly at the given cycles
	Type string `yaml:"type"`

	// FSM and Count are used by final_state.
	FSM   string `yaml:"fsm,omitempty"`
	Count int    `yaml:"count,omitempty"`

	// Handshakes is used by handshake_count.
	Handshakes int `yaml:"handshakes,omitempty"`

	// Cycles is used by last_at.
	Cycles []int64 `yaml:"cycles,omitempty"`
}

// Assertion type constants.
const (
	AssertNoViolations   = "no_violations"
	AssertFinalState     = "final_state"
	AssertHandshakeCount = "handshake_count"
	AssertLastAt         = "last_at"
)

// LoadScenario reads, schema-checks, and parses a scenario YAML file.
// Returns an error if the file is malformed, fails the CUE schema,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML from memory.
func ParseScenario(data []byte) (*Scenario, error) {
	// Domain check first: the CUE schema rejects out-of-range values with
	// positioned errors before the stricter Go decoding runs.
	if err := validateAgainstSchema(data); err != nil {
		return nil, fmt.Errorf("scenario failed schema validation: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateAgainstSchema checks the raw YAML against the embedded CUE schema.
func validateAgainstSchema(data []byte) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Scenario"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("lookup schema definition: %w", err)
	}
	return cueyaml.Validate(data, def)
}

// validateScenario checks required fields and cross-field constraints the
// schema cannot express.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Cycles) == 0 {
		return fmt.Errorf("cycles list is required and must be non-empty")
	}

	for i, step := range s.Cycles {
		if step.Repeat < 0 {
			return fmt.Errorf("cycles[%d]: repeat must be positive", i)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertNoViolations:
		// No parameters.
	case AssertFinalState:
		if _, err := seq.ParseFSM(a.FSM); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertHandshakeCount:
		if a.Handshakes < 0 {
			return fmt.Errorf("assertions[%d]: handshakes must be non-negative", index)
		}
	case AssertLastAt:
		if len(a.Cycles) == 0 {
			return fmt.Errorf("assertions[%d]: cycles list is required for last_at", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

// Stimulus expands the cycle steps into one input vector per cycle.
func (s *Scenario) Stimulus() []seq.Inputs {
	var out []seq.Inputs
	for _, step := range s.Cycles {
		n := step.Repeat
		if n == 0 {
			n = 1
		}
		for i := 0; i < n; i++ {
			out = append(out, step.Inputs)
		}
	}
	return out
}
