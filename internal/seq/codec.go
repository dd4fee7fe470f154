package seq

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Kinds and FSM phases serialize as their canonical names everywhere:
// JSON traces, golden files, scenario YAML, and the trace store. Numeric
// encodings would silently re-map if the enum order ever changed.

// MarshalJSON encodes the kind as its canonical name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes a canonical kind name.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseKind(name)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// MarshalYAML encodes the kind as its canonical name.
func (k Kind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

// UnmarshalYAML decodes a canonical kind name.
func (k *Kind) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}
	parsed, err := ParseKind(name)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// MarshalJSON encodes the phase as its canonical name.
func (f FSM) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// UnmarshalJSON decodes a canonical phase name.
func (f *FSM) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseFSM(name)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// MarshalYAML encodes the phase as its canonical name.
func (f FSM) MarshalYAML() (interface{}, error) {
	return f.String(), nil
}

// UnmarshalYAML decodes a canonical phase name.
func (f *FSM) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}
	parsed, err := ParseFSM(name)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
