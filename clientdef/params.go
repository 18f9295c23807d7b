package clientdef

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Param is one entry in the array form of headers, path_params or query_params.
type Param struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Params is an ordered collection of name/value pairs.
//
// The client accepts either a JSON object or an array of {"name", "value"} objects. Params is
// encoded as an object unless AsList is set or a name occurs more than once, since an object
// cannot carry a repeated key.
type Params struct {
	Pairs  []Param
	AsList bool
}

// ParamMap returns Params in object form, ordered by name.
func ParamMap(m map[string]string) Params {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	pairs := make([]Param, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, Param{Name: name, Value: m[name]})
	}
	return Params{Pairs: pairs}
}

// ParamList returns Params in array form, keeping the given order.
func ParamList(pairs ...Param) Params {
	return Params{Pairs: pairs, AsList: true}
}

func (p Params) IsEmpty() bool {
	return len(p.Pairs) == 0
}

// Get returns the value of the first pair with the given name.
func (p Params) Get(name string) (string, bool) {
	for _, pair := range p.Pairs {
		if pair.Name == name {
			return pair.Value, true
		}
	}
	return "", false
}

// GetFold is like Get but compares names case-insensitively, as HTTP header names are.
func (p Params) GetFold(name string) (string, bool) {
	for _, pair := range p.Pairs {
		if strings.EqualFold(pair.Name, name) {
			return pair.Value, true
		}
	}
	return "", false
}

// Values returns all values for the given name in order.
func (p Params) Values(name string) []string {
	var ret []string
	for _, pair := range p.Pairs {
		if pair.Name == name {
			ret = append(ret, pair.Value)
		}
	}
	return ret
}

// Names returns each distinct name once, in order of first occurrence.
func (p Params) Names() []string {
	var ret []string
	seen := make(map[string]bool)
	for _, pair := range p.Pairs {
		if !seen[pair.Name] {
			seen[pair.Name] = true
			ret = append(ret, pair.Name)
		}
	}
	return ret
}

func (p Params) encodesAsList() bool {
	return p.AsList || len(p.Names()) != len(p.Pairs)
}

func (p Params) MarshalJSON() ([]byte, error) {
	if p.encodesAsList() {
		if p.Pairs == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(p.Pairs)
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, pair := range p.Pairs {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, _ := json.Marshal(pair.Name)
		value, _ := json.Marshal(pair.Value)
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (p *Params) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var pairs []Param
		if err := json.Unmarshal(trimmed, &pairs); err != nil {
			return err
		}
		*p = Params{Pairs: pairs, AsList: true}
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*p = Params{}
		return nil
	}
	if tok != json.Delim('{') {
		return errors.New("expected an object or an array of name/value pairs")
	}
	var pairs []Param
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := keyTok.(string)
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("value of %q must be a string", name)
		}
		pairs = append(pairs, Param{Name: name, Value: value})
	}
	*p = Params{Pairs: pairs}
	return nil
}

func (p *Params) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var pairs []Param
		if err := node.Decode(&pairs); err != nil {
			return err
		}
		*p = Params{Pairs: pairs, AsList: true}
	case yaml.MappingNode:
		var pairs []Param
		for i := 0; i+1 < len(node.Content); i += 2 {
			name, value := node.Content[i], node.Content[i+1]
			if value.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: value of %q must be a scalar", value.Line, name.Value)
			}
			pairs = append(pairs, Param{Name: name.Value, Value: value.Value})
		}
		*p = Params{Pairs: pairs}
	default:
		return fmt.Errorf("line %d: expected a mapping or a list of name/value pairs", node.Line)
	}
	return nil
}
