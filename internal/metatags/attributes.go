package metatags

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

type Attr struct {
	Name  string
	Value string
}

// Attributes is an ordered name/value list. Enumeration order is the
// order in which names were first set, which is also the order in which
// they appeared in the decoded JSON or YAML document.
type Attributes []Attr

// NewAttributes builds Attributes from alternating name, value pairs.
// A trailing name without value is ignored.
func NewAttributes(kv ...string) Attributes {
	a := make(Attributes, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		a.Set(kv[i], kv[i+1])
	}
	return a
}

func (a Attributes) Get(name string) (string, bool) {
	for _, attr := range a {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

func (a Attributes) Has(name string) bool {
	_, ok := a.Get(name)
	return ok
}

// Set replaces the value of an existing name in place or appends a new one.
func (a *Attributes) Set(name, value string) {
	for i := range *a {
		if (*a)[i].Name == name {
			(*a)[i].Value = value
			return
		}
	}
	*a = append(*a, Attr{Name: name, Value: value})
}

func (a Attributes) Names() []string {
	names := make([]string, len(a))
	for i, attr := range a {
		names[i] = attr.Name
	}
	return names
}

func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	copy(out, a)
	return out
}

func (a Attributes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, attr := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(attr.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(attr.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON keeps document key order. Non-string scalars are kept
// in their textual form, null values are skipped.
func (a *Attributes) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("attributes: invalid json")
	}
	res := gjson.ParseBytes(data)
	if res.Type == gjson.Null {
		*a = nil
		return nil
	}
	if !res.IsObject() {
		return fmt.Errorf("attributes: expected object, got %s", res.Type)
	}

	out := Attributes{}
	var err error
	res.ForEach(func(key, value gjson.Result) bool {
		switch {
		case value.Type == gjson.Null:
			// null means unset: no attribute, so an og/twitter key yields no tag
		case value.IsObject() || value.IsArray():
			err = fmt.Errorf("attributes: value of %q must be a scalar", key.String())
			return false
		default:
			out.Set(key.String(), value.String())
		}
		return true
	})
	if err != nil {
		return err
	}
	*a = out
	return nil
}

func (a Attributes) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, attr := range a {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: attr.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: attr.Value},
		)
	}
	return node, nil
}

func (a *Attributes) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*a = nil
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("attributes: line %d: expected mapping", node.Line)
	}

	out := Attributes{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return fmt.Errorf("attributes: line %d: value of %q must be a scalar", v.Line, k.Value)
		}
		if v.Tag == "!!null" {
			continue
		}
		out.Set(k.Value, v.Value)
	}
	*a = out
	return nil
}
