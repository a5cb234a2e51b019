package sanitizer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ParseJSON decodes a single JSON document into a Value. Object key order is
// preserved, integral numbers decode as Int and all other numbers as Float.
// Trailing data after the document is an error.
func ParseJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeJSON(dec)
	if err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, errors.New("sanitizer: trailing data after JSON document")
	}
	return v, nil
}

func decodeJSON(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		return numberFromJSON(t)
	case string:
		return Text(t), nil
	case json.Delim:
		switch t {
		case '{':
			var entries []Entry
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := kt.(string)
				if !ok {
					return Value{}, fmt.Errorf("sanitizer: unexpected object key %v", kt)
				}
				val, err := decodeJSON(dec)
				if err != nil {
					return Value{}, err
				}
				entries = append(entries, Entry{Key: key, Value: val})
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Mapping(entries...), nil
		case '[':
			elems := []Value{}
			for dec.More() {
				val, err := decodeJSON(dec)
				if err != nil {
					return Value{}, err
				}
				elems = append(elems, val)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Sequence(elems...), nil
		}
	}
	return Value{}, fmt.Errorf("sanitizer: unexpected JSON token %v", tok)
}

func numberFromJSON(n json.Number) (Value, error) {
	if i, err := n.Int64(); err == nil {
		return Int(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return Value{}, err
	}
	return Float(f), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := ParseJSON(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalJSON implements json.Marshaler. Mappings keep their entry order and
// Sets are written as arrays.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encodeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) encodeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindNumber:
		if !v.isFloat {
			buf.WriteString(strconv.FormatInt(v.i, 10))
			return nil
		}
		return writeJSON(buf, v.f)
	case KindDecimal:
		buf.WriteString(v.dec.String())
	case KindText:
		return writeJSON(buf, v.str)
	case KindSequence, KindSet:
		buf.WriteByte('[')
		for i, e := range v.elems {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := e.encodeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMapping:
		buf.WriteByte('{')
		for i, e := range v.entries {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, e.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := e.Value.encodeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case KindOpaque:
		return writeJSON(buf, v.opaque)
	}
	return nil
}

func writeJSON(buf *bytes.Buffer, x any) error {
	b, err := json.Marshal(x)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

// MarshalYAML implements yaml.Marshaler, emitting mappings in entry order.
func (v Value) MarshalYAML() (any, error) {
	return v.yamlNode()
}

func (v Value) yamlNode() (*yaml.Node, error) {
	switch v.kind {
	case KindNull:
		return scalarNode("!!null", "null"), nil
	case KindBool:
		return scalarNode("!!bool", strconv.FormatBool(v.b)), nil
	case KindNumber:
		if !v.isFloat {
			return scalarNode("!!int", strconv.FormatInt(v.i, 10)), nil
		}
		return scalarNode("!!float", formatYAMLFloat(v.f)), nil
	case KindDecimal:
		return scalarNode("!!float", v.dec.String()), nil
	case KindText:
		return scalarNode("!!str", v.str), nil
	case KindSequence, KindSet:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range v.elems {
			child, err := e.yamlNode()
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, child)
		}
		return n, nil
	case KindMapping:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, e := range v.entries {
			child, err := e.Value.yamlNode()
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, scalarNode("!!str", e.Key), child)
		}
		return n, nil
	case KindOpaque:
		n := &yaml.Node{}
		if err := n.Encode(v.opaque); err != nil {
			return nil, err
		}
		return n, nil
	}
	return nil, fmt.Errorf("sanitizer: unknown value kind %d", v.kind)
}

func scalarNode(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func formatYAMLFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// UnmarshalYAML implements yaml.Unmarshaler. Mapping order follows the
// document; a !!set mapping decodes as a Set of its keys.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := fromYAMLNode(node)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func fromYAMLNode(node *yaml.Node) (Value, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return Null(), nil
		}
		return fromYAMLNode(node.Content[0])
	case yaml.AliasNode:
		return fromYAMLNode(node.Alias)
	case yaml.ScalarNode:
		return fromYAMLScalar(node)
	case yaml.SequenceNode:
		elems := make([]Value, 0, len(node.Content))
		for _, c := range node.Content {
			e, err := fromYAMLNode(c)
			if err != nil {
				return Value{}, err
			}
			elems = append(elems, e)
		}
		return Sequence(elems...), nil
	case yaml.MappingNode:
		if node.ShortTag() == "!!set" {
			elems := make([]Value, 0, len(node.Content)/2)
			for i := 0; i+1 < len(node.Content); i += 2 {
				e, err := fromYAMLNode(node.Content[i])
				if err != nil {
					return Value{}, err
				}
				elems = append(elems, e)
			}
			return Set(elems...), nil
		}
		entries := make([]Entry, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			val, err := fromYAMLNode(node.Content[i+1])
			if err != nil {
				return Value{}, err
			}
			entries = append(entries, Entry{Key: node.Content[i].Value, Value: val})
		}
		return Mapping(entries...), nil
	}
	return Value{}, fmt.Errorf("sanitizer: unsupported YAML node kind %d", node.Kind)
}

func fromYAMLScalar(node *yaml.Node) (Value, error) {
	switch node.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return Value{}, err
		}
		return Bool(b), nil
	case "!!int":
		var i int64
		if err := node.Decode(&i); err == nil {
			return Int(i), nil
		}
		var f float64
		if err := node.Decode(&f); err != nil {
			return Value{}, err
		}
		return Float(f), nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return Value{}, err
		}
		return Float(f), nil
	}
	return Text(node.Value), nil
}
