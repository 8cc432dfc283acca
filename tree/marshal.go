package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v4"
)

// MarshalJSON writes m as a JSON object with keys in declaration order.
func (m *Map) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		valJSON, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, fmt.Errorf("tree: marshaling key %q: %w", k, err)
		}
		buf.Write(valJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML implements yaml.Marshaler so that nested Maps keep their order
// when encoded as part of a larger value.
func (m *Map) MarshalYAML() (any, error) {
	return m.Node()
}

// Node converts m into a yaml.Node mapping with keys in declaration order.
func (m *Map) Node() (*yaml.Node, error) {
	return valueToNode(m)
}

// MarshalYAML encodes v (typically a *Map) as YAML, preserving mapping order.
func MarshalYAML(v any) ([]byte, error) {
	node, err := valueToNode(v)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(node)
}

// MarshalJSONIndent encodes v as indented JSON, preserving mapping order.
func MarshalJSONIndent(v any, prefix, indent string) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, prefix, indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func scalarNode(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func valueToNode(v any) (*yaml.Node, error) {
	if v == nil {
		return scalarNode("!!null", "null"), nil
	}

	switch val := v.(type) {
	case *Map:
		if val == nil {
			return scalarNode("!!null", "null"), nil
		}
		node := &yaml.Node{
			Kind:    yaml.MappingNode,
			Tag:     "!!map",
			Content: make([]*yaml.Node, 0, 2*len(val.keys)),
		}
		for _, k := range val.keys {
			child, err := valueToNode(val.values[k])
			if err != nil {
				return nil, fmt.Errorf("tree: key %q: %w", k, err)
			}
			node.Content = append(node.Content, scalarNode("!!str", k), child)
		}
		return node, nil
	case []any:
		node := &yaml.Node{
			Kind:    yaml.SequenceNode,
			Tag:     "!!seq",
			Content: make([]*yaml.Node, 0, len(val)),
		}
		for _, item := range val {
			child, err := valueToNode(item)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil
	case map[string]any:
		return valueToNode(FromMap(val))
	case bool:
		return scalarNode("!!bool", strconv.FormatBool(val)), nil
	case int:
		return scalarNode("!!int", strconv.Itoa(val)), nil
	case int64:
		return scalarNode("!!int", strconv.FormatInt(val, 10)), nil
	case uint64:
		return scalarNode("!!int", strconv.FormatUint(val, 10)), nil
	case float64:
		return scalarNode("!!float", strconv.FormatFloat(val, 'f', -1, 64)), nil
	case json.Number:
		if strings.ContainsAny(val.String(), ".eE") {
			return scalarNode("!!float", val.String()), nil
		}
		return scalarNode("!!int", val.String()), nil
	case string:
		return scalarNode("!!str", val), nil
	default:
		node := &yaml.Node{}
		if err := node.Encode(val); err != nil {
			return nil, fmt.Errorf("tree: encoding %T: %w", val, err)
		}
		return node, nil
	}
}
