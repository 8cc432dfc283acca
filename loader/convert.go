package loader

import (
	"fmt"
	"strings"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/specflat/flaterrors"
	"github.com/erraggy/specflat/tree"
)

// converter turns a yaml.Node tree into tree values, substituting
// pre-loaded include results.
type converter struct {
	id string
	// includes holds the loaded value of each include node
	includes map[*yaml.Node]any
	// used marks include values already spliced once; later uses (through
	// aliases) get a copy so no two tree positions share a node
	used map[*yaml.Node]bool
	// expanding holds the anchors currently being expanded
	expanding map[*yaml.Node]bool
}

func (c *converter) convert(n *yaml.Node) (any, error) {
	if n == nil {
		return nil, nil
	}
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return c.convert(n.Content[0])
	case yaml.AliasNode:
		if c.expanding[n.Alias] {
			return nil, &flaterrors.ParseError{ID: c.id, Line: n.Line, Message: "recursive alias *" + n.Value}
		}
		c.expanding[n.Alias] = true
		defer delete(c.expanding, n.Alias)
		return c.convert(n.Alias)
	case yaml.MappingNode:
		return c.convertMapping(n)
	case yaml.SequenceNode:
		seq := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := c.convert(item)
			if err != nil {
				return nil, err
			}
			seq = append(seq, v)
		}
		return seq, nil
	case yaml.ScalarNode:
		return c.convertScalar(n)
	}
	return nil, &flaterrors.ParseError{ID: c.id, Line: n.Line, Message: fmt.Sprintf("unsupported node kind %d", n.Kind)}
}

func (c *converter) convertScalar(n *yaml.Node) (any, error) {
	if n.Tag == IncludeTag {
		v, ok := c.includes[n]
		if !ok {
			return strings.TrimSpace(n.Value), nil
		}
		if c.used[n] {
			return tree.Copy(v), nil
		}
		c.used[n] = true
		return v, nil
	}
	// Local tags other than !include carry no meaning here.
	if strings.HasPrefix(n.Tag, "!") && !strings.HasPrefix(n.Tag, "!!") {
		return n.Value, nil
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, &flaterrors.ParseError{ID: c.id, Line: n.Line, Message: "invalid scalar", Cause: err}
	}
	return v, nil
}

func (c *converter) convertMapping(n *yaml.Node) (any, error) {
	m := tree.NewWithCapacity(len(n.Content) / 2)

	explicit := make(map[string]bool, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		if isMergeKey(n.Content[i]) {
			continue
		}
		key, err := c.key(n.Content[i])
		if err != nil {
			return nil, err
		}
		explicit[key] = true
	}

	for i := 0; i+1 < len(n.Content); i += 2 {
		kn, vn := n.Content[i], n.Content[i+1]
		if isMergeKey(kn) {
			if err := c.merge(m, vn, explicit); err != nil {
				return nil, err
			}
			continue
		}
		key, err := c.key(kn)
		if err != nil {
			return nil, err
		}
		v, err := c.convert(vn)
		if err != nil {
			return nil, err
		}
		m.Set(key, v)
	}
	return m, nil
}

// merge applies a "<<" value to m. Explicit keys of the mapping win, and
// earlier merge sources win over later ones.
func (c *converter) merge(m *tree.Map, vn *yaml.Node, explicit map[string]bool) error {
	sources := []*yaml.Node{vn}
	if vn.Kind == yaml.SequenceNode {
		sources = vn.Content
	}
	for _, sn := range sources {
		v, err := c.convert(sn)
		if err != nil {
			return err
		}
		src, ok := v.(*tree.Map)
		if !ok {
			return &flaterrors.ParseError{ID: c.id, Line: sn.Line, Message: "merge value is not a mapping"}
		}
		src.Range(func(k string, v any) bool {
			if !explicit[k] && !m.Has(k) {
				m.Set(k, v)
			}
			return true
		})
	}
	return nil
}

func (c *converter) key(n *yaml.Node) (string, error) {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	if n.Kind != yaml.ScalarNode {
		return "", &flaterrors.ParseError{ID: c.id, Line: n.Line, Message: "mapping keys must be scalars"}
	}
	return n.Value, nil
}

func isMergeKey(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!merge"
}
