// Package yaml turns a YAML document into an engine.TokenSource. Mapping
// order is preserved, anchors and aliases are resolved, and scalars are
// decoded with YAML 1.2 core tags (ints, floats, bools, null, timestamps).
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"

	eng "github.com/reoring/skema/internal/engine"
)

// maxAliasDepth bounds alias expansion so self-referencing documents fail
// instead of recursing forever.
const maxAliasDepth = 64

// NewBytes decodes the first document in b.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

// NewReader decodes the first document read from r.
func NewReader(r io.Reader) eng.TokenSource {
	var doc yaml.Node
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return eng.NewTreeSource(nil)
		}
		// yaml.v3 errors already carry the "yaml: " prefix.
		return eng.NewErrorSource(err)
	}
	v, err := toAny(&doc, 0)
	if err != nil {
		return eng.NewErrorSource(err)
	}
	return eng.NewTreeSource(v)
}

// toAny converts a yaml.Node into a value tree made of ordered maps, []any
// and decoded scalars.
func toAny(n *yaml.Node, aliasDepth int) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return toAny(n.Content[0], aliasDepth)
	case yaml.MappingNode:
		om := orderedmap.New[string, any]()
		for i := 0; i+1 < len(n.Content); i += 2 {
			kn, vn := n.Content[i], n.Content[i+1]
			if kn.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("yaml: line %d: mapping key must be a scalar", kn.Line)
			}
			v, err := toAny(vn, aliasDepth)
			if err != nil {
				return nil, err
			}
			om.Set(kn.Value, v)
		}
		return om, nil
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := toAny(c, aliasDepth)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.AliasNode:
		if aliasDepth >= maxAliasDepth || n.Alias == nil {
			return nil, fmt.Errorf("yaml: line %d: alias nesting too deep", n.Line)
		}
		return toAny(n.Alias, aliasDepth+1)
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("yaml: line %d: %w", n.Line, err)
		}
		return v, nil
	}
	return nil, fmt.Errorf("yaml: line %d: unsupported node kind %d", n.Line, n.Kind)
}
