package engine

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

// YAMLReader decodes a multi-document YAML stream through yaml.Node so that
// mapping order is kept and duplicate keys are reported with positions.
type YAMLReader struct {
	dec *yaml.Decoder
}

// NewYAMLReader constructs a YAMLReader.
func NewYAMLReader(r io.Reader) *YAMLReader {
	return &YAMLReader{dec: yaml.NewDecoder(r)}
}

// Next returns the next document as an ordered value tree.
// It returns (nil, io.EOF) when the stream is exhausted.
func (y *YAMLReader) Next() (any, error) {
	var root yaml.Node
	if err := y.dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, err
	}
	if len(root.Content) == 0 {
		return nil, nil
	}
	return fromYAMLNode(root.Content[0])
}

func fromYAMLNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return fromYAMLNode(n.Content[0])
	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, nil
		}
		return fromYAMLNode(n.Alias)
	case yaml.MappingNode:
		return yamlMapping(n)
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := fromYAMLNode(c)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.ScalarNode:
		return yamlScalar(n), nil
	default:
		return nil, nil
	}
}

// yamlMapping keeps explicit keys in source order and appends keys brought in
// by merge keys (<<) that are not set explicitly. Among several merged
// mappings the earlier one wins.
func yamlMapping(n *yaml.Node) (any, error) {
	obj := make(Object, 0, len(n.Content)/2)
	first := make(map[string][2]int, len(n.Content)/2)
	var merges []*yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := n.Content[i]
		if k.Kind == yaml.ScalarNode && k.ShortTag() == "!!merge" {
			merges = append(merges, n.Content[i+1])
			continue
		}
		key := k.Value
		if pos, dup := first[key]; dup {
			return nil, &DuplicateKeyError{Key: key, FirstLine: pos[0], FirstCol: pos[1], Line: k.Line, Col: k.Column}
		}
		first[key] = [2]int{k.Line, k.Column}
		val, err := fromYAMLNode(n.Content[i+1])
		if err != nil {
			return nil, err
		}
		obj = append(obj, Member{Key: key, Value: val})
	}
	for _, m := range merges {
		srcs, err := mergeSources(m)
		if err != nil {
			return nil, err
		}
		for _, src := range srcs {
			v, err := fromYAMLNode(src)
			if err != nil {
				return nil, err
			}
			for _, mem := range v.(Object) {
				if _, set := first[mem.Key]; set {
					continue
				}
				first[mem.Key] = [2]int{src.Line, src.Column}
				obj = append(obj, mem)
			}
		}
	}
	return obj, nil
}

func mergeSources(m *yaml.Node) ([]*yaml.Node, error) {
	deref := func(n *yaml.Node) *yaml.Node {
		for n != nil && n.Kind == yaml.AliasNode {
			n = n.Alias
		}
		return n
	}
	bad := fmt.Errorf("yaml: line %d: merge value must be a mapping or a sequence of mappings", m.Line)
	switch t := deref(m); {
	case t == nil:
		return nil, bad
	case t.Kind == yaml.MappingNode:
		return []*yaml.Node{t}, nil
	case t.Kind == yaml.SequenceNode:
		out := make([]*yaml.Node, 0, len(t.Content))
		for _, c := range t.Content {
			mc := deref(c)
			if mc == nil || mc.Kind != yaml.MappingNode {
				return nil, bad
			}
			out = append(out, mc)
		}
		return out, nil
	default:
		return nil, bad
	}
}

func yamlScalar(n *yaml.Node) any {
	switch n.ShortTag() {
	case "!!null":
		return nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err == nil {
			return b
		}
		return n.Value
	case "!!int":
		// int64 avoids overflow surprises; callers coerce later
		if i, err := strconv.ParseInt(n.Value, 0, 64); err == nil {
			return i
		}
		return n.Value
	case "!!float":
		var f float64
		if err := n.Decode(&f); err == nil {
			return f
		}
		return n.Value
	default:
		return n.Value
	}
}
