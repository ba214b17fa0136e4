package spdx

import (
	"fmt"
	"strconv"

	yamlv3 "go.yaml.in/yaml/v3"

	"github.com/matzehuels/spdx2mermaid/pkg/sbom"
)

// yamlDecoder reads the YAML serialization, which mirrors the JSON field
// names one to one. Scalars are taken from the node tree so unquoted
// numbers such as a 1.10 version keep their source text.
type yamlDecoder struct{}

func (yamlDecoder) Format() Format { return FormatYAML }

func (yamlDecoder) Decode(data []byte) (*sbom.Model, error) {
	var doc yamlv3.Node
	if err := yamlv3.Unmarshal(trimPreamble(data), &doc); err != nil {
		return nil, err
	}
	v, err := yamlValue(&doc)
	if err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}
	switch x := v.(type) {
	case tree:
		return buildModel(x)
	case []any:
		return buildModel(tree{"@graph": x})
	}
	return nil, fmt.Errorf("yaml: top-level value must be a mapping, got %T", v)
}

// yamlValue converts a node into the tree form. Mapping keys are taken as
// strings; merge keys fold the referenced mappings in.
func yamlValue(n *yamlv3.Node) (any, error) {
	switch n.Kind {
	case yamlv3.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return yamlValue(n.Content[0])
	case yamlv3.AliasNode:
		return yamlValue(n.Alias)
	case yamlv3.SequenceNode:
		list := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := yamlValue(c)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case yamlv3.MappingNode:
		t := make(tree, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, val := n.Content[i], n.Content[i+1]
			v, err := yamlValue(val)
			if err != nil {
				return nil, err
			}
			if k.ShortTag() == "!!merge" {
				for _, m := range asList(v) {
					for mk, mv := range asTree(m) {
						if _, ok := t[mk]; !ok {
							t[mk] = mv
						}
					}
				}
				continue
			}
			t[k.Value] = v
		}
		return t, nil
	case yamlv3.ScalarNode:
		return yamlScalar(n)
	}
	return nil, fmt.Errorf("line %d: unsupported node kind %v", n.Line, n.Kind)
}

func yamlScalar(n *yamlv3.Node) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return b, nil
	case "!!int", "!!float":
		return numberText(n.Value), nil
	}
	return n.Value, nil
}

// numberText is a number kept in its source spelling.
type numberText string

func (n numberText) String() string { return string(n) }

func (n numberText) Int64() (int64, error) { return strconv.ParseInt(string(n), 0, 64) }

func (n numberText) Float64() (float64, error) { return strconv.ParseFloat(string(n), 64) }
