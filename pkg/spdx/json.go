package spdx

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/matzehuels/spdx2mermaid/pkg/sbom"
)

// json decodes numbers as json.Number, so an unquoted version such as
// 1.10 keeps its source text.
var json = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

// jsonDecoder reads SPDX 2.x JSON and SPDX 3.x JSON-LD.
type jsonDecoder struct{}

func (jsonDecoder) Format() Format { return FormatJSON }

func (jsonDecoder) Decode(data []byte) (*sbom.Model, error) {
	root, err := decodeJSONTree(trimPreamble(data))
	if err != nil {
		return nil, err
	}
	return buildModel(root)
}

// decodeJSONTree decodes a JSON object. A top-level array is taken as a
// bare JSON-LD graph.
func decodeJSONTree(data []byte) (tree, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case tree:
		return x, nil
	case []any:
		return tree{"@graph": x}, nil
	}
	return nil, fmt.Errorf("top-level value must be an object, got %T", v)
}
