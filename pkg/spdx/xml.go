package spdx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/matzehuels/spdx2mermaid/pkg/sbom"
)

// textKey holds the character data of an XML element that also carries
// attributes or children.
const textKey = "#text"

// xmlDecoder reads the plain XML serialization. Element names follow the
// JSON field names, repeated elements form lists.
type xmlDecoder struct{}

func (xmlDecoder) Format() Format { return FormatXML }

func (xmlDecoder) Decode(data []byte) (*sbom.Model, error) {
	root, err := decodeXMLTree(bytes.NewReader(trimPreamble(data)))
	if err != nil {
		return nil, err
	}
	return buildModel(root)
}

// xmlFrame is an element being assembled.
type xmlFrame struct {
	name     string
	children tree
	text     strings.Builder
}

// decodeXMLTree converts an XML document into a tree rooted at the
// document element's children.
func decodeXMLTree(r io.Reader) (tree, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = true

	var stack []*xmlFrame
	var root tree
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			f := &xmlFrame{name: t.Name.Local}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				if f.children == nil {
					f.children = make(tree)
				}
				f.children[a.Name.Local] = a.Value
			}
			stack = append(stack, f)
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		case xml.EndElement:
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			v := f.value()
			if len(stack) == 0 {
				root = asTree(v)
				if root == nil {
					root = make(tree)
				}
				continue
			}
			parent := stack[len(stack)-1]
			if parent.children == nil {
				parent.children = make(tree)
			}
			appendChild(parent.children, f.name, v)
		}
	}
	if root == nil {
		return nil, fmt.Errorf("xml: no document element")
	}
	return root, nil
}

func (f *xmlFrame) value() any {
	text := strings.TrimSpace(f.text.String())
	if f.children == nil {
		return text
	}
	if text != "" {
		f.children[textKey] = text
	}
	return f.children
}

// appendChild stores v under name, turning repeated names into lists.
func appendChild(t tree, name string, v any) {
	existing, ok := t[name]
	if !ok {
		t[name] = v
		return
	}
	if list, ok := existing.([]any); ok {
		t[name] = append(list, v)
		return
	}
	t[name] = []any{existing, v}
}
