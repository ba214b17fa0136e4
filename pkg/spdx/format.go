package spdx

import (
	"bytes"
	"path/filepath"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/matzehuels/spdx2mermaid/pkg/errors"
)

// Format names a serialization of an SPDX document.
type Format string

// Supported formats.
const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatXML      Format = "xml"
	FormatRDF      Format = "rdf"
	FormatTagValue Format = "tag-value"
)

// Formats lists the supported formats in sniffing order. RDF precedes XML
// because every RDF/XML document is also well-formed XML.
var Formats = []Format{FormatJSON, FormatRDF, FormatXML, FormatTagValue, FormatYAML}

// ParseFormat converts a user-supplied format name, accepting common aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "json-ld", "jsonld":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "xml":
		return FormatXML, nil
	case "rdf", "rdf/xml", "rdfxml":
		return FormatRDF, nil
	case "tag-value", "tagvalue", "tv", "spdx":
		return FormatTagValue, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported input format %q (must be one of: json, yaml, xml, rdf, tag-value)", s)
}

// extensionHints maps lower-case filename suffixes to the format they
// usually carry. Longer suffixes are listed first.
var extensionHints = []struct {
	suffix string
	format Format
}{
	{".rdf.xml", FormatRDF},
	{".spdx.json", FormatJSON},
	{".spdx.yaml", FormatYAML},
	{".spdx.yml", FormatYAML},
	{".spdx.xml", FormatXML},
	{".spdx.rdf", FormatRDF},
	{".json", FormatJSON},
	{".jsonld", FormatJSON},
	{".yaml", FormatYAML},
	{".yml", FormatYAML},
	{".xml", FormatXML},
	{".rdf", FormatRDF},
	{".owl", FormatRDF},
	{".spdx", FormatTagValue},
	{".tag", FormatTagValue},
	{".tv", FormatTagValue},
}

// FormatFromFilename returns the format suggested by a filename, or "" when
// the extension is not recognized.
func FormatFromFilename(name string) Format {
	lower := strings.ToLower(filepath.Base(name))
	for _, h := range extensionHints {
		if strings.HasSuffix(lower, h.suffix) {
			return h.format
		}
	}
	return ""
}

// Detect determines the serialization of data.
//
// Content sniffing decides. The filename hint is only a fast path: it is
// accepted when its format sniffs positively, and it is the fallback when
// no format sniffs positively, so a renamed file is still detected by its
// content. Detect fails with an *errors.FormatError when the content
// matches nothing and the hint is unusable.
func Detect(data []byte, hint string) (Format, error) {
	body := trimPreamble(data)
	if len(body) == 0 {
		return "", &errors.FormatError{Format: errors.FormatUnknown, Cause: errEmptyDocument}
	}

	hinted := FormatFromFilename(hint)
	if hinted != "" && sniff(hinted, body) {
		return hinted, nil
	}
	for _, f := range Formats {
		if f != hinted && sniff(f, body) {
			return f, nil
		}
	}
	if hinted != "" {
		return hinted, nil
	}
	return "", &errors.FormatError{Format: errors.FormatUnknown}
}

func sniff(f Format, body []byte) bool {
	switch f {
	case FormatJSON:
		return body[0] == '{' || body[0] == '['
	case FormatRDF:
		return body[0] == '<' && isRDF(body)
	case FormatXML:
		return body[0] == '<' && !isRDF(body)
	case FormatTagValue:
		return isTagValue(body)
	case FormatYAML:
		// JSON and tag-value text also parse as YAML mappings.
		switch body[0] {
		case '{', '[', '<':
			return false
		}
		return !isTagValue(body) && isYAMLMapping(body)
	}
	return false
}

var (
	utf8BOM = []byte{0xEF, 0xBB, 0xBF}

	rdfMarkers = [][]byte{
		[]byte("<rdf:RDF"),
		[]byte("http://www.w3.org/1999/02/22-rdf-syntax-ns#"),
	}

	// tagValueOnly lists tags that appear in tag-value documents but never
	// as keys of the JSON/YAML serializations, which use lower camel case.
	tagValueOnly = map[string]bool{
		"SPDXVersion":       true,
		"DataLicense":       true,
		"DocumentName":      true,
		"DocumentNamespace": true,
		"Creator":           true,
		"Created":           true,
		"PackageName":       true,
		"FileName":          true,
		"SnippetSPDXID":     true,
		"Relationship":      true,
	}
)

// sniffWindow bounds how much of a document the sniffers inspect.
const sniffWindow = 64 * 1024

func trimPreamble(data []byte) []byte {
	data = bytes.TrimPrefix(data, utf8BOM)
	return bytes.TrimLeft(data, " \t\r\n")
}

func head(body []byte) []byte {
	if len(body) > sniffWindow {
		return body[:sniffWindow]
	}
	return body
}

func isRDF(body []byte) bool {
	h := head(body)
	for _, m := range rdfMarkers {
		if bytes.Contains(h, m) {
			return true
		}
	}
	return false
}

// isTagValue reports whether the first significant line is a "Tag: value"
// line, as the decoder parses it, and a tag specific to the tag-value
// serialization appears.
func isTagValue(body []byte) bool {
	first := true
	for line := range strings.Lines(string(head(body))) {
		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m := tvLine.FindStringSubmatch(line)
		if first {
			if m == nil {
				return false
			}
			first = false
		}
		if m != nil && tagValueOnly[m[1]] {
			return true
		}
	}
	return false
}

func isYAMLMapping(body []byte) bool {
	js, err := yaml.YAMLToJSON(body)
	if err != nil {
		return false
	}
	js = bytes.TrimSpace(js)
	return len(js) > 0 && js[0] == '{'
}
