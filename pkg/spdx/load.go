package spdx

import (
	stderrors "errors"

	"github.com/matzehuels/spdx2mermaid/pkg/errors"
	"github.com/matzehuels/spdx2mermaid/pkg/sbom"
)

var errEmptyDocument = stderrors.New("empty document")

// Decoder turns one serialization into a model.
type Decoder interface {
	// Format returns the serialization this decoder handles.
	Format() Format

	// Decode parses data. Syntax errors are returned as-is; Load wraps
	// them in an *errors.FormatError. Duplicate identifiers are returned
	// as *errors.ModelError.
	Decode(data []byte) (*sbom.Model, error)
}

var decoders = map[Format]Decoder{
	FormatJSON:     jsonDecoder{},
	FormatYAML:     yamlDecoder{},
	FormatXML:      xmlDecoder{},
	FormatRDF:      rdfDecoder{},
	FormatTagValue: tagValueDecoder{},
}

// DecoderFor returns the decoder for f.
func DecoderFor(f Format) (Decoder, bool) {
	d, ok := decoders[f]
	return d, ok
}

// Load detects the serialization of data and decodes it. hint is an
// optional filename used as a detection fast path.
//
// It fails with *errors.FormatError when the content is not a supported
// serialization or cannot be parsed, and with *errors.ModelError when the
// document declares the same identifier twice.
func Load(data []byte, hint string) (*sbom.Model, Format, error) {
	f, err := Detect(data, hint)
	if err != nil {
		return nil, "", err
	}
	m, err := LoadFormat(data, f)
	return m, f, err
}

// LoadFormat decodes data as format f without detection.
func LoadFormat(data []byte, f Format) (*sbom.Model, error) {
	d, ok := decoders[f]
	if !ok {
		return nil, &errors.FormatError{Format: errors.FormatUnknown, Cause: stderrors.New("unsupported format " + string(f))}
	}
	if len(trimPreamble(data)) == 0 {
		return nil, &errors.FormatError{Format: string(f), Cause: errEmptyDocument}
	}
	m, err := d.Decode(data)
	if err != nil {
		var me *errors.ModelError
		var fe *errors.FormatError
		if stderrors.As(err, &me) || stderrors.As(err, &fe) {
			return nil, err
		}
		return nil, &errors.FormatError{Format: string(f), Cause: err}
	}
	return m, nil
}
