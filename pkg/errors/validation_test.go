package errors

import (
	"strings"
	"testing"
)

func TestValidateFilename(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty", "", false},
		{"json", "sbom.spdx.json", false},
		{"tag-value", "example.spdx", false},
		{"rdf", "doc.rdf.xml", false},

		{"too long", strings.Repeat("a", 300), true},
		{"slash", "path/to/file.json", true},
		{"backslash", "path\\file.json", true},
		{"dot", ".", true},
		{"dotdot", "..", true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilename(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFilename(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateDiagramID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"canonical", "6ba7b810-9dad-11d1-80b4-00c04fd430c8", false},
		{"upper case", "6BA7B810-9DAD-11D1-80B4-00C04FD430C8", false},

		{"empty", "", true},
		{"garbage", "not-a-uuid", true},
		{"urn form", "urn:uuid:6ba7b810-9dad-11d1-80b4-00c04fd430c8", true},
		{"braced", "{6ba7b810-9dad-11d1-80b4-00c04fd430c8}", true},
		{"traversal", "../../etc/passwd", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDiagramID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDiagramID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
