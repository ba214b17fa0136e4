package io

import (
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/spdx2mermaid/pkg/sbom"
)

// ReadJSON decodes a model written by [WriteJSON].
//
// The "unresolved" list is informational and ignored: unresolved endpoints
// are derived from the relationships again.
//
// ReadJSON returns an error if the JSON is malformed, and an
// *errors.ModelError if two elements share an identifier. The returned
// model is independent of r. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*sbom.Model, error) {
	var data model
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	d := data.Document
	b := sbom.NewBuilder(sbom.Document{
		Name:        d.Name,
		SPDXVersion: d.SPDXVersion,
		Created:     d.Created,
		Creators:    d.Creators,
		Namespace:   d.Namespace,
		DataLicense: d.DataLicense,
		Comment:     d.Comment,
	})
	for _, a := range data.Aliases {
		if err := b.AddAlias(a); err != nil {
			return nil, fmt.Errorf("alias %s: %w", a, err)
		}
	}
	for _, p := range data.Packages {
		err := b.AddPackage(sbom.Package{
			ID:               p.ID,
			Name:             p.Name,
			Version:          p.Version,
			FileName:         p.FileName,
			DownloadLocation: p.DownloadLocation,
			Homepage:         p.Homepage,
			LicenseConcluded: p.LicenseConcluded,
			LicenseDeclared:  p.LicenseDeclared,
			LicenseComments:  p.LicenseComments,
			Supplier:         p.Supplier,
			Originator:       p.Originator,
			CopyrightText:    p.CopyrightText,
			Summary:          p.Summary,
			Description:      p.Description,
			Comment:          p.Comment,
			PrimaryPurpose:   p.PrimaryPurpose,
			FilesAnalyzed:    p.FilesAnalyzed,
			VerificationCode: p.VerificationCode,
			Checksums:        fromChecksums(p.Checksums),
			ExternalRefs:     fromRefs(p.ExternalRefs),
		})
		if err != nil {
			return nil, fmt.Errorf("package %s: %w", p.ID, err)
		}
	}
	for _, f := range data.Files {
		err := b.AddFile(sbom.File{
			ID:               f.ID,
			Name:             f.Name,
			LicenseConcluded: f.LicenseConcluded,
			LicenseInfo:      f.LicenseInfo,
			LicenseComments:  f.LicenseComments,
			CopyrightText:    f.CopyrightText,
			Comment:          f.Comment,
			Checksums:        fromChecksums(f.Checksums),
		})
		if err != nil {
			return nil, fmt.Errorf("file %s: %w", f.ID, err)
		}
	}
	for _, s := range data.Snippets {
		err := b.AddSnippet(sbom.Snippet{
			ID:               s.ID,
			Name:             s.Name,
			FileID:           s.FileID,
			LicenseConcluded: s.LicenseConcluded,
			LicenseComments:  s.LicenseComments,
			CopyrightText:    s.CopyrightText,
			Comment:          s.Comment,
			ByteRange:        fromSpan(s.ByteRange),
			LineRange:        fromSpan(s.LineRange),
		})
		if err != nil {
			return nil, fmt.Errorf("snippet %s: %w", s.ID, err)
		}
	}
	for _, r := range data.Relationships {
		b.AddRelationship(sbom.Relationship(r))
	}
	return b.Build(), nil
}

// ImportJSON reads a JSON file at path and returns the decoded model.
func ImportJSON(path string) (*sbom.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

func fromChecksums(in []checksum) []sbom.Checksum {
	var out []sbom.Checksum
	for _, c := range in {
		out = append(out, sbom.Checksum(c))
	}
	return out
}

func fromRefs(in []externalRef) []sbom.ExternalRef {
	var out []sbom.ExternalRef
	for _, r := range in {
		out = append(out, sbom.ExternalRef(r))
	}
	return out
}

func fromSpan(s *span) sbom.Range {
	if s == nil {
		return sbom.Range{}
	}
	return sbom.Range{Start: s.Start, End: s.End}
}
