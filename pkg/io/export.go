package io

import (
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/matzehuels/spdx2mermaid/pkg/sbom"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type model struct {
	Document      document       `json:"document"`
	Aliases       []string       `json:"aliases,omitempty"`
	Packages      []pkg          `json:"packages"`
	Files         []file         `json:"files"`
	Snippets      []snippet      `json:"snippets"`
	Relationships []relationship `json:"relationships"`
	Unresolved    []string       `json:"unresolved,omitempty"`
}

type document struct {
	Name        string   `json:"name,omitempty"`
	SPDXVersion string   `json:"spdxVersion,omitempty"`
	Created     string   `json:"created,omitempty"`
	Creators    []string `json:"creators,omitempty"`
	Namespace   string   `json:"namespace,omitempty"`
	DataLicense string   `json:"dataLicense,omitempty"`
	Comment     string   `json:"comment,omitempty"`
}

type checksum struct {
	Algorithm string `json:"algorithm"`
	Value     string `json:"value"`
}

type externalRef struct {
	Category string `json:"category,omitempty"`
	Type     string `json:"type,omitempty"`
	Locator  string `json:"locator"`
}

type pkg struct {
	ID               string        `json:"id"`
	Name             string        `json:"name,omitempty"`
	Version          string        `json:"version,omitempty"`
	FileName         string        `json:"fileName,omitempty"`
	DownloadLocation string        `json:"downloadLocation,omitempty"`
	Homepage         string        `json:"homepage,omitempty"`
	LicenseConcluded string        `json:"licenseConcluded,omitempty"`
	LicenseDeclared  string        `json:"licenseDeclared,omitempty"`
	LicenseComments  string        `json:"licenseComments,omitempty"`
	Supplier         string        `json:"supplier,omitempty"`
	Originator       string        `json:"originator,omitempty"`
	CopyrightText    string        `json:"copyrightText,omitempty"`
	Summary          string        `json:"summary,omitempty"`
	Description      string        `json:"description,omitempty"`
	Comment          string        `json:"comment,omitempty"`
	PrimaryPurpose   string        `json:"primaryPurpose,omitempty"`
	FilesAnalyzed    *bool         `json:"filesAnalyzed,omitempty"`
	VerificationCode string        `json:"verificationCode,omitempty"`
	Checksums        []checksum    `json:"checksums,omitempty"`
	ExternalRefs     []externalRef `json:"externalRefs,omitempty"`
}

type file struct {
	ID               string     `json:"id"`
	Name             string     `json:"name,omitempty"`
	LicenseConcluded string     `json:"licenseConcluded,omitempty"`
	LicenseInfo      []string   `json:"licenseInfo,omitempty"`
	LicenseComments  string     `json:"licenseComments,omitempty"`
	CopyrightText    string     `json:"copyrightText,omitempty"`
	Comment          string     `json:"comment,omitempty"`
	Checksums        []checksum `json:"checksums,omitempty"`
}

type span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type snippet struct {
	ID               string `json:"id"`
	Name             string `json:"name,omitempty"`
	FileID           string `json:"fileId,omitempty"`
	LicenseConcluded string `json:"licenseConcluded,omitempty"`
	LicenseComments  string `json:"licenseComments,omitempty"`
	CopyrightText    string `json:"copyrightText,omitempty"`
	Comment          string `json:"comment,omitempty"`
	ByteRange        *span  `json:"byteRange,omitempty"`
	LineRange        *span  `json:"lineRange,omitempty"`
}

type relationship struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Type    string `json:"type"`
	Comment string `json:"comment,omitempty"`
}

// WriteJSON encodes a model as JSON and writes it to w.
// The output includes every element and relationship plus the list of
// unresolved endpoints. It can be re-imported with [ReadJSON].
func WriteJSON(m *sbom.Model, w io.Writer) error {
	d := m.Document()
	out := model{
		Document: document{
			Name:        d.Name,
			SPDXVersion: d.SPDXVersion,
			Created:     d.Created,
			Creators:    d.Creators,
			Namespace:   d.Namespace,
			DataLicense: d.DataLicense,
			Comment:     d.Comment,
		},
		Aliases:       m.Aliases(),
		Packages:      make([]pkg, 0, m.Count(sbom.KindPackage)),
		Files:         make([]file, 0, m.Count(sbom.KindFile)),
		Snippets:      make([]snippet, 0, m.Count(sbom.KindSnippet)),
		Relationships: make([]relationship, 0, m.RelationshipCount()),
		Unresolved:    m.Unresolved(),
	}

	for _, p := range m.Packages() {
		out.Packages = append(out.Packages, pkg{
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
			Checksums:        toChecksums(p.Checksums),
			ExternalRefs:     toRefs(p.ExternalRefs),
		})
	}
	for _, f := range m.Files() {
		out.Files = append(out.Files, file{
			ID:               f.ID,
			Name:             f.Name,
			LicenseConcluded: f.LicenseConcluded,
			LicenseInfo:      f.LicenseInfo,
			LicenseComments:  f.LicenseComments,
			CopyrightText:    f.CopyrightText,
			Comment:          f.Comment,
			Checksums:        toChecksums(f.Checksums),
		})
	}
	for _, s := range m.Snippets() {
		out.Snippets = append(out.Snippets, snippet{
			ID:               s.ID,
			Name:             s.Name,
			FileID:           s.FileID,
			LicenseConcluded: s.LicenseConcluded,
			LicenseComments:  s.LicenseComments,
			CopyrightText:    s.CopyrightText,
			Comment:          s.Comment,
			ByteRange:        toSpan(s.ByteRange),
			LineRange:        toSpan(s.LineRange),
		})
	}
	for _, r := range m.Relationships() {
		out.Relationships = append(out.Relationships, relationship(r))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a model to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(m *sbom.Model, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(m, f)
}

func toChecksums(in []sbom.Checksum) []checksum {
	var out []checksum
	for _, c := range in {
		out = append(out, checksum(c))
	}
	return out
}

func toRefs(in []sbom.ExternalRef) []externalRef {
	var out []externalRef
	for _, r := range in {
		out = append(out, externalRef(r))
	}
	return out
}

func toSpan(r sbom.Range) *span {
	if r.IsZero() {
		return nil
	}
	return &span{Start: r.Start, End: r.End}
}
