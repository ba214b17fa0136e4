// Package label builds the text shown inside diagram nodes.
//
// [Lines] returns unescaped lines. Each renderer escapes and joins them in
// its own syntax: Mermaid with <br/>, DOT with newlines.
package label

import (
	"strconv"
	"strings"

	"github.com/matzehuels/spdx2mermaid/pkg/sbom"
)

// Options selects which attributes appear.
type Options struct {
	// Compact keeps only the header, name, version and license.
	Compact bool

	// ExcludeExternalRefs omits package external references.
	ExcludeExternalRefs bool
}

// Clip limits for long values.
const (
	summaryMax     = 60
	noteMax        = 60
	downloadMax    = 50
	copyrightMax   = 40
	commentMax     = 50
	creatorsMax    = 50
	namespaceMax   = 50
	fileNameMax    = 50
	refLocatorMax  = 40
	checksumDigits = 12
	maxChecksums   = 2
	maxRefs        = 2
)

// Clip shortens s to at most n runes, ending in "..." when cut.
func Clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

// Header returns the first label line, such as "[Package]" or
// "[Package - LIBRARY]".
func Header(el sbom.Element) string {
	if p, ok := el.(sbom.Package); ok && p.PrimaryPurpose != "" {
		return "[Package - " + p.PrimaryPurpose + "]"
	}
	return "[" + el.Kind().String() + "]"
}

// builder collects "Key: value" lines, skipping empty values.
type builder struct{ lines []string }

func (b *builder) add(key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		b.lines = append(b.lines, key+": "+value)
	}
}

func (b *builder) raw(line string) { b.lines = append(b.lines, line) }

// common holds the attributes every kind may carry.
type common struct {
	id, name, summary, version, license, note string
	download, supplier, originator            string
	filesAnalyzed                              *bool
	verification                               string
	checksums                                  []sbom.Checksum
	copyright, comment, homepage               string
}

// Lines returns the label of el, one attribute per line, in a fixed
// order per kind. Absent attributes are omitted.
func Lines(el sbom.Element, opts Options) []string {
	c := attributesOf(el)
	b := &builder{}
	b.raw(Header(el))
	if c.name != "" {
		b.add("Name", c.name)
	} else {
		b.add("ID", c.id)
	}
	if !opts.Compact {
		b.add("Summary", Clip(c.summary, summaryMax))
	}
	b.add("Version", c.version)
	b.add("License", c.license)
	if opts.Compact {
		return b.lines
	}

	b.add("License Note", Clip(c.note, noteMax))
	b.add("Download", Clip(c.download, downloadMax))
	b.add("Supplier", c.supplier)
	b.add("Originator", c.originator)
	if c.filesAnalyzed != nil {
		b.add("Files Analyzed", strconv.FormatBool(*c.filesAnalyzed))
	}
	b.add("Verification", c.verification)
	for i, sum := range c.checksums {
		if i == maxChecksums {
			break
		}
		if sum.Value == "" {
			continue
		}
		b.add(sum.Algorithm, firstRunes(sum.Value, checksumDigits)+"...")
	}
	b.add("Copyright", Clip(c.copyright, copyrightMax))
	b.add("Comment", Clip(c.comment, commentMax))
	b.add("Homepage", c.homepage)

	switch x := el.(type) {
	case sbom.Document:
		b.add("Created", x.Created)
		b.add("Creators", Clip(strings.Join(x.Creators, ", "), creatorsMax))
		b.add("Namespace", Clip(x.Namespace, namespaceMax))
		b.add("Data License", x.DataLicense)
	case sbom.Package:
		b.add("License Declared", x.LicenseDeclared)
		b.add("Package File", Clip(x.FileName, fileNameMax))
		if !opts.ExcludeExternalRefs {
			for i, ref := range x.ExternalRefs {
				if i == maxRefs {
					break
				}
				b.add(ref.Type, Clip(ref.Locator, refLocatorMax))
			}
		}
	case sbom.Snippet:
		b.add("From File", x.FileID)
		if !x.ByteRange.IsZero() {
			b.add("Bytes", rangeString(x.ByteRange))
		}
		if !x.LineRange.IsZero() {
			b.add("Lines", rangeString(x.LineRange))
		}
	}
	return b.lines
}

func attributesOf(el sbom.Element) common {
	switch x := el.(type) {
	case sbom.Document:
		return common{
			id:      sbom.DocumentID,
			name:    x.Name,
			version: x.SPDXVersion,
			comment: x.Comment,
		}
	case sbom.Package:
		return common{
			id:            x.ID,
			name:          x.Name,
			summary:       x.Summary,
			version:       x.Version,
			license:       firstNonEmpty(x.LicenseConcluded, x.LicenseDeclared),
			note:          x.LicenseComments,
			download:      x.DownloadLocation,
			supplier:      x.Supplier,
			originator:    x.Originator,
			filesAnalyzed: x.FilesAnalyzed,
			verification:  x.VerificationCode,
			checksums:     x.Checksums,
			copyright:     x.CopyrightText,
			comment:       x.Comment,
			homepage:      x.Homepage,
		}
	case sbom.File:
		return common{
			id:        x.ID,
			name:      x.Name,
			license:   firstNonEmpty(x.LicenseConcluded, strings.Join(x.LicenseInfo, " AND ")),
			note:      x.LicenseComments,
			checksums: x.Checksums,
			copyright: x.CopyrightText,
			comment:   x.Comment,
		}
	case sbom.Snippet:
		return common{
			id:        x.ID,
			name:      x.Name,
			license:   x.LicenseConcluded,
			note:      x.LicenseComments,
			copyright: x.CopyrightText,
			comment:   x.Comment,
		}
	}
	return common{id: el.ElementID()}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}

func rangeString(r sbom.Range) string {
	return strconv.Itoa(r.Start) + ":" + strconv.Itoa(r.End)
}
