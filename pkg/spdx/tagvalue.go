package spdx

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/matzehuels/spdx2mermaid/pkg/sbom"
)

// tagValueDecoder reads the line-oriented "Tag: value" serialization.
// The lines are rewritten into the JSON field layout and normalized by the
// same code as the JSON decoder.
type tagValueDecoder struct{}

func (tagValueDecoder) Format() Format { return FormatTagValue }

func (tagValueDecoder) Decode(data []byte) (*sbom.Model, error) {
	root, err := parseTagValue(string(trimPreamble(data)))
	if err != nil {
		return nil, err
	}
	return buildModel(root)
}

var tvLine = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9]*):\s?(.*)$`)

const (
	textOpen  = "<text>"
	textClose = "</text>"
)

type tvSection int

const (
	tvDocument tvSection = iota
	tvPackage
	tvFile
	tvSnippet
	tvOther
)

// tvParser accumulates tag-value pairs into a tree.
type tvParser struct {
	root    tree
	section tvSection
	cur     tree
	pkg     tree
	lastRel tree
}

func parseTagValue(src string) (tree, error) {
	p := &tvParser{root: make(tree), section: tvDocument}
	p.cur = p.root

	lineNo := 0
	var openTag string
	var openLine int
	var text strings.Builder
	for line := range strings.Lines(src) {
		lineNo++
		line = strings.TrimRight(line, "\r\n")

		if openTag != "" {
			if i := strings.Index(line, textClose); i >= 0 {
				text.WriteString(line[:i])
				p.apply(openTag, text.String())
				openTag = ""
				text.Reset()
				continue
			}
			text.WriteString(line)
			text.WriteByte('\n')
			continue
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		m := tvLine.FindStringSubmatch(trimmed)
		if m == nil {
			return nil, fmt.Errorf("line %d: expected \"Tag: value\", got %q", lineNo, clip(trimmed, 40))
		}
		tag, value := m[1], strings.TrimSpace(m[2])
		if rest, ok := strings.CutPrefix(value, textOpen); ok {
			if body, _, closed := strings.Cut(rest, textClose); closed {
				p.apply(tag, body)
				continue
			}
			openTag, openLine = tag, lineNo
			text.WriteString(rest)
			text.WriteByte('\n')
			continue
		}
		p.apply(tag, value)
	}
	if openTag != "" {
		return nil, fmt.Errorf("line %d: unterminated %s for %s", openLine, textOpen, openTag)
	}
	return p.root, nil
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func (p *tvParser) apply(tag, value string) {
	value = strings.TrimSpace(value)
	switch tag {
	case "PackageName":
		p.begin(tvPackage, "packages", "name", value)
		p.pkg = p.cur
		return
	case "FileName":
		p.begin(tvFile, "files", "fileName", value)
		return
	case "SnippetSPDXID":
		p.begin(tvSnippet, "snippets", "SPDXID", value)
		return
	case "LicenseID", "Annotator", "Reviewer":
		p.section = tvOther
		p.cur = nil
		return
	case "Relationship":
		fields := strings.Fields(value)
		if len(fields) < 3 {
			return
		}
		p.lastRel = tree{
			"spdxElementId":      fields[0],
			"relationshipType":   fields[1],
			"relatedSpdxElement": fields[2],
		}
		appendList(p.root, "relationships", p.lastRel)
		return
	case "RelationshipComment":
		if p.lastRel != nil {
			p.lastRel["comment"] = value
		}
		return
	}

	switch p.section {
	case tvDocument:
		p.document(tag, value)
	case tvPackage:
		p.packageTag(tag, value)
	case tvFile:
		p.fileTag(tag, value)
	case tvSnippet:
		p.snippetTag(tag, value)
	}
}

// begin opens a new element section.
func (p *tvParser) begin(s tvSection, list, key, value string) {
	p.section = s
	p.cur = tree{key: value}
	appendList(p.root, list, p.cur)
}

// appendList always stores a list, even for a single element.
func appendList(t tree, name string, v any) {
	list, _ := t[name].([]any)
	t[name] = append(list, v)
}

var tvDocumentKeys = map[string]string{
	"SPDXVersion":       "spdxVersion",
	"DataLicense":       "dataLicense",
	"SPDXID":            "SPDXID",
	"DocumentName":      "name",
	"DocumentNamespace": "documentNamespace",
	"DocumentComment":   "comment",
}

func (p *tvParser) document(tag, value string) {
	switch tag {
	case "Creator":
		appendList(p.creationInfo(), "creators", value)
	case "Created":
		p.creationInfo()["created"] = value
	default:
		if key, ok := tvDocumentKeys[tag]; ok {
			p.root[key] = value
		}
	}
}

func (p *tvParser) creationInfo() tree {
	ci := asTree(p.root["creationInfo"])
	if ci == nil {
		ci = make(tree)
		p.root["creationInfo"] = ci
	}
	return ci
}

var tvPackageKeys = map[string]string{
	"SPDXID":                  "SPDXID",
	"PackageVersion":          "versionInfo",
	"PackageFileName":         "packageFileName",
	"PackageSupplier":         "supplier",
	"PackageOriginator":       "originator",
	"PackageDownloadLocation": "downloadLocation",
	"FilesAnalyzed":           "filesAnalyzed",
	"PackageHomePage":         "homepage",
	"PackageLicenseConcluded": "licenseConcluded",
	"PackageLicenseDeclared":  "licenseDeclared",
	"PackageLicenseComments":  "licenseComments",
	"PackageCopyrightText":    "copyrightText",
	"PackageSummary":          "summary",
	"PackageDescription":      "description",
	"PackageComment":          "comment",
	"PrimaryPackagePurpose":   "primaryPackagePurpose",
}

func (p *tvParser) packageTag(tag, value string) {
	switch tag {
	case "PackageChecksum":
		if c := tvChecksum(value); c != nil {
			appendList(p.cur, "checksums", c)
		}
	case "PackageVerificationCode":
		code, _, _ := strings.Cut(value, " ")
		p.cur["packageVerificationCode"] = tree{"packageVerificationCodeValue": code}
	case "ExternalRef":
		fields := strings.Fields(value)
		if len(fields) < 3 {
			return
		}
		appendList(p.cur, "externalRefs", tree{
			"referenceCategory": fields[0],
			"referenceType":     fields[1],
			"referenceLocator":  fields[2],
		})
	default:
		if key, ok := tvPackageKeys[tag]; ok {
			p.cur[key] = value
		}
	}
}

var tvFileKeys = map[string]string{
	"LicenseConcluded":  "licenseConcluded",
	"LicenseComments":   "licenseComments",
	"FileCopyrightText": "copyrightText",
	"FileComment":       "comment",
}

func (p *tvParser) fileTag(tag, value string) {
	switch tag {
	case "SPDXID":
		p.cur["SPDXID"] = value
		// Files listed after a package belong to it.
		if p.pkg != nil {
			appendList(p.pkg, "hasFiles", value)
		}
	case "FileChecksum":
		if c := tvChecksum(value); c != nil {
			appendList(p.cur, "checksums", c)
		}
	case "LicenseInfoInFile":
		appendList(p.cur, "licenseInfoInFiles", value)
	default:
		if key, ok := tvFileKeys[tag]; ok {
			p.cur[key] = value
		}
	}
}

var tvSnippetKeys = map[string]string{
	"SnippetFromFileSPDXID":   "snippetFromFile",
	"SnippetLicenseConcluded": "licenseConcluded",
	"SnippetLicenseComments":  "licenseComments",
	"SnippetCopyrightText":    "copyrightText",
	"SnippetComment":          "comment",
	"SnippetName":             "name",
}

func (p *tvParser) snippetTag(tag, value string) {
	switch tag {
	case "SnippetByteRange":
		p.snippetRange("offset", value)
	case "SnippetLineRange":
		p.snippetRange("lineNumber", value)
	default:
		if key, ok := tvSnippetKeys[tag]; ok {
			p.cur[key] = value
		}
	}
}

func (p *tvParser) snippetRange(key, value string) {
	start, end, ok := strings.Cut(value, ":")
	if !ok {
		return
	}
	appendList(p.cur, "ranges", tree{
		"startPointer": tree{key: strings.TrimSpace(start)},
		"endPointer":   tree{key: strings.TrimSpace(end)},
	})
}

// tvChecksum parses "SHA1: d6a770ba38583ed4bb4525bd96e50461655d2758".
func tvChecksum(value string) tree {
	algo, sum, ok := strings.Cut(value, ":")
	if !ok {
		return nil
	}
	return tree{"algorithm": strings.TrimSpace(algo), "checksumValue": strings.TrimSpace(sum)}
}
