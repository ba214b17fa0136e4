package spdx

import (
	"bytes"
	"cmp"
	"slices"
	"strings"

	spdxrdf "github.com/spdx/tools-golang/rdf"
	"github.com/spdx/tools-golang/spdx"
	"github.com/spdx/tools-golang/spdx/v2/common"

	"github.com/matzehuels/spdx2mermaid/pkg/sbom"
)

// rdfDecoder reads RDF/XML through the tools-golang RDF reader and
// rewrites the result into the JSON field layout.
type rdfDecoder struct{}

func (rdfDecoder) Format() Format { return FormatRDF }

func (rdfDecoder) Decode(data []byte) (*sbom.Model, error) {
	doc, err := spdxrdf.Read(bytes.NewReader(trimPreamble(data)))
	if err != nil {
		return nil, err
	}
	return buildModel(rdfTree(doc))
}

const refPrefix = "SPDXRef-"

func elementID(id common.ElementID) string {
	if id == "" {
		return ""
	}
	s := string(id)
	if strings.HasPrefix(s, refPrefix) {
		return s
	}
	return refPrefix + s
}

func docElementID(id common.DocElementID) string {
	switch {
	case id.SpecialID != "":
		return id.SpecialID
	case id.DocumentRefID != "":
		return "DocumentRef-" + strings.TrimPrefix(string(id.DocumentRefID), "DocumentRef-") + ":" + elementID(id.ElementRefID)
	}
	return elementID(id.ElementRefID)
}

func rdfTree(doc *spdx.Document) tree {
	root := tree{
		"spdxVersion":       doc.SPDXVersion,
		"dataLicense":       doc.DataLicense,
		"SPDXID":            elementID(doc.SPDXIdentifier),
		"name":              doc.DocumentName,
		"documentNamespace": doc.DocumentNamespace,
		"comment":           doc.DocumentComment,
	}
	if ci := doc.CreationInfo; ci != nil {
		var names []string
		for _, c := range ci.Creators {
			names = append(names, agentString(c.CreatorType, c.Creator))
		}
		slices.Sort(names)
		var creators []any
		for _, n := range names {
			creators = append(creators, n)
		}
		root["creationInfo"] = tree{"created": ci.Created, "creators": creators}
	}

	seenSnippets := make(map[string]bool)
	var snippets []any
	addSnippet := func(sn *spdx.Snippet) {
		id := elementID(sn.SnippetSPDXIdentifier)
		if id != "" && seenSnippets[id] {
			return
		}
		seenSnippets[id] = true
		snippets = append(snippets, rdfSnippet(sn))
	}

	seenFiles := make(map[string]bool)
	var files []any
	addFile := func(f *spdx.File) string {
		id := elementID(f.FileSPDXIdentifier)
		if id != "" && seenFiles[id] {
			return id
		}
		seenFiles[id] = true
		files = append(files, rdfFile(f))
		// The RDF reader attaches snippets to their file.
		for _, sn := range f.Snippets {
			if sn != nil {
				addSnippet(sn)
			}
		}
		return id
	}

	var packages []any
	for _, p := range doc.Packages {
		if p == nil {
			continue
		}
		t := rdfPackage(p)
		var hasFiles []any
		for _, f := range sortedFiles(p.Files) {
			if id := addFile(f); id != "" {
				hasFiles = append(hasFiles, id)
			}
		}
		if hasFiles != nil {
			t["hasFiles"] = hasFiles
		}
		packages = append(packages, t)
	}
	for _, f := range sortedFiles(doc.Files) {
		addFile(f)
	}
	sortByID(packages)
	sortByID(files)

	for i := range doc.Snippets {
		addSnippet(&doc.Snippets[i])
	}
	sortByID(snippets)

	var rels []any
	for _, r := range doc.Relationships {
		if r == nil {
			continue
		}
		rels = append(rels, tree{
			"spdxElementId":      docElementID(r.RefA),
			"relatedSpdxElement": docElementID(r.RefB),
			"relationshipType":   camelToUpperSnake(r.Relationship),
			"comment":            r.RelationshipComment,
		})
	}
	slices.SortStableFunc(rels, func(a, b any) int {
		x, y := asTree(a), asTree(b)
		for _, k := range []string{"spdxElementId", "relationshipType", "relatedSpdxElement", "comment"} {
			if c := strings.Compare(str(x[k]), str(y[k])); c != 0 {
				return c
			}
		}
		return 0
	})

	root["packages"] = packages
	root["files"] = files
	root["snippets"] = snippets
	root["relationships"] = rels
	return root
}

// The RDF reader indexes triples through maps, so element and list order
// differs between reads of the same document. The helpers below restore a
// stable order.

func sortByID(list []any) {
	slices.SortStableFunc(list, func(a, b any) int {
		return strings.Compare(str(asTree(a)["SPDXID"]), str(asTree(b)["SPDXID"]))
	})
}

func sortedFiles(files []*spdx.File) []*spdx.File {
	out := slices.DeleteFunc(slices.Clone(files), func(f *spdx.File) bool { return f == nil })
	slices.SortStableFunc(out, func(a, b *spdx.File) int {
		return cmp.Compare(a.FileSPDXIdentifier, b.FileSPDXIdentifier)
	})
	return out
}

// referencesNS prefixes the listed external reference types in RDF.
const referencesNS = "http://spdx.org/rdf/references/"

func rdfPackage(p *spdx.Package) tree {
	t := tree{
		"SPDXID":                elementID(p.PackageSPDXIdentifier),
		"name":                  p.PackageName,
		"versionInfo":           p.PackageVersion,
		"packageFileName":       p.PackageFileName,
		"downloadLocation":      p.PackageDownloadLocation,
		"homepage":              p.PackageHomePage,
		"licenseConcluded":      p.PackageLicenseConcluded,
		"licenseDeclared":       p.PackageLicenseDeclared,
		"licenseComments":       p.PackageLicenseComments,
		"copyrightText":         p.PackageCopyrightText,
		"summary":               p.PackageSummary,
		"description":           p.PackageDescription,
		"comment":               p.PackageComment,
		"primaryPackagePurpose": p.PrimaryPackagePurpose,
		"checksums":             rdfChecksums(p.PackageChecksums),
	}
	if p.IsFilesAnalyzedTagPresent {
		t["filesAnalyzed"] = p.FilesAnalyzed
	}
	if s := p.PackageSupplier; s != nil {
		t["supplier"] = agentString(s.SupplierType, s.Supplier)
	}
	if o := p.PackageOriginator; o != nil {
		t["originator"] = agentString(o.OriginatorType, o.Originator)
	}
	extRefs := slices.DeleteFunc(slices.Clone(p.PackageExternalReferences), func(r *spdx.PackageExternalReference) bool { return r == nil })
	slices.SortStableFunc(extRefs, func(a, b *spdx.PackageExternalReference) int {
		return cmp.Or(
			strings.Compare(a.Category, b.Category),
			strings.Compare(a.RefType, b.RefType),
			strings.Compare(a.Locator, b.Locator),
		)
	})
	var refs []any
	for _, r := range extRefs {
		refs = append(refs, tree{
			"referenceCategory": r.Category,
			"referenceType":     strings.TrimPrefix(r.RefType, referencesNS),
			"referenceLocator":  r.Locator,
		})
	}
	t["externalRefs"] = refs
	return t
}

// agentString formats a supplier or originator the way the JSON
// serialization spells it.
func agentString(typ, name string) string {
	if typ == "" {
		return name
	}
	return typ + ": " + name
}

func rdfFile(f *spdx.File) tree {
	var info []any
	for _, l := range slices.Sorted(slices.Values(f.LicenseInfoInFiles)) {
		info = append(info, l)
	}
	return tree{
		"SPDXID":             elementID(f.FileSPDXIdentifier),
		"fileName":           f.FileName,
		"licenseConcluded":   f.LicenseConcluded,
		"licenseInfoInFiles": info,
		"licenseComments":    f.LicenseComments,
		"copyrightText":      f.FileCopyrightText,
		"comment":            f.FileComment,
		"checksums":          rdfChecksums(f.Checksums),
	}
}

func rdfSnippet(s *spdx.Snippet) tree {
	var ranges []any
	for _, r := range s.Ranges {
		key := "offset"
		start, end := r.StartPointer.Offset, r.EndPointer.Offset
		if start == 0 && end == 0 {
			key = "lineNumber"
			start, end = r.StartPointer.LineNumber, r.EndPointer.LineNumber
		}
		ranges = append(ranges, tree{
			"startPointer": tree{key: float64(start)},
			"endPointer":   tree{key: float64(end)},
		})
	}
	return tree{
		"SPDXID":           elementID(s.SnippetSPDXIdentifier),
		"name":             s.SnippetName,
		"snippetFromFile":  elementID(s.SnippetFromFileSPDXIdentifier),
		"licenseConcluded": s.SnippetLicenseConcluded,
		"licenseComments":  s.SnippetLicenseComments,
		"copyrightText":    s.SnippetCopyrightText,
		"comment":          s.SnippetComment,
		"ranges":           ranges,
	}
}

func rdfChecksums(sums []common.Checksum) []any {
	sums = slices.Clone(sums)
	slices.SortStableFunc(sums, func(a, b common.Checksum) int {
		return cmp.Or(cmp.Compare(a.Algorithm, b.Algorithm), strings.Compare(a.Value, b.Value))
	})
	var out []any
	for _, c := range sums {
		out = append(out, tree{"algorithm": string(c.Algorithm), "checksumValue": c.Value})
	}
	return out
}
