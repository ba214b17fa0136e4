package spdx

import (
	"strings"

	"github.com/matzehuels/spdx2mermaid/pkg/sbom"
)

// buildModel normalizes a decoded tree. SPDX 3.x JSON-LD documents are
// recognized by their @graph or @context keys; everything else is read
// with SPDX 2.x field names.
func buildModel(root tree) (*sbom.Model, error) {
	if has(root, "@graph", "@context") {
		return buildFromGraph(root)
	}
	return buildFromV2(root)
}

// v2Relationship keys a relationship for deduplication.
type v2Relationship struct{ from, to, typ string }

func buildFromV2(root tree) (*sbom.Model, error) {
	ci := asTree(get(root, "creationInfo"))
	b := sbom.NewBuilder(sbom.Document{
		Name:        strOf(root, "name", "documentName"),
		SPDXVersion: strOf(root, "spdxVersion", "SPDXVersion"),
		Created:     fixTimestamp(strOf(ci, "created")),
		Creators:    asStrings(get(ci, "creators")),
		Namespace:   strOf(root, "documentNamespace", "namespace"),
		DataLicense: strOf(root, "dataLicense"),
		Comment:     strOf(root, "comment", "documentComment"),
	})

	docID := strOf(root, "SPDXID", "spdxId")
	if err := b.AddAlias(docID); err != nil {
		return nil, err
	}
	canonical := func(id string) string {
		if id != "" && id == docID {
			return sbom.DocumentID
		}
		return id
	}

	packages := asList(get(root, "packages"))
	files := asList(get(root, "files"))
	snippets := asList(get(root, "snippets"))

	taken := make(map[string]bool)
	for _, group := range [][]any{packages, files, snippets} {
		for _, item := range group {
			if id := strOf(asTree(item), "SPDXID", "spdxId"); id != "" {
				taken[id] = true
			}
		}
	}
	ids := newIDAllocator(taken)

	var contains []v2Relationship
	for _, item := range packages {
		t := asTree(item)
		if t == nil {
			continue
		}
		p := v2Package(t)
		if p.ID == "" {
			p.ID = ids.id("package")
		}
		if err := b.AddPackage(p); err != nil {
			return nil, err
		}
		for _, f := range asStrings(get(t, "hasFiles")) {
			contains = append(contains, v2Relationship{p.ID, f, "CONTAINS"})
		}
	}
	for _, item := range files {
		t := asTree(item)
		if t == nil {
			continue
		}
		f := v2File(t)
		if f.ID == "" {
			f.ID = ids.id("file")
		}
		if err := b.AddFile(f); err != nil {
			return nil, err
		}
	}
	for _, item := range snippets {
		t := asTree(item)
		if t == nil {
			continue
		}
		s := v2Snippet(t)
		if s.ID == "" {
			s.ID = ids.id("snippet")
		}
		if err := b.AddSnippet(s); err != nil {
			return nil, err
		}
	}

	var explicit []sbom.Relationship
	declared := make(map[v2Relationship]bool)
	for _, item := range asList(get(root, "relationships")) {
		t := asTree(item)
		r := sbom.Relationship{
			From:    canonical(strOf(t, "spdxElementId", "spdxElementID")),
			To:      canonical(strOf(t, "relatedSpdxElement")),
			Type:    strOf(t, "relationshipType"),
			Comment: strOf(t, "comment"),
		}
		if r.From == "" || r.To == "" || r.Type == "" {
			continue
		}
		explicit = append(explicit, r)
		declared[v2Relationship{r.From, r.To, r.Type}] = true
	}

	addDerived := func(r v2Relationship) {
		if r.to == "" || declared[r] || b.HasRelationship(r.from, r.to, r.typ) {
			return
		}
		b.AddRelationship(sbom.Relationship{From: r.from, To: r.to, Type: r.typ})
	}

	for _, id := range asStrings(get(root, "documentDescribes")) {
		addDerived(v2Relationship{sbom.DocumentID, canonical(id), "DESCRIBES"})
	}
	for _, r := range explicit {
		b.AddRelationship(r)
	}
	for _, r := range contains {
		addDerived(r)
	}

	return b.Build(), nil
}

func v2Package(t tree) sbom.Package {
	p := sbom.Package{
		ID:               strOf(t, "SPDXID", "spdxId"),
		Name:             strOf(t, "name", "packageName"),
		Version:          strOf(t, "versionInfo", "version"),
		FileName:         strOf(t, "packageFileName"),
		DownloadLocation: strOf(t, "downloadLocation"),
		Homepage:         strOf(t, "homepage"),
		LicenseConcluded: strOf(t, "licenseConcluded"),
		LicenseDeclared:  strOf(t, "licenseDeclared"),
		LicenseComments:  strOf(t, "licenseComments"),
		Supplier:         strOf(t, "supplier"),
		Originator:       strOf(t, "originator"),
		CopyrightText:    strOf(t, "copyrightText"),
		Summary:          strOf(t, "summary"),
		Description:      strOf(t, "description"),
		Comment:          strOf(t, "comment"),
		PrimaryPurpose:   strOf(t, "primaryPackagePurpose"),
		FilesAnalyzed:    asBool(get(t, "filesAnalyzed")),
		Checksums:        v2Checksums(get(t, "checksums")),
	}
	if vc := get(t, "packageVerificationCode"); vc != nil {
		if vt := asTree(vc); vt != nil {
			p.VerificationCode = strOf(vt, "packageVerificationCodeValue", "value")
		} else {
			p.VerificationCode = str(vc)
		}
	}
	for _, item := range asList(get(t, "externalRefs")) {
		rt := asTree(item)
		ref := sbom.ExternalRef{
			Category: strOf(rt, "referenceCategory"),
			Type:     strOf(rt, "referenceType"),
			Locator:  strOf(rt, "referenceLocator"),
		}
		if ref.Type != "" || ref.Locator != "" {
			p.ExternalRefs = append(p.ExternalRefs, ref)
		}
	}
	return p
}

func v2File(t tree) sbom.File {
	return sbom.File{
		ID:               strOf(t, "SPDXID", "spdxId"),
		Name:             strOf(t, "fileName", "name"),
		LicenseConcluded: strOf(t, "licenseConcluded"),
		LicenseInfo:      asStrings(get(t, "licenseInfoInFiles", "licenseInfoInFile")),
		LicenseComments:  strOf(t, "licenseComments"),
		CopyrightText:    strOf(t, "copyrightText"),
		Comment:          strOf(t, "comment"),
		Checksums:        v2Checksums(get(t, "checksums")),
	}
}

func v2Snippet(t tree) sbom.Snippet {
	s := sbom.Snippet{
		ID:               strOf(t, "SPDXID", "spdxId"),
		Name:             strOf(t, "name"),
		FileID:           strOf(t, "snippetFromFile"),
		LicenseConcluded: strOf(t, "licenseConcluded"),
		LicenseComments:  strOf(t, "licenseComments"),
		CopyrightText:    strOf(t, "copyrightText"),
		Comment:          strOf(t, "comment"),
	}
	for _, item := range asList(get(t, "ranges")) {
		rt := asTree(item)
		start := asTree(get(rt, "startPointer"))
		end := asTree(get(rt, "endPointer"))
		if s.FileID == "" {
			s.FileID = strOf(start, "reference")
		}
		switch {
		case has(start, "offset"):
			s.ByteRange = sbom.Range{Start: asInt(get(start, "offset")), End: asInt(get(end, "offset"))}
		case has(start, "lineNumber"):
			s.LineRange = sbom.Range{Start: asInt(get(start, "lineNumber")), End: asInt(get(end, "lineNumber"))}
		}
	}
	return s
}

func v2Checksums(v any) []sbom.Checksum {
	var out []sbom.Checksum
	for _, item := range asList(v) {
		t := asTree(item)
		c := sbom.Checksum{
			Algorithm: strings.ToUpper(strOf(t, "algorithm")),
			Value:     strOf(t, "checksumValue", "value"),
		}
		if c.Algorithm != "" || c.Value != "" {
			out = append(out, c)
		}
	}
	return out
}
