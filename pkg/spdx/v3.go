package spdx

import (
	"strings"

	"github.com/matzehuels/spdx2mermaid/pkg/sbom"
)

// Profile prefixes used by SPDX 3.x JSON-LD property and type names.
var v3Prefixes = []string{"", "software_", "core_", "simplelicensing_", "expandedlicensing_", "software:", "core:"}

// prop looks a property up under each known profile prefix.
func prop(t tree, name string) any {
	for _, p := range v3Prefixes {
		if v := get(t, p+name); v != nil {
			return v
		}
	}
	return nil
}

func propStr(t tree, name string) string { return str(prop(t, name)) }

// typeName strips the profile prefix from an element type, so
// "software_Package" becomes "Package".
func typeName(t tree) string {
	s := strOf(t, "type", "@type")
	if i := strings.LastIndexAny(s, "_:"); i >= 0 {
		return s[i+1:]
	}
	return s
}

func elementRef(t tree) string {
	return strOf(t, "spdxId", "@id")
}

// lastSegment returns the trailing path or fragment of an IRI.
func lastSegment(s string) string {
	if i := strings.LastIndexAny(s, "/#"); i >= 0 && i < len(s)-1 {
		return s[i+1:]
	}
	return s
}

var agentTypes = map[string]bool{
	"Agent": true, "Person": true, "Organization": true, "SoftwareAgent": true, "Tool": true,
}

var licenseTypes = map[string]bool{
	"LicenseExpression": true, "ListedLicense": true, "CustomLicense": true,
	"SimpleLicensingText": true, "License": true, "AnyLicenseInfo": true,
}

// v3Graph indexes the @graph of an SPDX 3.x document.
type v3Graph struct {
	nodes    []tree
	byRef    map[string]tree
	agents   map[string]string
	licenses map[string]string
}

func indexGraph(root tree) *v3Graph {
	g := &v3Graph{
		byRef:    make(map[string]tree),
		agents:   make(map[string]string),
		licenses: make(map[string]string),
	}
	items := asList(get(root, "@graph"))
	if items == nil {
		items = []any{root}
	}
	for _, item := range items {
		t := asTree(item)
		if t == nil {
			continue
		}
		g.nodes = append(g.nodes, t)
		if ref := elementRef(t); ref != "" {
			g.byRef[ref] = t
		}
		switch typ := typeName(t); {
		case agentTypes[typ]:
			name := propStr(t, "name")
			if name == "" {
				name = lastSegment(elementRef(t))
			}
			g.agents[elementRef(t)] = typ + ": " + name
		case licenseTypes[typ]:
			expr := propStr(t, "licenseExpression")
			if expr == "" {
				expr = propStr(t, "name")
			}
			if expr == "" {
				expr = lastSegment(elementRef(t))
			}
			g.licenses[elementRef(t)] = expr
		}
	}
	return g
}

func (g *v3Graph) agent(ref string) string {
	if a, ok := g.agents[ref]; ok {
		return a
	}
	return ref
}

func (g *v3Graph) agentList(v any) string {
	var names []string
	for _, item := range asList(v) {
		ref := str(item)
		if t := asTree(item); t != nil {
			ref = elementRef(t)
		}
		if ref != "" {
			names = append(names, g.agent(ref))
		}
	}
	return strings.Join(names, ", ")
}

func (g *v3Graph) license(ref string) string {
	if l, ok := g.licenses[ref]; ok {
		return l
	}
	return lastSegment(ref)
}

// deref resolves a property holding either an inline object or a
// reference to another graph node.
func (g *v3Graph) deref(v any) tree {
	if t := asTree(v); t != nil {
		return t
	}
	return g.byRef[str(v)]
}

// v3Element is an element collected before license relationships are
// folded in.
type v3Element struct {
	kind    sbom.Kind
	pkg     *sbom.Package
	file    *sbom.File
	snippet *sbom.Snippet
}

func buildFromGraph(root tree) (*sbom.Model, error) {
	g := indexGraph(root)

	var docNode tree
	var collections []tree
	for _, t := range g.nodes {
		switch typeName(t) {
		case "SpdxDocument":
			if docNode == nil {
				docNode = t
			} else {
				collections = append(collections, t)
			}
		case "Sbom", "Bom", "Bundle", "BOM":
			collections = append(collections, t)
		}
	}

	ci := g.deref(prop(docNode, "creationInfo"))
	doc := sbom.Document{
		Name:        propStr(docNode, "name"),
		Created:     fixTimestamp(propStr(ci, "created")),
		Namespace:   namespaceOf(docNode),
		DataLicense: g.license(propStr(docNode, "dataLicense")),
		Comment:     propStr(docNode, "comment"),
	}
	if v := propStr(ci, "specVersion"); v != "" {
		doc.SPDXVersion = "SPDX-" + v
	}
	for _, item := range asList(prop(ci, "createdBy")) {
		if ref := str(item); ref != "" {
			doc.Creators = append(doc.Creators, g.agent(ref))
		}
	}
	for _, item := range asList(prop(ci, "createdUsing")) {
		if ref := str(item); ref != "" {
			name := g.agent(ref)
			if !strings.Contains(name, ": ") {
				name = "Tool: " + name
			}
			doc.Creators = append(doc.Creators, name)
		}
	}
	b := sbom.NewBuilder(doc)
	aliases := make(map[string]bool)
	for _, t := range append([]tree{docNode}, collections...) {
		if ref := elementRef(t); ref != "" {
			if err := b.AddAlias(ref); err != nil {
				return nil, err
			}
			aliases[ref] = true
		}
	}
	canonical := func(id string) string {
		if aliases[id] {
			return sbom.DocumentID
		}
		return id
	}

	taken := make(map[string]bool)
	for ref := range g.byRef {
		taken[ref] = true
	}
	ids := newIDAllocator(taken)

	var elements []*v3Element
	byID := make(map[string]*v3Element)
	var rels []tree
	for _, t := range g.nodes {
		var el *v3Element
		switch typeName(t) {
		case "Package":
			p := g.v3Package(t)
			if p.ID == "" {
				p.ID = ids.id("package")
			}
			el = &v3Element{kind: sbom.KindPackage, pkg: &p}
			byID[p.ID] = el
		case "File":
			f := v3File(t)
			if f.ID == "" {
				f.ID = ids.id("file")
			}
			el = &v3Element{kind: sbom.KindFile, file: &f}
			byID[f.ID] = el
		case "Snippet":
			s := v3Snippet(t)
			if s.ID == "" {
				s.ID = ids.id("snippet")
			}
			el = &v3Element{kind: sbom.KindSnippet, snippet: &s}
			byID[s.ID] = el
		case "Relationship", "LifecycleScopedRelationship":
			rels = append(rels, t)
		}
		if el != nil {
			elements = append(elements, el)
		}
	}

	// License relationships become attributes, not edges.
	var edges []sbom.Relationship
	for _, t := range rels {
		from := canonical(propStr(t, "from"))
		typ := propStr(t, "relationshipType")
		targets := asStrings(prop(t, "to"))
		if from == "" || typ == "" {
			continue
		}
		switch typ {
		case "hasConcludedLicense", "hasDeclaredLicense":
			g.foldLicense(byID[from], typ, targets)
			continue
		}
		for _, to := range targets {
			edges = append(edges, sbom.Relationship{
				From:    from,
				To:      canonical(to),
				Type:    camelToUpperSnake(typ),
				Comment: propStr(t, "comment"),
			})
		}
	}

	for _, el := range elements {
		var err error
		switch el.kind {
		case sbom.KindPackage:
			err = b.AddPackage(*el.pkg)
		case sbom.KindFile:
			err = b.AddFile(*el.file)
		case sbom.KindSnippet:
			err = b.AddSnippet(*el.snippet)
		}
		if err != nil {
			return nil, err
		}
	}

	declared := make(map[v2Relationship]bool)
	for _, r := range edges {
		declared[v2Relationship{r.From, r.To, r.Type}] = true
	}
	for _, t := range append([]tree{docNode}, collections...) {
		for _, id := range asStrings(prop(t, "rootElement")) {
			r := v2Relationship{sbom.DocumentID, canonical(id), "DESCRIBES"}
			if r.to == sbom.DocumentID || declared[r] || b.HasRelationship(r.from, r.to, r.typ) {
				continue
			}
			b.AddRelationship(sbom.Relationship{From: r.from, To: r.to, Type: r.typ})
		}
	}
	for _, r := range edges {
		b.AddRelationship(r)
	}
	return b.Build(), nil
}

func (g *v3Graph) foldLicense(el *v3Element, typ string, targets []string) {
	if el == nil || len(targets) == 0 {
		return
	}
	var parts []string
	for _, t := range targets {
		parts = append(parts, g.license(t))
	}
	expr := strings.Join(parts, " AND ")
	concluded := typ == "hasConcludedLicense"
	switch el.kind {
	case sbom.KindPackage:
		if concluded {
			el.pkg.LicenseConcluded = expr
		} else {
			el.pkg.LicenseDeclared = expr
		}
	case sbom.KindFile:
		if concluded {
			el.file.LicenseConcluded = expr
		} else {
			el.file.LicenseInfo = append(el.file.LicenseInfo, parts...)
		}
	case sbom.KindSnippet:
		if concluded {
			el.snippet.LicenseConcluded = expr
		}
	}
}

func namespaceOf(doc tree) string {
	for _, item := range asList(prop(doc, "namespaceMap")) {
		if ns := propStr(asTree(item), "namespace"); ns != "" {
			return ns
		}
	}
	return ""
}

func (g *v3Graph) v3Package(t tree) sbom.Package {
	p := sbom.Package{
		ID:               elementRef(t),
		Name:             propStr(t, "name"),
		Version:          propStr(t, "packageVersion"),
		DownloadLocation: propStr(t, "downloadLocation"),
		Homepage:         propStr(t, "homePage"),
		Supplier:         g.agentList(prop(t, "suppliedBy")),
		Originator:       g.agentList(prop(t, "originatedBy")),
		CopyrightText:    propStr(t, "copyrightText"),
		Summary:          propStr(t, "summary"),
		Description:      propStr(t, "description"),
		Comment:          propStr(t, "comment"),
		PrimaryPurpose:   camelToUpperSnake(propStr(t, "primaryPurpose")),
		Checksums:        v3Checksums(prop(t, "verifiedUsing")),
	}
	for _, item := range asList(prop(t, "externalIdentifier")) {
		it := asTree(item)
		ref := sbom.ExternalRef{
			Type:    propStr(it, "externalIdentifierType"),
			Locator: propStr(it, "identifier"),
		}
		if ref.Locator != "" {
			p.ExternalRefs = append(p.ExternalRefs, ref)
		}
	}
	for _, item := range asList(prop(t, "externalRef")) {
		it := asTree(item)
		locators := asStrings(prop(it, "locator"))
		if len(locators) == 0 {
			continue
		}
		p.ExternalRefs = append(p.ExternalRefs, sbom.ExternalRef{
			Type:    propStr(it, "externalRefType"),
			Locator: locators[0],
		})
	}
	if purl := propStr(t, "packageUrl"); purl != "" {
		p.ExternalRefs = append(p.ExternalRefs, sbom.ExternalRef{
			Category: "PACKAGE-MANAGER",
			Type:     "purl",
			Locator:  purl,
		})
	}
	return p
}

func v3File(t tree) sbom.File {
	return sbom.File{
		ID:            elementRef(t),
		Name:          propStr(t, "name"),
		CopyrightText: propStr(t, "copyrightText"),
		Comment:       propStr(t, "comment"),
		Checksums:     v3Checksums(prop(t, "verifiedUsing")),
	}
}

func v3Snippet(t tree) sbom.Snippet {
	s := sbom.Snippet{
		ID:            elementRef(t),
		Name:          propStr(t, "name"),
		FileID:        propStr(t, "snippetFromFile"),
		CopyrightText: propStr(t, "copyrightText"),
		Comment:       propStr(t, "comment"),
	}
	if r := asTree(prop(t, "byteRange")); r != nil {
		s.ByteRange = sbom.Range{Start: asInt(prop(r, "beginIntegerRange")), End: asInt(prop(r, "endIntegerRange"))}
	}
	if r := asTree(prop(t, "lineRange")); r != nil {
		s.LineRange = sbom.Range{Start: asInt(prop(r, "beginIntegerRange")), End: asInt(prop(r, "endIntegerRange"))}
	}
	return s
}

func v3Checksums(v any) []sbom.Checksum {
	var out []sbom.Checksum
	for _, item := range asList(v) {
		t := asTree(item)
		val := propStr(t, "hashValue")
		if val == "" {
			continue
		}
		out = append(out, sbom.Checksum{
			Algorithm: strings.ToUpper(propStr(t, "algorithm")),
			Value:     val,
		})
	}
	return out
}
