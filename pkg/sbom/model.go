package sbom

import "slices"

// DocumentID is the fixed identifier of the document element.
const DocumentID = "SPDXRef-DOCUMENT"

// Kind identifies the type of an element.
type Kind int

const (
	// KindDocument is the single document root.
	KindDocument Kind = iota
	// KindPackage is a software package.
	KindPackage
	// KindFile is a file, packaged or not.
	KindFile
	// KindSnippet is a fragment of a file.
	KindSnippet
)

// Kinds lists every element kind in rendering order.
var Kinds = []Kind{KindDocument, KindPackage, KindFile, KindSnippet}

var kindNames = [...]string{"Document", "Package", "File", "Snippet"}

// String returns the display name of the kind, e.g. "Package".
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}

// Element is implemented by every node of the model.
type Element interface {
	ElementID() string
	Kind() Kind
}

// Checksum is an (algorithm, digest) pair.
type Checksum struct {
	Algorithm string
	Value     string
}

// ExternalRef points a package at an external identifier such as a purl or CPE.
type ExternalRef struct {
	Category string
	Type     string
	Locator  string
}

// Range is an inclusive position range. The zero value means absent.
type Range struct {
	Start int
	End   int
}

// IsZero reports whether the range was not set.
func (r Range) IsZero() bool { return r.Start == 0 && r.End == 0 }

// Document is the root element.
type Document struct {
	Name        string
	SPDXVersion string
	Created     string
	Creators    []string
	Namespace   string
	DataLicense string
	Comment     string
}

// ElementID returns DocumentID. Source document identifiers are aliases.
func (Document) ElementID() string { return DocumentID }

// Kind returns KindDocument.
func (Document) Kind() Kind { return KindDocument }

// Package describes a software package.
//
// FilesAnalyzed is nil when the source did not state it.
type Package struct {
	ID               string
	Name             string
	Version          string
	FileName         string
	DownloadLocation string
	Homepage         string
	LicenseConcluded string
	LicenseDeclared  string
	LicenseComments  string
	Supplier         string
	Originator       string
	CopyrightText    string
	Summary          string
	Description      string
	Comment          string
	PrimaryPurpose   string
	FilesAnalyzed    *bool
	VerificationCode string
	Checksums        []Checksum
	ExternalRefs     []ExternalRef
}

// ElementID returns the package's SPDX identifier.
func (p Package) ElementID() string { return p.ID }

// Kind returns KindPackage.
func (Package) Kind() Kind { return KindPackage }

// File describes a file.
type File struct {
	ID               string
	Name             string
	LicenseConcluded string
	LicenseInfo      []string
	LicenseComments  string
	CopyrightText    string
	Comment          string
	Checksums        []Checksum
}

// ElementID returns the file's SPDX identifier.
func (f File) ElementID() string { return f.ID }

// Kind returns KindFile.
func (File) Kind() Kind { return KindFile }

// Snippet describes a byte or line range within a file.
type Snippet struct {
	ID               string
	Name             string
	FileID           string
	LicenseConcluded string
	LicenseComments  string
	CopyrightText    string
	Comment          string
	ByteRange        Range
	LineRange        Range
}

// ElementID returns the snippet's SPDX identifier.
func (s Snippet) ElementID() string { return s.ID }

// Kind returns KindSnippet.
func (Snippet) Kind() Kind { return KindSnippet }

// Relationship is a typed directed edge. Type is an open vocabulary and is
// passed through verbatim.
type Relationship struct {
	From    string
	To      string
	Type    string
	Comment string
}

// ref locates an element inside the per-kind slices.
type ref struct {
	kind  Kind
	index int
}

// Model is an immutable SPDX document graph.
//
// The zero value is not usable; build models with [NewBuilder].
// A built Model is safe for concurrent readers.
type Model struct {
	doc      Document
	aliases  []string
	packages []Package
	files    []File
	snippets []Snippet
	rels     []Relationship
	index    map[string]ref
}

// Document returns the document element.
func (m *Model) Document() Document { return cloneDocument(m.doc) }

// Aliases returns the alternate identifiers declared for the document.
func (m *Model) Aliases() []string { return slices.Clone(m.aliases) }

// Packages returns all packages in insertion order.
func (m *Model) Packages() []Package {
	out := make([]Package, len(m.packages))
	for i, p := range m.packages {
		out[i] = clonePackage(p)
	}
	return out
}

// Files returns all files in insertion order.
func (m *Model) Files() []File {
	out := make([]File, len(m.files))
	for i, f := range m.files {
		out[i] = cloneFile(f)
	}
	return out
}

// Snippets returns all snippets in insertion order.
func (m *Model) Snippets() []Snippet { return slices.Clone(m.snippets) }

// Relationships returns all relationships in source order.
func (m *Model) Relationships() []Relationship { return slices.Clone(m.rels) }

// RelationshipsOfType returns the relationships whose Type equals t,
// in source order.
func (m *Model) RelationshipsOfType(t string) []Relationship {
	var out []Relationship
	for _, r := range m.rels {
		if r.Type == t {
			out = append(out, r)
		}
	}
	return out
}

// Node looks up an element by identifier. Document aliases resolve to the
// document.
func (m *Model) Node(id string) (Element, bool) {
	r, ok := m.index[id]
	if !ok {
		return nil, false
	}
	switch r.kind {
	case KindDocument:
		return m.Document(), true
	case KindPackage:
		return clonePackage(m.packages[r.index]), true
	case KindFile:
		return cloneFile(m.files[r.index]), true
	default:
		return m.snippets[r.index], true
	}
}

// Has reports whether id resolves to an element.
func (m *Model) Has(id string) bool {
	_, ok := m.index[id]
	return ok
}

// Canonical returns the identifier id resolves to: DocumentID for document
// aliases, id itself otherwise.
func (m *Model) Canonical(id string) string {
	if r, ok := m.index[id]; ok && r.kind == KindDocument {
		return DocumentID
	}
	return id
}

// KindOf returns the kind of the element with the given identifier.
func (m *Model) KindOf(id string) (Kind, bool) {
	r, ok := m.index[id]
	return r.kind, ok
}

// Nodes returns the elements of one kind in insertion order.
func (m *Model) Nodes(kind Kind) []Element {
	var out []Element
	switch kind {
	case KindDocument:
		out = append(out, m.Document())
	case KindPackage:
		for _, p := range m.packages {
			out = append(out, clonePackage(p))
		}
	case KindFile:
		for _, f := range m.files {
			out = append(out, cloneFile(f))
		}
	case KindSnippet:
		for _, s := range m.snippets {
			out = append(out, s)
		}
	}
	return out
}

// Elements returns the document followed by all packages, files and
// snippets, each kind in insertion order.
func (m *Model) Elements() []Element {
	out := make([]Element, 0, m.NodeCount())
	for _, k := range Kinds {
		out = append(out, m.Nodes(k)...)
	}
	return out
}

// Unresolved returns relationship endpoints that match no element, in
// first-reference order without duplicates.
func (m *Model) Unresolved() []string {
	var out []string
	seen := make(map[string]bool)
	for _, r := range m.rels {
		for _, id := range [2]string{r.From, r.To} {
			if m.Has(id) || seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// NodeCount returns the number of elements, the document included.
func (m *Model) NodeCount() int {
	return 1 + len(m.packages) + len(m.files) + len(m.snippets)
}

// RelationshipCount returns the number of relationships.
func (m *Model) RelationshipCount() int { return len(m.rels) }

// Count returns the number of elements of the given kind.
func (m *Model) Count(kind Kind) int {
	switch kind {
	case KindDocument:
		return 1
	case KindPackage:
		return len(m.packages)
	case KindFile:
		return len(m.files)
	case KindSnippet:
		return len(m.snippets)
	}
	return 0
}

// RelationshipTypes returns the distinct relationship types with their
// counts, in first-seen order.
func (m *Model) RelationshipTypes() []TypeCount {
	var out []TypeCount
	pos := make(map[string]int)
	for _, r := range m.rels {
		i, ok := pos[r.Type]
		if !ok {
			pos[r.Type] = len(out)
			out = append(out, TypeCount{Type: r.Type})
			i = len(out) - 1
		}
		out[i].Count++
	}
	return out
}

// TypeCount pairs a relationship type with its number of occurrences.
type TypeCount struct {
	Type  string
	Count int
}

func cloneDocument(d Document) Document {
	d.Creators = slices.Clone(d.Creators)
	return d
}

func clonePackage(p Package) Package {
	p.Checksums = slices.Clone(p.Checksums)
	p.ExternalRefs = slices.Clone(p.ExternalRefs)
	if p.FilesAnalyzed != nil {
		v := *p.FilesAnalyzed
		p.FilesAnalyzed = &v
	}
	return p
}

func cloneFile(f File) File {
	f.Checksums = slices.Clone(f.Checksums)
	f.LicenseInfo = slices.Clone(f.LicenseInfo)
	return f
}
