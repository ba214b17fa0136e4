package sbom

import (
	"github.com/matzehuels/spdx2mermaid/pkg/errors"
)

// Reasons reported by [errors.ModelError] values from the builder.
const (
	ReasonDuplicateID = "duplicate identifier"
	ReasonMissingID   = "missing identifier"
)

// Builder assembles a [Model]. Elements keep the order in which they were
// added. A Builder must not be used after [Builder.Build].
type Builder struct {
	m    *Model
	rels map[relKey]bool
}

type relKey struct{ from, to, typ string }

// NewBuilder starts a model for the given document.
func NewBuilder(doc Document) *Builder {
	return &Builder{
		m: &Model{
			doc:   cloneDocument(doc),
			index: map[string]ref{DocumentID: {kind: KindDocument}},
		},
		rels: make(map[relKey]bool),
	}
}

// AddAlias records id as an alternate identifier of the document.
// Adding DocumentID itself, or the same alias twice, is a no-op.
// It fails when id already names a non-document element.
func (b *Builder) AddAlias(id string) error {
	if id == "" {
		return nil
	}
	if r, ok := b.m.index[id]; ok {
		if r.kind == KindDocument {
			return nil
		}
		return &errors.ModelError{ID: id, Reason: ReasonDuplicateID}
	}
	b.m.index[id] = ref{kind: KindDocument}
	b.m.aliases = append(b.m.aliases, id)
	return nil
}

// AddPackage appends a package. Identifiers must be unique across all
// element kinds and the document.
func (b *Builder) AddPackage(p Package) error {
	if err := b.claim(p.ID, KindPackage, len(b.m.packages)); err != nil {
		return err
	}
	b.m.packages = append(b.m.packages, clonePackage(p))
	return nil
}

// AddFile appends a file.
func (b *Builder) AddFile(f File) error {
	if err := b.claim(f.ID, KindFile, len(b.m.files)); err != nil {
		return err
	}
	b.m.files = append(b.m.files, cloneFile(f))
	return nil
}

// AddSnippet appends a snippet.
func (b *Builder) AddSnippet(s Snippet) error {
	if err := b.claim(s.ID, KindSnippet, len(b.m.snippets)); err != nil {
		return err
	}
	b.m.snippets = append(b.m.snippets, s)
	return nil
}

// AddRelationship appends a relationship. Endpoints are not checked.
func (b *Builder) AddRelationship(r Relationship) {
	b.m.rels = append(b.m.rels, r)
	b.rels[relKey{r.From, r.To, r.Type}] = true
}

// HasRelationship reports whether an identical (From, To, Type) relationship
// was already added.
func (b *Builder) HasRelationship(from, to, typ string) bool {
	return b.rels[relKey{from, to, typ}]
}

// Has reports whether id is already taken.
func (b *Builder) Has(id string) bool {
	_, ok := b.m.index[id]
	return ok
}

// Build returns the finished model.
func (b *Builder) Build() *Model {
	m := b.m
	b.m, b.rels = nil, nil
	return m
}

func (b *Builder) claim(id string, kind Kind, index int) error {
	if id == "" {
		return &errors.ModelError{ID: id, Reason: ReasonMissingID}
	}
	if _, ok := b.m.index[id]; ok {
		return &errors.ModelError{ID: id, Reason: ReasonDuplicateID}
	}
	b.m.index[id] = ref{kind: kind, index: index}
	return nil
}
