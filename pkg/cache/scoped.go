package cache

// ScopedKeyer prefixes every key of an inner Keyer. The server uses it to
// keep its entries apart from CLI entries in a shared Redis.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "spdx2mermaid:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or a DefaultKeyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) ModelKey(inputHash, inputFormat string) string {
	return k.prefix + k.inner.ModelKey(inputHash, inputFormat)
}

func (k *ScopedKeyer) ArtifactKey(inputHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(inputHash, opts)
}

func (k *ScopedKeyer) DiagramKey(id string) string {
	return k.prefix + k.inner.DiagramKey(id)
}
