package cache

// ScopedKeyer wraps a Keyer with a prefix so that several projects can
// share one backend (typically Redis) without seeing each other's entries.
//
//	k := NewScopedKeyer(NewDefaultKeyer(), "project:billing:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(compilerID, unit, sourceHash string) string {
	return k.prefix + k.inner.ArtifactKey(compilerID, unit, sourceHash)
}
