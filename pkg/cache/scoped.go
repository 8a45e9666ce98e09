package cache

// ScopedKeyer prefixes every key from an inner Keyer, so several projects or
// tenants can share one Redis instance without colliding.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "project:castle:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner (DefaultKeyer when nil) with prefix.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) BuildKey(tree []byte, opts BuildKeyOpts) string {
	return k.prefix + k.inner.BuildKey(tree, opts)
}

func (k *ScopedKeyer) RenderKey(tree []byte, format string) string {
	return k.prefix + k.inner.RenderKey(tree, format)
}
