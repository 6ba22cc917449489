package model

// Named is a registry entry.
type Named struct {
	Name string
	Node Node
}

// Registry is the ordered set of named schemas produced by one conversion.
// Order is registration order, which the converter keeps equal to source
// declaration order.
type Registry struct {
	entries []Named
	index   map[string]int
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register adds name if it is not present yet and reports whether it did.
func (r *Registry) Register(name string, n Node) bool {
	if _, ok := r.index[name]; ok {
		return false
	}
	r.index[name] = len(r.entries)
	r.entries = append(r.entries, Named{Name: name, Node: n})
	return true
}

// Lookup returns the node registered under name.
func (r *Registry) Lookup(name string) (Node, bool) {
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.entries[i].Node, true
}

// Lazy returns the Lazy registered under name, if the entry is one.
func (r *Registry) Lazy(name string) (*Lazy, bool) {
	n, ok := r.Lookup(name)
	if !ok {
		return nil, false
	}
	l, ok := n.(*Lazy)
	return l, ok
}

// Entries returns a copy of the entries in registration order.
func (r *Registry) Entries() []Named { return append([]Named(nil), r.entries...) }

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Name
	}
	return out
}

// Len reports the number of entries.
func (r *Registry) Len() int { return len(r.entries) }
