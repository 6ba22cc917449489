// Package deps derives the named-schema dependency graph of a registry and
// sequences declarations so that dependencies come before their dependents
// wherever the graph allows it.
package deps

import "github.com/reoring/zodgen/model"

// Entry is one named schema and the names it references.
type Entry struct {
	Name string
	Deps []string
}

// Map is an ordered dependency map keyed by schema name. Order follows the
// registry.
type Map []Entry

// Get returns the dependencies recorded for name.
func (m Map) Get(name string) ([]string, bool) {
	for _, e := range m {
		if e.Name == name {
			return e.Deps, true
		}
	}
	return nil, false
}

// Analyze walks every registered schema body. Object, Array, Union, Nullable
// and Optional are traversed; a Lazy contributes its name and is not
// expanded, so analysis is bounded by the number of named schemas and cycles
// show up as plain edges. A schema that references itself keeps the
// self-edge.
func Analyze(reg *model.Registry) Map {
	entries := reg.Entries()
	out := make(Map, 0, len(entries))
	for _, e := range entries {
		body := e.Node
		if l, ok := body.(*model.Lazy); ok {
			body = l.Resolve()
		}
		c := &collector{seen: map[string]struct{}{}}
		c.walk(body)
		out = append(out, Entry{Name: e.Name, Deps: c.names})
	}
	return out
}

type collector struct {
	names []string
	seen  map[string]struct{}
}

func (c *collector) walk(n model.Node) {
	switch t := n.(type) {
	case *model.Lazy:
		if _, dup := c.seen[t.Name]; !dup {
			c.seen[t.Name] = struct{}{}
			c.names = append(c.names, t.Name)
		}
	case *model.Object:
		for _, p := range t.Properties {
			c.walk(p.Node)
		}
	case *model.Array:
		c.walk(t.Element)
	case *model.Union:
		for _, o := range t.Options {
			c.walk(o)
		}
	case *model.Nullable:
		c.walk(t.Inner)
	case *model.Optional:
		c.walk(t.Inner)
	}
}
