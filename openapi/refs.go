package openapi

import (
	"strings"

	"github.com/reoring/zodgen/jsonschema"
)

// refName returns the trailing path segment of a $ref, unescaped per RFC 6901.
// "#/components/schemas/Pet" -> "Pet".
func refName(ref string) string {
	name := ref
	if i := strings.LastIndexByte(ref, '/'); i >= 0 {
		name = ref[i+1:]
	}
	return strings.ReplaceAll(strings.ReplaceAll(name, "~1", "/"), "~0", "~")
}

// derefObject follows $ref chains through components until it reaches a
// definition without $ref. visited guards against reference loops.
func (c *converter) derefObject(s *jsonschema.Schema, visited map[string]bool) (*jsonschema.Schema, bool) {
	for s != nil && s.Ref != "" {
		name := refName(s.Ref)
		if visited[name] {
			c.diag.warnf("cyclic $ref %q inside allOf (member dropped)", s.Ref)
			return nil, false
		}
		visited[name] = true
		target, ok := c.schemas.Get(name)
		if !ok {
			c.diag.warnf("unresolved $ref %q inside allOf (member dropped)", s.Ref)
			return nil, false
		}
		s = target
	}
	return s, s != nil
}
