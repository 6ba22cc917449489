package openapi

import (
	"errors"
	"maps"
	"strconv"

	"github.com/reoring/zodgen/jsonschema"
	"github.com/reoring/zodgen/model"
)

// Convert translates components.schemas into a Schema Model registry.
//
// Every named schema is registered as a Lazy in declaration order, whether or
// not it takes part in a cycle. A $ref becomes the Lazy of the referenced name,
// so each distinct name is converted once no matter how often it is
// referenced. Unresolved references degrade to Unknown and are reported as
// warnings; they never fail the conversion.
//
// Decoding warnings carried by doc come first in the returned Diag. All
// bodies are resolved before Convert returns so that the Diag is complete and
// the registry is read-only afterwards.
func Convert(doc *jsonschema.Document) (*model.Registry, Diag, error) {
	d := &simpleDiag{}
	if doc == nil {
		return nil, d, errors.New("openapi: nil document")
	}
	d.ws = append(d.ws, doc.Warnings...)
	c := &converter{schemas: doc.Components.Schemas, reg: model.NewRegistry(), diag: d}
	if len(c.schemas) == 0 {
		d.warnf("components.schemas is empty: nothing to convert")
	}
	for _, ns := range c.schemas {
		if _, ok := c.reg.Lookup(ns.Name); ok {
			d.warnf("duplicate schema name %q ignored", ns.Name)
			continue
		}
		c.register(ns.Name, ns.Schema)
	}
	for _, e := range c.reg.Entries() {
		if l, ok := e.Node.(*model.Lazy); ok {
			l.Resolve()
		}
	}
	return c.reg, d, nil
}

type converter struct {
	schemas jsonschema.Schemas
	reg     *model.Registry
	diag    *simpleDiag
}

func (c *converter) register(name string, def *jsonschema.Schema) *model.Lazy {
	path := "#/components/schemas/" + name
	l := model.NewLazy(name, func() model.Node { return c.convertSchema(def, path) })
	c.reg.Register(name, l)
	return l
}

// convertSchema converts one schema node; nullable wraps whatever the base
// conversion produced.
func (c *converter) convertSchema(s *jsonschema.Schema, path string) model.Node {
	if s == nil {
		return &model.Unknown{}
	}
	n := c.convertBase(s, path)
	if s.Nullable {
		n = &model.Nullable{Inner: n}
	}
	return n
}

func (c *converter) convertBase(s *jsonschema.Schema, path string) model.Node {
	switch {
	case s.Ref != "":
		return c.convertRef(s.Ref, path)
	case s.HasAllOf:
		return c.convertAllOf(s, path)
	case s.HasAnyOf:
		return c.convertUnion(s.AnyOf, path+"/anyOf")
	case s.HasOneOf:
		// oneOf is treated as an inclusive union, like anyOf.
		return c.convertUnion(s.OneOf, path+"/oneOf")
	}
	switch s.Type {
	case "object":
		return c.convertObject(s.Properties, s.Required, path)
	case "array":
		if s.Items == nil {
			return &model.Array{Element: &model.Unknown{}}
		}
		return &model.Array{Element: c.convertSchema(s.Items, path+"/items")}
	case "string":
		return convertString(s)
	case "number", "integer":
		return &model.Number{}
	case "boolean":
		return &model.Boolean{}
	case "":
		return &model.Unknown{}
	default:
		c.diag.warnf("%s: unsupported type %q treated as unknown", path, s.Type)
		return &model.Unknown{}
	}
}

func (c *converter) convertRef(ref, path string) model.Node {
	name := refName(ref)
	if l, ok := c.reg.Lazy(name); ok {
		return l
	}
	target, ok := c.schemas.Get(name)
	if !ok {
		c.diag.warnf("%s: unresolved $ref %q treated as unknown", path, ref)
		return &model.Unknown{}
	}
	return c.register(name, target)
}

// convertAllOf merges object members into a single object. Members that are
// not objects are dropped with a warning; constraints are not intersected.
func (c *converter) convertAllOf(s *jsonschema.Schema, path string) model.Node {
	merged := &jsonschema.Schema{Type: "object"}
	c.mergeAllOf(merged, s.AllOf, path+"/allOf", map[string]bool{})
	if s.Type == "object" {
		mergeObject(merged, s)
	}
	return c.convertObject(merged.Properties, merged.Required, path)
}

func (c *converter) mergeAllOf(dst *jsonschema.Schema, members []*jsonschema.Schema, path string, visited map[string]bool) {
	for i, m := range members {
		at := path + "/" + strconv.Itoa(i)
		seen := maps.Clone(visited)
		target, ok := c.derefObject(m, seen)
		if !ok {
			continue
		}
		switch {
		case target.HasAllOf && target.Type == "":
			c.mergeAllOf(dst, target.AllOf, at+"/allOf", seen)
		case target.Type == "object":
			mergeObject(dst, target)
		default:
			c.diag.warnf("%s: allOf member of type %q dropped (only objects are merged)", at, target.Type)
		}
	}
}

// mergeObject copies properties (later wins) and appends required names.
func mergeObject(dst, src *jsonschema.Schema) {
	for _, p := range src.Properties {
		dst.Properties = dst.Properties.Set(p.Name, p.Schema)
	}
	dst.Required = append(dst.Required, src.Required...)
}

func (c *converter) convertUnion(members []*jsonschema.Schema, path string) model.Node {
	switch len(members) {
	case 0:
		return &model.Never{}
	case 1:
		return c.convertSchema(members[0], path+"/0")
	}
	opts := make([]model.Node, 0, len(members))
	for i, m := range members {
		opts = append(opts, c.convertSchema(m, path+"/"+strconv.Itoa(i)))
	}
	return &model.Union{Options: opts}
}

func (c *converter) convertObject(props jsonschema.Properties, required []string, path string) model.Node {
	req := make(map[string]struct{}, len(required))
	for _, r := range required {
		req[r] = struct{}{}
	}
	obj := &model.Object{Properties: make([]model.Property, 0, len(props)), Required: req}
	for _, p := range props {
		n := c.convertSchema(p.Schema, path+"/properties/"+p.Name)
		if _, ok := req[p.Name]; !ok {
			n = &model.Optional{Inner: n}
		}
		obj.Properties = append(obj.Properties, model.Property{Name: p.Name, Node: n})
	}
	return obj
}

func convertString(s *jsonschema.Schema) model.Node {
	if s.Enum != nil {
		return model.NewEnum(s.Enum)
	}
	str := &model.String{}
	if s.MinLength != nil {
		str.Checks = append(str.Checks, model.StringCheck{Kind: model.CheckMin, Value: *s.MinLength})
	}
	if s.MaxLength != nil {
		str.Checks = append(str.Checks, model.StringCheck{Kind: model.CheckMax, Value: *s.MaxLength})
	}
	if s.Format == "date" {
		str.Checks = append(str.Checks, model.StringCheck{Kind: model.CheckDate})
	}
	return str
}
