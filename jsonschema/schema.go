package jsonschema

// Schema is the subset of an OpenAPI schema object the converter understands.
// Other keywords are dropped while decoding.
type Schema struct {
	// Core
	Type     string
	Format   string
	Nullable bool
	Ref      string
	Enum     []any

	// Object
	Properties Properties
	Required   []string

	// Array
	Items *Schema

	// String
	MinLength *int
	MaxLength *int

	// Composition
	AllOf []*Schema
	AnyOf []*Schema
	OneOf []*Schema

	// HasAllOf/HasAnyOf/HasOneOf record keyword presence so that an empty
	// list (for example oneOf: []) is distinguishable from an absent one.
	HasAllOf bool
	HasAnyOf bool
	HasOneOf bool
}

// Property is a named entry of an object's properties.
type Property struct {
	Name   string
	Schema *Schema
}

// Properties keeps object properties in declaration order.
type Properties []Property

// Get returns the property schema with the given name.
func (ps Properties) Get(name string) (*Schema, bool) {
	for _, p := range ps {
		if p.Name == name {
			return p.Schema, true
		}
	}
	return nil, false
}

// Set replaces an existing property in place or appends a new one.
func (ps Properties) Set(name string, s *Schema) Properties {
	for i := range ps {
		if ps[i].Name == name {
			ps[i].Schema = s
			return ps
		}
	}
	return append(ps, Property{Name: name, Schema: s})
}

// Names lists property names in declaration order.
func (ps Properties) Names() []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}

// Document is the part of an OpenAPI document consumed by the converter.
type Document struct {
	Components Components
	// Warnings lists keyword values that had an unexpected shape and were
	// treated as absent, each prefixed with its JSON Pointer.
	Warnings []string
}

// Components holds the named schema registry.
type Components struct {
	Schemas Schemas
}

// NamedSchema is one entry of components.schemas.
type NamedSchema struct {
	Name   string
	Schema *Schema
}

// Schemas keeps components.schemas in declaration order.
type Schemas []NamedSchema

// Get returns the schema registered under name.
func (ss Schemas) Get(name string) (*Schema, bool) {
	for _, s := range ss {
		if s.Name == name {
			return s.Schema, true
		}
	}
	return nil, false
}
