package jsonschema

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/reoring/zodgen/internal/engine"
)

// DecodeError reports a value with the wrong shape at Path.
type DecodeError struct {
	Path string // JSON Pointer of the offending value
	Msg  string
}

func (e *DecodeError) Error() string { return fmt.Sprintf("jsonschema: %s: %s", e.Path, e.Msg) }

// DecodeDocument extracts components.schemas from a decoded OpenAPI document.
// v is either an ordered tree produced by the loader or a plain
// map[string]any; plain maps are visited in sorted key order. Missing
// components or schemas yield an empty Document.
//
// Only a root that is not a mapping is an error. A keyword whose value has
// an unexpected shape is treated as absent and recorded in Document.Warnings.
func DecodeDocument(v any) (*Document, error) {
	root, ok := members(v)
	if !ok {
		return nil, &DecodeError{Path: "/", Msg: "document root must be a mapping"}
	}
	d := &decoder{}
	doc := &Document{}
	comps, ok := root.Get("components")
	if !ok || comps == nil {
		return doc, nil
	}
	cm, ok := members(comps)
	if !ok {
		d.warn("/components", "must be a mapping")
		doc.Warnings = d.warnings
		return doc, nil
	}
	schemas, ok := cm.Get("schemas")
	if ok && schemas != nil {
		sm, isMap := members(schemas)
		if !isMap {
			d.warn("/components/schemas", "must be a mapping")
		}
		for _, m := range sm {
			s := d.schema(m.Value, "/components/schemas/"+escape(m.Key))
			doc.Components.Schemas = append(doc.Components.Schemas, NamedSchema{Name: m.Key, Schema: s})
		}
	}
	doc.Warnings = d.warnings
	return doc, nil
}

// decoder collects shape warnings for one document.
type decoder struct {
	warnings []string
}

func (d *decoder) warn(path, msg string) {
	d.warnings = append(d.warnings, (&DecodeError{Path: path, Msg: msg}).Error()+"; ignored")
}

// schema never fails: true and any other non-mapping value become an empty
// schema, which converts to Unknown.
func (d *decoder) schema(v any, path string) *Schema {
	s := &Schema{}
	mem, ok := members(v)
	if !ok {
		if b, isBool := v.(bool); !isBool || !b {
			d.warn(path, "schema must be a mapping")
		}
		return s
	}
	for _, m := range mem {
		at := join(path, m.Key)
		switch m.Key {
		case "type":
			s.Type = d.str(m.Value, at)
		case "format":
			s.Format = d.str(m.Value, at)
		case "$ref":
			s.Ref = d.str(m.Value, at)
		case "nullable":
			b, isBool := m.Value.(bool)
			if !isBool {
				d.warn(at, "must be a boolean")
			}
			s.Nullable = b
		case "enum":
			arr, isArr := m.Value.([]any)
			if !isArr {
				d.warn(at, "must be a sequence")
				break
			}
			s.Enum = make([]any, len(arr))
			for i, e := range arr {
				s.Enum[i] = scalar(e)
			}
		case "properties":
			s.Properties = d.properties(m.Value, at)
		case "required":
			s.Required = d.strs(m.Value, at)
		case "items":
			if _, tuple := m.Value.([]any); tuple {
				d.warn(at, "tuple items are not supported")
				break
			}
			s.Items = d.schema(m.Value, at)
		case "minLength":
			s.MinLength = d.length(m.Value, at)
		case "maxLength":
			s.MaxLength = d.length(m.Value, at)
		case "allOf":
			s.AllOf, s.HasAllOf = d.list(m.Value, at)
		case "anyOf":
			s.AnyOf, s.HasAnyOf = d.list(m.Value, at)
		case "oneOf":
			s.OneOf, s.HasOneOf = d.list(m.Value, at)
		}
	}
	return s
}

func (d *decoder) properties(v any, path string) Properties {
	mem, ok := members(v)
	if !ok {
		d.warn(path, "must be a mapping")
		return nil
	}
	out := make(Properties, 0, len(mem))
	for _, m := range mem {
		out = append(out, Property{Name: m.Key, Schema: d.schema(m.Value, join(path, m.Key))})
	}
	return out
}

// list reports false when v is not a sequence so the keyword counts as absent.
func (d *decoder) list(v any, path string) ([]*Schema, bool) {
	arr, ok := v.([]any)
	if !ok {
		d.warn(path, "must be a sequence")
		return nil, false
	}
	out := make([]*Schema, 0, len(arr))
	for i, it := range arr {
		out = append(out, d.schema(it, path+"/"+strconv.Itoa(i)))
	}
	return out, true
}

func (d *decoder) str(v any, path string) string {
	s, ok := v.(string)
	if !ok {
		d.warn(path, "must be a string")
	}
	return s
}

// strs keeps the string elements of a sequence and skips the rest.
func (d *decoder) strs(v any, path string) []string {
	if ss, ok := v.([]string); ok {
		return append([]string(nil), ss...)
	}
	arr, ok := v.([]any)
	if !ok {
		d.warn(path, "must be a sequence of strings")
		return nil
	}
	out := make([]string, 0, len(arr))
	for i, it := range arr {
		s, ok := it.(string)
		if !ok {
			d.warn(path+"/"+strconv.Itoa(i), "must be a string")
			continue
		}
		out = append(out, s)
	}
	return out
}

func (d *decoder) length(v any, path string) *int {
	n, ok := asInt(v)
	switch {
	case !ok:
		d.warn(path, "must be an integer")
		return nil
	case n < 0:
		d.warn(path, "must not be negative")
		return nil
	}
	return &n
}

// members views v as an ordered list of key/value pairs.
func members(v any) (engine.Object, bool) {
	switch t := v.(type) {
	case engine.Object:
		return t, true
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(engine.Object, len(keys))
		for i, k := range keys {
			out[i] = engine.Member{Key: k, Value: t[k]}
		}
		return out, true
	default:
		return nil, false
	}
}

func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		if t != math.Trunc(t) {
			return 0, false
		}
		return int(t), true
	case json.Number:
		i, err := t.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	}
	return 0, false
}

// scalar normalizes enum values: json.Number becomes int64 or float64.
func scalar(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case int:
		return int64(t)
	default:
		return engine.Plain(v)
	}
}

func join(path, key string) string {
	if path == "/" {
		return "/" + escape(key)
	}
	return path + "/" + escape(key)
}

// escape applies RFC 6901 escaping.
func escape(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "~", "~0"), "/", "~1")
}
