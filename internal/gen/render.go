// Package gen renders a Schema Model registry as TypeScript source that
// declares one zod validator per named schema.
package gen

import (
	"bytes"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	json "github.com/goccy/go-json"

	"github.com/reoring/zodgen/model"
)

const (
	DefaultImport = `import { z } from "zod";`
	DefaultSuffix = "Schema"
	DefaultIndent = "  "
)

// Options tunes the emitted text. Zero values select the defaults.
type Options struct {
	Import string // preamble line
	Suffix string // appended to schema names to form identifiers
	Indent string // one nesting level
}

func (o Options) withDefaults() Options {
	if o.Import == "" {
		o.Import = DefaultImport
	}
	if o.Suffix == "" {
		o.Suffix = DefaultSuffix
	}
	if o.Indent == "" {
		o.Indent = DefaultIndent
	}
	return o
}

// UnsupportedCheckError aborts rendering when a string carries a check kind
// the generator cannot express.
type UnsupportedCheckError struct {
	Schema string
	Kind   model.CheckKind
}

func (e *UnsupportedCheckError) Error() string {
	return fmt.Sprintf("gen: schema %s: unsupported string check %q", e.Schema, e.Kind)
}

// Render emits the preamble followed by `export const <name><Suffix> = <expr>;`
// for each name in order, separated by blank lines. Names that are not valid
// JavaScript identifiers are rewritten by identifiers. A reference to a schema
// that is already emitted is a plain identifier; a reference to one that is
// being emitted or comes later is wrapped in z.lazy. Output is deterministic
// for a given registry and order.
func Render(reg *model.Registry, order []string, opts Options) ([]byte, error) {
	r := &renderer{
		opts:       opts.withDefaults(),
		generated:  make(map[string]bool, len(order)),
		inProgress: make(map[string]bool),
		idents:     identifiers(reg.Names()),
	}
	var buf bytes.Buffer
	buf.WriteString(r.opts.Import)
	buf.WriteString("\n")
	for _, name := range order {
		n, ok := reg.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("gen: schema %q is not registered", name)
		}
		if r.generated[name] {
			return nil, fmt.Errorf("gen: schema %q listed twice", name)
		}
		if l, isLazy := n.(*model.Lazy); isLazy {
			n = l.Resolve()
		}
		r.current = name
		r.inProgress[name] = true
		expr, err := r.expr(n, 0)
		if err != nil {
			return nil, err
		}
		delete(r.inProgress, name)
		r.generated[name] = true
		fmt.Fprintf(&buf, "\nexport const %s = %s;\n", r.ident(name), expr)
	}
	return buf.Bytes(), nil
}

type renderer struct {
	opts       Options
	generated  map[string]bool
	inProgress map[string]bool
	idents     map[string]string
	current    string
}

func (r *renderer) ident(name string) string {
	if id, ok := r.idents[name]; ok {
		return id + r.opts.Suffix
	}
	return sanitize(name) + r.opts.Suffix
}

var identInvalid = regexp.MustCompile(`[^\p{L}\p{N}_$]`)

// identifiers maps each name to a distinct identifier stem. Names that are
// already valid keep themselves; the others are sanitized in registration
// order and get _2, _3, ... on collision.
func identifiers(names []string) map[string]string {
	out := make(map[string]string, len(names))
	taken := make(map[string]bool, len(names))
	var rest []string
	for _, n := range names {
		if sanitize(n) == n {
			out[n] = n
			taken[n] = true
			continue
		}
		rest = append(rest, n)
	}
	for _, n := range rest {
		base := sanitize(n)
		id := base
		for i := 2; taken[id]; i++ {
			id = base + "_" + strconv.Itoa(i)
		}
		out[n] = id
		taken[id] = true
	}
	return out
}

// sanitize replaces characters that cannot appear in an identifier with _
// and prefixes _ when the name starts with a digit.
func sanitize(name string) string {
	s := identInvalid.ReplaceAllString(name, "_")
	if s == "" {
		return "_"
	}
	if c, _ := utf8.DecodeRuneInString(s); unicode.IsNumber(c) {
		s = "_" + s
	}
	return s
}

func (r *renderer) expr(n model.Node, depth int) (string, error) {
	switch t := n.(type) {
	case *model.Lazy:
		if r.generated[t.Name] && !r.inProgress[t.Name] {
			return r.ident(t.Name), nil
		}
		return "z.lazy(() => " + r.ident(t.Name) + ")", nil
	case *model.Object:
		return r.object(t, depth)
	case *model.Array:
		e, err := r.expr(t.Element, depth)
		if err != nil {
			return "", err
		}
		return "z.array(" + e + ")", nil
	case *model.Union:
		return r.union(t, depth)
	case *model.String:
		return r.str(t)
	case *model.Number:
		return "z.number()", nil
	case *model.Boolean:
		return "z.boolean()", nil
	case *model.Enum:
		vals := make([]string, len(t.Values))
		for i, v := range t.Values {
			s, err := literal(v)
			if err != nil {
				return "", err
			}
			vals[i] = s
		}
		return "z.enum([" + strings.Join(vals, ", ") + "])", nil
	case *model.Literal:
		s, err := literal(t.Value)
		if err != nil {
			return "", err
		}
		return "z.literal(" + s + ")", nil
	case *model.Nullable:
		e, err := r.expr(t.Inner, depth)
		if err != nil {
			return "", err
		}
		return e + ".nullable()", nil
	case *model.Optional:
		e, err := r.expr(t.Inner, depth)
		if err != nil {
			return "", err
		}
		return e + ".optional()", nil
	case *model.Never:
		return "z.never()", nil
	default:
		return "z.unknown()", nil
	}
}

func (r *renderer) object(o *model.Object, depth int) (string, error) {
	if len(o.Properties) == 0 {
		return "z.object({})", nil
	}
	inner := strings.Repeat(r.opts.Indent, depth+1)
	var b strings.Builder
	b.WriteString("z.object({\n")
	for i, p := range o.Properties {
		v, err := r.expr(p.Node, depth+1)
		if err != nil {
			return "", err
		}
		k, err := key(p.Name)
		if err != nil {
			return "", err
		}
		b.WriteString(inner + k + ": " + v)
		if i < len(o.Properties)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(strings.Repeat(r.opts.Indent, depth) + "})")
	return b.String(), nil
}

func (r *renderer) union(u *model.Union, depth int) (string, error) {
	opts := make([]string, len(u.Options))
	for i, o := range u.Options {
		e, err := r.expr(o, depth)
		if err != nil {
			return "", err
		}
		opts[i] = e
	}
	list := "[" + strings.Join(opts, ", ") + "]"
	if k, ok := discriminator(u); ok {
		dk, err := literal(k)
		if err != nil {
			return "", err
		}
		return "z.discriminatedUnion(" + dk + ", " + list + ")", nil
	}
	return "z.union(" + list + ")", nil
}

// discriminator returns the shared key when u has at least two options, each
// an object with exactly one literal-valued property, all under the same key
// and with pairwise distinct values.
func discriminator(u *model.Union) (string, bool) {
	if len(u.Options) < 2 {
		return "", false
	}
	var key string
	var seen []any
	for i, o := range u.Options {
		obj, ok := o.(*model.Object)
		if !ok {
			return "", false
		}
		var name string
		var val any
		n := 0
		for _, p := range obj.Properties {
			if lit, isLit := p.Node.(*model.Literal); isLit {
				name, val = p.Name, lit.Value
				n++
			}
		}
		if n != 1 || (i > 0 && name != key) {
			return "", false
		}
		for _, s := range seen {
			if reflect.DeepEqual(s, val) {
				return "", false
			}
		}
		key = name
		seen = append(seen, val)
	}
	return key, true
}

func (r *renderer) str(s *model.String) (string, error) {
	var mins, maxs []int
	date := false
	for _, c := range s.Checks {
		switch c.Kind {
		case model.CheckMin:
			mins = append(mins, c.Value)
		case model.CheckMax:
			maxs = append(maxs, c.Value)
		case model.CheckDate:
			date = true
		default:
			return "", &UnsupportedCheckError{Schema: r.current, Kind: c.Kind}
		}
	}
	var b strings.Builder
	b.WriteString("z.string()")
	for _, n := range mins {
		b.WriteString(".min(" + strconv.Itoa(n) + ")")
	}
	for _, n := range maxs {
		b.WriteString(".max(" + strconv.Itoa(n) + ")")
	}
	if date {
		b.WriteString(".date()")
	}
	return b.String(), nil
}

var bareKey = regexp.MustCompile(`^[$A-Za-z_][\w$]*$`)

func key(name string) (string, error) {
	if bareKey.MatchString(name) {
		return name, nil
	}
	return literal(name)
}

// literal renders a scalar as a JavaScript literal.
func literal(v any) (string, error) {
	b, err := json.MarshalNoEscape(v)
	if err != nil {
		return "", fmt.Errorf("gen: literal %v: %w", v, err)
	}
	return string(b), nil
}
