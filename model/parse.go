package model

import (
	"context"
	"encoding/json"
	"math"
	"reflect"
	"slices"
	"unicode/utf16"

	"github.com/go-openapi/strfmt"

	"github.com/reoring/zodgen/internal/engine"
)

// state is threaded through a parse. chain lists the Lazy names entered since
// the parser last descended into an object or array; revisiting one of them
// would recurse without consuming input.
type state struct {
	chain []string
}

func (state) descend() state { return state{} }

// Parse checks v against n and returns the parsed output. Objects in the output
// only keep declared properties. Validation failures are returned as Issues.
// v is a JSON-like value: map[string]any, []any, string, a number type
// (json.Number, float64, ints), bool or nil.
func Parse(ctx context.Context, n Node, v any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, iss := n.parse(state{}, engine.Plain(v), Root())
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

// Validate reports whether v conforms to n.
func Validate(ctx context.Context, n Node, v any) error {
	_, err := Parse(ctx, n, v)
	return err
}

func (s *String) parse(_ state, v any, at PathRef) (any, Issues) {
	str, ok := v.(string)
	if !ok {
		return nil, Issues{at.Issue(CodeInvalidType, "expected string", "expected", "string")}
	}
	var iss Issues
	for _, c := range s.Checks {
		switch c.Kind {
		case CheckMin:
			if n := utf16Len(str); n < c.Value {
				iss = append(iss, at.Issue(CodeTooShort, "", "min", c.Value, "got", n))
			}
		case CheckMax:
			if n := utf16Len(str); n > c.Value {
				iss = append(iss, at.Issue(CodeTooLong, "", "max", c.Value, "got", n))
			}
		case CheckDate:
			if !strfmt.IsDate(str) {
				iss = append(iss, at.Issue(CodeInvalidFormat, "expected date (YYYY-MM-DD)", "format", "date"))
			}
		default:
			iss = append(iss, at.Issue(CodeInvalidFormat, "unsupported string check "+string(c.Kind), "check", string(c.Kind)))
		}
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return str, nil
}

// utf16Len counts UTF-16 code units, matching JavaScript string length.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

func (*Number) parse(_ state, v any, at PathRef) (any, Issues) {
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) {
		return nil, Issues{at.Issue(CodeInvalidType, "expected number", "expected", "number")}
	}
	return v, nil
}

func (*Boolean) parse(_ state, v any, at PathRef) (any, Issues) {
	b, ok := v.(bool)
	if !ok {
		return nil, Issues{at.Issue(CodeInvalidType, "expected boolean", "expected", "boolean")}
	}
	return b, nil
}

func (o *Object) parse(st state, v any, at PathRef) (any, Issues) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, Issues{at.Issue(CodeInvalidType, "expected object", "expected", "object")}
	}
	child := st.descend()
	out := make(map[string]any, len(o.Properties))
	var iss Issues
	for _, p := range o.Properties {
		raw, present := m[p.Name]
		if !present {
			if acceptsMissing(p.Node, nil) {
				continue
			}
			iss = append(iss, at.Field(p.Name).Issue(CodeRequired, "missing property "+p.Name))
			continue
		}
		val, pis := p.Node.parse(child, raw, at.Field(p.Name))
		if len(pis) > 0 {
			iss = append(iss, pis...)
			continue
		}
		out[p.Name] = val
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

// acceptsMissing reports whether an absent object member satisfies n.
func acceptsMissing(n Node, seen []string) bool {
	switch t := n.(type) {
	case *Optional, *Unknown:
		return true
	case *Nullable:
		return acceptsMissing(t.Inner, seen)
	case *Union:
		for _, opt := range t.Options {
			if acceptsMissing(opt, seen) {
				return true
			}
		}
		return false
	case *Lazy:
		if slices.Contains(seen, t.Name) {
			return false
		}
		return acceptsMissing(t.Resolve(), append(seen, t.Name))
	default:
		return false
	}
}

func (a *Array) parse(st state, v any, at PathRef) (any, Issues) {
	arr, ok := v.([]any)
	if !ok {
		return nil, Issues{at.Issue(CodeInvalidType, "expected array", "expected", "array")}
	}
	child := st.descend()
	out := make([]any, 0, len(arr))
	var iss Issues
	for i, it := range arr {
		val, eis := a.Element.parse(child, it, at.Index(i))
		if len(eis) > 0 {
			iss = append(iss, eis...)
			continue
		}
		out = append(out, val)
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

func (u *Union) parse(st state, v any, at PathRef) (any, Issues) {
	for _, opt := range u.Options {
		if out, iss := opt.parse(st, v, at); len(iss) == 0 {
			return out, nil
		}
	}
	return nil, Issues{at.Issue(CodeInvalidUnion, "no union option matched", "options", len(u.Options))}
}

func (e *Enum) parse(_ state, v any, at PathRef) (any, Issues) {
	for _, want := range e.Values {
		if sameValue(want, v) {
			return v, nil
		}
	}
	return nil, Issues{at.Issue(CodeInvalidEnum, "", "options", e.Values)}
}

func (l *Literal) parse(_ state, v any, at PathRef) (any, Issues) {
	if sameValue(l.Value, v) {
		return v, nil
	}
	return nil, Issues{at.Issue(CodeInvalidLiteral, "", "expected", l.Value)}
}

func (n *Nullable) parse(st state, v any, at PathRef) (any, Issues) {
	if v == nil {
		return nil, nil
	}
	return n.Inner.parse(st, v, at)
}

func (o *Optional) parse(st state, v any, at PathRef) (any, Issues) {
	return o.Inner.parse(st, v, at)
}

func (*Never) parse(_ state, _ any, at PathRef) (any, Issues) {
	return nil, Issues{at.Issue(CodeInvalidType, "expected never", "expected", "never")}
}

func (*Unknown) parse(_ state, v any, _ PathRef) (any, Issues) { return v, nil }

func (l *Lazy) parse(st state, v any, at PathRef) (any, Issues) {
	if slices.Contains(st.chain, l.Name) {
		return nil, Issues{at.Issue(CodeInvalidType, "circular reference to "+l.Name, "schema", l.Name)}
	}
	next := state{chain: append(st.chain[:len(st.chain):len(st.chain)], l.Name)}
	return l.Resolve().parse(next, v, at)
}

// sameValue compares scalars, treating all numeric types as float64.
func sameValue(want, got any) bool {
	wf, wok := toFloat(want)
	gf, gok := toFloat(got)
	if wok || gok {
		return wok && gok && wf == gf
	}
	return reflect.DeepEqual(want, got)
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
