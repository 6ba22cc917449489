package model

import "sync"

// Kind identifies a Node variant.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBoolean
	KindObject
	KindArray
	KindUnion
	KindEnum
	KindLiteral
	KindNullable
	KindOptional
	KindLazy
	KindNever
	KindUnknown
)

var kindNames = [...]string{
	KindString:   "string",
	KindNumber:   "number",
	KindBoolean:  "boolean",
	KindObject:   "object",
	KindArray:    "array",
	KindUnion:    "union",
	KindEnum:     "enum",
	KindLiteral:  "literal",
	KindNullable: "nullable",
	KindOptional: "optional",
	KindLazy:     "lazy",
	KindNever:    "never",
	KindUnknown:  "unknown",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(?)"
}

// Node is a Schema Model node. The set of implementations is closed.
type Node interface {
	Kind() Kind
	parse(st state, v any, at PathRef) (any, Issues)
}

// CheckKind names a string constraint.
type CheckKind string

const (
	CheckMin  CheckKind = "min"
	CheckMax  CheckKind = "max"
	CheckDate CheckKind = "date"
)

// StringCheck is one constraint on a String node. Value is unused for date.
type StringCheck struct {
	Kind  CheckKind
	Value int
}

// String validates strings. Checks are kept in the order they were added.
type String struct {
	Checks []StringCheck
}

func (*String) Kind() Kind { return KindString }

// Number validates numbers; integers and floats are not distinguished.
type Number struct{}

func (*Number) Kind() Kind { return KindNumber }

// Boolean validates booleans.
type Boolean struct{}

func (*Boolean) Kind() Kind { return KindBoolean }

// Property is a named object member.
type Property struct {
	Name string
	Node Node
}

// Object validates objects with declared properties. Properties keep source
// order; Required lists the names declared as required. Non-required
// properties are expected to be wrapped in Optional by the producer.
type Object struct {
	Properties []Property
	Required   map[string]struct{}
}

func (*Object) Kind() Kind { return KindObject }

// Property returns the node of the named property.
func (o *Object) Property(name string) (Node, bool) {
	for _, p := range o.Properties {
		if p.Name == name {
			return p.Node, true
		}
	}
	return nil, false
}

// IsRequired reports whether name is in the required set.
func (o *Object) IsRequired(name string) bool {
	_, ok := o.Required[name]
	return ok
}

// Array validates homogeneous arrays.
type Array struct {
	Element Node
}

func (*Array) Kind() Kind { return KindArray }

// Union accepts a value matching any option. Options keep source order.
type Union struct {
	Options []Node
}

func (*Union) Kind() Kind { return KindUnion }

// Enum accepts one of several values. Build it with NewEnum so that the
// single-value case becomes a Literal.
type Enum struct {
	Values []any
}

func (*Enum) Kind() Kind { return KindEnum }

// NewEnum returns an Enum over values, a Literal when there is exactly one
// value, and Never when there are none.
func NewEnum(values []any) Node {
	switch len(values) {
	case 0:
		return &Never{}
	case 1:
		return &Literal{Value: values[0]}
	default:
		return &Enum{Values: append([]any(nil), values...)}
	}
}

// Literal accepts exactly one value.
type Literal struct {
	Value any
}

func (*Literal) Kind() Kind { return KindLiteral }

// Nullable additionally accepts null.
type Nullable struct {
	Inner Node
}

func (*Nullable) Kind() Kind { return KindNullable }

// Optional additionally accepts absence when used as an object property.
type Optional struct {
	Inner Node
}

func (*Optional) Kind() Kind { return KindOptional }

// Never rejects every value.
type Never struct{}

func (*Never) Kind() Kind { return KindNever }

// Unknown accepts every value, including absence.
type Unknown struct{}

func (*Unknown) Kind() Kind { return KindUnknown }

// Lazy defers construction of a named schema until first use. The name is
// carried explicitly so that consumers never need to recover it by identity.
type Lazy struct {
	Name string

	once    sync.Once
	resolve func() Node
	node    Node
}

func (*Lazy) Kind() Kind { return KindLazy }

// NewLazy returns a Lazy whose body is produced by resolve on first use.
// resolve must not call Resolve on the Lazy it belongs to.
func NewLazy(name string, resolve func() Node) *Lazy {
	return &Lazy{Name: name, resolve: resolve}
}

// Resolve returns the memoized body. A nil body resolves to Unknown.
func (l *Lazy) Resolve() Node {
	l.once.Do(func() {
		if l.resolve != nil {
			l.node = l.resolve()
		}
		if l.node == nil {
			l.node = &Unknown{}
		}
		l.resolve = nil
	})
	return l.node
}
