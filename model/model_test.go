package model_test

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"

	"github.com/reoring/zodgen/model"
)

func optional(n model.Node) model.Node { return &model.Optional{Inner: n} }

// unitRegistry builds Unit{uid: string, parentUnit?: Unit} by hand.
func unitRegistry() *model.Registry {
	reg := model.NewRegistry()
	var unit *model.Lazy
	unit = model.NewLazy("Unit", func() model.Node {
		return &model.Object{
			Properties: []model.Property{
				{Name: "uid", Node: &model.String{}},
				{Name: "parentUnit", Node: optional(unit)},
			},
			Required: map[string]struct{}{"uid": {}},
		}
	})
	reg.Register("Unit", unit)
	return reg
}

func TestParse_RecursiveUnit_ThreeLevels(t *testing.T) {
	ctx := context.Background()
	unit, _ := unitRegistry().Lookup("Unit")
	in := map[string]any{
		"uid": "a",
		"parentUnit": map[string]any{
			"uid": "b",
			"parentUnit": map[string]any{
				"uid":   "c",
				"extra": true,
			},
		},
	}
	out, err := model.Parse(ctx, unit, in)
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	leaf := out.(map[string]any)["parentUnit"].(map[string]any)["parentUnit"].(map[string]any)
	if _, ok := leaf["extra"]; ok {
		t.Fatalf("unknown keys should be stripped: %#v", leaf)
	}
}

func TestParse_RecursiveUnit_MissingUIDAtAnyLevel(t *testing.T) {
	ctx := context.Background()
	unit, _ := unitRegistry().Lookup("Unit")
	cases := []struct {
		name string
		in   map[string]any
		path string
	}{
		{"root", map[string]any{"parentUnit": map[string]any{"uid": "b"}}, "/uid"},
		{"middle", map[string]any{"uid": "a", "parentUnit": map[string]any{"parentUnit": map[string]any{"uid": "c"}}}, "/parentUnit/uid"},
		{"leaf", map[string]any{"uid": "a", "parentUnit": map[string]any{"uid": "b", "parentUnit": map[string]any{}}}, "/parentUnit/parentUnit/uid"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := model.Validate(ctx, unit, tc.in)
			iss, ok := model.AsIssues(err)
			if !ok {
				t.Fatalf("expected issues, got %v", err)
			}
			if iss[0].Code != model.CodeRequired || iss[0].Path != tc.path {
				t.Fatalf("expected required at %s, got %v", tc.path, iss)
			}
		})
	}
}

func TestParse_OptionalRejectsNull(t *testing.T) {
	unit, _ := unitRegistry().Lookup("Unit")
	err := model.Validate(context.Background(), unit, map[string]any{"uid": "a", "parentUnit": nil})
	if err == nil {
		t.Fatalf("null is not absence for optional properties")
	}
}

func TestParse_StringChecks(t *testing.T) {
	ctx := context.Background()
	s := &model.String{Checks: []model.StringCheck{
		{Kind: model.CheckMin, Value: 2},
		{Kind: model.CheckMax, Value: 10},
		{Kind: model.CheckDate},
	}}
	if err := model.Validate(ctx, s, "2024-02-29"); err != nil {
		t.Fatalf("expected valid date: %v", err)
	}
	iss, _ := model.AsIssues(model.Validate(ctx, s, "2024-13-01"))
	if len(iss) != 1 || iss[0].Code != model.CodeInvalidFormat {
		t.Fatalf("expected invalid_format, got %v", iss)
	}
	iss, _ = model.AsIssues(model.Validate(ctx, s, "x"))
	if len(iss) != 2 || iss[0].Code != model.CodeTooShort {
		t.Fatalf("expected too_short then invalid_format, got %v", iss)
	}
	// length counts UTF-16 code units: one emoji is two units
	if err := model.Validate(ctx, &model.String{Checks: []model.StringCheck{{Kind: model.CheckMax, Value: 1}}}, "😀"); err == nil {
		t.Fatalf("expected too_long for surrogate pair")
	}
	if err := model.Validate(ctx, s, 12); err == nil {
		t.Fatalf("expected invalid_type for number")
	}
}

func TestParse_UnsupportedCheckIsReported(t *testing.T) {
	s := &model.String{Checks: []model.StringCheck{{Kind: "email"}}}
	iss, ok := model.AsIssues(model.Validate(context.Background(), s, "a@b"))
	if !ok || iss[0].Code != model.CodeInvalidFormat {
		t.Fatalf("unsupported check must not be dropped: %v", iss)
	}
}

func TestNewEnum_Collapses(t *testing.T) {
	if _, ok := model.NewEnum([]any{"only"}).(*model.Literal); !ok {
		t.Fatalf("single-value enum must be a Literal")
	}
	if _, ok := model.NewEnum(nil).(*model.Never); !ok {
		t.Fatalf("empty enum must be Never")
	}
	e, ok := model.NewEnum([]any{"a", "b"}).(*model.Enum)
	if !ok || !reflect.DeepEqual(e.Values, []any{"a", "b"}) {
		t.Fatalf("unexpected enum: %#v", e)
	}
}

func TestParse_EnumAndLiteral(t *testing.T) {
	ctx := context.Background()
	e := model.NewEnum([]any{"red", int64(2)})
	if err := model.Validate(ctx, e, "red"); err != nil {
		t.Fatalf("red: %v", err)
	}
	if err := model.Validate(ctx, e, json.Number("2")); err != nil {
		t.Fatalf("numbers compare numerically: %v", err)
	}
	if err := model.Validate(ctx, e, "blue"); err == nil {
		t.Fatalf("blue must be rejected")
	}
	lit := model.NewEnum([]any{"cat"})
	if err := model.Validate(ctx, lit, map[string]any{}); err == nil {
		t.Fatalf("object must not match a literal")
	}
}

func TestParse_UnionFirstMatchWins(t *testing.T) {
	ctx := context.Background()
	u := &model.Union{Options: []model.Node{&model.Number{}, &model.String{}}}
	out, err := model.Parse(ctx, u, "x")
	if err != nil || out != "x" {
		t.Fatalf("unexpected: %v %v", out, err)
	}
	iss, _ := model.AsIssues(model.Validate(ctx, u, true))
	if len(iss) != 1 || iss[0].Code != model.CodeInvalidUnion {
		t.Fatalf("expected invalid_union, got %v", iss)
	}
}

func TestParse_NullableNeverUnknown(t *testing.T) {
	ctx := context.Background()
	if err := model.Validate(ctx, &model.Nullable{Inner: &model.Boolean{}}, nil); err != nil {
		t.Fatalf("nullable accepts null: %v", err)
	}
	if err := model.Validate(ctx, &model.Never{}, "anything"); err == nil {
		t.Fatalf("never rejects everything")
	}
	obj := &model.Object{Properties: []model.Property{{Name: "x", Node: &model.Unknown{}}}}
	if err := model.Validate(ctx, obj, map[string]any{}); err != nil {
		t.Fatalf("unknown accepts absence: %v", err)
	}
}

func TestParse_ParentChildArrays(t *testing.T) {
	ctx := context.Background()
	reg := model.NewRegistry()
	var parent, child *model.Lazy
	parent = model.NewLazy("Parent", func() model.Node {
		return &model.Object{Properties: []model.Property{
			{Name: "children", Node: optional(&model.Array{Element: child})},
		}}
	})
	child = model.NewLazy("Child", func() model.Node {
		return &model.Object{Properties: []model.Property{
			{Name: "parent", Node: optional(parent)},
		}}
	})
	reg.Register("Parent", parent)
	reg.Register("Child", child)

	in := map[string]any{"children": []any{
		map[string]any{"parent": map[string]any{"children": []any{}}},
		map[string]any{},
	}}
	if err := model.Validate(ctx, parent, in); err != nil {
		t.Fatalf("parent: %v", err)
	}
	if err := model.Validate(ctx, child, map[string]any{"parent": map[string]any{}}); err != nil {
		t.Fatalf("child: %v", err)
	}
	iss, _ := model.AsIssues(model.Validate(ctx, parent, map[string]any{"children": []any{"x"}}))
	if len(iss) != 1 || iss[0].Path != "/children/0" {
		t.Fatalf("expected issue at /children/0, got %v", iss)
	}
}

func TestParse_AliasCycleTerminates(t *testing.T) {
	var a, b *model.Lazy
	a = model.NewLazy("A", func() model.Node { return b })
	b = model.NewLazy("B", func() model.Node { return a })
	iss, ok := model.AsIssues(model.Validate(context.Background(), a, "x"))
	if !ok || iss[0].Code != model.CodeInvalidType {
		t.Fatalf("expected circular reference issue, got %v", iss)
	}
}

func TestLazy_ResolveOnce(t *testing.T) {
	calls := 0
	l := model.NewLazy("X", func() model.Node { calls++; return &model.Number{} })
	first := l.Resolve()
	if l.Resolve() != first || calls != 1 {
		t.Fatalf("resolver must run once, ran %d times", calls)
	}
	if _, ok := model.NewLazy("Nil", func() model.Node { return nil }).Resolve().(*model.Unknown); !ok {
		t.Fatalf("nil body resolves to Unknown")
	}
}

func TestRegistry_OrderAndUniqueness(t *testing.T) {
	reg := model.NewRegistry()
	if !reg.Register("B", &model.Number{}) || !reg.Register("A", &model.Boolean{}) {
		t.Fatalf("register failed")
	}
	if reg.Register("B", &model.String{}) {
		t.Fatalf("duplicate names must be rejected")
	}
	if got := reg.Names(); !reflect.DeepEqual(got, []string{"B", "A"}) {
		t.Fatalf("unexpected order: %v", got)
	}
	if n, _ := reg.Lookup("B"); n.Kind() != model.KindNumber {
		t.Fatalf("first registration must win")
	}
	if _, ok := reg.Lazy("A"); ok {
		t.Fatalf("A is not lazy")
	}
}

func TestIssues_ErrorSummary(t *testing.T) {
	iss := model.Issues{
		{Code: "a", Path: "/1"}, {Code: "b", Path: "/2"}, {Code: "c", Path: "/3"}, {Code: "d", Path: "/4"},
	}
	if got := iss.Error(); got != "a at /1; b at /2; c at /3; ... (total 4)" {
		t.Fatalf("unexpected summary: %q", got)
	}
}
