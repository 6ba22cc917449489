package gen

import (
	"errors"
	"strings"
	"testing"

	"github.com/reoring/zodgen/model"
)

func register(reg *model.Registry, name string, body func() model.Node) *model.Lazy {
	l := model.NewLazy(name, body)
	reg.Register(name, l)
	return l
}

func TestRender_DirectReferenceWhenGenerated(t *testing.T) {
	reg := model.NewRegistry()
	var b *model.Lazy
	register(reg, "A", func() model.Node {
		return &model.Object{
			Properties: []model.Property{{Name: "b", Node: b}},
			Required:   map[string]struct{}{"b": {}},
		}
	})
	b = register(reg, "B", func() model.Node {
		return &model.Object{Properties: []model.Property{{Name: "name", Node: &model.Optional{Inner: &model.String{}}}}}
	})
	out, err := Render(reg, []string{"B", "A"}, Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := `import { z } from "zod";

export const BSchema = z.object({
  name: z.string().optional()
});

export const ASchema = z.object({
  b: BSchema
});
`
	if string(out) != want {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestRender_DeferredReferenceForCycles(t *testing.T) {
	reg := model.NewRegistry()
	var parent, child *model.Lazy
	parent = register(reg, "Parent", func() model.Node {
		return &model.Object{Properties: []model.Property{
			{Name: "children", Node: &model.Optional{Inner: &model.Array{Element: child}}},
		}}
	})
	child = register(reg, "Child", func() model.Node {
		return &model.Object{Properties: []model.Property{
			{Name: "parent", Node: &model.Optional{Inner: parent}},
		}}
	})
	register(reg, "Unit", func() model.Node {
		return &model.Object{Properties: []model.Property{
			{Name: "parentUnit", Node: &model.Optional{Inner: mustLazy(t, reg, "Unit")}},
		}}
	})
	out, err := Render(reg, []string{"Child", "Parent", "Unit"}, Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	s := string(out)
	for _, want := range []string{
		"parent: z.lazy(() => ParentSchema).optional()",
		"children: z.array(ChildSchema).optional()",
		"parentUnit: z.lazy(() => UnitSchema).optional()",
	} {
		if !strings.Contains(s, want) {
			t.Fatalf("missing %q in:\n%s", want, s)
		}
	}
}

func mustLazy(t *testing.T, reg *model.Registry, name string) *model.Lazy {
	t.Helper()
	l, ok := reg.Lazy(name)
	if !ok {
		t.Fatalf("%s not registered", name)
	}
	return l
}

func TestRender_Leaves(t *testing.T) {
	cases := []struct {
		name string
		node model.Node
		want string
	}{
		{"never", &model.Never{}, "z.never()"},
		{"unknown", &model.Unknown{}, "z.unknown()"},
		{"number", &model.Number{}, "z.number()"},
		{"nullable boolean", &model.Nullable{Inner: &model.Boolean{}}, "z.boolean().nullable()"},
		{"enum", model.NewEnum([]any{"red", "green"}), `z.enum(["red", "green"])`},
		{"literal", model.NewEnum([]any{"a<b"}), `z.literal("a<b")`},
		{"numeric literal", &model.Literal{Value: int64(3)}, "z.literal(3)"},
		{"union", &model.Union{Options: []model.Node{&model.String{}, &model.Number{}}}, "z.union([z.string(), z.number()])"},
		{"empty object", &model.Object{}, "z.object({})"},
		{
			"checks in fixed order",
			&model.String{Checks: []model.StringCheck{
				{Kind: model.CheckDate}, {Kind: model.CheckMax, Value: 10}, {Kind: model.CheckMin, Value: 1},
			}},
			"z.string().min(1).max(10).date()",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reg := model.NewRegistry()
			reg.Register("X", tc.node)
			out, err := Render(reg, []string{"X"}, Options{})
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			want := "export const XSchema = " + tc.want + ";\n"
			if !strings.HasSuffix(string(out), want) {
				t.Fatalf("got %q want suffix %q", out, want)
			}
		})
	}
}

func TestRender_QuotesNonIdentifierKeysAndNests(t *testing.T) {
	reg := model.NewRegistry()
	reg.Register("X", &model.Object{Properties: []model.Property{
		{Name: "content-type", Node: &model.String{}},
		{Name: "$id", Node: &model.String{}},
		{Name: "inner", Node: &model.Object{Properties: []model.Property{{Name: "9lives", Node: &model.Boolean{}}}}},
	}})
	out, err := Render(reg, []string{"X"}, Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := `export const XSchema = z.object({
  "content-type": z.string(),
  $id: z.string(),
  inner: z.object({
    "9lives": z.boolean()
  })
});
`
	if !strings.HasSuffix(string(out), want) {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestRender_DiscriminatedUnion(t *testing.T) {
	variant := func(kind string, extra string) model.Node {
		return &model.Object{Properties: []model.Property{
			{Name: "kind", Node: &model.Literal{Value: kind}},
			{Name: extra, Node: &model.Number{}},
		}}
	}
	reg := model.NewRegistry()
	reg.Register("Shape", &model.Union{Options: []model.Node{variant("circle", "r"), variant("square", "side")}})
	reg.Register("Same", &model.Union{Options: []model.Node{variant("a", "x"), variant("a", "y")}})
	out, err := Render(reg, []string{"Shape", "Same"}, Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, `ShapeSchema = z.discriminatedUnion("kind", [z.object({`) {
		t.Fatalf("expected discriminated union:\n%s", s)
	}
	if !strings.Contains(s, "SameSchema = z.union([") {
		t.Fatalf("duplicate discriminator values must fall back to a plain union:\n%s", s)
	}
}

func TestRender_UnsupportedCheckIsFatal(t *testing.T) {
	reg := model.NewRegistry()
	reg.Register("Email", &model.String{Checks: []model.StringCheck{{Kind: "email"}}})
	out, err := Render(reg, []string{"Email"}, Options{})
	var uc *UnsupportedCheckError
	if !errors.As(err, &uc) || uc.Schema != "Email" || uc.Kind != "email" {
		t.Fatalf("expected UnsupportedCheckError, got %v", err)
	}
	if out != nil {
		t.Fatalf("no partial output on fatal error")
	}
}

func TestRender_OptionsAndEmptyOrder(t *testing.T) {
	reg := model.NewRegistry()
	reg.Register("A", &model.Boolean{})
	out, err := Render(reg, []string{"A"}, Options{Import: `import { z } from "zod/v4";`, Suffix: "Validator", Indent: "\t"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != "import { z } from \"zod/v4\";\n\nexport const AValidator = z.boolean();\n" {
		t.Fatalf("unexpected output: %q", out)
	}
	out, _ = Render(model.NewRegistry(), nil, Options{})
	if string(out) != DefaultImport+"\n" {
		t.Fatalf("empty registry renders only the preamble: %q", out)
	}
	if _, err := Render(reg, []string{"Missing"}, Options{}); err == nil {
		t.Fatalf("unknown name must fail")
	}
}

func TestRender_Deterministic(t *testing.T) {
	build := func() []byte {
		reg := model.NewRegistry()
		reg.Register("A", &model.Object{Properties: []model.Property{
			{Name: "x", Node: model.NewEnum([]any{"p", "q", "r"})},
			{Name: "y", Node: &model.Array{Element: &model.Nullable{Inner: &model.Number{}}}},
		}})
		out, err := Render(reg, []string{"A"}, Options{})
		if err != nil {
			t.Fatalf("render: %v", err)
		}
		return out
	}
	if string(build()) != string(build()) {
		t.Fatalf("output must be byte-identical")
	}
}

func TestRender_NamesBecomeValidIdentifiers(t *testing.T) {
	reg := model.NewRegistry()
	var pet *model.Lazy
	register(reg, "Pet-Item", func() model.Node {
		return &model.Object{
			Properties: []model.Property{{Name: "pet", Node: pet}},
			Required:   map[string]struct{}{"pet": {}},
		}
	})
	pet = register(reg, "v1.Pet", func() model.Node { return &model.String{} })
	register(reg, "Pet_Item", func() model.Node { return &model.Boolean{} })
	register(reg, "1st", func() model.Node { return &model.Number{} })

	out, err := Render(reg, []string{"Pet-Item", "v1.Pet", "Pet_Item", "1st"}, Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := `import { z } from "zod";

export const Pet_Item_2Schema = z.object({
  pet: z.lazy(() => v1_PetSchema)
});

export const v1_PetSchema = z.string();

export const Pet_ItemSchema = z.boolean();

export const _1stSchema = z.number();
`
	if string(out) != want {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestIdentifiers_StableAcrossRuns(t *testing.T) {
	names := []string{"a b", "a_b", "a-b", "ok", ""}
	first := identifiers(names)
	if got := identifiers(names); len(got) != len(first) {
		t.Fatalf("size changed: %v %v", first, got)
	}
	want := map[string]string{"a_b": "a_b", "ok": "ok", "a b": "a_b_2", "a-b": "a_b_3", "": "_"}
	for k, v := range want {
		if first[k] != v {
			t.Errorf("%q: got %q want %q", k, first[k], v)
		}
	}
}
