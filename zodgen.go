package zodgen

import (
	"context"

	"github.com/pkg/errors"

	"github.com/reoring/zodgen/internal/deps"
	"github.com/reoring/zodgen/internal/gen"
	"github.com/reoring/zodgen/jsonschema"
	"github.com/reoring/zodgen/loader"
	"github.com/reoring/zodgen/model"
	"github.com/reoring/zodgen/openapi"
)

// Options configures a compilation. The zero value renders with the default
// preamble, suffix and indentation.
type Options struct {
	Import string // preamble line, default `import { z } from "zod";`
	Suffix string // identifier suffix, default "Schema"
	Indent string // indentation unit, default two spaces

	Loader loader.Options // used by CompileLocation only
}

// Result is the output of a successful compilation.
type Result struct {
	// Code is the generated TypeScript module.
	Code []byte
	// Order lists schema names in emitted order.
	Order []string
	// Deps maps every schema to the names it references, in registry order.
	Deps []Dependency
	// Registry holds the converted schemas; it can be used with
	// model.Validate to check instances.
	Registry *model.Registry
	// Diag carries non-fatal warnings from conversion.
	Diag openapi.Diag
}

// Dependency is one named schema and the schemas it references.
type Dependency struct {
	Name string
	Refs []string
}

// Compile converts doc, orders its named schemas and renders them. Nothing is
// returned on a fatal error.
func Compile(doc *jsonschema.Document, opts Options) (*Result, error) {
	reg, diag, err := openapi.Convert(doc)
	if err != nil {
		return nil, errors.Wrap(err, "convert")
	}
	m := deps.Analyze(reg)
	order := deps.Sequence(m)
	code, err := gen.Render(reg, order, gen.Options{Import: opts.Import, Suffix: opts.Suffix, Indent: opts.Indent})
	if err != nil {
		return nil, errors.Wrap(err, "render")
	}
	ds := make([]Dependency, len(m))
	for i, e := range m {
		ds[i] = Dependency{Name: e.Name, Refs: e.Deps}
	}
	return &Result{Code: code, Order: order, Deps: ds, Registry: reg, Diag: diag}, nil
}

// CompileLocation loads a document from a file path or URL and compiles it.
func CompileLocation(ctx context.Context, location string, opts Options) (*Result, error) {
	doc, err := loader.Load(ctx, location, opts.Loader)
	if err != nil {
		return nil, err
	}
	return Compile(doc, opts)
}
