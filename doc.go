// Package zodgen turns the components.schemas section of an OpenAPI 3
// document into TypeScript source declaring one zod validator per schema.
//
// Pipeline:
//
//   - loader reads a file or URL (JSON or YAML) keeping declaration order
//   - openapi converts schemas into the model package's node tree; every named
//     schema is a Lazy so recursive and mutually recursive schemas terminate
//   - internal/deps derives the reference graph and sequences declarations so
//     that dependencies come first where the graph allows it
//   - internal/gen renders the sequence; references that would be forward at
//     runtime are wrapped in z.lazy
//
// Typical usage:
//
//	res, err := zodgen.CompileLocation(ctx, "openapi.yaml", zodgen.Options{})
//	if err != nil { ... }
//	os.Stdout.Write(res.Code)
//
// The converted registry is also usable on its own: model.Validate checks a
// JSON-like value against a named schema with the same semantics as the
// generated validators.
package zodgen
