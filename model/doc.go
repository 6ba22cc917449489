// Package model defines the Schema Model: a tagged union of validator
// primitives (Node) independent of the OpenAPI input and of the generated
// zod source, plus the ordered Registry of named schemas produced by the
// converter.
//
// Named schemas are always wrapped in a Lazy node carrying the schema name.
// Lazy is the only node allowed to close a cycle; everything below a Lazy is a
// DAG. Nodes are not modified after construction, so a Registry can be shared
// across goroutines once built.
//
// The model is executable: Parse and Validate check JSON-like Go values with
// the same semantics as the generated validators, which makes recursive
// schemas testable without a JavaScript runtime.
//
//	reg, _, _ := openapi.Convert(doc)
//	unit, _ := reg.Lookup("Unit")
//	out, err := model.Parse(ctx, unit, value)
//	if iss, ok := model.AsIssues(err); ok { ... }
package model
