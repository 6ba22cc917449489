// Package middleware validates HTTP JSON request bodies against a converted
// schema with the same semantics as the generated zod validators.
package middleware

import (
	"context"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/reoring/zodgen/internal/engine"
	"github.com/reoring/zodgen/model"
)

type ctxKeyParsed struct{}

// parsed boxes the body so that a valid null is still found.
type parsed struct{ v any }

// ContextWithParsed attaches the parsed body to the context.
func ContextWithParsed(ctx context.Context, v any) context.Context {
	return context.WithValue(ctx, ctxKeyParsed{}, parsed{v})
}

// ParsedFromContext returns the body stored by ValidateJSON. The boolean
// reports presence; the value itself may be nil for a null body.
func ParsedFromContext(ctx context.Context) (any, bool) {
	p, ok := ctx.Value(ctxKeyParsed{}).(parsed)
	return p.v, ok
}

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(issues []model.Issue) map[string]any {
	return map[string]any{"issues": issues}
}

// ValidateJSON parses the request body with n (duplicate keys and trailing
// data are errors),
// stores the parsed value in the request context and calls next. Invalid
// bodies get 400 with an issues payload.
func ValidateJSON(n model.Node) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := engine.DecodeComplete(engine.NewJSONReader(r.Body))
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}
			v, err := model.Parse(r.Context(), n, body)
			if err != nil {
				if iss, ok := model.AsIssues(err); ok {
					writeJSON(w, http.StatusBadRequest, ErrorPayload(iss))
					return
				}
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithParsed(r.Context(), v)))
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
