package model

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes reported by Parse and Validate.
const (
	CodeInvalidType    = "invalid_type"
	CodeRequired       = "required"
	CodeTooShort       = "too_short"
	CodeTooLong        = "too_long"
	CodeInvalidEnum    = "invalid_enum"
	CodeInvalidLiteral = "invalid_literal"
	CodeInvalidFormat  = "invalid_format"
	CodeInvalidUnion   = "invalid_union"
)

// Issue represents a single validation entry.
type Issue struct {
	Path    string `json:"path"` // JSON Pointer (for example: /children/2/parent).
	Code    string `json:"code"` // One of the codes listed above.
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"` // Optional: expected type, format name, etc.
	// Params carries structured parameters (e.g., {"min":1, "got":0}).
	Params map[string]any `json:"params,omitempty"`
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s at %s", iss[i].Code, iss[i].Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}
