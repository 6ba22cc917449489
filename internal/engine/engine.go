package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// Token represents a streaming token.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
}

// DuplicateKeyError reports a duplicate key found in a mapping. Line/Col are
// zero when the source does not track positions.
type DuplicateKeyError struct {
	Key       string
	FirstLine int
	FirstCol  int
	Line      int
	Col       int
}

func (e *DuplicateKeyError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("duplicate key %q", e.Key)
	}
	return fmt.Sprintf("duplicate key %q at %d:%d (first at %d:%d)", e.Key, e.Line, e.Col, e.FirstLine, e.FirstCol)
}

// DecodeOrdered builds a value tree from the token source. Objects are decoded
// as Object so that key order survives; numbers are kept as json.Number.
// Duplicate keys within one object are rejected with *DuplicateKeyError.
func DecodeOrdered(src TokenSource) (any, error) {
	tok, err := src.NextToken()
	if err != nil {
		return nil, err
	}
	return decodeValue(src, tok)
}

// DecodeComplete is DecodeOrdered for a source that must hold exactly one
// value; anything after it is an error.
func DecodeComplete(src TokenSource) (any, error) {
	v, err := DecodeOrdered(src)
	if err != nil {
		return nil, err
	}
	if _, err := src.NextToken(); err != io.EOF {
		return nil, ErrTrailingData
	}
	return v, nil
}

// ErrTrailingData reports input left over after the top-level value.
var ErrTrailingData = errors.New("unexpected data after top-level value")

func decodeValue(src TokenSource, tok Token) (any, error) {
	switch tok.Kind {
	case KindBeginObject:
		return decodeObject(src)
	case KindBeginArray:
		return decodeArray(src)
	case KindString:
		return tok.String, nil
	case KindNumber:
		return json.Number(tok.Number), nil
	case KindBool:
		return tok.Bool, nil
	case KindNull:
		return nil, nil
	default:
		return nil, io.ErrUnexpectedEOF
	}
}

func decodeObject(src TokenSource) (any, error) {
	obj := Object{}
	seen := make(map[string]struct{})
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndObject {
			return obj, nil
		}
		if tok.Kind != KindKey {
			return nil, io.ErrUnexpectedEOF
		}
		if _, dup := seen[tok.String]; dup {
			return nil, &DuplicateKeyError{Key: tok.String}
		}
		seen[tok.String] = struct{}{}
		vt, err := src.NextToken()
		if err != nil {
			return nil, err
		}
		v, err := decodeValue(src, vt)
		if err != nil {
			return nil, err
		}
		obj = append(obj, Member{Key: tok.String, Value: v})
	}
}

func decodeArray(src TokenSource) (any, error) {
	arr := []any{}
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndArray {
			return arr, nil
		}
		v, err := decodeValue(src, tok)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}
