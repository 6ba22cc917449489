package engine

import (
	"bytes"
	"io"
	"strconv"

	j "github.com/goccy/go-json"
)

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind         containerKind
	expectingKey bool
}

// jsonSource adapts the go-json streaming decoder to TokenSource.
type jsonSource struct {
	dec   *j.Decoder
	stack []frame
}

// NewJSONReader wraps an io.Reader into a TokenSource using go-json.
func NewJSONReader(r io.Reader) TokenSource {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	return &jsonSource{dec: dec}
}

// NewJSONBytes wraps a byte slice into a TokenSource using go-json.
func NewJSONBytes(b []byte) TokenSource { return NewJSONReader(bytes.NewReader(b)) }

func (s *jsonSource) NextToken() (Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		return Token{}, err
	}
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			s.stack = append(s.stack, frame{kind: kindObject, expectingKey: true})
			return Token{Kind: KindBeginObject}, nil
		case '}':
			s.pop()
			return Token{Kind: KindEndObject}, nil
		case '[':
			s.stack = append(s.stack, frame{kind: kindArray})
			return Token{Kind: KindBeginArray}, nil
		case ']':
			s.pop()
			return Token{Kind: KindEndArray}, nil
		}
	case string:
		if n := len(s.stack); n > 0 {
			top := &s.stack[n-1]
			if top.kind == kindObject && top.expectingKey {
				top.expectingKey = false
				return Token{Kind: KindKey, String: v}, nil
			}
		}
		s.valueDone()
		return Token{Kind: KindString, String: v}, nil
	case bool:
		s.valueDone()
		return Token{Kind: KindBool, Bool: v}, nil
	case j.Number:
		s.valueDone()
		return Token{Kind: KindNumber, Number: string(v)}, nil
	case float64:
		s.valueDone()
		return Token{Kind: KindNumber, Number: strconv.FormatFloat(v, 'g', -1, 64)}, nil
	}
	s.valueDone()
	return Token{Kind: KindNull}, nil
}

// pop closes the current container; the container itself is a completed value
// of its parent.
func (s *jsonSource) pop() {
	if n := len(s.stack); n > 0 {
		s.stack = s.stack[:n-1]
	}
	s.valueDone()
}

// valueDone flips the enclosing object back to expecting a key.
func (s *jsonSource) valueDone() {
	if n := len(s.stack); n > 0 {
		top := &s.stack[n-1]
		if top.kind == kindObject && !top.expectingKey {
			top.expectingKey = true
		}
	}
}
