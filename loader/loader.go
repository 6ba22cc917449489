// Package loader reads an OpenAPI document from a local file or an HTTP(S)
// URL and decodes its components.schemas, keeping declaration order.
package loader

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/reoring/zodgen/internal/engine"
	"github.com/reoring/zodgen/jsonschema"
)

// DefaultRetryMax is the number of retries for remote documents when
// Options.RetryMax is zero.
const DefaultRetryMax = 3

// Options configures Load. The zero value is usable.
type Options struct {
	// RetryMax bounds HTTP retries. Zero selects DefaultRetryMax; a negative
	// value disables retries.
	RetryMax int
	// RetryWaitMax caps the backoff between retries. Zero keeps the client
	// default.
	RetryWaitMax time.Duration
	// Logger receives HTTP retry logs. Nil disables them.
	Logger *zerolog.Logger
}

// DuplicateKeyError reports a mapping key that occurs twice in the source.
type DuplicateKeyError = engine.DuplicateKeyError

// Load fetches location and decodes it into a Document. Locations starting
// with http:// or https:// are fetched over the network; anything else is a
// file path.
func Load(ctx context.Context, location string, opts Options) (*jsonschema.Document, error) {
	var (
		b   []byte
		err error
	)
	if isURL(location) {
		b, err = fetch(ctx, location, opts)
	} else {
		b, err = os.ReadFile(location)
		err = errors.Wrapf(err, "read %s", location)
	}
	if err != nil {
		return nil, err
	}
	doc, err := Decode(b, location)
	return doc, errors.Wrapf(err, "load %s", location)
}

// Decode parses b as JSON or YAML. The format is JSON when name ends in .json
// or the first non-blank byte is '{'; otherwise YAML. A JSON input must hold
// exactly one value.
func Decode(b []byte, name string) (*jsonschema.Document, error) {
	var (
		tree any
		err  error
	)
	if isJSON(b, name) {
		tree, err = engine.DecodeComplete(engine.NewJSONBytes(b))
		if err != nil {
			return nil, errors.Wrap(err, "decode json")
		}
	} else {
		tree, err = engine.NewYAMLReader(bytes.NewReader(b)).Next()
		if err == io.EOF {
			return nil, errors.New("empty document")
		}
		if err != nil {
			return nil, errors.Wrap(err, "decode yaml")
		}
	}
	if tree == nil {
		return nil, errors.New("empty document")
	}
	return jsonschema.DecodeDocument(tree)
}

func isURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

func isJSON(b []byte, name string) bool {
	if name != "" {
		ext := strings.ToLower(filepath.Ext(strings.SplitN(name, "?", 2)[0]))
		switch ext {
		case ".json":
			return true
		case ".yaml", ".yml":
			return false
		}
	}
	t := bytes.TrimLeft(b, " \t\r\n")
	return len(t) > 0 && t[0] == '{'
}
