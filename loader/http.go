package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

func newClient(opts Options) *retryablehttp.Client {
	c := retryablehttp.NewClient()
	switch {
	case opts.RetryMax > 0:
		c.RetryMax = opts.RetryMax
	case opts.RetryMax < 0:
		c.RetryMax = 0
	default:
		c.RetryMax = DefaultRetryMax
	}
	if opts.RetryWaitMax > 0 {
		c.RetryWaitMax = opts.RetryWaitMax
		if c.RetryWaitMin > c.RetryWaitMax {
			c.RetryWaitMin = c.RetryWaitMax
		}
	}
	if opts.Logger != nil {
		c.Logger = leveled{l: opts.Logger}
	} else {
		c.Logger = nil
	}
	return c
}

func fetch(ctx context.Context, url string, opts Options) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.5")
	resp, err := newClient(opts).Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected http status '%s'", url, resp.Status)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read body of %s", url)
	}
	return b, nil
}

// leveled adapts zerolog to retryablehttp.LeveledLogger.
type leveled struct{ l *zerolog.Logger }

func (z leveled) Error(msg string, kv ...interface{}) { z.l.Error().Fields(kv).Msg(msg) }
func (z leveled) Warn(msg string, kv ...interface{})  { z.l.Warn().Fields(kv).Msg(msg) }
func (z leveled) Info(msg string, kv ...interface{})  { z.l.Info().Fields(kv).Msg(msg) }
func (z leveled) Debug(msg string, kv ...interface{}) { z.l.Debug().Fields(kv).Msg(msg) }

var _ retryablehttp.LeveledLogger = leveled{}
