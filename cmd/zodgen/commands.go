package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/reoring/zodgen"
	"github.com/reoring/zodgen/loader"
	"github.com/reoring/zodgen/model"
)

func generateFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "write to `FILE` instead of stdout",
			EnvVars: []string{"ZODGEN_OUTPUT"},
		},
		&cli.StringFlag{
			Name:  "suffix",
			Value: "Schema",
			Usage: "identifier suffix for each schema",
		},
		&cli.StringFlag{
			Name:  "import",
			Usage: "replace the import preamble line",
		},
	}
}

func compileOptions(c *cli.Context) zodgen.Options {
	retries := c.Int("retries")
	if retries == 0 {
		retries = -1
	}
	logger := log.Logger
	return zodgen.Options{
		Import: c.String("import"),
		Suffix: c.String("suffix"),
		Loader: loader.Options{RetryMax: retries, Logger: &logger},
	}
}

func compile(c *cli.Context, location string) (*zodgen.Result, error) {
	res, err := zodgen.CompileLocation(c.Context, location, compileOptions(c))
	if err != nil {
		return nil, err
	}
	for _, w := range res.Diag.Warnings() {
		log.Warn().Str("location", location).Msg(w)
	}
	return res, nil
}

func location(c *cli.Context) (string, error) {
	if c.NArg() < 1 {
		return "", fmt.Errorf("missing document path or url")
	}
	return c.Args().First(), nil
}

func generateAction(c *cli.Context) error {
	loc, err := location(c)
	if err != nil {
		_ = cli.ShowAppHelp(c)
		return err
	}
	res, err := compile(c, loc)
	if err != nil {
		return err
	}
	out := c.String("output")
	if out == "" {
		_, err = c.App.Writer.Write(res.Code)
		return err
	}
	if err := os.WriteFile(out, res.Code, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", out)
	}
	log.Info().Str("output", out).Int("schemas", len(res.Order)).Msg("generated")
	return nil
}

func orderAction(c *cli.Context) error {
	loc, err := location(c)
	if err != nil {
		return err
	}
	res, err := compile(c, loc)
	if err != nil {
		return err
	}
	refs := make(map[string][]string, len(res.Deps))
	for _, d := range res.Deps {
		refs[d.Name] = d.Refs
	}
	for i, name := range res.Order {
		line := fmt.Sprintf("%d. %s", i+1, name)
		if r := refs[name]; len(r) > 0 {
			line += " -> " + strings.Join(r, ", ")
		}
		fmt.Fprintln(c.App.Writer, line)
	}
	return nil
}

func validateAction(c *cli.Context) error {
	if c.NArg() < 2 {
		return fmt.Errorf("usage: zodgen validate --schema NAME <path|url> <instance.json>")
	}
	res, err := compile(c, c.Args().Get(0))
	if err != nil {
		return err
	}
	name := c.String("schema")
	node, ok := res.Registry.Lookup(name)
	if !ok {
		return fmt.Errorf("schema %q not found in components.schemas", name)
	}
	instance, err := readInstance(c.Args().Get(1))
	if err != nil {
		return err
	}
	err = model.Validate(c.Context, node, instance)
	if iss, isIssues := model.AsIssues(err); isIssues {
		for _, is := range iss {
			fmt.Fprintf(c.App.Writer, "%s\t%s\t%s\n", is.Path, is.Code, is.Message)
		}
		return fmt.Errorf("%s: %d issue(s)", name, len(iss))
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s: ok\n", name)
	return nil
}

// readInstance decodes a single JSON value from path, or stdin when path is "-".
func readInstance(path string) (any, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "open instance")
		}
		defer f.Close()
		r = f
	}
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, errors.Wrap(err, "decode instance")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("decode instance: unexpected data after top-level value")
	}
	return v, nil
}
