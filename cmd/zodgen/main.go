package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/reoring/zodgen/i18n"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// .env only seeds variables that are not already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("failed to load .env")
	}

	if err := newApp().Run(os.Args); err != nil {
		log.Error().Err(err).Msg("zodgen failed")
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "zodgen",
		Usage:     "generate zod validators from OpenAPI components.schemas",
		ArgsUsage: "<path|url>",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "log level (debug, info, warn, error)",
				EnvVars: []string{"ZODGEN_LOG_LEVEL"},
			},
			&cli.IntFlag{
				Name:    "retries",
				Value:   3,
				Usage:   "HTTP retries when the document is a URL (0 disables)",
				EnvVars: []string{"ZODGEN_RETRIES"},
			},
			&cli.StringFlag{
				Name:    "lang",
				Value:   "en",
				Usage:   "language of validation messages (en, ja)",
				EnvVars: []string{"ZODGEN_LANG"},
			},
		}, generateFlags()...),
		Before: func(c *cli.Context) error {
			lvl, err := zerolog.ParseLevel(c.String("log-level"))
			if err != nil {
				return err
			}
			zerolog.SetGlobalLevel(lvl)
			i18n.SetLanguage(c.String("lang"))
			return nil
		},
		Action: generateAction,
		Commands: []*cli.Command{
			{
				Name:      "generate",
				Usage:     "write the generated TypeScript module",
				ArgsUsage: "<path|url>",
				Flags:     generateFlags(),
				Action:    generateAction,
			},
			{
				Name:      "order",
				Usage:     "print the declaration order and the references of each schema",
				ArgsUsage: "<path|url>",
				Action:    orderAction,
			},
			{
				Name:      "validate",
				Usage:     "validate a JSON instance against a named schema",
				ArgsUsage: "<path|url> <instance.json>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "schema",
						Aliases:  []string{"s"},
						Usage:    "name of the schema in components.schemas",
						Required: true,
					},
				},
				Action: validateAction,
			},
		},
	}
}
