package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/kurochkinivan/pdf2csv/internal/app"
	"github.com/kurochkinivan/pdf2csv/internal/config"
	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"
)

var version = "dev"

func cmd() *cli.Command {
	var config string

	return &cli.Command{
		Name:    "pdf2csv",
		Usage:   "Convert PDF documents to CSV through the extraction service",
		Version: version,
		Flags:   globalFlags(&config),
		Commands: []*cli.Command{
			serveCmd(&config),
			convertCmd(),
		},
	}
}

func serveCmd(config *string) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the session API used by the browser client",
		Flags: serveFlags(config),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log, err := loggerFrom(ctx)
			if err != nil {
				return err
			}

			return app.New(log, loadConfig(cmd)).Run(ctx)
		},
	}
}

func convertCmd() *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "Upload a PDF, optionally keep selected columns, and save the CSV",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "column",
				Aliases: []string{"C"},
				Usage:   "Keep column `NAME` in the generated CSV, repeat for several columns",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the CSV to `PATH` (defaults to the input name with a .csv extension)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log, err := loggerFrom(ctx)
			if err != nil {
				return err
			}

			if cmd.Args().Len() != 1 {
				return errors.New("expected exactly one FILE argument")
			}

			_, err = app.New(log, loadConfig(cmd)).Convert(ctx, app.ConvertParams{
				InputPath:  cmd.Args().First(),
				Columns:    cmd.StringSlice("column"),
				OutputPath: cmd.String("output"),
			})

			return err
		},
	}
}

func loadConfig(cmd *cli.Command) *config.Config {
	return config.Load(cmd)
}

func loggerFrom(ctx context.Context) (*slog.Logger, error) {
	log, ok := ctx.Value(loggerKey{}).(*slog.Logger)
	if !ok {
		return nil, errors.New("failed to get logger from context")
	}

	return log, nil
}

func globalFlags(config *string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Validator:   validateConfig,
			Usage:       "Load configuration from `FILE`",
			Destination: config,
		},
		&cli.StringFlag{
			Name:      "server-url",
			Aliases:   []string{"s"},
			Usage:     "Set extraction service base URL",
			Value:     "http://localhost:8001",
			Sources:   cli.NewValueSourceChain(yaml.YAML("extraction.server_url", altsrc.NewStringPtrSourcer(config))),
			Validator: validateServerURL,
		},
		&cli.DurationFlag{
			Name:    "request-timeout",
			Usage:   "Set extraction request timeout, 0 waits indefinitely",
			Value:   0,
			Sources: cli.NewValueSourceChain(yaml.YAML("extraction.request_timeout", altsrc.NewStringPtrSourcer(config))),
		},
	}
}

func serveFlags(config *string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "http-host",
			Usage:   "Set HTTP server host",
			Value:   "localhost",
			Sources: cli.NewValueSourceChain(yaml.YAML("http.host", altsrc.NewStringPtrSourcer(config))),
		},
		&cli.StringFlag{
			Name:    "http-port",
			Usage:   "Set HTTP server port",
			Value:   "8080",
			Sources: cli.NewValueSourceChain(yaml.YAML("http.port", altsrc.NewStringPtrSourcer(config))),
		},
		&cli.DurationFlag{
			Name:    "http-idle-timeout",
			Usage:   "Set HTTP server idle timeout",
			Value:   1 * time.Minute,
			Sources: cli.NewValueSourceChain(yaml.YAML("http.idle_timeout", altsrc.NewStringPtrSourcer(config))),
		},
		&cli.DurationFlag{
			Name:    "http-read-timeout",
			Usage:   "Set HTTP server read timeout",
			Value:   1 * time.Minute,
			Sources: cli.NewValueSourceChain(yaml.YAML("http.read_timeout", altsrc.NewStringPtrSourcer(config))),
		},
		&cli.DurationFlag{
			Name:    "http-write-timeout",
			Usage:   "Set HTTP server write timeout, 0 disables it",
			Value:   0,
			Sources: cli.NewValueSourceChain(yaml.YAML("http.write_timeout", altsrc.NewStringPtrSourcer(config))),
		},
		&cli.DurationFlag{
			Name:      "session-ttl",
			Usage:     "Drop browser sessions idle for longer than this",
			Value:     1 * time.Hour,
			Validator: validatePositiveDuration,
			Sources:   cli.NewValueSourceChain(yaml.YAML("sessions.ttl", altsrc.NewStringPtrSourcer(config))),
		},
		&cli.DurationFlag{
			Name:      "session-sweep-interval",
			Usage:     "Set idle session sweep interval",
			Value:     1 * time.Minute,
			Validator: validatePositiveDuration,
			Sources:   cli.NewValueSourceChain(yaml.YAML("sessions.sweep_interval", altsrc.NewStringPtrSourcer(config))),
		},
	}
}

func validateServerURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", raw, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url %q must use http or https", raw)
	}

	if u.Host == "" {
		return fmt.Errorf("url %q has no host", raw)
	}

	return nil
}

func validatePositiveDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("must be positive, got %s", d)
	}

	return nil
}

func validateConfig(config string) error {
	info, err := os.Stat(config)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%q does not exist", config)
		}
		return fmt.Errorf("failed to stat %q: %w", config, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%q is a directory, not a file", config)
	}

	ext := filepath.Ext(info.Name())
	if ext != ".yml" && ext != ".yaml" {
		return fmt.Errorf("invalid extension %q", config)
	}

	return nil
}
