// cmd/mdpub/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"mdpub/internal/builder"
	"mdpub/internal/config"
	"mdpub/internal/scaffold"
	"mdpub/internal/server"
	"mdpub/internal/store"
)

const defaultArchive = "site.jar"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "mdpub: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	var sugar *zap.SugaredLogger

	return &cli.App{
		Name:     "mdpub",
		Version:  "v0.1.0",
		Compiled: time.Now(),
		Usage:    "publish a tree of markdown documents as HTML",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   scaffold.DefaultConfigFile,
				Usage:   "read the site configuration from `FILE`",
				EnvVars: []string{"MDPUB_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "project",
				Usage:   "read project metadata from `FILE` (default is project.yaml next to the configuration)",
				EnvVars: []string{"MDPUB_PROJECT"},
			},
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "run in debug mode",
				EnvVars: []string{"MDPUB_DEBUG"},
			},
		},
		Before: func(c *cli.Context) error {
			var z *zap.Logger
			var err error
			if c.Bool("debug") {
				z, err = zap.NewDevelopment()
			} else {
				z, err = zap.NewProduction()
			}
			if err != nil {
				return err
			}
			sugar = z.Sugar()
			return nil
		},
		After: func(c *cli.Context) error {
			if sugar != nil {
				sugar.Sync()
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "gen",
				Usage:     "generate HTML for the whole site or the given inputs",
				ArgsUsage: "[FILE|DIR|GLOB...]",
				Flags:     append(buildFlags(), archiveFlag("")),
				Action: func(c *cli.Context) error {
					opts := buildOptions(c)
					opts.Inputs = c.Args().Slice()
					opts.CleanDestination = len(opts.Inputs) == 0
					opts.Archive = c.String("archive")
					return generate(c, opts, sugar)
				},
			},
			{
				Name:      "pack",
				Usage:     "generate the site and bundle it into a jar archive",
				ArgsUsage: "[FILE]",
				Flags:     append(buildFlags(), archiveFlag(defaultArchive)),
				Action: func(c *cli.Context) error {
					opts := buildOptions(c)
					opts.CleanDestination = true
					opts.Archive = c.String("archive")
					if c.Args().Present() {
						opts.Archive = c.Args().First()
					}
					return generate(c, opts, sugar)
				},
			},
			{
				Name:  "serve",
				Usage: "build the site and preview it with live reload",
				Flags: append(buildFlags(), &cli.IntFlag{
					Name:    "port",
					Aliases: []string{"p"},
					Value:   1313,
					Usage:   "listen on `PORT`",
					EnvVars: []string{"MDPUB_PORT"},
				}),
				Action: func(c *cli.Context) error {
					return serve(c, sugar)
				},
			},
			{
				Name:  "new",
				Usage: "scaffold a site or a page",
				Subcommands: []*cli.Command{
					{
						Name:      "site",
						Usage:     "create a new site in DIR",
						ArgsUsage: "DIR",
						Action: func(c *cli.Context) error {
							if !c.Args().Present() {
								return cli.Exit("new site: missing directory", 2)
							}
							return scaffold.CreateNewSite(c.Args().First(), sugar)
						},
					},
					{
						Name:      "page",
						Usage:     "create a new draft page titled TITLE",
						ArgsUsage: "TITLE",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:    "section",
								Aliases: []string{"s"},
								Usage:   "create the page in `DIR` under the document root",
							},
						},
						Action: func(c *cli.Context) error {
							if !c.Args().Present() {
								return cli.Exit("new page: missing title", 2)
							}
							st, err := loadSite(c)
							if err != nil {
								return err
							}
							_, err = scaffold.CreateNewPage(st, c.String("section"), c.Args().First(), sugar)
							return err
						},
					},
				},
			},
		},
	}
}

func buildFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "sanitize",
			Usage: "strip unsafe HTML from the converted markdown",
		},
		&cli.BoolFlag{
			Name:  "stop-on-error",
			Usage: "abort on the first document that fails",
		},
	}
}

func archiveFlag(value string) cli.Flag {
	return &cli.StringFlag{
		Name:    "archive",
		Aliases: []string{"a"},
		Value:   value,
		Usage:   "bundle the generated site into `FILE`",
	}
}

func buildOptions(c *cli.Context) builder.BuildOptions {
	return builder.BuildOptions{
		Sanitize:    c.Bool("sanitize"),
		StopOnError: c.Bool("stop-on-error"),
	}
}

func loadSite(c *cli.Context) (*store.Store, error) {
	return config.LoadSite(c.String("config"), c.String("project"))
}

func generate(c *cli.Context, opts builder.BuildOptions, log *zap.SugaredLogger) error {
	st, err := loadSite(c)
	if err != nil {
		return err
	}
	n, err := builder.BuildSite(c.Context, st, opts, log)
	if err != nil {
		return fmt.Errorf("site generation failed: %w", err)
	}
	log.Infow("site generated", "pages", n, "dest", config.PathsOf(st).DestDir)
	return nil
}

func serve(c *cli.Context, log *zap.SugaredLogger) error {
	// The store is consumed by a build, so each rebuild starts from the
	// files on disk.
	st, err := loadSite(c)
	if err != nil {
		return err
	}
	paths := config.PathsOf(st)

	watch := []string{paths.DocRoot, paths.TemplateDir, c.String("config")}
	for _, dir := range config.IncludeDirs(st) {
		watch = append(watch, dir)
	}
	if p := c.String("project"); p != "" {
		watch = append(watch, p)
	} else {
		watch = append(watch, filepath.Join(filepath.Dir(c.String("config")), config.DefaultProjectFile))
	}

	opts := buildOptions(c)
	build := func(ctx context.Context, clean bool) error {
		st, err := loadSite(c)
		if err != nil {
			return err
		}
		opts.CleanDestination = clean
		n, err := builder.BuildSite(ctx, st, opts, log)
		if err != nil {
			return err
		}
		log.Infow("site built", "pages", n)
		return nil
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()
	return server.Run(ctx, server.Options{
		Port:  c.Int("port"),
		Root:  paths.DestDir,
		Watch: watch,
	}, build, log)
}
