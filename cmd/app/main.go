package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/doclint/internal"
	pkgconfig "github.com/starford/doclint/pkg/config"
)

// loadConfig reads the config file named by --config and applies the
// global flag overrides.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if root := cmd.String("root"); root != "" {
		cfg.Docs.Root = root
	}
	if cmd.Bool("debug") {
		cfg.App.LogLevel = slog.LevelDebug
	}
	return cfg, nil
}

// action adapts a task into a cli action. A non-zero exit code becomes a
// cli exit error without a message; the task has already reported why.
func action(build func(cmd *cli.Command) (internal.Task, error)) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		task, err := build(cmd)
		if err != nil {
			return err
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		code, err := internal.Run(ctx, task, internal.WithConfig(cfg))
		if err != nil {
			return fmt.Errorf("%s: %w", cmd.Name, err)
		}
		if code != 0 {
			return cli.Exit("", code)
		}
		return nil
	}
}

func fixed(t internal.Task) func(*cli.Command) (internal.Task, error) {
	return func(*cli.Command) (internal.Task, error) { return t, nil }
}

// pathArg builds a task from the single positional document path.
func pathArg(task func(string) internal.Task) func(*cli.Command) (internal.Task, error) {
	return func(cmd *cli.Command) (internal.Task, error) {
		if cmd.Args().Len() != 1 {
			return nil, fmt.Errorf("%s: expected exactly one document path, got %d", cmd.Name, cmd.Args().Len())
		}
		return task(cmd.Args().First()), nil
	}
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic", slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
			os.Exit(1)
		}
	}()

	cmd := &cli.Command{
		Name:  "doclint",
		Usage: "Documentation maintenance: dead links, missing assets, unreferenced pages, and OpenAPI post-processing",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "doclint.yaml",
				Value:       "doclint.yaml",
				Sources:     cli.EnvVars("DOCLINT_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Documentation root (overrides docs.root)",
				Sources: cli.EnvVars("DOCLINT_ROOT"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "links",
				Usage:  "Report internal links and navigation entries that resolve to no file",
				Action: action(fixed(internal.CheckLinks())),
			},
			{
				Name:   "assets",
				Usage:  "Report root-relative images that exist in no asset directory",
				Action: action(fixed(internal.CheckAssets())),
			},
			{
				Name:   "unreferenced",
				Usage:  "List documentation files unreachable from the navigation",
				Action: action(fixed(internal.CheckUnreferenced())),
			},
			{
				Name:  "referenced",
				Usage: "Print the absolute paths of all referenced documents",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Print a JSON array"},
				},
				Action: action(func(cmd *cli.Command) (internal.Task, error) {
					return internal.ListReferenced(cmd.Bool("json")), nil
				}),
			},
			{
				Name:  "openapi",
				Usage: "Post-process generated OpenAPI specs",
				Commands: []*cli.Command{
					{
						Name:   "enhance",
						Usage:  "Add servers, security, error responses, and code samples",
						Action: action(fixed(internal.EnhanceOpenAPI())),
					},
					{
						Name:   "inject-servers",
						Usage:  "Set the server URL on legacy specs",
						Action: action(fixed(internal.InjectServers())),
					},
					{
						Name:   "nav",
						Usage:  "Rebuild the API navigation tab from the spec files",
						Action: action(fixed(internal.GenerateAPINavigation())),
					},
				},
			},
			{
				Name:  "graph",
				Usage: "Query the document link graph",
				Commands: []*cli.Command{
					{
						Name:      "backlinks",
						Usage:     "List documents linking to a document",
						ArgsUsage: "<path>",
						Action:    action(pathArg(internal.Backlinks)),
					},
					{
						Name:      "links",
						Usage:     "List the references of a document",
						ArgsUsage: "<path>",
						Action:    action(pathArg(internal.Outlinks)),
					},
				},
			},
			{
				Name:   "watch",
				Usage:  "Re-run the link and asset checks whenever the tree changes",
				Action: action(fixed(internal.Watch())),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
