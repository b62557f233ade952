// Package internal provides the main application initialization and the
// doclint tasks.
package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/doclint/internal/apperr"
	"github.com/starford/doclint/internal/checks"
	"github.com/starford/doclint/internal/docs"
	"github.com/starford/doclint/internal/index"
	"github.com/starford/doclint/internal/openapi"
	"github.com/starford/doclint/internal/storage"
)

// Task is one doclint command. It returns the process exit code; an error
// means the command could not run at all.
//
// Tasks receive the application Run assembled, which stays private to this
// package like the one Option configures: obtain a Task from the
// constructors below (CheckLinks, Watch, ...) rather than writing one.
type Task func(ctx context.Context, app *application) (int, error)

// Run builds the application from opts and runs task against it.
func Run(ctx context.Context, task Task, opts ...Option) (int, error) {
	app := &application{
		out:    os.Stdout,
		logOut: os.Stderr,
	}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return 1, fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := newLogger(cfg.App, app.logOut)
	slog.SetDefault(logger)
	app.logger = logger

	logger.Debug("Configuration loaded",
		slog.String("root", cfg.Docs.Root),
		slog.String("nav_file", cfg.Docs.NavFile),
		slog.String("graph_dsn", cfg.Graph.DSN),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, err := storage.NewFS(cfg.Docs.Root)
	if err != nil {
		return 1, fmt.Errorf("init storage: %w", err)
	}
	app.store = store
	app.oracle = docs.NewOracle(store, cfg.Docs.Extensions, cfg.Docs.IndexName)
	app.closure = docs.NewClosure(store, app.oracle, logger)
	app.checks = checks.NewService(store, app.oracle, app.closure, checks.Options{
		NavFile:      cfg.Docs.NavFile,
		SpecialFiles: cfg.Docs.SpecialFiles,
		AssetDirs:    cfg.Docs.AssetDirs,
		Exclude:      cfg.Links.Exclude,
		Inventory:    app.inventoryFilter(),
	}, logger)

	return task(ctx, app)
}

func newLogger(cfg ApplicationConfig, w io.Writer) *slog.Logger {
	hopts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}

func (a *application) inventoryFilter() storage.Filter {
	return storage.Filter{
		Suffixes:   a.config.Docs.Extensions,
		SkipDirs:   a.config.Docs.SkipDirs,
		SkipHidden: true,
	}
}

// CheckLinks reports dead internal links. Exit code 1 when any are found.
func CheckLinks() Task {
	return func(ctx context.Context, app *application) (int, error) {
		report, err := app.checks.DeadLinks(ctx)
		if err != nil {
			return 1, err
		}
		report.Render(app.out)
		return report.ExitCode(), nil
	}
}

// CheckAssets reports missing images. Exit code 1 when any are found.
func CheckAssets() Task {
	return func(ctx context.Context, app *application) (int, error) {
		report, err := app.checks.Assets(ctx)
		if err != nil {
			return 1, err
		}
		report.Render(app.out)
		return report.ExitCode(), nil
	}
}

// CheckUnreferenced reports documentation files that nothing reaches.
func CheckUnreferenced() Task {
	return func(ctx context.Context, app *application) (int, error) {
		report, err := app.checks.Unreferenced(ctx)
		if err != nil {
			return 1, err
		}
		report.Render(app.out)
		return report.ExitCode(), nil
	}
}

// ListReferenced prints the absolute paths of every referenced document,
// one per line or as a JSON array.
func ListReferenced(asJSON bool) Task {
	return func(ctx context.Context, app *application) (int, error) {
		paths, err := app.checks.Referenced(ctx)
		if err != nil {
			return 1, err
		}
		abs := make([]string, len(paths))
		for i, p := range paths {
			abs[i] = filepath.Join(app.store.Root(), filepath.FromSlash(p))
		}

		if asJSON {
			data, err := json.MarshalIndent(abs, "", "  ")
			if err != nil {
				return 1, err
			}
			fmt.Fprintln(app.out, string(data))
			return 0, nil
		}
		for _, p := range abs {
			fmt.Fprintln(app.out, p)
		}
		return 0, nil
	}
}

// EnhanceOpenAPI enhances the generated OpenAPI specs in place. Exit code
// 1 when the spec directory holds no spec files.
func EnhanceOpenAPI() Task {
	return func(ctx context.Context, app *application) (int, error) {
		cfg := app.config.OpenAPI
		enhancer := openapi.NewEnhancer(openapi.Options{
			BaseURL:           cfg.BaseURL,
			ServerDescription: cfg.ServerDescription,
			TitlePlaceholder:  cfg.TitlePlaceholder,
		})
		results, err := enhancer.EnhanceDir(ctx, app.store, cfg.Dir, cfg.Suffix, app.logger)
		if errors.Is(err, apperr.ErrNoSpecs) {
			app.logger.Error("openapi: nothing to enhance", slog.String("error", err.Error()))
			return 1, nil
		}
		if err != nil {
			return 1, err
		}
		openapi.RenderResults(app.out, "Enhancing OpenAPI specs", "enhanced", results)
		return 0, nil
	}
}

// InjectServers sets the server URL on every legacy spec that lacks it.
// A missing legacy directory is reported and left alone.
func InjectServers() Task {
	return func(ctx context.Context, app *application) (int, error) {
		cfg := app.config.Legacy
		results, err := openapi.InjectServers(ctx, app.store, cfg.Dir, cfg.ServerURL, app.logger)
		if errors.Is(err, fs.ErrNotExist) {
			app.logger.Warn("openapi: legacy directory not found", slog.String("dir", cfg.Dir))
			return 0, nil
		}
		if err != nil {
			return 1, err
		}
		openapi.RenderResults(app.out, "Injecting servers into legacy specs", "updated", results)
		return 0, nil
	}
}

// GenerateAPINavigation rebuilds the API tab of the navigation manifest.
// Exit code 1 when the tab is missing or there are no spec files.
func GenerateAPINavigation() Task {
	return func(ctx context.Context, app *application) (int, error) {
		cfg := app.config
		summary, err := openapi.GenerateNavigation(ctx, app.store, openapi.NavOptions{
			NavFile:    cfg.Docs.NavFile,
			Tab:        cfg.OpenAPI.NavTab,
			IntroGroup: cfg.OpenAPI.NavIntroGroup,
			IntroPage:  cfg.OpenAPI.NavIntroPage,
			SpecDir:    cfg.OpenAPI.Dir,
			Suffix:     cfg.OpenAPI.Suffix,
		})
		if errors.Is(err, apperr.ErrNavTabNotFound) || errors.Is(err, apperr.ErrNoSpecs) {
			app.logger.Error("openapi: navigation not updated", slog.String("error", err.Error()))
			return 1, nil
		}
		if err != nil {
			return 1, err
		}
		summary.Render(app.out, cfg.OpenAPI.NavTab)
		return 0, nil
	}
}

// openGraph opens the configured link graph and syncs it with the tree.
func (a *application) openGraph(ctx context.Context) (*index.DB, index.Source, error) {
	src := index.Source{
		Store:  a.store,
		Oracle: a.oracle,
		Filter: a.inventoryFilter(),
	}
	db, err := index.Open(a.config.Graph.DSN)
	if err != nil {
		return nil, src, fmt.Errorf("init index: %w", err)
	}
	if err := index.Sync(ctx, db, src, a.logger); err != nil {
		db.Close()
		return nil, src, fmt.Errorf("sync index: %w", err)
	}
	return db, src, nil
}

// Backlinks prints every document that links to the document at p.
func Backlinks(p string) Task {
	return func(ctx context.Context, app *application) (int, error) {
		db, _, err := app.openGraph(ctx)
		if err != nil {
			return 1, err
		}
		defer db.Close()

		target := app.oracle.DocPath(docs.Canonical(p))
		links, err := db.Backlinks(target)
		if err != nil {
			return 1, err
		}
		renderLinks(app.out, fmt.Sprintf("Documents linking to %s", target), links, func(l index.LinkRow) string {
			return fmt.Sprintf("%s:%d (%s)", l.Source, l.Line, l.Kind)
		})
		return 0, nil
	}
}

// Outlinks prints the references of the document at p and whether each
// target exists. Exit code 1 when p is not an indexed document.
func Outlinks(p string) Task {
	return func(ctx context.Context, app *application) (int, error) {
		db, _, err := app.openGraph(ctx)
		if err != nil {
			return 1, err
		}
		defer db.Close()

		source := app.oracle.DocPath(docs.Canonical(p))
		if _, err := db.Document(source); errors.Is(err, apperr.ErrNotFound) {
			app.logger.Error("graph: unknown document", slog.String("path", source))
			return 1, nil
		} else if err != nil {
			return 1, err
		}

		links, err := db.Outlinks(source)
		if err != nil {
			return 1, err
		}
		renderLinks(app.out, fmt.Sprintf("Links from %s", source), links, func(l index.LinkRow) string {
			status := ""
			if !app.oracle.Exists(l.Target) {
				status = " [missing]"
			}
			return fmt.Sprintf("%d: %s (%s)%s", l.Line, l.Target, l.Kind, status)
		})
		return 0, nil
	}
}

func renderLinks(w io.Writer, title string, links []index.LinkRow, line func(index.LinkRow) string) {
	fmt.Fprintf(w, "%s: %d\n", title, len(links))
	for _, l := range links {
		fmt.Fprintf(w, "  %s\n", line(l))
	}
}
