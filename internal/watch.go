package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/doclint/internal/index"
)

type change struct {
	kind string
	path string
}

// Watch runs the link and asset checks, then re-runs them after every
// batch of changes to the tree until the context is cancelled or a
// SIGINT/SIGTERM arrives. Deleted documents are reported together with
// the documents that still link to them.
func Watch() Task {
	return func(ctx context.Context, app *application) (int, error) {
		db, src, err := app.openGraph(ctx)
		if err != nil {
			return 1, err
		}
		defer db.Close()

		app.runChecks(ctx)

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		changes := make(chan change, 64)
		g, gCtx := errgroup.WithContext(ctx)

		// Watch the tree and keep the link graph current.
		g.Go(func() error {
			return index.Watch(gCtx, db, src, index.WatchOptions{
				Root:      app.store.Root(),
				Reconcile: app.config.Watch.Debounce,
			}, app.logger, func(kind, path string) {
				select {
				case changes <- change{kind: kind, path: path}:
				case <-gCtx.Done():
				}
			})
		})

		// Re-run the checks once the tree has been quiet for the debounce window.
		g.Go(func() error {
			debounce(gCtx, app.config.Watch.Debounce, changes, func(batch []change) {
				app.logger.Info("Changes detected", slog.Int("files", len(batch)))
				app.reportDeleted(db, batch)
				app.runChecks(gCtx)
			})
			return nil
		})

		// Handle shutdown signals.
		g.Go(func() error {
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			select {
			case sig := <-quit:
				app.logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
			case <-gCtx.Done():
				app.logger.Info("Context cancelled, stopping watcher")
			}
			cancel()
			return nil
		})

		if err := g.Wait(); err != nil {
			app.logger.Error("Watcher error", slog.String("error", err.Error()))
			return 1, err
		}

		app.logger.Info("Watcher stopped")
		return 0, nil
	}
}

// runChecks runs the dead-link and asset reports. Failures are logged; the
// watch loop keeps going.
func (a *application) runChecks(ctx context.Context) {
	if links, err := a.checks.DeadLinks(ctx); err != nil {
		a.logger.Error("dead-link check failed", slog.String("error", err.Error()))
	} else {
		links.Render(a.out)
	}
	if assets, err := a.checks.Assets(ctx); err != nil {
		a.logger.Error("asset check failed", slog.String("error", err.Error()))
	} else {
		assets.Render(a.out)
	}
}

func (a *application) reportDeleted(db *index.DB, batch []change) {
	for _, c := range batch {
		if c.kind != index.EventDeleted {
			continue
		}
		links, err := db.Backlinks(c.path)
		if err != nil {
			a.logger.Warn("backlinks lookup failed", slog.String("path", c.path), slog.String("error", err.Error()))
			continue
		}
		if len(links) == 0 {
			continue
		}
		fmt.Fprintf(a.out, "\n%s was deleted and is still linked from:\n", c.path)
		for _, l := range links {
			fmt.Fprintf(a.out, "  %s:%d\n", l.Source, l.Line)
		}
	}
}

// debounce collects changes from in and calls flush with the latest change
// per path once no new change has arrived for delay. It returns when ctx
// is done.
func debounce(ctx context.Context, delay time.Duration, in <-chan change, flush func([]change)) {
	pending := make(map[string]change)
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case c := <-in:
			pending[c.path] = c
			if timer == nil {
				timer = time.NewTimer(delay)
				fire = timer.C
			} else {
				timer.Reset(delay)
			}

		case <-fire:
			timer, fire = nil, nil
			batch := make([]change, 0, len(pending))
			for _, c := range pending {
				batch = append(batch, c)
			}
			slices.SortFunc(batch, func(a, b change) int {
				return strings.Compare(a.path, b.path)
			})
			clear(pending)
			flush(batch)
		}
	}
}
