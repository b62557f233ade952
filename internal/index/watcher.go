package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/starford/doclint/internal/storage"
)

// Event kinds passed to EventCallback.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
	// EventChanged reports a change to a file that is not indexed, such
	// as an image or the navigation manifest.
	EventChanged = "changed"
)

// EventCallback is called after a watcher-driven change.
type EventCallback func(kind string, path string)

// WatchOptions configures Watch.
type WatchOptions struct {
	// Root is the absolute path of the documentation tree.
	Root string
	// Reconcile is how long to wait after a rename before reconciling
	// the index with the tree.
	Reconcile time.Duration
}

// tempPrefix marks the storage layer's atomic-write temporaries.
const tempPrefix = ".doclint-tmp-"

// Watch starts an fsnotify watcher on the documentation root and processes
// file change events until ctx is cancelled. Documents are re-indexed as
// they change; cb (if non-nil) is called after each index mutation and for
// every other file that changes.
//
// New directories created at runtime are automatically added to the watch
// list. Rename events trigger a reconciliation pass that removes stale
// index entries whose files no longer exist on disk.
func Watch(ctx context.Context, db *DB, src Source, opts WatchOptions, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, opts.Root, src.Filter); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", opts.Root))

	notify := func(kind, rel string) {
		if cb != nil {
			cb(kind, rel)
		}
	}

	reconcileDelay := opts.Reconcile
	if reconcileDelay <= 0 {
		reconcileDelay = 200 * time.Millisecond
	}
	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(reconcileDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcile(ctx, db, src, logger, notify)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name
			if strings.HasPrefix(filepath.Base(absPath), tempPrefix) {
				continue
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if skipDir(filepath.Base(absPath), src.Filter) {
						continue
					}
					if addErr := addDirsRecursive(w, absPath, src.Filter); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", absPath))
					}
					indexNewDir(db, src, opts.Root, absPath, logger, notify)
					continue
				}
			}

			rel, relErr := filepath.Rel(opts.Root, absPath)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			if !src.Oracle.HasDocExt(rel) {
				if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
					notify(EventChanged, rel)
				}
				// A removed directory takes its documents with it.
				if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
					scheduleReconcile()
				}
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				data, readErr := src.Store.Read(rel)
				if readErr != nil {
					logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", readErr.Error()))
					continue
				}
				// Editors often write a file several times per save.
				if cs, csErr := db.GetChecksum(rel); csErr == nil && cs == checksum(data) {
					logger.Debug("watcher: unchanged", slog.String("path", rel))
					continue
				}
				if idxErr := indexFile(db, src.Oracle, rel, data); idxErr != nil {
					logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", idxErr.Error()))
					continue
				}
				kind := EventUpdated
				if ev.Op&fsnotify.Create != 0 {
					kind = EventCreated
				}
				logger.Debug("watcher: indexed", slog.String("path", rel), slog.String("op", kind))
				notify(kind, rel)

			case ev.Op&fsnotify.Remove != 0:
				if delErr := db.DeleteDocument(rel); delErr != nil {
					logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", delErr.Error()))
					continue
				}
				logger.Debug("watcher: deleted", slog.String("path", rel))
				notify(EventDeleted, rel)

			case ev.Op&fsnotify.Rename != 0:
				// fsnotify fires Rename on the old path only; the new path
				// arrives as a separate Create if it stays within a watched dir.
				if delErr := db.DeleteDocument(rel); delErr != nil {
					logger.Warn("watcher: rename delete failed", slog.String("path", rel), slog.String("error", delErr.Error()))
				} else {
					logger.Debug("watcher: rename old deleted", slog.String("path", rel))
					notify(EventDeleted, rel)
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reconcile removes index entries without a corresponding document on disk
// and indexes documents that are new or changed.
func reconcile(ctx context.Context, db *DB, src Source, logger *slog.Logger, notify EventCallback) {
	before, err := db.AllChecksums()
	if err != nil {
		logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}
	if err := Sync(ctx, db, src, logger); err != nil {
		logger.Warn("reconcile: sync failed", slog.String("error", err.Error()))
		return
	}
	after, err := db.AllChecksums()
	if err != nil {
		logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}

	for p := range before {
		if _, ok := after[p]; !ok {
			logger.Debug("reconcile: removed stale", slog.String("path", p))
			notify(EventDeleted, p)
		}
	}
	for p, cs := range after {
		if old, ok := before[p]; !ok {
			logger.Debug("reconcile: indexed new", slog.String("path", p))
			notify(EventCreated, p)
		} else if old != cs {
			notify(EventUpdated, p)
		}
	}
}

// indexNewDir indexes any documents found in a newly created directory.
func indexNewDir(db *DB, src Source, root, dirPath string, logger *slog.Logger, notify EventCallback) {
	_ = filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != dirPath && skipDir(d.Name(), src.Filter) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if !src.Oracle.HasDocExt(rel) {
			notify(EventChanged, rel)
			return nil
		}
		data, readErr := src.Store.Read(rel)
		if readErr != nil {
			return nil
		}
		if idxErr := indexFile(db, src.Oracle, rel, data); idxErr == nil {
			logger.Debug("watcher: indexed from new dir", slog.String("path", rel))
			notify(EventCreated, rel)
		}
		return nil
	})
}

// addDirsRecursive adds root and all its subdirectories to the watcher,
// pruning the directories filter skips.
func addDirsRecursive(w *fsnotify.Watcher, root string, filter storage.Filter) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDir(d.Name(), filter) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}

func skipDir(name string, filter storage.Filter) bool {
	if filter.SkipHidden && strings.HasPrefix(name, ".") {
		return true
	}
	return slices.Contains(filter.SkipDirs, name)
}
