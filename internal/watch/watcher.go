// Package watch moves notes automatically when the vault changes.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/notemover/internal/apperr"
	"github.com/starford/notemover/internal/mover"
	"github.com/starford/notemover/internal/storage"
)

// Evaluator runs the rule engine for one note.
type Evaluator interface {
	Evaluate(ctx context.Context, path string, trigger mover.Trigger) (mover.Result, error)
}

// ResultCallback is called after each automatic evaluation.
type ResultCallback func(res mover.Result)

// DefaultDebounce is the quiet period before queued paths are evaluated.
const DefaultDebounce = 200 * time.Millisecond

// Watch starts an fsnotify watcher on the vault root and evaluates created,
// written, or renamed-in notes with the Automatic trigger until ctx is
// cancelled. Events are coalesced per path and evaluated one at a time
// after a quiet period.
//
// fsnotify reports a rename as Rename on the old path followed by Create on
// the new one; only the Create matters here.
func Watch(ctx context.Context, eval Evaluator, vault *storage.FS, logger *slog.Logger, debounce time.Duration, cb ResultCallback) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, vault.Root()); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", vault.Root()))

	pending := make(map[string]struct{})
	var flushTimer *time.Timer
	var flushCh <-chan time.Time

	schedule := func(rel string) {
		pending[rel] = struct{}{}
		if flushTimer == nil {
			flushTimer = time.NewTimer(debounce)
			flushCh = flushTimer.C
		} else {
			flushTimer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if flushTimer != nil {
				flushTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-flushCh:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			clear(pending)
			sort.Strings(paths)
			for _, p := range paths {
				evaluate(ctx, eval, p, logger, cb)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			absPath := ev.Name
			if hidden(vault, absPath) {
				continue
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", absPath))
					}
					// Notes that arrived together with the folder.
					for _, rel := range notesUnder(vault, absPath) {
						schedule(rel)
					}
					continue
				}
			}

			if !storage.IsNote(absPath) {
				continue
			}
			rel, relErr := vault.Rel(absPath)
			if relErr != nil {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				schedule(rel)
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				delete(pending, rel)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func evaluate(ctx context.Context, eval Evaluator, rel string, logger *slog.Logger, cb ResultCallback) {
	res, err := eval.Evaluate(ctx, rel, mover.TriggerAutomatic)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			logger.Debug("watcher: note gone before evaluation", slog.String("path", rel))
			return
		}
		logger.Warn("watcher: evaluate failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	logger.Debug("watcher: evaluated",
		slog.String("path", rel),
		slog.String("outcome", res.Outcome.String()))
	if cb != nil {
		cb(res)
	}
}

// hidden reports whether absPath is inside a dot-folder or is a dot-file,
// which covers editor config folders and the store's temp files.
func hidden(vault *storage.FS, absPath string) bool {
	rel, err := filepath.Rel(vault.Root(), absPath)
	if err != nil {
		return true
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ".") && part != "." {
			return true
		}
	}
	return false
}

func notesUnder(vault *storage.FS, dir string) []string {
	var out []string
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !storage.IsNote(p) || hidden(vault, p) {
			return nil
		}
		if rel, relErr := vault.Rel(p); relErr == nil {
			out = append(out, rel)
		}
		return nil
	})
	return out
}

// addDirsRecursive adds root and all its non-hidden subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
