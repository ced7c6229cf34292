package model

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

var errEmptyLimitsFile = errors.New("limits file is empty")

// WatchedLimits is a Limits backed by a file that is reloaded on change.
// Lookups see either the previous or the new table, never a mix.
type WatchedLimits struct {
	path    string
	base    LimitTable
	table   atomic.Pointer[LimitTable]
	logger  *slog.Logger
	reloads atomic.Int64
}

// WatchLimits loads the limit file at path, layered over base, and reloads it
// whenever the file is written or replaced. A reload that fails to parse keeps
// the previous table. Watching stops when ctx is cancelled.
func WatchLimits(ctx context.Context, path string, base LimitTable, logger *slog.Logger) (*WatchedLimits, error) {
	if logger == nil {
		logger = slog.Default()
	}
	w := &WatchedLimits{path: path, base: base, logger: logger}
	if err := w.reload(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory: editors often replace the file rather than write it.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	go w.run(ctx, watcher)
	return w, nil
}

// MaxTokens implements Limits against the current table.
func (w *WatchedLimits) MaxTokens(model string) (int, error) {
	return w.Table().MaxTokens(model)
}

// Table returns the current table.
func (w *WatchedLimits) Table() LimitTable {
	return *w.table.Load()
}

// Reloads returns how many times the table has been loaded, including the
// initial load.
func (w *WatchedLimits) Reloads() int64 {
	return w.reloads.Load()
}

func (w *WatchedLimits) reload() error {
	if info, err := os.Stat(w.path); err == nil && info.Size() == 0 {
		// Mid-write truncation; the follow-up write event carries the content.
		return errEmptyLimitsFile
	}
	loaded, err := LoadLimitsFile(w.path)
	if err != nil {
		return err
	}
	table := w.base.Merge(loaded)
	w.table.Store(&table)
	w.reloads.Add(1)
	return nil
}

func (w *WatchedLimits) run(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()
	baseName := filepath.Base(w.path)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != baseName {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := w.reload(); err != nil {
				if errors.Is(err, errEmptyLimitsFile) {
					continue
				}
				w.logger.Warn("keeping previous model limits",
					slog.String("path", w.path),
					slog.Any("error", err))
				continue
			}
			w.logger.Debug("reloaded model limits",
				slog.String("path", w.path),
				slog.Int("models", len(w.Table())))

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("model limits watcher error", slog.Any("error", err))
		}
	}
}

var _ Limits = (*WatchedLimits)(nil)
