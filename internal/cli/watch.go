package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/cpsdqs/prechoster"
)

// Debounce windows for file changes. Documents using plugins that prefer
// debouncing wait longer before re-rendering.
const (
	DefaultDebounce = 50 * time.Millisecond
	SlowDebounce    = 300 * time.Millisecond
)

// WatchFile calls fn after path changes until ctx is done. Events within the
// window returned by debounce collapse into one call. The parent directory
// is watched so editors that save by renaming are picked up.
func WatchFile(ctx context.Context, path string, debounce func() time.Duration, logger *slog.Logger, fn func(context.Context)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("change detected", "path", ev.Name, "op", ev.Op.String())
			fire = time.After(debounce())
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "err", err)
		case <-fire:
			fire = nil
			fn(ctx)
		}
	}
}

// RunWatch renders the document at path, then re-renders it every time the
// file changes until ctx is done. Reload and render failures are reported
// on stderr and do not stop the watch.
func RunWatch(ctx context.Context, stdout, stderr io.Writer, path string, ed *prechoster.Editor, opts RenderOptions, logger *slog.Logger) error {
	reload := func(ctx context.Context) {
		state, err := ReadFile(path)
		if err != nil {
			printSystemMessage(stderr, "Reload failed: %v", err)
			return
		}
		ed.Document().Replace(state)
		if err := Render(ctx, stdout, ed, opts); err != nil {
			printSystemMessage(stderr, "Render failed: %v", err)
		}
	}

	reload(ctx)
	printSystemMessage(stderr, "Watching '%s' for changes...", path)

	debounce := func() time.Duration {
		if ed.PrefersDebounce() {
			return SlowDebounce
		}
		return DefaultDebounce
	}
	return WatchFile(ctx, path, debounce, logger, reload)
}
