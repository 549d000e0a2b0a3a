// Package watch reloads device settings when their backing file changes.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gogpu/gfxhal/settings"
)

// DefaultDebounce is how long Settings waits for more changes before it
// rereads.
const DefaultDebounce = 100 * time.Millisecond

// Reloader reruns the settings pipeline with a new source. *gfxhal.Device
// implements it.
type Reloader interface {
	Reread(src settings.Source) (*settings.Record, error)
}

// Options configures Settings.
type Options struct {
	// Debounce is the quiet period after the last change. Zero uses
	// DefaultDebounce.
	Debounce time.Duration

	// OnReload is called after every reread with its result.
	OnReload func(rec *settings.Record, err error)

	// Logger receives watcher diagnostics. Nil discards them.
	Logger *slog.Logger

	// ready is called once the directory is watched.
	ready func()
}

// Settings watches the settings file at path and calls r.Reread with it
// after each burst of writes. The parent directory is watched so editors
// that replace the file are seen. A failed reread is reported and the
// watcher keeps running. Settings blocks until ctx is done.
func Settings(ctx context.Context, r Reloader, path string, opts Options) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch: %s: %w", filepath.Dir(target), err)
	}
	if opts.ready != nil {
		opts.ready()
	}
	log.Debug("watch: started", "path", target)

	src := settings.FileSource(target)
	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			log.Debug("watch: stopping", "path", target)
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !changes(event, target) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(opts.Debounce)
				timerC = timer.C
			} else {
				timer.Reset(opts.Debounce)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch: watcher error", "path", target, "err", err)

		case <-timerC:
			timer, timerC = nil, nil
			rec, err := r.Reread(src)
			if err != nil {
				log.Warn("watch: reread failed", "path", target, "err", err)
			} else {
				log.Info("watch: settings reloaded", "path", target, "hash", rec.Hash())
			}
			if opts.OnReload != nil {
				opts.OnReload(rec, err)
			}
		}
	}
}

// changes reports whether event writes or recreates the target file.
func changes(event fsnotify.Event, target string) bool {
	if filepath.Clean(event.Name) != target {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}
