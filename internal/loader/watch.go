package loader

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tbourn/go-console-navigator/internal/domain"
)

// ReloadFunc loads the file at path. It must return ErrLoadInProgress when
// another load holds the loader.
type ReloadFunc func(ctx context.Context, path string) (domain.IndexInfo, error)

// Watch calls reload for path whenever it is written, created or renamed into
// place, until ctx is done. A nil reload means l.LoadFile. Bursts of events within the debounce window collapse
// into one reload. Reload failures are logged; the current snapshot stays.
//
// The parent directory is watched rather than the file so editors that save
// by renaming a temp file over the original keep triggering reloads.
func (l *Loader) Watch(ctx context.Context, path string, reload ReloadFunc) error {
	if reload == nil {
		reload = l.LoadFile
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	lg := l.cfg.logger.With().Str("file", abs).Logger()
	lg.Info().Msg("watching resource file")

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				timer.Reset(l.cfg.debounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			lg.Warn().Err(err).Msg("watcher error")
		case <-timer.C:
			if _, err := reload(ctx, abs); err != nil {
				if errors.Is(err, ErrLoadInProgress) {
					// another load owns the index; try again after it settles
					timer.Reset(l.cfg.debounce)
					continue
				}
				lg.Warn().Err(err).Msg("reload failed")
			}
		}
	}
}
