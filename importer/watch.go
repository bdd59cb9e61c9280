package importer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch re-imports path whenever it is written or recreated, debounced,
// until ctx is done. Failed runs are logged and the watch continues.
func (i *Importer) Watch(ctx context.Context, path string) error {
	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	// editors replace files, so watch the directory rather than the file
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	slog.InfoContext(ctx, "watching catalog file", "path", target)

	fire := make(chan struct{}, 1)
	var timer *time.Timer

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(i.options.Debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.WarnContext(ctx, "catalog watcher error", "error", err)

		case <-fire:
			if _, err := i.ImportFile(ctx, target); err != nil {
				slog.ErrorContext(ctx, "catalog re-import failed", "path", target, "error", err)
			}
		}
	}
}
