package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"cradoc/report"
	"cradoc/state"
)

// wait for editors which write file in several steps
const watchDebounce = 250 * time.Millisecond

// watch builds single payload file and rebuilds it every time it changes
// until context is cancelled. Build failures are logged and do not stop
// watching.
func watch(ctx context.Context, src, dst string, log *zap.Logger) error {
	fi, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("unable to watch source: %w", err)
	}
	if !fi.Mode().IsRegular() {
		return errors.New("watch mode requires single payload file")
	}
	if ok, _, err := isPayloadFile(src); err != nil {
		return fmt.Errorf("unable to check file type: %w", err)
	} else if !ok {
		return fmt.Errorf("input was not recognized as report payload (%s)", src)
	}

	env := state.EnvFromContext(ctx)
	// output of previous build is ours to replace
	env.Overwrite = true

	builder := report.NewBuilder(&env.Cfg.Document, env.Log, env.DefaultCover)
	j := &job{src: filepath.Base(src), dir: filepath.Dir(src), path: src}
	rebuild := func() {
		if _, err := processPayload(ctx, builder, j, dst, log); err != nil {
			log.Error("Unable to process payload", zap.String("source", src), zap.Error(err))
		}
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("unable to create file watcher: %w", err)
	}
	defer w.Close()

	// editors often replace file instead of writing it, so directory is
	// watched
	if err := w.Add(filepath.Dir(src)); err != nil {
		return fmt.Errorf("unable to watch %s: %w", filepath.Dir(src), err)
	}

	rebuild()
	log.Info("Watching for changes", zap.String("file", src))

	var (
		timer   *time.Timer
		trigger <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			log.Info("Watch stopped")
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != src {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			log.Debug("Source changed", zap.Stringer("op", event.Op))
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			trigger = timer.C

		case <-trigger:
			trigger = nil
			rebuild()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("Watcher error", zap.Error(err))
		}
	}
}
