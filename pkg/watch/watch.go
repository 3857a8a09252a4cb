// Package watch recompiles a source file whenever it changes on disk,
// debounced so a burst of saves from an editor triggers one recompile.
package watch

import (
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/alanrodas/gobstones-compiler/pkg/logging"
)

// Debounce is the quiet period required after the last write event
// before OnChange fires.
const Debounce = 150 * time.Millisecond

// File watches a single path, calling onChange after writes settle.
// It blocks until stop is closed or the watcher's channels close; an
// fsnotify error is logged (when log is non-nil) and watching continues.
func File(path string, stop <-chan struct{}, onChange func(), log *logging.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-stop:
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(Debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if log != nil {
				log.Error("watch: fsnotify error", map[string]interface{}{"error": err.Error()})
			}
		}
	}
}
