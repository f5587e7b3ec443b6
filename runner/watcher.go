package runner

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tliron/commonlog"
)

var watchLog = commonlog.GetLogger("watch")

// watchDebounce coalesces the event bursts editors produce on save.
const watchDebounce = 150 * time.Millisecond

// Watcher reloads the program when its file changes. Events debounce before
// submitting, and the submission supersedes whatever pass is running.
type Watcher struct {
	fsw  *fsnotify.Watcher
	done chan struct{}
}

// Watch starts watching path and calls submit after each debounced change.
func Watch(path string, submit func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("starting watcher: %w", err)
	}
	// Watch the directory: editors often replace the file, which drops a
	// watch registered on the file itself.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %q: %w", path, err)
	}

	w := &Watcher{fsw: fsw, done: make(chan struct{})}
	go w.loop(filepath.Clean(path), submit)
	return w, nil
}

func (w *Watcher) loop(path string, submit func()) {
	defer close(w.done)
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			watchLog.Debugf("%s changed", path)
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					<-fire
				}
				timer.Reset(watchDebounce)
			}
		case <-fire:
			timer = nil
			fire = nil
			watchLog.Infof("reloading %s", path)
			submit()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			watchLog.Errorf("watch error: %s", err.Error())
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	err := w.fsw.Close()
	<-w.done
	return err
}
