package persona

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// Watcher hot-reloads a personas file into a Panel when it changes on disk.
// Long-lived watch sessions use this so panel edits take effect on the next
// round without restarting.
type Watcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// Watch starts watching path and replaces panel contents whenever the file
// is written. Invalid edits are reported through onError (may be nil) and
// leave the current panel untouched.
func Watch(path string, panel *Panel, onError func(error)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("personas: starting watcher: %w", err)
	}
	if err := fw.Add(path); err != nil {
		fw.Close()
		return nil, fmt.Errorf("personas: watching %s: %w", path, err)
	}

	w := &Watcher{watcher: fw, done: make(chan struct{})}
	go w.loop(path, panel, onError)
	return w, nil
}

func (w *Watcher) loop(path string, panel *Panel, onError func(error)) {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			reloaded, err := LoadFile(path)
			if err != nil {
				if onError != nil {
					onError(err)
				}
				continue
			}
			panel.Replace(reloaded.All())
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if onError != nil {
				onError(err)
			}
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
