// Package watcher re-runs a callback when files under a directory
// change, debounced so one save burst triggers one run.
package watcher

import (
	"fmt"
	"log"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors a bundle directory for changes.
type Watcher struct {
	fw       *fsnotify.Watcher
	debounce time.Duration
	run      func()
	done     chan struct{}
}

// New starts watching dir and calls run after events settle for the
// debounce interval.
func New(dir string, debounce time.Duration, run func()) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watcher: watch %s: %w", dir, err)
	}

	w := &Watcher{
		fw:       fw,
		debounce: debounce,
		run:      run,
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(w.debounce)
		case <-timer.C:
			w.run()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			log.Printf("watcher: %v", err)
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fw.Close()
}
