package main

import (
	"errors"
	"log"
	"path/filepath"
	"time"

	"github.com/howeyc/fsnotify"

	"github.com/nf/ch8/machine"
)

// watch reloads progFile into r each time it changes, until r stops or
// the returned watcher is closed.
func watch(progFile string, r *machine.Runner) (*fsnotify.Watcher, error) {
	progFile = filepath.Clean(progFile)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Watch(filepath.Dir(progFile)); err != nil {
		w.Close()
		return nil, err
	}

	go func() {
		var reload <-chan time.Time
		for {
			select {
			case <-reload:
				reload = nil
				prog, err := readProgram(progFile)
				if err != nil {
					log.Printf("dev: %v", err)
					break
				}
				log.Printf("dev: reload %s", filepath.Base(progFile))
				err = r.Swap(prog)
				if errors.Is(err, machine.ErrStopped) {
					return
				}
				if err != nil {
					log.Printf("dev: %v", err)
				}
			case ev, ok := <-w.Event:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) == progFile && !ev.IsAttrib() {
					reload = time.After(100 * time.Millisecond)
				}
			case err, ok := <-w.Error:
				if !ok {
					return
				}
				log.Printf("dev: watcher: %v", err)
			}
		}
	}()
	return w, nil
}
