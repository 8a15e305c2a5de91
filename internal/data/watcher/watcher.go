// Package watcher reports changes to a local start list file.
package watcher

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/penwyp/go-start-clock/internal/core/model"
	"github.com/penwyp/go-start-clock/internal/util"
)

// FileWatcher watches one file. The parent directory is watched so that
// editors that save by renaming a temp file over the original are seen.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	events  chan model.FileEvent
	done    chan struct{}
}

// NewFileWatcher starts watching path
func NewFileWatcher(path string) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	fw := &FileWatcher{
		watcher: watcher,
		path:    abs,
		events:  make(chan model.FileEvent, 1),
		done:    make(chan struct{}),
	}
	go fw.processEvents()

	util.LogDebugf("Watching %s for changes", abs)
	return fw, nil
}

func (fw *FileWatcher) processEvents() {
	defer close(fw.done)
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != fw.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			// a pending event already means "reload"; bursts collapse into it
			select {
			case fw.events <- model.FileEvent{Path: event.Name, Operation: event.Op.String()}:
			default:
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			util.LogError("File monitoring error: " + err.Error())
		}
	}
}

// Events delivers at most one pending change notification at a time
func (fw *FileWatcher) Events() <-chan model.FileEvent {
	return fw.events
}

// Path returns the absolute path being watched
func (fw *FileWatcher) Path() string {
	return fw.path
}

// Close stops watching
func (fw *FileWatcher) Close() error {
	err := fw.watcher.Close()
	<-fw.done
	return err
}
