package utils

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for the tree to settle before re-running.
const DefaultDebounce = 300 * time.Millisecond

// FileWatcher watches every non-hidden directory below a root and reports
// settled batches of changes.
type FileWatcher struct {
	root     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
}

// NewFileWatcher creates a watcher registered on root and all of its non-hidden subdirectories.
func NewFileWatcher(root string, debounce time.Duration) (*FileWatcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	fw := &FileWatcher{
		root:     root,
		debounce: debounce,
		watcher:  watcher,
	}
	if err := fw.addTree(root); err != nil {
		watcher.Close()
		return nil, err
	}
	return fw, nil
}

// addTree registers dir and every non-hidden directory below it.
func (fw *FileWatcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			log.Printf("watch: skipping %s: %v", path, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != fw.root && IsHiddenDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

// Run blocks until ctx is done, calling onChange once the tree has been quiet
// for the debounce interval after one or more changes.
func (fw *FileWatcher) Run(ctx context.Context, onChange func()) error {
	timer := time.NewTimer(fw.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return nil
			}
			if !isRelevantEvent(event) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !IsHiddenDir(info.Name()) {
					if err := fw.addTree(event.Name); err != nil {
						log.Printf("watch: %v", err)
					}
				}
			}
			timer.Reset(fw.debounce)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch: %v", err)

		case <-timer.C:
			onChange()
		}
	}
}

// Close stops watching.
func (fw *FileWatcher) Close() error {
	return fw.watcher.Close()
}

func isRelevantEvent(event fsnotify.Event) bool {
	return event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) ||
		event.Has(fsnotify.Rename)
}
