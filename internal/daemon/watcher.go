package daemon

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/apidocbuilder/internal/logfields"
)

// SourceWatcher watches directory trees and calls onChange once a burst of
// file system events has been quiet for the debounce window.
type SourceWatcher struct {
	roots    []string
	debounce time.Duration
	onChange func()

	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	timer    *time.Timer
	stopOnce sync.Once
	stopChan chan struct{}
}

// NewSourceWatcher creates a watcher over roots.
func NewSourceWatcher(roots []string, debounce time.Duration, onChange func()) (*SourceWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &SourceWatcher{
		roots:    roots,
		debounce: debounce,
		onChange: onChange,
		watcher:  w,
		stopChan: make(chan struct{}),
	}, nil
}

// Start registers every directory below the roots and begins watching.
// fsnotify is not recursive, so directories created later are added as
// their create events arrive.
func (sw *SourceWatcher) Start(ctx context.Context) error {
	for _, root := range sw.roots {
		if err := sw.addTree(root); err != nil {
			return err
		}
	}
	slog.Info("Starting source watcher", logfields.Count(len(sw.roots)))
	go sw.watchLoop(ctx)
	return nil
}

// Stop closes the watcher and cancels any pending trigger.
func (sw *SourceWatcher) Stop() error {
	var err error
	sw.stopOnce.Do(func() {
		close(sw.stopChan)
		sw.mu.Lock()
		if sw.timer != nil {
			sw.timer.Stop()
		}
		sw.mu.Unlock()
		err = sw.watcher.Close()
	})
	return err
}

func (sw *SourceWatcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk %s: %w", path, err)
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := sw.watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func (sw *SourceWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sw.stopChan:
			return
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if strings.HasPrefix(filepath.Base(event.Name), ".") {
				continue
			}
			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := sw.addTree(event.Name); err != nil {
						slog.Warn("Failed to watch new directory", logfields.Path(event.Name), logfields.Error(err))
					}
				}
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				slog.Debug("Source change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
				sw.trigger()
			}
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Source watcher error", logfields.Error(err))
		}
	}
}

// trigger resets the debounce timer.
func (sw *SourceWatcher) trigger() {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.timer != nil {
		sw.timer.Stop()
	}
	sw.timer = time.AfterFunc(sw.debounce, func() {
		select {
		case <-sw.stopChan:
			return
		default:
		}
		sw.onChange()
	})
}
