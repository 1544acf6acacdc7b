package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/richinsley/shadercanvas"
)

// fileEditor serves the shader buffer from a file on disk. Without a path
// the buffer is held in memory.
type fileEditor struct {
	path string
	auto atomic.Bool

	mu     sync.Mutex
	source string
}

func newFileEditor(path, initial string, auto bool) *fileEditor {
	e := &fileEditor{path: path, source: initial}
	e.auto.Store(auto)
	return e
}

func (e *fileEditor) CurrentSource() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.source
}

func (e *fileEditor) AutoCompile() bool { return e.auto.Load() }

func (e *fileEditor) toggleAutoCompile() bool {
	for {
		old := e.auto.Load()
		if e.auto.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// reload reads the file and reports whether its content changed.
func (e *fileEditor) reload() (string, bool, error) {
	data, err := os.ReadFile(e.path)
	if err != nil {
		return "", false, fmt.Errorf("failed to read shader %s: %w", e.path, err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	changed := string(data) != e.source
	e.source = string(data)
	return e.source, changed, nil
}

// watch calls onSaved with the new content each time the file is written.
// The directory is watched so editors that save by rename are seen.
func (e *fileEditor) watch(ctx context.Context, onSaved func(string)) error {
	if e.path == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(e.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", e.path, err)
	}

	log := shadercanvas.Logger()
	target := filepath.Clean(e.path)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&fsnotify.Write == 0 && event.Op&fsnotify.Create == 0 {
					continue
				}
				source, changed, err := e.reload()
				if err != nil {
					log.Warn("shader reload failed", "err", err)
					continue
				}
				if changed {
					log.Info("shader file saved", "path", e.path, "length", len(source))
					onSaved(source)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("shader watcher error", "err", err)
			}
		}
	}()
	return nil
}
