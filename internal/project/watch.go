// Watching the component store directories is a supplemental convenience,
// not required by any spec operation: a long-running deployment can ask to
// be notified when an operator edits a definition file on disk, instead of
// only picking up changes on the next explicit HostManager.change_project
// call. Grounded on the teacher's internal/teleport.CertWatcher, narrowed
// from certificate-file debounced reload to component-directory debounced
// notification.
package project

import (
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"mcphost/pkg/logging"
)

// DefaultWatchDebounce is how long ProjectWatcher waits after the last
// observed filesystem event before invoking onChange, collapsing the burst
// of events a single save often produces into one notification.
const DefaultWatchDebounce = 500 * time.Millisecond

// ProjectWatcher watches a component store's on-disk directories and
// invokes onChange (debounced) whenever a definition file is created,
// written, renamed, or removed.
type ProjectWatcher struct {
	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	debounce time.Duration
}

// WatchProject starts watching every directory in roots for changes,
// calling onChange after DefaultWatchDebounce has elapsed since the last
// observed event. The caller is responsible for re-running Activate (or
// ChangeProject, at the kernel layer) from onChange; WatchProject itself
// never mutates the store or the active project.
func WatchProject(roots []string, onChange func()) (*ProjectWatcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, root := range roots {
		if _, statErr := os.Stat(root); statErr != nil {
			continue // kind directory not created yet; nothing to watch
		}
		if err := fsWatcher.Add(root); err != nil {
			fsWatcher.Close()
			return nil, err
		}
	}

	w := &ProjectWatcher{
		watcher:  fsWatcher,
		stopCh:   make(chan struct{}),
		debounce: DefaultWatchDebounce,
	}
	go w.run(onChange)
	return w, nil
}

func (w *ProjectWatcher) run(onChange func()) {
	var timer *time.Timer
	for {
		select {
		case <-w.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, onChange)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Warn("ProjectWatcher", "fsnotify error: %v", err)
		}
	}
}

// Close stops watching and releases the underlying fsnotify watcher.
func (w *ProjectWatcher) Close() error {
	close(w.stopCh)
	return w.watcher.Close()
}
