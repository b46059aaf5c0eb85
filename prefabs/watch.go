package prefabs

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"
)

// Watcher reports changed scene and script files. Events whose content hash
// matches the last delivered version of the file are dropped, which folds
// the bursts editors produce on save.
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
	done    chan struct{}
}

func NewWatcher(dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher: w,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
		close(w.Events)
		close(w.Errors)
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	seen := newContentFilter()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !isSpecFile(event.Name) && !isScriptFile(event.Name) {
				continue
			}
			if !seen.changed(event.Name) {
				continue
			}
			select {
			case w.Events <- event.Name:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

// contentFilter remembers the xxhash of the last reported content per path.
type contentFilter struct {
	last map[string]uint64
}

func newContentFilter() *contentFilter {
	return &contentFilter{last: make(map[string]uint64)}
}

// changed reports whether path differs from its last reported content. A
// file that cannot be read counts as changed once and is forgotten.
func (f *contentFilter) changed(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		_, known := f.last[path]
		delete(f.last, path)
		return known || !os.IsNotExist(err)
	}
	sum := xxhash.Sum64(data)
	if prev, ok := f.last[path]; ok && prev == sum {
		return false
	}
	f.last[path] = sum
	return true
}

// IsScript reports whether a watcher event refers to a behavior script.
func IsScript(path string) bool {
	return isScriptFile(path)
}

func isSpecFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func isScriptFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".tengo"
}
