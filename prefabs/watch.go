package prefabs

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadQuiet is how long the files must stay untouched before a batch of
// changes is reported. Editors often write a file several times per save.
const reloadQuiet = 100 * time.Millisecond

// Watcher reports changed rule, registry, scenario and script files by
// base name. Changes arriving close together are reported once each, in
// sorted order, after the directories have been quiet for a moment.
type Watcher struct {
	fs     *fsnotify.Watcher
	Events chan string
	Errors chan error

	mu      sync.Mutex
	tracked map[string]bool

	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

func NewWatcher(dirs ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}

	w := &Watcher{
		fs:      fw,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Track limits reports to the given base names, replacing any earlier set.
// With no names every configuration or script file is reported.
func (w *Watcher) Track(names ...string) {
	tracked := make(map[string]bool, len(names))
	for _, name := range names {
		if name != "" {
			tracked[filepath.Base(name)] = true
		}
	}
	w.mu.Lock()
	w.tracked = tracked
	w.mu.Unlock()
}

func (w *Watcher) wants(name string) bool {
	if !isSpecFile(name) && !isScriptFile(name) {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.tracked) == 0 || w.tracked[name]
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.fs.Close()
		<-w.done
		close(w.Events)
		close(w.Errors)
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)

	pending := make(map[string]bool)
	timer := time.NewTimer(reloadQuiet)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			name := filepath.Base(event.Name)
			if !w.wants(name) {
				continue
			}
			pending[name] = true
			timer.Reset(reloadQuiet)
		case <-timer.C:
			names := make([]string, 0, len(pending))
			for name := range pending {
				names = append(names, name)
			}
			sort.Strings(names)
			clear(pending)
			for _, name := range names {
				select {
				case w.Events <- name:
				case <-w.closeCh:
					return
				}
			}
		case err, ok := <-w.fs.Errors:
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

func isSpecFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func isScriptFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".tengo"
}
