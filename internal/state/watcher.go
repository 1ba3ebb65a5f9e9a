package state

import (
	"errors"
	"path/filepath"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

type ConfigChangedMsg struct {
	Path string
}

type ConfigWatcherErrMsg struct {
	Err error
}

// ConfigWatcher reports writes to the config file. The parent directory is
// watched because editors often replace the file instead of writing in place.
type ConfigWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	done     chan struct{}
	once     sync.Once
	mu       sync.Mutex
	onChange func(string)
	onClose  func()
}

func NewConfigWatcher(path string) (*ConfigWatcher, error) {
	if path == "" {
		return nil, errors.New("config path cannot be empty")
	}
	cleaned := filepath.Clean(path)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	watcher := &ConfigWatcher{
		watcher: w,
		path:    cleaned,
		done:    make(chan struct{}),
	}

	if err := w.Add(filepath.Dir(cleaned)); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	return watcher, nil
}

// Start returns a command that blocks until the next relevant event. The TUI
// re-issues it after every message it yields.
func (w *ConfigWatcher) Start() tea.Cmd {
	if w == nil {
		return nil
	}

	return func() tea.Msg {
		for {
			select {
			case <-w.done:
				return nil
			case event, ok := <-w.watcher.Events:
				if !ok {
					return nil
				}
				if !w.isRelevant(event) {
					continue
				}

				if fn := w.changeHook(); fn != nil {
					fn(w.path)
				}

				return ConfigChangedMsg{Path: w.path}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return nil
				}
				if err != nil {
					return ConfigWatcherErrMsg{Err: err}
				}
			}
		}
	}
}

func (w *ConfigWatcher) Close() error {
	if w == nil {
		return nil
	}

	var closeErr error
	w.once.Do(func() {
		close(w.done)
		closeErr = w.watcher.Close()
		w.mu.Lock()
		onClose := w.onClose
		w.mu.Unlock()
		if onClose != nil {
			onClose()
		}
	})

	return closeErr
}

// OnChange registers a callback that receives the config path whenever the
// file changes. It runs on the watcher goroutine.
func (w *ConfigWatcher) OnChange(fn func(string)) {
	if w == nil {
		return
	}
	w.mu.Lock()
	w.onChange = fn
	w.mu.Unlock()
}

// OnClose registers a callback that is invoked exactly once when the watcher
// shuts down.
func (w *ConfigWatcher) OnClose(fn func()) {
	if w == nil {
		return
	}
	w.mu.Lock()
	w.onClose = fn
	w.mu.Unlock()
}

func (w *ConfigWatcher) changeHook() func(string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.onChange
}

func (w *ConfigWatcher) isRelevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return false
	}
	return filepath.Clean(event.Name) == w.path
}
