package tui

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/xolan/haven/internal/storage"
	"github.com/xolan/haven/internal/tui/ui"
)

// DefaultDebounce is how long a data file must stay quiet before its views reload.
const DefaultDebounce = 150 * time.Millisecond

// Watcher turns changes to the JSONL data files into reload messages, so
// writes from another haven process show up in the open views.
type Watcher struct {
	watcher  *fsnotify.Watcher
	logger   *zap.Logger
	debounce time.Duration

	reloads chan ui.ReloadMsg
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once

	mu      sync.Mutex
	pending map[string]time.Time
}

// NewWatcher starts watching dir. A nil logger is allowed.
func NewWatcher(dir string, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &Watcher{
		watcher:  fw,
		logger:   logger.With(zap.String("dir", dir)),
		debounce: debounce,
		reloads:  make(chan ui.ReloadMsg, len(storage.Entities)),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		pending:  make(map[string]time.Time),
	}
	go w.run()
	w.logger.Debug("watching data directory")
	return w, nil
}

func (w *Watcher) run() {
	defer close(w.done)

	ticker := time.NewTicker(max(w.debounce/3, 10*time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if entity, ok := entityForFile(event.Name); ok {
				w.mu.Lock()
				w.pending[entity] = time.Now()
				w.mu.Unlock()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("data directory watch error", zap.Error(err))

		case <-ticker.C:
			for _, entity := range w.settled() {
				select {
				case w.reloads <- ui.ReloadMsg{Entity: entity}:
				case <-w.stop:
					return
				}
			}
		}
	}
}

// settled removes and returns the entities that have been quiet for the debounce window.
func (w *Watcher) settled() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	var out []string
	for entity, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			out = append(out, entity)
			delete(w.pending, entity)
		}
	}
	return out
}

// Next returns a command that waits for the next reload. It yields nil once
// the watcher is closed.
func (w *Watcher) Next() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-w.reloads:
			return msg
		case <-w.done:
			return nil
		}
	}
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.stop)
		<-w.done
		err = w.watcher.Close()
	})
	return err
}

// entityForFile maps a data file such as mood_entry.jsonl to its entity.
// Temp files and backups are ignored.
func entityForFile(path string) (string, bool) {
	base, ok := strings.CutSuffix(filepath.Base(path), ".jsonl")
	if !ok {
		return "", false
	}
	for _, entity := range storage.Entities {
		if storage.SnakeName(entity) == base {
			return entity, true
		}
	}
	return "", false
}
