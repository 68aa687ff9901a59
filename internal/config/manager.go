package config

import (
	"context"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Manager holds the current configuration and reloads it when the file
// changes on disk.
type Manager struct {
	mu       sync.RWMutex
	path     string
	config   *Config
	watcher  *fsnotify.Watcher
	wg       sync.WaitGroup
	onChange func(*Config)

	// reloadDelay coalesces the bursts of events editors emit on save.
	reloadDelay time.Duration
}

func NewManager() (*Manager, error) {
	log.Printf("Config manager: initializing configuration system...")

	if _, err := Load(); err != nil {
		log.Printf("Config manager: failed to load initial configuration: %v", err)
		return nil, err
	}
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return NewManagerForFile(path)
}

// NewManagerForFile manages the config stored at path.
func NewManagerForFile(path string) (*Manager, error) {
	config, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		log.Printf("Config manager: validation warning: %v", err)
	}

	return &Manager{path: path, config: config, reloadDelay: 100 * time.Millisecond}, nil
}

func (m *Manager) GetConfig() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Return a copy to prevent external modification
	configCopy := *m.config
	return &configCopy
}

// OnChange registers fn to run after every successful reload.
func (m *Manager) OnChange(fn func(*Config)) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

func (m *Manager) StartWatching(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// Watch the directory so editors that replace the file are still seen.
	if err := watcher.Add(filepath.Dir(m.path)); err != nil {
		watcher.Close()
		return err
	}
	m.watcher = watcher

	m.wg.Add(1)
	go m.watchLoop(ctx)

	log.Printf("Config manager: watching %s for changes", m.path)
	return nil
}

func (m *Manager) Stop() {
	if m.watcher != nil {
		m.watcher.Close()
	}
	m.wg.Wait()
}

func (m *Manager) watchLoop(ctx context.Context) {
	defer m.wg.Done()
	name := filepath.Base(m.path)

	var pending <-chan time.Time
	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				pending = time.After(m.reloadDelay)
			}

		case <-pending:
			pending = nil
			log.Printf("Config manager: %s changed, reloading", m.path)
			m.reload()

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Config manager: watcher error: %v", err)

		case <-ctx.Done():
			return
		}
	}
}

func (m *Manager) reload() {
	newConfig, err := LoadFile(m.path)
	if err != nil {
		log.Printf("Config manager: failed to reload config: %v", err)
		return
	}

	if err := newConfig.Validate(); err != nil {
		log.Printf("Config manager: invalid config after reload: %v", err)
		return
	}

	m.mu.Lock()
	m.config = newConfig
	onChange := m.onChange
	m.mu.Unlock()

	log.Printf("Config manager: configuration successfully reloaded")
	if onChange != nil {
		onChange(newConfig)
	}
}
