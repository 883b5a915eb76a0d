package stats

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mitchellh/go-homedir"
)

// Stats holds persistent statistics
type Stats struct {
	ReplicatedFiles int64  `json:"replicated_files"`
	ReplicatedBytes int64  `json:"replicated_bytes"`
	LastRemote      string `json:"last_remote,omitempty"` // Endpoint of the last upload, without password
}

// Manager handles loading and saving stats
type Manager struct {
	path         string
	stats        Stats
	mu           sync.RWMutex
	dirty        bool
	saveTimer    *time.Timer
	saveDuration time.Duration
}

// NewManager creates a stats manager for the default file
func NewManager() *Manager {
	return NewManagerAt(defaultPath())
}

// NewManagerAt creates a stats manager for the file at path
func NewManagerAt(path string) *Manager {
	return &Manager{
		path:         path,
		saveDuration: 2 * time.Second, // Debounce saves
	}
}

func defaultPath() string {
	home, err := homedir.Dir()
	if err != nil {
		return ".folderdiff-stats.json"
	}
	return filepath.Join(home, ".folderdiff", "stats.json")
}

// Load loads stats from disk
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			m.stats = Stats{}
			return nil
		}
		return err
	}

	return json.Unmarshal(data, &m.stats)
}

// Save saves stats to disk immediately
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.saveLocked()
}

// saveLocked saves stats (caller must hold lock)
func (m *Manager) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(m.stats, "", "  ")
	if err != nil {
		return err
	}

	m.dirty = false
	return os.WriteFile(m.path, data, 0644)
}

// Snapshot returns a copy of the current stats
func (m *Manager) Snapshot() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats
}

// LastRemote returns the endpoint of the last upload
func (m *Manager) LastRemote() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats.LastRemote
}

// AddReplicated records a finished upload and schedules a debounced save
func (m *Manager) AddReplicated(files int, bytes int64, remote string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stats.ReplicatedFiles += int64(files)
	m.stats.ReplicatedBytes += bytes
	if remote != "" {
		m.stats.LastRemote = remote
	}
	m.dirty = true

	m.scheduleSaveLocked()
}

func (m *Manager) scheduleSaveLocked() {
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}

	m.saveTimer = time.AfterFunc(m.saveDuration, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.dirty {
			_ = m.saveLocked() // Ignore errors for background save
		}
	})
}

// Close ensures any pending saves are written
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveTimer != nil {
		m.saveTimer.Stop()
		m.saveTimer = nil
	}

	if m.dirty {
		return m.saveLocked()
	}
	return nil
}
