package session

import (
	"sync"
)

var (
	globalManager      *Manager
	globalManagerOnce  sync.Once
	globalManagerMutex sync.RWMutex
)

// InitGlobalManager initialises the process-wide session manager over the
// default file store. Call once at application startup; composition roots
// that want isolated instances use NewManager directly.
func InitGlobalManager(opts ...Option) error {
	var err error
	globalManagerOnce.Do(func() {
		var store *FileStore
		store, err = NewFileStore(DefaultSessionFile())
		if err != nil {
			return
		}
		manager := NewManager(store, opts...)
		globalManagerMutex.Lock()
		globalManager = manager
		globalManagerMutex.Unlock()
	})
	return err
}

// GetGlobalManager returns the global session manager instance. Nil before
// InitGlobalManager has been called.
func GetGlobalManager() *Manager {
	globalManagerMutex.RLock()
	defer globalManagerMutex.RUnlock()
	return globalManager
}

// SetGlobalManager replaces the global manager (mainly for testing).
func SetGlobalManager(m *Manager) {
	globalManagerMutex.Lock()
	defer globalManagerMutex.Unlock()
	globalManager = m
}

// IsGlobalManagerInitialized checks if the global manager has been set up.
func IsGlobalManagerInitialized() bool {
	globalManagerMutex.RLock()
	defer globalManagerMutex.RUnlock()
	return globalManager != nil
}
