package storage

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is the snapshot store used when no storage account is
// configured. Snapshots are held in memory only and vanish on restart, which
// matches the pipeline's no-persistence posture.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ SnapshotStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Store(filename string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	m.data[filename] = buf
	return nil
}

func (m *MemoryStore) Retrieve(filename string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.data[filename]
	if !ok {
		return nil, fmt.Errorf("snapshot not found: %s", filename)
	}
	return data, nil
}

func (m *MemoryStore) List(prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var names []string
	for name := range m.data {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *MemoryStore) Delete(filename string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, filename)
	return nil
}
