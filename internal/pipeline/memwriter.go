package pipeline

import (
	"sort"
	"sync"
)

// MemoryWriter implements Writer for tests without filesystem I/O.
type MemoryWriter struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// WriteFile stores data in memory.
func (m *MemoryWriter) WriteFile(path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.files == nil {
		m.files = make(map[string][]byte)
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	m.files[path] = buf
	return nil
}

// Bytes returns a stored file's content.
func (m *MemoryWriter) Bytes(path string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.files[path]
	return data, ok
}

// Paths returns the stored file paths in sorted order.
func (m *MemoryWriter) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	paths := make([]string, 0, len(m.files))
	for path := range m.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

var _ Writer = (*MemoryWriter)(nil)
