package mocks

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// MockBackend is an in-memory store.Backend for testing
type MockBackend struct {
	mu     sync.Mutex
	data   []byte
	exists bool

	// For tracking calls in tests
	Writes  [][]byte
	Backups [][]byte

	ReadErr   error
	WriteErr  error
	BackupErr error

	// WriteHook runs inside Write before the bytes are stored.
	WriteHook func(raw []byte)

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

// NewMockBackend creates an empty MockBackend
func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

// SetRaw seeds the stored bytes
func (m *MockBackend) SetRaw(raw string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = []byte(raw)
	m.exists = true
}

// Raw returns the stored bytes
func (m *MockBackend) Raw() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data...)
}

// WriteCount returns how many writes landed
func (m *MockBackend) WriteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Writes)
}

// MaxConcurrentWrites reports the highest number of overlapping Write calls seen
func (m *MockBackend) MaxConcurrentWrites() int {
	return int(m.maxInFlight.Load())
}

func (m *MockBackend) Read(_ context.Context) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, false, m.ReadErr
	}
	if !m.exists {
		return nil, false, nil
	}
	return append([]byte(nil), m.data...), true, nil
}

func (m *MockBackend) Write(_ context.Context, raw []byte) error {
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		cur := m.maxInFlight.Load()
		if n <= cur || m.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}

	if m.WriteHook != nil {
		m.WriteHook(raw)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.data = append([]byte(nil), raw...)
	m.exists = true
	m.Writes = append(m.Writes, m.data)
	return nil
}

func (m *MockBackend) Backup(_ context.Context, raw []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BackupErr != nil {
		return "", m.BackupErr
	}
	m.Backups = append(m.Backups, append([]byte(nil), raw...))
	return fmt.Sprintf("memory-backup-%d", len(m.Backups)), nil
}
