package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"aedocs/internal/correrr"
)

// Memory is a deterministic in-memory Store used by tests. It never
// fabricates failures; callers that need to exercise Transient/Integrity
// paths wrap it or set Inject* hooks.
type Memory struct {
	mu      sync.RWMutex
	objects map[string][]byte
	modTime map[string]time.Time

	// InjectFetchErr, when non-nil, is returned by Fetch/FetchRange for the
	// named path instead of performing the read. Used to simulate backend
	// failures in orchestrator tests.
	InjectFetchErr map[string]error
}

// NewMemory constructs an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		objects: make(map[string][]byte),
		modTime: make(map[string]time.Time),
	}
}

func (m *Memory) Fetch(ctx context.Context, path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err, ok := m.InjectFetchErr[path]; ok {
		return nil, err
	}
	data, ok := m.objects[path]
	if !ok {
		return nil, correrr.NotFound(path, fmt.Errorf("object not found"))
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *Memory) FetchRange(ctx context.Context, path string, offset, length int64) ([]byte, error) {
	full, err := m.Fetch(ctx, path)
	if err != nil {
		return nil, err
	}
	if offset < 0 || offset > int64(len(full)) {
		return nil, correrr.InvalidInput("fetch_range: offset %d out of bounds for %q", offset, path)
	}
	end := offset + length
	if end > int64(len(full)) {
		end = int64(len(full))
	}
	return full[offset:end], nil
}

func (m *Memory) Put(ctx context.Context, path string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	hr := newHashingReader(bytes.NewReader(data))
	buf, err := io.ReadAll(hr)
	if err != nil {
		return "", correrr.Transient(err)
	}
	m.objects[path] = buf
	m.modTime[path] = time.Now().UTC()
	return hr.hexSum(), nil
}

func (m *Memory) Presign(ctx context.Context, path string, ttl time.Duration) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.objects[path]; !ok {
		return "", correrr.NotFound(path, fmt.Errorf("object not found"))
	}
	return fmt.Sprintf("mem://%s?ttl=%s", path, ttl), nil
}

func (m *Memory) Stat(ctx context.Context, path string) (Attrs, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[path]
	if !ok {
		return Attrs{}, correrr.NotFound(path, fmt.Errorf("object not found"))
	}
	return Attrs{
		Size:    int64(len(data)),
		ModTime: m.modTime[path],
		ETag:    sha256Hex(data),
	}, nil
}

var _ Store = (*Memory)(nil)
