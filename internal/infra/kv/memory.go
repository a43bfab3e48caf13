// Package kv provides the durable key-value stores behind the session store
// and the submission log: Redis for deployments, memory for local runs and tests.
package kv

import (
	"context"
	"sync"
)

// Memory is a process-local KVStore. Data lives as long as the process.
type Memory struct {
	mu      sync.RWMutex
	strings map[string]string
	lists   map[string][]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		strings: make(map[string]string),
		lists:   make(map[string][]string),
	}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.strings[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.strings[key] = value
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.strings, k)
		delete(m.lists, k)
	}
	return nil
}

func (m *Memory) Append(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lists[key] = append(m.lists[key], value)
	return nil
}

func (m *Memory) List(_ context.Context, key string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, len(m.lists[key]))
	copy(out, m.lists[key])
	return out, nil
}

func (m *Memory) Ping(context.Context) error { return nil }
