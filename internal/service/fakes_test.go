package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
)

// scriptedLLM answers completions from a function and counts calls.
type scriptedLLM struct {
	reply func(system, user string) (string, error)
	calls atomic.Int32
}

func (f *scriptedLLM) Complete(_ context.Context, system, user string) (string, error) {
	f.calls.Add(1)
	return f.reply(system, user)
}

func (f *scriptedLLM) ModelName() string { return "Fake:model" }

func jokeLLM() *scriptedLLM {
	return &scriptedLLM{reply: func(system, user string) (string, error) {
		if strings.HasPrefix(user, "Please explain") {
			return "It is a pun.", nil
		}
		return "Why did the chicken cross the road?", nil
	}}
}

// countingModerator records every topic it is asked about.
type countingModerator struct {
	mu      sync.Mutex
	verdict bool
	topics  []string
}

func (m *countingModerator) IsAppropriate(_ context.Context, topic string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.topics = append(m.topics, topic)
	return m.verdict
}

func (m *countingModerator) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.topics)
}

// memoryStorage keeps uploads in memory.
type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	failErr error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *memoryStorage) EnsureBucket(context.Context) error { return nil }

func (s *memoryStorage) Upload(_ context.Context, key string, r io.Reader, size int64, contentType string) error {
	if s.failErr != nil {
		return s.failErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if int64(len(data)) != size {
		return errors.New("size mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	s.types[key] = contentType
	return nil
}

func (s *memoryStorage) GetURL(key string) string { return "mem://" + key }
