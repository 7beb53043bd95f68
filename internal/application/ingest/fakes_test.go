package ingest

import (
	"context"
	"sync"

	"github.com/turtacn/keyip-molkit/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/keyip-molkit/internal/infrastructure/storage/minio"
	"github.com/turtacn/keyip-molkit/pkg/errors"
)

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []*kafka.ProducerMessage
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, msg *kafka.ProducerMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

func (p *recordingPublisher) last() *kafka.ProducerMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.msgs) == 0 {
		return nil
	}
	return p.msgs[len(p.msgs)-1]
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.msgs)
}

type memoryStore struct {
	mu       sync.Mutex
	objects  map[string]string
	fetchErr error
}

func newMemoryStore() *memoryStore { return &memoryStore{objects: map[string]string{}} }

func (s *memoryStore) Fetch(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetchErr != nil {
		return "", s.fetchErr
	}
	text, ok := s.objects[key]
	if !ok {
		return "", minio.ErrObjectNotFound.WithDetail(key)
	}
	return text, nil
}

func (s *memoryStore) Put(_ context.Context, key, text string) (*minio.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = text
	return &minio.ObjectInfo{Key: key, Size: int64(len(text))}, nil
}

func (s *memoryStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok, nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *memoryStore) List(_ context.Context, prefix string) ([]minio.ObjectInfo, error) {
	return nil, errors.New(errors.ErrCodeNotImplemented, "list")
}

type stubLocker struct {
	mu       sync.Mutex
	held     map[string]bool
	released []string
}

func newStubLocker() *stubLocker { return &stubLocker{held: map[string]bool{}} }

func (l *stubLocker) Acquire(_ context.Context, jobID string) (func(context.Context), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[jobID] {
		return nil, errors.New(errors.ErrCodeConflict, "lock not acquired")
	}
	l.held[jobID] = true
	return func(context.Context) {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, jobID)
		l.released = append(l.released, jobID)
	}, nil
}

//Personal.AI order the ending
