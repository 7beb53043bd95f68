package minio

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
)

// memoryAPI is an in-memory ObjectAPI.
type memoryAPI struct {
	mu      sync.Mutex
	buckets map[string]map[string][]byte
	err     error
}

func newMemoryAPI(buckets ...string) *memoryAPI {
	m := &memoryAPI{buckets: map[string]map[string][]byte{}}
	for _, b := range buckets {
		m.buckets[b] = map[string][]byte{}
	}
	return m
}

func noSuchKey() error { return minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404} }

func (m *memoryAPI) BucketExists(_ context.Context, bucket string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.buckets[bucket]
	return ok, nil
}

func (m *memoryAPI) MakeBucket(_ context.Context, bucket string, _ minio.MakeBucketOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buckets[bucket] = map[string][]byte{}
	return nil
}

func (m *memoryAPI) PutObject(_ context.Context, bucket, key string, r io.Reader, _ int64, _ minio.PutObjectOptions) (minio.UploadInfo, error) {
	if m.err != nil {
		return minio.UploadInfo{}, m.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buckets[bucket][key] = data
	return minio.UploadInfo{Bucket: bucket, Key: key, Size: int64(len(data)), ETag: "etag"}, nil
}

func (m *memoryAPI) GetObject(_ context.Context, bucket, key string) (io.ReadCloser, minio.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, minio.ObjectInfo{}, m.err
	}
	data, ok := m.buckets[bucket][key]
	if !ok {
		return nil, minio.ObjectInfo{}, noSuchKey()
	}
	return io.NopCloser(bytes.NewReader(data)), minio.ObjectInfo{Key: key, Size: int64(len(data))}, nil
}

func (m *memoryAPI) StatObject(_ context.Context, bucket, key string, _ minio.StatObjectOptions) (minio.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.buckets[bucket][key]
	if !ok {
		return minio.ObjectInfo{}, noSuchKey()
	}
	return minio.ObjectInfo{Key: key, Size: int64(len(data))}, nil
}

func (m *memoryAPI) RemoveObject(_ context.Context, bucket, key string, _ minio.RemoveObjectOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.buckets[bucket], key)
	return nil
}

func (m *memoryAPI) ListObjects(_ context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	m.mu.Lock()
	var keys []string
	for k := range m.buckets[bucket] {
		if strings.HasPrefix(k, opts.Prefix) {
			keys = append(keys, k)
		}
	}
	sizes := make(map[string]int64, len(keys))
	for _, k := range keys {
		sizes[k] = int64(len(m.buckets[bucket][k]))
	}
	m.mu.Unlock()
	sort.Strings(keys)

	ch := make(chan minio.ObjectInfo, len(keys))
	for _, k := range keys {
		ch <- minio.ObjectInfo{Key: k, Size: sizes[k]}
	}
	close(ch)
	return ch
}

//Personal.AI order the ending
