package minio

import (
	"context"
	"io"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/keyip-molkit/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/keyip-molkit/pkg/errors"
)

const molfileContentType = "chemical/x-mdl-molfile"

var (
	ErrInvalidKey     = errors.New(errors.ErrCodeValidation, "object key must be a relative path")
	ErrObjectNotFound = errors.New(errors.ErrCodeNotFound, "molfile object not found")
	ErrObjectTooLarge = errors.New(errors.ErrCodeValidation, "molfile object exceeds size limit")
)

// ObjectInfo describes a stored molfile.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	LastModified time.Time
}

// MolfileStore reads and writes molfile text under one bucket.
type MolfileStore interface {
	Fetch(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, text string) (*ObjectInfo, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}

type minioStore struct {
	client *MinIOClient
	logger logging.Logger
}

func NewMolfileStore(client *MinIOClient, log logging.Logger) MolfileStore {
	return &minioStore{client: client, logger: logging.OrNop(log)}
}

func validKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") {
		return false
	}
	return path.Clean(key) == key && !strings.HasPrefix(key, "..")
}

func isNoSuchKey(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}

// Fetch returns the object text.  Objects larger than the configured limit
// are rejected without reading past it.
func (s *minioStore) Fetch(ctx context.Context, key string) (string, error) {
	if !validKey(key) {
		return "", ErrInvalidKey.WithDetail(key)
	}
	cfg := s.client.config
	rc, info, err := s.client.api.GetObject(ctx, cfg.Bucket, key)
	if err != nil {
		if isNoSuchKey(err) {
			return "", ErrObjectNotFound.WithDetail(key)
		}
		return "", errors.Wrap(err, errors.ErrCodeMoleculeSourceError, "failed to fetch "+key)
	}
	defer rc.Close()

	if info.Size > cfg.MaxObjectBytes {
		return "", ErrObjectTooLarge.WithDetail(key)
	}
	data, err := io.ReadAll(io.LimitReader(rc, cfg.MaxObjectBytes+1))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeMoleculeSourceError, "failed to read "+key)
	}
	if int64(len(data)) > cfg.MaxObjectBytes {
		return "", ErrObjectTooLarge.WithDetail(key)
	}
	s.logger.Debug("molfile fetched", logging.String("key", key), logging.Int("bytes", len(data)))
	return string(data), nil
}

func (s *minioStore) Put(ctx context.Context, key, text string) (*ObjectInfo, error) {
	if !validKey(key) {
		return nil, ErrInvalidKey.WithDetail(key)
	}
	if int64(len(text)) > s.client.config.MaxObjectBytes {
		return nil, ErrObjectTooLarge.WithDetail(key)
	}
	info, err := s.client.api.PutObject(ctx, s.client.config.Bucket, key, strings.NewReader(text), int64(len(text)),
		minio.PutObjectOptions{ContentType: molfileContentType})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "failed to store "+key)
	}
	return &ObjectInfo{Key: info.Key, Size: info.Size, ETag: info.ETag, LastModified: info.LastModified}, nil
}

func (s *minioStore) Exists(ctx context.Context, key string) (bool, error) {
	if !validKey(key) {
		return false, ErrInvalidKey.WithDetail(key)
	}
	_, err := s.client.api.StatObject(ctx, s.client.config.Bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, errors.Wrap(err, errors.ErrCodeExternalService, "failed to stat "+key)
	}
	return true, nil
}

func (s *minioStore) Delete(ctx context.Context, key string) error {
	if !validKey(key) {
		return ErrInvalidKey.WithDetail(key)
	}
	if err := s.client.api.RemoveObject(ctx, s.client.config.Bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "failed to delete "+key)
	}
	return nil
}

func (s *minioStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var out []ObjectInfo
	for obj := range s.client.api.ListObjects(ctx, s.client.config.Bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, errors.Wrap(obj.Err, errors.ErrCodeExternalService, "failed to list objects")
		}
		out = append(out, ObjectInfo{Key: obj.Key, Size: obj.Size, ETag: obj.ETag, LastModified: obj.LastModified})
	}
	return out, nil
}

//Personal.AI order the ending
