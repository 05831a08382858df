// Package storage stores uploaded files in an S3 compatible bucket through
// minio and streams them back out.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/cantina-dev/cantina/internal/shared"
)

// Config carries the S3 connection settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// KindProduct is the only object kind currently accepted.
const KindProduct = "product"

// ValidKind reports whether kind names a known object family.
func ValidKind(kind string) bool {
	return kind == KindProduct
}

// ObjectStore is the subset of the minio client the service needs.
type ObjectStore interface {
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucket, key string, opts minio.GetObjectOptions) (*minio.Object, error)
	StatObject(ctx context.Context, bucket, key string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	RemoveObject(ctx context.Context, bucket, key string, opts minio.RemoveObjectOptions) error
}

// Service reads and writes bucket objects.
type Service struct {
	store  ObjectStore
	bucket string
}

// NewClient connects to the S3 endpoint and makes sure the bucket exists.
func NewClient(ctx context.Context, cfg Config) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: connect: %w", err)
	}
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("storage: bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("storage: create bucket: %w", err)
		}
	}
	return client, nil
}

// NewService builds a Service on top of a connected client.
func NewService(store ObjectStore, bucket string) *Service {
	return &Service{store: store, bucket: bucket}
}

// Upload stores the content under a fresh "<kind>/<uuid><ext>" key and
// returns the key.
func (s *Service) Upload(ctx context.Context, kind, filename string, r io.Reader, size int64, contentType string) (string, error) {
	if !ValidKind(kind) {
		return "", fmt.Errorf("%w: unknown upload type %q", shared.ErrValidation, kind)
	}
	key := kind + "/" + uuid.New().String() + strings.ToLower(path.Ext(filename))
	_, err := s.store.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("storage: upload: %w", err)
	}
	return key, nil
}

// Download opens an object for reading and returns its content type.
func (s *Service) Download(ctx context.Context, kind, name string) (io.ReadCloser, string, error) {
	if !ValidKind(kind) {
		return nil, "", fmt.Errorf("%w: unknown download type %q", shared.ErrValidation, kind)
	}
	key := kind + "/" + path.Base(name)
	info, err := s.store.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, "", shared.ErrNotFound
		}
		return nil, "", fmt.Errorf("storage: stat: %w", err)
	}
	object, err := s.store.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("storage: download: %w", err)
	}
	return object, info.ContentType, nil
}

// Remove deletes an object by its full key.
func (s *Service) Remove(ctx context.Context, key string) error {
	if err := s.store.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("storage: remove: %w", err)
	}
	return nil
}
