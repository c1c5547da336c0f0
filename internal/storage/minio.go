package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"docrepo/internal/config"
)

const noSuchKey = "NoSuchKey"

// minioStorage implements BlobStore using an S3-compatible backend (MinIO, AWS S3, etc.).
// Directories are key prefixes; backup and restore use server-side copies.
// It is safe for concurrent use by multiple goroutines.
type minioStorage struct {
	log    *zap.Logger
	client *minio.Client
	bucket string
}

// NewMinIO creates a new S3-compatible blob store backed by MinIO.
// It validates connectivity and ensures the bucket exists (creates it if missing).
func NewMinIO(log *zap.Logger, cfg config.MinIOConfig) (BlobStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	tr, err := minio.DefaultTransport(cfg.UseSSL)
	if err != nil {
		return nil, fmt.Errorf("create minio transport: %w", err)
	}

	// Every S3 call becomes a client span under the request span.
	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Transport: otelhttp.NewTransport(tr),
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return &minioStorage{log: log, client: cli, bucket: cfg.Bucket}, nil
}

func (m *minioStorage) WriteBlob(ctx context.Context, key string, data []byte) error {
	// A single PUT is atomic: readers see the previous object or the whole new one.
	_, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	return Error.Wrap(err)
}

func (m *minioStorage) ReadBlob(ctx context.Context, key string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, m.notFound(err, key)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, m.notFound(err, key)
	}
	return data, nil
}

func (m *minioStorage) RemoveBlob(ctx context.Context, key string) error {
	return Error.Wrap(m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}))
}

func (m *minioStorage) DeleteWithBackup(ctx context.Context, dir string) error {
	keys, err := m.copyPrefix(ctx, dir, BackupDir(dir))
	if err != nil {
		return err
	}
	return m.removeKeys(ctx, keys)
}

func (m *minioStorage) RestoreFromBackup(ctx context.Context, dir string) error {
	_, err := m.copyPrefix(ctx, BackupDir(dir), dir)
	return err
}

func (m *minioStorage) RemoveBackup(ctx context.Context, dir string) error {
	keys, err := m.list(ctx, BackupDir(dir))
	if err != nil {
		return err
	}
	return m.removeKeys(ctx, keys)
}

// copyPrefix copies every object under src/ to dst/ and returns the source keys.
func (m *minioStorage) copyPrefix(ctx context.Context, src, dst string) ([]string, error) {
	keys, err := m.list(ctx, src)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, Error.Wrap(fmt.Errorf("%w: %s", ErrBlobNotFound, src))
	}

	for _, key := range keys {
		target := path.Join(dst, path.Base(key))
		_, err := m.client.CopyObject(ctx,
			minio.CopyDestOptions{Bucket: m.bucket, Object: target},
			minio.CopySrcOptions{Bucket: m.bucket, Object: key},
		)
		if err != nil {
			return nil, Error.New("copy %s to %s: %v", key, target, err)
		}
	}
	m.log.Debug("objects copied", zap.String("from", src), zap.String("to", dst), zap.Int("objects", len(keys)))
	return keys, nil
}

func (m *minioStorage) list(ctx context.Context, dir string) ([]string, error) {
	prefix := strings.TrimSuffix(dir, "/") + "/"
	var keys []string
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, Error.Wrap(obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

func (m *minioStorage) removeKeys(ctx context.Context, keys []string) error {
	for _, key := range keys {
		if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
			return Error.New("remove %s: %v", key, err)
		}
	}
	return nil
}

func (m *minioStorage) notFound(err error, key string) error {
	if minio.ToErrorResponse(err).Code == noSuchKey {
		return Error.Wrap(fmt.Errorf("%w: %s", ErrBlobNotFound, key))
	}
	return Error.Wrap(err)
}
