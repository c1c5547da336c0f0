package storage

import (
	"context"
	"errors"
	"path"
	"strconv"
	"strings"

	"github.com/zeebo/errs"
)

// Package storage keeps the payload of every document version as a blob.
// Blobs of one document share a directory; the metadata store records that directory.

// Error is the class of every error produced by a blob store.
var Error = errs.Class("blobstore")

// ErrBlobNotFound is returned when a blob or directory is missing.
var ErrBlobNotFound = errors.New("blob not found")

// BackupSuffix is appended to a document directory to name its backup sibling.
const BackupSuffix = "_backup"

// BlobStore manages version payloads under a deterministic path scheme.
// Implementations must be safe for concurrent use by multiple goroutines.
type BlobStore interface {
	// WriteBlob stores data at path, creating parent directories.
	// The blob appears at path only once it is complete and replaces whatever was there.
	// A version's blob is written only while its uncommitted metadata row is held,
	// so a blob found at that path beforehand never belongs to a committed version.
	WriteBlob(ctx context.Context, path string, data []byte) error
	// ReadBlob returns the whole blob stored at path.
	ReadBlob(ctx context.Context, path string) ([]byte, error)
	// RemoveBlob deletes the blob at path.
	RemoveBlob(ctx context.Context, path string) error
	// DeleteWithBackup copies every blob in dir into BackupDir(dir), then removes dir.
	// If any copy fails, dir is left untouched.
	DeleteWithBackup(ctx context.Context, dir string) error
	// RestoreFromBackup recreates dir from BackupDir(dir).
	RestoreFromBackup(ctx context.Context, dir string) error
	// RemoveBackup deletes BackupDir(dir).
	RemoveBackup(ctx context.Context, dir string) error
}

// Layout builds blob locations below Root.
type Layout struct {
	Root string
}

// DocumentDir returns <root>/<client>/<app>/<doc>.
func (l Layout) DocumentDir(clientID, appID, docID string) string {
	return path.Join(l.Root, clientID, appID, docID)
}

// BlobPath returns <dir>/<version>.<ext> where ext is derived from contentType.
func (l Layout) BlobPath(dir string, version int, contentType string) string {
	return path.Join(dir, strconv.Itoa(version)+"."+Extension(contentType))
}

// BackupDir names the sibling directory used while deleting dir.
func BackupDir(dir string) string {
	return strings.TrimSuffix(dir, "/") + BackupSuffix
}

// Extension returns the last "/"-separated segment of a content type,
// e.g. "pdf" for "application/pdf" and "plain" for "text/plain".
// Media type parameters such as "; charset=utf-8" are dropped.
func Extension(contentType string) string {
	ct := contentType
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	ct = strings.TrimSpace(ct)
	if i := strings.LastIndexByte(ct, '/'); i >= 0 {
		ct = ct[i+1:]
	}
	return ct
}
