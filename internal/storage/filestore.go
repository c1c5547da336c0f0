package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	dirPerm  os.FileMode = 0o755
	filePerm os.FileMode = 0o644
)

// fileStore implements BlobStore on top of an afero filesystem.
// Production uses afero.NewOsFs(); tests use afero.NewMemMapFs().
type fileStore struct {
	log *zap.Logger
	fs  afero.Fs
}

// NewFileStore returns a BlobStore that keeps blobs as files in fsys.
func NewFileStore(log *zap.Logger, fsys afero.Fs) BlobStore {
	return &fileStore{log: log, fs: fsys}
}

func (s *fileStore) WriteBlob(ctx context.Context, p string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return Error.Wrap(err)
	}

	dir := path.Dir(p)
	if err := s.fs.MkdirAll(dir, dirPerm); err != nil {
		return Error.New("create directory %s: %v", dir, err)
	}

	// Each writer gets its own temp file; the rename publishes it in one step.
	tmp, err := afero.TempFile(s.fs, dir, ".upload-*")
	if err != nil {
		return Error.New("create temp file: %v", err)
	}
	tmpName := tmp.Name()

	_, werr := tmp.Write(data)
	if werr == nil {
		werr = tmp.Sync()
	}
	cerr := tmp.Close()
	if werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = s.fs.Rename(tmpName, p)
	}
	if werr != nil {
		if rmErr := s.fs.Remove(tmpName); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			s.log.Warn("failed to remove temp blob", zap.String("path", tmpName), zap.Error(rmErr))
		}
		return Error.New("write %s: %v", p, werr)
	}
	return nil
}

func (s *fileStore) ReadBlob(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, Error.Wrap(err)
	}
	data, err := afero.ReadFile(s.fs, p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, Error.Wrap(fmt.Errorf("%w: %s", ErrBlobNotFound, p))
		}
		return nil, Error.Wrap(err)
	}
	return data, nil
}

func (s *fileStore) RemoveBlob(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return Error.Wrap(err)
	}
	if err := s.fs.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Error.Wrap(fmt.Errorf("%w: %s", ErrBlobNotFound, p))
		}
		return Error.Wrap(err)
	}
	return nil
}

func (s *fileStore) DeleteWithBackup(ctx context.Context, dir string) error {
	backup := BackupDir(dir)
	n, err := s.copyDir(ctx, dir, backup)
	if err != nil {
		return err
	}
	if err := s.fs.RemoveAll(dir); err != nil {
		return Error.New("remove %s: %v", dir, err)
	}
	s.log.Debug("document directory removed", zap.String("dir", dir), zap.String("backup", backup), zap.Int("files", n))
	return nil
}

func (s *fileStore) RestoreFromBackup(ctx context.Context, dir string) error {
	n, err := s.copyDir(ctx, BackupDir(dir), dir)
	if err != nil {
		return err
	}
	s.log.Debug("document directory restored", zap.String("dir", dir), zap.Int("files", n))
	return nil
}

func (s *fileStore) RemoveBackup(ctx context.Context, dir string) error {
	if err := ctx.Err(); err != nil {
		return Error.Wrap(err)
	}
	if err := s.fs.RemoveAll(BackupDir(dir)); err != nil {
		return Error.Wrap(err)
	}
	return nil
}

// copyDir copies every regular file of src into dst, creating dst if needed.
func (s *fileStore) copyDir(ctx context.Context, src, dst string) (int, error) {
	entries, err := afero.ReadDir(s.fs, src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, Error.Wrap(fmt.Errorf("%w: %s", ErrBlobNotFound, src))
		}
		return 0, Error.Wrap(err)
	}
	if err := s.fs.MkdirAll(dst, dirPerm); err != nil {
		return 0, Error.New("create directory %s: %v", dst, err)
	}

	n := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return n, Error.Wrap(err)
		}
		from := path.Join(src, entry.Name())
		to := path.Join(dst, entry.Name())
		if err := s.copyFile(from, to); err != nil {
			return n, Error.New("copy %s to %s: %v", from, to, err)
		}
		n++
	}
	return n, nil
}

func (s *fileStore) copyFile(from, to string) (err error) {
	in, err := s.fs.Open(from)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := s.fs.OpenFile(to, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
