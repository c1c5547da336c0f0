package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// failingFs refuses to open files for writing whose name contains failOn.
type failingFs struct {
	afero.Fs
	failOn string
}

func (f *failingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR) != 0 && strings.Contains(name, f.failOn) {
		return nil, errors.New("disk full")
	}
	return f.Fs.OpenFile(name, flag, perm)
}

func TestLayout(t *testing.T) {
	l := Layout{Root: "uploads"}

	dir := l.DocumentDir("c1", "app1", "doc1")
	assert.Equal(t, "uploads/c1/app1/doc1", dir)
	assert.Equal(t, "uploads/c1/app1/doc1/3.pdf", l.BlobPath(dir, 3, "application/pdf"))
	assert.Equal(t, "uploads/c1/app1/doc1/1.plain", l.BlobPath(dir, 1, "text/plain"))
	assert.Equal(t, "uploads/c1/app1/doc1_backup", BackupDir(dir))
}

func TestExtension(t *testing.T) {
	tests := map[string]string{
		"application/pdf":           "pdf",
		"text/plain":                "plain",
		"text/plain; charset=utf-8": "plain",
		"application/vnd.ms-excel":  "vnd.ms-excel",
		"weird":                     "weird",
	}
	for in, want := range tests {
		assert.Equal(t, want, Extension(in), in)
	}
}

func TestFileStore_WriteRead(t *testing.T) {
	ctx := context.Background()
	fsys := afero.NewMemMapFs()
	store := NewFileStore(zap.NewNop(), fsys)

	payload := []byte{0x25, 0x50, 0x44, 0x46, 0x00, 0xff}
	require.NoError(t, store.WriteBlob(ctx, "uploads/c1/a1/d1/1.pdf", payload))

	got, err := store.ReadBlob(ctx, "uploads/c1/a1/d1/1.pdf")
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	entries, err := afero.ReadDir(fsys, "uploads/c1/a1/d1")
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	assert.Equal(t, "1.pdf", entries[0].Name())
}

func TestFileStore_WriteReplacesStaleBlob(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(zap.NewNop(), afero.NewMemMapFs())

	require.NoError(t, store.WriteBlob(ctx, "d/2.pdf", []byte("left over from a crash")))
	require.NoError(t, store.WriteBlob(ctx, "d/2.pdf", []byte("second")))

	got, err := store.ReadBlob(ctx, "d/2.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)
}

func TestFileStore_ConcurrentWritersNeverMix(t *testing.T) {
	ctx := context.Background()
	fsys := afero.NewOsFs()
	store := NewFileStore(zap.NewNop(), fsys)
	dir := filepath.Join(t.TempDir(), "d")
	target := filepath.Join(dir, "1.pdf")

	payloads := make(map[string]bool)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		data := strings.Repeat(strconv.Itoa(i), 64*1024)
		payloads[data] = true
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.WriteBlob(ctx, target, []byte(data)))
		}()
	}
	wg.Wait()

	got, err := store.ReadBlob(ctx, target)
	require.NoError(t, err)
	assert.True(t, payloads[string(got)], "blob must be exactly one writer's payload")

	entries, err := afero.ReadDir(fsys, dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStore_ReadMissing(t *testing.T) {
	store := NewFileStore(zap.NewNop(), afero.NewMemMapFs())

	_, err := store.ReadBlob(context.Background(), "nope/1.pdf")

	assert.ErrorIs(t, err, ErrBlobNotFound)
}

func TestFileStore_RemoveBlob(t *testing.T) {
	ctx := context.Background()
	fsys := afero.NewMemMapFs()
	store := NewFileStore(zap.NewNop(), fsys)

	require.NoError(t, store.WriteBlob(ctx, "d/1.pdf", []byte("x")))
	require.NoError(t, store.RemoveBlob(ctx, "d/1.pdf"))

	exists, err := afero.Exists(fsys, "d/1.pdf")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.ErrorIs(t, store.RemoveBlob(ctx, "d/1.pdf"), ErrBlobNotFound)
}

func TestFileStore_DeleteAndRestore(t *testing.T) {
	ctx := context.Background()
	fsys := afero.NewMemMapFs()
	store := NewFileStore(zap.NewNop(), fsys)

	dir := "uploads/c1/a1/d1"
	blobs := map[string][]byte{
		"1.pdf": {0x00, 0x01, 0x02, 0xfe},
		"2.pdf": []byte("second version"),
	}
	for name, data := range blobs {
		require.NoError(t, store.WriteBlob(ctx, dir+"/"+name, data))
	}

	require.NoError(t, store.DeleteWithBackup(ctx, dir))

	exists, err := afero.DirExists(fsys, dir)
	require.NoError(t, err)
	assert.False(t, exists)
	for name, data := range blobs {
		got, err := afero.ReadFile(fsys, BackupDir(dir)+"/"+name)
		require.NoError(t, err)
		assert.Equal(t, data, got)
	}

	require.NoError(t, store.RestoreFromBackup(ctx, dir))
	for name, data := range blobs {
		got, err := store.ReadBlob(ctx, dir+"/"+name)
		require.NoError(t, err)
		assert.Equal(t, data, got, "restored %s must match bit for bit", name)
	}

	require.NoError(t, store.RemoveBackup(ctx, dir))
	exists, err = afero.DirExists(fsys, BackupDir(dir))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFileStore_DeleteWithBackup_CopyFailureKeepsOriginal(t *testing.T) {
	ctx := context.Background()
	mem := afero.NewMemMapFs()
	dir := "uploads/c1/a1/d1"
	require.NoError(t, afero.WriteFile(mem, dir+"/1.pdf", []byte("keep me"), 0o644))

	store := NewFileStore(zap.NewNop(), &failingFs{Fs: mem, failOn: BackupSuffix})

	err := store.DeleteWithBackup(ctx, dir)
	require.Error(t, err)
	assert.True(t, Error.Has(err))

	got, err := afero.ReadFile(mem, dir+"/1.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("keep me"), got)
}

func TestFileStore_DeleteWithBackup_MissingDir(t *testing.T) {
	store := NewFileStore(zap.NewNop(), afero.NewMemMapFs())

	err := store.DeleteWithBackup(context.Background(), "uploads/none")

	assert.ErrorIs(t, err, ErrBlobNotFound)
}

func TestFileStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := NewFileStore(zap.NewNop(), afero.NewMemMapFs())

	assert.ErrorIs(t, store.WriteBlob(ctx, "d/1.pdf", []byte("x")), context.Canceled)
	_, err := store.ReadBlob(ctx, "d/1.pdf")
	assert.ErrorIs(t, err, context.Canceled)
}
