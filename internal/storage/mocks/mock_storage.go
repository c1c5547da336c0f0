package mocks

import (
	"context"

	"docrepo/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockBlobStore struct {
	mock.Mock
}

var _ storage.BlobStore = (*MockBlobStore)(nil)

func (m *MockBlobStore) WriteBlob(ctx context.Context, path string, data []byte) error {
	args := m.Called(ctx, path, data)
	return args.Error(0)
}

func (m *MockBlobStore) ReadBlob(ctx context.Context, path string) ([]byte, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockBlobStore) RemoveBlob(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

func (m *MockBlobStore) DeleteWithBackup(ctx context.Context, dir string) error {
	args := m.Called(ctx, dir)
	return args.Error(0)
}

func (m *MockBlobStore) RestoreFromBackup(ctx context.Context, dir string) error {
	args := m.Called(ctx, dir)
	return args.Error(0)
}

func (m *MockBlobStore) RemoveBackup(ctx context.Context, dir string) error {
	args := m.Called(ctx, dir)
	return args.Error(0)
}
