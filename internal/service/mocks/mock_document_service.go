package mocks

import (
	"context"

	"docrepo/internal/model"
	"docrepo/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

var _ service.DocumentService = (*MockDocumentService)(nil)

func (m *MockDocumentService) Ingest(ctx context.Context, in service.IngestInput) (*service.IngestResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.IngestResult), args.Error(1)
}

func (m *MockDocumentService) Fetch(ctx context.Context, in service.FetchInput) (*service.FetchResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FetchResult), args.Error(1)
}

func (m *MockDocumentService) ListVersions(ctx context.Context, in service.FetchInput) ([]model.DocumentVersion, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentVersion), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, in service.DeleteInput) error {
	args := m.Called(ctx, in)
	return args.Error(0)
}
