package mocks

import (
	"context"

	"docrepo/internal/model"
	"docrepo/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockDocumentRepository struct {
	mock.Mock
}

var _ repository.DocumentRepository = (*MockDocumentRepository)(nil)

func (m *MockDocumentRepository) FindByIdentity(ctx context.Context, appID, title, contentType string) (*model.Document, error) {
	args := m.Called(ctx, appID, title, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) MaxVersion(ctx context.Context, docID string) (int, error) {
	args := m.Called(ctx, docID)
	return args.Int(0), args.Error(1)
}

func (m *MockDocumentRepository) AppendVersion(ctx context.Context, v *model.DocumentVersion, publish repository.PublishFunc) error {
	return finishTx(ctx, m.Called(ctx, v), publish)
}

func (m *MockDocumentRepository) CreateWithFirstVersion(ctx context.Context, doc *model.Document, v *model.DocumentVersion, publish repository.PublishFunc) error {
	return finishTx(ctx, m.Called(ctx, doc, v), publish)
}

// finishTx plays the insert transaction: the first configured error fails the insert,
// otherwise publish runs and an optional second error fails the commit.
func finishTx(ctx context.Context, args mock.Arguments, publish repository.PublishFunc) error {
	if err := args.Error(0); err != nil {
		return err
	}
	if err := publish(ctx); err != nil {
		return err
	}
	if len(args) > 1 {
		return args.Error(1)
	}
	return nil
}

func (m *MockDocumentRepository) FindCurrent(ctx context.Context, appID, docID string) (*model.CurrentDocument, error) {
	args := m.Called(ctx, appID, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CurrentDocument), args.Error(1)
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, appID, docID string) (*model.Document, error) {
	args := m.Called(ctx, appID, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListVersions(ctx context.Context, appID, docID string) ([]model.DocumentVersion, error) {
	args := m.Called(ctx, appID, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentVersion), args.Error(1)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, docID string) error {
	args := m.Called(ctx, docID)
	return args.Error(0)
}
