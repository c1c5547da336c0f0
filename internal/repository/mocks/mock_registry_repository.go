package mocks

import (
	"context"

	"docrepo/internal/model"
	"docrepo/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockRegistryRepository struct {
	mock.Mock
}

var _ repository.RegistryRepository = (*MockRegistryRepository)(nil)

func (m *MockRegistryRepository) CreateClient(ctx context.Context, c *model.Client) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockRegistryRepository) FindClient(ctx context.Context, clientID string) (*model.Client, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Client), args.Error(1)
}

func (m *MockRegistryRepository) UpdateClient(ctx context.Context, clientID string, upd repository.ClientUpdate) error {
	args := m.Called(ctx, clientID, upd)
	return args.Error(0)
}

func (m *MockRegistryRepository) ClientEmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockRegistryRepository) CreateApp(ctx context.Context, a *model.App) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockRegistryRepository) FindApp(ctx context.Context, appID, clientID string) (*model.App, error) {
	args := m.Called(ctx, appID, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.App), args.Error(1)
}

func (m *MockRegistryRepository) UpdateApp(ctx context.Context, appID string, upd repository.AppUpdate) error {
	args := m.Called(ctx, appID, upd)
	return args.Error(0)
}

func (m *MockRegistryRepository) AppNameExists(ctx context.Context, clientID, name string) (bool, error) {
	args := m.Called(ctx, clientID, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockRegistryRepository) AppHasDocuments(ctx context.Context, appID string) (bool, error) {
	args := m.Called(ctx, appID)
	return args.Bool(0), args.Error(1)
}
