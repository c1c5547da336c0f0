package mocks

import (
	"context"

	"docrepo/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockRegistryService struct {
	mock.Mock
}

var _ service.RegistryService = (*MockRegistryService)(nil)

func (m *MockRegistryService) ResolveAppSchema(ctx context.Context, appID, clientID string) (string, bool, error) {
	args := m.Called(ctx, appID, clientID)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockRegistryService) IsAppOwnedByClient(ctx context.Context, appID, clientID string) (bool, error) {
	args := m.Called(ctx, appID, clientID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRegistryService) AddClient(ctx context.Context, in service.AddClientInput) (*service.ClientCredentials, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ClientCredentials), args.Error(1)
}

func (m *MockRegistryService) ModifyClient(ctx context.Context, in service.ModifyClientInput) error {
	args := m.Called(ctx, in)
	return args.Error(0)
}

func (m *MockRegistryService) AddApp(ctx context.Context, in service.AddAppInput) (*service.AppCreated, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AppCreated), args.Error(1)
}

func (m *MockRegistryService) ModifyApp(ctx context.Context, in service.ModifyAppInput) error {
	args := m.Called(ctx, in)
	return args.Error(0)
}
