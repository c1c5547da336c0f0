package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"docrepo/internal/model"
	"docrepo/internal/repository"
	repoMocks "docrepo/internal/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newRegistry(mRepo *repoMocks.MockRegistryRepository) *registryService {
	svc := NewRegistryService(zap.NewNop(), mRepo, &seqIDs{}).(*registryService)
	svc.hashCost = bcrypt.MinCost
	return svc
}

func TestRegistryService_AddClient(t *testing.T) {
	tests := []struct {
		name       string
		in         AddClientInput
		setupMocks func(mRepo *repoMocks.MockRegistryRepository)
		kind       Kind
		message    string
	}{
		{name: "missing name", in: AddClientInput{Email: "a@b.io"}, kind: KindValidation, message: "Name is required."},
		{name: "missing email", in: AddClientInput{Name: "Acme"}, kind: KindValidation, message: "Email is required."},
		{name: "bad email", in: AddClientInput{Name: "Acme", Email: "acme"}, kind: KindValidation, message: "Invalid Email format."},
		{
			name: "email taken",
			in:   AddClientInput{Name: "Acme", Email: "ops@acme.io"},
			setupMocks: func(mRepo *repoMocks.MockRegistryRepository) {
				mRepo.On("ClientEmailExists", mock.Anything, "ops@acme.io").Return(true, nil)
			},
			kind:    KindConflict,
			message: "Client email already exists.",
		},
		{
			name: "insert fails",
			in:   AddClientInput{Name: "Acme", Email: "ops@acme.io"},
			setupMocks: func(mRepo *repoMocks.MockRegistryRepository) {
				mRepo.On("ClientEmailExists", mock.Anything, "ops@acme.io").Return(false, nil)
				mRepo.On("CreateClient", mock.Anything, mock.Anything).Return(errors.New("unique violation"))
			},
			kind:    KindStorage,
			message: "Failed to add client. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockRegistryRepository)
			if tt.setupMocks != nil {
				tt.setupMocks(mRepo)
			}

			creds, err := newRegistry(mRepo).AddClient(context.Background(), tt.in)

			assert.Nil(t, creds)
			assertServiceError(t, err, tt.kind, tt.message)
			mRepo.AssertExpectations(t)
		})
	}
}

func TestRegistryService_AddClient_StoresHashOnly(t *testing.T) {
	mRepo := new(repoMocks.MockRegistryRepository)
	var stored *model.Client
	mRepo.On("ClientEmailExists", mock.Anything, "ops@acme.io").Return(false, nil)
	mRepo.On("CreateClient", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*model.Client) }).
		Return(nil)

	creds, err := newRegistry(mRepo).AddClient(context.Background(), AddClientInput{Name: "Acme", Email: "ops@acme.io"})

	require.NoError(t, err)
	assert.Equal(t, "id-1", creds.ClientID)
	assert.Len(t, creds.AccessKey, AccessKeyBytes*2)
	require.NotNil(t, stored)
	assert.NotEqual(t, creds.AccessKey, stored.AccessKeyHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.AccessKeyHash), []byte(creds.AccessKey)))
}

func TestRegistryService_ModifyClient(t *testing.T) {
	client := &model.Client{ID: "c1"}

	tests := []struct {
		name       string
		in         ModifyClientInput
		setupMocks func(mRepo *repoMocks.MockRegistryRepository)
		kind       Kind
		message    string
		wantErr    bool
	}{
		{name: "missing id", in: ModifyClientInput{Name: "x"}, wantErr: true, kind: KindValidation, message: "Client ID is required."},
		{
			name:    "nothing to change",
			in:      ModifyClientInput{ClientID: "c1"},
			wantErr: true,
			kind:    KindValidation,
			message: "At least one field to update (name or email) must be provided.",
		},
		{name: "bad email", in: ModifyClientInput{ClientID: "c1", Email: "nope"}, wantErr: true, kind: KindValidation, message: "Invalid Email format."},
		{
			name: "unknown client",
			in:   ModifyClientInput{ClientID: "c9", Name: "x"},
			setupMocks: func(mRepo *repoMocks.MockRegistryRepository) {
				mRepo.On("FindClient", mock.Anything, "c9").Return(nil, repository.ErrNotFound)
			},
			wantErr: true,
			kind:    KindNotFound,
			message: "No client found with the specified id.",
		},
		{
			name: "email taken",
			in:   ModifyClientInput{ClientID: "c1", Email: "taken@acme.io"},
			setupMocks: func(mRepo *repoMocks.MockRegistryRepository) {
				mRepo.On("FindClient", mock.Anything, "c1").Return(client, nil)
				mRepo.On("ClientEmailExists", mock.Anything, "taken@acme.io").Return(true, nil)
			},
			wantErr: true,
			kind:    KindConflict,
			message: "Client email already exists.",
		},
		{
			name: "rename",
			in:   ModifyClientInput{ClientID: "c1", Name: "New"},
			setupMocks: func(mRepo *repoMocks.MockRegistryRepository) {
				mRepo.On("FindClient", mock.Anything, "c1").Return(client, nil)
				mRepo.On("UpdateClient", mock.Anything, "c1", repository.ClientUpdate{Name: "New"}).Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockRegistryRepository)
			if tt.setupMocks != nil {
				tt.setupMocks(mRepo)
			}

			err := newRegistry(mRepo).ModifyClient(context.Background(), tt.in)

			if tt.wantErr {
				assertServiceError(t, err, tt.kind, tt.message)
			} else {
				assert.NoError(t, err)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestRegistryService_AddApp(t *testing.T) {
	keys := json.RawMessage(`{"age":{"type":"integer","required":true}}`)

	tests := []struct {
		name       string
		in         AddAppInput
		setupMocks func(mRepo *repoMocks.MockRegistryRepository)
		kind       Kind
		message    string
		wantErr    bool
	}{
		{name: "missing name", in: AddAppInput{ClientID: "c1", DataKeys: keys}, wantErr: true, kind: KindValidation, message: "Name is required."},
		{name: "missing client", in: AddAppInput{Name: "billing", DataKeys: keys}, wantErr: true, kind: KindValidation, message: "Client ID is required."},
		{name: "missing data keys", in: AddAppInput{ClientID: "c1", Name: "billing"}, wantErr: true, kind: KindValidation, message: "Data keys are required."},
		{
			name:    "malformed entry",
			in:      AddAppInput{ClientID: "c1", Name: "billing", DataKeys: json.RawMessage(`{"age":{"type":"integer"}}`)},
			wantErr: true,
			kind:    KindValidation,
			message: "Invalid format for data_keys entry: age",
		},
		{
			name: "duplicate name",
			in:   AddAppInput{ClientID: "c1", Name: "billing", DataKeys: keys},
			setupMocks: func(mRepo *repoMocks.MockRegistryRepository) {
				mRepo.On("AppNameExists", mock.Anything, "c1", "billing").Return(true, nil)
			},
			wantErr: true,
			kind:    KindConflict,
			message: "App name already exists.",
		},
		{
			name: "created",
			in:   AddAppInput{ClientID: "c1", Name: "billing", DataKeys: keys},
			setupMocks: func(mRepo *repoMocks.MockRegistryRepository) {
				mRepo.On("AppNameExists", mock.Anything, "c1", "billing").Return(false, nil)
				mRepo.On("CreateApp", mock.Anything, mock.MatchedBy(func(a *model.App) bool {
					return a.ID == "id-1" && a.ClientID == "c1" && a.DataKeys == string(keys)
				})).Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockRegistryRepository)
			if tt.setupMocks != nil {
				tt.setupMocks(mRepo)
			}

			res, err := newRegistry(mRepo).AddApp(context.Background(), tt.in)

			if tt.wantErr {
				assert.Nil(t, res)
				assertServiceError(t, err, tt.kind, tt.message)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "id-1", res.AppID)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestRegistryService_ModifyApp(t *testing.T) {
	keys := json.RawMessage(`{"age":{"type":"number","required":false}}`)
	app := &model.App{ID: "app1", ClientID: "c1"}

	tests := []struct {
		name       string
		in         ModifyAppInput
		setupMocks func(mRepo *repoMocks.MockRegistryRepository)
		kind       Kind
		message    string
		wantErr    bool
	}{
		{name: "missing app id", in: ModifyAppInput{ClientID: "c1", Name: "x"}, wantErr: true, kind: KindValidation, message: "App ID is required."},
		{
			name:    "nothing to change",
			in:      ModifyAppInput{ClientID: "c1", AppID: "app1"},
			wantErr: true,
			kind:    KindValidation,
			message: "At least one field to update (name or data keys) must be provided.",
		},
		{
			name: "schema locked by documents",
			in:   ModifyAppInput{ClientID: "c1", AppID: "app1", DataKeys: keys},
			setupMocks: func(mRepo *repoMocks.MockRegistryRepository) {
				mRepo.On("FindApp", mock.Anything, "app1", "c1").Return(app, nil)
				mRepo.On("AppHasDocuments", mock.Anything, "app1").Return(true, nil)
			},
			wantErr: true,
			kind:    KindConflict,
			message: "Data Keys cannot be modified because documents exist for this App ID. Please delete all associated documents to modify Data Keys.",
		},
		{
			name: "foreign app",
			in:   ModifyAppInput{ClientID: "c2", AppID: "app1", Name: "x"},
			setupMocks: func(mRepo *repoMocks.MockRegistryRepository) {
				mRepo.On("FindApp", mock.Anything, "app1", "c2").Return(nil, repository.ErrNotFound)
			},
			wantErr: true,
			kind:    KindNotFound,
			message: "No app found with the specified id.",
		},
		{
			name: "foreign app with documents reads as missing",
			in:   ModifyAppInput{ClientID: "c2", AppID: "app1", DataKeys: keys},
			setupMocks: func(mRepo *repoMocks.MockRegistryRepository) {
				mRepo.On("FindApp", mock.Anything, "app1", "c2").Return(nil, repository.ErrNotFound)
			},
			wantErr: true,
			kind:    KindNotFound,
			message: "No app found with the specified id.",
		},
		{
			name: "name taken",
			in:   ModifyAppInput{ClientID: "c1", AppID: "app1", Name: "billing"},
			setupMocks: func(mRepo *repoMocks.MockRegistryRepository) {
				mRepo.On("FindApp", mock.Anything, "app1", "c1").Return(app, nil)
				mRepo.On("AppNameExists", mock.Anything, "c1", "billing").Return(true, nil)
			},
			wantErr: true,
			kind:    KindConflict,
			message: "App name already exists.",
		},
		{
			name: "replace schema",
			in:   ModifyAppInput{ClientID: "c1", AppID: "app1", DataKeys: keys},
			setupMocks: func(mRepo *repoMocks.MockRegistryRepository) {
				mRepo.On("AppHasDocuments", mock.Anything, "app1").Return(false, nil)
				mRepo.On("FindApp", mock.Anything, "app1", "c1").Return(app, nil)
				mRepo.On("UpdateApp", mock.Anything, "app1", repository.AppUpdate{DataKeys: string(keys)}).Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockRegistryRepository)
			if tt.setupMocks != nil {
				tt.setupMocks(mRepo)
			}

			err := newRegistry(mRepo).ModifyApp(context.Background(), tt.in)

			if tt.wantErr {
				assertServiceError(t, err, tt.kind, tt.message)
			} else {
				assert.NoError(t, err)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestRegistryService_ResolveAppSchema(t *testing.T) {
	mRepo := new(repoMocks.MockRegistryRepository)
	mRepo.On("FindApp", mock.Anything, "app1", "c1").Return(&model.App{ID: "app1", DataKeys: testSchema}, nil)
	mRepo.On("FindApp", mock.Anything, "app1", "c2").Return(nil, repository.ErrNotFound)
	mRepo.On("FindApp", mock.Anything, "app2", "c1").Return(nil, errors.New("db down"))
	svc := newRegistry(mRepo)
	ctx := context.Background()

	got, ok, err := svc.ResolveAppSchema(ctx, "app1", "c1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, testSchema, got)

	owned, err := svc.IsAppOwnedByClient(ctx, "app1", "c2")
	require.NoError(t, err)
	assert.False(t, owned)

	_, _, err = svc.ResolveAppSchema(ctx, "app2", "c1")
	assert.EqualError(t, err, "db down")
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(notFound("x")))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.Equal(t, "inconsistent", KindInconsistent.String())
}
