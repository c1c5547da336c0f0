package repository

import (
	"context"
	"errors"

	"docrepo/internal/model"
)

// ErrNotFound is returned by registry lookups that match no row.
var ErrNotFound = errors.New("record not found")

// ClientUpdate carries the client columns to change; empty fields are left as they are.
type ClientUpdate struct {
	Name  string
	Email string
}

// AppUpdate carries the app columns to change; empty fields are left as they are.
type AppUpdate struct {
	Name     string
	DataKeys string
}

// RegistryRepository stores clients and their apps.
type RegistryRepository interface {
	CreateClient(ctx context.Context, c *model.Client) error
	FindClient(ctx context.Context, clientID string) (*model.Client, error)
	UpdateClient(ctx context.Context, clientID string, upd ClientUpdate) error
	// ClientEmailExists reports whether any client already uses email.
	ClientEmailExists(ctx context.Context, email string) (bool, error)

	CreateApp(ctx context.Context, a *model.App) error
	// FindApp returns appID only when it is owned by clientID.
	FindApp(ctx context.Context, appID, clientID string) (*model.App, error)
	UpdateApp(ctx context.Context, appID string, upd AppUpdate) error
	// AppNameExists reports whether clientID already has an app called name.
	AppNameExists(ctx context.Context, clientID, name string) (bool, error)
	// AppHasDocuments reports whether at least one document was ingested into appID.
	AppHasDocuments(ctx context.Context, appID string) (bool, error)
}
