package repository

import (
	"context"
	"errors"

	"docrepo/internal/model"
)

// ErrNoRowsAffected is returned when a write statement matched nothing.
var ErrNoRowsAffected = errors.New("no rows affected")

// PublishFunc stores the blob of a version whose row is inserted but not yet committed.
// A non-nil error rolls the insert back.
type PublishFunc func(ctx context.Context) error

// DocumentRepository defines data access for documents and their versions using SQL queries only.
// No business logic here, only persistence.
// Lookups of a single row return sql.ErrNoRows when nothing matches.
type DocumentRepository interface {
	// FindByIdentity returns the document identified by (appID, title, contentType).
	FindByIdentity(ctx context.Context, appID, title, contentType string) (*model.Document, error)

	// MaxVersion returns the highest version number of docID, or 0 when it has none.
	MaxVersion(ctx context.Context, docID string) (int, error)

	// AppendVersion inserts one version row for an existing document and runs publish
	// before committing. A concurrent insert of the same (doc_id, version_num) waits for
	// this transaction and then fails, so it never reaches its own publish.
	AppendVersion(ctx context.Context, v *model.DocumentVersion, publish PublishFunc) error

	// CreateWithFirstVersion inserts the document and its first version in one transaction
	// and runs publish before committing.
	CreateWithFirstVersion(ctx context.Context, doc *model.Document, v *model.DocumentVersion, publish PublishFunc) error

	// FindCurrent returns docID of appID joined with its highest version number.
	FindCurrent(ctx context.Context, appID, docID string) (*model.CurrentDocument, error)

	// FindByID returns docID when it belongs to appID.
	FindByID(ctx context.Context, appID, docID string) (*model.Document, error)

	// ListVersions returns every version of docID in ascending order.
	ListVersions(ctx context.Context, appID, docID string) ([]model.DocumentVersion, error)

	// Delete removes all versions and then the document in one transaction.
	// It returns ErrNoRowsAffected if either statement deletes nothing.
	Delete(ctx context.Context, docID string) error
}
