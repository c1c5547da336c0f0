package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"docrepo/internal/model"
	"docrepo/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const (
	insertDocumentSQL = `
		INSERT INTO document (id, app_id, doc_title, doc_type, doc_path)
		VALUES ($1, $2, $3, $4, $5)
	`
	insertVersionSQL = `
		INSERT INTO document_version (doc_id, version_num, meta_data)
		VALUES ($1, $2, $3)
	`
)

// FindByIdentity looks a document up by its (app, title, content type) triple.
func (r *DocumentPostgres) FindByIdentity(ctx context.Context, appID, title, contentType string) (*model.Document, error) {
	const q = `
		SELECT id, app_id, doc_title, doc_type, doc_path, created_at
		FROM document
		WHERE app_id = $1 AND doc_title = $2 AND doc_type = $3
	`
	row := r.db.QueryRowContext(ctx, q, appID, title, contentType)
	var d model.Document
	if err := row.Scan(&d.ID, &d.AppID, &d.Title, &d.ContentType, &d.StoragePath, &d.CreatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

// MaxVersion returns the current version number of a document, 0 if it has no versions.
func (r *DocumentPostgres) MaxVersion(ctx context.Context, docID string) (int, error) {
	const q = `SELECT COALESCE(MAX(version_num), 0) FROM document_version WHERE doc_id = $1`
	var n int
	if err := r.db.QueryRowContext(ctx, q, docID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// AppendVersion inserts a version row for a document that already exists.
// The row stays uncommitted while publish runs.
func (r *DocumentPostgres) AppendVersion(ctx context.Context, v *model.DocumentVersion, publish repository.PublishFunc) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if err := insertVersion(ctx, tx, v); err != nil {
			return err
		}
		return publish(ctx)
	})
}

// CreateWithFirstVersion inserts the document row and its first version atomically.
func (r *DocumentPostgres) CreateWithFirstVersion(ctx context.Context, doc *model.Document, v *model.DocumentVersion, publish repository.PublishFunc) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, insertDocumentSQL, doc.ID, doc.AppID, doc.Title, doc.ContentType, doc.StoragePath)
		if err != nil {
			return fmt.Errorf("insert document: %w", err)
		}
		if err := expectAffected(res, "insert document"); err != nil {
			return err
		}
		if err := insertVersion(ctx, tx, v); err != nil {
			return err
		}
		return publish(ctx)
	})
}

func insertVersion(ctx context.Context, tx *sql.Tx, v *model.DocumentVersion) error {
	res, err := tx.ExecContext(ctx, insertVersionSQL, v.DocID, v.VersionNum, v.MetaData)
	if err != nil {
		return fmt.Errorf("insert version: %w", err)
	}
	return expectAffected(res, "insert version")
}

// FindCurrent returns the document together with its highest version number.
func (r *DocumentPostgres) FindCurrent(ctx context.Context, appID, docID string) (*model.CurrentDocument, error) {
	const q = `
		SELECT d.id, d.app_id, d.doc_title, d.doc_type, d.doc_path, d.created_at, v.version_num
		FROM document AS d
		JOIN document_version AS v ON v.doc_id = d.id
		WHERE d.app_id = $1 AND d.id = $2
		  AND v.version_num = (SELECT MAX(version_num) FROM document_version WHERE doc_id = d.id)
	`
	row := r.db.QueryRowContext(ctx, q, appID, docID)
	var c model.CurrentDocument
	if err := row.Scan(
		&c.ID,
		&c.AppID,
		&c.Title,
		&c.ContentType,
		&c.StoragePath,
		&c.CreatedAt,
		&c.VersionNum,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

// FindByID fetches a single document of an app by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, appID, docID string) (*model.Document, error) {
	const q = `
		SELECT id, app_id, doc_title, doc_type, doc_path, created_at
		FROM document
		WHERE app_id = $1 AND id = $2
	`
	row := r.db.QueryRowContext(ctx, q, appID, docID)
	var d model.Document
	if err := row.Scan(&d.ID, &d.AppID, &d.Title, &d.ContentType, &d.StoragePath, &d.CreatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

// ListVersions returns every version of a document, oldest first.
func (r *DocumentPostgres) ListVersions(ctx context.Context, appID, docID string) ([]model.DocumentVersion, error) {
	const q = `
		SELECT v.doc_id, v.version_num, v.meta_data, v.created_at
		FROM document_version AS v
		JOIN document AS d ON d.id = v.doc_id
		WHERE d.app_id = $1 AND d.id = $2
		ORDER BY v.version_num ASC
	`
	rows, err := r.db.QueryContext(ctx, q, appID, docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.DocumentVersion, 0)
	for rows.Next() {
		var v model.DocumentVersion
		if err := rows.Scan(&v.DocID, &v.VersionNum, &v.MetaData, &v.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Delete removes the versions and then the document row in a single transaction.
func (r *DocumentPostgres) Delete(ctx context.Context, docID string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM document_version WHERE doc_id = $1`, docID)
		if err != nil {
			return fmt.Errorf("delete versions: %w", err)
		}
		if err := expectAffected(res, "delete versions"); err != nil {
			return err
		}

		res, err = tx.ExecContext(ctx, `DELETE FROM document WHERE id = $1`, docID)
		if err != nil {
			return fmt.Errorf("delete document: %w", err)
		}
		return expectAffected(res, "delete document")
	})
}

// inTx runs fn in a transaction and commits when it returns nil.
func (r *DocumentPostgres) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	// Rollback after a successful Commit is a no-op.
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func expectAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrNoRowsAffected)
	}
	return nil
}
