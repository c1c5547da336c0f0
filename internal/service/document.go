package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"docrepo/internal/ident"
	"docrepo/internal/model"
	"docrepo/internal/repository"
	"docrepo/internal/schema"
	"docrepo/internal/storage"
)

// Upload is an uploaded payload held fully in memory.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// IngestInput is one upload request of a client into one of its apps.
type IngestInput struct {
	ClientID string
	AppID    string
	Metadata string
	Payload  *Upload
}

// IngestResult identifies the stored version.
type IngestResult struct {
	DocID      string `json:"doc_id"`
	VersionNum int    `json:"version_num"`
}

// FetchInput addresses one document of a client's app.
type FetchInput struct {
	ClientID string
	AppID    string
	DocID    string
}

// DeleteInput addresses the document to delete.
type DeleteInput = FetchInput

// FetchResult is the current version of a document.
type FetchResult struct {
	Title       string
	ContentType string
	VersionNum  int
	Data        []byte
}

// DocumentService defines the use cases for versioned documents.
type DocumentService interface {
	// Ingest stores a new document, or a new version when (app, title, content type) already exists.
	// The blob is written before the metadata commits and removed again if the commit fails.
	Ingest(ctx context.Context, in IngestInput) (*IngestResult, error)

	// Fetch returns the payload of the highest version.
	Fetch(ctx context.Context, in FetchInput) (*FetchResult, error)

	// ListVersions returns every version of a document, oldest first.
	ListVersions(ctx context.Context, in FetchInput) ([]model.DocumentVersion, error)

	// Delete removes all versions and their blobs. Blobs are backed up first and
	// restored if the metadata cannot be deleted.
	Delete(ctx context.Context, in DeleteInput) error
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	log    *zap.Logger
	store  storage.BlobStore
	repo   repository.DocumentRepository
	apps   AppRegistry
	layout storage.Layout
	ids    ident.Generator
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(
	log *zap.Logger,
	store storage.BlobStore,
	repo repository.DocumentRepository,
	apps AppRegistry,
	layout storage.Layout,
	ids ident.Generator,
) DocumentService {
	return &documentService{
		log:    log.Named("documents"),
		store:  store,
		repo:   repo,
		apps:   apps,
		layout: layout,
		ids:    ids,
	}
}

func (s *documentService) Ingest(ctx context.Context, in IngestInput) (_ *IngestResult, err error) {
	ctx, span := tracer.Start(ctx, "DocumentService.Ingest",
		trace.WithAttributes(attribute.String("app.id", in.AppID)))
	defer func() { endSpan(span, err) }()

	if err := s.validateIngest(ctx, in); err != nil {
		return nil, err
	}

	title, contentType, data := in.Payload.Filename, in.Payload.ContentType, in.Payload.Data

	existing, err := s.repo.FindByIdentity(ctx, in.AppID, title, contentType)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, newError(KindStorage, msgInsertFailed, fmt.Errorf("find document: %w", err))
	}

	var (
		docID   string
		dir     string
		version = 1
	)
	if existing != nil {
		docID, dir = existing.ID, existing.StoragePath
		current, err := s.repo.MaxVersion(ctx, docID)
		if err != nil {
			return nil, newError(KindStorage, msgInsertFailed, fmt.Errorf("max version: %w", err))
		}
		version = current + 1
	} else {
		docID = s.ids.NewID()
		dir = s.layout.DocumentDir(in.ClientID, in.AppID, docID)
	}
	span.SetAttributes(attribute.String("doc.id", docID), attribute.Int("doc.version", version))

	// The blob is published while the version row is inserted but uncommitted. A racer that
	// computed the same version blocks on that row and fails before touching the path, and a
	// file left there by an earlier failed attempt has no row and is simply replaced.
	blobPath := s.layout.BlobPath(dir, version, contentType)
	var written bool
	var writeErr error
	publish := func(ctx context.Context) error {
		if writeErr = s.store.WriteBlob(ctx, blobPath, data); writeErr != nil {
			return writeErr
		}
		written = true
		return nil
	}

	v := &model.DocumentVersion{DocID: docID, VersionNum: version, MetaData: in.Metadata}
	if existing != nil {
		err = s.repo.AppendVersion(ctx, v, publish)
	} else {
		err = s.repo.CreateWithFirstVersion(ctx, &model.Document{
			ID:          docID,
			AppID:       in.AppID,
			Title:       title,
			ContentType: contentType,
			StoragePath: dir,
		}, v, publish)
	}
	switch {
	case err == nil:
	case writeErr != nil:
		return nil, newError(KindIO, msgStoreFailed, err)
	case !written:
		return nil, newError(KindStorage, msgInsertFailed, fmt.Errorf("db save failed: %w", err))
	default:
		return nil, s.discardBlob(ctx, v, blobPath, err)
	}

	s.log.Info("document ingested",
		zap.String("app_id", in.AppID),
		zap.String("doc_id", docID),
		zap.Int("version", version),
		zap.String("size", humanize.Bytes(uint64(len(data)))),
	)
	return &IngestResult{DocID: docID, VersionNum: version}, nil
}

func (s *documentService) validateIngest(ctx context.Context, in IngestInput) error {
	if in.AppID == "" {
		return invalid(msgAppIDRequired)
	}
	if in.Payload == nil {
		return invalid(msgDocRequired)
	}
	if in.Metadata == "" {
		return invalid(msgMetaDataRequired)
	}

	schemaJSON, ok, err := s.apps.ResolveAppSchema(ctx, in.AppID, in.ClientID)
	if err != nil {
		return newError(KindStorage, msgRegistryFailed, err)
	}
	if ok {
		if res := schema.ValidateJSON(schemaJSON, in.Metadata); !res.Valid {
			return invalid(res.Message())
		}
	}

	return s.checkOwnership(ctx, in.AppID, in.ClientID)
}

// discardBlob undoes a published blob after the commit of its version failed.
// The blob stays when the version turns out to be committed after all.
func (s *documentService) discardBlob(ctx context.Context, v *model.DocumentVersion, blobPath string, cause error) error {
	ctx = context.WithoutCancel(ctx)
	saveErr := fmt.Errorf("db save failed: %w", cause)

	current, err := s.repo.MaxVersion(ctx, v.DocID)
	if err != nil || current >= v.VersionNum {
		s.log.Warn("commit outcome unknown, blob kept",
			zap.String("path", blobPath),
			zap.NamedError("cause", cause),
			zap.Error(err),
		)
		return newError(KindStorage, msgInsertFailed, saveErr)
	}

	if rmErr := s.store.RemoveBlob(ctx, blobPath); rmErr != nil {
		s.log.Error("rollback of stored blob failed",
			zap.String("path", blobPath),
			zap.NamedError("cause", cause),
			zap.Error(rmErr),
		)
		return newError(KindInconsistent, msgInconsistent,
			fmt.Errorf("db save failed: %v; rollback delete failed: %v", cause, rmErr))
	}
	s.log.Warn("document metadata not saved, blob removed", zap.String("path", blobPath), zap.Error(cause))
	return newError(KindStorage, msgInsertFailed, saveErr)
}

func (s *documentService) Fetch(ctx context.Context, in FetchInput) (_ *FetchResult, err error) {
	ctx, span := tracer.Start(ctx, "DocumentService.Fetch",
		trace.WithAttributes(attribute.String("app.id", in.AppID), attribute.String("doc.id", in.DocID)))
	defer func() { endSpan(span, err) }()

	if err := s.validateRef(ctx, in); err != nil {
		return nil, err
	}

	cur, err := s.repo.FindCurrent(ctx, in.AppID, in.DocID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(msgDocIDNotFound)
		}
		return nil, newError(KindStorage, msgReadFailed, err)
	}

	data, err := s.store.ReadBlob(ctx, s.layout.BlobPath(cur.StoragePath, cur.VersionNum, cur.ContentType))
	if err != nil {
		return nil, newError(KindIO, msgReadFailed, err)
	}

	return &FetchResult{
		Title:       cur.Title,
		ContentType: cur.ContentType,
		VersionNum:  cur.VersionNum,
		Data:        data,
	}, nil
}

func (s *documentService) ListVersions(ctx context.Context, in FetchInput) (_ []model.DocumentVersion, err error) {
	ctx, span := tracer.Start(ctx, "DocumentService.ListVersions",
		trace.WithAttributes(attribute.String("app.id", in.AppID), attribute.String("doc.id", in.DocID)))
	defer func() { endSpan(span, err) }()

	if err := s.validateRef(ctx, in); err != nil {
		return nil, err
	}

	versions, err := s.repo.ListVersions(ctx, in.AppID, in.DocID)
	if err != nil {
		return nil, newError(KindStorage, msgReadFailed, err)
	}
	if len(versions) == 0 {
		return nil, notFound(msgDocIDNotFound)
	}
	return versions, nil
}

func (s *documentService) Delete(ctx context.Context, in DeleteInput) (err error) {
	ctx, span := tracer.Start(ctx, "DocumentService.Delete",
		trace.WithAttributes(attribute.String("app.id", in.AppID), attribute.String("doc.id", in.DocID)))
	defer func() { endSpan(span, err) }()

	if err := s.validateRef(ctx, in); err != nil {
		return err
	}

	doc, err := s.repo.FindByID(ctx, in.AppID, in.DocID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFound(msgDocIDNotFound)
		}
		return newError(KindStorage, msgDeleteFailed, err)
	}

	if err := s.store.DeleteWithBackup(ctx, doc.StoragePath); err != nil {
		return newError(KindIO, msgDeleteFailed, err)
	}

	if err := s.repo.Delete(ctx, doc.ID); err != nil {
		return s.restoreBlobs(ctx, doc.StoragePath, err)
	}

	if err := s.store.RemoveBackup(context.WithoutCancel(ctx), doc.StoragePath); err != nil {
		s.log.Warn("backup cleanup failed", zap.String("dir", storage.BackupDir(doc.StoragePath)), zap.Error(err))
	}
	s.log.Info("document deleted", zap.String("app_id", in.AppID), zap.String("doc_id", doc.ID))
	return nil
}

// restoreBlobs puts a document directory back after its rows could not be deleted.
// The backup is kept when the restore fails so the files can be recovered by hand.
func (s *documentService) restoreBlobs(ctx context.Context, dir string, cause error) error {
	ctx = context.WithoutCancel(ctx)
	if err := s.store.RestoreFromBackup(ctx, dir); err != nil {
		s.log.Error("restore of document directory failed",
			zap.String("dir", dir),
			zap.String("backup", storage.BackupDir(dir)),
			zap.NamedError("cause", cause),
			zap.Error(err),
		)
		return newError(KindInconsistent, msgInconsistent,
			fmt.Errorf("db delete failed: %v; restore failed: %v", cause, err))
	}
	if err := s.store.RemoveBackup(ctx, dir); err != nil {
		s.log.Warn("backup cleanup failed", zap.String("dir", storage.BackupDir(dir)), zap.Error(err))
	}
	s.log.Warn("document rows not deleted, directory restored", zap.String("dir", dir), zap.Error(cause))
	return newError(KindStorage, msgDeleteFailed, fmt.Errorf("db delete failed: %w", cause))
}

func (s *documentService) validateRef(ctx context.Context, in FetchInput) error {
	if in.AppID == "" {
		return invalid(msgAppIDRequired)
	}
	if in.DocID == "" {
		return invalid(msgDocIDRequired)
	}
	return s.checkOwnership(ctx, in.AppID, in.ClientID)
}

func (s *documentService) checkOwnership(ctx context.Context, appID, clientID string) error {
	owned, err := s.apps.IsAppOwnedByClient(ctx, appID, clientID)
	if err != nil {
		return newError(KindStorage, msgRegistryFailed, err)
	}
	if !owned {
		return notFound(msgNoApp)
	}
	return nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, KindOf(err).String())
	}
	span.End()
}
