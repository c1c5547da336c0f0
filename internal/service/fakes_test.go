package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"

	"docrepo/internal/model"
	"docrepo/internal/repository"
)

var errNoRows = sql.ErrNoRows

// memDocuments is an in-memory DocumentRepository with the same contract as the Postgres one.
// Inserts hold a per-key lock until commit the way a unique index does, so a second
// insert of the same version or identity waits and then fails.
type memDocuments struct {
	mu        sync.Mutex
	docs      map[string]model.Document
	versions  map[string][]model.DocumentVersion
	keyLocks  map[string]*sync.Mutex
	deleteErr error
}

func newMemDocuments() *memDocuments {
	return &memDocuments{
		docs:     make(map[string]model.Document),
		versions: make(map[string][]model.DocumentVersion),
		keyLocks: make(map[string]*sync.Mutex),
	}
}

func (m *memDocuments) lockKey(key string) func() {
	m.mu.Lock()
	l, ok := m.keyLocks[key]
	if !ok {
		l = &sync.Mutex{}
		m.keyLocks[key] = l
	}
	m.mu.Unlock()
	l.Lock()
	return l.Unlock
}

var _ repository.DocumentRepository = (*memDocuments)(nil)

func (m *memDocuments) FindByIdentity(_ context.Context, appID, title, contentType string) (*model.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.docs {
		if d.AppID == appID && d.Title == title && d.ContentType == contentType {
			d := d
			return &d, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memDocuments) MaxVersion(_ context.Context, docID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	highest := 0
	for _, v := range m.versions[docID] {
		if v.VersionNum > highest {
			highest = v.VersionNum
		}
	}
	return highest, nil
}

func (m *memDocuments) AppendVersion(ctx context.Context, v *model.DocumentVersion, publish repository.PublishFunc) error {
	unlock := m.lockKey(fmt.Sprintf("version/%s/%d", v.DocID, v.VersionNum))
	defer unlock()

	m.mu.Lock()
	err := m.checkVersion(*v)
	m.mu.Unlock()
	if err != nil {
		return err
	}
	if err := publish(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.versions[v.DocID] = append(m.versions[v.DocID], *v)
	return nil
}

func (m *memDocuments) CreateWithFirstVersion(ctx context.Context, doc *model.Document, v *model.DocumentVersion, publish repository.PublishFunc) error {
	unlock := m.lockKey(fmt.Sprintf("identity/%s/%s/%s", doc.AppID, doc.Title, doc.ContentType))
	defer unlock()

	m.mu.Lock()
	err := m.checkDocument(*doc)
	if err == nil {
		err = m.checkVersion(*v)
	}
	m.mu.Unlock()
	if err != nil {
		return err
	}
	if err := publish(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.ID] = *doc
	m.versions[v.DocID] = append(m.versions[v.DocID], *v)
	return nil
}

func (m *memDocuments) checkDocument(doc model.Document) error {
	for _, d := range m.docs {
		if d.ID == doc.ID || (d.AppID == doc.AppID && d.Title == doc.Title && d.ContentType == doc.ContentType) {
			return fmt.Errorf("duplicate document %s", doc.ID)
		}
	}
	return nil
}

func (m *memDocuments) checkVersion(v model.DocumentVersion) error {
	for _, existing := range m.versions[v.DocID] {
		if existing.VersionNum == v.VersionNum {
			return fmt.Errorf("duplicate version %s/%d", v.DocID, v.VersionNum)
		}
	}
	return nil
}

func (m *memDocuments) FindCurrent(ctx context.Context, appID, docID string) (*model.CurrentDocument, error) {
	doc, err := m.FindByID(ctx, appID, docID)
	if err != nil {
		return nil, err
	}
	n, _ := m.MaxVersion(ctx, docID)
	if n == 0 {
		return nil, sql.ErrNoRows
	}
	return &model.CurrentDocument{Document: *doc, VersionNum: n}, nil
}

func (m *memDocuments) FindByID(_ context.Context, appID, docID string) (*model.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[docID]
	if !ok || d.AppID != appID {
		return nil, sql.ErrNoRows
	}
	return &d, nil
}

func (m *memDocuments) ListVersions(_ context.Context, appID, docID string) ([]model.DocumentVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.docs[docID]; !ok || d.AppID != appID {
		return []model.DocumentVersion{}, nil
	}
	out := append([]model.DocumentVersion(nil), m.versions[docID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].VersionNum < out[j].VersionNum })
	return out, nil
}

func (m *memDocuments) Delete(_ context.Context, docID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if len(m.versions[docID]) == 0 {
		return repository.ErrNoRowsAffected
	}
	if _, ok := m.docs[docID]; !ok {
		return repository.ErrNoRowsAffected
	}
	delete(m.versions, docID)
	delete(m.docs, docID)
	return nil
}

func (m *memDocuments) counts(docID string) (docs, versions int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[docID]; ok {
		docs = 1
	}
	return docs, len(m.versions[docID])
}

type appEntry struct {
	clientID string
	schema   string
}

// staticApps is an AppRegistry over a fixed app table.
type staticApps map[string]appEntry

func (a staticApps) ResolveAppSchema(_ context.Context, appID, clientID string) (string, bool, error) {
	app, ok := a[appID]
	if !ok || app.clientID != clientID {
		return "", false, nil
	}
	return app.schema, true, nil
}

func (a staticApps) IsAppOwnedByClient(ctx context.Context, appID, clientID string) (bool, error) {
	_, ok, err := a.ResolveAppSchema(ctx, appID, clientID)
	return ok, err
}

// seqIDs hands out predictable identifiers.
type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

func (g *seqIDs) NewToken(n int) (string, error) {
	return fmt.Sprintf("%0*x", n*2, 0xabc), nil
}
