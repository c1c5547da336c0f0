package model

import "time"

// Document is the logical identity of a versioned file inside one app.
// The triple (AppID, Title, ContentType) identifies at most one Document.
// StoragePath is the directory holding the blobs of every version.
type Document struct {
	ID          string    `json:"doc_id"`
	AppID       string    `json:"app_id"`
	Title       string    `json:"title"`
	ContentType string    `json:"content_type"`
	StoragePath string    `json:"storage_path"`
	CreatedAt   time.Time `json:"created_at"`
}

// DocumentVersion is one immutable revision of a Document.
// VersionNum starts at 1 and grows by one per upload; MetaData is the JSON text
// that passed the app's data-key schema when the version was written.
type DocumentVersion struct {
	DocID      string    `json:"doc_id"`
	VersionNum int       `json:"version_num"`
	MetaData   string    `json:"meta_data"`
	CreatedAt  time.Time `json:"created_at"`
}

// CurrentDocument is a Document joined with its highest-numbered version.
type CurrentDocument struct {
	Document
	VersionNum int `json:"version_num"`
}
