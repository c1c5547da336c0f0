package model

import "time"

// Data key types accepted in an app schema.
const (
	DataKeyString  = "string"
	DataKeyNumber  = "number"
	DataKeyInteger = "integer"
	DataKeyBoolean = "boolean"
	DataKeyDate    = "date"
)

// DataKey declares one metadata field of an app schema.
type DataKey struct {
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// DataKeys maps a metadata field name to its declaration.
type DataKeys map[string]DataKey

// Client owns apps and authenticates with an access key.
// Only a bcrypt hash of the access key is persisted.
type Client struct {
	ID            string    `json:"client_id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	AccessKeyHash string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
}

// App is a tenant-scoped namespace for documents with its own schema.
// DataKeys holds the raw JSON schema as stored.
type App struct {
	ID        string    `json:"app_id"`
	Name      string    `json:"name"`
	ClientID  string    `json:"client_id"`
	DataKeys  string    `json:"data_keys"`
	CreatedAt time.Time `json:"created_at"`
}
