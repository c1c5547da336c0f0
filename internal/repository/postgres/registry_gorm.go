package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"docrepo/internal/model"
	"docrepo/internal/repository"
)

type clientRecord struct {
	ID            string `gorm:"primaryKey"`
	Name          string
	Email         string `gorm:"uniqueIndex"`
	AccessKeyHash string
	CreatedAt     time.Time
}

func (clientRecord) TableName() string { return "client" }

type appRecord struct {
	ID        string `gorm:"primaryKey"`
	Name      string
	ClientID  string
	DataKeys  string
	CreatedAt time.Time
}

func (appRecord) TableName() string { return "apps" }

// RegistryGorm is a GORM implementation of repository.RegistryRepository.
// It shares the connection pool of the document repository.
type RegistryGorm struct {
	db *gorm.DB
}

// NewRegistryGorm creates a new RegistryGorm repository.
func NewRegistryGorm(db *gorm.DB) *RegistryGorm {
	return &RegistryGorm{db: db}
}

var _ repository.RegistryRepository = (*RegistryGorm)(nil)

func (r *RegistryGorm) CreateClient(ctx context.Context, c *model.Client) error {
	rec := clientRecord{
		ID:            c.ID,
		Name:          c.Name,
		Email:         c.Email,
		AccessKeyHash: c.AccessKeyHash,
		CreatedAt:     c.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return err
	}
	c.CreatedAt = rec.CreatedAt
	return nil
}

func (r *RegistryGorm) FindClient(ctx context.Context, clientID string) (*model.Client, error) {
	var rec clientRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", clientID).Error; err != nil {
		return nil, notFound(err)
	}
	return &model.Client{
		ID:            rec.ID,
		Name:          rec.Name,
		Email:         rec.Email,
		AccessKeyHash: rec.AccessKeyHash,
		CreatedAt:     rec.CreatedAt,
	}, nil
}

func (r *RegistryGorm) UpdateClient(ctx context.Context, clientID string, upd repository.ClientUpdate) error {
	fields := map[string]any{}
	if upd.Name != "" {
		fields["name"] = upd.Name
	}
	if upd.Email != "" {
		fields["email"] = upd.Email
	}
	return r.update(ctx, &clientRecord{}, clientID, fields)
}

func (r *RegistryGorm) ClientEmailExists(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&clientRecord{}).Where("email = ?", email).Count(&n).Error
	return n > 0, err
}

func (r *RegistryGorm) CreateApp(ctx context.Context, a *model.App) error {
	rec := appRecord{
		ID:        a.ID,
		Name:      a.Name,
		ClientID:  a.ClientID,
		DataKeys:  a.DataKeys,
		CreatedAt: a.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return err
	}
	a.CreatedAt = rec.CreatedAt
	return nil
}

func (r *RegistryGorm) FindApp(ctx context.Context, appID, clientID string) (*model.App, error) {
	var rec appRecord
	err := r.db.WithContext(ctx).First(&rec, "id = ? AND client_id = ?", appID, clientID).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &model.App{
		ID:        rec.ID,
		Name:      rec.Name,
		ClientID:  rec.ClientID,
		DataKeys:  rec.DataKeys,
		CreatedAt: rec.CreatedAt,
	}, nil
}

func (r *RegistryGorm) UpdateApp(ctx context.Context, appID string, upd repository.AppUpdate) error {
	fields := map[string]any{}
	if upd.Name != "" {
		fields["name"] = upd.Name
	}
	if upd.DataKeys != "" {
		fields["data_keys"] = upd.DataKeys
	}
	return r.update(ctx, &appRecord{}, appID, fields)
}

func (r *RegistryGorm) AppNameExists(ctx context.Context, clientID, name string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&appRecord{}).
		Where("client_id = ? AND name = ?", clientID, name).
		Count(&n).Error
	return n > 0, err
}

func (r *RegistryGorm) AppHasDocuments(ctx context.Context, appID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Table("document").Where("app_id = ?", appID).Count(&n).Error
	return n > 0, err
}

func (r *RegistryGorm) update(ctx context.Context, rec any, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return fmt.Errorf("update %s: no fields", id)
	}
	res := r.db.WithContext(ctx).Model(rec).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNoRowsAffected
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrNotFound
	}
	return err
}
