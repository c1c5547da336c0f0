package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"docrepo/internal/ident"
	"docrepo/internal/model"
	"docrepo/internal/repository"
	"docrepo/internal/schema"
)

// AccessKeyBytes is the number of random bytes behind a client access key.
const AccessKeyBytes = 32

var tracer = otel.Tracer("docrepo/internal/service")

var validate = validator.New()

// AppRegistry answers the app questions the document use cases depend on.
type AppRegistry interface {
	// ResolveAppSchema returns the raw data-key schema of appID when clientID owns it.
	// ok is false when no such app exists for the client.
	ResolveAppSchema(ctx context.Context, appID, clientID string) (schemaJSON string, ok bool, err error)

	// IsAppOwnedByClient reports whether appID exists and belongs to clientID.
	IsAppOwnedByClient(ctx context.Context, appID, clientID string) (bool, error)
}

// AddClientInput is the registration payload of a new client.
type AddClientInput struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// ClientCredentials is returned once, when a client registers.
type ClientCredentials struct {
	ClientID  string `json:"client_id"`
	AccessKey string `json:"access_key"`
}

// ModifyClientInput changes the name and/or email of a client.
type ModifyClientInput struct {
	ClientID string `json:"-"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// AddAppInput creates an app with its data-key schema.
type AddAppInput struct {
	ClientID string          `json:"-"`
	Name     string          `json:"name"`
	DataKeys json.RawMessage `json:"data_keys" swaggertype:"object"`
}

// AppCreated carries the identifier of a newly created app.
type AppCreated struct {
	AppID string `json:"app_id"`
}

// ModifyAppInput renames an app and/or replaces its schema.
type ModifyAppInput struct {
	ClientID string          `json:"-"`
	AppID    string          `json:"-"`
	Name     string          `json:"name"`
	DataKeys json.RawMessage `json:"data_keys" swaggertype:"object"`
}

// RegistryService manages clients and apps.
type RegistryService interface {
	AppRegistry

	AddClient(ctx context.Context, in AddClientInput) (*ClientCredentials, error)
	ModifyClient(ctx context.Context, in ModifyClientInput) error
	AddApp(ctx context.Context, in AddAppInput) (*AppCreated, error)
	ModifyApp(ctx context.Context, in ModifyAppInput) error
}

type registryService struct {
	log      *zap.Logger
	repo     repository.RegistryRepository
	ids      ident.Generator
	hashCost int
}

// NewRegistryService constructs a new RegistryService.
func NewRegistryService(log *zap.Logger, repo repository.RegistryRepository, ids ident.Generator) RegistryService {
	return &registryService{
		log:      log.Named("registry"),
		repo:     repo,
		ids:      ids,
		hashCost: bcrypt.DefaultCost,
	}
}

func (s *registryService) ResolveAppSchema(ctx context.Context, appID, clientID string) (string, bool, error) {
	app, err := s.repo.FindApp(ctx, appID, clientID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return app.DataKeys, true, nil
}

func (s *registryService) IsAppOwnedByClient(ctx context.Context, appID, clientID string) (bool, error) {
	_, ok, err := s.ResolveAppSchema(ctx, appID, clientID)
	return ok, err
}

func (s *registryService) AddClient(ctx context.Context, in AddClientInput) (*ClientCredentials, error) {
	ctx, span := tracer.Start(ctx, "RegistryService.AddClient")
	defer span.End()

	if err := validate.Struct(in); err != nil {
		return nil, invalid(clientInputMessage(err))
	}

	exists, err := s.repo.ClientEmailExists(ctx, in.Email)
	if err != nil {
		return nil, newError(KindStorage, msgAddClientFailed, err)
	}
	if exists {
		return nil, conflict(msgEmailExists)
	}

	accessKey, err := s.ids.NewToken(AccessKeyBytes)
	if err != nil {
		return nil, newError(KindInternal, msgAddClientFailed, err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(accessKey), s.hashCost)
	if err != nil {
		return nil, newError(KindInternal, msgAddClientFailed, err)
	}

	c := &model.Client{
		ID:            s.ids.NewID(),
		Name:          in.Name,
		Email:         in.Email,
		AccessKeyHash: string(hash),
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.CreateClient(ctx, c); err != nil {
		return nil, newError(KindStorage, msgAddClientFailed, err)
	}

	span.SetAttributes(attribute.String("client.id", c.ID))
	s.log.Info("client registered", zap.String("client_id", c.ID))
	return &ClientCredentials{ClientID: c.ID, AccessKey: accessKey}, nil
}

func (s *registryService) ModifyClient(ctx context.Context, in ModifyClientInput) error {
	ctx, span := tracer.Start(ctx, "RegistryService.ModifyClient")
	defer span.End()

	if in.ClientID == "" {
		return invalid(msgClientIDRequired)
	}
	if in.Name == "" && in.Email == "" {
		return invalid(msgClientUpdateFields)
	}
	if in.Email != "" && validate.Var(in.Email, "email") != nil {
		return invalid(msgInvalidEmail)
	}

	if _, err := s.repo.FindClient(ctx, in.ClientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(msgNoClient)
		}
		return newError(KindStorage, msgModifyClientFailed, err)
	}

	if in.Email != "" {
		exists, err := s.repo.ClientEmailExists(ctx, in.Email)
		if err != nil {
			return newError(KindStorage, msgModifyClientFailed, err)
		}
		if exists {
			return conflict(msgEmailExists)
		}
	}

	err := s.repo.UpdateClient(ctx, in.ClientID, repository.ClientUpdate{Name: in.Name, Email: in.Email})
	if err != nil {
		return newError(KindStorage, msgModifyClientFailed, err)
	}
	s.log.Info("client modified", zap.String("client_id", in.ClientID))
	return nil
}

func (s *registryService) AddApp(ctx context.Context, in AddAppInput) (*AppCreated, error) {
	ctx, span := tracer.Start(ctx, "RegistryService.AddApp")
	defer span.End()

	if in.Name == "" {
		return nil, invalid(msgNameRequired)
	}
	if in.ClientID == "" {
		return nil, invalid(msgClientIDRequired)
	}
	if isEmptyJSON(in.DataKeys) {
		return nil, invalid(msgDataKeysRequired)
	}
	if err := checkDataKeys(in.DataKeys); err != nil {
		return nil, err
	}

	exists, err := s.repo.AppNameExists(ctx, in.ClientID, in.Name)
	if err != nil {
		return nil, newError(KindStorage, msgAddAppFailed, err)
	}
	if exists {
		return nil, conflict(msgAppNameExists)
	}

	app := &model.App{
		ID:        s.ids.NewID(),
		Name:      in.Name,
		ClientID:  in.ClientID,
		DataKeys:  string(in.DataKeys),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateApp(ctx, app); err != nil {
		return nil, newError(KindStorage, msgAddAppFailed, err)
	}

	span.SetAttributes(attribute.String("app.id", app.ID))
	s.log.Info("app created", zap.String("client_id", in.ClientID), zap.String("app_id", app.ID))
	return &AppCreated{AppID: app.ID}, nil
}

func (s *registryService) ModifyApp(ctx context.Context, in ModifyAppInput) error {
	ctx, span := tracer.Start(ctx, "RegistryService.ModifyApp")
	defer span.End()

	hasKeys := !isEmptyJSON(in.DataKeys)

	if in.AppID == "" {
		return invalid(msgAppIDRequired)
	}
	if in.Name == "" && !hasKeys {
		return invalid(msgAppUpdateFields)
	}
	if hasKeys {
		if err := checkDataKeys(in.DataKeys); err != nil {
			return err
		}
	}

	// A foreign app is reported missing before anything about its documents.
	owned, err := s.IsAppOwnedByClient(ctx, in.AppID, in.ClientID)
	if err != nil {
		return newError(KindStorage, msgModifyAppFailed, err)
	}
	if !owned {
		return notFound(msgNoApp)
	}

	if hasKeys {
		used, err := s.repo.AppHasDocuments(ctx, in.AppID)
		if err != nil {
			return newError(KindStorage, msgModifyAppFailed, err)
		}
		if used {
			return conflict(msgDataKeysLocked)
		}
	}

	if in.Name != "" {
		exists, err := s.repo.AppNameExists(ctx, in.ClientID, in.Name)
		if err != nil {
			return newError(KindStorage, msgModifyAppFailed, err)
		}
		if exists {
			return conflict(msgAppNameExists)
		}
	}

	upd := repository.AppUpdate{Name: in.Name}
	if hasKeys {
		upd.DataKeys = string(in.DataKeys)
	}
	if err := s.repo.UpdateApp(ctx, in.AppID, upd); err != nil {
		return newError(KindStorage, msgModifyAppFailed, err)
	}
	s.log.Info("app modified", zap.String("app_id", in.AppID), zap.Bool("data_keys_replaced", hasKeys))
	return nil
}

// clientInputMessage turns the first failed rule into the matching user message.
func clientInputMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return msgInvalidEmail
	}
	fe := verrs[0]
	switch {
	case fe.Field() == "Name":
		return msgNameRequired
	case fe.Tag() == "required":
		return msgEmailRequired
	default:
		return msgInvalidEmail
	}
}

func checkDataKeys(raw json.RawMessage) error {
	_, err := schema.ParseDataKeys(raw)
	if err == nil {
		return nil
	}
	var entryErr *schema.EntryError
	if errors.As(err, &entryErr) {
		return invalid(entryErr.Error())
	}
	return invalid(msgInvalidDataKeys)
}

func isEmptyJSON(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null" || s == `""`
}
