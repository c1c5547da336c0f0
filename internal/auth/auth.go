package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"docrepo/internal/model"
	"docrepo/internal/repository"
	"docrepo/internal/service"
)

const (
	// ClientIDHeader and AccessKeyHeader carry the client credentials on every protected request.
	ClientIDHeader  = "client_id"
	AccessKeyHeader = "access_key"
	// ClientIDLocalKey is the fiber locals key holding the authenticated client id.
	ClientIDLocalKey = "client_id"

	cachePrefix = "docrepo:auth:"
)

const (
	msgClientIDRequired  = "Client ID is required."
	msgAccessKeyRequired = "Access Key is required."
	msgInvalidCreds      = "Invalid Client ID or Access Key."
)

// ClientFinder loads a client by id. repository.RegistryRepository satisfies it.
type ClientFinder interface {
	FindClient(ctx context.Context, clientID string) (*model.Client, error)
}

// Authenticator verifies client credentials against the stored bcrypt hash.
type Authenticator struct {
	log     *zap.Logger
	clients ClientFinder
	cache   *redis.Client
	ttl     time.Duration
}

// NewAuthenticator builds an Authenticator. cache may be nil, in which case every
// request pays for a bcrypt comparison.
func NewAuthenticator(log *zap.Logger, clients ClientFinder, cache *redis.Client, ttl time.Duration) *Authenticator {
	return &Authenticator{
		log:     log.Named("auth"),
		clients: clients,
		cache:   cache,
		ttl:     ttl,
	}
}

// Authenticate returns nil when accessKey belongs to clientID.
// Every failure is a *service.Error of kind KindUnauthorized, except lookup failures.
func (a *Authenticator) Authenticate(ctx context.Context, clientID, accessKey string) error {
	if clientID == "" {
		return unauthorized(msgClientIDRequired, nil)
	}
	if accessKey == "" {
		return unauthorized(msgAccessKeyRequired, nil)
	}

	key := cacheKey(clientID, accessKey)
	if a.cached(ctx, key) {
		return nil
	}

	client, err := a.clients.FindClient(ctx, clientID)
	if errors.Is(err, repository.ErrNotFound) {
		return unauthorized(msgInvalidCreds, nil)
	}
	if err != nil {
		return &service.Error{Kind: service.KindStorage, Message: msgInvalidCreds, Err: err}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(client.AccessKeyHash), []byte(accessKey)); err != nil {
		return unauthorized(msgInvalidCreds, err)
	}

	a.remember(ctx, key)
	return nil
}

// Middleware rejects requests without valid credentials and stores the client id in locals.
func (a *Authenticator) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		clientID := c.Get(ClientIDHeader)
		if err := a.Authenticate(c.UserContext(), clientID, c.Get(AccessKeyHeader)); err != nil {
			return err
		}
		c.Locals(ClientIDLocalKey, clientID)
		return c.Next()
	}
}

// ClientID returns the client id stored by Middleware.
func ClientID(c *fiber.Ctx) string {
	id, _ := c.Locals(ClientIDLocalKey).(string)
	return id
}

func (a *Authenticator) cached(ctx context.Context, key string) bool {
	if a.cache == nil {
		return false
	}
	n, err := a.cache.Exists(ctx, key).Result()
	if err != nil {
		a.log.Warn("auth cache lookup failed", zap.Error(err))
		return false
	}
	return n == 1
}

func (a *Authenticator) remember(ctx context.Context, key string) {
	if a.cache == nil || a.ttl <= 0 {
		return
	}
	if err := a.cache.Set(ctx, key, 1, a.ttl).Err(); err != nil {
		a.log.Warn("auth cache store failed", zap.Error(err))
	}
}

func cacheKey(clientID, accessKey string) string {
	sum := sha256.Sum256([]byte(clientID + "\x00" + accessKey))
	return cachePrefix + hex.EncodeToString(sum[:])
}

func unauthorized(msg string, err error) error {
	return &service.Error{Kind: service.KindUnauthorized, Message: msg, Err: err}
}
