package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/kruthishkandula/Grocery-be/pkg/logger"
)

const cachedMarker = "1"

type sessionCache interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
}

type sessionKeyer interface {
	SessionKey(digest string) string
}

// Lookup is the source of truth for active sessions, normally users_sessions.
type Lookup interface {
	HasSession(ctx context.Context, token string) (bool, error)
}

// Checker confirms a bearer token still has a login session. Positive answers
// are cached in Redis under a digest of the token, never the token itself.
type Checker struct {
	lookup Lookup
	cache  sessionCache
	keyer  sessionKeyer
	ttl    time.Duration
	logg   *logger.Logger
}

// CacheStore is the subset of the redis client the checker needs.
type CacheStore interface {
	sessionCache
	sessionKeyer
}

// NewChecker builds a checker. A nil cache disables caching.
func NewChecker(lookup Lookup, cache CacheStore, ttl time.Duration, logg *logger.Logger) (*Checker, error) {
	if lookup == nil {
		return nil, fmt.Errorf("session lookup required")
	}
	c := &Checker{lookup: lookup, ttl: ttl, logg: logg}
	if cache != nil && ttl > 0 {
		c.cache = cache
		c.keyer = cache
	}
	return c, nil
}

// HasSession reports whether token maps to an active session.
func (c *Checker) HasSession(ctx context.Context, token string) (bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return false, nil
	}

	var key string
	if c.cache != nil {
		key = c.keyer.SessionKey(Digest(token))
		cached, err := c.cache.Get(ctx, key)
		switch {
		case err == nil && cached == cachedMarker:
			return true, nil
		case err != nil && !errors.Is(err, redislib.Nil):
			c.warn(ctx, "session cache read failed", err)
		}
	}

	ok, err := c.lookup.HasSession(ctx, token)
	if err != nil {
		return false, err
	}
	if ok && c.cache != nil {
		if err := c.cache.Set(ctx, key, cachedMarker, c.ttl); err != nil {
			c.warn(ctx, "session cache write failed", err)
		}
	}
	return ok, nil
}

func (c *Checker) warn(ctx context.Context, msg string, err error) {
	if c.logg == nil {
		return
	}
	c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), msg)
}

// Digest returns the hex SHA-256 of a token.
func Digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
