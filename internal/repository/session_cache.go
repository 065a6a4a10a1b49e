package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"combat/internal/models"
)

// Préfixes des clés Redis
const (
	activeSessionKeyPrefix = "combat:active:"
	actionLockKeyPrefix    = "combat:lock:"
)

// TTL par défaut
const (
	defaultSessionCacheTTL = 30 * time.Minute
	defaultActionLockTTL   = 10 * time.Second
)

// SessionCacheInterface définit le cache Redis des sessions actives et le
// verrou d'action par session
type SessionCacheInterface interface {
	// Cache de session active par joueur. Un cache miss retourne (nil, nil).
	GetActiveSession(ctx context.Context, playerID uuid.UUID) (*models.CombatSession, error)
	SetActiveSession(ctx context.Context, session *models.CombatSession) error
	InvalidateActiveSession(ctx context.Context, playerID uuid.UUID) error

	// Verrou d'action : une seule action en vol par session. Le TTL borne
	// la durée d'un verrou orphelin après un crash.
	AcquireActionLock(ctx context.Context, sessionID uuid.UUID) (bool, error)
	ReleaseActionLock(ctx context.Context, sessionID uuid.UUID) error
}

// SessionCache implémente SessionCacheInterface sur Redis
type SessionCache struct {
	client     redis.UniversalClient
	sessionTTL time.Duration
	lockTTL    time.Duration
}

// NewSessionCache crée une nouvelle instance du cache de sessions.
// Les TTL à zéro prennent les valeurs par défaut.
func NewSessionCache(client redis.UniversalClient, sessionTTL, lockTTL time.Duration) SessionCacheInterface {
	if sessionTTL == 0 {
		sessionTTL = defaultSessionCacheTTL
	}
	if lockTTL == 0 {
		lockTTL = defaultActionLockTTL
	}

	return &SessionCache{
		client:     client,
		sessionTTL: sessionTTL,
		lockTTL:    lockTTL,
	}
}

// GetActiveSession lit la session active d'un joueur depuis le cache
func (c *SessionCache) GetActiveSession(ctx context.Context, playerID uuid.UUID) (*models.CombatSession, error) {
	data, err := c.client.Get(ctx, activeSessionKeyPrefix+playerID.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cached session: %w", err)
	}

	var session models.CombatSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached session: %w", err)
	}

	return &session, nil
}

// SetActiveSession écrit la session active d'un joueur dans le cache
func (c *SessionCache) SetActiveSession(ctx context.Context, session *models.CombatSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session for cache: %w", err)
	}

	key := activeSessionKeyPrefix + session.PlayerID.String()
	if err := c.client.Set(ctx, key, data, c.sessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache session: %w", err)
	}

	return nil
}

// InvalidateActiveSession retire la session active d'un joueur du cache
func (c *SessionCache) InvalidateActiveSession(ctx context.Context, playerID uuid.UUID) error {
	if err := c.client.Del(ctx, activeSessionKeyPrefix+playerID.String()).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached session: %w", err)
	}
	return nil
}

// AcquireActionLock tente de prendre le verrou d'action d'une session.
// Retourne false si une autre action est déjà en cours.
func (c *SessionCache) AcquireActionLock(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	acquired, err := c.client.SetNX(ctx, actionLockKeyPrefix+sessionID.String(), 1, c.lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire action lock: %w", err)
	}
	return acquired, nil
}

// ReleaseActionLock libère le verrou d'action d'une session
func (c *SessionCache) ReleaseActionLock(ctx context.Context, sessionID uuid.UUID) error {
	if err := c.client.Del(ctx, actionLockKeyPrefix+sessionID.String()).Err(); err != nil {
		return fmt.Errorf("failed to release action lock: %w", err)
	}
	return nil
}
