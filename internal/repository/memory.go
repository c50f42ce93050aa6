package repository

import (
	"context"
	"sync"
	"time"

	"washpoint/internal/models"
)

// MemorySessionRepository keeps tracking sessions in process memory. Used as
// the failover target when Redis is unavailable and as the default when
// Redis is not configured at all.
type MemorySessionRepository struct {
	sessions   sync.Map
	mu         sync.Mutex
	rateLimits map[string]*rateLimitEntry
	ttl        time.Duration
}

func NewMemorySessionRepository(ttl time.Duration) *MemorySessionRepository {
	return &MemorySessionRepository{
		rateLimits: make(map[string]*rateLimitEntry),
		ttl:        ttl,
	}
}

type sessionEntry struct {
	session   *models.TrackingSession
	expiresAt time.Time
}

func (r *MemorySessionRepository) GetSession(ctx context.Context, sessionID string) (*models.TrackingSession, error) {
	val, ok := r.sessions.Load(sessionID)
	if !ok {
		return nil, nil
	}
	entry := val.(*sessionEntry)
	if r.ttl > 0 && time.Now().After(entry.expiresAt) {
		r.sessions.Delete(sessionID)
		return nil, nil
	}
	return entry.session, nil
}

func (r *MemorySessionRepository) SetSession(ctx context.Context, session *models.TrackingSession) error {
	r.sessions.Store(session.SessionID, &sessionEntry{
		session:   session,
		expiresAt: time.Now().Add(r.ttl),
	})
	return nil
}

func (r *MemorySessionRepository) ClearSession(ctx context.Context, sessionID string) error {
	r.sessions.Delete(sessionID)
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemorySessionRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.rateLimits[key]
	if !ok || now.After(entry.expiresAt) {
		entry = &rateLimitEntry{
			count:     1,
			expiresAt: now.Add(window),
		}
		r.rateLimits[key] = entry
	} else {
		entry.count++
	}

	return entry.count <= limit, nil
}
