package session

import (
	"context"
	"sync"
	"time"

	"holidaze/internal/models"
)

// Store persists the credentials of a browser context. Clear must remove the
// token and the profile name together.
type Store interface {
	Load(ctx context.Context, sessionID string) (models.Credentials, bool, error)
	Save(ctx context.Context, sessionID string, creds models.Credentials) error
	Clear(ctx context.Context, sessionID string) error
}

// MemoryStore keeps credentials in process; sessions do not survive a restart
type MemoryStore struct {
	mu    sync.RWMutex
	creds map[string]models.Credentials
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{creds: make(map[string]models.Credentials)}
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (models.Credentials, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.creds[sessionID]
	return c, ok && c.Valid(), nil
}

func (s *MemoryStore) Save(_ context.Context, sessionID string, creds models.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[sessionID] = creds
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.creds, sessionID)
	return nil
}

// credentialCache is implemented by cache.ValkeyClient
type credentialCache interface {
	GetCredentials(ctx context.Context, sessionID string) (models.Credentials, bool, error)
	SaveCredentials(ctx context.Context, sessionID string, creds models.Credentials, ttl time.Duration) error
	ClearCredentials(ctx context.Context, sessionID string) error
}

// ValkeyStore shares sessions between BFF replicas through Valkey
type ValkeyStore struct {
	cache credentialCache
	ttl   time.Duration
}

func NewValkeyStore(cache credentialCache, ttl time.Duration) *ValkeyStore {
	return &ValkeyStore{cache: cache, ttl: ttl}
}

func (s *ValkeyStore) Load(ctx context.Context, sessionID string) (models.Credentials, bool, error) {
	return s.cache.GetCredentials(ctx, sessionID)
}

func (s *ValkeyStore) Save(ctx context.Context, sessionID string, creds models.Credentials) error {
	return s.cache.SaveCredentials(ctx, sessionID, creds, s.ttl)
}

func (s *ValkeyStore) Clear(ctx context.Context, sessionID string) error {
	return s.cache.ClearCredentials(ctx, sessionID)
}

// sessionRows is implemented by repository.SessionRepository
type sessionRows interface {
	Get(ctx context.Context, sessionID string) (models.Credentials, bool, error)
	Upsert(ctx context.Context, sessionID string, creds models.Credentials, ttl time.Duration) error
	Delete(ctx context.Context, sessionID string) error
}

// PostgresStore keeps sessions in the sessions table
type PostgresStore struct {
	rows sessionRows
	ttl  time.Duration
}

func NewPostgresStore(rows sessionRows, ttl time.Duration) *PostgresStore {
	return &PostgresStore{rows: rows, ttl: ttl}
}

func (s *PostgresStore) Load(ctx context.Context, sessionID string) (models.Credentials, bool, error) {
	return s.rows.Get(ctx, sessionID)
}

func (s *PostgresStore) Save(ctx context.Context, sessionID string, creds models.Credentials) error {
	return s.rows.Upsert(ctx, sessionID, creds, s.ttl)
}

func (s *PostgresStore) Clear(ctx context.Context, sessionID string) error {
	return s.rows.Delete(ctx, sessionID)
}
