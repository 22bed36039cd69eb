package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/crewdesk/crewdesk/internal/authz"
)

const keyPrefix = "principal:"

// Store persists principal records in Redis, keyed by the opaque session
// token. Records expire with the session TTL. A record that cannot be
// decoded is treated as absent: the stale key is dropped and the caller
// sees an unauthenticated session, never an error.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore constructs a Store.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Save persists the principal under the token for the session TTL.
func (s *Store) Save(ctx context.Context, token string, p *authz.Principal) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, keyPrefix+token, data, s.ttl).Err()
}

// Load fetches the principal for a token. Absence and corruption both yield
// a nil principal with no error; only infrastructure failures surface.
func (s *Store) Load(ctx context.Context, token string) (*authz.Principal, error) {
	payload, err := s.client.Get(ctx, keyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var p authz.Principal
	if err := json.Unmarshal(payload, &p); err != nil {
		_ = s.client.Del(ctx, keyPrefix+token).Err()
		return nil, nil
	}
	if !p.Role.Valid() {
		_ = s.client.Del(ctx, keyPrefix+token).Err()
		return nil, nil
	}
	return &p, nil
}

// Clear removes the record. Clearing an absent token is not an error.
func (s *Store) Clear(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, keyPrefix+token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

// TTL exposes the configured session lifetime.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// NewToken mints an opaque session token.
func NewToken() string {
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return base64.RawURLEncoding.EncodeToString([]byte(time.Now().Format(time.RFC3339Nano)))
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
