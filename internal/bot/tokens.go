package bot

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// TokenStore maps short button tokens to the queries they stand for.
// Entries expire after the configured TTL.
type TokenStore struct {
	entries *cache.Cache
}

// NewTokenStore creates a store whose tokens live for ttl.
func NewTokenStore(ttl time.Duration) *TokenStore {
	cleanup := ttl / 2
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	return &TokenStore{entries: cache.New(ttl, cleanup)}
}

// Put stores query and returns its token.
func (s *TokenStore) Put(query string) string {
	token := uuid.NewString()
	s.entries.Set(token, query, cache.DefaultExpiration)
	return token
}

// Get returns the query behind token. Unknown and expired tokens report false.
func (s *TokenStore) Get(token string) (string, bool) {
	value, ok := s.entries.Get(token)
	if !ok {
		return "", false
	}
	query, ok := value.(string)
	return query, ok
}

// Len returns the number of stored tokens, expired ones included until the
// next cleanup.
func (s *TokenStore) Len() int {
	return s.entries.ItemCount()
}
