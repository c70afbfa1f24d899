package anubis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/ferguskeenan/prediction-league/internal/domain/user"
)

// CachingVerifier wraps the introspection client so a burst of requests from
// one session does not hammer the account service. Tokens are cached by
// digest, never by value.
type CachingVerifier struct {
	next       *Client
	mu         sync.RWMutex
	entries    map[string]cacheEntry
	ttl        time.Duration
	maxEntries int
}

type cacheEntry struct {
	principal user.Principal
	expiresAt time.Time
}

func NewCachingVerifier(next *Client, ttl time.Duration, maxEntries int) *CachingVerifier {
	return &CachingVerifier{
		next:       next,
		entries:    make(map[string]cacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

func (v *CachingVerifier) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	key := tokenDigest(token)
	if principal, ok := v.get(key); ok {
		return principal, nil
	}

	principal, err := v.next.VerifyAccessToken(ctx, token)
	if err != nil {
		return user.Principal{}, err
	}
	v.set(key, principal)
	return principal, nil
}

func (v *CachingVerifier) get(key string) (user.Principal, bool) {
	now := time.Now()

	v.mu.RLock()
	entry, ok := v.entries[key]
	v.mu.RUnlock()
	if !ok {
		return user.Principal{}, false
	}
	if !entry.expiresAt.After(now) {
		v.mu.Lock()
		delete(v.entries, key)
		v.mu.Unlock()
		return user.Principal{}, false
	}

	return entry.principal, true
}

func (v *CachingVerifier) set(key string, principal user.Principal) {
	if v.ttl <= 0 {
		return
	}

	now := time.Now()

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.maxEntries > 0 && len(v.entries) >= v.maxEntries {
		v.evictExpired(now)
		if len(v.entries) >= v.maxEntries {
			v.evictOne()
		}
	}

	v.entries[key] = cacheEntry{
		principal: principal,
		expiresAt: now.Add(v.ttl),
	}
}

func (v *CachingVerifier) evictExpired(now time.Time) {
	for key, entry := range v.entries {
		if !entry.expiresAt.After(now) {
			delete(v.entries, key)
		}
	}
}

func (v *CachingVerifier) evictOne() {
	for key := range v.entries {
		delete(v.entries, key)
		return
	}
}

func tokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
