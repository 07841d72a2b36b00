package memory

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// SessionLocks admits one generation per session at a time. An entry that is
// never released expires after maxHold.
type SessionLocks struct {
	cache *cache.Cache
}

func NewSessionLocks(maxHold time.Duration) *SessionLocks {
	return &SessionLocks{
		cache: cache.New(maxHold, time.Minute),
	}
}

// TryAcquire reports whether the caller now holds the session.
func (l *SessionLocks) TryAcquire(sessionID string) bool {
	return l.cache.Add(sessionID, struct{}{}, cache.DefaultExpiration) == nil
}

func (l *SessionLocks) Release(sessionID string) {
	l.cache.Delete(sessionID)
}

func (l *SessionLocks) Held(sessionID string) bool {
	_, found := l.cache.Get(sessionID)
	return found
}
