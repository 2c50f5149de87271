package groupname

import (
	"context"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/snapkeep/snapkeep/internal/archive"
)

const (
	cacheSize = 1024

	// DefaultTTL bounds how stale a cached group name may get. A rename
	// shows up in storage paths at most this much later.
	DefaultTTL = 6 * time.Hour
)

// Lookup fetches a group's display name from the messaging platform.
type Lookup interface {
	GroupSummary(ctx context.Context, groupID string) (string, error)
}

type entry struct {
	name      string
	fetchedAt time.Time
}

// Resolver caches sanitized group display names so a busy group does not
// trigger one platform API call per image. Lookups that fail are never
// cached: a transient API error must not poison the cache for a full TTL
// window. Concurrent misses on the same group may duplicate the lookup;
// last write wins and the values are identical, so that is accepted.
type Resolver struct {
	lookup Lookup
	cache  *lru.Cache[string, entry]
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// New creates a resolver with the default TTL.
func New(log *slog.Logger, lookup Lookup) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	cache, err := lru.New[string, entry](cacheSize)
	if err != nil {
		// lru.New only fails on a non-positive size.
		panic(err)
	}
	return &Resolver{
		lookup: lookup,
		cache:  cache,
		ttl:    DefaultTTL,
		now:    time.Now,
		logger: log.With(slog.String("service", "groupname")),
	}
}

// Resolve returns the sanitized display name for groupID. ok is false when
// the name is unknown and the caller should use an identifier-based folder.
func (r *Resolver) Resolve(ctx context.Context, groupID string) (string, bool) {
	now := r.now()
	if e, ok := r.cache.Get(groupID); ok {
		if now.Sub(e.fetchedAt) < r.ttl {
			return e.name, true
		}
		r.cache.Remove(groupID)
	}

	raw, err := r.lookup.GroupSummary(ctx, groupID)
	if err != nil {
		r.logger.Warn("group summary lookup failed",
			slog.String("group_id", groupID),
			slog.Any("error", err))
		return "", false
	}
	// Cache invariant: entries hold sanitized names only, never raw
	// external input.
	name := archive.Sanitize(raw)
	r.cache.Add(groupID, entry{name: name, fetchedAt: now})
	return name, true
}
