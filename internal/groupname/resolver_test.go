package groupname

import (
	"context"
	"fmt"
	"testing"
	"time"
)

type fakeLookup struct {
	name  string
	err   error
	calls int
}

func (f *fakeLookup) GroupSummary(ctx context.Context, groupID string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.name, nil
}

func newTestResolver(lookup Lookup, at time.Time) (*Resolver, *time.Time) {
	current := at
	r := New(nil, lookup)
	r.now = func() time.Time { return current }
	return r, &current
}

func TestResolveCachesSuccess(t *testing.T) {
	t.Parallel()

	lookup := &fakeLookup{name: "Math Club"}
	r, _ := newTestResolver(lookup, time.Unix(1000, 0))

	name, ok := r.Resolve(context.Background(), "G1")
	if !ok || name != "Math Club" {
		t.Fatalf("unexpected first result: %q, %v", name, ok)
	}
	name, ok = r.Resolve(context.Background(), "G1")
	if !ok || name != "Math Club" {
		t.Fatalf("unexpected cached result: %q, %v", name, ok)
	}
	if lookup.calls != 1 {
		t.Fatalf("expected one lookup, got %d", lookup.calls)
	}
}

func TestResolveTTLBoundary(t *testing.T) {
	t.Parallel()

	lookup := &fakeLookup{name: "Math Club"}
	start := time.Unix(1000, 0)
	r, clock := newTestResolver(lookup, start)

	if _, ok := r.Resolve(context.Background(), "G1"); !ok {
		t.Fatal("first resolve failed")
	}

	*clock = start.Add(DefaultTTL - time.Second)
	if _, ok := r.Resolve(context.Background(), "G1"); !ok {
		t.Fatal("resolve inside TTL failed")
	}
	if lookup.calls != 1 {
		t.Fatalf("lookup inside TTL should be a cache hit, got %d calls", lookup.calls)
	}

	*clock = start.Add(DefaultTTL + time.Second)
	if _, ok := r.Resolve(context.Background(), "G1"); !ok {
		t.Fatal("resolve after TTL failed")
	}
	if lookup.calls != 2 {
		t.Fatalf("expired entry should trigger a fresh lookup, got %d calls", lookup.calls)
	}
}

func TestResolveNeverCachesFailure(t *testing.T) {
	t.Parallel()

	lookup := &fakeLookup{err: fmt.Errorf("api unavailable")}
	r, _ := newTestResolver(lookup, time.Unix(1000, 0))

	if _, ok := r.Resolve(context.Background(), "G1"); ok {
		t.Fatal("failed lookup must report not-ok")
	}

	lookup.err = nil
	lookup.name = "Math Club"
	name, ok := r.Resolve(context.Background(), "G1")
	if !ok || name != "Math Club" {
		t.Fatalf("retry after failure was not attempted: %q, %v", name, ok)
	}
	if lookup.calls != 2 {
		t.Fatalf("expected two lookups, got %d", lookup.calls)
	}
}

func TestResolveSanitizesCachedName(t *testing.T) {
	t.Parallel()

	lookup := &fakeLookup{name: `Math/Club: "A*"`}
	r, _ := newTestResolver(lookup, time.Unix(1000, 0))

	name, ok := r.Resolve(context.Background(), "G1")
	if !ok {
		t.Fatal("resolve failed")
	}
	if name != `Math_Club_ _A__` {
		t.Fatalf("expected sanitized name, got %q", name)
	}

	// The cached copy must be the sanitized one as well.
	cached, ok := r.cache.Get("G1")
	if !ok || cached.name != name {
		t.Fatalf("cache holds %q, want %q", cached.name, name)
	}
}

func TestResolveDistinctGroups(t *testing.T) {
	t.Parallel()

	lookup := &fakeLookup{name: "One"}
	r, _ := newTestResolver(lookup, time.Unix(1000, 0))

	r.Resolve(context.Background(), "G1")
	r.Resolve(context.Background(), "G2")
	if lookup.calls != 2 {
		t.Fatalf("distinct groups must each be looked up, got %d calls", lookup.calls)
	}
}
