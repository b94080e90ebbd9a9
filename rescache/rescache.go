// Package rescache is a single-owner response cache keyed by URL. It
// mirrors the store-method shape of the teacher's domkeeper content
// cache (insert/get/list-by-key methods on a struct wrapping a map)
// without the database: the core is single-threaded with no suspension
// points, so a plain map replaces the SQL-backed table.
package rescache

import "github.com/marrowdock/vellum/requestpolicy"

// Mode selects cache behavior. CacheAll is the zero value so a
// zero-value NavigateOptions (engine package) caches by default rather
// than silently disabling the cache.
type Mode int

const (
	// CacheAll stores every non-error response and serves lookups.
	CacheAll Mode = iota
	// NoCache makes store a no-op and lookup always miss.
	NoCache
)

// Cache holds {policy, entries}. Not safe for concurrent use — the core
// is single-threaded by contract.
type Cache struct {
	policy  Mode
	entries map[string]requestpolicy.Response
}

// New returns an empty cache under the given starting policy.
func New(policy Mode) *Cache {
	return &Cache{policy: policy, entries: map[string]requestpolicy.Response{}}
}

// Store inserts or overwrites the entry for url. Under NoCache it does
// nothing. An error response (requestpolicy.Response.IsError()) is
// never stored.
func (c *Cache) Store(url string, resp requestpolicy.Response) {
	if c.policy == NoCache {
		return
	}
	if resp.IsError() {
		return
	}
	c.entries[url] = resp
}

// Lookup copies the cached response for url into out and returns true.
// Under NoCache, or when the entry is absent, it returns false and out
// is left unmodified.
func (c *Cache) Lookup(url string, out *requestpolicy.Response) bool {
	if c.policy == NoCache {
		return false
	}
	resp, ok := c.entries[url]
	if !ok {
		return false
	}
	*out = resp
	return true
}

// SetPolicy changes the active mode. Existing entries are never
// evicted by a policy change — switching away from NoCache and back
// makes previously stored entries visible again.
func (c *Cache) SetPolicy(p Mode) {
	c.policy = p
}

// Policy returns the active mode.
func (c *Cache) Policy() Mode {
	return c.policy
}

// Clear empties all entries regardless of policy.
func (c *Cache) Clear() {
	c.entries = map[string]requestpolicy.Response{}
}

// Size returns the number of stored entries, independent of the
// current policy. Starting fresh under NoCache it is always 0, since
// Store never inserts while NoCache is active; entries stored earlier
// under CacheAll remain counted (and retrievable again after a policy
// swap back) even while NoCache hides them from Lookup.
func (c *Cache) Size() int {
	return len(c.entries)
}
