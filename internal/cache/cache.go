// Package cache implements the §4.10 LRU: a capacity-bounded map from
// (schema fingerprint, canonicalised expression forest, configuration,
// optional regex salt) to a fully compiled Projector or Filter.
//
// Grounded on the teacher's internal/vm/module_loader.go ModuleLoader,
// whose resolvedPath-keyed map plus RWMutex is the same "compile once,
// cache by key, look up before rebuilding" shape — generalised here from
// an unbounded file-path cache to a bounded, evicting one, and from a
// plain mutex-guarded map to golang.org/x/sync/singleflight so concurrent
// misses on the same key collapse into a single build (spec §4.10, §9
// design notes resolve the teacher's own inconsistent locking by always
// locking on insert and on the recency-reorder step of a hit).
package cache

import (
	"bytes"
	"container/list"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"exprc/internal/config"
	"exprc/internal/expr"
	"exprc/internal/filter"
	"exprc/internal/jit"
	"exprc/internal/project"
	"exprc/internal/schema"
	"exprc/internal/status"
)

// saltBuckets is the fixed number of parallel cache slots a regex-bearing
// expression may land in, deliberately spreading concurrent `like`
// compilations across several compiled module instances rather than
// serialising them on one cache entry (spec §4.10, §9 design notes).
const saltBuckets = 8

type cacheEntry struct {
	key   string
	value interface{}
}

// releasable is implemented by both *project.Projector and *filter.Filter;
// the cache calls Release on whatever it evicts so the module's JIT
// memory is returned promptly (spec §4.10: "eviction drops the module and
// its JIT memory").
type releasable interface{ Release() }

// Cache is a process-wide-safe, capacity-bounded LRU of compiled modules.
type Cache struct {
	capacity int
	mu       sync.Mutex
	items    map[string]*list.Element
	order    *list.List
	group    singleflight.Group
}

// New builds an empty Cache with room for capacity entries. A non-positive
// capacity disables eviction entirely: every distinct key is retained.
func New(capacity int) *Cache {
	return &Cache{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Len reports the number of entries currently cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats renders a short human-readable occupancy summary, for process logs
// that want to see cache pressure at a glance without a metrics backend.
func (c *Cache) Stats() string {
	c.mu.Lock()
	n := c.order.Len()
	cap := c.capacity
	c.mu.Unlock()
	if cap <= 0 {
		return humanize.Comma(int64(n)) + " entries (unbounded)"
	}
	return humanize.Comma(int64(n)) + " / " + humanize.Comma(int64(cap)) + " entries"
}

// get reads a slot by key and, on hit, moves it to the front of the
// recency list under the same short lock (spec §4.10: "re-orders the
// recency list under a short lock").
func (c *Cache) get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).value, true
}

// put inserts value at key, evicting the least-recently-used entry if the
// cache is at capacity.
func (c *Cache) put(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		el.Value.(*cacheEntry).value = value
		c.order.MoveToFront(el)
		return
	}
	el := c.order.PushFront(&cacheEntry{key: key, value: value})
	c.items[key] = el
	if c.capacity > 0 && c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			evicted := oldest.Value.(*cacheEntry)
			delete(c.items, evicted.key)
			status.Default.Debugf("evicting cache entry %q", evicted.key)
			if r, ok := evicted.value.(releasable); ok {
				r.Release()
			}
		}
	}
}

// getOrBuild returns the cached value at key, building it via build on a
// miss. Concurrent misses on the same key collapse into a single build
// call (golang.org/x/sync/singleflight), and the winning result is
// inserted into the cache before being returned to every waiter.
func (c *Cache) getOrBuild(key string, build func() (interface{}, *status.Status)) (interface{}, *status.Status) {
	if v, ok := c.get(key); ok {
		return v, nil
	}
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		val, st := build()
		if st != nil {
			return nil, st
		}
		c.put(key, val)
		return val, nil
	})
	if err != nil {
		if st, ok := err.(*status.Status); ok {
			return nil, st
		}
		return nil, status.Wrap(status.Invalid, err, "cache: build failed")
	}
	return v, nil
}

// Projector returns a cached Projector for (s, exprs, cfg), building and
// inserting one via eng on a miss (spec §8: "Projector.make(S, E, cfg) ==
// Projector.make(S, E, cfg) returns the same compiled object... within a
// single cache lifetime").
func (c *Cache) Projector(s *schema.Schema, exprs []*expr.Expression, cfg config.Configuration, eng *jit.Engine) (*project.Projector, *status.Status) {
	key := c.keyFor(s, exprs, cfg)
	v, st := c.getOrBuild(key, func() (interface{}, *status.Status) {
		return project.Make(s, exprs, eng)
	})
	if st != nil {
		return nil, st
	}
	return v.(*project.Projector), nil
}

// Filter returns a cached Filter for (s, cond, cfg), building and
// inserting one via eng on a miss.
func (c *Cache) Filter(s *schema.Schema, cond *expr.Expression, cfg config.Configuration, eng *jit.Engine) (*filter.Filter, *status.Status) {
	key := c.keyFor(s, []*expr.Expression{cond}, cfg)
	v, st := c.getOrBuild(key, func() (interface{}, *status.Status) {
		return filter.Make(s, cond, eng)
	})
	if st != nil {
		return nil, st
	}
	return v.(*filter.Filter), nil
}

// keyFor renders the cache key: schema fingerprint, canonicalised
// expression forest, configuration identity, and (only for regex-bearing
// expressions) the calling goroutine's salt bucket (spec §4.10).
func (c *Cache) keyFor(s *schema.Schema, exprs []*expr.Expression, cfg config.Configuration) string {
	var b strings.Builder
	b.WriteString(s.Fingerprint())
	b.WriteByte('|')
	for i, e := range exprs {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(expr.CanonicalExpression(e))
	}
	b.WriteByte('|')
	b.WriteString(cfg.CacheKey())
	if containsLikeAny(exprs) {
		b.WriteString("|salt:")
		b.WriteString(strconv.Itoa(saltBucket()))
	}
	return b.String()
}

func containsLikeAny(exprs []*expr.Expression) bool {
	for _, e := range exprs {
		if expr.ContainsLike(e) {
			return true
		}
	}
	return false
}

// saltMemo remembers the salt bucket already assigned to a goroutine, so a
// single goroutine always salts the same way within its lifetime (SPEC_FULL
// §4.10: "cached in a sync.Map so the same goroutine always salts the same
// way"). Without this, every keyFor call for the same `like`-bearing
// expression from one long-lived caller would land in a different bucket
// and never cache-hit.
var saltMemo sync.Map // goroutine id (uint64) -> salt bucket (int)

// saltBucket returns the calling goroutine's salt bucket, picking one of
// saltBuckets slots at random via a fresh UUID's low byte the first time
// this goroutine is seen, so that two *different* goroutines compiling the
// same `like`-bearing expression concurrently are likely to land in
// different cache entries (spec §4.10: "spread highly-concurrent callers
// across multiple module instances"), while one goroutine's repeated calls
// always land in the same entry.
func saltBucket() int {
	gid := goroutineID()
	if v, ok := saltMemo.Load(gid); ok {
		return v.(int)
	}
	b := int(uuid.New()[0]) % saltBuckets
	saltMemo.Store(gid, b)
	return b
}

// goroutineID extracts the calling goroutine's id from its own stack trace
// header ("goroutine 123 [running]: ..."). No goroutine-local-storage
// library appears anywhere in the reference corpus, so this is the
// stdlib-only idiom for a per-goroutine memoization key; see DESIGN.md.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := bytes.TrimPrefix(buf[:n], []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseUint(string(b), 10, 64)
	return id
}
