// Package pathcache implements the path-context cache (C2): a thread-safe,
// lazily populated map from directory to an optional context file, with a
// per-entry derived-data slot computed once under contention.
//
// The double-checked, load-once-per-key pattern here is grounded on the
// same idiom the retrieval pack uses for its own package.json cache
// (bennypowers-mappa's packagejson.MemoryCache.GetOrLoad): a sync.Map of
// in-flight sync.Once loaders keyed by directory, so unrelated directories
// never contend on the same lock.
package pathcache

import (
	"errors"
	"path/filepath"
	"strings"
	"sync"
)

// MaxProbeDepth bounds how far ancestor walks may climb before giving
// up.
const MaxProbeDepth = 1000

// ErrProbeDepthExceeded is returned when an ancestor walk climbs past
// MaxProbeDepth without reaching the configured root.
var ErrProbeDepthExceeded = errors.New("pathcache: probe depth exceeded")

// Loader reads a directory's context file (e.g. package.json) from disk.
// present is false when the directory has no such file; that absence is
// itself cached so repeated probes don't re-stat the filesystem.
type Loader[T any] func(dir string) (value T, present bool, err error)

// Entry wraps a cached context value together with its lazily computed
// derived-data slot.
type Entry[T any, D any] struct {
	dir   string
	value T

	mu         sync.RWMutex
	derived    D
	derivedSet bool
}

// Value returns the cached context value. It never changes after the
// Entry is constructed, so no lock is needed to read it.
func (e *Entry[T, D]) Value() T {
	return e.value
}

// DerivedOrInit returns the entry's derived-data slot, computing it via fn
// on first use. Concurrent callers race to take the write lock; only one
// invokes fn, and a failed fn call leaves the slot uninitialized so a
// later caller may retry.
func (e *Entry[T, D]) DerivedOrInit(fn func(T) (D, error)) (D, error) {
	e.mu.RLock()
	if e.derivedSet {
		d := e.derived
		e.mu.RUnlock()
		return d, nil
	}
	e.mu.RUnlock()

	stop := watchAcquisition("pathcache.DerivedOrInit:" + e.dir)
	defer stop()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.derivedSet {
		return e.derived, nil
	}
	d, err := fn(e.value)
	if err != nil {
		var zero D
		return zero, err
	}
	e.derived = d
	e.derivedSet = true
	return d, nil
}

type slot[T any, D any] struct {
	present bool
	entry   *Entry[T, D]
}

type loadOnce[T any, D any] struct {
	once sync.Once
	slot *slot[T, D]
	err  error
}

// Cache is a directory -> Option[Entry[T, D]] map, safe for concurrent use.
type Cache[T any, D any] struct {
	load Loader[T]

	mu      sync.RWMutex
	entries map[string]*slot[T, D]
	loading sync.Map // string -> *loadOnce[T, D]
}

// New constructs an empty Cache that uses load to populate entries.
func New[T any, D any](load Loader[T]) *Cache[T, D] {
	return &Cache[T, D]{
		load:    load,
		entries: make(map[string]*slot[T, D]),
	}
}

// CheckDir returns the cached entry for dir (nil, false if the directory
// has no context file), probing the filesystem at most once per directory
// even under concurrent callers.
func (c *Cache[T, D]) CheckDir(dir string) (*Entry[T, D], bool, error) {
	dir = filepath.Clean(dir)

	c.mu.RLock()
	if s, ok := c.entries[dir]; ok {
		c.mu.RUnlock()
		return s.entry, s.present, nil
	}
	c.mu.RUnlock()

	stop := watchAcquisition("pathcache.CheckDir:" + dir)
	defer stop()

	actual, _ := c.loading.LoadOrStore(dir, &loadOnce[T, D]{})
	once := actual.(*loadOnce[T, D])
	once.once.Do(func() {
		value, present, err := c.load(dir)
		if err != nil {
			once.err = err
			return
		}
		s := &slot[T, D]{present: present}
		if present {
			s.entry = &Entry[T, D]{dir: dir, value: value}
		}
		once.slot = s
		c.mu.Lock()
		c.entries[dir] = s
		c.mu.Unlock()
	})
	if once.err != nil {
		return nil, false, once.err
	}
	return once.slot.entry, once.slot.present, nil
}

// ProbeResult is one ancestor directory yielded by ProbePathIter.
type ProbeResult[T any, D any] struct {
	Dir   string
	Entry *Entry[T, D]
}

// ProbePathIter walks every ancestor of start up to (and including) root,
// returning one ProbeResult per ancestor whose CheckDir is present.
// Ancestors with no context file are skipped, not reported as errors.
func (c *Cache[T, D]) ProbePathIter(root, start string) ([]ProbeResult[T, D], error) {
	root = filepath.Clean(root)
	dir := filepath.Clean(start)

	results := make([]ProbeResult[T, D], 0, 4)
	for depth := 0; ; depth++ {
		if depth > MaxProbeDepth {
			return results, ErrProbeDepthExceeded
		}
		entry, present, err := c.CheckDir(dir)
		if err != nil {
			return results, err
		}
		if present {
			results = append(results, ProbeResult[T, D]{Dir: dir, Entry: entry})
		}
		if dir == root {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return results, nil
}

// MarkDirtyRoot evicts every cached entry (and any in-flight load) whose
// directory is prefix or lives under it.
func (c *Cache[T, D]) MarkDirtyRoot(prefix string) {
	prefix = filepath.Clean(prefix)

	c.mu.Lock()
	for dir := range c.entries {
		if isUnderOrEqual(dir, prefix) {
			delete(c.entries, dir)
		}
	}
	c.mu.Unlock()

	var stale []string
	c.loading.Range(func(key, _ any) bool {
		dir, _ := key.(string)
		if isUnderOrEqual(dir, prefix) {
			stale = append(stale, dir)
		}
		return true
	})
	for _, dir := range stale {
		c.loading.Delete(dir)
	}
}

func isUnderOrEqual(dir, prefix string) bool {
	if dir == prefix {
		return true
	}
	return strings.HasPrefix(dir, prefix+string(filepath.Separator))
}
