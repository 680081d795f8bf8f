package fence

import (
	"fmt"
	"path/filepath"

	"github.com/ben-ranford/fenceguard/internal/pathcache"
	"github.com/ben-ranford/fenceguard/internal/resolve"
)

// Collection loads fence.json files lazily, one per directory, reusing
// C2's path-context cache idiom (internal/pathcache) rather than
// reimplementing ancestor-directory walking and at-most-once loading.
type Collection struct {
	cache *pathcache.Cache[*Fence, struct{}]
	root  string
}

// NewCollection builds a Collection that reads fence.json files from fs,
// never probing above root.
func NewCollection(fsys resolve.FileSystem, root string) *Collection {
	c := &Collection{root: filepath.Clean(root)}
	c.cache = pathcache.New[*Fence, struct{}](func(dir string) (*Fence, bool, error) {
		path := filepath.Join(dir, FileName)
		isDir, ok := fsys.Exists(path)
		if !ok || isDir {
			return nil, false, nil
		}
		data, err := fsys.ReadFile(path)
		if err != nil {
			return nil, false, fmt.Errorf("fence: read %s: %w", path, err)
		}
		f, err := Parse(data, path)
		if err != nil {
			return nil, false, err
		}
		return f, true, nil
	})
	return c
}

// FencesForPath returns every fence governing path, nearest-ancestor
// first (the deepest enclosing fence.json is index 0), mirroring
// good_fences' FenceCollection.get_fences_for_path.
func (c *Collection) FencesForPath(path string) ([]*Fence, error) {
	results, err := c.cache.ProbePathIter(c.root, filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	fences := make([]*Fence, 0, len(results))
	for _, r := range results {
		fences = append(fences, r.Entry.Value())
	}
	return fences, nil
}

// TagsForPath returns the union of every tag declared by a fence
// governing path, the way good_fences accumulates a source file's tags
// from every ancestor fence.json during its directory walk.
func (c *Collection) TagsForPath(path string) (map[string]bool, error) {
	fences, err := c.FencesForPath(path)
	if err != nil {
		return nil, err
	}
	tags := make(map[string]bool)
	for _, f := range fences {
		for _, tag := range f.Tags {
			tags[tag] = true
		}
	}
	return tags, nil
}
