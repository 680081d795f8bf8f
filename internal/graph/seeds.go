package graph

// PackageNamer resolves a file's owning package name, used to find the
// entry-package seed set. *resolve.Resolver
// satisfies this via its PackageNameFor method.
type PackageNamer interface {
	PackageNameFor(path string) (string, bool)
}

// TestMatcher reports whether path should be treated as a test file for
// the second BFS phase. Callers typically build one from a glob config
// (e.g. via doublestar) rather than graph depending on a glob library
// directly.
type TestMatcher func(path string) bool

// EntryPackageSeeds returns every graph path whose owning package name
// is in entryPackages.
func (g *Graph) EntryPackageSeeds(namer PackageNamer, entryPackages map[string]bool) []string {
	if len(entryPackages) == 0 {
		return nil
	}
	var seeds []string
	for path := range g.files {
		name, ok := namer.PackageNameFor(path)
		if !ok || !entryPackages[name] {
			continue
		}
		seeds = append(seeds, path)
	}
	return seeds
}

// TestFileSeeds returns every graph path matched by isTest.
func (g *Graph) TestFileSeeds(isTest TestMatcher) []string {
	if isTest == nil {
		return nil
	}
	var seeds []string
	for path := range g.files {
		if isTest(path) {
			seeds = append(seeds, path)
		}
	}
	return seeds
}
