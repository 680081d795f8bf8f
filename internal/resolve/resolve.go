// Package resolve implements the module resolver (C1): given an
// importing file and a raw specifier, decide whether it is a
// project-local file, a node_modules import, or a resource file.
package resolve

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ben-ranford/fenceguard/internal/pathcache"
	"github.com/ben-ranford/fenceguard/internal/pkgjson"
	"github.com/ben-ranford/fenceguard/internal/tsconfigpaths"
)

// Kind classifies a successful Resolution.
type Kind int

const (
	ProjectLocal Kind = iota
	NodeModules
	ResourceFile
)

func (k Kind) String() string {
	switch k {
	case ProjectLocal:
		return "project-local"
	case NodeModules:
		return "node-modules"
	case ResourceFile:
		return "resource"
	default:
		return "unknown"
	}
}

// Resolution is the outcome of a successful Resolve call.
type Resolution struct {
	Kind Kind
	// Path holds the resolved absolute path for ProjectLocal, and for
	// NodeModules when the walk located the installed file. For
	// ResourceFile it holds the raw specifier of an asset-extension
	// match, or "" for a module a browser rewrite ignores. Name holds
	// the bare specifier for NodeModules.
	Path string
	Name string
}

// FailureKind classifies a resolution Error.
type FailureKind int

const (
	// FailureNoMatch means no candidate matched at any step.
	FailureNoMatch FailureKind = iota
	// FailurePrivateExport means a package.json exports entry matched
	// but mapped to null.
	FailurePrivateExport
	// FailureUnrecognizedExport means a matching exports entry had a
	// shape the matcher does not understand.
	FailureUnrecognizedExport
)

// Error is a resolution failure, carrying the specifier and importer
// so callers can report it without re-deriving context.
type Error struct {
	Specifier     string
	ImportingFile string
	Kind          FailureKind
	Reason        string
}

func (e *Error) Error() string {
	return fmt.Sprintf("resolve: %q from %q: %s", e.Specifier, e.ImportingFile, e.Reason)
}

// errPrivateExport and errUnrecognizedExport carry an exports-map match
// status out of the resolve-as-directory / in-package helpers so Resolve
// can attach the right FailureKind.
var (
	errPrivateExport      = errors.New("matched exports entry is private (mapped to null)")
	errUnrecognizedExport = errors.New("matched exports entry has an unrecognized shape")
)

// Resolver implements Resolve, backed by two path-context caches: one
// for package.json lookups, one for node_modules directory presence.
type Resolver struct {
	fs      FileSystem
	opts    Options
	tscfg   *tsconfigpaths.Config
	pkgJSON *pathcache.Cache[*pkgjson.PackageJSON, *pkgjson.ExportsMap]
	nodeMod *pathcache.Cache[struct{}, struct{}]
}

// New builds a Resolver. tscfg may be nil if the project has no
// tsconfig paths configured.
func New(fs FileSystem, opts Options, tscfg *tsconfigpaths.Config) *Resolver {
	r := &Resolver{fs: fs, opts: opts, tscfg: tscfg}
	r.pkgJSON = pathcache.New[*pkgjson.PackageJSON, *pkgjson.ExportsMap](r.loadPackageJSON)
	r.nodeMod = pathcache.New[struct{}, struct{}](r.loadNodeModulesMarker)
	return r
}

func (r *Resolver) loadPackageJSON(dir string) (*pkgjson.PackageJSON, bool, error) {
	p := filepath.Join(dir, "package.json")
	isDir, ok := r.fs.Exists(p)
	if !ok || isDir {
		return nil, false, nil
	}
	data, err := r.fs.ReadFile(p)
	if err != nil {
		return nil, false, fmt.Errorf("resolve: read %s: %w", p, err)
	}
	pkg, err := pkgjson.Parse(data)
	if err != nil {
		return nil, false, err
	}
	pkg.Dir = dir
	return pkg, true, nil
}

// exportsMapFor parses a cached package.json's exports field exactly
// once per entry, under the cache slot's own double-checked lock, so
// concurrent resolutions against the same package never race or repeat
// the parse.
func exportsMapFor(entry *pathcache.Entry[*pkgjson.PackageJSON, *pkgjson.ExportsMap]) (*pkgjson.ExportsMap, error) {
	return entry.DerivedOrInit(func(pkg *pkgjson.PackageJSON) (*pkgjson.ExportsMap, error) {
		return pkg.ExportsMap()
	})
}

func (r *Resolver) loadNodeModulesMarker(dir string) (struct{}, bool, error) {
	isDir, ok := r.fs.Exists(filepath.Join(dir, "node_modules"))
	return struct{}{}, ok && isDir, nil
}

func fail(specifier, importingFile string, kind FailureKind, reason string) (Resolution, error) {
	return Resolution{}, &Error{Specifier: specifier, ImportingFile: importingFile, Kind: kind, Reason: reason}
}

// Resolve runs the full resolution pipeline against one specifier.
func (r *Resolver) Resolve(importingFile, specifier string, conditions []string) (Resolution, error) {
	// Step 1: resource short-circuit.
	if isAssetExtension(specifier, r.opts.assetExtensions()) {
		return Resolution{Kind: ResourceFile, Path: specifier}, nil
	}

	// Step 2: core-module check.
	if r.opts.TargetEnv == "node" && isNodeBuiltin(specifier) {
		return Resolution{Kind: NodeModules, Name: specifier}, nil
	}

	// Step 3: alias substitution.
	if substituted, ok := r.opts.Alias[specifier]; ok {
		specifier = substituted
	}

	var resolved string
	var resolvedOK bool
	var viaNodeModules bool
	var err error

	switch {
	case filepath.IsAbs(specifier):
		// Step 4: absolute path.
		resolved, resolvedOK, err = r.resolveFileOrDir(specifier, conditions)
	case isRelativeSpecifier(specifier):
		// Step 5: relative path.
		target := filepath.Join(filepath.Dir(importingFile), rewriteRelativeSpecifier(specifier))
		resolved, resolvedOK, err = r.resolveFileOrDir(target, conditions)
	default:
		// Step 6: tsconfig.paths.
		if r.tscfg != nil {
			if mapped, ok := r.tscfg.Resolve(specifier); ok {
				target := filepath.Join(r.opts.RootDir, r.tscfg.WithBaseURL(mapped))
				resolved, resolvedOK, err = r.resolveFileOrDir(target, conditions)
			}
		}
		if !resolvedOK && err == nil {
			// Step 7: node_modules walk.
			resolved, resolvedOK, err = r.resolveNodeModules(importingFile, specifier, conditions)
			viaNodeModules = resolvedOK
			if !resolvedOK && err == nil {
				if r.opts.IgnoreNodeModules {
					return Resolution{Kind: NodeModules, Name: specifier}, nil
				}
			}
		}
	}
	if err != nil {
		switch {
		case errors.Is(err, errPrivateExport):
			return fail(specifier, importingFile, FailurePrivateExport, err.Error())
		case errors.Is(err, errUnrecognizedExport):
			return fail(specifier, importingFile, FailureUnrecognizedExport, err.Error())
		}
		return Resolution{}, err
	}
	if !resolvedOK {
		return fail(specifier, importingFile, FailureNoMatch, "no resolution candidate matched")
	}

	// Step 8: browser rewrite.
	if r.opts.TargetEnv == "browser" {
		rewritten, kind, rerr := r.applyBrowserRewrite(resolved, conditions)
		if rerr != nil {
			return Resolution{}, rerr
		}
		if kind == ResourceFile {
			return Resolution{Kind: ResourceFile, Path: ""}, nil
		}
		resolved = rewritten
	}

	if !r.opts.PreserveSymlinks {
		if canon, cerr := filepath.EvalSymlinks(resolved); cerr == nil {
			resolved = canon
		}
	}

	if viaNodeModules {
		return Resolution{Kind: NodeModules, Name: specifier, Path: resolved}, nil
	}
	return Resolution{Kind: ProjectLocal, Path: resolved}, nil
}

func isAssetExtension(specifier string, assetExtensions []string) bool {
	ext := strings.TrimPrefix(filepath.Ext(specifier), ".")
	for _, a := range assetExtensions {
		if ext == a {
			return true
		}
	}
	return false
}

func isRelativeSpecifier(specifier string) bool {
	return specifier == "." || specifier == ".." ||
		strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../")
}

// rewriteRelativeSpecifier applies the bare-dot and trailing-slash
// rewrites before the specifier is joined onto the importer's
// directory.
func rewriteRelativeSpecifier(specifier string) string {
	switch specifier {
	case ".":
		return "./index"
	case "..":
		return "../index"
	}
	if strings.HasSuffix(specifier, "/") {
		return specifier + "index"
	}
	return specifier
}

// resolveFileOrDir runs resolve-as-file, then resolve-as-directory, on
// a candidate absolute path that already has relative/alias/tsconfig
// rewriting applied.
func (r *Resolver) resolveFileOrDir(candidate string, conditions []string) (string, bool, error) {
	if p, ok := r.resolveAsFile(candidate); ok {
		return p, true, nil
	}
	return r.resolveAsDirectory(candidate, conditions)
}

var jsToTsCandidates = map[string][]string{
	".js":  {".ts", ".tsx"},
	".jsx": {".ts", ".tsx"},
	".mjs": {".mts"},
	".cjs": {".cts"},
}

// resolveAsFile tries the exact path when it carries an extension
// (falling back to the matching TypeScript extensions for a .js/.jsx/
// .mjs/.cjs request), else appends each configured extension in order.
func (r *Resolver) resolveAsFile(p string) (string, bool) {
	ext := filepath.Ext(p)
	if ext != "" {
		if isDir, ok := r.fs.Exists(p); ok && !isDir {
			return p, true
		}
		base := strings.TrimSuffix(p, ext)
		for _, tsExt := range jsToTsCandidates[ext] {
			candidate := base + tsExt
			if isDir, ok := r.fs.Exists(candidate); ok && !isDir {
				return candidate, true
			}
		}
		return "", false
	}
	for _, e := range r.opts.extensions() {
		candidate := p + "." + e
		if isDir, ok := r.fs.Exists(candidate); ok && !isDir {
			return candidate, true
		}
	}
	return "", false
}

// resolveAsDirectory checks package.json exports["."], then browser
// (in a browser target), then main, then module, then an index.<ext>
// fallback.
func (r *Resolver) resolveAsDirectory(dir string, conditions []string) (string, bool, error) {
	if isDir, ok := r.fs.Exists(dir); !ok || !isDir {
		return "", false, nil
	}

	entry, present, err := r.pkgJSON.CheckDir(dir)
	if err != nil {
		return "", false, err
	}
	if present {
		pkg := entry.Value()

		if em, err := exportsMapFor(entry); err != nil {
			return "", false, err
		} else if em != nil {
			target, status := em.Resolve(".", conditions)
			switch status {
			case pkgjson.Matched:
				if p, ok, err := r.resolveFileOrDir(filepath.Join(dir, target), conditions); err != nil {
					return "", false, err
				} else if ok {
					return p, true, nil
				}
			case pkgjson.Private:
				return "", false, fmt.Errorf("%s: %w", dir, errPrivateExport)
			case pkgjson.Unrecognized:
				return "", false, fmt.Errorf("%s: %w", dir, errUnrecognizedExport)
			}
		}

		if r.opts.TargetEnv == "browser" && pkg.Browser != nil && pkg.Browser.MainReplacement != "" {
			if p, ok, err := r.resolveFileOrDir(filepath.Join(dir, pkg.Browser.MainReplacement), conditions); err != nil {
				return "", false, err
			} else if ok {
				return p, true, nil
			}
		}
		if pkg.Main != "" {
			if p, ok, err := r.resolveFileOrDir(filepath.Join(dir, pkg.Main), conditions); err != nil {
				return "", false, err
			} else if ok {
				return p, true, nil
			}
		}
		if pkg.Module != "" {
			if p, ok, err := r.resolveFileOrDir(filepath.Join(dir, pkg.Module), conditions); err != nil {
				return "", false, err
			} else if ok {
				return p, true, nil
			}
		}
	}

	for _, e := range r.opts.extensions() {
		candidate := filepath.Join(dir, "index."+e)
		if isDir, ok := r.fs.Exists(candidate); ok && !isDir {
			return candidate, true, nil
		}
	}
	return "", false, nil
}

// resolveNodeModules probes each ancestor of the importing file for a
// node_modules directory holding the requested package, consulting the
// package's exports map before falling back to the literal subpath.
func (r *Resolver) resolveNodeModules(importingFile, specifier string, conditions []string) (string, bool, error) {
	if r.opts.IgnoreNodeModules {
		return "", false, nil
	}

	packageName, subpath := splitPackageSpecifier(specifier)
	dir := filepath.Dir(importingFile)

	for depth := 0; depth <= pathcache.MaxProbeDepth; depth++ {
		_, present, err := r.nodeMod.CheckDir(dir)
		if err != nil {
			return "", false, err
		}
		if present {
			pkgDir := filepath.Join(dir, "node_modules", packageName)
			target, ok, err := r.resolveInPackage(pkgDir, subpath, conditions)
			if err != nil {
				return "", false, err
			}
			if ok {
				return target, true, nil
			}
		}
		if dir == r.opts.RootDir {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func (r *Resolver) resolveInPackage(pkgDir, subpath string, conditions []string) (string, bool, error) {
	entry, present, err := r.pkgJSON.CheckDir(pkgDir)
	if err != nil {
		return "", false, err
	}

	requestPath := "."
	if subpath != "" {
		requestPath = "./" + subpath
	}

	if present {
		if em, err := exportsMapFor(entry); err != nil {
			return "", false, err
		} else if em != nil {
			target, status := em.Resolve(requestPath, conditions)
			if status == pkgjson.Matched {
				return r.resolveFileOrDir(filepath.Join(pkgDir, target), conditions)
			}
			if status == pkgjson.Private {
				return "", false, fmt.Errorf("%s: %w", requestPath, errPrivateExport)
			}
			if status == pkgjson.Unrecognized {
				return "", false, fmt.Errorf("%s: %w", requestPath, errUnrecognizedExport)
			}
		}
	}

	literal := pkgDir
	if subpath != "" {
		literal = filepath.Join(pkgDir, subpath)
	}
	return r.resolveFileOrDir(literal, conditions)
}

// splitPackageSpecifier separates a bare specifier into its package
// name and subpath, treating a leading "@scope/name" as one unit.
func splitPackageSpecifier(specifier string) (name, subpath string) {
	if strings.HasPrefix(specifier, "@") {
		parts := strings.SplitN(specifier, "/", 3)
		if len(parts) >= 2 {
			name = parts[0] + "/" + parts[1]
		}
		if len(parts) == 3 {
			subpath = parts[2]
		}
		return name, subpath
	}
	parts := strings.SplitN(specifier, "/", 2)
	name = parts[0]
	if len(parts) == 2 {
		subpath = parts[1]
	}
	return name, subpath
}

// PackageNameFor returns the "name" field of the nearest enclosing
// package.json for path, false if none is found or it has no name.
// The reachability engine uses this to seed entry-package files.
func (r *Resolver) PackageNameFor(path string) (string, bool) {
	results, err := r.pkgJSON.ProbePathIter(r.opts.RootDir, filepath.Dir(path))
	if err != nil || len(results) == 0 {
		return "", false
	}
	pkg := results[0].Entry.Value()
	if pkg.Name == "" {
		return "", false
	}
	return pkg.Name, true
}

// applyBrowserRewrite locates the nearest
// enclosing package.json and apply its "browser" field as an
// absolute-path rewrite.
func (r *Resolver) applyBrowserRewrite(resolved string, conditions []string) (string, Kind, error) {
	results, err := r.pkgJSON.ProbePathIter(r.opts.RootDir, filepath.Dir(resolved))
	if err != nil {
		return "", ProjectLocal, err
	}
	if len(results) == 0 {
		return resolved, ProjectLocal, nil
	}
	pkg := results[0].Entry.Value()
	if pkg.Browser == nil || pkg.Browser.Rewrites == nil {
		return resolved, ProjectLocal, nil
	}

	rel, err := filepath.Rel(pkg.Dir, resolved)
	if err != nil {
		return resolved, ProjectLocal, nil
	}
	rel = filepath.ToSlash(rel)
	for _, key := range []string{rel, "./" + rel} {
		if rewrite, ok := pkg.Browser.Rewrites[key]; ok {
			if rewrite.Ignored {
				return "", ResourceFile, nil
			}
			target := filepath.Join(pkg.Dir, rewrite.Replacement)
			if p, ok, err := r.resolveFileOrDir(target, conditions); err == nil && ok {
				return p, ProjectLocal, nil
			}
		}
	}
	return resolved, ProjectLocal, nil
}
