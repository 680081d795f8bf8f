package resolve

// Options governs how Resolve behaves.
type Options struct {
	// RootDir is the monorepo root; tsconfig-paths targets and the
	// node_modules ancestor walk are both bounded by it.
	RootDir string
	// TargetEnv gates the core-module check (step 2) and the browser
	// rewrite (step 8): "node" or "browser".
	TargetEnv string
	// ExportConditions is the ordered condition list consulted against
	// package.json "exports" maps, e.g. ["import", "require"].
	ExportConditions []string
	// Extensions is the ordered list resolve-as-file appends to an
	// extension-less request, e.g. ["ts", "tsx", "js", "jsx", "json", "node"].
	Extensions []string
	// AssetExtensions short-circuits a specifier straight to ResourceFile
	// (step 1) without touching the filesystem.
	AssetExtensions []string
	// Alias is the configured specifier substitution map (step 3).
	Alias map[string]string
	// IgnoreNodeModules skips the node_modules walk (step 7) entirely;
	// a bare specifier that would otherwise fall through to it instead
	// resolves as NodeModules without filesystem verification.
	IgnoreNodeModules bool
	// PreserveSymlinks, when false (the default), canonicalizes final
	// resolved paths instead of leaving symlink targets unresolved.
	PreserveSymlinks bool
}

// DefaultExtensions is the default resolve-as-file search order.
var DefaultExtensions = []string{"ts", "tsx", "js", "jsx", "json", "node"}

// DefaultAssetExtensions is the default resource short-circuit set.
var DefaultAssetExtensions = []string{"css", "scss", "svg", "png", "gif", "json", "graphql"}

func (o Options) extensions() []string {
	if len(o.Extensions) > 0 {
		return o.Extensions
	}
	return DefaultExtensions
}

func (o Options) assetExtensions() []string {
	if len(o.AssetExtensions) > 0 {
		return o.AssetExtensions
	}
	return DefaultAssetExtensions
}
