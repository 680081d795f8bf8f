// Package fence implements fence enforcement:
// fence.json files declare tag membership and allow/deny lists over local
// imports, re-exports, and external dependencies, and this package loads
// them, finds the fences that govern a given file, and evaluates one
// file's imports against those fences.
package fence

import (
	"encoding/json"
	"fmt"
	"path/filepath"
)

// FileName is the context file name this package looks for in every
// directory, mirroring package.json/tsconfig.json's per-directory
// convention (C2's path-context cache).
const FileName = "fence.json"

// AccessibleTo is the "accessibleTo" field shared by ExportRule and
// DependencyRule: either a bare string or a list of strings.
type AccessibleTo []string

// Contains reports whether tag is granted access, honoring the "*"
// wildcard.
func (a AccessibleTo) Contains(tag string) bool {
	for _, candidate := range a {
		if candidate == "*" || candidate == tag {
			return true
		}
	}
	return false
}

func (a *AccessibleTo) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*a = AccessibleTo{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("fence: accessibleTo is neither a string nor an array of strings: %w", err)
	}
	*a = AccessibleTo(list)
	return nil
}

// ExportRule grants access to modules matching a glob to a set of tags. A
// bare string is shorthand for {modules: <string>, accessibleTo: ["*"]}.
type ExportRule struct {
	Modules      string       `json:"modules"`
	AccessibleTo AccessibleTo `json:"accessibleTo"`
}

func (e *ExportRule) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		e.Modules = asString
		e.AccessibleTo = AccessibleTo{"*"}
		return nil
	}

	type shape ExportRule
	aux := shape{AccessibleTo: AccessibleTo{"*"}}
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("fence: export rule is neither a string nor an object: %w", err)
	}
	*e = ExportRule(aux)
	return nil
}

// DependencyRule grants access to an external dependency (matched
// verbatim or via glob) to a set of tags. A bare string is shorthand for
// {dependency: <string>, accessibleTo: ["*"]}.
type DependencyRule struct {
	Dependency   string       `json:"dependency"`
	AccessibleTo AccessibleTo `json:"accessibleTo"`
}

func (d *DependencyRule) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		d.Dependency = asString
		d.AccessibleTo = AccessibleTo{"*"}
		return nil
	}

	type shape DependencyRule
	aux := shape{AccessibleTo: AccessibleTo{"*"}}
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("fence: dependency rule is neither a string nor an object: %w", err)
	}
	*d = DependencyRule(aux)
	return nil
}

// Fence is one parsed fence.json, plus the location it was loaded from.
type Fence struct {
	Tags         []string         `json:"tags"`
	Exports      []ExportRule     `json:"exports"`
	Dependencies []DependencyRule `json:"dependencies"`
	Imports      []string         `json:"imports"`

	// Path is the absolute path to the fence.json this was parsed from.
	// Dir is its containing directory. Neither is a JSON field.
	Path string `json:"-"`
	Dir  string `json:"-"`
}

// HasExports reports whether this fence declares an exports allow list at
// all (as opposed to an empty one, which is a deny-everything list).
func (f *Fence) HasExports() bool { return f.Exports != nil }

// HasDependencies reports whether this fence declares a dependency allow
// list at all (as opposed to an empty one, which denies every external
// dependency).
func (f *Fence) HasDependencies() bool { return f.Dependencies != nil }

// HasImports reports whether this fence restricts which tags its files
// may import from.
func (f *Fence) HasImports() bool { return f.Imports != nil }

// Parse decodes raw fence.json bytes. path is the absolute path the bytes
// were read from. The document is validated against the bundled JSON
// Schema first, so a malformed fence.json fails fast with a schema-path
// error rather than a confusing zero-value Fence.
func Parse(data []byte, path string) (*Fence, error) {
	if err := validateSchema(data); err != nil {
		return nil, fmt.Errorf("fence: %s: %w", path, err)
	}
	var f Fence
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("fence: parse %s: %w", path, err)
	}
	f.Path = path
	f.Dir = filepath.Dir(path)
	return &f, nil
}
