// Package pkgjson models the package.json fields the module resolver
// consults (§6) and implements the exports-map matching algorithm (§4.1.1).
package pkgjson

import (
	"encoding/json"
	"fmt"
)

// Browser is the package.json "browser" field, which is either a bare
// string (single rewrite of the package's main entry) or a map from
// request path to replacement path / false (meaning "ignore this module").
type Browser struct {
	MainReplacement string
	Rewrites        map[string]BrowserRewrite
}

// BrowserRewrite is one entry of a map-form "browser" field.
type BrowserRewrite struct {
	Ignored     bool
	Replacement string
}

func (b *Browser) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		b.MainReplacement = asString
		return nil
	}

	var asMap map[string]json.RawMessage
	if err := json.Unmarshal(data, &asMap); err != nil {
		return fmt.Errorf("pkgjson: browser field is neither string nor object: %w", err)
	}
	b.Rewrites = make(map[string]BrowserRewrite, len(asMap))
	for key, raw := range asMap {
		var asBool bool
		if err := json.Unmarshal(raw, &asBool); err == nil {
			b.Rewrites[key] = BrowserRewrite{Ignored: !asBool}
			continue
		}
		var asPath string
		if err := json.Unmarshal(raw, &asPath); err != nil {
			return fmt.Errorf("pkgjson: browser field entry %q is neither bool nor string: %w", key, err)
		}
		b.Rewrites[key] = BrowserRewrite{Replacement: asPath}
	}
	return nil
}

// PackageJSON is the subset of package.json fields the resolver, the
// fence-dependency evaluator, and unused-export reachability seeding
// consult.
type PackageJSON struct {
	Name    string          `json:"name"`
	Main    string          `json:"main"`
	Module  string          `json:"module"`
	Browser *Browser        `json:"browser"`
	Exports json.RawMessage `json:"exports"`

	// Dir is the absolute directory containing this package.json. It is
	// not a JSON field; callers set it after parsing.
	Dir string `json:"-"`
}

// Parse decodes raw package.json bytes into a PackageJSON.
func Parse(data []byte) (*PackageJSON, error) {
	var pkg PackageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("pkgjson: parse package.json: %w", err)
	}
	return &pkg, nil
}

// HasExports reports whether this package.json declares an "exports" map.
func (p *PackageJSON) HasExports() bool {
	return len(p.Exports) > 0 && string(p.Exports) != "null"
}

// ExportsMap parses this package's exports field, nil when the package
// declares none. Parsing happens on demand rather than in Parse so a
// malformed exports map doesn't fail the load until something actually
// resolves against it; callers that resolve repeatedly should memoize
// the result (the resolver holds it in its path-context cache's
// derived-data slot).
func (p *PackageJSON) ExportsMap() (*ExportsMap, error) {
	if !p.HasExports() {
		return nil, nil
	}
	return ParseExportsMap(p.Exports)
}
