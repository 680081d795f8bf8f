package pkgjson

import (
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
)

// MatchStatus classifies the outcome of resolving one exports-map target.
type MatchStatus int

const (
	// NoMatch means no category entry's key matched the request at all.
	NoMatch MatchStatus = iota
	// Matched means a target path was found for one of the requested
	// conditions (or the entry was an unconditional string).
	Matched
	// Private means the matching key resolved to a JSON null, which
	// package.json authors use to explicitly block a subpath from being
	// reachable through "exports" regardless of condition.
	Private
	// Unrecognized means the matching key's value was neither a string,
	// an object of one-level conditions, nor null — e.g. a number or
	// array. This is reported, not silently ignored.
	Unrecognized
)

func (s MatchStatus) String() string {
	switch s {
	case Matched:
		return "matched"
	case Private:
		return "private"
	case Unrecognized:
		return "unrecognized"
	default:
		return "no-match"
	}
}

type valueKind int

const (
	kindString valueKind = iota
	kindNull
	kindObject
	kindUnrecognized
)

// target is an exports-map leaf: a plain string, null, one level of
// condition -> leaf, or something we don't recognize. Full parity with
// exotic multi-level condition nesting is out of scope (§ Non-goals).
type target struct {
	kind       valueKind
	path       string
	conditions map[string]conditionValue
}

type conditionValue struct {
	kind valueKind
	path string
}

func parseTarget(raw json.RawMessage) (target, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return target{kind: kindNull}, nil
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return target{kind: kindString, path: asString}, nil
	}

	var asObject map[string]json.RawMessage
	if err := json.Unmarshal(raw, &asObject); err == nil {
		conds := make(map[string]conditionValue, len(asObject))
		for cond, raw := range asObject {
			cv, err := parseCondition(raw)
			if err != nil {
				return target{}, fmt.Errorf("pkgjson: condition %q: %w", cond, err)
			}
			conds[cond] = cv
		}
		return target{kind: kindObject, conditions: conds}, nil
	}

	return target{kind: kindUnrecognized}, nil
}

func parseCondition(raw json.RawMessage) (conditionValue, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return conditionValue{kind: kindNull}, nil
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return conditionValue{kind: kindString, path: asString}, nil
	}
	return conditionValue{kind: kindUnrecognized}, nil
}

// resolve walks requested conditions left to right against a target,
// always trying "default" last regardless of where (or whether) it
// appears in requested.
func (t target) resolve(requested []string) (string, MatchStatus) {
	switch t.kind {
	case kindString:
		return t.path, Matched
	case kindNull:
		return "", Private
	case kindUnrecognized:
		return "", Unrecognized
	case kindObject:
		for _, cond := range orderedConditions(requested) {
			cv, ok := t.conditions[cond]
			if !ok {
				continue
			}
			switch cv.kind {
			case kindString:
				return cv.path, Matched
			case kindNull:
				return "", Private
			case kindUnrecognized:
				return "", Unrecognized
			}
		}
		return "", NoMatch
	}
	return "", NoMatch
}

func orderedConditions(requested []string) []string {
	ordered := make([]string, 0, len(requested)+1)
	seen := make(map[string]bool, len(requested)+1)
	for _, c := range requested {
		if c == "default" || seen[c] {
			continue
		}
		seen[c] = true
		ordered = append(ordered, c)
	}
	ordered = append(ordered, "default")
	return ordered
}

// literalEntry holds an exact-match key (e.g. ".", "./foo").
type literalEntry struct {
	key    string
	target target
}

// patternEntry holds a directory ("./foo/") or star ("./foo/*") key.
type patternEntry struct {
	key    string
	prefix string
	suffix string // non-empty only for star entries
	target target
}

// ExportsMap is a parsed package.json "exports" field, split into the
// three categories searched in order: literal,
// then directory (deprecated trailing-slash form), then star.
type ExportsMap struct {
	literal   map[string]literalEntry
	directory []patternEntry
	star      []patternEntry
}

// ParseExportsMap parses a raw package.json "exports" value. A bare
// string or single-target object (no keys starting with ".") is sugar
// for the "." export, matching how package authors commonly write a
// single-entry-point package.
func ParseExportsMap(raw json.RawMessage) (*ExportsMap, error) {
	em := &ExportsMap{literal: make(map[string]literalEntry)}

	var asObject map[string]json.RawMessage
	if err := json.Unmarshal(raw, &asObject); err != nil {
		// Not an object: sugar for exports = {".": raw}.
		t, terr := parseTarget(raw)
		if terr != nil {
			return nil, terr
		}
		if err := em.addEntry(".", t); err != nil {
			return nil, err
		}
		return em, nil
	}

	isSugar := true
	for key := range asObject {
		if strings.HasPrefix(key, ".") {
			isSugar = false
			break
		}
	}
	if isSugar {
		t, err := parseTarget(raw)
		if err != nil {
			return nil, err
		}
		if err := em.addEntry(".", t); err != nil {
			return nil, err
		}
		return em, nil
	}

	for key, rawTarget := range asObject {
		t, err := parseTarget(rawTarget)
		if err != nil {
			return nil, fmt.Errorf("pkgjson: exports key %q: %w", key, err)
		}
		if err := em.addEntry(key, t); err != nil {
			return nil, err
		}
	}
	return em, nil
}

// ErrAmbiguousPattern is a configuration error: an exports-map key (or
// its target) contains more than one "*", which has no well-defined
// substitution.
var ErrAmbiguousPattern = fmt.Errorf("pkgjson: exports pattern may contain at most one '*'")

func (em *ExportsMap) addEntry(key string, t target) error {
	clean := cleanExportKey(key)
	if strings.Count(clean, "*") > 1 {
		return fmt.Errorf("%w: %q", ErrAmbiguousPattern, key)
	}
	if strings.HasSuffix(clean, "/") {
		em.directory = append(em.directory, patternEntry{key: clean, prefix: clean, target: t})
		return nil
	}
	if idx := strings.IndexByte(clean, '*'); idx >= 0 {
		em.star = append(em.star, patternEntry{
			key:    clean,
			prefix: clean[:idx],
			suffix: clean[idx+1:],
			target: t,
		})
		return nil
	}
	em.literal[clean] = literalEntry{key: clean, target: t}
	return nil
}

// cleanExportKey normalizes an exports-map key the way cleanRequest
// normalizes a subpath request, preserving a trailing slash (which is
// semantically meaningful for directory entries) since path.Clean
// would otherwise strip it.
func cleanExportKey(key string) string {
	trailingSlash := strings.HasSuffix(key, "/") && key != "/"
	cleaned := path.Clean(key)
	if trailingSlash && !strings.HasSuffix(cleaned, "/") {
		cleaned += "/"
	}
	return cleaned
}

// cleanRequest normalizes a requested subpath the same way, without
// preserving meaning for trailing slashes — a request is always a file.
func cleanRequest(subpath string) string {
	if subpath == "" {
		return "."
	}
	return path.Clean(subpath)
}

// sortPatterns orders pattern entries by descending prefix length so the
// most specific pattern is tried first when more than one could match.
func sortPatterns(entries []patternEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return len(entries[i].prefix) > len(entries[j].prefix)
	})
}

// Resolve looks up subpath (e.g. "." or "./feature") against the exports
// map's three categories in order, returning the resolved target path
// for the first matching entry under any of the requested conditions.
func (em *ExportsMap) Resolve(subpath string, requestedConditions []string) (string, MatchStatus) {
	req := cleanRequest(subpath)

	// An exact key match is final: it does not fall through to the
	// directory or star categories even when no condition is satisfied.
	if entry, ok := em.literal[req]; ok {
		return entry.target.resolve(requestedConditions)
	}

	sortPatterns(em.directory)
	for _, entry := range em.directory {
		if !strings.HasPrefix(req, entry.prefix) && req+"/" != entry.prefix {
			continue
		}
		rest := strings.TrimPrefix(req, entry.prefix)
		resolvedTargetBase, status := entry.target.resolve(requestedConditions)
		if status != Matched {
			if status != NoMatch {
				return "", status
			}
			continue
		}
		return path.Join(resolvedTargetBase, rest), Matched
	}

	sortPatterns(em.star)
	for _, entry := range em.star {
		if !strings.HasPrefix(req, entry.prefix) || !strings.HasSuffix(req, entry.suffix) {
			continue
		}
		if len(req) < len(entry.prefix)+len(entry.suffix) {
			continue
		}
		wildcard := req[len(entry.prefix) : len(req)-len(entry.suffix)]
		resolvedTargetBase, status := entry.target.resolve(requestedConditions)
		if status != Matched {
			if status != NoMatch {
				return "", status
			}
			continue
		}
		return strings.Replace(resolvedTargetBase, "*", wildcard, 1), Matched
	}

	return "", NoMatch
}

// IsExported reports whether relativePath (relative to the package
// root, e.g. "src/feature.ts") is reachable through any entry of the
// exports map under any of the given conditions, and if so under which
// conditions. This is the reverse query the unused-export reachability
// seeding (C4) issues for every file in a package with an exports map.
func (em *ExportsMap) IsExported(relativePath string, allConditions []string) (conditions []string, ok bool) {
	wantPath := cleanRequest("./" + strings.TrimPrefix(relativePath, "./"))
	tryConditions := append(append([]string{}, allConditions...), "default")

	matchesLeaf := func(t target, matches func(resolved string) bool) {
		for _, cond := range tryConditions {
			// Attribute a match to cond only when the target carries that
			// condition itself; resolve would otherwise fall back to
			// "default" and credit it to every absent condition.
			if t.kind == kindObject {
				if _, ok := t.conditions[cond]; !ok {
					continue
				}
			}
			resolved, status := t.resolve([]string{cond})
			if status != Matched {
				continue
			}
			if matches(resolved) {
				conditions = append(conditions, cond)
			}
		}
	}

	for _, entry := range em.literal {
		matchesLeaf(entry.target, func(resolved string) bool {
			return cleanRequest(resolved) == wantPath
		})
	}
	for _, entry := range em.directory {
		matchesLeaf(entry.target, func(resolved string) bool {
			base := cleanRequest(strings.TrimSuffix(resolved, "/"))
			return wantPath == base || strings.HasPrefix(wantPath, base+"/")
		})
	}
	for _, entry := range em.star {
		matchesLeaf(entry.target, func(resolved string) bool {
			cleaned := cleanRequest(resolved)
			idx := strings.IndexByte(cleaned, '*')
			if idx < 0 {
				return cleaned == wantPath
			}
			prefix, suffix := cleaned[:idx], cleaned[idx+1:]
			return strings.HasPrefix(wantPath, prefix) && strings.HasSuffix(wantPath, suffix) &&
				len(wantPath) >= len(prefix)+len(suffix)
		})
	}

	return dedupeConditions(conditions), len(conditions) > 0
}

func dedupeConditions(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, c := range in {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
