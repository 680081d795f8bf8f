package app

import "fmt"

// Mode selects which operation Execute performs.
type Mode string

const (
	// ModeCheck evaluates every import against the fence.json rules
	// governing its source file.
	ModeCheck Mode = "check"
	// ModeUnused runs the two-phase reachability engine and reports
	// dead files and exports.
	ModeUnused Mode = "unused"
)

// Format selects how a report is serialized.
type Format string

const (
	FormatJSON  Format = "json"
	FormatSARIF Format = "sarif"
)

// ParseFormat validates a user-supplied format string.
func ParseFormat(value string) (Format, error) {
	switch Format(value) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatSARIF:
		return FormatSARIF, nil
	default:
		return "", fmt.Errorf("unknown format %q: must be \"json\" or \"sarif\"", value)
	}
}

// Request describes one invocation of Execute.
type Request struct {
	Mode Mode
	// RepoPath is the monorepo root to scan.
	RepoPath string
	// ConfigPath, if set, overrides the config file fenceguard would
	// otherwise probe for under RepoPath.
	ConfigPath string
	// AllowlistPath, if set, is a glob-per-line file that filters
	// ModeUnused's reported files and items post-hoc.
	AllowlistPath string
	Format        Format
}

// DefaultRequest returns the baseline Request a bare CLI invocation
// starts from.
func DefaultRequest() Request {
	return Request{
		Mode:     ModeCheck,
		RepoPath: ".",
		Format:   FormatJSON,
	}
}
