package cli

const usage = `Usage:
  fenceguard check [--repo PATH] [--config PATH] [--format json|sarif]
  fenceguard unused [--repo PATH] [--config PATH] [--allowlist PATH] [--format json|sarif]

Options:
  --repo PATH       Repository path (default: .)
  --config PATH     Config file path (default: repo .fenceguard.yml/.fenceguard.yaml/fenceguard.json/fenceguard.toml)
  --allowlist PATH  Glob-per-line allowlist filtering the unused report (unused only)
  --format FORMAT   Output format: json or sarif (default: json)
  -h, --help        Show this help text
`

// Usage returns the command-line help text.
func Usage() string {
	return usage
}
