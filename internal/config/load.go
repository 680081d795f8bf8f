package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ben-ranford/fenceguard/internal/safeio"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// defaultConfigNames is the set of filenames Load probes for, in order,
// when no explicit path is given.
var defaultConfigNames = []string{".fenceguard.yml", ".fenceguard.yaml", "fenceguard.json", "fenceguard.toml"}

// Load resolves a config file under repoPath (or explicitPath, if set),
// parses it, and applies it onto Defaults(). If no config file is found
// and explicitPath is empty, Load returns Defaults() unchanged.
func Load(repoPath, explicitPath string) (Values, string, error) {
	repoAbs, err := filepath.Abs(repoPath)
	if err != nil {
		return Values{}, "", fmt.Errorf("config: resolve repo path: %w", err)
	}

	configPath, found, err := resolveConfigPath(repoAbs, strings.TrimSpace(explicitPath))
	if err != nil {
		return Values{}, "", err
	}
	if !found {
		return Defaults(), "", nil
	}

	explicitProvided := strings.TrimSpace(explicitPath) != ""
	data, err := readConfigFile(repoAbs, configPath, explicitProvided)
	if err != nil {
		return Values{}, "", fmt.Errorf("config: read %s: %w", configPath, err)
	}

	raw, err := parseConfig(configPath, data)
	if err != nil {
		return Values{}, "", fmt.Errorf("config: parse %s: %w", configPath, err)
	}

	overrides := raw.toOverrides()
	if err := overrides.Validate(); err != nil {
		return Values{}, "", fmt.Errorf("config: %s: %w", configPath, err)
	}

	resolved := overrides.Apply(Defaults())
	if err := resolved.Validate(); err != nil {
		return Values{}, "", fmt.Errorf("config: %s: %w", configPath, err)
	}
	return resolved, configPath, nil
}

func resolveConfigPath(repoPath, explicitPath string) (string, bool, error) {
	if explicitPath != "" {
		candidate := explicitPath
		if !filepath.IsAbs(candidate) {
			candidate = filepath.Join(repoPath, candidate)
		}
		candidate = filepath.Clean(candidate)
		if _, err := os.Stat(candidate); err != nil {
			if os.IsNotExist(err) {
				return "", false, fmt.Errorf("config: file not found: %s", candidate)
			}
			return "", false, fmt.Errorf("config: stat %s: %w", candidate, err)
		}
		return candidate, true, nil
	}

	for _, name := range defaultConfigNames {
		candidate := filepath.Join(repoPath, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !os.IsNotExist(err) {
			return "", false, fmt.Errorf("config: stat %s: %w", candidate, err)
		}
	}
	return "", false, nil
}

func readConfigFile(repoPath, path string, explicitProvided bool) ([]byte, error) {
	if !explicitProvided || isPathUnderRoot(repoPath, path) {
		return safeio.ReadFileUnder(repoPath, path)
	}
	return safeio.ReadFile(path)
}

func isPathUnderRoot(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func parseConfig(path string, data []byte) (rawConfig, error) {
	var cfg rawConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return rawConfig{}, fmt.Errorf("invalid JSON config: %w", err)
		}
		if decoder.More() {
			return rawConfig{}, fmt.Errorf("invalid JSON config: multiple JSON values")
		}
	case ".toml":
		decoder := toml.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return rawConfig{}, fmt.Errorf("invalid TOML config: %w", err)
		}
	default:
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil {
			return rawConfig{}, fmt.Errorf("invalid YAML config: %w", err)
		}
	}
	return cfg, nil
}

// rawConfig mirrors Overrides but with yaml/json/toml struct tags,
// decoded directly from the config file before being converted into an
// Overrides via toOverrides.
type rawConfig struct {
	TargetEnv         *string           `yaml:"target_env" json:"target_env" toml:"target_env"`
	ExportConditions  []string          `yaml:"export_conditions" json:"export_conditions" toml:"export_conditions"`
	Extensions        []string          `yaml:"extensions" json:"extensions" toml:"extensions"`
	AssetExtensions   []string          `yaml:"asset_extensions" json:"asset_extensions" toml:"asset_extensions"`
	Alias             map[string]string `yaml:"alias" json:"alias" toml:"alias"`
	PreserveSymlinks  *bool             `yaml:"preserve_symlinks" json:"preserve_symlinks" toml:"preserve_symlinks"`
	IgnoreNodeModules *bool             `yaml:"ignore_node_modules" json:"ignore_node_modules" toml:"ignore_node_modules"`
	EntryPackages     []string          `yaml:"entry_packages" json:"entry_packages" toml:"entry_packages"`
	SkippedDirs       []string          `yaml:"skipped_dirs" json:"skipped_dirs" toml:"skipped_dirs"`
	SkippedItems      []string          `yaml:"skipped_items" json:"skipped_items" toml:"skipped_items"`
	TestFilePatterns  []string          `yaml:"test_file_patterns" json:"test_file_patterns" toml:"test_file_patterns"`
}

func (c rawConfig) toOverrides() Overrides {
	return Overrides{
		TargetEnv:         c.TargetEnv,
		ExportConditions:  c.ExportConditions,
		Extensions:        c.Extensions,
		AssetExtensions:   c.AssetExtensions,
		Alias:             c.Alias,
		PreserveSymlinks:  c.PreserveSymlinks,
		IgnoreNodeModules: c.IgnoreNodeModules,
		EntryPackages:     c.EntryPackages,
		SkippedDirs:       c.SkippedDirs,
		SkippedItems:      c.SkippedItems,
		TestFilePatterns:  c.TestFilePatterns,
	}
}
