package reportout

import (
	"fmt"
	"strings"

	"github.com/ben-ranford/fenceguard/internal/fence"
)

// violationMessage renders a human-readable description of one
// violation, grounded on evaluate_fences.rs's ImportRuleViolation
// Display impl: the wording differs by clause kind and by whether a
// specific near-miss rule was identified versus no rule matching at
// all.
func violationMessage(v fence.Violation) string {
	switch v.Clause.Kind {
	case fence.ClauseExportRule:
		if rule := v.Clause.ExportRule; rule != nil {
			return fmt.Sprintf(
				"import of %s at %s violated %s: rule %q is only accessible to %s",
				v.ImportSpecifier, v.ViolatingFilePath, v.ViolatingFence.Path,
				rule.Modules, formatAccessibleTo(rule.AccessibleTo),
			)
		}
		return fmt.Sprintf(
			"import of %s at %s is not in the exports allow list of %s",
			v.ImportSpecifier, v.ViolatingFilePath, v.ViolatingFence.Path,
		)
	case fence.ClauseDependencyRule:
		if rule := v.Clause.DependencyRule; rule != nil {
			return fmt.Sprintf(
				"dependency %s at %s was not exposed for tags %s of %s",
				rule.Dependency, v.ViolatingFence.Path,
				formatTags(v.ViolatingFence.Tags), v.ViolatingFilePath,
			)
		}
		return fmt.Sprintf(
			"import of %s at %s is not in the dependencies allow list of %s",
			v.ImportSpecifier, v.ViolatingFilePath, v.ViolatingFence.Path,
		)
	case fence.ClauseImportAllowList:
		return fmt.Sprintf(
			"file %s with tags %s does not allow import of %s per %s",
			v.ViolatingFilePath, formatTags(v.ViolatingFence.Tags),
			v.ImportSpecifier, v.ViolatingFence.Path,
		)
	default:
		return fmt.Sprintf("import of %s at %s violated %s", v.ImportSpecifier, v.ViolatingFilePath, v.ViolatingFence.Path)
	}
}

func formatAccessibleTo(accessibleTo fence.AccessibleTo) string {
	if len(accessibleTo) == 0 {
		return "[]"
	}
	return "[" + strings.Join(accessibleTo, ", ") + "]"
}

func formatTags(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	return "[" + strings.Join(tags, ", ") + "]"
}
