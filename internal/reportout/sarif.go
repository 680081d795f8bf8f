package reportout

import (
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
)

const (
	sarifSchemaURI = "https://json.schemastore.org/sarif-2.1.0.json"
	sarifVersion   = "2.1.0"
	driverName     = "fenceguard"
	driverURI      = "https://github.com/ben-ranford/fenceguard"
)

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	InformationURI string      `json:"informationUri,omitempty"`
	Version        string      `json:"version,omitempty"`
	Rules          []sarifRule `json:"rules,omitempty"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	Name             string       `json:"name,omitempty"`
	ShortDescription sarifMessage `json:"shortDescription"`
	Help             *sarifMessage `json:"help,omitempty"`
}

type sarifResult struct {
	RuleID    string                 `json:"ruleId"`
	Level     string                 `json:"level,omitempty"`
	Message   sarifMessage           `json:"message"`
	Locations []sarifLocation        `json:"locations,omitempty"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine,omitempty"`
	StartColumn int `json:"startColumn,omitempty"`
}

type sarifRuleBuilder struct {
	rules map[string]sarifRule
}

func newSARIFRuleBuilder() *sarifRuleBuilder {
	return &sarifRuleBuilder{rules: make(map[string]sarifRule)}
}

func (b *sarifRuleBuilder) add(rule sarifRule) {
	if _, ok := b.rules[rule.ID]; ok {
		return
	}
	b.rules[rule.ID] = rule
}

func (b *sarifRuleBuilder) list() []sarifRule {
	ids := make([]string, 0, len(b.rules))
	for id := range b.rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	items := make([]sarifRule, 0, len(ids))
	for _, id := range ids {
		items = append(items, b.rules[id])
	}
	return items
}

func wrapLog(results []sarifResult, rules *sarifRuleBuilder) sarifLog {
	return sarifLog{
		Schema:  sarifSchemaURI,
		Version: sarifVersion,
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:           driverName,
						InformationURI: driverURI,
						Rules:          rules.list(),
					},
				},
				Results: results,
			},
		},
	}
}

func marshalSARIF(log sarifLog) (string, error) {
	payload, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return "", err
	}
	return string(payload) + "\n", nil
}

// FormatFenceEvaluationSARIF renders a FenceEvaluationReport as a SARIF
// 2.1.0 log, one result per violation and one per unresolved import,
// deduplicating rules by id and sorting for stable output.
func FormatFenceEvaluationSARIF(report FenceEvaluationReport) (string, error) {
	rules := newSARIFRuleBuilder()
	results := make([]sarifResult, 0, len(report.Violations)+len(report.UnresolvedFiles))

	for _, v := range report.Violations {
		ruleID := "fenceguard/fence/" + strings.ToLower(v.Clause)
		rules.add(sarifRule{
			ID:               ruleID,
			Name:             v.Clause,
			ShortDescription: sarifMessage{Text: "Import crosses a fence boundary it is not permitted to cross"},
			Help:             &sarifMessage{Text: "Update the fence.json allow list or remove the offending import."},
		})
		results = append(results, sarifResult{
			RuleID:  ruleID,
			Level:   "error",
			Message: sarifMessage{Text: v.Message},
			Locations: []sarifLocation{{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{URI: toSARIFURI(v.File)},
				},
			}},
			Properties: map[string]interface{}{
				"fence":           v.Fence,
				"importSpecifier": v.ImportSpecifier,
			},
		})
	}

	const unresolvedRuleID = "fenceguard/fence/unresolved-import"
	for _, u := range report.UnresolvedFiles {
		rules.add(sarifRule{
			ID:               unresolvedRuleID,
			Name:             "unresolved-import",
			ShortDescription: sarifMessage{Text: "Import specifier could not be resolved during fence evaluation"},
			Help:             &sarifMessage{Text: "Fix the import path, or add a resolver alias/tsconfig path for it."},
		})
		results = append(results, sarifResult{
			RuleID:  unresolvedRuleID,
			Level:   "warning",
			Message: sarifMessage{Text: fmt.Sprintf("could not resolve %s imported from %s: %s", u.ImportSpecifier, u.File, u.Reason)},
			Locations: []sarifLocation{{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{URI: toSARIFURI(u.File)},
				},
			}},
			Properties: map[string]interface{}{
				"importSpecifier": u.ImportSpecifier,
				"reason":          u.Reason,
			},
		})
	}

	sortSARIFResults(results)
	return marshalSARIF(wrapLog(results, rules))
}

// FormatUnusedFinderSARIF renders an UnusedFinderReport as a SARIF 2.1.0
// log, one result per unused file and one per remaining unused export.
func FormatUnusedFinderSARIF(report UnusedFinderReport) (string, error) {
	rules := newSARIFRuleBuilder()
	results := make([]sarifResult, 0, len(report.UnusedFiles)+len(report.UnusedFilesItems))

	const unusedFileRuleID = "fenceguard/unused/unused-file"
	rules.add(sarifRule{
		ID:               unusedFileRuleID,
		Name:             "unused-file",
		ShortDescription: sarifMessage{Text: "File is unreachable from any entry package or test"},
		Help:             &sarifMessage{Text: "Delete the file, or add it to the allowlist if it is kept deliberately."},
	})
	for _, file := range report.UnusedFiles {
		results = append(results, sarifResult{
			RuleID:  unusedFileRuleID,
			Level:   "warning",
			Message: sarifMessage{Text: fmt.Sprintf("%s is unreachable from any entry package or test", file)},
			Locations: []sarifLocation{{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{URI: toSARIFURI(file)},
				},
			}},
		})
	}

	const unusedExportRuleID = "fenceguard/unused/unused-export"
	rules.add(sarifRule{
		ID:               unusedExportRuleID,
		Name:             "unused-export",
		ShortDescription: sarifMessage{Text: "Export is never imported anywhere in the graph"},
		Help:             &sarifMessage{Text: "Remove the export, or mark it @ALLOW-UNUSED-EXPORT if it is a deliberate public surface."},
	})
	files := make([]string, 0, len(report.UnusedFilesItems))
	for file := range report.UnusedFilesItems {
		files = append(files, file)
	}
	sort.Strings(files)
	for _, file := range files {
		for _, item := range report.UnusedFilesItems[file] {
			level := "warning"
			if item.TestOnlyUsed {
				level = "note"
			}
			region := &sarifRegion{StartLine: item.Span.StartLine, StartColumn: item.Span.StartColumn}
			results = append(results, sarifResult{
				RuleID:  unusedExportRuleID,
				Level:   level,
				Message: sarifMessage{Text: fmt.Sprintf("export %q in %s is never imported", item.ID, file)},
				Locations: []sarifLocation{{
					PhysicalLocation: sarifPhysicalLocation{
						ArtifactLocation: sarifArtifactLocation{URI: toSARIFURI(file)},
						Region:           region,
					},
				}},
				Properties: map[string]interface{}{
					"testOnlyUsed": item.TestOnlyUsed,
					"isTypeOnly":   item.IsTypeOnly,
				},
			})
		}
	}

	sortSARIFResults(results)
	return marshalSARIF(wrapLog(results, rules))
}

func toSARIFURI(file string) string {
	file = strings.TrimSpace(file)
	file = strings.ReplaceAll(file, "\\", "/")
	return path.Clean(file)
}

func sortSARIFResults(results []sarifResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].RuleID != results[j].RuleID {
			return results[i].RuleID < results[j].RuleID
		}
		return results[i].Message.Text < results[j].Message.Text
	})
}
