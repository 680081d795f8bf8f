package reportout

import "encoding/json"

// FormatJSON renders any report document as indented JSON, the same
// shape FormatJSON's callers embed in CI artifacts.
func FormatJSON(v any) (string, error) {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(payload) + "\n", nil
}
