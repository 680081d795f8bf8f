package fence

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON []byte

var schemaLoader = gojsonschema.NewBytesLoader(schemaJSON)

// validateSchema checks raw fence.json bytes against the bundled JSON
// Schema before Parse attempts to decode them into a Fence, so a
// malformed fence.json fails with a schema-path error instead of a
// confusing zero-value result from a partially successful decode.
func validateSchema(data []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("fence: validate schema: %w", err)
	}
	if result.Valid() {
		return nil
	}
	messages := make([]string, 0, len(result.Errors()))
	for _, item := range result.Errors() {
		messages = append(messages, item.String())
	}
	return fmt.Errorf("fence: schema validation failed: %s", strings.Join(messages, "; "))
}
