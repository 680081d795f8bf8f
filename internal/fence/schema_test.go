package fence

import "testing"

func TestValidateSchemaAcceptsFullDocument(t *testing.T) {
	data := []byte(`{
		"tags": ["protected"],
		"imports": ["friend"],
		"exports": ["*.ts", {"modules": "internal.ts", "accessibleTo": ["friend", "*"]}],
		"dependencies": ["react", {"dependency": "node:fs", "accessibleTo": "friend"}]
	}`)
	if err := validateSchema(data); err != nil {
		t.Fatalf("unexpected schema error: %v", err)
	}
}

func TestValidateSchemaRejectsUnknownField(t *testing.T) {
	if err := validateSchema([]byte(`{"unknownField": true}`)); err == nil {
		t.Fatalf("expected schema validation to reject an unknown top-level field")
	}
}

func TestValidateSchemaRejectsWrongTagsType(t *testing.T) {
	if err := validateSchema([]byte(`{"tags": "protected"}`)); err == nil {
		t.Fatalf("expected schema validation to reject tags as a bare string")
	}
}

func TestValidateSchemaRejectsExportRuleMissingModules(t *testing.T) {
	if err := validateSchema([]byte(`{"exports": [{"accessibleTo": "friend"}]}`)); err == nil {
		t.Fatalf("expected schema validation to reject an export rule without modules")
	}
}

func TestValidateSchemaRejectsDependencyRuleMissingDependency(t *testing.T) {
	if err := validateSchema([]byte(`{"dependencies": [{"accessibleTo": "friend"}]}`)); err == nil {
		t.Fatalf("expected schema validation to reject a dependency rule without a dependency")
	}
}
