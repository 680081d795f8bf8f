package pkgjson

import "testing"

func TestParseBasicFields(t *testing.T) {
	pkg, err := Parse([]byte(`{"name":"acme-widgets","main":"index.js","module":"index.mjs"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pkg.Name != "acme-widgets" || pkg.Main != "index.js" || pkg.Module != "index.mjs" {
		t.Fatalf("unexpected parse result: %+v", pkg)
	}
}

func TestParseBrowserString(t *testing.T) {
	pkg, err := Parse([]byte(`{"browser":"./browser-entry.js"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pkg.Browser == nil || pkg.Browser.MainReplacement != "./browser-entry.js" {
		t.Fatalf("expected browser main replacement, got %+v", pkg.Browser)
	}
}

func TestParseBrowserMap(t *testing.T) {
	pkg, err := Parse([]byte(`{"browser":{"./server.js":"./client.js","./fs-only.js":false}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pkg.Browser == nil {
		t.Fatalf("expected browser map")
	}
	rewrite, ok := pkg.Browser.Rewrites["./server.js"]
	if !ok || rewrite.Replacement != "./client.js" || rewrite.Ignored {
		t.Fatalf("unexpected rewrite for ./server.js: %+v", rewrite)
	}
	ignored, ok := pkg.Browser.Rewrites["./fs-only.js"]
	if !ok || !ignored.Ignored {
		t.Fatalf("unexpected rewrite for ./fs-only.js: %+v", ignored)
	}
}

func TestHasExportsFalseWhenAbsentOrNull(t *testing.T) {
	withoutField, err := Parse([]byte(`{"name":"a"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if withoutField.HasExports() {
		t.Fatalf("expected no exports field")
	}

	withNull, err := Parse([]byte(`{"name":"a","exports":null}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if withNull.HasExports() {
		t.Fatalf("expected null exports to count as absent")
	}
}

func TestExportsMapParsesOnDemand(t *testing.T) {
	pkg, err := Parse([]byte(`{"exports":{".":"./index.js"}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	em, err := pkg.ExportsMap()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if em == nil {
		t.Fatalf("expected an exports map")
	}

	noExports, err := Parse([]byte(`{"name":"bare"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	em, err = noExports.ExportsMap()
	if err != nil || em != nil {
		t.Fatalf("expected nil map for package without exports, got %v err=%v", em, err)
	}
}
