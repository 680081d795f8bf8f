package fence

import "testing"

func TestFencesForPathOrdersNearestAncestorFirst(t *testing.T) {
	fs := newMemFS().
		add("/repo/some/other/file.ts", "").
		add("/repo/some/fence.json", `{"tags": ["mid"]}`).
		add("/repo/some/other/fence.json", `{"tags": ["leaf"]}`)
	c := NewCollection(fs, "/repo")

	fences, err := c.FencesForPath("/repo/some/other/file.ts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fences) != 2 {
		t.Fatalf("expected 2 fences, got %+v", fences)
	}
	if fences[0].Path != "/repo/some/other/fence.json" {
		t.Fatalf("expected nearest ancestor first, got %s", fences[0].Path)
	}
	if fences[1].Path != "/repo/some/fence.json" {
		t.Fatalf("expected root fence second, got %s", fences[1].Path)
	}
}

func TestFencesForPathSkipsDirectoriesWithoutFence(t *testing.T) {
	fs := newMemFS().
		add("/repo/a/b/c/file.ts", "").
		add("/repo/a/fence.json", `{"tags": ["root"]}`)
	c := NewCollection(fs, "/repo")

	fences, err := c.FencesForPath("/repo/a/b/c/file.ts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fences) != 1 || fences[0].Path != "/repo/a/fence.json" {
		t.Fatalf("expected exactly the root fence, got %+v", fences)
	}
}

func TestTagsForPathUnionsAncestorFences(t *testing.T) {
	fs := newMemFS().
		add("/repo/some/other/file.ts", "").
		add("/repo/some/fence.json", `{"tags": ["mid"]}`).
		add("/repo/some/other/fence.json", `{"tags": ["leaf"]}`)
	c := NewCollection(fs, "/repo")

	tags, err := c.TagsForPath("/repo/some/other/file.ts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tags["mid"] || !tags["leaf"] {
		t.Fatalf("expected union of both ancestor fences' tags, got %+v", tags)
	}
}

func TestFencesForPathNoFenceAnywhereReturnsEmpty(t *testing.T) {
	fs := newMemFS().add("/repo/src/app.ts", "")
	c := NewCollection(fs, "/repo")

	fences, err := c.FencesForPath("/repo/src/app.ts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fences) != 0 {
		t.Fatalf("expected no fences, got %+v", fences)
	}
}
