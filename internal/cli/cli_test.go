package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ben-ranford/fenceguard/internal/app"
)

type fakeRunner struct {
	output string
	err    error
}

func (f *fakeRunner) Execute(context.Context, app.Request) (string, error) {
	return f.output, f.err
}

func TestNew(t *testing.T) {
	var out, errOut bytes.Buffer
	c := New(&fakeRunner{}, &out, &errOut)
	if c == nil {
		t.Fatalf("expected cli to be created")
	}
}

func TestRunHelp(t *testing.T) {
	var out, errOut bytes.Buffer
	c := New(&fakeRunner{}, &out, &errOut)
	code := c.Run(context.Background(), []string{"--help"})
	if code != 0 {
		t.Fatalf("expected code 0, got %d", code)
	}
	if !strings.Contains(out.String(), "Usage:") {
		t.Fatalf("expected usage output")
	}
}

func TestRunParseError(t *testing.T) {
	var out, errOut bytes.Buffer
	c := New(&fakeRunner{}, &out, &errOut)
	code := c.Run(context.Background(), []string{"nope"})
	if code != 2 {
		t.Fatalf("expected parse error code 2, got %d", code)
	}
	if !strings.Contains(errOut.String(), "unknown command") {
		t.Fatalf("expected parse error output, got %q", errOut.String())
	}
}

func TestRunViolationsFoundError(t *testing.T) {
	var out, errOut bytes.Buffer
	c := New(&fakeRunner{output: "{}", err: app.ErrViolationsFound}, &out, &errOut)
	code := c.Run(context.Background(), []string{"check"})
	if code != 3 {
		t.Fatalf("expected violations-found exit code 3, got %d", code)
	}
	if out.String() != "{}\n" {
		t.Fatalf("expected report still written to stdout, got %q", out.String())
	}
}

func TestRunGenericRunnerError(t *testing.T) {
	var out, errOut bytes.Buffer
	c := New(&fakeRunner{err: errors.New("boom")}, &out, &errOut)
	code := c.Run(context.Background(), []string{"check"})
	if code != 1 {
		t.Fatalf("expected generic error code 1, got %d", code)
	}
	if !strings.Contains(errOut.String(), "boom") {
		t.Fatalf("expected error message written, got %q", errOut.String())
	}
}

func TestRunSuccessWritesOutput(t *testing.T) {
	var out, errOut bytes.Buffer
	c := New(&fakeRunner{output: `{"ok":true}`}, &out, &errOut)
	code := c.Run(context.Background(), []string{"unused"})
	if code != 0 {
		t.Fatalf("expected code 0, got %d", code)
	}
	if out.String() != "{\"ok\":true}\n" {
		t.Fatalf("unexpected output: %q", out.String())
	}
}
