package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/ben-ranford/fenceguard/internal/app"
)

// ErrHelpRequested signals that the caller asked for usage text rather
// than a run.
var ErrHelpRequested = errors.New("help requested")

// ParseArgs turns a raw argument list into an app.Request.
func ParseArgs(args []string) (app.Request, error) {
	req := app.DefaultRequest()
	if len(args) == 0 {
		return req, nil
	}

	if isHelpArg(args[0]) {
		return req, ErrHelpRequested
	}

	switch args[0] {
	case "check":
		return parseCheck(args[1:], req)
	case "unused":
		return parseUnused(args[1:], req)
	default:
		return req, fmt.Errorf("unknown command: %s", args[0])
	}
}

func parseCheck(args []string, req app.Request) (app.Request, error) {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	repoPath := fs.String("repo", req.RepoPath, "repository path")
	configPath := fs.String("config", req.ConfigPath, "config file path")
	formatFlag := fs.String("format", string(req.Format), "output format (json or sarif)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return req, ErrHelpRequested
		}
		return req, err
	}
	if fs.NArg() > 0 {
		return req, fmt.Errorf("unexpected arguments for check")
	}

	format, err := app.ParseFormat(*formatFlag)
	if err != nil {
		return req, err
	}

	req.Mode = app.ModeCheck
	req.RepoPath = strings.TrimSpace(*repoPath)
	req.ConfigPath = strings.TrimSpace(*configPath)
	req.Format = format
	return req, nil
}

func parseUnused(args []string, req app.Request) (app.Request, error) {
	fs := flag.NewFlagSet("unused", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	repoPath := fs.String("repo", req.RepoPath, "repository path")
	configPath := fs.String("config", req.ConfigPath, "config file path")
	allowlistPath := fs.String("allowlist", req.AllowlistPath, "allowlist file path")
	formatFlag := fs.String("format", string(req.Format), "output format (json or sarif)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return req, ErrHelpRequested
		}
		return req, err
	}
	if fs.NArg() > 0 {
		return req, fmt.Errorf("unexpected arguments for unused")
	}

	format, err := app.ParseFormat(*formatFlag)
	if err != nil {
		return req, err
	}

	req.Mode = app.ModeUnused
	req.RepoPath = strings.TrimSpace(*repoPath)
	req.ConfigPath = strings.TrimSpace(*configPath)
	req.AllowlistPath = strings.TrimSpace(*allowlistPath)
	req.Format = format
	return req, nil
}

func isHelpArg(arg string) bool {
	switch arg {
	case "-h", "--help", "help":
		return true
	default:
		return false
	}
}
