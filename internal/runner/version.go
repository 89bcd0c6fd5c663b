package runner

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/sergeknystautas/gitview/internal/vcs"
)

// MinGitVersion is the oldest git this package drives ("git restore" and
// "git status --porcelain --branch" with "No commits yet").
const MinGitVersion = "2.23.0"

// ParseGitVersion extracts the version from "git --version" output, e.g.
// "git version 2.39.2 (Apple Git-143)" or "git version 2.45.1.windows.1".
func ParseGitVersion(output string) (*semver.Version, error) {
	fields := strings.Fields(strings.TrimSpace(output))
	if len(fields) < 3 || fields[0] != "git" || fields[1] != "version" {
		return nil, fmt.Errorf("unrecognized git version output %q", strings.TrimSpace(output))
	}

	// Keep the numeric major.minor.patch prefix; vendors append extra parts.
	parts := strings.Split(fields[2], ".")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	v, err := semver.NewVersion(strings.Join(parts, "."))
	if err != nil {
		return nil, fmt.Errorf("parse git version %q: %w", fields[2], err)
	}
	return v, nil
}

// GitVersion runs the builder's version command in dir and parses it.
func GitVersion(ctx context.Context, r Runner, b vcs.CommandBuilder, dir string) (*semver.Version, error) {
	out, err := CaptureText(ctx, r, dir, b.Version())
	if err != nil {
		return nil, err
	}
	return ParseGitVersion(out)
}

// CheckGitVersion fails with vcs.ErrUnsupportedGit when the installed git is
// older than MinGitVersion.
func CheckGitVersion(ctx context.Context, r Runner, b vcs.CommandBuilder, dir string) (*semver.Version, error) {
	v, err := GitVersion(ctx, r, b, dir)
	if err != nil {
		return nil, err
	}
	constraint, err := semver.NewConstraint(">= " + MinGitVersion)
	if err != nil {
		return nil, err
	}
	if !constraint.Check(v) {
		return v, fmt.Errorf("%w: git %s is older than %s", vcs.ErrUnsupportedGit, v, MinGitVersion)
	}
	return v, nil
}
