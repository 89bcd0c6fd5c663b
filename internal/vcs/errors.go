package vcs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoTerminal is returned when an interactive command needs a terminal
	// but standard input is not one.
	ErrNoTerminal = errors.New("interactive command requires a terminal")

	// ErrUnsupportedGit is returned when the installed git is older than the
	// minimum version this package drives.
	ErrUnsupportedGit = errors.New("unsupported git version")

	// ErrNotRepository is returned when no .git is found at or above a
	// directory.
	ErrNotRepository = errors.New("not a git repository")
)

// SpawnError reports that the external tool could not be started, either
// because the binary is missing or because the directory is invalid.
type SpawnError struct {
	Binary string
	Dir    string
	Err    error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %s in %s: %v", e.Binary, e.Dir, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// EncodingError reports command output that is not valid UTF-8 text.
type EncodingError struct {
	Args   []string
	Offset int
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("output of %s is not valid UTF-8 at byte %d", strings.Join(e.Args, " "), e.Offset)
}

// ExitError reports a captured command that exited non-zero or was killed.
type ExitError struct {
	Args   []string
	Code   int
	Stderr string
	Err    error
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", strings.Join(e.Args, " "), e.Code)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ExitError) Unwrap() error { return e.Err }

// ParseError reports malformed diff, status or rebase bookkeeping text.
// Line is 1-based; zero means the error is not tied to a line.
type ParseError struct {
	Source string // "diff", "status", "rebase", "refs"
	File   string // file section or bookkeeping path, if known
	Line   int
	Text   string // offending line
	Reason string
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString(e.Source)
	b.WriteString(": ")
	b.WriteString(e.Reason)
	if e.File != "" {
		fmt.Fprintf(&b, " (file %s)", e.File)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d: %q", e.Line, e.Text)
	}
	return b.String()
}

// MissingRefError reports rebase bookkeeping that references an absent or
// unreadable companion file.
type MissingRefError struct {
	Path string
	Err  error
}

func (e *MissingRefError) Error() string {
	return fmt.Sprintf("missing rebase bookkeeping file %s: %v", e.Path, e.Err)
}

func (e *MissingRefError) Unwrap() error { return e.Err }
