// Package vcs provides a command builder abstraction for version control systems.
// It generates argument vectors for VCS operations and classifies each one as
// either a Capture (output is read and parsed) or an Interactive command (run
// by the caller with a real terminal or as a fire-and-forget mutation).
package vcs

import "strings"

// Capture describes a command whose standard output is captured and parsed.
type Capture struct {
	Binary string
	Args   []string
}

// With returns a copy of c with extra arguments appended verbatim.
func (c Capture) With(extra ...string) Capture {
	return Capture{Binary: c.Binary, Args: appendArgs(c.Args, extra)}
}

func (c Capture) String() string {
	return joinCommand(c.Binary, c.Args)
}

// Interactive describes a command the caller runs itself, either with
// inherited stdio or on a pseudo-terminal. Stdin, when set, is piped to the
// process instead of the terminal (patch application). NeedsTerminal marks
// commands that may open an editor or prompt for credentials.
type Interactive struct {
	Binary        string
	Args          []string
	Stdin         []byte
	NeedsTerminal bool
}

// With returns a copy of c with extra arguments appended verbatim.
func (c Interactive) With(extra ...string) Interactive {
	c.Args = appendArgs(c.Args, extra)
	return c
}

func (c Interactive) String() string {
	return joinCommand(c.Binary, c.Args)
}

// CommandBuilder generates command descriptors for VCS operations.
type CommandBuilder interface {
	// Status returns the porcelain status command with a branch header.
	Status() Capture
	// DiffUnstaged returns the diff of the working tree against the index.
	DiffUnstaged() Capture
	// DiffStaged returns the diff of the index against HEAD.
	DiffStaged() Capture
	// Diff returns a diff with caller-supplied arguments (ranges, paths).
	Diff(args ...string) Capture
	// Show returns the patch for a commit or other object.
	Show(args ...string) Capture
	// ShowSummary returns the decorated, coloured summary of a commit.
	ShowSummary(args ...string) Capture
	// Log returns a one-line decorated log.
	Log(args ...string) Capture
	// LogRecent returns the five most recent commits.
	LogRecent() Capture
	// ListRefs lists every ref as "<hash> <short name>".
	ListRefs() Capture
	// BranchRefs lists local branches, newest first, as
	// "<branch> <upstream> <subject>".
	BranchRefs() Capture
	// Version returns the command that prints the tool version.
	Version() Capture

	StageFile(path string) Interactive
	StagePatch(patch []byte) Interactive
	UnstageFile(path string) Interactive
	UnstagePatch(patch []byte) Interactive
	DiscardUnstagedPatch(patch []byte) Interactive
	CheckoutFile(path string) Interactive
	CheckoutRef(ref string) Interactive
	Commit() Interactive
	CommitAmend() Interactive
	CommitFixup(ref string) Interactive
	Push() Interactive
	Pull() Interactive
	FetchAll() Interactive
	// RebaseInteractive starts an interactive rebase. Local modifications are
	// always auto-stashed.
	RebaseInteractive(ref string) Interactive
	// RebaseAutosquash starts an interactive rebase that applies fixup
	// commits. Local modifications are always auto-stashed.
	RebaseAutosquash(ref string) Interactive
	RebaseContinue() Interactive
	RebaseAbort() Interactive
}

func appendArgs(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	out = append(out, base...)
	return append(out, extra...)
}

func joinCommand(binary string, args []string) string {
	return strings.TrimSpace(binary + " " + strings.Join(args, " "))
}
