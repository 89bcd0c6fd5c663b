// Package status parses the output of git status --porcelain --branch.
package status

import (
	"fmt"
	"strings"
)

// HeadState describes what HEAD points at.
type HeadState int

const (
	// HeadAttached means HEAD is a branch with at least one commit.
	HeadAttached HeadState = iota
	// HeadDetached means HEAD points directly at a commit.
	HeadDetached
	// HeadUnborn means HEAD names a branch that has no commits yet.
	HeadUnborn
)

func (h HeadState) String() string {
	switch h {
	case HeadAttached:
		return "attached"
	case HeadDetached:
		return "detached"
	case HeadUnborn:
		return "unborn"
	default:
		return "unknown"
	}
}

// ChangeKind is the change recorded on one side (index or worktree) of an
// entry. Unchanged means there is no change on that side.
type ChangeKind int

const (
	Unchanged ChangeKind = iota
	Added
	Modified
	Deleted
	Renamed
	Copied
	TypeChanged
)

func (k ChangeKind) String() string {
	switch k {
	case Unchanged:
		return "unchanged"
	case Added:
		return "added"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	case Renamed:
		return "renamed"
	case Copied:
		return "copied"
	case TypeChanged:
		return "type changed"
	default:
		return "unknown"
	}
}

// ConflictKind names the unmerged state of a conflicted entry.
type ConflictKind int

const (
	NoConflict ConflictKind = iota
	BothDeleted
	AddedByUs
	DeletedByThem
	AddedByThem
	DeletedByUs
	BothAdded
	BothModified
)

func (k ConflictKind) String() string {
	switch k {
	case NoConflict:
		return "none"
	case BothDeleted:
		return "both deleted"
	case AddedByUs:
		return "added by us"
	case DeletedByThem:
		return "deleted by them"
	case AddedByThem:
		return "added by them"
	case DeletedByUs:
		return "deleted by us"
	case BothAdded:
		return "both added"
	case BothModified:
		return "both modified"
	default:
		return "unknown"
	}
}

// Status is the branch summary and per-path entries of a working tree.
type Status struct {
	Head HeadState

	// Branch is the checked out branch. Empty when HEAD is detached.
	Branch string

	// Upstream is the tracking branch, if one is configured.
	Upstream string

	// UpstreamGone reports that the configured upstream no longer exists.
	UpstreamGone bool

	Ahead  int
	Behind int

	Entries []Entry
}

// Entry is a single path reported by git status.
type Entry struct {
	Path string

	// RenameFrom is the source path of a rename or copy.
	RenameFrom string

	Staged   ChangeKind
	Unstaged ChangeKind

	Untracked  bool
	Ignored    bool
	Conflicted bool
	Conflict   ConflictKind
}

// Counts is a compact tally of a Status.
type Counts struct {
	Staged     int
	Unstaged   int
	Untracked  int
	Conflicted int
}

// Counts tallies the entries. A partially staged file counts as both
// staged and unstaged. Ignored entries are not counted.
func (s Status) Counts() Counts {
	var c Counts
	for _, e := range s.Entries {
		switch {
		case e.Conflicted:
			c.Conflicted++
		case e.Untracked:
			c.Untracked++
		default:
			if e.Staged != Unchanged {
				c.Staged++
			}
			if e.Unstaged != Unchanged {
				c.Unstaged++
			}
		}
	}
	return c
}

// Clean reports whether there is nothing to commit, stash or resolve.
// Untracked and ignored files do not make a tree dirty.
func (s Status) Clean() bool {
	c := s.Counts()
	return c.Staged == 0 && c.Unstaged == 0 && c.Conflicted == 0
}

// FormatBranch renders the branch line for display, e.g. "main",
// "main...origin/main [ahead 2, behind 1]", "(detached)".
func (s Status) FormatBranch() string {
	var b strings.Builder
	switch s.Head {
	case HeadDetached:
		return "(detached)"
	case HeadUnborn:
		b.WriteString(s.Branch + " (no commits yet)")
	default:
		b.WriteString(s.Branch)
	}
	if s.Upstream == "" {
		return b.String()
	}

	b.WriteString("..." + s.Upstream)
	var parts []string
	if s.UpstreamGone {
		parts = append(parts, "gone")
	}
	if s.Ahead > 0 {
		parts = append(parts, fmt.Sprintf("ahead %d", s.Ahead))
	}
	if s.Behind > 0 {
		parts = append(parts, fmt.Sprintf("behind %d", s.Behind))
	}
	if len(parts) > 0 {
		b.WriteString(" [" + strings.Join(parts, ", ") + "]")
	}
	return b.String()
}
