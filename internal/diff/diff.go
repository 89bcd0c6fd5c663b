// Package diff parses git's unified diff output into file changes and hunks.
package diff

import (
	"fmt"

	"github.com/sergeknystautas/gitview/internal/vcs"
)

// Kind is the type of change a FileChange describes.
type Kind int

const (
	KindModified Kind = iota
	KindAdded
	KindDeleted
	KindRenamed
	KindCopied
	KindBinary
)

// String returns the string representation of a Kind.
func (k Kind) String() string {
	switch k {
	case KindModified:
		return "modified"
	case KindAdded:
		return "added"
	case KindDeleted:
		return "deleted"
	case KindRenamed:
		return "renamed"
	case KindCopied:
		return "copied"
	case KindBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// LineKind is the type of a hunk body line.
type LineKind int

const (
	LineContext LineKind = iota
	LineAdded
	LineRemoved
)

// String returns the string representation of a LineKind.
func (k LineKind) String() string {
	switch k {
	case LineContext:
		return "context"
	case LineAdded:
		return "added"
	case LineRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// prefix is the unified diff prefix character for the line kind.
func (k LineKind) prefix() byte {
	switch k {
	case LineAdded:
		return '+'
	case LineRemoved:
		return '-'
	default:
		return ' '
	}
}

// Diff is an ordered sequence of file changes, in the order git printed them.
type Diff struct {
	Files []FileChange
}

// Stats returns the number of added and removed lines across all files.
func (d Diff) Stats() (added, removed int) {
	for _, f := range d.Files {
		a, r := f.Stats()
		added += a
		removed += r
	}
	return added, removed
}

// FileChange is the diff of a single file.
type FileChange struct {
	// OldPath is the path before the change. Empty when the file did not
	// exist on the old side.
	OldPath string

	// NewPath is the path after the change. Empty when the file does not
	// exist on the new side.
	NewPath string

	Kind Kind

	// Similarity is the similarity percentage of a rename or copy.
	Similarity int

	// Mode is the file mode reported by git ("100644", "100755", ...), if any.
	Mode string

	Hunks []Hunk
}

// Path returns the path that best identifies the file: the new path, or the
// old path for deletions.
func (f FileChange) Path() string {
	if f.NewPath != "" {
		return f.NewPath
	}
	return f.OldPath
}

// HasSimilarity reports whether Similarity is meaningful for this change.
func (f FileChange) HasSimilarity() bool {
	return f.Kind == KindRenamed || f.Kind == KindCopied
}

// Stats returns the number of added and removed lines in the file.
func (f FileChange) Stats() (added, removed int) {
	for _, h := range f.Hunks {
		for _, l := range h.Lines {
			switch l.Kind {
			case LineAdded:
				added++
			case LineRemoved:
				removed++
			}
		}
	}
	return added, removed
}

// Hunk is a contiguous block of changed lines.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int

	// Section is the function context git prints after the header, if any.
	Section string

	Lines []Line
}

// Reconcile checks that the body lines agree with the header counts:
// context and removed lines make up OldCount, context and added lines
// make up NewCount.
func (h Hunk) Reconcile() error {
	var oldSeen, newSeen int
	for _, l := range h.Lines {
		switch l.Kind {
		case LineContext:
			oldSeen++
			newSeen++
		case LineAdded:
			newSeen++
		case LineRemoved:
			oldSeen++
		}
	}
	if oldSeen != h.OldCount || newSeen != h.NewCount {
		return &vcs.ParseError{
			Source: "diff",
			Reason: fmt.Sprintf("hunk %s has %d old and %d new lines", h.Header(), oldSeen, newSeen),
		}
	}
	return nil
}

// Header renders the hunk header line, e.g. "@@ -1,3 +1,4 @@ func main() {".
func (h Hunk) Header() string {
	s := fmt.Sprintf("@@ -%s +%s @@", hunkRange(h.OldStart, h.OldCount), hunkRange(h.NewStart, h.NewCount))
	if h.Section != "" {
		s += " " + h.Section
	}
	return s
}

func hunkRange(start, count int) string {
	if count == 1 {
		return fmt.Sprintf("%d", start)
	}
	return fmt.Sprintf("%d,%d", start, count)
}

// Line is a single hunk body line. Text excludes the prefix character and
// the trailing newline.
type Line struct {
	Kind           LineKind
	Text           string
	NoNewlineAtEOF bool
}
