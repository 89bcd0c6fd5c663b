package status

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sergeknystautas/gitview/internal/vcs"
)

const headerPrefix = "## "

var unbornPrefixes = []string{"No commits yet on ", "Initial commit on "}

// conflictCodes are the unmerged XY pairs.
var conflictCodes = map[string]ConflictKind{
	"DD": BothDeleted,
	"AU": AddedByUs,
	"UD": DeletedByThem,
	"UA": AddedByThem,
	"DU": DeletedByUs,
	"AA": BothAdded,
	"UU": BothModified,
}

// Parse converts git status --porcelain --branch output into a Status. The
// first line must be the "## " branch header. Unknown status letters and
// unrecognised headers are a *vcs.ParseError; nothing is skipped.
func Parse(text string) (Status, error) {
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	if text == "" || !strings.HasPrefix(lines[0], headerPrefix) {
		first := ""
		if text != "" {
			first = lines[0]
		}
		return Status{}, parseErr(1, first, "missing branch header")
	}

	var st Status
	if err := parseHeader(&st, strings.TrimPrefix(lines[0], headerPrefix)); err != nil {
		return Status{}, parseErr(1, lines[0], err.Error())
	}

	for i, line := range lines[1:] {
		e, err := parseEntry(line)
		if err != nil {
			return Status{}, parseErr(i+2, line, err.Error())
		}
		st.Entries = append(st.Entries, e)
	}
	return st, nil
}

func parseErr(line int, text, reason string) *vcs.ParseError {
	return &vcs.ParseError{Source: "status", Line: line, Text: text, Reason: reason}
}

func parseHeader(st *Status, h string) error {
	if h == "HEAD (no branch)" {
		st.Head = HeadDetached
		return nil
	}

	st.Head = HeadAttached
	for _, prefix := range unbornPrefixes {
		if strings.HasPrefix(h, prefix) {
			st.Head = HeadUnborn
			h = strings.TrimPrefix(h, prefix)
			break
		}
	}

	branch, tracking, hasUpstream := strings.Cut(h, "...")
	if branch == "" || strings.ContainsAny(branch, " \t") {
		return fmt.Errorf("unrecognised branch header")
	}
	st.Branch = branch
	if !hasUpstream {
		return nil
	}

	upstream, counts, hasCounts := strings.Cut(tracking, " [")
	if upstream == "" || strings.ContainsAny(upstream, " \t") {
		return fmt.Errorf("malformed upstream")
	}
	st.Upstream = upstream
	if !hasCounts {
		return nil
	}
	if !strings.HasSuffix(counts, "]") {
		return fmt.Errorf("unterminated tracking info")
	}
	return parseTracking(st, strings.TrimSuffix(counts, "]"))
}

// parseTracking reads "ahead N", "behind M", "ahead N, behind M" or "gone".
func parseTracking(st *Status, s string) error {
	for _, part := range strings.Split(s, ", ") {
		if part == "gone" {
			st.UpstreamGone = true
			continue
		}
		word, num, ok := strings.Cut(part, " ")
		if !ok {
			return fmt.Errorf("malformed tracking info %q", part)
		}
		n, err := strconv.Atoi(num)
		if err != nil || n < 0 {
			return fmt.Errorf("malformed count in %q", part)
		}
		switch word {
		case "ahead":
			st.Ahead = n
		case "behind":
			st.Behind = n
		default:
			return fmt.Errorf("malformed tracking info %q", part)
		}
	}
	return nil
}

func parseEntry(line string) (Entry, error) {
	if len(line) < 4 || line[2] != ' ' {
		return Entry{}, fmt.Errorf("malformed status line")
	}
	code, field := line[:2], line[3:]
	x, y := code[0], code[1]

	var e Entry
	switch {
	case code == "!!":
		e.Ignored = true
	case x == '?' || y == '?':
		e.Untracked = true
	default:
		if kind, ok := conflictCodes[code]; ok {
			e.Conflicted = true
			e.Conflict = kind
			break
		}
		if x == 'U' || y == 'U' {
			return Entry{}, fmt.Errorf("unknown conflict code %q", code)
		}
		var err error
		if e.Staged, err = changeKind(x); err != nil {
			return Entry{}, err
		}
		if e.Unstaged, err = changeKind(y); err != nil {
			return Entry{}, err
		}
		if e.Staged == Unchanged && e.Unstaged == Unchanged {
			return Entry{}, fmt.Errorf("empty status code")
		}
	}

	var err error
	if x == 'R' || x == 'C' || y == 'R' || y == 'C' {
		e.RenameFrom, e.Path, err = splitRename(field)
	} else {
		e.Path, err = vcs.UnquotePath(field)
	}
	if err != nil {
		return Entry{}, err
	}
	if e.Path == "" {
		return Entry{}, fmt.Errorf("empty path")
	}
	return e, nil
}

func changeKind(c byte) (ChangeKind, error) {
	switch c {
	case ' ':
		return Unchanged, nil
	case 'A':
		return Added, nil
	case 'M':
		return Modified, nil
	case 'D':
		return Deleted, nil
	case 'R':
		return Renamed, nil
	case 'C':
		return Copied, nil
	case 'T':
		return TypeChanged, nil
	default:
		return Unchanged, fmt.Errorf("unknown status letter %q", c)
	}
}

// splitRename splits "<old> -> <new>", where either side may be quoted.
func splitRename(field string) (from, to string, err error) {
	const arrow = " -> "
	if strings.HasPrefix(field, `"`) {
		from, rest, err := vcs.SplitQuoted(field)
		if err != nil {
			return "", "", err
		}
		if !strings.HasPrefix(rest, arrow) {
			return "", "", fmt.Errorf("rename without %q", arrow)
		}
		to, err := vcs.UnquotePath(strings.TrimPrefix(rest, arrow))
		return from, to, err
	}

	from, rest, ok := strings.Cut(field, arrow)
	if !ok {
		return "", "", fmt.Errorf("rename without %q", arrow)
	}
	to, err = vcs.UnquotePath(rest)
	return from, to, err
}
