package diff

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sergeknystautas/gitview/internal/vcs"
)

var hunkHeaderPattern = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@(?: ?(.*))?$`)

// Parse converts unified diff text, as printed by git diff or git show, into
// a Diff. Text before the first "diff --git" line (such as a commit header)
// is skipped. Hunk bodies are read by the counts in their header; any
// disagreement between body and header is a *vcs.ParseError.
func Parse(text string) (Diff, error) {
	p := &parser{}
	for i, line := range splitLines(text) {
		if err := p.feed(i+1, line); err != nil {
			return Diff{}, err
		}
	}
	if err := p.finish(); err != nil {
		return Diff{}, err
	}
	return Diff{Files: p.files}, nil
}

// splitLines splits on "\n", dropping the empty element after a trailing
// newline. Carriage returns are kept as content.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

type parser struct {
	files []FileChange

	file        *FileChange
	hunk        *Hunk
	oldLeft     int
	newLeft     int
	binaryPatch bool

	lineNo int
	line   string
}

func (p *parser) errorf(format string, args ...any) error {
	e := &vcs.ParseError{
		Source: "diff",
		Line:   p.lineNo,
		Text:   p.line,
		Reason: fmt.Sprintf(format, args...),
	}
	if p.file != nil {
		e.File = p.file.Path()
	}
	return e
}

func (p *parser) inBody() bool {
	return p.hunk != nil && (p.oldLeft > 0 || p.newLeft > 0)
}

func (p *parser) feed(lineNo int, line string) error {
	p.lineNo, p.line = lineNo, line

	if p.inBody() {
		return p.bodyLine(line)
	}

	switch {
	case strings.HasPrefix(line, `\`) && p.hunk != nil:
		return p.noNewline()
	case strings.HasPrefix(line, "diff --git "):
		p.closeFile()
		return p.startFile(strings.TrimPrefix(line, "diff --git "))
	case strings.HasPrefix(line, "diff --cc "), strings.HasPrefix(line, "diff --combined "):
		return p.errorf("combined diffs are not supported")
	}

	if p.file == nil {
		return nil
	}
	if p.binaryPatch {
		return nil
	}

	if strings.HasPrefix(line, "@@") {
		return p.startHunk(line)
	}

	if p.hunk != nil {
		// A completed hunk may only be followed by another hunk, a new file,
		// or text that is not part of the diff.
		if len(line) > 0 && (line[0] == ' ' || line[0] == '+' || line[0] == '-') {
			return p.errorf("hunk body exceeds header counts")
		}
		p.closeFile()
		return nil
	}

	return p.headerLine(line)
}

func (p *parser) bodyLine(line string) error {
	if line == "" {
		return p.errorf("unexpected empty line in hunk")
	}

	var kind LineKind
	switch line[0] {
	case ' ':
		if p.oldLeft == 0 || p.newLeft == 0 {
			return p.errorf("context line exceeds hunk header counts")
		}
		kind = LineContext
		p.oldLeft--
		p.newLeft--
	case '+':
		if p.newLeft == 0 {
			return p.errorf("added line exceeds hunk header count")
		}
		kind = LineAdded
		p.newLeft--
	case '-':
		if p.oldLeft == 0 {
			return p.errorf("removed line exceeds hunk header count")
		}
		kind = LineRemoved
		p.oldLeft--
	case '\\':
		return p.noNewline()
	case '@':
		if strings.HasPrefix(line, "@@") {
			return p.errorf("hunk ended early: %d old and %d new lines missing", p.oldLeft, p.newLeft)
		}
		return p.errorf("unexpected line in hunk")
	default:
		if strings.HasPrefix(line, "diff ") {
			return p.errorf("hunk ended early: %d old and %d new lines missing", p.oldLeft, p.newLeft)
		}
		return p.errorf("unexpected line in hunk")
	}

	p.hunk.Lines = append(p.hunk.Lines, Line{Kind: kind, Text: line[1:]})
	return nil
}

// noNewline applies a "\ No newline at end of file" marker to the body line
// before it.
func (p *parser) noNewline() error {
	if p.hunk == nil || len(p.hunk.Lines) == 0 {
		return p.errorf("no-newline marker without a preceding hunk line")
	}
	last := &p.hunk.Lines[len(p.hunk.Lines)-1]
	if last.NoNewlineAtEOF {
		return p.errorf("duplicate no-newline marker")
	}
	last.NoNewlineAtEOF = true
	return nil
}

func (p *parser) startFile(header string) error {
	oldPath, newPath, err := parseGitHeaderPaths(header)
	if err != nil {
		return p.errorf("malformed file header: %v", err)
	}
	p.file = &FileChange{OldPath: oldPath, NewPath: newPath}
	return nil
}

func (p *parser) startHunk(line string) error {
	m := hunkHeaderPattern.FindStringSubmatch(line)
	if m == nil {
		return p.errorf("malformed hunk header")
	}

	nums := [4]int{}
	for i, group := range m[1:5] {
		if group == "" {
			nums[i] = 1
			continue
		}
		n, err := strconv.Atoi(group)
		if err != nil {
			return p.errorf("malformed hunk header: %v", err)
		}
		nums[i] = n
	}

	if p.hunk != nil {
		p.file.Hunks = append(p.file.Hunks, *p.hunk)
	}
	p.hunk = &Hunk{
		OldStart: nums[0],
		OldCount: nums[1],
		NewStart: nums[2],
		NewCount: nums[3],
		Section:  m[5],
	}
	p.oldLeft, p.newLeft = nums[1], nums[3]
	return nil
}

func (p *parser) headerLine(line string) error {
	f := p.file
	switch {
	case strings.HasPrefix(line, "new file mode "):
		f.Kind = KindAdded
		f.OldPath = ""
		f.Mode = strings.TrimPrefix(line, "new file mode ")
	case strings.HasPrefix(line, "deleted file mode "):
		f.Kind = KindDeleted
		f.NewPath = ""
		f.Mode = strings.TrimPrefix(line, "deleted file mode ")
	case strings.HasPrefix(line, "similarity index "):
		pct := strings.TrimSuffix(strings.TrimPrefix(line, "similarity index "), "%")
		n, err := strconv.Atoi(pct)
		if err != nil || n < 0 || n > 100 {
			return p.errorf("malformed similarity index")
		}
		f.Similarity = n
	case strings.HasPrefix(line, "rename from "):
		return p.setPath(&f.OldPath, strings.TrimPrefix(line, "rename from "), KindRenamed)
	case strings.HasPrefix(line, "rename to "):
		return p.setPath(&f.NewPath, strings.TrimPrefix(line, "rename to "), KindRenamed)
	case strings.HasPrefix(line, "copy from "):
		return p.setPath(&f.OldPath, strings.TrimPrefix(line, "copy from "), KindCopied)
	case strings.HasPrefix(line, "copy to "):
		return p.setPath(&f.NewPath, strings.TrimPrefix(line, "copy to "), KindCopied)
	case strings.HasPrefix(line, "Binary files ") && strings.HasSuffix(line, " differ"):
		f.Kind = KindBinary
	case line == "GIT binary patch":
		f.Kind = KindBinary
		p.binaryPatch = true
	case strings.HasPrefix(line, "--- "):
		return p.markerPath(&f.OldPath, strings.TrimPrefix(line, "--- "), "a/")
	case strings.HasPrefix(line, "+++ "):
		return p.markerPath(&f.NewPath, strings.TrimPrefix(line, "+++ "), "b/")
	case strings.HasPrefix(line, "index "):
		if fields := strings.Fields(line); len(fields) == 3 {
			f.Mode = fields[2]
		}
	case strings.HasPrefix(line, "new mode "):
		f.Mode = strings.TrimPrefix(line, "new mode ")
	case strings.HasPrefix(line, "old mode "), strings.HasPrefix(line, "dissimilarity index "):
	default:
		// Not an extended header: the file section has ended without hunks
		// (e.g. a mode-only change followed by the next commit in git show).
		p.closeFile()
	}
	return nil
}

func (p *parser) setPath(dst *string, raw string, kind Kind) error {
	path, err := vcs.UnquotePath(raw)
	if err != nil {
		return p.errorf("malformed path: %v", err)
	}
	*dst = path
	p.file.Kind = kind
	return nil
}

// markerPath applies a "---" or "+++" line. /dev/null clears the side.
func (p *parser) markerPath(dst *string, raw, prefix string) error {
	// git appends a tab when the path contains spaces in some configurations.
	raw = strings.TrimSuffix(raw, "\t")
	if raw == "/dev/null" {
		*dst = ""
		return nil
	}
	path, err := vcs.UnquotePath(raw)
	if err != nil {
		return p.errorf("malformed path: %v", err)
	}
	*dst = strings.TrimPrefix(path, prefix)
	return nil
}

func (p *parser) closeFile() {
	if p.file == nil {
		return
	}
	if p.hunk != nil {
		p.file.Hunks = append(p.file.Hunks, *p.hunk)
	}
	if !p.file.HasSimilarity() {
		p.file.Similarity = 0
	}
	p.files = append(p.files, *p.file)
	p.file = nil
	p.hunk = nil
	p.oldLeft, p.newLeft = 0, 0
	p.binaryPatch = false
}

func (p *parser) finish() error {
	if p.inBody() {
		p.lineNo++
		p.line = ""
		return p.errorf("unexpected end of input: %d old and %d new lines missing", p.oldLeft, p.newLeft)
	}
	p.closeFile()
	return nil
}

// parseGitHeaderPaths splits the "a/<old> b/<new>" part of a "diff --git"
// line. Either path may be C-quoted. For unquoted paths containing spaces
// the split is ambiguous; the split where both sides name the same path is
// preferred, then the first " b/".
func parseGitHeaderPaths(s string) (oldPath, newPath string, err error) {
	if strings.HasPrefix(s, `"`) {
		oldPath, rest, err := vcs.SplitQuoted(s)
		if err != nil {
			return "", "", err
		}
		if !strings.HasPrefix(rest, " ") {
			return "", "", fmt.Errorf("missing new path")
		}
		newPath, err := vcs.UnquotePath(rest[1:])
		if err != nil {
			return "", "", err
		}
		return strings.TrimPrefix(oldPath, "a/"), strings.TrimPrefix(newPath, "b/"), nil
	}

	if i := strings.Index(s, ` "`); i >= 0 {
		newPath, err := vcs.UnquotePath(s[i+1:])
		if err != nil {
			return "", "", err
		}
		return strings.TrimPrefix(s[:i], "a/"), strings.TrimPrefix(newPath, "b/"), nil
	}

	firstB := -1
	for i := 0; i < len(s); i++ {
		if s[i] != ' ' {
			continue
		}
		oldPath := strings.TrimPrefix(s[:i], "a/")
		newPath := strings.TrimPrefix(s[i+1:], "b/")
		if oldPath == newPath && oldPath != "" {
			return oldPath, newPath, nil
		}
		if firstB < 0 && strings.HasPrefix(s[i+1:], "b/") {
			firstB = i
		}
	}
	if firstB >= 0 {
		return strings.TrimPrefix(s[:firstB], "a/"), s[firstB+3:], nil
	}
	return "", "", fmt.Errorf("cannot split paths in %q", s)
}
