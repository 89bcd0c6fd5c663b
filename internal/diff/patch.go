package diff

import (
	"bytes"

	"github.com/sergeknystautas/gitview/internal/vcs"
)

// Patch renders a single hunk of f as a patch that git apply accepts, for
// staging, unstaging or discarding one hunk at a time.
func Patch(f FileChange, h Hunk) []byte {
	oldPath, newPath := f.OldPath, f.NewPath
	if oldPath == "" {
		oldPath = newPath
	}
	if newPath == "" {
		newPath = oldPath
	}

	var b bytes.Buffer
	b.WriteString("diff --git ")
	b.WriteString(vcs.QuotePath("a/" + oldPath))
	b.WriteByte(' ')
	b.WriteString(vcs.QuotePath("b/" + newPath))
	b.WriteByte('\n')

	mode := f.Mode
	if mode == "" {
		mode = "100644"
	}
	switch f.Kind {
	case KindAdded:
		b.WriteString("new file mode " + mode + "\n")
	case KindDeleted:
		b.WriteString("deleted file mode " + mode + "\n")
	}

	if f.OldPath == "" {
		b.WriteString("--- /dev/null\n")
	} else {
		b.WriteString("--- " + vcs.QuotePath("a/"+f.OldPath) + "\n")
	}
	if f.NewPath == "" {
		b.WriteString("+++ /dev/null\n")
	} else {
		b.WriteString("+++ " + vcs.QuotePath("b/"+f.NewPath) + "\n")
	}

	b.WriteString(h.Header())
	b.WriteByte('\n')
	for _, l := range h.Lines {
		b.WriteByte(l.Kind.prefix())
		b.WriteString(l.Text)
		b.WriteByte('\n')
		if l.NoNewlineAtEOF {
			b.WriteString("\\ No newline at end of file\n")
		}
	}
	return b.Bytes()
}
