package main

import (
	"fmt"

	"github.com/sergeknystautas/gitview/internal/diff"
	"github.com/sergeknystautas/gitview/internal/rebase"
	"github.com/sergeknystautas/gitview/internal/status"
	"github.com/sergeknystautas/gitview/internal/workspace"
)

func changeLetter(k status.ChangeKind) string {
	switch k {
	case status.Added:
		return "A"
	case status.Modified:
		return "M"
	case status.Deleted:
		return "D"
	case status.Renamed:
		return "R"
	case status.Copied:
		return "C"
	case status.TypeChanged:
		return "T"
	default:
		return " "
	}
}

func entryPath(e status.Entry) string {
	if e.RenameFrom != "" {
		return e.RenameFrom + " -> " + e.Path
	}
	return e.Path
}

// renderStatus prints the branch line, any rebase in progress and the
// entries grouped the way git status groups them.
func renderStatus(t *termStyle, st status.Status, rb *rebase.Status) {
	t.KeyValue("Branch", t.Bold(st.FormatBranch()))
	if rb != nil {
		renderRebase(t, rb)
	}

	var staged, unstaged, untracked, conflicted []status.Entry
	for _, e := range st.Entries {
		switch {
		case e.Ignored:
		case e.Conflicted:
			conflicted = append(conflicted, e)
		case e.Untracked:
			untracked = append(untracked, e)
		default:
			if e.Staged != status.Unchanged {
				staged = append(staged, e)
			}
			if e.Unstaged != status.Unchanged {
				unstaged = append(unstaged, e)
			}
		}
	}

	if len(conflicted) > 0 {
		t.Blank()
		t.Header("Unmerged")
		for _, e := range conflicted {
			t.Printf("  %s %s\n", t.Red(fmt.Sprintf("%-16s", e.Conflict.String()+":")), e.Path)
		}
	}
	if len(staged) > 0 {
		t.Blank()
		t.Header("Staged changes")
		for _, e := range staged {
			t.Printf("  %s %s\n", t.Green(changeLetter(e.Staged)), entryPath(e))
		}
	}
	if len(unstaged) > 0 {
		t.Blank()
		t.Header("Unstaged changes")
		for _, e := range unstaged {
			t.Printf("  %s %s\n", t.Yellow(changeLetter(e.Unstaged)), entryPath(e))
		}
	}
	if len(untracked) > 0 {
		t.Blank()
		t.Header("Untracked files")
		for _, e := range untracked {
			t.Printf("  %s\n", t.Dim(e.Path))
		}
	}
	if len(st.Entries) == 0 {
		t.Blank()
		t.Println(t.Dim("nothing to commit, working tree clean"))
	}
}

func renderRebase(t *termStyle, rb *rebase.Status) {
	t.KeyValue("Rebasing", fmt.Sprintf("%s onto %s", t.Bold(rb.HeadName), t.Cyan(rb.Onto)))
	if len(rb.Done) > 0 || len(rb.Todo) > 0 {
		t.KeyValue("Progress", fmt.Sprintf("%d/%d", len(rb.Done), len(rb.Done)+len(rb.Todo)))
	}
	if len(rb.Done) > 0 {
		last := rb.Done[len(rb.Done)-1]
		t.KeyValue("Stopped at", fmt.Sprintf("%s %s %s", last.Action, rebase.Abbrev(last.Commit), last.Subject))
	}
}

// renderDiff prints a parsed diff with one coloured line per body line.
func renderDiff(t *termStyle, d diff.Diff) {
	for i, f := range d.Files {
		if i > 0 {
			t.Blank()
		}
		title := f.Path()
		if f.Kind == diff.KindRenamed || f.Kind == diff.KindCopied {
			title = fmt.Sprintf("%s -> %s (%d%%)", f.OldPath, f.NewPath, f.Similarity)
		}
		added, removed := f.Stats()
		t.Printf("%s %s %s\n", t.Bold(title), t.Dim(f.Kind.String()),
			t.Green(fmt.Sprintf("+%d", added))+" "+t.Red(fmt.Sprintf("-%d", removed)))

		for _, h := range f.Hunks {
			t.Println(t.Cyan(h.Header()))
			for _, l := range h.Lines {
				switch l.Kind {
				case diff.LineAdded:
					t.Println(t.Green("+" + l.Text))
				case diff.LineRemoved:
					t.Println(t.Red("-" + l.Text))
				default:
					t.Println(" " + l.Text)
				}
				if l.NoNewlineAtEOF {
					t.Println(t.Dim(`\ No newline at end of file`))
				}
			}
		}
	}
}

func renderBranches(t *termStyle, branches []workspace.Branch) {
	for _, b := range branches {
		upstream := ""
		if b.Upstream != "" {
			upstream = " " + t.Cyan("["+b.Upstream+"]")
		}
		t.Printf("  %s%s %s\n", t.Bold(b.Name), upstream, t.Dim(b.Subject))
	}
}
