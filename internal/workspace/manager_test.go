package workspace

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/sergeknystautas/gitview/internal/diff"
	"github.com/sergeknystautas/gitview/internal/runner"
	"github.com/sergeknystautas/gitview/internal/status"
	"github.com/sergeknystautas/gitview/internal/vcs"
)

// numberedLines returns n lines "line 1".."line n", with replacements.
func numberedLines(n int, replace map[int]string) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		if r, ok := replace[i]; ok {
			b.WriteString(r + "\n")
			continue
		}
		fmt.Fprintf(&b, "line %d\n", i)
	}
	return b.String()
}

func TestManager_Status(t *testing.T) {
	dir := gitTestWorkTree(t)
	m := testManager(t)
	ctx := context.Background()

	writeFile(t, dir, "README.md", "changed\n")
	writeFile(t, dir, "staged.txt", "new\n")
	runGit(t, dir, "add", "staged.txt")
	writeFile(t, dir, "untracked file.txt", "?\n")

	st, err := m.Status(ctx, dir)
	if err != nil {
		t.Fatalf("Status() error: %v", err)
	}
	if st.Head != status.HeadAttached || st.Branch != "main" || st.Upstream != "" {
		t.Errorf("branch = %+v", st)
	}

	want := []status.Entry{
		{Path: "README.md", Unstaged: status.Modified},
		{Path: "staged.txt", Staged: status.Added},
		{Path: "untracked file.txt", Untracked: true},
	}
	if !reflect.DeepEqual(st.Entries, want) {
		t.Errorf("Entries = %+v\nwant %+v", st.Entries, want)
	}
}

func TestManager_StatusDetachedAndRename(t *testing.T) {
	dir := gitTestWorkTree(t)
	m := testManager(t)
	ctx := context.Background()

	runGit(t, dir, "checkout", "--detach")
	runGit(t, dir, "mv", "README.md", "READ ME.md")

	st, err := m.Status(ctx, dir)
	if err != nil {
		t.Fatalf("Status() error: %v", err)
	}
	if st.Head != status.HeadDetached || st.Branch != "" {
		t.Errorf("head = %v %q, want detached", st.Head, st.Branch)
	}
	if len(st.Entries) != 1 {
		t.Fatalf("Entries = %+v", st.Entries)
	}
	e := st.Entries[0]
	if e.Staged != status.Renamed || e.RenameFrom != "README.md" || e.Path != "READ ME.md" {
		t.Errorf("rename entry = %+v", e)
	}
}

func TestManager_DiffAndHunkStaging(t *testing.T) {
	dir := gitTestWorkTree(t)
	m := testManager(t)
	ctx := context.Background()

	writeFile(t, dir, "lines.txt", numberedLines(20, nil))
	runGit(t, dir, "add", "lines.txt")
	runGit(t, dir, "commit", "-m", "add lines")

	writeFile(t, dir, "lines.txt", numberedLines(20, map[int]string{2: "line two", 18: "line eighteen"}))

	unstaged, err := m.DiffUnstaged(ctx, dir)
	if err != nil {
		t.Fatalf("DiffUnstaged() error: %v", err)
	}
	if len(unstaged.Files) != 1 || len(unstaged.Files[0].Hunks) != 2 {
		t.Fatalf("DiffUnstaged() = %+v, want one file with two hunks", unstaged)
	}
	f := unstaged.Files[0]
	for _, h := range f.Hunks {
		if err := h.Reconcile(); err != nil {
			t.Errorf("hunk does not reconcile: %v", err)
		}
	}

	if err := m.StageHunk(ctx, dir, f, f.Hunks[0]); err != nil {
		t.Fatalf("StageHunk() error: %v", err)
	}

	staged, err := m.DiffStaged(ctx, dir)
	if err != nil {
		t.Fatalf("DiffStaged() error: %v", err)
	}
	if len(staged.Files) != 1 || len(staged.Files[0].Hunks) != 1 {
		t.Fatalf("DiffStaged() = %+v, want one hunk", staged)
	}
	if added, removed := staged.Stats(); added != 1 || removed != 1 {
		t.Errorf("staged stats = +%d -%d", added, removed)
	}

	unstaged, err = m.DiffUnstaged(ctx, dir)
	if err != nil {
		t.Fatalf("DiffUnstaged() error: %v", err)
	}
	if len(unstaged.Files) != 1 || len(unstaged.Files[0].Hunks) != 1 || unstaged.Files[0].Hunks[0].OldStart < 15 {
		t.Fatalf("DiffUnstaged() after staging = %+v", unstaged)
	}

	st, err := m.Status(ctx, dir)
	if err != nil {
		t.Fatalf("Status() error: %v", err)
	}
	if e := st.Entries[0]; e.Staged != status.Modified || e.Unstaged != status.Modified {
		t.Errorf("partially staged entry = %+v", e)
	}

	sf := staged.Files[0]
	if err := m.UnstageHunk(ctx, dir, sf, sf.Hunks[0]); err != nil {
		t.Fatalf("UnstageHunk() error: %v", err)
	}
	if staged, _ = m.DiffStaged(ctx, dir); len(staged.Files) != 0 {
		t.Errorf("DiffStaged() after unstage = %+v", staged)
	}

	unstaged, _ = m.DiffUnstaged(ctx, dir)
	uf := unstaged.Files[0]
	if err := m.DiscardHunk(ctx, dir, uf, uf.Hunks[1]); err != nil {
		t.Fatalf("DiscardHunk() error: %v", err)
	}
	want := numberedLines(20, map[int]string{2: "line two"})
	if got := readFile(t, dir, "lines.txt"); got != want {
		t.Errorf("after discard:\n%s\nwant:\n%s", got, want)
	}
}

func TestManager_FileOperations(t *testing.T) {
	dir := gitTestWorkTree(t)
	m := testManager(t)
	ctx := context.Background()

	writeFile(t, dir, "README.md", "edited\n")

	if err := m.StageFile(ctx, dir, "README.md"); err != nil {
		t.Fatalf("StageFile() error: %v", err)
	}
	if d, _ := m.DiffStaged(ctx, dir); len(d.Files) != 1 {
		t.Errorf("DiffStaged() after StageFile = %+v", d)
	}

	if err := m.UnstageFile(ctx, dir, "README.md"); err != nil {
		t.Fatalf("UnstageFile() error: %v", err)
	}
	if d, _ := m.DiffStaged(ctx, dir); len(d.Files) != 0 {
		t.Errorf("DiffStaged() after UnstageFile = %+v", d)
	}

	if err := m.DiscardFile(ctx, dir, "README.md"); err != nil {
		t.Fatalf("DiscardFile() error: %v", err)
	}
	if got := readFile(t, dir, "README.md"); got != "test repo\n" {
		t.Errorf("README.md after discard = %q", got)
	}
}

func TestManager_ShowAndLog(t *testing.T) {
	dir := gitTestWorkTree(t)
	m := testManager(t)
	ctx := context.Background()

	d, err := m.Show(ctx, dir, "HEAD")
	if err != nil {
		t.Fatalf("Show() error: %v", err)
	}
	if len(d.Files) != 1 || d.Files[0].Kind != diff.KindAdded || d.Files[0].NewPath != "README.md" {
		t.Errorf("Show(HEAD) = %+v", d)
	}

	log, err := m.LogRecent(ctx, dir)
	if err != nil {
		t.Fatalf("LogRecent() error: %v", err)
	}
	if !strings.Contains(log, "initial") {
		t.Errorf("LogRecent() = %q", log)
	}

	summary, err := m.ShowSummary(ctx, dir, "HEAD")
	if err != nil {
		t.Fatalf("ShowSummary() error: %v", err)
	}
	if !strings.Contains(summary, "initial") {
		t.Errorf("ShowSummary() = %q", summary)
	}

	if _, err := m.Log(ctx, dir, "no-such-revision"); err == nil {
		t.Error("Log() of a bad revision should fail")
	}
}

func TestManager_DiffFailureIsExitError(t *testing.T) {
	dir := gitTestWorkTree(t)
	m := testManager(t)

	_, err := m.Diff(context.Background(), dir, "no-such-rev..HEAD")
	var exitErr *vcs.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Diff() err = %v, want *vcs.ExitError", err)
	}
	if exitErr.Code == 0 || exitErr.Stderr == "" {
		t.Errorf("ExitError = %+v", exitErr)
	}
}

func TestManager_MissingDirIsSpawnError(t *testing.T) {
	requireGit(t)
	m := testManager(t)

	_, err := m.Status(context.Background(), filepath.Join(t.TempDir(), "gone"))
	var spawnErr *vcs.SpawnError
	if !errors.As(err, &spawnErr) {
		t.Errorf("Status() err = %v, want *vcs.SpawnError", err)
	}
}

func TestManager_BranchesAndRefs(t *testing.T) {
	dir := gitTestWorkTree(t)
	m := testManager(t)
	ctx := context.Background()

	gitTestBranch(t, dir, "feature")

	branches, err := m.Branches(ctx, dir)
	if err != nil {
		t.Fatalf("Branches() error: %v", err)
	}
	names := map[string]Branch{}
	for _, b := range branches {
		names[b.Name] = b
	}
	if names["feature"].Subject != "feature" || names["main"].Subject != "initial" {
		t.Errorf("Branches() = %+v", branches)
	}

	refs, err := m.ListRefs(ctx, dir)
	if err != nil {
		t.Fatalf("ListRefs() error: %v", err)
	}
	head := gitOutput(t, dir, "rev-parse", "main")
	found := false
	for _, r := range refs {
		if r.Name == "main" && r.Hash == head {
			found = true
		}
	}
	if !found {
		t.Errorf("ListRefs() = %+v, missing main at %s", refs, head)
	}
}

func TestManager_RebaseStatus(t *testing.T) {
	dir := gitTestWorkTree(t)
	m := testManager(t)
	ctx := context.Background()

	st, err := m.RebaseStatus(ctx, dir)
	if err != nil || st != nil {
		t.Fatalf("RebaseStatus() = %+v, %v; want nil, nil", st, err)
	}

	// Stop an interactive rebase on its first commit with "edit".
	gitTestBranch(t, dir, "topic")
	runGit(t, dir, "checkout", "topic")
	t.Setenv("GIT_SEQUENCE_EDITOR", "sed -i -e 's/^pick/edit/'")
	runGit(t, dir, "rebase", "-i", "main~0")

	st, err = m.RebaseStatus(ctx, dir)
	if err != nil {
		t.Fatalf("RebaseStatus() error: %v", err)
	}
	if st == nil {
		t.Fatal("RebaseStatus() = nil during rebase")
	}
	if st.HeadName != "topic" || st.Onto != "main" {
		t.Errorf("RebaseStatus() = %+v", st)
	}

	if err := m.Run(ctx, dir, m.Builder().RebaseAbort()); err != nil {
		t.Fatalf("RebaseAbort error: %v", err)
	}
	if st, _ := m.RebaseStatus(ctx, dir); st != nil {
		t.Errorf("RebaseStatus() after abort = %+v", st)
	}
}

func TestManager_InteractiveNeedsTerminal(t *testing.T) {
	dir := gitTestWorkTree(t)
	m := testManager(t)

	err := m.Run(context.Background(), dir, m.Builder().Commit())
	if !errors.Is(err, vcs.ErrNoTerminal) {
		t.Errorf("Commit without a terminal err = %v, want ErrNoTerminal", err)
	}
}

func TestManager_RunPTY(t *testing.T) {
	dir := gitTestWorkTree(t)
	t.Setenv("GIT_EDITOR", "true")
	m := testManager(t)
	var out bytes.Buffer
	m.SetStdio(runner.Stdio{In: strings.NewReader(""), Out: &out, Err: &out})

	writeFile(t, dir, "README.md", "fixed\n")
	runGit(t, dir, "add", "README.md")

	// The same command is refused by Run without a terminal.
	if err := m.RunPTY(context.Background(), dir, m.Builder().CommitFixup("HEAD"), 0, 0); err != nil {
		t.Fatalf("RunPTY() error: %v\n%s", err, out.String())
	}
	if got := gitOutput(t, dir, "log", "-1", "--format=%s"); got != "fixup! initial" {
		t.Errorf("subject = %q, want %q", got, "fixup! initial")
	}

	err := m.RunPTY(context.Background(), dir, m.Builder().CheckoutRef("no-such-branch"), 0, 0)
	var exitErr *vcs.ExitError
	if !errors.As(err, &exitErr) {
		t.Errorf("RunPTY() bad ref err = %v, want *vcs.ExitError", err)
	}
}

func TestManager_CheckGitVersion(t *testing.T) {
	dir := gitTestWorkTree(t)
	m := testManager(t)

	v, err := m.GitVersion(context.Background(), dir)
	if err != nil {
		t.Fatalf("GitVersion() error: %v", err)
	}
	if v.Major() < 2 {
		t.Skipf("git %s is too old for this suite", v)
	}
	if err := m.CheckGitVersion(context.Background(), dir); err != nil && !errors.Is(err, vcs.ErrUnsupportedGit) {
		t.Errorf("CheckGitVersion() error: %v", err)
	}
}

func TestParseBranches(t *testing.T) {
	out := "feature origin/feature Add the thing\nlocal-only  WIP: spaces in subject\n\n"
	got, err := parseBranches(out)
	if err != nil {
		t.Fatalf("parseBranches() error: %v", err)
	}
	want := []Branch{
		{Name: "feature", Upstream: "origin/feature", Subject: "Add the thing"},
		{Name: "local-only", Upstream: "", Subject: "WIP: spaces in subject"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseBranches() = %+v, want %+v", got, want)
	}

	if _, err := parseBranches("nospaces\n"); err == nil {
		t.Error("expected error for a line without fields")
	}
}
