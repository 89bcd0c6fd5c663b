package vcs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestResolveGitDir_Directory(t *testing.T) {
	root := t.TempDir()
	gitDir := filepath.Join(root, ".git")
	if err := os.MkdirAll(filepath.Join(gitDir, "refs"), 0o755); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	for _, dir := range []string{root, sub} {
		got, err := ResolveGitDir(dir)
		if err != nil {
			t.Fatalf("ResolveGitDir(%s) error: %v", dir, err)
		}
		if got != gitDir {
			t.Errorf("ResolveGitDir(%s) = %s, want %s", dir, got, gitDir)
		}
	}
	if SharedRefsDir(gitDir) != "" {
		t.Error("SharedRefsDir of a plain clone should be empty")
	}
}

func TestResolveGitDir_Worktree(t *testing.T) {
	root := t.TempDir()
	base := filepath.Join(root, "base")
	wtGitDir := filepath.Join(base, ".git", "worktrees", "feature")
	if err := os.MkdirAll(wtGitDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(base, ".git", "refs"), 0o755); err != nil {
		t.Fatal(err)
	}

	wt := filepath.Join(root, "feature")
	if err := os.MkdirAll(wt, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(wt, ".git"), []byte("gitdir: ../base/.git/worktrees/feature\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ResolveGitDir(wt)
	if err != nil {
		t.Fatalf("ResolveGitDir() error: %v", err)
	}
	if got != wtGitDir {
		t.Errorf("ResolveGitDir() = %s, want %s", got, wtGitDir)
	}
	if refs := SharedRefsDir(got); refs != filepath.Join(base, ".git", "refs") {
		t.Errorf("SharedRefsDir() = %q", refs)
	}
}

func TestResolveGitDir_Errors(t *testing.T) {
	bad := t.TempDir()
	if err := os.WriteFile(filepath.Join(bad, ".git"), []byte("nonsense"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ResolveGitDir(bad); err == nil {
		t.Error("expected error for malformed .git file")
	}

	dangling := t.TempDir()
	if err := os.WriteFile(filepath.Join(dangling, ".git"), []byte("gitdir: /does/not/exist"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ResolveGitDir(dangling); err == nil {
		t.Error("expected error for dangling gitdir")
	}
}

func TestResolveGitDir_NotRepository(t *testing.T) {
	// The temp dir may itself live inside a repository on some machines.
	dir := t.TempDir()
	if _, err := ResolveGitDir("/"); err == nil {
		t.Skip("filesystem root is inside a git repository")
	}
	_, err := ResolveGitDir(dir)
	if err != nil && !errors.Is(err, ErrNotRepository) {
		t.Errorf("err = %v, want ErrNotRepository", err)
	}
}
