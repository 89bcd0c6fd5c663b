package vcs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolveGitDir returns the git directory for the repository containing dir.
// It walks up from dir to the first .git entry. For regular clones this is
// the .git directory; for worktrees .git is a file containing
// "gitdir: <path>", which is resolved relative to the file.
func ResolveGitDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	for cur := abs; ; {
		dotGit := filepath.Join(cur, ".git")
		info, err := os.Lstat(dotGit)
		if err == nil {
			if info.IsDir() {
				return dotGit, nil
			}
			return readGitFile(cur, dotGit)
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to stat %s: %w", dotGit, err)
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return "", fmt.Errorf("%s: %w", dir, ErrNotRepository)
		}
		cur = parent
	}
}

func readGitFile(worktree, dotGit string) (string, error) {
	data, err := os.ReadFile(dotGit)
	if err != nil {
		return "", fmt.Errorf("failed to read .git file: %w", err)
	}

	content := strings.TrimSpace(string(data))
	if !strings.HasPrefix(content, "gitdir: ") {
		return "", fmt.Errorf("unexpected .git file content: %s", content)
	}

	gitDir := strings.TrimPrefix(content, "gitdir: ")
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(worktree, gitDir)
	}
	gitDir = filepath.Clean(gitDir)

	if _, err := os.Stat(gitDir); err != nil {
		return "", fmt.Errorf("resolved gitdir does not exist: %s: %w", gitDir, err)
	}
	return gitDir, nil
}

// SharedRefsDir returns the refs/ directory of the main repository when
// gitDir is a worktree gitdir (<repo>/worktrees/<name>), or "" otherwise.
func SharedRefsDir(gitDir string) string {
	parent := filepath.Dir(gitDir)
	if filepath.Base(parent) != "worktrees" {
		return ""
	}

	refsDir := filepath.Join(filepath.Dir(parent), "refs")
	if _, err := os.Stat(refsDir); err != nil {
		return ""
	}
	return refsDir
}
