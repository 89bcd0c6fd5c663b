package vcs

// GitCommandBuilder implements CommandBuilder for git.
type GitCommandBuilder struct {
	// Binary is the git executable; empty means "git" from PATH.
	Binary string
}

func (g *GitCommandBuilder) binary() string {
	if g.Binary == "" {
		return "git"
	}
	return g.Binary
}

func (g *GitCommandBuilder) capture(args ...string) Capture {
	return Capture{Binary: g.binary(), Args: args}
}

func (g *GitCommandBuilder) interactive(args ...string) Interactive {
	return Interactive{Binary: g.binary(), Args: args}
}

func (g *GitCommandBuilder) terminal(args ...string) Interactive {
	cmd := g.interactive(args...)
	cmd.NeedsTerminal = true
	return cmd
}

func (g *GitCommandBuilder) withPatch(patch []byte, args ...string) Interactive {
	cmd := g.interactive(args...)
	cmd.Stdin = patch
	return cmd
}

func (g *GitCommandBuilder) Status() Capture {
	return g.capture("status", "--porcelain", "--branch")
}

func (g *GitCommandBuilder) DiffUnstaged() Capture {
	return g.capture("diff")
}

func (g *GitCommandBuilder) DiffStaged() Capture {
	return g.capture("diff", "--staged")
}

func (g *GitCommandBuilder) Diff(args ...string) Capture {
	return g.capture("diff").With(args...)
}

func (g *GitCommandBuilder) Show(args ...string) Capture {
	return g.capture("show").With(args...)
}

func (g *GitCommandBuilder) ShowSummary(args ...string) Capture {
	return g.capture("show", "--summary", "--decorate", "--color").With(args...)
}

func (g *GitCommandBuilder) Log(args ...string) Capture {
	return g.capture("log", "--oneline", "--decorate", "--color").With(args...)
}

func (g *GitCommandBuilder) LogRecent() Capture {
	return g.capture("log", "-n", "5", "--oneline", "--decorate", "--color")
}

func (g *GitCommandBuilder) ListRefs() Capture {
	return g.capture("for-each-ref", "--format", "%(objectname) %(refname:short)")
}

func (g *GitCommandBuilder) BranchRefs() Capture {
	return g.capture(
		"for-each-ref",
		"--sort", "-creatordate",
		"--format", "%(refname:short) %(upstream:short) %(subject)",
		"refs/heads",
	)
}

func (g *GitCommandBuilder) Version() Capture {
	return g.capture("--version")
}

func (g *GitCommandBuilder) StageFile(path string) Interactive {
	return g.interactive("add", path)
}

func (g *GitCommandBuilder) StagePatch(patch []byte) Interactive {
	return g.withPatch(patch, "apply", "--cached")
}

func (g *GitCommandBuilder) UnstageFile(path string) Interactive {
	return g.interactive("restore", "--staged", path)
}

func (g *GitCommandBuilder) UnstagePatch(patch []byte) Interactive {
	return g.withPatch(patch, "apply", "--cached", "--reverse")
}

func (g *GitCommandBuilder) DiscardUnstagedPatch(patch []byte) Interactive {
	return g.withPatch(patch, "apply", "--reverse")
}

func (g *GitCommandBuilder) CheckoutFile(path string) Interactive {
	return g.interactive("checkout", "--", path)
}

func (g *GitCommandBuilder) CheckoutRef(ref string) Interactive {
	return g.interactive("checkout", ref)
}

func (g *GitCommandBuilder) Commit() Interactive {
	return g.terminal("commit")
}

func (g *GitCommandBuilder) CommitAmend() Interactive {
	return g.terminal("commit", "--amend")
}

func (g *GitCommandBuilder) CommitFixup(ref string) Interactive {
	return g.terminal("commit", "--fixup", ref)
}

func (g *GitCommandBuilder) Push() Interactive {
	return g.terminal("push")
}

func (g *GitCommandBuilder) Pull() Interactive {
	return g.terminal("pull")
}

func (g *GitCommandBuilder) FetchAll() Interactive {
	return g.terminal("fetch", "--all")
}

func (g *GitCommandBuilder) RebaseInteractive(ref string) Interactive {
	return g.terminal("rebase", "-i", "--autostash", ref)
}

func (g *GitCommandBuilder) RebaseAutosquash(ref string) Interactive {
	return g.terminal("rebase", "-i", "--autosquash", "--keep-empty", "--autostash", ref)
}

func (g *GitCommandBuilder) RebaseContinue() Interactive {
	return g.terminal("rebase", "--continue")
}

func (g *GitCommandBuilder) RebaseAbort() Interactive {
	return g.interactive("rebase", "--abort")
}
