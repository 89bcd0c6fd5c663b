package main

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/charmbracelet/huh"
	"github.com/sergeknystautas/gitview/internal/diff"
	"github.com/sergeknystautas/gitview/internal/vcs"
	"github.com/sergeknystautas/gitview/internal/version"
	"github.com/sergeknystautas/gitview/internal/workspace"
)

// confirm asks a yes/no question on the terminal.
var confirm = func(title, description string) (bool, error) {
	ok := false
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	return ok, err
}

func (a *app) confirm(title, description string) (bool, error) {
	if a.opts.yes {
		return true, nil
	}
	return confirm(title, description)
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "status":
		return a.status(ctx)
	case "diff":
		return a.diff(ctx, args)
	case "show":
		return a.show(ctx, args)
	case "log":
		return a.log(ctx, args)
	case "rebase-status":
		return a.rebaseStatus(ctx)
	case "refs":
		return a.refs(ctx)
	case "stage":
		return a.stage(ctx, args)
	case "unstage":
		return a.unstage(ctx, args)
	case "discard":
		return a.discard(ctx, args)
	case "commit":
		return a.commit(ctx, args)
	case "rebase":
		return a.rebase(ctx, args)
	case "push":
		return a.exec(ctx, a.mgr.Builder().Push())
	case "pull":
		return a.exec(ctx, a.mgr.Builder().Pull())
	case "fetch":
		return a.exec(ctx, a.mgr.Builder().FetchAll())
	case "watch":
		return a.watch(ctx)
	case "version":
		return a.version(ctx)
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

// exec runs an interactive git command, on a pseudo-terminal with --pty.
func (a *app) exec(ctx context.Context, c vcs.Interactive) error {
	if !a.opts.pty {
		return a.mgr.Run(ctx, a.dir, c)
	}
	rows, cols := terminalSize()
	return a.mgr.RunPTY(ctx, a.dir, c, rows, cols)
}

// status prints the working tree even when the rebase bookkeeping cannot be
// read, such as during a rebase of a detached HEAD.
func (a *app) status(ctx context.Context) error {
	st, err := a.mgr.Status(ctx, a.dir)
	if err != nil {
		return err
	}
	rb, rbErr := a.mgr.RebaseStatus(ctx, a.dir)
	renderStatus(a.style, st, rb)
	if rbErr != nil {
		a.style.Blank()
		a.style.Warn("rebase in progress but its state is unreadable: " + rbErr.Error())
	}
	return nil
}

func (a *app) diff(ctx context.Context, args []string) error {
	d, err := a.mgr.Diff(ctx, a.dir, args...)
	if err != nil {
		return err
	}
	renderDiff(a.style, d)
	return nil
}

func (a *app) show(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: gitview show <ref>")
	}
	summary, err := a.mgr.ShowSummary(ctx, a.dir, args...)
	if err != nil {
		return err
	}
	a.style.Println(summary)

	// Merges are shown against their first parent; git's combined form is
	// not parsed.
	d, err := a.mgr.Show(ctx, a.dir, append([]string{"-m", "--first-parent"}, args...)...)
	if err != nil {
		return err
	}
	renderDiff(a.style, d)
	return nil
}

func (a *app) log(ctx context.Context, args []string) error {
	var out string
	var err error
	if len(args) == 0 {
		out, err = a.mgr.LogRecent(ctx, a.dir)
	} else {
		out, err = a.mgr.Log(ctx, a.dir, args...)
	}
	if err != nil {
		return err
	}
	a.style.Printf("%s", out)
	return nil
}

func (a *app) rebaseStatus(ctx context.Context) error {
	rb, err := a.mgr.RebaseStatus(ctx, a.dir)
	if err != nil {
		return err
	}
	if rb == nil {
		a.style.Println(a.style.Dim("no rebase in progress"))
		return nil
	}
	renderRebase(a.style, rb)
	for _, s := range rb.Todo {
		a.style.Printf("  %s %s %s\n", a.style.Yellow(s.Action), s.Commit, s.Subject)
	}
	return nil
}

func (a *app) refs(ctx context.Context) error {
	branches, err := a.mgr.Branches(ctx, a.dir)
	if err != nil {
		return err
	}
	renderBranches(a.style, branches)
	return nil
}

// hunkArgs parses "<file> [hunk]", where hunk is 1-based. Zero means the
// whole file.
func hunkArgs(command string, args []string) (string, int, error) {
	if len(args) < 1 || len(args) > 2 {
		return "", 0, fmt.Errorf("usage: gitview %s <file> [hunk]", command)
	}
	if len(args) == 1 {
		return args[0], 0, nil
	}
	n, err := strconv.Atoi(args[1])
	if err != nil || n < 1 {
		return "", 0, fmt.Errorf("hunk must be a positive number, got %q", args[1])
	}
	return args[0], n, nil
}

// selectHunk finds hunk n (1-based) of path in d.
func selectHunk(d diff.Diff, path string, n int) (diff.FileChange, diff.Hunk, error) {
	for _, f := range d.Files {
		if f.NewPath != path && f.OldPath != path {
			continue
		}
		if n > len(f.Hunks) {
			return diff.FileChange{}, diff.Hunk{}, fmt.Errorf("%s has %d hunks", path, len(f.Hunks))
		}
		return f, f.Hunks[n-1], nil
	}
	return diff.FileChange{}, diff.Hunk{}, fmt.Errorf("no changes to %s", path)
}

func (a *app) stage(ctx context.Context, args []string) error {
	path, n, err := hunkArgs("stage", args)
	if err != nil {
		return err
	}
	if n == 0 {
		return a.mgr.StageFile(ctx, a.dir, path)
	}
	d, err := a.mgr.DiffUnstaged(ctx, a.dir)
	if err != nil {
		return err
	}
	f, h, err := selectHunk(d, path, n)
	if err != nil {
		return err
	}
	return a.mgr.StageHunk(ctx, a.dir, f, h)
}

func (a *app) unstage(ctx context.Context, args []string) error {
	path, n, err := hunkArgs("unstage", args)
	if err != nil {
		return err
	}
	if n == 0 {
		// git restore needs 2.23.
		if err := a.mgr.CheckGitVersion(ctx, a.dir); err != nil {
			return err
		}
		return a.mgr.UnstageFile(ctx, a.dir, path)
	}
	d, err := a.mgr.DiffStaged(ctx, a.dir)
	if err != nil {
		return err
	}
	f, h, err := selectHunk(d, path, n)
	if err != nil {
		return err
	}
	return a.mgr.UnstageHunk(ctx, a.dir, f, h)
}

func (a *app) discard(ctx context.Context, args []string) error {
	path, n, err := hunkArgs("discard", args)
	if err != nil {
		return err
	}

	what := path
	if n > 0 {
		what = fmt.Sprintf("hunk %d of %s", n, path)
	}
	ok, err := a.confirm("Discard "+what+"?", "Unstaged changes will be lost.")
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if n == 0 {
		return a.mgr.DiscardFile(ctx, a.dir, path)
	}
	d, err := a.mgr.DiffUnstaged(ctx, a.dir)
	if err != nil {
		return err
	}
	f, h, err := selectHunk(d, path, n)
	if err != nil {
		return err
	}
	return a.mgr.DiscardHunk(ctx, a.dir, f, h)
}

func (a *app) commit(ctx context.Context, args []string) error {
	b := a.mgr.Builder()
	switch {
	case len(args) == 0:
		return a.exec(ctx, b.Commit())
	case len(args) == 1 && args[0] == "--amend":
		return a.exec(ctx, b.CommitAmend())
	case len(args) == 2 && args[0] == "--fixup":
		return a.exec(ctx, b.CommitFixup(args[1]))
	default:
		return fmt.Errorf("usage: gitview commit [--amend|--fixup <ref>]")
	}
}

func (a *app) rebase(ctx context.Context, args []string) error {
	b := a.mgr.Builder()
	if len(args) == 1 {
		switch args[0] {
		case "--continue":
			return a.exec(ctx, b.RebaseContinue())
		case "--abort":
			return a.exec(ctx, b.RebaseAbort())
		}
	}

	var ref string
	autosquash := false
	for _, arg := range args {
		switch {
		case arg == "--autosquash":
			autosquash = true
		case ref == "":
			ref = arg
		default:
			return fmt.Errorf("usage: gitview rebase <ref> [--autosquash]")
		}
	}
	if ref == "" {
		return fmt.Errorf("usage: gitview rebase <ref> [--autosquash] | --continue | --abort")
	}

	st, err := a.mgr.Status(ctx, a.dir)
	if err != nil {
		return err
	}
	if !st.Clean() {
		ok, err := a.confirm("Working tree has changes", "They will be stashed for the rebase and restored afterwards. Continue?")
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

	if autosquash {
		return a.exec(ctx, b.RebaseAutosquash(ref))
	}
	return a.exec(ctx, b.RebaseInteractive(ref))
}

func (a *app) watch(ctx context.Context) error {
	if err := a.status(ctx); err != nil {
		return err
	}
	if a.opts.exitImmediately {
		return nil
	}

	var mu sync.Mutex
	gw := workspace.NewGitWatcher(a.cfg, a.logger, func(string) {
		mu.Lock()
		defer mu.Unlock()
		a.style.Blank()
		if err := a.status(ctx); err != nil {
			a.style.Warn(err.Error())
		}
	})
	if gw == nil {
		return fmt.Errorf("watching is disabled in %s", a.cfg.Path())
	}
	if err := gw.AddRepo(a.dir); err != nil {
		return err
	}
	gw.Start()
	defer gw.Stop()

	<-ctx.Done()
	return nil
}

func (a *app) version(ctx context.Context) error {
	a.style.KeyValue("gitview", version.Version)
	v, err := a.mgr.GitVersion(ctx, a.dir)
	if err != nil {
		return err
	}
	a.style.KeyValue("git", v.String())
	if err := a.mgr.CheckGitVersion(ctx, a.dir); err != nil {
		a.style.Warn(err.Error())
	}
	return nil
}
