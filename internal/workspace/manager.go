// Package workspace ties the command builder, runner and parsers together
// into per-repository queries and mutations.
package workspace

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/sergeknystautas/gitview/internal/config"
	"github.com/sergeknystautas/gitview/internal/diff"
	"github.com/sergeknystautas/gitview/internal/logging"
	"github.com/sergeknystautas/gitview/internal/rebase"
	"github.com/sergeknystautas/gitview/internal/runner"
	"github.com/sergeknystautas/gitview/internal/status"
	"github.com/sergeknystautas/gitview/internal/vcs"
)

// Manager runs git against explicit repository directories. It holds no
// per-repository state; every call rebuilds its result from git's output.
type Manager struct {
	builder vcs.CommandBuilder
	runner  runner.Runner
	stdio   runner.Stdio
	logger  logging.Logger
}

// New creates a manager from its parts.
func New(b vcs.CommandBuilder, r runner.Runner, logger logging.Logger) *Manager {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Manager{
		builder: b,
		runner:  r,
		logger:  logger.With("component", "workspace"),
	}
}

// NewFromConfig creates a manager that runs the configured git binary with
// the configured capture timeout.
func NewFromConfig(cfg *config.Config, logger logging.Logger) *Manager {
	if logger == nil {
		logger = logging.Nop()
	}
	b := vcs.NewCommandBuilder(cfg.GetGitBinary())
	r := runner.NewExecRunner(cfg.CaptureTimeout(), logger)
	return New(b, r, logger)
}

// SetStdio sets the streams interactive commands run with.
func (m *Manager) SetStdio(s runner.Stdio) {
	m.stdio = s
}

// Builder returns the command builder the manager uses.
func (m *Manager) Builder() vcs.CommandBuilder {
	return m.builder
}

func (m *Manager) capture(ctx context.Context, dir string, c vcs.Capture) (string, error) {
	return runner.CaptureText(ctx, m.runner, dir, c)
}

func (m *Manager) captureDiff(ctx context.Context, dir string, c vcs.Capture) (diff.Diff, error) {
	out, err := m.capture(ctx, dir, c)
	if err != nil {
		return diff.Diff{}, err
	}
	d, err := diff.Parse(out)
	if err != nil {
		m.logger.Warn("diff parse failed", "dir", dir, "cmd", c.String(), "err", err)
		return diff.Diff{}, err
	}
	return d, nil
}

// Status returns the branch summary and entries of the working tree.
func (m *Manager) Status(ctx context.Context, dir string) (status.Status, error) {
	out, err := m.capture(ctx, dir, m.builder.Status())
	if err != nil {
		return status.Status{}, err
	}
	st, err := status.Parse(out)
	if err != nil {
		m.logger.Warn("status parse failed", "dir", dir, "err", err)
		return status.Status{}, err
	}
	return st, nil
}

// DiffUnstaged returns the changes in the working tree not yet staged.
func (m *Manager) DiffUnstaged(ctx context.Context, dir string) (diff.Diff, error) {
	return m.captureDiff(ctx, dir, m.builder.DiffUnstaged())
}

// DiffStaged returns the changes staged for the next commit.
func (m *Manager) DiffStaged(ctx context.Context, dir string) (diff.Diff, error) {
	return m.captureDiff(ctx, dir, m.builder.DiffStaged())
}

// Diff returns git diff with args appended.
func (m *Manager) Diff(ctx context.Context, dir string, args ...string) (diff.Diff, error) {
	return m.captureDiff(ctx, dir, m.builder.Diff(args...))
}

// Show returns the diff of git show with args appended. The commit header
// is skipped.
func (m *Manager) Show(ctx context.Context, dir string, args ...string) (diff.Diff, error) {
	return m.captureDiff(ctx, dir, m.builder.Show(args...))
}

// ShowSummary returns the decorated git show summary as display text.
func (m *Manager) ShowSummary(ctx context.Context, dir string, args ...string) (string, error) {
	return m.capture(ctx, dir, m.builder.ShowSummary(args...))
}

// Log returns the one-line decorated log as display text.
func (m *Manager) Log(ctx context.Context, dir string, args ...string) (string, error) {
	return m.capture(ctx, dir, m.builder.Log(args...))
}

// LogRecent returns the five most recent commits as display text.
func (m *Manager) LogRecent(ctx context.Context, dir string) (string, error) {
	return m.capture(ctx, dir, m.builder.LogRecent())
}

// ListRefs implements rebase.RefLister.
func (m *Manager) ListRefs(ctx context.Context, dir string) ([]rebase.Ref, error) {
	return rebase.CommandRefLister{Runner: m.runner, Builder: m.builder}.ListRefs(ctx, dir)
}

// Branch is a local branch with its upstream and tip subject.
type Branch struct {
	Name     string
	Upstream string
	Subject  string
}

// Branches lists local branches, most recently created first.
func (m *Manager) Branches(ctx context.Context, dir string) ([]Branch, error) {
	out, err := m.capture(ctx, dir, m.builder.BranchRefs())
	if err != nil {
		return nil, err
	}
	return parseBranches(out)
}

// parseBranches reads "<name> <upstream> <subject>" lines. Branch names hold
// no spaces; upstream may be empty.
func parseBranches(out string) ([]Branch, error) {
	var branches []Branch
	for i, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		name, rest, ok := strings.Cut(line, " ")
		if !ok || name == "" {
			return nil, &vcs.ParseError{Source: "refs", Line: i + 1, Text: line, Reason: "expected <name> <upstream> <subject>"}
		}
		upstream, subject, _ := strings.Cut(rest, " ")
		branches = append(branches, Branch{Name: name, Upstream: upstream, Subject: subject})
	}
	return branches, nil
}

// RebaseStatus returns the rebase in progress, or nil when there is none.
func (m *Manager) RebaseStatus(ctx context.Context, dir string) (*rebase.Status, error) {
	return rebase.Read(ctx, dir, m)
}

// GitVersion returns the version of the configured git binary.
func (m *Manager) GitVersion(ctx context.Context, dir string) (*semver.Version, error) {
	return runner.GitVersion(ctx, m.runner, m.builder, dir)
}

// CheckGitVersion fails with vcs.ErrUnsupportedGit when git is too old.
func (m *Manager) CheckGitVersion(ctx context.Context, dir string) error {
	v, err := runner.CheckGitVersion(ctx, m.runner, m.builder, dir)
	if err != nil {
		return err
	}
	m.logger.Debug("git version ok", "version", v.String())
	return nil
}

// Run executes an interactive command with the manager's stdio.
func (m *Manager) Run(ctx context.Context, dir string, c vcs.Interactive) error {
	if err := runner.RunInteractive(ctx, dir, c, m.stdio, m.logger); err != nil {
		return fmt.Errorf("%s failed: %w", c.String(), err)
	}
	return nil
}

// RunPTY executes an interactive command on a pseudo-terminal of rows by
// cols, copying its output to the manager's stdout. Zero sizes mean 24x80.
func (m *Manager) RunPTY(ctx context.Context, dir string, c vcs.Interactive, rows, cols uint16) error {
	if err := runner.RunPTY(ctx, dir, c, m.stdio.Out, rows, cols, m.logger); err != nil {
		return fmt.Errorf("%s failed: %w", c.String(), err)
	}
	return nil
}

// StageFile stages a whole file.
func (m *Manager) StageFile(ctx context.Context, dir, path string) error {
	return m.Run(ctx, dir, m.builder.StageFile(path))
}

// UnstageFile removes a whole file from the index.
func (m *Manager) UnstageFile(ctx context.Context, dir, path string) error {
	return m.Run(ctx, dir, m.builder.UnstageFile(path))
}

// DiscardFile restores a file in the working tree from the index.
func (m *Manager) DiscardFile(ctx context.Context, dir, path string) error {
	return m.Run(ctx, dir, m.builder.CheckoutFile(path))
}

// StageHunk stages one hunk of an unstaged diff.
func (m *Manager) StageHunk(ctx context.Context, dir string, f diff.FileChange, h diff.Hunk) error {
	return m.Run(ctx, dir, m.builder.StagePatch(diff.Patch(f, h)))
}

// UnstageHunk removes one hunk of a staged diff from the index.
func (m *Manager) UnstageHunk(ctx context.Context, dir string, f diff.FileChange, h diff.Hunk) error {
	return m.Run(ctx, dir, m.builder.UnstagePatch(diff.Patch(f, h)))
}

// DiscardHunk reverts one hunk of an unstaged diff in the working tree.
func (m *Manager) DiscardHunk(ctx context.Context, dir string, f diff.FileChange, h diff.Hunk) error {
	return m.Run(ctx, dir, m.builder.DiscardUnstagedPatch(diff.Patch(f, h)))
}
