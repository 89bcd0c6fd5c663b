package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/creack/pty"
	"golang.org/x/term"

	"github.com/sergeknystautas/gitview/internal/logging"
	"github.com/sergeknystautas/gitview/internal/vcs"
)

// Stdio is the standard streams handed to an interactive command.
// Nil fields default to the process's own streams.
type Stdio struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

func (s Stdio) withDefaults() Stdio {
	if s.In == nil {
		s.In = os.Stdin
	}
	if s.Out == nil {
		s.Out = os.Stdout
	}
	if s.Err == nil {
		s.Err = os.Stderr
	}
	return s
}

// isTerminal reports whether r is a file attached to a terminal.
var isTerminal = func(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// RunInteractive runs cmd in dir with the given stdio and waits for it.
// Commands that carry a Stdin payload read it instead of stdio.In.
// A command that needs a terminal is refused with vcs.ErrNoTerminal when
// stdio.In is not one.
func RunInteractive(ctx context.Context, dir string, c vcs.Interactive, stdio Stdio, logger logging.Logger) error {
	if logger == nil {
		logger = logging.Nop()
	}
	log := logger.With("component", "runner", "dir", dir, "cmd", c.String())

	if err := checkDir(dir); err != nil {
		return &vcs.SpawnError{Binary: c.Binary, Dir: dir, Err: err}
	}

	stdio = stdio.withDefaults()
	if c.NeedsTerminal && c.Stdin == nil && !isTerminal(stdio.In) {
		return fmt.Errorf("%s: %w", c.String(), vcs.ErrNoTerminal)
	}

	cmd := exec.CommandContext(ctx, c.Binary, c.Args...)
	cmd.Dir = dir
	cmd.Stdout = stdio.Out
	cmd.Stderr = stdio.Err
	if c.Stdin != nil {
		cmd.Stdin = bytes.NewReader(c.Stdin)
	} else {
		cmd.Stdin = stdio.In
	}

	if err := cmd.Start(); err != nil {
		return &vcs.SpawnError{Binary: c.Binary, Dir: dir, Err: err}
	}
	log.Debug("interactive started", "pid", cmd.Process.Pid)

	if err := cmd.Wait(); err != nil {
		exitErr := interactiveExitError(c, err)
		log.Debug("interactive failed", "code", exitErr.Code)
		return exitErr
	}

	return nil
}

func interactiveExitError(c vcs.Interactive, err error) *vcs.ExitError {
	exitErr := &vcs.ExitError{Args: c.Args, Code: -1, Err: err}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		exitErr.Code = ee.ExitCode()
	}
	return exitErr
}

// StartPTY starts cmd in dir on a new pseudo-terminal of the given size, for
// front ends that host the terminal themselves. The caller owns the returned
// PTY master and must Wait on the returned command.
func StartPTY(ctx context.Context, dir string, c vcs.Interactive, rows, cols uint16) (*os.File, *exec.Cmd, error) {
	if err := checkDir(dir); err != nil {
		return nil, nil, &vcs.SpawnError{Binary: c.Binary, Dir: dir, Err: err}
	}
	if rows == 0 || cols == 0 {
		rows, cols = 24, 80
	}

	cmd := exec.CommandContext(ctx, c.Binary, c.Args...)
	cmd.Dir = dir
	// pty only attaches streams that are still nil.
	if c.Stdin != nil {
		cmd.Stdin = bytes.NewReader(c.Stdin)
	}

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: rows, Cols: cols})
	if err != nil {
		return nil, nil, &vcs.SpawnError{Binary: c.Binary, Dir: dir, Err: err}
	}

	return ptmx, cmd, nil
}

// RunPTY runs cmd on a new pseudo-terminal, copies everything it prints to
// out and waits for it to exit. Keyboard input is not forwarded, so git sees
// a terminal (colours, progress) without the caller owning one.
func RunPTY(ctx context.Context, dir string, c vcs.Interactive, out io.Writer, rows, cols uint16, logger logging.Logger) error {
	if logger == nil {
		logger = logging.Nop()
	}
	if out == nil {
		out = os.Stdout
	}
	log := logger.With("component", "runner", "dir", dir, "cmd", c.String())

	ptmx, cmd, err := StartPTY(ctx, dir, c, rows, cols)
	if err != nil {
		return err
	}
	defer ptmx.Close()
	log.Debug("pty started", "pid", cmd.Process.Pid)

	copied := make(chan struct{})
	go func() {
		defer close(copied)
		// Reads end with EIO once the child side of the terminal closes.
		_, _ = io.Copy(out, ptmx)
	}()

	waitErr := cmd.Wait()
	select {
	case <-copied:
	case <-ctx.Done():
		ptmx.Close()
		<-copied
	}

	if waitErr != nil {
		exitErr := interactiveExitError(c, waitErr)
		log.Debug("pty command failed", "code", exitErr.Code)
		return exitErr
	}
	return nil
}
