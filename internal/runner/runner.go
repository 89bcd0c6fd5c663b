// Package runner executes command descriptors produced by the vcs package.
//
// Capture commands are run synchronously with their standard output
// collected and validated as UTF-8 text. Interactive commands are never
// captured; they are run with inherited stdio or on a pseudo-terminal.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/sergeknystautas/gitview/internal/logging"
	"github.com/sergeknystautas/gitview/internal/vcs"
)

// waitDelay bounds how long Wait blocks on output pipes held open by
// grandchildren after the process itself has been killed.
const waitDelay = 2 * time.Second

// Runner abstracts executing capturing commands.
// Implementations may call the real binary or replay canned output in tests.
type Runner interface {
	Capture(ctx context.Context, dir string, cmd vcs.Capture) ([]byte, error)
}

// ExecRunner executes commands as child processes.
type ExecRunner struct {
	// Timeout bounds each capture. Zero means no bound.
	Timeout time.Duration
	Logger  logging.Logger
}

// NewExecRunner returns an ExecRunner with the given capture timeout.
func NewExecRunner(timeout time.Duration, logger logging.Logger) *ExecRunner {
	if logger == nil {
		logger = logging.Nop()
	}
	return &ExecRunner{Timeout: timeout, Logger: logger.With("component", "runner")}
}

func (r *ExecRunner) logger() logging.Logger {
	if r.Logger == nil {
		return logging.Nop()
	}
	return r.Logger
}

// Capture runs cmd in dir and returns its standard output.
//
// Errors are *vcs.SpawnError when the process cannot be started,
// *vcs.ExitError when it exits non-zero or the timeout expires, and
// *vcs.EncodingError when the output is not valid UTF-8.
func (r *ExecRunner) Capture(ctx context.Context, dir string, c vcs.Capture) ([]byte, error) {
	if err := checkDir(dir); err != nil {
		return nil, &vcs.SpawnError{Binary: c.Binary, Dir: dir, Err: err}
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	callID := uuid.NewString()
	log := r.logger().With("call", callID, "dir", dir, "cmd", c.String())
	start := time.Now()

	cmd := exec.CommandContext(ctx, c.Binary, c.Args...)
	cmd.Dir = dir
	cmd.WaitDelay = waitDelay
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		log.Warn("spawn failed", "err", err)
		return nil, &vcs.SpawnError{Binary: c.Binary, Dir: dir, Err: err}
	}

	if err := cmd.Wait(); err != nil {
		exitErr := &vcs.ExitError{
			Args:   c.Args,
			Code:   -1,
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			exitErr.Code = ee.ExitCode()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			exitErr.Err = ctxErr
		}
		log.Debug("capture failed", "code", exitErr.Code, "duration", time.Since(start), "stderr", exitErr.Stderr)
		return nil, exitErr
	}

	out := stdout.Bytes()
	if offset := invalidUTF8Offset(out); offset >= 0 {
		log.Debug("capture produced invalid UTF-8", "offset", offset)
		return nil, &vcs.EncodingError{Args: c.Args, Offset: offset}
	}

	log.Debug("capture ok", "bytes", len(out), "duration", time.Since(start))
	return out, nil
}

// CaptureText runs cmd and returns its output as a string.
func CaptureText(ctx context.Context, r Runner, dir string, cmd vcs.Capture) (string, error) {
	out, err := r.Capture(ctx, dir, cmd)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// checkDir rejects empty or non-directory working directories before spawning,
// so the failure is reported against the directory rather than the binary.
func checkDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return errors.New("working directory is required")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

// invalidUTF8Offset returns the byte offset of the first invalid UTF-8
// sequence in b, or -1 if b is valid.
func invalidUTF8Offset(b []byte) int {
	if utf8.Valid(b) {
		return -1
	}
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}
