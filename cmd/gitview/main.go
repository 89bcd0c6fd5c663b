package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sergeknystautas/gitview/internal/config"
	"github.com/sergeknystautas/gitview/internal/logging"
	"github.com/sergeknystautas/gitview/internal/vcs"
	"github.com/sergeknystautas/gitview/internal/workspace"
)

func main() {
	opts, command, args := parseArgs(os.Args[1:])

	if command == "help" {
		printUsage()
		return
	}
	if command == "" {
		if !opts.status {
			printUsage()
			return
		}
		command = "status"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := a.run(ctx, command, args); err != nil {
		var exitErr *vcs.ExitError
		if errors.As(err, &exitErr) && exitErr.Code > 0 {
			// git has already reported the failure on the inherited stderr.
			if exitErr.Stderr != "" {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	status          bool
	exitImmediately bool
	yes             bool
	pty             bool
}

// parseArgs splits leading global flags from the command and its arguments.
// Everything after the command is passed through untouched.
func parseArgs(argv []string) (options, string, []string) {
	opts := options{status: true}
	for i, arg := range argv {
		switch arg {
		case "--no-status":
			opts.status = false
		case "--status":
			opts.status = true
		case "--exit-immediately":
			opts.exitImmediately = true
		case "--yes", "-y":
			opts.yes = true
		case "--pty":
			opts.pty = true
		case "-h", "--help":
			return opts, "help", nil
		default:
			return opts, arg, argv[i+1:]
		}
	}
	return opts, "", nil
}

type app struct {
	opts   options
	dir    string
	cfg    *config.Config
	logger logging.Logger
	mgr    *workspace.Manager
	style  *termStyle
}

func newApp(opts options) (*app, error) {
	path, err := config.DefaultPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(os.Stderr, cfg.GetLogFormat(), cfg.GetLogLevel())
	if err != nil {
		return nil, err
	}

	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	return &app{
		opts:   opts,
		dir:    dir,
		cfg:    cfg,
		logger: logger,
		mgr:    workspace.NewFromConfig(cfg, logger),
		style:  newTermStyle(),
	}, nil
}

func printUsage() {
	fmt.Println("gitview - typed views over git status, diff and rebase state")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  gitview [--no-status] [--exit-immediately] [--yes] [--pty] <command> [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  status                     Show branch, rebase and working tree status (default)")
	fmt.Println("  diff [git diff args]       Show a parsed diff")
	fmt.Println("  show <ref>                 Show a commit summary and its diff (merges against the first parent)")
	fmt.Println("  log [git log args]         Show the one-line log")
	fmt.Println("  rebase-status              Show the rebase in progress, if any")
	fmt.Println("  refs                       List local branches, newest first")
	fmt.Println("  stage <file> [hunk]        Stage a file, or one hunk of its unstaged diff")
	fmt.Println("  unstage <file> [hunk]      Unstage a file, or one hunk of its staged diff")
	fmt.Println("  discard <file> [hunk]      Discard unstaged changes to a file or hunk")
	fmt.Println("  commit [--amend|--fixup <ref>]")
	fmt.Println("                             Commit the index using your editor")
	fmt.Println("  rebase <ref> [--autosquash]")
	fmt.Println("  rebase --continue|--abort  Start, continue or abort an interactive rebase")
	fmt.Println("  push | pull | fetch        Run git push, git pull or git fetch --all")
	fmt.Println("  watch                      Reprint status whenever git metadata changes")
	fmt.Println("  version                    Show gitview and git versions")
	fmt.Println("  help                       Show this help message")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --no-status                Print usage instead of status when no command is given")
	fmt.Println("  --exit-immediately         With watch: print status once and exit")
	fmt.Println("  --yes, -y                  Skip confirmation prompts")
	fmt.Println("  --pty                      Run git on a pseudo-terminal and copy its output")
	fmt.Println()
	fmt.Println("Configuration is read from ~/.gitview/config.yaml, or $GITVIEW_CONFIG.")
}
