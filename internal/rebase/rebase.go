// Package rebase reports the state of an interactive rebase by reading git's
// rebase-merge bookkeeping directly.
package rebase

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sergeknystautas/gitview/internal/vcs"
)

const (
	stateDir     = "rebase-merge"
	headsPrefix  = "refs/heads/"
	shortHashLen = 7
)

// Status describes an interactive rebase in progress.
type Status struct {
	// Onto is the display name of the commit being rebased onto: a ref name
	// when one points at it, otherwise the abbreviated hash.
	Onto string

	// OntoHash is the full hash recorded in the onto file.
	OntoHash string

	// HeadName is the branch being rebased, without refs/heads/.
	HeadName string

	// Done lists the steps already applied, oldest first.
	Done []Step

	// Todo lists the steps still to apply, in order.
	Todo []Step
}

// Step is a single line of a rebase todo list.
type Step struct {
	Action  string
	Commit  string
	Subject string
}

// Ref is one line of for-each-ref output.
type Ref struct {
	Hash string
	Name string
}

// RefLister lists the refs of the repository at dir.
type RefLister interface {
	ListRefs(ctx context.Context, dir string) ([]Ref, error)
}

// Read returns the rebase in progress for the repository at dir, or nil when
// no rebase is in progress. The refs are listed once to give the onto commit
// a readable name; a listing failure is returned as an error.
func Read(ctx context.Context, dir string, refs RefLister) (*Status, error) {
	gitDir, err := vcs.ResolveGitDir(dir)
	if err != nil {
		return nil, err
	}
	return ReadGitDir(ctx, dir, gitDir, refs)
}

// ReadGitDir is Read with an already resolved git directory.
func ReadGitDir(ctx context.Context, dir, gitDir string, refs RefLister) (*Status, error) {
	base := filepath.Join(gitDir, stateDir)

	ontoPath := filepath.Join(base, "onto")
	onto, err := readTrimmed(ontoPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ontoPath, err)
	}
	if onto == "" {
		return nil, &vcs.ParseError{Source: "rebase", File: ontoPath, Reason: "empty onto file"}
	}

	headPath := filepath.Join(base, "head-name")
	head, err := readTrimmed(headPath)
	if err != nil {
		return nil, &vcs.MissingRefError{Path: headPath, Err: err}
	}
	if !strings.HasPrefix(head, headsPrefix) || head == headsPrefix {
		return nil, &vcs.ParseError{
			Source: "rebase",
			File:   headPath,
			Line:   1,
			Text:   head,
			Reason: "head name is not a branch ref",
		}
	}

	name, err := resolveOnto(ctx, dir, onto, refs)
	if err != nil {
		return nil, err
	}

	done, err := readSteps(filepath.Join(base, "done"))
	if err != nil {
		return nil, err
	}
	todo, err := readSteps(filepath.Join(base, "git-rebase-todo"))
	if err != nil {
		return nil, err
	}

	return &Status{
		Onto:     name,
		OntoHash: onto,
		HeadName: strings.TrimPrefix(head, headsPrefix),
		Done:     done,
		Todo:     todo,
	}, nil
}

// resolveOnto returns the name of the first ref whose hash starts with hash,
// or the abbreviated hash when none does.
func resolveOnto(ctx context.Context, dir, hash string, refs RefLister) (string, error) {
	list, err := refs.ListRefs(ctx, dir)
	if err != nil {
		return "", fmt.Errorf("failed to list refs: %w", err)
	}
	for _, r := range list {
		if strings.HasPrefix(r.Hash, hash) {
			return r.Name, nil
		}
	}
	return Abbrev(hash), nil
}

// Abbrev shortens a hash to seven characters.
func Abbrev(hash string) string {
	if len(hash) <= shortHashLen {
		return hash
	}
	return hash[:shortHashLen]
}

func readTrimmed(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func readSteps(path string) ([]Step, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ParseSteps(string(data)), nil
}
