package rebase

import (
	"context"
	"strings"

	"github.com/sergeknystautas/gitview/internal/runner"
	"github.com/sergeknystautas/gitview/internal/vcs"
)

// ParseRefs parses "<hash> <name>" lines as printed by
// for-each-ref --format "%(objectname) %(refname:short)".
func ParseRefs(text string) ([]Ref, error) {
	var refs []Ref
	for i, line := range strings.Split(text, "\n") {
		if line == "" {
			continue
		}
		hash, name, ok := strings.Cut(line, " ")
		if !ok || hash == "" || name == "" {
			return nil, &vcs.ParseError{Source: "refs", Line: i + 1, Text: line, Reason: "expected <hash> <name>"}
		}
		refs = append(refs, Ref{Hash: hash, Name: name})
	}
	return refs, nil
}

// CommandRefLister lists refs by running the builder's ListRefs command.
type CommandRefLister struct {
	Runner  runner.Runner
	Builder vcs.CommandBuilder
}

// ListRefs implements RefLister.
func (l CommandRefLister) ListRefs(ctx context.Context, dir string) ([]Ref, error) {
	out, err := l.Runner.Capture(ctx, dir, l.Builder.ListRefs())
	if err != nil {
		return nil, err
	}
	return ParseRefs(string(out))
}
