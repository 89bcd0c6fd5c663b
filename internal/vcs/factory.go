package vcs

import "strings"

// NewCommandBuilder returns a CommandBuilder that invokes the given git
// binary. Defaults to "git" from PATH if binary is empty.
func NewCommandBuilder(binary string) CommandBuilder {
	return &GitCommandBuilder{Binary: strings.TrimSpace(binary)}
}
